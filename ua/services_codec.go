package ua

// Binary encode/decode for the service request/response structures in
// services.go. Field order follows the OPC UA binary layout; there is no
// length prefix around a structure itself (§4.A "Structured types").

// --- EndpointDescription / UserTokenPolicy ---

func encodeUserTokenPolicy(buf *Buffer, p UserTokenPolicy) {
	buf.WriteString(p.PolicyID)
	buf.WriteUint32(uint32(p.TokenType))
	buf.WriteString(p.SecurityPolicyURI)
}

func decodeUserTokenPolicy(buf *Buffer) UserTokenPolicy {
	return UserTokenPolicy{
		PolicyID:          buf.ReadString(),
		TokenType:         UserTokenType(buf.ReadUint32()),
		SecurityPolicyURI: buf.ReadString(),
	}
}

func EncodeEndpointDescription(buf *Buffer, e *EndpointDescription) {
	buf.WriteString(e.EndpointURL)
	buf.WriteString(e.SecurityPolicyURI)
	buf.WriteUint32(uint32(e.SecurityMode))
	_ = buf.WriteByte(e.SecurityLevel)
	buf.WriteBytes(e.ServerCertificate)
	if e.UserIdentityTokens == nil {
		buf.WriteInt32(-1)
	} else {
		buf.WriteInt32(int32(len(e.UserIdentityTokens)))
		for _, t := range e.UserIdentityTokens {
			encodeUserTokenPolicy(buf, t)
		}
	}
}

func DecodeEndpointDescription(buf *Buffer) *EndpointDescription {
	e := &EndpointDescription{}
	e.EndpointURL = buf.ReadString()
	e.SecurityPolicyURI = buf.ReadString()
	e.SecurityMode = MessageSecurityMode(buf.ReadUint32())
	e.SecurityLevel = buf.ReadByte()
	e.ServerCertificate = buf.ReadBytes()
	n := buf.ReadInt32()
	if n >= 0 {
		e.UserIdentityTokens = make([]UserTokenPolicy, n)
		for i := range e.UserIdentityTokens {
			e.UserIdentityTokens[i] = decodeUserTokenPolicy(buf)
		}
	}
	return e
}

// --- GetEndpoints ---

func (r *GetEndpointsRequest) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	buf.WriteString(r.EndpointURL)
	encodeStringArray(buf, r.ProfileURIs)
}

func DecodeGetEndpointsRequest(buf *Buffer) *GetEndpointsRequest {
	return &GetEndpointsRequest{
		Header:      DecodeRequestHeader(buf),
		EndpointURL: buf.ReadString(),
		ProfileURIs: decodeStringArray(buf),
	}
}

func (r *GetEndpointsResponse) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	if r.Endpoints == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(r.Endpoints)))
	for _, e := range r.Endpoints {
		EncodeEndpointDescription(buf, e)
	}
}

func DecodeGetEndpointsResponse(buf *Buffer) *GetEndpointsResponse {
	r := &GetEndpointsResponse{Header: DecodeResponseHeader(buf)}
	n := buf.ReadInt32()
	if n >= 0 {
		r.Endpoints = make([]*EndpointDescription, n)
		for i := range r.Endpoints {
			r.Endpoints[i] = DecodeEndpointDescription(buf)
		}
	}
	return r
}

// --- ReadValueID / Read ---

func encodeReadValueID(buf *Buffer, v *ReadValueID) {
	EncodeNodeID(v.NodeID, buf)
	buf.WriteUint32(uint32(v.AttributeID))
	buf.WriteString(v.IndexRange)
	EncodeQualifiedName(QualifiedName{}, buf) // DataEncoding, unused (binary only)
}

func decodeReadValueID(buf *Buffer) *ReadValueID {
	v := &ReadValueID{}
	v.NodeID = DecodeNodeID(buf)
	v.AttributeID = AttributeID(buf.ReadUint32())
	v.IndexRange = buf.ReadString()
	_ = DecodeQualifiedName(buf)
	return v
}

func (r *ReadRequest) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	buf.WriteFloat64(r.MaxAge)
	buf.WriteUint32(uint32(r.TimestampsToReturn))
	if r.NodesToRead == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(r.NodesToRead)))
	for _, n := range r.NodesToRead {
		encodeReadValueID(buf, n)
	}
}

func DecodeReadRequest(buf *Buffer) *ReadRequest {
	r := &ReadRequest{Header: DecodeRequestHeader(buf)}
	r.MaxAge = buf.ReadFloat64()
	r.TimestampsToReturn = TimestampsToReturn(buf.ReadUint32())
	n := buf.ReadInt32()
	if n >= 0 {
		r.NodesToRead = make([]*ReadValueID, n)
		for i := range r.NodesToRead {
			r.NodesToRead[i] = decodeReadValueID(buf)
		}
	}
	return r
}

func (r *ReadResponse) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	if r.Results == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(r.Results)))
	for _, d := range r.Results {
		EncodeDataValue(d, buf)
	}
}

func DecodeReadResponse(buf *Buffer) *ReadResponse {
	r := &ReadResponse{Header: DecodeResponseHeader(buf)}
	n := buf.ReadInt32()
	if n >= 0 {
		r.Results = make([]*DataValue, n)
		for i := range r.Results {
			r.Results[i] = DecodeDataValue(buf)
		}
	}
	return r
}

// --- Write ---

func encodeWriteValue(buf *Buffer, v *WriteValue) {
	EncodeNodeID(v.NodeID, buf)
	buf.WriteUint32(uint32(v.AttributeID))
	buf.WriteString(v.IndexRange)
	EncodeDataValue(v.Value, buf)
}

func decodeWriteValue(buf *Buffer) *WriteValue {
	v := &WriteValue{}
	v.NodeID = DecodeNodeID(buf)
	v.AttributeID = AttributeID(buf.ReadUint32())
	v.IndexRange = buf.ReadString()
	v.Value = DecodeDataValue(buf)
	return v
}

func (r *WriteRequest) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	if r.NodesToWrite == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(r.NodesToWrite)))
	for _, w := range r.NodesToWrite {
		encodeWriteValue(buf, w)
	}
}

func DecodeWriteRequest(buf *Buffer) *WriteRequest {
	r := &WriteRequest{Header: DecodeRequestHeader(buf)}
	n := buf.ReadInt32()
	if n >= 0 {
		r.NodesToWrite = make([]*WriteValue, n)
		for i := range r.NodesToWrite {
			r.NodesToWrite[i] = decodeWriteValue(buf)
		}
	}
	return r
}

func (r *WriteResponse) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	encodeStatusCodeArray(buf, r.Results)
}

func DecodeWriteResponse(buf *Buffer) *WriteResponse {
	return &WriteResponse{Header: DecodeResponseHeader(buf), Results: decodeStatusCodeArray(buf)}
}

// --- Browse / BrowseNext ---

func encodeBrowseDescription(buf *Buffer, d *BrowseDescription) {
	EncodeNodeID(d.NodeID, buf)
	buf.WriteUint32(uint32(d.BrowseDirection))
	EncodeNodeID(d.ReferenceTypeID, buf)
	buf.WriteBool(d.IncludeSubtypes)
	buf.WriteUint32(d.NodeClassMask)
	buf.WriteUint32(d.ResultMask)
}

func decodeBrowseDescription(buf *Buffer) *BrowseDescription {
	d := &BrowseDescription{}
	d.NodeID = DecodeNodeID(buf)
	d.BrowseDirection = BrowseDirection(buf.ReadUint32())
	d.ReferenceTypeID = DecodeNodeID(buf)
	d.IncludeSubtypes = buf.ReadBool()
	d.NodeClassMask = buf.ReadUint32()
	d.ResultMask = buf.ReadUint32()
	return d
}

func encodeReferenceDescription(buf *Buffer, r *ReferenceDescription) {
	EncodeNodeID(r.ReferenceTypeID, buf)
	buf.WriteBool(r.IsForward)
	EncodeExpandedNodeID(r.NodeID, buf)
	EncodeQualifiedName(r.BrowseName, buf)
	EncodeLocalizedText(r.DisplayName, buf)
	buf.WriteUint32(uint32(r.NodeClass))
	EncodeExpandedNodeID(r.TypeDefinition, buf)
}

func decodeReferenceDescription(buf *Buffer) *ReferenceDescription {
	r := &ReferenceDescription{}
	r.ReferenceTypeID = DecodeNodeID(buf)
	r.IsForward = buf.ReadBool()
	r.NodeID = DecodeExpandedNodeID(buf)
	r.BrowseName = DecodeQualifiedName(buf)
	r.DisplayName = DecodeLocalizedText(buf)
	r.NodeClass = NodeClass(buf.ReadUint32())
	r.TypeDefinition = DecodeExpandedNodeID(buf)
	return r
}

func encodeBrowseResult(buf *Buffer, r *BrowseResult) {
	buf.WriteUint32(uint32(r.StatusCode))
	buf.WriteBytes(r.ContinuationPoint)
	if r.References == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(r.References)))
	for _, ref := range r.References {
		encodeReferenceDescription(buf, ref)
	}
}

func decodeBrowseResult(buf *Buffer) *BrowseResult {
	r := &BrowseResult{}
	r.StatusCode = StatusCode(buf.ReadUint32())
	r.ContinuationPoint = buf.ReadBytes()
	n := buf.ReadInt32()
	if n >= 0 {
		r.References = make([]*ReferenceDescription, n)
		for i := range r.References {
			r.References[i] = decodeReferenceDescription(buf)
		}
	}
	return r
}

func (r *BrowseRequest) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	EncodeNodeID(r.View, buf)
	buf.WriteUint32(r.RequestedMaxReferencesPerNode)
	if r.NodesToBrowse == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(r.NodesToBrowse)))
	for _, d := range r.NodesToBrowse {
		encodeBrowseDescription(buf, d)
	}
}

func DecodeBrowseRequest(buf *Buffer) *BrowseRequest {
	r := &BrowseRequest{Header: DecodeRequestHeader(buf)}
	r.View = DecodeNodeID(buf)
	r.RequestedMaxReferencesPerNode = buf.ReadUint32()
	n := buf.ReadInt32()
	if n >= 0 {
		r.NodesToBrowse = make([]*BrowseDescription, n)
		for i := range r.NodesToBrowse {
			r.NodesToBrowse[i] = decodeBrowseDescription(buf)
		}
	}
	return r
}

func (r *BrowseResponse) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	if r.Results == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(r.Results)))
	for _, res := range r.Results {
		encodeBrowseResult(buf, res)
	}
}

func DecodeBrowseResponse(buf *Buffer) *BrowseResponse {
	r := &BrowseResponse{Header: DecodeResponseHeader(buf)}
	n := buf.ReadInt32()
	if n >= 0 {
		r.Results = make([]*BrowseResult, n)
		for i := range r.Results {
			r.Results[i] = decodeBrowseResult(buf)
		}
	}
	return r
}

func (r *BrowseNextRequest) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	buf.WriteBool(r.ReleaseContinuationPoints)
	encodeBytesArray(buf, r.ContinuationPoints)
}

func DecodeBrowseNextRequest(buf *Buffer) *BrowseNextRequest {
	r := &BrowseNextRequest{Header: DecodeRequestHeader(buf)}
	r.ReleaseContinuationPoints = buf.ReadBool()
	r.ContinuationPoints = decodeBytesArray(buf)
	return r
}

func (r *BrowseNextResponse) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	if r.Results == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(r.Results)))
	for _, res := range r.Results {
		encodeBrowseResult(buf, res)
	}
}

func DecodeBrowseNextResponse(buf *Buffer) *BrowseNextResponse {
	r := &BrowseNextResponse{Header: DecodeResponseHeader(buf)}
	n := buf.ReadInt32()
	if n >= 0 {
		r.Results = make([]*BrowseResult, n)
		for i := range r.Results {
			r.Results[i] = decodeBrowseResult(buf)
		}
	}
	return r
}

// --- Call ---

func encodeCallMethodRequest(buf *Buffer, c *CallMethodRequest) {
	EncodeNodeID(c.ObjectID, buf)
	EncodeNodeID(c.MethodID, buf)
	encodeVariantArray(buf, c.InputArguments)
}

func decodeCallMethodRequest(buf *Buffer) *CallMethodRequest {
	c := &CallMethodRequest{}
	c.ObjectID = DecodeNodeID(buf)
	c.MethodID = DecodeNodeID(buf)
	c.InputArguments = decodeVariantArray(buf)
	return c
}

func encodeCallMethodResult(buf *Buffer, c *CallMethodResult) {
	buf.WriteUint32(uint32(c.StatusCode))
	encodeStatusCodeArray(buf, c.InputArgumentResults)
	buf.WriteInt32(-1) // InputArgumentDiagnosticInfos, unused
	encodeVariantArray(buf, c.OutputArguments)
}

func decodeCallMethodResult(buf *Buffer) *CallMethodResult {
	c := &CallMethodResult{}
	c.StatusCode = StatusCode(buf.ReadUint32())
	c.InputArgumentResults = decodeStatusCodeArray(buf)
	_ = buf.ReadInt32() // InputArgumentDiagnosticInfos
	c.OutputArguments = decodeVariantArray(buf)
	return c
}

func (r *CallRequest) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	if r.MethodsToCall == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(r.MethodsToCall)))
	for _, c := range r.MethodsToCall {
		encodeCallMethodRequest(buf, c)
	}
}

func DecodeCallRequest(buf *Buffer) *CallRequest {
	r := &CallRequest{Header: DecodeRequestHeader(buf)}
	n := buf.ReadInt32()
	if n >= 0 {
		r.MethodsToCall = make([]*CallMethodRequest, n)
		for i := range r.MethodsToCall {
			r.MethodsToCall[i] = decodeCallMethodRequest(buf)
		}
	}
	return r
}

func (r *CallResponse) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	if r.Results == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(r.Results)))
	for _, res := range r.Results {
		encodeCallMethodResult(buf, res)
	}
}

func DecodeCallResponse(buf *Buffer) *CallResponse {
	r := &CallResponse{Header: DecodeResponseHeader(buf)}
	n := buf.ReadInt32()
	if n >= 0 {
		r.Results = make([]*CallMethodResult, n)
		for i := range r.Results {
			r.Results[i] = decodeCallMethodResult(buf)
		}
	}
	return r
}

// --- Session lifecycle ---

func encodeSignatureData(buf *Buffer, s *SignatureData) {
	if s == nil {
		buf.WriteString("")
		buf.WriteBytes(nil)
		return
	}
	buf.WriteString(s.Algorithm)
	buf.WriteBytes(s.Signature)
}

func decodeSignatureData(buf *Buffer) *SignatureData {
	return &SignatureData{Algorithm: buf.ReadString(), Signature: buf.ReadBytes()}
}

func encodeApplicationDescription(buf *Buffer, a *ApplicationDescription) {
	buf.WriteString(a.ApplicationURI)
	buf.WriteString(a.ProductURI)
	EncodeLocalizedText(a.ApplicationName, buf)
	buf.WriteUint32(a.ApplicationType)
	buf.WriteString(a.GatewayServerURI)
	buf.WriteString(a.DiscoveryProfileURI)
	encodeStringArray(buf, a.DiscoveryURLs)
}

func decodeApplicationDescription(buf *Buffer) *ApplicationDescription {
	a := &ApplicationDescription{}
	a.ApplicationURI = buf.ReadString()
	a.ProductURI = buf.ReadString()
	a.ApplicationName = DecodeLocalizedText(buf)
	a.ApplicationType = buf.ReadUint32()
	a.GatewayServerURI = buf.ReadString()
	a.DiscoveryProfileURI = buf.ReadString()
	a.DiscoveryURLs = decodeStringArray(buf)
	return a
}

func (r *CreateSessionRequest) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	encodeApplicationDescription(buf, r.ClientDescription)
	buf.WriteString(r.ServerURI)
	buf.WriteString(r.EndpointURL)
	buf.WriteString(r.SessionName)
	buf.WriteBytes(r.ClientNonce)
	buf.WriteBytes(r.ClientCertificate)
	buf.WriteFloat64(r.RequestedSessionTimeout)
	buf.WriteUint32(r.MaxResponseMessageSize)
}

func DecodeCreateSessionRequest(buf *Buffer) *CreateSessionRequest {
	r := &CreateSessionRequest{Header: DecodeRequestHeader(buf)}
	r.ClientDescription = decodeApplicationDescription(buf)
	r.ServerURI = buf.ReadString()
	r.EndpointURL = buf.ReadString()
	r.SessionName = buf.ReadString()
	r.ClientNonce = buf.ReadBytes()
	r.ClientCertificate = buf.ReadBytes()
	r.RequestedSessionTimeout = buf.ReadFloat64()
	r.MaxResponseMessageSize = buf.ReadUint32()
	return r
}

func (r *CreateSessionResponse) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	EncodeNodeID(r.SessionID, buf)
	EncodeNodeID(r.AuthenticationToken, buf)
	buf.WriteFloat64(r.RevisedSessionTimeout)
	buf.WriteBytes(r.ServerNonce)
	buf.WriteBytes(r.ServerCertificate)
	if r.ServerEndpoints == nil {
		buf.WriteInt32(-1)
	} else {
		buf.WriteInt32(int32(len(r.ServerEndpoints)))
		for _, e := range r.ServerEndpoints {
			EncodeEndpointDescription(buf, e)
		}
	}
	buf.WriteInt32(-1) // ServerSoftwareCertificates, unused
	encodeSignatureData(buf, r.ServerSignature)
	buf.WriteUint32(r.MaxRequestMessageSize)
}

func DecodeCreateSessionResponse(buf *Buffer) *CreateSessionResponse {
	r := &CreateSessionResponse{Header: DecodeResponseHeader(buf)}
	r.SessionID = DecodeNodeID(buf)
	r.AuthenticationToken = DecodeNodeID(buf)
	r.RevisedSessionTimeout = buf.ReadFloat64()
	r.ServerNonce = buf.ReadBytes()
	r.ServerCertificate = buf.ReadBytes()
	n := buf.ReadInt32()
	if n >= 0 {
		r.ServerEndpoints = make([]*EndpointDescription, n)
		for i := range r.ServerEndpoints {
			r.ServerEndpoints[i] = DecodeEndpointDescription(buf)
		}
	}
	_ = buf.ReadInt32() // ServerSoftwareCertificates
	r.ServerSignature = decodeSignatureData(buf)
	r.MaxRequestMessageSize = buf.ReadUint32()
	return r
}

func (r *ActivateSessionRequest) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	encodeSignatureData(buf, r.ClientSignature)
	buf.WriteInt32(-1) // ClientSoftwareCertificates, unused
	encodeStringArray(buf, r.LocaleIDs)
	EncodeExtensionObject(r.UserIdentityToken, buf)
	encodeSignatureData(buf, r.UserTokenSignature)
}

func DecodeActivateSessionRequest(buf *Buffer) *ActivateSessionRequest {
	r := &ActivateSessionRequest{Header: DecodeRequestHeader(buf)}
	r.ClientSignature = decodeSignatureData(buf)
	_ = buf.ReadInt32()
	r.LocaleIDs = decodeStringArray(buf)
	r.UserIdentityToken = DecodeExtensionObject(buf)
	r.UserTokenSignature = decodeSignatureData(buf)
	return r
}

func (r *ActivateSessionResponse) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	buf.WriteBytes(r.ServerNonce)
	encodeStatusCodeArray(buf, r.Results)
	buf.WriteInt32(-1) // DiagnosticInfos, unused
}

func DecodeActivateSessionResponse(buf *Buffer) *ActivateSessionResponse {
	r := &ActivateSessionResponse{Header: DecodeResponseHeader(buf)}
	r.ServerNonce = buf.ReadBytes()
	r.Results = decodeStatusCodeArray(buf)
	_ = buf.ReadInt32()
	return r
}

func (r *CloseSessionRequest) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	buf.WriteBool(r.DeleteSubscriptions)
}

func DecodeCloseSessionRequest(buf *Buffer) *CloseSessionRequest {
	return &CloseSessionRequest{Header: DecodeRequestHeader(buf), DeleteSubscriptions: buf.ReadBool()}
}

func (r *CloseSessionResponse) Encode(buf *Buffer) { r.Header.Encode(buf) }

func DecodeCloseSessionResponse(buf *Buffer) *CloseSessionResponse {
	return &CloseSessionResponse{Header: DecodeResponseHeader(buf)}
}

// --- Identity tokens ---

func (t *AnonymousIdentityToken) Encode() ([]byte, error) {
	buf := NewBuffer(nil)
	buf.WriteString(t.PolicyID)
	return buf.Bytes(), buf.Error()
}

func (t *AnonymousIdentityToken) Decode(b []byte) (int, error) {
	buf := NewBuffer(b)
	t.PolicyID = buf.ReadString()
	return buf.Pos(), buf.Error()
}

func (t *UserNameIdentityToken) Encode() ([]byte, error) {
	buf := NewBuffer(nil)
	buf.WriteString(t.PolicyID)
	buf.WriteString(t.UserName)
	buf.WriteBytes(t.Password)
	buf.WriteString(t.EncryptionAlgorithm)
	return buf.Bytes(), buf.Error()
}

func (t *UserNameIdentityToken) Decode(b []byte) (int, error) {
	buf := NewBuffer(b)
	t.PolicyID = buf.ReadString()
	t.UserName = buf.ReadString()
	t.Password = buf.ReadBytes()
	t.EncryptionAlgorithm = buf.ReadString()
	return buf.Pos(), buf.Error()
}

func (t *X509IdentityToken) Encode() ([]byte, error) {
	buf := NewBuffer(nil)
	buf.WriteString(t.PolicyID)
	buf.WriteBytes(t.CertificateData)
	return buf.Bytes(), buf.Error()
}

func (t *X509IdentityToken) Decode(b []byte) (int, error) {
	buf := NewBuffer(b)
	t.PolicyID = buf.ReadString()
	t.CertificateData = buf.ReadBytes()
	return buf.Pos(), buf.Error()
}

// --- Subscriptions ---

func (r *CreateSubscriptionRequest) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	buf.WriteFloat64(r.RequestedPublishingInterval)
	buf.WriteUint32(r.RequestedLifetimeCount)
	buf.WriteUint32(r.RequestedMaxKeepAliveCount)
	buf.WriteUint32(r.MaxNotificationsPerPublish)
	buf.WriteBool(r.PublishingEnabled)
	_ = buf.WriteByte(r.Priority)
}

func DecodeCreateSubscriptionRequest(buf *Buffer) *CreateSubscriptionRequest {
	r := &CreateSubscriptionRequest{Header: DecodeRequestHeader(buf)}
	r.RequestedPublishingInterval = buf.ReadFloat64()
	r.RequestedLifetimeCount = buf.ReadUint32()
	r.RequestedMaxKeepAliveCount = buf.ReadUint32()
	r.MaxNotificationsPerPublish = buf.ReadUint32()
	r.PublishingEnabled = buf.ReadBool()
	r.Priority = buf.ReadByte()
	return r
}

func (r *CreateSubscriptionResponse) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	buf.WriteUint32(r.SubscriptionID)
	buf.WriteFloat64(r.RevisedPublishingInterval)
	buf.WriteUint32(r.RevisedLifetimeCount)
	buf.WriteUint32(r.RevisedMaxKeepAliveCount)
}

func DecodeCreateSubscriptionResponse(buf *Buffer) *CreateSubscriptionResponse {
	r := &CreateSubscriptionResponse{Header: DecodeResponseHeader(buf)}
	r.SubscriptionID = buf.ReadUint32()
	r.RevisedPublishingInterval = buf.ReadFloat64()
	r.RevisedLifetimeCount = buf.ReadUint32()
	r.RevisedMaxKeepAliveCount = buf.ReadUint32()
	return r
}

func (r *ModifySubscriptionRequest) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	buf.WriteUint32(r.SubscriptionID)
	buf.WriteFloat64(r.RequestedPublishingInterval)
	buf.WriteUint32(r.RequestedLifetimeCount)
	buf.WriteUint32(r.RequestedMaxKeepAliveCount)
	buf.WriteUint32(r.MaxNotificationsPerPublish)
	_ = buf.WriteByte(r.Priority)
}

func DecodeModifySubscriptionRequest(buf *Buffer) *ModifySubscriptionRequest {
	r := &ModifySubscriptionRequest{Header: DecodeRequestHeader(buf)}
	r.SubscriptionID = buf.ReadUint32()
	r.RequestedPublishingInterval = buf.ReadFloat64()
	r.RequestedLifetimeCount = buf.ReadUint32()
	r.RequestedMaxKeepAliveCount = buf.ReadUint32()
	r.MaxNotificationsPerPublish = buf.ReadUint32()
	r.Priority = buf.ReadByte()
	return r
}

func (r *ModifySubscriptionResponse) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	buf.WriteFloat64(r.RevisedPublishingInterval)
	buf.WriteUint32(r.RevisedLifetimeCount)
	buf.WriteUint32(r.RevisedMaxKeepAliveCount)
}

func DecodeModifySubscriptionResponse(buf *Buffer) *ModifySubscriptionResponse {
	r := &ModifySubscriptionResponse{Header: DecodeResponseHeader(buf)}
	r.RevisedPublishingInterval = buf.ReadFloat64()
	r.RevisedLifetimeCount = buf.ReadUint32()
	r.RevisedMaxKeepAliveCount = buf.ReadUint32()
	return r
}

func (r *DeleteSubscriptionsRequest) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	encodeUint32Array(buf, r.SubscriptionIDs)
}

func DecodeDeleteSubscriptionsRequest(buf *Buffer) *DeleteSubscriptionsRequest {
	return &DeleteSubscriptionsRequest{Header: DecodeRequestHeader(buf), SubscriptionIDs: decodeUint32Array(buf)}
}

func (r *DeleteSubscriptionsResponse) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	encodeStatusCodeArray(buf, r.Results)
}

func DecodeDeleteSubscriptionsResponse(buf *Buffer) *DeleteSubscriptionsResponse {
	return &DeleteSubscriptionsResponse{Header: DecodeResponseHeader(buf), Results: decodeStatusCodeArray(buf)}
}

func (r *SetPublishingModeRequest) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	buf.WriteBool(r.PublishingEnabled)
	encodeUint32Array(buf, r.SubscriptionIDs)
}

func DecodeSetPublishingModeRequest(buf *Buffer) *SetPublishingModeRequest {
	r := &SetPublishingModeRequest{Header: DecodeRequestHeader(buf)}
	r.PublishingEnabled = buf.ReadBool()
	r.SubscriptionIDs = decodeUint32Array(buf)
	return r
}

func (r *SetPublishingModeResponse) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	encodeStatusCodeArray(buf, r.Results)
}

func DecodeSetPublishingModeResponse(buf *Buffer) *SetPublishingModeResponse {
	return &SetPublishingModeResponse{Header: DecodeResponseHeader(buf), Results: decodeStatusCodeArray(buf)}
}

// --- Monitored items ---

func encodeMonitoringParameters(buf *Buffer, p MonitoringParameters) {
	buf.WriteUint32(p.ClientHandle)
	buf.WriteFloat64(p.SamplingInterval)
	EncodeExtensionObject(p.Filter, buf)
	buf.WriteUint32(p.QueueSize)
	buf.WriteBool(p.DiscardOldest)
}

func decodeMonitoringParameters(buf *Buffer) MonitoringParameters {
	var p MonitoringParameters
	p.ClientHandle = buf.ReadUint32()
	p.SamplingInterval = buf.ReadFloat64()
	p.Filter = DecodeExtensionObject(buf)
	p.QueueSize = buf.ReadUint32()
	p.DiscardOldest = buf.ReadBool()
	return p
}

func encodeMonitoredItemCreateRequest(buf *Buffer, r *MonitoredItemCreateRequest) {
	encodeReadValueID(buf, r.ItemToMonitor)
	buf.WriteUint32(uint32(r.MonitoringMode))
	encodeMonitoringParameters(buf, r.RequestedParameters)
}

func decodeMonitoredItemCreateRequest(buf *Buffer) *MonitoredItemCreateRequest {
	r := &MonitoredItemCreateRequest{}
	r.ItemToMonitor = decodeReadValueID(buf)
	r.MonitoringMode = MonitoringMode(buf.ReadUint32())
	r.RequestedParameters = decodeMonitoringParameters(buf)
	return r
}

func encodeMonitoredItemCreateResult(buf *Buffer, r *MonitoredItemCreateResult) {
	buf.WriteUint32(uint32(r.StatusCode))
	buf.WriteUint32(r.MonitoredItemID)
	buf.WriteFloat64(r.RevisedSamplingInterval)
	buf.WriteUint32(r.RevisedQueueSize)
	EncodeExtensionObject(r.FilterResult, buf)
}

func decodeMonitoredItemCreateResult(buf *Buffer) *MonitoredItemCreateResult {
	r := &MonitoredItemCreateResult{}
	r.StatusCode = StatusCode(buf.ReadUint32())
	r.MonitoredItemID = buf.ReadUint32()
	r.RevisedSamplingInterval = buf.ReadFloat64()
	r.RevisedQueueSize = buf.ReadUint32()
	r.FilterResult = DecodeExtensionObject(buf)
	return r
}

func (r *CreateMonitoredItemsRequest) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	buf.WriteUint32(r.SubscriptionID)
	buf.WriteUint32(uint32(r.TimestampsToReturn))
	if r.ItemsToCreate == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(r.ItemsToCreate)))
	for _, i := range r.ItemsToCreate {
		encodeMonitoredItemCreateRequest(buf, i)
	}
}

func DecodeCreateMonitoredItemsRequest(buf *Buffer) *CreateMonitoredItemsRequest {
	r := &CreateMonitoredItemsRequest{Header: DecodeRequestHeader(buf)}
	r.SubscriptionID = buf.ReadUint32()
	r.TimestampsToReturn = TimestampsToReturn(buf.ReadUint32())
	n := buf.ReadInt32()
	if n >= 0 {
		r.ItemsToCreate = make([]*MonitoredItemCreateRequest, n)
		for i := range r.ItemsToCreate {
			r.ItemsToCreate[i] = decodeMonitoredItemCreateRequest(buf)
		}
	}
	return r
}

func (r *CreateMonitoredItemsResponse) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	if r.Results == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(r.Results)))
	for _, res := range r.Results {
		encodeMonitoredItemCreateResult(buf, res)
	}
}

func DecodeCreateMonitoredItemsResponse(buf *Buffer) *CreateMonitoredItemsResponse {
	r := &CreateMonitoredItemsResponse{Header: DecodeResponseHeader(buf)}
	n := buf.ReadInt32()
	if n >= 0 {
		r.Results = make([]*MonitoredItemCreateResult, n)
		for i := range r.Results {
			r.Results[i] = decodeMonitoredItemCreateResult(buf)
		}
	}
	return r
}

func encodeMonitoredItemModifyRequest(buf *Buffer, r *MonitoredItemModifyRequest) {
	buf.WriteUint32(r.MonitoredItemID)
	encodeMonitoringParameters(buf, r.RequestedParameters)
}

func decodeMonitoredItemModifyRequest(buf *Buffer) *MonitoredItemModifyRequest {
	r := &MonitoredItemModifyRequest{}
	r.MonitoredItemID = buf.ReadUint32()
	r.RequestedParameters = decodeMonitoringParameters(buf)
	return r
}

func encodeMonitoredItemModifyResult(buf *Buffer, r *MonitoredItemModifyResult) {
	buf.WriteUint32(uint32(r.StatusCode))
	buf.WriteFloat64(r.RevisedSamplingInterval)
	buf.WriteUint32(r.RevisedQueueSize)
	EncodeExtensionObject(r.FilterResult, buf)
}

func decodeMonitoredItemModifyResult(buf *Buffer) *MonitoredItemModifyResult {
	r := &MonitoredItemModifyResult{}
	r.StatusCode = StatusCode(buf.ReadUint32())
	r.RevisedSamplingInterval = buf.ReadFloat64()
	r.RevisedQueueSize = buf.ReadUint32()
	r.FilterResult = DecodeExtensionObject(buf)
	return r
}

func (r *ModifyMonitoredItemsRequest) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	buf.WriteUint32(r.SubscriptionID)
	buf.WriteUint32(uint32(r.TimestampsToReturn))
	if r.ItemsToModify == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(r.ItemsToModify)))
	for _, i := range r.ItemsToModify {
		encodeMonitoredItemModifyRequest(buf, i)
	}
}

func DecodeModifyMonitoredItemsRequest(buf *Buffer) *ModifyMonitoredItemsRequest {
	r := &ModifyMonitoredItemsRequest{Header: DecodeRequestHeader(buf)}
	r.SubscriptionID = buf.ReadUint32()
	r.TimestampsToReturn = TimestampsToReturn(buf.ReadUint32())
	n := buf.ReadInt32()
	if n >= 0 {
		r.ItemsToModify = make([]*MonitoredItemModifyRequest, n)
		for i := range r.ItemsToModify {
			r.ItemsToModify[i] = decodeMonitoredItemModifyRequest(buf)
		}
	}
	return r
}

func (r *ModifyMonitoredItemsResponse) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	if r.Results == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(r.Results)))
	for _, res := range r.Results {
		encodeMonitoredItemModifyResult(buf, res)
	}
}

func DecodeModifyMonitoredItemsResponse(buf *Buffer) *ModifyMonitoredItemsResponse {
	r := &ModifyMonitoredItemsResponse{Header: DecodeResponseHeader(buf)}
	n := buf.ReadInt32()
	if n >= 0 {
		r.Results = make([]*MonitoredItemModifyResult, n)
		for i := range r.Results {
			r.Results[i] = decodeMonitoredItemModifyResult(buf)
		}
	}
	return r
}

func (r *SetMonitoringModeRequest) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	buf.WriteUint32(r.SubscriptionID)
	buf.WriteUint32(uint32(r.MonitoringMode))
	encodeUint32Array(buf, r.MonitoredItemIDs)
}

func DecodeSetMonitoringModeRequest(buf *Buffer) *SetMonitoringModeRequest {
	r := &SetMonitoringModeRequest{Header: DecodeRequestHeader(buf)}
	r.SubscriptionID = buf.ReadUint32()
	r.MonitoringMode = MonitoringMode(buf.ReadUint32())
	r.MonitoredItemIDs = decodeUint32Array(buf)
	return r
}

func (r *SetMonitoringModeResponse) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	encodeStatusCodeArray(buf, r.Results)
}

func DecodeSetMonitoringModeResponse(buf *Buffer) *SetMonitoringModeResponse {
	return &SetMonitoringModeResponse{Header: DecodeResponseHeader(buf), Results: decodeStatusCodeArray(buf)}
}

func (r *DeleteMonitoredItemsRequest) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	buf.WriteUint32(r.SubscriptionID)
	encodeUint32Array(buf, r.MonitoredItemIDs)
}

func DecodeDeleteMonitoredItemsRequest(buf *Buffer) *DeleteMonitoredItemsRequest {
	r := &DeleteMonitoredItemsRequest{Header: DecodeRequestHeader(buf)}
	r.SubscriptionID = buf.ReadUint32()
	r.MonitoredItemIDs = decodeUint32Array(buf)
	return r
}

func (r *DeleteMonitoredItemsResponse) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	encodeStatusCodeArray(buf, r.Results)
}

func DecodeDeleteMonitoredItemsResponse(buf *Buffer) *DeleteMonitoredItemsResponse {
	return &DeleteMonitoredItemsResponse{Header: DecodeResponseHeader(buf), Results: decodeStatusCodeArray(buf)}
}

// --- Publish / Republish ---

func encodeSubscriptionAcknowledgement(buf *Buffer, a *SubscriptionAcknowledgement) {
	buf.WriteUint32(a.SubscriptionID)
	buf.WriteUint32(a.SequenceNumber)
}

func decodeSubscriptionAcknowledgement(buf *Buffer) *SubscriptionAcknowledgement {
	return &SubscriptionAcknowledgement{SubscriptionID: buf.ReadUint32(), SequenceNumber: buf.ReadUint32()}
}

func encodeMonitoredItemNotification(buf *Buffer, n *MonitoredItemNotification) {
	buf.WriteUint32(n.ClientHandle)
	EncodeDataValue(n.Value, buf)
}

func decodeMonitoredItemNotification(buf *Buffer) *MonitoredItemNotification {
	return &MonitoredItemNotification{ClientHandle: buf.ReadUint32(), Value: DecodeDataValue(buf)}
}

func encodeDataChangeNotification(buf *Buffer, d *DataChangeNotification) {
	if d.MonitoredItems == nil {
		buf.WriteInt32(-1)
	} else {
		buf.WriteInt32(int32(len(d.MonitoredItems)))
		for _, m := range d.MonitoredItems {
			encodeMonitoredItemNotification(buf, m)
		}
	}
	buf.WriteInt32(-1) // DiagnosticInfos, unused
}

func decodeDataChangeNotification(buf *Buffer) *DataChangeNotification {
	d := &DataChangeNotification{}
	n := buf.ReadInt32()
	if n >= 0 {
		d.MonitoredItems = make([]*MonitoredItemNotification, n)
		for i := range d.MonitoredItems {
			d.MonitoredItems[i] = decodeMonitoredItemNotification(buf)
		}
	}
	_ = buf.ReadInt32()
	return d
}

func encodeEventFieldList(buf *Buffer, e *EventFieldList) {
	buf.WriteUint32(e.ClientHandle)
	encodeVariantArray(buf, e.EventFields)
}

func decodeEventFieldList(buf *Buffer) *EventFieldList {
	return &EventFieldList{ClientHandle: buf.ReadUint32(), EventFields: decodeVariantArray(buf)}
}

func encodeEventNotificationList(buf *Buffer, e *EventNotificationList) {
	if e.Events == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(e.Events)))
	for _, ev := range e.Events {
		encodeEventFieldList(buf, ev)
	}
}

func decodeEventNotificationList(buf *Buffer) *EventNotificationList {
	e := &EventNotificationList{}
	n := buf.ReadInt32()
	if n >= 0 {
		e.Events = make([]*EventFieldList, n)
		for i := range e.Events {
			e.Events[i] = decodeEventFieldList(buf)
		}
	}
	return e
}

// notificationData wraps each NotificationData union member as an
// ExtensionObject on the wire (Part 4 §7.24), identified by the
// binary-encoding ids of DataChangeNotification (811) and
// EventNotificationList (914); other notification kinds are skipped on
// decode.
var (
	typeIDDataChangeNotification = NewNumericNodeID(0, 811)
	typeIDEventNotificationList  = NewNumericNodeID(0, 914)
)

func encodeNotificationMessage(buf *Buffer, m *NotificationMessage) {
	buf.WriteUint32(m.SequenceNumber)
	buf.WriteInt64(EncodeDateTime(m.PublishTime))
	total := len(m.DataChanges) + len(m.Events)
	buf.WriteInt32(int32(total))
	for _, dc := range m.DataChanges {
		inner := NewBuffer(nil)
		encodeDataChangeNotification(inner, dc)
		eo := &ExtensionObject{TypeID: typeIDDataChangeNotification, Encoding: 1, raw: inner.Bytes()}
		EncodeExtensionObject(eo, buf)
	}
	for _, ev := range m.Events {
		inner := NewBuffer(nil)
		encodeEventNotificationList(inner, ev)
		eo := &ExtensionObject{TypeID: typeIDEventNotificationList, Encoding: 1, raw: inner.Bytes()}
		EncodeExtensionObject(eo, buf)
	}
}

func decodeNotificationMessage(buf *Buffer) *NotificationMessage {
	m := &NotificationMessage{}
	m.SequenceNumber = buf.ReadUint32()
	m.PublishTime = DecodeDateTime(buf.ReadInt64())
	n := buf.ReadInt32()
	for i := int32(0); i < n; i++ {
		eo := DecodeExtensionObject(buf)
		if eo.TypeID == nil {
			continue
		}
		body, _ := eo.Value.([]byte)
		if body == nil {
			body = eo.raw
		}
		inner := NewBuffer(body)
		switch {
		case eo.TypeID.Equal(typeIDDataChangeNotification):
			m.DataChanges = append(m.DataChanges, decodeDataChangeNotification(inner))
		case eo.TypeID.Equal(typeIDEventNotificationList):
			m.Events = append(m.Events, decodeEventNotificationList(inner))
		}
	}
	return m
}

func (r *PublishRequest) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	if r.SubscriptionAcknowledgements == nil {
		buf.WriteInt32(-1)
		return
	}
	buf.WriteInt32(int32(len(r.SubscriptionAcknowledgements)))
	for _, a := range r.SubscriptionAcknowledgements {
		encodeSubscriptionAcknowledgement(buf, a)
	}
}

func DecodePublishRequest(buf *Buffer) *PublishRequest {
	r := &PublishRequest{Header: DecodeRequestHeader(buf)}
	n := buf.ReadInt32()
	if n >= 0 {
		r.SubscriptionAcknowledgements = make([]*SubscriptionAcknowledgement, n)
		for i := range r.SubscriptionAcknowledgements {
			r.SubscriptionAcknowledgements[i] = decodeSubscriptionAcknowledgement(buf)
		}
	}
	return r
}

func (r *PublishResponse) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	buf.WriteUint32(r.SubscriptionID)
	encodeUint32Array(buf, r.AvailableSequenceNumbers)
	buf.WriteBool(r.MoreNotifications)
	encodeNotificationMessage(buf, r.NotificationMessage)
	encodeStatusCodeArray(buf, r.Results)
	buf.WriteInt32(-1) // DiagnosticInfos, unused
}

func DecodePublishResponse(buf *Buffer) *PublishResponse {
	r := &PublishResponse{Header: DecodeResponseHeader(buf)}
	r.SubscriptionID = buf.ReadUint32()
	r.AvailableSequenceNumbers = decodeUint32Array(buf)
	r.MoreNotifications = buf.ReadBool()
	r.NotificationMessage = decodeNotificationMessage(buf)
	r.Results = decodeStatusCodeArray(buf)
	_ = buf.ReadInt32()
	return r
}

func (r *RepublishRequest) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	buf.WriteUint32(r.SubscriptionID)
	buf.WriteUint32(r.RetransmitSequenceNumber)
}

func DecodeRepublishRequest(buf *Buffer) *RepublishRequest {
	r := &RepublishRequest{Header: DecodeRequestHeader(buf)}
	r.SubscriptionID = buf.ReadUint32()
	r.RetransmitSequenceNumber = buf.ReadUint32()
	return r
}

func (r *RepublishResponse) Encode(buf *Buffer) {
	r.Header.Encode(buf)
	encodeNotificationMessage(buf, r.NotificationMessage)
}

func DecodeRepublishResponse(buf *Buffer) *RepublishResponse {
	r := &RepublishResponse{Header: DecodeResponseHeader(buf)}
	r.NotificationMessage = decodeNotificationMessage(buf)
	return r
}
