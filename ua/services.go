package ua

import "time"

// RequestHeader precedes every service request body (Part 4 §7.33).
type RequestHeader struct {
	AuthenticationToken *NodeID
	Timestamp           time.Time
	RequestHandle       uint32
	ReturnDiagnostics   uint32
	AuditEntryID        string
	TimeoutHint         uint32
}

func (h *RequestHeader) Encode(buf *Buffer) {
	EncodeNodeID(h.AuthenticationToken, buf)
	buf.WriteInt64(EncodeDateTime(h.Timestamp))
	buf.WriteUint32(h.RequestHandle)
	buf.WriteUint32(h.ReturnDiagnostics)
	buf.WriteString(h.AuditEntryID)
	buf.WriteUint32(h.TimeoutHint)
	EncodeExtensionObject(nil, buf) // AdditionalHeader, unused
}

func DecodeRequestHeader(buf *Buffer) *RequestHeader {
	h := &RequestHeader{}
	h.AuthenticationToken = DecodeNodeID(buf)
	h.Timestamp = DecodeDateTime(buf.ReadInt64())
	h.RequestHandle = buf.ReadUint32()
	h.ReturnDiagnostics = buf.ReadUint32()
	h.AuditEntryID = buf.ReadString()
	h.TimeoutHint = buf.ReadUint32()
	_ = DecodeExtensionObject(buf)
	return h
}

// ResponseHeader precedes every service response body (Part 4 §7.34).
type ResponseHeader struct {
	Timestamp         time.Time
	RequestHandle     uint32
	ServiceResult     StatusCode
	StringTable       []string
}

func (h *ResponseHeader) Encode(buf *Buffer) {
	buf.WriteInt64(EncodeDateTime(h.Timestamp))
	buf.WriteUint32(h.RequestHandle)
	buf.WriteUint32(uint32(h.ServiceResult))
	// DiagnosticInfo omitted (none requested in ReturnDiagnostics).
	buf.WriteInt32(int32(len(h.StringTable)))
	for _, s := range h.StringTable {
		buf.WriteString(s)
	}
	EncodeExtensionObject(nil, buf)
}

func DecodeResponseHeader(buf *Buffer) *ResponseHeader {
	h := &ResponseHeader{}
	h.Timestamp = DecodeDateTime(buf.ReadInt64())
	h.RequestHandle = buf.ReadUint32()
	h.ServiceResult = StatusCode(buf.ReadUint32())
	n := buf.ReadInt32()
	if n > 0 {
		h.StringTable = make([]string, n)
		for i := range h.StringTable {
			h.StringTable[i] = buf.ReadString()
		}
	}
	_ = DecodeExtensionObject(buf)
	return h
}

// EndpointDescription describes one server endpoint (Part 4 §7.10).
type EndpointDescription struct {
	EndpointURL         string
	SecurityPolicyURI   string
	SecurityMode        MessageSecurityMode
	SecurityLevel       byte
	ServerCertificate   []byte
	UserIdentityTokens  []UserTokenPolicy
}

// UserTokenPolicy describes one accepted identity token kind (Part 4 §7.42).
type UserTokenPolicy struct {
	PolicyID          string
	TokenType         UserTokenType
	SecurityPolicyURI string
}

// GetEndpointsRequest / GetEndpointsResponse (Part 4 §5.4.4).
type GetEndpointsRequest struct {
	Header       *RequestHeader
	EndpointURL  string
	ProfileURIs  []string
}

type GetEndpointsResponse struct {
	Header    *ResponseHeader
	Endpoints []*EndpointDescription
}

// ReadValueID names one (node, attribute) pair to read or monitor (Part 4 §7.30).
type ReadValueID struct {
	NodeID       *NodeID
	AttributeID  AttributeID
	IndexRange   string
}

// ReadRequest / ReadResponse (Part 4 §5.10.2).
type ReadRequest struct {
	Header             *RequestHeader
	MaxAge             float64
	TimestampsToReturn TimestampsToReturn
	NodesToRead        []*ReadValueID
}

type ReadResponse struct {
	Header  *ResponseHeader
	Results []*DataValue
}

// WriteValue pairs a (node, attribute) with the value to write (Part 4 §7.44).
type WriteValue struct {
	NodeID      *NodeID
	AttributeID AttributeID
	IndexRange  string
	Value       *DataValue
}

// WriteRequest / WriteResponse (Part 4 §5.10.4).
type WriteRequest struct {
	Header      *RequestHeader
	NodesToWrite []*WriteValue
}

type WriteResponse struct {
	Header  *ResponseHeader
	Results []StatusCode
}

// BrowseDescription describes one Browse starting point and filter (Part 4 §7.4).
type BrowseDescription struct {
	NodeID          *NodeID
	BrowseDirection BrowseDirection
	ReferenceTypeID *NodeID
	IncludeSubtypes bool
	NodeClassMask   uint32
	ResultMask      uint32
}

// ReferenceDescription is one reference returned by Browse (Part 4 §7.25).
type ReferenceDescription struct {
	ReferenceTypeID *NodeID
	IsForward       bool
	NodeID          *ExpandedNodeID
	BrowseName      QualifiedName
	DisplayName     LocalizedText
	NodeClass       NodeClass
	TypeDefinition  *ExpandedNodeID
}

// BrowseResult is the per-node-to-browse outcome (Part 4 §7.5).
type BrowseResult struct {
	StatusCode        StatusCode
	ContinuationPoint []byte
	References        []*ReferenceDescription
}

// BrowseRequest / BrowseResponse (Part 4 §5.8.2).
type BrowseRequest struct {
	Header          *RequestHeader
	View            *NodeID
	RequestedMaxReferencesPerNode uint32
	NodesToBrowse   []*BrowseDescription
}

type BrowseResponse struct {
	Header  *ResponseHeader
	Results []*BrowseResult
}

// BrowseNextRequest / BrowseNextResponse (Part 4 §5.8.3).
type BrowseNextRequest struct {
	Header                *RequestHeader
	ReleaseContinuationPoints bool
	ContinuationPoints    [][]byte
}

type BrowseNextResponse struct {
	Header  *ResponseHeader
	Results []*BrowseResult
}

// CallMethodRequest invokes one method (Part 4 §7.6).
type CallMethodRequest struct {
	ObjectID       *NodeID
	MethodID       *NodeID
	InputArguments []*Variant
}

// CallMethodResult is the per-call outcome (Part 4 §7.7).
type CallMethodResult struct {
	StatusCode          StatusCode
	InputArgumentResults []StatusCode
	OutputArguments      []*Variant
}

// CallRequest / CallResponse (Part 4 §5.11.2).
type CallRequest struct {
	Header        *RequestHeader
	MethodsToCall []*CallMethodRequest
}

type CallResponse struct {
	Header  *ResponseHeader
	Results []*CallMethodResult
}

// SignedSoftwareCertificate, SignatureData and ApplicationDescription are
// simplified to the fields the client/session layer actually threads
// through; full PKI negotiation detail lives in securitypolicy.
type SignatureData struct {
	Algorithm string
	Signature []byte
}

type ApplicationDescription struct {
	ApplicationURI string
	ProductURI     string
	ApplicationName LocalizedText
	ApplicationType uint32
	GatewayServerURI string
	DiscoveryProfileURI string
	DiscoveryURLs  []string
}

// CreateSessionRequest / CreateSessionResponse (Part 4 §5.6.2).
type CreateSessionRequest struct {
	Header                  *RequestHeader
	ClientDescription       *ApplicationDescription
	ServerURI               string
	EndpointURL             string
	SessionName             string
	ClientNonce             []byte
	ClientCertificate       []byte
	RequestedSessionTimeout float64
	MaxResponseMessageSize  uint32
}

type CreateSessionResponse struct {
	Header                  *ResponseHeader
	SessionID               *NodeID
	AuthenticationToken     *NodeID
	RevisedSessionTimeout   float64
	ServerNonce             []byte
	ServerCertificate       []byte
	ServerEndpoints         []*EndpointDescription
	ServerSignature         *SignatureData
	MaxRequestMessageSize   uint32
}

// AnonymousIdentityToken / UserNameIdentityToken / X509IdentityToken are the
// three identity kinds the session layer may submit (Part 4 §7.43).
type AnonymousIdentityToken struct {
	PolicyID string
}

type UserNameIdentityToken struct {
	PolicyID            string
	UserName            string
	Password            []byte // ciphertext: server-certificate-encrypted per the session's security policy
	EncryptionAlgorithm string
}

type X509IdentityToken struct {
	PolicyID        string
	CertificateData []byte
}

// ActivateSessionRequest / ActivateSessionResponse (Part 4 §5.6.3).
type ActivateSessionRequest struct {
	Header            *RequestHeader
	ClientSignature   *SignatureData
	LocaleIDs         []string
	UserIdentityToken *ExtensionObject
	UserTokenSignature *SignatureData
}

type ActivateSessionResponse struct {
	Header      *ResponseHeader
	ServerNonce []byte
	Results     []StatusCode
}

// CloseSessionRequest / CloseSessionResponse (Part 4 §5.6.4).
type CloseSessionRequest struct {
	Header            *RequestHeader
	DeleteSubscriptions bool
}

type CloseSessionResponse struct {
	Header *ResponseHeader
}

// --- Subscriptions & monitored items (Part 4 §5.13, §5.12) ---

// CreateSubscriptionRequest / CreateSubscriptionResponse.
type CreateSubscriptionRequest struct {
	Header                     *RequestHeader
	RequestedPublishingInterval float64
	RequestedLifetimeCount      uint32
	RequestedMaxKeepAliveCount  uint32
	MaxNotificationsPerPublish  uint32
	PublishingEnabled           bool
	Priority                    byte
}

type CreateSubscriptionResponse struct {
	Header                    *ResponseHeader
	SubscriptionID            uint32
	RevisedPublishingInterval float64
	RevisedLifetimeCount      uint32
	RevisedMaxKeepAliveCount  uint32
}

// ModifySubscriptionRequest / ModifySubscriptionResponse.
type ModifySubscriptionRequest struct {
	Header                     *RequestHeader
	SubscriptionID              uint32
	RequestedPublishingInterval float64
	RequestedLifetimeCount      uint32
	RequestedMaxKeepAliveCount  uint32
	MaxNotificationsPerPublish  uint32
	Priority                    byte
}

type ModifySubscriptionResponse struct {
	Header                    *ResponseHeader
	RevisedPublishingInterval float64
	RevisedLifetimeCount      uint32
	RevisedMaxKeepAliveCount  uint32
}

// DeleteSubscriptionsRequest / DeleteSubscriptionsResponse.
type DeleteSubscriptionsRequest struct {
	Header          *RequestHeader
	SubscriptionIDs []uint32
}

type DeleteSubscriptionsResponse struct {
	Header  *ResponseHeader
	Results []StatusCode
}

// SetPublishingModeRequest / SetPublishingModeResponse.
type SetPublishingModeRequest struct {
	Header            *RequestHeader
	PublishingEnabled bool
	SubscriptionIDs   []uint32
}

type SetPublishingModeResponse struct {
	Header  *ResponseHeader
	Results []StatusCode
}

// MonitoringParameters configures sampling/queueing for one monitored item
// (Part 4 §7.21).
type MonitoringParameters struct {
	ClientHandle     uint32
	SamplingInterval float64
	Filter           *ExtensionObject
	QueueSize        uint32
	DiscardOldest    bool
}

// MonitoredItemCreateRequest / MonitoredItemCreateResult (Part 4 §7.20, §7.22).
type MonitoredItemCreateRequest struct {
	ItemToMonitor  *ReadValueID
	MonitoringMode MonitoringMode
	RequestedParameters MonitoringParameters
}

type MonitoredItemCreateResult struct {
	StatusCode               StatusCode
	MonitoredItemID          uint32
	RevisedSamplingInterval  float64
	RevisedQueueSize         uint32
	FilterResult             *ExtensionObject
}

// CreateMonitoredItemsRequest / CreateMonitoredItemsResponse.
type CreateMonitoredItemsRequest struct {
	Header             *RequestHeader
	SubscriptionID     uint32
	TimestampsToReturn TimestampsToReturn
	ItemsToCreate      []*MonitoredItemCreateRequest
}

type CreateMonitoredItemsResponse struct {
	Header  *ResponseHeader
	Results []*MonitoredItemCreateResult
}

// MonitoredItemModifyRequest / MonitoredItemModifyResult.
type MonitoredItemModifyRequest struct {
	MonitoredItemID     uint32
	RequestedParameters MonitoringParameters
}

type MonitoredItemModifyResult struct {
	StatusCode              StatusCode
	RevisedSamplingInterval float64
	RevisedQueueSize        uint32
	FilterResult            *ExtensionObject
}

// ModifyMonitoredItemsRequest / ModifyMonitoredItemsResponse.
type ModifyMonitoredItemsRequest struct {
	Header             *RequestHeader
	SubscriptionID     uint32
	TimestampsToReturn TimestampsToReturn
	ItemsToModify      []*MonitoredItemModifyRequest
}

type ModifyMonitoredItemsResponse struct {
	Header  *ResponseHeader
	Results []*MonitoredItemModifyResult
}

// SetMonitoringModeRequest / SetMonitoringModeResponse.
type SetMonitoringModeRequest struct {
	Header          *RequestHeader
	SubscriptionID  uint32
	MonitoringMode  MonitoringMode
	MonitoredItemIDs []uint32
}

type SetMonitoringModeResponse struct {
	Header  *ResponseHeader
	Results []StatusCode
}

// DeleteMonitoredItemsRequest / DeleteMonitoredItemsResponse.
type DeleteMonitoredItemsRequest struct {
	Header           *RequestHeader
	SubscriptionID   uint32
	MonitoredItemIDs []uint32
}

type DeleteMonitoredItemsResponse struct {
	Header  *ResponseHeader
	Results []StatusCode
}

// --- Publish / Republish & notifications (Part 4 §5.14) ---

// SubscriptionAcknowledgement acknowledges a delivered sequence number,
// returned in the following Publish request.
type SubscriptionAcknowledgement struct {
	SubscriptionID uint32
	SequenceNumber uint32
}

// MonitoredItemNotification carries one DataChange sample (Part 4 §7.23).
type MonitoredItemNotification struct {
	ClientHandle uint32
	Value        *DataValue
}

// DataChangeNotification is a batch of data-change samples (Part 4 §7.9).
type DataChangeNotification struct {
	MonitoredItems []*MonitoredItemNotification
}

// EventFieldList carries one event's requested field values (Part 4 §7.16).
type EventFieldList struct {
	ClientHandle uint32
	EventFields  []*Variant
}

// EventNotificationList is a batch of event notifications (Part 4 §7.17).
type EventNotificationList struct {
	Events []*EventFieldList
}

// NotificationMessage wraps one or more notification batches carried in a
// single Publish response (Part 4 §7.24). Only DataChange and Event
// notifications are modelled (StatusChangeNotification is out of scope).
type NotificationMessage struct {
	SequenceNumber  uint32
	PublishTime     time.Time
	DataChanges     []*DataChangeNotification
	Events          []*EventNotificationList
}

// PublishRequest / PublishResponse (Part 4 §5.14.2).
type PublishRequest struct {
	Header                     *RequestHeader
	SubscriptionAcknowledgements []*SubscriptionAcknowledgement
}

type PublishResponse struct {
	Header                   *ResponseHeader
	SubscriptionID           uint32
	AvailableSequenceNumbers []uint32
	MoreNotifications        bool
	NotificationMessage      *NotificationMessage
	Results                  []StatusCode
}

// RepublishRequest / RepublishResponse (Part 4 §5.14.3).
type RepublishRequest struct {
	Header         *RequestHeader
	SubscriptionID uint32
	RetransmitSequenceNumber uint32
}

type RepublishResponse struct {
	Header              *ResponseHeader
	NotificationMessage *NotificationMessage
}

// ServiceFault is returned in place of a normal response body when a
// request fails service-wide (Part 4 §7.38); ResponseHeader.ServiceResult
// carries the StatusCode.
type ServiceFault struct {
	Header *ResponseHeader
}
