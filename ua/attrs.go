package ua

// AttributeID identifies a standard-defined facet of a node (Part 4 §7.4).
type AttributeID uint32

const (
	AttributeIDNodeClass AttributeID = 2
	AttributeIDBrowseName AttributeID = 3
	AttributeIDDisplayName AttributeID = 4
	AttributeIDDescription AttributeID = 5
	AttributeIDEventNotifier AttributeID = 12
	AttributeIDValue AttributeID = 13
	AttributeIDDataType AttributeID = 14
	AttributeIDValueRank AttributeID = 15
	AttributeIDAccessLevel AttributeID = 17
	AttributeIDUserAccessLevel AttributeID = 18
	AttributeIDHistorizing AttributeID = 20
	AttributeIDExecutable AttributeID = 21
)

// NodeClass classifies a node in the address space (Part 3 §5.2.8).
type NodeClass uint32

const (
	NodeClassObject NodeClass = 1 << iota
	NodeClassVariable
	NodeClassMethod
	NodeClassObjectType
	NodeClassVariableType
	NodeClassReferenceType
	NodeClassDataType
	NodeClassView
)

// BrowseDirection selects which reference direction Browse follows.
type BrowseDirection uint32

const (
	BrowseDirectionForward BrowseDirection = 0
	BrowseDirectionInverse BrowseDirection = 1
	BrowseDirectionBoth    BrowseDirection = 2
)

// BrowseResultMask selects which optional fields Browse populates on each
// returned reference.
type BrowseResultMask uint32

const (
	BrowseResultMaskReferenceTypeID BrowseResultMask = 1 << iota
	BrowseResultMaskIsForward
	BrowseResultMaskNodeClass
	BrowseResultMaskBrowseName
	BrowseResultMaskDisplayName
	BrowseResultMaskTypeDefinition
)

// TimestampsToReturn selects which timestamps a Read response populates.
type TimestampsToReturn uint32

const (
	TimestampsToReturnSource TimestampsToReturn = iota
	TimestampsToReturnServer
	TimestampsToReturnBoth
	TimestampsToReturnNeither
)

// MonitoringMode controls whether a monitored item samples/reports.
type MonitoringMode uint32

const (
	MonitoringModeDisabled MonitoringMode = iota
	MonitoringModeSampling
	MonitoringModeReporting
)

// MessageSecurityMode is the channel-level security mode (Part 4 §7.15).
type MessageSecurityMode uint32

const (
	MessageSecurityModeInvalid MessageSecurityMode = iota
	MessageSecurityModeNone
	MessageSecurityModeSign
	MessageSecurityModeSignAndEncrypt
)

func (m MessageSecurityMode) String() string {
	switch m {
	case MessageSecurityModeNone:
		return "None"
	case MessageSecurityModeSign:
		return "Sign"
	case MessageSecurityModeSignAndEncrypt:
		return "SignAndEncrypt"
	default:
		return "Invalid"
	}
}

// UserTokenType identifies the kind of user identity token (Part 4 §7.41).
type UserTokenType uint32

const (
	UserTokenTypeAnonymous UserTokenType = iota
	UserTokenTypeUserName
	UserTokenTypeCertificate
	UserTokenTypeIssuedToken
)

// Well-known security policy URIs (Part 7).
const (
	SecurityPolicyURINone           = "http://opcfoundation.org/UA/SecurityPolicy#None"
	SecurityPolicyURIBasic128Rsa15  = "http://opcfoundation.org/UA/SecurityPolicy#Basic128Rsa15"
	SecurityPolicyURIBasic256       = "http://opcfoundation.org/UA/SecurityPolicy#Basic256"
	SecurityPolicyURIBasic256Sha256 = "http://opcfoundation.org/UA/SecurityPolicy#Basic256Sha256"
)
