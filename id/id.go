// Package id holds the well-known numeric NodeIds from the OPC UA
// namespace-0 address space that the client and supervisor packages
// reference directly, instead of threading magic numbers through call
// sites.
package id

import "github.com/duchuan123/opc-ua-client/ua"

// Well-known Objects-folder and Server-object identifiers (Part 5, Annex A).
var (
	RootFolder    = ua.NewNumericNodeID(0, 84)
	ObjectsFolder = ua.NewNumericNodeID(0, 85)
	TypesFolder   = ua.NewNumericNodeID(0, 86)
	ViewsFolder   = ua.NewNumericNodeID(0, 87)
	Server        = ua.NewNumericNodeID(0, 2253)

	ServerServerStatus                    = ua.NewNumericNodeID(0, 2256)
	ServerServerStatusCurrentTime         = ua.NewNumericNodeID(0, 2258)
	ServerServerStatusState               = ua.NewNumericNodeID(0, 2259)
	ServerNamespaceArray                  = ua.NewNumericNodeID(0, 2255)
	ServerServerCapabilities              = ua.NewNumericNodeID(0, 2268)
	ServerServerDiagnostics               = ua.NewNumericNodeID(0, 2274)
)

// Well-known reference-type identifiers used as BrowseDescription filters.
var (
	ReferencesNonHierarchical = ua.NewNumericNodeID(0, 31)
	HierarchicalReferences    = ua.NewNumericNodeID(0, 33)
	HasChild                  = ua.NewNumericNodeID(0, 34)
	Organizes                 = ua.NewNumericNodeID(0, 35)
	HasEventSource            = ua.NewNumericNodeID(0, 36)
	HasModellingRule          = ua.NewNumericNodeID(0, 37)
	HasEncoding               = ua.NewNumericNodeID(0, 38)
	HasDescription            = ua.NewNumericNodeID(0, 39)
	HasTypeDefinition         = ua.NewNumericNodeID(0, 40)
	HasSubtype                = ua.NewNumericNodeID(0, 45)
	HasProperty               = ua.NewNumericNodeID(0, 46)
	HasComponent              = ua.NewNumericNodeID(0, 47)
	HasNotifier               = ua.NewNumericNodeID(0, 48)
)

// Well-known data type identifiers, used when constructing Variants whose
// scalar Go type alone would be ambiguous (e.g. enumerations on the wire
// are Int32 but carry a DataType NodeId of their own).
var (
	DataTypeBoolean   = ua.NewNumericNodeID(0, 1)
	DataTypeInt32     = ua.NewNumericNodeID(0, 6)
	DataTypeUInt32    = ua.NewNumericNodeID(0, 7)
	DataTypeString    = ua.NewNumericNodeID(0, 12)
	DataTypeDateTime  = ua.NewNumericNodeID(0, 13)
	DataTypeByteString = ua.NewNumericNodeID(0, 15)
)

// Object/event type identifiers exercised by the server-diagnostics log
// discovery path the receiver walks to find the server's LogObject.
var (
	ServerType          = ua.NewNumericNodeID(0, 2004)
	BaseEventType       = ua.NewNumericNodeID(0, 2041)
	ServerLog           = ua.NewNumericNodeID(0, 2042)
	SystemEventType     = ua.NewNumericNodeID(0, 2130)
	DeviceFailureEventType = ua.NewNumericNodeID(0, 11485)
)

// Well-known method identifiers.
var (
	ServerGetMonitoredItems = ua.NewNumericNodeID(0, 11492)
)

// Binary-encoding type ids for each service request/response (Part 6 Annex
// A "_Encoding_DefaultBinary"). These are the NodeIds carried as the
// ExtensionObject TypeId on every message body the client package sends
// or receives over a secure channel.
var (
	ServiceFaultEncodingDefaultBinary = ua.NewNumericNodeID(0, 397)

	GetEndpointsRequestEncodingDefaultBinary  = ua.NewNumericNodeID(0, 428)
	GetEndpointsResponseEncodingDefaultBinary = ua.NewNumericNodeID(0, 431)

	CreateSessionRequestEncodingDefaultBinary  = ua.NewNumericNodeID(0, 461)
	CreateSessionResponseEncodingDefaultBinary = ua.NewNumericNodeID(0, 464)

	ActivateSessionRequestEncodingDefaultBinary  = ua.NewNumericNodeID(0, 467)
	ActivateSessionResponseEncodingDefaultBinary = ua.NewNumericNodeID(0, 470)

	CloseSessionRequestEncodingDefaultBinary  = ua.NewNumericNodeID(0, 473)
	CloseSessionResponseEncodingDefaultBinary = ua.NewNumericNodeID(0, 476)

	BrowseRequestEncodingDefaultBinary  = ua.NewNumericNodeID(0, 527)
	BrowseResponseEncodingDefaultBinary = ua.NewNumericNodeID(0, 530)

	BrowseNextRequestEncodingDefaultBinary  = ua.NewNumericNodeID(0, 533)
	BrowseNextResponseEncodingDefaultBinary = ua.NewNumericNodeID(0, 536)

	ReadRequestEncodingDefaultBinary  = ua.NewNumericNodeID(0, 631)
	ReadResponseEncodingDefaultBinary = ua.NewNumericNodeID(0, 634)

	WriteRequestEncodingDefaultBinary  = ua.NewNumericNodeID(0, 673)
	WriteResponseEncodingDefaultBinary = ua.NewNumericNodeID(0, 676)

	CallRequestEncodingDefaultBinary  = ua.NewNumericNodeID(0, 712)
	CallResponseEncodingDefaultBinary = ua.NewNumericNodeID(0, 715)

	CreateMonitoredItemsRequestEncodingDefaultBinary  = ua.NewNumericNodeID(0, 751)
	CreateMonitoredItemsResponseEncodingDefaultBinary = ua.NewNumericNodeID(0, 754)

	ModifyMonitoredItemsRequestEncodingDefaultBinary  = ua.NewNumericNodeID(0, 763)
	ModifyMonitoredItemsResponseEncodingDefaultBinary = ua.NewNumericNodeID(0, 766)

	SetMonitoringModeRequestEncodingDefaultBinary  = ua.NewNumericNodeID(0, 769)
	SetMonitoringModeResponseEncodingDefaultBinary = ua.NewNumericNodeID(0, 772)

	DeleteMonitoredItemsRequestEncodingDefaultBinary  = ua.NewNumericNodeID(0, 781)
	DeleteMonitoredItemsResponseEncodingDefaultBinary = ua.NewNumericNodeID(0, 784)

	CreateSubscriptionRequestEncodingDefaultBinary  = ua.NewNumericNodeID(0, 787)
	CreateSubscriptionResponseEncodingDefaultBinary = ua.NewNumericNodeID(0, 790)

	ModifySubscriptionRequestEncodingDefaultBinary  = ua.NewNumericNodeID(0, 793)
	ModifySubscriptionResponseEncodingDefaultBinary = ua.NewNumericNodeID(0, 796)

	SetPublishingModeRequestEncodingDefaultBinary  = ua.NewNumericNodeID(0, 799)
	SetPublishingModeResponseEncodingDefaultBinary = ua.NewNumericNodeID(0, 802)

	PublishRequestEncodingDefaultBinary  = ua.NewNumericNodeID(0, 826)
	PublishResponseEncodingDefaultBinary = ua.NewNumericNodeID(0, 829)

	RepublishRequestEncodingDefaultBinary  = ua.NewNumericNodeID(0, 832)
	RepublishResponseEncodingDefaultBinary = ua.NewNumericNodeID(0, 835)

	DeleteSubscriptionsRequestEncodingDefaultBinary  = ua.NewNumericNodeID(0, 847)
	DeleteSubscriptionsResponseEncodingDefaultBinary = ua.NewNumericNodeID(0, 850)

	AnonymousIdentityTokenEncodingDefaultBinary = ua.NewNumericNodeID(0, 321)
	UserNameIdentityTokenEncodingDefaultBinary  = ua.NewNumericNodeID(0, 324)
	X509IdentityTokenEncodingDefaultBinary      = ua.NewNumericNodeID(0, 327)
)
