package ua

import (
	"errors"
	"fmt"
)

// ErrDecodingTruncated is returned (wrapped in a StatusError where a status
// code is expected) when a decode reads past the end of the buffer.
var ErrDecodingTruncated = errors.New("ua: truncated stream")

// StatusCode is the 32-bit severity-tagged result code attached to every
// OPC UA value and service result (Part 4 §7.34). The top two bits encode
// severity: 00 Good, 01 Uncertain, 10/11 Bad.
type StatusCode uint32

const (
	severityMask = 0xC0000000
	severityBad  = 0x80000000
)

// IsGood reports whether the code's severity is Good.
func (s StatusCode) IsGood() bool { return uint32(s)&severityMask == 0 }

// IsUncertain reports whether the code's severity is Uncertain.
func (s StatusCode) IsUncertain() bool { return uint32(s)&severityMask == 0x40000000 }

// IsBad reports whether the code's severity is Bad.
func (s StatusCode) IsBad() bool { return uint32(s)&severityBad == severityBad }

func (s StatusCode) Error() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("StatusCode(0x%08X)", uint32(s))
}

func (s StatusCode) String() string { return s.Error() }

// Well-known status codes. Values follow the OPC UA Part 6 (Annex A)
// assignments.
const (
	StatusOK StatusCode = 0

	StatusUncertain StatusCode = 0x40000000

	StatusBad                          StatusCode = 0x80000000
	StatusBadUnexpectedError           StatusCode = 0x80010000
	StatusBadInternalError              StatusCode = 0x80020000
	StatusBadOutOfMemory                StatusCode = 0x80030000
	StatusBadCommunicationError         StatusCode = 0x80050000
	StatusBadEncodingError              StatusCode = 0x80060000
	StatusBadDecodingError              StatusCode = 0x80070000
	StatusBadEncodingLimitsExceeded     StatusCode = 0x80080000
	StatusBadRequestTooLarge            StatusCode = 0x80B80000
	StatusBadResponseTooLarge           StatusCode = 0x80B90000
	StatusBadTimeout                    StatusCode = 0x800A0000
	StatusBadServiceUnsupported         StatusCode = 0x800B0000
	StatusBadShutdown                   StatusCode = 0x800C0000
	StatusBadServerNotConnected         StatusCode = 0x800D0000
	StatusBadSecureChannelClosed        StatusCode = 0x80560000
	StatusBadSecureChannelIDInvalid     StatusCode = 0x80570000
	StatusBadConnectionClosed           StatusCode = 0x80AE0000
	StatusBadInvalidState               StatusCode = 0x80330000
	StatusBadInvalidArgument            StatusCode = 0x80AB0000
	StatusBadTcpMessageTypeInvalid       StatusCode = 0x807D0000
	StatusBadTcpEndpointURLInvalid       StatusCode = 0x807E0000
	StatusBadTcpMessageTooLarge          StatusCode = 0x807F0000
	StatusBadSecurityChecksFailed        StatusCode = 0x80130000
	StatusBadCertificateInvalid          StatusCode = 0x80140000
	StatusBadSequenceNumberInvalid       StatusCode = 0x80700000
	StatusBadSequenceNumberUnknown       StatusCode = 0x80C60000
	StatusBadRequestTimeout              StatusCode = 0x800E0000
	StatusBadSessionIDInvalid            StatusCode = 0x80250000
	StatusBadSessionClosed               StatusCode = 0x80260000
	StatusBadSessionNotActivated         StatusCode = 0x80270000
	StatusBadIdentityTokenInvalid        StatusCode = 0x80210000
	StatusBadUserAccessDenied            StatusCode = 0x801F0000
	StatusBadNodeIDUnknown               StatusCode = 0x80320000
	StatusBadNodeIDInvalid               StatusCode = 0x80340000
	StatusBadContinuationPointInvalid    StatusCode = 0x80450000
	StatusBadWriteNotSupported           StatusCode = 0x80730002
	StatusBadMethodInvalid               StatusCode = 0x80480000
	StatusBadTooManySubscriptions        StatusCode = 0x80820000
	StatusBadNoSubscription              StatusCode = 0x80790000
	StatusBadSubscriptionIDInvalid       StatusCode = 0x80550000
	StatusBadMessageNotAvailable         StatusCode = 0x807D0001
	StatusBadFilterNotAllowed            StatusCode = 0x80450001
	StatusBadOutOfRange                  StatusCode = 0x80310000
	StatusBadArgumentsMissing            StatusCode = 0x80AC0000
)

var statusNames = map[StatusCode]string{
	StatusOK:                          "Good",
	StatusUncertain:                   "Uncertain",
	StatusBad:                         "Bad",
	StatusBadUnexpectedError:          "BadUnexpectedError",
	StatusBadInternalError:            "BadInternalError",
	StatusBadOutOfMemory:              "BadOutOfMemory",
	StatusBadCommunicationError:       "BadCommunicationError",
	StatusBadEncodingError:            "BadEncodingError",
	StatusBadDecodingError:            "BadDecodingError",
	StatusBadEncodingLimitsExceeded:   "BadEncodingLimitsExceeded",
	StatusBadRequestTooLarge:          "BadRequestTooLarge",
	StatusBadResponseTooLarge:         "BadResponseTooLarge",
	StatusBadTimeout:                  "BadTimeout",
	StatusBadServiceUnsupported:       "BadServiceUnsupported",
	StatusBadShutdown:                 "BadShutdown",
	StatusBadServerNotConnected:       "BadServerNotConnected",
	StatusBadSecureChannelClosed:      "BadSecureChannelClosed",
	StatusBadSecureChannelIDInvalid:   "BadSecureChannelIdInvalid",
	StatusBadConnectionClosed:         "BadConnectionClosed",
	StatusBadInvalidState:             "BadInvalidState",
	StatusBadInvalidArgument:          "BadInvalidArgument",
	StatusBadTcpMessageTypeInvalid:    "BadTcpMessageTypeInvalid",
	StatusBadTcpEndpointURLInvalid:    "BadTcpEndpointUrlInvalid",
	StatusBadTcpMessageTooLarge:       "BadTcpMessageTooLarge",
	StatusBadSecurityChecksFailed:     "BadSecurityChecksFailed",
	StatusBadCertificateInvalid:       "BadCertificateInvalid",
	StatusBadSequenceNumberInvalid:    "BadSequenceNumberInvalid",
	StatusBadSequenceNumberUnknown:    "BadSequenceNumberUnknown",
	StatusBadRequestTimeout:           "BadRequestTimeout",
	StatusBadSessionIDInvalid:         "BadSessionIdInvalid",
	StatusBadSessionClosed:            "BadSessionClosed",
	StatusBadSessionNotActivated:      "BadSessionNotActivated",
	StatusBadIdentityTokenInvalid:     "BadIdentityTokenInvalid",
	StatusBadUserAccessDenied:         "BadUserAccessDenied",
	StatusBadNodeIDUnknown:            "BadNodeIdUnknown",
	StatusBadNodeIDInvalid:            "BadNodeIdInvalid",
	StatusBadContinuationPointInvalid: "BadContinuationPointInvalid",
	StatusBadWriteNotSupported:        "BadWriteNotSupported",
	StatusBadMethodInvalid:            "BadMethodInvalid",
	StatusBadTooManySubscriptions:     "BadTooManySubscriptions",
	StatusBadNoSubscription:           "BadNoSubscription",
	StatusBadSubscriptionIDInvalid:    "BadSubscriptionIdInvalid",
	StatusBadMessageNotAvailable:      "BadMessageNotAvailable",
	StatusBadFilterNotAllowed:         "BadFilterNotAllowed",
	StatusBadOutOfRange:               "BadOutOfRange",
	StatusBadArgumentsMissing:         "BadArgumentsMissing",
}

// StatusError adapts a StatusCode to the error interface with an optional
// wrapped cause, used where code needs both a status code for protocol
// disposition and a human-readable message for logs.
type StatusError struct {
	Code  StatusCode
	Cause error
}

func (e *StatusError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Cause)
	}
	return e.Code.Error()
}

func (e *StatusError) Unwrap() error { return e.Cause }

// NewStatusError wraps cause with code, or returns nil if cause is nil.
func NewStatusError(code StatusCode, cause error) error {
	if cause == nil && code.IsGood() {
		return nil
	}
	return &StatusError{Code: code, Cause: cause}
}

// StatusOf extracts the StatusCode from err, defaulting to
// StatusBadUnexpectedError for a non-nil err with no code attached.
func StatusOf(err error) StatusCode {
	if err == nil {
		return StatusOK
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	var code StatusCode
	if errors.As(err, &code) {
		return code
	}
	return StatusBadUnexpectedError
}
