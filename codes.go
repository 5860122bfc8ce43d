package uds

import (
	"fmt"
)

// ResponseCode is a one-byte ISO 14229 negative response code (NRC), or the
// positive-response sentinel 0x00 used internally to mean "no error".
type ResponseCode uint8

// Negative response codes known to this package. Not exhaustive of the
// standard's full NRC table. kGeneralReject, kSecurityAccessDenied,
// kInvalidKey and the two "...InActiveSession" codes are never produced by
// the core or its handlers; the latter two appear only in the dispatcher's
// functional-addressing suppression set.
const (
	kPositiveResponse ResponseCode = 0x00

	kGeneralReject                             ResponseCode = 0x10
	kServiceNotSupported                       ResponseCode = 0x11
	kSubFunctionNotSupported                   ResponseCode = 0x12
	kIncorrectMessageLengthOrInvalidFormat     ResponseCode = 0x13
	kResponseTooLong                           ResponseCode = 0x14
	kConditionsNotCorrect                      ResponseCode = 0x22
	kRequestSequenceError                      ResponseCode = 0x24
	kRequestOutOfRange                         ResponseCode = 0x31
	kSecurityAccessDenied                      ResponseCode = 0x33
	kInvalidKey                                ResponseCode = 0x35
	kUploadDownloadNotAccepted                 ResponseCode = 0x70
	kTransferDataSuspended                     ResponseCode = 0x71
	kGeneralProgrammingFailure                 ResponseCode = 0x72
	kSubFunctionNotSupportedInActiveSession    ResponseCode = 0x7E
	kRequestCorrectlyReceived_ResponsePending  ResponseCode = 0x78
	kServiceNotSupportedInActiveSession        ResponseCode = 0x7F
)

// NegativeResponse is the protocol-level error type produced by handlers and
// the dispatcher. It carries the NRC byte that is written in to the wire
// response; its string form is for logs and test failures only.
type NegativeResponse struct {
	code ResponseCode
	msg  string
}

func (e *NegativeResponse) Error() string {
	return e.msg
}

// Code returns the wire NRC byte carried by this error.
func (e *NegativeResponse) Code() ResponseCode {
	return e.code
}

func negResponseF(code ResponseCode, format string, args ...interface{}) *NegativeResponse {
	return &NegativeResponse{code, fmt.Sprintf(format, args...)}
}

func errServiceNotSupported(sid byte) *NegativeResponse {
	return negResponseF(kServiceNotSupported, "service 0x%02x not supported", sid)
}

func errSubFunctionNotSupported(sid, subFn byte) *NegativeResponse {
	return negResponseF(kSubFunctionNotSupported, "service 0x%02x sub-function 0x%02x not supported", sid, subFn)
}

func errIncorrectLength(format string, args ...interface{}) *NegativeResponse {
	return negResponseF(kIncorrectMessageLengthOrInvalidFormat, format, args...)
}

func errResponseTooLong(format string, args ...interface{}) *NegativeResponse {
	return negResponseF(kResponseTooLong, format, args...)
}

func errConditionsNotCorrect(format string, args ...interface{}) *NegativeResponse {
	return negResponseF(kConditionsNotCorrect, format, args...)
}

func errRequestSequenceError(format string, args ...interface{}) *NegativeResponse {
	return negResponseF(kRequestSequenceError, format, args...)
}

func errRequestOutOfRange(format string, args ...interface{}) *NegativeResponse {
	return negResponseF(kRequestOutOfRange, format, args...)
}

func errGeneralProgrammingFailure(format string, args ...interface{}) *NegativeResponse {
	return negResponseF(kGeneralProgrammingFailure, format, args...)
}

func errUploadDownloadNotAccepted(format string, args ...interface{}) *NegativeResponse {
	return negResponseF(kUploadDownloadNotAccepted, format, args...)
}

func errTransferDataSuspended(format string, args ...interface{}) *NegativeResponse {
	return negResponseF(kTransferDataSuspended, format, args...)
}

// responsePending is the sentinel returned by a handler (0x36 only, in this
// implementation) to defer the final answer to a later Poll.
func responsePending() *NegativeResponse {
	return &NegativeResponse{kRequestCorrectlyReceived_ResponsePending, "request correctly received - response pending"}
}

// asNRC converts any error in to a wire NRC code, mapping non-protocol
// errors (codec overflow, callback contract violations) to
// kGeneralProgrammingFailure the same way modbus's server.request mapped a
// non-*Error failure to a generic server failure.
func asNRC(err error) ResponseCode {
	if nr, ok := err.(*NegativeResponse); ok {
		return nr.code
	}
	return kGeneralProgrammingFailure
}
