package xled

import "fmt"

// ResponseCode is the application-level status a device returns inside JSON
// response bodies. The HTTP status only tells whether a request was
// received; the code tells whether it was valid and processed.
type ResponseCode int

// Known device response codes, reverse-engineered from firmware behavior.
const (
	CodeOK                  ResponseCode = 1000
	CodeError               ResponseCode = 1001
	CodeInvalidArgument     ResponseCode = 1101
	CodeError2              ResponseCode = 1102
	CodeValueTooLong        ResponseCode = 1103
	CodeMalformedJSON       ResponseCode = 1104
	CodeInvalidArgumentKey  ResponseCode = 1105
	CodeOKMaybe1            ResponseCode = 1107
	CodeOKMaybe2            ResponseCode = 1108
	CodeFirmwareUpgradeSHA1 ResponseCode = 1205
)

// IsOK reports whether the code means success. Only 1000 qualifies: the
// firmware emits 1107/1108 in some flows with undocumented meaning, and
// until their semantics are reverse-engineered they count as failures.
func (c ResponseCode) IsOK() bool {
	return c == CodeOK
}

// String returns the documented meaning of the code.
func (c ResponseCode) String() string {
	switch c {
	case CodeOK:
		return "Ok"
	case CodeError, CodeError2:
		return "Error"
	case CodeInvalidArgument:
		return "Invalid argument value"
	case CodeValueTooLong:
		return "Value too long or missing required key"
	case CodeMalformedJSON:
		return "Malformed JSON on input"
	case CodeInvalidArgumentKey:
		return "Invalid argument key"
	case CodeOKMaybe1, CodeOKMaybe2:
		return "OK?"
	case CodeFirmwareUpgradeSHA1:
		return "Firmware upgrade SHA1SUM mismatch"
	}
	return fmt.Sprintf("unknown code %d", int(c))
}
