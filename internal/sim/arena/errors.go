package arena

import (
	"errors"

	"gridclash.ai/internal/protocol"
)

// OpError is a precondition or transfer failure: the operation was rejected
// with zero state mutation. Code is one of the protocol error codes.
type OpError struct {
	Code    string
	Message string
}

func (e *OpError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func opErr(code, message string) *OpError {
	if !protocol.IsKnownCode(code) {
		code = protocol.ErrInternal
	}
	return &OpError{Code: code, Message: message}
}

// ErrCode extracts the protocol code from an operation error, mapping
// anything else to E_INTERNAL.
func ErrCode(err error) string {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Code
	}
	return protocol.ErrInternal
}
