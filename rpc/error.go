package rpc

import (
	stderrors "errors"
	"fmt"
)

// Error is an RPC failure with its communication status.
type Error struct {
	Code    UCode
	Message string
	Err     error
}

// NewError creates an Error with the given code and message.
func NewError(code UCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("rpc %s: %s: %v", e.Code, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("rpc %s: %v", e.Code, e.Err)
	case e.Message != "":
		return fmt.Sprintf("rpc %s: %s", e.Code, e.Message)
	default:
		return fmt.Sprintf("rpc %s", e.Code)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the status code carried by err. Nil is OK; errors that are
// not *Error report UNKNOWN.
func CodeOf(err error) UCode {
	if err == nil {
		return CodeOK
	}
	var rpcErr *Error
	if stderrors.As(err, &rpcErr) {
		return rpcErr.Code
	}
	return CodeUnknown
}
