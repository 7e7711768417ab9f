package errors

import (
	"fmt"
	"reflect"
)

const (
	// SuccessCode is the outcome of a nil error.
	SuccessCode = 0

	internalCode uint32 = 1
	internalLog         = "internal error"
)

// Outcome maps err to the code and message shown to a user. Errors that do
// not wrap a registered root get code 1 and, unless debug is set, a generic
// message so that backend details do not leak. In debug mode the message
// carries the stack trace.
func Outcome(err error, debug bool) (uint32, string) {
	if errIsNil(err) {
		return SuccessCode, ""
	}
	code := errCode(err)
	switch {
	case debug:
		return code, fmt.Sprintf("%+v", err)
	case code == internalCode:
		return code, internalLog
	default:
		return code, err.Error()
	}
}

type coder interface {
	Code() uint32
}

// errCode returns the code of the first error in the Cause chain that has
// one.
func errCode(err error) uint32 {
	for !errIsNil(err) {
		if c, ok := err.(coder); ok {
			return c.Code()
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return internalCode
}

// errIsNil also catches a nil pointer stored in the error interface.
func errIsNil(err error) bool {
	if err == nil {
		return true
	}
	v := reflect.ValueOf(err)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// Root returns the registered error that err was created from, or nil if
// err does not wrap any.
func Root(err error) *Error {
	for !errIsNil(err) {
		if e, ok := err.(*Error); ok {
			return e
		}
		switch c := err.(type) {
		case causer:
			err = c.Cause()
		case unwrapper:
			err = c.Unwrap()
		default:
			return nil
		}
	}
	return nil
}
