package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

var (
	// ErrUnauthorized is returned for requests the caller may not perform.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is returned when a looked up entity does not exist.
	ErrNotFound = Register(3, "not found")

	// ErrModel marks a model that fails validation and cannot be stored.
	ErrModel = Register(5, "invalid model")

	// ErrDuplicate is returned when a unique key or index is already taken.
	ErrDuplicate = Register(6, "duplicate")

	// ErrHuman is a programming mistake, such as a misconfigured component.
	ErrHuman = Register(7, "coding error")

	// ErrEmpty is returned for a required value that is missing.
	ErrEmpty = Register(9, "value is empty")

	ErrState = Register(10, "invalid state")

	ErrType = Register(11, "invalid type")

	// ErrInput is the catch-all for malformed input.
	ErrInput = Register(14, "invalid input")

	ErrOverflow = Register(16, "an operation cannot be completed due to value overflow")

	// ErrDatabase wraps failures of the storage backend.
	ErrDatabase = Register(17, "database error")

	// ErrIteratorDone ends every iteration.
	ErrIteratorDone = Register(18, "iterator done")

	// ErrPanic is set by Recover.
	ErrPanic = Register(111222, "panic")
)

// Register declares a root error. Packages call it from var blocks, so that a
// code registered twice panics at program start.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{
		code: code,
		desc: description,
	}
	usedCodes[err.code] = err
	return err
}

var usedCodes = map[uint32]*Error{
	// Reserved for errors without a registered root.
	1: {code: 1, desc: internalLog},
}

// Error is a root error. Every error returned by the ledger wraps exactly one
// root, which determines the outcome reported to callers. Test for it with
// Is.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// Code returns the numeric code this root error was registered with.
func (e Error) Code() uint32 {
	return e.code
}

// New is a shortcut for Wrap(e, description).
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is reports whether err is kind or wraps it. Both Cause and Unwrap chains
// are followed.
func (kind *Error) Is(err error) bool {
	// A typed nil is still nil.
	if kind == nil {
		if err == nil {
			return true
		}
		return reflect.ValueOf(err).IsNil()
	}

	for {
		if err == kind {
			return true
		}

		switch c := err.(type) {
		case causer:
			err = c.Cause()
		case unwrapper:
			err = c.Unwrap()
		default:
			return false
		}
		if err == nil {
			return false
		}
	}
}

// Wrap adds description in front of err and returns nil for a nil err. The
// innermost Wrap records a stack trace.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	desc := fmt.Sprintf(format, args...)
	return Wrap(err, desc)
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

func (e *wrappedError) Unwrap() error {
	return e.parent
}

// Recover turns a panic into an ErrPanic assigned to err. Defer it.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// WithType prefixes err with the type name of obj.
func WithType(err error, obj interface{}) error {
	return Wrap(err, fmt.Sprintf("%T", obj))
}

type causer interface {
	Cause() error
}

type unwrapper interface {
	Unwrap() error
}
