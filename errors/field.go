package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches the name of an invalid attribute to err. A nil err gives
// nil, so validation code can call it unconditionally:
//
//	errs = Append(errs, Field("Store.Path", checkPath(c.Store.Path), "store path"))
//
// Nested attributes are named with a dot separated Go path, for example
// Directory.CacheTTL.
func Field(name string, err error, format string, args ...interface{}) error {
	if errIsNil(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		format = fmt.Sprintf(format, args...)
	}
	return &fieldError{name: name, msg: format, parent: err}
}

// AppendField adds err, labeled with name, to errs.
func AppendField(errs error, name string, err error) error {
	return Append(errs, Field(name, err, ""))
}

type fieldError struct {
	name   string
	msg    string
	parent error
}

func (e *fieldError) Error() string {
	if e.msg != "" {
		return fmt.Sprintf("field %q: %s: %s", e.name, e.msg, e.parent)
	}
	return fmt.Sprintf("field %q: %s", e.name, e.parent)
}

func (e *fieldError) Cause() error  { return e.parent }
func (e *fieldError) Unwrap() error { return e.parent }
func (e *fieldError) Field() string { return e.name }

// FieldErrors digs through err, including every error joined by Append, and
// returns those labeled with name.
func FieldErrors(err error, name string) []error {
	var found []error
	for !errIsNil(err) {
		if f, ok := err.(interface{ Field() string }); ok && f.Field() == name {
			return append(found, err)
		}
		if u, ok := err.(unpacker); ok {
			for _, e := range u.Unpack() {
				found = append(found, FieldErrors(e, name)...)
			}
			return found
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return found
}
