package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored. If no
// error is left, nil is returned. A single error is returned as it is.
//
// The result is tested and coded by its first error, consistent with a fail
// fast approach. Use FieldErrors or Unpack to access the others.
func Append(errs ...error) error {
	var res multiErr
	for _, err := range errs {
		if errIsNil(err) {
			continue
		}
		if m, ok := err.(multiErr); ok {
			res = append(res, m...)
			continue
		}
		res = append(res, err)
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

type unpacker interface {
	Unpack() []error
}

// multiErr holds at least two errors.
type multiErr []error

func (m multiErr) Error() string {
	points := make([]string, len(m))
	for i, err := range m {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(m), strings.Join(points, "\n\t"))
}

// Cause returns the first error.
func (m multiErr) Cause() error {
	return m[0]
}

// Unpack returns all clubbed errors.
func (m multiErr) Unpack() []error {
	return append([]error(nil), m...)
}
