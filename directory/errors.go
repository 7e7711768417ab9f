package directory

import "github.com/iov-one/msgauth/errors"

// directory reserves 120~129 error codes
var (
	// ErrNotFound is returned when an address is not a known multi-party
	// account.
	ErrNotFound = errors.Register(120, "account not found")

	// ErrUnavailable is returned when the directory cannot be queried
	// right now. Callers may retry.
	ErrUnavailable = errors.Register(121, "directory unavailable")

	// ErrUnsupported is returned by decorators when the directory they
	// wrap cannot answer the query.
	ErrUnsupported = errors.Register(122, "query not supported")
)
