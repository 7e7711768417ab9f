package orm

import (
	"github.com/iov-one/msgauth/errors"
)

// orm reserves 105~109 error codes

// ErrInvalidIndex is returned when an index specified is invalid.
var ErrInvalidIndex = errors.Register(105, "invalid index")
