package verifier

import "github.com/iov-one/msgauth/errors"

// verifier reserves 130~139 error codes
var (
	ErrRecursionTooDeep = errors.Register(130, "recursion too deep")
	ErrDirectoryCycle   = errors.Register(131, "directory cycle")
	ErrInvalidSignature = errors.Register(132, "invalid signature")
	// ErrInconclusive is returned when validity depends on account state
	// the directory cannot provide.
	ErrInconclusive = errors.Register(133, "inconclusive signature")
)
