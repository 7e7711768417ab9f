package sigcodec

import "github.com/iov-one/msgauth/errors"

// sigcodec reserves 110~119 error codes
var (
	// ErrTruncatedSignature is returned when a blob ends before a record
	// or a dynamic part it declares.
	ErrTruncatedSignature = errors.Register(110, "truncated signature")

	// ErrUnknownSignatureType is returned for records whose recovery tag
	// is not supported.
	ErrUnknownSignatureType = errors.Register(111, "unknown signature type")

	// ErrMalformedSignature is returned when a blob is long enough but its
	// layout is inconsistent, for example an offset pointing back into
	// the static records.
	ErrMalformedSignature = errors.Register(112, "malformed signature")
)
