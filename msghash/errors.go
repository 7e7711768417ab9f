package msghash

import "github.com/iov-one/msgauth/errors"

// ErrMalformedMessage is returned when a message cannot be parsed or its
// typed data does not match the declared schema. It is also used when a
// caller supplied hash does not match the one computed from the payload.
var ErrMalformedMessage = errors.Register(100, "malformed message")
