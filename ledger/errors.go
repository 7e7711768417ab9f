package ledger

import "github.com/iov-one/msgauth/errors"

// ledger reserves 140~149 error codes
var (
	ErrNotAnOwner            = errors.Register(140, "not an owner")
	ErrSignerBanned          = errors.Register(141, "signer banned")
	ErrDuplicateMessage      = errors.Register(142, "duplicate message")
	ErrDuplicateConfirmation = errors.Register(143, "duplicate confirmation")
	ErrMessageNotFound       = errors.Register(144, "message not found")
)
