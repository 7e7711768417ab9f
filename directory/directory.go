/*
Package directory provides the owner sets and thresholds of multi-party
accounts.

OwnerDirectory implementations must reflect the current state of the
accounts at call time. The engine never caches their answers across
operations; Snapshot memoizes reads for the duration of a single call and
Cached is an opt-in decorator for callers that accept stale answers.
*/
package directory

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// OwnerDirectory returns the current owners and threshold of an account.
// Both methods return ErrNotFound if the address is not a multi-party
// account and ErrUnavailable on transient failures.
type OwnerDirectory interface {
	Owners(ctx context.Context, account common.Address) ([]common.Address, error)
	Threshold(ctx context.Context, account common.Address) (uint64, error)
}

// HashApprover is implemented by directories that can tell whether an owner
// approved a hash through the account itself.
type HashApprover interface {
	IsHashApproved(ctx context.Context, account, owner common.Address, hash common.Hash) (bool, error)
}

// IsOwner returns true if addr is present in owners.
func IsOwner(owners []common.Address, addr common.Address) bool {
	for _, o := range owners {
		if o == addr {
			return true
		}
	}
	return false
}
