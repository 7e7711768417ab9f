package directory

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/msgauth/errors"
)

// Snapshot memoizes successful reads of a directory. It is meant to live
// for a single operation so that each account is read at most once per
// call. Never share a snapshot between operations.
type Snapshot struct {
	dir OwnerDirectory

	mu         sync.Mutex
	owners     map[common.Address][]common.Address
	thresholds map[common.Address]uint64
}

var (
	_ OwnerDirectory = (*Snapshot)(nil)
	_ HashApprover   = (*Snapshot)(nil)
)

// NewSnapshot returns an empty snapshot of dir.
func NewSnapshot(dir OwnerDirectory) *Snapshot {
	return &Snapshot{
		dir:        dir,
		owners:     make(map[common.Address][]common.Address),
		thresholds: make(map[common.Address]uint64),
	}
}

func (s *Snapshot) Owners(ctx context.Context, account common.Address) ([]common.Address, error) {
	s.mu.Lock()
	owners, ok := s.owners[account]
	s.mu.Unlock()
	if ok {
		return owners, nil
	}

	owners, err := s.dir.Owners(ctx, account)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.owners[account] = owners
	s.mu.Unlock()
	return owners, nil
}

func (s *Snapshot) Threshold(ctx context.Context, account common.Address) (uint64, error) {
	s.mu.Lock()
	threshold, ok := s.thresholds[account]
	s.mu.Unlock()
	if ok {
		return threshold, nil
	}

	threshold, err := s.dir.Threshold(ctx, account)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.thresholds[account] = threshold
	s.mu.Unlock()
	return threshold, nil
}

// IsHashApproved is never memoized.
func (s *Snapshot) IsHashApproved(ctx context.Context, account, owner common.Address, hash common.Hash) (bool, error) {
	approver, ok := s.dir.(HashApprover)
	if !ok {
		return false, errors.Wrapf(ErrUnsupported, "%T", s.dir)
	}
	return approver.IsHashApproved(ctx, account, owner, hash)
}
