package directory

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/msgauth/errors"
)

// Static is an in-memory directory. It is safe for concurrent use.
type Static struct {
	mu        sync.RWMutex
	accounts  map[common.Address]staticAccount
	approvals map[approval]struct{}
}

type staticAccount struct {
	owners    []common.Address
	threshold uint64
}

type approval struct {
	account common.Address
	owner   common.Address
	hash    common.Hash
}

var (
	_ OwnerDirectory = (*Static)(nil)
	_ HashApprover   = (*Static)(nil)
)

// NewStatic returns an empty directory.
func NewStatic() *Static {
	return &Static{
		accounts:  make(map[common.Address]staticAccount),
		approvals: make(map[approval]struct{}),
	}
}

// Set declares or replaces an account.
func (s *Static) Set(account common.Address, threshold uint64, owners ...common.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account] = staticAccount{
		owners:    append([]common.Address(nil), owners...),
		threshold: threshold,
	}
}

// Approve records that owner approved hash on behalf of account.
func (s *Static) Approve(account, owner common.Address, hash common.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approvals[approval{account: account, owner: owner, hash: hash}] = struct{}{}
}

func (s *Static) Owners(ctx context.Context, account common.Address) ([]common.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[account]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "account %s", account.Hex())
	}
	return append([]common.Address(nil), a.owners...), nil
}

func (s *Static) Threshold(ctx context.Context, account common.Address) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[account]
	if !ok {
		return 0, errors.Wrapf(ErrNotFound, "account %s", account.Hex())
	}
	return a.threshold, nil
}

func (s *Static) IsHashApproved(ctx context.Context, account, owner common.Address, hash common.Hash) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.accounts[account]; !ok {
		return false, errors.Wrapf(ErrNotFound, "account %s", account.Hex())
	}
	_, ok := s.approvals[approval{account: account, owner: owner, hash: hash}]
	return ok, nil
}

// StaticFile is the JSON document LoadStaticFile reads.
type StaticFile struct {
	Accounts []struct {
		Address   common.Address   `json:"address"`
		Threshold uint64           `json:"threshold"`
		Owners    []common.Address `json:"owners"`
	} `json:"accounts"`
	Approvals []struct {
		Account common.Address `json:"account"`
		Owner   common.Address `json:"owner"`
		Hash    common.Hash    `json:"hash"`
	} `json:"approvals"`
}

// LoadStaticFile builds a directory from a JSON file.
func LoadStaticFile(path string) (*Static, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "read directory file: %s", err)
	}
	var f StaticFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "decode directory file: %s", err)
	}
	s := NewStatic()
	for _, a := range f.Accounts {
		if a.Threshold == 0 || a.Threshold > uint64(len(a.Owners)) {
			return nil, errors.Wrapf(errors.ErrInput, "account %s: threshold %d with %d owners", a.Address.Hex(), a.Threshold, len(a.Owners))
		}
		s.Set(a.Address, a.Threshold, a.Owners...)
	}
	for _, ap := range f.Approvals {
		s.Approve(ap.Account, ap.Owner, ap.Hash)
	}
	return s, nil
}
