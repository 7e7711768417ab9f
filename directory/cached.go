package directory

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/msgauth/errors"
)

// Cached keeps directory answers for a fixed time. Answers may be stale for
// up to the configured TTL, use it only where that is acceptable. Approvals
// and failures are never cached.
type Cached struct {
	dir   OwnerDirectory
	cache *bigcache.BigCache
}

var (
	_ OwnerDirectory = (*Cached)(nil)
	_ HashApprover   = (*Cached)(nil)
)

// NewCached wraps dir with a cache keeping entries for ttl. Cancelling ctx
// stops the background cleanup of expired entries.
func NewCached(ctx context.Context, dir OwnerDirectory, ttl time.Duration) (*Cached, error) {
	conf := bigcache.DefaultConfig(ttl)
	conf.CleanWindow = ttl
	conf.Shards = 16
	conf.MaxEntriesInWindow = 1024
	conf.MaxEntrySize = 256
	conf.Verbose = false
	cache, err := bigcache.New(ctx, conf)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cache: %s", err)
	}
	return &Cached{dir: dir, cache: cache}, nil
}

// Close releases the cache.
func (c *Cached) Close() error {
	return c.cache.Close()
}

func (c *Cached) Owners(ctx context.Context, account common.Address) ([]common.Address, error) {
	key := "owners:" + account.Hex()
	if raw, err := c.cache.Get(key); err == nil {
		return decodeOwners(raw), nil
	}

	owners, err := c.dir.Owners(ctx, account)
	if err != nil {
		return nil, err
	}
	// A failed write only means the next call hits the directory again.
	_ = c.cache.Set(key, encodeOwners(owners))
	return owners, nil
}

func (c *Cached) Threshold(ctx context.Context, account common.Address) (uint64, error) {
	key := "threshold:" + account.Hex()
	if raw, err := c.cache.Get(key); err == nil && len(raw) == 8 {
		return binary.BigEndian.Uint64(raw), nil
	}

	threshold, err := c.dir.Threshold(ctx, account)
	if err != nil {
		return 0, err
	}
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, threshold)
	_ = c.cache.Set(key, raw)
	return threshold, nil
}

func (c *Cached) IsHashApproved(ctx context.Context, account, owner common.Address, hash common.Hash) (bool, error) {
	approver, ok := c.dir.(HashApprover)
	if !ok {
		return false, errors.Wrapf(ErrUnsupported, "%T", c.dir)
	}
	return approver.IsHashApproved(ctx, account, owner, hash)
}

func encodeOwners(owners []common.Address) []byte {
	raw := make([]byte, 0, len(owners)*common.AddressLength)
	for _, o := range owners {
		raw = append(raw, o[:]...)
	}
	return raw
}

func decodeOwners(raw []byte) []common.Address {
	owners := make([]common.Address, len(raw)/common.AddressLength)
	for i := range owners {
		copy(owners[i][:], raw[i*common.AddressLength:])
	}
	return owners
}
