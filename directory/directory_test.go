package directory

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/msgauth/errors"
	"github.com/iov-one/msgauth/msgauthtest"
	"github.com/iov-one/msgauth/msgauthtest/assert"
)

// countingDirectory counts reads and can be switched to fail.
type countingDirectory struct {
	OwnerDirectory

	mu         sync.Mutex
	ownerCalls int
	fail       error
}

func (c *countingDirectory) Owners(ctx context.Context, account common.Address) ([]common.Address, error) {
	c.mu.Lock()
	c.ownerCalls++
	fail := c.fail
	c.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	return c.OwnerDirectory.Owners(ctx, account)
}

func (c *countingDirectory) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ownerCalls
}

func TestStatic(t *testing.T) {
	ctx := context.Background()
	account := msgauthtest.Addr(0xaa)
	a, b := msgauthtest.Addr(0x01), msgauthtest.Addr(0x02)
	hash := common.HexToHash("0x01")

	dir := NewStatic()
	dir.Set(account, 2, a, b)
	dir.Approve(account, b, hash)

	owners, err := dir.Owners(ctx, account)
	assert.Nil(t, err)
	assert.Equal(t, []common.Address{a, b}, owners)
	threshold, err := dir.Threshold(ctx, account)
	assert.Nil(t, err)
	assert.Equal(t, uint64(2), threshold)

	ok, err := dir.IsHashApproved(ctx, account, b, hash)
	assert.Nil(t, err)
	assert.Equal(t, true, ok)
	ok, err = dir.IsHashApproved(ctx, account, a, hash)
	assert.Nil(t, err)
	assert.Equal(t, false, ok)

	_, err = dir.Owners(ctx, msgauthtest.Addr(0xbb))
	assert.IsErr(t, ErrNotFound, err)
	_, err = dir.Threshold(ctx, msgauthtest.Addr(0xbb))
	assert.IsErr(t, ErrNotFound, err)

	// Returned owners are a copy.
	owners[0] = msgauthtest.Addr(0xff)
	again, _ := dir.Owners(ctx, account)
	assert.Equal(t, a, again[0])
}

func TestLoadStaticFile(t *testing.T) {
	cases := map[string]struct {
		Content string
		WantErr *errors.Error
	}{
		"valid": {
			Content: `{"accounts": [{"address": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "threshold": 1, "owners": ["0x0101010101010101010101010101010101010101"]}],
			"approvals": [{"account": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "owner": "0x0101010101010101010101010101010101010101", "hash": "0x0000000000000000000000000000000000000000000000000000000000000001"}]}`,
		},
		"threshold above owners": {
			Content: `{"accounts": [{"address": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "threshold": 2, "owners": ["0x0101010101010101010101010101010101010101"]}]}`,
			WantErr: errors.ErrInput,
		},
		"zero threshold": {
			Content: `{"accounts": [{"address": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "threshold": 0, "owners": []}]}`,
			WantErr: errors.ErrInput,
		},
		"not json": {
			Content: `accounts: []`,
			WantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "directory.json")
			assert.Nil(t, os.WriteFile(path, []byte(tc.Content), 0o600))

			dir, err := LoadStaticFile(path)
			assert.IsErr(t, tc.WantErr, err)
			if tc.WantErr != nil {
				return
			}
			owners, err := dir.Owners(context.Background(), msgauthtest.Addr(0xaa))
			assert.Nil(t, err)
			assert.Equal(t, []common.Address{msgauthtest.Addr(0x01)}, owners)
			ok, err := dir.IsHashApproved(context.Background(), msgauthtest.Addr(0xaa), msgauthtest.Addr(0x01), common.HexToHash("0x01"))
			assert.Nil(t, err)
			assert.Equal(t, true, ok)
		})
	}

	_, err := LoadStaticFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.IsErr(t, errors.ErrInput, err)
}

func TestSnapshotReadsOnce(t *testing.T) {
	ctx := context.Background()
	account := msgauthtest.Addr(0xaa)
	static := NewStatic()
	static.Set(account, 1, msgauthtest.Addr(0x01))
	inner := &countingDirectory{OwnerDirectory: static}

	snap := NewSnapshot(inner)
	for i := 0; i < 3; i++ {
		owners, err := snap.Owners(ctx, account)
		assert.Nil(t, err)
		assert.Equal(t, 1, len(owners))
	}
	assert.Equal(t, 1, inner.calls())

	// A fresh snapshot reads again.
	_, err := NewSnapshot(inner).Owners(ctx, account)
	assert.Nil(t, err)
	assert.Equal(t, 2, inner.calls())
}

func TestSnapshotDoesNotMemoizeFailures(t *testing.T) {
	ctx := context.Background()
	account := msgauthtest.Addr(0xaa)
	static := NewStatic()
	static.Set(account, 1, msgauthtest.Addr(0x01))
	inner := &countingDirectory{OwnerDirectory: static, fail: ErrUnavailable.New("node down")}

	snap := NewSnapshot(inner)
	_, err := snap.Owners(ctx, account)
	assert.IsErr(t, ErrUnavailable, err)

	inner.mu.Lock()
	inner.fail = nil
	inner.mu.Unlock()
	_, err = snap.Owners(ctx, account)
	assert.Nil(t, err)
	assert.Equal(t, 2, inner.calls())
}

type ownersOnly struct {
	OwnerDirectory
}

func TestDecoratorsReportUnsupportedApprovals(t *testing.T) {
	ctx := context.Background()
	static := NewStatic()

	_, err := NewSnapshot(ownersOnly{static}).IsHashApproved(ctx, common.Address{}, common.Address{}, common.Hash{})
	assert.IsErr(t, ErrUnsupported, err)

	cached, err := NewCached(ctx, ownersOnly{static}, time.Minute)
	assert.Nil(t, err)
	defer cached.Close()
	_, err = cached.IsHashApproved(ctx, common.Address{}, common.Address{}, common.Hash{})
	assert.IsErr(t, ErrUnsupported, err)
}

func TestCached(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	account := msgauthtest.Addr(0xaa)
	owners := []common.Address{msgauthtest.Addr(0x01), msgauthtest.Addr(0x02)}
	static := NewStatic()
	static.Set(account, 2, owners...)
	inner := &countingDirectory{OwnerDirectory: static}

	cached, err := NewCached(ctx, inner, time.Minute)
	assert.Nil(t, err)
	defer cached.Close()

	for i := 0; i < 3; i++ {
		got, err := cached.Owners(ctx, account)
		assert.Nil(t, err)
		assert.Equal(t, owners, got)
		threshold, err := cached.Threshold(ctx, account)
		assert.Nil(t, err)
		assert.Equal(t, uint64(2), threshold)
	}
	assert.Equal(t, 1, inner.calls())

	_, err = cached.Owners(ctx, msgauthtest.Addr(0xbb))
	assert.IsErr(t, ErrNotFound, err)
	_, err = cached.Owners(ctx, msgauthtest.Addr(0xbb))
	assert.IsErr(t, ErrNotFound, err)
	assert.Equal(t, 3, inner.calls())
}

func TestIsOwner(t *testing.T) {
	owners := []common.Address{msgauthtest.Addr(0x01), msgauthtest.Addr(0x02)}
	assert.Equal(t, true, IsOwner(owners, msgauthtest.Addr(0x02)))
	assert.Equal(t, false, IsOwner(owners, msgauthtest.Addr(0x03)))
	assert.Equal(t, false, IsOwner(nil, msgauthtest.Addr(0x03)))
}
