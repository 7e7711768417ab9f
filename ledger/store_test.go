package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/msgauth"
	"github.com/iov-one/msgauth/errors"
	"github.com/iov-one/msgauth/msgauthtest"
	"github.com/iov-one/msgauth/msgauthtest/assert"
	"github.com/iov-one/msgauth/msghash"
	"github.com/iov-one/msgauth/sigcodec"
	"github.com/iov-one/msgauth/store"
	"github.com/iov-one/msgauth/store/leveldb"
)

func testMessage(account common.Address, hash byte, created msgauth.UnixTime) *Message {
	return &Message{
		Hash:       common.BytesToHash([]byte{hash}).Bytes(),
		Account:    account.Bytes(),
		Kind:       msghash.KindText,
		Payload:    []byte("hello"),
		ProposedBy: msgauthtest.Addr(0x01).Bytes(),
		Created:    created,
		Modified:   created,
	}
}

func testConfirmation(msg *Message, owner byte, created msgauth.UnixTime) *Confirmation {
	return &Confirmation{
		MessageHash:   msg.Hash,
		Owner:         msgauthtest.Addr(owner).Bytes(),
		SignatureType: sigcodec.TypeApprovedHash,
		Signature:     sigcodec.NewApprovedHashRecord(msgauthtest.Addr(owner)).Bytes(),
		Created:       created,
		Modified:      created,
	}
}

func TestKVStore(t *testing.T) {
	backends := map[string]func(t *testing.T) msgauth.CacheableKVStore{
		"memory": func(t *testing.T) msgauth.CacheableKVStore {
			return store.MemStore()
		},
		"leveldb": func(t *testing.T) msgauth.CacheableKVStore {
			db, err := leveldb.Open(filepath.Join(t.TempDir(), "ledger"))
			if err != nil {
				t.Fatalf("cannot open leveldb: %s", err)
			}
			t.Cleanup(func() { db.Close() })
			return db
		},
	}

	for name, newDB := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := NewKVStore(newDB(t))
			account := msgauthtest.RandomAddr()

			msg := testMessage(account, 0x10, 100)
			err := s.CreateMessage(ctx, msg, []*Confirmation{
				testConfirmation(msg, 0x03, 100),
				testConfirmation(msg, 0x01, 100),
			})
			assert.Nil(t, err)

			err = s.CreateMessage(ctx, msg, []*Confirmation{testConfirmation(msg, 0x02, 100)})
			assert.IsErr(t, ErrDuplicateMessage, err)

			got, err := s.Message(ctx, msg.HashValue())
			assert.Nil(t, err)
			assert.Equal(t, msg, got)

			confs, err := s.Confirmations(ctx, msg.HashValue())
			assert.Nil(t, err)
			assert.Equal(t, 2, len(confs))
			assert.Equal(t, msgauthtest.Addr(0x01), confs[0].OwnerAddress())
			assert.Equal(t, msgauthtest.Addr(0x03), confs[1].OwnerAddress())

			// A confirmation older than the last change is moved forward.
			conf := testConfirmation(msg, 0x02, 50)
			assert.Nil(t, s.AddConfirmation(ctx, conf))
			assert.Equal(t, msgauth.UnixTime(101), conf.Created)
			assert.Equal(t, msgauth.UnixTime(101), conf.Modified)

			got, err = s.Message(ctx, msg.HashValue())
			assert.Nil(t, err)
			assert.Equal(t, msgauth.UnixTime(100), got.Created)
			assert.Equal(t, msgauth.UnixTime(101), got.Modified)

			err = s.AddConfirmation(ctx, testConfirmation(msg, 0x02, 200))
			assert.IsErr(t, ErrDuplicateConfirmation, err)

			ok, err := s.HasConfirmation(ctx, msg.HashValue(), msgauthtest.Addr(0x02))
			assert.Nil(t, err)
			assert.Equal(t, true, ok)
			ok, err = s.HasConfirmation(ctx, msg.HashValue(), msgauthtest.Addr(0x04))
			assert.Nil(t, err)
			assert.Equal(t, false, ok)

			other := testMessage(account, 0x11, 300)
			assert.Nil(t, s.CreateMessage(ctx, other, []*Confirmation{testConfirmation(other, 0x01, 300)}))
			assert.Nil(t, s.CreateMessage(ctx, testMessage(msgauthtest.RandomAddr(), 0x12, 300), nil))

			msgs, err := s.AccountMessages(ctx, account)
			assert.Nil(t, err)
			assert.Equal(t, 2, len(msgs))

			// Confirmations of other messages do not leak.
			confs, err = s.Confirmations(ctx, other.HashValue())
			assert.Nil(t, err)
			assert.Equal(t, 1, len(confs))
		})
	}
}

func TestKVStoreCreateIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := NewKVStore(store.MemStore())
	msg := testMessage(msgauthtest.RandomAddr(), 0x20, 10)

	err := s.CreateMessage(ctx, msg, []*Confirmation{
		testConfirmation(msg, 0x01, 10),
		testConfirmation(msg, 0x01, 10),
	})
	assert.IsErr(t, ErrDuplicateConfirmation, err)

	_, err = s.Message(ctx, msg.HashValue())
	assert.IsErr(t, ErrMessageNotFound, err)
	confs, err := s.Confirmations(ctx, msg.HashValue())
	assert.Nil(t, err)
	assert.Equal(t, 0, len(confs))
}

func TestKVStoreRejectsInvalidModels(t *testing.T) {
	ctx := context.Background()
	s := NewKVStore(store.MemStore())

	msg := testMessage(msgauthtest.RandomAddr(), 0x30, 10)
	msg.Account = []byte{1, 2, 3}
	err := s.CreateMessage(ctx, msg, nil)
	assert.IsErr(t, errors.ErrModel, err)

	msg = testMessage(msgauthtest.RandomAddr(), 0x31, 10)
	assert.Nil(t, s.CreateMessage(ctx, msg, nil))
	err = s.AddConfirmation(ctx, testConfirmation(testMessage(msgauthtest.RandomAddr(), 0x32, 10), 0x01, 10))
	assert.IsErr(t, ErrMessageNotFound, err)
}

func TestMessageValidate(t *testing.T) {
	cases := map[string]struct {
		Mutate  func(*Message)
		WantErr *errors.Error
	}{
		"valid":           {Mutate: func(*Message) {}},
		"short hash":      {Mutate: func(m *Message) { m.Hash = m.Hash[:31] }, WantErr: errors.ErrModel},
		"unknown kind":    {Mutate: func(m *Message) { m.Kind = msghash.KindUnknown }, WantErr: errors.ErrModel},
		"empty text":      {Mutate: func(m *Message) { m.Payload = nil }},
		"empty typed":     {Mutate: func(m *Message) { m.Kind = msghash.KindTypedData; m.Payload = nil }, WantErr: errors.ErrModel},
		"no proposer":     {Mutate: func(m *Message) { m.ProposedBy = nil }, WantErr: errors.ErrModel},
		"negative app":    {Mutate: func(m *Message) { m.AppID = -3 }, WantErr: errors.ErrModel},
		"modified early":  {Mutate: func(m *Message) { m.Modified = m.Created - 1 }, WantErr: errors.ErrModel},
		"negative create": {Mutate: func(m *Message) { m.Created = -1; m.Modified = -1 }, WantErr: errors.ErrState},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			m := testMessage(msgauthtest.RandomAddr(), 0x01, 10)
			tc.Mutate(m)
			assert.IsErr(t, tc.WantErr, m.Validate())
		})
	}
}
