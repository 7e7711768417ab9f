package ledger

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/msgauth"
	"github.com/iov-one/msgauth/errors"
	"github.com/iov-one/msgauth/orm"
)

// Store persists messages and confirmations. Every write is an atomic
// check-and-insert: uniqueness of messages by hash and of confirmations by
// (message hash, owner) holds under concurrent callers.
type Store interface {
	// CreateMessage stores a message together with its first
	// confirmations. It fails with ErrDuplicateMessage if a message with
	// the same hash exists and with ErrDuplicateConfirmation if two
	// confirmations share an owner. Nothing is written on failure.
	CreateMessage(ctx context.Context, msg *Message, confs []*Confirmation) error

	// AddConfirmation appends a confirmation and advances the message
	// modification time. Timestamps of conf are updated in place so that
	// the message modification time strictly increases.
	AddConfirmation(ctx context.Context, conf *Confirmation) error

	// Message returns ErrMessageNotFound if there is no such message.
	Message(ctx context.Context, hash common.Hash) (*Message, error)

	// Confirmations returns all confirmations of a message, sorted by
	// ascending owner.
	Confirmations(ctx context.Context, hash common.Hash) ([]*Confirmation, error)

	HasConfirmation(ctx context.Context, hash common.Hash, owner common.Address) (bool, error)

	// AccountMessages returns all messages of an account, in no
	// particular order.
	AccountMessages(ctx context.Context, account common.Address) ([]*Message, error)
}

// KVStore is a Store on top of a key value database. Writes are serialized
// and applied through a cache wrap, so each of them lands atomically.
type KVStore struct {
	mu            sync.RWMutex
	db            msgauth.CacheableKVStore
	messages      orm.ModelBucket
	confirmations orm.ModelBucket
}

var _ Store = (*KVStore)(nil)

// NewKVStore returns a store keeping its state in db. The db must not be
// written by anything else.
func NewKVStore(db msgauth.CacheableKVStore) *KVStore {
	return &KVStore{
		db:            db,
		messages:      orm.NewModelBucket("msg", &Message{}, orm.WithIndex("account", messageAccount)),
		confirmations: orm.NewModelBucket("msgconf", &Confirmation{}),
	}
}

func messageAccount(m orm.Model) ([]byte, error) {
	msg, ok := m.(*Message)
	if !ok {
		return nil, errors.WithType(errors.ErrType, m)
	}
	return msg.Account, nil
}

// confirmationKey places all confirmations of a message next to each
// other, ordered by owner.
func confirmationKey(hash, owner []byte) []byte {
	key := make([]byte, 0, common.HashLength+common.AddressLength)
	key = append(key, hash...)
	return append(key, owner...)
}

func (s *KVStore) CreateMessage(ctx context.Context, msg *Message, confs []*Confirmation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db := s.db.CacheWrap()
	defer db.Discard()

	if err := s.messages.Insert(db, msg.Hash, msg); err != nil {
		if errors.ErrDuplicate.Is(err) {
			return errors.Wrapf(ErrDuplicateMessage, "message %x for account %x", msg.Hash, msg.Account)
		}
		return errors.Wrap(err, "insert message")
	}
	for _, c := range confs {
		if err := s.confirmations.Insert(db, confirmationKey(c.MessageHash, c.Owner), c); err != nil {
			if errors.ErrDuplicate.Is(err) {
				return errors.Wrapf(ErrDuplicateConfirmation, "owner %x", c.Owner)
			}
			return errors.Wrap(err, "insert confirmation")
		}
	}
	return db.Write()
}

func (s *KVStore) AddConfirmation(ctx context.Context, conf *Confirmation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db := s.db.CacheWrap()
	defer db.Discard()

	var msg Message
	if err := s.messages.One(db, conf.MessageHash, &msg); err != nil {
		if errors.ErrNotFound.Is(err) {
			return errors.Wrapf(ErrMessageNotFound, "%x", conf.MessageHash)
		}
		return errors.Wrap(err, "load message")
	}

	if conf.Created <= msg.Modified {
		conf.Created = msg.Modified + 1
	}
	conf.Modified = conf.Created
	msg.Modified = conf.Modified

	if err := s.confirmations.Insert(db, confirmationKey(conf.MessageHash, conf.Owner), conf); err != nil {
		if errors.ErrDuplicate.Is(err) {
			return errors.Wrapf(ErrDuplicateConfirmation, "owner %x", conf.Owner)
		}
		return errors.Wrap(err, "insert confirmation")
	}
	if err := s.messages.Put(db, msg.Hash, &msg); err != nil {
		return errors.Wrap(err, "update message")
	}
	return db.Write()
}

func (s *KVStore) Message(ctx context.Context, hash common.Hash) (*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var msg Message
	if err := s.messages.One(s.db, hash[:], &msg); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrapf(ErrMessageNotFound, "%s", hash.Hex())
		}
		return nil, err
	}
	return &msg, nil
}

func (s *KVStore) Confirmations(ctx context.Context, hash common.Hash) ([]*Confirmation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, err := s.confirmations.PrefixScan(s.db, hash[:])
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var confs []*Confirmation
	for {
		var c Confirmation
		switch _, err := it.LoadNext(&c); {
		case errors.ErrIteratorDone.Is(err):
			return confs, nil
		case err != nil:
			return nil, errors.Wrap(err, "load confirmation")
		}
		confs = append(confs, &c)
	}
}

func (s *KVStore) HasConfirmation(ctx context.Context, hash common.Hash, owner common.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch err := s.confirmations.Has(s.db, confirmationKey(hash[:], owner[:])); {
	case err == nil:
		return true, nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, err
	}
}

func (s *KVStore) AccountMessages(ctx context.Context, account common.Address) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, err := s.messages.IndexScan(s.db, "account", account[:])
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var msgs []*Message
	for {
		var m Message
		switch _, err := it.LoadNext(&m); {
		case errors.ErrIteratorDone.Is(err):
			return msgs, nil
		case err != nil:
			return nil, errors.Wrap(err, "load message")
		}
		msgs = append(msgs, &m)
	}
}
