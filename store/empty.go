package store

import "github.com/iov-one/msgauth/errors"

// EmptyKVStore holds nothing and ignores writes. It is the bottom layer of
// MemStore.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

func (EmptyKVStore) Get([]byte) ([]byte, error) { return nil, nil }
func (EmptyKVStore) Has([]byte) (bool, error) { return false, nil }
func (EmptyKVStore) Set(key, value []byte) error { return nil }
func (EmptyKVStore) Delete([]byte) error { return nil }
func (EmptyKVStore) Iterator(_, _ []byte) (Iterator, error) { return exhausted{}, nil }

func (e EmptyKVStore) NewBatch() Batch {
	return NewNonAtomicBatch(e)
}

type exhausted struct{}

func (exhausted) Next() ([]byte, []byte, error) {
	return nil, nil, errors.Wrap(errors.ErrIteratorDone, "empty store")
}

func (exhausted) Release() {}
