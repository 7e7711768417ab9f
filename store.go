package msgauth

// ReadOnlyKVStore gives read access to a sorted key value store.
type ReadOnlyKVStore interface {
	// Get returns nil when the key is missing.
	Get(key []byte) ([]byte, error)

	Has(key []byte) (bool, error)

	// Iterator walks keys in [start, end) in ascending order. A nil bound is
	// open. The range must not be written to while the iterator is in use.
	Iterator(start, end []byte) (Iterator, error)
}

// SetDeleter is the write half shared by stores and batches. Callers must
// not modify key or value after passing them in.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVStore is implemented by every storage backend.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter
	NewBatch() Batch
}

// Batch collects writes and applies them on Write.
type Batch interface {
	SetDeleter
	Write() error
}

// Iterator returns entries one by one:
//
//	it, err := kv.Iterator(start, end)
//	if err != nil {
//		return err
//	}
//	defer it.Release()
//	for {
//		key, value, err := it.Next()
//		if errors.ErrIteratorDone.Is(err) {
//			break
//		} else if err != nil {
//			return err
//		}
//		...
//	}
type Iterator interface {
	// Next returns ErrIteratorDone once all entries were read.
	Next() (key, value []byte, err error)
	Release()
}

// CacheableKVStore can stack a write cache on itself. The ledger runs every
// state change inside such a cache so that a failing operation leaves no
// partial writes behind.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap buffers writes until Write flushes them to the parent store,
// or Discard drops them. Reads see the buffered writes.
type KVCacheWrap interface {
	CacheableKVStore
	Write() error
	Discard()
}
