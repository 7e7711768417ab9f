package store

import "github.com/iov-one/msgauth"

// Aliases so that callers of this package do not need the root import.
type (
	ReadOnlyKVStore  = msgauth.ReadOnlyKVStore
	SetDeleter       = msgauth.SetDeleter
	KVStore          = msgauth.KVStore
	Batch            = msgauth.Batch
	Iterator         = msgauth.Iterator
	CacheableKVStore = msgauth.CacheableKVStore
	KVCacheWrap      = msgauth.KVCacheWrap
)

// Model is a key with its value.
type Model struct {
	Key   []byte
	Value []byte
}
