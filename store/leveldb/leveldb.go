/*
Package leveldb provides a persistent KVStore backed by goleveldb.

All writes performed through a CacheWrap end up in a single leveldb batch,
so a cache-wrap Write is atomic on disk.
*/
package leveldb

import (
	"github.com/iov-one/msgauth/errors"
	"github.com/iov-one/msgauth/store"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Store is a store.CacheableKVStore persisted in a leveldb database.
type Store struct {
	db *leveldb.DB
}

var _ store.CacheableKVStore = (*Store)(nil)

// Open opens (or creates) a database in the given directory.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open %q: %s", path, err)
	}
	return &Store{db: db}, nil
}

// OpenMem returns a database that keeps everything in memory. Useful for
// tests.
func OpenMem() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open memory storage: %s", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database. The store cannot be used afterwards.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// Get returns nil iff key doesn't exist.
func (s *Store) Get(key []byte) ([]byte, error) {
	val, err := s.db.Get(key, nil)
	switch {
	case err == leveldb.ErrNotFound:
		return nil, nil
	case err != nil:
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return val, nil
}

// Has checks if a key exists.
func (s *Store) Has(key []byte) (bool, error) {
	ok, err := s.db.Has(key, nil)
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return ok, nil
}

// Set writes the key directly, outside of any batch.
func (s *Store) Set(key, value []byte) error {
	if err := s.db.Put(key, value, nil); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// Delete removes the key directly, outside of any batch.
func (s *Store) Delete(key []byte) error {
	if err := s.db.Delete(key, nil); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// Iterator over a domain of keys in ascending order. End is exclusive.
func (s *Store) Iterator(start, end []byte) (store.Iterator, error) {
	it := s.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)
	return &iter{it: it}, nil
}

// NewBatch returns an atomic batch.
func (s *Store) NewBatch() store.Batch {
	return &batch{db: s.db, b: new(leveldb.Batch)}
}

// CacheWrap returns a btree cache whose Write flushes in one leveldb batch.
func (s *Store) CacheWrap() store.KVCacheWrap {
	return store.NewCache(s)
}

type batch struct {
	db *leveldb.DB
	b  *leveldb.Batch
}

var _ store.Batch = (*batch)(nil)

func (b *batch) Set(key, value []byte) error {
	b.b.Put(key, value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.b.Delete(key)
	return nil
}

func (b *batch) Write() error {
	if err := b.db.Write(b.b, nil); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	b.b.Reset()
	return nil
}

type iter struct {
	it iterator.Iterator
}

var _ store.Iterator = (*iter)(nil)

func (i *iter) Next() (key, value []byte, err error) {
	if !i.it.Next() {
		if err := i.it.Error(); err != nil {
			return nil, nil, errors.Wrap(errors.ErrDatabase, err.Error())
		}
		return nil, nil, errors.Wrap(errors.ErrIteratorDone, "leveldb done")
	}
	// Buffers returned by leveldb are reused on the next call.
	key = append([]byte(nil), i.it.Key()...)
	value = append([]byte(nil), i.it.Value()...)
	return key, value, nil
}

func (i *iter) Release() {
	i.it.Release()
}
