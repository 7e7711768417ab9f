package store

import (
	"bytes"

	"github.com/google/btree"
)

// degree of the btrees holding cached writes. Caches live for a single
// ledger write, so they stay small.
const degree = 4

// entry is a write buffered by a Cache: either a new value or a deletion
// marker hiding the value of the layer below.
type entry struct {
	key     []byte
	value   []byte
	deleted bool
}

func entryLess(a, b entry) bool {
	return bytes.Compare(a.key, b.key) < 0
}

// Cache buffers writes on top of another store. Reads see the buffered
// writes first. Write replays them through a batch of the store below,
// Discard drops them.
//
// A Cache is not safe for concurrent use.
type Cache struct {
	tree  *btree.BTreeG[entry]
	free  *btree.FreeListG[entry]
	back  KVStore
	batch Batch
}

var _ KVCacheWrap = (*Cache)(nil)

// NewCache returns a cache over back. Write goes through a single batch of
// back, so it is as atomic as the batches of back are.
func NewCache(back KVStore) *Cache {
	return newCache(back, btree.NewFreeListG[entry](btree.DefaultFreeListSize))
}

func newCache(back KVStore, free *btree.FreeListG[entry]) *Cache {
	return &Cache{
		tree:  btree.NewWithFreeListG[entry](degree, entryLess, free),
		free:  free,
		back:  back,
		batch: back.NewBatch(),
	}
}

// MemStore returns a store keeping everything in memory. Nothing is
// persisted, use it for tests and throwaway ledgers.
func MemStore() CacheableKVStore {
	return NewCache(EmptyKVStore{})
}

// CacheWrap stacks another cache on this one. Writing the new cache only
// updates this one.
func (c *Cache) CacheWrap() KVCacheWrap {
	return newCache(c, c.free)
}

// NewBatch returns a batch applying its operations to this cache.
func (c *Cache) NewBatch() Batch {
	return NewNonAtomicBatch(c)
}

// Write flushes all buffered writes and empties the cache.
func (c *Cache) Write() error {
	err := c.batch.Write()
	c.Discard()
	return err
}

// Discard drops all buffered writes. The cache can be used again.
func (c *Cache) Discard() {
	c.tree.Clear(true)
	c.batch = c.back.NewBatch()
}

func (c *Cache) Set(key, value []byte) error {
	c.tree.ReplaceOrInsert(entry{key: key, value: value})
	return c.batch.Set(key, value)
}

func (c *Cache) Delete(key []byte) error {
	c.tree.ReplaceOrInsert(entry{key: key, deleted: true})
	return c.batch.Delete(key)
}

func (c *Cache) Get(key []byte) ([]byte, error) {
	if e, ok := c.tree.Get(entry{key: key}); ok {
		if e.deleted {
			return nil, nil
		}
		return e.value, nil
	}
	return c.back.Get(key)
}

func (c *Cache) Has(key []byte) (bool, error) {
	if e, ok := c.tree.Get(entry{key: key}); ok {
		return !e.deleted, nil
	}
	return c.back.Has(key)
}

// Iterator returns the keys of [start, end) of both this cache and the
// store below, in ascending order.
func (c *Cache) Iterator(start, end []byte) (Iterator, error) {
	below, err := c.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	it, err := newMergeIterator(c.entries(start, end), below)
	if err != nil {
		return nil, err
	}
	return it, nil
}

// entries returns a copy of the buffered writes within [start, end). A nil
// bound is open.
func (c *Cache) entries(start, end []byte) []entry {
	var out []entry
	collect := func(e entry) bool {
		out = append(out, e)
		return true
	}
	switch {
	case start == nil && end == nil:
		c.tree.Ascend(collect)
	case start == nil:
		c.tree.AscendLessThan(entry{key: end}, collect)
	case end == nil:
		c.tree.AscendGreaterOrEqual(entry{key: start}, collect)
	default:
		c.tree.AscendRange(entry{key: start}, entry{key: end}, collect)
	}
	return out
}
