package orm

import (
	"bytes"
	"math"

	"github.com/iov-one/msgauth"
	"github.com/iov-one/msgauth/errors"
)

// Indexer calculates the secondary index value for a given model. Returning
// nil means the model is not indexed.
type Indexer func(Model) ([]byte, error)

const nativeIdxPrefix = "_x."

// nativeIndex keeps one empty valued entry per indexed model, keyed
//
//	_x.<len>name<len>value<len>primary key
//
// so that a range scan over name and value yields the primary keys in order.
type nativeIndex struct {
	name    string
	indexer Indexer
}

// entryKey returns the index key of m stored under key, or nil when m is not
// indexed.
func (ix *nativeIndex) entryKey(m Model, key []byte) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	v, err := ix.indexer(m)
	if err != nil {
		return nil, errors.Wrapf(err, "index %s", ix.name)
	}
	if v == nil {
		return nil, nil
	}
	return packNativeIdxKey([][]byte{[]byte(ix.name), v, key})
}

// update moves the index entry of key from prev to next. Either may be nil,
// for a created or a deleted model.
func (ix *nativeIndex) update(db msgauth.KVStore, key []byte, prev, next Model) error {
	if prev == nil && next == nil {
		return errors.Wrap(errors.ErrHuman, "index update without a model")
	}
	old, err := ix.entryKey(prev, key)
	if err != nil {
		return err
	}
	cur, err := ix.entryKey(next, key)
	if err != nil {
		return err
	}
	if old != nil && !bytes.Equal(old, cur) {
		if err := db.Delete(old); err != nil {
			return errors.Wrap(err, "drop index entry")
		}
	}
	if cur != nil {
		if err := db.Set(cur, []byte{}); err != nil {
			return errors.Wrap(err, "write index entry")
		}
	}
	return nil
}

// keys returns an iterator over primary keys of all entities indexed under
// the given value, in ascending primary key order.
func (ix *nativeIndex) keys(db msgauth.ReadOnlyKVStore, value []byte) (msgauth.Iterator, error) {
	start, err := packNativeIdxKey([][]byte{[]byte(ix.name), value})
	if err != nil {
		return nil, errors.Wrap(err, "build index key")
	}
	// MaxUint8 is never used as a chunk length so it closes the range.
	end := make([]byte, len(start)+1)
	copy(end, start)
	end[len(end)-1] = math.MaxUint8

	it, err := db.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return &nativeIndexIterator{dbit: it}, nil
}

// nativeIndexIterator yields primary keys, values are always nil.
type nativeIndexIterator struct {
	dbit msgauth.Iterator
}

func (it *nativeIndexIterator) Release() {
	it.dbit.Release()
}

func (it *nativeIndexIterator) Next() ([]byte, []byte, error) {
	key, _, err := it.dbit.Next()
	if err != nil {
		return nil, nil, err
	}
	chunks, err := unpackNativeIdxKey(key)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unpack native index key")
	}
	return chunks[len(chunks)-1], nil, nil
}

// packNativeIdxKey joins chunks, each prefixed with its length byte. Chunks
// "ab", "" and "c" give _x.<2>ab<0><1>c.
func packNativeIdxKey(chunks [][]byte) ([]byte, error) {
	size := len(nativeIdxPrefix)
	for _, b := range chunks {
		size += len(b) + 1
	}
	res := make([]byte, 0, size)
	res = append(res, nativeIdxPrefix...)
	for _, b := range chunks {
		if len(b) > math.MaxUint8-1 {
			return nil, errors.Wrapf(errors.ErrInput, "index chunk of %d bytes, limit is %d", len(b), math.MaxUint8-1)
		}
		res = append(res, uint8(len(b)))
		res = append(res, b...)
	}
	return res, nil
}

func unpackNativeIdxKey(b []byte) ([][]byte, error) {
	if !bytes.HasPrefix(b, []byte(nativeIdxPrefix)) {
		return nil, errors.Wrap(errors.ErrInput, "not a native index key")
	}
	b = b[len(nativeIdxPrefix):]
	res := make([][]byte, 0, 3)
	for len(b) > 0 {
		size := int(b[0])
		if len(b) < 1+size {
			return nil, errors.Wrap(errors.ErrInput, "malformed offset")
		}
		res = append(res, b[1:1+size])
		b = b[1+size:]
	}
	return res, nil
}
