package store

import (
	"bytes"

	"github.com/iov-one/msgauth/errors"
)

// mergeIterator walks the entries of a cache together with the iterator of
// the store below it. On equal keys the cache entry wins, and a deletion
// marker hides the key entirely.
type mergeIterator struct {
	entries []entry
	pos     int

	below     Iterator
	belowKey  []byte
	belowVal  []byte
	belowDone bool
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(entries []entry, below Iterator) (*mergeIterator, error) {
	it := &mergeIterator{entries: entries, below: below}
	if err := it.stepBelow(); err != nil {
		below.Release()
		return nil, err
	}
	return it, nil
}

func (it *mergeIterator) stepBelow() error {
	key, val, err := it.below.Next()
	switch {
	case errors.ErrIteratorDone.Is(err):
		it.belowKey, it.belowVal, it.belowDone = nil, nil, true
		return nil
	case err != nil:
		return err
	}
	it.belowKey, it.belowVal = key, val
	return nil
}

func (it *mergeIterator) Next() (key, value []byte, err error) {
	for {
		if it.pos == len(it.entries) {
			if it.belowDone {
				return nil, nil, errors.Wrap(errors.ErrIteratorDone, "cache")
			}
			key, value = it.belowKey, it.belowVal
			return key, value, it.stepBelow()
		}

		e := it.entries[it.pos]
		if !it.belowDone {
			switch cmp := bytes.Compare(it.belowKey, e.key); {
			case cmp < 0:
				key, value = it.belowKey, it.belowVal
				return key, value, it.stepBelow()
			case cmp == 0:
				if err := it.stepBelow(); err != nil {
					return nil, nil, err
				}
			}
		}

		it.pos++
		if !e.deleted {
			return e.key, e.value, nil
		}
	}
}

func (it *mergeIterator) Release() {
	it.below.Release()
	it.entries = nil
}
