package orm

import (
	"testing"

	"github.com/iov-one/msgauth/errors"
	"github.com/iov-one/msgauth/msgauthtest/assert"
	"github.com/iov-one/msgauth/store"
)

func TestModelBucket(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})

	assert.Nil(t, b.Put(db, []byte("c1"), &counter{Count: 1}))

	var c1 counter
	assert.Nil(t, b.One(db, []byte("c1"), &c1))
	assert.Equal(t, int64(1), c1.Count)
	assert.Nil(t, b.Has(db, []byte("c1")))

	assert.IsErr(t, errors.ErrNotFound, b.One(db, []byte("unknown"), &c1))
	assert.IsErr(t, errors.ErrNotFound, b.Has(db, []byte("unknown")))
	assert.IsErr(t, errors.ErrModel, b.Put(db, []byte("c2"), &counter{Count: -1}))
}

func TestModelBucketInsert(t *testing.T) {
	cases := map[string]struct {
		Existing map[string]int64
		Key      string
		WantErr  *errors.Error
	}{
		"new key": {
			Existing: map[string]int64{"a": 1},
			Key:      "b",
			WantErr:  nil,
		},
		"key already taken": {
			Existing: map[string]int64{"a": 1},
			Key:      "a",
			WantErr:  errors.ErrDuplicate,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			b := NewModelBucket("cnts", &counter{})
			for k, v := range tc.Existing {
				assert.Nil(t, b.Put(db, []byte(k), &counter{Count: v}))
			}
			err := b.Insert(db, []byte(tc.Key), &counter{Count: 42})
			assert.IsErr(t, tc.WantErr, err)

			var c counter
			assert.Nil(t, b.One(db, []byte(tc.Key), &c))
			if tc.WantErr == nil {
				assert.Equal(t, int64(42), c.Count)
			} else {
				assert.Equal(t, tc.Existing[tc.Key], c.Count)
			}
		})
	}
}

func TestModelBucketPrefixScan(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{})
	other := NewModelBucket("others", &counter{})

	for k, v := range map[string]int64{"ab3": 3, "ab1": 1, "ac": 9, "ab2": 2, "b": 7} {
		assert.Nil(t, b.Put(db, []byte(k), &counter{Count: v}))
	}
	assert.Nil(t, other.Put(db, []byte("ab0"), &counter{Count: 100}))

	it, err := b.PrefixScan(db, []byte("ab"))
	assert.Nil(t, err)
	keys, models, err := loadAll(it)
	assert.Nil(t, err)
	assert.Equal(t, []string{"ab1", "ab2", "ab3"}, keys)
	for i, m := range models {
		assert.Equal(t, int64(i+1), m.Count)
	}
}

func TestModelBucketIndex(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &counter{}, WithIndex("owner", byOwner))

	assert.Nil(t, b.Put(db, []byte("c1"), &counter{Owner: "alice", Count: 1}))
	assert.Nil(t, b.Put(db, []byte("c2"), &counter{Owner: "bob", Count: 2}))
	assert.Nil(t, b.Put(db, []byte("c3"), &counter{Owner: "alice", Count: 3}))
	assert.Nil(t, b.Put(db, []byte("c4"), &counter{Count: 4}))

	it, err := b.IndexScan(db, "owner", []byte("alice"))
	assert.Nil(t, err)
	keys, _, err := loadAll(it)
	assert.Nil(t, err)
	assert.Equal(t, []string{"c1", "c3"}, keys)

	// Moving an entity to another owner must clean up the old index entry.
	assert.Nil(t, b.Put(db, []byte("c1"), &counter{Owner: "bob", Count: 1}))

	it, err = b.IndexScan(db, "owner", []byte("alice"))
	assert.Nil(t, err)
	keys, _, err = loadAll(it)
	assert.Nil(t, err)
	assert.Equal(t, []string{"c3"}, keys)

	it, err = b.IndexScan(db, "owner", []byte("bob"))
	assert.Nil(t, err)
	keys, _, err = loadAll(it)
	assert.Nil(t, err)
	assert.Equal(t, []string{"c1", "c2"}, keys)

	_, err = b.IndexScan(db, "unknown", []byte("bob"))
	assert.IsErr(t, ErrInvalidIndex, err)
}

func TestNativeIdxKey(t *testing.T) {
	cases := map[string]struct {
		Chunks [][]byte
	}{
		"three chunks": {Chunks: [][]byte{[]byte("aaa"), {}, []byte("c")}},
		"single":       {Chunks: [][]byte{[]byte("idx")}},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			raw, err := packNativeIdxKey(tc.Chunks)
			assert.Nil(t, err)
			got, err := unpackNativeIdxKey(raw)
			assert.Nil(t, err)
			assert.Equal(t, len(tc.Chunks), len(got))
			for i := range got {
				assert.Equal(t, string(tc.Chunks[i]), string(got[i]))
			}
		})
	}

	_, err := packNativeIdxKey([][]byte{make([]byte, 255)})
	assert.IsErr(t, errors.ErrInput, err)
}

func TestPrefixEnd(t *testing.T) {
	cases := map[string]struct {
		Prefix []byte
		Want   []byte
	}{
		"simple":       {Prefix: []byte{1, 2}, Want: []byte{1, 3}},
		"carry":        {Prefix: []byte{1, 0xff}, Want: []byte{2}},
		"all max":      {Prefix: []byte{0xff, 0xff}, Want: nil},
		"empty prefix": {Prefix: nil, Want: nil},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.Want, prefixEnd(tc.Prefix))
		})
	}
}
