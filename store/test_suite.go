package store

import (
	"bytes"
	"crypto/rand"
	"sort"
	"testing"

	"github.com/iov-one/msgauth/errors"
	"github.com/iov-one/msgauth/msgauthtest/assert"
)

// Opener returns a fresh, empty store together with a function releasing it.
type Opener func() (base CacheableKVStore, release func())

// RunSuite checks that the store returned by open behaves like a
// CacheableKVStore. Each subtest gets its own store.
func RunSuite(t *testing.T, open Opener) {
	t.Run("read your writes", func(t *testing.T) { testReadYourWrites(t, open) })
	t.Run("layers", func(t *testing.T) { testLayers(t, open) })
	t.Run("iterate", func(t *testing.T) { testIterate(t, open) })
	t.Run("iterate random", func(t *testing.T) { testIterateRandom(t, open) })
}

func testReadYourWrites(t *testing.T, open Opener) {
	base, release := open()
	defer release()

	key, value := []byte("msg/01"), []byte("pending")
	assertValue(t, base, key, nil)
	assert.Nil(t, base.Set(key, value))
	assertValue(t, base, key, value)

	cache := base.CacheWrap()
	assertValue(t, cache, key, value)

	other, otherValue := []byte("msg/02"), []byte("confirmed")
	assert.Nil(t, cache.Set(other, otherValue))
	assertValue(t, cache, other, otherValue)
	assertValue(t, base, other, nil)

	discarded := base.CacheWrap()
	assert.Nil(t, discarded.Set([]byte("msg/03"), []byte("lost")))
	assert.Nil(t, discarded.Delete(key))
	discarded.Discard()
	assertValue(t, base, key, value)
	assertValue(t, base, []byte("msg/03"), nil)

	assert.Nil(t, cache.Write())
	assertValue(t, base, other, otherValue)

	remove := base.CacheWrap()
	assert.Nil(t, remove.Delete(key))
	assertValue(t, remove, key, nil)
	assertValue(t, base, key, value)
	assert.Nil(t, remove.Write())
	assertValue(t, base, key, nil)
	assertValue(t, base, other, otherValue)
}

func testLayers(t *testing.T, open Opener) {
	cases := map[string]struct {
		base  []Op
		cache []Op
		// Values expected before and after the cache is written. Nil
		// stands for a missing key.
		before map[string][]byte
		after  map[string][]byte
	}{
		"overwrite": {
			base:   []Op{SetOp([]byte("a"), []byte("1"))},
			cache:  []Op{SetOp([]byte("a"), []byte("2"))},
			before: map[string][]byte{"a": []byte("1")},
			after:  map[string][]byte{"a": []byte("2")},
		},
		"delete hides the base value": {
			base:   []Op{SetOp([]byte("a"), []byte("1")), SetOp([]byte("b"), []byte("2"))},
			cache:  []Op{DelOp([]byte("a"))},
			before: map[string][]byte{"a": []byte("1"), "b": []byte("2")},
			after:  map[string][]byte{"a": nil, "b": []byte("2")},
		},
		"set after delete": {
			base:   []Op{SetOp([]byte("a"), []byte("1"))},
			cache:  []Op{DelOp([]byte("a")), SetOp([]byte("a"), []byte("3"))},
			before: map[string][]byte{"a": []byte("1")},
			after:  map[string][]byte{"a": []byte("3")},
		},
		"delete of a missing key": {
			cache:  []Op{DelOp([]byte("x")), SetOp([]byte("y"), []byte("9"))},
			before: map[string][]byte{"x": nil, "y": nil},
			after:  map[string][]byte{"x": nil, "y": []byte("9")},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, release := open()
			defer release()

			apply(t, base, tc.base)
			cache := base.CacheWrap()
			apply(t, cache, tc.cache)

			for k, v := range tc.before {
				assertValue(t, base, []byte(k), v)
			}
			for k, v := range tc.after {
				assertValue(t, cache, []byte(k), v)
			}

			nested := cache.CacheWrap()
			for k, v := range tc.after {
				assertValue(t, nested, []byte(k), v)
			}
			nested.Discard()

			assert.Nil(t, cache.Write())
			for k, v := range tc.after {
				assertValue(t, base, []byte(k), v)
			}
		})
	}
}

func testIterate(t *testing.T, open Opener) {
	m := func(k, v string) Model { return Model{Key: []byte(k), Value: []byte(v)} }

	cases := map[string]struct {
		base       []Op
		cache      []Op
		start, end []byte
		want       []Model
	}{
		"empty": {},
		"cache only": {
			cache: []Op{SetOp([]byte("b"), []byte("2")), SetOp([]byte("a"), []byte("1"))},
			want:  []Model{m("a", "1"), m("b", "2")},
		},
		"base only": {
			base: []Op{SetOp([]byte("b"), []byte("2")), SetOp([]byte("a"), []byte("1"))},
			want: []Model{m("a", "1"), m("b", "2")},
		},
		"interleaved": {
			base:  []Op{SetOp([]byte("a"), []byte("1")), SetOp([]byte("c"), []byte("3"))},
			cache: []Op{SetOp([]byte("b"), []byte("2")), SetOp([]byte("d"), []byte("4"))},
			want:  []Model{m("a", "1"), m("b", "2"), m("c", "3"), m("d", "4")},
		},
		"cache value wins": {
			base:  []Op{SetOp([]byte("a"), []byte("old")), SetOp([]byte("b"), []byte("2"))},
			cache: []Op{SetOp([]byte("a"), []byte("new"))},
			want:  []Model{m("a", "new"), m("b", "2")},
		},
		"deleted keys are skipped": {
			base:  []Op{SetOp([]byte("a"), []byte("1")), SetOp([]byte("b"), []byte("2")), SetOp([]byte("c"), []byte("3"))},
			cache: []Op{DelOp([]byte("a")), DelOp([]byte("c")), DelOp([]byte("z"))},
			want:  []Model{m("b", "2")},
		},
		"bounded range": {
			base:  []Op{SetOp([]byte("a"), []byte("1")), SetOp([]byte("c"), []byte("3"))},
			cache: []Op{SetOp([]byte("b"), []byte("2")), SetOp([]byte("d"), []byte("4"))},
			start: []byte("b"),
			end:   []byte("d"),
			want:  []Model{m("b", "2"), m("c", "3")},
		},
		"open start": {
			base:  []Op{SetOp([]byte("a"), []byte("1")), SetOp([]byte("c"), []byte("3"))},
			cache: []Op{SetOp([]byte("b"), []byte("2"))},
			end:   []byte("c"),
			want:  []Model{m("a", "1"), m("b", "2")},
		},
		"open end": {
			base:  []Op{SetOp([]byte("a"), []byte("1")), SetOp([]byte("c"), []byte("3"))},
			cache: []Op{SetOp([]byte("b"), []byte("2"))},
			start: []byte("b"),
			want:  []Model{m("b", "2"), m("c", "3")},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, release := open()
			defer release()

			apply(t, base, tc.base)
			cache := base.CacheWrap()
			apply(t, cache, tc.cache)
			assertIterate(t, cache, tc.start, tc.end, tc.want)
		})
	}
}

func testIterateRandom(t *testing.T, open Opener) {
	base, release := open()
	defer release()

	// Keys of one byte collide often enough to exercise overwrites and
	// deletes of keys present in both layers.
	want := make(map[string][]byte)
	for i := 0; i < 100; i++ {
		key := randBytes(1)
		value := randBytes(8)
		assert.Nil(t, base.Set(key, value))
		want[string(key)] = value
	}
	cache := base.CacheWrap()
	for i := 0; i < 100; i++ {
		key := randBytes(1)
		if i%3 == 0 {
			assert.Nil(t, cache.Delete(key))
			delete(want, string(key))
			continue
		}
		value := randBytes(8)
		assert.Nil(t, cache.Set(key, value))
		want[string(key)] = value
	}

	expected := make([]Model, 0, len(want))
	for k, v := range want {
		expected = append(expected, Model{Key: []byte(k), Value: v})
	}
	sort.Slice(expected, func(i, j int) bool {
		return bytes.Compare(expected[i].Key, expected[j].Key) < 0
	})

	assertIterate(t, cache, nil, nil, expected)
	if len(expected) > 4 {
		assertIterate(t, cache, expected[1].Key, expected[len(expected)-2].Key, expected[1:len(expected)-2])
	}

	assert.Nil(t, cache.Write())
	assertIterate(t, base, nil, nil, expected)
}

func apply(t testing.TB, out SetDeleter, ops []Op) {
	t.Helper()
	for _, op := range ops {
		assert.Nil(t, op(out))
	}
}

// assertValue checks Get and Has of key. A nil value means the key must be
// missing.
func assertValue(t testing.TB, kv ReadOnlyKVStore, key, want []byte) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, want, got)
	has, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, want != nil, has)
}

func assertIterate(t testing.TB, kv ReadOnlyKVStore, start, end []byte, want []Model) {
	t.Helper()
	it, err := kv.Iterator(start, end)
	assert.Nil(t, err)
	defer it.Release()

	for i, w := range want {
		key, value, err := it.Next()
		assert.Nil(t, err)
		if !bytes.Equal(w.Key, key) {
			t.Fatalf("entry %d: want key %X, got %X", i, w.Key, key)
		}
		assert.Equal(t, w.Value, value)
	}
	if key, _, err := it.Next(); !errors.ErrIteratorDone.Is(err) {
		t.Fatalf("want iterator done, got key %X and %+v", key, err)
	}
}

func randBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}
