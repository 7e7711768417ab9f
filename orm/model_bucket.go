package orm

import (
	"fmt"
	"regexp"

	"github.com/iov-one/msgauth"
	"github.com/iov-one/msgauth/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// ModelBucket stores models of a single type under a common prefix.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary key. Result is loaded into given destination model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	One(db msgauth.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key value exists. It
	// returns ErrNotFound if no entity can be found.
	Has(db msgauth.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database, overwriting any previous
	// value and updating all indexes.
	Put(db msgauth.KVStore, key []byte, m Model) error

	// Insert saves given model only if the key is not used yet. It returns
	// ErrDuplicate otherwise.
	Insert(db msgauth.KVStore, key []byte, m Model) error

	// PrefixScan returns an iterator over all models whose primary key
	// starts with given prefix, in ascending key order.
	PrefixScan(db msgauth.ReadOnlyKVStore, prefix []byte) (ModelIterator, error)

	// IndexScan returns an iterator over all models indexed by the named
	// index under given value.
	IndexScan(db msgauth.ReadOnlyKVStore, indexName string, value []byte) (ModelIterator, error)
}

// ModelBucketOption configures a bucket at creation time.
type ModelBucketOption func(*modelBucket)

// WithIndex declares a non-unique secondary index. Using the same name twice
// panics.
func WithIndex(name string, indexer Indexer) ModelBucketOption {
	return func(mb *modelBucket) {
		if _, ok := mb.indexes[name]; ok {
			panic(fmt.Sprintf("index %q registered twice", name))
		}
		mb.indexes[name] = &nativeIndex{
			name:    mb.name + "_" + name,
			indexer: indexer,
		}
	}
}

// NewModelBucket returns a ModelBucket instance. Model is the prototype used
// to load previous versions of entities when indexes must be updated.
func NewModelBucket(name string, model Model, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("illegal bucket: %s", name))
	}
	mb := &modelBucket{
		name:    name,
		prefix:  append([]byte(name), ':'),
		model:   model,
		indexes: make(map[string]*nativeIndex),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   Model
	indexes map[string]*nativeIndex
}

var _ ModelBucket = (*modelBucket)(nil)

// dbKey is the full key we store in the db, including prefix. A new array
// is allocated so that consecutive calls never share memory.
func (mb *modelBucket) dbKey(key []byte) []byte {
	out := make([]byte, len(mb.prefix)+len(key))
	copy(out, mb.prefix)
	copy(out[len(mb.prefix):], key)
	return out
}

func (mb *modelBucket) One(db msgauth.ReadOnlyKVStore, key []byte, dest Model) error {
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "get")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "unmarshal %T", dest)
	}
	return nil
}

func (mb *modelBucket) Has(db msgauth.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "has")
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s %x", mb.name, key)
	}
	return nil
}

func (mb *modelBucket) Put(db msgauth.KVStore, key []byte, m Model) error {
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrap(err, "marshal")
	}

	if len(mb.indexes) > 0 {
		prev, err := mb.previous(db, key)
		if err != nil {
			return err
		}
		for name, idx := range mb.indexes {
			if err := idx.update(db, key, prev, m); err != nil {
				return errors.Wrapf(err, "index %q", name)
			}
		}
	}

	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Insert(db msgauth.KVStore, key []byte, m Model) error {
	switch err := mb.Has(db, key); {
	case err == nil:
		return errors.Wrapf(errors.ErrDuplicate, "%s %x", mb.name, key)
	case !errors.ErrNotFound.Is(err):
		return err
	}
	return mb.Put(db, key, m)
}

// previous loads the currently stored version of an entity, or returns nil
// if there is none.
func (mb *modelBucket) previous(db msgauth.ReadOnlyKVStore, key []byte) (Model, error) {
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return nil, errors.Wrap(err, "get")
	}
	if raw == nil {
		return nil, nil
	}
	prev := clone(mb.model)
	if err := prev.Unmarshal(raw); err != nil {
		return nil, errors.Wrap(err, "unmarshal previous")
	}
	return prev, nil
}

func (mb *modelBucket) PrefixScan(db msgauth.ReadOnlyKVStore, prefix []byte) (ModelIterator, error) {
	start := mb.dbKey(prefix)
	it, err := db.Iterator(start, prefixEnd(start))
	if err != nil {
		return nil, errors.Wrap(err, "iterator")
	}
	return &modelIterator{it: it, prefix: mb.prefix}, nil
}

func (mb *modelBucket) IndexScan(db msgauth.ReadOnlyKVStore, indexName string, value []byte) (ModelIterator, error) {
	idx, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidIndex, "%s has no %q index", mb.name, indexName)
	}
	keys, err := idx.keys(db, value)
	if err != nil {
		return nil, err
	}
	return &indexedModelIterator{keys: keys, db: db, bucket: mb}, nil
}

// prefixEnd returns the smallest key greater than every key starting with
// given prefix, or nil if no such key exists.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
