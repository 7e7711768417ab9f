package orm

import (
	"reflect"

	"github.com/iov-one/msgauth"
	"github.com/iov-one/msgauth/errors"
)

// ModelIterator walks over a set of models. LoadNext returns ErrIteratorDone
// once all models were consumed.
type ModelIterator interface {
	// LoadNext loads the next value into dest and returns its primary key.
	LoadNext(dest Model) ([]byte, error)
	Release()
}

type modelIterator struct {
	it     msgauth.Iterator
	prefix []byte
}

func (m *modelIterator) LoadNext(dest Model) ([]byte, error) {
	key, value, err := m.it.Next()
	if err != nil {
		return nil, err
	}
	if err := dest.Unmarshal(value); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %T", dest)
	}
	return key[len(m.prefix):], nil
}

func (m *modelIterator) Release() {
	m.it.Release()
}

type indexedModelIterator struct {
	keys   msgauth.Iterator
	db     msgauth.ReadOnlyKVStore
	bucket *modelBucket
}

func (m *indexedModelIterator) LoadNext(dest Model) ([]byte, error) {
	key, _, err := m.keys.Next()
	if err != nil {
		return nil, err
	}
	if err := m.bucket.One(m.db, key, dest); err != nil {
		return nil, errors.Wrap(err, "indexed entity")
	}
	return key, nil
}

func (m *indexedModelIterator) Release() {
	m.keys.Release()
}

// clone returns a new zero value instance of the same type as given model.
func clone(m Model) Model {
	t := reflect.TypeOf(m)
	if t.Kind() == reflect.Ptr {
		return reflect.New(t.Elem()).Interface().(Model)
	}
	return reflect.New(t).Interface().(Model)
}
