package store

import (
	"reflect"

	"github.com/vango-dev/vcache/internal/errors"
)

// Reader reads cache entries. Both *Cache and *Binding implement it.
type Reader interface {
	Get(key string) (any, bool)
}

// Writer writes cache entries. Both *Cache and *Binding implement it.
type Writer interface {
	Set(key string, value any, opts ...SetOption) error
}

// Key is a typed handle on one cache key.
//
//	var Filters = store.NewKey[*Filters]("pipelines/filters")
//
//	f, ok := Filters.Get(b)
//	_ = Filters.Set(b, &Filters{Status: "failed"})
type Key[T any] struct {
	name string
}

// NewKey returns a typed handle for name.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the underlying cache key.
func (k Key[T]) Name() string {
	return k.name
}

// Get returns the stored value. A missing entry, or one of another type,
// reads as the zero value and false.
func (k Key[T]) Get(r Reader) (T, bool) {
	v, ok, err := k.Lookup(r)
	return v, ok && err == nil
}

// Lookup returns the stored value. ok is false when the key is absent.
// err matches ErrTypeMismatch when the entry holds a value of another type.
// An untyped nil entry reads as the zero value when T can hold nil.
func (k Key[T]) Lookup(r Reader) (v T, ok bool, err error) {
	raw, present := r.Get(k.name)
	if !present {
		return v, false, nil
	}

	t := reflect.TypeOf((*T)(nil)).Elem()
	if raw == nil {
		if nilable(t) {
			return v, true, nil
		}
		return v, true, errors.New("C003").WithDetail("key %q holds nil, want %s", k.name, t)
	}

	typed, isT := raw.(T)
	if !isT {
		return v, true, errors.New("C003").WithDetail("key %q holds %T, want %s", k.name, raw, t)
	}
	return typed, true, nil
}

// Set stores v under the key.
func (k Key[T]) Set(w Writer, v T, opts ...SetOption) error {
	return w.Set(k.name, v, opts...)
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return true
	}
	return false
}
