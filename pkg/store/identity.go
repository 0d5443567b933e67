package store

import "reflect"

// SameRef reports whether a and b are the same reference.
//
// Pointers, maps, channels and unsafe pointers are the same when they
// point at the same object. Slices are the same when they share backing
// array start, length and capacity. Funcs are never the same unless both
// are nil.
//
// Zero-size allocations (pointers to empty structs or zero-length arrays,
// empty slices, slices of zero-size elements) may all share one address,
// so two separate allocations cannot be told apart. Non-nil values of
// those kinds are never the same; storing one always notifies. Other comparable values (numbers, strings, structs of
// comparable fields) have no identity apart from their value and compare
// with ==. Non-comparable values are never the same.
func SameRef(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va := reflect.ValueOf(a)
	vb := reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Pointer:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		if va.Type().Elem().Size() == 0 {
			return false
		}
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		if va.Cap() == 0 || va.Type().Elem().Size() == 0 {
			return false
		}
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len() && va.Cap() == vb.Cap()
	case reflect.Func:
		return va.IsNil() && vb.IsNil()
	}

	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}
