package reactive

import "reflect"

// Kind identifies how a value participates in tracking.
type Kind uint8

const (
	// KindPrimitive values (nil, numbers, strings, struct and array values,
	// funcs) are returned unchanged by React.
	KindPrimitive Kind = iota

	// KindOpaque values are structured but excluded from tracking.
	KindOpaque

	KindRecord
	KindSequence
	KindMapping
	KindSet
	KindDeferred
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindOpaque:
		return "opaque"
	case KindRecord:
		return "record"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindSet:
		return "set"
	case KindDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// Tracked reports whether values of this kind are wrapped by React.
func (k Kind) Tracked() bool {
	return k >= KindRecord
}

// KindOf classifies v using the default runtime's opaque list.
func KindOf(v any) Kind {
	return Default().KindOf(v)
}

// KindOf classifies v. The checks run in priority order: tracked values,
// opaque types, deferred values, sets, records and mappings, sequences,
// struct pointers.
func (rt *Runtime) KindOf(v any) Kind {
	if v == nil {
		return KindPrimitive
	}
	if o, ok := v.(Observable); ok {
		return o.Kind()
	}
	if rt.opaque.match(v) {
		return KindOpaque
	}
	if _, ok := v.(Future); ok {
		return KindDeferred
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan:
		if rv.Type().ChanDir()&reflect.RecvDir != 0 && !rv.IsNil() {
			return KindDeferred
		}
		return KindOpaque
	case reflect.Map:
		t := rv.Type()
		if isEmptyStruct(t.Elem()) {
			return KindSet
		}
		if t.Key().Kind() == reflect.String && t.Elem().Kind() == reflect.Interface && t.Elem().NumMethod() == 0 {
			return KindRecord
		}
		return KindMapping
	case reflect.Slice:
		return KindSequence
	case reflect.Pointer:
		if rv.Type().Elem().Kind() != reflect.Struct {
			return KindOpaque
		}
		if rv.IsNil() {
			return KindPrimitive
		}
		return KindRecord
	case reflect.Interface, reflect.UnsafePointer:
		return KindOpaque
	}
	return KindPrimitive
}

func isEmptyStruct(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.NumField() == 0
}
