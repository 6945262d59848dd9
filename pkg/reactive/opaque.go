package reactive

import (
	"context"
	"io"
	"math/big"
	"net/url"
	"reflect"
	"regexp"
	"sync"
	"time"
)

// Opaque can be implemented by types that must never be wrapped, such as
// host UI nodes. React returns them unchanged.
type Opaque interface {
	ReactiveOpaque()
}

// builtinOpaque lists concrete types whose identity or behaviour would break
// if they were copied into a tracked shell.
var builtinOpaque = []reflect.Type{
	reflect.TypeFor[*regexp.Regexp](),
	reflect.TypeFor[*url.URL](),
	reflect.TypeFor[*url.Userinfo](),
	reflect.TypeFor[*big.Int](),
	reflect.TypeFor[*big.Float](),
	reflect.TypeFor[*big.Rat](),
	reflect.TypeFor[*time.Location](),
	reflect.TypeFor[*time.Timer](),
	reflect.TypeFor[*time.Ticker](),
	reflect.TypeFor[[]byte](),
}

// opaqueInterfaces excludes anything carrying a resource handle or control
// surface of its own.
var opaqueInterfaces = []reflect.Type{
	reflect.TypeFor[Opaque](),
	reflect.TypeFor[error](),
	reflect.TypeFor[context.Context](),
	reflect.TypeFor[io.Reader](),
	reflect.TypeFor[io.Writer](),
	reflect.TypeFor[sync.Locker](),
}

type opaqueSet struct {
	types map[reflect.Type]struct{}
}

func newOpaqueSet() opaqueSet {
	s := opaqueSet{types: make(map[reflect.Type]struct{}, len(builtinOpaque))}
	for _, t := range builtinOpaque {
		s.types[t] = struct{}{}
	}
	return s
}

func (s opaqueSet) add(sample any) {
	if sample == nil {
		return
	}
	s.types[reflect.TypeOf(sample)] = struct{}{}
}

func (s opaqueSet) match(v any) bool {
	t := reflect.TypeOf(v)
	if _, ok := s.types[t]; ok {
		return true
	}
	for _, it := range opaqueInterfaces {
		if t.Implements(it) {
			return true
		}
	}
	return false
}

// RegisterOpaque excludes the dynamic types of samples from tracking on this
// runtime.
func (rt *Runtime) RegisterOpaque(samples ...any) {
	for _, s := range samples {
		rt.opaque.add(s)
	}
}
