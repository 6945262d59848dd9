package scenario

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vango-dev/oz/pkg/reactive"
)

// Special single-key mappings recognised by Build.
const (
	formSet      = "$set"
	formMapping  = "$mapping"
	formConst    = "$const"
	formSum      = "$sum"
	formDeferred = "$deferred"
)

// builder turns decoded YAML into values React understands and remembers
// the promises it created so steps can settle them later.
type builder struct {
	promises []*reactive.Promise
}

// Build converts a decoded value:
//
//	{$set: [a, b]}        map[any]struct{} (a Set)
//	{$mapping: {k: v}}    map[any]any (a Mapping)
//	{$const: v}           reactive.Const(v) (a read-only record slot)
//	{$sum: [k1, k2]}      reactive.Computed summing sibling keys
//	{$deferred: ~}        *reactive.Promise (a Deferred)
//
// Other string-keyed mappings stay map[string]any (a Record) and lists stay
// []any (a Sequence).
func (b *builder) Build(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 1 {
			for k, inner := range t {
				if out, ok := b.form(k, inner); ok {
					return out
				}
			}
		}
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = b.Build(inner)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(t))
		for k, inner := range t {
			out[k] = b.Build(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = b.Build(inner)
		}
		return out
	}
	return v
}

func (b *builder) form(name string, v any) (any, bool) {
	switch name {
	case formSet:
		out := make(map[any]struct{})
		if members, ok := v.([]any); ok {
			for _, m := range members {
				out[b.Build(m)] = struct{}{}
			}
		}
		return out, true
	case formMapping:
		out := make(map[any]any)
		switch t := v.(type) {
		case map[string]any:
			for k, inner := range t {
				out[k] = b.Build(inner)
			}
		case map[any]any:
			for k, inner := range t {
				out[k] = b.Build(inner)
			}
		}
		return out, true
	case formConst:
		return reactive.Const(v), true
	case formSum:
		keys, _ := v.([]any)
		return sum(keys), true
	case formDeferred:
		p := reactive.NewPromise()
		b.promises = append(b.promises, p)
		return p, true
	}
	return nil, false
}

// sum returns a computed slot adding the numeric sibling values named by
// keys. The result is an int unless one of the operands is a float.
func sum(keys []any) reactive.Computed {
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, fmt.Sprint(k))
	}
	return func(self *reactive.Record) any {
		var total float64
		integral := true
		for _, name := range names {
			switch n := self.Get(name).(type) {
			case int:
				total += float64(n)
			case int64:
				total += float64(n)
			case float64:
				total += n
				integral = false
			}
		}
		if integral {
			return int(total)
		}
		return total
	}
}

// plain converts a snapshot into a JSON-encodable value: mappings with
// non-string keys get printed keys.
func plain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = plain(inner)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[fmt.Sprint(k)] = plain(inner)
		}
		return out
	case map[any]struct{}:
		out := make([]any, 0, len(t))
		for k := range t {
			out = append(out, plain(k))
		}
		slices.SortFunc(out, func(a, b any) int {
			return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
		})
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = plain(inner)
		}
		return out
	case reactive.ReadOnly:
		return plain(t.Value)
	case reactive.Computed, *reactive.Promise:
		return nil
	}
	return v
}
