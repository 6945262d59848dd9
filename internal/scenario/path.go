package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vango-dev/oz/pkg/reactive"
)

// splitPath splits a dot path. "" and "." name the document itself.
func splitPath(path string) []string {
	if path == "" || path == "." {
		return nil
	}
	return strings.Split(path, ".")
}

// keyFor converts a path segment into a key for o. Sequences take integer
// indexes. Mappings take the segment as a string when that key exists and
// as an integer otherwise when it parses as one.
func keyFor(o reactive.Observable, seg string) (any, error) {
	switch o.Kind() {
	case reactive.KindSequence:
		if seg == "length" {
			return seg, nil
		}
		i, err := strconv.Atoi(seg)
		if err != nil {
			return nil, fmt.Errorf("segment %q is not a sequence index", seg)
		}
		return i, nil
	case reactive.KindMapping:
		if o.Has(seg) {
			return seg, nil
		}
		if i, err := strconv.Atoi(seg); err == nil {
			return i, nil
		}
	case reactive.KindSet:
		return nil, fmt.Errorf("cannot index into a set with %q", seg)
	}
	return seg, nil
}

// resolve walks segs from root and returns the value found. Every
// intermediate value must be tracked. Reads go through Get, so a watcher
// getter calling resolve depends on every step of the path.
func resolve(root reactive.Observable, segs []string) (any, error) {
	var cur any = root
	for i, seg := range segs {
		o, ok := cur.(reactive.Observable)
		if !ok {
			return nil, fmt.Errorf("%q is not a container", strings.Join(segs[:i], "."))
		}
		key, err := keyFor(o, seg)
		if err != nil {
			return nil, err
		}
		cur = o.Get(key)
	}
	return cur, nil
}

// parent resolves everything but the last segment and returns the
// container together with the key for the last segment.
func parent(root reactive.Observable, path string) (reactive.Observable, any, error) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return nil, nil, fmt.Errorf("path %q does not name a key", path)
	}
	v, err := resolve(root, segs[:len(segs)-1])
	if err != nil {
		return nil, nil, err
	}
	o, ok := v.(reactive.Observable)
	if !ok {
		return nil, nil, fmt.Errorf("%q is not a container", strings.Join(segs[:len(segs)-1], "."))
	}
	key, err := keyFor(o, segs[len(segs)-1])
	if err != nil {
		return nil, nil, err
	}
	return o, key, nil
}
