package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/roach88/driftcrew/internal/state"
)

// toGeneric renders v as its JSON value tree (maps, slices, float64,
// string, bool, nil).
func toGeneric(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// lookupPath resolves a dotted path. Numeric segments index arrays.
func lookupPath(root any, path string) (any, bool) {
	cur := root
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// setPath assigns value at a dotted path. Missing map keys are created;
// array indexes must exist.
func setPath(root any, path string, value any) error {
	segs := strings.Split(path, ".")
	cur := root
	for i, seg := range segs {
		last := i == len(segs)-1
		switch node := cur.(type) {
		case map[string]any:
			if last {
				node[seg] = value
				return nil
			}
			next, ok := node[seg]
			if !ok || next == nil {
				next = map[string]any{}
				node[seg] = next
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return fmt.Errorf("%s: index %q out of range", path, seg)
			}
			if last {
				node[idx] = value
				return nil
			}
			cur = node[idx]
		default:
			return fmt.Errorf("%s: %q is not a container", path, strings.Join(segs[:i], "."))
		}
	}
	return nil
}

// applyOverrides returns doc with set applied.
func applyOverrides(doc state.Document, set map[string]any) (state.Document, error) {
	if len(set) == 0 {
		return doc, nil
	}
	root, err := toGeneric(doc)
	if err != nil {
		return doc, fmt.Errorf("overrides: %w", err)
	}
	for path, value := range set {
		v, err := toGeneric(value)
		if err != nil {
			return doc, fmt.Errorf("overrides: %s: %w", path, err)
		}
		if err := setPath(root, path, v); err != nil {
			return doc, fmt.Errorf("overrides: %w", err)
		}
	}
	data, err := json.Marshal(root)
	if err != nil {
		return doc, fmt.Errorf("overrides: %w", err)
	}
	var out state.Document
	if err := json.Unmarshal(data, &out); err != nil {
		return doc, fmt.Errorf("overrides: %w", err)
	}
	return out, nil
}

// matchValue reports whether actual satisfies expected. Both are JSON
// value trees. Maps match as subsets; slices match element-wise with equal
// length; scalars must be equal.
func matchValue(expected, actual any) bool {
	switch exp := expected.(type) {
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, ev := range exp {
			av, ok := act[k]
			if !ok {
				if ev == nil {
					continue
				}
				return false
			}
			if !matchValue(ev, av) {
				return false
			}
		}
		return true
	case []any:
		act, ok := actual.([]any)
		if !ok || len(act) != len(exp) {
			return false
		}
		for i := range exp {
			if !matchValue(exp[i], act[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(expected, actual)
	}
}
