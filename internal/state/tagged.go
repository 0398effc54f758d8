package state

import (
	"encoding/json"
	"fmt"
)

// envelope is the wire form of a tagged union value.
type envelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func encodeTagged(kind string, v any) (*envelope, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	return &envelope{Kind: kind, Data: data}, nil
}

// decodeTagged resolves env.Kind in registry and decodes the payload into
// a fresh value. Unknown kinds are an error; the registries are closed.
func decodeTagged[T any](env *envelope, registry map[string]func() T) (T, error) {
	var zero T
	newFn, ok := registry[env.Kind]
	if !ok {
		return zero, fmt.Errorf("unknown variant %q", env.Kind)
	}
	v := newFn()
	if err := json.Unmarshal(env.Data, v); err != nil {
		return zero, fmt.Errorf("decode %s: %w", env.Kind, err)
	}
	return v, nil
}
