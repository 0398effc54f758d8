// Package catalog is the read-only item definition lookup.
//
// The engine only ever reads definitions by (kind, id). The bundled
// definitions are embedded YAML; tests and tools may load their own.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/driftcrew/internal/state"
)

//go:embed items.yaml
var defaultItems []byte

// Definition is one catalog entry.
type Definition struct {
	ID    string         `yaml:"id"`
	Name  string         `yaml:"name"`
	Kind  state.ItemKind `yaml:"-"`
	Cost  int            `yaml:"cost"`
	Value int            `yaml:"value"`
	Tags  []string       `yaml:"tags,omitempty"`
}

// HasTag reports whether the definition carries tag.
func (d Definition) HasTag(tag string) bool {
	return slices.Contains(d.Tags, tag)
}

// Catalog looks up item definitions.
type Catalog interface {
	Lookup(kind state.ItemKind, id string) (Definition, bool)
	Find(id string) (Definition, bool)
}

// Static is an immutable in-memory catalog.
type Static struct {
	byKind map[state.ItemKind]map[string]Definition
	order  map[state.ItemKind][]string
}

var knownKinds = []state.ItemKind{
	state.KindWeapon, state.KindArmor, state.KindScreen, state.KindConsumable,
	state.KindImplant, state.KindUtility, state.KindShipComponent, state.KindTradeGood,
}

// Default returns the bundled catalog. Panics if the embedded data is invalid.
func Default() *Static {
	c, err := Parse(bytes.NewReader(defaultItems))
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded items: %v", err))
	}
	return c
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a catalog document keyed by item kind.
func Parse(r io.Reader) (*Static, error) {
	var raw map[state.ItemKind][]Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	c := &Static{
		byKind: make(map[state.ItemKind]map[string]Definition),
		order:  make(map[state.ItemKind][]string),
	}
	for kind, defs := range raw {
		if !slices.Contains(knownKinds, kind) {
			return nil, fmt.Errorf("unknown item kind %q", kind)
		}
		c.byKind[kind] = make(map[string]Definition, len(defs))
		for i, d := range defs {
			if d.ID == "" {
				return nil, fmt.Errorf("%s[%d]: id is required", kind, i)
			}
			if _, dup := c.byKind[kind][d.ID]; dup {
				return nil, fmt.Errorf("%s: duplicate id %q", kind, d.ID)
			}
			if d.Cost < 0 || d.Value < 0 {
				return nil, fmt.Errorf("%s/%s: negative price", kind, d.ID)
			}
			d.Kind = kind
			c.byKind[kind][d.ID] = d
			c.order[kind] = append(c.order[kind], d.ID)
		}
	}
	return c, nil
}

// Lookup returns the definition for kind and id.
func (c *Static) Lookup(kind state.ItemKind, id string) (Definition, bool) {
	d, ok := c.byKind[kind][id]
	return d, ok
}

// Find searches every kind for id.
func (c *Static) Find(id string) (Definition, bool) {
	for _, kind := range knownKinds {
		if d, ok := c.byKind[kind][id]; ok {
			return d, true
		}
	}
	return Definition{}, false
}

// List returns definitions of kind in file order.
func (c *Static) List(kind state.ItemKind) []Definition {
	out := make([]Definition, 0, len(c.order[kind]))
	for _, id := range c.order[kind] {
		out = append(out, c.byKind[kind][id])
	}
	return out
}
