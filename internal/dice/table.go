package dice

import (
	"errors"
	"fmt"
	"sort"
)

// ErrOutOfRange is returned (wrapped) when a value lands outside every range.
var ErrOutOfRange = errors.New("roll outside table domain")

// ErrMalformed is returned (wrapped) when a table fails construction checks.
var ErrMalformed = errors.New("malformed table")

// TableError describes a table construction or resolution failure.
type TableError struct {
	Table string
	Value int
	Err   error
	Msg   string
}

func (e *TableError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("table %s: %v: %s", e.Table, e.Err, e.Msg)
	}
	return fmt.Sprintf("table %s: %v (value %d)", e.Table, e.Err, e.Value)
}

func (e *TableError) Unwrap() error { return e.Err }

// Entry maps an inclusive roll range to a row.
type Entry[T any] struct {
	Low  int
	High int
	Row  T
}

// Table is a validated roll-range table.
type Table[T any] struct {
	name    string
	min     int
	max     int
	entries []Entry[T]
}

// NewTable validates entries against the domain [min, max].
//
// Entries must already be in ascending order.
func NewTable[T any](name string, min, max int, entries []Entry[T]) (*Table[T], error) {
	malformed := func(format string, args ...any) error {
		return &TableError{Table: name, Err: ErrMalformed, Msg: fmt.Sprintf(format, args...)}
	}
	if min > max {
		return nil, malformed("empty domain [%d, %d]", min, max)
	}
	if len(entries) == 0 {
		return nil, malformed("no entries")
	}
	next := min
	for i, e := range entries {
		if e.Low > e.High {
			return nil, malformed("entry %d has inverted range [%d, %d]", i, e.Low, e.High)
		}
		if e.Low < next {
			return nil, malformed("entry %d [%d, %d] overlaps previous range", i, e.Low, e.High)
		}
		if e.Low > next {
			return nil, malformed("gap before entry %d: %d..%d uncovered", i, next, e.Low-1)
		}
		next = e.High + 1
	}
	if next-1 != max {
		return nil, malformed("domain ends at %d but entries end at %d", max, next-1)
	}

	copied := make([]Entry[T], len(entries))
	copy(copied, entries)
	return &Table[T]{name: name, min: min, max: max, entries: copied}, nil
}

// MustTable is NewTable that panics on error. For package-level tables.
func MustTable[T any](name string, min, max int, entries []Entry[T]) *Table[T] {
	t, err := NewTable(name, min, max, entries)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the table name.
func (t *Table[T]) Name() string { return t.name }

// Domain returns the inclusive roll domain.
func (t *Table[T]) Domain() (int, int) { return t.min, t.max }

// Len returns the number of rows.
func (t *Table[T]) Len() int { return len(t.entries) }

// Entries returns a copy of the entries in order.
func (t *Table[T]) Entries() []Entry[T] {
	out := make([]Entry[T], len(t.entries))
	copy(out, t.entries)
	return out
}

// Resolve returns the row whose range contains v.
func (t *Table[T]) Resolve(v int) (T, error) {
	var zero T
	if v < t.min || v > t.max {
		return zero, &TableError{Table: t.name, Value: v, Err: ErrOutOfRange}
	}
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].High >= v
	})
	if i == len(t.entries) || t.entries[i].Low > v {
		return zero, &TableError{Table: t.name, Value: v, Err: ErrOutOfRange}
	}
	return t.entries[i].Row, nil
}

// Roll draws a value spanning the table domain and resolves it.
func (t *Table[T]) Roll(r *Roller) (T, int, error) {
	v := r.src.UniformInt(t.min, t.max)
	row, err := t.Resolve(v)
	return row, v, err
}
