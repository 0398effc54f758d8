package testutil

import (
	"fmt"
	"sync"
)

// ScriptedSource replays a fixed sequence of rolls.
//
// Each UniformInt call consumes the next scripted value. A value outside
// the requested [min, max] or an exhausted script panics, so a test that
// rolls more (or differently) than expected fails at the offending draw.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ScriptedSource struct {
	mu     sync.Mutex
	values []int
	pos    int
}

// NewScriptedSource creates a source that yields values in order.
func NewScriptedSource(values ...int) *ScriptedSource {
	return &ScriptedSource{values: append([]int(nil), values...)}
}

// UniformInt returns the next scripted value.
func (s *ScriptedSource) UniformInt(min, max int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.values) {
		panic(fmt.Sprintf("testutil: dice script exhausted after %d rolls (wanted [%d,%d])", s.pos, min, max))
	}
	v := s.values[s.pos]
	if v < min || v > max {
		panic(fmt.Sprintf("testutil: scripted roll %d at position %d outside [%d,%d]", v, s.pos, min, max))
	}
	s.pos++
	return v
}

// Push appends values to the script.
func (s *ScriptedSource) Push(values ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = append(s.values, values...)
}

// Remaining returns how many scripted values are unused.
func (s *ScriptedSource) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values) - s.pos
}

// Consumed returns how many values have been drawn.
func (s *ScriptedSource) Consumed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}
