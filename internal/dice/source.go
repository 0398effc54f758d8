package dice

import (
	"fmt"
	"math/rand/v2"
)

// Source produces uniformly distributed integers in [min, max].
type Source interface {
	UniformInt(min, max int) int
}

// PCGSource is a seeded, serializable Source.
//
// Not safe for concurrent use; the engine draws from a single goroutine.
type PCGSource struct {
	pcg *rand.PCG
	rng *rand.Rand
}

// NewPCGSource creates a source seeded from a single 64-bit value.
func NewPCGSource(seed uint64) *PCGSource {
	pcg := rand.NewPCG(seed, seed>>16|7)
	return &PCGSource{pcg: pcg, rng: rand.New(pcg)}
}

// UniformInt returns a value in [min, max]. Panics if max < min.
func (s *PCGSource) UniformInt(min, max int) int {
	if max < min {
		panic(fmt.Sprintf("dice: invalid range [%d, %d]", min, max))
	}
	return min + s.rng.IntN(max-min+1)
}

// MarshalBinary captures the generator state.
func (s *PCGSource) MarshalBinary() ([]byte, error) {
	return s.pcg.MarshalBinary()
}

// UnmarshalBinary restores a state captured by MarshalBinary.
func (s *PCGSource) UnmarshalBinary(data []byte) error {
	if s.pcg == nil {
		s.pcg = &rand.PCG{}
	}
	if err := s.pcg.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("restore pcg state: %w", err)
	}
	s.rng = rand.New(s.pcg)
	return nil
}

// RestorePCGSource rebuilds a source from a marshaled state.
func RestorePCGSource(state []byte) (*PCGSource, error) {
	s := &PCGSource{}
	if err := s.UnmarshalBinary(state); err != nil {
		return nil, err
	}
	return s, nil
}

// Roller wraps a Source with dice helpers.
type Roller struct {
	src Source
}

// NewRoller returns a Roller drawing from src.
func NewRoller(src Source) *Roller {
	return &Roller{src: src}
}

// Source returns the underlying randomness source.
func (r *Roller) Source() Source {
	return r.src
}

// Roll rolls one die with the given number of sides.
// Panics if sides < 1; callers pass constants or validated table values.
func (r *Roller) Roll(sides int) int {
	if sides < 1 {
		panic(fmt.Sprintf("dice: die must have at least one side, got %d", sides))
	}
	return r.src.UniformInt(1, sides)
}

// D6 rolls a six-sided die.
func (r *Roller) D6() int { return r.Roll(6) }

// D100 rolls a percentile die.
func (r *Roller) D100() int { return r.Roll(100) }

// Sum rolls n dice of the given sides and returns the total.
func (r *Roller) Sum(n, sides int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += r.Roll(sides)
	}
	return total
}

// Pick returns an index in [0, n). Panics if n < 1.
func (r *Roller) Pick(n int) int {
	if n < 1 {
		panic("dice: pick from empty set")
	}
	return r.src.UniformInt(0, n-1)
}
