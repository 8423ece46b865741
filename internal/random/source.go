// Package random provides the stochastic inputs that perturb requests and
// nodes between slots. Scheduling code only depends on Source so tests can
// swap in a constant or a fixed sequence.
package random

import (
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

type Source interface {
	// Next returns a value in [min, max]. Test stubs may ignore the bounds.
	Next(min, max float64) float64
}

// Uniform draws from a seeded uniform distribution. It is safe for concurrent use.
type Uniform struct {
	mutex sync.Mutex
	src   rand.Source
}

func NewUniform(seed uint64) *Uniform {
	return &Uniform{src: rand.NewSource(seed)}
}

func (u *Uniform) Next(min, max float64) float64 {
	if min >= max {
		return min
	}

	u.mutex.Lock()
	defer u.mutex.Unlock()

	return distuv.Uniform{Min: min, Max: max, Src: u.src}.Rand()
}

// Constant always returns its value regardless of the bounds.
type Constant float64

func (c Constant) Next(_, _ float64) float64 {
	return float64(c)
}

// Sequence cycles through a fixed list of values, ignoring the bounds.
type Sequence struct {
	mutex  sync.Mutex
	values []float64
	next   int
}

func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) Next(min, _ float64) float64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.values) == 0 {
		return min
	}

	v := s.values[s.next%len(s.values)]
	s.next += 1

	return v
}
