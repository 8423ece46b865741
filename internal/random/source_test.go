package random

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniformStaysInBounds(t *testing.T) {
	u := NewUniform(42)
	for i := 0; i < 1000; i++ {
		v := u.Next(0.1, 0.3)
		assert.GreaterOrEqual(t, v, 0.1)
		assert.LessOrEqual(t, v, 0.3)
	}
}

func TestUniformSeedIsReproducible(t *testing.T) {
	a, b := NewUniform(7), NewUniform(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Next(0, 1), b.Next(0, 1))
	}
}

func TestUniformDegenerateBounds(t *testing.T) {
	assert.Equal(t, 0.5, NewUniform(1).Next(0.5, 0.5))
}

func TestUniformConcurrentUse(t *testing.T) {
	u := NewUniform(3)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				v := u.Next(1, 2)
				assert.True(t, v >= 1 && v <= 2)
			}
		}()
	}
	wg.Wait()
}

func TestStubs(t *testing.T) {
	assert.Equal(t, 1.0, Constant(1).Next(0.1, 0.3))

	s := NewSequence(1, 2, 3)
	got := []float64{s.Next(0, 0), s.Next(0, 0), s.Next(0, 0), s.Next(0, 0)}
	assert.Equal(t, []float64{1, 2, 3, 1}, got)

	assert.Equal(t, 0.2, NewSequence().Next(0.2, 0.4))
}
