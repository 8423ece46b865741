package statistics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	s := New()
	s.Set(SLOTS, 2)
	s.Change(ASSIGNED, 3)
	s.Change(ASSIGNED, 4)

	assert.Equal(t, 2, s.Get(SLOTS))
	assert.Equal(t, 7, s.Get(ASSIGNED))
	assert.Equal(t, 0, s.Get(UNASSIGNED))
}

func TestConcurrentChange(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Change(UNASSIGNED, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, s.Get(UNASSIGNED))
}

func TestDisplayIsSorted(t *testing.T) {
	s := New()
	s.Set(UNASSIGNED, 1)
	s.Set(ASSIGNED, 2)

	assert.Equal(t,
		"Statistics results are:\nNumber of assigned requests is 2\nNumber of unassigned requests is 1\n",
		s.Display(),
	)
}
