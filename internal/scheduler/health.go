package scheduler

import "github.com/amsen20/adaptsched/sim"

type Health struct {
	State     string `json:"state"`
	Completed int    `json:"completed"`
	Stuck     bool   `json:"stuck"`
}

type healthCheckSample struct {
	completed int
	state     sim.State
}

func newHealthCheckSample(driver *sim.Driver) *healthCheckSample {
	return &healthCheckSample{
		completed: driver.Completed(),
		state:     driver.State(),
	}
}

// isStuck reports whether no slot finished between o and h while a slot was
// in progress at both samples.
func (h *healthCheckSample) isStuck(o *healthCheckSample) bool {
	if o == nil {
		return false
	}

	if o.completed != h.completed {
		return false
	}

	if h.state == sim.IDLE || h.state == sim.DONE {
		return false
	}

	return o.state == h.state
}

// Health samples the driver and compares it with the previous sample.
func (s *Scheduler) Health() (Health, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.driver == nil {
		return Health{}, false
	}

	sample := newHealthCheckSample(s.driver)
	stuck := sample.isStuck(s.lastSample)
	s.lastSample = sample

	return Health{
		State:     sample.state.String(),
		Completed: sample.completed,
		Stuck:     stuck,
	}, true
}
