package statistics

import (
	"fmt"
	"sort"
	"sync"
)

const (
	ASSIGNED   = "assigned requests"
	UNASSIGNED = "unassigned requests"
	RETAINED   = "retained containers"
	PREFETCHED = "prefetched services"
	TRANSFERS  = "routed transfers"
	SLOTS      = "slots"
)

// Statistics is a set of named counters shared by a run.
type Statistics struct {
	dataMap map[string]int

	mutex sync.Mutex
}

func New() *Statistics {
	return &Statistics{
		dataMap: make(map[string]int),
	}
}

func (s *Statistics) Set(key string, value int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.dataMap[key] = value
}

func (s *Statistics) Change(key string, value int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.dataMap[key] += value
}

func (s *Statistics) Get(key string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.dataMap[key]
}

func (s *Statistics) Display() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	keys := make([]string, 0, len(s.dataMap))
	for key := range s.dataMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := "Statistics results are:\n"
	for _, key := range keys {
		result += fmt.Sprintf("Number of %s is %d\n", key, s.dataMap[key])
	}

	return result
}
