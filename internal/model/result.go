package model

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"gopkg.in/yaml.v3"
)

type Assignment struct {
	RequestId int     `yaml:"request_id" json:"request_id"`
	NodeId    int     `yaml:"node_id" json:"node_id"`
	Cost      float64 `yaml:"cost" json:"cost"`
	Latency   float64 `yaml:"latency" json:"latency"`
}

// Decision holds one slot's placements, transfer routes, retention flags and
// prefetched services. Placements iterate in the order they were made.
type Decision struct {
	assignments *linkedhashmap.Map
	transfers   *linkedhashmap.Map
	retained    *linkedhashmap.Map

	unassigned []int
	unrouted   []int
	prefetched []int
}

func NewDecision() *Decision {
	return &Decision{
		assignments: linkedhashmap.New(),
		transfers:   linkedhashmap.New(),
		retained:    linkedhashmap.New(),
	}
}

func (d *Decision) Assign(a Assignment) {
	d.assignments.Put(a.RequestId, a)
}

func (d *Decision) MarkUnassigned(requestId int) {
	d.unassigned = append(d.unassigned, requestId)
}

func (d *Decision) NodeFor(requestId int) (int, bool) {
	value, ok := d.assignments.Get(requestId)
	if !ok {
		return 0, false
	}

	return value.(Assignment).NodeId, true
}

func (d *Decision) Assignments() []Assignment {
	return collect(d.assignments)
}

func (d *Decision) Unassigned() []int {
	return d.unassigned
}

func (d *Decision) Route(a Assignment) {
	d.transfers.Put(a.RequestId, a)
}

func (d *Decision) MarkUnrouted(requestId int) {
	d.unrouted = append(d.unrouted, requestId)
}

func (d *Decision) Transfers() []Assignment {
	return collect(d.transfers)
}

func (d *Decision) Unrouted() []int {
	return d.unrouted
}

func (d *Decision) SetRetained(nodeId int, retain bool) {
	d.retained.Put(nodeId, retain)
}

// Retained returns the retention flag of a node and whether one was decided.
func (d *Decision) Retained(nodeId int) (bool, bool) {
	value, ok := d.retained.Get(nodeId)
	if !ok {
		return false, false
	}

	return value.(bool), true
}

func (d *Decision) RetainedCount() int {
	cnt := 0
	d.retained.Each(func(_ interface{}, value interface{}) {
		if value.(bool) {
			cnt += 1
		}
	})

	return cnt
}

func (d *Decision) MarkPrefetched(serviceId int) {
	d.prefetched = append(d.prefetched, serviceId)
}

func (d *Decision) Prefetched() []int {
	return d.prefetched
}

func collect(m *linkedhashmap.Map) []Assignment {
	ret := make([]Assignment, 0, m.Size())
	m.Each(func(_ interface{}, value interface{}) {
		ret = append(ret, value.(Assignment))
	})

	return ret
}

type SlotReport struct {
	RunId string  `yaml:"run_id" json:"run_id"`
	Slot  int     `yaml:"slot" json:"slot"`
	Load  float64 `yaml:"load" json:"load"`

	Weights WeightVector `yaml:"weights" json:"weights"`

	TotalCost               float64 `yaml:"total_cost" json:"total_cost"`
	TotalLatency            float64 `yaml:"total_latency" json:"total_latency"`
	SchedulingLatencyMicros float64 `yaml:"scheduling_latency_micros" json:"scheduling_latency_micros"`
	PrefetchCost            float64 `yaml:"prefetch_cost" json:"prefetch_cost"`

	Assigned   int `yaml:"assigned" json:"assigned"`
	Unassigned int `yaml:"unassigned" json:"unassigned"`
	Retained   int `yaml:"retained" json:"retained"`
	Prefetched int `yaml:"prefetched" json:"prefetched"`
	Transfers  int `yaml:"transfers" json:"transfers"`
}

func (r *SlotReport) String() string {
	bytes, _ := yaml.Marshal(r)
	return string(bytes[:])
}

type RunSummary struct {
	RunId string `yaml:"run_id" json:"run_id"`
	Slots int    `yaml:"slots" json:"slots"`

	TotalCost      float64 `yaml:"total_cost" json:"total_cost"`
	MeanSlotCost   float64 `yaml:"mean_slot_cost" json:"mean_slot_cost"`
	StdDevSlotCost float64 `yaml:"stddev_slot_cost" json:"stddev_slot_cost"`

	CumulativeLatency          float64 `yaml:"cumulative_latency" json:"cumulative_latency"`
	CumulativeSchedulingMicros float64 `yaml:"cumulative_scheduling_micros" json:"cumulative_scheduling_micros"`

	TotalUnassigned int `yaml:"total_unassigned" json:"total_unassigned"`
}

func (s *RunSummary) String() string {
	bytes, _ := yaml.Marshal(s)
	return string(bytes[:])
}
