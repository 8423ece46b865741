package model

import (
	"fmt"
	"math"
)

// Dimension selects one of the capacity dimensions tracked per node.
type Dimension int

const (
	COMPUTE Dimension = iota
	TRANSFER
)

const DIMENSIONS = 2

func (d Dimension) String() string {
	switch d {
	case COMPUTE:
		return "compute"
	case TRANSFER:
		return "transfer"
	}

	return fmt.Sprintf("dimension(%d)", int(d))
}

// Node is a capacity-bounded compute location (edge server, RSU, base station).
// Used capacity is not stored here, the Ledger owns it.
type Node struct {
	Id   int    `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`

	MaxCapacity float64 `yaml:"max_capacity" json:"max_capacity"`
	// Capacity of the transfer dimension, MaxCapacity when zero.
	TransferCapacity float64 `yaml:"transfer_capacity" json:"transfer_capacity"`

	ComputationCost float64 `yaml:"computation_cost" json:"computation_cost"`
	RetentionCost   float64 `yaml:"retention_cost" json:"retention_cost"`
}

func (n *Node) Clone() *Node {
	c := *n
	return &c
}

func (n *Node) CapacityOf(dim Dimension) float64 {
	if dim == TRANSFER && n.TransferCapacity > 0 {
		return n.TransferCapacity
	}

	return n.MaxCapacity
}

type Request struct {
	Id int `yaml:"id" json:"id"`

	// Deadline is carried for reporting only, nothing rejects on it.
	Deadline float64 `yaml:"deadline" json:"deadline"`

	ComputationLoad float64 `yaml:"computation_load" json:"computation_load"`
	TransferCost    float64 `yaml:"transfer_cost" json:"transfer_cost"`
	PreparationCost float64 `yaml:"preparation_cost" json:"preparation_cost"`

	// Demand is consumed from the transfer dimension by the routing pass.
	Demand   float64 `yaml:"demand" json:"demand"`
	Distance float64 `yaml:"distance" json:"distance"`
}

func (r *Request) Clone() *Request {
	c := *r
	return &c
}

// Service is a prefetchable service image.
type Service struct {
	Id           int     `yaml:"id" json:"id"`
	Size         float64 `yaml:"size" json:"size"`
	PrefetchCost float64 `yaml:"prefetch_cost" json:"prefetch_cost"`
}

// ValidateRequests rejects duplicate ids and negative or non-finite values.
// Placements are keyed by request id, so ids must be unique.
func ValidateRequests(requests []*Request) error {
	seen := make(map[int]bool, len(requests))
	for _, request := range requests {
		if seen[request.Id] {
			return fmt.Errorf("%w: request %d is defined more than once", ErrInvalidRequest, request.Id)
		}
		seen[request.Id] = true

		for _, iter := range []struct {
			name  string
			value float64
		}{
			{"computation_load", request.ComputationLoad},
			{"transfer_cost", request.TransferCost},
			{"preparation_cost", request.PreparationCost},
			{"demand", request.Demand},
			{"distance", request.Distance},
		} {
			if iter.value < 0 || math.IsNaN(iter.value) || math.IsInf(iter.value, 0) {
				return fmt.Errorf("%w: request %d has %s %v", ErrInvalidRequest, request.Id, iter.name, iter.value)
			}
		}
	}

	return nil
}

func CloneNodes(nodes []*Node) []*Node {
	ret := make([]*Node, len(nodes))
	for i, node := range nodes {
		ret[i] = node.Clone()
	}

	return ret
}

func CloneRequests(requests []*Request) []*Request {
	ret := make([]*Request, len(requests))
	for i, request := range requests {
		ret[i] = request.Clone()
	}

	return ret
}
