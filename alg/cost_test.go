package alg

import (
	"testing"

	"github.com/amsen20/adaptsched/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestCost(t *testing.T) {
	node := &model.Node{Id: 0, MaxCapacity: 10, ComputationCost: 0.02, RetentionCost: 0.04}
	request := &model.Request{Id: 0, ComputationLoad: 5, TransferCost: 0.02, PreparationCost: 0.01}
	weights := model.WeightVector{Computation: 0.4, Retention: 0.3, Transfer: 0.2, Preparation: 0.1}

	want := 0.4*0.02*5 + 0.3*0.04 + 0.2*0.02 + 0.1*0.01
	assert.InDelta(t, want, Cost(request, node, weights), 1e-12)

	t.Run("Pure", func(t *testing.T) {
		first := Cost(request, node, weights)
		second := Cost(request, node, weights)
		assert.Equal(t, first, second)
		assert.Equal(t, 0.02, node.ComputationCost)
		assert.Equal(t, 5.0, request.ComputationLoad)
	})

	t.Run("ZeroLoad", func(t *testing.T) {
		idle := &model.Request{TransferCost: 0.02, PreparationCost: 0.01}
		assert.InDelta(t, 0.3*0.04+0.2*0.02+0.1*0.01, Cost(idle, node, weights), 1e-12)
	})

	t.Run("MonotoneInComputationCost", func(t *testing.T) {
		previous := Cost(request, node, weights)
		for _, c := range []float64{0.03, 0.05, 0.5, 5} {
			pricier := node.Clone()
			pricier.ComputationCost = c
			current := Cost(request, pricier, weights)
			assert.GreaterOrEqual(t, current, previous)
			previous = current
		}
	})
}

func TestLatency(t *testing.T) {
	node := &model.Node{ComputationCost: 0.03}
	request := &model.Request{ComputationLoad: 5, TransferCost: 0.02}

	assert.InDelta(t, 5*0.03+0.02, Latency(request, node), 1e-12)
}

func TestRoutingCost(t *testing.T) {
	request := &model.Request{Distance: 110}

	assert.InDelta(t, 110.0, RoutingCost(request, 0, 100, 0.1), 1e-12)
	assert.InDelta(t, 110.05, RoutingCost(request, 50, 100, 0.1), 1e-12)
}
