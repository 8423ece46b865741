package alg

import (
	"github.com/amsen20/adaptsched/internal/model"
	"gonum.org/v1/gonum/floats"
)

// CostTerms returns the unweighted computation, retention, transfer and
// preparation terms of serving request on node.
func CostTerms(request *model.Request, node *model.Node) []float64 {
	return []float64{
		node.ComputationCost * request.ComputationLoad,
		node.RetentionCost,
		request.TransferCost,
		request.PreparationCost,
	}
}

// Cost is the weighted sum of CostTerms. It has no side effects.
func Cost(request *model.Request, node *model.Node, weights model.WeightVector) float64 {
	return floats.Dot(weights.Slice(), CostTerms(request, node))
}

// Latency is the contribution of serving request on node to the slot latency.
func Latency(request *model.Request, node *model.Node) float64 {
	return request.ComputationLoad*node.ComputationCost + request.TransferCost
}

// RoutingCost is the cost of routing request's transfer through a node whose
// transfer dimension is used/capacity full.
func RoutingCost(request *model.Request, used, capacity, multiplier float64) float64 {
	return request.Distance + multiplier*(used/capacity)
}
