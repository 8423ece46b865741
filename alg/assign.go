package alg

import (
	"context"
	"errors"
	"fmt"

	"github.com/amsen20/adaptsched/internal/model"
	"github.com/amsen20/adaptsched/logging"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

var log = logging.Get()

// Engine places requests on nodes greedily. Requests are handled strictly in
// the order they are given and nodes are scanned in the order they are given,
// the first cheapest eligible node wins. Every placement is committed to the
// ledger before the next request is looked at, so the outcome depends on the
// request order. No reordering or backtracking is done.
type Engine struct {
	parallelism        int
	transferMultiplier float64
}

func NewEngine(parallelism int, transferMultiplier float64) *Engine {
	if parallelism < 1 {
		parallelism = 1
	}

	return &Engine{
		parallelism:        parallelism,
		transferMultiplier: transferMultiplier,
	}
}

// CostMatrix evaluates Cost for every (request, node) pair, one row per
// request. Rows are computed concurrently since Cost is pure.
func (e *Engine) CostMatrix(ctx context.Context, requests []*model.Request, nodes []*model.Node, weights model.WeightVector) (*mat.Dense, error) {
	if len(requests) == 0 || len(nodes) == 0 {
		return nil, fmt.Errorf("cost matrix needs requests and nodes, got %d and %d", len(requests), len(nodes))
	}

	costs := mat.NewDense(len(requests), len(nodes), nil)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)

	for i := range requests {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			row := make([]float64, len(nodes))
			for j, node := range nodes {
				row[j] = Cost(requests[i], node, weights)
			}
			costs.SetRow(i, row)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return costs, nil
}

// Assign runs the compute placement pass. Requests that fit nowhere are
// recorded as unassigned in the returned decision.
func (e *Engine) Assign(
	ctx context.Context,
	requests []*model.Request,
	nodes []*model.Node,
	weights model.WeightVector,
	ledger *model.Ledger,
) (*model.Decision, error) {
	if len(nodes) == 0 {
		return nil, model.ErrEmptyNodeSet
	}

	decision := model.NewDecision()
	if len(requests) == 0 {
		return decision, nil
	}

	costs, err := e.CostMatrix(ctx, requests, nodes, weights)
	if err != nil {
		return nil, err
	}

	for i, request := range requests {
		best := -1
		var minCost float64

		for j, node := range nodes {
			if !ledger.Fits(node.Id, model.COMPUTE, request.ComputationLoad) {
				continue
			}

			if cost := costs.At(i, j); best == -1 || cost < minCost {
				best = j
				minCost = cost
			}
		}

		if best == -1 {
			log.Debug().Msgf("request %d fits on no node", request.Id)
			decision.MarkUnassigned(request.Id)

			continue
		}

		node := nodes[best]
		if err := ledger.Reserve(node.Id, model.COMPUTE, request.ComputationLoad); err != nil {
			if errors.Is(err, model.ErrFullCapacity) {
				log.Warn().Err(err).Msgf("request %d lost its node", request.Id)
				decision.MarkUnassigned(request.Id)

				continue
			}

			return nil, err
		}

		decision.Assign(model.Assignment{
			RequestId: request.Id,
			NodeId:    node.Id,
			Cost:      minCost,
			Latency:   Latency(request, node),
		})
		log.Debug().Msgf("request %d placed on node %d with cost %f", request.Id, node.Id, minCost)
	}

	return decision, nil
}

// Route runs the transfer routing pass against the transfer dimension. It
// follows the same order, eligibility and tie-break rules as Assign but the
// cost depends on the node's current transfer usage, so it is evaluated
// serially.
func (e *Engine) Route(
	ctx context.Context,
	requests []*model.Request,
	nodes []*model.Node,
	ledger *model.Ledger,
	decision *model.Decision,
) error {
	if len(nodes) == 0 {
		return model.ErrEmptyNodeSet
	}

	for _, request := range requests {
		if err := ctx.Err(); err != nil {
			return err
		}

		best := -1
		var minCost float64

		for j, node := range nodes {
			if !ledger.Fits(node.Id, model.TRANSFER, request.Demand) {
				continue
			}

			used, err := ledger.Used(node.Id, model.TRANSFER)
			if err != nil {
				return err
			}

			cost := RoutingCost(request, used, node.CapacityOf(model.TRANSFER), e.transferMultiplier)
			if best == -1 || cost < minCost {
				best = j
				minCost = cost
			}
		}

		if best == -1 {
			decision.MarkUnrouted(request.Id)
			continue
		}

		node := nodes[best]
		if err := ledger.Reserve(node.Id, model.TRANSFER, request.Demand); err != nil {
			if errors.Is(err, model.ErrFullCapacity) {
				decision.MarkUnrouted(request.Id)
				continue
			}

			return err
		}

		decision.Route(model.Assignment{
			RequestId: request.Id,
			NodeId:    node.Id,
			Cost:      minCost,
		})
	}

	return nil
}
