package alg

import (
	"errors"

	"github.com/amsen20/adaptsched/internal/model"
)

// Prefetch places service images on every node with room for them, in node
// then service order, reserving compute capacity for each copy. It returns the
// ids of the prefetched services and the prefetch cost, charged once per
// distinct service.
func Prefetch(nodes []*model.Node, services []*model.Service, multiplier float64, ledger *model.Ledger) ([]int, float64, error) {
	prefetched := make(map[int]bool)
	var ids []int
	var cost float64

	for _, node := range nodes {
		for _, service := range services {
			if !ledger.Fits(node.Id, model.COMPUTE, service.Size) {
				continue
			}

			if err := ledger.Reserve(node.Id, model.COMPUTE, service.Size); err != nil {
				if errors.Is(err, model.ErrFullCapacity) {
					continue
				}

				return nil, 0, err
			}

			if !prefetched[service.Id] {
				prefetched[service.Id] = true
				ids = append(ids, service.Id)
				cost += multiplier * service.PrefetchCost
			}
		}
	}

	return ids, cost, nil
}
