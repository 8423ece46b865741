package alg

import (
	"github.com/amsen20/adaptsched/internal/model"
)

// DecideRetention keeps a warm container on a node when the system is not
// overloaded and the node is cheap enough to keep it.
func DecideRetention(nodes []*model.Node, load, loadThreshold, costThreshold float64, decision *model.Decision) {
	for _, node := range nodes {
		decision.SetRetained(node.Id, load <= loadThreshold && node.RetentionCost <= costThreshold)
	}
}
