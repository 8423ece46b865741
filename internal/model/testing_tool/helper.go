package testing_tool

import "github.com/amsen20/adaptsched/internal/model"

func (builder *Builder) placements(decision *model.Decision) map[string][]string {
	ret := make(map[string][]string)
	for _, assignment := range decision.Assignments() {
		node := builder.nodeNames[assignment.NodeId]
		ret[node] = append(ret[node], builder.requestNames[assignment.RequestId])
	}

	return ret
}

func sameNames(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}

	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}

	return true
}
