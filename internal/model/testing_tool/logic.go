// Because it is a testing package, no errors are returned,
// all problems cause a panic.

package testing_tool

import (
	"fmt"
	"math"

	"github.com/amsen20/adaptsched/internal/model"
)

const TOLERANCE = 1e-9

// ExpectUsage checks the compute usage of the named nodes and that no node in
// the ledger is outside [0, max].
func (builder *Builder) ExpectUsage(ledger *model.Ledger, want map[string]float64) {
	for _, usage := range ledger.Snapshot() {
		if usage.UsedCapacity < 0 || usage.UsedCapacity > usage.MaxCapacity+TOLERANCE {
			panic(fmt.Sprintf("node %d uses %f of %f", usage.Id, usage.UsedCapacity, usage.MaxCapacity))
		}
	}

	for name, amount := range want {
		used, err := ledger.Used(builder.NodeId(name), model.COMPUTE)
		if err != nil {
			panic(err)
		}
		if math.Abs(used-amount) > TOLERANCE {
			panic(fmt.Sprintf("node %s uses %f, wanted %f", name, used, amount))
		}
	}
}
