// Because it is a testing package, no errors are returned,
// all problems cause a panic.

package testing_tool

import (
	"fmt"

	"github.com/amsen20/adaptsched/internal/model"
)

type NodeDesc struct {
	Name             string
	Capacity         float64
	TransferCapacity float64
	ComputationCost  float64
	RetentionCost    float64
}

type RequestDesc struct {
	Name            string
	Load            float64
	TransferCost    float64
	PreparationCost float64
	Demand          float64
	Distance        float64
}

// Builder hands out sequential ids and remembers the names behind them, so
// expectations can be written with names.
type Builder struct {
	nodeIds      map[string]int
	nodeNames    map[int]string
	requestNames map[int]string
	lastNodeId   int
	lastReqId    int
}

func New() *Builder {
	return &Builder{
		nodeIds:      make(map[string]int),
		nodeNames:    make(map[int]string),
		requestNames: make(map[int]string),
	}
}

func (builder *Builder) GetNodes(nodesDesc []*NodeDesc) []*model.Node {
	nodes := make([]*model.Node, 0, len(nodesDesc))
	for _, nodeDesc := range nodesDesc {
		if _, ok := builder.nodeIds[nodeDesc.Name]; ok {
			panic(fmt.Sprintf("node %s is defined twice", nodeDesc.Name))
		}

		node := &model.Node{
			Id:               builder.lastNodeId,
			Name:             nodeDesc.Name,
			MaxCapacity:      nodeDesc.Capacity,
			TransferCapacity: nodeDesc.TransferCapacity,
			ComputationCost:  nodeDesc.ComputationCost,
			RetentionCost:    nodeDesc.RetentionCost,
		}
		builder.lastNodeId += 1
		builder.nodeIds[node.Name] = node.Id
		builder.nodeNames[node.Id] = node.Name
		nodes = append(nodes, node)
	}

	return nodes
}

func (builder *Builder) GetRequests(requestsDesc []*RequestDesc) []*model.Request {
	requests := make([]*model.Request, 0, len(requestsDesc))
	for _, requestDesc := range requestsDesc {
		request := &model.Request{
			Id:              builder.lastReqId,
			ComputationLoad: requestDesc.Load,
			TransferCost:    requestDesc.TransferCost,
			PreparationCost: requestDesc.PreparationCost,
			Demand:          requestDesc.Demand,
			Distance:        requestDesc.Distance,
		}
		builder.lastReqId += 1
		builder.requestNames[request.Id] = requestDesc.Name
		requests = append(requests, request)
	}

	return requests
}

// GetLedger builds a ledger over nodes with the given compute capacity
// already used, keyed by node name.
func (builder *Builder) GetLedger(nodes []*model.Node, used map[string]float64) *model.Ledger {
	ledger, err := model.NewLedger(nodes)
	if err != nil {
		panic(err)
	}

	for name, amount := range used {
		if err := ledger.Reserve(builder.NodeId(name), model.COMPUTE, amount); err != nil {
			panic(err)
		}
	}

	return ledger
}

func (builder *Builder) NodeId(name string) int {
	id, ok := builder.nodeIds[name]
	if !ok {
		panic(fmt.Sprintf("there is no node named %s", name))
	}

	return id
}

// Expect checks that every request in want sits on the named node, in the
// order the requests were assigned, and that exactly wantUnassigned were left out.
func (builder *Builder) Expect(got *model.Decision, want map[string][]string, wantUnassigned []string) {
	gotPlacements := builder.placements(got)

	for node, wantRequests := range want {
		gotRequests := gotPlacements[node]
		delete(gotPlacements, node)

		if !sameNames(gotRequests, wantRequests) {
			panic(fmt.Errorf("node %s: got %v, wanted %v", node, gotRequests, wantRequests))
		}
	}

	for node, requests := range gotPlacements {
		if len(requests) > 0 {
			panic(fmt.Errorf("node %s got unexpected requests %v", node, requests))
		}
	}

	gotUnassigned := make([]string, 0)
	for _, id := range got.Unassigned() {
		gotUnassigned = append(gotUnassigned, builder.requestNames[id])
	}
	if !sameNames(gotUnassigned, wantUnassigned) {
		panic(fmt.Errorf("got unassigned %v, wanted %v", gotUnassigned, wantUnassigned))
	}
}
