package model

import (
	"fmt"
	"math"
	"sync"

	"github.com/amsen20/adaptsched/internal/utils"
	"github.com/amsen20/adaptsched/logging"
	"gonum.org/v1/gonum/mat"
)

var log = logging.Get()

type ledgerEntry struct {
	node     *Node
	capacity *mat.VecDense

	// Guards used. Every reservation against the node is serialized here.
	mutex sync.Mutex
	used  *mat.VecDense
}

// Ledger tracks used versus maximum capacity for every node. Nodes are kept in
// the order they were given and addressed by their id.
type Ledger struct {
	entries []*ledgerEntry
	index   map[int]int
}

type NodeUsage struct {
	Id               int     `yaml:"id" json:"id"`
	UsedCapacity     float64 `yaml:"used_capacity" json:"used_capacity"`
	MaxCapacity      float64 `yaml:"max_capacity" json:"max_capacity"`
	UsedTransfer     float64 `yaml:"used_transfer" json:"used_transfer"`
	TransferCapacity float64 `yaml:"transfer_capacity" json:"transfer_capacity"`
}

func NewLedger(nodes []*Node) (*Ledger, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptyNodeSet
	}

	l := &Ledger{
		entries: make([]*ledgerEntry, 0, len(nodes)),
		index:   make(map[int]int, len(nodes)),
	}

	for _, node := range nodes {
		if _, ok := l.index[node.Id]; ok {
			return nil, fmt.Errorf("node %d is defined more than once", node.Id)
		}
		if !(node.MaxCapacity > 0) || node.TransferCapacity < 0 {
			return nil, fmt.Errorf("node %d has invalid capacity %v/%v", node.Id, node.MaxCapacity, node.TransferCapacity)
		}

		l.index[node.Id] = len(l.entries)
		l.entries = append(l.entries, &ledgerEntry{
			node:     node,
			capacity: mat.NewVecDense(DIMENSIONS, []float64{node.CapacityOf(COMPUTE), node.CapacityOf(TRANSFER)}),
			used:     mat.NewVecDense(DIMENSIONS, nil),
		})
	}

	return l, nil
}

func (l *Ledger) entry(id int) (*ledgerEntry, error) {
	ind, ok := l.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}

	return l.entries[ind], nil
}

func (l *Ledger) Nodes() []*Node {
	ret := make([]*Node, len(l.entries))
	for i, e := range l.entries {
		ret[i] = e.node
	}

	return ret
}

func (l *Ledger) Node(id int) (*Node, error) {
	e, err := l.entry(id)
	if err != nil {
		return nil, err
	}

	return e.node, nil
}

func (l *Ledger) Used(id int, dim Dimension) (float64, error) {
	e, err := l.entry(id)
	if err != nil {
		return 0, err
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	return e.used.AtVec(int(dim)), nil
}

func (l *Ledger) Remaining(id int, dim Dimension) (float64, error) {
	e, err := l.entry(id)
	if err != nil {
		return 0, err
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	return utils.SubVec(e.capacity, e.used).AtVec(int(dim)), nil
}

func fits(e *ledgerEntry, dim Dimension, amount float64) bool {
	return utils.LEThan(
		utils.AddVec(e.used, utils.UnitVec(DIMENSIONS, int(dim), amount)),
		e.capacity,
	)
}

// Fits reports whether amount could currently be reserved on the node.
func (l *Ledger) Fits(id int, dim Dimension, amount float64) bool {
	e, err := l.entry(id)
	if err != nil {
		return false
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	return fits(e, dim, amount)
}

// Reserve checks and commits amount against the node atomically. It fails with
// ErrFullCapacity when used+amount would exceed the capacity.
func (l *Ledger) Reserve(id int, dim Dimension, amount float64) error {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("invalid reservation amount %v on node %d", amount, id)
	}

	e, err := l.entry(id)
	if err != nil {
		return err
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	if !fits(e, dim, amount) {
		return fmt.Errorf(
			"%w: node %d cannot take %v more %s, used %s of %s",
			ErrFullCapacity, id, amount, dim, utils.ToString(e.used), utils.ToString(e.capacity),
		)
	}

	utils.SAddVec(e.used, utils.UnitVec(DIMENSIONS, int(dim), amount))

	return nil
}

// AggregateLoad is sum(used compute)/sum(max compute) over all nodes.
func (l *Ledger) AggregateLoad() float64 {
	used := make([]float64, len(l.entries))
	capacity := make([]float64, len(l.entries))

	for i, e := range l.entries {
		e.mutex.Lock()
		used[i] = e.used.AtVec(int(COMPUTE))
		capacity[i] = e.capacity.AtVec(int(COMPUTE))
		e.mutex.Unlock()
	}

	return utils.Utilization(used, capacity)
}

// Reset releases every reservation.
func (l *Ledger) Reset() {
	for _, e := range l.entries {
		e.mutex.Lock()
		e.used.Zero()
		e.mutex.Unlock()
	}

	log.Debug().Msgf("ledger reset for %d nodes", len(l.entries))
}

func (l *Ledger) Snapshot() []NodeUsage {
	ret := make([]NodeUsage, len(l.entries))
	for i, e := range l.entries {
		e.mutex.Lock()
		ret[i] = NodeUsage{
			Id:               e.node.Id,
			UsedCapacity:     e.used.AtVec(int(COMPUTE)),
			MaxCapacity:      e.capacity.AtVec(int(COMPUTE)),
			UsedTransfer:     e.used.AtVec(int(TRANSFER)),
			TransferCapacity: e.capacity.AtVec(int(TRANSFER)),
		}
		e.mutex.Unlock()
	}

	return ret
}
