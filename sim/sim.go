package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amsen20/adaptsched/alg"
	"github.com/amsen20/adaptsched/internal/config"
	"github.com/amsen20/adaptsched/internal/metrics"
	"github.com/amsen20/adaptsched/internal/model"
	"github.com/amsen20/adaptsched/internal/random"
	"github.com/amsen20/adaptsched/internal/report"
	"github.com/amsen20/adaptsched/logging"
	"github.com/amsen20/adaptsched/statistics"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

type State int32

const (
	IDLE State = iota
	PERTURBING
	WEIGHT_COMPUTING
	SCHEDULING
	REPORTING
	DONE
)

func (s State) String() string {
	switch s {
	case IDLE:
		return "idle"
	case PERTURBING:
		return "perturbing"
	case WEIGHT_COMPUTING:
		return "weight-computing"
	case SCHEDULING:
		return "scheduling"
	case REPORTING:
		return "reporting"
	case DONE:
		return "done"
	}

	return fmt.Sprintf("state(%d)", int32(s))
}

var ErrRunFinished = errors.New("run already finished")

var log = logging.Get()

type Option func(*Driver)

func WithSource(source random.Source) Option {
	return func(d *Driver) { d.source = source }
}

func WithClock(clock func() time.Time) Option {
	return func(d *Driver) { d.clock = clock }
}

func WithSink(sink report.Sink) Option {
	return func(d *Driver) { d.sinks = append(d.sinks, sink) }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Driver) { d.metrics = m }
}

func WithStatistics(s *statistics.Statistics) Option {
	return func(d *Driver) { d.stats = s }
}

func WithRunId(runId string) Option {
	return func(d *Driver) { d.runId = runId }
}

// Driver runs the configured number of slots one after another. Each slot
// perturbs the inputs, adapts the weights to the load, places the requests and
// reports the totals.
type Driver struct {
	cfg config.GeneralConfig

	// Setup values, perturbation always starts from these.
	baseNodes    []*model.Node
	baseRequests []*model.Request

	nodes    []*model.Node
	requests []*model.Request

	ledger  *model.Ledger
	adapter *alg.WeightAdapter
	engine  *alg.Engine

	source  random.Source
	clock   func() time.Time
	sinks   report.Multi
	metrics *metrics.Metrics
	stats   *statistics.Statistics
	runId   string

	// Serializes slots.
	stepMutex    sync.Mutex
	state        atomic.Int32
	completed    atomic.Int32
	slot         int
	slotCosts    []float64
	summary      model.RunSummary
	lastDecision *model.Decision
}

func New(cfg config.GeneralConfig, nodes []*model.Node, requests []*model.Request, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := model.ValidateRequests(requests); err != nil {
		return nil, err
	}

	d := &Driver{
		cfg:          cfg,
		baseNodes:    model.CloneNodes(nodes),
		baseRequests: model.CloneRequests(requests),
		nodes:        model.CloneNodes(nodes),
		requests:     model.CloneRequests(requests),
		engine:       alg.NewEngine(cfg.Parallelism, cfg.Transfer.Multiplier),
		clock:        time.Now,
	}

	ledger, err := model.NewLedger(d.nodes)
	if err != nil {
		return nil, err
	}
	d.ledger = ledger

	if d.adapter, err = alg.NewWeightAdapterFromConfig(&cfg); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.source == nil {
		d.source = random.NewUniform(cfg.Perturbation.Seed)
	}
	if d.stats == nil {
		d.stats = statistics.New()
	}
	if d.runId == "" {
		d.runId = uuid.NewString()
	}

	d.summary.RunId = d.runId
	if cfg.Slots == 0 {
		d.setState(DONE)
	}

	return d, nil
}

func (d *Driver) setState(s State) {
	d.state.Store(int32(s))
}

func (d *Driver) State() State {
	return State(d.state.Load())
}

// Completed is the number of finished slots. It does not wait for a running slot.
func (d *Driver) Completed() int {
	return int(d.completed.Load())
}

func (d *Driver) RunId() string {
	return d.runId
}

func (d *Driver) Ledger() *model.Ledger {
	return d.ledger
}

func (d *Driver) Adapter() *alg.WeightAdapter {
	return d.adapter
}

func (d *Driver) Statistics() *statistics.Statistics {
	return d.stats
}

// LastDecision is the decision of the most recent slot, nil before the first.
func (d *Driver) LastDecision() *model.Decision {
	d.stepMutex.Lock()
	defer d.stepMutex.Unlock()

	return d.lastDecision
}

// perturb rescales the working copies from their setup values.
func (d *Driver) perturb() {
	p := d.cfg.Perturbation
	if !p.Enabled {
		return
	}

	for i, request := range d.requests {
		y := d.source.Next(p.Min, p.Max)
		request.ComputationLoad = d.baseRequests[i].ComputationLoad * y
		request.TransferCost = d.baseRequests[i].TransferCost * y
	}

	for i, node := range d.nodes {
		node.ComputationCost = d.baseNodes[i].ComputationCost * d.source.Next(p.Min, p.Max)
		node.RetentionCost = d.baseNodes[i].RetentionCost * d.source.Next(p.Min, p.Max)
	}
}

// Step runs exactly one slot.
func (d *Driver) Step(ctx context.Context) (*model.SlotReport, error) {
	d.stepMutex.Lock()
	defer d.stepMutex.Unlock()

	if d.State() == DONE {
		return nil, ErrRunFinished
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.setState(PERTURBING)
	d.perturb()

	d.setState(WEIGHT_COMPUTING)
	load := d.ledger.AggregateLoad()
	weights, err := d.adapter.Adapt(load)
	if err != nil {
		d.setState(DONE)
		return nil, fmt.Errorf("slot %d: %w", d.slot, err)
	}

	d.setState(SCHEDULING)
	if !d.cfg.CarryCapacity {
		d.ledger.Reset()
	}

	var prefetched []int
	var prefetchCost float64
	if d.cfg.Prefetch.Enabled {
		prefetched, prefetchCost, err = alg.Prefetch(d.nodes, d.cfg.Prefetch.Services, d.cfg.Prefetch.CostMultiplier, d.ledger)
		if err != nil {
			d.setState(DONE)
			return nil, fmt.Errorf("slot %d prefetch: %w", d.slot, err)
		}
	}

	// A started slot is never interrupted, cancellation is honoured between slots.
	passCtx := context.Background()

	start := d.clock()
	decision, err := d.engine.Assign(passCtx, d.requests, d.nodes, weights, d.ledger)
	schedulingLatency := d.clock().Sub(start)
	if err != nil {
		d.setState(DONE)
		return nil, fmt.Errorf("slot %d assignment: %w", d.slot, err)
	}

	for _, serviceId := range prefetched {
		decision.MarkPrefetched(serviceId)
	}

	if d.cfg.Transfer.Enabled {
		if err := d.engine.Route(passCtx, d.requests, d.nodes, d.ledger, decision); err != nil {
			d.setState(DONE)
			return nil, fmt.Errorf("slot %d routing: %w", d.slot, err)
		}
	}

	alg.DecideRetention(d.nodes, load, d.cfg.Retention.LoadThreshold, d.cfg.Retention.CostThreshold, decision)

	d.setState(REPORTING)
	r := d.buildReport(load, weights, decision, prefetchCost, schedulingLatency)
	d.record(r)

	if err := d.sinks.Publish(ctx, r); err != nil {
		log.Err(err).Msgf("could not publish slot %d report", r.Slot)
	}

	d.lastDecision = decision
	d.slot += 1
	d.completed.Store(int32(d.slot))
	if d.slot >= d.cfg.Slots {
		d.setState(DONE)
	} else {
		d.setState(IDLE)
	}

	return r, nil
}

func (d *Driver) buildReport(
	load float64,
	weights model.WeightVector,
	decision *model.Decision,
	prefetchCost float64,
	schedulingLatency time.Duration,
) *model.SlotReport {
	r := &model.SlotReport{
		RunId:                   d.runId,
		Slot:                    d.slot,
		Load:                    load,
		Weights:                 weights,
		PrefetchCost:            prefetchCost,
		SchedulingLatencyMicros: float64(schedulingLatency.Nanoseconds()) / 1e3,
		Unassigned:              len(decision.Unassigned()),
		Retained:                decision.RetainedCount(),
		Prefetched:              len(decision.Prefetched()),
		Transfers:               len(decision.Transfers()),
	}

	for _, a := range decision.Assignments() {
		r.TotalCost += a.Cost
		r.TotalLatency += a.Latency
		r.Assigned += 1
	}
	r.TotalCost += prefetchCost

	return r
}

func (d *Driver) record(r *model.SlotReport) {
	d.slotCosts = append(d.slotCosts, r.TotalCost)

	d.summary.Slots += 1
	d.summary.TotalCost += r.TotalCost
	d.summary.CumulativeLatency += r.TotalLatency
	d.summary.CumulativeSchedulingMicros += r.SchedulingLatencyMicros
	d.summary.TotalUnassigned += r.Unassigned

	d.stats.Set(statistics.SLOTS, d.summary.Slots)
	d.stats.Change(statistics.ASSIGNED, r.Assigned)
	d.stats.Change(statistics.UNASSIGNED, r.Unassigned)
	d.stats.Change(statistics.RETAINED, r.Retained)
	d.stats.Change(statistics.PREFETCHED, r.Prefetched)
	d.stats.Change(statistics.TRANSFERS, r.Transfers)

	if d.metrics != nil {
		d.metrics.Observe(r)
	}
}

// Summary returns the cumulative figures of the slots run so far.
func (d *Driver) Summary() model.RunSummary {
	d.stepMutex.Lock()
	defer d.stepMutex.Unlock()

	summary := d.summary
	switch len(d.slotCosts) {
	case 0:
	case 1:
		summary.MeanSlotCost = d.slotCosts[0]
	default:
		summary.MeanSlotCost, summary.StdDevSlotCost = stat.MeanStdDev(d.slotCosts, nil)
	}

	return summary
}

// Run executes every remaining slot. The context is checked between slots,
// a slot that has started always runs to completion.
func (d *Driver) Run(ctx context.Context) (model.RunSummary, error) {
	log.Info().Msgf(
		"run %s: %d slots, %s policy, carry capacity %v",
		d.runId, d.cfg.Slots, d.adapter.Policy().Name(), d.cfg.CarryCapacity,
	)

	for d.State() != DONE {
		if err := ctx.Err(); err != nil {
			log.Warn().Msgf("run %s cancelled after %d slots", d.runId, d.slot)
			return d.Summary(), err
		}

		if _, err := d.Step(ctx); err != nil {
			return d.Summary(), err
		}
	}

	summary := d.Summary()
	log.Info().Msgf(
		"run %s finished: total cost %f, cumulative latency %f, cumulative scheduling %.1fus",
		d.runId, summary.TotalCost, summary.CumulativeLatency, summary.CumulativeSchedulingMicros,
	)
	log.Debug().Msg(d.stats.Display())

	return summary, nil
}
