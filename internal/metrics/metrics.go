package metrics

import (
	"github.com/amsen20/adaptsched/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adaptsched"

type Metrics struct {
	aggregateLoad     prometheus.Gauge
	weights           *prometheus.GaugeVec
	slotCost          prometheus.Gauge
	slotLatency       prometheus.Gauge
	slots             prometheus.Counter
	assigned          prometheus.Counter
	unassigned        prometheus.Counter
	schedulingLatency prometheus.Histogram
}

// New registers the scheduler metrics on registry. Each driver should get its
// own registry, registering twice on the same one panics.
func New(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		aggregateLoad: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "aggregate_load",
			Help:      "Used over maximum compute capacity at the start of the last slot",
		}),
		weights: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cost_weight",
			Help:      "Weight of each cost component in the last slot",
		}, []string{"component"}),
		slotCost: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "slot_cost",
			Help:      "Total cost of the last slot",
		}),
		slotLatency: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "slot_latency",
			Help:      "Total latency contribution of the last slot",
		}),
		slots: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_total",
			Help:      "Slots completed",
		}),
		assigned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assigned_requests_total",
			Help:      "Requests placed on a node",
		}),
		unassigned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unassigned_requests_total",
			Help:      "Requests that fit on no node",
		}),
		schedulingLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scheduling_latency_microseconds",
			Help:      "Wall-clock duration of the assignment pass",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}
}

func (m *Metrics) Observe(report *model.SlotReport) {
	m.aggregateLoad.Set(report.Load)
	m.weights.WithLabelValues("computation").Set(report.Weights.Computation)
	m.weights.WithLabelValues("retention").Set(report.Weights.Retention)
	m.weights.WithLabelValues("transfer").Set(report.Weights.Transfer)
	m.weights.WithLabelValues("preparation").Set(report.Weights.Preparation)
	m.slotCost.Set(report.TotalCost)
	m.slotLatency.Set(report.TotalLatency)
	m.slots.Inc()
	m.assigned.Add(float64(report.Assigned))
	m.unassigned.Add(float64(report.Unassigned))
	m.schedulingLatency.Observe(report.SchedulingLatencyMicros)
}
