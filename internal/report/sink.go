package report

import (
	"context"
	"errors"

	"github.com/amsen20/adaptsched/internal/model"
	"github.com/amsen20/adaptsched/logging"
)

var log = logging.Get()

// Sink receives every slot report once the slot is complete.
type Sink interface {
	Publish(ctx context.Context, report *model.SlotReport) error
}

// LogSink writes a one line summary of each slot.
type LogSink struct{}

func (LogSink) Publish(_ context.Context, r *model.SlotReport) error {
	log.Info().Msgf(
		"slot %d: load %.4f, total cost %f, total latency %f, scheduling %.1fus, unassigned %d",
		r.Slot, r.Load, r.TotalCost, r.TotalLatency, r.SchedulingLatencyMicros, r.Unassigned,
	)

	return nil
}

// Multi publishes to every sink and joins their errors.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, r *model.SlotReport) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Publish(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
