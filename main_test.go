package main

import (
	"context"
	"testing"

	"github.com/amsen20/adaptsched/internal/config"
	"github.com/amsen20/adaptsched/internal/model"
	"github.com/amsen20/adaptsched/internal/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStoresSummary(t *testing.T) {
	cfg := config.Default()
	cfg.Slots = 3
	store := report.NewStore(10)

	require.NoError(t, run(context.Background(), cfg, store, prometheus.NewRegistry()))

	summary, ok := store.Summary()
	require.True(t, ok)
	assert.Equal(t, 3, summary.Slots)
	assert.Len(t, store.Reports(), 3)
}

func TestAbortedRunHasNoSummary(t *testing.T) {
	cfg := config.Default()
	cfg.Slots = 3
	cfg.Piecewise.Low = []float64{0, 0, 0, 0}
	store := report.NewStore(10)

	err := run(context.Background(), cfg, store, prometheus.NewRegistry())
	assert.ErrorIs(t, err, model.ErrInvalidWeightVector)

	_, ok := store.Summary()
	assert.False(t, ok)
}

func TestCancelledRunHasNoSummary(t *testing.T) {
	cfg := config.Default()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := report.NewStore(10)

	err := run(ctx, cfg, store, prometheus.NewRegistry())
	assert.ErrorIs(t, err, context.Canceled)

	_, ok := store.Summary()
	assert.False(t, ok)
}
