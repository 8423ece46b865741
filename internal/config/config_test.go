package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amsen20/adaptsched/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, PIECEWISE_POLICY, cfg.Policy)
	assert.Equal(t, 0.4, cfg.Piecewise.LowThreshold)
	assert.Equal(t, 0.7, cfg.Piecewise.HighThreshold)
	assert.Equal(t, []float64{0, 0.1, 0.2, 0.3}, cfg.Sigmoid.Offsets)
}

func TestParse(t *testing.T) {
	cfg := Default()
	err := Parse([]byte(`
slots: 12
carry_capacity: false
policy: " Sigmoid "
sigmoid:
  gamma: 4
  delta: 0.2
  offsets: [0, 0.05, 0.1, 0.15]
perturbation:
  enabled: true
  min: 0.5
  max: 1.5
  seed: 42
prefetch:
  enabled: true
  cost_multiplier: 0.1
  services:
    - id: 1
      size: 2
      prefetch_cost: 3
kafka:
  brokers: ["localhost:9092"]
  topic: slot-reports
`), &cfg)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Slots)
	assert.False(t, cfg.CarryCapacity)
	assert.Equal(t, SIGMOID_POLICY, cfg.Policy)
	assert.Equal(t, 4.0, cfg.Sigmoid.Gamma)
	assert.Equal(t, uint64(42), cfg.Perturbation.Seed)
	require.Len(t, cfg.Prefetch.Services, 1)
	assert.Equal(t, 3.0, cfg.Prefetch.Services[0].PrefetchCost)
	assert.Equal(t, "slot-reports", cfg.Kafka.Topic)

	// Untouched sections keep their defaults.
	assert.Equal(t, []float64{0.5, 0.2, 0.2, 0.1}, cfg.Piecewise.Low)
	assert.Equal(t, 4, cfg.Parallelism)
}

func TestParseRejects(t *testing.T) {
	for name, content := range map[string]string{
		"UnknownKey":      "slotz: 3\n",
		"UnknownPolicy":   "policy: random\n",
		"NegativeSlots":   "slots: -1\n",
		"ShortVector":     "piecewise:\n  low: [1, 0]\n",
		"Thresholds":      "piecewise:\n  low_threshold: 0.8\n  high_threshold: 0.5\n",
		"Perturbation":    "perturbation:\n  enabled: true\n  min: 2\n  max: 1\n",
		"NegativeMultipl": "transfer:\n  multiplier: -1\n",
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			assert.Error(t, Parse([]byte(content), &cfg))
		})
	}

	cfg := Default()
	assert.ErrorIs(t, Parse([]byte("policy: random\n"), &cfg), model.ErrUnknownPolicy)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("slots: 3\npolicy: piecewise-slope\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Slots)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNormalizePolicy(t *testing.T) {
	assert.Equal(t, PIECEWISE_POLICY, NormalizePolicy(""))
	assert.Equal(t, SIGMOID_POLICY, NormalizePolicy("  SIGMOID"))
	assert.Equal(t, "other", NormalizePolicy("Other"))
}

func TestRepositoryConfig(t *testing.T) {
	cfg, err := Load("../../config.yaml")
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Slots)
	assert.True(t, cfg.Transfer.Enabled)
	assert.Equal(t, ":8080", cfg.HttpAddr)
}
