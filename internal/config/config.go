package config

import (
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/amsen20/adaptsched/internal/model"
	"gopkg.in/yaml.v2"
)

const (
	SIGMOID_POLICY   = "sigmoid"
	PIECEWISE_POLICY = "piecewise-slope"
)

type SigmoidConfig struct {
	Gamma   float64   `yaml:"gamma"`
	Delta   float64   `yaml:"delta"`
	Offsets []float64 `yaml:"offsets"`
}

type PiecewiseConfig struct {
	LowThreshold  float64 `yaml:"low_threshold"`
	HighThreshold float64 `yaml:"high_threshold"`

	Low    []float64 `yaml:"low"`
	Medium []float64 `yaml:"medium"`
	High   []float64 `yaml:"high"`

	// Per-component coefficients multiplied by the load slope.
	MediumSlope []float64 `yaml:"medium_slope"`
	HighSlope   []float64 `yaml:"high_slope"`

	Initial []float64 `yaml:"initial"`
}

type RetentionConfig struct {
	LoadThreshold float64 `yaml:"load_threshold"`
	CostThreshold float64 `yaml:"cost_threshold"`
}

type TransferConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Multiplier float64 `yaml:"multiplier"`
}

type PrefetchConfig struct {
	Enabled        bool             `yaml:"enabled"`
	CostMultiplier float64          `yaml:"cost_multiplier"`
	Services       []*model.Service `yaml:"services"`
}

type PerturbationConfig struct {
	Enabled bool    `yaml:"enabled"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Seed    uint64  `yaml:"seed"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type GeneralConfig struct {
	Name          string `yaml:"name"`
	Slots         int    `yaml:"slots"`
	CarryCapacity bool   `yaml:"carry_capacity"`
	Policy        string `yaml:"policy"`
	Parallelism   int    `yaml:"parallelism"`

	Sigmoid      SigmoidConfig      `yaml:"sigmoid"`
	Piecewise    PiecewiseConfig    `yaml:"piecewise"`
	Retention    RetentionConfig    `yaml:"retention"`
	Transfer     TransferConfig     `yaml:"transfer"`
	Prefetch     PrefetchConfig     `yaml:"prefetch"`
	Perturbation PerturbationConfig `yaml:"perturbation"`

	ConnectorKind string `yaml:"connector"`
	ScenarioFile  string `yaml:"scenario_file"`
	Namespace     string `yaml:"namespace"`
	Kubeconfig    string `yaml:"kubeconfig"`

	HttpAddr string      `yaml:"http_addr"`
	Kafka    KafkaConfig `yaml:"kafka"`
}

var SchedulerGeneralConfig GeneralConfig

// Default returns the constants of the slope-adaptive variant with the
// sigmoid constants of the saturation variant filled in.
func Default() GeneralConfig {
	return GeneralConfig{
		Name:          "adaptsched",
		Slots:         5,
		CarryCapacity: true,
		Policy:        PIECEWISE_POLICY,
		Parallelism:   4,
		Sigmoid: SigmoidConfig{
			Gamma:   1.0,
			Delta:   0.3,
			Offsets: []float64{0, 0.1, 0.2, 0.3},
		},
		Piecewise: PiecewiseConfig{
			LowThreshold:  0.4,
			HighThreshold: 0.7,
			Low:           []float64{0.5, 0.2, 0.2, 0.1},
			Medium:        []float64{0.4, 0.3, 0.2, 0.1},
			High:          []float64{0.3, 0.4, 0.2, 0.1},
			MediumSlope:   []float64{0.1, 0.05, -0.05, -0.05},
			HighSlope:     []float64{0.1, 0.1, -0.05, -0.05},
			Initial:       []float64{0.5, 0.2, 0.2, 0.1},
		},
		Retention: RetentionConfig{
			LoadThreshold: 0.7,
			CostThreshold: 0.5,
		},
		Transfer: TransferConfig{
			Multiplier: 0.1,
		},
		Prefetch: PrefetchConfig{
			CostMultiplier: 0.05,
		},
		Perturbation: PerturbationConfig{
			Min: 0.1,
			Max: 0.3,
		},
		ConnectorKind: "const",
		Namespace:     "default",
	}
}

// Load reads a yaml file over the defaults. Unknown keys are rejected.
func Load(path string) (GeneralConfig, error) {
	cfg := Default()

	yamlFile, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read config file %s: %w", path, err)
	}

	if err := Parse(yamlFile, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func Parse(content []byte, cfg *GeneralConfig) error {
	if err := yaml.UnmarshalStrict(content, cfg); err != nil {
		return fmt.Errorf("could not parse config: %w", err)
	}

	cfg.Policy = NormalizePolicy(cfg.Policy)

	return cfg.Validate()
}

// NormalizePolicy lower-cases and trims a policy name, empty means piecewise-slope.
func NormalizePolicy(policy string) string {
	policy = strings.ToLower(strings.TrimSpace(policy))
	if policy == "" {
		return PIECEWISE_POLICY
	}

	return policy
}

func checkVector(name string, v []float64, size int) error {
	if len(v) != size {
		return fmt.Errorf("%s should have %d entries, got %d", name, size, len(v))
	}

	return nil
}

func (c *GeneralConfig) Validate() error {
	if c.Slots < 0 {
		return fmt.Errorf("slots should not be negative, got %d", c.Slots)
	}

	switch NormalizePolicy(c.Policy) {
	case SIGMOID_POLICY, PIECEWISE_POLICY:
	default:
		return fmt.Errorf("%w: %s", model.ErrUnknownPolicy, c.Policy)
	}

	if err := checkVector("sigmoid.offsets", c.Sigmoid.Offsets, model.WEIGHT_COMPONENTS); err != nil {
		return err
	}

	p := c.Piecewise
	for _, iter := range []struct {
		name string
		v    []float64
	}{
		{"piecewise.low", p.Low},
		{"piecewise.medium", p.Medium},
		{"piecewise.high", p.High},
		{"piecewise.medium_slope", p.MediumSlope},
		{"piecewise.high_slope", p.HighSlope},
		{"piecewise.initial", p.Initial},
	} {
		if err := checkVector(iter.name, iter.v, model.WEIGHT_COMPONENTS); err != nil {
			return err
		}
	}

	if p.LowThreshold > p.HighThreshold {
		return fmt.Errorf("piecewise.low_threshold %v is above high_threshold %v", p.LowThreshold, p.HighThreshold)
	}

	if c.Perturbation.Enabled && c.Perturbation.Min > c.Perturbation.Max {
		return fmt.Errorf("perturbation.min %v is above max %v", c.Perturbation.Min, c.Perturbation.Max)
	}

	if c.Transfer.Multiplier < 0 || c.Prefetch.CostMultiplier < 0 {
		return fmt.Errorf("multipliers should not be negative")
	}

	return nil
}
