package alg

import (
	"fmt"
	"math"

	"github.com/amsen20/adaptsched/internal/config"
	"github.com/amsen20/adaptsched/internal/model"
	"gonum.org/v1/gonum/floats"
)

// WeightPolicy maps the aggregate load to a normalized weight vector.
type WeightPolicy interface {
	Name() string
	Weights(currentLoad, previousLoad float64, previousWeights model.WeightVector) (model.WeightVector, error)
}

// SigmoidPolicy saturates each weight with a logistic curve of the load,
// shifted by an increasing offset per component.
type SigmoidPolicy struct {
	Gamma   float64
	Delta   float64
	Offsets []float64
}

func (p *SigmoidPolicy) Name() string {
	return config.SIGMOID_POLICY
}

func (p *SigmoidPolicy) Weights(load, _ float64, _ model.WeightVector) (model.WeightVector, error) {
	if len(p.Offsets) != model.WEIGHT_COMPONENTS {
		return model.WeightVector{}, fmt.Errorf("%w: %d sigmoid offsets", model.ErrInvalidWeightVector, len(p.Offsets))
	}

	raw := make([]float64, model.WEIGHT_COMPONENTS)
	for i, offset := range p.Offsets {
		raw[i] = 1 / (1 + math.Exp(-p.Gamma*(load-p.Delta-offset)))
	}

	w, err := model.NewWeightVector(raw)
	if err != nil {
		return model.WeightVector{}, err
	}

	return w.Normalize()
}

// PiecewiseSlopePolicy picks a base vector by load band and, above the low
// band, nudges it by the relative load change since the previous slot.
// Band edges are inclusive on the lower band.
type PiecewiseSlopePolicy struct {
	LowThreshold  float64
	HighThreshold float64

	Low    []float64
	Medium []float64
	High   []float64

	MediumSlope []float64
	HighSlope   []float64
}

func (p *PiecewiseSlopePolicy) Name() string {
	return config.PIECEWISE_POLICY
}

func Slope(currentLoad, previousLoad float64) float64 {
	if previousLoad == 0 {
		return 0
	}

	return (currentLoad - previousLoad) / previousLoad
}

func (p *PiecewiseSlopePolicy) Weights(load, previousLoad float64, _ model.WeightVector) (model.WeightVector, error) {
	var base, coefficients []float64

	switch {
	case load <= p.LowThreshold:
		base = p.Low
	case load <= p.HighThreshold:
		base, coefficients = p.Medium, p.MediumSlope
	default:
		base, coefficients = p.High, p.HighSlope
	}

	if len(base) != model.WEIGHT_COMPONENTS {
		return model.WeightVector{}, fmt.Errorf("%w: base vector has %d components", model.ErrInvalidWeightVector, len(base))
	}

	raw := make([]float64, model.WEIGHT_COMPONENTS)
	copy(raw, base)

	if coefficients != nil {
		if len(coefficients) != model.WEIGHT_COMPONENTS {
			return model.WeightVector{}, fmt.Errorf("%w: slope vector has %d components", model.ErrInvalidWeightVector, len(coefficients))
		}
		floats.AddScaled(raw, Slope(load, previousLoad), coefficients)
	}

	w, err := model.NewWeightVector(raw)
	if err != nil {
		return model.WeightVector{}, err
	}

	return w.Normalize()
}

// WeightAdapter owns the rolling load and weight state of one scheduler.
// It is not safe for concurrent use; each driver holds its own.
type WeightAdapter struct {
	policy WeightPolicy

	previousLoad    float64
	previousWeights model.WeightVector
}

func NewWeightAdapter(policy WeightPolicy, initial model.WeightVector) *WeightAdapter {
	return &WeightAdapter{
		policy:          policy,
		previousWeights: initial,
	}
}

func (a *WeightAdapter) Policy() WeightPolicy {
	return a.policy
}

func (a *WeightAdapter) PreviousLoad() float64 {
	return a.previousLoad
}

func (a *WeightAdapter) PreviousWeights() model.WeightVector {
	return a.previousWeights
}

// Adapt computes the weights for the current load and rolls the state forward.
func (a *WeightAdapter) Adapt(load float64) (model.WeightVector, error) {
	if math.IsNaN(load) || math.IsInf(load, 0) {
		return model.WeightVector{}, fmt.Errorf("%w: load is %v", model.ErrInvalidWeightVector, load)
	}

	w, err := a.policy.Weights(load, a.previousLoad, a.previousWeights)
	if err != nil {
		return model.WeightVector{}, err
	}

	if err := w.Validate(); err != nil {
		return model.WeightVector{}, err
	}

	log.Debug().Msgf(
		"%s weights for load %.4f (previous %.4f): %v",
		a.policy.Name(), load, a.previousLoad, w.Slice(),
	)

	a.previousLoad = load
	a.previousWeights = w

	return w, nil
}

// NewWeightPolicy builds the policy named in the configuration.
func NewWeightPolicy(cfg *config.GeneralConfig) (WeightPolicy, error) {
	switch config.NormalizePolicy(cfg.Policy) {
	case config.SIGMOID_POLICY:
		return &SigmoidPolicy{
			Gamma:   cfg.Sigmoid.Gamma,
			Delta:   cfg.Sigmoid.Delta,
			Offsets: cfg.Sigmoid.Offsets,
		}, nil
	case config.PIECEWISE_POLICY:
		p := cfg.Piecewise
		return &PiecewiseSlopePolicy{
			LowThreshold:  p.LowThreshold,
			HighThreshold: p.HighThreshold,
			Low:           p.Low,
			Medium:        p.Medium,
			High:          p.High,
			MediumSlope:   p.MediumSlope,
			HighSlope:     p.HighSlope,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", model.ErrUnknownPolicy, cfg.Policy)
}

// NewWeightAdapterFromConfig builds the configured policy and seeds it with
// the configured initial weights.
func NewWeightAdapterFromConfig(cfg *config.GeneralConfig) (*WeightAdapter, error) {
	policy, err := NewWeightPolicy(cfg)
	if err != nil {
		return nil, err
	}

	initial := model.UniformWeights()
	if len(cfg.Piecewise.Initial) > 0 {
		raw, err := model.NewWeightVector(cfg.Piecewise.Initial)
		if err != nil {
			return nil, err
		}
		if initial, err = raw.Normalize(); err != nil {
			return nil, err
		}
	}

	return NewWeightAdapter(policy, initial), nil
}
