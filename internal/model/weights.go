package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	WEIGHT_COMPONENTS = 4
	WEIGHT_TOLERANCE  = 1e-9
)

// WeightVector is the relative importance of the four cost terms for one slot.
type WeightVector struct {
	Computation float64 `yaml:"computation" json:"computation"`
	Retention   float64 `yaml:"retention" json:"retention"`
	Transfer    float64 `yaml:"transfer" json:"transfer"`
	Preparation float64 `yaml:"preparation" json:"preparation"`
}

func NewWeightVector(raw []float64) (WeightVector, error) {
	if len(raw) != WEIGHT_COMPONENTS {
		return WeightVector{}, fmt.Errorf("%w: expected %d components, got %d", ErrInvalidWeightVector, WEIGHT_COMPONENTS, len(raw))
	}

	return WeightVector{
		Computation: raw[0],
		Retention:   raw[1],
		Transfer:    raw[2],
		Preparation: raw[3],
	}, nil
}

func UniformWeights() WeightVector {
	return WeightVector{0.25, 0.25, 0.25, 0.25}
}

func (w WeightVector) Slice() []float64 {
	return []float64{w.Computation, w.Retention, w.Transfer, w.Preparation}
}

func (w WeightVector) Sum() float64 {
	return floats.Sum(w.Slice())
}

// Normalize clamps negative components to zero and scales the vector to sum to 1.
func (w WeightVector) Normalize() (WeightVector, error) {
	raw := w.Slice()
	for i, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return WeightVector{}, fmt.Errorf("%w: component %d is %v", ErrInvalidWeightVector, i, v)
		}
		if v < 0 {
			raw[i] = 0
		}
	}

	sum := floats.Sum(raw)
	if sum <= 0 {
		return WeightVector{}, fmt.Errorf("%w: components sum to %v", ErrInvalidWeightVector, sum)
	}
	floats.Scale(1/sum, raw)

	return NewWeightVector(raw)
}

func (w WeightVector) Validate() error {
	for i, v := range w.Slice() {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: component %d is %v", ErrInvalidWeightVector, i, v)
		}
	}

	if sum := w.Sum(); math.Abs(sum-1) > WEIGHT_TOLERANCE {
		return fmt.Errorf("%w: components sum to %v", ErrInvalidWeightVector, sum)
	}

	return nil
}
