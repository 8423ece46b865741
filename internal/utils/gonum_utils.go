package utils

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

func SubVec(a, b *mat.VecDense) *mat.VecDense {
	if a.Len() != b.Len() {
		panic("Two vectors should have the same length.")
	}

	ret := mat.NewVecDense(a.Len(), nil)
	ret.SubVec(a, b)

	return ret
}

func AddVec(a, b *mat.VecDense) *mat.VecDense {
	if a.Len() != b.Len() {
		panic("Two vectors should have the same length.")
	}

	ret := mat.NewVecDense(a.Len(), nil)
	ret.AddVec(a, b)

	return ret
}

func SAddVec(a, b *mat.VecDense) {
	a.AddVec(a, b)
}

// UnitVec returns a vector of length n holding value at index i and zeros elsewhere.
func UnitVec(n, i int, value float64) *mat.VecDense {
	ret := mat.NewVecDense(n, nil)
	ret.SetVec(i, value)

	return ret
}

func LEThan(a, b *mat.VecDense) bool {
	if a.Len() != b.Len() {
		panic("Two vectors should have the same length.")
	}

	for i := 0; i < a.Len(); i += 1 {
		if a.AtVec(i) > b.AtVec(i) {
			return false
		}
	}

	return true
}

func ToString(v *mat.VecDense) string {
	parts := make([]string, v.Len())
	for i := 0; i < v.Len(); i++ {
		parts[i] = fmt.Sprintf("%g", v.AtVec(i))
	}

	return "(" + strings.Join(parts, ", ") + ")"
}
