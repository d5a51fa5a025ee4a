// Package matutils implements utility functions for working with
// gonum vectors and matrices
package matutils

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/goppo/utils/floatutils"
)

// Format formats a matrix for printing
func Format(X mat.Matrix) string {
	formatted := mat.Formatted(X, mat.Prefix(""), mat.Squeeze())
	return fmt.Sprintf("%v", formatted)
}

// VecClip clips each value of a vector to remain in [min, max],
// modifying the vector in place
func VecClip(a *mat.VecDense, min, max float64) {
	for i := 0; i < a.Len(); i++ {
		a.SetVec(i, floatutils.Clip(a.AtVec(i), min, max))
	}
}
