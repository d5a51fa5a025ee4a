// Package environment outlines the interfaces and structs needed to implement
// concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/goppo/timestep"
)

// Ender determines when and how episodes end. An Ender inspects each
// timestep and, if the episode should end at that timestep, modifies
// the timestep's StepType to timestep.Last and sets its EndType.
type Ender interface {
	End(*timestep.TimeStep) bool
}

// Environment implements a simulated environment. Environments are
// created ready to use; Reset starts a new episode and returns its
// first timestep.
type Environment interface {
	Reset() timestep.TimeStep
	Step(action *mat.VecDense) (timestep.TimeStep, bool)
	RewardSpec() Spec
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}
