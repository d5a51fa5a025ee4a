// Package synthetic implements environments with closed-form solutions
// for debugging reinforcement learning systems. Each environment
// isolates one part of a learning system: whether the critic can learn
// a constant, whether discounting works, whether the critic can learn
// state-dependent rewards, and whether the actor can maximize action-
// dependent and action-state-dependent rewards.
package synthetic

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/goppo/environment"
	"github.com/samuelfneumann/goppo/timestep"
	"github.com/samuelfneumann/goppo/utils/matutils"
)

// base holds the bookkeeping shared by all synthetic environments:
// observation and action layouts, the per-episode step limit, and the
// current step number.
type base struct {
	obsDim       int
	actionDim    int
	discount     float64
	obsBounds    r1.Interval
	actionBounds r1.Interval
	stepLimit    environment.Ender
	stepNum      int
}

func newBase(obsDim, actionDim, stepsPerEpisode int, discount float64,
	obsBounds, actionBounds r1.Interval) base {
	if obsDim <= 0 {
		panic(fmt.Sprintf("newBase: observation dimensions must be "+
			"positive \n\thave(%v)", obsDim))
	}
	if actionDim <= 0 {
		panic(fmt.Sprintf("newBase: action dimensions must be "+
			"positive \n\thave(%v)", actionDim))
	}
	if stepsPerEpisode <= 0 {
		panic(fmt.Sprintf("newBase: steps per episode must be "+
			"positive \n\thave(%v)", stepsPerEpisode))
	}

	return base{
		obsDim:       obsDim,
		actionDim:    actionDim,
		discount:     discount,
		obsBounds:    obsBounds,
		actionBounds: actionBounds,
		stepLimit:    environment.NewStepLimit(stepsPerEpisode),
	}
}

// advance increments the step counter and packages obs into the next
// timestep with zero reward, ending the episode at the step limit.
// Callers fill in the reward on the returned timestep.
func (b *base) advance(obs *mat.VecDense) (timestep.TimeStep, bool) {
	b.stepNum++
	t := timestep.New(timestep.Mid, 0, b.discount, obs, b.stepNum)
	last := b.stepLimit.End(&t)

	return t, last
}

// reset restarts the episode step count and returns the first timestep
// of the new episode, observing obs
func (b *base) reset(obs *mat.VecDense) timestep.TimeStep {
	b.stepNum = 0
	return timestep.New(timestep.First, 0, b.discount, obs, 0)
}

// ObservationSpec returns the observation specification of the
// environment
func (b *base) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(b.obsDim, nil)
	low := fill(b.obsDim, b.obsBounds.Min)
	high := fill(b.obsDim, b.obsBounds.Max)

	return environment.NewSpec(shape, environment.Observation, low, high,
		environment.Continuous)
}

// ActionSpec returns the action specification of the environment
func (b *base) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(b.actionDim, nil)
	low := fill(b.actionDim, b.actionBounds.Min)
	high := fill(b.actionDim, b.actionBounds.Max)

	return environment.NewSpec(shape, environment.Action, low, high,
		environment.Continuous)
}

// DiscountSpec returns the discounting specification of the environment
func (b *base) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	bounds := mat.NewVecDense(1, []float64{b.discount})

	return environment.NewSpec(shape, environment.Discount, bounds, bounds,
		environment.Continuous)
}

// rewardSpec returns a reward specification with the given bounds
func (b *base) rewardSpec(low, high float64) environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lower := mat.NewVecDense(1, []float64{low})
	upper := mat.NewVecDense(1, []float64{high})

	return environment.NewSpec(shape, environment.Reward, lower, upper,
		environment.Continuous)
}

// checkAction panics if an action has the wrong number of dimensions
func (b *base) checkAction(action *mat.VecDense) {
	if action.Len() != b.actionDim {
		panic(fmt.Sprintf("step: invalid action dimensions \n\twant(%v)"+
			"\n\thave(%v)", b.actionDim, action.Len()))
	}
}

// clipAction returns a copy of an action clipped to the environment's
// action bounds. The argument action is left unmodified.
func (b *base) clipAction(action *mat.VecDense) *mat.VecDense {
	clipped := mat.VecDenseCopyOf(action)
	matutils.VecClip(clipped, b.actionBounds.Min, b.actionBounds.Max)
	return clipped
}

// fill returns a dim-dimensional vector with every element set to v
func fill(dim int, v float64) *mat.VecDense {
	data := make([]float64, dim)
	for i := range data {
		data[i] = v
	}

	return mat.NewVecDense(dim, data)
}

// actionMean returns the mean over the elements of an action vector
func actionMean(action *mat.VecDense) float64 {
	return mat.Sum(action) / float64(action.Len())
}
