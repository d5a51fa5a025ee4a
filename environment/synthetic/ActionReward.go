package synthetic

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/goppo/environment"
	"github.com/samuelfneumann/goppo/timestep"
)

// ActionReward emits a reward equal to the mean of the action vector.
// The observation is always the zero vector. Tests whether a policy
// can learn to maximize action values: the optimal policy saturates
// every action dimension at its upper bound.
type ActionReward struct {
	base
}

// NewActionReward returns a new ActionReward environment and the first
// timestep of its first episode. Episodes are cut off after
// stepsPerEpisode steps.
func NewActionReward(obsDim, actionDim, stepsPerEpisode int,
	discount float64) (environment.Environment, timestep.TimeStep) {
	env := &ActionReward{
		base: newBase(obsDim, actionDim, stepsPerEpisode, discount,
			r1.Interval{Min: 0, Max: 0}, r1.Interval{Min: -1, Max: 1}),
	}

	return env, env.Reset()
}

// Reset starts a new episode and returns its first timestep
func (a *ActionReward) Reset() timestep.TimeStep {
	return a.reset(mat.NewVecDense(a.obsDim, nil))
}

// Step takes one environmental step given an action, returning the
// next timestep and whether it is the last in the episode. Actions
// outside the action bounds are clipped before computing the reward.
func (a *ActionReward) Step(action *mat.VecDense) (timestep.TimeStep,
	bool) {
	a.checkAction(action)

	t, last := a.advance(mat.NewVecDense(a.obsDim, nil))
	t.Reward = actionMean(a.clipAction(action))

	return t, last
}

// RewardSpec returns the reward specification of the environment
func (a *ActionReward) RewardSpec() environment.Spec {
	return a.rewardSpec(a.actionBounds.Min, a.actionBounds.Max)
}

func (a *ActionReward) String() string {
	return fmt.Sprintf("Action Reward  |  Action Dims: %v", a.actionDim)
}
