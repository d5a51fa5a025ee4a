package synthetic

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/goppo/environment"
	"github.com/samuelfneumann/goppo/timestep"
)

// ConstantReward emits the same reward on every step, independent of
// state and action. The observation is always the zero vector. A value
// function trained on this environment should learn the constant
// reward/(1-discount).
type ConstantReward struct {
	base
	defaultReward float64
}

// NewConstantReward returns a new ConstantReward environment and the
// first timestep of its first episode. Episodes are cut off after
// stepsPerEpisode steps.
func NewConstantReward(obsDim, actionDim, stepsPerEpisode int,
	defaultReward, discount float64) (environment.Environment,
	timestep.TimeStep) {
	env := &ConstantReward{
		base: newBase(obsDim, actionDim, stepsPerEpisode, discount,
			r1.Interval{Min: 0, Max: 0}, r1.Interval{Min: -1, Max: 1}),
		defaultReward: defaultReward,
	}

	return env, env.Reset()
}

// Reset starts a new episode and returns its first timestep
func (c *ConstantReward) Reset() timestep.TimeStep {
	return c.reset(mat.NewVecDense(c.obsDim, nil))
}

// Step takes one environmental step given an action, returning the
// next timestep and whether it is the last in the episode
func (c *ConstantReward) Step(action *mat.VecDense) (timestep.TimeStep,
	bool) {
	t, last := c.advance(mat.NewVecDense(c.obsDim, nil))
	t.Reward = c.defaultReward

	return t, last
}

// RewardSpec returns the reward specification of the environment
func (c *ConstantReward) RewardSpec() environment.Spec {
	return c.rewardSpec(c.defaultReward, c.defaultReward)
}

func (c *ConstantReward) String() string {
	return fmt.Sprintf("Constant Reward  |  Reward: %v", c.defaultReward)
}
