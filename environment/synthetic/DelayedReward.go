package synthetic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/goppo/environment"
	"github.com/samuelfneumann/goppo/timestep"
)

// DelayedReward emits a single reward on the final step of each
// episode and zero reward before that. The observation is always the
// zero vector. Useful for debugging reward discounting: the value of
// a state k steps before the episode end is discount^(k-1) times the
// final reward.
type DelayedReward struct {
	base
	finalReward float64
}

// NewDelayedReward returns a new DelayedReward environment and the
// first timestep of its first episode. Episodes are cut off after
// stepsPerEpisode steps, emitting finalReward on the cutoff step.
func NewDelayedReward(obsDim, actionDim, stepsPerEpisode int,
	finalReward, discount float64) (environment.Environment,
	timestep.TimeStep) {
	env := &DelayedReward{
		base: newBase(obsDim, actionDim, stepsPerEpisode, discount,
			r1.Interval{Min: 0, Max: 0}, r1.Interval{Min: -1, Max: 1}),
		finalReward: finalReward,
	}

	return env, env.Reset()
}

// Reset starts a new episode and returns its first timestep
func (d *DelayedReward) Reset() timestep.TimeStep {
	return d.reset(mat.NewVecDense(d.obsDim, nil))
}

// Step takes one environmental step given an action, returning the
// next timestep and whether it is the last in the episode
func (d *DelayedReward) Step(action *mat.VecDense) (timestep.TimeStep,
	bool) {
	t, last := d.advance(mat.NewVecDense(d.obsDim, nil))
	if last {
		t.Reward = d.finalReward
	}

	return t, last
}

// RewardSpec returns the reward specification of the environment
func (d *DelayedReward) RewardSpec() environment.Spec {
	return d.rewardSpec(math.Min(0, d.finalReward),
		math.Max(0, d.finalReward))
}

func (d *DelayedReward) String() string {
	return fmt.Sprintf("Delayed Reward  |  Final Reward: %v", d.finalReward)
}
