package synthetic

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/goppo/environment"
	"github.com/samuelfneumann/goppo/timestep"
)

// PredictableReward emits a random reward of -1 or +1 on each step and
// fills the observation with the value of the next step's reward, so
// the reward is exactly predictable from the preceding observation.
// Tests whether a value function can learn state-dependent rewards.
type PredictableReward struct {
	base
	rng    distuv.Bernoulli
	reward float64 // reward emitted on the next step; observation value
}

// NewPredictableReward returns a new PredictableReward environment and
// the first timestep of its first episode. Episodes are cut off after
// stepsPerEpisode steps.
func NewPredictableReward(obsDim, actionDim, stepsPerEpisode int,
	discount float64, seed uint64) (environment.Environment,
	timestep.TimeStep) {
	env := &PredictableReward{
		base: newBase(obsDim, actionDim, stepsPerEpisode, discount,
			r1.Interval{Min: -1, Max: 1}, r1.Interval{Min: -1, Max: 1}),
		rng: distuv.Bernoulli{P: 0.5, Src: rand.NewSource(seed)},
	}
	env.reward = env.draw()

	return env, env.Reset()
}

// draw samples -1 or +1 with equal probability
func (p *PredictableReward) draw() float64 {
	return 2*p.rng.Rand() - 1
}

// Reset starts a new episode and returns its first timestep. The
// observation carries over from the previous episode so that it still
// predicts the next reward.
func (p *PredictableReward) Reset() timestep.TimeStep {
	return p.reset(fill(p.obsDim, p.reward))
}

// Step takes one environmental step given an action, returning the
// next timestep and whether it is the last in the episode
func (p *PredictableReward) Step(action *mat.VecDense) (timestep.TimeStep,
	bool) {
	reward := p.reward
	p.reward = p.draw()

	t, last := p.advance(fill(p.obsDim, p.reward))
	t.Reward = reward

	return t, last
}

// RewardSpec returns the reward specification of the environment
func (p *PredictableReward) RewardSpec() environment.Spec {
	return p.rewardSpec(-1, 1)
}

func (p *PredictableReward) String() string {
	return fmt.Sprintf("Predictable Reward  |  Next Reward: %v", p.reward)
}
