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

// ActionStateReward emits a reward equal to the mean of the action
// vector times the value observed in the preceding state. Observations
// are filled with a random value of -1 or +1. Tests the interconnection
// between value and policy networks: the optimal policy saturates the
// action at the bound whose sign matches the observation.
type ActionStateReward struct {
	base
	rng      distuv.Bernoulli
	stateVal float64
}

// NewActionStateReward returns a new ActionStateReward environment and
// the first timestep of its first episode. Episodes are cut off after
// stepsPerEpisode steps.
func NewActionStateReward(obsDim, actionDim, stepsPerEpisode int,
	discount float64, seed uint64) (environment.Environment,
	timestep.TimeStep) {
	env := &ActionStateReward{
		base: newBase(obsDim, actionDim, stepsPerEpisode, discount,
			r1.Interval{Min: -1, Max: 1}, r1.Interval{Min: -1, Max: 1}),
		rng: distuv.Bernoulli{P: 0.5, Src: rand.NewSource(seed)},
	}
	env.stateVal = env.draw()

	return env, env.Reset()
}

// draw samples -1 or +1 with equal probability
func (a *ActionStateReward) draw() float64 {
	return 2*a.rng.Rand() - 1
}

// Reset starts a new episode and returns its first timestep. The
// observation carries over from the previous episode.
func (a *ActionStateReward) Reset() timestep.TimeStep {
	return a.reset(fill(a.obsDim, a.stateVal))
}

// Step takes one environmental step given an action, returning the
// next timestep and whether it is the last in the episode. The reward
// is computed against the state value observed when the action was
// chosen, before the next observation is drawn. Actions outside the
// action bounds are clipped before computing the reward.
func (a *ActionStateReward) Step(action *mat.VecDense) (timestep.TimeStep,
	bool) {
	a.checkAction(action)

	reward := actionMean(a.clipAction(action)) * a.stateVal
	a.stateVal = a.draw()

	t, last := a.advance(fill(a.obsDim, a.stateVal))
	t.Reward = reward

	return t, last
}

// RewardSpec returns the reward specification of the environment
func (a *ActionStateReward) RewardSpec() environment.Spec {
	return a.rewardSpec(-1, 1)
}

func (a *ActionStateReward) String() string {
	return fmt.Sprintf("Action State Reward  |  State Value: %v", a.stateVal)
}
