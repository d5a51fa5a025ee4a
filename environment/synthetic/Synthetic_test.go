package synthetic_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/goppo/environment/synthetic"
	ts "github.com/samuelfneumann/goppo/timestep"
)

func TestConstantReward(t *testing.T) {
	const stepsPerEpisode = 5
	const reward = 0.75

	env, first := synthetic.NewConstantReward(3, 2, stepsPerEpisode, reward,
		0.99)
	if !first.First() {
		t.Error("new: environment should start at the first timestep")
	}

	action := mat.NewVecDense(2, []float64{0.1, -0.3})
	for episode := 0; episode < 2; episode++ {
		for i := 1; i <= stepsPerEpisode; i++ {
			step, last := env.Step(action)

			if step.Reward != reward {
				t.Errorf("step %v: got reward %v, want %v", i, step.Reward,
					reward)
			}
			if step.Number != i {
				t.Errorf("step: got step number %v, want %v", step.Number, i)
			}
			if got := mat.Norm(step.Observation, 2); got != 0 {
				t.Errorf("step: observation should be the zero vector, "+
					"got norm %v", got)
			}

			if i < stepsPerEpisode && last {
				t.Errorf("step %v: episode ended before the step limit", i)
			}
			if i == stepsPerEpisode {
				if !last || !step.Last() {
					t.Error("step: episode should end at the step limit")
				}
				if step.EndType() != ts.Timeout {
					t.Errorf("step: got end type %v, want %v", step.EndType(),
						ts.Timeout)
				}
			}
		}
		start := env.Reset()
		if !start.First() || start.Number != 0 {
			t.Error("reset: environment should restart at a first timestep")
		}
	}
}

func TestDelayedReward(t *testing.T) {
	const stepsPerEpisode = 4
	const finalReward = -2.5

	env, _ := synthetic.NewDelayedReward(2, 1, stepsPerEpisode, finalReward,
		1.0)

	action := mat.NewVecDense(1, []float64{0.5})
	for i := 1; i <= stepsPerEpisode; i++ {
		step, last := env.Step(action)

		want := 0.0
		if i == stepsPerEpisode {
			want = finalReward
		}
		if step.Reward != want {
			t.Errorf("step %v: got reward %v, want %v", i, step.Reward, want)
		}
		if last != (i == stepsPerEpisode) {
			t.Errorf("step %v: got last = %v", i, last)
		}
	}
}

func TestPredictableReward(t *testing.T) {
	const stepsPerEpisode = 10

	env, first := synthetic.NewPredictableReward(3, 1, stepsPerEpisode, 0.9,
		14)

	// The observation always predicts the next reward exactly
	predicted := first.Observation.AtVec(0)
	action := mat.NewVecDense(1, nil)

	for episode := 0; episode < 3; episode++ {
		for i := 1; i <= stepsPerEpisode; i++ {
			step, _ := env.Step(action)

			if step.Reward != predicted {
				t.Errorf("step: got reward %v, want predicted %v",
					step.Reward, predicted)
			}
			if math.Abs(step.Reward) != 1 {
				t.Errorf("step: got reward %v, want -1 or +1", step.Reward)
			}
			for j := 0; j < step.Observation.Len(); j++ {
				if step.Observation.AtVec(j) != step.Observation.AtVec(0) {
					t.Error("step: all observation dimensions should hold " +
						"the same value")
				}
			}
			predicted = step.Observation.AtVec(0)
		}

		// Observations persist through resets so they still predict
		// the next reward
		start := env.Reset()
		if start.Observation.AtVec(0) != predicted {
			t.Error("reset: observation should carry over between episodes")
		}
	}
}

func TestActionReward(t *testing.T) {
	env, _ := synthetic.NewActionReward(2, 3, 6, 0.99)

	actions := []*mat.VecDense{
		mat.NewVecDense(3, []float64{1, 1, 1}),
		mat.NewVecDense(3, []float64{-1, 0, 1}),
		mat.NewVecDense(3, []float64{0.3, -0.6, 0.9}),
	}
	want := []float64{1, 0, 0.2}

	for i, action := range actions {
		step, _ := env.Step(action)
		if math.Abs(step.Reward-want[i]) > 1e-15 {
			t.Errorf("step: got reward %v, want %v", step.Reward, want[i])
		}
	}
}

func TestActionRewardClipsActions(t *testing.T) {
	env, _ := synthetic.NewActionReward(2, 3, 6, 0.99)

	// Actions are clipped to [-1, 1] before the reward is computed
	action := mat.NewVecDense(3, []float64{2, -3, 0.5})
	step, _ := env.Step(action)

	want := (1.0 - 1.0 + 0.5) / 3
	if math.Abs(step.Reward-want) > 1e-15 {
		t.Errorf("step: got reward %v, want %v", step.Reward, want)
	}

	// Clipping must leave the caller's action unmodified
	if action.AtVec(0) != 2 || action.AtVec(1) != -3 {
		t.Error("step: clipping should not modify the given action")
	}
}

func TestActionRewardInvalidAction(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("step should panic when given an action of the " +
				"wrong dimensions")
		}
	}()

	env, _ := synthetic.NewActionReward(2, 3, 6, 0.99)
	env.Step(mat.NewVecDense(2, nil))
}

func TestActionStateReward(t *testing.T) {
	const stepsPerEpisode = 8

	env, first := synthetic.NewActionStateReward(2, 2, stepsPerEpisode, 0.95,
		21)

	stateVal := first.Observation.AtVec(0)
	action := mat.NewVecDense(2, []float64{0.5, 1})

	for i := 1; i <= 2*stepsPerEpisode; i++ {
		step, last := env.Step(action)

		// Reward is computed against the observation seen when the
		// action was chosen
		want := 0.75 * stateVal
		if math.Abs(step.Reward-want) > 1e-15 {
			t.Errorf("step: got reward %v, want %v", step.Reward, want)
		}
		if math.Abs(step.Observation.AtVec(0)) != 1 {
			t.Errorf("step: got observation %v, want -1 or +1",
				step.Observation.AtVec(0))
		}

		stateVal = step.Observation.AtVec(0)
		if last {
			start := env.Reset()
			stateVal = start.Observation.AtVec(0)
		}
	}
}

func TestSpecs(t *testing.T) {
	env, _ := synthetic.NewActionStateReward(4, 3, 10, 0.9, 5)

	obsSpec := env.ObservationSpec()
	if obsSpec.Shape.Len() != 4 {
		t.Errorf("observation spec: got shape %v, want %v",
			obsSpec.Shape.Len(), 4)
	}
	if obsSpec.LowerBound.AtVec(0) != -1 || obsSpec.UpperBound.AtVec(0) != 1 {
		t.Error("observation spec: bounds should be [-1, 1]")
	}

	actionSpec := env.ActionSpec()
	if actionSpec.Shape.Len() != 3 {
		t.Errorf("action spec: got shape %v, want %v",
			actionSpec.Shape.Len(), 3)
	}

	rewardSpec := env.RewardSpec()
	if rewardSpec.LowerBound.AtVec(0) != -1 ||
		rewardSpec.UpperBound.AtVec(0) != 1 {
		t.Error("reward spec: bounds should be [-1, 1]")
	}

	discountSpec := env.DiscountSpec()
	if discountSpec.LowerBound.AtVec(0) != 0.9 {
		t.Errorf("discount spec: got %v, want %v",
			discountSpec.LowerBound.AtVec(0), 0.9)
	}
}
