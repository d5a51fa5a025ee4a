package ppo_test

import (
	"math"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/goppo/agent/nonlinear/continuous/ppo"
	"github.com/samuelfneumann/goppo/comm"
	"github.com/samuelfneumann/goppo/environment/synthetic"
	"github.com/samuelfneumann/goppo/initwfn"
	"github.com/samuelfneumann/goppo/network"
	"github.com/samuelfneumann/goppo/report"
	"github.com/samuelfneumann/goppo/solver"
)

const tolerance float64 = 1e-10

// TestPPOTrainStepValues verifies a single training step against
// hand-computed values. With zero-initialized networks the policy
// mean is 0 with standard deviation 1e-3 + e⁰, the critic predicts
// 0, and the probability ratio of the first update is exactly 1, so
// every loss and every weight update has a closed form. Because the
// hidden activations are all 0, a vanilla gradient step changes only
// the output biases of each network.
func TestPPOTrainStepValues(t *testing.T) {
	env, _ := synthetic.NewConstantReward(2, 1, 10, 1.0, 1.0)

	init, err := initwfn.NewZeroes()
	if err != nil {
		t.Fatalf("could not create init function: %v", err)
	}
	policySolver, err := solver.NewVanilla(0.1, 1, -1.0)
	if err != nil {
		t.Fatalf("could not create policy solver: %v", err)
	}
	criticSolver, err := solver.NewVanilla(0.1, 1, -1.0)
	if err != nil {
		t.Fatalf("could not create critic solver: %v", err)
	}

	history := report.NewHistory()
	config := ppo.Config{
		PolicyRootLayers:      []int{1},
		PolicyRootBiases:      []bool{true},
		PolicyRootActivations: []*network.Activation{network.Identity()},
		PolicyLeafLayers:      [][]int{{}, {}},
		PolicyLeafBiases:      [][]bool{{}, {}},
		PolicyLeafActivations: [][]*network.Activation{{}, {}},

		CriticLayers:      []int{1},
		CriticBiases:      []bool{true},
		CriticActivations: []*network.Activation{network.Identity()},

		InitWFn:      init,
		PolicySolver: policySolver,
		CriticSolver: criticSolver,

		BufferCapacity: 1,
		BatchSize:      1,
		Gamma:          0.9,
		GAELambda:      0.95,

		Epsilon:          0.2,
		EntropyLossCoeff: 0.0,
		ValueLossCoeff:   0.5,

		TargetKLDivergence: 0.015,
		ALow:               -1.0,
		AHigh:              1.0,
		ReportFrequency:    1,
	}

	p, err := ppo.New(env, config, nil, history, zerolog.Nop(), 14)
	if err != nil {
		t.Fatalf("could not create ppo system: %v", err)
	}

	state := mat.NewVecDense(2, []float64{0.1, 0.2})
	action := mat.NewVecDense(1, []float64{0.3})

	if value := p.Evaluate(state, action); value != 0.0 {
		t.Fatalf("zero-initialized critic should predict 0 \n\twant(0)"+
			"\n\thave(%v)", value)
	}
	if p.Ready() {
		t.Fatal("empty buffer should not be ready")
	}

	// With a critic predicting 0 everywhere and a 0 bootstrap value,
	// the advantage and λ-return both equal the reward
	p.Collect(state, action, 0.5, false)
	if !p.Ready() {
		t.Fatal("full buffer should be ready")
	}
	if err := p.FinalizeRollout(0.0, false); err != nil {
		t.Fatalf("could not finalize rollout: %v", err)
	}

	policyLoss, valueLoss, err := p.TrainStep()
	if err != nil {
		t.Fatalf("could not train: %v", err)
	}

	// The ratio is 1 on the first update: nothing clips, the KL
	// estimate is 0, the surrogate loss is -A, and the value loss is
	// the squared λ-return
	if math.Abs(policyLoss-(-0.5)) > tolerance {
		t.Errorf("incorrect policy loss \n\twant(%v)\n\thave(%v)", -0.5,
			policyLoss)
	}
	if math.Abs(valueLoss-0.25) > tolerance {
		t.Errorf("incorrect value loss \n\twant(%v)\n\thave(%v)", 0.25,
			valueLoss)
	}
	if kl := p.KLDivergence(); math.Abs(kl) > tolerance {
		t.Errorf("incorrect KL divergence on first update \n\twant(0)"+
			"\n\thave(%v)", kl)
	}
	if clipped := p.ClipFraction(); clipped != 0.0 {
		t.Errorf("incorrect clip fraction on first update \n\twant(0)"+
			"\n\thave(%v)", clipped)
	}

	actorRecords := history.Metric("actor", "train_loss")
	if len(actorRecords) != 1 || actorRecords[0].Step != 1 {
		t.Fatalf("expected a single actor loss record at step 1: %v",
			actorRecords)
	}
	if actorRecords[0].Value != policyLoss {
		t.Errorf("reported policy loss does not match returned loss "+
			"\n\twant(%v)\n\thave(%v)", policyLoss, actorRecords[0].Value)
	}

	criticRecords := history.Metric("critic", "train_loss")
	if len(criticRecords) != 1 || criticRecords[0].Step != 1 {
		t.Fatalf("expected a single critic loss record at step 1: %v",
			criticRecords)
	}
	if criticRecords[0].Value != valueLoss {
		t.Errorf("reported value loss does not match returned loss "+
			"\n\twant(%v)\n\thave(%v)", valueLoss, criticRecords[0].Value)
	}

	clipFraction := history.Metric("actor", "clip_fraction")
	if len(clipFraction) != 1 || clipFraction[0].Value != 0.0 {
		t.Errorf("incorrect clip fraction record: %v", clipFraction)
	}
	for _, model := range []string{"actor", "critic"} {
		lr := history.Metric(model, "lr")
		if len(lr) != 1 || lr[0].Value != 0.1 {
			t.Errorf("incorrect %v learning rate record: %v", model, lr)
		}
	}

	// Only the output biases change: the behaviour policy mean
	// becomes lr·A·a/σ² for every state and the behaviour critic
	// predicts lr·2c·(R-V) everywhere
	sigma := 1e-3 + math.Exp(0.0)
	wantMean := 0.1 * 0.5 * 0.3 / (sigma * sigma)
	if got := p.Predict(state).AtVec(0); math.Abs(got-wantMean) > tolerance {
		t.Errorf("incorrect mean action after update \n\twant(%v)"+
			"\n\thave(%v)", wantMean, got)
	}

	wantValue := 0.1 * 2.0 * 0.5 * 0.5
	if got := p.Evaluate(state, action); math.Abs(got-wantValue) > tolerance {
		t.Errorf("incorrect action value after update \n\twant(%v)"+
			"\n\thave(%v)", wantValue, got)
	}

	// A second step reuses the stale rollout, so the ratio moves away
	// from 1. The estimator (ρ-1)-ln(ρ) is strictly positive for
	// ρ ≠ 1, and an update this small stays inside the clipping range.
	if _, _, err := p.TrainStep(); err != nil {
		t.Fatalf("could not train on stale rollout: %v", err)
	}
	if kl := p.KLDivergence(); kl <= tolerance {
		t.Errorf("stale rollout should have positive KL divergence "+
			"\n\thave(%v)", kl)
	}
	if clipped := p.ClipFraction(); clipped != 0.0 {
		t.Errorf("small update should not clip \n\twant(0)\n\thave(%v)",
			clipped)
	}
	if records := history.Metric("actor", "train_loss"); len(records) != 2 {
		t.Errorf("expected two actor loss records \n\twant(2)\n\thave(%v)",
			len(records))
	}
	if target := p.TargetKLDivergence(); target != 0.015 {
		t.Errorf("incorrect target KL divergence \n\twant(%v)\n\thave(%v)",
			0.015, target)
	}
}

// TestPPOTrainStepCritic verifies the critic's learning dynamics over
// repeated updates. With γ = 0 every λ-return equals the immediate
// reward, and with zero-initialized networks the critic's prediction
// is its output bias, which contracts towards the reward by a factor
// of 1 - 2·lr·c on every step.
func TestPPOTrainStepCritic(t *testing.T) {
	env, first := synthetic.NewConstantReward(2, 1, 10, 2.5, 1.0)

	init, err := initwfn.NewZeroes()
	if err != nil {
		t.Fatalf("could not create init function: %v", err)
	}
	policySolver, err := solver.NewVanilla(0.1, 1, -1.0)
	if err != nil {
		t.Fatalf("could not create policy solver: %v", err)
	}
	criticSolver, err := solver.NewVanilla(0.1, 1, -1.0)
	if err != nil {
		t.Fatalf("could not create critic solver: %v", err)
	}

	config := ppo.Config{
		PolicyRootLayers:      []int{2},
		PolicyRootBiases:      []bool{true},
		PolicyRootActivations: []*network.Activation{network.TanH()},
		PolicyLeafLayers:      [][]int{{}, {}},
		PolicyLeafBiases:      [][]bool{{}, {}},
		PolicyLeafActivations: [][]*network.Activation{{}, {}},

		CriticLayers:      []int{2},
		CriticBiases:      []bool{true},
		CriticActivations: []*network.Activation{network.TanH()},

		InitWFn:      init,
		PolicySolver: policySolver,
		CriticSolver: criticSolver,

		BufferCapacity: 3,
		BatchSize:      2,
		Gamma:          0.0,
		GAELambda:      0.95,

		Epsilon:          0.2,
		EntropyLossCoeff: 0.0,
		ValueLossCoeff:   0.5,

		TargetKLDivergence: 0.015,
		ALow:               -1.0,
		AHigh:              1.0,
		ReportFrequency:    0,
	}

	p, err := ppo.New(env, config, nil, nil, zerolog.Nop(), 14)
	if err != nil {
		t.Fatalf("could not create ppo system: %v", err)
	}

	step := first
	for i := 0; i < 3; i++ {
		if i < 2 && p.Ready() {
			t.Fatal("buffer should not be ready before filling")
		}
		state := step.Observation
		action := p.PredictExplore(state)
		next, _ := env.Step(action)
		p.Collect(state, action, next.Reward, next.Terminal())
		step = next
	}
	if !p.Ready() {
		t.Fatal("full buffer should be ready")
	}

	bootstrapAction := p.PredictExplore(step.Observation)
	bootstrapValue := p.Evaluate(step.Observation, bootstrapAction)
	if err := p.FinalizeRollout(bootstrapValue, step.Terminal()); err != nil {
		t.Fatalf("could not finalize rollout: %v", err)
	}

	steps := 5
	lastValueLoss := math.Inf(1)
	for i := 0; i < steps; i++ {
		_, valueLoss, err := p.TrainStep()
		if err != nil {
			t.Fatalf("could not train: %v", err)
		}
		if valueLoss >= lastValueLoss {
			t.Errorf("value loss should decrease monotonically "+
				"\n\twant(x < %v)\n\thave(%v)", lastValueLoss, valueLoss)
		}
		lastValueLoss = valueLoss
	}

	// b ← b - lr·2c·(b - R) on every step, starting from 0
	want := 0.0
	for i := 0; i < steps; i++ {
		want += 0.1 * (2.5 - want)
	}
	probeAction := mat.NewVecDense(1, []float64{0.1})
	if got := p.Evaluate(first.Observation, probeAction); math.Abs(got-want) >
		tolerance {
		t.Errorf("incorrect action value after training \n\twant(%v)"+
			"\n\thave(%v)", want, got)
	}

	if kl := p.KLDivergence(); math.IsNaN(kl) || kl < 0 {
		t.Errorf("invalid KL divergence estimate \n\thave(%v)", kl)
	}
	if clipped := p.ClipFraction(); clipped < 0 || clipped > 1 {
		t.Errorf("clip fraction outside [0, 1] \n\thave(%v)", clipped)
	}
}

// TestPPOCheckpoint verifies that a checkpoint restores the policy
// and critic to their exact state at save time, including the
// behaviour networks used for action selection.
func TestPPOCheckpoint(t *testing.T) {
	env, _ := synthetic.NewConstantReward(2, 1, 10, 1.0, 1.0)

	init, err := initwfn.NewGlorotU(1.0)
	if err != nil {
		t.Fatalf("could not create init function: %v", err)
	}
	policySolver, err := solver.NewVanilla(0.05, 1, -1.0)
	if err != nil {
		t.Fatalf("could not create policy solver: %v", err)
	}
	criticSolver, err := solver.NewVanilla(0.05, 1, -1.0)
	if err != nil {
		t.Fatalf("could not create critic solver: %v", err)
	}

	config := ppo.Config{
		PolicyRootLayers:      []int{4},
		PolicyRootBiases:      []bool{true},
		PolicyRootActivations: []*network.Activation{network.TanH()},
		PolicyLeafLayers:      [][]int{{2}, {2}},
		PolicyLeafBiases:      [][]bool{{true}, {true}},
		PolicyLeafActivations: [][]*network.Activation{
			{network.TanH()}, {network.TanH()},
		},

		CriticLayers:      []int{4},
		CriticBiases:      []bool{true},
		CriticActivations: []*network.Activation{network.TanH()},

		InitWFn:      init,
		PolicySolver: policySolver,
		CriticSolver: criticSolver,

		BufferCapacity: 4,
		BatchSize:      2,
		Gamma:          0.9,
		GAELambda:      0.95,

		Epsilon:          0.2,
		EntropyLossCoeff: 0.01,
		ValueLossCoeff:   0.5,

		TargetKLDivergence: 0.015,
		ALow:               -1.0,
		AHigh:              1.0,
		ReportFrequency:    0,
	}

	p, err := ppo.New(env, config, nil, nil, zerolog.Nop(), 14)
	if err != nil {
		t.Fatalf("could not create ppo system: %v", err)
	}

	stateData := [][]float64{
		{0.1, 0.2},
		{-0.3, 0.4},
		{0.5, -0.2},
		{0.0, 0.3},
	}
	for i, data := range stateData {
		state := mat.NewVecDense(2, data)
		action := p.PredictExplore(state)
		p.Collect(state, action, 0.5*float64(i+1), false)
	}
	last := mat.NewVecDense(2, []float64{0.2, 0.2})
	if err := p.FinalizeRollout(p.Evaluate(last, p.Predict(last)),
		false); err != nil {
		t.Fatalf("could not finalize rollout: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, _, err := p.TrainStep(); err != nil {
			t.Fatalf("could not train: %v", err)
		}
	}

	probe := mat.NewVecDense(2, []float64{0.3, -0.1})
	probeAction := mat.NewVecDense(1, []float64{0.2})
	wantPredict := p.Predict(probe).AtVec(0)
	wantValue := p.Evaluate(probe, probeAction)

	dir := t.TempDir()
	if err := p.SaveCheckpoint(dir); err != nil {
		t.Fatalf("could not save checkpoint: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, _, err := p.TrainStep(); err != nil {
			t.Fatalf("could not train after checkpoint: %v", err)
		}
	}
	predictDrift := math.Abs(p.Predict(probe).AtVec(0) - wantPredict)
	valueDrift := math.Abs(p.Evaluate(probe, probeAction) - wantValue)
	if predictDrift <= tolerance && valueDrift <= tolerance {
		t.Fatal("training after the checkpoint should change the networks")
	}

	if err := p.LoadCheckpoint(dir); err != nil {
		t.Fatalf("could not load checkpoint: %v", err)
	}
	if got := p.Predict(probe).AtVec(0); math.Abs(got-wantPredict) >
		tolerance {
		t.Errorf("checkpoint did not restore the policy \n\twant(%v)"+
			"\n\thave(%v)", wantPredict, got)
	}
	if got := p.Evaluate(probe, probeAction); math.Abs(got-wantValue) >
		tolerance {
		t.Errorf("checkpoint did not restore the critic \n\twant(%v)"+
			"\n\thave(%v)", wantValue, got)
	}
}

// TestPPODistributedTrainStep verifies that two communicating ranks
// training on different rollouts take identical gradient steps. Both
// ranks start from identical constant-initialized networks, so after
// averaging gradients their networks must stay equal even though
// their local data differ.
func TestPPODistributedTrainStep(t *testing.T) {
	size := 2
	comms, err := comm.NewGroup(size)
	if err != nil {
		t.Fatalf("could not create communicator group: %v", err)
	}

	systems := make([]*ppo.PPO, size)
	for rank := 0; rank < size; rank++ {
		env, _ := synthetic.NewConstantReward(2, 1, 10, 1.0, 1.0)

		init, err := initwfn.NewConstant(0.05)
		if err != nil {
			t.Fatalf("could not create init function: %v", err)
		}
		policySolver, err := solver.NewVanilla(0.1, 1, -1.0)
		if err != nil {
			t.Fatalf("could not create policy solver: %v", err)
		}
		criticSolver, err := solver.NewVanilla(0.1, 1, -1.0)
		if err != nil {
			t.Fatalf("could not create critic solver: %v", err)
		}

		config := ppo.Config{
			PolicyRootLayers:      []int{2},
			PolicyRootBiases:      []bool{true},
			PolicyRootActivations: []*network.Activation{network.TanH()},
			PolicyLeafLayers:      [][]int{{}, {}},
			PolicyLeafBiases:      [][]bool{{}, {}},
			PolicyLeafActivations: [][]*network.Activation{{}, {}},

			CriticLayers:      []int{2},
			CriticBiases:      []bool{true},
			CriticActivations: []*network.Activation{network.TanH()},

			InitWFn:      init,
			PolicySolver: policySolver,
			CriticSolver: criticSolver,

			BufferCapacity: 2,
			BatchSize:      2,
			Gamma:          0.9,
			GAELambda:      0.95,

			Epsilon:            0.2,
			EntropyLossCoeff:   0.01,
			ValueLossCoeff:     0.5,
			NormalizeAdvantage: true,

			TargetKLDivergence: 0.015,
			ALow:               -1.0,
			AHigh:              1.0,
			ReportFrequency:    0,
		}

		p, err := ppo.New(env, config, comms[rank], nil, zerolog.Nop(),
			int64(37*(rank+1)))
		if err != nil {
			t.Fatalf("could not create rank %v ppo system: %v", rank, err)
		}
		systems[rank] = p

		// Each rank collects its own rollout
		stateData := [][]float64{
			{0.1 + 0.3*float64(rank), 0.2},
			{-0.2, 0.4 - 0.1*float64(rank)},
		}
		for i, data := range stateData {
			state := mat.NewVecDense(2, data)
			action := p.PredictExplore(state)
			p.Collect(state, action, 1.0+float64(rank)*float64(i+1), false)
		}
		last := mat.NewVecDense(2, []float64{0.5, 0.5})
		if err := p.FinalizeRollout(p.Evaluate(last, p.PredictExplore(last)),
			false); err != nil {
			t.Fatalf("could not finalize rank %v rollout: %v", rank, err)
		}
	}

	// Gradient averaging blocks until all ranks contribute
	var wg sync.WaitGroup
	trainErrs := make([]error, size)
	for rank := 0; rank < size; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			_, _, trainErrs[rank] = systems[rank].TrainStep()
		}(rank)
	}
	wg.Wait()
	for rank, err := range trainErrs {
		if err != nil {
			t.Fatalf("rank %v could not train: %v", rank, err)
		}
	}

	probe := mat.NewVecDense(2, []float64{0.3, -0.1})
	probeAction := mat.NewVecDense(1, []float64{0.2})

	mean0 := systems[0].Predict(probe).AtVec(0)
	mean1 := systems[1].Predict(probe).AtVec(0)
	if math.Abs(mean0-mean1) > tolerance {
		t.Errorf("ranks diverged after averaging policy gradients "+
			"\n\twant(%v)\n\thave(%v)", mean0, mean1)
	}

	value0 := systems[0].Evaluate(probe, probeAction)
	value1 := systems[1].Evaluate(probe, probeAction)
	if math.Abs(value0-value1) > tolerance {
		t.Errorf("ranks diverged after averaging critic gradients "+
			"\n\twant(%v)\n\thave(%v)", value0, value1)
	}
}
