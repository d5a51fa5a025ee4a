package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/samuelfneumann/goppo/agent"
	"github.com/samuelfneumann/goppo/agent/nonlinear/continuous/ppo"
	"github.com/samuelfneumann/goppo/environment/envconfig"
	"github.com/samuelfneumann/goppo/experiment"
	"github.com/samuelfneumann/goppo/experiment/checkpointer"
	"github.com/samuelfneumann/goppo/experiment/tracker"
	"github.com/samuelfneumann/goppo/initwfn"
	"github.com/samuelfneumann/goppo/network"
	"github.com/samuelfneumann/goppo/report"
	"github.com/samuelfneumann/goppo/schedule"
	"github.com/samuelfneumann/goppo/solver"
	"github.com/samuelfneumann/goppo/utils/matutils"
)

func main() {
	var seed int64 = 192382
	const maxSteps uint = 10_000

	// Create the environment. The reward is the mean of the action
	// vector, so an optimal policy saturates every action dimension at
	// its upper bound.
	envConf := envconfig.NewConfig(envconfig.ActionReward, 4, 1, 200, 0.0,
		0.99)
	env, _ := envConf.Create(uint64(seed))

	// Create the weight initializer, solvers, and policy learning rate
	// schedule
	initWFn, err := initwfn.NewGlorotU(1.0)
	if err != nil {
		panic(err)
	}
	policySolver, err := solver.NewDefaultAdam(3e-4, 1)
	if err != nil {
		panic(err)
	}
	criticSolver, err := solver.NewDefaultAdam(1e-3, 1)
	if err != nil {
		panic(err)
	}
	policySchedule, err := schedule.NewLinear(3e-4, 1e-4, int(maxSteps))
	if err != nil {
		panic(err)
	}

	config := ppo.Config{
		PolicyRootLayers:      []int{32},
		PolicyRootBiases:      []bool{true},
		PolicyRootActivations: []*network.Activation{network.ReLU()},
		PolicyLeafLayers:      [][]int{{16}, {16}},
		PolicyLeafBiases:      [][]bool{{true}, {true}},
		PolicyLeafActivations: [][]*network.Activation{
			{network.ReLU()},
			{network.ReLU()},
		},

		CriticLayers:      []int{32},
		CriticBiases:      []bool{true},
		CriticActivations: []*network.Activation{network.ReLU()},

		InitWFn:        initWFn,
		PolicySolver:   policySolver,
		CriticSolver:   criticSolver,
		PolicySchedule: policySchedule,

		BufferCapacity: 128,
		BatchSize:      32,

		Gamma:     0.99,
		GAELambda: 0.95,

		Epsilon:            0.2,
		EntropyLossCoeff:   0.01,
		ValueLossCoeff:     0.5,
		NormalizeAdvantage: true,
		TargetKLDivergence: 0.015,

		ALow:  -1.0,
		AHigh: 1.0,

		ReportFrequency: 100,
	}

	// Create the learning algorithm
	history := report.NewHistory()
	logger := zerolog.New(os.Stderr).Level(zerolog.InfoLevel).
		With().Timestamp().Logger()

	p, err := ppo.New(env, config, nil, history, logger, seed)
	if err != nil {
		panic(err)
	}

	// Register the system so that every system owned by this process is
	// torn down on exit
	registry := agent.NewRegistry()
	if err := registry.Register("ppo", p); err != nil {
		panic(err)
	}
	defer registry.Close()

	// Experiment
	check, err := checkpointer.NewNStep(2_500, p,
		checkpointer.DirEnumerator(0, "./checkpoint"))
	if err != nil {
		panic(err)
	}
	var returns tracker.Tracker = tracker.NewReturn("./data.bin")

	e := experiment.NewOnline(env, p, maxSteps,
		[]tracker.Tracker{returns},
		[]checkpointer.Checkpointer{check})
	if err := e.Run(); err != nil {
		panic(err)
	}
	if err := e.Save(); err != nil {
		panic(err)
	}

	// The learned mean action should approach the upper action bound
	system, ok := registry.Lookup("ppo")
	if !ok {
		panic("main: no registered system named ppo")
	}
	mean := system.Predict(env.Reset().Observation)
	fmt.Println("\nLearned mean action:", matutils.Format(mean.T()))

	data, err := tracker.LoadData("./data.bin")
	if err != nil {
		panic(err)
	}
	fmt.Println("Final episodic returns:", data[len(data)-5:])

	losses := history.Metric("critic", "train_loss")
	fmt.Println("Final critic training loss:", losses[len(losses)-1].Value)
}
