package ppo

import (
	"fmt"

	"github.com/samuelfneumann/goppo/initwfn"
	"github.com/samuelfneumann/goppo/network"
	"github.com/samuelfneumann/goppo/schedule"
	"github.com/samuelfneumann/goppo/solver"
)

// Config implements a configuration for a PPO system. The policy is
// always a Gaussian policy parameterized by a tree MLP, with one leaf
// network predicting the mean and the other predicting the log
// standard deviation. The critic is an action value function
// parameterized by a feedforward MLP.
type Config struct {
	// Policy neural network architecture
	PolicyRootLayers      []int
	PolicyRootBiases      []bool
	PolicyRootActivations []*network.Activation
	PolicyLeafLayers      [][]int
	PolicyLeafBiases      [][]bool
	PolicyLeafActivations [][]*network.Activation

	// Critic neural network architecture
	CriticLayers      []int
	CriticBiases      []bool
	CriticActivations []*network.Activation

	// Weight initialization scheme for all networks
	InitWFn *initwfn.InitWFn

	PolicySolver *solver.Solver
	CriticSolver *solver.Solver

	// Learning rate schedules. If nil, learning rates are left at the
	// values the solvers were constructed with.
	PolicySchedule *schedule.Schedule
	CriticSchedule *schedule.Schedule

	// Rollout storage and sampling
	BufferCapacity int
	BatchSize      int

	// Return and advantage estimation
	Gamma     float64
	GAELambda float64

	// Surrogate objective hyperparameters
	Epsilon            float64 // Policy ratio clipping radius
	EntropyLossCoeff   float64
	ValueLossCoeff     float64
	NormalizeAdvantage bool

	// TargetKLDivergence is an advisory threshold on the approximate
	// KL divergence between the behaviour and updated policies. The
	// system never stops updating based on this value, it only records
	// it so that callers can implement early stopping.
	TargetKLDivergence float64

	// Action bounds for action clipping
	ALow  float64
	AHigh float64

	// ReportFrequency determines how often training metrics are
	// reported. A value of 0 disables reporting.
	ReportFrequency int
}

// Validate ensures that the Config is valid, returning an error
// describing the first illegal field found.
func (c Config) Validate() error {
	if c.InitWFn == nil {
		return fmt.Errorf("validate: no weight initialization scheme")
	}
	if c.PolicySolver == nil {
		return fmt.Errorf("validate: no policy solver")
	}
	if c.CriticSolver == nil {
		return fmt.Errorf("validate: no critic solver")
	}

	if len(c.PolicyLeafLayers) != 2 || len(c.PolicyLeafBiases) != 2 ||
		len(c.PolicyLeafActivations) != 2 {
		return fmt.Errorf("validate: gaussian policies require two "+
			"leaf networks \n\twant(2)\n\thave(%v)", len(c.PolicyLeafLayers))
	}

	if c.BufferCapacity < 1 {
		return fmt.Errorf("validate: buffer capacity must be positive "+
			"\n\twant(x > 0)\n\thave(%v)", c.BufferCapacity)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("validate: batch size must be positive "+
			"\n\twant(x > 0)\n\thave(%v)", c.BatchSize)
	}

	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1] "+
			"\n\thave(%v)", c.Gamma)
	}
	if c.GAELambda < 0 || c.GAELambda > 1 {
		return fmt.Errorf("validate: gae lambda must be in [0, 1] "+
			"\n\thave(%v)", c.GAELambda)
	}

	if c.Epsilon <= 0 {
		return fmt.Errorf("validate: clipping radius must be positive "+
			"\n\twant(x > 0)\n\thave(%v)", c.Epsilon)
	}
	if c.ValueLossCoeff < 0 {
		return fmt.Errorf("validate: value loss coefficient must be "+
			"nonnegative \n\thave(%v)", c.ValueLossCoeff)
	}

	if c.ALow >= c.AHigh {
		return fmt.Errorf("validate: illegal action bounds "+
			"\n\twant(low < high)\n\thave(low: %v, high: %v)", c.ALow,
			c.AHigh)
	}

	if c.ReportFrequency < 0 {
		return fmt.Errorf("validate: report frequency must be "+
			"nonnegative \n\thave(%v)", c.ReportFrequency)
	}

	return nil
}
