// Package envconfig provides configuration structs for configuring
// environments by name. Environment configurations in this package are
// JSON serializable so that experiments can construct their
// environments from configuration files.
package envconfig

import (
	"fmt"

	"github.com/samuelfneumann/goppo/environment"
	"github.com/samuelfneumann/goppo/environment/synthetic"
	ts "github.com/samuelfneumann/goppo/timestep"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	ConstantReward    EnvName = "ConstantReward"
	DelayedReward     EnvName = "DelayedReward"
	PredictableReward EnvName = "PredictableReward"
	ActionReward      EnvName = "ActionReward"
	ActionStateReward EnvName = "ActionStateReward"
)

// Config implements a specific configuration of a specific
// environment. The Reward field sets the reward magnitude of the
// ConstantReward and DelayedReward environments; the remaining
// environments compute their rewards from actions and observations
// and ignore it.
type Config struct {
	Environment     EnvName
	ObsDim          int
	ActionDim       int
	StepsPerEpisode int
	Reward          float64
	Discount        float64
}

// NewConfig returns a new environment Config
func NewConfig(envName EnvName, obsDim, actionDim, stepsPerEpisode int,
	reward, discount float64) Config {
	return Config{
		Environment:     envName,
		ObsDim:          obsDim,
		ActionDim:       actionDim,
		StepsPerEpisode: stepsPerEpisode,
		Reward:          reward,
		Discount:        discount,
	}
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment
func (c Config) Create(seed uint64) (environment.Environment,
	ts.TimeStep) {
	switch c.Environment {
	case ConstantReward:
		return synthetic.NewConstantReward(c.ObsDim, c.ActionDim,
			c.StepsPerEpisode, c.Reward, c.Discount)

	case DelayedReward:
		return synthetic.NewDelayedReward(c.ObsDim, c.ActionDim,
			c.StepsPerEpisode, c.Reward, c.Discount)

	case PredictableReward:
		return synthetic.NewPredictableReward(c.ObsDim, c.ActionDim,
			c.StepsPerEpisode, c.Discount, seed)

	case ActionReward:
		return synthetic.NewActionReward(c.ObsDim, c.ActionDim,
			c.StepsPerEpisode, c.Discount)

	case ActionStateReward:
		return synthetic.NewActionStateReward(c.ObsDim, c.ActionDim,
			c.StepsPerEpisode, c.Discount, seed)
	}

	panic(fmt.Sprintf("create: cannot create environment %v, no such "+
		"environment", c.Environment))
}
