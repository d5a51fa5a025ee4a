package experiment

import (
	"fmt"

	"github.com/samuelfneumann/goppo/agent"
	"github.com/samuelfneumann/goppo/environment"
	"github.com/samuelfneumann/goppo/experiment/checkpointer"
	"github.com/samuelfneumann/goppo/experiment/tracker"
	ts "github.com/samuelfneumann/goppo/timestep"
	"github.com/samuelfneumann/goppo/utils/progressbar"
)

// progressBarWidth is the character width of the progress bar that
// Run displays
const progressBarWidth int = 65

// Online satisfies the Experiment interface
var _ Experiment = (*Online)(nil)

// Online is an Experiment that trains an on-policy system online. On
// each timestep the system selects an action with its behaviour
// policy and records the resulting transition in its rollout; once
// the rollout is ready, it is finalized by bootstrapping from the
// next state and the system performs a training step. No offline
// evaluation is performed.
type Online struct {
	environment.Environment
	agent.OnPolicySystem
	maxSteps      uint
	currentSteps  uint
	trackers      []tracker.Tracker
	checkpointers []checkpointer.Checkpointer
	progress      *progressbar.ProgressBar
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given training system. The steps parameter
// determines how many timesteps the experiment is run for, the t
// parameter determines what data generated by the experiment is
// saved, and the c parameter determines when the system's state is
// checkpointed.
func NewOnline(e environment.Environment, system agent.OnPolicySystem,
	steps uint, t []tracker.Tracker,
	c []checkpointer.Checkpointer) *Online {
	return &Online{
		Environment:    e,
		OnPolicySystem: system,
		maxSteps:       steps,
		trackers:       t,
		checkpointers:  c,
		progress: progressbar.NewProgressBar(progressBarWidth,
			int(steps)),
	}
}

// Register registers a tracker.Tracker with the experiment so that
// data generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RunEpisode runs a single episode of the experiment, returning
// whether the experiment's timestep limit was reached
func (o *Online) RunEpisode() (bool, error) {
	step := o.Environment.Reset()
	o.track(step)

	for !step.Last() && o.currentSteps < o.maxSteps {
		o.currentSteps++
		o.progress.Increment()

		// Select action, step in environment
		state := step.Observation
		action := o.OnPolicySystem.PredictExplore(state)
		next, _ := o.Environment.Step(action)

		// Record the transition and cache the timestep in each Tracker
		o.OnPolicySystem.Collect(state, action, next.Reward,
			next.Terminal())
		o.track(next)

		// Once the rollout is full, finalize it by bootstrapping from
		// the next state and train the system
		if o.OnPolicySystem.Ready() {
			bootstrap := o.OnPolicySystem.Evaluate(next.Observation,
				o.OnPolicySystem.Predict(next.Observation))
			if err := o.OnPolicySystem.FinalizeRollout(bootstrap,
				next.Terminal()); err != nil {
				return false, fmt.Errorf("runEpisode: could not finalize "+
					"rollout: %v", err)
			}
			if _, _, err := o.OnPolicySystem.TrainStep(); err != nil {
				return false, fmt.Errorf("runEpisode: could not train: %v",
					err)
			}
		}

		if err := o.checkpoint(next); err != nil {
			return false, fmt.Errorf("runEpisode: %v", err)
		}
		step = next
	}

	// Return whether or not the max timestep limit has been reached
	return o.currentSteps >= o.maxSteps, nil
}

// Run runs the entire experiment for all timesteps
func (o *Online) Run() error {
	ended := false

	for !ended {
		var err error
		if ended, err = o.RunEpisode(); err != nil {
			return fmt.Errorf("run: %v", err)
		}
		o.progress.Display()
	}
	o.progress.Close()
	return nil
}

// Save saves all the data cached by the experiment's trackers to disk
func (o *Online) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	return nil
}

// track tracks the current timestep by caching its data in each
// tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tr := range o.trackers {
		tr.Track(t)
	}
}

// checkpoint saves the current state of the trained system if any
// checkpointer requires a checkpoint on the current timestep
func (o *Online) checkpoint(t ts.TimeStep) error {
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(t); err != nil {
			return err
		}
	}
	return nil
}
