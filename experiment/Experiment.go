// Package experiment implements functionality for running an
// experiment. An experiment repeatedly steps a training system through
// an environment until a timestep limit is reached, sending each
// timestep to its trackers, which cache and later save experiment
// data, and to its checkpointers, which periodically save the state of
// the system.
package experiment

import (
	"github.com/samuelfneumann/goppo/experiment/tracker"
	ts "github.com/samuelfneumann/goppo/timestep"
)

// Experiment outlines structs that can run experiments. The Run()
// method runs episodes until the maximum timestep limit is reached.
// The RunEpisode() method runs a single episode.
//
// In order to save data, Experiments use Trackers. Trackers determine
// which data generated during the experiment is saved. Experiments
// send each TimeStep to their Trackers using the Tracker's Track()
// method; the Tracker then caches whatever data from the TimeStep it
// is interested in. The Save() method takes all cached data and saves
// it to disk, and is usually called after an experiment has been run.
// New Trackers can be registered with an Experiment through the
// constructor or through an Experiment's Register() function.
type Experiment interface {
	Run() error
	RunEpisode() (bool, error) // Returns whether the step limit was reached

	// Saves all data cached by the experiment's trackers to disk
	Save() error

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment. Useful if data should only be tracked after a
	// specified event.
	Register(t tracker.Tracker)

	// Tracks the current timestep by sending it to Trackers
	track(ts.TimeStep)

	// Saves the current state of the trained system
	checkpoint(ts.TimeStep) error
}
