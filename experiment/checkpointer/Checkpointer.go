// Package checkpointer implements the periodic saving of a training
// system's state during an experiment
package checkpointer

import ts "github.com/samuelfneumann/goppo/timestep"

// Saver is an object that can save a checkpoint of itself to a
// directory
type Saver interface {
	SaveCheckpoint(dir string) error
}

// Checkpointer checkpoints/saves Savers based on timestep.TimeSteps
type Checkpointer interface {
	Checkpoint(ts.TimeStep) error
}
