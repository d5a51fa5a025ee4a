package checkpointer

import (
	"fmt"

	ts "github.com/samuelfneumann/goppo/timestep"
)

// nStep implements checkpointing every N tracked timesteps
type nStep struct {
	interval int
	steps    int
	object   Saver

	// dir returns the name of the directory to save the next
	// checkpoint in.
	//
	// If each checkpoint should be kept in a separate directory with
	// each directory having an incremented number as a suffix (e.g.
	// check1, check2, ..., checkK), simply use the static function
	// DirEnumerator, which will return a function that enumerates
	// directory names. To name checkpoint directories by wall-clock
	// time instead, use the static function DirTimer. For example:
	//
	// n, err := NewNStep(10, system, DirEnumerator(0, "checkpoint"))
	dir func() string
}

// NewNStep returns a checkpointer that saves a checkpoint of object
// every n timesteps
func NewNStep(n int, object Saver, dir func() string) (Checkpointer,
	error) {
	if n < 1 {
		return nil, fmt.Errorf("newNStep: checkpoint interval must be "+
			"positive \n\twant(x > 0)\n\thave(%v)", n)
	}
	return &nStep{interval: n, object: object, dir: dir}, nil
}

// Checkpoint saves the checkpointer's tracked object if another
// interval of timesteps has elapsed
func (n *nStep) Checkpoint(ts.TimeStep) error {
	n.steps++
	if n.steps%n.interval != 0 {
		return nil
	}

	if err := n.object.SaveCheckpoint(n.dir()); err != nil {
		return fmt.Errorf("checkpoint: %v", err)
	}
	return nil
}
