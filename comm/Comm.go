// Package comm implements collective communication between the
// processes of a data-parallel training job. Each process owns its own
// copy of the models being trained and combines gradients and
// statistics with the other processes through a Communicator.
package comm

// Communicator combines values across a group of cooperating training
// processes.
//
// AllReduce is a blocking collective operation. Every process in the
// group must call it the same number of times with buffers of the same
// length, otherwise the call never returns.
type Communicator interface {
	// Rank returns the ordinal of the calling process within the
	// group. Rank 0 is the reporting process by convention.
	Rank() int

	// Size returns the number of processes in the group
	Size() int

	// AllReduce combines buf element-wise across all processes in the
	// group and stores the result back into buf on every process. If
	// average is true, the combined values are divided by Size().
	AllReduce(buf []float64, average bool) error
}

// Local is the Communicator of a single-process training job. All
// collective operations are no-ops.
type Local struct{}

// NewLocal returns a new single-process Communicator
func NewLocal() Local {
	return Local{}
}

// Rank returns the rank of the single process, which is always 0
func (l Local) Rank() int {
	return 0
}

// Size returns the size of the group, which is always 1
func (l Local) Size() int {
	return 1
}

// AllReduce leaves buf unchanged. A sum or average over a single
// process is the identity.
func (l Local) AllReduce(buf []float64, average bool) error {
	return nil
}
