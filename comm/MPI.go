package comm

import (
	"fmt"

	"github.com/emer/empi/mpi"
)

// MPI implements a Communicator over the ranks of an MPI job, one
// training process per rank. Init must be called once before creating
// an MPI Communicator, and Finalize once training is done. Without the
// mpi build tag the underlying library falls back to a single-process
// implementation, so code using an MPI Communicator also runs in
// ordinary single-process jobs.
type MPI struct {
	comm *mpi.Comm
	dest []float64 // scratch space for collectives
}

// Init initializes the MPI layer
func Init() {
	mpi.Init()
}

// Finalize shuts the MPI layer down
func Finalize() {
	mpi.Finalize()
}

// NewMPI returns a Communicator over all ranks of the MPI world
func NewMPI() (*MPI, error) {
	c, err := mpi.NewComm(nil) // use all procs
	if err != nil {
		return nil, fmt.Errorf("newmpi: could not create communicator: %v",
			err)
	}
	return &MPI{comm: c}, nil
}

// Rank returns the MPI world rank of the calling process
func (m *MPI) Rank() int {
	return mpi.WorldRank()
}

// Size returns the number of ranks in the MPI world
func (m *MPI) Size() int {
	return mpi.WorldSize()
}

// AllReduce sums buf element-wise across all ranks, storing the result
// back into buf on every rank. If average is true, the sums are
// divided by the number of ranks.
func (m *MPI) AllReduce(buf []float64, average bool) error {
	if len(m.dest) != len(buf) {
		m.dest = make([]float64, len(buf))
	}

	err := m.comm.AllReduceF64(mpi.OpSum, m.dest, buf)
	if err != nil {
		return fmt.Errorf("allreduce: %v", err)
	}

	scale := 1.0
	if average {
		scale = 1.0 / float64(m.Size())
	}
	for i := range buf {
		buf[i] = m.dest[i] * scale
	}
	return nil
}
