package comm

import (
	"fmt"
	"sync"
)

// group holds the state shared by the members of an in-process
// communicator group. Reductions run in rounds: a round opens when the
// first member arrives and completes when all members have arrived.
type group struct {
	size int

	mu      sync.Mutex
	sum     []float64
	arrived int
	round   chan struct{} // closed when the current round completes
}

// member is a single rank of an in-process group
type member struct {
	rank  int
	group *group
}

// NewGroup returns the Communicators of an in-process group with size
// members, one per concurrently running goroutine. The Communicator at
// index i is the member with rank i.
//
// A group runs collective reductions without any MPI job, so it can
// stand in for one when testing data-parallel training logic.
func NewGroup(size int) ([]Communicator, error) {
	if size < 1 {
		return nil, fmt.Errorf("newgroup: group must have at least one "+
			"member \n\thave(%v)", size)
	}

	g := &group{size: size}
	members := make([]Communicator, size)
	for i := range members {
		members[i] = &member{rank: i, group: g}
	}
	return members, nil
}

// Rank returns the rank of the member within its group
func (m *member) Rank() int {
	return m.rank
}

// Size returns the number of members in the group
func (m *member) Size() int {
	return m.group.size
}

// AllReduce sums buf element-wise across all members of the group,
// storing the result back into buf on every member. If average is
// true, the sums are divided by the group size. Blocks until every
// member of the group has called AllReduce.
func (m *member) AllReduce(buf []float64, average bool) error {
	sum, round, err := m.group.reduce(buf)
	if err != nil {
		return err
	}
	<-round

	scale := 1.0
	if average {
		scale = 1.0 / float64(m.group.size)
	}
	for i := range buf {
		buf[i] = sum[i] * scale
	}
	return nil
}

// reduce adds buf into the current round's running sum, completing the
// round if the caller is the last member to arrive. The returned slice
// and channel belong to the caller's round: the slice must not be read
// until the channel is closed.
func (g *group) reduce(buf []float64) ([]float64, chan struct{}, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.arrived == 0 {
		g.sum = make([]float64, len(buf))
		g.round = make(chan struct{})
	}
	if len(buf) != len(g.sum) {
		return nil, nil, fmt.Errorf("allreduce: reduced buffers must have "+
			"the same length \n\twant(%v) \n\thave(%v)", len(g.sum), len(buf))
	}

	for i, v := range buf {
		g.sum[i] += v
	}
	g.arrived++

	sum, round := g.sum, g.round
	if g.arrived == g.size {
		g.arrived = 0
		close(round)
	}
	return sum, round, nil
}
