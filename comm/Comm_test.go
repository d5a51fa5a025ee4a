package comm_test

import (
	"math"
	"sync"
	"testing"

	"github.com/samuelfneumann/goppo/comm"
)

func TestLocalAllReduce(t *testing.T) {
	local := comm.NewLocal()
	if local.Rank() != 0 || local.Size() != 1 {
		t.Errorf("local: expected rank 0 of 1, got rank %v of %v",
			local.Rank(), local.Size())
	}

	buf := []float64{1.0, -2.5, 0.0}
	if err := local.AllReduce(buf, true); err != nil {
		t.Fatal(err)
	}
	want := []float64{1.0, -2.5, 0.0}
	for i := range want {
		if buf[i] != want[i] {
			t.Errorf("allreduce: value %v should be %v, got %v", i, want[i],
				buf[i])
		}
	}
}

// runAllReduce runs one AllReduce round concurrently on every member
// of the group, where member i contributes bufs[i], and returns the
// reduced buffer of each member.
func runAllReduce(t *testing.T, group []comm.Communicator, bufs [][]float64,
	average bool) [][]float64 {
	results := make([][]float64, len(group))
	var wg sync.WaitGroup
	for i, c := range group {
		wg.Add(1)
		go func(rank int, c comm.Communicator) {
			defer wg.Done()
			buf := append([]float64{}, bufs[rank]...)
			if err := c.AllReduce(buf, average); err != nil {
				t.Error(err)
				return
			}
			results[rank] = buf
		}(i, c)
	}
	wg.Wait()
	return results
}

func TestGroupAllReduce(t *testing.T) {
	for _, size := range []int{1, 2, 5} {
		group, err := comm.NewGroup(size)
		if err != nil {
			t.Fatal(err)
		}
		if len(group) != size {
			t.Fatalf("newgroup: expected %v members, got %v", size,
				len(group))
		}
		for rank, c := range group {
			if c.Rank() != rank || c.Size() != size {
				t.Errorf("newgroup: expected rank %v of %v, got rank %v "+
					"of %v", rank, size, c.Rank(), c.Size())
			}
		}

		// Member i contributes [i, 1, -2i]
		bufs := make([][]float64, size)
		for i := range bufs {
			bufs[i] = []float64{float64(i), 1.0, -2.0 * float64(i)}
		}

		meanRank := float64(size-1) / 2.0
		want := []float64{meanRank, 1.0, -2.0 * meanRank}
		for _, got := range runAllReduce(t, group, bufs, true) {
			for i := range want {
				if math.Abs(got[i]-want[i]) > 1e-14 {
					t.Errorf("size %v: average %v should be %v, got %v",
						size, i, want[i], got[i])
				}
			}
		}

		sumRank := meanRank * float64(size)
		want = []float64{sumRank, float64(size), -2.0 * sumRank}
		for _, got := range runAllReduce(t, group, bufs, false) {
			for i := range want {
				if math.Abs(got[i]-want[i]) > 1e-14 {
					t.Errorf("size %v: sum %v should be %v, got %v", size,
						i, want[i], got[i])
				}
			}
		}
	}
}

func TestGroupAllReduceIdenticalBuffers(t *testing.T) {
	// Averaging identical per-process values must return those values
	// unchanged regardless of the group size
	for _, size := range []int{1, 3, 8} {
		group, err := comm.NewGroup(size)
		if err != nil {
			t.Fatal(err)
		}

		grad := []float64{0.25, -1.5, 3.0, 0.0}
		bufs := make([][]float64, size)
		for i := range bufs {
			bufs[i] = grad
		}

		for _, got := range runAllReduce(t, group, bufs, true) {
			for i := range grad {
				if math.Abs(got[i]-grad[i]) > 1e-14 {
					t.Errorf("size %v: value %v should be %v, got %v", size,
						i, grad[i], got[i])
				}
			}
		}
	}
}

func TestGroupAllReduceRounds(t *testing.T) {
	// Successive reductions on the same group are independent rounds
	group, err := comm.NewGroup(3)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for _, c := range group {
		wg.Add(1)
		go func(c comm.Communicator) {
			defer wg.Done()
			for round := 0; round < 4; round++ {
				buf := []float64{float64(round)}
				if err := c.AllReduce(buf, true); err != nil {
					t.Error(err)
					return
				}
				if buf[0] != float64(round) {
					t.Errorf("round %v: expected %v, got %v", round,
						float64(round), buf[0])
				}
			}
		}(c)
	}
	wg.Wait()
}

func TestNewGroupInvalidSize(t *testing.T) {
	if _, err := comm.NewGroup(0); err == nil {
		t.Error("newgroup: expected error for empty group")
	}
}
