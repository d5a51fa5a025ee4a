// Package rollout implements a fixed-capacity trajectory store for
// on-policy learning. Entries are collected one timestep at a time
// and, once a full window has been gathered, annotated with advantage
// and return-to-go estimates computed by Generalized Advantage
// Estimation.
package rollout

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Entry is a single finalized timestep of a trajectory. The Advantage
// and Return fields are computed by the buffer at finalization and
// satisfy Return == Advantage + Value for every entry.
type Entry struct {
	State     *mat.VecDense
	Action    *mat.VecDense
	Reward    float64
	Value     float64
	LogProb   float64
	Done      bool
	Advantage float64
	Return    float64
}

// Buffer implements a circular fixed-capacity trajectory store with
// GAE-λ advantage estimation.
//
// Entries are appended in time order by Update(). Once MaxCapacity()
// entries have been written the buffer is ready, and further writes
// wrap around and overwrite the oldest entries, so the buffer always
// holds the most recent window of experience. Finalize() must be
// called before the buffer can be read from.
//
// A Buffer is a single-owner object. It does no internal locking, and
// concurrent use must be serialized by the caller.
type Buffer struct {
	stateCache     []float64
	actionCache    []float64
	rewardCache    []float64
	valueCache     []float64
	logProbCache   []float64
	doneCache      []bool
	advantageCache []float64
	returnCache    []float64

	cursor    int // next write position
	inUse     int // number of entries written, at most maxCapacity
	finalized bool

	maxCapacity int
	featureSize int
	actionSize  int
	gamma       float64
	lambda      float64

	rng *rand.Rand
}

// New returns a new rollout Buffer storing at most capacity entries of
// featureSize-dimensional states and actionSize-dimensional actions.
// The gamma parameter is the reward discount and lambda the GAE mixing
// factor trading the bias of one-step TD errors (λ = 0) against the
// variance of Monte-Carlo returns (λ = 1). The seed determines the
// sequence of minibatches drawn by Sample().
func New(capacity, featureSize, actionSize int, gamma, lambda float64,
	seed int64) (*Buffer, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("new: capacity must be >= 1")
	}
	if featureSize < 1 {
		return nil, fmt.Errorf("new: feature size must be >= 1")
	}
	if actionSize < 1 {
		return nil, fmt.Errorf("new: action size must be >= 1")
	}
	if gamma < 0 || gamma > 1 {
		return nil, fmt.Errorf("new: discount must be in [0, 1] "+
			"\n\thave(%v)", gamma)
	}
	if lambda < 0 || lambda > 1 {
		return nil, fmt.Errorf("new: GAE mixing factor must be in [0, 1] "+
			"\n\thave(%v)", lambda)
	}

	source := rand.NewSource(seed)
	rng := rand.New(source)

	return &Buffer{
		stateCache:     make([]float64, capacity*featureSize),
		actionCache:    make([]float64, capacity*actionSize),
		rewardCache:    make([]float64, capacity),
		valueCache:     make([]float64, capacity),
		logProbCache:   make([]float64, capacity),
		doneCache:      make([]bool, capacity),
		advantageCache: make([]float64, capacity),
		returnCache:    make([]float64, capacity),

		maxCapacity: capacity,
		featureSize: featureSize,
		actionSize:  actionSize,
		gamma:       gamma,
		lambda:      lambda,

		rng: rng,
	}, nil
}

// Update appends one timestep to the buffer, overwriting the oldest
// entry once the buffer is full. The value parameter is the critic's
// estimate for the state-action pair at collection time, logProb the
// log-probability of the taken action under the behaviour policy, and
// done whether the transition ended the episode.
//
// Any previously computed advantage estimates are invalidated, and
// Finalize() must be called again before reading from the buffer.
func (b *Buffer) Update(state, action *mat.VecDense, reward, value,
	logProb float64, done bool) {
	if state.Len() != b.featureSize {
		panic(fmt.Sprintf("update: invalid state size \n\twant(%v)"+
			"\n\thave(%v)", b.featureSize, state.Len()))
	}
	if action.Len() != b.actionSize {
		panic(fmt.Sprintf("update: invalid action size \n\twant(%v)"+
			"\n\thave(%v)", b.actionSize, action.Len()))
	}

	stateInd := b.cursor * b.featureSize
	copy(b.stateCache[stateInd:stateInd+b.featureSize],
		state.RawVector().Data)

	actionInd := b.cursor * b.actionSize
	copy(b.actionCache[actionInd:actionInd+b.actionSize],
		action.RawVector().Data)

	b.rewardCache[b.cursor] = reward
	b.valueCache[b.cursor] = value
	b.logProbCache[b.cursor] = logProb
	b.doneCache[b.cursor] = done

	b.cursor = (b.cursor + 1) % b.maxCapacity
	if b.inUse < b.maxCapacity {
		b.inUse++
	}
	b.finalized = false
}

// Finalize computes the advantage and return-to-go of every stored
// entry with the backward GAE-λ recursion:
//
//	δ[t] = r[t] + γ*V[t+1]*(1 - done[t]) - V[t]
//	A[t] = δ[t] + γ*λ*(1 - done[t])*A[t+1]
//	G[t] = A[t] + V[t]
//
// The bootstrapValue parameter is the critic's estimate for the state
// immediately following the newest stored entry and takes the place of
// V[T] in the recursion, so that advantages of trajectories truncated
// by the buffer boundary are still estimated correctly. The
// bootstrapDone parameter indicates whether that state is terminal.
// The recursion chain is cut at every episode boundary, so advantages
// never leak between episodes.
//
// Finalizing an unmodified buffer twice with the same arguments yields
// identical estimates.
func (b *Buffer) Finalize(bootstrapValue float64, bootstrapDone bool) error {
	if b.inUse == 0 {
		return &Error{Op: "finalize", Err: errEmptyBuffer}
	}

	advantage := 0.0
	for t := b.inUse - 1; t >= 0; t-- {
		index := b.physical(t)

		nextValue := bootstrapValue
		nextNonterminal := 1.0
		if b.doneCache[index] {
			nextNonterminal = 0.0
		}
		if t == b.inUse-1 {
			if bootstrapDone {
				nextNonterminal = 0.0
			}
		} else {
			nextValue = b.valueCache[b.physical(t+1)]
		}

		delta := b.rewardCache[index] + b.gamma*nextValue*nextNonterminal -
			b.valueCache[index]
		advantage = delta + b.gamma*b.lambda*nextNonterminal*advantage

		b.advantageCache[index] = advantage
		b.returnCache[index] = advantage + b.valueCache[index]
	}

	b.finalized = true
	return nil
}

// Ready returns whether a full window of entries has been collected.
// The buffer cannot be read from before it is ready.
func (b *Buffer) Ready() bool {
	return b.inUse == b.maxCapacity
}

// Finalized returns whether the buffer's advantage estimates are
// current
func (b *Buffer) Finalized() bool {
	return b.finalized
}

// Get returns the finalized entry at index i, where index 0 denotes
// the oldest stored entry. The returned entry is a copy and shares no
// data with the buffer. An index outside [0, MaxCapacity()) is a
// contract violation and panics.
func (b *Buffer) Get(i int) (Entry, error) {
	if i < 0 || i >= b.maxCapacity {
		panic(fmt.Sprintf("get: index out of range \n\twant(0 <= i < %v)"+
			"\n\thave(%v)", b.maxCapacity, i))
	}
	if !b.Ready() {
		return Entry{}, &Error{Op: "get", Err: errNotReady}
	}
	if !b.finalized {
		return Entry{}, &Error{Op: "get", Err: errNotFinalized}
	}

	index := b.physical(i)

	state := make([]float64, b.featureSize)
	stateInd := index * b.featureSize
	copy(state, b.stateCache[stateInd:stateInd+b.featureSize])

	action := make([]float64, b.actionSize)
	actionInd := index * b.actionSize
	copy(action, b.actionCache[actionInd:actionInd+b.actionSize])

	return Entry{
		State:     mat.NewVecDense(b.featureSize, state),
		Action:    mat.NewVecDense(b.actionSize, action),
		Reward:    b.rewardCache[index],
		Value:     b.valueCache[index],
		LogProb:   b.logProbCache[index],
		Done:      b.doneCache[index],
		Advantage: b.advantageCache[index],
		Return:    b.returnCache[index],
	}, nil
}

// Sample draws batchSize entries uniformly at random with replacement
// and returns the batch as flat (state, action, value, logProb,
// advantage, return) columns, stacked in sampling order. States and
// actions are row-major with one row per sampled entry. Successive
// calls are independent draws; no ordering or exhaustiveness is
// guaranteed. A batchSize larger than the buffer's capacity
// oversamples with replacement.
func (b *Buffer) Sample(batchSize int) ([]float64, []float64, []float64,
	[]float64, []float64, []float64, error) {
	if batchSize < 1 {
		return nil, nil, nil, nil, nil, nil,
			&Error{Op: "sample", Err: errInvalidBatchSize}
	}
	if !b.Ready() {
		return nil, nil, nil, nil, nil, nil,
			&Error{Op: "sample", Err: errNotReady}
	}
	if !b.finalized {
		return nil, nil, nil, nil, nil, nil,
			&Error{Op: "sample", Err: errNotFinalized}
	}

	stateBatch := make([]float64, batchSize*b.featureSize)
	actionBatch := make([]float64, batchSize*b.actionSize)
	valueBatch := make([]float64, batchSize)
	logProbBatch := make([]float64, batchSize)
	advantageBatch := make([]float64, batchSize)
	returnBatch := make([]float64, batchSize)

	for i := 0; i < batchSize; i++ {
		index := b.rng.Int() % b.inUse

		batchStartInd := i * b.featureSize
		expStartInd := index * b.featureSize
		copy(stateBatch[batchStartInd:batchStartInd+b.featureSize],
			b.stateCache[expStartInd:expStartInd+b.featureSize],
		)

		batchStartInd = i * b.actionSize
		expStartInd = index * b.actionSize
		copy(actionBatch[batchStartInd:batchStartInd+b.actionSize],
			b.actionCache[expStartInd:expStartInd+b.actionSize],
		)

		valueBatch[i] = b.valueCache[index]
		logProbBatch[i] = b.logProbCache[index]
		advantageBatch[i] = b.advantageCache[index]
		returnBatch[i] = b.returnCache[index]
	}

	return stateBatch, actionBatch, valueBatch, logProbBatch,
		advantageBatch, returnBatch, nil
}

// Capacity returns the current number of entries in the buffer
func (b *Buffer) Capacity() int {
	return b.inUse
}

// MaxCapacity returns the maximum number of entries the buffer stores
func (b *Buffer) MaxCapacity() int {
	return b.maxCapacity
}

// FeatureSize returns the dimension of stored states
func (b *Buffer) FeatureSize() int {
	return b.featureSize
}

// ActionSize returns the dimension of stored actions
func (b *Buffer) ActionSize() int {
	return b.actionSize
}

// Gamma returns the reward discount of the buffer
func (b *Buffer) Gamma() float64 {
	return b.gamma
}

// Lambda returns the GAE mixing factor of the buffer
func (b *Buffer) Lambda() float64 {
	return b.lambda
}

// physical maps the logical, oldest-first index i to the position of
// the entry in the circular caches
func (b *Buffer) physical(i int) int {
	if b.inUse < b.maxCapacity {
		return i
	}
	return (b.cursor + i) % b.maxCapacity
}
