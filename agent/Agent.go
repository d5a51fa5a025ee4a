// Package agent defines the contracts that training systems satisfy
// and a registry for the systems owned by a process.
package agent

import (
	"gonum.org/v1/gonum/mat"
)

// System describes the operations common to all training systems.
// Systems interact with environments through Collect and the
// inference operations, and update their networks through TrainStep.
//
// A System is a single-owner object: it may be shared across
// goroutines only if the owner serializes calls externally.
type System interface {
	// Collect records a single environment transition
	Collect(state, action *mat.VecDense, reward float64, done bool)

	// Ready returns whether enough transitions have been collected
	// for TrainStep to update the networks
	Ready() bool

	// TrainStep performs a single update to the system's networks,
	// returning the policy and value losses
	TrainStep() (float64, float64, error)

	// Predict returns the deterministic policy action for a state,
	// and PredictExplore returns a stochastically sampled action
	Predict(state *mat.VecDense) *mat.VecDense
	PredictExplore(state *mat.VecDense) *mat.VecDense

	// Evaluate returns the value estimate for a state-action pair
	Evaluate(state, action *mat.VecDense) float64

	// SaveCheckpoint serializes the system's training state to a
	// directory, and LoadCheckpoint restores it
	SaveCheckpoint(dir string) error
	LoadCheckpoint(dir string) error
}

// OnPolicySystem is a System that trains on rollouts of its own
// behaviour policy. Collected rollouts must be finalized before
// training on them.
type OnPolicySystem interface {
	System

	// FinalizeRollout computes the advantage estimates of the
	// collected rollout, bootstrapping from the value estimate of
	// the state following the last collected transition
	FinalizeRollout(bootstrapValue float64, bootstrapDone bool) error
}

// OffPolicySystem is a System that trains on transitions drawn from
// a policy other than the one being learned, such as a replay buffer
// of past behaviour.
type OffPolicySystem interface {
	System

	// Explore adds exploration noise to an already-computed action
	Explore(action *mat.VecDense) *mat.VecDense
}
