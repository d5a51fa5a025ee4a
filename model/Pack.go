// Package model bundles neural networks with the machinery that
// trains them: a solver, a step size schedule, a communicator for
// data-parallel training, and training state counters.
package model

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/goppo/comm"
	"github.com/samuelfneumann/goppo/network"
	"github.com/samuelfneumann/goppo/report"
	"github.com/samuelfneumann/goppo/schedule"
	"github.com/samuelfneumann/goppo/solver"
)

// State holds the training counters of a Pack
type State struct {
	StepTrain       int // Number of gradient steps taken
	ReportFrequency int // Log metrics every this many steps; 0 disables
}

// Pack bundles a neural network with the solver that updates its
// weights, the schedule that anneals the solver's step size, the
// communicator of the data-parallel training group, and the training
// state counters. Training code computes gradients on the pack's
// network, then calls Step() to apply them and Report() to log
// training metrics on the reporting cadence.
type Pack struct {
	name     string
	net      network.NeuralNet
	solver   *solver.Solver
	schedule *schedule.Schedule
	comm     comm.Communicator
	state    *State
	reporter report.Reporter
	logger   zerolog.Logger

	grads []float64 // scratch space for gradient reductions
}

// NewPack returns a new Pack with the given name. The name identifies
// the pack in log records and metric reports, e.g. "actor" or
// "critic".
//
// A nil schedule keeps the solver's step size constant, and a nil
// communicator means single-process training. A nil reporter disables
// metric recording but not logging.
func NewPack(name string, net network.NeuralNet, sol *solver.Solver,
	sched *schedule.Schedule, c comm.Communicator, reportFrequency int,
	reporter report.Reporter, logger zerolog.Logger) (*Pack, error) {
	if net == nil {
		return nil, fmt.Errorf("newPack: no network to train")
	}
	if sol == nil {
		return nil, fmt.Errorf("newPack: no solver to train with")
	}
	if sched == nil {
		var err error
		sched, err = schedule.NewConstant(sol.LearnRate())
		if err != nil {
			return nil, fmt.Errorf("newPack: %v", err)
		}
	}
	if c == nil {
		c = comm.NewLocal()
	}

	return &Pack{
		name:     name,
		net:      net,
		solver:   sol,
		schedule: sched,
		comm:     c,
		state:    &State{ReportFrequency: reportFrequency},
		reporter: reporter,
		logger:   logger.With().Str("model", name).Logger(),
	}, nil
}

// Name returns the name of the Pack
func (p *Pack) Name() string {
	return p.name
}

// Net returns the neural network of the Pack
func (p *Pack) Net() network.NeuralNet {
	return p.net
}

// Solver returns the solver that updates the Pack's network weights
func (p *Pack) Solver() *solver.Solver {
	return p.solver
}

// Schedule returns the step size schedule of the Pack
func (p *Pack) Schedule() *schedule.Schedule {
	return p.schedule
}

// Comm returns the communicator of the Pack's training group
func (p *Pack) Comm() comm.Communicator {
	return p.comm
}

// StepTrain returns the number of gradient steps the Pack has taken
func (p *Pack) StepTrain() int {
	return p.state.StepTrain
}

// Step takes one gradient step. The network's parameter gradients are
// first averaged across the communicator group so that every process
// applies the same update, then the solver updates the weights, and
// finally the schedule advances the solver's step size.
//
// The computational graph holding the network must have been run, with
// gradients bound to the network's learnables, before Step is called.
func (p *Pack) Step() error {
	if err := p.SyncGradients(); err != nil {
		return fmt.Errorf("step: %v", err)
	}

	if err := p.solver.Step(p.net.Model()); err != nil {
		return fmt.Errorf("step: could not update weights: %v", err)
	}

	p.solver.SetLearnRate(p.schedule.Step())
	p.state.StepTrain++
	return nil
}

// SyncGradients averages the gradients of the network's learnables
// across the communicator group. All gradients are flattened into a
// single buffer so that one collective call synchronizes the whole
// network. A no-op for single-process groups.
func (p *Pack) SyncGradients() error {
	if p.comm.Size() == 1 {
		return nil
	}

	learnables := p.net.Learnables()
	grads := make([][]float64, len(learnables))
	n := 0
	for i, learnable := range learnables {
		grad, err := learnable.Grad()
		if err != nil {
			return fmt.Errorf("syncgradients: could not get gradient of "+
				"%v: %v", learnable.Name(), err)
		}
		grads[i] = grad.Data().([]float64)
		n += len(grads[i])
	}

	if len(p.grads) != n {
		p.grads = make([]float64, n)
	}
	i := 0
	for _, grad := range grads {
		i += copy(p.grads[i:], grad)
	}

	if err := p.comm.AllReduce(p.grads, true); err != nil {
		return fmt.Errorf("syncgradients: %v", err)
	}

	i = 0
	for _, grad := range grads {
		i += copy(grad, p.grads[i:i+len(grad)])
	}
	return nil
}

// Report logs the given metrics together with the Pack's training step
// and current step size, and records them with the Pack's reporter.
// Reports are made every ReportFrequency training steps, by rank 0 of
// the communicator group only.
func (p *Pack) Report(metrics map[string]float64) {
	if p.state.ReportFrequency <= 0 ||
		p.state.StepTrain%p.state.ReportFrequency != 0 ||
		p.comm.Rank() != 0 {
		return
	}

	if p.reporter != nil {
		p.reporter.Report(p.name, "lr", p.state.StepTrain,
			p.solver.LearnRate())
	}

	event := p.logger.Info().
		Int("step_train", p.state.StepTrain).
		Float64("lr", p.solver.LearnRate())
	for metric, value := range metrics {
		event = event.Float64(metric, value)
		if p.reporter != nil {
			p.reporter.Report(p.name, metric, p.state.StepTrain, value)
		}
	}
	event.Msg("train step")
}

// GobEncode implements the gob.GobEncoder interface. The Pack's
// network weights, solver configuration, schedule, and training step
// all round-trip. Internal solver state, such as Adam's moment
// estimates, restarts after a load.
func (p *Pack) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(p.net); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode network: %v", err)
	}

	solverConfig, err := json.Marshal(p.solver)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not marshal solver: %v", err)
	}
	if err := enc.Encode(solverConfig); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode solver: %v", err)
	}

	if err := enc.Encode(p.schedule); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode schedule: %v",
			err)
	}

	if err := enc.Encode(p.state.StepTrain); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode training "+
			"step: %v", err)
	}

	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The Pack must
// already be initialized with a network of the same architecture as
// the encoded one; the encoded weights are copied into it.
func (p *Pack) GobDecode(in []byte) error {
	buf := bytes.NewReader(in)
	dec := gob.NewDecoder(buf)

	// Decode the network weights into a scratch clone, then copy them
	// into the live network so that the nodes of the existing
	// computational graph keep their identity
	scratch, err := p.net.Clone()
	if err != nil {
		return fmt.Errorf("gobdecode: could not clone network: %v", err)
	}
	if err := dec.Decode(scratch); err != nil {
		return fmt.Errorf("gobdecode: could not decode network: %v", err)
	}
	if err := p.net.Set(scratch); err != nil {
		return fmt.Errorf("gobdecode: could not set network weights: %v",
			err)
	}

	var solverConfig []byte
	if err := dec.Decode(&solverConfig); err != nil {
		return fmt.Errorf("gobdecode: could not decode solver: %v", err)
	}
	if err := json.Unmarshal(solverConfig, p.solver); err != nil {
		return fmt.Errorf("gobdecode: could not unmarshal solver: %v", err)
	}

	if err := dec.Decode(p.schedule); err != nil {
		return fmt.Errorf("gobdecode: could not decode schedule: %v", err)
	}

	if err := dec.Decode(&p.state.StepTrain); err != nil {
		return fmt.Errorf("gobdecode: could not decode training step: %v",
			err)
	}

	return nil
}
