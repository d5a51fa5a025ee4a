package policy

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/goppo/environment"
	"github.com/samuelfneumann/goppo/network"
	"github.com/samuelfneumann/goppo/utils/floatutils"
	"github.com/samuelfneumann/goppo/utils/op"
)

// For stability, the standard deviation of the Gaussian distribution
// should be offset from 0.
const stdOffset float64 = 1e-3

// GaussianTreeMLP implements a Gaussian policy parameterized by a
// tree MLP. The MLP has a single root network. The root network breaks
// off into two leaf networks. One predicts the mean, and the other
// the log standard deviation. See the network.TreeMLP struct for
// more details.
//
// Given a network prediction of the mean μ and standard deviation σ of
// the Gaussian policy, actions are selected by sampling from the
// standard normal ɛ ~ N(0, 1) and computing action := μ + σ * ɛ
// similar to the reparameterization trick.
//
// Given a number of continuous actions in a number of states, the
// GaussianTreeMLP can calculate the log probability of selecting
// each of these actions in each corresponding state, as well as the
// entropy of the policy distribution in each of these states. This is
// useful for constructing policy gradients.
type GaussianTreeMLP struct {
	vm  G.VM
	net network.NeuralNet

	actions     *G.Node
	logPdfNode  *G.Node
	entropyNode *G.Node
	logPdfVal   G.Value
	entropyVal  G.Value

	normal          distmv.Rander
	features        int
	actionDims      int
	batchForLogProb int

	meanVal   G.Value
	stddevVal G.Value
}

// NewGaussianTreeMLP returns a new GaussianTreeMLP policy. The
// Gaussian policy will select actions from the argument environment.
// The neural network parameterization of the Gaussian policy is
// defined by rootHiddenSizes, rootBiases, rootActivations,
// leafHiddenSizes, leafBiases, and leafActivations. See the
// network.TreeMLP struct for details on what each of these parameters
// defines.
//
// The policy can be a batch policy when batchForLogProb > 1. In such
// a case, the log probability of actions can be computed for a batch
// of actions, but actions cannot be selected on each timestep with
// SelectAction(). Only when batchForLogProb = 1 can actions be
// selected at each timestep. When a policy is created as a batch
// policy (batchForLogProb > 1), it is assumed that the weights of
// the policy will be learned instead of using the policy for action
// selection.
//
// The init parameter determines the weight initialization scheme for
// the neural net and the seed parameter determines the seed of the
// policy's action sampler.
func NewGaussianTreeMLP(env environment.Environment, batchForLogProb int,
	g *G.ExprGraph, rootHiddenSizes []int, rootBiases []bool,
	rootActivations []*network.Activation, leafHiddenSizes [][]int,
	leafBiases [][]bool, leafActivations [][]*network.Activation,
	init G.InitWFn, seed uint64) (*GaussianTreeMLP, error) {

	if env.ActionSpec().Cardinality != environment.Continuous {
		panic("newGaussianTreeMLP: actions should be continuous")
	}
	if len(leafHiddenSizes) != 2 {
		panic("newGaussianTreeMLP: gaussian policy requires 2 leaf " +
			"networks only")
	}

	features := env.ObservationSpec().Shape.Len()
	actionDims := env.ActionSpec().Shape.Len()

	net, err := network.NewTreeMLP(
		features,
		batchForLogProb,
		actionDims,
		g,
		rootHiddenSizes,
		rootBiases,
		rootActivations,
		leafHiddenSizes,
		leafBiases,
		leafActivations,
		init,
	)
	if err != nil {
		return nil, fmt.Errorf("newGaussianTreeMLP: could not create "+
			"policy network: %v", err)
	}

	// Calculate the standard deviation and offset it for numerical
	// stability
	mean := net.Prediction()[0]
	offset := G.NewConstant(stdOffset)
	logStd := net.Prediction()[1]
	std := G.Must(G.Exp(logStd))
	std = G.Must(G.Add(offset, std))

	// Calculate the log probability of input actions and the entropy
	// of the policy distribution
	actions := G.NewMatrix(
		net.Graph(),
		tensor.Float64,
		G.WithName("InputActions"),
		G.WithShape(batchForLogProb, actionDims),
		G.WithInit(G.Zeroes()),
	)
	logPdfNode := op.GaussianLogPdf(mean, std, actions)
	entropyNode := op.GaussianEntropy(std)

	// Create standard normal for action selection
	means := make([]float64, actionDims)
	stds := mat.NewDiagDense(actionDims, floatutils.Ones(actionDims))
	source := rand.NewSource(seed)
	normal, ok := distmv.NewNormal(means, stds, source)
	if !ok {
		panic("newGaussianTreeMLP: could not create standard normal for " +
			"action selection")
	}

	pol := &GaussianTreeMLP{
		net: net,

		actions:     actions,
		logPdfNode:  logPdfNode,
		entropyNode: entropyNode,

		normal:          normal,
		features:        features,
		actionDims:      actionDims,
		batchForLogProb: batchForLogProb,
	}

	// Record values of Gorgonia nodes
	G.Read(pol.logPdfNode, &pol.logPdfVal)
	G.Read(pol.entropyNode, &pol.entropyVal)
	G.Read(mean, &pol.meanVal)
	G.Read(std, &pol.stddevVal)

	// Policy can select actions at each timestep only if using a batch
	// size of 1.
	if net.BatchSize() == 1 {
		pol.vm = G.NewTapeMachine(net.Graph())
	}

	return pol, nil
}

// LogPdfOf sets the state and action inputs of the policy's
// computational graph to the argument states and actions (s and a
// respectively) so that when a VM of the policy is run, the log
// probability of actions a taken in states s will be computed and
// stored in the policy's associated log PDF node, which is returned.
//
// The reason this function does not return the log PDF of actions is
// because this would require running the policy's VM, which does
// not contain any loss function. The log PDF of actions is generally
// needed in loss functions, and a separate, external VM will be needed
// to calculate the loss of the policy using the log PDF and update
// the weights accordingly.
func (g *GaussianTreeMLP) LogPdfOf(s, a []float64) (*G.Node, error) {
	if err := g.net.SetInput(s); err != nil {
		return nil, fmt.Errorf("logPdfOf: could not set state input: %v",
			err)
	}

	if expect := g.batchForLogProb * g.actionDims; len(a) != expect {
		return nil, fmt.Errorf("logPdfOf: invalid number of actions "+
			"\n\twant(%v)\n\thave(%v)", expect, len(a))
	}
	actionsTensor := tensor.NewDense(tensor.Float64,
		[]int{g.batchForLogProb, g.actionDims},
		tensor.WithBacking(a),
	)
	if err := G.Let(g.actions, actionsTensor); err != nil {
		return nil, fmt.Errorf("logPdfOf: could not set actions: %v", err)
	}

	return g.LogPdfNode(), nil
}

// distribution runs the policy network on the argument state,
// returning the mean and standard deviation of the policy distribution
// at that state. Only policies with batch size 1 can be run on single
// states.
func (g *GaussianTreeMLP) distribution(state *mat.VecDense) (*mat.VecDense,
	*mat.VecDense) {
	if size := g.net.BatchSize(); size != 1 {
		panic(fmt.Sprintf("distribution: distributions can only be "+
			"computed with a policy with batch size 1 \n\twant(1)"+
			"\n\thave(%v)", size))
	}
	if state.Len() != g.features {
		panic(fmt.Sprintf("distribution: invalid state size \n\twant(%v)"+
			"\n\thave(%v)", g.features, state.Len()))
	}

	if err := g.net.SetInput(state.RawVector().Data); err != nil {
		panic(fmt.Sprintf("distribution: cannot set input: %v", err))
	}
	if err := g.vm.RunAll(); err != nil {
		panic(fmt.Sprintf("distribution: could not run policy VM: %v", err))
	}
	defer g.vm.Reset()

	mean := make([]float64, g.actionDims)
	copy(mean, g.meanVal.Data().([]float64))
	stddev := make([]float64, g.actionDims)
	copy(stddev, g.stddevVal.Data().([]float64))

	return mat.NewVecDense(g.actionDims, mean),
		mat.NewVecDense(g.actionDims, stddev)
}

// SelectAction samples and returns an action from the policy
// distribution at the argument state.
func (g *GaussianTreeMLP) SelectAction(state *mat.VecDense) *mat.VecDense {
	mean, stddev := g.distribution(state)
	eps := mat.NewVecDense(g.actionDims, g.normal.Rand(nil))

	stddev.MulElemVec(stddev, eps)
	mean.AddVec(mean, stddev)

	return mean
}

// Mean returns the mean of the policy distribution at the argument
// state.
func (g *GaussianTreeMLP) Mean(state *mat.VecDense) *mat.VecDense {
	mean, _ := g.distribution(state)
	return mean
}

// LogProb returns the log probability density of taking the argument
// action in the argument state under the current policy distribution.
func (g *GaussianTreeMLP) LogProb(state, action *mat.VecDense) float64 {
	if action.Len() != g.actionDims {
		panic(fmt.Sprintf("logProb: invalid action size \n\twant(%v)"+
			"\n\thave(%v)", g.actionDims, action.Len()))
	}
	mean, stddev := g.distribution(state)

	logProb := 0.0
	for i := 0; i < g.actionDims; i++ {
		z := (action.AtVec(i) - mean.AtVec(i)) / stddev.AtVec(i)
		logProb += -0.5*z*z - math.Log(stddev.AtVec(i)) -
			math.Log(math.Sqrt(2*math.Pi))
	}
	return logProb
}

// LogPdfNode returns the node that will hold the log probability
// of actions when the computational graph is run.
func (g *GaussianTreeMLP) LogPdfNode() *G.Node {
	return g.logPdfNode
}

// LogPdfVal returns the value of the node returned by LogPdfNode()
func (g *GaussianTreeMLP) LogPdfVal() G.Value {
	return g.logPdfVal
}

// EntropyNode returns the node that will hold the entropy of the
// policy distribution when the computational graph is run.
func (g *GaussianTreeMLP) EntropyNode() *G.Node {
	return g.entropyNode
}

// EntropyVal returns the value of the node returned by EntropyNode()
func (g *GaussianTreeMLP) EntropyVal() G.Value {
	return g.entropyVal
}

// Network returns the network of the GaussianTreeMLP
func (g *GaussianTreeMLP) Network() network.NeuralNet {
	return g.net
}
