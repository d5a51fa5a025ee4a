package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// TreeMLP implements a multi-layered perceptron with a base observation
// network and multiple leaf networks that use the output of the root
// observation network as their own inputs. A diagram of a tree MLP:
//
//	                  ╭─→ Leaf Network 1      ─→ Output
//	                  ├─→ Leaf Network 2      ─→ Output
//	                  ├─→ ...                 ─→  ...
//	Input ─→ Root Net ┼─→ ...                 ─→  ...
//	                  ├─→ ...                 ─→  ...
//	                  ├─→ Leaf Network (N-1)  ─→ Output
//	                  ╰─→ Leaf Network N      ─→ Output
//
// Each leaf network is an output layer of the TreeMLP, predicting
// Outputs() values per input sample. All leaf networks predict from
// the same learned representation of the input, so a TreeMLP can, for
// example, predict both the mean and the standard deviation of a
// Gaussian policy from a shared state representation.
type TreeMLP struct {
	g            *G.ExprGraph
	rootNetwork  NeuralNet   // Observation network
	leafNetworks []NeuralNet // Leaf networks
	input        *G.Node     // Input to observation network

	numOutputs int // Number of outputs per leaf network
	numInputs  int // Features input for observation network
	batchSize  int

	// Store learnables and model so that they don't need to be
	// computed each time a gradient step is taken
	learnables G.Nodes
	model      []G.ValueGrad

	// Configuration data needed for gobbing
	rootHiddenSizes []int
	rootBiases      []bool
	rootActivations []*Activation
	leafHiddenSizes [][]int
	leafBiases      [][]bool
	leafActivations [][]*Activation

	predVal    []G.Value // Values predicted by each leaf network
	prediction []*G.Node // Nodes holding the predictions
}

// validateTreeMLP validates the arguments of NewTreeMLP() to ensure
// they are legal
func validateTreeMLP(numOutputs int, rootHiddenSizes []int, rootBiases []bool,
	rootActivations []*Activation, leafHiddenSizes [][]int,
	leafBiases [][]bool, leafActivations [][]*Activation) error {
	// Validate observation/root network
	if len(rootHiddenSizes) == 0 {
		return fmt.Errorf("root network must have at least one hidden layer")
	}

	if len(rootHiddenSizes) != len(rootActivations) {
		msg := "invalid number of root activations" +
			"\n\twant(%d)\n\thave(%d)"
		return fmt.Errorf(msg, len(rootHiddenSizes), len(rootActivations))
	}

	if len(rootHiddenSizes) != len(rootBiases) {
		msg := "invalid number of root biases" +
			"\n\twant(%d)\n\thave(%d)"
		return fmt.Errorf(msg, len(rootHiddenSizes), len(rootBiases))
	}

	// Validate number of leaf networks
	if len(leafHiddenSizes) == 0 || len(leafBiases) == 0 ||
		len(leafActivations) == 0 {
		return fmt.Errorf("there must be at least one leaf network specified")
	}

	if numOutputs <= 0 {
		return fmt.Errorf("there must be more than 0 outputs per leaf network")
	}

	if len(leafHiddenSizes) != len(leafActivations) {
		msg := "invalid number of leaf network activations " +
			"\n\twant(%v) \n\thave(%v)"
		return fmt.Errorf(msg, len(leafHiddenSizes), len(leafActivations))
	}

	if len(leafHiddenSizes) != len(leafBiases) {
		msg := "invalid number of leaf network biases " +
			"\n\twant(%v) \n\thave(%v)"
		return fmt.Errorf(msg, len(leafHiddenSizes), len(leafBiases))
	}

	// Validate architecture of leaf networks
	for i := 0; i < len(leafHiddenSizes); i++ {
		if len(leafHiddenSizes[i]) != len(leafActivations[i]) {
			msg := "invalid number of activations for leaf " +
				"network %v \n\twant(%v) \n\thave(%v)"
			return fmt.Errorf(msg, i, len(leafHiddenSizes[i]),
				len(leafActivations[i]))
		}

		if len(leafHiddenSizes[i]) != len(leafBiases[i]) {
			msg := "invalid number of biases for leaf " +
				"network %v \n\twant(%v) \n\thave(%v)"
			return fmt.Errorf(msg, i, len(leafHiddenSizes[i]),
				len(leafBiases[i]))
		}
	}

	return nil
}

// NewTreeMLP returns a new NeuralNet with a tree MLP architecture. The
// graph parameter g is populated with the network.
//
// The observation network has number of layers equal to
// len(rootHiddenSizes). For index i, rootHiddenSizes[i] determines the
// number of hidden units in that layer, rootBiases[i] determines if a
// bias unit is added to the hidden layer, and rootActivations[i]
// determines the activation function of that hidden layer.
//
// The number of leaf networks is defined by len(leafHiddenSizes).
// For indices i and j, leafHiddenSizes[i][j], leafBiases[i][j], and
// leafActivations[i][j] determine the number of hidden units of layer
// j in leaf network i, whether a bias is added to layer j of leaf
// network i, and the activation of layer j of leaf network i
// respectively. For each leaf network, a final linear layer with a
// bias and no activation is added so that each leaf network predicts
// exactly outputs values per input sample.
//
// To create a network with only a single linear layer per leaf
// network, set leafHiddenSizes = [][]int{{}, {}, ..., {}} (similarly
// for leafBiases and leafActivations). The root network can be left
// with nonlinearities to ensure all leaf networks use the same state
// representation but make (possibly different) predictions.
func NewTreeMLP(features, batch, outputs int, g *G.ExprGraph,
	rootHiddenSizes []int, rootBiases []bool, rootActivations []*Activation,
	leafHiddenSizes [][]int, leafBiases [][]bool,
	leafActivations [][]*Activation, init G.InitWFn) (NeuralNet, error) {

	err := validateTreeMLP(outputs, rootHiddenSizes, rootBiases,
		rootActivations, leafHiddenSizes, leafBiases, leafActivations)
	if err != nil {
		return nil, fmt.Errorf("newtreemlp: %v", err)
	}

	// Set up the input node
	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, features),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	// Create root/observation network and run its forward pass
	observationOutputs := rootHiddenSizes[len(rootHiddenSizes)-1]
	rootNetwork, err := newMultiHeadMLPFromInput([]*G.Node{input},
		observationOutputs, g, rootHiddenSizes, rootBiases, init,
		rootActivations, "Root", "", false)
	if err != nil {
		return nil, fmt.Errorf("newtreemlp: could not construct root "+
			"network: %v", err)
	}

	// Create leaf networks and run each of their forward passes
	rootOutput := rootNetwork.Prediction()

	leafNetworks := make([]NeuralNet, len(leafHiddenSizes))
	for i := 0; i < len(leafHiddenSizes); i++ {
		prefix := fmt.Sprintf("Leaf%d", i)

		leafNetworks[i], err = newMultiHeadMLPFromInput(rootOutput, outputs,
			g, leafHiddenSizes[i], leafBiases[i], init, leafActivations[i],
			prefix, "", true)
		if err != nil {
			return nil, fmt.Errorf("newtreemlp: could not construct leaf "+
				"network %v: %v", i, err)
		}
	}

	net := &TreeMLP{
		g:               g,
		rootNetwork:     rootNetwork,
		leafNetworks:    leafNetworks,
		input:           input,
		numOutputs:      outputs,
		numInputs:       features,
		batchSize:       batch,
		rootHiddenSizes: rootHiddenSizes,
		rootBiases:      rootBiases,
		rootActivations: rootActivations,
		leafHiddenSizes: leafHiddenSizes,
		leafBiases:      leafBiases,
		leafActivations: leafActivations,
		learnables:      nil,
		model:           nil,
	}

	// Compute the forward pass
	err = net.fwd()
	if err != nil {
		msg := "newtreemlp: could not compute forward pass: %v"
		return &TreeMLP{}, fmt.Errorf(msg, err)
	}

	return net, nil
}

// SetInput sets the value of the input node before running the forward
// pass
func (t *TreeMLP) SetInput(input []float64) error {
	if len(input) != t.numInputs*t.batchSize {
		msg := fmt.Sprintf("setinput: invalid number of inputs\n\twant(%v)"+
			"\n\thave(%v)", t.numInputs*t.batchSize, len(input))
		panic(msg)
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(t.input.Shape()...),
	)
	return G.Let(t.input, inputTensor)
}

// Outputs returns the number of outputs per leaf network
func (t *TreeMLP) Outputs() int {
	return t.numOutputs
}

// OutputLayers returns the number of output layers in the network.
// There is one output layer per leaf network.
func (t *TreeMLP) OutputLayers() int {
	return len(t.Prediction())
}

// Graph returns the computational graph of the network
func (t *TreeMLP) Graph() *G.ExprGraph {
	return t.g
}

// Features returns the number of features in a single input vector
// that the network takes as input
func (t *TreeMLP) Features() int {
	return t.numInputs
}

// Clone returns a clone of the TreeMLP
func (t *TreeMLP) Clone() (NeuralNet, error) {
	return t.CloneWithBatch(t.batchSize)
}

// CloneWithBatch returns a clone of the TreeMLP with a new input batch
// size
func (t *TreeMLP) CloneWithBatch(batchSize int) (NeuralNet, error) {
	graph := G.NewGraph()

	// Create the input node
	inputShape := t.input.Shape()
	var input *G.Node
	if t.input.IsMatrix() {
		batchShape := append([]int{batchSize}, inputShape[1:]...)
		input = G.NewMatrix(
			graph,
			tensor.Float64,
			G.WithShape(batchShape...),
			G.WithName("input"),
			G.WithInit(G.Zeroes()),
		)
	} else {
		return nil, fmt.Errorf("clonewithbatch: invalid input type")
	}

	return t.cloneWithInputTo(-1, []*G.Node{input}, graph)
}

// cloneWithInputTo clones the TreeMLP to a new graph with a given
// input node. If multiple input nodes are given, then they are first
// concatenated along the specified axis.
func (t *TreeMLP) cloneWithInputTo(axis int, inputs []*G.Node,
	graph *G.ExprGraph) (NeuralNet, error) {
	// Ensure all inputs share the same graph
	for _, input := range inputs {
		if input.Graph() != graph {
			return nil, fmt.Errorf("clonewithinputto: not all inputs " +
				"have the same graph")
		}
	}

	// Concatenate inputs if necessary
	var input *G.Node
	if len(inputs) > 1 {
		input = G.Must(G.Concat(axis, inputs...))
	} else {
		input = inputs[0]
	}

	if !input.IsMatrix() {
		return nil, fmt.Errorf("clonewithinputto: input must be a matrix " +
			"node")
	}
	batchSize := input.Shape()[0]
	features := input.Shape()[1]

	rootClone, err := t.rootNetwork.cloneWithInputTo(-1, []*G.Node{input},
		graph)
	if err != nil {
		return nil, fmt.Errorf("clonewithinputto: could not clone root "+
			"network: %v", err)
	}

	rootOutput := rootClone.Prediction()

	leafClones := make([]NeuralNet, len(t.leafNetworks))
	for i := 0; i < len(leafClones); i++ {
		leafClones[i], err = t.leafNetworks[i].cloneWithInputTo(axis,
			rootOutput, graph)
		if err != nil {
			msg := "clonewithinputto: could not clone leaf network %v: %v"
			return nil, fmt.Errorf(msg, i, err)
		}
	}

	net := &TreeMLP{
		g:               graph,
		rootNetwork:     rootClone,
		leafNetworks:    leafClones,
		input:           input,
		numOutputs:      t.numOutputs,
		numInputs:       features,
		batchSize:       batchSize,
		rootHiddenSizes: t.rootHiddenSizes,
		rootBiases:      t.rootBiases,
		rootActivations: t.rootActivations,
		leafHiddenSizes: t.leafHiddenSizes,
		leafBiases:      t.leafBiases,
		leafActivations: t.leafActivations,
		learnables:      nil,
		model:           nil,
	}
	err = net.fwd()
	if err != nil {
		return nil, fmt.Errorf("clonewithinputto: could not compute "+
			"forward pass: %v", err)
	}

	return net, nil
}

// BatchSize returns the batch size for inputs to the network
func (t *TreeMLP) BatchSize() int {
	return t.rootNetwork.BatchSize()
}

// fwd collects the predictions of the leaf networks. The root and leaf
// networks have already added their forward passes to the graph, so
// there is no more graph construction to do.
func (t *TreeMLP) fwd() error {
	leafPredictions := make([]*G.Node, 0, len(t.leafNetworks))
	for _, leafNet := range t.leafNetworks {
		leafPredictions = append(leafPredictions, leafNet.Prediction()...)
	}
	t.prediction = leafPredictions

	t.predVal = make([]G.Value, len(t.prediction))
	for i, pred := range t.prediction {
		G.Read(pred, &t.predVal[i])
	}

	return nil
}

// Set sets the weights of a TreeMLP to be equal to the weights of
// another NeuralNet of the same architecture
func (t *TreeMLP) Set(source NeuralNet) error {
	sourceNodes := source.Learnables()
	nodes := t.Learnables()
	for i, destLearnable := range nodes {
		sourceLearnable := sourceNodes[i].Clone()
		err := G.Let(destLearnable, sourceLearnable.(*G.Node).Value())
		if err != nil {
			return err
		}
	}
	return nil
}

// Polyak sets the weights of a TreeMLP to be a Polyak average between
// its existing weights and the weights of another NeuralNet of the
// same architecture
func (t *TreeMLP) Polyak(source NeuralNet, tau float64) error {
	sourceNodes := source.Learnables()
	nodes := t.Learnables()
	for i := range nodes {
		weights := nodes[i].Value().(*tensor.Dense)
		sourceWeights := sourceNodes[i].Value().(*tensor.Dense)

		weights, err := weights.MulScalar(1-tau, true)
		if err != nil {
			return err
		}

		sourceWeights, err = sourceWeights.MulScalar(tau, true)
		if err != nil {
			return err
		}

		var newWeights *tensor.Dense
		newWeights, err = weights.Add(sourceWeights)
		if err != nil {
			return err
		}

		err = G.Let(nodes[i], newWeights)
		if err != nil {
			return err
		}
	}
	return nil
}

// Output returns the values predicted by each leaf network as of the
// last run of the computational graph
func (t *TreeMLP) Output() []G.Value {
	return t.predVal
}

// Prediction returns the nodes of the computational graph that store
// the predictions of each leaf network
func (t *TreeMLP) Prediction() []*G.Node {
	return t.prediction
}

// Model returns the learnable nodes with their gradients
func (t *TreeMLP) Model() []G.ValueGrad {
	// Lazy instantiation of model
	if t.model == nil {
		t.model = t.computeModel()
	}
	return t.model
}

// computeModel gets and returns all learnables of the network with
// their gradients
func (t *TreeMLP) computeModel() []G.ValueGrad {
	var model []G.ValueGrad
	for _, learnable := range t.Learnables() {
		model = append(model, learnable)
	}
	return model
}

// Learnables returns the learnable nodes in a TreeMLP
func (t *TreeMLP) Learnables() G.Nodes {
	// Lazy instantiation of learnables
	if t.learnables == nil {
		t.learnables = t.computeLearnables()
	}
	return t.learnables
}

// computeLearnables gets and returns all learnables of the network
func (t *TreeMLP) computeLearnables() G.Nodes {
	numLearnables := 2 * len(t.rootHiddenSizes)
	for _, layer := range t.leafHiddenSizes {
		numLearnables += 2 * len(layer)
	}
	learnables := make([]*G.Node, 0, numLearnables)

	learnables = append(learnables, t.rootNetwork.Learnables()...)
	for _, leafNet := range t.leafNetworks {
		learnables = append(learnables, leafNet.Learnables()...)
	}

	return G.Nodes(learnables)
}

// GobEncode implements the gob.GobEncoder interface
func (t *TreeMLP) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	config := []interface{}{
		t.numOutputs,
		t.numInputs,
		t.batchSize,
		t.rootHiddenSizes,
		t.rootBiases,
		t.rootActivations,
		t.leafHiddenSizes,
		t.leafBiases,
		t.leafActivations,
	}
	for _, data := range config {
		err := enc.Encode(data)
		if err != nil {
			return nil, fmt.Errorf("gobencode: could not encode network "+
				"configuration: %v", err)
		}
	}

	// Store the root network layer weights, then each leaf network's
	// layer weights
	root := t.rootNetwork.(*multiHeadMLP)
	for i, layer := range root.layers {
		err := enc.Encode(layer.(*fcLayer))
		if err != nil {
			return nil, fmt.Errorf("gobencode: could not encode root "+
				"layer %v: %v", i, err)
		}
	}
	for i, leafNet := range t.leafNetworks {
		leaf := leafNet.(*multiHeadMLP)
		for j, layer := range leaf.layers {
			err := enc.Encode(layer.(*fcLayer))
			if err != nil {
				return nil, fmt.Errorf("gobencode: could not encode leaf "+
					"%v layer %v: %v", i, j, err)
			}
		}
	}

	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (t *TreeMLP) GobDecode(in []byte) error {
	buf := bytes.NewReader(in)
	dec := gob.NewDecoder(buf)

	var numOutputs, numInputs, batchSize int
	var rootHiddenSizes []int
	var rootBiases []bool
	var rootActivations []*Activation
	var leafHiddenSizes [][]int
	var leafBiases [][]bool
	var leafActivations [][]*Activation

	config := []interface{}{
		&numOutputs,
		&numInputs,
		&batchSize,
		&rootHiddenSizes,
		&rootBiases,
		&rootActivations,
		&leafHiddenSizes,
		&leafBiases,
		&leafActivations,
	}
	for _, data := range config {
		err := dec.Decode(data)
		if err != nil {
			return fmt.Errorf("gobdecode: could not decode network "+
				"configuration: %v", err)
		}
	}

	// Create a new TreeMLP to decode the saved weights into
	g := G.NewGraph()
	newNet, err := NewTreeMLP(numInputs, batchSize, numOutputs, g,
		rootHiddenSizes, rootBiases, rootActivations, leafHiddenSizes,
		leafBiases, leafActivations, G.Zeroes())
	if err != nil {
		return fmt.Errorf("gobdecode: could not construct new TreeMLP: %v",
			err)
	}
	newTree := newNet.(*TreeMLP)

	root := newTree.rootNetwork.(*multiHeadMLP)
	for i := range root.layers {
		err = dec.Decode(root.layers[i].(*fcLayer))
		if err != nil {
			return fmt.Errorf("gobdecode: could not decode root layer "+
				"%v: %v", i, err)
		}
	}
	for i, leafNet := range newTree.leafNetworks {
		leaf := leafNet.(*multiHeadMLP)
		for j := range leaf.layers {
			err = dec.Decode(leaf.layers[j].(*fcLayer))
			if err != nil {
				return fmt.Errorf("gobdecode: could not decode leaf %v "+
					"layer %v: %v", i, j, err)
			}
		}
	}

	*t = *newTree
	return nil
}
