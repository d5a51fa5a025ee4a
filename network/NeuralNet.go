// Package network implements gorgonia-backed neural networks for
// function approximation
package network

import (
	G "gorgonia.org/gorgonia"
)

// NeuralNet implements a neural network on a gorgonia computational
// graph. A NeuralNet may have multiple output layers, each producing
// Outputs() predictions per input sample. Networks only construct the
// graph operations of their forward pass; callers run the graph with a
// VM and read predicted values with Output().
type NeuralNet interface {
	Graph() *G.ExprGraph

	// Clone clones the network to a new computational graph, and
	// CloneWithBatch does the same while changing the input batch size
	Clone() (NeuralNet, error)
	CloneWithBatch(int) (NeuralNet, error)

	// cloneWithInputTo clones the network so that it predicts from
	// the given input nodes, which must share the target graph.
	// Multiple inputs are concatenated along axis before being fed
	// to the clone.
	cloneWithInputTo(axis int, inputs []*G.Node,
		graph *G.ExprGraph) (NeuralNet, error)

	BatchSize() int
	Features() int
	Outputs() int
	OutputLayers() int

	// SetInput sets the value of the network's input node for the
	// next run of the graph
	SetInput([]float64) error

	// Set sets the weights of the network to those of another network
	// of the same architecture, and Polyak sets them to a Polyak
	// average of the two networks' weights
	Set(NeuralNet) error
	Polyak(NeuralNet, float64) error

	Learnables() G.Nodes
	Model() []G.ValueGrad

	// Prediction returns the nodes of the computational graph that
	// store the predictions of each output layer, and Output returns
	// the values of those nodes as of the last run of the graph
	Prediction() []*G.Node
	Output() []G.Value
}
