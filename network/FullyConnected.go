package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Layer implements a single layer of a neural network
type Layer interface {
	fwd(*G.Node) (*G.Node, error)
	CloneTo(g *G.ExprGraph) Layer
	Weights() *G.Node
	Bias() *G.Node
	Activation() *Activation
}

// fcLayer implements a fully connected layer of a feed forward neural
// network
type fcLayer struct {
	weights *G.Node
	bias    *G.Node
	act     *Activation
}

// fwd adds the forward pass of the fcLayer to the computational graph
func (f *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	if f.Weights() != nil {
		x = G.Must(G.Mul(x, f.Weights()))
	}
	if f.Bias() != nil {
		// Broadcast the bias weights to all samples along the batch
		// dimension
		x = G.Must(G.BroadcastAdd(x, f.Bias(), nil, []byte{0}))
	}
	if f.act == nil || f.act.IsNil() || f.act.IsIdentity() {
		return x, nil
	}
	return f.act.fwd(x)
}

// CloneTo clones an fcLayer to a new computational graph
func (f *fcLayer) CloneTo(g *G.ExprGraph) Layer {
	var newWeights, newBias *G.Node

	if f.Weights() != nil {
		newWeights = f.Weights().CloneTo(g)
	}
	if f.Bias() != nil {
		newBias = f.Bias().CloneTo(g)
	}

	return &fcLayer{
		weights: newWeights,
		bias:    newBias,
		act:     f.act,
	}
}

// Activation returns the activation function of the fcLayer
func (f *fcLayer) Activation() *Activation {
	return f.act
}

// Bias returns the node holding the bias weights of the fcLayer
func (f *fcLayer) Bias() *G.Node {
	return f.bias
}

// Weights returns the node holding the weights of the fcLayer
func (f *fcLayer) Weights() *G.Node {
	return f.weights
}

// GobEncode implements the gob.GobEncoder interface. Only the values of
// the layer weights and the activation are encoded.
func (f *fcLayer) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	err := enc.Encode(f.weights != nil)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode weights "+
			"flag: %v", err)
	}
	if f.weights != nil {
		err := enc.Encode(f.weights.Value().(*tensor.Dense))
		if err != nil {
			return nil, fmt.Errorf("gobencode: could not encode "+
				"weights: %v", err)
		}
	}

	err = enc.Encode(f.bias != nil)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode bias flag: %v",
			err)
	}
	if f.bias != nil {
		err := enc.Encode(f.bias.Value().(*tensor.Dense))
		if err != nil {
			return nil, fmt.Errorf("gobencode: could not encode bias: %v",
				err)
		}
	}

	err = enc.Encode(f.act)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode activation: %v",
			err)
	}

	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The weight values
// are decoded into the existing weight nodes of the layer, which must
// have the same shapes as the encoded weights.
func (f *fcLayer) GobDecode(in []byte) error {
	buf := bytes.NewReader(in)
	dec := gob.NewDecoder(buf)

	var hasWeights bool
	err := dec.Decode(&hasWeights)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode weights flag: %v",
			err)
	}
	if hasWeights {
		if f.weights == nil {
			return fmt.Errorf("gobdecode: layer has no weights node to " +
				"decode into")
		}
		var weights *tensor.Dense
		err := dec.Decode(&weights)
		if err != nil {
			return fmt.Errorf("gobdecode: could not decode weights: %v", err)
		}
		err = G.Let(f.weights, weights)
		if err != nil {
			return fmt.Errorf("gobdecode: could not set weights: %v", err)
		}
	}

	var hasBias bool
	err = dec.Decode(&hasBias)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode bias flag: %v", err)
	}
	if hasBias {
		if f.bias == nil {
			return fmt.Errorf("gobdecode: layer has no bias node to " +
				"decode into")
		}
		var bias *tensor.Dense
		err := dec.Decode(&bias)
		if err != nil {
			return fmt.Errorf("gobdecode: could not decode bias: %v", err)
		}
		err = G.Let(f.bias, bias)
		if err != nil {
			return fmt.Errorf("gobdecode: could not set bias: %v", err)
		}
	}

	var act Activation
	err = dec.Decode(&act)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode activation: %v", err)
	}
	f.act = &act

	return nil
}

// addfcLayers creates the fully connected layers of an MLP on a
// computational graph. For index i, hiddenSizes[i] determines the
// number of hidden units in layer i, biases[i] determines whether a
// bias is added to layer i, and activations[i] determines the
// activation function of layer i. The parameter init determines the
// weight initialization scheme, and features the number of inputs to
// the first layer. Node names are prepended with prefix and appended
// with suffix so that multiple networks can share a computational
// graph.
func addfcLayers(g *G.ExprGraph, hiddenSizes []int, biases []bool,
	activations []*Activation, init G.InitWFn, features int, prefix,
	suffix string) []Layer {
	layers := make([]Layer, 0, len(hiddenSizes))

	in := features
	for i, out := range hiddenSizes {
		weightName := fmt.Sprintf("%vL%vW%v", prefix, i, suffix)
		weights := G.NewMatrix(
			g,
			tensor.Float64,
			G.WithShape(in, out),
			G.WithName(weightName),
			G.WithInit(init),
		)

		var bias *G.Node
		if biases[i] {
			biasName := fmt.Sprintf("%vL%vB%v", prefix, i, suffix)
			bias = G.NewMatrix(
				g,
				tensor.Float64,
				G.WithShape(1, out),
				G.WithName(biasName),
				G.WithInit(G.Zeroes()),
			)
		}

		layers = append(layers, &fcLayer{
			weights: weights,
			bias:    bias,
			act:     activations[i],
		})
		in = out
	}

	return layers
}
