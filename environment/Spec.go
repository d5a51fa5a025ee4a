package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SpecType determines what kind of data a Spec describes. A Spec can
// describe the layout of an action, an observation, a discount, or a
// reward
type SpecType int

const (
	Action SpecType = iota
	Observation
	Discount
	Reward
)

// Cardinality determines the cardinality of a number (discrete or continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec implements an environment specification, which tells the type,
// shape, and bounds of an action, observation, discount, or reward in
// an environment. The element at index i of each bound is the bound of
// the data dimension at index i.
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec constructs a new environment specification. The shape
// argument outlines the shape of the data described by the
// specification, the argument t what the specification describes
// (e.g. actions, observations, etc.), and the cardinality argument
// whether the described values are continuous or discrete. The bounds
// must have one element per dimension of shape.
func NewSpec(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	if lowerBound.Len() != shape.Len() {
		panic(fmt.Sprintf("newspec: invalid lower bound length\n\twant(%v)"+
			"\n\thave(%v)", shape.Len(), lowerBound.Len()))
	}
	if upperBound.Len() != shape.Len() {
		panic(fmt.Sprintf("newspec: invalid upper bound length\n\twant(%v)"+
			"\n\thave(%v)", shape.Len(), upperBound.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}
