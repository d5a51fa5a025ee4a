// Package op provides extended Gorgonia graph operations.
//
// Adapted in part from aunum/gold on GitHub
package op

import (
	"math"

	G "gorgonia.org/gorgonia"
)

// Clip clips the value of a node to remain in [min, max]. Values
// outside the clipping range receive no gradient.
func Clip(value *G.Node, min, max float64) (retVal *G.Node, err error) {
	// Construct clipping nodes
	var minNode, maxNode *G.Node
	switch value.Dtype() {
	case G.Float32:
		minNode = G.NewScalar(
			value.Graph(),
			G.Float32,
			G.WithValue(float32(min)),
			G.WithName("clip_min"),
		)
		maxNode = G.NewScalar(
			value.Graph(),
			G.Float32,
			G.WithValue(float32(max)),
			G.WithName("clip_max"),
		)
	case G.Float64:
		minNode = G.NewScalar(
			value.Graph(),
			G.Float64,
			G.WithValue(min),
			G.WithName("clip_min"),
		)
		maxNode = G.NewScalar(
			value.Graph(),
			G.Float64,
			G.WithValue(max),
			G.WithName("clip_max"),
		)
	}

	// Check if its the min value
	minMask, err := G.Lt(value, minNode, true)
	if err != nil {
		return nil, err
	}
	minVal, err := G.HadamardProd(minNode, minMask)
	if err != nil {
		return nil, err
	}

	// Check if its the given value
	isMaskGt, err := G.Gte(value, minNode, true)
	if err != nil {
		return nil, err
	}
	isMaskLt, err := G.Lte(value, maxNode, true)
	if err != nil {
		return nil, err
	}
	isMask, err := G.HadamardProd(isMaskGt, isMaskLt)
	if err != nil {
		return nil, err
	}
	isVal, err := G.HadamardProd(value, isMask)
	if err != nil {
		return nil, err
	}

	// Check if its the max value
	maxMask, err := G.Gt(value, maxNode, true)
	if err != nil {
		return nil, err
	}
	maxVal, err := G.HadamardProd(maxNode, maxMask)
	if err != nil {
		return nil, err
	}
	return G.ReduceAdd(G.Nodes{minVal, isVal, maxVal})
}

// Min returns the min value between the nodes. If values are equal
// the first value is returned
func Min(a *G.Node, b *G.Node) (retVal *G.Node, err error) {
	aMask, err := G.Lte(a, b, true)
	if err != nil {
		return nil, err
	}
	aVal, err := G.HadamardProd(a, aMask)
	if err != nil {
		return nil, err
	}

	bMask, err := G.Lt(b, a, true)
	if err != nil {
		return nil, err
	}
	bVal, err := G.HadamardProd(b, bMask)
	if err != nil {
		return nil, err
	}
	return G.Add(aVal, bVal)
}

// Max value between the nodes. If values are equal the first value is returned.
func Max(a *G.Node, b *G.Node) (retVal *G.Node, err error) {
	aMask, err := G.Gte(a, b, true)
	if err != nil {
		return nil, err
	}
	aVal, err := G.HadamardProd(a, aMask)
	if err != nil {
		return nil, err
	}

	bMask, err := G.Gt(b, a, true)
	if err != nil {
		return nil, err
	}
	bVal, err := G.HadamardProd(b, bMask)
	if err != nil {
		return nil, err
	}
	return G.Add(aVal, bVal)
}

// GaussianLogPdf calculates the log of the probability density
// function of actions drawn from a Gaussian distribution with
// diagonal covariance, having mean mean and standard deviation std.
//
// All arguments should be two-dimensional and of the same size m x n.
// For each argument, the rows (m) denote the samples in the batch.
// For the mean and std, the columns (n) denote the main diagonal of
// the mean or standard deviation respectively of the diagonal
// Gaussian, for which the PDF of actions is calculated. For the
// actions parameter, the columns denote each dimension of the
// actions. The returned node is an m-vector holding the joint log
// density of each row of actions.
//
// The density is computed dimension-by-dimension in the log domain
// and summed over columns, so the determinant of the covariance is
// never formed explicitly.
func GaussianLogPdf(mean, std, actions *G.Node) *G.Node {
	graph := mean.Graph()
	if graph != std.Graph() || graph != actions.Graph() {
		panic("gaussianLogPdf: all nodes must share the same graph")
	}

	negativeHalf := G.NewConstant(-0.5)
	two := G.NewConstant(2.0)
	logSqrt2Pi := G.NewConstant(math.Log(math.Sqrt(2 * math.Pi)))

	// Calculate (-1/2) * ((A - μ) / σ)^2 in each dimension
	exponent := G.Must(G.Sub(actions, mean))
	exponent = G.Must(G.HadamardDiv(exponent, std))
	exponent = G.Must(G.Pow(exponent, two))
	exponent = G.Must(G.HadamardProd(negativeHalf, exponent))

	// Calculate log(σ) + log(√(2π)) in each dimension
	terms := G.Must(G.Log(std))
	terms = G.Must(G.Add(terms, logSqrt2Pi))

	logProb := G.Must(G.Sub(exponent, terms))
	return G.Must(G.Sum(logProb, 1))
}

// GaussianEntropy calculates the differential entropy of Gaussian
// distributions with diagonal covariance, having standard deviation
// std.
//
// The std argument should be two-dimensional and of size m x n, where
// the rows (m) denote distributions in a batch and the columns (n)
// denote the main diagonal of the standard deviation of each
// distribution. The returned node is an m-vector of entropies:
//
//	H = sum_i log(σ_i) + (n/2) * (1 + log(2π))
func GaussianEntropy(std *G.Node) *G.Node {
	dims := float64(std.Shape()[1])
	constant := G.NewConstant(dims / 2.0 * (1.0 + math.Log(2*math.Pi)))

	entropy := G.Must(G.Log(std))
	entropy = G.Must(G.Sum(entropy, 1))
	return G.Must(G.Add(entropy, constant))
}
