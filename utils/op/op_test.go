package op_test

import (
	"math"
	"testing"

	"github.com/samuelfneumann/goppo/utils/op"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

const tolerance float64 = 1e-10

// vecNode returns a new vector node in graph g holding data
func vecNode(g *G.ExprGraph, name string, data []float64) *G.Node {
	backing := tensor.NewDense(tensor.Float64, []int{len(data)},
		tensor.WithBacking(data))
	return G.NewVector(g, tensor.Float64, G.WithShape(len(data)),
		G.WithName(name), G.WithValue(backing))
}

// matNode returns a new rows x cols matrix node in graph g holding
// data in row-major order
func matNode(g *G.ExprGraph, name string, rows, cols int,
	data []float64) *G.Node {
	backing := tensor.NewDense(tensor.Float64, []int{rows, cols},
		tensor.WithBacking(data))
	return G.NewMatrix(g, tensor.Float64, G.WithShape(rows, cols),
		G.WithName(name), G.WithValue(backing))
}

// TestClip ensures that values are clipped to the clipping range,
// including values that fall exactly on the range's boundaries.
func TestClip(t *testing.T) {
	g := G.NewGraph()
	input := vecNode(g, "input", []float64{-2.0, 0.8, 0.9, 1.0, 1.2, 1.5,
		3.0})

	clipped, err := op.Clip(input, 0.8, 1.2)
	if err != nil {
		t.Fatalf("could not clip node: %v", err)
	}
	var clippedVal G.Value
	G.Read(clipped, &clippedVal)

	vm := G.NewTapeMachine(g)
	if err := vm.RunAll(); err != nil {
		t.Fatalf("could not run graph: %v", err)
	}

	expected := []float64{0.8, 0.8, 0.9, 1.0, 1.2, 1.2, 1.2}
	out := clippedVal.Data().([]float64)
	for i := range expected {
		if math.Abs(out[i]-expected[i]) > tolerance {
			t.Errorf("incorrect clipped value at index %d \n\twant(%v)"+
				"\n\thave(%v)", i, expected[i], out[i])
		}
	}
}

func TestMin(t *testing.T) {
	g := G.NewGraph()
	a := vecNode(g, "a", []float64{1.0, -2.0, 3.0, 0.5})
	b := vecNode(g, "b", []float64{1.0, -1.0, 2.0, 0.75})

	min, err := op.Min(a, b)
	if err != nil {
		t.Fatalf("could not compute min of nodes: %v", err)
	}
	var minVal G.Value
	G.Read(min, &minVal)

	vm := G.NewTapeMachine(g)
	if err := vm.RunAll(); err != nil {
		t.Fatalf("could not run graph: %v", err)
	}

	expected := []float64{1.0, -2.0, 2.0, 0.5}
	out := minVal.Data().([]float64)
	for i := range expected {
		if math.Abs(out[i]-expected[i]) > tolerance {
			t.Errorf("incorrect min value at index %d \n\twant(%v)"+
				"\n\thave(%v)", i, expected[i], out[i])
		}
	}
}

func TestMax(t *testing.T) {
	g := G.NewGraph()
	a := vecNode(g, "a", []float64{1.0, -2.0, 3.0, 0.5})
	b := vecNode(g, "b", []float64{1.0, -1.0, 2.0, 0.75})

	max, err := op.Max(a, b)
	if err != nil {
		t.Fatalf("could not compute max of nodes: %v", err)
	}
	var maxVal G.Value
	G.Read(max, &maxVal)

	vm := G.NewTapeMachine(g)
	if err := vm.RunAll(); err != nil {
		t.Fatalf("could not run graph: %v", err)
	}

	expected := []float64{1.0, -1.0, 3.0, 0.75}
	out := maxVal.Data().([]float64)
	for i := range expected {
		if math.Abs(out[i]-expected[i]) > tolerance {
			t.Errorf("incorrect max value at index %d \n\twant(%v)"+
				"\n\thave(%v)", i, expected[i], out[i])
		}
	}
}

// TestGaussianLogPdf ensures that the log density of a batch of
// multi-dimensional actions matches the log density computed
// dimension-by-dimension outside the computational graph.
func TestGaussianLogPdf(t *testing.T) {
	const batch, dims int = 2, 3
	g := G.NewGraph()

	meanData := []float64{0.5, -1.0, 2.0, 0.0, 1.5, -0.25}
	stdData := []float64{1.0, 0.5, 2.0, 1.5, 0.1, 3.0}
	actionData := []float64{0.75, -0.5, 1.0, -1.0, 1.45, 0.5}

	mean := matNode(g, "mean", batch, dims, meanData)
	std := matNode(g, "std", batch, dims, stdData)
	actions := matNode(g, "actions", batch, dims, actionData)

	logPdf := op.GaussianLogPdf(mean, std, actions)
	var logPdfVal G.Value
	G.Read(logPdf, &logPdfVal)

	vm := G.NewTapeMachine(g)
	if err := vm.RunAll(); err != nil {
		t.Fatalf("could not run graph: %v", err)
	}

	out := logPdfVal.Data().([]float64)
	if len(out) != batch {
		t.Fatalf("incorrect number of log densities \n\twant(%v)"+
			"\n\thave(%v)", batch, len(out))
	}
	for i := 0; i < batch; i++ {
		expected := 0.0
		for j := 0; j < dims; j++ {
			z := (actionData[i*dims+j] - meanData[i*dims+j]) /
				stdData[i*dims+j]
			expected += -0.5*z*z - math.Log(stdData[i*dims+j]) -
				math.Log(math.Sqrt(2*math.Pi))
		}

		if math.Abs(out[i]-expected) > tolerance {
			t.Errorf("incorrect log density for sample %d \n\twant(%v)"+
				"\n\thave(%v)", i, expected, out[i])
		}
	}
}

func TestGaussianEntropy(t *testing.T) {
	const batch, dims int = 2, 2
	g := G.NewGraph()

	stdData := []float64{1.0, 0.5, 2.0, 0.25}
	std := matNode(g, "std", batch, dims, stdData)

	entropy := op.GaussianEntropy(std)
	var entropyVal G.Value
	G.Read(entropy, &entropyVal)

	vm := G.NewTapeMachine(g)
	if err := vm.RunAll(); err != nil {
		t.Fatalf("could not run graph: %v", err)
	}

	out := entropyVal.Data().([]float64)
	for i := 0; i < batch; i++ {
		expected := float64(dims) / 2.0 * (1.0 + math.Log(2*math.Pi))
		for j := 0; j < dims; j++ {
			expected += math.Log(stdData[i*dims+j])
		}

		if math.Abs(out[i]-expected) > tolerance {
			t.Errorf("incorrect entropy for sample %d \n\twant(%v)"+
				"\n\thave(%v)", i, expected, out[i])
		}
	}
}
