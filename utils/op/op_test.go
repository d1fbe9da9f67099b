package op

import (
	"math"
	"testing"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func run(t *testing.T, g *G.ExprGraph) {
	t.Helper()
	vm := G.NewTapeMachine(g)
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		t.Fatal(err)
	}
}

func vector(g *G.ExprGraph, name string, data ...float64) *G.Node {
	return G.NewVector(g, tensor.Float64, G.WithShape(len(data)),
		G.WithName(name), G.WithValue(tensor.New(tensor.WithBacking(data))))
}

func TestClipIncludesBounds(t *testing.T) {
	g := G.NewGraph()
	x := vector(g, "x", 0.5, 0.8, 1.0, 1.2, 1.5)
	clipped, err := Clip(x, 0.8, 1.2)
	if err != nil {
		t.Fatal(err)
	}
	var val G.Value
	G.Read(clipped, &val)
	run(t, g)

	want := []float64{0.8, 0.8, 1.0, 1.2, 1.2}
	have := val.Data().([]float64)
	for i := range want {
		if math.Abs(want[i]-have[i]) > 1e-12 {
			t.Errorf("element %d: want(%v) have(%v)", i, want[i], have[i])
		}
	}
}

func TestMin(t *testing.T) {
	g := G.NewGraph()
	a := vector(g, "a", 1, -2, 3)
	b := vector(g, "b", 2, -3, 3)
	min, err := Min(a, b)
	if err != nil {
		t.Fatal(err)
	}
	var val G.Value
	G.Read(min, &val)
	run(t, g)

	want := []float64{1, -3, 3}
	have := val.Data().([]float64)
	for i := range want {
		if want[i] != have[i] {
			t.Errorf("element %d: want(%v) have(%v)", i, want[i], have[i])
		}
	}
}

func TestSoftmaxLargeLogits(t *testing.T) {
	g := G.NewGraph()
	logits := G.NewMatrix(g, tensor.Float64, G.WithShape(1, 4),
		G.WithName("logits"), G.WithValue(tensor.New(
			tensor.WithShape(1, 4),
			tensor.WithBacking([]float64{1000, 1000, 0, -1000}),
		)))
	probs := Softmax(logits)
	var val G.Value
	G.Read(probs, &val)
	run(t, g)

	have := val.Data().([]float64)
	want := []float64{0.5, 0.5, 0, 0}
	for i := range want {
		if math.IsNaN(have[i]) || math.Abs(want[i]-have[i]) > 1e-9 {
			t.Errorf("element %d: want(%v) have(%v)", i, want[i], have[i])
		}
	}
}
