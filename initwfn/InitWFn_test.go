package initwfn

import (
	"encoding/json"
	"math"
	"testing"

	"gorgonia.org/tensor"
)

func TestFanInUBounds(t *testing.T) {
	init, err := NewFanInU(7)
	if err != nil {
		t.Fatal(err)
	}

	fanIn, fanOut := 16, 64
	weights := init.InitWFn()(tensor.Float64, fanIn, fanOut).([]float64)
	if len(weights) != fanIn*fanOut {
		t.Fatalf("size: want(%v) have(%v)", fanIn*fanOut, len(weights))
	}

	bound := 1 / math.Sqrt(float64(fanIn))
	for i, w := range weights {
		if w < -bound || w > bound {
			t.Fatalf("weight %d: %v outside [-%v, %v]", i, w, bound, bound)
		}
	}
}

func TestSeededIsDeterministic(t *testing.T) {
	init, err := New(FanInU, 0)
	if err != nil {
		t.Fatal(err)
	}

	a := init.Seeded(42)(tensor.Float64, 8, 4).([]float64)
	b := init.Seeded(42)(tensor.Float64, 8, 4).([]float64)
	c := init.Seeded(43)(tensor.Float64, 8, 4).([]float64)

	same := true
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("weight %d: same seed gave %v and %v", i, a[i], b[i])
		}
		same = same && a[i] == c[i]
	}
	if same {
		t.Error("different seeds gave identical weights")
	}
}

func TestUniformRejectsEmptyRange(t *testing.T) {
	if _, err := NewUniform(1, 1, 0); err == nil {
		t.Error("expected error for empty range")
	}

	init, err := NewUniform(-0.5, 0.5, 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range init.InitWFn()(tensor.Float32, 10).([]float32) {
		if w < -0.5 || w > 0.5 {
			t.Fatalf("weight %v outside [-0.5, 0.5]", w)
		}
	}
}

func TestInitWFnJSON(t *testing.T) {
	init, err := NewFanInU(11)
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(init)
	if err != nil {
		t.Fatal(err)
	}

	var decoded InitWFn
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Type != FanInU {
		t.Errorf("type: want(%v) have(%v)", FanInU, decoded.Type)
	}
	if decoded.Config != init.Config {
		t.Errorf("config: want(%+v) have(%+v)", init.Config, decoded.Config)
	}
	if decoded.InitWFn() == nil {
		t.Error("decoded InitWFn was not created")
	}

	if _, err := New("Orthogonal", 0); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestScaledInitializersAreSeeded(t *testing.T) {
	for _, ty := range []Type{GlorotU, GlorotN, HeU, HeN} {
		init, err := New(ty, 0)
		if err != nil {
			t.Fatalf("%v: %v", ty, err)
		}

		a := init.Seeded(5)(tensor.Float64, 8, 64).([]float64)
		b := init.Seeded(5)(tensor.Float64, 8, 64).([]float64)
		c := init.Seeded(6)(tensor.Float64, 8, 64).([]float64)
		if len(a) != 8*64 {
			t.Fatalf("%v size: want(%v) have(%v)", ty, 8*64, len(a))
		}
		same := true
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("%v weight %d: same seed gave %v and %v", ty, i,
					a[i], b[i])
			}
			same = same && a[i] == c[i]
		}
		if same {
			t.Errorf("%v: different seeds gave identical weights", ty)
		}
	}
}

func TestUniformScaledBounds(t *testing.T) {
	fanIn, fanOut := 8, 64

	glorot, err := NewGlorotU(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	bound := math.Sqrt(6 / float64(fanIn+fanOut))
	for _, w := range glorot.InitWFn()(tensor.Float64, fanIn, fanOut).([]float64) {
		if math.Abs(w) > bound {
			t.Fatalf("glorot weight %v outside ±%v", w, bound)
		}
	}

	he, err := NewHeU(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	bound = math.Sqrt(6 / float64(fanIn))
	for _, w := range he.InitWFn()(tensor.Float64, fanIn, fanOut).([]float64) {
		if math.Abs(w) > bound {
			t.Fatalf("he weight %v outside ±%v", w, bound)
		}
	}
}

func TestFanInBias(t *testing.T) {
	biasInit := FanInBias(9)
	for _, fanIn := range []int{8, 64} {
		biases := biasInit(fanIn)(tensor.Float64, 1, 64).([]float64)
		if len(biases) != 64 {
			t.Fatalf("size: want(64) have(%v)", len(biases))
		}

		bound := 1 / math.Sqrt(float64(fanIn))
		nonZero := false
		for _, b := range biases {
			if math.Abs(b) > bound {
				t.Fatalf("fan in %v: bias %v outside ±%v", fanIn, b, bound)
			}
			nonZero = nonZero || b != 0
		}
		if !nonZero {
			t.Errorf("fan in %v: all biases are zero", fanIn)
		}
	}

	a := FanInBias(9)(4)(tensor.Float64, 1, 3).([]float64)
	b := FanInBias(9)(4)(tensor.Float64, 1, 3).([]float64)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("bias %d: same seed gave %v and %v", i, a[i], b[i])
		}
	}
}
