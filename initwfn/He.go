package initwfn

import (
	"math"

	G "gorgonia.org/gorgonia"
	"gonum.org/v1/gonum/stat/distuv"
	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"
)

// HeUConfig configures He uniform initialization, suited to ReLU
// layers. Weights are drawn from U(-a, a) with a = Gain·√(6 / fanIn).
type HeUConfig struct {
	Gain float64
	Seed uint64
}

// NewHeU returns a new seeded He uniform weight initializer
func NewHeU(gain float64, seed uint64) (*InitWFn, error) {
	return newInitWFn(HeUConfig{Gain: gain, Seed: seed})
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (h HeUConfig) Type() Type {
	return HeU
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (h HeUConfig) Create() G.InitWFn {
	src := rand.NewSource(h.Seed)
	return func(dt tensor.Dtype, s ...int) interface{} {
		fanIn, _ := fans(s...)
		bound := h.Gain * math.Sqrt(6/float64(fanIn))
		return sample(distuv.Uniform{Min: -bound, Max: bound, Src: src},
			dt, s...)
	}
}

func (h HeUConfig) withSeed(seed uint64) Config {
	h.Seed = seed
	return h
}

// HeNConfig configures He normal initialization. Weights are drawn
// from N(0, σ²) with σ = Gain·√(2 / fanIn).
type HeNConfig struct {
	Gain float64
	Seed uint64
}

// NewHeN returns a new seeded He normal weight initializer
func NewHeN(gain float64, seed uint64) (*InitWFn, error) {
	return newInitWFn(HeNConfig{Gain: gain, Seed: seed})
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (h HeNConfig) Type() Type {
	return HeN
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (h HeNConfig) Create() G.InitWFn {
	src := rand.NewSource(h.Seed)
	return func(dt tensor.Dtype, s ...int) interface{} {
		fanIn, _ := fans(s...)
		sigma := h.Gain * math.Sqrt(2/float64(fanIn))
		return sample(distuv.Normal{Mu: 0, Sigma: sigma, Src: src}, dt, s...)
	}
}

func (h HeNConfig) withSeed(seed uint64) Config {
	h.Seed = seed
	return h
}
