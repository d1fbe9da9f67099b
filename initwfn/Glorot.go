package initwfn

import (
	"math"

	G "gorgonia.org/gorgonia"
	"gonum.org/v1/gonum/stat/distuv"
	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"
)

// GlorotUConfig configures Glorot uniform initialization. Weights are
// drawn from U(-a, a) with a = Gain·√(6 / (fanIn + fanOut)).
type GlorotUConfig struct {
	Gain float64
	Seed uint64
}

// NewGlorotU returns a new seeded Glorot uniform weight initializer
func NewGlorotU(gain float64, seed uint64) (*InitWFn, error) {
	return newInitWFn(GlorotUConfig{Gain: gain, Seed: seed})
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (g GlorotUConfig) Type() Type {
	return GlorotU
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (g GlorotUConfig) Create() G.InitWFn {
	src := rand.NewSource(g.Seed)
	return func(dt tensor.Dtype, s ...int) interface{} {
		fanIn, fanOut := fans(s...)
		bound := g.Gain * math.Sqrt(6/float64(fanIn+fanOut))
		return sample(distuv.Uniform{Min: -bound, Max: bound, Src: src},
			dt, s...)
	}
}

func (g GlorotUConfig) withSeed(seed uint64) Config {
	g.Seed = seed
	return g
}

// GlorotNConfig configures Glorot normal initialization. Weights are
// drawn from N(0, σ²) with σ = Gain·√(2 / (fanIn + fanOut)).
type GlorotNConfig struct {
	Gain float64
	Seed uint64
}

// NewGlorotN returns a new seeded Glorot normal weight initializer
func NewGlorotN(gain float64, seed uint64) (*InitWFn, error) {
	return newInitWFn(GlorotNConfig{Gain: gain, Seed: seed})
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (g GlorotNConfig) Type() Type {
	return GlorotN
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (g GlorotNConfig) Create() G.InitWFn {
	src := rand.NewSource(g.Seed)
	return func(dt tensor.Dtype, s ...int) interface{} {
		fanIn, fanOut := fans(s...)
		sigma := g.Gain * math.Sqrt(2/float64(fanIn+fanOut))
		return sample(distuv.Normal{Mu: 0, Sigma: sigma, Src: src}, dt, s...)
	}
}

func (g GlorotNConfig) withSeed(seed uint64) Config {
	g.Seed = seed
	return g
}
