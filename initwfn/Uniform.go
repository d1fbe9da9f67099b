package initwfn

import (
	"fmt"
	"math"

	G "gorgonia.org/gorgonia"
	"gonum.org/v1/gonum/stat/distuv"
	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"
)

// UniformConfig implements a configuration of a weight initializer that
// draws weights from a uniform distribution with a seeded source
type UniformConfig struct {
	Low, High float64
	Seed      uint64
}

// NewUniform returns a new uniform weight initializer
func NewUniform(low, high float64, seed uint64) (*InitWFn, error) {
	if low >= high {
		return nil, fmt.Errorf("newUniform: low (%v) must be less than "+
			"high (%v)", low, high)
	}
	config := UniformConfig{
		Low:  low,
		High: high,
		Seed: seed,
	}

	return newInitWFn(config)
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (u UniformConfig) Type() Type {
	return Uniform
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (u UniformConfig) Create() G.InitWFn {
	src := rand.NewSource(u.Seed)
	return func(dt tensor.Dtype, s ...int) interface{} {
		dist := distuv.Uniform{Min: u.Low, Max: u.High, Src: src}
		return sample(dist, dt, s...)
	}
}

func (u UniformConfig) withSeed(seed uint64) Config {
	u.Seed = seed
	return u
}

// FanInUConfig implements a configuration of a weight initializer that
// draws each weight from U(-1/√fanIn, 1/√fanIn), where fanIn is the
// number of inputs to the layer.
type FanInUConfig struct {
	Seed uint64
}

// NewFanInU returns a new fan-in uniform weight initializer
func NewFanInU(seed uint64) (*InitWFn, error) {
	return newInitWFn(FanInUConfig{Seed: seed})
}

// Type returns the type of initialization algorithm described by
// the configuration.
func (f FanInUConfig) Type() Type {
	return FanInU
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn. Weight matrices are (fanIn, fanOut).
func (f FanInUConfig) Create() G.InitWFn {
	src := rand.NewSource(f.Seed)
	return func(dt tensor.Dtype, s ...int) interface{} {
		fanIn, _ := fans(s...)
		bound := 1 / math.Sqrt(float64(fanIn))
		dist := distuv.Uniform{Min: -bound, Max: bound, Src: src}
		return sample(dist, dt, s...)
	}
}

func (f FanInUConfig) withSeed(seed uint64) Config {
	f.Seed = seed
	return f
}

// FanInBias returns a bias initializer drawing each bias of a layer
// with fanIn inputs from U(-1/√fanIn, 1/√fanIn). All layers draw from
// a single source seeded with seed.
func FanInBias(seed uint64) func(fanIn int) G.InitWFn {
	src := rand.NewSource(seed)
	return func(fanIn int) G.InitWFn {
		if fanIn < 1 {
			fanIn = 1
		}
		bound := 1 / math.Sqrt(float64(fanIn))
		return func(dt tensor.Dtype, s ...int) interface{} {
			dist := distuv.Uniform{Min: -bound, Max: bound, Src: src}
			return sample(dist, dt, s...)
		}
	}
}

// fans returns the number of inputs and outputs of a layer whose
// weights have shape s. Weight matrices are (fanIn, fanOut) and a
// vector is treated as a single row.
func fans(s ...int) (fanIn, fanOut int) {
	switch len(s) {
	case 0:
		return 1, 1
	case 1:
		return 1, s[0]
	}
	fanOut = 1
	for _, v := range s[1:] {
		fanOut *= v
	}
	if s[0] < 1 {
		return 1, fanOut
	}
	return s[0], fanOut
}

// sample draws enough values from dist to fill a tensor of shape s
func sample(dist distuv.Rander, dt tensor.Dtype, s ...int) interface{} {
	size := tensor.Shape(s).TotalSize()

	switch dt {
	case tensor.Float64:
		retVal := make([]float64, size)
		for i := range retVal {
			retVal[i] = dist.Rand()
		}
		return retVal

	case tensor.Float32:
		retVal := make([]float32, size)
		for i := range retVal {
			retVal[i] = float32(dist.Rand())
		}
		return retVal

	default:
		panic(fmt.Sprintf("Dtype of %v not yet implemented for weight "+
			"initialization", dt))
	}
}
