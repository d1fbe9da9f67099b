package network

import (
	G "gorgonia.org/gorgonia"
)

// Activation is an element-wise function applied to the output of a
// fully connected layer
type Activation struct {
	name string
	f    func(x *G.Node) (*G.Node, error)
}

func (a *Activation) fwd(x *G.Node) (*G.Node, error) {
	return a.f(x)
}

// String implements the fmt.Stringer interface
func (a *Activation) String() string {
	return a.name
}

// Identity returns the activation of output layers, which leaves its
// input unchanged
func Identity() *Activation {
	return &Activation{
		name: "identity",
		f: func(x *G.Node) (*G.Node, error) {
			return x, nil
		},
	}
}

// ReLU returns a rectified linear activation
func ReLU() *Activation {
	return &Activation{name: "relu", f: G.Rectify}
}
