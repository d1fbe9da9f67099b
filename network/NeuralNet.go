// Package network implements feed forward neural networks on Gorgonia
// computational graphs.
package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// NeuralNet is a neural network whose forward pass has been added to
// a computational graph. Running a VM over Graph() after SetInput()
// computes Prediction().
type NeuralNet interface {
	Graph() *G.ExprGraph
	BatchSize() int
	Features() int
	Outputs() int
	SetInput([]float64) error
	Learnables() G.Nodes
	Model() []G.ValueGrad
	Output() G.Value
	Prediction() *G.Node
	Clone() (NeuralNet, error)
}

// Set sets the weights of dest to be equal to the weights of source.
// Both networks must have the same architecture, but may live on
// different graphs and have different batch sizes.
func Set(dest, source NeuralNet) error {
	sourceNodes := source.Learnables()
	nodes := dest.Learnables()
	if len(nodes) != len(sourceNodes) {
		return fmt.Errorf("set: networks have different numbers of "+
			"learnables \n\twant(%v) \n\thave(%v)", len(nodes),
			len(sourceNodes))
	}

	for i := range nodes {
		weights, ok := sourceNodes[i].Value().(*tensor.Dense)
		if !ok {
			return fmt.Errorf("set: learnable %v has no dense value",
				sourceNodes[i].Name())
		}
		if err := G.Let(nodes[i], weights.Clone().(*tensor.Dense)); err != nil {
			return fmt.Errorf("set: could not set learnable %v: %v",
				nodes[i].Name(), err)
		}
	}
	return nil
}
