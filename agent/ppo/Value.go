package ppo

import (
	"fmt"

	"github.com/samuelfneumann/fuzzppo/network"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// stateValue is a state value function approximated by an MLP. A
// training copy of the network carries the MSE loss and its gradient,
// while an inference copy on a separate graph is used for prediction
// and is synchronised after every update.
type stateValue struct {
	net network.NeuralNet
	vm  G.VM

	trainNet network.NeuralNet
	trainVM  G.VM
	targets  *G.Node
	loss     *G.Node
	lossVal  G.Value
	solver   G.Solver
}

func newStateValue(features int, hidden []int, init G.InitWFn,
	biasInit network.BiasInitWFn, solver G.Solver) (*stateValue, error) {
	biases, activations := hiddenLayers(hidden)

	trainNet, err := network.NewSingleHeadMLP(features, 1, G.NewGraph(),
		hidden, biases, init, biasInit, activations)
	if err != nil {
		return nil, fmt.Errorf("newStateValue: could not create value "+
			"network: %v", err)
	}

	targets := G.NewMatrix(
		trainNet.Graph(),
		tensor.Float64,
		G.WithShape(trainNet.Prediction().Shape()...),
		G.WithName("ValueFunctionUpdateTarget"),
		G.WithInit(G.Zeroes()),
	)
	loss := G.Must(G.Sub(trainNet.Prediction(), targets))
	loss = G.Must(G.Square(loss))
	loss = G.Must(G.Mean(loss))

	v := &stateValue{
		trainNet: trainNet,
		targets:  targets,
		loss:     loss,
		solver:   solver,
	}
	G.Read(loss, &v.lossVal)

	if _, err := G.Grad(loss, trainNet.Learnables()...); err != nil {
		return nil, fmt.Errorf("newStateValue: could not compute value "+
			"function gradient: %v", err)
	}
	v.trainVM = G.NewTapeMachine(trainNet.Graph(),
		G.BindDualValues(trainNet.Learnables()...))

	if v.net, err = trainNet.Clone(); err != nil {
		return nil, fmt.Errorf("newStateValue: could not create inference "+
			"network: %v", err)
	}
	v.vm = G.NewTapeMachine(v.net.Graph())

	return v, nil
}

// Predict returns the value of a state. Predict never changes the
// weights of the value function.
func (v *stateValue) Predict(state []float64) (float64, error) {
	if err := v.net.SetInput(state); err != nil {
		return 0, fmt.Errorf("predict: %v", err)
	}
	defer v.vm.Reset()
	if err := v.vm.RunAll(); err != nil {
		return 0, fmt.Errorf("predict: %v", err)
	}
	return v.net.Output().Data().([]float64)[0], nil
}

// Train takes a single gradient step on (v(state) - target)² and
// returns the value of state and the loss before the step.
func (v *stateValue) Train(state []float64, target float64) (value,
	loss float64, err error) {
	if err := v.trainNet.SetInput(state); err != nil {
		return 0, 0, fmt.Errorf("train: %v", err)
	}
	targetTensor := tensor.NewDense(
		tensor.Float64,
		v.targets.Shape(),
		tensor.WithBacking([]float64{target}),
	)
	if err := G.Let(v.targets, targetTensor); err != nil {
		return 0, 0, fmt.Errorf("train: could not set target: %v", err)
	}

	if err := v.trainVM.RunAll(); err != nil {
		v.trainVM.Reset()
		return 0, 0, fmt.Errorf("train: %v", err)
	}
	value = v.trainNet.Output().Data().([]float64)[0]
	loss = scalar(v.lossVal)

	if err := v.solver.Step(v.trainNet.Model()); err != nil {
		v.trainVM.Reset()
		return 0, 0, fmt.Errorf("train: could not step solver: %v", err)
	}
	v.trainVM.Reset()

	if err := network.Set(v.net, v.trainNet); err != nil {
		return 0, 0, fmt.Errorf("train: could not synchronise inference "+
			"network: %v", err)
	}
	return value, loss, nil
}

// Close closes both VMs
func (v *stateValue) Close() error {
	if err := v.vm.Close(); err != nil {
		return err
	}
	return v.trainVM.Close()
}

// hiddenLayers returns the bias flags and ReLU activations for hidden
// layers of the given sizes
func hiddenLayers(hidden []int) ([]bool, []*network.Activation) {
	biases := make([]bool, len(hidden))
	activations := make([]*network.Activation, len(hidden))
	for i := range hidden {
		biases[i] = true
		activations[i] = network.ReLU()
	}
	return biases, activations
}

// scalar returns the float64 held by a scalar or single element Value
func scalar(v G.Value) float64 {
	switch data := v.Data().(type) {
	case float64:
		return data
	case []float64:
		return data[0]
	default:
		panic(fmt.Sprintf("scalar: unexpected value type %T", data))
	}
}
