package ppo

import (
	"fmt"

	"github.com/samuelfneumann/fuzzppo/network"
	"github.com/samuelfneumann/fuzzppo/utils/op"
	"gonum.org/v1/gonum/stat/distuv"
	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// categorical is a softmax policy over a discrete set of actions whose
// logits are predicted by an MLP. Like stateValue, it keeps a training
// copy of its network carrying the clipped surrogate loss and an
// inference copy used to compute action probabilities.
type categorical struct {
	net      network.NeuralNet
	vm       G.VM
	probs    *G.Node
	probsVal G.Value

	trainNet      network.NeuralNet
	trainVM       G.VM
	actionIndices *G.Node
	oldProbs      *G.Node
	advantages    *G.Node
	ratio         *G.Node
	ratioVal      G.Value
	lossVal       G.Value
	solver        G.Solver

	numActions int
	src        rand.Source
}

func newCategorical(features, actions int, hidden []int, clip float64,
	init G.InitWFn, biasInit network.BiasInitWFn, solver G.Solver,
	seed uint64) (*categorical, error) {
	biases, activations := hiddenLayers(hidden)

	trainNet, err := network.NewMultiHeadMLP(features, 1, actions,
		G.NewGraph(), hidden, biases, init, biasInit, activations)
	if err != nil {
		return nil, fmt.Errorf("newCategorical: could not create policy "+
			"network: %v", err)
	}
	g := trainNet.Graph()
	c := &categorical{
		trainNet:   trainNet,
		solver:     solver,
		numActions: actions,
		src:        rand.NewSource(seed),
	}

	// Probability of the action selected at the previous step under
	// the policy being trained
	logits := trainNet.Prediction()
	c.actionIndices = G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(logits.Shape()...),
		G.WithName("ActionIndices"),
		G.WithInit(G.Zeroes()),
	)
	probNew := G.Must(G.HadamardProd(c.actionIndices, op.Softmax(logits)))
	probNew = G.Must(G.Sum(probNew, 1))

	// Old probabilities arrive already offset by ratioEps
	c.oldProbs = G.NewVector(
		g,
		tensor.Float64,
		G.WithShape(probNew.Shape()...),
		G.WithName("OldProbabilities"),
		G.WithInit(G.Ones()),
	)
	c.advantages = G.NewVector(
		g,
		tensor.Float64,
		G.WithShape(probNew.Shape()...),
		G.WithName("Advantages"),
		G.WithInit(G.Zeroes()),
	)
	c.ratio = G.Must(G.HadamardDiv(probNew, c.oldProbs))
	G.Read(c.ratio, &c.ratioVal)

	surr1 := G.Must(G.HadamardProd(c.ratio, c.advantages))
	clipped, err := op.Clip(c.ratio, 1-clip, 1+clip)
	if err != nil {
		return nil, fmt.Errorf("newCategorical: could not clip ratio: %v",
			err)
	}
	surr2 := G.Must(G.HadamardProd(clipped, c.advantages))
	surr, err := op.Min(surr1, surr2)
	if err != nil {
		return nil, fmt.Errorf("newCategorical: could not compute "+
			"surrogate: %v", err)
	}
	loss := G.Must(G.Neg(G.Must(G.Mean(surr))))
	G.Read(loss, &c.lossVal)

	if _, err := G.Grad(loss, trainNet.Learnables()...); err != nil {
		return nil, fmt.Errorf("newCategorical: could not compute the "+
			"policy gradient: %v", err)
	}
	c.trainVM = G.NewTapeMachine(g,
		G.BindDualValues(trainNet.Learnables()...))

	// Inference copy
	if c.net, err = trainNet.Clone(); err != nil {
		return nil, fmt.Errorf("newCategorical: could not create "+
			"inference network: %v", err)
	}
	c.probs = op.Softmax(c.net.Prediction())
	G.Read(c.probs, &c.probsVal)
	c.vm = G.NewTapeMachine(c.net.Graph())

	return c, nil
}

// Probabilities returns the action probabilities in a state. The
// returned slice is owned by the caller.
func (c *categorical) Probabilities(state []float64) ([]float64, error) {
	if err := c.net.SetInput(state); err != nil {
		return nil, fmt.Errorf("probabilities: %v", err)
	}
	defer c.vm.Reset()
	if err := c.vm.RunAll(); err != nil {
		return nil, fmt.Errorf("probabilities: %v", err)
	}
	probs := c.probsVal.Data().([]float64)
	return append([]float64(nil), probs...), nil
}

// Sample draws an action from a categorical distribution over probs
func (c *categorical) Sample(probs []float64) int {
	dist := distuv.NewCategorical(probs, c.src)
	return int(dist.Rand())
}

// Train takes a single gradient step on the negated clipped surrogate
// objective for taking action in state, given the probability of the
// action before the update and the advantage of the transition. Train
// returns the probability ratio and loss before the step.
func (c *categorical) Train(state []float64, action int, probOld,
	advantage float64) (ratio, loss float64, err error) {
	if action < 0 || action >= c.numActions {
		return 0, 0, fmt.Errorf("train: action %v out of range [0, %v)",
			action, c.numActions)
	}
	if err := c.trainNet.SetInput(state); err != nil {
		return 0, 0, fmt.Errorf("train: %v", err)
	}

	indices := make([]float64, c.numActions)
	indices[action] = 1.0
	lets := []struct {
		node  *G.Node
		value []float64
	}{
		{c.actionIndices, indices},
		{c.oldProbs, []float64{probOld + ratioEps}},
		{c.advantages, []float64{advantage}},
	}
	for _, l := range lets {
		t := tensor.NewDense(tensor.Float64, l.node.Shape(),
			tensor.WithBacking(l.value))
		if err := G.Let(l.node, t); err != nil {
			return 0, 0, fmt.Errorf("train: could not set %v: %v",
				l.node.Name(), err)
		}
	}

	if err := c.trainVM.RunAll(); err != nil {
		c.trainVM.Reset()
		return 0, 0, fmt.Errorf("train: %v", err)
	}
	ratio = scalar(c.ratioVal)
	loss = scalar(c.lossVal)

	if err := c.solver.Step(c.trainNet.Model()); err != nil {
		c.trainVM.Reset()
		return 0, 0, fmt.Errorf("train: could not step solver: %v", err)
	}
	c.trainVM.Reset()

	if err := network.Set(c.net, c.trainNet); err != nil {
		return 0, 0, fmt.Errorf("train: could not synchronise inference "+
			"network: %v", err)
	}
	return ratio, loss, nil
}

// Close closes both VMs
func (c *categorical) Close() error {
	if err := c.vm.Close(); err != nil {
		return err
	}
	return c.trainVM.Close()
}
