package ort

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/go-dnn-parity/internal/device"
	"github.com/example/go-dnn-parity/internal/graph"
	"github.com/example/go-dnn-parity/internal/tensor"
)

// GraphEngine exposes ONNX Runtime through the unified graph API. It shares
// the bootstrapped runtime with the vendor-side Backend but opens its own
// session per forward pass.
type GraphEngine struct {
	rt *Runtime
}

// NewGraphEngine creates the reference-side adapter over a bootstrapped
// runtime.
func NewGraphEngine(rt *Runtime) *GraphEngine {
	return &GraphEngine{rt: rt}
}

// LoadNetwork implements graph.Loader.
func (e *GraphEngine) LoadNetwork(topologyPath, weightsPath string) (graph.Network, error) {
	topo, err := ParseTopology(topologyPath)
	if err != nil {
		return nil, err
	}

	if err := statWeights(weightsPath); err != nil {
		return nil, fmt.Errorf("ort: %w", err)
	}

	return &graphNetwork{
		rt:          e.rt,
		topo:        topo,
		weightsPath: weightsPath,
		inputs:      make(map[string][]float32),
	}, nil
}

type graphNetwork struct {
	rt          *Runtime
	topo        *Topology
	weightsPath string

	inputs    map[string][]float32
	targetSet bool
}

func (n *graphNetwork) SetInput(name string, v tensor.View) error {
	decl, ok := n.topo.inputShape(name)
	if !ok {
		return fmt.Errorf("ort: network has no input %q", name)
	}

	if !v.Shape.Equal(decl) {
		return fmt.Errorf("ort: input %q shape %v does not match declared %v", name, v.Shape, decl)
	}

	n.inputs[name] = v.Data

	return nil
}

// SetTarget accepts CPU only; the graph engine has no accelerator providers.
func (n *graphNetwork) SetTarget(t device.Target) error {
	if t != device.TargetCPU {
		return fmt.Errorf("ort: graph engine executes on CPU only, not %s", t)
	}

	n.targetSet = true

	return nil
}

func (n *graphNetwork) LayerNames() []string {
	return n.topo.LayerNames()
}

func (n *graphNetwork) UnconnectedOutLayers() []int {
	return n.topo.OutLayerIndices()
}

// Forward opens a session, runs it once and returns one tensor per requested
// output. The session closes before Forward returns.
func (n *graphNetwork) Forward(ctx context.Context, outputs []string) ([]*tensor.Tensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !n.targetSet {
		return nil, errors.New("ort: no target selected")
	}

	for name := range n.topo.inputShapes() {
		if _, ok := n.inputs[name]; !ok {
			return nil, fmt.Errorf("ort: input %q not bound", name)
		}
	}

	sess, err := n.rt.openSession(n.topo, n.weightsPath)
	if err != nil {
		return nil, err
	}
	defer sess.close()

	results, err := sess.run(ctx, n.inputs)
	if err != nil {
		return nil, err
	}

	out := make([]*tensor.Tensor, 0, len(outputs))
	for _, name := range outputs {
		t, ok := results[name]
		if !ok {
			return nil, fmt.Errorf("ort: model produced no output %q", name)
		}

		out = append(out, t)
	}

	return out, nil
}
