package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/go-dnn-parity/internal/device"
	"github.com/example/go-dnn-parity/internal/graph"
	"github.com/example/go-dnn-parity/internal/tensor"
)

// LoadNetwork implements graph.Loader. The weights stem must match the
// topology stem, mirroring how the registry lays model pairs out on disk.
func (e *Engine) LoadNetwork(topologyPath, weightsPath string) (graph.Network, error) {
	spec, name, err := lookupSpec(topologyPath)
	if err != nil {
		return nil, err
	}

	if w := modelNameFromPath(weightsPath); w != name {
		return nil, fmt.Errorf("sim: weights %q do not match topology %q", w, name)
	}

	return &graphNetwork{
		engine: e,
		spec:   spec,
		model:  name,
		inputs: make(map[string][]float32),
	}, nil
}

type graphNetwork struct {
	engine *Engine
	spec   networkSpec
	model  string

	inputs    map[string][]float32
	target    device.Target
	targetSet bool
}

func (n *graphNetwork) SetInput(name string, v tensor.View) error {
	decl, ok := n.spec.inputs[name]
	if !ok {
		return fmt.Errorf("sim: network has no input %q", name)
	}

	if !v.Shape.Equal(decl) {
		return fmt.Errorf("sim: input %q shape %v does not match declared %v", name, v.Shape, decl)
	}

	n.inputs[name] = v.Data

	return nil
}

func (n *graphNetwork) SetTarget(t device.Target) error {
	class, err := t.Class()
	if err != nil {
		return err
	}

	if n.engine.faults.classDisabled(class) {
		return fmt.Errorf("sim: no %s device present", class)
	}

	n.target = t
	n.targetSet = true

	return nil
}

func (n *graphNetwork) LayerNames() []string {
	return append([]string(nil), n.spec.layers...)
}

func (n *graphNetwork) UnconnectedOutLayers() []int {
	return n.spec.outLayerIndices()
}

func (n *graphNetwork) Forward(ctx context.Context, outputs []string) ([]*tensor.Tensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !n.targetSet {
		return nil, errors.New("sim: no target selected")
	}

	for name := range n.spec.inputs {
		if _, ok := n.inputs[name]; !ok {
			return nil, fmt.Errorf("sim: input %q not bound", name)
		}
	}

	sig := caseSignature(n.model, n.inputs)

	out := make([]*tensor.Tensor, 0, len(outputs))
	for _, name := range outputs {
		decl, ok := n.spec.outputs[name]
		if !ok {
			return nil, fmt.Errorf("sim: network has no output %q", name)
		}

		t, err := tensor.Zeros(decl)
		if err != nil {
			return nil, err
		}

		fillOutput(sig, name, t.RawData())
		out = append(out, t)
	}

	return out, nil
}
