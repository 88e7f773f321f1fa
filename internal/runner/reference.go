package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/go-dnn-parity/internal/device"
	"github.com/example/go-dnn-parity/internal/graph"
	"github.com/example/go-dnn-parity/internal/model"
	"github.com/example/go-dnn-parity/internal/tensor"
)

const referenceName = "reference"

// Reference executes a model through the unified graph API: load, bind
// inputs, select target, forward. One network is loaded per Execute call and
// discarded afterward.
type Reference struct {
	loader graph.Loader
}

// NewReference creates the reference-side executor over a graph loader.
func NewReference(loader graph.Loader) *Reference {
	return &Reference{loader: loader}
}

func (r *Reference) Name() string {
	return referenceName
}

// Execute loads the model, binds every generated input in canonical order,
// resolves the network's output names and runs a single forward pass.
func (r *Reference) Execute(ctx context.Context, desc model.Descriptor, target device.Target, inputs *tensor.NamedSet) (*tensor.NamedSet, error) {
	net, err := r.loader.LoadNetwork(desc.TopologyPath, desc.WeightsPath)
	if err != nil {
		return nil, execFailed(referenceName, "load network", err)
	}

	for _, name := range inputs.Names() {
		t, _ := inputs.Get(name)
		if err := net.SetInput(name, t.Canonical()); err != nil {
			return nil, execFailed(referenceName, "bind input", err)
		}
	}

	if err := net.SetTarget(target); err != nil {
		return nil, execFailed(referenceName, "set target", err)
	}

	names, err := outputNames(net)
	if err != nil {
		return nil, execFailed(referenceName, "resolve outputs", err)
	}

	tensors, err := net.Forward(ctx, names)
	if err != nil {
		return nil, execFailed(referenceName, "forward", err)
	}

	if len(tensors) != len(names) {
		err := fmt.Errorf("forward returned %d tensors for %d requested outputs", len(tensors), len(names))
		return nil, execFailed(referenceName, "forward", err)
	}

	out := tensor.NewNamedSet()
	for i, name := range names {
		if err := out.Put(name, tensors[i]); err != nil {
			return nil, execFailed(referenceName, "collect outputs", err)
		}
	}

	return out, nil
}

// outputNames maps each unconnected out layer to its layer name. Out-layer
// indices are 1-based into the declaration-order name list.
func outputNames(net graph.Network) ([]string, error) {
	layers := net.LayerNames()

	idxs := net.UnconnectedOutLayers()
	if len(idxs) == 0 {
		return nil, errors.New("network declares no outputs")
	}

	names := make([]string, 0, len(idxs))
	for _, idx := range idxs {
		if idx < 1 || idx > len(layers) {
			return nil, fmt.Errorf("out layer index %d outside 1..%d", idx, len(layers))
		}

		names = append(names, layers[idx-1])
	}

	return names, nil
}
