// Package graph declares the contracts of the baseline graph-execution
// runtime: load a model into a network, bind inputs and an execution target,
// and run a forward pass for named outputs. The harness consumes these
// interfaces only; concrete engines live in their own packages.
package graph

import (
	"context"

	"github.com/example/go-dnn-parity/internal/device"
	"github.com/example/go-dnn-parity/internal/tensor"
)

// Loader builds an executable network from a model's topology and weight
// files. One network is loaded per validation case.
type Loader interface {
	LoadNetwork(topologyPath, weightsPath string) (Network, error)
}

// Network is a loaded graph ready for a single forward pass. Inputs are bound
// by name in canonical (outer-to-inner) dimension order.
type Network interface {
	SetInput(name string, v tensor.View) error
	SetTarget(t device.Target) error

	// LayerNames lists the topology's node names in declaration order.
	LayerNames() []string
	// UnconnectedOutLayers returns 1-based indices into LayerNames for every
	// node without a downstream consumer. These are the network's outputs.
	UnconnectedOutLayers() []int

	// Forward runs the graph to completion and returns one tensor per
	// requested output name, in request order.
	Forward(ctx context.Context, outputs []string) ([]*tensor.Tensor, error)
}
