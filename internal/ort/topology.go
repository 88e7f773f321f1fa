// Package ort adapts ONNX Runtime to both validation pipeline shapes. The
// vendor side drives it through the reader/plugin/request object contracts;
// the reference side through the unified graph API. Both open their own
// session over the same model files, so the two executions share no state
// beyond the loaded library.
//
// A model pair consists of a JSON topology manifest naming the graph's
// inputs, outputs and layers, and the .onnx weights file the session loads.
package ort

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/example/go-dnn-parity/internal/tensor"
)

// NodeInfo declares one graph tensor. Shapes are written in canonical
// (outer-to-inner) order.
type NodeInfo struct {
	Name  string  `json:"name"`
	Shape []int64 `json:"shape"`
}

// Topology is the parsed graph manifest for one model.
type Topology struct {
	Name    string     `json:"name"`
	Inputs  []NodeInfo `json:"inputs"`
	Outputs []NodeInfo `json:"outputs"`

	// Layers lists node names in declaration order. Optional; when absent
	// the layer list is derived from inputs and outputs.
	Layers []string `json:"layers,omitempty"`
}

// ParseTopology reads and validates a topology manifest.
func ParseTopology(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topology manifest: %w", err)
	}

	var topo Topology
	if err := json.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("decode topology manifest: %w", err)
	}

	if err := topo.validate(); err != nil {
		return nil, fmt.Errorf("topology manifest %s: %w", path, err)
	}

	return &topo, nil
}

func (t *Topology) validate() error {
	if t.Name == "" {
		return errors.New("empty model name")
	}

	if len(t.Inputs) == 0 {
		return errors.New("no inputs declared")
	}

	if len(t.Outputs) == 0 {
		return errors.New("no outputs declared")
	}

	seen := make(map[string]bool, len(t.Inputs)+len(t.Outputs))
	for _, n := range append(append([]NodeInfo(nil), t.Inputs...), t.Outputs...) {
		if n.Name == "" {
			return errors.New("node with empty name")
		}

		if seen[n.Name] {
			return fmt.Errorf("duplicate node name %q", n.Name)
		}

		seen[n.Name] = true

		if err := tensor.Shape(n.Shape).Validate(); err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
	}

	for _, name := range t.outputNames() {
		if !t.hasLayer(name) {
			return fmt.Errorf("output %q missing from layer list", name)
		}
	}

	return nil
}

// LayerNames returns the topology's node names in declaration order. When the
// manifest omits an explicit list, inputs come first and outputs last.
func (t *Topology) LayerNames() []string {
	if len(t.Layers) > 0 {
		return append([]string(nil), t.Layers...)
	}

	names := make([]string, 0, len(t.Inputs)+len(t.Outputs))
	for _, n := range t.Inputs {
		names = append(names, n.Name)
	}

	for _, n := range t.Outputs {
		names = append(names, n.Name)
	}

	return names
}

// OutLayerIndices returns the 1-based positions of output layers within
// LayerNames, in list order.
func (t *Topology) OutLayerIndices() []int {
	outputs := make(map[string]bool, len(t.Outputs))
	for _, n := range t.Outputs {
		outputs[n.Name] = true
	}

	var idxs []int
	for i, name := range t.LayerNames() {
		if outputs[name] {
			idxs = append(idxs, i+1)
		}
	}

	return idxs
}

func (t *Topology) hasLayer(name string) bool {
	for _, layer := range t.LayerNames() {
		if layer == name {
			return true
		}
	}

	return false
}

func (t *Topology) outputNames() []string {
	names := make([]string, 0, len(t.Outputs))
	for _, n := range t.Outputs {
		names = append(names, n.Name)
	}

	return names
}

// inputShape returns the canonical declared shape of one input.
func (t *Topology) inputShape(name string) (tensor.Shape, bool) {
	for _, n := range t.Inputs {
		if n.Name == name {
			return tensor.Shape(n.Shape), true
		}
	}

	return nil, false
}

// outputShape returns the canonical declared shape of one output.
func (t *Topology) outputShape(name string) (tensor.Shape, bool) {
	for _, n := range t.Outputs {
		if n.Name == name {
			return tensor.Shape(n.Shape), true
		}
	}

	return nil, false
}

// inputShapes returns every declared input in canonical order.
func (t *Topology) inputShapes() map[string]tensor.Shape {
	out := make(map[string]tensor.Shape, len(t.Inputs))
	for _, n := range t.Inputs {
		out[n.Name] = tensor.Shape(n.Shape)
	}

	return out
}

// outputShapes returns every declared output in canonical order.
func (t *Topology) outputShapes() map[string]tensor.Shape {
	out := make(map[string]tensor.Shape, len(t.Outputs))
	for _, n := range t.Outputs {
		out[n.Name] = tensor.Shape(n.Shape)
	}

	return out
}
