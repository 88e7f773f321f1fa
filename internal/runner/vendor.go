package runner

import (
	"context"
	"fmt"
	"sort"

	"github.com/example/go-dnn-parity/internal/device"
	"github.com/example/go-dnn-parity/internal/engine"
	"github.com/example/go-dnn-parity/internal/model"
	"github.com/example/go-dnn-parity/internal/tensor"
)

const vendorName = "vendor"

// Vendor executes a model through the vendor runtime's object pipeline:
// reader, plugin, executable, request. A fresh Device is resolved per
// Execute call and released when the call returns.
type Vendor struct {
	backend    engine.Backend
	resolver   *device.Resolver
	extensions *device.ExtensionLoader
}

// NewVendor creates the vendor-side executor. A nil extension loader means
// the platform default.
func NewVendor(backend engine.Backend, resolver *device.Resolver, extensions *device.ExtensionLoader) *Vendor {
	if extensions == nil {
		extensions = device.NewExtensionLoader()
	}

	return &Vendor{
		backend:    backend,
		resolver:   resolver,
		extensions: extensions,
	}
}

func (v *Vendor) Name() string {
	return vendorName
}

// ParseNetwork reads the model files into a vendor Network without touching
// any device. The orchestrator uses it to learn the declared input shapes
// before generating stimulus.
func (v *Vendor) ParseNetwork(desc model.Descriptor) (engine.Network, error) {
	reader := v.backend.NewReader()

	if err := reader.ReadTopology(desc.TopologyPath); err != nil {
		return nil, execFailed(vendorName, "read topology", err)
	}

	if err := reader.ReadWeights(desc.WeightsPath); err != nil {
		return nil, execFailed(vendorName, "read weights", err)
	}

	net, err := reader.Network()
	if err != nil {
		return nil, execFailed(vendorName, "parse network", err)
	}

	return net, nil
}

// Execute runs the full vendor pipeline. Every declared input must have a
// generated tensor; outputs are allocated zero-filled and written in place by
// the request, so the returned set holds the tensors Infer populated.
func (v *Vendor) Execute(ctx context.Context, desc model.Descriptor, target device.Target, inputs *tensor.NamedSet) (*tensor.NamedSet, error) {
	net, err := v.ParseNetwork(desc)
	if err != nil {
		return nil, err
	}

	dev, err := v.resolver.Resolve(target)
	if err != nil {
		return nil, execFailed(vendorName, "resolve device", err)
	}
	defer dev.Release()

	v.extensions.Apply(dev)

	exec, err := dev.Plugin().LoadNetwork(net)
	if err != nil {
		return nil, execFailed(vendorName, "load network", err)
	}

	req, err := exec.CreateRequest()
	if err != nil {
		return nil, execFailed(vendorName, "create request", err)
	}

	if err := bindInputs(req, net, inputs); err != nil {
		return nil, execFailed(vendorName, "bind input", err)
	}

	outputs, err := bindOutputs(req, net)
	if err != nil {
		return nil, execFailed(vendorName, "bind output", err)
	}

	if err := req.Infer(ctx); err != nil {
		return nil, execFailed(vendorName, "infer", err)
	}

	return outputs, nil
}

// bindInputs attaches one generated tensor per declared input, in native
// dimension order.
func bindInputs(req engine.Request, net engine.Network, inputs *tensor.NamedSet) error {
	for _, name := range sortedNames(net.InputInfo()) {
		t, ok := inputs.Get(name)
		if !ok {
			return fmt.Errorf("no generated tensor for declared input %q", name)
		}

		if err := req.SetInput(name, t.Native()); err != nil {
			return fmt.Errorf("input %q: %w", name, err)
		}
	}

	return nil
}

// bindOutputs allocates a zero tensor per declared output and binds its
// native view so Infer writes results in place.
func bindOutputs(req engine.Request, net engine.Network) (*tensor.NamedSet, error) {
	out := tensor.NewNamedSet()

	for name, native := range net.OutputInfo() {
		t, err := tensor.Zeros(native.Reversed())
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", name, err)
		}

		if err := req.SetOutput(name, t.Native()); err != nil {
			return nil, fmt.Errorf("output %q: %w", name, err)
		}

		if err := out.Put(name, t); err != nil {
			return nil, fmt.Errorf("output %q: %w", name, err)
		}
	}

	return out, nil
}

func sortedNames(m map[string]tensor.Shape) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
