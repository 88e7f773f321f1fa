// Package engine declares the contracts of the vendor inference runtime: an
// object pipeline of network reader, plugin dispatcher, loaded executable and
// inference request. The validation harness only consumes these interfaces;
// concrete backends (the ONNX Runtime adapter, the simulated backend) live in
// their own packages.
package engine

import (
	"context"

	"github.com/example/go-dnn-parity/internal/tensor"
)

// DeviceClass identifies one class of execution hardware known to the vendor
// runtime's plugin dispatcher.
type DeviceClass string

const (
	ClassCPU DeviceClass = "CPU"
	ClassGPU DeviceClass = "GPU"
	ClassNPU DeviceClass = "NPU"
)

// HeteroSpec describes a composite device that prefers Primary and falls
// back to Fallback per unsupported operation.
type HeteroSpec struct {
	Primary  DeviceClass
	Fallback DeviceClass
}

// String renders the dispatcher spec form, e.g. "HETERO:NPU,CPU".
func (s HeteroSpec) String() string {
	return "HETERO:" + string(s.Primary) + "," + string(s.Fallback)
}

// Backend bundles what one vendor runtime implementation exposes: a fresh
// reader per model and the process-wide plugin dispatcher.
type Backend interface {
	Name() string
	NewReader() Reader
	Dispatcher() Dispatcher
}

// Reader parses one model's topology and weight files into a Network.
// Readers are stateful and single-use: topology first, then weights, then
// Network.
type Reader interface {
	ReadTopology(path string) error
	ReadWeights(path string) error
	Network() (Network, error)
}

// Network is a parsed model. Declared input and output dimensions are
// reported in the runtime-native (inner-to-outer) order.
type Network interface {
	InputInfo() map[string]tensor.Shape
	OutputInfo() map[string]tensor.Shape
}

// Dispatcher resolves plugins by device class. Resolution may carry global
// driver-initialization cost; callers resolve fresh per validation case.
type Dispatcher interface {
	PluginFor(class DeviceClass) (Plugin, error)
	PluginForHetero(spec HeteroSpec) (Plugin, error)
}

// Plugin is a resolved execution backend for one device class.
type Plugin interface {
	// AddExtension attaches an optional capability module to the plugin.
	AddExtension(ext Extension) error
	// LoadNetwork compiles the network for this plugin's device.
	LoadNetwork(net Network) (Executable, error)
}

// Executable is a network loaded onto a device, ready to create requests.
type Executable interface {
	CreateRequest() (Request, error)
}

// Request is one inference invocation. Input and output tensors are bound by
// name before Infer; outputs are written in place through the bound views.
type Request interface {
	SetInput(name string, v tensor.View) error
	SetOutput(name string, v tensor.View) error
	// Infer runs synchronously and returns when all bound outputs are
	// populated.
	Infer(ctx context.Context) error
}

// Extension is an optional loaded capability module. Loading is best effort;
// a missing extension never invalidates the plugin it would have extended.
type Extension interface {
	Name() string
}
