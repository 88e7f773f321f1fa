package ort

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/go-dnn-parity/internal/engine"
	"github.com/example/go-dnn-parity/internal/tensor"
)

// Backend exposes ONNX Runtime through the vendor object pipeline. Only the
// CPU device class resolves; accelerator classes report no driver.
type Backend struct {
	rt *Runtime
}

// NewBackend creates the vendor-side adapter over a bootstrapped runtime.
func NewBackend(rt *Runtime) *Backend {
	return &Backend{rt: rt}
}

func (b *Backend) Name() string {
	return "ort"
}

func (b *Backend) NewReader() engine.Reader {
	return &fileReader{backend: b}
}

func (b *Backend) Dispatcher() engine.Dispatcher {
	return &ortDispatcher{backend: b}
}

type fileReader struct {
	backend     *Backend
	topo        *Topology
	weightsPath string
}

func (r *fileReader) ReadTopology(path string) error {
	topo, err := ParseTopology(path)
	if err != nil {
		return err
	}

	r.topo = topo

	return nil
}

func (r *fileReader) ReadWeights(path string) error {
	if r.topo == nil {
		return errors.New("ort: weights read before topology")
	}

	if err := statWeights(path); err != nil {
		return fmt.Errorf("ort: %w", err)
	}

	r.weightsPath = path

	return nil
}

func (r *fileReader) Network() (engine.Network, error) {
	if r.topo == nil || r.weightsPath == "" {
		return nil, errors.New("ort: reader needs topology and weights")
	}

	return &ortNetwork{backend: r.backend, topo: r.topo, weightsPath: r.weightsPath}, nil
}

type ortNetwork struct {
	backend     *Backend
	topo        *Topology
	weightsPath string
}

// InputInfo reports declared inputs in the runtime-native (reversed) order.
func (n *ortNetwork) InputInfo() map[string]tensor.Shape {
	return reverseShapes(n.topo.inputShapes())
}

// OutputInfo reports declared outputs in the runtime-native (reversed) order.
func (n *ortNetwork) OutputInfo() map[string]tensor.Shape {
	return reverseShapes(n.topo.outputShapes())
}

func reverseShapes(canonical map[string]tensor.Shape) map[string]tensor.Shape {
	out := make(map[string]tensor.Shape, len(canonical))
	for name, shape := range canonical {
		out[name] = shape.Reversed()
	}

	return out
}

type ortDispatcher struct {
	backend *Backend
}

func (d *ortDispatcher) PluginFor(class engine.DeviceClass) (engine.Plugin, error) {
	if class != engine.ClassCPU {
		return nil, fmt.Errorf("ort: no %s execution provider wired", class)
	}

	return &ortPlugin{backend: d.backend}, nil
}

func (d *ortDispatcher) PluginForHetero(spec engine.HeteroSpec) (engine.Plugin, error) {
	return nil, fmt.Errorf("ort: no %s execution provider wired", spec)
}

type ortPlugin struct {
	backend    *Backend
	extensions []string
}

// AddExtension accepts a loaded library handle. The library stays resident;
// ORT custom-op registration is not attempted.
func (p *ortPlugin) AddExtension(ext engine.Extension) error {
	if ext == nil {
		return errors.New("ort: nil extension")
	}

	p.extensions = append(p.extensions, ext.Name())
	slog.Debug("extension accepted", "library", ext.Name())

	return nil
}

// LoadNetwork validates the pair for compilation. The session itself opens at
// Infer so no native handle outlives its single run.
func (p *ortPlugin) LoadNetwork(net engine.Network) (engine.Executable, error) {
	onet, ok := net.(*ortNetwork)
	if !ok {
		return nil, fmt.Errorf("ort: foreign network %T", net)
	}

	if err := statWeights(onet.weightsPath); err != nil {
		return nil, fmt.Errorf("ort: %w", err)
	}

	return &ortExecutable{backend: p.backend, net: onet}, nil
}

type ortExecutable struct {
	backend *Backend
	net     *ortNetwork
}

func (e *ortExecutable) CreateRequest() (engine.Request, error) {
	return &ortRequest{
		backend: e.backend,
		net:     e.net,
		inputs:  make(map[string][]float32),
		outputs: make(map[string]tensor.View),
	}, nil
}

type ortRequest struct {
	backend *Backend
	net     *ortNetwork
	inputs  map[string][]float32
	outputs map[string]tensor.View
}

func (r *ortRequest) SetInput(name string, v tensor.View) error {
	decl, ok := r.net.topo.inputShape(name)
	if !ok {
		return fmt.Errorf("ort: network has no input %q", name)
	}

	if !v.Shape.Equal(decl.Reversed()) {
		return fmt.Errorf("ort: input %q shape %v does not match declared %v", name, v.Shape, decl.Reversed())
	}

	r.inputs[name] = v.Data

	return nil
}

func (r *ortRequest) SetOutput(name string, v tensor.View) error {
	decl, ok := r.net.topo.outputShape(name)
	if !ok {
		return fmt.Errorf("ort: network has no output %q", name)
	}

	if !v.Shape.Equal(decl.Reversed()) {
		return fmt.Errorf("ort: output %q shape %v does not match declared %v", name, v.Shape, decl.Reversed())
	}

	r.outputs[name] = v

	return nil
}

// Infer opens a session over the pair, runs it once and copies each produced
// output into its bound view. The session closes before Infer returns.
func (r *ortRequest) Infer(ctx context.Context) error {
	for name := range r.net.topo.inputShapes() {
		if _, ok := r.inputs[name]; !ok {
			return fmt.Errorf("ort: input %q not bound", name)
		}
	}

	sess, err := r.backend.rt.openSession(r.net.topo, r.net.weightsPath)
	if err != nil {
		return err
	}
	defer sess.close()

	results, err := sess.run(ctx, r.inputs)
	if err != nil {
		return err
	}

	for name, v := range r.outputs {
		t, ok := results[name]
		if !ok {
			return fmt.Errorf("ort: model produced no output %q", name)
		}

		if t.ElemCount() != len(v.Data) {
			return fmt.Errorf("ort: output %q has %d elements, bound view has %d", name, t.ElemCount(), len(v.Data))
		}

		copy(v.Data, t.RawData())
	}

	return nil
}
