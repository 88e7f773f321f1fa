package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/go-dnn-parity/internal/engine"
	"github.com/example/go-dnn-parity/internal/tensor"
)

// Name implements engine.Backend.
func (e *Engine) Name() string {
	return "sim"
}

// NewReader implements engine.Backend.
func (e *Engine) NewReader() engine.Reader {
	return &reader{engine: e}
}

// Dispatcher implements engine.Backend.
func (e *Engine) Dispatcher() engine.Dispatcher {
	return &dispatcher{engine: e}
}

type reader struct {
	engine *Engine
	spec   networkSpec
	model  string

	haveTopology bool
	haveWeights  bool
}

func (r *reader) ReadTopology(path string) error {
	spec, name, err := lookupSpec(path)
	if err != nil {
		return err
	}

	r.spec = spec
	r.model = name
	r.haveTopology = true

	return nil
}

func (r *reader) ReadWeights(path string) error {
	if !r.haveTopology {
		return errors.New("sim: weights read before topology")
	}

	if name := modelNameFromPath(path); name != r.model {
		return fmt.Errorf("sim: weights %q do not match topology %q", name, r.model)
	}

	r.haveWeights = true

	return nil
}

func (r *reader) Network() (engine.Network, error) {
	if !r.haveTopology || !r.haveWeights {
		return nil, errors.New("sim: reader needs topology and weights")
	}

	return &vendorNetwork{engine: r.engine, spec: r.spec, model: r.model}, nil
}

type vendorNetwork struct {
	engine *Engine
	spec   networkSpec
	model  string
}

// InputInfo reports declared inputs in the runtime-native (reversed) order.
func (n *vendorNetwork) InputInfo() map[string]tensor.Shape {
	out := make(map[string]tensor.Shape, len(n.spec.inputs))
	for name, shape := range n.spec.inputs {
		out[name] = shape.Reversed()
	}

	return out
}

// OutputInfo reports declared outputs in native order, plus the injected
// extra output when that fault is armed.
func (n *vendorNetwork) OutputInfo() map[string]tensor.Shape {
	out := make(map[string]tensor.Shape, len(n.spec.outputs)+1)
	for name, shape := range n.spec.outputs {
		out[name] = shape.Reversed()
	}

	if extra := n.engine.faults.ExtraVendorOutput; extra != "" {
		out[extra] = tensor.Shape{1, 1, 1, 1}
	}

	return out
}

type dispatcher struct {
	engine *Engine
}

func (d *dispatcher) PluginFor(class engine.DeviceClass) (engine.Plugin, error) {
	if d.engine.faults.classDisabled(class) {
		return nil, fmt.Errorf("sim: no %s driver present", class)
	}

	return &plugin{engine: d.engine, device: string(class)}, nil
}

func (d *dispatcher) PluginForHetero(spec engine.HeteroSpec) (engine.Plugin, error) {
	for _, class := range []engine.DeviceClass{spec.Primary, spec.Fallback} {
		if d.engine.faults.classDisabled(class) {
			return nil, fmt.Errorf("sim: %s requires a %s driver", spec, class)
		}
	}

	return &plugin{engine: d.engine, device: spec.String()}, nil
}

type plugin struct {
	engine     *Engine
	device     string
	extensions []string
}

func (p *plugin) AddExtension(ext engine.Extension) error {
	if ext == nil {
		return errors.New("sim: nil extension")
	}

	p.extensions = append(p.extensions, ext.Name())

	return nil
}

func (p *plugin) LoadNetwork(net engine.Network) (engine.Executable, error) {
	if p.engine.faults.FailLoad {
		return nil, fmt.Errorf("sim: compile for %s failed", p.device)
	}

	vnet, ok := net.(*vendorNetwork)
	if !ok {
		return nil, fmt.Errorf("sim: foreign network %T", net)
	}

	return &executable{engine: p.engine, net: vnet}, nil
}

type executable struct {
	engine *Engine
	net    *vendorNetwork
}

func (e *executable) CreateRequest() (engine.Request, error) {
	return &request{
		engine:  e.engine,
		net:     e.net,
		inputs:  make(map[string][]float32),
		outputs: make(map[string]tensor.View),
	}, nil
}

type request struct {
	engine  *Engine
	net     *vendorNetwork
	inputs  map[string][]float32
	outputs map[string]tensor.View
}

func (r *request) SetInput(name string, v tensor.View) error {
	decl, ok := r.net.spec.inputs[name]
	if !ok {
		return fmt.Errorf("sim: network has no input %q", name)
	}

	if !v.Shape.Equal(decl.Reversed()) {
		return fmt.Errorf("sim: input %q shape %v does not match declared %v", name, v.Shape, decl.Reversed())
	}

	r.inputs[name] = v.Data

	return nil
}

func (r *request) SetOutput(name string, v tensor.View) error {
	decl, ok := r.net.OutputInfo()[name]
	if !ok {
		return fmt.Errorf("sim: network has no output %q", name)
	}

	if !v.Shape.Equal(decl) {
		return fmt.Errorf("sim: output %q shape %v does not match declared %v", name, v.Shape, decl)
	}

	r.outputs[name] = v

	return nil
}

// Infer writes every bound output through its view. Results depend only on
// the model identity and the exact input bits, so both pipeline shapes
// produce the same values for the same case.
func (r *request) Infer(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.engine.faults.FailInfer {
		return errors.New("sim: inference device hang")
	}

	for name := range r.net.spec.inputs {
		if _, ok := r.inputs[name]; !ok {
			return fmt.Errorf("sim: input %q not bound", name)
		}
	}

	sig := caseSignature(r.net.model, r.inputs)

	for name, v := range r.outputs {
		fillOutput(sig, name, v.Data)
	}

	if target := r.engine.faults.PerturbOutput; target != "" {
		if v, ok := r.outputs[target]; ok && len(v.Data) > 0 {
			v.Data[0] += r.engine.faults.perturbDelta()
		}
	}

	return nil
}
