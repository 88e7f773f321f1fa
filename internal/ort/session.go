package ort

import (
	"context"
	"fmt"
	"os"

	ort "github.com/shota3506/onnxruntime-purego/onnxruntime"

	"github.com/example/go-dnn-parity/internal/tensor"
)

// session is one ORT inference session over a model's weights file. Sessions
// are single shot: the owning pipeline runs once and closes promptly.
type session struct {
	rt   *Runtime
	topo *Topology
	sess *ort.Session
}

func (r *Runtime) openSession(topo *Topology, weightsPath string) (*session, error) {
	s, err := r.runtime.NewSession(r.env, weightsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("ort session for %q (%s): %w", topo.Name, weightsPath, err)
	}

	return &session{rt: r, topo: topo, sess: s}, nil
}

func (s *session) close() {
	if s.sess != nil {
		s.sess.Close()
		s.sess = nil
	}
}

// run executes the graph over the given input buffers and returns one tensor
// per model output, keyed by name. Inputs are keyed by declared name, data in
// canonical layout.
func (s *session) run(ctx context.Context, inputs map[string][]float32) (map[string]*tensor.Tensor, error) {
	ortInputs := make(map[string]*ort.Value, len(inputs))
	for name, data := range inputs {
		shape, ok := s.topo.inputShape(name)
		if !ok {
			closeValues(ortInputs)
			return nil, fmt.Errorf("input %q not declared", name)
		}

		v, err := ort.NewTensorValue(s.rt.runtime, data, []int64(shape))
		if err != nil {
			closeValues(ortInputs)
			return nil, fmt.Errorf("input %q: %w", name, err)
		}

		ortInputs[name] = v
	}
	defer closeValues(ortInputs)

	ortOutputs, err := s.sess.Run(ctx, ortInputs)
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", s.topo.Name, err)
	}
	defer closeValues(ortOutputs)

	results := make(map[string]*tensor.Tensor, len(ortOutputs))
	for name, v := range ortOutputs {
		t, err := valueToTensor(v)
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", name, err)
		}

		results[name] = t
	}

	return results, nil
}

func valueToTensor(v *ort.Value) (*tensor.Tensor, error) {
	elemType, err := v.GetTensorElementType()
	if err != nil {
		return nil, fmt.Errorf("get element type: %w", err)
	}

	if elemType != ort.ONNXTensorElementDataTypeFloat {
		return nil, fmt.Errorf("unsupported ORT element type %d; float32 graphs only", elemType)
	}

	data, shape, err := ort.GetTensorData[float32](v)
	if err != nil {
		return nil, err
	}

	return tensor.New(data, tensor.Shape(shape))
}

func closeValues(vals map[string]*ort.Value) {
	for _, v := range vals {
		if v != nil {
			v.Close()
		}
	}
}

func statWeights(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("weights file: %w", err)
	}

	if fi.IsDir() {
		return fmt.Errorf("weights path %s is a directory", path)
	}

	return nil
}
