package sim

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/example/go-dnn-parity/internal/tensor"
)

// networkSpec describes one simulated model: declared tensors in canonical
// (outer-to-inner) order plus the topology's layer-name list. Output layers
// appear in the layer list so unconnected-out-layer indices resolve to them.
type networkSpec struct {
	inputs  map[string]tensor.Shape
	outputs map[string]tensor.Shape
	layers  []string
}

// The five registry models, with the tensor geometry their published
// topologies declare.
var networkSpecs = map[string]networkSpec{
	"age-gender-recognition-retail-0013": {
		inputs: map[string]tensor.Shape{
			"data": {1, 3, 62, 62},
		},
		outputs: map[string]tensor.Shape{
			"age_conv3": {1, 1, 1, 1},
			"prob":      {1, 2, 1, 1},
		},
		layers: []string{"data", "conv1", "age_conv3", "prob"},
	},
	"face-person-detection-retail-0002": {
		inputs: map[string]tensor.Shape{
			"data": {1, 3, 320, 544},
		},
		outputs: map[string]tensor.Shape{
			"detection_out": {1, 1, 200, 7},
		},
		layers: []string{"data", "mbox_loc", "mbox_conf", "detection_out"},
	},
	"head-pose-estimation-adas-0001": {
		inputs: map[string]tensor.Shape{
			"data": {1, 3, 60, 60},
		},
		outputs: map[string]tensor.Shape{
			"angle_y_fc": {1, 1},
			"angle_p_fc": {1, 1},
			"angle_r_fc": {1, 1},
		},
		layers: []string{"data", "fc512", "angle_y_fc", "angle_p_fc", "angle_r_fc"},
	},
	"person-detection-retail-0002": {
		inputs: map[string]tensor.Shape{
			"data": {1, 3, 544, 992},
		},
		outputs: map[string]tensor.Shape{
			"detection_out": {1, 1, 200, 7},
		},
		layers: []string{"data", "mbox_priorbox", "detection_out"},
	},
	"vehicle-detection-adas-0002": {
		inputs: map[string]tensor.Shape{
			"data": {1, 3, 384, 672},
		},
		outputs: map[string]tensor.Shape{
			"detection_out": {1, 1, 200, 7},
		},
		layers: []string{"data", "mbox_priorbox", "detection_out"},
	},
}

// modelNameFromPath recovers the model name from a topology or weights path.
// The file stem is the model name in the registry layout.
func modelNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func lookupSpec(path string) (networkSpec, string, error) {
	name := modelNameFromPath(path)

	spec, ok := networkSpecs[name]
	if !ok {
		return networkSpec{}, "", fmt.Errorf("sim: unknown model %q", name)
	}

	return spec, name, nil
}

// outLayerIndices returns the 1-based positions of the network's output
// layers within the layer-name list, in list order.
func (s networkSpec) outLayerIndices() []int {
	var idxs []int
	for i, layer := range s.layers {
		if _, ok := s.outputs[layer]; ok {
			idxs = append(idxs, i+1)
		}
	}

	return idxs
}
