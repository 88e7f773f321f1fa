// Package model resolves the files a validation case runs against: the fixed
// model registry, target-derived precision, search-path location and
// fetch/verify of the topology and weight pairs.
package model

import (
	"github.com/example/go-dnn-parity/internal/device"
)

// Precision tags which numeric variant of a model a case executes.
type Precision string

const (
	PrecisionFP32 Precision = "FP32"
	PrecisionFP16 Precision = "FP16"
)

// PrecisionForTarget derives the model precision from the execution target:
// FP16 for the low-precision GPU and the dedicated accelerator, FP32 for
// everything else.
func PrecisionForTarget(t device.Target) Precision {
	switch t {
	case device.TargetGPUFP16, device.TargetNPU:
		return PrecisionFP16
	default:
		return PrecisionFP32
	}
}

// Descriptor identifies one model under test: its registry name, the
// precision variant, and the resolved topology and weight file locations.
type Descriptor struct {
	Name         string
	Precision    Precision
	TopologyPath string
	WeightsPath  string
}
