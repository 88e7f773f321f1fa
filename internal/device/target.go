// Package device maps abstract execution targets onto concrete vendor
// runtime plugins: target parsing, per-case device resolution, the
// exclusive-accelerator session slot, and best-effort capability extension
// loading.
package device

import (
	"fmt"
	"strings"

	"github.com/example/go-dnn-parity/internal/engine"
)

// Target is an abstract execution intent: a device class plus, for the GPU,
// the numeric precision the compiled network runs at. One Target is selected
// per validation case.
type Target int

const (
	TargetCPU Target = iota
	TargetGPUFP32
	TargetGPUFP16
	TargetNPU
	TargetHeteroNPUCPU
)

// AllTargets lists every target in declaration order.
func AllTargets() []Target {
	return []Target{TargetCPU, TargetGPUFP32, TargetGPUFP16, TargetNPU, TargetHeteroNPUCPU}
}

func (t Target) String() string {
	switch t {
	case TargetCPU:
		return "CPU"
	case TargetGPUFP32:
		return "GPU_FP32"
	case TargetGPUFP16:
		return "GPU_FP16"
	case TargetNPU:
		return "NPU"
	case TargetHeteroNPUCPU:
		return "HETERO_NPU_CPU"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// Exclusive reports whether the target's device class admits only one live
// session per process. The dedicated accelerator cannot be opened twice; a
// prior session must be released before a new one is acquired.
func (t Target) Exclusive() bool {
	return t == TargetNPU
}

// Class returns the primary device class the target resolves to.
func (t Target) Class() (engine.DeviceClass, error) {
	switch t {
	case TargetCPU:
		return engine.ClassCPU, nil
	case TargetGPUFP32, TargetGPUFP16:
		return engine.ClassGPU, nil
	case TargetNPU, TargetHeteroNPUCPU:
		return engine.ClassNPU, nil
	default:
		return "", &UnsupportedTargetError{Target: t}
	}
}

// ParseTarget converts a config or CLI string to a Target. Matching is
// case-insensitive and accepts '-' for '_'; "GPU" is shorthand for GPU_FP32.
func ParseTarget(s string) (Target, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	switch normalized {
	case "CPU":
		return TargetCPU, nil
	case "GPU", "GPU_FP32":
		return TargetGPUFP32, nil
	case "GPU_FP16":
		return TargetGPUFP16, nil
	case "NPU":
		return TargetNPU, nil
	case "HETERO", "HETERO_NPU_CPU":
		return TargetHeteroNPUCPU, nil
	default:
		return 0, fmt.Errorf("device: unknown target %q", s)
	}
}

// ParseTargets converts a list of target strings, rejecting duplicates.
func ParseTargets(names []string) ([]Target, error) {
	targets := make([]Target, 0, len(names))
	seen := make(map[Target]bool, len(names))
	for _, name := range names {
		t, err := ParseTarget(name)
		if err != nil {
			return nil, err
		}

		if seen[t] {
			return nil, fmt.Errorf("device: duplicate target %q", t)
		}

		seen[t] = true
		targets = append(targets, t)
	}

	return targets, nil
}
