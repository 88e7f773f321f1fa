package config

import (
	"fmt"
	"strings"
)

const (
	BackendSim = "sim"
	BackendORT = "ort"
)

func NormalizeBackend(raw string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(raw))
	if backend == "" {
		backend = BackendSim
	}
	switch backend {
	case BackendSim, BackendORT:
		return backend, nil
	case "simulator", "simulated":
		return BackendSim, nil
	case "onnx", "onnxruntime":
		return BackendORT, nil
	default:
		return "", fmt.Errorf(
			"invalid backend %q (expected %s|%s)",
			raw,
			BackendSim,
			BackendORT,
		)
	}
}
