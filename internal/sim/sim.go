// Package sim is a self-contained inference engine used to validate the
// harness itself. One deterministic compute core is exposed through both
// runtime contract shapes, the unified graph API and the vendor object
// pipeline, so a clean run produces bit-identical outputs on both sides and
// any disagreement the checker reports was injected on purpose. The Faults
// knobs produce each failure class the harness must distinguish.
package sim

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	"math"
	"math/rand"
	"sort"

	"github.com/example/go-dnn-parity/internal/engine"
)

// Faults selects deliberate defects for harness tests. The zero value is a
// clean engine.
type Faults struct {
	// DisabledClasses lists device classes with no driver present. Both
	// pipeline shapes refuse targets that resolve to a disabled class.
	DisabledClasses []engine.DeviceClass

	// ExtraVendorOutput, when non-empty, adds a tensor of that name to every
	// vendor network's declared outputs. The reference side never sees it.
	ExtraVendorOutput string

	// PerturbOutput names a vendor output whose first element is shifted by
	// PerturbDelta after compute. A zero delta defaults to 1.
	PerturbOutput string
	PerturbDelta  float32

	// FailLoad makes plugin network compilation fail.
	FailLoad bool
	// FailInfer makes every inference request fail.
	FailInfer bool
}

func (f Faults) perturbDelta() float32 {
	if f.PerturbDelta == 0 {
		return 1
	}

	return f.PerturbDelta
}

func (f Faults) classDisabled(class engine.DeviceClass) bool {
	for _, c := range f.DisabledClasses {
		if c == class {
			return true
		}
	}

	return false
}

// Engine is the simulated runtime. It implements both graph.Loader and
// engine.Backend; the harness wires the same Engine into both sides.
type Engine struct {
	faults Faults
}

// New creates a clean simulated engine.
func New() *Engine {
	return &Engine{}
}

// NewWithFaults creates an engine with deliberate defects for tests.
func NewWithFaults(f Faults) *Engine {
	return &Engine{faults: f}
}

// caseSignature folds the model identity and every input buffer's exact bits
// into one value. Both pipeline shapes derive their outputs from it, so equal
// input bits give equal output bits.
func caseSignature(modelName string, inputs map[string][]float32) uint64 {
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}

	sort.Strings(names)

	h := fnv.New64a()
	_, _ = io.WriteString(h, modelName)

	var buf [4]byte
	for _, name := range names {
		_, _ = io.WriteString(h, name)

		for _, v := range inputs[name] {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
			_, _ = h.Write(buf[:])
		}
	}

	return h.Sum64()
}

// fillOutput writes the deterministic result for one named output. The
// stream is keyed by the case signature and the output name only, never by
// the order outputs are computed in.
func fillOutput(sig uint64, name string, data []float32) {
	h := fnv.New64a()

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], sig)
	_, _ = h.Write(buf[:])
	_, _ = io.WriteString(h, name)

	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	for i := range data {
		data[i] = float32(rng.Float64()*2 - 1)
	}
}
