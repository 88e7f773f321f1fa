// Package gen produces the randomized input tensors fed to both inference
// pipelines. Generation happens exactly once per validation case; the
// resulting tensors are shared so both pipelines observe identical bits.
package gen

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/example/go-dnn-parity/internal/tensor"
)

// Generator fills tensors with uniform random values in [-1, 1).
// A fixed seed reproduces the exact same tensors for the same declared
// inputs, which is what makes validation verdicts repeatable.
type Generator struct {
	rng *rand.Rand
}

// New creates a generator seeded with seed.
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Tensor allocates a tensor for a canonical-order shape and fills it with
// uniform random values in [-1, 1). An empty or non-positive shape is a
// precondition violation and returns an error.
func (g *Generator) Tensor(shape tensor.Shape) (*tensor.Tensor, error) {
	total, err := shape.Elems()
	if err != nil {
		return nil, fmt.Errorf("gen: %w", err)
	}

	data := make([]float32, total)
	for i := range data {
		data[i] = float32(g.rng.Float64()*2 - 1)
	}

	return tensor.New(data, shape)
}

// InputsFromNative generates one tensor per declared input. Declared shapes
// arrive in the runtime-native (inner-to-outer) dimension order and are
// reversed to canonical before allocation. Names are processed in sorted
// order so a fixed seed yields identical sets regardless of map iteration.
func (g *Generator) InputsFromNative(decls map[string]tensor.Shape) (*tensor.NamedSet, error) {
	if len(decls) == 0 {
		return nil, fmt.Errorf("gen: no declared inputs")
	}

	names := make([]string, 0, len(decls))
	for name := range decls {
		names = append(names, name)
	}
	sort.Strings(names)

	set := tensor.NewNamedSet()
	for _, name := range names {
		t, err := g.Tensor(decls[name].Reversed())
		if err != nil {
			return nil, fmt.Errorf("gen: input %q: %w", name, err)
		}

		if err := set.Put(name, t); err != nil {
			return nil, err
		}
	}

	return set, nil
}
