package check

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/example/go-dnn-parity/internal/tensor"
)

func namedSet(t *testing.T, entries map[string][]float32) *tensor.NamedSet {
	t.Helper()

	set := tensor.NewNamedSet()
	for name, data := range entries {
		tt, err := tensor.New(data, tensor.Shape{int64(len(data))})
		if err != nil {
			t.Fatalf("build tensor %q: %v", name, err)
		}

		if err := set.Put(name, tt); err != nil {
			t.Fatalf("put tensor %q: %v", name, err)
		}
	}

	return set
}

func TestCompareIdenticalSets(t *testing.T) {
	vendor := namedSet(t, map[string][]float32{
		"age_conv3": {0.25},
		"prob":      {0.75, 0.25},
	})
	reference := namedSet(t, map[string][]float32{
		"age_conv3": {0.25},
		"prob":      {0.75, 0.25},
	})

	v := Compare(vendor, reference)
	if !v.OK() {
		t.Fatalf("expected clean verdict, failures: %v", v.Failures())
	}

	if len(v.Comparisons) != 2 {
		t.Fatalf("expected 2 comparisons, got %d", len(v.Comparisons))
	}

	for _, c := range v.Comparisons {
		if c.Norm != 0 {
			t.Errorf("comparison %q norm = %g; want 0", c.Name, c.Norm)
		}
	}
}

func TestCompareNumericDivergence(t *testing.T) {
	vendor := namedSet(t, map[string][]float32{
		"prob": {0.5, 0.75},
	})
	reference := namedSet(t, map[string][]float32{
		"prob": {0.5, 0.5},
	})

	v := Compare(vendor, reference)
	if v.OK() {
		t.Fatal("expected divergence")
	}

	if len(v.Structural) != 0 {
		t.Fatalf("divergence must not be structural, got %v", v.Structural)
	}

	failures := v.Failures()
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %v", failures)
	}

	var div *DivergenceError
	if !errors.As(failures[0], &div) {
		t.Fatalf("expected DivergenceError, got %T", failures[0])
	}

	if div.Name != "prob" {
		t.Errorf("divergence names %q; want prob", div.Name)
	}

	if div.Norm != 0.25 {
		t.Errorf("divergence norm = %g; want 0.25", div.Norm)
	}
}

func TestCompareVendorExtraOutput(t *testing.T) {
	vendor := namedSet(t, map[string][]float32{
		"prob":               {0.5},
		"extra_debug_tensor": {1},
	})
	reference := namedSet(t, map[string][]float32{
		"prob": {0.5},
	})

	v := Compare(vendor, reference)
	if v.OK() {
		t.Fatal("expected structural failure")
	}

	// The surplus tensor is reported by name, distinct from any numeric
	// divergence.
	found := false
	for _, s := range v.Structural {
		if s.Name == "extra_debug_tensor" {
			found = true

			if !strings.Contains(s.Reason, "missing from reference") {
				t.Errorf("unexpected reason: %q", s.Reason)
			}
		}
	}

	if !found {
		t.Fatalf("no structural finding names extra_debug_tensor: %v", v.Structural)
	}

	for _, c := range v.Comparisons {
		if c.Name == "extra_debug_tensor" {
			t.Fatal("surplus output must not reach numeric comparison")
		}
	}
}

func TestCompareReferenceExtraOutput(t *testing.T) {
	vendor := namedSet(t, map[string][]float32{
		"prob": {0.5},
	})
	reference := namedSet(t, map[string][]float32{
		"prob":   {0.5},
		"hidden": {1, 2},
	})

	v := Compare(vendor, reference)
	if v.OK() {
		t.Fatal("expected structural failure")
	}

	if len(v.Structural) != 1 {
		t.Fatalf("expected one cardinality finding, got %v", v.Structural)
	}

	if !strings.Contains(v.Structural[0].Reason, "hidden") {
		t.Errorf("cardinality finding should name the reference-only output: %q", v.Structural[0].Reason)
	}
}

func TestCompareShapeMismatch(t *testing.T) {
	vendor := tensor.NewNamedSet()
	reference := tensor.NewNamedSet()

	vt, _ := tensor.Zeros(tensor.Shape{2, 3})
	rt, _ := tensor.Zeros(tensor.Shape{3, 2})
	_ = vendor.Put("out", vt)
	_ = reference.Put("out", rt)

	v := Compare(vendor, reference)
	if v.OK() {
		t.Fatal("expected shape mismatch failure")
	}

	if len(v.Structural) != 1 || v.Structural[0].Name != "out" {
		t.Fatalf("expected structural finding for out, got %v", v.Structural)
	}

	if !strings.Contains(v.Structural[0].Reason, "shape mismatch") {
		t.Errorf("unexpected reason: %q", v.Structural[0].Reason)
	}

	if len(v.Comparisons) != 0 {
		t.Fatal("shape-mismatched pair must not be compared numerically")
	}
}

func TestInfNorm(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "equal", a: []float32{1, -2, 3}, b: []float32{1, -2, 3}, want: 0},
		{name: "single diff", a: []float32{1, 2, 3}, b: []float32{1, 2.5, 3}, want: 0.5},
		{name: "max wins", a: []float32{0, 0, 0}, b: []float32{0.1, -2, 0.5}, want: 2},
		{name: "empty", a: nil, b: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InfNorm(tt.a, tt.b); got != tt.want {
				t.Errorf("InfNorm = %g; want %g", got, tt.want)
			}
		})
	}
}

func TestInfNormNonFinite(t *testing.T) {
	inf := float32(math.Inf(1))
	nan := float32(math.NaN())

	// Matching infinities agree exactly.
	if got := InfNorm([]float32{inf}, []float32{inf}); got != 0 {
		t.Errorf("equal +Inf norm = %g; want 0", got)
	}

	// A NaN difference must never pass the zero check.
	if got := InfNorm([]float32{nan}, []float32{0}); !math.IsNaN(got) {
		t.Errorf("NaN vs 0 norm = %g; want NaN", got)
	}

	// NaN never equals anything, itself included, so paired NaNs still fail.
	if got := InfNorm([]float32{nan}, []float32{nan}); !math.IsNaN(got) {
		t.Errorf("paired NaN norm = %g; want NaN", got)
	}

	if got := InfNorm([]float32{inf}, []float32{float32(math.Inf(-1))}); got == 0 {
		t.Error("opposite infinities must not compare clean")
	}
}
