// Package check compares the named outputs of the two inference pipelines.
// Structural disagreement (different output names or shapes) and numeric
// divergence (nonzero infinity norm) are reported as distinct failure
// categories so a report can tell "wrong outputs" from "wrong values".
package check

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/example/go-dnn-parity/internal/tensor"
)

// StructuralError reports an output-contract mismatch between the two
// pipelines: a name present on one side only, a shape disagreement, or an
// output-count mismatch. Name is empty for set-level findings.
type StructuralError struct {
	Name   string
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("check: structural mismatch: %s", e.Reason)
	}

	return fmt.Sprintf("check: structural mismatch for output %q: %s", e.Name, e.Reason)
}

// DivergenceError reports a matched output whose element-wise infinity norm
// is not exactly zero.
type DivergenceError struct {
	Name string
	Norm float64
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("check: output %q diverges: infinity norm %g", e.Name, e.Norm)
}

// Comparison is the numeric result for one matched output pair.
type Comparison struct {
	Name string
	Norm float64
}

// OK reports whether the pair agreed exactly.
func (c Comparison) OK() bool {
	return c.Norm == 0
}

// Verdict is the outcome of comparing the vendor pipeline's outputs against
// the reference pipeline's outputs for one validation case.
type Verdict struct {
	// Comparisons holds one entry per name-matched, shape-matched pair,
	// in sorted name order.
	Comparisons []Comparison
	// Structural holds every output-contract finding.
	Structural []*StructuralError
}

// OK reports whether the two output sets agreed completely.
func (v Verdict) OK() bool {
	if len(v.Structural) > 0 {
		return false
	}

	for _, c := range v.Comparisons {
		if !c.OK() {
			return false
		}
	}

	return true
}

// Failures returns every finding as an error: structural mismatches first,
// then one DivergenceError per diverging comparison.
func (v Verdict) Failures() []error {
	var out []error
	for _, s := range v.Structural {
		out = append(out, s)
	}

	for _, c := range v.Comparisons {
		if !c.OK() {
			out = append(out, &DivergenceError{Name: c.Name, Norm: c.Norm})
		}
	}

	return out
}

// Compare checks the vendor output set against the reference output set.
// Vendor names drive the matching so a vendor-side surplus output is reported
// by name; the cardinality check covers reference-side surplus. Matched pairs
// must agree in shape and then element-for-element: the pass criterion is an
// exactly zero infinity norm.
func Compare(vendor, reference *tensor.NamedSet) Verdict {
	var v Verdict

	if vendor.Len() != reference.Len() {
		reason := fmt.Sprintf("output count mismatch: vendor has %d, reference has %d", vendor.Len(), reference.Len())
		if only := missingFrom(reference, vendor); len(only) > 0 {
			reason += fmt.Sprintf(" (reference-only outputs: %s)", strings.Join(only, ", "))
		}

		v.Structural = append(v.Structural, &StructuralError{Reason: reason})
	}

	for _, name := range vendor.Names() {
		vt, _ := vendor.Get(name)

		rt, ok := reference.Get(name)
		if !ok {
			v.Structural = append(v.Structural, &StructuralError{
				Name:   name,
				Reason: "missing from reference outputs",
			})

			continue
		}

		if !vt.Shape().Equal(rt.Shape()) {
			v.Structural = append(v.Structural, &StructuralError{
				Name:   name,
				Reason: fmt.Sprintf("shape mismatch: vendor %v, reference %v", vt.Shape(), rt.Shape()),
			})

			continue
		}

		v.Comparisons = append(v.Comparisons, Comparison{
			Name: name,
			Norm: InfNorm(vt.RawData(), rt.RawData()),
		})
	}

	return v
}

// InfNorm returns the maximum absolute element-wise difference between two
// equal-length buffers. Equal elements contribute zero, so matching
// infinities compare clean; a NaN on either side poisons the norm to NaN,
// which never passes the zero check.
func InfNorm(a, b []float32) float64 {
	var norm float64
	for i := range a {
		if a[i] == b[i] {
			continue
		}

		d := math.Abs(float64(a[i]) - float64(b[i]))
		if math.IsNaN(d) {
			return math.NaN()
		}

		if d > norm {
			norm = d
		}
	}

	return norm
}

func missingFrom(from, in *tensor.NamedSet) []string {
	var out []string
	for _, name := range from.Names() {
		if _, ok := in.Get(name); !ok {
			out = append(out, name)
		}
	}

	sort.Strings(out)

	return out
}
