// Package harness orchestrates validation cases. A case fixes one model and
// one execution target, generates stimulus once, runs both runtimes over the
// same input tensors and compares their outputs element for element. The
// suite walks the cross product of configured models and targets and collects
// per-case verdicts.
package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/example/go-dnn-parity/internal/check"
	"github.com/example/go-dnn-parity/internal/device"
	"github.com/example/go-dnn-parity/internal/engine"
	"github.com/example/go-dnn-parity/internal/gen"
	"github.com/example/go-dnn-parity/internal/graph"
	"github.com/example/go-dnn-parity/internal/model"
	"github.com/example/go-dnn-parity/internal/runner"
)

// State tracks how far a case progressed. Cases move strictly forward; a
// failure freezes the case at Failed with the originating error.
type State int

const (
	StateInit State = iota
	StateInputsGenerated
	StateBothExecuted
	StateCompared
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateInputsGenerated:
		return "inputs-generated"
	case StateBothExecuted:
		return "both-executed"
	case StateCompared:
		return "compared"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StageTimings records wall-clock durations per pipeline stage. Diagnostic
// only; nothing interprets them.
type StageTimings struct {
	Generate  time.Duration
	Reference time.Duration
	Vendor    time.Duration
	Compare   time.Duration
	Total     time.Duration
}

// CaseResult is the outcome of one validation case.
type CaseResult struct {
	Model      string
	Target     device.Target
	Descriptor model.Descriptor
	State      State
	Verdict    *check.Verdict
	Err        error
	Timings    StageTimings
}

// OK reports whether the case ran to completion and every output matched.
func (r *CaseResult) OK() bool {
	return r.State == StateDone && r.Err == nil && r.Verdict != nil && r.Verdict.OK()
}

func (r *CaseResult) fail(err error) *CaseResult {
	r.State = StateFailed
	r.Err = err

	return r
}

// Orchestrator runs validation cases over one vendor backend and one
// reference graph engine. The same generator seed is used for every case, so
// a case's verdict is reproducible run over run.
type Orchestrator struct {
	vendor    *runner.Vendor
	reference *runner.Reference
	resolver  *device.Resolver
	seed      int64
}

// NewOrchestrator wires both runners over their engines. A nil extension
// loader means the platform default.
func NewOrchestrator(backend engine.Backend, graphs graph.Loader, resolver *device.Resolver, extensions *device.ExtensionLoader, seed int64) *Orchestrator {
	return &Orchestrator{
		vendor:    runner.NewVendor(backend, resolver, extensions),
		reference: runner.NewReference(graphs),
		resolver:  resolver,
		seed:      seed,
	}
}

// RunCase executes one case to a verdict or a failure. Steps run strictly in
// order with no retries: parse the vendor network for its declared inputs,
// generate stimulus once, run the reference side, run the vendor side,
// compare. The first failing step freezes the case; its error is surfaced
// unmodified and no comparison happens.
func (o *Orchestrator) RunCase(ctx context.Context, desc model.Descriptor, target device.Target) *CaseResult {
	res := &CaseResult{
		Model:      desc.Name,
		Target:     target,
		Descriptor: desc,
		State:      StateInit,
	}

	start := time.Now()
	defer func() {
		res.Timings.Total = time.Since(start)

		// Closing out a compared case is the last transition.
		if res.State == StateCompared {
			res.State = StateDone
		}
	}()

	// A stale session from an earlier case must never block the exclusive
	// device or be silently shared with it.
	if target.Exclusive() {
		o.resolver.ResetExclusive()
	}

	net, err := o.vendor.ParseNetwork(desc)
	if err != nil {
		return res.fail(err)
	}

	genStart := time.Now()

	inputs, err := gen.New(o.seed).InputsFromNative(net.InputInfo())
	if err != nil {
		return res.fail(err)
	}

	res.Timings.Generate = time.Since(genStart)
	res.State = StateInputsGenerated

	refStart := time.Now()

	refOut, err := o.reference.Execute(ctx, desc, target, inputs)
	res.Timings.Reference = time.Since(refStart)

	if err != nil {
		return res.fail(err)
	}

	vendorStart := time.Now()

	vendorOut, err := o.vendor.Execute(ctx, desc, target, inputs)
	res.Timings.Vendor = time.Since(vendorStart)

	if err != nil {
		return res.fail(err)
	}

	res.State = StateBothExecuted

	compareStart := time.Now()
	verdict := check.Compare(vendorOut, refOut)
	res.Timings.Compare = time.Since(compareStart)

	res.Verdict = &verdict
	res.State = StateCompared

	return res
}
