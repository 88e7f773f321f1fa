package harness

import (
	"context"
	"log/slog"

	"github.com/example/go-dnn-parity/internal/device"
	"github.com/example/go-dnn-parity/internal/model"
)

// LocateFunc resolves one model name and precision to its topology and
// weights pair.
type LocateFunc func(name string, precision model.Precision) (model.Descriptor, error)

// Suite is the cross product of models and targets to validate. Targets are
// expected to be pre-filtered to what the host resolves; a target with no
// driver still runs and fails its cases individually.
type Suite struct {
	Orchestrator *Orchestrator
	Models       []string
	Targets      []device.Target
	Locate       LocateFunc
}

// Report collects every case result of one suite run.
type Report struct {
	Results []*CaseResult
}

// Passed counts cases that completed with a clean verdict.
func (r *Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}

	return n
}

// Failed counts cases that errored or diverged.
func (r *Report) Failed() int {
	return len(r.Results) - r.Passed()
}

// OK reports whether no case failed.
func (r *Report) OK() bool {
	return r.Failed() == 0
}

// Run walks every model across every target, one case at a time. The model
// loop is outermost so one model's cases run back to back. Each target picks
// its own precision, so a model may be exercised in both precisions within
// one run.
func (s *Suite) Run(ctx context.Context) *Report {
	report := &Report{}

	for _, name := range s.Models {
		for _, target := range s.Targets {
			precision := model.PrecisionForTarget(target)

			desc, err := s.Locate(name, precision)
			if err != nil {
				slog.Error("model pair unavailable",
					"model", name,
					"precision", string(precision),
					"target", target.String(),
					"error", err)

				report.Results = append(report.Results, (&CaseResult{
					Model:      name,
					Target:     target,
					Descriptor: model.Descriptor{Name: name, Precision: precision},
				}).fail(err))

				continue
			}

			res := s.Orchestrator.RunCase(ctx, desc, target)
			logCase(res)

			report.Results = append(report.Results, res)
		}
	}

	return report
}

func logCase(res *CaseResult) {
	attrs := []any{
		"model", res.Model,
		"target", res.Target.String(),
		"precision", string(res.Descriptor.Precision),
		"state", res.State.String(),
		"total", res.Timings.Total,
	}

	switch {
	case res.Err != nil:
		slog.Error("case failed", append(attrs, "error", res.Err)...)
	case !res.OK():
		slog.Error("case diverged", append(attrs, "failures", len(res.Verdict.Failures()))...)
	default:
		slog.Info("case passed", attrs...)
	}
}
