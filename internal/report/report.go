// Package report renders validation suite results for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/example/go-dnn-parity/internal/harness"
)

// ---------------------------------------------------------------------------
// Duration stats
// ---------------------------------------------------------------------------

// Stats holds aggregate case-time statistics across all cases of a run.
type Stats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// ComputeStats calculates min, max and mean over a slice of durations.
// An empty slice yields zero stats.
func ComputeStats(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	mn, mx := durations[0], durations[0]
	var sum time.Duration
	for _, d := range durations {
		if d < mn {
			mn = d
		}
		if d > mx {
			mx = d
		}
		sum += d
	}
	return Stats{
		Min:  mn,
		Max:  mx,
		Mean: sum / time.Duration(len(durations)),
	}
}

func caseTotals(rep *harness.Report) []time.Duration {
	out := make([]time.Duration, 0, len(rep.Results))
	for _, res := range rep.Results {
		out = append(out, res.Timings.Total)
	}
	return out
}

func caseFailures(res *harness.CaseResult) []string {
	if res.Err != nil {
		return []string{res.Err.Error()}
	}

	if res.Verdict == nil {
		return nil
	}

	var out []string
	for _, failure := range res.Verdict.Failures() {
		out = append(out, failure.Error())
	}
	return out
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

// ---------------------------------------------------------------------------
// Output formatters
// ---------------------------------------------------------------------------

// FormatTable writes a human-readable ASCII table of case results to w.
func FormatTable(rep *harness.Report, w io.Writer) {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "%-42s  %-15s  %-5s  %-6s  %10s\n", "Model", "Target", "Prec", "State", "MS")
	fmt.Fprintln(sb, strings.Repeat("-", 88))

	for _, res := range rep.Results {
		verdict := "FAIL"
		if res.OK() {
			verdict = "PASS"
		}

		fmt.Fprintf(sb, "%-42s  %-15s  %-5s  %-6s  %10.1f\n",
			res.Model,
			res.Target.String(),
			string(res.Descriptor.Precision),
			verdict,
			ms(res.Timings.Total),
		)

		for _, failure := range caseFailures(res) {
			fmt.Fprintf(sb, "    %s\n", failure)
		}
	}

	stats := ComputeStats(caseTotals(rep))

	fmt.Fprintln(sb, strings.Repeat("-", 88))
	fmt.Fprintf(sb, "%-42s  %-15s  %-5s  %-6s  %10.1f  (min)\n", "", "", "", "", ms(stats.Min))
	fmt.Fprintf(sb, "%-42s  %-15s  %-5s  %-6s  %10.1f  (mean)\n", "", "", "", "", ms(stats.Mean))
	fmt.Fprintf(sb, "%-42s  %-15s  %-5s  %-6s  %10.1f  (max)\n", "", "", "", "", ms(stats.Max))
	fmt.Fprintf(sb, "%d case(s): %d passed, %d failed\n", len(rep.Results), rep.Passed(), rep.Failed())

	fmt.Fprint(w, sb.String())
}

// jsonReport is the top-level JSON structure emitted by FormatJSON.
type jsonReport struct {
	Cases []jsonCase `json:"cases"`
	Stats jsonStats  `json:"stats"`
}

type jsonCase struct {
	Model       string   `json:"model"`
	Target      string   `json:"target"`
	Precision   string   `json:"precision"`
	State       string   `json:"state"`
	Passed      bool     `json:"passed"`
	GenerateMS  float64  `json:"generate_ms"`
	ReferenceMS float64  `json:"reference_ms"`
	VendorMS    float64  `json:"vendor_ms"`
	CompareMS   float64  `json:"compare_ms"`
	TotalMS     float64  `json:"total_ms"`
	Failures    []string `json:"failures,omitempty"`
}

type jsonStats struct {
	Cases  int     `json:"cases"`
	Passed int     `json:"passed"`
	Failed int     `json:"failed"`
	MinMS  float64 `json:"min_ms"`
	MeanMS float64 `json:"mean_ms"`
	MaxMS  float64 `json:"max_ms"`
}

// FormatJSON writes a JSON report of case results to w.
func FormatJSON(rep *harness.Report, w io.Writer) {
	stats := ComputeStats(caseTotals(rep))

	jr := jsonReport{
		Cases: make([]jsonCase, len(rep.Results)),
		Stats: jsonStats{
			Cases:  len(rep.Results),
			Passed: rep.Passed(),
			Failed: rep.Failed(),
			MinMS:  ms(stats.Min),
			MeanMS: ms(stats.Mean),
			MaxMS:  ms(stats.Max),
		},
	}

	for i, res := range rep.Results {
		jr.Cases[i] = jsonCase{
			Model:       res.Model,
			Target:      res.Target.String(),
			Precision:   string(res.Descriptor.Precision),
			State:       res.State.String(),
			Passed:      res.OK(),
			GenerateMS:  ms(res.Timings.Generate),
			ReferenceMS: ms(res.Timings.Reference),
			VendorMS:    ms(res.Timings.Vendor),
			CompareMS:   ms(res.Timings.Compare),
			TotalMS:     ms(res.Timings.Total),
			Failures:    caseFailures(res),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(jr)
}
