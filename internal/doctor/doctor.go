// Package doctor provides environment preflight checks for dnnparity.
package doctor

import (
	"fmt"
	"io"
	"os"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// VersionFunc returns a version string or an error if the component is unavailable.
type VersionFunc func() (string, error)

// LocateFunc resolves one model name to its on-disk file pair.
type LocateFunc func(name string) error

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// ORTVersion returns the detected ONNX Runtime library description.
	ORTVersion VersionFunc
	// SkipORT skips the runtime library check (simulated backend mode).
	SkipORT bool
	// CPUFeatures returns the host SIMD feature summary. Informational only.
	CPUFeatures func() string
	// DataRoots is the list of model search roots to verify on disk.
	DataRoots []string
	// Models is the list of model names to locate. Requires LocateModel.
	Models []string
	// LocateModel resolves a model name to its file pair.
	LocateModel LocateFunc
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- ONNX Runtime library ---------------------------------------------
	if cfg.SkipORT {
		fmt.Fprintf(w, "%s onnx runtime: skipped\n", PassMark)
	} else {
		ver, err := cfg.ORTVersion()
		if err != nil {
			res.fail(fmt.Sprintf("onnx runtime: %v", err))
			fmt.Fprintf(w, "%s onnx runtime: not found (%v)\n", FailMark, err)
		} else {
			fmt.Fprintf(w, "%s onnx runtime: %s\n", PassMark, ver)
		}
	}

	// ---- CPU features -----------------------------------------------------
	if cfg.CPUFeatures != nil {
		fmt.Fprintf(w, "%s cpu features: %s\n", PassMark, cfg.CPUFeatures())
	}

	// ---- data roots -------------------------------------------------------
	for _, root := range cfg.DataRoots {
		fi, err := os.Stat(root)
		switch {
		case err != nil:
			res.fail(fmt.Sprintf("data root %q: %v", root, err))
			fmt.Fprintf(w, "%s data root %s: not found\n", FailMark, root)
		case !fi.IsDir():
			res.fail(fmt.Sprintf("data root %q: not a directory", root))
			fmt.Fprintf(w, "%s data root %s: not a directory\n", FailMark, root)
		default:
			fmt.Fprintf(w, "%s data root: %s\n", PassMark, root)
		}
	}

	// ---- model pairs ------------------------------------------------------
	if cfg.LocateModel != nil {
		for _, name := range cfg.Models {
			if err := cfg.LocateModel(name); err != nil {
				res.fail(fmt.Sprintf("model %q: %v", name, err))
				fmt.Fprintf(w, "%s model %s: not found\n", FailMark, name)
			} else {
				fmt.Fprintf(w, "%s model: %s\n", PassMark, name)
			}
		}
	}

	return res
}
