package doctor_test

import (
	"strings"
	"testing"

	"github.com/example/go-dnn-parity/internal/doctor"
)

// ---------------------------------------------------------------------------
// all-pass scenario
// ---------------------------------------------------------------------------

func TestRun_AllChecksPass(t *testing.T) {
	cfg := doctor.Config{
		ORTVersion:  func() (string, error) { return "/usr/lib/libonnxruntime.so (1.22.0)", nil },
		CPUFeatures: func() string { return "avx2,sse4.2" },
		DataRoots:   []string{"."},
	}

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if result.Failed() {
		t.Errorf("expected all checks to pass; failures: %v", result.Failures())
	}

	if !strings.Contains(out.String(), "onnx runtime") {
		t.Error("output should mention onnx runtime")
	}

	if !strings.Contains(out.String(), "cpu features: avx2,sse4.2") {
		t.Errorf("output should report cpu features; got:\n%s", out.String())
	}
}

// ---------------------------------------------------------------------------
// runtime library missing
// ---------------------------------------------------------------------------

func TestRun_RuntimeMissingFails(t *testing.T) {
	cfg := doctor.Config{
		ORTVersion: func() (string, error) { return "", errLibraryNotFound },
	}

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if !result.Failed() {
		t.Fatal("expected failure when the runtime library is not found")
	}

	if !hasFailureContaining(result.Failures(), "onnx runtime") {
		t.Errorf("expected failure mentioning onnx runtime, got: %v", result.Failures())
	}
}

func TestRun_SkipRuntimeCheck(t *testing.T) {
	cfg := doctor.Config{
		SkipORT: true,
	}

	var out strings.Builder

	result := doctor.Run(cfg, &out)
	if result.Failed() {
		t.Fatalf("expected no failures when the runtime check is skipped, got: %v", result.Failures())
	}

	if !strings.Contains(out.String(), "onnx runtime: skipped") {
		t.Fatalf("expected skipped output, got:\n%s", out.String())
	}
}

// ---------------------------------------------------------------------------
// data roots
// ---------------------------------------------------------------------------

func TestRun_MissingDataRootFails(t *testing.T) {
	cfg := doctor.Config{
		SkipORT:   true,
		DataRoots: []string{"/nonexistent/models"},
	}

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if !result.Failed() {
		t.Fatal("expected failure for missing data root")
	}

	if !hasFailureContaining(result.Failures(), "data root") {
		t.Errorf("expected failure mentioning data root, got: %v", result.Failures())
	}
}

func TestRun_FileDataRootFails(t *testing.T) {
	// A regular file is not a usable search root.
	cfg := doctor.Config{
		SkipORT:   true,
		DataRoots: []string{"doctor_test.go"},
	}

	var out strings.Builder
	result := doctor.Run(cfg, &out)

	if !result.Failed() {
		t.Fatal("expected failure for file data root")
	}

	if !hasFailureContaining(result.Failures(), "not a directory") {
		t.Errorf("expected failure mentioning directory, got: %v", result.Failures())
	}
}

func TestRun_PresentDataRootPasses(t *testing.T) {
	cfg := doctor.Config{
		SkipORT:   true,
		DataRoots: []string{t.TempDir()},
	}

	var out strings.Builder

	result := doctor.Run(cfg, &out)
	if result.Failed() {
		t.Errorf("expected pass; failures: %v", result.Failures())
	}

	if !strings.Contains(out.String(), "data root:") {
		t.Errorf("output should mention data root; got:\n%s", out.String())
	}
}

// ---------------------------------------------------------------------------
// model pairs
// ---------------------------------------------------------------------------

func TestRun_MissingModelFails(t *testing.T) {
	cfg := doctor.Config{
		SkipORT: true,
		Models:  []string{"age-gender-recognition-retail-0013"},
		LocateModel: func(name string) error {
			return sentinelError("no file pair for " + name)
		},
	}

	var out strings.Builder

	result := doctor.Run(cfg, &out)
	if !result.Failed() {
		t.Fatal("expected failure for unresolvable model")
	}

	if !hasFailureContaining(result.Failures(), "age-gender") {
		t.Errorf("expected failure naming the model, got: %v", result.Failures())
	}
}

func TestRun_PresentModelPasses(t *testing.T) {
	cfg := doctor.Config{
		SkipORT:     true,
		Models:      []string{"vehicle-detection-adas-0002"},
		LocateModel: func(string) error { return nil },
	}

	var out strings.Builder

	result := doctor.Run(cfg, &out)
	if result.Failed() {
		t.Errorf("expected pass; failures: %v", result.Failures())
	}

	if !strings.Contains(out.String(), "model: vehicle-detection-adas-0002") {
		t.Errorf("output should mention the model; got:\n%s", out.String())
	}
}

func TestRun_ModelsIgnoredWithoutLocator(t *testing.T) {
	cfg := doctor.Config{
		SkipORT: true,
		Models:  []string{"person-detection-retail-0013"},
	}

	var out strings.Builder

	result := doctor.Run(cfg, &out)
	if result.Failed() {
		t.Errorf("expected pass without a locator; failures: %v", result.Failures())
	}
}

// ---------------------------------------------------------------------------
// output markers
// ---------------------------------------------------------------------------

func TestRun_OutputContainsPassAndFailMarkers(t *testing.T) {
	cfg := doctor.Config{
		ORTVersion:  func() (string, error) { return "", errLibraryNotFound },
		CPUFeatures: func() string { return "generic" },
	}

	var out strings.Builder
	doctor.Run(cfg, &out)

	body := out.String()
	if !strings.Contains(body, doctor.PassMark) {
		t.Errorf("output missing pass marker %q:\n%s", doctor.PassMark, body)
	}

	if !strings.Contains(body, doctor.FailMark) {
		t.Errorf("output missing fail marker %q:\n%s", doctor.FailMark, body)
	}
}

// ---------------------------------------------------------------------------
// external failures
// ---------------------------------------------------------------------------

func TestResult_AddFailure(t *testing.T) {
	var res doctor.Result

	if res.Failed() {
		t.Fatal("fresh result should not report failure")
	}

	res.AddFailure("device probe: NPU driver hung")

	if !res.Failed() {
		t.Fatal("expected failure after AddFailure")
	}

	if !hasFailureContaining(res.Failures(), "NPU driver") {
		t.Errorf("expected appended failure, got: %v", res.Failures())
	}
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

type sentinelError string

func (e sentinelError) Error() string { return string(e) }

var errLibraryNotFound = sentinelError("library not found")

func hasFailureContaining(failures []string, substr string) bool {
	substr = strings.ToLower(substr)
	for _, f := range failures {
		if strings.Contains(strings.ToLower(f), substr) {
			return true
		}
	}

	return false
}
