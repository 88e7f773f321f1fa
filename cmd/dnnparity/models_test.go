package main

import (
	"strings"
	"testing"

	"github.com/example/go-dnn-parity/internal/model"
)

func TestParsePrecisions(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []model.Precision
		wantErr bool
	}{
		{name: "fp32", in: []string{"FP32"}, want: []model.Precision{model.PrecisionFP32}},
		{name: "fp16 lowercase", in: []string{"fp16"}, want: []model.Precision{model.PrecisionFP16}},
		{name: "both with spaces", in: []string{" FP32 ", "FP16"}, want: []model.Precision{model.PrecisionFP32, model.PrecisionFP16}},
		{name: "empty input", in: nil, want: nil},
		{name: "int8 rejected", in: []string{"INT8"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePrecisions(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}

			if err != nil {
				t.Fatalf("parsePrecisions returned error: %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("unexpected precisions: got %v want %v", got, tt.want)
			}

			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("unexpected precisions: got %v want %v", got, tt.want)
				}
			}
		})
	}
}

func TestModelsListCommand_ReportsRegistry(t *testing.T) {
	out, err := runCLICapture(t, "models", "list", "--data-root", t.TempDir())
	if err != nil {
		t.Fatalf("models list failed: %v\noutput:\n%s", err, out)
	}

	if !strings.Contains(out, "age-gender-recognition-retail-0013") {
		t.Errorf("expected registry model in listing:\n%s", out)
	}

	// Nothing is provisioned under the empty data root.
	if !strings.Contains(out, "missing") || strings.Contains(out, "present") {
		t.Errorf("expected every pair to be reported missing:\n%s", out)
	}
}

func TestModelsFetchCommand_RejectsUnknownModel(t *testing.T) {
	out, err := runCLICapture(t, "models", "fetch", "no-such-model")
	if err == nil {
		t.Fatalf("expected error for unknown model, output:\n%s", out)
	}

	if !strings.Contains(err.Error(), "unknown model") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestModelsFetchCommand_RejectsUnknownPrecision(t *testing.T) {
	_, err := runCLICapture(t,
		"models", "fetch", "age-gender-recognition-retail-0013",
		"--precision", "INT8",
	)
	if err == nil {
		t.Fatal("expected error for unknown precision")
	}
}
