package device

import (
	"errors"
	"testing"

	"github.com/example/go-dnn-parity/internal/engine"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{in: "CPU", want: TargetCPU},
		{in: "cpu", want: TargetCPU},
		{in: "GPU", want: TargetGPUFP32},
		{in: "gpu_fp32", want: TargetGPUFP32},
		{in: "GPU-FP16", want: TargetGPUFP16},
		{in: "NPU", want: TargetNPU},
		{in: "hetero", want: TargetHeteroNPUCPU},
		{in: "HETERO_NPU_CPU", want: TargetHeteroNPUCPU},
		{in: " cpu ", want: TargetCPU},
		{in: "tpu", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTarget(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTarget(%q) = %v; want error", tt.in, got)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseTarget(%q) error: %v", tt.in, err)
			}

			if got != tt.want {
				t.Errorf("ParseTarget(%q) = %v; want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTargetsRejectsDuplicates(t *testing.T) {
	if _, err := ParseTargets([]string{"cpu", "CPU"}); err == nil {
		t.Fatal("expected duplicate target error")
	}

	got, err := ParseTargets([]string{"cpu", "gpu_fp16", "npu"})
	if err != nil {
		t.Fatalf("ParseTargets error: %v", err)
	}

	want := []Target{TargetCPU, TargetGPUFP16, TargetNPU}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ParseTargets = %v; want %v", got, want)
		}
	}
}

func TestTargetString(t *testing.T) {
	for _, target := range AllTargets() {
		s := target.String()
		if s == "" {
			t.Fatalf("target %d has empty string form", int(target))
		}

		parsed, err := ParseTarget(s)
		if err != nil {
			t.Fatalf("ParseTarget(%q) round trip failed: %v", s, err)
		}

		if parsed != target {
			t.Errorf("round trip %v -> %q -> %v", target, s, parsed)
		}
	}
}

func TestTargetClass(t *testing.T) {
	tests := []struct {
		target Target
		want   engine.DeviceClass
	}{
		{TargetCPU, engine.ClassCPU},
		{TargetGPUFP32, engine.ClassGPU},
		{TargetGPUFP16, engine.ClassGPU},
		{TargetNPU, engine.ClassNPU},
		{TargetHeteroNPUCPU, engine.ClassNPU},
	}
	for _, tt := range tests {
		got, err := tt.target.Class()
		if err != nil {
			t.Fatalf("Class(%v) error: %v", tt.target, err)
		}

		if got != tt.want {
			t.Errorf("Class(%v) = %v; want %v", tt.target, got, tt.want)
		}
	}

	var unsupported *UnsupportedTargetError
	if _, err := Target(99).Class(); !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedTargetError, got %v", err)
	}
}

func TestTargetExclusive(t *testing.T) {
	for _, target := range AllTargets() {
		want := target == TargetNPU
		if got := target.Exclusive(); got != want {
			t.Errorf("Exclusive(%v) = %v; want %v", target, got, want)
		}
	}
}
