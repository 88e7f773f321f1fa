//go:build integration

package ort

import (
	"context"
	"testing"

	"github.com/example/go-dnn-parity/internal/check"
	"github.com/example/go-dnn-parity/internal/device"
	"github.com/example/go-dnn-parity/internal/gen"
	"github.com/example/go-dnn-parity/internal/model"
	"github.com/example/go-dnn-parity/internal/runner"
	"github.com/example/go-dnn-parity/internal/testutil"
)

const integrationModel = "age-gender-recognition-retail-0013"

// integrationDescriptor locates the ONNX pair for the integration model,
// skipping when the data root has not been provisioned.
func integrationDescriptor(t *testing.T) model.Descriptor {
	t.Helper()

	locator := model.NewLocator([]string{"models", "../../models"}, ".json", ".onnx")

	return testutil.RequireModelData(t, locator, integrationModel, model.PrecisionFP32)
}

// TestPipelinesAgreeThroughRealRuntime drives the same model pair through the
// graph API and the vendor object pipeline against a real ONNX Runtime and
// expects both executions to produce identical bits.
func TestPipelinesAgreeThroughRealRuntime(t *testing.T) {
	testutil.RequireONNXRuntime(t)
	desc := integrationDescriptor(t)

	rt, err := Bootstrap(Config{})
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	again, err := Bootstrap(Config{})
	if err != nil {
		t.Fatalf("Bootstrap (second): %v", err)
	}
	if again != rt {
		t.Error("Bootstrap returned a second runtime instance")
	}

	info := rt.Info()
	if !info.Initialized || info.LibraryPath == "" {
		t.Fatalf("runtime info = %+v", info)
	}

	backend := NewBackend(rt)
	vendor := runner.NewVendor(backend, device.NewResolver(backend.Dispatcher()), device.NewExtensionLoader())
	reference := runner.NewReference(NewGraphEngine(rt))

	net, err := vendor.ParseNetwork(desc)
	if err != nil {
		t.Fatalf("ParseNetwork: %v", err)
	}

	inputs, err := gen.New(1).InputsFromNative(net.InputInfo())
	if err != nil {
		t.Fatalf("InputsFromNative: %v", err)
	}

	ctx := context.Background()

	refOut, err := reference.Execute(ctx, desc, device.TargetCPU, inputs)
	if err != nil {
		t.Fatalf("reference execute: %v", err)
	}

	venOut, err := vendor.Execute(ctx, desc, device.TargetCPU, inputs)
	if err != nil {
		t.Fatalf("vendor execute: %v", err)
	}

	if verdict := check.Compare(venOut, refOut); !verdict.OK() {
		for _, failure := range verdict.Failures() {
			t.Error(failure)
		}
	}

	if err := Shutdown(); err != nil {
		t.Errorf("Shutdown: %v", err)
	}

	// Shutdown is idempotent.
	if err := Shutdown(); err != nil {
		t.Errorf("Shutdown (second): %v", err)
	}
}

func TestDetectRuntimeFindsRealLibrary(t *testing.T) {
	testutil.RequireONNXRuntime(t)

	info, err := DetectRuntime("")
	if err != nil {
		t.Fatalf("DetectRuntime: %v", err)
	}

	if info.LibraryPath == "" || info.LibraryPath == "not found" {
		t.Errorf("LibraryPath = %q", info.LibraryPath)
	}
}
