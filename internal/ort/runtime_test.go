package ort

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fakeLibrary(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte{0x7f, 'E', 'L', 'F'}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	return path
}

func TestDetectRuntimeExplicitPath(t *testing.T) {
	lib := fakeLibrary(t, "libonnxruntime.so.1.22.0")

	info, err := DetectRuntime(lib)
	if err != nil {
		t.Fatalf("DetectRuntime: %v", err)
	}

	if info.LibraryPath != lib {
		t.Errorf("LibraryPath = %q; want %q", info.LibraryPath, lib)
	}

	if info.Version != "1.22.0" {
		t.Errorf("Version = %q; want 1.22.0", info.Version)
	}
}

func TestDetectRuntimeEnvFallbacks(t *testing.T) {
	lib := fakeLibrary(t, "libonnxruntime.so")

	t.Setenv("DNNPARITY_ORT_LIB", lib)
	t.Setenv("ORT_LIBRARY_PATH", "")

	info, err := DetectRuntime("")
	if err != nil {
		t.Fatalf("DetectRuntime via DNNPARITY_ORT_LIB: %v", err)
	}
	if info.LibraryPath != lib {
		t.Errorf("LibraryPath = %q; want %q", info.LibraryPath, lib)
	}

	// The generic variable is consulted only when the specific one is unset.
	other := fakeLibrary(t, "libonnxruntime.so")
	t.Setenv("DNNPARITY_ORT_LIB", "")
	t.Setenv("ORT_LIBRARY_PATH", other)

	info, err = DetectRuntime("")
	if err != nil {
		t.Fatalf("DetectRuntime via ORT_LIBRARY_PATH: %v", err)
	}
	if info.LibraryPath != other {
		t.Errorf("LibraryPath = %q; want %q", info.LibraryPath, other)
	}
}

func TestDetectRuntimeExplicitPathMissing(t *testing.T) {
	_, err := DetectRuntime(filepath.Join(t.TempDir(), "nope.so"))
	if err == nil {
		t.Fatal("expected error for missing library")
	}

	if !strings.Contains(err.Error(), "path check failed") {
		t.Errorf("error = %v", err)
	}
}

func TestInferVersionFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/usr/lib/libonnxruntime.so.1.22.0", "1.22.0"},
		{"/opt/onnxruntime-1.17.3/lib/libonnxruntime.so", "unknown"},
		{"C:/onnxruntime/lib/onnxruntime.dll", "unknown"},
		{"libonnxruntime.1.2.3.dylib", "1.2.3"},
	}

	for _, tt := range tests {
		if got := inferVersionFromPath(tt.path); got != tt.want {
			t.Errorf("inferVersionFromPath(%q) = %q; want %q", tt.path, got, tt.want)
		}
	}
}
