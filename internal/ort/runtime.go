package ort

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"

	ort "github.com/shota3506/onnxruntime-purego/onnxruntime"
)

// DefaultAPIVersion is the ORT C API version the purego bindings target.
const DefaultAPIVersion = 23

// Config selects which ONNX Runtime shared library to load.
type Config struct {
	// LibraryPath overrides detection. Empty means detect via environment
	// variables and well-known locations.
	LibraryPath string
	APIVersion  uint32
}

// RuntimeInfo describes the detected ONNX Runtime library.
type RuntimeInfo struct {
	LibraryPath string
	Version     string
	Initialized bool
}

var versionPattern = regexp.MustCompile(`([0-9]+\.[0-9]+\.[0-9]+)`)

// DetectRuntime locates the ONNX Runtime shared library without loading it.
// Resolution order: explicit path, DNNPARITY_ORT_LIB, ORT_LIBRARY_PATH, then
// well-known system locations.
func DetectRuntime(libraryPath string) (RuntimeInfo, error) {
	path := libraryPath
	if path == "" {
		path = os.Getenv("DNNPARITY_ORT_LIB")
	}

	if path == "" {
		path = os.Getenv("ORT_LIBRARY_PATH")
	}

	if path == "" {
		candidates := []string{
			"/usr/lib/libonnxruntime.so",
			"/usr/local/lib/libonnxruntime.so",
			"/usr/lib/x86_64-linux-gnu/libonnxruntime.so",
			"/opt/homebrew/lib/libonnxruntime.dylib",
			"C:/onnxruntime/lib/onnxruntime.dll",
		}
		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}

	if path == "" {
		return RuntimeInfo{LibraryPath: "not found", Version: "unknown"},
			errors.New("unable to detect ONNX Runtime library path")
	}

	if _, err := os.Stat(path); err != nil {
		return RuntimeInfo{LibraryPath: path, Version: "unknown"},
			fmt.Errorf("onnx runtime library path check failed: %w", err)
	}

	return RuntimeInfo{LibraryPath: path, Version: inferVersionFromPath(path)}, nil
}

func inferVersionFromPath(path string) string {
	if m := versionPattern.FindStringSubmatch(filepath.Base(path)); len(m) == 2 {
		return m[1]
	}

	return "unknown"
}

// Runtime owns the loaded ORT library and the environment every session in
// this process shares.
type Runtime struct {
	info    RuntimeInfo
	runtime *ort.Runtime
	env     *ort.Env
}

var (
	bootstrapOnce sync.Once
	bootstrapRT   *Runtime
	errBootstrap  error
	shutdownFlag  atomic.Bool
)

// Bootstrap loads the ONNX Runtime library exactly once per process. Every
// call after the first returns the same Runtime (or the same error).
func Bootstrap(cfg Config) (*Runtime, error) {
	bootstrapOnce.Do(func() {
		bootstrapRT, errBootstrap = open(cfg)
	})

	if errBootstrap != nil {
		return nil, errBootstrap
	}

	return bootstrapRT, nil
}

// Shutdown tears down the bootstrapped runtime. Safe to call multiple times
// and before Bootstrap.
func Shutdown() error {
	if bootstrapRT == nil {
		return nil
	}

	if shutdownFlag.Swap(true) {
		return nil
	}

	bootstrapRT.close()
	bootstrapRT.info.Initialized = false

	return nil
}

func open(cfg Config) (*Runtime, error) {
	info, err := DetectRuntime(cfg.LibraryPath)
	if err != nil {
		return nil, err
	}

	api := cfg.APIVersion
	if api == 0 {
		api = DefaultAPIVersion
	}

	runtime, err := ort.NewRuntime(info.LibraryPath, api)
	if err != nil {
		return nil, fmt.Errorf("ort runtime at %s: %w", info.LibraryPath, err)
	}

	env, err := runtime.NewEnv("dnnparity", ort.LoggingLevelWarning)
	if err != nil {
		_ = runtime.Close()
		return nil, fmt.Errorf("ort env: %w", err)
	}

	info.Initialized = true

	return &Runtime{info: info, runtime: runtime, env: env}, nil
}

// Info reports the detected library path and version.
func (r *Runtime) Info() RuntimeInfo {
	return r.info
}

func (r *Runtime) close() {
	if r.env != nil {
		r.env.Close()
		r.env = nil
	}

	if r.runtime != nil {
		_ = r.runtime.Close()
		r.runtime = nil
	}
}
