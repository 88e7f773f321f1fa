package device

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"

	"github.com/example/go-dnn-parity/internal/engine"
)

// LoadFunc opens one candidate extension library by platform-specific name.
type LoadFunc func(library string) (engine.Extension, error)

type loadedExtension struct {
	name   string
	handle uintptr
}

func (e loadedExtension) Name() string {
	return e.name
}

// ExtensionLoader attaches the optional accelerated-kernel extension to a
// device. Candidates are tried most architecture-specialized first; the first
// successful load wins. Every candidate failing leaves the device valid,
// since some networks run fine without the extra-layer library.
type ExtensionLoader struct {
	// Load opens a candidate library. Nil means the platform default
	// (dlopen on unix, LoadLibrary on Windows).
	Load LoadFunc
}

// NewExtensionLoader creates a loader using the platform default load
// function.
func NewExtensionLoader() *ExtensionLoader {
	return &ExtensionLoader{}
}

// Apply tries to load one capability extension onto the device and returns
// the library name that loaded, or "" when none did. Only CPU and
// heterogeneous-CPU targets carry the extension; for every other target this
// is a no-op. Apply never fails: a missing extension is degraded capability,
// not an error.
func (l *ExtensionLoader) Apply(dev *Device) string {
	if dev.Target() != TargetCPU && dev.Target() != TargetHeteroNPUCPU {
		return ""
	}

	load := l.Load
	if load == nil {
		load = defaultLoad
	}

	for _, library := range ExtensionCandidates() {
		ext, err := load(library)
		if err != nil {
			slog.Debug("extension candidate unavailable", "library", library, "error", err)
			continue
		}

		if err := dev.AddExtension(ext); err != nil {
			slog.Debug("extension attach rejected", "library", library, "error", err)
			continue
		}

		slog.Info("loaded capability extension", "library", library, "target", dev.Target())

		return library
	}

	slog.Warn("no capability extension available, continuing without", "target", dev.Target())

	return ""
}

// ExtensionCandidates returns the platform library names to try, in priority
// order. Variants whose CPU feature is absent on this host are omitted; the
// generic (unsuffixed) name is always last.
func ExtensionCandidates() []string {
	variants := []struct {
		suffix    string
		supported bool
	}{
		{"_avx2", cpu.X86.HasAVX2},
		{"_sse4", cpu.X86.HasSSE42},
		{"", true},
	}

	var out []string
	for _, v := range variants {
		if !v.supported {
			continue
		}

		out = append(out, extensionLibraryName(v.suffix))
	}

	return out
}

func extensionLibraryName(suffix string) string {
	switch runtime.GOOS {
	case "windows":
		return fmt.Sprintf("cpu_extension%s.dll", suffix)
	case "darwin":
		return fmt.Sprintf("libcpu_extension%s.dylib", suffix)
	default:
		return fmt.Sprintf("libcpu_extension%s.so", suffix)
	}
}

// CPUFeatureSummary reports which extension variants this host's CPU can run,
// for diagnostics output.
func CPUFeatureSummary() string {
	var feats []string
	if cpu.X86.HasAVX2 {
		feats = append(feats, "avx2")
	}

	if cpu.X86.HasSSE42 {
		feats = append(feats, "sse4.2")
	}

	if len(feats) == 0 {
		return "generic"
	}

	return strings.Join(feats, ",")
}
