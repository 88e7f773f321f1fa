package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// DefaultTopologyExt and DefaultWeightsExt name the file pair each model
	// directory holds: a topology description and a weight blob.
	DefaultTopologyExt = ".xml"
	DefaultWeightsExt  = ".bin"

	// DataRootEnv optionally names an extra data root appended to the search
	// path, resolved once per process.
	DataRootEnv = "DNNPARITY_DATA_ROOT"
)

var (
	envRootOnce  sync.Once
	envRootValue string
)

// EnvDataRoot returns the search root named by DNNPARITY_DATA_ROOT. The
// environment is consulted exactly once per process; later changes to the
// variable are ignored.
func EnvDataRoot() string {
	envRootOnce.Do(func() {
		envRootValue = readEnvDataRoot()
	})

	return envRootValue
}

func readEnvDataRoot() string {
	return strings.TrimSpace(os.Getenv(DataRootEnv))
}

// Locator resolves model names to on-disk file pairs using the layout
// <root>/<name>/<precision>/<name><ext>.
type Locator struct {
	roots       []string
	topologyExt string
	weightsExt  string
}

// NewLocator creates a locator over the given search roots. Empty extensions
// fall back to the defaults.
func NewLocator(roots []string, topologyExt, weightsExt string) *Locator {
	if topologyExt == "" {
		topologyExt = DefaultTopologyExt
	}

	if weightsExt == "" {
		weightsExt = DefaultWeightsExt
	}

	return &Locator{
		roots:       append([]string(nil), roots...),
		topologyExt: topologyExt,
		weightsExt:  weightsExt,
	}
}

// Roots returns the effective search roots: the configured ones plus the
// environment-provided root, when set and not already present.
func (l *Locator) Roots() []string {
	roots := append([]string(nil), l.roots...)

	env := EnvDataRoot()
	if env == "" {
		return roots
	}

	for _, r := range roots {
		if r == env {
			return roots
		}
	}

	return append(roots, env)
}

// Nominal constructs the descriptor a model would have under the first search
// root without touching the filesystem. Backends that carry their own model
// knowledge resolve cases through this.
func (l *Locator) Nominal(name string, precision Precision) Descriptor {
	root := "."
	if roots := l.Roots(); len(roots) > 0 {
		root = roots[0]
	}

	return l.descriptorUnder(root, name, precision)
}

// Locate searches every root for the model's file pair and returns the first
// root holding both files. The error lists every searched root so a missing
// model is diagnosable from the message alone.
func (l *Locator) Locate(name string, precision Precision) (Descriptor, error) {
	roots := l.Roots()
	if len(roots) == 0 {
		return Descriptor{}, fmt.Errorf("model: no search roots configured for %q", name)
	}

	for _, root := range roots {
		desc := l.descriptorUnder(root, name, precision)

		if fileExists(desc.TopologyPath) && fileExists(desc.WeightsPath) {
			return desc, nil
		}
	}

	return Descriptor{}, fmt.Errorf("model: %q (%s) not found under search roots %v", name, precision, roots)
}

func (l *Locator) descriptorUnder(root, name string, precision Precision) Descriptor {
	dir := filepath.Join(root, name, string(precision))

	return Descriptor{
		Name:         name,
		Precision:    precision,
		TopologyPath: filepath.Join(dir, name+l.topologyExt),
		WeightsPath:  filepath.Join(dir, name+l.weightsExt),
	}
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)

	return err == nil && !fi.IsDir()
}
