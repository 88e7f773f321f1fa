//go:build !windows

package device

import (
	"github.com/ebitengine/purego"

	"github.com/example/go-dnn-parity/internal/engine"
)

func defaultLoad(library string) (engine.Extension, error) {
	handle, err := purego.Dlopen(library, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, err
	}

	return loadedExtension{name: library, handle: handle}, nil
}
