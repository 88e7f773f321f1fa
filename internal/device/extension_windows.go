//go:build windows

package device

import (
	"golang.org/x/sys/windows"

	"github.com/example/go-dnn-parity/internal/engine"
)

func defaultLoad(library string) (engine.Extension, error) {
	handle, err := windows.LoadLibrary(library)
	if err != nil {
		return nil, err
	}

	return loadedExtension{name: library, handle: uintptr(handle)}, nil
}
