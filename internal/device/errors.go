package device

import (
	"fmt"

	"github.com/example/go-dnn-parity/internal/engine"
)

// UnsupportedTargetError reports a target the resolver has no plugin mapping
// for. This is a configuration error: fatal to the case, never retried.
type UnsupportedTargetError struct {
	Target Target
}

func (e *UnsupportedTargetError) Error() string {
	return fmt.Sprintf("device: unsupported target %s", e.Target)
}

// ExclusiveDeviceHeldError reports an attempt to acquire a device class that
// admits only one live session while a prior session is still held. The
// holder must be released (or force-reset) before re-acquisition.
type ExclusiveDeviceHeldError struct {
	Class engine.DeviceClass
}

func (e *ExclusiveDeviceHeldError) Error() string {
	return fmt.Sprintf("device: exclusive device class %s already has a live session; release it before acquiring another", e.Class)
}
