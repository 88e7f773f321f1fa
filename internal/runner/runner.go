// Package runner executes one model inference per validation case through one
// of the two independent runtimes. The reference runner drives the unified
// graph API; the vendor runner drives the reader/plugin/request object
// pipeline. The two share nothing beyond the tensor types, so agreement
// between their outputs is evidence rather than an artifact of shared code.
package runner

import (
	"context"
	"fmt"

	"github.com/example/go-dnn-parity/internal/device"
	"github.com/example/go-dnn-parity/internal/model"
	"github.com/example/go-dnn-parity/internal/tensor"
)

// Executor runs one model on one target and returns its named outputs.
type Executor interface {
	Name() string
	Execute(ctx context.Context, desc model.Descriptor, target device.Target, inputs *tensor.NamedSet) (*tensor.NamedSet, error)
}

// ExecError is a failure inside an executor's pipeline, tagged with the
// runner and the stage that failed. Unwrap yields the original cause.
type ExecError struct {
	Runner string
	Stage  string
	Err    error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Runner, e.Stage, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

func execFailed(runner, stage string, err error) error {
	return &ExecError{Runner: runner, Stage: stage, Err: err}
}
