// Package tensor provides the dense float32 tensor model shared by both
// inference pipelines: canonical shapes, name-keyed tensor sets, and aliased
// canonical/native views over a single backing buffer.
package tensor

import (
	"fmt"
)

// Tensor is a dense float32 buffer with a canonical-order shape.
type Tensor struct {
	shape Shape
	data  []float32
}

// New creates a tensor from data and a canonical-order shape.
func New(data []float32, shape Shape) (*Tensor, error) {
	total, err := shape.Elems()
	if err != nil {
		return nil, err
	}

	if len(data) != total {
		return nil, fmt.Errorf("tensor: data length %d does not match shape %v (%d elements)", len(data), shape, total)
	}

	return &Tensor{
		shape: shape.Clone(),
		data:  append([]float32(nil), data...),
	}, nil
}

// Zeros creates a zero-initialized tensor.
func Zeros(shape Shape) (*Tensor, error) {
	total, err := shape.Elems()
	if err != nil {
		return nil, err
	}

	return &Tensor{
		shape: shape.Clone(),
		data:  make([]float32, total),
	}, nil
}

// Shape returns a copy of the canonical shape.
func (t *Tensor) Shape() Shape {
	if t == nil {
		return nil
	}

	return t.shape.Clone()
}

// Data returns a copy of the underlying buffer.
func (t *Tensor) Data() []float32 {
	if t == nil {
		return nil
	}

	return append([]float32(nil), t.data...)
}

// RawData returns the underlying buffer without copying.
// Callers must treat it as read-only.
func (t *Tensor) RawData() []float32 {
	if t == nil {
		return nil
	}

	return t.data
}

// ElemCount returns the number of elements in the tensor.
func (t *Tensor) ElemCount() int {
	if t == nil {
		return 0
	}

	return len(t.data)
}

// View is a window over a tensor's storage in one dimension order. Data
// aliases the tensor's buffer: writes through a view land in the tensor, and
// the canonical and native views of one tensor observe identical bits.
type View struct {
	Shape Shape
	Data  []float32
}

// Canonical returns the view in canonical (outer-to-inner) dimension order.
func (t *Tensor) Canonical() View {
	if t == nil {
		return View{}
	}

	return View{Shape: t.shape.Clone(), Data: t.data}
}

// Native returns the view in the runtime-native (reversed) dimension order,
// backed by the same buffer as the canonical view.
func (t *Tensor) Native() View {
	if t == nil {
		return View{}
	}

	return View{Shape: t.shape.Reversed(), Data: t.data}
}
