package tensor

import (
	"fmt"
	"math"
)

// Shape describes one tensor's dimensions in canonical (outer-to-inner)
// order. Runtimes that index dimensions inner-to-outer consume the reversed
// view of the same shape; both orderings describe the identical buffer.
type Shape []int64

// Validate reports whether the shape can describe a concrete buffer:
// at least one dimension, every dimension strictly positive.
func (s Shape) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("tensor: shape is empty")
	}

	for i, dim := range s {
		if dim < 1 {
			return fmt.Errorf("tensor: shape[%d]=%d is not positive", i, dim)
		}
	}

	return nil
}

// Elems returns the number of elements the shape describes.
func (s Shape) Elems() (int, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}

	count := int64(1)
	for _, dim := range s {
		if count > math.MaxInt64/dim {
			return 0, fmt.Errorf("tensor: shape %v overflows element count", s)
		}
		count *= dim
	}

	if count > int64(math.MaxInt) {
		return 0, fmt.Errorf("tensor: shape %v exceeds platform int capacity", s)
	}

	return int(count), nil
}

// Reversed returns a new shape with the dimension order flipped. Reversing
// twice yields the original shape.
func (s Shape) Reversed() Shape {
	out := make(Shape, len(s))
	for i, dim := range s {
		out[len(s)-1-i] = dim
	}

	return out
}

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	return append(Shape(nil), s...)
}

// Equal reports whether both shapes have identical rank and dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}

	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}

	return true
}
