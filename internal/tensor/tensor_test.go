package tensor

import (
	"reflect"
	"strings"
	"testing"
)

func TestShapeValidate(t *testing.T) {
	tests := []struct {
		name      string
		shape     Shape
		wantError string
	}{
		{name: "scalar-like", shape: Shape{1}},
		{name: "nchw", shape: Shape{1, 3, 62, 62}},
		{name: "empty", shape: Shape{}, wantError: "shape is empty"},
		{name: "zero dim", shape: Shape{1, 0, 3}, wantError: "shape[1]=0 is not positive"},
		{name: "negative dim", shape: Shape{-2}, wantError: "shape[0]=-2 is not positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.shape.Validate()
			if tt.wantError == "" {
				if err != nil {
					t.Fatalf("Validate failed: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatal("expected error")
			}

			if !strings.Contains(err.Error(), tt.wantError) {
				t.Fatalf("expected error containing %q, got %v", tt.wantError, err)
			}
		})
	}
}

func TestShapeElems(t *testing.T) {
	got, err := Shape{1, 3, 62, 62}.Elems()
	if err != nil {
		t.Fatalf("Elems failed: %v", err)
	}

	if got != 11532 {
		t.Fatalf("expected 11532 elements, got %d", got)
	}

	if _, err := (Shape{1 << 32, 1 << 32, 4}).Elems(); err == nil {
		t.Fatal("expected overflow error")
	}
}

func TestShapeReversedRoundTrip(t *testing.T) {
	shapes := []Shape{{1}, {2, 3}, {1, 3, 62, 62}, {5, 4, 3, 2, 1}}
	for _, s := range shapes {
		rev := s.Reversed()
		if got := rev.Reversed(); !got.Equal(s) {
			t.Fatalf("reverse round trip changed %v to %v", s, got)
		}

		for i := range s {
			if rev[len(s)-1-i] != s[i] {
				t.Fatalf("reversed %v has %v", s, rev)
			}
		}
	}
}

func TestNewTensor(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		tt, err := New([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		if !tt.Shape().Equal(Shape{2, 3}) {
			t.Fatalf("unexpected shape: %v", tt.Shape())
		}

		if tt.ElemCount() != 6 {
			t.Fatalf("unexpected element count: %d", tt.ElemCount())
		}
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := New([]float32{1, 2, 3}, Shape{2, 2})
		if err == nil {
			t.Fatal("expected length mismatch error")
		}

		if !strings.Contains(err.Error(), "does not match shape") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("invalid shape", func(t *testing.T) {
		if _, err := New(nil, Shape{}); err == nil {
			t.Fatal("expected invalid shape error")
		}
	})

	t.Run("data copied on construction", func(t *testing.T) {
		src := []float32{1, 2}
		tt, err := New(src, Shape{2})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		src[0] = 99
		if tt.RawData()[0] != 1 {
			t.Fatal("tensor aliased caller data")
		}
	})
}

func TestViewsShareStorage(t *testing.T) {
	tt, err := New([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	canonical := tt.Canonical()
	native := tt.Native()

	if !canonical.Shape.Equal(Shape{2, 3}) {
		t.Fatalf("unexpected canonical shape: %v", canonical.Shape)
	}

	if !native.Shape.Equal(Shape{3, 2}) {
		t.Fatalf("unexpected native shape: %v", native.Shape)
	}

	// Every element must be visible through both views at the same linear
	// offset: the two orderings describe one buffer.
	for i := range canonical.Data {
		if canonical.Data[i] != native.Data[i] {
			t.Fatalf("views disagree at offset %d: %v vs %v", i, canonical.Data[i], native.Data[i])
		}
	}

	// A write through the native view must be visible canonically.
	native.Data[0] = 42
	if canonical.Data[0] != 42 {
		t.Fatal("native view write not visible through canonical view")
	}

	if tt.RawData()[0] != 42 {
		t.Fatal("view write not visible in tensor storage")
	}
}

func TestDataReturnsCopy(t *testing.T) {
	tt, err := Zeros(Shape{4})
	if err != nil {
		t.Fatalf("Zeros failed: %v", err)
	}

	d := tt.Data()
	d[0] = 7
	if tt.RawData()[0] != 0 {
		t.Fatal("Data must return an independent copy")
	}
}

func TestNamedSet(t *testing.T) {
	set := NewNamedSet()

	a, _ := Zeros(Shape{1})
	b, _ := Zeros(Shape{2})

	if err := set.Put("prob", a); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := set.Put("age_conv3", b); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := set.Put("prob", a); err == nil {
		t.Fatal("expected duplicate entry error")
	}

	if err := set.Put("", a); err == nil {
		t.Fatal("expected empty name error")
	}

	if err := set.Put("nil", nil); err == nil {
		t.Fatal("expected nil tensor error")
	}

	if set.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", set.Len())
	}

	if !reflect.DeepEqual(set.Names(), []string{"age_conv3", "prob"}) {
		t.Fatalf("expected sorted names, got %v", set.Names())
	}

	got, ok := set.Get("prob")
	if !ok || got != a {
		t.Fatal("Get returned wrong tensor")
	}

	if _, ok := set.Get("missing"); ok {
		t.Fatal("Get found nonexistent entry")
	}
}
