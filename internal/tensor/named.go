package tensor

import (
	"fmt"
	"sort"
)

// NamedSet maps tensor names to tensors. Names are unique within a set.
// Iteration helpers return names in sorted order so callers that walk a set
// behave identically from run to run.
type NamedSet struct {
	tensors map[string]*Tensor
}

// NewNamedSet creates an empty set.
func NewNamedSet() *NamedSet {
	return &NamedSet{tensors: make(map[string]*Tensor)}
}

// Put adds a tensor under name. Adding a duplicate name is an error.
func (s *NamedSet) Put(name string, t *Tensor) error {
	if name == "" {
		return fmt.Errorf("tensor: set entry name must not be empty")
	}
	if t == nil {
		return fmt.Errorf("tensor: set entry %q must not be nil", name)
	}

	if _, exists := s.tensors[name]; exists {
		return fmt.Errorf("tensor: duplicate set entry %q", name)
	}

	s.tensors[name] = t

	return nil
}

// Get returns the tensor stored under name.
func (s *NamedSet) Get(name string) (*Tensor, bool) {
	t, ok := s.tensors[name]

	return t, ok
}

// Names returns all entry names in sorted order.
func (s *NamedSet) Names() []string {
	names := make([]string, 0, len(s.tensors))
	for name := range s.tensors {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Len returns the number of entries.
func (s *NamedSet) Len() int {
	return len(s.tensors)
}
