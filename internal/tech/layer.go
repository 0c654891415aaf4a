package tech

import (
	"fmt"
	"sort"
)

// LayerRef binds a logical layer name to its physical GDS pair.
type LayerRef struct {
	Name     string `json:"name"`
	Layer    int    `json:"layer"`
	Datatype int    `json:"datatype"`
}

// Key formats the physical pair the way GDS tooling prints it.
func (l LayerRef) Key() string {
	return fmt.Sprintf("%d/%d", l.Layer, l.Datatype)
}

// UnknownLayerError reports a logical layer name that is not registered
// in the stack.
type UnknownLayerError struct {
	Name string
}

func (e *UnknownLayerError) Error() string {
	return fmt.Sprintf("unknown layer %q: not registered in the layer stack", e.Name)
}

// Stack resolves logical layer names to physical layers. The mapping is
// bijective: a logical name has exactly one (layer, datatype) pair and
// vice versa, so geometry tagged by name is never ambiguous.
type Stack struct {
	byName map[string]LayerRef
	byPhys map[[2]int]string
	colors map[string]string // logical name -> fill color, for rendering
}

// NewStack builds a stack from a list of layer bindings. It fails when
// a logical name or a physical pair appears twice.
func NewStack(layers []LayerRef) (*Stack, error) {
	s := &Stack{
		byName: make(map[string]LayerRef, len(layers)),
		byPhys: make(map[[2]int]string, len(layers)),
		colors: make(map[string]string),
	}
	for _, l := range layers {
		if err := s.add(l); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Stack) add(l LayerRef) error {
	if prev, ok := s.byName[l.Name]; ok {
		return fmt.Errorf("layer %q bound twice: %s and %s", l.Name, prev.Key(), l.Key())
	}
	phys := [2]int{l.Layer, l.Datatype}
	if prev, ok := s.byPhys[phys]; ok {
		return fmt.Errorf("physical layer %s bound twice: %q and %q", l.Key(), prev, l.Name)
	}
	s.byName[l.Name] = l
	s.byPhys[phys] = l.Name
	return nil
}

// Resolve returns the physical binding for a logical layer name.
func (s *Stack) Resolve(name string) (LayerRef, error) {
	l, ok := s.byName[name]
	if !ok {
		return LayerRef{}, &UnknownLayerError{Name: name}
	}
	return l, nil
}

// MustResolve is Resolve for layer names the caller knows are part of
// the embedded stack. It panics on a missing name, which indicates a
// broken build, not bad input.
func (s *Stack) MustResolve(name string) LayerRef {
	l, err := s.Resolve(name)
	if err != nil {
		panic(err)
	}
	return l
}

// ByPhysical returns the logical name for a (layer, datatype) pair.
// Used when reading external geometry files back in.
func (s *Stack) ByPhysical(layer, datatype int) (LayerRef, bool) {
	name, ok := s.byPhys[[2]int{layer, datatype}]
	if !ok {
		return LayerRef{}, false
	}
	return s.byName[name], true
}

// FillColor returns the display color registered for a layer, or ""
// when the layer map carried none.
func (s *Stack) FillColor(name string) string { return s.colors[name] }

// Names returns all logical layer names, sorted for stable iteration.
func (s *Stack) Names() []string {
	names := make([]string, 0, len(s.byName))
	for n := range s.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered layers.
func (s *Stack) Len() int { return len(s.byName) }
