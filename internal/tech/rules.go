package tech

import (
	"fmt"
	"sort"

	"github.com/openpdk/sg13/internal/geom"
)

// Range is the allowed interval for one electrical parameter of one
// device kind. Min/Max are in microns for dimensions and in plain counts
// for integer parameters (Int set).
type Range struct {
	Min  float64  `json:"min"`
	Max  float64  `json:"max"`
	Int  bool     `json:"int"`
	Dflt *float64 `json:"dflt"`
}

// Rules is the immutable design-rule repository: named distances (min
// width, spacing, enclosure, extension) in dbu, plus per-device
// parameter ranges. Layer scoping lives in the rule names
// ("cont.enc.activ" is the Cont-in-Activ enclosure).
type Rules struct {
	grid   geom.Coord
	dist   map[string]geom.Coord
	elec   map[string]float64
	device map[string]map[string]Range
}

// Grid returns the manufacturing grid pitch in dbu.
func (r *Rules) Grid() geom.Coord { return r.grid }

// Lookup returns a named distance rule, reporting whether it exists.
func (r *Rules) Lookup(name string) (geom.Coord, bool) {
	d, ok := r.dist[name]
	return d, ok
}

// Dist returns a named distance rule. The rule table ships embedded in
// the binary, so a missing name is a build defect: Dist panics rather
// than making every synthesizer thread an impossible error.
func (r *Rules) Dist(name string) geom.Coord {
	d, ok := r.dist[name]
	if !ok {
		panic(fmt.Sprintf("tech: no design rule %q in repository", name))
	}
	return d
}

// Elec returns a named electrical constant (sheet resistance in
// ohm/square, capacitance density in fF/um^2). Same missing-name
// contract as Dist.
func (r *Rules) Elec(name string) float64 {
	v, ok := r.elec[name]
	if !ok {
		panic(fmt.Sprintf("tech: no electrical constant %q in repository", name))
	}
	return v
}

// Range returns the allowed interval for a device parameter.
func (r *Rules) Range(kind, param string) (Range, bool) {
	params, ok := r.device[kind]
	if !ok {
		return Range{}, false
	}
	rg, ok := params[param]
	return rg, ok
}

// Params returns the parameter names a device kind accepts, sorted.
func (r *Rules) Params(kind string) []string {
	params, ok := r.device[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(params))
	for n := range params {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// HasKind reports whether the repository carries ranges for a device kind.
func (r *Rules) HasKind(kind string) bool {
	_, ok := r.device[kind]
	return ok
}

// RuleNames returns all distance-rule names, sorted.
func (r *Rules) RuleNames() []string {
	names := make([]string, 0, len(r.dist))
	for n := range r.dist {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
