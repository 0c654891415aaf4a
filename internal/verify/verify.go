package verify

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/openpdk/sg13/internal/geom"
	"github.com/openpdk/sg13/internal/layout"
)

// LayerDiff is the residual on one mismatched layer.
type LayerDiff struct {
	Layer    string
	Residual []geom.Polygon
	Area     float64 // dbu^2
}

// Result is a full equivalence report. Every layer of both cells is
// compared; mismatched layers appear in Diffs in layer-name order.
type Result struct {
	Equivalent bool
	Diffs      []LayerDiff
	TotalArea  float64 // dbu^2 over all mismatched layers
}

// Err returns nil for an equivalent result and a MismatchError
// otherwise.
func (r *Result) Err() error {
	if r.Equivalent {
		return nil
	}
	return &MismatchError{Diffs: r.Diffs, TotalArea: r.TotalArea}
}

// MismatchError reports non-equivalence with the per-layer residuals.
type MismatchError struct {
	Diffs     []LayerDiff
	TotalArea float64
}

func (e *MismatchError) Error() string {
	names := make([]string, len(e.Diffs))
	for i, d := range e.Diffs {
		names[i] = fmt.Sprintf("%s (%.1f dbu2)", d.Layer, d.Area)
	}
	return fmt.Sprintf("cells differ on %d layer(s): %s", len(e.Diffs), strings.Join(names, ", "))
}

// IsMismatch reports whether err wraps a MismatchError.
func IsMismatch(err error) (*MismatchError, bool) {
	var m *MismatchError
	ok := errors.As(err, &m)
	return m, ok
}

// Compare XORs two cells layer by layer. It never stops at the first
// difference: the report covers every layer present in either cell,
// so a regression diff shows the full extent of a change.
func Compare(a, b *layout.Cell) *Result {
	seen := make(map[string]bool)
	var layers []string
	for name := range a.Polygons {
		if !seen[name] {
			seen[name] = true
			layers = append(layers, name)
		}
	}
	for name := range b.Polygons {
		if !seen[name] {
			seen[name] = true
			layers = append(layers, name)
		}
	}
	sort.Strings(layers)

	res := &Result{Equivalent: true}
	for _, layer := range layers {
		pa, pb := a.Polygons[layer], b.Polygons[layer]
		if polysEqual(pa, pb) {
			continue
		}
		residual := xorPolys(pa, pb)
		ar := area(residual)
		if ar <= Epsilon {
			continue
		}
		res.Equivalent = false
		res.Diffs = append(res.Diffs, LayerDiff{Layer: layer, Residual: residual, Area: ar})
		res.TotalArea += ar
	}
	return res
}

// polysEqual is the exact fast path: identical polygon lists XOR to
// nothing, no clipping needed.
func polysEqual(a, b []geom.Polygon) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
