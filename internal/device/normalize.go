package device

import (
	"fmt"
	"math"

	"github.com/openpdk/sg13/internal/geom"
	"github.com/openpdk/sg13/internal/tech"
)

// ValidationError reports a caller-supplied parameter outside its
// allowed range, or missing, or unknown for the device kind.
type ValidationError struct {
	Kind  Kind
	Param string
	Value float64
	Min   float64
	Max   float64
	Why   string
}

func (e *ValidationError) Error() string {
	if e.Why != "" {
		return fmt.Sprintf("%s %s: %s", e.Kind, e.Param, e.Why)
	}
	return fmt.Sprintf("%s %s %g out of range [%g, %g]", e.Kind, e.Param, e.Value, e.Min, e.Max)
}

// UnknownKindError reports a device kind the PDK does not provide.
type UnknownKindError struct {
	Kind Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown device kind %q", e.Kind)
}

// Normalize validates raw micron-valued parameters against the rule
// repository's per-kind ranges and produces a canonical Spec.
//
// Missing parameters take the repository default when one exists.
// Dimension parameters are snapped to the manufacturing grid with ties
// rounding up, so a requested electrical minimum never shrinks. The
// call is side-effect-free; on any failure no Spec is returned.
func Normalize(pdk *tech.Tech, kind Kind, params map[string]float64) (*Spec, error) {
	if !pdk.Rules.HasKind(string(kind)) {
		return nil, &UnknownKindError{Kind: kind}
	}

	allowed := pdk.Rules.Params(string(kind))
	allowedSet := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		allowedSet[name] = true
	}
	for name := range params {
		if !allowedSet[name] {
			return nil, &ValidationError{Kind: kind, Param: name, Why: "unexpected parameter"}
		}
	}

	dims := make(map[string]geom.Coord)
	counts := make(map[string]int)
	for _, name := range allowed {
		rg, _ := pdk.Rules.Range(string(kind), name)

		val, supplied := params[name]
		if !supplied {
			if rg.Dflt == nil {
				return nil, &ValidationError{Kind: kind, Param: name, Why: "required parameter missing"}
			}
			val = *rg.Dflt
		}
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, &ValidationError{Kind: kind, Param: name, Why: "not a finite number"}
		}
		if val < rg.Min || val > rg.Max {
			return nil, &ValidationError{Kind: kind, Param: name, Value: val, Min: rg.Min, Max: rg.Max}
		}

		if rg.Int {
			if val != math.Trunc(val) {
				return nil, &ValidationError{Kind: kind, Param: name, Why: fmt.Sprintf("must be an integer, got %g", val)}
			}
			counts[name] = int(val)
			continue
		}
		dims[name] = pdk.Snap.Snap(geom.FromMicrons(val))
	}

	return &Spec{
		kind:   kind,
		dims:   dims,
		counts: counts,
		key:    buildKey(kind, dims, counts),
	}, nil
}
