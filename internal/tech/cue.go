package tech

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/openpdk/sg13/internal/geom"
)

// rulesDoc mirrors the CUE rule document for decoding.
type rulesDoc struct {
	Grid   int64                       `json:"grid"`
	Dist   map[string]int64            `json:"dist"`
	Elec   map[string]float64          `json:"elec"`
	Device map[string]map[string]Range `json:"device"`
}

// ParseRules compiles and validates a CUE rule document. The document
// carries its own schema (positive-integer distances, max >= min on
// ranges), so malformed tables fail here instead of deep inside a
// synthesizer.
func ParseRules(data []byte, filename string) (*Rules, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile rule table: %w", err)
	}
	if err := v.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return nil, fmt.Errorf("validate rule table: %w", err)
	}

	var doc rulesDoc
	if err := v.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode rule table: %w", err)
	}
	if doc.Grid <= 0 {
		return nil, fmt.Errorf("rule table: grid must be positive, got %d", doc.Grid)
	}

	r := &Rules{
		grid:   geom.Coord(doc.Grid),
		dist:   make(map[string]geom.Coord, len(doc.Dist)),
		elec:   doc.Elec,
		device: doc.Device,
	}
	for name, d := range doc.Dist {
		if d <= 0 {
			return nil, fmt.Errorf("rule table: distance %q must be positive, got %d", name, d)
		}
		if d%doc.Grid != 0 {
			return nil, fmt.Errorf("rule table: distance %q (%d dbu) is off the %d dbu grid", name, d, doc.Grid)
		}
		r.dist[name] = geom.Coord(d)
	}
	for kind, params := range doc.Device {
		for param, rg := range params {
			if rg.Max < rg.Min {
				return nil, fmt.Errorf("rule table: device %s.%s: max %v below min %v", kind, param, rg.Max, rg.Min)
			}
		}
	}
	return r, nil
}
