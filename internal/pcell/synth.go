package pcell

import (
	"fmt"
	"strings"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/layout"
	"github.com/openpdk/sg13/internal/tech"
)

// synthFunc is one synthesis strategy: normalized spec in, finished
// cell out. Strategies are pure functions of (rules, spec).
type synthFunc func(pdk *tech.Tech, spec *device.Spec) (*layout.Cell, error)

// synthesizers is the closed strategy table. Every device.Kind has
// exactly one entry; TestSynthesizers_CoverAllKinds keeps the table
// and the kind list in lockstep.
var synthesizers = map[device.Kind]synthFunc{
	device.NMOS:     synthNMOS,
	device.PMOS:     synthPMOS,
	device.NMOSHV:   synthNMOSHV,
	device.PMOSHV:   synthPMOSHV,
	device.Rsil:     synthRsil,
	device.Rppd:     synthRppd,
	device.Rhigh:    synthRhigh,
	device.Cmim:     synthCmim,
	device.Ptap1:    synthPtap,
	device.Ntap1:    synthNtap,
	device.Sealring: synthSealring,
}

// Synthesize builds the geometry for a normalized spec. The result is
// deterministic: equal spec keys produce bit-identical cells.
func Synthesize(pdk *tech.Tech, spec *device.Spec) (*layout.Cell, error) {
	fn, ok := synthesizers[spec.Kind()]
	if !ok {
		return nil, fmt.Errorf("pcell: no synthesis strategy for kind %q", spec.Kind())
	}
	return fn(pdk, spec)
}

// CellName derives a GDS-safe cell name from the spec key.
func CellName(spec *device.Spec) string {
	r := strings.NewReplacer("|", "_", "=", "")
	return r.Replace(spec.Key())
}
