package device

import (
	"fmt"
	"sort"
	"strings"

	"github.com/openpdk/sg13/internal/geom"
)

// Kind tags one device family. The set is closed: every Kind listed
// here has exactly one synthesis strategy registered for it, and the
// registry test keeps the two in lockstep.
type Kind string

const (
	NMOS     Kind = "nmos"
	PMOS     Kind = "pmos"
	NMOSHV   Kind = "nmos_hv"
	PMOSHV   Kind = "pmos_hv"
	Rsil     Kind = "rsil"
	Rppd     Kind = "rppd"
	Rhigh    Kind = "rhigh"
	Cmim     Kind = "cmim"
	Ptap1    Kind = "ptap1"
	Ntap1    Kind = "ntap1"
	Sealring Kind = "sealring"
)

// Kinds lists every device kind in the PDK, sorted.
func Kinds() []Kind {
	return []Kind{Cmim, NMOS, NMOSHV, Ntap1, PMOS, PMOSHV, Ptap1, Rhigh, Rppd, Rsil, Sealring}
}

// Spec is a canonical, immutable device specification: the kind plus
// normalized parameters. Dimensions are grid-aligned dbu, counts are
// plain integers. Construct only through Normalize.
type Spec struct {
	kind   Kind
	dims   map[string]geom.Coord
	counts map[string]int
	key    string
}

// Kind returns the device family tag.
func (s *Spec) Kind() Kind { return s.kind }

// Dim returns a normalized dimension parameter in dbu. Asking for a
// parameter the kind does not have is a programming error.
func (s *Spec) Dim(name string) geom.Coord {
	d, ok := s.dims[name]
	if !ok {
		panic(fmt.Sprintf("device: %s has no dimension parameter %q", s.kind, name))
	}
	return d
}

// Count returns a normalized integer parameter.
func (s *Spec) Count(name string) int {
	c, ok := s.counts[name]
	if !ok {
		panic(fmt.Sprintf("device: %s has no count parameter %q", s.kind, name))
	}
	return c
}

// Key is the stable cache and snapshot key: the kind followed by every
// parameter in sorted order, dimensions in whole dbu. Two specs with
// equal keys are the same device.
func (s *Spec) Key() string { return s.key }

// Settings echoes the normalized parameters as strings (microns for
// dimensions), for the cell settings record used in regression diffs.
func (s *Spec) Settings() map[string]string {
	out := make(map[string]string, len(s.dims)+len(s.counts))
	for name, d := range s.dims {
		out[name] = fmt.Sprintf("%.3f", d.Microns())
	}
	for name, c := range s.counts {
		out[name] = fmt.Sprintf("%d", c)
	}
	return out
}

func buildKey(kind Kind, dims map[string]geom.Coord, counts map[string]int) string {
	parts := make([]string, 0, len(dims)+len(counts))
	for name, d := range dims {
		parts = append(parts, fmt.Sprintf("%s=%d", name, d))
	}
	for name, c := range counts {
		parts = append(parts, fmt.Sprintf("%s=%d", name, c))
	}
	sort.Strings(parts)
	return string(kind) + "|" + strings.Join(parts, "|")
}
