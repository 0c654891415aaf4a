package regress

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/gdsfile"
	"github.com/openpdk/sg13/internal/layout"
	"github.com/openpdk/sg13/internal/pcell"
	"github.com/openpdk/sg13/internal/tech"
)

// GDSOracle serves reference geometry from a directory of GDS files
// produced by an external generator, one file per cell name. It
// implements verify.Reference; the oracle only reads, never generates.
type GDSOracle struct {
	dir   string
	stack *tech.Stack
}

// NewGDSOracle wraps a directory of externally generated GDS files.
func NewGDSOracle(dir string, stack *tech.Stack) *GDSOracle {
	return &GDSOracle{dir: dir, stack: stack}
}

// Synthesize loads the reference cell recorded for a spec. A spec with
// no recorded file fails with a MissingReferenceError.
func (o *GDSOracle) Synthesize(spec *device.Spec) (*layout.Cell, error) {
	name := pcell.CellName(spec)
	path := filepath.Join(o.dir, name+".gds")

	lib, err := gdsfile.ReadFile(path, o.stack)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &MissingReferenceError{Name: name, Path: path}
	}
	if err != nil {
		return nil, err
	}
	for _, c := range lib.Cells {
		if c.Name == name {
			return c, nil
		}
	}
	if len(lib.Cells) == 1 {
		return lib.Cells[0], nil
	}
	return nil, fmt.Errorf("reference %s: no cell %q in library (%d cells)", path, name, len(lib.Cells))
}
