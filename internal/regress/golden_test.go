package regress

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/layout"
	"github.com/openpdk/sg13/internal/pcell"
	"github.com/openpdk/sg13/internal/tech"
)

// Golden geometry snapshots: the canonical serialization of every
// default cell is pinned against fixtures in testdata/golden.
//
// To record or regenerate the fixtures, run:
//
//	go test ./internal/regress -update
func TestGolden_DefaultCells(t *testing.T) {
	pdk := tech.Default()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, kind := range device.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			spec, err := device.Normalize(pdk, kind, nil)
			require.NoError(t, err)
			cell, err := pcell.Synthesize(pdk, spec)
			require.NoError(t, err)
			data, err := layout.MarshalCanonical(cell)
			require.NoError(t, err)

			fixture := filepath.Join("testdata", "golden", cell.Name+".golden")
			if _, err := os.Stat(fixture); errors.Is(err, os.ErrNotExist) && !updateRequested() {
				t.Skipf("fixture %s not recorded; run with -update", fixture)
			}
			g.Assert(t, cell.Name, data)
		})
	}
}

// updateRequested reports whether the test run carries goldie's
// -update flag.
func updateRequested() bool {
	for _, arg := range os.Args {
		if arg == "-update" || arg == "--update" {
			return true
		}
	}
	return false
}
