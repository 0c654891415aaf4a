package pcell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/layout"
	"github.com/openpdk/sg13/internal/tech"
)

func synthDefault(t *testing.T, kind device.Kind) *layout.Cell {
	t.Helper()
	pdk := tech.Default()
	spec, err := device.Normalize(pdk, kind, nil)
	require.NoError(t, err)
	cell, err := Synthesize(pdk, spec)
	require.NoError(t, err)
	return cell
}

func TestSynthesizers_CoverAllKinds(t *testing.T) {
	for _, kind := range device.Kinds() {
		assert.Contains(t, synthesizers, kind, "kind %s has no synthesis strategy", kind)
	}
	assert.Len(t, synthesizers, len(device.Kinds()))
}

func TestSynthesize_AllKindsWithDefaults(t *testing.T) {
	for _, kind := range device.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			cell := synthDefault(t, kind)
			assert.Equal(t, kind, cell.Kind)
			assert.Greater(t, cell.PolyCount(), 0, "cell must carry geometry")
			assert.False(t, cell.BBox().Empty())
		})
	}
}

// Every vertex of every polygon must land on the manufacturing grid,
// and snapping must be a no-op on already-emitted geometry.
func TestSynthesize_AllVerticesOnGrid(t *testing.T) {
	pdk := tech.Default()
	for _, kind := range device.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			cell := synthDefault(t, kind)
			for _, layer := range cell.Layers() {
				for _, poly := range cell.Polygons[layer] {
					for _, pt := range poly {
						assert.True(t, pdk.Snap.OnGrid(pt.X), "%s: x=%d off grid", layer, pt.X)
						assert.True(t, pdk.Snap.OnGrid(pt.Y), "%s: y=%d off grid", layer, pt.Y)
					}
				}
			}
		})
	}
}

func TestSynthesize_Deterministic(t *testing.T) {
	params := map[string]float64{"width": 2.0, "length": 0.35, "nf": 3}
	pdk := tech.Default()

	first, err := device.Normalize(pdk, device.NMOS, params)
	require.NoError(t, err)
	second, err := device.Normalize(pdk, device.NMOS, params)
	require.NoError(t, err)

	a, err := Synthesize(pdk, first)
	require.NoError(t, err)
	b, err := Synthesize(pdk, second)
	require.NoError(t, err)

	da, err := layout.MarshalCanonical(a)
	require.NoError(t, err)
	db, err := layout.MarshalCanonical(b)
	require.NoError(t, err)
	assert.Equal(t, da, db, "equal spec keys must produce bit-identical cells")
}

// Ports sit on the edges of their pin-sublayer geometry and carry
// even widths.
func TestSynthesize_PortsOnPolygonEdges(t *testing.T) {
	for _, kind := range device.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			cell := synthDefault(t, kind)
			if kind == device.Sealring {
				assert.Empty(t, cell.Ports)
				return
			}
			require.NotEmpty(t, cell.Ports)
			for _, p := range cell.Ports {
				assert.Equal(t, "electrical", p.Type)
				assert.Zero(t, p.Width%2, "port %s width %d must be even", p.Name, p.Width)
				onEdge := false
				for _, poly := range cell.Polygons[p.Layer.Name] {
					if poly.OnBoundary(p.Position) {
						onEdge = true
						break
					}
				}
				assert.True(t, onEdge, "port %s not on an edge of %s", p.Name, p.Layer.Name)
			}
		})
	}
}

func TestSynthesize_TapContactGridTooLarge(t *testing.T) {
	pdk := tech.Default()
	spec, err := device.Normalize(pdk, device.Ptap1, map[string]float64{
		"width": 0.3, "length": 0.3, "rows": 4, "cols": 4,
	})
	require.NoError(t, err)

	_, err = Synthesize(pdk, spec)
	v, ok := IsDesignRuleViolation(err)
	require.True(t, ok, "expected a design rule violation, got %v", err)
	assert.Equal(t, device.Ptap1, v.Kind)
	assert.Equal(t, "cont.spacing", v.Rule)
}

func TestSynthesize_SealringHasStitchVias(t *testing.T) {
	cell := synthDefault(t, device.Sealring)
	for _, layer := range sealMetals {
		assert.Len(t, cell.Polygons[layer], 4, "annulus on %s is four frame rects", layer)
	}
	for _, layer := range sealVias {
		assert.NotEmpty(t, cell.Polygons[layer], "missing stitch vias on %s", layer)
	}
	assert.Len(t, cell.Polygons["EdgeSeal"], 4)
}

func TestCellName(t *testing.T) {
	pdk := tech.Default()
	spec, err := device.Normalize(pdk, device.NMOS, map[string]float64{
		"width": 1.0, "length": 0.13, "nf": 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "nmos_length130_nf4_width1000", CellName(spec))
}
