package pcell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/geom"
	"github.com/openpdk/sg13/internal/tech"
)

func TestResistor_BodyAndTerminals(t *testing.T) {
	cell := buildCell(t, device.Rsil, map[string]float64{"width": 0.8, "length": 10.0})

	// Body plus two end extensions.
	require.Len(t, cell.Polygons["GatPoly"], 3)
	assert.Len(t, cell.Polygons["Metal1"], 2)
	assert.Len(t, cell.Polygons["Rsil"], 1)
	assert.Len(t, cell.Polygons["ResistorMark"], 1)

	// Terminals face away from each other on the metal heads.
	require.Len(t, cell.Ports, 2)
	p1, p2 := cell.Ports[0], cell.Ports[1]
	assert.Equal(t, "P1", p1.Name)
	assert.Equal(t, "P2", p2.Name)
	assert.Equal(t, 180, p1.Orientation)
	assert.Equal(t, 0, p2.Orientation)
	assert.Less(t, p1.Position.X, p2.Position.X)
	assert.Equal(t, p1.Position.Y, p2.Position.Y)
}

func TestResistor_SettingsCarryResistance(t *testing.T) {
	tests := []struct {
		kind       device.Kind
		params     map[string]float64
		resistance string
	}{
		{device.Rsil, map[string]float64{"width": 0.8, "length": 10.0}, "87.5"},
		{device.Rppd, map[string]float64{"width": 0.8, "length": 10.0}, "3750.0"},
		{device.Rhigh, map[string]float64{"width": 1.4, "length": 20.0}, "19285.7"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			cell := buildCell(t, tt.kind, tt.params)
			assert.Equal(t, tt.resistance, cell.Settings["resistance"])
		})
	}
}

func TestResistor_FlavorLayers(t *testing.T) {
	rppd := buildCell(t, device.Rppd, nil)
	assert.NotEmpty(t, rppd.Polygons["pSD"])
	assert.NotEmpty(t, rppd.Polygons["Rppd"])
	assert.Empty(t, rppd.Polygons["Rsil"])
	assert.Empty(t, rppd.Polygons["NWell"])

	rhigh := buildCell(t, device.Rhigh, nil)
	assert.NotEmpty(t, rhigh.Polygons["NWell"], "rhigh isolates in an n-well")
	assert.NotEmpty(t, rhigh.Polygons["Rhigh"])

	// The high-resistance flavor doubles the contact columns per end.
	rsil := buildCell(t, device.Rsil, map[string]float64{"width": 1.4, "length": 20.0})
	assert.Equal(t, 2*len(rsil.Polygons["Cont"]), len(rhigh.Polygons["Cont"]))
}

func TestCmim_TopPlateTracksViaArray(t *testing.T) {
	pdk := tech.Default()
	cell := buildCell(t, device.Cmim, map[string]float64{"width": 5.0, "length": 5.0})

	require.Len(t, cell.Polygons["MIM"], 1)
	require.Len(t, cell.Polygons["Metal5"], 1)
	require.Len(t, cell.Polygons["TopMetal1"], 1)

	// The 5x5 dielectric fits a 4x4 via grid.
	assert.Len(t, cell.Polygons["Vmim"], 16)

	// Top plate width is three via sizes per column.
	via := pdk.Rules.Dist("mim.via.size")
	top := cell.Polygons["TopMetal1"][0].BBox()
	assert.Equal(t, 12*via, top.W())
	assert.Equal(t, 12*via, top.H())

	// Every via stays under the top plate, and the top plate stays on
	// the bottom plate.
	bottom := cell.Polygons["Metal5"][0].BBox()
	for _, v := range cell.Polygons["Vmim"] {
		bb := v.BBox()
		assert.GreaterOrEqual(t, bb.X1, top.X1)
		assert.LessOrEqual(t, bb.X2, top.X2)
	}
	assert.GreaterOrEqual(t, top.X1, bottom.X1)
	assert.LessOrEqual(t, top.X2, bottom.X2)

	assert.Equal(t, "37.500", cell.Settings["capacitance_fF"])
}

func TestTap_ContactGridAndStrap(t *testing.T) {
	cell := buildCell(t, device.Ptap1, map[string]float64{
		"width": 2.0, "length": 2.0, "rows": 3, "cols": 2,
	})

	assert.Len(t, cell.Polygons["Cont"], 6)
	require.Len(t, cell.Polygons["Metal1"], 1)
	assert.NotEmpty(t, cell.Polygons["pSD"])
	assert.NotEmpty(t, cell.Polygons["Ptap"])
	assert.Empty(t, cell.Polygons["NWell"])

	// The strap covers every contact.
	strap := cell.Polygons["Metal1"][0].BBox()
	for _, c := range cell.Polygons["Cont"] {
		bb := c.BBox()
		assert.GreaterOrEqual(t, bb.X1, strap.X1)
		assert.LessOrEqual(t, bb.X2, strap.X2)
		assert.GreaterOrEqual(t, bb.Y1, strap.Y1)
		assert.LessOrEqual(t, bb.Y2, strap.Y2)
	}

	require.Len(t, cell.Ports, 1)
	assert.Equal(t, "TAP", cell.Ports[0].Name)
}

func TestTap_NFlavorAddsWell(t *testing.T) {
	pdk := tech.Default()
	cell := buildCell(t, device.Ntap1, nil)
	require.Len(t, cell.Polygons["NWell"], 1)
	assert.NotEmpty(t, cell.Polygons["nSD"])
	assert.NotEmpty(t, cell.Polygons["Ntap"])
	assert.Empty(t, cell.Polygons["pSD"])

	activ, ok := cell.LayerBBox("Activ")
	require.True(t, ok)
	nwell := cell.Polygons["NWell"][0].BBox()
	enc := pdk.Rules.Dist("tap.nwell.enc")
	assert.Equal(t, geom.Rect{
		X1: activ.X1 - enc, Y1: activ.Y1 - enc,
		X2: activ.X2 + enc, Y2: activ.Y2 + enc,
	}, nwell)
}
