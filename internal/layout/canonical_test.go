package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/geom"
	"github.com/openpdk/sg13/internal/tech"
)

func testCell(t *testing.T) *Cell {
	t.Helper()
	pdk := tech.Default()
	spec, err := device.Normalize(pdk, device.Rsil, map[string]float64{"width": 0.8, "length": 2.0})
	require.NoError(t, err)

	c := NewCell("rsil_test", spec)
	c.Polygons["GatPoly"] = []geom.Polygon{
		geom.NewRect(0, 0, 2000, 800).Poly(),
	}
	c.Polygons["Metal1"] = []geom.Polygon{
		geom.NewRect(-460, -60, 60, 860).Poly(),
		geom.NewRect(1940, -60, 2460, 860).Poly(),
	}
	c.Ports = []Port{
		{
			Name:        "P2",
			Layer:       pdk.Stack.MustResolve("Metal1"),
			Position:    geom.Point{X: 2460, Y: 400},
			Orientation: 0,
			Width:       800,
			Type:        "electrical",
		},
		{
			Name:        "P1",
			Layer:       pdk.Stack.MustResolve("Metal1"),
			Position:    geom.Point{X: -460, Y: 400},
			Orientation: 180,
			Width:       800,
			Type:        "electrical",
		},
	}
	return c
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	a, err := MarshalCanonical(testCell(t))
	require.NoError(t, err)
	b, err := MarshalCanonical(testCell(t))
	require.NoError(t, err)
	assert.Equal(t, a, b, "canonical serialization must be byte-stable")
}

func TestMarshalCanonical_SortsPortsByName(t *testing.T) {
	data, err := MarshalCanonical(testCell(t))
	require.NoError(t, err)

	s := string(data)
	assert.Less(t, strings.Index(s, `"name":"P1"`), strings.Index(s, `"name":"P2"`),
		"ports must serialize in name order regardless of insertion order")
}

func TestMarshalCanonical_RoundTrip(t *testing.T) {
	orig := testCell(t)
	data, err := MarshalCanonical(orig)
	require.NoError(t, err)

	back, err := UnmarshalCell(data, tech.Default().Stack)
	require.NoError(t, err)

	assert.Equal(t, orig.Name, back.Name)
	assert.Equal(t, orig.Kind, back.Kind)
	assert.Equal(t, orig.Key, back.Key)
	assert.Equal(t, orig.Settings, back.Settings)
	assert.Equal(t, orig.Layers(), back.Layers())
	for _, layer := range orig.Layers() {
		require.Len(t, back.Polygons[layer], len(orig.Polygons[layer]))
		for i := range orig.Polygons[layer] {
			assert.True(t, orig.Polygons[layer][i].Equal(back.Polygons[layer][i]))
		}
	}

	// Round-tripped output is byte-identical.
	again, err := MarshalCanonical(back)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestUnmarshalCell_RejectsUnknownLayer(t *testing.T) {
	const doc = `{"key":"k","kind":"rsil","name":"n","polygons":{"Mystery":[[[0,0],[1,0],[1,1]]]},"ports":[],"settings":{}}`
	_, err := UnmarshalCell([]byte(doc), tech.Default().Stack)
	assert.ErrorContains(t, err, "Mystery")
}

func TestCell_BBoxAndLayers(t *testing.T) {
	c := testCell(t)
	assert.Equal(t, []string{"GatPoly", "Metal1"}, c.Layers())
	assert.Equal(t, 3, c.PolyCount())
	assert.Equal(t, geom.Rect{X1: -460, Y1: -60, X2: 2460, Y2: 860}, c.BBox())

	bb, ok := c.LayerBBox("GatPoly")
	require.True(t, ok)
	assert.Equal(t, geom.Rect{X1: 0, Y1: 0, X2: 2000, Y2: 800}, bb)

	_, ok = c.LayerBBox("Metal2")
	assert.False(t, ok)
}
