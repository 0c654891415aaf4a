package verify

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/geom"
	"github.com/openpdk/sg13/internal/layout"
	"github.com/openpdk/sg13/internal/pcell"
	"github.com/openpdk/sg13/internal/tech"
)

func synth(t *testing.T, pdk *tech.Tech, kind device.Kind, params map[string]float64) *layout.Cell {
	t.Helper()
	spec, err := device.Normalize(pdk, kind, params)
	require.NoError(t, err)
	cell, err := pcell.Synthesize(pdk, spec)
	require.NoError(t, err)
	return cell
}

func TestCompare_Reflexive(t *testing.T) {
	pdk := tech.Default()
	for _, kind := range device.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			spec, err := device.Normalize(pdk, kind, nil)
			require.NoError(t, err)
			a, err := pcell.Synthesize(pdk, spec)
			require.NoError(t, err)
			b, err := pcell.Synthesize(pdk, spec)
			require.NoError(t, err)

			res := Compare(a, b)
			assert.True(t, res.Equivalent)
			assert.Empty(t, res.Diffs)
			assert.Zero(t, res.TotalArea)
			assert.NoError(t, res.Err())
		})
	}
}

func TestCompare_ParameterChangeIsVisible(t *testing.T) {
	pdk := tech.Default()
	a := synth(t, pdk, device.Rsil, map[string]float64{"width": 0.8, "length": 10.0})
	b := synth(t, pdk, device.Rsil, map[string]float64{"width": 0.8, "length": 12.0})

	res := Compare(a, b)
	assert.False(t, res.Equivalent)
	require.NotEmpty(t, res.Diffs)
	assert.Greater(t, res.TotalArea, 0.0)

	err := res.Err()
	m, ok := IsMismatch(err)
	require.True(t, ok)
	assert.Equal(t, res.Diffs, m.Diffs)
}

// A single translated polygon on one layer shows up on exactly that
// layer, with the area of the symmetric difference.
func TestCompare_ResidualIsolatedToChangedLayer(t *testing.T) {
	pdk := tech.Default()
	a := synth(t, pdk, device.NMOS, map[string]float64{"width": 1.0, "length": 0.13, "nf": 2})
	b := synth(t, pdk, device.NMOS, map[string]float64{"width": 1.0, "length": 0.13, "nf": 2})

	// Shift one contact by one grid step.
	b.Polygons["Cont"][0] = b.Polygons["Cont"][0].Translate(5, 0)

	res := Compare(a, b)
	assert.False(t, res.Equivalent)
	require.Len(t, res.Diffs, 1)
	assert.Equal(t, "Cont", res.Diffs[0].Layer)

	// A 160-dbu square shifted by 5 dbu leaves two 5x160 slivers.
	assert.InDelta(t, 2*5*160, res.Diffs[0].Area, Epsilon)
}

// Changing one design rule constant moves only the layers derived
// from it; everything else XORs to empty.
func TestCompare_RuleChangeAffectsOnlyDerivedLayers(t *testing.T) {
	base := tech.Default()

	src := tech.EmbeddedRulesCUE()
	re := regexp.MustCompile(`"gatpoly\.over\.activ":\s*\d+`)
	modified := re.ReplaceAll(src, []byte(`"gatpoly.over.activ": 250`))
	require.NotEqual(t, src, modified)

	rules, err := tech.ParseRules(modified, "rules.cue")
	require.NoError(t, err)
	variant := tech.New(rules, base.Stack)

	params := map[string]float64{"width": 1.0, "length": 0.13, "nf": 2}
	a := synth(t, base, device.NMOS, params)
	b := synth(t, variant, device.NMOS, params)

	res := Compare(a, b)
	assert.False(t, res.Equivalent)
	require.NotEmpty(t, res.Diffs)

	// The poly endcap enclosure feeds the gate stripes and their pin
	// mirror; metal, diffusion and contacts do not depend on it.
	changed := make(map[string]bool)
	for _, d := range res.Diffs {
		changed[d.Layer] = true
		assert.Greater(t, d.Area, 0.0)
	}
	assert.True(t, changed["GatPoly"])
	assert.False(t, changed["Metal1"], "metal columns must not move")
	assert.False(t, changed["Activ"], "diffusion must not move")
	assert.False(t, changed["Cont"], "contacts must not move")
}

func TestCompare_MissingLayerIsFullResidual(t *testing.T) {
	pdk := tech.Default()
	a := synth(t, pdk, device.Rsil, nil)
	b := synth(t, pdk, device.Rsil, nil)
	delete(b.Polygons, "Rsil")

	res := Compare(a, b)
	assert.False(t, res.Equivalent)
	require.Len(t, res.Diffs, 1)
	assert.Equal(t, "Rsil", res.Diffs[0].Layer)
	assert.InDelta(t, area(a.Polygons["Rsil"]), res.Diffs[0].Area, Epsilon)
}

func TestArea_CountsHolesNegatively(t *testing.T) {
	outer := geom.NewRect(0, 0, 100, 100).Poly()
	hole := geom.Polygon{{X: 20, Y: 20}, {X: 20, Y: 80}, {X: 80, Y: 80}, {X: 80, Y: 20}} // clockwise
	assert.InDelta(t, 10000-3600, area([]geom.Polygon{outer, hole}), Epsilon)
}
