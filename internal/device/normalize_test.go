package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpdk/sg13/internal/geom"
	"github.com/openpdk/sg13/internal/tech"
)

func TestNormalize_CanonicalSpec(t *testing.T) {
	pdk := tech.Default()

	spec, err := Normalize(pdk, NMOS, map[string]float64{
		"width":  1.0,
		"length": 0.13,
		"nf":     4,
	})
	require.NoError(t, err)

	assert.Equal(t, NMOS, spec.Kind())
	assert.Equal(t, geom.Coord(1000), spec.Dim("width"))
	assert.Equal(t, geom.Coord(130), spec.Dim("length"))
	assert.Equal(t, 4, spec.Count("nf"))
	assert.Equal(t, "nmos|length=130|nf=4|width=1000", spec.Key())
}

func TestNormalize_GridSnapNeverShrinks(t *testing.T) {
	pdk := tech.Default()

	// 0.1524 um is off the 5 nm grid; the snapped value must not fall
	// below the requested dimension's nearest grid point from above when
	// the fraction is an exact tie.
	spec, err := Normalize(pdk, NMOS, map[string]float64{
		"width":  0.1525, // exact half between 150 and 155 dbu
		"length": 0.13,
		"nf":     1,
	})
	require.NoError(t, err)
	assert.Equal(t, geom.Coord(155), spec.Dim("width"), "ties round toward larger magnitude")
}

func TestNormalize_BelowMinimumNamesParamAndBounds(t *testing.T) {
	pdk := tech.Default()

	_, err := Normalize(pdk, NMOS, map[string]float64{"width": 0.001})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "width", verr.Param)
	assert.Equal(t, 0.15, verr.Min)
	assert.Contains(t, err.Error(), "width")
	assert.Contains(t, err.Error(), "0.15")
}

func TestNormalize_AboveMaximum(t *testing.T) {
	pdk := tech.Default()
	_, err := Normalize(pdk, Rsil, map[string]float64{"length": 1000})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "length", verr.Param)
	assert.Equal(t, 200.0, verr.Max)
}

func TestNormalize_IntegerParams(t *testing.T) {
	pdk := tech.Default()

	_, err := Normalize(pdk, NMOS, map[string]float64{"nf": 2.5})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "nf", verr.Param)
	assert.Contains(t, verr.Error(), "integer")

	_, err = Normalize(pdk, NMOS, map[string]float64{"nf": 0})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "nf", verr.Param)

	_, err = Normalize(pdk, NMOS, map[string]float64{"nf": 41})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 41.0, verr.Value)
}

func TestNormalize_DefaultsApplied(t *testing.T) {
	pdk := tech.Default()

	spec, err := Normalize(pdk, Rppd, nil)
	require.NoError(t, err)
	assert.Equal(t, geom.Coord(800), spec.Dim("width"))
	assert.Equal(t, geom.Coord(10000), spec.Dim("length"))
}

func TestNormalize_UnexpectedParameter(t *testing.T) {
	pdk := tech.Default()
	_, err := Normalize(pdk, Rsil, map[string]float64{"turns": 3})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "turns", verr.Param)
	assert.Contains(t, verr.Error(), "unexpected")
}

func TestNormalize_UnknownKind(t *testing.T) {
	pdk := tech.Default()
	_, err := Normalize(pdk, Kind("varactor"), nil)
	var uerr *UnknownKindError
	require.True(t, errors.As(err, &uerr))
	assert.Contains(t, err.Error(), "varactor")
}

func TestNormalize_Deterministic(t *testing.T) {
	pdk := tech.Default()
	params := map[string]float64{"width": 5.5, "length": 7.5}

	a, err := Normalize(pdk, Rsil, params)
	require.NoError(t, err)
	b, err := Normalize(pdk, Rsil, params)
	require.NoError(t, err)

	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, a.Settings(), b.Settings())
}

func TestKinds_SortedAndClosed(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, 11)
	for i := 1; i < len(kinds); i++ {
		assert.Less(t, string(kinds[i-1]), string(kinds[i]), "Kinds() must be sorted")
	}
	for _, k := range kinds {
		assert.True(t, tech.Default().Rules.HasKind(string(k)),
			"rule table must carry ranges for %s", k)
	}
}
