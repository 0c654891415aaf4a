package render

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/pcell"
	"github.com/openpdk/sg13/internal/tech"
)

func TestParseHexColor(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 0x26, G: 0x80, B: 0x00, A: 96}, parseHexColor("#268000", 96))
	assert.Equal(t, color.RGBA{R: 128, G: 128, B: 128, A: 50}, parseHexColor("", 50))
	assert.Equal(t, color.RGBA{R: 128, G: 128, B: 128, A: 50}, parseHexColor("red", 50))
}

func TestSaveCell_PNG(t *testing.T) {
	pdk := tech.Default()
	spec, err := device.Normalize(pdk, device.NMOS, map[string]float64{
		"width": 1.0, "length": 0.13, "nf": 2,
	})
	require.NoError(t, err)
	cell, err := pcell.Synthesize(pdk, spec)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nmos.png")
	require.NoError(t, SaveCell(cell, pdk.Stack, 400, 300, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestCell_AllKindsPlot(t *testing.T) {
	pdk := tech.Default()
	for _, kind := range device.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			spec, err := device.Normalize(pdk, kind, nil)
			require.NoError(t, err)
			cell, err := pcell.Synthesize(pdk, spec)
			require.NoError(t, err)

			p, err := Cell(cell, pdk.Stack)
			require.NoError(t, err)
			assert.NotNil(t, p)
		})
	}
}
