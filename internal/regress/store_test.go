package regress

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/layout"
	"github.com/openpdk/sg13/internal/pcell"
	"github.com/openpdk/sg13/internal/tech"
)

func synthCell(t *testing.T, pdk *tech.Tech, kind device.Kind, params map[string]float64) *layout.Cell {
	t.Helper()
	spec, err := device.Normalize(pdk, kind, params)
	require.NoError(t, err)
	cell, err := pcell.Synthesize(pdk, spec)
	require.NoError(t, err)
	return cell
}

func TestStore_UpdateThenCheck(t *testing.T) {
	pdk := tech.Default()
	store, err := NewStore(t.TempDir(), pdk.Stack)
	require.NoError(t, err)

	cell := synthCell(t, pdk, device.Rsil, map[string]float64{"width": 0.8, "length": 10.0})
	require.NoError(t, store.Update(cell))

	res, err := store.Check(cell)
	require.NoError(t, err)
	assert.True(t, res.Equivalent)

	names, err := store.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{cell.Name}, names)
}

func TestStore_CheckMissingReference(t *testing.T) {
	pdk := tech.Default()
	store, err := NewStore(t.TempDir(), pdk.Stack)
	require.NoError(t, err)

	cell := synthCell(t, pdk, device.Rsil, nil)
	_, err = store.Check(cell)
	m, ok := IsMissingReference(err)
	require.True(t, ok, "expected MissingReferenceError, got %v", err)
	assert.Equal(t, cell.Name, m.Name)
}

// Check mode never writes: after a missing-reference failure the
// directory is still empty.
func TestStore_CheckDoesNotCreateSnapshots(t *testing.T) {
	pdk := tech.Default()
	dir := t.TempDir()
	store, err := NewStore(dir, pdk.Stack)
	require.NoError(t, err)

	cell := synthCell(t, pdk, device.Rsil, nil)
	_, err = store.Check(cell)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_UpdateOverwrites(t *testing.T) {
	pdk := tech.Default()
	store, err := NewStore(t.TempDir(), pdk.Stack)
	require.NoError(t, err)

	cell := synthCell(t, pdk, device.Rsil, map[string]float64{"width": 0.8, "length": 10.0})
	require.NoError(t, store.Update(cell))

	// Tamper with the snapshot, then update again: the snapshot must
	// be replaced wholesale.
	tampered := synthCell(t, pdk, device.Rsil, map[string]float64{"width": 0.8, "length": 10.0})
	tampered.Polygons["GatPoly"][0] = tampered.Polygons["GatPoly"][0].Translate(5, 5)
	require.NoError(t, store.Update(tampered))

	res, err := store.Check(cell)
	require.NoError(t, err)
	assert.False(t, res.Equivalent)

	require.NoError(t, store.Update(cell))
	res, err = store.Check(cell)
	require.NoError(t, err)
	assert.True(t, res.Equivalent)
}

func TestStore_SnapshotSurvivesReload(t *testing.T) {
	pdk := tech.Default()
	dir := t.TempDir()
	store, err := NewStore(dir, pdk.Stack)
	require.NoError(t, err)

	cell := synthCell(t, pdk, device.Cmim, nil)
	require.NoError(t, store.Update(cell))

	// Reopen the directory as a fresh store, as a later process would.
	reopened, err := NewStore(dir, pdk.Stack)
	require.NoError(t, err)
	loaded, err := reopened.Load(cell.Name)
	require.NoError(t, err)

	res, err := reopened.Check(cell)
	require.NoError(t, err)
	assert.True(t, res.Equivalent)
	assert.Equal(t, cell.Key, loaded.Key)

	// Snapshot bytes are canonical JSON.
	data, err := os.ReadFile(filepath.Join(dir, cell.Name+".json"))
	require.NoError(t, err)
	want, err := layout.MarshalCanonical(cell)
	require.NoError(t, err)
	assert.Equal(t, want, data)
}
