package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/tech"
)

func TestParseParamFlags(t *testing.T) {
	params, err := parseParamFlags([]string{"width=1.0", "nf=4"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"width": 1.0, "nf": 4}, params)

	_, err = parseParamFlags([]string{"width"})
	assert.Error(t, err)

	_, err = parseParamFlags([]string{"width=wide"})
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	for _, k := range device.Kinds() {
		got, err := parseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := parseKind("varactor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nmos")
}

func TestResolveParamsRequiresKind(t *testing.T) {
	_, _, err := resolveParams("", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no device kind")
}

func TestLayersCommand(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewLayersCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	output := buf.String()
	assert.Contains(t, output, "Activ")
	assert.Contains(t, output, "Metal1")
	assert.Contains(t, output, "GatPoly")
}

func TestLayersCommandJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewLayersCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string          `json:"status"`
		Data   []tech.LayerRef `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, tech.Default().Stack.Len(), len(resp.Data))
}
