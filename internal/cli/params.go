package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openpdk/sg13/internal/device"
)

// parseKind maps a command-line kind name to a device kind.
func parseKind(name string) (device.Kind, error) {
	for _, k := range device.Kinds() {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown device kind %q (known: %s)", name, kindList())
}

func kindList() string {
	kinds := device.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// parseParamFlags turns repeated -p name=value flags into a parameter
// map. Values are plain decimal numbers in microns or counts.
func parseParamFlags(flags []string) (map[string]float64, error) {
	params := make(map[string]float64, len(flags))
	for _, f := range flags {
		name, val, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("parameter %q: want name=value", f)
		}
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", f, err)
		}
		params[name] = v
	}
	return params, nil
}

// paramsFile is the YAML shape of a single-device parameter file.
type paramsFile struct {
	Kind   string             `yaml:"kind"`
	Params map[string]float64 `yaml:"params"`
}

// loadParamsFile reads a device parameter file. The kind in the file
// is optional when the command line already names one.
func loadParamsFile(path string) (*paramsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read params file: %w", err)
	}
	var pf paramsFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &pf, nil
}

// resolveParams combines a parameter file with -p overrides. Flags win
// over file entries.
func resolveParams(kindArg, file string, flags []string) (device.Kind, map[string]float64, error) {
	params := make(map[string]float64)
	kindName := kindArg

	if file != "" {
		pf, err := loadParamsFile(file)
		if err != nil {
			return "", nil, err
		}
		for name, v := range pf.Params {
			params[name] = v
		}
		if kindName == "" {
			kindName = pf.Kind
		}
	}
	if kindName == "" {
		return "", nil, fmt.Errorf("no device kind given (argument or params file)")
	}
	kind, err := parseKind(kindName)
	if err != nil {
		return "", nil, err
	}

	overrides, err := parseParamFlags(flags)
	if err != nil {
		return "", nil, err
	}
	for name, v := range overrides {
		params[name] = v
	}
	return kind, params, nil
}

// manifest is the YAML shape of a regression cell list.
type manifest struct {
	Cells []manifestCell `yaml:"cells"`
}

type manifestCell struct {
	Kind   string             `yaml:"kind"`
	Params map[string]float64 `yaml:"params"`
}

// loadManifest reads a regression manifest listing the cells of a run.
func loadManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(m.Cells) == 0 {
		return nil, fmt.Errorf("%s: manifest lists no cells", path)
	}
	return &m, nil
}
