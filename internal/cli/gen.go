package cli

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/gdsfile"
	"github.com/openpdk/sg13/internal/pcell"
)

// GenOptions holds flags for the gen command.
type GenOptions struct {
	*RootOptions
	ParamsFile string
	Params     []string
	Output     string
	LibName    string
}

// GenResult is the JSON payload of a successful gen run.
type GenResult struct {
	Cell     string            `json:"cell"`
	Key      string            `json:"key"`
	Layers   []string          `json:"layers"`
	Polygons int               `json:"polygons"`
	Ports    []string          `json:"ports"`
	Settings map[string]string `json:"settings,omitempty"`
	Output   string            `json:"output,omitempty"`
}

// NewGenCommand creates the gen command.
func NewGenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gen [kind]",
		Short: "Synthesize a device cell",
		Long: `Synthesize one parametric device cell and write it as GDSII.

Parameters come from repeated -p name=value flags, a YAML parameter
file, or both (flags win). Unset parameters take their defaults from
the rule table.

Example:
  sg13pdk gen nmos -p width=1.0 -p length=0.13 -p nf=4 -o nmos.gds
  sg13pdk gen --params device.yaml -o out.gds`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			kindArg := ""
			if len(args) == 1 {
				kindArg = args[0]
			}
			return runGen(opts, kindArg, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ParamsFile, "params", "", "YAML parameter file")
	cmd.Flags().StringSliceVarP(&opts.Params, "param", "p", nil, "device parameter as name=value (repeatable)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output GDS path (default: <cell>.gds)")
	cmd.Flags().StringVar(&opts.LibName, "lib", "sg13", "GDS library name")

	return cmd
}

func runGen(opts *GenOptions, kindArg string, cmd *cobra.Command) error {
	setupLogging(opts.RootOptions)
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	kind, params, err := resolveParams(kindArg, opts.ParamsFile, opts.Params)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid parameters", err)
	}

	pdk, err := loadTech(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load technology", err)
	}

	spec, err := device.Normalize(pdk, kind, params)
	if err != nil {
		return fail(formatter, err)
	}
	slog.Debug("spec normalized", "key", spec.Key())

	cell, err := pcell.Synthesize(pdk, spec)
	if err != nil {
		return fail(formatter, err)
	}
	slog.Info("cell synthesized", "cell", cell.Name, "polygons", cell.PolyCount())

	out := opts.Output
	if out == "" {
		out = cell.Name + ".gds"
	}
	if err := gdsfile.WriteFile(out, opts.LibName, pdk.Stack, cell); err != nil {
		return WrapExitError(ExitCommandError, "failed to write GDS", err)
	}
	formatter.VerboseLog("wrote %s", out)

	portNames := make([]string, len(cell.Ports))
	for i, p := range cell.Ports {
		portNames[i] = p.Name
	}
	result := GenResult{
		Cell:     cell.Name,
		Key:      cell.Key,
		Layers:   cell.Layers(),
		Polygons: cell.PolyCount(),
		Ports:    portNames,
		Settings: cell.Settings,
		Output:   out,
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "%s: %d polygons on %d layers -> %s\n",
		cell.Name, result.Polygons, len(result.Layers), out)
	for _, p := range cell.Ports {
		fmt.Fprintf(formatter.Writer, "  port %-4s %s (%.3f, %.3f)\n",
			p.Name, p.Layer.Name, p.Position.X.Microns(), p.Position.Y.Microns())
	}
	keys := make([]string, 0, len(cell.Settings))
	for k := range cell.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(formatter.Writer, "  %s = %s\n", k, cell.Settings[k])
	}
	return nil
}
