package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/gdsfile"
	"github.com/openpdk/sg13/internal/layout"
	"github.com/openpdk/sg13/internal/pcell"
	"github.com/openpdk/sg13/internal/verify"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	ParamsFile string
	Params     []string
	Against    string
	CellName   string
}

// VerifyResult is the JSON payload of a verify run.
type VerifyResult struct {
	Cell       string      `json:"cell"`
	Reference  string      `json:"reference"`
	Equivalent bool        `json:"equivalent"`
	TotalArea  float64     `json:"total_area_dbu2"`
	Diffs      []LayerDiff `json:"diffs,omitempty"`
}

// LayerDiff is the per-layer residual summary in verify output.
type LayerDiff struct {
	Layer    string  `json:"layer"`
	Polygons int     `json:"polygons"`
	Area     float64 `json:"area_dbu2"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify [kind]",
		Short: "Verify a synthesized cell against a GDS reference",
		Long: `Synthesize a device cell and compare it polygon-exactly against a
cell in a GDSII reference file. Every layer of both cells is XORed;
any residual geometry is a mismatch.

Example:
  sg13pdk verify nmos -p width=1.0 -p nf=4 --against golden.gds
  sg13pdk verify --params device.yaml --against golden.gds --cell nmos_nf4`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			kindArg := ""
			if len(args) == 1 {
				kindArg = args[0]
			}
			return runVerify(opts, kindArg, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ParamsFile, "params", "", "YAML parameter file")
	cmd.Flags().StringSliceVarP(&opts.Params, "param", "p", nil, "device parameter as name=value (repeatable)")
	cmd.Flags().StringVar(&opts.Against, "against", "", "reference GDS file (required)")
	cmd.Flags().StringVar(&opts.CellName, "cell", "", "cell name in the reference (default: same name)")
	_ = cmd.MarkFlagRequired("against")

	return cmd
}

func runVerify(opts *VerifyOptions, kindArg string, cmd *cobra.Command) error {
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
	cell, err := pcell.Synthesize(pdk, spec)
	if err != nil {
		return fail(formatter, err)
	}

	lib, err := gdsfile.ReadFile(opts.Against, pdk.Stack)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read reference", err)
	}
	ref, err := findCell(lib, opts.CellName, cell.Name)
	if err != nil {
		return WrapExitError(ExitCommandError, "reference cell not found", err)
	}
	slog.Debug("comparing", "cell", cell.Name, "reference", ref.Name)

	res := verify.Compare(cell, ref)
	result := VerifyResult{
		Cell:       cell.Name,
		Reference:  opts.Against,
		Equivalent: res.Equivalent,
		TotalArea:  res.TotalArea,
	}
	for _, d := range res.Diffs {
		result.Diffs = append(result.Diffs, LayerDiff{
			Layer:    d.Layer,
			Polygons: len(d.Residual),
			Area:     d.Area,
		})
	}

	if res.Equivalent {
		if formatter.Format == "json" {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "✓ %s matches %s\n", cell.Name, opts.Against)
		return nil
	}

	if formatter.Format != "json" {
		fmt.Fprintf(formatter.Writer, "✗ %s differs from %s on %d layer(s)\n",
			cell.Name, opts.Against, len(result.Diffs))
		for _, d := range result.Diffs {
			fmt.Fprintf(formatter.Writer, "  %-16s %d residual polygon(s), %.1f dbu2\n",
				d.Layer, d.Polygons, d.Area)
		}
	} else {
		_ = formatter.Error(ErrCodeMismatch, res.Err().Error(), result)
	}
	return NewExitError(ExitFailure, res.Err().Error())
}

// findCell picks the reference cell from a parsed library: the named
// cell when --cell is set, otherwise the cell sharing the synthesized
// name, otherwise a single-cell library's only cell.
func findCell(lib *gdsfile.Library, name, fallback string) (*layout.Cell, error) {
	want := name
	if want == "" {
		want = fallback
	}
	for _, c := range lib.Cells {
		if c.Name == want {
			return c, nil
		}
	}
	if name == "" && len(lib.Cells) == 1 {
		return lib.Cells[0], nil
	}
	return nil, fmt.Errorf("no cell %q in library %q (%d cells)", want, lib.Name, len(lib.Cells))
}
