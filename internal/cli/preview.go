package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/pcell"
	"github.com/openpdk/sg13/internal/render"
)

// PreviewOptions holds flags for the preview command.
type PreviewOptions struct {
	*RootOptions
	ParamsFile string
	Params     []string
	Output     string
	Width      float64
	Height     float64
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PreviewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "preview [kind]",
		Short: "Render a device cell to an image",
		Long: `Synthesize a device cell and render it for visual review. The output
format follows the file extension (.png, .svg, .pdf).

Example:
  sg13pdk preview nmos -p nf=4 -o nmos.png
  sg13pdk preview cmim -o cap.svg --width 600 --height 450`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			kindArg := ""
			if len(args) == 1 {
				kindArg = args[0]
			}
			return runPreview(opts, kindArg, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ParamsFile, "params", "", "YAML parameter file")
	cmd.Flags().StringSliceVarP(&opts.Params, "param", "p", nil, "device parameter as name=value (repeatable)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output image path (default: <cell>.png)")
	cmd.Flags().Float64Var(&opts.Width, "width", 400, "image width in points")
	cmd.Flags().Float64Var(&opts.Height, "height", 300, "image height in points")

	return cmd
}

func runPreview(opts *PreviewOptions, kindArg string, cmd *cobra.Command) error {
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

	out := opts.Output
	if out == "" {
		out = cell.Name + ".png"
	}
	if err := render.SaveCell(cell, pdk.Stack, vg.Length(opts.Width), vg.Length(opts.Height), out); err != nil {
		return WrapExitError(ExitCommandError, "failed to render cell", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"cell": cell.Name, "output": out})
	}
	fmt.Fprintf(formatter.Writer, "%s -> %s\n", cell.Name, out)
	return nil
}
