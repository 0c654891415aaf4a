package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openpdk/sg13/internal/tech"
)

// NewLayersCommand creates the layers command.
func NewLayersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layers",
		Short: "List the layer stack",
		Long: `List the logical layer names of the process and their physical
layer/datatype pairs.

Example:
  sg13pdk layers
  sg13pdk layers --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayers(rootOpts, cmd)
		},
	}
	return cmd
}

func runLayers(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	pdk, err := loadTech(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load technology", err)
	}

	refs := make([]tech.LayerRef, 0, pdk.Stack.Len())
	for _, name := range pdk.Stack.Names() {
		ref, err := pdk.Stack.Resolve(name)
		if err != nil {
			return fail(formatter, err)
		}
		refs = append(refs, ref)
	}

	if formatter.Format == "json" {
		return formatter.Success(refs)
	}
	for _, ref := range refs {
		fmt.Fprintf(formatter.Writer, "%-16s %d/%d\n", ref.Name, ref.Layer, ref.Datatype)
	}
	return nil
}
