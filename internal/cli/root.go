package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/openpdk/sg13/internal/tech"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Rules   string // path to a rules CUE file (default: embedded rules)
	Layers  string // path to a layer map .lyp file (default: embedded map)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sg13pdk CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sg13pdk",
		Short: "SG13 PDK cell synthesizer",
		Long:  "Synthesize parametric device cells, verify layouts against references, and maintain regression snapshots.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Rules, "rules", "", "path to rules CUE file (default: embedded)")
	cmd.PersistentFlags().StringVar(&opts.Layers, "layers", "", "path to layer map file (default: embedded)")

	// Add subcommands
	cmd.AddCommand(NewLayersCommand(opts))
	cmd.AddCommand(NewGenCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewRegressCommand(opts))
	cmd.AddCommand(NewPreviewCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// setupLogging configures the default slog logger from the verbose flag.
func setupLogging(opts *RootOptions) {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// loadTech opens the technology from the --rules/--layers overrides.
// Either flag may be set on its own; the embedded table fills the gap.
func loadTech(opts *RootOptions) (*tech.Tech, error) {
	if opts.Rules == "" && opts.Layers == "" {
		return tech.Default(), nil
	}
	if opts.Rules != "" && opts.Layers != "" {
		return tech.Load(opts.Rules, opts.Layers)
	}

	base := tech.Default()
	rules, stack := base.Rules, base.Stack
	if opts.Rules != "" {
		data, err := os.ReadFile(opts.Rules)
		if err != nil {
			return nil, fmt.Errorf("read rule table: %w", err)
		}
		if rules, err = tech.ParseRules(data, opts.Rules); err != nil {
			return nil, err
		}
	}
	if opts.Layers != "" {
		f, err := os.Open(opts.Layers)
		if err != nil {
			return nil, fmt.Errorf("read layer map: %w", err)
		}
		defer f.Close()
		if stack, err = tech.ParseLYP(f); err != nil {
			return nil, err
		}
	}
	return tech.New(rules, stack), nil
}
