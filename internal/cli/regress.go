package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/openpdk/sg13/internal/cellcache"
	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/regress"
)

// RegressOptions holds flags for the regress subcommands.
type RegressOptions struct {
	*RootOptions
	Snapshots string
	Manifest  string
	Journal   string
}

// RegressOutcome is the per-cell entry in regress output.
type RegressOutcome struct {
	Cell   string  `json:"cell"`
	Key    string  `json:"key"`
	Status string  `json:"status"`
	Area   float64 `json:"residual_area_dbu2,omitempty"`
}

// RegressSummary is the JSON payload of a regress run.
type RegressSummary struct {
	Mode       string           `json:"mode"`
	Total      int              `json:"total"`
	Mismatched int              `json:"mismatched"`
	Missing    int              `json:"missing"`
	Outcomes   []RegressOutcome `json:"outcomes"`
}

// NewRegressCommand creates the regress command with its check and
// update subcommands.
func NewRegressCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RegressOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "regress",
		Short: "Run layout regression against stored snapshots",
	}

	cmd.PersistentFlags().StringVar(&opts.Snapshots, "snapshots", "", "snapshot directory (required)")
	cmd.PersistentFlags().StringVar(&opts.Manifest, "cells", "", "YAML manifest of cells to run (required)")
	cmd.PersistentFlags().StringVar(&opts.Journal, "journal", "", "path to SQLite run journal (optional)")
	_ = cmd.MarkPersistentFlagRequired("snapshots")
	_ = cmd.MarkPersistentFlagRequired("cells")

	check := &cobra.Command{
		Use:   "check",
		Short: "Compare every manifest cell to its snapshot",
		Long: `Synthesize every cell in the manifest and XOR it against its stored
snapshot. The run covers all cells even when early ones mismatch and
never writes to the snapshot store.

Example:
  sg13pdk regress check --snapshots ./snapshots --cells cells.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegress(opts, "check", cmd)
		},
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Record every manifest cell as the new snapshot",
		Long: `Synthesize every cell in the manifest and store it as the reference
snapshot, overwriting any existing one.

Example:
  sg13pdk regress update --snapshots ./snapshots --cells cells.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegress(opts, "update", cmd)
		},
	}

	cmd.AddCommand(check)
	cmd.AddCommand(update)
	return cmd
}

func runRegress(opts *RegressOptions, mode string, cmd *cobra.Command) error {
	setupLogging(opts.RootOptions)
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	pdk, err := loadTech(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load technology", err)
	}

	m, err := loadManifest(opts.Manifest)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load manifest", err)
	}
	specs := make([]*device.Spec, 0, len(m.Cells))
	for _, mc := range m.Cells {
		kind, err := parseKind(mc.Kind)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid manifest", err)
		}
		spec, err := device.Normalize(pdk, kind, mc.Params)
		if err != nil {
			return fail(formatter, err)
		}
		specs = append(specs, spec)
	}
	slog.Info("manifest loaded", "cells", len(specs), "mode", mode)

	store, err := regress.NewStore(opts.Snapshots, pdk.Stack)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open snapshot store", err)
	}
	runner := &regress.Runner{PDK: pdk, Cache: cellcache.New(), Store: store}
	if opts.Journal != "" {
		journal, err := regress.OpenJournal(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := journal.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()
		runner.Journal = journal
	}

	var outcomes []regress.Outcome
	if mode == "update" {
		outcomes, err = runner.Update(specs)
	} else {
		outcomes, err = runner.Check(specs)
	}
	if err != nil {
		return fail(formatter, err)
	}

	summary := RegressSummary{Mode: mode, Total: len(outcomes)}
	for _, out := range outcomes {
		o := RegressOutcome{Cell: out.Name, Key: out.Key, Status: string(out.Status)}
		if out.Result != nil {
			o.Area = out.Result.TotalArea
		}
		switch out.Status {
		case regress.StatusMismatch:
			summary.Mismatched++
		case regress.StatusMissing:
			summary.Missing++
		}
		summary.Outcomes = append(summary.Outcomes, o)
	}

	failed := summary.Mismatched + summary.Missing
	if formatter.Format == "json" {
		if failed > 0 {
			_ = formatter.Error(ErrCodeMismatch,
				fmt.Sprintf("%d of %d cell(s) failed", failed, summary.Total), summary)
			return NewExitError(ExitFailure, fmt.Sprintf("regression failed: %d cell(s)", failed))
		}
		return formatter.Success(summary)
	}

	for _, o := range summary.Outcomes {
		marker := "✓"
		if o.Status == string(regress.StatusMismatch) || o.Status == string(regress.StatusMissing) {
			marker = "✗"
		}
		fmt.Fprintf(formatter.Writer, "%s %-32s %s", marker, o.Cell, o.Status)
		if o.Area > 0 {
			fmt.Fprintf(formatter.Writer, " (%.1f dbu2)", o.Area)
		}
		fmt.Fprintln(formatter.Writer)
	}
	if failed > 0 {
		fmt.Fprintf(formatter.Writer, "%d of %d cell(s) failed\n", failed, summary.Total)
		return NewExitError(ExitFailure, fmt.Sprintf("regression failed: %d cell(s)", failed))
	}
	verb := "checked"
	if mode == "update" {
		verb = "updated"
	}
	fmt.Fprintf(formatter.Writer, "%d cell(s) %s\n", summary.Total, verb)
	return nil
}
