package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emberwell/migrate/internal/identity"
	"github.com/emberwell/migrate/internal/migrate"
)

// CorrectOptions holds flags for the correct command.
type CorrectOptions struct {
	*RootOptions
	ConfigPath string
	DryRun     bool
	Workers    int
}

// NewCorrectCommand creates the correct command.
func NewCorrectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CorrectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "correct <users|activities>",
		Short: "Recompute a derived field and update drifted records",
		Long: `Recompute one derived field from the legacy source and update only
the stored records whose value differs. No other field is touched.

  users       recompute user statuses from the legacy status codes
  activities  re-resolve activity pillar references from the pillars document

Example:
  migrate correct users --config ./migrate.yaml
  migrate correct activities --config ./migrate.yaml --dry-run`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCorrect(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to run configuration (required)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report would-be updates without writing")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent updates (overrides config)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runCorrect(opts *CorrectOptions, arg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, store, orch, err := setupRun(opts.ConfigPath, opts.Workers, opts.DryRun)
	if err != nil {
		return emitError(formatter, err)
	}
	defer closeStore(store)

	ctx, cancel := runContext(cmd, cfg)
	defer cancel()

	var (
		s      migrate.Summary
		runErr error
	)
	switch arg {
	case "users":
		s, runErr = orch.CorrectUserStatuses(ctx)
	case "activities":
		s, runErr = orch.CorrectActivityPillars(ctx)
	default:
		return emitError(formatter, NewExitError(ExitCommandError, fmt.Sprintf("unknown correction %q: must be users or activities", arg)))
	}

	report := migrate.Report{
		RunToken:  identity.NewRunToken(),
		DryRun:    opts.DryRun,
		Summaries: []migrate.Summary{s},
	}
	if err := writeReport(formatter, cmd, report); err != nil {
		return err
	}
	if runErr != nil {
		return emitError(formatter, WrapExitError(ExitFailure, "correction run failed", runErr))
	}
	return nil
}
