package cli

import (
	"github.com/spf13/cobra"

	"github.com/emberwell/migrate/internal/entity"
	"github.com/emberwell/migrate/internal/identity"
	"github.com/emberwell/migrate/internal/migrate"
)

// PurgeOptions holds flags for the purge command.
type PurgeOptions struct {
	*RootOptions
	ConfigPath string
	DryRun     bool
	Force      bool
	Workers    int
}

// NewPurgeCommand creates the purge command.
func NewPurgeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PurgeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "purge <entity>",
		Short: "Delete every stored record of one entity type",
		Long: `Delete every stored record of one entity type. This is a staging and
test cleanup operation; it requires --force unless --dry-run is set.

Example:
  migrate purge users --config ./staging.yaml --force
  migrate purge users --config ./staging.yaml --dry-run`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPurge(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to run configuration (required)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report would-be deletes without deleting")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "confirm deletion")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent deletes (overrides config)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runPurge(opts *PurgeOptions, arg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	typ, err := entity.ParseType(arg)
	if err != nil {
		return emitError(formatter, WrapExitError(ExitCommandError, "unknown entity type", err))
	}
	if !opts.Force && !opts.DryRun {
		return emitError(formatter, NewExitError(ExitCommandError, "refusing to purge without --force"))
	}

	cfg, store, orch, err := setupRun(opts.ConfigPath, opts.Workers, opts.DryRun)
	if err != nil {
		return emitError(formatter, err)
	}
	defer closeStore(store)

	ctx, cancel := runContext(cmd, cfg)
	defer cancel()

	s, runErr := orch.DeleteAll(ctx, typ)
	report := migrate.Report{
		RunToken:  identity.NewRunToken(),
		DryRun:    opts.DryRun,
		Summaries: []migrate.Summary{s},
	}
	if err := writeReport(formatter, cmd, report); err != nil {
		return err
	}
	if runErr != nil {
		return emitError(formatter, WrapExitError(ExitFailure, "purge run failed", runErr))
	}
	return nil
}
