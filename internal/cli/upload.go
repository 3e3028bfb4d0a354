package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emberwell/migrate/internal/entity"
	"github.com/emberwell/migrate/internal/identity"
	"github.com/emberwell/migrate/internal/migrate"
	"github.com/emberwell/migrate/internal/target"
)

// UploadOptions holds flags for the upload command.
type UploadOptions struct {
	*RootOptions
	ConfigPath string
	DryRun     bool
	Workers    int
}

// NewUploadCommand creates the upload command.
func NewUploadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UploadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "upload <entity|all>",
		Short: "Migrate legacy documents into the target store",
		Long: `Run the migration pipeline for one entity type or for all of them
in dependency order.

Uploads are idempotent: identifiers are synthesized deterministically from
the legacy keys and records already present in the store are skipped, so
re-running after a partial failure finishes the remainder without
duplicating anything.

Example:
  migrate upload all --config ./migrate.yaml
  migrate upload users --config ./migrate.yaml --dry-run`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to run configuration (required)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report would-be writes without writing")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent writes per entity type (overrides config)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runUpload(opts *UploadOptions, arg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, store, orch, err := setupRun(opts.ConfigPath, opts.Workers, opts.DryRun)
	if err != nil {
		return emitError(formatter, err)
	}
	defer closeStore(store)

	ctx, cancel := runContext(cmd, cfg)
	defer cancel()

	var (
		report migrate.Report
		runErr error
	)
	if arg == "all" {
		report, runErr = orch.UploadAll(ctx)
	} else {
		typ, err := entity.ParseType(arg)
		if err != nil {
			return emitError(formatter, WrapExitError(ExitCommandError, "unknown entity type", err))
		}
		var s migrate.Summary
		s, runErr = orch.Upload(ctx, typ)
		report = migrate.Report{
			RunToken:  identity.NewRunToken(),
			DryRun:    opts.DryRun,
			Summaries: []migrate.Summary{s},
		}
	}

	if err := writeReport(formatter, cmd, report); err != nil {
		return err
	}
	if runErr != nil {
		return emitError(formatter, WrapExitError(ExitFailure, "migration run failed", runErr))
	}
	return nil
}

// setupRun loads the configuration and builds the store strategy and the
// orchestrator over it. Failures here are command errors.
func setupRun(configPath string, workers int, dryRun bool) (*Config, target.Client, *migrate.Orchestrator, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, WrapExitError(ExitCommandError, "loading config", err)
	}
	store, err := cfg.NewStore()
	if err != nil {
		return nil, nil, nil, WrapExitError(ExitCommandError, "opening target store", err)
	}
	if workers == 0 {
		workers = cfg.Workers
	}
	orch, err := migrate.New(migrate.Options{
		Source:    cfg.NewSource(),
		Store:     store,
		Documents: cfg.DocumentOverrides(),
		Workers:   workers,
		MaxPages:  cfg.MaxPages,
		DryRun:    dryRun,
		Logger:    slog.Default(),
	})
	if err != nil {
		closeStore(store)
		return nil, nil, nil, WrapExitError(ExitCommandError, "building orchestrator", err)
	}
	return cfg, store, orch, nil
}

func closeStore(store target.Client) {
	if err := store.Close(); err != nil {
		slog.Error("error closing target store", "error", err)
	}
}

// runContext derives the run's context: the command's context bounded by
// the configured timeout, cancelled on SIGINT/SIGTERM. Completed writes
// are preserved on cancellation; the remainder is reported as skipped.
func runContext(cmd *cobra.Command, cfg *Config) (context.Context, context.CancelFunc) {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if d := cfg.RunTimeout(); d > 0 {
		ctx, cancel = context.WithTimeout(parentCtx, d)
	} else {
		ctx, cancel = context.WithCancel(parentCtx)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, stopping run", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// writeReport renders a run report in the configured format.
func writeReport(f *OutputFormatter, cmd *cobra.Command, report migrate.Report) error {
	if f.Format == "json" {
		if err := f.SuccessRun(report.RunToken, report); err != nil {
			return WrapExitError(ExitCommandError, "encoding report", err)
		}
		return nil
	}
	_, err := cmd.OutOrStdout().Write([]byte(report.String()))
	if err != nil {
		return WrapExitError(ExitCommandError, "writing report", err)
	}
	return nil
}
