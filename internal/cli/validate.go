package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emberwell/migrate/internal/entity"
	"github.com/emberwell/migrate/internal/ingest"
	"github.com/emberwell/migrate/internal/mapper"
	"github.com/emberwell/migrate/internal/migrate"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	ConfigPath string
}

// ValidationResult reports one legacy document's check.
type ValidationResult struct {
	EntityType entity.Type `json:"entity_type"`
	Document   string      `json:"document"`
	Rows       int         `json:"rows"`
	Errors     []string    `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the run configuration and legacy documents",
		Long: `Load the run configuration, fetch every configured legacy document,
and run it through parsing and mapping without touching the target store.

Exit code is 0 when everything checks out, 1 when any document has
problems, 2 when the configuration itself is invalid.

Example:
  migrate validate --config ./migrate.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to run configuration (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return emitError(formatter, WrapExitError(ExitCommandError, "loading config", err))
	}
	src := cfg.NewSource()

	docs := make(map[entity.Type]string, len(migrate.DefaultDocuments))
	for typ, name := range migrate.DefaultDocuments {
		docs[typ] = name
	}
	for typ, name := range cfg.DocumentOverrides() {
		docs[typ] = name
	}

	ctx, cancel := runContext(cmd, cfg)
	defer cancel()

	var (
		results []ValidationResult
		bad     int
	)
	for _, typ := range entity.Types {
		res := ValidationResult{EntityType: typ, Document: docs[typ]}

		raw, err := src.Fetch(ctx, res.Document)
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
			results = append(results, res)
			bad++
			continue
		}
		formatter.VerboseLog("fetched %s (%d bytes)", res.Document, len(raw))
		rows, err := ingest.Parse(raw)
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
			results = append(results, res)
			bad++
			continue
		}
		res.Rows = len(rows)
		for _, row := range rows {
			if err := mapRow(typ, row); err != nil {
				res.Errors = append(res.Errors, err.Error())
			}
		}
		if len(res.Errors) > 0 {
			bad++
		}
		results = append(results, res)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(results); err != nil {
			return WrapExitError(ExitCommandError, "encoding results", err)
		}
	} else {
		out := cmd.OutOrStdout()
		for _, res := range results {
			fmt.Fprintf(out, "%-15s %s: %d rows, %d problems\n", res.EntityType, res.Document, res.Rows, len(res.Errors))
			for _, msg := range res.Errors {
				fmt.Fprintf(out, "    %s\n", msg)
			}
		}
	}

	if bad > 0 {
		return emitError(formatter, NewExitError(ExitFailure, fmt.Sprintf("%d of %d documents failed validation", bad, len(results))))
	}
	return nil
}

// mapRow runs one row through its entity type's mapping, dropping the
// mapped record.
func mapRow(typ entity.Type, row ingest.Row) error {
	var err error
	switch typ {
	case entity.TypeOrganization:
		_, err = mapper.MapOrganization(row)
	case entity.TypeLocation:
		_, err = mapper.MapLocation(row)
	case entity.TypeGroup:
		_, err = mapper.MapGroup(row)
	case entity.TypePillar:
		_, err = mapper.MapPillar(row)
	case entity.TypeUser:
		_, err = mapper.MapUser(row)
	case entity.TypeUserActivity:
		_, err = mapper.MapUserActivity(row)
	case entity.TypeFeedback:
		_, err = mapper.MapFeedback(row)
	}
	return err
}
