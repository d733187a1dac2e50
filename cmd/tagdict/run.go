package main

import (
	"context"
	"log/slog"

	"github.com/nao1215/tagdict/internal/config"
	"github.com/nao1215/tagdict/internal/database"
	"github.com/nao1215/tagdict/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Parse both tag lists and build the dictionary",
		Long: `Run parses the Japanese and English tag lists concurrently, writes their
JSON records, and joins them into the English to Japanese dictionary.

Diagnostics are collected rather than aborting the run. A summary with
the counts per kind is printed to stderr, and the command exits nonzero
when any FileNotFound, ParseError or ValidationError was recorded, after
every output has been written.

Each run is recorded in the history database unless --save=false is given,
so "tagdict lookup" and "tagdict history" can query it.

Examples:
  # Parse the mirrored pages and build the dictionary
  tagdict run -r ./raw

  # Also write a Markdown report
  tagdict run -r ./raw --markdown -o report.md

  # Decode legacy Shift_JIS sources
  tagdict run --encoding shift_jis,utf-8`,
		Args: cobra.NoArgs,
		RunE: runRunCmd,
	}

	addSourceFlags(cmd)
	addReportFlags(cmd)
	addDBFlag(cmd)
	cmd.Flags().Bool("save", true, "Record the run in the history database")
	cmd.Flags().Bool("skip-unchanged", false,
		"Skip parsing when the sources did not change since the last recorded run")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	skipUnchanged, err := cmd.Flags().GetBool("skip-unchanged")
	if err != nil {
		return err
	}

	db, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	runner := newRunner(cfg, db, skipUnchanged, logger)
	return executeRun(ctx, cmd, cfg, runner)
}

// newRunner creates a runner recording into db, which may be nil.
func newRunner(cfg *config.Config, db *database.TagDB, skipUnchanged bool, logger *slog.Logger) *pipeline.Runner {
	opts := []pipeline.RunnerOption{pipeline.WithRunnerLogger(logger)}
	if db != nil {
		opts = append(opts,
			pipeline.WithStore(db),
			pipeline.WithSkipUnchanged(skipUnchanged),
		)
	}
	return pipeline.NewRunner(runnerConfig(cfg), opts...)
}

// executeRun runs once and reports the result. The summary is written even
// when the run fails, so the diagnostics leading up to the failure are
// visible.
func executeRun(ctx context.Context, cmd *cobra.Command, cfg *config.Config, runner *pipeline.Runner) error {
	run, runErr := runner.Run(ctx)
	if run.Skipped {
		cmd.PrintErrln("Sources unchanged since the last recorded run; nothing to do.")
		return runErr
	}

	if err := writeSummary(cmd, cfg, run.Summary(getVersion(), cfg.DiagnosticLimit)); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if run.Diags.HasCritical() {
		return errCritical
	}
	return nil
}
