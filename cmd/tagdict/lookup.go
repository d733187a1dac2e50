package main

import (
	"fmt"

	"github.com/nao1215/tagdict/internal/database"
	"github.com/nao1215/tagdict/internal/report"
	"github.com/spf13/cobra"
)

// NewLookupCmd creates the lookup command.
func NewLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup NAME",
		Short: "Look up a tag in the recorded dictionary",
		Long: `Lookup searches the dictionary recorded by the latest run. NAME matches an
English tag name case-insensitively, or a Japanese slug or local name
exactly.

Examples:
  tagdict lookup humanoid
  tagdict lookup 人間型
  tagdict lookup --run 1f0c... --json keter`,
		Args: cobra.ExactArgs(1),
		RunE: runLookupCmd,
	}

	cmd.Flags().String("run", "", "Search this run instead of the latest one")
	cmd.Flags().BoolP("json", "j", false, "Output in JSON format")
	addDBFlag(cmd)

	return cmd
}

// runLookupCmd executes the lookup command.
func runLookupCmd(cmd *cobra.Command, args []string) error {
	cfg, _, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	runID, err := cmd.Flags().GetString("run")
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	out := cmd.OutOrStdout()
	name := args[0]

	var found []database.Translation
	if runID != "" {
		if _, err := db.GetRun(ctx, runID); err != nil {
			return err
		}
		found, err = db.LookupInRun(ctx, runID, name)
	} else {
		latest, latestErr := db.LatestRun(ctx)
		if latestErr != nil {
			return latestErr
		}
		if latest == nil {
			fmt.Fprintln(out, "No runs recorded.")
			fmt.Fprintln(out, "\nUse 'tagdict run' to parse the tag lists and record a run.")
			return nil
		}
		found, err = db.LookupInRun(ctx, latest.ID, name)
	}
	if err != nil {
		return err
	}

	if cfg.JSONReport {
		return report.EncodeJSON(out, found)
	}

	if len(found) == 0 {
		return fmt.Errorf("no tag matches %q", name)
	}
	for _, tr := range found {
		english := tr.EnglishName
		if english == "" {
			english = "-"
		}
		fmt.Fprintf(out, "%s -> %s", english, slugText(tr.Slug))
		if tr.NameLocal != "" {
			fmt.Fprintf(out, "  %s", tr.NameLocal)
		}
		if tr.Category != "" {
			fmt.Fprintf(out, "  [%s]", tr.Category)
		}
		fmt.Fprintln(out)
	}
	return nil
}
