package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/tagdict/internal/config"
	"github.com/nao1215/tagdict/internal/database"
	"github.com/nao1215/tagdict/internal/report"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of runs listed when --limit is not given.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [from-run to-run]",
		Short: "List recorded runs and compare their dictionaries",
		Long: `History lists the runs recorded in the history database, newest first.

With --diff it compares the dictionaries of two runs and shows:
- English names that appeared
- English names that disappeared
- English names whose Japanese slug changed

Without run IDs, --diff compares the two newest runs.

Examples:
  # List the last 20 runs
  tagdict history

  # Compare the two newest runs
  tagdict history --diff

  # Compare two specific runs in Markdown
  tagdict history --diff --markdown 1f0c... 9a2b...`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("accepts 0 or 2 run IDs, received %d", len(args))
			}
			return nil
		},
		RunE: runHistoryCmd,
	}

	f := cmd.Flags()
	f.IntP("limit", "n", defaultHistoryLimit, "Number of runs to list (0 lists all)")
	f.Bool("diff", false, "Compare the dictionaries of two runs")
	f.BoolP("json", "j", false, "Output in JSON format")
	f.BoolP("markdown", "m", false, "Output in Markdown format")
	addDBFlag(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, _, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	diff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return err
	}
	if len(args) == 2 && !diff {
		return errors.New("run IDs are only accepted together with --diff")
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	out := cmd.OutOrStdout()
	if diff {
		return diffRuns(ctx, out, db, cfg, args)
	}
	return listRuns(ctx, out, db, cfg, limit)
}

// listRuns prints up to limit runs, newest first.
func listRuns(ctx context.Context, out io.Writer, db *database.TagDB, cfg *config.Config, limit int) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	switch {
	case cfg.JSONReport:
		if runs == nil {
			runs = []database.Run{}
		}
		return report.EncodeJSON(out, runs)
	case cfg.MarkdownReport:
		return writeRunsMarkdown(out, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		fmt.Fprintln(out, "\nUse 'tagdict run' to parse the tag lists and record a run.")
		return nil
	}

	fmt.Fprintf(out, "Recorded runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-36s  %-19s  %9s  %5s  %5s  %7s  %5s  %s\n",
		"ID", "Started", "Duration", "JP", "EN", "Matched", "Diags", "Status")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 110))
	for _, run := range runs {
		fmt.Fprintf(out, "  %-36s  %-19s  %9s  %5d  %5d  %7d  %5d  %s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Duration.Round(time.Millisecond),
			run.JPCount,
			run.ENCount,
			run.Matched,
			run.Diagnostics,
			runStatus(run),
		)
	}
	fmt.Fprintln(out, "\nUse 'tagdict history --diff' to compare the two newest runs.")
	return nil
}

func runStatus(run database.Run) string {
	if run.HasCritical {
		return "critical"
	}
	return "ok"
}

func writeRunsMarkdown(out io.Writer, runs []database.Run) error {
	md := markdown.NewMarkdown(out)
	md.H1("tagdict Run History")
	md.PlainText("")

	if len(runs) == 0 {
		md.PlainText("No runs recorded.")
		return md.Build()
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			"`" + run.ID + "`",
			run.StartedAt.Format("2006-01-02 15:04:05 MST"),
			run.Duration.Round(time.Millisecond).String(),
			strconv.Itoa(run.JPCount),
			strconv.Itoa(run.ENCount),
			strconv.Itoa(run.Matched),
			strconv.Itoa(run.Diagnostics),
			runStatus(run),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Run", "Started", "Duration", "JP", "EN", "Matched", "Diagnostics", "Status"},
		Rows:   rows,
	})
	return md.Build()
}

// diffRuns compares the runs named by args, or the two newest runs.
func diffRuns(ctx context.Context, out io.Writer, db *database.TagDB, cfg *config.Config, args []string) error {
	var fromID, toID string
	if len(args) == 2 {
		fromID, toID = args[0], args[1]
	} else {
		runs, err := db.ListRuns(ctx, 2)
		if err != nil {
			return err
		}
		if len(runs) < 2 {
			return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
		}
		fromID, toID = runs[1].ID, runs[0].ID
	}

	diff, err := db.DiffRuns(ctx, fromID, toID)
	if err != nil {
		return err
	}

	switch {
	case cfg.JSONReport:
		return report.EncodeJSON(out, diff)
	case cfg.MarkdownReport:
		return writeDiffMarkdown(out, diff)
	}
	writeDiffText(out, diff)
	return nil
}

func writeDiffText(out io.Writer, diff *database.RunDiff) {
	fmt.Fprintf(out, "Comparing %s -> %s\n\n", diff.From, diff.To)
	if diff.Empty() {
		fmt.Fprintln(out, "No dictionary changes.")
		return
	}

	if len(diff.Added) > 0 {
		fmt.Fprintf(out, "Added (%d):\n", len(diff.Added))
		for _, tr := range diff.Added {
			fmt.Fprintf(out, "  + %s -> %s\n", tr.EnglishName, slugText(tr.Slug))
		}
		fmt.Fprintln(out)
	}
	if len(diff.Removed) > 0 {
		fmt.Fprintf(out, "Removed (%d):\n", len(diff.Removed))
		for _, tr := range diff.Removed {
			fmt.Fprintf(out, "  - %s -> %s\n", tr.EnglishName, slugText(tr.Slug))
		}
		fmt.Fprintln(out)
	}
	if len(diff.Changed) > 0 {
		fmt.Fprintf(out, "Changed (%d):\n", len(diff.Changed))
		for _, ch := range diff.Changed {
			fmt.Fprintf(out, "  ~ %s: %s -> %s\n", ch.EnglishName, slugText(ch.From), slugText(ch.To))
		}
	}
}

func writeDiffMarkdown(out io.Writer, diff *database.RunDiff) error {
	md := markdown.NewMarkdown(out)
	md.H1("tagdict Dictionary Diff")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"From", "`" + diff.From + "`"},
			{"To", "`" + diff.To + "`"},
			{"Added", strconv.Itoa(len(diff.Added))},
			{"Removed", strconv.Itoa(len(diff.Removed))},
			{"Changed", strconv.Itoa(len(diff.Changed))},
		},
	})
	md.PlainText("")

	if diff.Empty() {
		md.Tip("No dictionary changes.")
		return md.Build()
	}

	translationTable := func(title string, list []database.Translation) {
		if len(list) == 0 {
			return
		}
		md.H2(title)
		md.PlainText("")
		rows := make([][]string, 0, len(list))
		for _, tr := range list {
			rows = append(rows, []string{tr.EnglishName, slugText(tr.Slug)})
		}
		md.Table(markdown.TableSet{Header: []string{"English", "Slug"}, Rows: rows})
		md.PlainText("")
	}
	translationTable("Added", diff.Added)
	translationTable("Removed", diff.Removed)

	if len(diff.Changed) > 0 {
		md.H2("Changed")
		md.PlainText("")
		rows := make([][]string, 0, len(diff.Changed))
		for _, ch := range diff.Changed {
			rows = append(rows, []string{ch.EnglishName, slugText(ch.From), slugText(ch.To)})
		}
		md.Table(markdown.TableSet{Header: []string{"English", "From", "To"}, Rows: rows})
	}
	return md.Build()
}

// slugText renders a nullable slug.
func slugText(slug *string) string {
	if slug == nil {
		return "-"
	}
	return *slug
}
