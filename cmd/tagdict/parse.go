package main

import (
	"github.com/nao1215/tagdict/internal/config"
	"github.com/nao1215/tagdict/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewParseCmd creates the parse command and its jp and en subcommands.
func NewParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse one tag list into JSON records",
		Long: `Parse reads one mirrored tag list and writes its records as JSON.
Use "parse jp" for the scp-jp tag list and "parse en" for the English
tech hub tag list. "tagdict run" parses both and builds the dictionary.`,
		Args: cobra.NoArgs,
	}

	cmd.AddCommand(newParseLangCmd(pipeline.Japanese))
	cmd.AddCommand(newParseLangCmd(pipeline.English))

	return cmd
}

func newParseLangCmd(lang pipeline.Lang) *cobra.Command {
	short := "Parse the Japanese tag list, expanding its includes"
	example := `  tagdict parse jp -r ./raw
  tagdict parse jp --jp-entry tag-list.txt --jp-output tags.json`
	if lang == pipeline.English {
		short = "Parse the English tech hub tag list"
		example = `  tagdict parse en -r ./raw
  tagdict parse en --en-output en.json`
	}

	cmd := &cobra.Command{
		Use:     string(lang),
		Short:   short,
		Example: example,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runParseCmd(cmd, lang)
		},
	}
	addSourceFlags(cmd)
	addReportFlags(cmd)
	return cmd
}

// runParseCmd parses the source of lang only. The run is not recorded in
// the history database: it has no dictionary to record.
func runParseCmd(cmd *cobra.Command, lang pipeline.Lang) error {
	cfg, logger, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	selectSource(cfg, lang)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	runner := pipeline.NewRunner(runnerConfig(cfg), pipeline.WithRunnerLogger(logger))
	return executeRun(ctx, cmd, cfg, runner)
}

// selectSource disables every source other than lang.
func selectSource(cfg *config.Config, lang pipeline.Lang) {
	if lang == pipeline.English {
		cfg.JPEntry = ""
		return
	}
	cfg.ENEntry = ""
}
