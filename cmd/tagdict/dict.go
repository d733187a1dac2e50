package main

import (
	"fmt"
	"path/filepath"

	"github.com/nao1215/tagdict/internal/config"
	"github.com/nao1215/tagdict/internal/diag"
	"github.com/nao1215/tagdict/internal/dict"
	"github.com/nao1215/tagdict/internal/report"
	"github.com/spf13/cobra"
)

// NewDictCmd creates the dict command.
func NewDictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Join parsed JSON records into the English to Japanese dictionary",
		Long: `Dict reads the JSON records written by "parse jp" and "parse en" and joins
them into a dictionary mapping every English tag name to the slug of the
Japanese tag whose foreign name matches, or null when none does.

Examples:
  # Join output/jp_tags.json and output/en_tags.json into output/en_to_jp.json
  tagdict dict

  # List the English tags that have no Japanese counterpart
  tagdict dict --missing`,
		Args: cobra.NoArgs,
		RunE: runDictCmd,
	}

	f := cmd.Flags()
	f.StringP("output-dir", "d", config.DefaultOutputDir, "Directory holding the JSON records")
	f.String("jp-output", config.DefaultJPOutput, "File name of the Japanese records")
	f.String("en-output", config.DefaultENOutput, "File name of the English records")
	f.String("dict-output", config.DefaultDictOutput, "File name of the dictionary")
	f.Bool("missing", false, "List English names without a Japanese counterpart")

	return cmd
}

// runDictCmd executes the dict command.
func runDictCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	showMissing, err := cmd.Flags().GetBool("missing")
	if err != nil {
		return err
	}

	jp, err := dict.LoadJapanese(filepath.Join(cfg.OutputDir, cfg.JPOutput))
	if err != nil {
		return err
	}
	en, err := dict.LoadEnglish(filepath.Join(cfg.OutputDir, cfg.ENOutput))
	if err != nil {
		return err
	}

	dictionary := dict.Build(en, jp)
	coverage := dict.Measure(dictionary, jp)

	path := filepath.Join(cfg.OutputDir, cfg.DictOutput)
	if err := report.DumpJSON(path, dictionary, diag.NewCollector(logger)); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s\n", path)
	fmt.Fprintf(out, "%d/%d English tag(s) matched (%.1f%%)\n",
		coverage.Matched, coverage.Total, coverage.Ratio()*100)
	if len(coverage.UnmatchedForeign) > 0 {
		fmt.Fprintf(out, "%d Japanese foreign name(s) match no English tag\n", len(coverage.UnmatchedForeign))
	}
	if showMissing {
		for _, name := range coverage.MissingNames {
			fmt.Fprintf(out, "  missing: %s\n", name)
		}
	}
	return nil
}
