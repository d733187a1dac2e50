package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nao1215/tagdict/internal/config"
	"github.com/spf13/cobra"
)

// errCritical is returned when a run wrote its outputs but recorded
// critical diagnostics.
var errCritical = errors.New("finished with critical diagnostics")

// NewRootCmd creates the root command for tagdict.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tagdict",
		Short: "Build an English to Japanese dictionary of SCP wiki tags",
		Long: `tagdict mirrors the scp-jp tag list and the English tech hub tag list,
parses their wiki markup into structured tag records, and joins them into an
English to Japanese tag dictionary.

A typical session:
  tagdict init     # write a .tagdict configuration file
  tagdict fetch    # mirror the tag list pages
  tagdict run      # parse both lists and build the dictionary
  tagdict lookup "keter"`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .tagdict in current or home directory)")
	cmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error")
	cmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "Log format: text or json")
	cmd.PersistentFlags().String("log-file", "", "Write logs to this file instead of stderr")

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewParseCmd())
	cmd.AddCommand(NewDictCmd())
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewLookupCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
