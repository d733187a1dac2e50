package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/tagdict/internal/config"
	"github.com/nao1215/tagdict/internal/watch"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run whenever the mirrored pages change",
		Long: `Watch runs once, then watches the raw source directories and runs again
after .txt files change and the changes settle. Runs whose sources hashed
the same as the last recorded run are skipped.

Press Ctrl+C to stop.

Examples:
  tagdict watch -r ./raw
  tagdict watch -r ./raw --debounce 2s`,
		Args: cobra.NoArgs,
		RunE: runWatchCmd,
	}

	addSourceFlags(cmd)
	addReportFlags(cmd)
	addDBFlag(cmd)
	cmd.Flags().Duration("debounce", config.DefaultDebounce,
		"Quiet period after the last change before running")

	return cmd
}

// runWatchCmd executes the watch command.
func runWatchCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	db, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	watchConfig := watch.DefaultConfig()
	watchConfig.Dirs = watchDirs(cfg)
	watchConfig.DebounceInterval = cfg.Debounce

	watcher, err := watch.New(watchConfig, logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	runner := newRunner(cfg, db, true, logger)
	onChange := func(ctx context.Context) error {
		err := executeRun(ctx, cmd, cfg, runner)
		if errors.Is(err, errCritical) {
			return nil
		}
		return err
	}

	if err := onChange(ctx); err != nil {
		logger.Error("initial run failed", "error", err)
	}

	cmd.PrintErrf("Watching %v for changes (Ctrl+C to stop)\n", watchConfig.Dirs)
	return watcher.Watch(ctx, onChange)
}

// watchDirs returns the raw directories of the enabled sources.
func watchDirs(cfg *config.Config) []string {
	var dirs []string
	if cfg.JPEntry != "" {
		dirs = append(dirs, cfg.JPDir())
	}
	if cfg.ENEntry != "" && (len(dirs) == 0 || cfg.ENDir() != dirs[0]) {
		dirs = append(dirs, cfg.ENDir())
	}
	return dirs
}
