package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/tagdict/internal/config"
	"github.com/nao1215/tagdict/internal/fetch"
	"github.com/spf13/cobra"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Mirror the tag list pages into the raw directory",
		Long: `Fetch downloads the wiki source of the tag list pages and saves them under
the raw directory, one subdirectory per site. Page names are turned into
file names by replacing ":" and "/" with "_", so "fragment:tag-list-basic"
is saved as "fragment_tag-list-basic.txt", the name includes resolve to.

Pages that fail to download are reported and skipped; the command fails
only after every other page has been saved.

Examples:
  # Mirror the default pages into the XDG cache directory
  tagdict fetch

  # Mirror into ./raw through a SOCKS5 proxy
  tagdict fetch -r ./raw --proxy 127.0.0.1:1080

  # Mirror a single page
  tagdict fetch -p scp-jp:fragment:tag-list-basic`,
		Args: cobra.NoArgs,
		RunE: runFetchCmd,
	}

	cmd.Flags().StringP("raw-dir", "r", "",
		"Directory receiving mirrored pages (default: XDG cache directory)")
	addFetchFlags(cmd)

	return cmd
}

// runFetchCmd executes the fetch command.
func runFetchCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	pages, err := resolvePages(cfg.Pages)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	result, err := mirrorPages(ctx, cfg, pages, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Saved %d page(s) to %s\n", len(result.Saved), cfg.RawDir)
	for _, failed := range result.Failed {
		fmt.Fprintf(out, "  failed: %s: %v\n", failed.Page, failed.Err)
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d of %d page(s) could not be fetched", len(result.Failed), len(pages))
	}
	return nil
}

// resolvePages parses "site:page" references, or returns the default pages
// when refs is empty.
func resolvePages(refs []string) ([]fetch.Page, error) {
	if len(refs) == 0 {
		return fetch.DefaultPages(), nil
	}
	pages := make([]fetch.Page, 0, len(refs))
	for _, ref := range refs {
		page, err := fetch.ParsePage(ref)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// mirrorPages mirrors pages site by site, so each site gets the cookie and
// headers configured for it.
func mirrorPages(ctx context.Context, cfg *config.Config, pages []fetch.Page, logger *slog.Logger) (*fetch.MirrorResult, error) {
	bySite := make(map[string][]fetch.Page)
	var order []string
	for _, page := range pages {
		if _, ok := bySite[page.Site]; !ok {
			order = append(order, page.Site)
		}
		bySite[page.Site] = append(bySite[page.Site], page)
	}

	total := &fetch.MirrorResult{}
	for _, site := range order {
		client, err := newFetchClient(cfg, site, logger)
		if err != nil {
			return nil, err
		}

		logger.Info("mirroring site", "site", site, "pages", len(bySite[site]))
		result, err := client.Mirror(ctx, cfg.RawDir, bySite[site], cfg.Concurrency)
		if result != nil {
			total.Saved = append(total.Saved, result.Saved...)
			total.Failed = append(total.Failed, result.Failed...)
		}
		if err != nil {
			return total, fmt.Errorf("failed to mirror %s: %w", site, err)
		}
	}
	return total, nil
}

// newFetchClient builds a client for one site.
func newFetchClient(cfg *config.Config, site string, logger *slog.Logger) (*fetch.Client, error) {
	opts := []fetch.Option{
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithLogger(logger),
	}
	if cfg.URLTemplate != "" {
		opts = append(opts, fetch.WithURLTemplate(cfg.URLTemplate))
	}
	if cfg.MaxBodySize > 0 {
		opts = append(opts, fetch.WithMaxBodySize(cfg.MaxBodySize))
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, fetch.WithProxy(cfg.ProxyAddress))
	}
	if cfg.File != nil {
		siteConfig := cfg.File.GetSiteConfig(site)
		if siteConfig.Cookie != "" {
			opts = append(opts, fetch.WithCookie(siteConfig.Cookie))
		}
		if len(siteConfig.Headers) > 0 {
			opts = append(opts, fetch.WithHeaders(siteConfig.Headers))
		}
	}

	client, err := fetch.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch client: %w", err)
	}
	return client, nil
}
