package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of pages fetched at once.
const DefaultConcurrency = 4

// Result is the outcome of fetching one page.
type Result struct {
	Page   Page
	Source string
	Err    error
}

// FetchAll fetches pages with at most concurrency requests in flight.
// Per-page failures are reported in the results, which keep the order of
// pages. The returned error is non-nil only when ctx was cancelled.
func (c *Client) FetchAll(ctx context.Context, pages []Page, concurrency int) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]Result, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, page := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Page: page, Err: err}
				return nil
			}
			text, err := c.Fetch(gctx, page)
			results[i] = Result{Page: page, Source: text, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results, ctx.Err()
}

// Save writes text to {rawDir}/{site}/{file} and returns the path.
func Save(rawDir string, page Page, text string) (string, error) {
	dir := filepath.Join(rawDir, page.Site)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create raw directory: %w", err)
	}
	path := filepath.Join(dir, page.FileName())
	if err := os.WriteFile(path, []byte(text), 0600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// MirrorResult lists the pages a Mirror call saved and the ones it could
// not.
type MirrorResult struct {
	Saved  []string
	Failed []Result
}

// Mirror fetches pages and saves every successful one under rawDir.
func (c *Client) Mirror(ctx context.Context, rawDir string, pages []Page, concurrency int) (*MirrorResult, error) {
	results, err := c.FetchAll(ctx, pages, concurrency)
	if err != nil {
		return nil, err
	}

	out := &MirrorResult{Saved: make([]string, 0, len(results)), Failed: make([]Result, 0)}
	for _, r := range results {
		if r.Err != nil {
			c.logger.Warn("failed to fetch page", "page", r.Page.String(), "error", r.Err)
			out.Failed = append(out.Failed, r)
			continue
		}
		path, err := Save(rawDir, r.Page, r.Source)
		if err != nil {
			return out, err
		}
		out.Saved = append(out.Saved, path)
		c.logger.Info("saved page", "page", r.Page.String(), "path", path)
	}
	return out, nil
}
