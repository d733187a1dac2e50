package database

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
)

// Translation is one dictionary row joined with the Japanese tag it
// resolves to.
type Translation struct {
	EnglishName string  `json:"english_name,omitempty"`
	Slug        *string `json:"slug"`
	NameLocal   string  `json:"name_local,omitempty"`
	Category    string  `json:"category,omitempty"`
}

// Lookup searches the latest run for name. It matches English names
// case-insensitively, and Japanese slugs and local names exactly.
// Japanese tags without a dictionary row are returned with an empty
// EnglishName. Returns nil when no run was recorded.
func (tdb *TagDB) Lookup(ctx context.Context, name string) ([]Translation, error) {
	run, err := tdb.LatestRun(ctx)
	if err != nil || run == nil {
		return nil, err
	}
	return tdb.LookupInRun(ctx, run.ID, name)
}

// LookupInRun is Lookup restricted to a specific run.
func (tdb *TagDB) LookupInRun(ctx context.Context, runID, name string) ([]Translation, error) {
	rows, err := tdb.db.QueryContext(ctx, `
	SELECT t.english_name, t.slug, COALESCE(g.name_local, ''), COALESCE(g.category, '')
	FROM translations t
	LEFT JOIN tags g ON g.run_id = t.run_id AND g.slug = t.slug
	WHERE t.run_id = ?
	  AND (lower(t.english_name) = lower(?) OR t.slug = ? OR g.name_local = ?)
	ORDER BY t.english_name
	`, runID, name, name, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up translations: %w", err)
	}

	results := make([]Translation, 0)
	for rows.Next() {
		var (
			tr   Translation
			slug sql.NullString
		)
		if err := rows.Scan(&tr.EnglishName, &slug, &tr.NameLocal, &tr.Category); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan translation: %w", err)
		}
		tr.Slug = stringPtr(slug)
		if !containsTranslation(results, tr) {
			results = append(results, tr)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	tagRows, err := tdb.db.QueryContext(ctx, `
	SELECT slug, name_local, COALESCE(category, '')
	FROM tags
	WHERE run_id = ?
	  AND (slug = ? OR name_local = ? OR lower(name_foreign) = lower(?))
	  AND slug NOT IN (SELECT slug FROM translations WHERE run_id = ? AND slug IS NOT NULL)
	ORDER BY id
	`, runID, name, name, name, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up tags: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var (
			tr   Translation
			slug string
		)
		if err := tagRows.Scan(&slug, &tr.NameLocal, &tr.Category); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tr.Slug = &slug
		if !containsTranslation(results, tr) {
			results = append(results, tr)
		}
	}
	return results, tagRows.Err()
}

func containsTranslation(list []Translation, tr Translation) bool {
	return slices.ContainsFunc(list, func(o Translation) bool {
		return o.EnglishName == tr.EnglishName && equalSlug(o.Slug, tr.Slug)
	})
}

func equalSlug(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Change describes a dictionary entry whose target differs between runs.
type Change struct {
	EnglishName string  `json:"english_name"`
	From        *string `json:"from"`
	To          *string `json:"to"`
}

// RunDiff is the difference between the dictionaries of two runs.
type RunDiff struct {
	From    string        `json:"from"`
	To      string        `json:"to"`
	Added   []Translation `json:"added"`
	Removed []Translation `json:"removed"`
	Changed []Change      `json:"changed"`
}

// Empty reports whether both runs produced the same dictionary.
func (d *RunDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// DiffRuns compares the dictionaries of two runs. Entries are sorted by
// English name.
func (tdb *TagDB) DiffRuns(ctx context.Context, fromID, toID string) (*RunDiff, error) {
	for _, id := range []string{fromID, toID} {
		if _, err := tdb.GetRun(ctx, id); err != nil {
			return nil, err
		}
	}

	from, err := tdb.RunDictionary(ctx, fromID)
	if err != nil {
		return nil, err
	}
	to, err := tdb.RunDictionary(ctx, toID)
	if err != nil {
		return nil, err
	}

	diff := &RunDiff{
		From:    fromID,
		To:      toID,
		Added:   make([]Translation, 0),
		Removed: make([]Translation, 0),
		Changed: make([]Change, 0),
	}
	for name, slug := range to {
		old, ok := from[name]
		switch {
		case !ok:
			diff.Added = append(diff.Added, Translation{EnglishName: name, Slug: slug})
		case !equalSlug(old, slug):
			diff.Changed = append(diff.Changed, Change{EnglishName: name, From: old, To: slug})
		}
	}
	for name, slug := range from {
		if _, ok := to[name]; !ok {
			diff.Removed = append(diff.Removed, Translation{EnglishName: name, Slug: slug})
		}
	}

	byName := func(a, b Translation) int { return strings.Compare(a.EnglishName, b.EnglishName) }
	slices.SortFunc(diff.Added, byName)
	slices.SortFunc(diff.Removed, byName)
	slices.SortFunc(diff.Changed, func(a, b Change) int { return strings.Compare(a.EnglishName, b.EnglishName) })
	return diff, nil
}
