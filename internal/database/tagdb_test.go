package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/tagdict/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *TagDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func ptr(s string) *string { return &s }

func testTags() []model.Tag {
	return []model.Tag{
		{
			Slug:         "keter",
			NameLocal:    "ケテル",
			NameForeign:  "keter",
			CategoryPath: []string{"オブジェクトクラス", "主要"},
			Restrictions: []model.Restriction{},
			Meta:         model.NewMeta(),
		},
		{
			Slug:         "euclid",
			NameLocal:    "ユークリッド",
			CategoryPath: []string{"オブジェクトクラス"},
			Restrictions: []model.Restriction{},
			Meta:         model.NewMeta(),
		},
	}
}

func insertTestRun(t *testing.T, db *TagDB, id string, at time.Time, dict model.Dictionary) {
	t.Helper()

	run := &Run{
		ID:          id,
		StartedAt:   at,
		Duration:    1500 * time.Millisecond,
		JPDigest:    "jp-" + id,
		ENDigest:    "en-" + id,
		JPCount:     2,
		ENCount:     len(dict),
		Diagnostics: 1,
	}
	if err := db.InsertRun(context.Background(), run, testTags(), dict); err != nil {
		t.Fatalf("failed to insert run: %v", err)
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "missing")
		_, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if !errors.Is(err, ErrDatabaseNotFound) {
			t.Fatalf("expected ErrDatabaseNotFound, got %v", err)
		}
		if _, statErr := os.Stat(dbDir); !os.IsNotExist(statErr) {
			t.Error("database directory should not have been created")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		insertTestRun(t, db1, "run-1", time.Now(), model.Dictionary{"keter": ptr("keter")})
		db1.Close()

		db2, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to open existing database: %v", err)
		}
		defer db2.Close()

		run, err := db2.LatestRun(context.Background())
		if err != nil {
			t.Fatalf("failed to get latest run: %v", err)
		}
		if run == nil || run.ID != "run-1" {
			t.Errorf("expected run-1 to persist, got %+v", run)
		}
	})
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if !opts.CreateIfNotExists {
		t.Error("expected CreateIfNotExists to be true by default")
	}
	if !opts.EnableWAL {
		t.Error("expected EnableWAL to be true by default")
	}
}

func TestRuns(t *testing.T) {
	t.Parallel()

	t.Run("latest run of empty database is nil", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		run, err := db.LatestRun(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if run != nil {
			t.Errorf("expected nil run, got %+v", run)
		}
	})

	t.Run("list runs newest first with limit", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		insertTestRun(t, db, "a", base, model.Dictionary{})
		insertTestRun(t, db, "b", base.Add(time.Hour), model.Dictionary{})
		insertTestRun(t, db, "c", base.Add(2*time.Hour), model.Dictionary{})

		runs, err := db.ListRuns(context.Background(), 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
			t.Fatalf("unexpected runs: %+v", runs)
		}
		if !runs[0].StartedAt.Equal(base.Add(2 * time.Hour)) {
			t.Errorf("unexpected started_at: %v", runs[0].StartedAt)
		}
		if runs[0].Duration != 1500*time.Millisecond {
			t.Errorf("unexpected duration: %v", runs[0].Duration)
		}
		if runs[0].JPDigest != "jp-c" {
			t.Errorf("unexpected digest: %s", runs[0].JPDigest)
		}

		all, err := db.ListRuns(context.Background(), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 runs, got %d", len(all))
		}
	})

	t.Run("get unknown run", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		if _, err := db.GetRun(context.Background(), "nope"); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("duplicate run id rolls back", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		insertTestRun(t, db, "dup", time.Now(), model.Dictionary{})
		err := db.InsertRun(ctx, &Run{ID: "dup", StartedAt: time.Now()}, testTags(), model.Dictionary{})
		if err == nil {
			t.Fatal("expected error for duplicate run id")
		}
		tags, err := db.RunTags(ctx, "dup")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tags) != 2 {
			t.Errorf("expected 2 tags after rollback, got %d", len(tags))
		}
	})
}

func TestRunTagsAndDictionary(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	insertTestRun(t, db, "r", time.Now(), model.Dictionary{"keter": ptr("keter"), "safe": nil})

	tags, err := db.RunTags(ctx, "r")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tags) != 2 || tags[0].Slug != "keter" || tags[1].NameLocal != "ユークリッド" {
		t.Errorf("unexpected tags: %+v", tags)
	}

	dict, err := db.RunDictionary(ctx, "r")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dict["keter"] == nil || *dict["keter"] != "keter" {
		t.Errorf("unexpected keter entry: %v", dict["keter"])
	}
	if v, ok := dict["safe"]; !ok || v != nil {
		t.Errorf("expected safe to map to null, got %v (present=%v)", v, ok)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	insertTestRun(t, db, "r", time.Now(), model.Dictionary{"Keter": ptr("keter"), "safe": nil})

	tests := []struct {
		name      string
		query     string
		wantLen   int
		wantEN    string
		wantLocal string
	}{
		{name: "english name case-insensitive", query: "keter", wantLen: 1, wantEN: "Keter", wantLocal: "ケテル"},
		{name: "japanese local name", query: "ケテル", wantLen: 1, wantEN: "Keter", wantLocal: "ケテル"},
		{name: "tag without translation", query: "euclid", wantLen: 1, wantEN: "", wantLocal: "ユークリッド"},
		{name: "untranslated english name", query: "safe", wantLen: 1, wantEN: "safe"},
		{name: "no match", query: "apollyon", wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := db.Lookup(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.wantLen {
				t.Fatalf("expected %d results, got %+v", tt.wantLen, got)
			}
			if tt.wantLen == 0 {
				return
			}
			if got[0].EnglishName != tt.wantEN {
				t.Errorf("english name = %q, want %q", got[0].EnglishName, tt.wantEN)
			}
			if got[0].NameLocal != tt.wantLocal {
				t.Errorf("name_local = %q, want %q", got[0].NameLocal, tt.wantLocal)
			}
		})
	}
}

func TestLookupWithoutRuns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	got, err := db.Lookup(context.Background(), "keter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestDiffRuns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	base := time.Now()
	insertTestRun(t, db, "old", base, model.Dictionary{
		"keter":  ptr("keter"),
		"safe":   nil,
		"euclid": ptr("euclid"),
	})
	insertTestRun(t, db, "new", base.Add(time.Minute), model.Dictionary{
		"keter":    ptr("keter"),
		"safe":     ptr("safe"),
		"thaumiel": nil,
	})

	diff, err := db.DiffRuns(context.Background(), "old", "new")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff.Empty() {
		t.Fatal("expected non-empty diff")
	}
	if len(diff.Added) != 1 || diff.Added[0].EnglishName != "thaumiel" {
		t.Errorf("unexpected added: %+v", diff.Added)
	}
	if len(diff.Removed) != 1 || diff.Removed[0].EnglishName != "euclid" {
		t.Errorf("unexpected removed: %+v", diff.Removed)
	}
	if len(diff.Changed) != 1 || diff.Changed[0].EnglishName != "safe" || diff.Changed[0].From != nil {
		t.Errorf("unexpected changed: %+v", diff.Changed)
	}

	same, err := db.DiffRuns(context.Background(), "old", "old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !same.Empty() {
		t.Errorf("expected empty diff, got %+v", same)
	}

	if _, err := db.DiffRuns(context.Background(), "old", "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		zero  bool
	}{
		{input: "2026-01-02T03:04:05.123456789Z"},
		{input: "2026-01-02T03:04:05Z"},
		{input: "2026-01-02 03:04:05"},
		{input: "not a time", zero: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got := parseTimestamp(tt.input)
			if got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q) = %v", tt.input, got)
			}
		})
	}
}
