package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/tagdict/internal/diag"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func newTestLoader(dir string) (*Loader, *diag.Collector) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	diags := diag.NewCollector(logger)
	return NewLoader(dir, diags, WithLogger(logger)), diags
}

func TestLoaderExpandsIncludesInPlace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"tag-list.txt":                "head\n[[include :scp-jp:fragment:tag-list-basic]]\ntail\n",
		"fragment_tag-list-basic.txt": "basic-1\n[[include fragment:nested arg=1]]\nbasic-2",
		"fragment_nested.txt":         "nested",
	})

	l, diags := newTestLoader(dir)
	got, err := l.Load(context.Background(), "tag-list.txt")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := "head\nbasic-1\nnested\nbasic-2\ntail\n"
	if got != want {
		t.Errorf("Load() = %q, want %q", got, want)
	}
	if diags.Count() != 0 {
		t.Errorf("unexpected diagnostics: %v", diags.All())
	}
}

func TestLoaderMissingFragmentKeepsSiblings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"doc.txt":        "[[include fragment:a]]|[[include fragment:missing]]|[[include fragment:b]]",
		"fragment_a.txt": "A",
		"fragment_b.txt": "B",
	})

	l, diags := newTestLoader(dir)
	got, err := l.Load(context.Background(), "doc.txt")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != "A||B" {
		t.Errorf("Load() = %q, want %q", got, "A||B")
	}

	counts := diags.CountByKind()
	if counts[diag.KindFileNotFound] != 1 {
		t.Errorf("FileNotFound count = %d, want 1", counts[diag.KindFileNotFound])
	}
	if d := diags.All()[0]; d.Severity != diag.SeverityWarning {
		t.Errorf("severity = %v, want warning", d.Severity)
	}
}

func TestLoaderCircularInclude(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		files map[string]string
		entry string
		want  string
	}{
		{
			name: "fragment includes the entry document",
			files: map[string]string{
				"doc.txt":        "start[[include :scp-jp:fragment:a]]end",
				"fragment_a.txt": "a[[include :scp-jp:doc]]a",
			},
			entry: "doc.txt",
			want:  "startaaend",
		},
		{
			name: "fragment includes itself",
			files: map[string]string{
				"doc.txt":           "[[include fragment:self]]",
				"fragment_self.txt": "x[[include fragment:self]]y",
			},
			entry: "doc.txt",
			want:  "xy",
		},
		{
			name: "three-file cycle",
			files: map[string]string{
				"doc.txt":        "[[include fragment:a]]",
				"fragment_a.txt": "a[[include fragment:b]]",
				"fragment_b.txt": "b[[include fragment:a]]",
			},
			entry: "doc.txt",
			want:  "ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFiles(t, dir, tt.files)

			l, diags := newTestLoader(dir)
			got, err := l.Load(context.Background(), tt.entry)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Load() = %q, want %q", got, tt.want)
			}
			if n := diags.CountByKind()[diag.KindCircularReference]; n != 1 {
				t.Errorf("CircularReference count = %d, want 1", n)
			}
			if diags.HasCritical() {
				t.Error("circular reference must not be critical")
			}
		})
	}
}

func TestLoaderSiblingIncludesAreNotCircular(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"doc.txt":             "[[include fragment:a]][[include fragment:b]]",
		"fragment_a.txt":      "[[include fragment:shared]]",
		"fragment_b.txt":      "[[include fragment:shared]]",
		"fragment_shared.txt": "S",
	})

	l, diags := newTestLoader(dir)
	got, err := l.Load(context.Background(), "doc.txt")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != "SS" {
		t.Errorf("Load() = %q, want %q", got, "SS")
	}
	if diags.Count() != 0 {
		t.Errorf("unexpected diagnostics: %v", diags.All())
	}
}

func TestLoaderEntryUnreadable(t *testing.T) {
	t.Parallel()

	l, diags := newTestLoader(t.TempDir())
	_, err := l.Load(context.Background(), "nope.txt")
	if !errors.Is(err, ErrEntryUnreadable) {
		t.Fatalf("error = %v, want ErrEntryUnreadable", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist: %v", err)
	}
	if !diags.HasCritical() {
		t.Error("expected a critical diagnostic")
	}
}

func TestLoaderStateIsPerInvocation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"doc.txt":        "[[include fragment:a]]",
		"fragment_a.txt": "v1",
	})

	l, _ := newTestLoader(dir)
	first, err := l.Load(context.Background(), "doc.txt")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	firstDigest := l.Digest()

	writeFiles(t, dir, map[string]string{"fragment_a.txt": "v2"})
	second, err := l.Load(context.Background(), "doc.txt")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if first != "v1" || second != "v2" {
		t.Errorf("Load() results = %q, %q; cache leaked between invocations", first, second)
	}
	if firstDigest == l.Digest() {
		t.Error("digest should change when a fragment changes")
	}
}

func TestLoaderDigestIsStable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"doc.txt": "same"})

	l, _ := newTestLoader(dir)
	if _, err := l.Load(context.Background(), "doc.txt"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	first := l.Digest()
	if _, err := l.Load(context.Background(), "doc.txt"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if first == "" || first != l.Digest() {
		t.Errorf("Digest() not stable: %q vs %q", first, l.Digest())
	}
}

func TestLoaderCancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"doc.txt":        "[[include fragment:a]]",
		"fragment_a.txt": "a",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l, _ := newTestLoader(dir)
	if _, err := l.Load(ctx, "doc.txt"); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestFragmentFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"tag-list-basic", "fragment_tag-list-basic.txt"},
		{"fragment_x", "fragment_x.txt"},
		{"component:toc", "fragment_component_toc.txt"},
		{"a/b.txt", "fragment_a_b.txt"},
	}

	for _, tt := range tests {
		if got := FragmentFileName(tt.in); got != tt.want {
			t.Errorf("FragmentFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
