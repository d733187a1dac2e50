package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newWikiServer serves page sources keyed by "/{site}/{page}".
func newWikiServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/scp-jp/tag-list", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "+ 基本\n[[include fragment:tag-list-basic]]\n")
	})
	mux.HandleFunc("/scp-jp/fragment:tag-list-basic", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "++ オブジェクトクラス\n")
	})
	mux.HandleFunc("/05command/tech-hub-tag-list", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Staff") != "yes" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "+ Primary Tags\n")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchCmd(t *testing.T) {
	t.Parallel()

	t.Run("mirrors pages per site", func(t *testing.T) {
		t.Parallel()
		srv := newWikiServer(t)
		raw := filepath.Join(t.TempDir(), "raw")

		stdout, _, err := executeRoot(t, "fetch", "-r", raw,
			"--url-template", srv.URL+"/{site}/{page}",
			"-p", "scp-jp:tag-list", "-p", "scp-jp:fragment:tag-list-basic")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Saved 2 page(s)") {
			t.Errorf("unexpected output: %q", stdout)
		}

		data, err := os.ReadFile(filepath.Join(raw, "scp-jp", "fragment_tag-list-basic.txt"))
		if err != nil {
			t.Fatalf("expected mirrored fragment: %v", err)
		}
		if !strings.Contains(string(data), "オブジェクトクラス") {
			t.Errorf("unexpected fragment content: %q", data)
		}
	})

	t.Run("failed pages are reported", func(t *testing.T) {
		t.Parallel()
		srv := newWikiServer(t)
		raw := filepath.Join(t.TempDir(), "raw")

		stdout, _, err := executeRoot(t, "fetch", "-r", raw,
			"--url-template", srv.URL+"/{site}/{page}",
			"-p", "scp-jp:tag-list", "-p", "05command:tech-hub-tag-list")
		if err == nil {
			t.Fatal("expected error for the forbidden page")
		}
		if !strings.Contains(stdout, "failed: 05command:tech-hub-tag-list") {
			t.Errorf("expected failure line, got %q", stdout)
		}
		if _, err := os.Stat(filepath.Join(raw, "scp-jp", "tag-list.txt")); err != nil {
			t.Errorf("expected the other page to be saved: %v", err)
		}
	})

	t.Run("site headers from the config file", func(t *testing.T) {
		t.Parallel()
		srv := newWikiServer(t)
		dir := t.TempDir()
		raw := filepath.Join(dir, "raw")
		cfgPath := filepath.Join(dir, "tagdict.yaml")
		writeFile(t, cfgPath, `
fetch:
  url_template: "`+srv.URL+`/{site}/{page}"
  pages:
    - 05command:tech-hub-tag-list
  sites:
    05command:
      headers:
        X-Staff: "yes"
`)

		cmd := NewRootCmd()
		var stdout strings.Builder
		cmd.SetOut(&stdout)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"fetch", "-c", cfgPath, "-r", raw})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v\n%s", err, stdout.String())
		}
		if _, err := os.Stat(filepath.Join(raw, "05command", "tech-hub-tag-list.txt")); err != nil {
			t.Errorf("expected mirrored page: %v", err)
		}
	})

	t.Run("invalid page reference", func(t *testing.T) {
		t.Parallel()
		_, _, err := executeRoot(t, "fetch", "-r", t.TempDir(), "-p", "no-site")
		if err == nil {
			t.Error("expected error for a page without a site")
		}
	})
}

func TestResolvePages(t *testing.T) {
	t.Parallel()

	pages, err := resolvePages(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) == 0 {
		t.Error("expected default pages")
	}

	pages, err = resolvePages([]string{"scp-jp:fragment:tag-list-basic"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 || pages[0].Site != "scp-jp" || pages[0].Name != "fragment:tag-list-basic" {
		t.Errorf("unexpected pages: %+v", pages)
	}
}
