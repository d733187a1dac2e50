package source

import (
	"context"
	"encoding/hex"
	"fmt"
	"hash"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/tagdict/internal/diag"
)

// includePattern matches [[include :site:fragment:name args]]. The site
// and "fragment:" prefixes are optional; the first capture is the name.
var includePattern = regexp.MustCompile(`(?i)\[\[include\s+(?::[^:\]\s]+:)?(?:fragment:)?([^\]\s|]+)[^\]]*\]\]`)

// fragmentPrefix is prepended to include names to form fragment file names.
const fragmentPrefix = "fragment_"

// resolving is the immutable set of files on the current include branch.
type resolving map[string]struct{}

// with returns a copy of s that also contains path.
func (s resolving) with(path string) resolving {
	next := make(resolving, len(s)+1)
	for k := range s {
		next[k] = struct{}{}
	}
	next[path] = struct{}{}
	return next
}

func (s resolving) has(path string) bool {
	_, ok := s[path]
	return ok
}

// Loader reads an entry file and expands its includes.
// A Loader is not safe for concurrent use; create one per source.
type Loader struct {
	baseDir string
	decoder *Decoder
	diags   *diag.Collector
	logger  *slog.Logger

	// cache and digest are reset on every Load.
	cache  map[string]string
	digest hash.Hash
}

// Option is a function that configures a Loader.
type Option func(*Loader)

// WithDecoder sets the decoder used for every file.
func WithDecoder(d *Decoder) Option {
	return func(l *Loader) {
		l.decoder = d
	}
}

// WithLogger sets a custom logger for the loader.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader resolving names relative to baseDir.
// Diagnostics are recorded in diags.
func NewLoader(baseDir string, diags *diag.Collector, opts ...Option) *Loader {
	l := &Loader{
		baseDir: baseDir,
		diags:   diags,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.decoder == nil {
		// DefaultEncodings are all known to htmlindex.
		l.decoder, _ = NewDecoder(nil)
	}
	return l
}

// Load reads entry and returns its text with every include expanded.
// An error is returned only when the entry itself cannot be read or ctx
// is cancelled; missing and circular includes are recorded as
// diagnostics and replaced with an empty string.
func (l *Loader) Load(ctx context.Context, entry string) (string, error) {
	l.cache = make(map[string]string)
	l.digest = sha3.New256()

	path := l.resolvePath(entry)
	text, err := l.read(path)
	if err != nil {
		l.diags.Error(diag.KindFileNotFound, "entry file cannot be read", diag.At(path, 0), diag.WithDetail("error", err.Error()))
		return "", fmt.Errorf("%w: %s: %w", ErrEntryUnreadable, path, err)
	}

	return l.expand(ctx, text, path, resolving{}.with(path))
}

// Digest returns the SHA3-256 hex digest of the raw bytes read by the
// last Load, in the order they were read.
func (l *Loader) Digest() string {
	if l.digest == nil {
		return ""
	}
	return hex.EncodeToString(l.digest.Sum(nil))
}

// expand replaces each include directive in text with the expanded
// content of the referenced fragment.
func (l *Loader) expand(ctx context.Context, text, file string, branch resolving) (string, error) {
	matches := includePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		b.WriteString(text[last:m[0]])
		last = m[1]

		name := text[m[2]:m[3]]
		line := strings.Count(text[:m[0]], "\n") + 1

		path, ok := l.locate(name)
		if !ok {
			l.diags.Warn(diag.KindFileNotFound, "included fragment not found",
				diag.At(file, line), diag.WithDetail("fragment", path))
			continue
		}

		if branch.has(path) {
			l.diags.Warn(diag.KindCircularReference, "circular include skipped",
				diag.At(file, line), diag.WithDetail("fragment", path))
			continue
		}

		content, err := l.read(path)
		if err != nil {
			l.diags.Warn(diag.KindFileNotFound, "included fragment cannot be read",
				diag.At(file, line), diag.WithDetail("fragment", path), diag.WithDetail("error", err.Error()))
			continue
		}

		expanded, err := l.expand(ctx, content, path, branch.with(path))
		if err != nil {
			return "", err
		}
		b.WriteString(expanded)
	}
	b.WriteString(text[last:])

	return b.String(), nil
}

// locate maps an include name to a file. The conventional fragment file
// name is tried first, then the plain page name. When neither exists the
// conventional path is returned with ok set to false.
func (l *Loader) locate(name string) (string, bool) {
	conventional := l.resolvePath(FragmentFileName(name))
	candidates := []string{conventional, l.resolvePath(PageFileName(name))}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return conventional, false
}

// read returns the decoded content of path, using the per-Load cache.
func (l *Loader) read(path string) (string, error) {
	if text, ok := l.cache[path]; ok {
		return text, nil
	}

	raw, err := os.ReadFile(path) //nolint:gosec // paths come from the configured source directory
	if err != nil {
		return "", err
	}
	l.digest.Write(raw)

	text, enc, ok := l.decoder.Decode(raw)
	if !ok {
		l.logger.Warn("no encoding decoded cleanly, invalid bytes replaced",
			"file", path,
			"tried", strings.Join(l.decoder.Names(), ","),
		)
		l.diags.Warn(diag.KindUnknown, "lossy decode", diag.At(path, 0))
	} else {
		l.logger.Debug("decoded source", "file", path, "encoding", enc)
	}

	l.cache[path] = text
	return text, nil
}

func (l *Loader) resolvePath(name string) string {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.baseDir, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Clean(path)
}

// PageFileName converts a wiki page name to the file name the fetcher
// saves it under: ":" and "/" become "_" and ".txt" is appended when
// missing.
func PageFileName(page string) string {
	name := strings.NewReplacer(":", "_", "/", "_").Replace(page)
	if !strings.HasSuffix(name, ".txt") {
		name += ".txt"
	}
	return name
}

// FragmentFileName converts an include name to its fragment file name.
func FragmentFileName(name string) string {
	file := PageFileName(name)
	if !strings.HasPrefix(file, fragmentPrefix) {
		file = fragmentPrefix + file
	}
	return file
}
