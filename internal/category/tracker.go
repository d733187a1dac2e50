// Package category derives the category path of each tag from the
// headings that precede it.
package category

import (
	"log/slog"
	"strconv"

	"github.com/nao1215/tagdict/internal/diag"
	"github.com/nao1215/tagdict/internal/model"
)

// UnknownParent is the synthetic level-1 title used when a level-2
// heading appears before any level-1 heading.
const UnknownParent = "unknown parent"

// Tracker holds the open headings of one parse invocation. It supports
// exactly two levels: a new level-1 heading closes everything, and a new
// level-2 heading replaces the previous level-2 sibling.
type Tracker struct {
	stack  []model.Category
	file   string
	diags  *diag.Collector
	logger *slog.Logger
}

// NewTracker creates an empty Tracker. file is used to locate diagnostics.
func NewTracker(file string, diags *diag.Collector, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{file: file, diags: diags, logger: logger}
}

// Apply updates the open headings with h and returns the resulting path.
func (t *Tracker) Apply(h model.Heading) []string {
	switch h.Level {
	case 1:
		t.stack = []model.Category{{Name: h.Title, Level: 1}}
	case 2:
		if len(t.stack) == 0 {
			t.logger.Warn("level-2 heading without a parent",
				"file", t.file,
				"line", h.LineNumber,
				"title", h.Title,
			)
			t.stack = []model.Category{{Name: UnknownParent, Level: 1}}
		}
		parent := t.stack[0].Name
		t.stack = []model.Category{t.stack[0], {Name: h.Title, Parent: &parent, Level: 2}}
	default:
		if t.diags != nil {
			t.diags.Error(diag.KindParseError, "unsupported heading level",
				diag.At(t.file, h.LineNumber),
				diag.WithDetail("level", strconv.Itoa(h.Level)),
				diag.WithDetail("title", h.Title),
			)
		}
	}
	return t.Path()
}

// Path returns a copy of the current category path. It is empty when no
// heading has been seen.
func (t *Tracker) Path() []string {
	path := make([]string, len(t.stack))
	for i, c := range t.stack {
		path[i] = c.Name
	}
	return path
}

// Categories returns a copy of the open categories.
func (t *Tracker) Categories() []model.Category {
	out := make([]model.Category, len(t.stack))
	copy(out, t.stack)
	return out
}

// Reset closes every open heading.
func (t *Tracker) Reset() {
	t.stack = nil
}
