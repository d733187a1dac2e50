// Package dict joins the English and Japanese tag lists into the
// English-to-Japanese dictionary.
package dict

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/nao1215/tagdict/internal/model"
)

// Build maps every English tag name to the slug of the first Japanese tag
// whose foreign name equals it. Names without a Japanese counterpart map
// to nil.
func Build(en []model.EnglishTag, jp []model.Tag) model.Dictionary {
	lookup := foreignIndex(jp)

	dict := make(model.Dictionary, len(en))
	for _, tag := range en {
		if tag.Name == "" {
			continue
		}
		if slug, ok := lookup[tag.Name]; ok {
			dict[tag.Name] = &slug
		} else {
			dict[tag.Name] = nil
		}
	}
	return dict
}

func foreignIndex(jp []model.Tag) map[string]string {
	lookup := make(map[string]string, len(jp))
	for _, tag := range jp {
		if tag.NameForeign == "" {
			continue
		}
		if _, ok := lookup[tag.NameForeign]; !ok {
			lookup[tag.NameForeign] = tag.Slug
		}
	}
	return lookup
}

// Coverage summarizes how much of the English list a dictionary covers.
type Coverage struct {
	Total   int `json:"total"`
	Matched int `json:"matched"`
	Missing int `json:"missing"`

	// MissingNames are English names with no Japanese counterpart, sorted.
	MissingNames []string `json:"missing_names"`

	// UnmatchedForeign are Japanese foreign names that no English tag
	// uses, sorted. They usually point at a typo or a renamed tag.
	UnmatchedForeign []string `json:"unmatched_foreign"`
}

// Ratio returns the matched fraction, or 0 for an empty dictionary.
func (c Coverage) Ratio() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Matched) / float64(c.Total)
}

// Measure computes the coverage of dict against the Japanese records it
// was built from.
func Measure(dict model.Dictionary, jp []model.Tag) Coverage {
	c := Coverage{
		Total:            len(dict),
		MissingNames:     make([]string, 0),
		UnmatchedForeign: make([]string, 0),
	}
	for name, slug := range dict {
		if slug == nil {
			c.MissingNames = append(c.MissingNames, name)
		}
	}
	c.Missing = len(c.MissingNames)
	c.Matched = c.Total - c.Missing
	slices.Sort(c.MissingNames)

	for foreign := range foreignIndex(jp) {
		if _, ok := dict[foreign]; !ok {
			c.UnmatchedForeign = append(c.UnmatchedForeign, foreign)
		}
	}
	slices.Sort(c.UnmatchedForeign)

	return c
}

// LoadJapanese reads a JSON array of Japanese tag records.
func LoadJapanese(path string) ([]model.Tag, error) {
	var tags []model.Tag
	if err := readJSON(path, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// LoadEnglish reads a JSON array of English tag records.
func LoadEnglish(path string) ([]model.EnglishTag, error) {
	var tags []model.EnglishTag
	if err := readJSON(path, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided input path
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
