package model

// Category represents one heading in the source hierarchy.
// Categories are replaced, never edited.
type Category struct {
	Name   string  `json:"name"`
	Parent *string `json:"parent"`
	Level  int     `json:"level"`
}

// Uncategorized is the single category path entry used when a tag appears before
// any heading.
const Uncategorized = "uncategorized"
