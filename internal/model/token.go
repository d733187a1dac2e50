package model

// Token is a single lexical unit recognized in a tag-list source.
// Only Heading and TagDefinition implement it.
type Token interface {
	// Line returns the 1-based source line the token starts on.
	Line() int

	isToken()
}

// Heading is a "+" or "++" heading line.
type Heading struct {
	// Level is the number of leading markers (1 or 2).
	Level int

	// Title is the heading text without markers and anchor.
	Title string

	// ID is the optional [[# anchor]] that follows the title.
	ID string

	// LineNumber is the 1-based source line.
	LineNumber int
}

// Line implements Token.
func (h Heading) Line() int { return h.LineNumber }

func (Heading) isToken() {}

// TagDefinition is a bullet line that defines a tag, with any
// continuation lines already merged into Description.
type TagDefinition struct {
	// Icons is the raw run of ",,X,," restriction codes, possibly empty.
	Icons string

	// Slug is the tag identifier taken from the tag-system link.
	Slug string

	// NameLocal is the display name of the link.
	NameLocal string

	// NameForeign is the optional //(English name)// annotation.
	NameForeign string

	// Description is the text after the separator. Continuation lines are
	// joined with "\n".
	Description string

	// LineNumber is the 1-based line of the bullet.
	LineNumber int

	// SourceLine is the unmodified bullet line.
	SourceLine string
}

// Line implements Token.
func (d TagDefinition) Line() int { return d.LineNumber }

func (TagDefinition) isToken() {}
