package model

// Relation types assigned to RelatedTag.
const (
	RelationLinkReference        = "link-reference"
	RelationMention              = "mention"
	RelationRequiredCoTag        = "required-co-tag"
	RelationRecommendedCoTag     = "recommended-co-tag"
	RelationExclusiveAlternative = "exclusive-alternative"
	RelationSubstitute           = "substitute"
	RelationSeeAlso              = "see-also"
)

// Restriction is a decoded restriction icon.
type Restriction struct {
	Icon    string `json:"icon"`
	Meaning string `json:"meaning"`
}

// RelatedPage is a non-tag page linked from a description.
type RelatedPage struct {
	Slug        string  `json:"slug"`
	DisplayName *string `json:"display_name"`
}

// RelatedTag is another tag that a description refers to.
type RelatedTag struct {
	Slug         string `json:"slug"`
	RelationType string `json:"relation_type"`
}

// Meta aggregates the annotations recovered from a description.
type Meta struct {
	RelatedPages    []RelatedPage `json:"related_pages"`
	RelatedTags     []RelatedTag  `json:"related_tags"`
	TargetPageTypes []string      `json:"target_page_types"`
	Footnotes       []string      `json:"footnotes"`
	OtherNotes      []string      `json:"other_notes"`
}

// NewMeta returns a Meta whose slices are empty rather than nil so that
// they serialize as [] instead of null.
func NewMeta() Meta {
	return Meta{
		RelatedPages:    []RelatedPage{},
		RelatedTags:     []RelatedTag{},
		TargetPageTypes: []string{},
		Footnotes:       []string{},
		OtherNotes:      []string{},
	}
}

// SourceLocation points back to the line a record was built from.
type SourceLocation struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Tag is the record emitted for one Japanese tag definition.
type Tag struct {
	Slug             string         `json:"slug"`
	NameLocal        string         `json:"name_local"`
	NameForeign      string         `json:"name_foreign,omitempty"`
	DescriptionRaw   string         `json:"description_raw"`
	DescriptionPlain string         `json:"description_plain"`
	CategoryPath     []string       `json:"category_path"`
	Restrictions     []Restriction  `json:"restrictions"`
	Meta             Meta           `json:"meta"`
	SourceLocation   SourceLocation `json:"source_location"`
}

// EnglishTag is a record parsed from the English tag list.
type EnglishTag struct {
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	CategoryPath   []string            `json:"category_path"`
	Meta           map[string][]string `json:"meta"`
	SourceLocation SourceLocation      `json:"source_location"`
}

// Dictionary maps an English tag name to a Japanese slug, or nil when the
// name has no Japanese counterpart.
type Dictionary map[string]*string
