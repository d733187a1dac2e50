// Package model defines the data structures shared across tagdict.
//
// This package contains the following main types:
//   - Token: the sealed sum type produced by the lexer (Heading, TagDefinition)
//   - Category: one heading in the source hierarchy
//   - Tag: the final record emitted for every Japanese tag definition
//   - EnglishTag: a record parsed from the English tag list
//   - Dictionary: the English name to Japanese slug mapping
//
// The models are designed to be serializable to JSON for output files and
// database storage.
package model
