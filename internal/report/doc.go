// Package report writes tagdict output files and run summaries.
//
// This package contains:
//   - DumpJSON / EncodeJSON: the UTF-8, indented, non-escaping JSON writer
//     used for tag lists and dictionaries
//   - SimpleWriter: the end-of-run text summary printed to the terminal
//   - JSONWriter: the run summary as JSON
//   - MarkdownWriter: the run summary as GitHub-flavored Markdown
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
