package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/tagdict/internal/diag"
)

// EncodeJSON writes v to w as indented UTF-8 JSON. HTML-sensitive and
// non-ASCII characters are written as-is.
func EncodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// DumpJSON writes v to path, creating the parent directory if needed.
// The file is only written once encoding succeeded. An encoding failure
// is also recorded as a SerializationError when diags is not nil.
func DumpJSON(path string, v any, diags *diag.Collector) error {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, v); err != nil {
		if diags != nil {
			diags.Error(diag.KindSerializationError, "failed to encode JSON",
				diag.At(path, 0), diag.WithDetail("error", err.Error()))
		}
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// JSONWriter outputs run summaries in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary in JSON format.
func (w *JSONWriter) Write(summary *Summary) (int, error) {
	var buf bytes.Buffer
	if w.indent {
		if err := EncodeJSON(&buf, summary); err != nil {
			return 0, err
		}
	} else {
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(summary); err != nil {
			return 0, err
		}
	}
	return w.output.Write(buf.Bytes())
}
