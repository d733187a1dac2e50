package source

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncodings is the order in which encodings are attempted.
var DefaultEncodings = []string{"utf-8", "shift_jis", "euc-jp", "iso-2022-jp"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decoder converts raw bytes to UTF-8 text by trying an ordered list of
// encodings.
type Decoder struct {
	names []string
	encs  []encoding.Encoding
}

// NewDecoder builds a Decoder for the named encodings. Names are looked
// up in the WHATWG index, so aliases such as "sjis" or "ms932" work.
// An empty list selects DefaultEncodings.
func NewDecoder(names []string) (*Decoder, error) {
	if len(names) == 0 {
		names = DefaultEncodings
	}

	d := &Decoder{}
	for _, name := range names {
		enc, err := htmlindex.Get(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, name)
		}
		canonical, err := htmlindex.Name(enc)
		if err != nil {
			canonical = name
		}
		d.names = append(d.names, canonical)
		d.encs = append(d.encs, enc)
	}
	return d, nil
}

// Names returns the canonical names of the configured encodings.
func (d *Decoder) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Decode returns the text, the name of the encoding that produced it and
// whether the decode was clean. When no encoding decodes cleanly, the
// bytes are interpreted as UTF-8 with invalid sequences replaced, the
// returned name is empty and ok is false.
func (d *Decoder) Decode(raw []byte) (text string, name string, ok bool) {
	raw = bytes.TrimPrefix(raw, utf8BOM)

	for i, enc := range d.encs {
		if s, clean := decodeWith(enc, d.names[i], raw); clean {
			return s, d.names[i], true
		}
	}
	return strings.ToValidUTF8(string(raw), "\uFFFD"), "", false
}

func decodeWith(enc encoding.Encoding, name string, raw []byte) (string, bool) {
	if name == "utf-8" {
		if !utf8.Valid(raw) {
			return "", false
		}
		return string(raw), true
	}

	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	// Replacement characters that were not in the input mean the decoder
	// met bytes it could not map.
	if bytes.ContainsRune(out, utf8.RuneError) && !bytes.Contains(raw, []byte("\uFFFD")) {
		return "", false
	}
	return string(out), true
}
