package source

import "errors"

var (
	// ErrEntryUnreadable is returned by Load when the top-level file cannot
	// be read. Missing fragments are diagnostics, not errors.
	ErrEntryUnreadable = errors.New("cannot read entry file")

	// ErrUnknownEncoding is returned when a configured encoding name is not
	// known to the WHATWG encoding index.
	ErrUnknownEncoding = errors.New("unknown text encoding")
)
