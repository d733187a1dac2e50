package diag

// Kind classifies a diagnostic.
type Kind int

const (
	// KindUnknown is used for failures that fit no other kind.
	KindUnknown Kind = iota

	// KindFileNotFound indicates a missing include fragment or input file.
	KindFileNotFound

	// KindCircularReference indicates an include that re-enters a file
	// already being resolved on the same branch.
	KindCircularReference

	// KindParseError indicates a line or fragment of markup that could not
	// be interpreted.
	KindParseError

	// KindValidationError indicates a record with missing required fields.
	KindValidationError

	// KindSerializationError indicates a failure to encode output.
	KindSerializationError
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFileNotFound:
		return "FileNotFound"
	case KindCircularReference:
		return "CircularReference"
	case KindParseError:
		return "ParseError"
	case KindValidationError:
		return "ValidationError"
	case KindSerializationError:
		return "SerializationError"
	default:
		return "Unknown"
	}
}

// Critical reports whether a diagnostic of this kind fails the run.
func (k Kind) Critical() bool {
	switch k {
	case KindFileNotFound, KindParseError, KindValidationError:
		return true
	default:
		return false
	}
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindFileNotFound,
		KindCircularReference,
		KindParseError,
		KindValidationError,
		KindSerializationError,
		KindUnknown,
	}
}

// Severity tells whether a diagnostic is expected and recoverable
// (Warning) or a structural failure (Error).
type Severity int

const (
	// SeverityWarning marks recoverable conditions such as a missing
	// optional fragment.
	SeverityWarning Severity = iota

	// SeverityError marks structural failures.
	SeverityError
)

// String returns a human-readable representation of the severity.
func (s Severity) String() string {
	if s == SeverityError {
		return "ERROR"
	}
	return "WARNING"
}
