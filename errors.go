package chatlib

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrMalformedImport indicates an exported session could not be parsed
	// or is structurally invalid.
	ErrMalformedImport = errors.New("malformed session import")

	// ErrUnsupportedVersion indicates a persisted payload was written by an
	// incompatible envelope version.
	ErrUnsupportedVersion = errors.New("unsupported envelope version")

	// ErrEmptyAnswer indicates an answer backend returned no text.
	ErrEmptyAnswer = errors.New("empty answer")
)
