package news

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedLine is returned when a line matches none of the known shapes.
	ErrMalformedLine = errors.New("malformed line")
	// ErrOutOfSequence is returned when a line appears without its enclosing
	// release, subsystem or entry.
	ErrOutOfSequence = errors.New("line out of sequence")
	// ErrReleaseNotFound is returned when a requested version is absent.
	ErrReleaseNotFound = errors.New("release not found")
	// ErrReleaseInvalid is returned when a version is present but holds no entries.
	ErrReleaseInvalid = errors.New("release has no entries")
)

// LineError describes a fatal parse failure at a specific source line.
type LineError struct {
	Err     error // ErrMalformedLine or ErrOutOfSequence
	Line    int
	Content string
	Reason  string
}

func (e *LineError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "line %d: %v", e.Line, e.Err)
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	fmt.Fprintf(&b, ": %q", e.Content)
	return b.String()
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// ReleaseError is returned by News.Release. It unwraps to ErrReleaseNotFound
// or ErrReleaseInvalid so callers can tell "no such version" from "parser
// produced an empty section".
type ReleaseError struct {
	Err               error
	Version           string
	AvailableVersions []string
}

func (e *ReleaseError) Error() string {
	if errors.Is(e.Err, ErrReleaseNotFound) {
		return fmt.Sprintf("version %q not found (available: %s)",
			e.Version, strings.Join(e.AvailableVersions, ", "))
	}
	return fmt.Sprintf("version %q: %v", e.Version, e.Err)
}

func (e *ReleaseError) Unwrap() error {
	return e.Err
}
