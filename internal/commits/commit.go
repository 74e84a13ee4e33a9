package commits

import (
	"strings"
)

// ShortHashLength is the number of hash characters used in commit links.
const ShortHashLength = 10

// Commit is a single commit as reported by a commit source.
type Commit struct {
	Subject string `json:"subject" yaml:"subject"`
	Author  string `json:"author" yaml:"author"`
	Hash    string `json:"hash" yaml:"hash"`
	Message string `json:"message" yaml:"message"`
}

// ShortHash returns the abbreviated hash.
func (c Commit) ShortHash() string {
	if len(c.Hash) <= ShortHashLength {
		return c.Hash
	}
	return c.Hash[:ShortHashLength]
}

// Split builds a Commit from a full commit message. The subject is the first
// line, trimmed of surrounding whitespace and dots.
func Split(message, author, hash string) Commit {
	subject, _, _ := strings.Cut(message, "\n")
	return Commit{
		Subject: strings.Trim(strings.TrimSpace(subject), "."),
		Author:  strings.TrimSpace(author),
		Hash:    strings.TrimSpace(hash),
		Message: strings.TrimSpace(message),
	}
}

var (
	skipPrefixes = []string{
		"Merge branch",
		"Merge remote-tracking branch",
		"Update NEWS for ",
	}
	skipFragments = []string{
		"[ci skip]",
		"[skip ci]",
		"is now for PHP 8",
		"is now for PHP-8",
		"PHP-8.0 is now for 8",
	}
)

// ShouldSkip reports whether a subject is housekeeping that does not belong
// in release notes.
func ShouldSkip(subject string) bool {
	if subject == "" {
		return true
	}
	for _, p := range skipPrefixes {
		if strings.HasPrefix(subject, p) {
			return true
		}
	}
	for _, f := range skipFragments {
		if strings.Contains(subject, f) {
			return true
		}
	}
	return false
}
