// Package news parses php-src style NEWS documents into a release tree.
//
// This package implements:
//   - Line classification (noise, release header, subsystem header, entry
//     start, continuation)
//   - A state machine parser that builds releases -> subsystems -> entries
//   - Release lookup with distinct "not found" and "invalid" errors
//   - Markdown, JSON, YAML and terminal rendering of a single release
//
// Parsing is pure: it performs no I/O and holds no state between documents, so
// concurrent calls are safe. Fetching the document is left to callers (see the
// github package for the remote source).
package news
