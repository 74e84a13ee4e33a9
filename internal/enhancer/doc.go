// Package enhancer rewrites free-text changelog entries and commit subjects
// into linked, code-quoted markdown.
//
// Rewrites run in a fixed order:
//   - bug tracker references (#81739)
//   - repository cross references (GH-123, #11453, commit hashes, PR trailers)
//   - code-like tokens quoted with backticks (see CodeRules)
//   - security advisories (CVE and GHSA identifiers)
//
// Every stage leaves existing inline code and markdown links alone, so
// enhancing already enhanced text returns it unchanged.
package enhancer
