// Package commits turns raw commit records into release-note lines.
//
// Commits are split into subject, author and hash; housekeeping commits
// (merges, branch bumps, NEWS updates, CI skips) are dropped; the remaining
// subjects are enhanced and rendered either as one flat list or grouped by
// author.
package commits
