package commits

import (
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/phpwatch/commitlog/internal/markup"
)

// Enhancer rewrites a commit subject, appending a link to shortHash when the
// subject carries no other reference.
type Enhancer interface {
	EnhanceCommit(subject, shortHash string) string
}

// Entry is a commit that survived filtering, with its rendered subject and
// display author.
type Entry struct {
	Commit
	Formatted     string `json:"formatted" yaml:"formatted"`
	DisplayAuthor string `json:"display_author" yaml:"display_author"`
}

// AuthorGroup lists the entries of one display author in commit order.
type AuthorGroup struct {
	Author  string  `json:"author" yaml:"author"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithAuthorReplacements maps commit author names to display names.
func WithAuthorReplacements(replacements map[string]string) Option {
	return func(f *Formatter) {
		for from, to := range replacements {
			f.replacements[from] = to
		}
	}
}

// WithLogger sets the logger used for skipped commit diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Formatter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Formatter filters and renders commits.
type Formatter struct {
	enhancer     Enhancer
	replacements map[string]string
	logger       *zap.Logger
}

// NewFormatter returns a formatter enhancing subjects with e.
func NewFormatter(e Enhancer, opts ...Option) *Formatter {
	f := &Formatter{
		enhancer:     e,
		replacements: make(map[string]string),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Log is the formatted result for one commit range.
type Log struct {
	Entries []Entry `json:"entries" yaml:"entries"`
	Skipped int     `json:"skipped" yaml:"skipped"`
}

// Format filters commits and renders the survivors in input order.
func (f *Formatter) Format(commits []Commit) *Log {
	log := &Log{Entries: make([]Entry, 0, len(commits))}

	for _, c := range commits {
		if ShouldSkip(c.Subject) {
			f.logger.Debug("skipping commit",
				zap.String("hash", c.ShortHash()),
				zap.String("subject", c.Subject))
			log.Skipped++
			continue
		}

		author := c.Author
		if replacement, ok := f.replacements[author]; ok {
			author = replacement
		}

		formatted := c.Subject
		if f.enhancer != nil {
			formatted = f.enhancer.EnhanceCommit(c.Subject, c.ShortHash())
		}

		log.Entries = append(log.Entries, Entry{
			Commit:        c,
			Formatted:     formatted,
			DisplayAuthor: author,
		})
	}
	return log
}

// ByAuthor groups entries by display author. Authors are sorted naturally
// and case-insensitively ("dev2" before "Dev10"); entries keep commit order.
func (l *Log) ByAuthor() []AuthorGroup {
	index := make(map[string]int)
	var groups []AuthorGroup
	for _, e := range l.Entries {
		i, ok := index[e.DisplayAuthor]
		if !ok {
			i = len(groups)
			index[e.DisplayAuthor] = i
			groups = append(groups, AuthorGroup{Author: e.DisplayAuthor})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}

	c := collate.New(language.Und, collate.IgnoreCase, collate.Numeric)
	sort.SliceStable(groups, func(i, j int) bool {
		return c.CompareString(groups[i].Author, groups[j].Author) < 0
	})
	return groups
}

// WriteMarkdown renders one line per entry: " - <subject> by <author>".
func (l *Log) WriteMarkdown(w io.Writer) error {
	items := make([]string, len(l.Entries))
	for i, e := range l.Entries {
		items[i] = e.Formatted + " by " + e.DisplayAuthor
	}
	return markup.WriteSections(w, []markup.Section{{Items: items}})
}

// WriteGroupedMarkdown renders one heading per author followed by that
// author's entries.
func (l *Log) WriteGroupedMarkdown(w io.Writer) error {
	groups := l.ByAuthor()
	sections := make([]markup.Section, len(groups))
	for i, g := range groups {
		items := make([]string, len(g.Entries))
		for j, e := range g.Entries {
			items[j] = e.Formatted
		}
		sections[i] = markup.Section{Title: g.Author, Items: items}
	}
	return markup.WriteSections(w, sections)
}

// Markdown returns the flat or grouped markdown as a string.
func (l *Log) Markdown(grouped bool) string {
	var b strings.Builder
	if grouped {
		_ = l.WriteGroupedMarkdown(&b)
	} else {
		_ = l.WriteMarkdown(&b)
	}
	return b.String()
}
