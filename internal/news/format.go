package news

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/phpwatch/commitlog/internal/markup"
)

// TextEnhancer rewrites a single entry for publication.
type TextEnhancer interface {
	Enhance(text string) string
}

type identity struct{}

func (identity) Enhance(text string) string { return text }

// authorSuffixRe matches a trailing credit such as " (cmb)" or " (Nikita, Derick)."
var authorSuffixRe = regexp.MustCompile(`^(.*) \([\w\p{L} ,.-]+\).?$`)

// StripAuthor removes a trailing author credit from an entry.
func StripAuthor(text string) string {
	return authorSuffixRe.ReplaceAllString(text, "$1")
}

// Formatter prepares releases for publication.
type Formatter struct {
	enhancer TextEnhancer
}

// NewFormatter returns a formatter that enhances entries with e.
// A nil enhancer leaves entry text as is.
func NewFormatter(e TextEnhancer) *Formatter {
	if e == nil {
		e = identity{}
	}
	return &Formatter{enhancer: e}
}

// Release returns the version with author credits stripped and every entry
// enhanced. The document is not modified.
func (f *Formatter) Release(n *News, version string) (*Release, error) {
	r, err := n.Release(version)
	if err != nil {
		return nil, err
	}
	for _, s := range r.Subsystems {
		for i := range s.Entries {
			s.Entries[i].Text = f.enhancer.Enhance(StripAuthor(s.Entries[i].Text))
		}
	}
	return r, nil
}

// Markdown renders the formatted release as markdown.
func (f *Formatter) Markdown(n *News, version string) (string, error) {
	r, err := f.Release(n, version)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := RenderMarkdown(r, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderMarkdown writes one heading per subsystem followed by its entries.
func RenderMarkdown(r *Release, w io.Writer) error {
	sections := make([]markup.Section, 0, len(r.Subsystems))
	for _, s := range r.Subsystems {
		if len(s.Entries) == 0 {
			continue
		}
		sections = append(sections, markup.Section{Title: s.Name, Items: s.Texts()})
	}
	if err := markup.WriteSections(w, sections); err != nil {
		return fmt.Errorf("rendering release %s: %w", r.Version, err)
	}
	return nil
}
