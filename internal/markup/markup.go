// Package markup holds the markdown helpers shared by the release and
// commit renderers.
package markup

import (
	"html"
	"io"
	"strings"
)

// EOL terminates every rendered line.
const EOL = "\n"

// Title returns a level three heading.
func Title(title string) string {
	return "### " + PlainText(title) + EOL
}

// ListItem returns a single list line.
func ListItem(item string) string {
	return " - " + PlainText(item) + EOL
}

// PlainText escapes HTML special characters. Markdown syntax is kept.
func PlainText(text string) string {
	return html.EscapeString(text)
}

// Section is a titled list. An empty Title renders the items alone.
type Section struct {
	Title string
	Items []string
}

// WriteSections renders sections in order. Each titled section is followed by
// a blank line.
func WriteSections(w io.Writer, sections []Section) error {
	for _, s := range sections {
		if _, err := io.WriteString(w, RenderSection(s)); err != nil {
			return err
		}
	}
	return nil
}

// RenderSection returns the markdown for one section.
func RenderSection(s Section) string {
	var b strings.Builder
	if s.Title != "" {
		b.WriteString(Title(s.Title))
	}
	for _, item := range s.Items {
		b.WriteString(ListItem(item))
	}
	if s.Title != "" {
		b.WriteString(EOL)
	}
	return b.String()
}
