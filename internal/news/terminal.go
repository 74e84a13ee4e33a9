package news

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/phpwatch/commitlog/internal/output"
)

// FormatOptions controls the terminal output formatting.
type FormatOptions struct {
	Plain    bool // Disable colors and icons
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

var (
	subsystemColor = color.New(color.FgCyan, color.Bold)
	entryColor     = color.New(color.Reset)
	pendingColor   = color.New(color.FgYellow)
)

// FormatTerminal writes a release for reading in a terminal. Long entries are
// wrapped to the terminal width.
func FormatTerminal(r *Release, w io.Writer, opts FormatOptions) error {
	width := resolveWidth(opts.MaxWidth)

	if err := writeReleaseHeader(r, w, opts); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, s := range r.Subsystems {
		if len(s.Entries) == 0 {
			continue
		}
		if err := writeSubsystem(s, w, opts, width); err != nil {
			return fmt.Errorf("writing subsystem %s: %w", s.Name, err)
		}
	}
	return nil
}

func writeReleaseHeader(r *Release, w io.Writer, opts FormatOptions) error {
	header := "PHP " + r.Version
	status := "unreleased"
	if !r.IsUnreleased() {
		status = r.Date.Format("02 Jan 2006")
	}

	if opts.Plain {
		_, err := fmt.Fprintf(w, "## %s (%s)\n", header, status)
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	if r.IsUnreleased() {
		status = pendingColor.Sprint(status)
	}
	_, err := fmt.Fprintf(w, "## %s (%s)\n", bold(header), status)
	return err
}

func writeSubsystem(s *Subsystem, w io.Writer, opts FormatOptions, width int) error {
	if opts.Plain {
		if _, err := fmt.Fprintf(w, "\n### %s\n", s.Name); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "\n%s\n", subsystemColor.Sprint("▸ "+s.Name)); err != nil {
			return err
		}
	}

	prefix := "  - "
	for _, e := range s.Entries {
		text := e.Text
		if !opts.Plain {
			text = entryColor.Sprint(wrapText(text, width-len(prefix), "    "))
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", prefix, text); err != nil {
			return err
		}
	}
	return nil
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	return output.GetTerminalWidth()
}

// wrapText wraps text at spaces to fit within maxWidth, using indent for
// continuation lines. Words longer than maxWidth are left intact.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || len(text) <= maxWidth {
		return text
	}

	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+1+len(word) > maxWidth {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return strings.Join(lines, "\n"+indent)
}

// Encode writes the release as "json" or "yaml".
func Encode(r *Release, w io.Writer, format string) error {
	return output.Encode(w, r, output.Format(format))
}
