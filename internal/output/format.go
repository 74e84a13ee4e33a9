// Package output provides encoding and terminal helpers shared by the
// commitlog commands. It has minimal dependencies to avoid import cycles.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Format names an output encoding.
type Format string

const (
	Markdown Format = "markdown"
	Terminal Format = "terminal"
	Text     Format = "text"
	JSON     Format = "json"
	YAML     Format = "yaml"
)

// ParseFormat validates name against the formats a command accepts.
func ParseFormat(name string, allowed ...Format) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, a := range allowed {
		if f == a {
			return f, nil
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return "", fmt.Errorf("unsupported format %q (want one of: %s)", name, strings.Join(names, ", "))
}

// Encode writes v as indented JSON or YAML. HTML is not escaped in JSON
// because entries carry markdown.
func Encode(w io.Writer, v any, format Format) error {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported encoding %q", format)
	}
}

// GetTerminalWidth returns the width of stdout, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// PrintSuccess prints a green checkmark line.
func PrintSuccess(out io.Writer, message string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("✓"), message)
}

// PrintNotice prints a dim informational line, e.g. a watch status.
func PrintNotice(out io.Writer, message string) {
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintln(out, dim(message))
}
