package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	errorLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	errorMsg    = color.New(color.FgRed).SprintFunc()
	fixLabel    = color.New(color.FgGreen, color.Bold).SprintFunc()
	usageLabel  = color.New(color.FgCyan, color.Bold).SprintFunc()
	usageText   = color.New(color.FgCyan).SprintFunc()
	bullet      = color.New(color.FgGreen).SprintFunc()
	categoryFmt = color.New(color.FgYellow).SprintFunc()
)

// style wraps the color helpers so the plain path shares the layout.
type style struct {
	plain bool
}

func (s style) apply(f func(a ...interface{}) string, text string) string {
	if s.plain {
		return text
	}
	return f(text)
}

// Format renders a CLIError for the terminal. plain disables colors; colors
// are also dropped when fatih/color detects no TTY.
func Format(err *CLIError, plain bool) string {
	if err == nil {
		return ""
	}
	s := style{plain: plain}
	var sb strings.Builder

	sb.WriteString(s.apply(errorLabel, "Error"))
	sb.WriteString(" [")
	sb.WriteString(s.apply(categoryFmt, err.Category.String()))
	sb.WriteString("]: ")
	sb.WriteString(s.apply(errorMsg, err.Message))
	sb.WriteString("\n")

	if err.Usage != "" {
		sb.WriteString("\n")
		sb.WriteString(s.apply(usageLabel, "Usage: "))
		sb.WriteString(s.apply(usageText, err.Usage))
		sb.WriteString("\n")
	}

	if len(err.Remediation) > 0 {
		sb.WriteString("\n")
		sb.WriteString(s.apply(fixLabel, "To fix this:"))
		sb.WriteString("\n")
		for _, step := range err.Remediation {
			sb.WriteString("  ")
			sb.WriteString(s.apply(bullet, "•"))
			sb.WriteString(" ")
			sb.WriteString(step)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// Fprint writes err to w. Errors that are not CLIErrors are shown as
// runtime errors.
func Fprint(w io.Writer, err error, plain bool) {
	if err == nil {
		return
	}
	cliErr := AsCLIError(err)
	if cliErr == nil {
		cliErr = Wrap(err, Runtime)
	}
	fmt.Fprint(w, Format(cliErr, plain))
}
