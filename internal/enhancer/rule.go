package enhancer

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

// Rule is one rewrite step: every match of Pattern is replaced with Template,
// where $0 is the whole match and $1..$9 are capture groups.
//
// A rule never rewrites text that overlaps existing inline code (`...`) or a
// markdown link ([label](target)). Patterns also carry their own lookaround so
// the rule is safe when applied to its own output.
type Rule struct {
	Name     string
	Pattern  *regexp2.Regexp
	Template string

	// Filter, when set, vetoes individual matches. groups[0] is the whole match.
	Filter func(groups []string) bool
}

// NewRule compiles pattern and returns the rule. It panics on an invalid
// pattern; rules are package-level tables built at init.
func NewRule(name, pattern, template string) Rule {
	return Rule{
		Name:     name,
		Pattern:  regexp2.MustCompile(pattern, regexp2.None),
		Template: template,
	}
}

// Apply rewrites text and returns the result.
func (r Rule) Apply(text string) string {
	out, _ := r.apply(text)
	return out
}

// matches reports whether Apply would change text.
func (r Rule) matches(text string) bool {
	_, changed := r.apply(text)
	return changed
}

func (r Rule) apply(text string) (string, bool) {
	if text == "" {
		return text, false
	}

	spans := markupSpans(text)
	changed := false

	out, err := r.Pattern.ReplaceFunc(text, func(m regexp2.Match) string {
		if overlapsAny(spans, m.Index, m.Length) {
			return m.String()
		}
		groups := groupStrings(&m)
		if r.Filter != nil && !r.Filter(groups) {
			return m.String()
		}
		changed = true
		return expand(r.Template, groups)
	}, -1, -1)
	if err != nil {
		// regexp2 only fails on match timeout, which is not configured.
		return text, false
	}
	return out, changed
}

// span is a half-open rune range.
type span struct {
	start, end int
}

var markupSpanRe = regexp2.MustCompile(`\x60[^\x60]*\x60|\[[^\]\n]*\]\([^)\s]*\)`, regexp2.None)

// markupSpans returns the rune ranges of inline code and markdown links.
// Indices are rune offsets, matching regexp2 match positions.
func markupSpans(text string) []span {
	var spans []span
	m, _ := markupSpanRe.FindStringMatch(text)
	for m != nil {
		spans = append(spans, span{start: m.Index, end: m.Index + m.Length})
		m, _ = markupSpanRe.FindNextMatch(m)
	}
	return spans
}

func overlapsAny(spans []span, index, length int) bool {
	end := index + length
	for _, s := range spans {
		if index < s.end && s.start < end {
			return true
		}
	}
	return false
}

func groupStrings(m *regexp2.Match) []string {
	groups := m.Groups()
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.String()
	}
	return out
}

// expand substitutes $N placeholders. Higher group numbers are listed first so
// "$10" is never read as "$1" followed by "0".
func expand(template string, groups []string) string {
	if !strings.Contains(template, "$") {
		return template
	}
	pairs := make([]string, 0, 2*len(groups))
	for i := len(groups) - 1; i >= 0; i-- {
		pairs = append(pairs, "$"+strconv.Itoa(i), groups[i])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
