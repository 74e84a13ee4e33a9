package news

import (
	"regexp"
	"strings"
	"time"
)

// Kind is the classification of a single NEWS line.
type Kind int

const (
	// KindUnrecognized lines match no known shape and abort the parse.
	KindUnrecognized Kind = iota
	// KindNoise lines (blank, separators, banner, sentinel) are dropped.
	KindNoise
	// KindRelease lines open a new release: "04 Jul 2024, PHP 8.3.9".
	KindRelease
	// KindSubsystem lines open a subsystem: "- Core:".
	KindSubsystem
	// KindEntryStart lines open a new entry: "  . Fixed bug GH-123".
	KindEntryStart
	// KindContinuation lines extend the open entry: "    (cmb)".
	KindContinuation
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNoise:
		return "noise"
	case KindRelease:
		return "release header"
	case KindSubsystem:
		return "subsystem header"
	case KindEntryStart:
		return "entry"
	case KindContinuation:
		return "continuation"
	default:
		return "unrecognized"
	}
}

const (
	bannerPrefix   = "PHP     "
	sentinelPrefix = "<<< NOTE: Insert NEWS"
	dateLayout     = "2 Jan 2006"
)

var (
	pipeSeparatorRe = regexp.MustCompile(`^\|+$`)
	releaseHeaderRe = regexp.MustCompile(
		`^(?P<day>\d\d?|\?\?) (?P<month>Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec|\?\?\?) (?P<year>\d{4}|\?\?\?\?), (?:PHP|php) (?P<version>\d\.\d\.(?:\d\d?|0(?i:alpha|beta|rc)\d))$`,
	)
	subsystemRe       = regexp.MustCompile(`^- ?([A-Za-z][A-Za-z _/\d]*):?\s*$`)
	indentSubsystemRe = regexp.MustCompile(`^ - ?([A-Za-z][A-Za-z _/\d]*):\s*$`)
	entryStartRe      = regexp.MustCompile(`^ {1,2}[.-] (.*)$`)
	continuationRe    = regexp.MustCompile(`^(?: {3,}|\t)(.*)$`)
)

// Line is a classified source line.
type Line struct {
	Number  int
	Raw     string
	Kind    Kind
	Version string     // KindRelease
	Date    *time.Time // KindRelease, nil for placeholder dates
	Name    string     // KindSubsystem
	Text    string     // KindEntryStart, KindContinuation
	Reason  string     // KindUnrecognized, optional detail
}

// Classifier classifies NEWS lines. The replacement table substitutes a
// line's exact text before classification, which lets known-bad source lines
// be patched without touching the grammar.
type Classifier struct {
	replacements map[string]string
}

// NewClassifier returns a classifier using the given exact-line replacements.
// The map is copied.
func NewClassifier(replacements map[string]string) *Classifier {
	c := &Classifier{replacements: make(map[string]string, len(replacements))}
	for from, to := range replacements {
		c.replacements[from] = to
	}
	return c
}

// Classify classifies a line with no replacements applied.
func Classify(number int, raw string) Line {
	return (&Classifier{}).Classify(number, raw)
}

// Classify returns the kind of the line at the 1-based line number.
func (c *Classifier) Classify(number int, raw string) Line {
	if replacement, ok := c.replacements[raw]; ok {
		raw = replacement
	}
	line := Line{Number: number, Raw: raw}

	switch {
	case isNoise(number, raw):
		line.Kind = KindNoise
	case classifyRelease(&line):
	case classifySubsystem(&line):
	case classifyEntry(&line):
	case classifyContinuation(&line):
	default:
		line.Kind = KindUnrecognized
	}
	return line
}

func isNoise(number int, raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return true
	}
	if number == 1 && strings.HasPrefix(raw, bannerPrefix) {
		return true
	}
	if pipeSeparatorRe.MatchString(raw) {
		return true
	}
	return strings.HasPrefix(raw, sentinelPrefix)
}

// classifyRelease fills line and returns true when the raw text is a release
// header. A header whose date components are all concrete but do not form a
// calendar date is reported as unrecognized.
func classifyRelease(line *Line) bool {
	m := releaseHeaderRe.FindStringSubmatch(line.Raw)
	if m == nil {
		return false
	}
	day := m[releaseHeaderRe.SubexpIndex("day")]
	month := m[releaseHeaderRe.SubexpIndex("month")]
	year := m[releaseHeaderRe.SubexpIndex("year")]

	line.Kind = KindRelease
	line.Version = m[releaseHeaderRe.SubexpIndex("version")]

	if strings.Contains(day+month+year, "?") {
		return true
	}
	date, err := time.Parse(dateLayout, day+" "+month+" "+year)
	if err != nil {
		line.Kind = KindUnrecognized
		line.Version = ""
		line.Reason = "invalid release date"
		return true
	}
	line.Date = &date
	return true
}

func classifySubsystem(line *Line) bool {
	m := subsystemRe.FindStringSubmatch(line.Raw)
	if m == nil {
		m = indentSubsystemRe.FindStringSubmatch(line.Raw)
	}
	if m == nil {
		return false
	}
	line.Kind = KindSubsystem
	line.Name = strings.TrimSpace(m[1])
	return true
}

func classifyEntry(line *Line) bool {
	m := entryStartRe.FindStringSubmatch(line.Raw)
	if m == nil {
		return false
	}
	line.Kind = KindEntryStart
	line.Text = strings.TrimSpace(m[1])
	return true
}

func classifyContinuation(line *Line) bool {
	m := continuationRe.FindStringSubmatch(line.Raw)
	if m == nil {
		return false
	}
	line.Kind = KindContinuation
	line.Text = strings.TrimSpace(m[1])
	return true
}
