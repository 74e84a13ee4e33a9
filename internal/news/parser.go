package news

import (
	"strings"

	"go.uber.org/zap"
)

// state is the parser position within the document structure.
type state int

const (
	stateAwaitingRelease state = iota
	stateInRelease
	stateInSubsystem
	stateInEntry
)

func (s state) String() string {
	switch s {
	case stateInRelease:
		return "in release"
	case stateInSubsystem:
		return "in subsystem"
	case stateInEntry:
		return "in entry"
	default:
		return "awaiting release"
	}
}

// Option configures a parse.
type Option func(*parser)

// WithReplacements sets exact-line replacements applied before classification.
func WithReplacements(replacements map[string]string) Option {
	return func(p *parser) {
		p.classifier = NewClassifier(replacements)
	}
}

// WithLogger sets the logger used for parse diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(p *parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// cursor is owned by a single parse call.
type cursor struct {
	state     state
	release   *Release
	subsystem *Subsystem
	entry     int
}

type parser struct {
	classifier *Classifier
	logger     *zap.Logger
	doc        *News
	cur        cursor
}

// transition handles one classified line and moves the cursor, or returns a
// *LineError describing why the line cannot appear in the current state.
type transition func(p *parser, line Line) error

var transitions = map[Kind]transition{
	KindRelease:      (*parser).openRelease,
	KindSubsystem:    (*parser).openSubsystem,
	KindEntryStart:   (*parser).startEntry,
	KindContinuation: (*parser).continueEntry,
}

// SplitLines splits a document on "\r\n", "\n" or a lone "\r".
func SplitLines(doc string) []string {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	doc = strings.ReplaceAll(doc, "\r", "\n")
	return strings.Split(doc, "\n")
}

// ParseString splits doc into lines and parses them.
func ParseString(doc string, opts ...Option) (*News, error) {
	return Parse(SplitLines(doc), opts...)
}

// Parse builds the release tree from the document lines. The first malformed
// or out-of-sequence line aborts the parse; no partial result is returned.
func Parse(lines []string, opts ...Option) (*News, error) {
	p := &parser{
		classifier: &Classifier{},
		logger:     zap.NewNop(),
		doc:        &News{index: make(map[string]int)},
		cur:        cursor{state: stateAwaitingRelease, entry: -1},
	}
	for _, opt := range opts {
		opt(p)
	}

	for i, raw := range lines {
		line := p.classifier.Classify(i+1, raw)

		switch line.Kind {
		case KindNoise:
			continue
		case KindUnrecognized:
			reason := line.Reason
			if reason == "" {
				reason = "unknown line format"
			}
			return nil, &LineError{Err: ErrMalformedLine, Line: line.Number, Content: line.Raw, Reason: reason}
		}

		if err := transitions[line.Kind](p, line); err != nil {
			return nil, err
		}
	}

	p.logger.Debug("parsed news document",
		zap.Int("lines", len(lines)),
		zap.Int("releases", len(p.doc.Releases)))
	return p.doc, nil
}

func (p *parser) openRelease(line Line) error {
	release := &Release{Version: line.Version, Date: line.Date}

	if idx, ok := p.doc.index[release.Version]; ok {
		p.logger.Warn("duplicate release header replaces earlier section",
			zap.String("version", release.Version),
			zap.Int("line", line.Number))
		p.doc.Releases[idx] = release
	} else {
		p.doc.index[release.Version] = len(p.doc.Releases)
		p.doc.Releases = append(p.doc.Releases, release)
	}

	p.cur = cursor{state: stateInRelease, release: release, entry: -1}
	return nil
}

func (p *parser) openSubsystem(line Line) error {
	if p.cur.state == stateAwaitingRelease {
		return outOfSequence(line, "subsystem header before any release header")
	}

	s := p.cur.release.Subsystem(line.Name)
	if s == nil {
		s = &Subsystem{Name: line.Name}
		p.cur.release.Subsystems = append(p.cur.release.Subsystems, s)
	}

	p.cur.subsystem = s
	p.cur.entry = -1
	p.cur.state = stateInSubsystem
	return nil
}

func (p *parser) startEntry(line Line) error {
	switch p.cur.state {
	case stateAwaitingRelease:
		return outOfSequence(line, "entry before any release header")
	case stateInRelease:
		return outOfSequence(line, "entry before any subsystem header")
	}

	s := p.cur.subsystem
	s.Entries = append(s.Entries, Entry{Line: line.Number, Text: line.Text})
	p.cur.entry = len(s.Entries) - 1
	p.cur.state = stateInEntry
	return nil
}

func (p *parser) continueEntry(line Line) error {
	switch p.cur.state {
	case stateAwaitingRelease:
		return outOfSequence(line, "continuation before any release header")
	case stateInRelease:
		return outOfSequence(line, "continuation before any subsystem header")
	case stateInSubsystem:
		return outOfSequence(line, "continuation before any entry")
	}

	entry := &p.cur.subsystem.Entries[p.cur.entry]
	entry.Text = strings.TrimSpace(entry.Text + " " + line.Text)
	return nil
}

func outOfSequence(line Line, reason string) error {
	return &LineError{Err: ErrOutOfSequence, Line: line.Number, Content: line.Raw, Reason: reason}
}
