package news

import "time"

// News is the parsed form of a NEWS document. Releases appear in document
// order (newest first for php-src). Versions are unique keys: a version header
// repeated later in the document replaces the earlier release in place.
type News struct {
	Releases []*Release `json:"releases" yaml:"releases"`

	index map[string]int
}

// Release is one version section of the document.
// Date is nil when the header used placeholder characters (unreleased).
type Release struct {
	Version    string       `json:"version" yaml:"version"`
	Date       *time.Time   `json:"date,omitempty" yaml:"date,omitempty"`
	Subsystems []*Subsystem `json:"subsystems" yaml:"subsystems"`
}

// Subsystem groups the entries listed under one "- Name:" header.
type Subsystem struct {
	Name    string  `json:"name" yaml:"name"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Entry is one logical change. Line is the 1-based source line that started
// it; continuation lines are folded into Text with single spaces.
type Entry struct {
	Line int    `json:"line" yaml:"line"`
	Text string `json:"text" yaml:"text"`
}

// IsUnreleased reports whether the release header carried a placeholder date.
func (r *Release) IsUnreleased() bool {
	return r.Date == nil
}

// Subsystem returns the named subsystem or nil.
func (r *Release) Subsystem(name string) *Subsystem {
	for _, s := range r.Subsystems {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// EntryCount returns the number of entries across all subsystems.
func (r *Release) EntryCount() int {
	n := 0
	for _, s := range r.Subsystems {
		n += len(s.Entries)
	}
	return n
}

// IsEmpty returns true if no subsystem holds an entry.
func (r *Release) IsEmpty() bool {
	return r.EntryCount() == 0
}

// Texts returns the entry texts of a subsystem in source order.
func (s *Subsystem) Texts() []string {
	texts := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		texts[i] = e.Text
	}
	return texts
}

// clone returns a deep copy so callers never alias parser-owned entries.
func (r *Release) clone() *Release {
	c := &Release{Version: r.Version}
	if r.Date != nil {
		d := *r.Date
		c.Date = &d
	}
	c.Subsystems = make([]*Subsystem, len(r.Subsystems))
	for i, s := range r.Subsystems {
		entries := make([]Entry, len(s.Entries))
		copy(entries, s.Entries)
		c.Subsystems[i] = &Subsystem{Name: s.Name, Entries: entries}
	}
	return c
}
