package enhancer

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

// Enhancer applies the rewrite stages with a fixed set of link targets.
// It holds no mutable state and is safe for concurrent use.
type Enhancer struct {
	links Links

	bugRules      []Rule
	refRules      []Rule
	prTrailer     Rule
	closesRe      *regexp2.Regexp
	pullTrailerRe *regexp2.Regexp
	advisoryRules []Rule
}

var defaultEnhancer = New(DefaultLinks())

// Default returns the enhancer configured for php-src.
func Default() *Enhancer {
	return defaultEnhancer
}

// Enhance rewrites text with the default enhancer.
func Enhance(text string) string {
	return defaultEnhancer.Enhance(text)
}

// EnhanceCommit rewrites a commit subject with the default enhancer.
func EnhanceCommit(subject, shortHash string) string {
	return defaultEnhancer.EnhanceCommit(subject, shortHash)
}

// New returns an enhancer linking to the given targets. Zero fields fall back
// to DefaultLinks.
func New(links Links) *Enhancer {
	links = links.withDefaults()
	e := &Enhancer{links: links}

	e.bugRules = []Rule{
		NewRule("bug",
			`(?<![\[\w/=&-])#([5-9]\d{4})(?![\d\]])`,
			"[#$1]("+links.BugTrackerURL+"$1)"),
	}

	issue := NewRule("issue-number",
		`(?<![\[\w/=&-])#(\d{5})(?![\d\]])(?!\)$)`,
		"[GH-$1]("+links.issueURL("$1")+")")
	issue.Filter = func(groups []string) bool {
		n, err := strconv.Atoi(groups[1])
		return err == nil && n >= links.IssueRangeMin && n <= links.IssueRangeMax
	}

	e.refRules = []Rule{
		NewRule("gh-issue",
			`(?<![\[\w/=-])GH-(\d{3,6})(?![\d\]])`,
			"[GH-$1]("+links.issueURL("$1")+")"),
		issue,
		NewRule("commit-hash",
			`(?<![\[\w/=#.-])(?=\d*[a-fA-F])([0-9a-fA-F]{8})[0-9a-fA-F]{0,28}(?![\w\]-])`,
			"[$1]("+links.commitURL("$0")+")"),
	}

	e.prTrailer = NewRule("pr-trailer",
		`\s*\(#(\d{3,6})\)$`,
		" in [GH-$1]("+links.pullURL("$1")+")")
	e.closesRe = regexp2.MustCompile(`\bCloses \[?GH-(\d{3,6})\b`, regexp2.None)
	e.pullTrailerRe = regexp2.MustCompile(
		` in \[GH-\d+\]\(`+regexp2.Escape(links.RepoURL)+`/pull/\d+\)$`, regexp2.None)

	e.advisoryRules = []Rule{
		NewRule("cve",
			`(?<![\[\w/-])CVE-20\d{2}-\d{4,7}(?![\d\]])`,
			"[$0]("+links.CVEURL+"$0)"),
		NewRule("ghsa",
			`(?<![\[\w/-])GHSA(?:-[a-z\d]{4}){3}(?![\w\]-])`,
			"[$0]("+links.AdvisoryURL+"$0)"),
	}
	return e
}

// Links returns the link targets in use.
func (e *Enhancer) Links() Links {
	return e.links
}

// Enhance rewrites a changelog entry.
func (e *Enhancer) Enhance(text string) string {
	return e.enhance(text, "")
}

// EnhanceCommit rewrites a commit subject. When the subject carries no pull
// request reference, a link to shortHash is appended.
func (e *Enhancer) EnhanceCommit(subject, shortHash string) string {
	return e.enhance(subject, shortHash)
}

func (e *Enhancer) enhance(text, shortHash string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	text = applyAll(e.bugRules, text)
	text = applyAll(e.refRules, text)
	text = e.appendReference(text, shortHash)
	text = applyAll(codeRules, text)
	return applyAll(e.advisoryRules, text)
}

// appendReference links the pull request or commit the text came from. Only
// the first applicable form is used, and nothing is added when the text
// already ends with a pull request link.
func (e *Enhancer) appendReference(text, shortHash string) string {
	if out, ok := e.prTrailer.apply(text); ok {
		return out
	}
	if ok, _ := e.pullTrailerRe.MatchString(text); ok {
		return text
	}

	if m, _ := e.closesRe.FindStringMatch(text); m != nil {
		n := m.GroupByNumber(1).String()
		return appendLink(text, "GH-"+n, e.links.pullURL(n))
	}

	if shortHash != "" {
		return appendLink(text, shortHash, e.links.commitURL(shortHash))
	}
	return text
}

func appendLink(text, label, target string) string {
	if strings.Contains(text, "("+target+")") {
		return text
	}
	return text + " in [" + label + "](" + target + ")"
}

func applyAll(rules []Rule, text string) string {
	for _, r := range rules {
		text = r.Apply(text)
	}
	return text
}
