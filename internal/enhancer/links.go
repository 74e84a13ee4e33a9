package enhancer

import "strings"

// Links holds the link targets used by the rewrites.
type Links struct {
	// RepoURL is the repository web root. Issues, pulls, commits and
	// repository advisories are resolved below it.
	RepoURL string `koanf:"repo_url"`
	// BugTrackerURL is prefixed to legacy bug numbers.
	BugTrackerURL string `koanf:"bug_tracker_url"`
	// CVEURL is prefixed to CVE identifiers.
	CVEURL string `koanf:"cve_url"`
	// AdvisoryURL is prefixed to GHSA identifiers. Empty means the
	// repository advisory page under RepoURL.
	AdvisoryURL string `koanf:"advisory_url"`
	// IssueRangeMin and IssueRangeMax bound which bare five digit numbers
	// are treated as repository issues.
	IssueRangeMin int `koanf:"issue_range_min"`
	IssueRangeMax int `koanf:"issue_range_max"`
}

const (
	DefaultRepoURL       = "https://github.com/php/php-src"
	DefaultBugTrackerURL = "https://bugs.php.net/bug.php?id="
	DefaultCVEURL        = "https://nvd.nist.gov/vuln/detail/"
	DefaultIssueRangeMin = 10000
	DefaultIssueRangeMax = 49999
)

// DefaultLinks returns the php-src link targets.
func DefaultLinks() Links {
	return Links{
		RepoURL:       DefaultRepoURL,
		BugTrackerURL: DefaultBugTrackerURL,
		CVEURL:        DefaultCVEURL,
		IssueRangeMin: DefaultIssueRangeMin,
		IssueRangeMax: DefaultIssueRangeMax,
	}
}

// withDefaults fills zero fields from DefaultLinks.
func (l Links) withDefaults() Links {
	d := DefaultLinks()
	if l.RepoURL == "" {
		l.RepoURL = d.RepoURL
	}
	l.RepoURL = strings.TrimRight(l.RepoURL, "/")
	if l.BugTrackerURL == "" {
		l.BugTrackerURL = d.BugTrackerURL
	}
	if l.CVEURL == "" {
		l.CVEURL = d.CVEURL
	}
	if l.AdvisoryURL == "" {
		l.AdvisoryURL = l.RepoURL + "/security/advisories/"
	}
	if l.IssueRangeMin == 0 && l.IssueRangeMax == 0 {
		l.IssueRangeMin = d.IssueRangeMin
		l.IssueRangeMax = d.IssueRangeMax
	}
	return l
}

func (l Links) issueURL(n string) string  { return l.RepoURL + "/issues/" + n }
func (l Links) pullURL(n string) string   { return l.RepoURL + "/pull/" + n }
func (l Links) commitURL(h string) string { return l.RepoURL + "/commit/" + h }
