package config

import (
	"github.com/phpwatch/commitlog/internal/downloads"
	"github.com/phpwatch/commitlog/internal/enhancer"
	"github.com/phpwatch/commitlog/internal/github"
)

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# commitlog configuration
# Environment overrides use the COMMITLOG_ prefix, e.g. COMMITLOG_REPO_URL.

# Link targets
repo_url: https://github.com/php/php-src           # Issues, pulls, commits and advisories
bug_tracker_url: https://bugs.php.net/bug.php?id=  # Legacy #NNNNN bug numbers
cve_url: https://nvd.nist.gov/vuln/detail/         # CVE identifiers
advisory_url: ""                                   # GHSA identifiers (empty = repo advisories)
issue_range_min: 10000                             # Bare #NNNNN in this range link to GH issues
issue_range_max: 49999

# Remote sources
api_url: https://api.github.com/repos/php/php-src
raw_content_url: https://raw.githubusercontent.com/php/php-src
downloads_url: https://downloads.php.net/~windows
github_token: ""                                   # Falls back to GITHUB_TOKEN
timeout: 30s                                       # Per request timeout
max_pages: 50                                      # Page limit for API listings (1-50)

# Display name fixes for commit authors
author_replacements: []
#  - from: "Christoph M. Becker"
#    to: "cmb69"

# Exact NEWS line patches applied before parsing
news_line_replacements: []

log_level: info                                    # debug | info | warn | error
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"repo_url":               enhancer.DefaultRepoURL,
		"bug_tracker_url":        enhancer.DefaultBugTrackerURL,
		"cve_url":                enhancer.DefaultCVEURL,
		"advisory_url":           "",
		"issue_range_min":        enhancer.DefaultIssueRangeMin,
		"issue_range_max":        enhancer.DefaultIssueRangeMax,
		"api_url":                github.DefaultAPIURL,
		"raw_content_url":        github.DefaultRawContentURL,
		"downloads_url":          downloads.DefaultBaseURL,
		"github_token":           "",
		"timeout":                github.DefaultTimeout.String(),
		"max_pages":              github.DefaultMaxPages,
		"author_replacements":    []interface{}{},
		"news_line_replacements": []interface{}{},
		"log_level":              "info",
	}
}
