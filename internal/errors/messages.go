package errors

import (
	"fmt"
	"strings"
)

// Common error messages for the commitlog CLI.
// These templates ensure consistent, actionable error messages.

// MissingVersion creates an error for a missing version argument.
func MissingVersion() *CLIError {
	return NewArgumentErrorWithUsage(
		"version is required",
		"commitlog news <version>",
		"Pass a release version such as 8.3.9 or 8.4.0RC1",
		"Example: commitlog news 8.3.9 --branch PHP-8.3",
	)
}

// InvalidBranchVersion creates an error for a version that names no branch.
func InvalidBranchVersion(provided string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("cannot derive a branch from %q", provided),
		"commitlog news <version> [--branch PHP-X.Y|master]",
		"Use a version like 8.3, 8.3.12 or 80312, or 'master'",
		"Or pass the branch explicitly with --branch",
	)
}

// ReleaseNotFound creates an error for a version absent from the NEWS file.
func ReleaseNotFound(version string, available []string) *CLIError {
	remediation := []string{"Check that the NEWS file comes from the right branch (--branch)"}
	if len(available) > 0 {
		shown := available
		if len(shown) > 5 {
			shown = shown[:5]
		}
		remediation = append(remediation, "Versions in this file include: "+strings.Join(shown, ", "))
	}
	return NewInputError(fmt.Sprintf("version %s not found in NEWS", version), remediation...)
}

// MalformedNews creates an error for a NEWS document the parser rejected.
func MalformedNews(cause error) *CLIError {
	return &CLIError{
		Category: Input,
		Message:  fmt.Sprintf("NEWS could not be parsed: %v", cause),
		Remediation: []string{
			"Fix the line in the NEWS file, or",
			"Add an exact-line fix under news_line_replacements in .commitlog/config.yml",
		},
		Err: cause,
	}
}

// RepositoryNotFound creates an error for a path that holds no git repository.
func RepositoryNotFound(path string, cause error) *CLIError {
	return &CLIError{
		Category: Input,
		Message:  fmt.Sprintf("no git repository at %s", path),
		Remediation: []string{
			"Point --repo at a php-src checkout",
			"Or use --remote to read from the GitHub API",
		},
		Err: cause,
	}
}

// RevisionNotFound creates an error for a tag or commit that cannot be resolved.
func RevisionNotFound(rev string, cause error) *CLIError {
	return &CLIError{
		Category: Argument,
		Message:  fmt.Sprintf("revision %s not found", rev),
		Remediation: []string{
			"Run 'commitlog tags' to list release tags",
			"Fetch tags first: git fetch --tags",
		},
		Err: cause,
	}
}

// RemoteUnavailable creates an error for a failed request to a remote host.
func RemoteUnavailable(cause error) *CLIError {
	return &CLIError{
		Category: Remote,
		Message:  fmt.Sprintf("remote request failed: %v", cause),
		Remediation: []string{
			"Check network access to github.com",
			"Set github_token (or GITHUB_TOKEN) if you hit the API rate limit",
		},
		Err: cause,
	}
}

// InvalidConfig creates an error for configuration that failed to load.
func InvalidConfig(cause error) *CLIError {
	return &CLIError{
		Category: Configuration,
		Message:  fmt.Sprintf("invalid configuration: %v", cause),
		Remediation: []string{
			"Run 'commitlog config validate' to see the offending key",
			"Run 'commitlog config init' to write a commented template",
		},
		Err: cause,
	}
}
