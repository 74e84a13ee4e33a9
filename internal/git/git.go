// Package git reads release tags and commit ranges from a local clone using
// go-git, so no git binary is required.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/phpwatch/commitlog/internal/commits"
	"github.com/phpwatch/commitlog/internal/news"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// DefaultFetchTimeout bounds FetchTags when the caller sets no deadline.
const DefaultFetchTimeout = 60 * time.Second

// ErrRevisionNotFound is returned when a tag, branch or hash cannot be resolved.
var ErrRevisionNotFound = errors.New("revision not found")

// Repository is an opened local clone.
type Repository struct {
	repo *git.Repository
	path string
}

// Open opens the repository containing path, searching parent directories
// for the .git directory. An empty path means the working directory.
func Open(path string) (*Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return &Repository{repo: repo, path: path}, nil
}

// ReleaseTags returns the release tags of the repository, newest first.
func (r *Repository) ReleaseTags() ([]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if news.IsReleaseTag(name) {
			tags = append(tags, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	news.SortTags(tags)
	logDebug("[git] ReleaseTags: found %d release tags", len(tags))
	return tags, nil
}

// CommitsBetween returns the commits reachable from to but not from from,
// oldest first, the same order a compare view lists them in.
func (r *Repository) CommitsBetween(ctx context.Context, from, to string) ([]commits.Commit, error) {
	base, err := r.resolve(from)
	if err != nil {
		return nil, err
	}
	head, err := r.resolve(to)
	if err != nil {
		return nil, err
	}

	seen, err := r.ancestors(ctx, base)
	if err != nil {
		return nil, err
	}

	var out []commits.Commit
	iter := object.NewCommitPreorderIter(head, seen, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		out = append(out, commits.Split(c.Message, c.Author.Name, c.Hash.String()))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s..%s: %w", from, to, err)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	logDebug("[git] CommitsBetween %s..%s: %d commits", from, to, len(out))
	return out, nil
}

// ancestors returns the set of commits reachable from c, including c.
func (r *Repository) ancestors(ctx context.Context, c *object.Commit) (map[plumbing.Hash]bool, error) {
	seen := make(map[plumbing.Hash]bool)
	err := object.NewCommitPreorderIter(c, nil, nil).ForEach(func(a *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		seen[a.Hash] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking ancestors of %s: %w", c.Hash, err)
	}
	return seen, nil
}

// resolve turns a tag, branch or hash into a commit. Annotated tags are
// peeled to their target commit.
func (r *Repository) resolve(rev string) (*object.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRevisionNotFound, rev)
	}

	if tag, err := r.repo.TagObject(*hash); err == nil {
		c, err := tag.Commit()
		if err != nil {
			return nil, fmt.Errorf("peeling tag %s: %w", rev, err)
		}
		return c, nil
	}

	c, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("reading commit %s: %w", rev, err)
	}
	return c, nil
}

// FetchTags fetches tags from every configured remote. Remotes that fail are
// reported in the returned error after the others have been tried.
func (r *Repository) FetchTags(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultFetchTimeout)
		defer cancel()
	}

	remotes, err := r.repo.Remotes()
	if err != nil {
		return fmt.Errorf("listing remotes: %w", err)
	}

	var errs []error
	for _, remote := range remotes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fetchRemoteTags(ctx, r.repo, remote); err != nil {
			errs = append(errs, fmt.Errorf("fetching from %s: %w", remote.Config().Name, err))
		}
	}
	return errors.Join(errs...)
}

func fetchRemoteTags(ctx context.Context, repo *git.Repository, remote *git.Remote) error {
	remoteConfig := remote.Config()
	if len(remoteConfig.URLs) == 0 {
		return nil
	}

	url := remoteConfig.URLs[0]
	if isSSHURL(url) && !isSSHAgentAvailable() {
		logDebug("[git] skipping fetch from remote '%s': SSH URL without SSH agent available", remoteConfig.Name)
		return nil
	}

	logDebug("[git] fetching tags from remote '%s' (%s)", remoteConfig.Name, url)
	err := repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remoteConfig.Name,
		Auth:       getAuthForURL(url),
		Tags:       git.AllTags,
		RefSpecs:   []config.RefSpec{"+refs/tags/*:refs/tags/*"},
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}

// getAuthForURL returns the appropriate authentication method for a remote URL.
// SSH URLs use SSH agent auth, HTTPS URLs use environment credentials.
func getAuthForURL(url string) transport.AuthMethod {
	if isSSHURL(url) {
		auth, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			logDebug("[git] SSH agent auth failed: %v", err)
			return nil
		}
		return auth
	}

	username := os.Getenv("GIT_USERNAME")
	password := os.Getenv("GIT_PASSWORD")
	if username == "" {
		username = os.Getenv("GITHUB_TOKEN")
		password = ""
	}
	if username == "" {
		return nil
	}
	return &http.BasicAuth{Username: username, Password: password}
}

// isSSHURL detects git@ (SCP-style), ssh:// and git+ssh:// remotes.
func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "git@") ||
		strings.HasPrefix(url, "ssh://") ||
		strings.HasPrefix(url, "git+ssh://")
}

func isSSHAgentAvailable() bool {
	return strings.TrimSpace(os.Getenv("SSH_AUTH_SOCK")) != ""
}
