package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/phpwatch/commitlog/internal/downloads"
	clierrors "github.com/phpwatch/commitlog/internal/errors"
	"github.com/phpwatch/commitlog/internal/git"
	"github.com/phpwatch/commitlog/internal/github"
	"github.com/phpwatch/commitlog/internal/news"
	"github.com/phpwatch/commitlog/internal/progress"
)

func (a *app) githubClient() *github.Client {
	opts := append(a.cfg.GitHubOptions(), github.WithLogger(a.logger.Named("github")))
	return github.New(opts...)
}

func (a *app) downloadFetcher() *downloads.Fetcher {
	opts := append(a.cfg.DownloadOptions(), downloads.WithLogger(a.logger.Named("downloads")))
	return downloads.New(opts...)
}

// openRepo opens a local clone and optionally fetches its tags first.
func (a *app) openRepo(ctx context.Context, path string, fetch bool) (*git.Repository, error) {
	repo, err := git.Open(path)
	if err != nil {
		return nil, clierrors.RepositoryNotFound(path, err)
	}
	if fetch {
		_, err := progress.Run(ctx, a.display, "Fetching tags", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, repo.FetchTags(ctx)
		})
		if err != nil {
			return nil, remoteError(err)
		}
	}
	return repo, nil
}

// tagRef accepts "php-8.3.9", "8.3.9" or any other revision and returns the
// git revision to resolve.
func tagRef(arg string) string {
	arg = strings.TrimSpace(arg)
	if news.IsReleaseTag(arg) {
		return arg
	}
	if news.IsReleaseTag("php-" + arg) {
		return "php-" + arg
	}
	return arg
}

// releaseVersion accepts "8.3.9" or "php-8.3.9" and returns "8.3.9".
func releaseVersion(arg string) string {
	arg = strings.TrimSpace(arg)
	if v, ok := news.TagVersion(arg); ok {
		return v
	}
	return arg
}

// remoteError classifies a failed remote call. Cancellation is passed
// through unchanged.
func remoteError(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	return clierrors.RemoteUnavailable(err)
}

// releaseError maps News.Release failures to CLI errors.
func releaseError(err error) error {
	var re *news.ReleaseError
	if !errors.As(err, &re) {
		return err
	}
	if errors.Is(err, news.ErrReleaseNotFound) {
		return clierrors.ReleaseNotFound(re.Version, re.AvailableVersions)
	}
	return clierrors.WrapWithMessage(err, clierrors.Input, "release is empty",
		"The NEWS section exists but lists no entries under any subsystem")
}
