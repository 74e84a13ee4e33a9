package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phpwatch/commitlog/internal/commits"
	clierrors "github.com/phpwatch/commitlog/internal/errors"
	"github.com/phpwatch/commitlog/internal/git"
	"github.com/phpwatch/commitlog/internal/output"
	"github.com/phpwatch/commitlog/internal/progress"
)

var (
	commitsRepoFlag   string
	commitsRemoteFlag bool
	commitsFetchFlag  bool
	commitsGroupFlag  bool
	commitsFormatFlag string
	commitsDaysFlag   int
)

var commitsCmd = &cobra.Command{
	Use:   "commits [<from> <to>]",
	Short: "List the commits between two revisions as release notes",
	Long: `List the commits reachable from <to> but not from <from>, oldest first.

Revisions may be release versions (8.3.8 resolves to tag php-8.3.8), tags,
branches or hashes. Merge commits, CI skips, branch bumps and NEWS updates are
left out. Subjects are enhanced with links, ending in a link to the pull
request or commit.

Commits come from a local clone (--repo, default the working directory) or
from the GitHub compare API (--remote). With --remote --days N the revisions
are omitted and the default branch's commits of the last N days are listed.`,
	Example: `  commitlog commits 8.3.8 8.3.9
  commitlog commits php-8.3.8 PHP-8.3 --repo ~/src/php-src --fetch
  commitlog commits 8.3.8 8.3.9 --remote --group-by-author
  commitlog commits --remote --days 7`,
	Args: func(cmd *cobra.Command, args []string) error {
		if commitsDaysFlag > 0 {
			if len(args) != 0 {
				return clierrors.NewArgumentErrorWithUsage(
					"--days takes no revisions", "commitlog commits --remote --days <n>")
			}
			return nil
		}
		if len(args) != 2 {
			return clierrors.NewArgumentErrorWithUsage(
				fmt.Sprintf("expected 2 revisions, got %d", len(args)),
				"commitlog commits <from> <to>")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := commitsOptions{
			Repo:    commitsRepoFlag,
			Remote:  commitsRemoteFlag,
			Fetch:   commitsFetchFlag,
			Grouped: commitsGroupFlag,
			Format:  commitsFormatFlag,
			Days:    commitsDaysFlag,
		}
		if len(args) == 2 {
			opts.From, opts.To = args[0], args[1]
		}
		return runCommits(cmd.Context(), appFrom(cmd), opts, cmd.OutOrStdout())
	},
}

func init() {
	commitsCmd.GroupID = GroupReleaseNotes
	rootCmd.AddCommand(commitsCmd)

	commitsCmd.Flags().StringVar(&commitsRepoFlag, "repo", ".", "Path inside a local php-src clone")
	commitsCmd.Flags().BoolVar(&commitsRemoteFlag, "remote", false, "Read commits from the GitHub compare API")
	commitsCmd.Flags().BoolVar(&commitsFetchFlag, "fetch", false, "Fetch tags from the clone's remotes first")
	commitsCmd.Flags().BoolVarP(&commitsGroupFlag, "group-by-author", "g", false, "Group commits under one heading per author")
	commitsCmd.Flags().StringVar(&commitsFormatFlag, "format", string(output.Markdown), "Output format: markdown | json | yaml")
	commitsCmd.Flags().IntVar(&commitsDaysFlag, "days", 0, "With --remote, list the default branch's commits of the last N days")
	commitsCmd.MarkFlagsMutuallyExclusive("remote", "fetch")
}

type commitsOptions struct {
	From    string
	To      string
	Repo    string
	Remote  bool
	Fetch   bool
	Grouped bool
	Format  string
	Days    int
}

func runCommits(ctx context.Context, a *app, opts commitsOptions, w io.Writer) error {
	format, err := output.ParseFormat(opts.Format, output.Markdown, output.JSON, output.YAML)
	if err != nil {
		return clierrors.NewArgumentError(err.Error())
	}
	switch {
	case opts.Days < 0:
		return clierrors.NewArgumentError(fmt.Sprintf("--days must not be negative, got %d", opts.Days))
	case opts.Days > 0 && !opts.Remote:
		return clierrors.NewArgumentError("--days requires --remote")
	}

	list, err := loadCommits(ctx, a, opts)
	if err != nil {
		return err
	}

	log := commits.NewFormatter(a.enhancer,
		commits.WithAuthorReplacements(a.cfg.AuthorMap()),
		commits.WithLogger(a.logger.Named("commits")),
	).Format(list)

	a.logger.Debug("formatted commits",
		zap.Int("entries", len(log.Entries)),
		zap.Int("skipped", log.Skipped))

	switch {
	case format == output.Markdown && opts.Grouped:
		return log.WriteGroupedMarkdown(w)
	case format == output.Markdown:
		return log.WriteMarkdown(w)
	case opts.Grouped:
		return output.Encode(w, log.ByAuthor(), format)
	default:
		return output.Encode(w, log, format)
	}
}

func loadCommits(ctx context.Context, a *app, opts commitsOptions) ([]commits.Commit, error) {
	if opts.Days > 0 {
		return loadRecentCommits(ctx, a, opts.Days)
	}

	from, to := tagRef(opts.From), tagRef(opts.To)
	message := fmt.Sprintf("Reading commits %s..%s", from, to)

	if opts.Remote {
		client := a.githubClient()
		list, err := progress.Run(ctx, a.display, message, func(ctx context.Context) ([]commits.Commit, error) {
			return client.Compare(ctx, from, to)
		})
		if err != nil {
			return nil, remoteError(err)
		}
		return list, nil
	}

	repo, err := a.openRepo(ctx, opts.Repo, opts.Fetch)
	if err != nil {
		return nil, err
	}
	list, err := progress.Run(ctx, a.display, message, func(ctx context.Context) ([]commits.Commit, error) {
		return repo.CommitsBetween(ctx, from, to)
	})
	if errors.Is(err, git.ErrRevisionNotFound) {
		return nil, clierrors.RevisionNotFound(from+".."+to, err)
	}
	if err != nil {
		return nil, err
	}
	return list, nil
}

// loadRecentCommits lists the default branch's commits of the last days days,
// oldest first.
func loadRecentCommits(ctx context.Context, a *app, days int) ([]commits.Commit, error) {
	until := time.Now().UTC()
	since := until.AddDate(0, 0, -days)

	client := a.githubClient()
	message := fmt.Sprintf("Reading commits of the last %d days", days)
	list, err := progress.Run(ctx, a.display, message, func(ctx context.Context) ([]commits.Commit, error) {
		return client.CommitsSince(ctx, since, until)
	})
	if err != nil {
		return nil, remoteError(err)
	}
	slices.Reverse(list)
	return list, nil
}
