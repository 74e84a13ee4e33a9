package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	clierrors "github.com/phpwatch/commitlog/internal/errors"
	"github.com/phpwatch/commitlog/internal/output"
	"github.com/phpwatch/commitlog/internal/progress"
)

var (
	tagsRepoFlag   string
	tagsRemoteFlag bool
	tagsFetchFlag  bool
	tagsLimitFlag  int
	tagsFormatFlag string
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List php-src release tags, newest first",
	Long: `List release tags such as php-8.3.9 or php-8.4.0RC1, newest first.
Pre-releases sort below the final release of the same version.`,
	Example: `  commitlog tags --limit 10
  commitlog tags --remote --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTags(cmd.Context(), appFrom(cmd), tagsOptions{
			Repo:   tagsRepoFlag,
			Remote: tagsRemoteFlag,
			Fetch:  tagsFetchFlag,
			Limit:  tagsLimitFlag,
			Format: tagsFormatFlag,
		}, cmd.OutOrStdout())
	},
}

func init() {
	tagsCmd.GroupID = GroupSources
	rootCmd.AddCommand(tagsCmd)

	tagsCmd.Flags().StringVar(&tagsRepoFlag, "repo", ".", "Path inside a local php-src clone")
	tagsCmd.Flags().BoolVar(&tagsRemoteFlag, "remote", false, "List tags through the GitHub API")
	tagsCmd.Flags().BoolVar(&tagsFetchFlag, "fetch", false, "Fetch tags from the clone's remotes first")
	tagsCmd.Flags().IntVarP(&tagsLimitFlag, "limit", "n", 0, "Show at most this many tags (0 = all)")
	tagsCmd.Flags().StringVar(&tagsFormatFlag, "format", string(output.Text), "Output format: text | json | yaml")
	tagsCmd.MarkFlagsMutuallyExclusive("remote", "fetch")
}

type tagsOptions struct {
	Repo   string
	Remote bool
	Fetch  bool
	Limit  int
	Format string
}

func runTags(ctx context.Context, a *app, opts tagsOptions, w io.Writer) error {
	format, err := output.ParseFormat(opts.Format, output.Text, output.JSON, output.YAML)
	if err != nil {
		return clierrors.NewArgumentError(err.Error())
	}
	if opts.Limit < 0 {
		return clierrors.NewArgumentError("--limit must not be negative")
	}

	var tags []string
	if opts.Remote {
		client := a.githubClient()
		tags, err = progress.Run(ctx, a.display, "Listing tags", client.ReleaseTags)
		if err != nil {
			return remoteError(err)
		}
	} else {
		repo, err := a.openRepo(ctx, opts.Repo, opts.Fetch)
		if err != nil {
			return err
		}
		if tags, err = repo.ReleaseTags(); err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Input, "reading tags")
		}
	}

	if opts.Limit > 0 && len(tags) > opts.Limit {
		tags = tags[:opts.Limit]
	}
	if tags == nil {
		tags = []string{}
	}

	if format != output.Text {
		return output.Encode(w, tags, format)
	}
	for _, t := range tags {
		if _, err := fmt.Fprintln(w, t); err != nil {
			return err
		}
	}
	return nil
}
