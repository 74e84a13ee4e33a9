package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	clierrors "github.com/phpwatch/commitlog/internal/errors"
	"github.com/phpwatch/commitlog/internal/news"
	"github.com/phpwatch/commitlog/internal/output"
	"github.com/phpwatch/commitlog/internal/progress"
	"github.com/phpwatch/commitlog/internal/watch"
)

var (
	newsFileFlag   string
	newsBranchFlag string
	newsFormatFlag string
	newsRawFlag    bool
	newsWatchFlag  bool
)

var newsCmd = &cobra.Command{
	Use:   "news <version>",
	Short: "Render the NEWS section of a release",
	Long: `Render the NEWS section of one release as markdown, JSON, YAML or
styled terminal output.

The NEWS file is read from --file, or fetched from the php-src branch that
carries the version (PHP-X.Y, or master). Entry credits such as "(cmb)" are
removed and entries are enhanced with links unless --raw is set.

The version "latest" selects the newest dated release in the file and "top"
selects the first section, released or not. Both read master unless --file
or --branch is given.`,
	Example: `  commitlog news 8.3.9
  commitlog news php-8.4.0RC1 --branch master --format terminal
  commitlog news 8.4.1 --file ~/src/php-src/NEWS --watch
  commitlog news 8.3.9 --format json --raw
  commitlog news latest --branch PHP-8.3`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return clierrors.MissingVersion()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := newsOptions{
			Version: args[0],
			File:    newsFileFlag,
			Branch:  newsBranchFlag,
			Format:  newsFormatFlag,
			Raw:     newsRawFlag,
			Plain:   plainFlag,
		}
		a := appFrom(cmd)
		if newsWatchFlag {
			return watchNews(cmd.Context(), a, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		}
		return runNews(cmd.Context(), a, opts, cmd.OutOrStdout())
	},
}

func init() {
	newsCmd.GroupID = GroupReleaseNotes
	rootCmd.AddCommand(newsCmd)

	newsCmd.Flags().StringVarP(&newsFileFlag, "file", "f", "", "Read NEWS from a local file instead of GitHub")
	newsCmd.Flags().StringVar(&newsBranchFlag, "branch", "", "Branch, tag or commit to fetch NEWS from (default: derived from version)")
	newsCmd.Flags().StringVar(&newsFormatFlag, "format", string(output.Markdown), "Output format: markdown | terminal | json | yaml")
	newsCmd.Flags().BoolVar(&newsRawFlag, "raw", false, "Do not add links or code quoting")
	newsCmd.Flags().BoolVarP(&newsWatchFlag, "watch", "w", false, "Re-render when --file changes")
}

// Version keywords resolved against the parsed document.
const (
	versionLatest = "latest"
	versionTop    = "top"
)

type newsOptions struct {
	Version string
	File    string
	Branch  string
	Format  string
	Raw     bool
	Plain   bool
}

func runNews(ctx context.Context, a *app, opts newsOptions, w io.Writer) error {
	format, err := output.ParseFormat(opts.Format, output.Markdown, output.Terminal, output.JSON, output.YAML)
	if err != nil {
		return clierrors.NewArgumentError(err.Error())
	}
	version := releaseVersion(opts.Version)

	doc, err := loadNews(ctx, a, opts, version)
	if err != nil {
		return err
	}

	parsed, err := news.ParseString(doc,
		news.WithReplacements(a.cfg.NewsLineMap()),
		news.WithLogger(a.logger.Named("news")))
	if err != nil {
		return clierrors.MalformedNews(err)
	}
	if version, err = resolveVersion(parsed, version); err != nil {
		return err
	}

	var e news.TextEnhancer
	if !opts.Raw {
		e = a.enhancer
	}
	release, err := news.NewFormatter(e).Release(parsed, version)
	if err != nil {
		return releaseError(err)
	}

	a.logger.Debug("rendering release",
		zap.String("version", release.Version),
		zap.Int("subsystems", len(release.Subsystems)),
		zap.Int("entries", release.EntryCount()))

	switch format {
	case output.Markdown:
		return news.RenderMarkdown(release, w)
	case output.Terminal:
		return news.FormatTerminal(release, w, news.FormatOptions{Plain: opts.Plain})
	default:
		return news.Encode(release, w, string(format))
	}
}

func loadNews(ctx context.Context, a *app, opts newsOptions, version string) (string, error) {
	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return "", clierrors.WrapWithMessage(err, clierrors.Input, "reading NEWS file",
				"Check the --file path")
		}
		return string(data), nil
	}

	ref := opts.Branch
	if ref == "" && (version == versionLatest || version == versionTop) {
		ref = "master"
	}
	if ref == "" {
		branch, err := news.Branch(version)
		if err != nil {
			return "", clierrors.InvalidBranchVersion(version)
		}
		ref = branch
	}

	client := a.githubClient()
	doc, err := progress.Run(ctx, a.display, "Fetching NEWS from "+ref, func(ctx context.Context) (string, error) {
		return client.NewsAt(ctx, ref)
	})
	if err != nil {
		return "", remoteError(err)
	}
	return doc, nil
}

// resolveVersion maps a version keyword to the release it names.
func resolveVersion(doc *news.News, version string) (string, error) {
	var r *news.Release
	switch version {
	case versionLatest:
		r = doc.LatestReleased()
	case versionTop:
		r = doc.Latest()
	default:
		return version, nil
	}
	if r == nil {
		return "", clierrors.ReleaseNotFound(version, doc.Versions())
	}
	return r.Version, nil
}

// watchNews renders once, then again after every change to the file, until
// ctx is cancelled. Render failures are reported and watching continues.
func watchNews(ctx context.Context, a *app, opts newsOptions, w, errW io.Writer) error {
	if opts.File == "" {
		return clierrors.NewArgumentErrorWithUsage("--watch requires --file",
			"commitlog news <version> --file NEWS --watch")
	}

	render := func(ctx context.Context) error {
		if err := runNews(ctx, a, opts, w); err != nil && ctx.Err() == nil {
			clierrors.Fprint(errW, err, opts.Plain)
		}
		return nil
	}
	_ = render(ctx)

	watcher, err := watch.New(opts.File, watch.WithLogger(a.logger.Named("watch")))
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Input, "watching NEWS file")
	}
	defer watcher.Close()

	output.PrintNotice(errW, fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", watcher.Path()))
	err = watcher.Run(ctx, func(ctx context.Context) error {
		output.PrintNotice(errW, "NEWS changed, rendering again")
		return render(ctx)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
