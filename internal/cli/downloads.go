package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/phpwatch/commitlog/internal/downloads"
	clierrors "github.com/phpwatch/commitlog/internal/errors"
	"github.com/phpwatch/commitlog/internal/markup"
	"github.com/phpwatch/commitlog/internal/output"
	"github.com/phpwatch/commitlog/internal/progress"
)

var downloadsFormatFlag string

var downloadsCmd = &cobra.Command{
	Use:   "downloads <tag>",
	Short: "Find the Windows builds published for a release",
	Long: `Find the Windows zip archives published on downloads.php.net for a
release: x64 and x86, thread safe (TS) and non thread safe (NTS).

Each candidate URL is probed with a one byte range request; the archive size
comes from the response and the SHA-256 from the published releases index.`,
	Example: `  commitlog downloads 8.3.9
  commitlog downloads php-8.4.0RC1 --format json`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return clierrors.NewArgumentErrorWithUsage("release tag is required", "commitlog downloads <tag>")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDownloads(cmd.Context(), appFrom(cmd), args[0], downloadsFormatFlag, cmd.OutOrStdout())
	},
}

func init() {
	downloadsCmd.GroupID = GroupSources
	rootCmd.AddCommand(downloadsCmd)

	downloadsCmd.Flags().StringVar(&downloadsFormatFlag, "format", string(output.Text), "Output format: text | markdown | json | yaml")
}

// downloadRow is one build type in the output, present or not.
type downloadRow struct {
	Type   downloads.BuildType `json:"type" yaml:"type"`
	URL    string              `json:"url,omitempty" yaml:"url,omitempty"`
	Size   int64               `json:"size,omitempty" yaml:"size,omitempty"`
	SHA256 string              `json:"sha256,omitempty" yaml:"sha256,omitempty"`
}

func runDownloads(ctx context.Context, a *app, tag, formatName string, w io.Writer) error {
	format, err := output.ParseFormat(formatName, output.Text, output.Markdown, output.JSON, output.YAML)
	if err != nil {
		return clierrors.NewArgumentError(err.Error())
	}
	tag = tagRef(tag)

	fetcher := a.downloadFetcher()
	links, err := progress.Run(ctx, a.display, "Probing downloads for "+tag, func(ctx context.Context) (map[downloads.BuildType]downloads.Link, error) {
		return fetcher.Links(ctx, tag)
	})
	if err != nil {
		return remoteError(err)
	}

	rows := make([]downloadRow, 0, len(downloads.BuildTypes))
	for _, bt := range downloads.BuildTypes {
		row := downloadRow{Type: bt}
		if l, ok := links[bt]; ok {
			row.URL, row.Size, row.SHA256 = l.URL, l.Size, l.SHA256
		}
		rows = append(rows, row)
	}

	switch format {
	case output.Text:
		return writeDownloadTable(w, rows)
	case output.Markdown:
		return writeDownloadMarkdown(w, tag, rows)
	default:
		return output.Encode(w, rows, format)
	}
}

func writeDownloadTable(w io.Writer, rows []downloadRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		if r.URL == "" {
			fmt.Fprintf(tw, "%s\tnot available\t\t\n", r.Type)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Type, r.URL, humanSize(r.Size), r.SHA256)
	}
	return tw.Flush()
}

func writeDownloadMarkdown(w io.Writer, tag string, rows []downloadRow) error {
	var items []string
	for _, r := range rows {
		if r.URL == "" {
			continue
		}
		item := fmt.Sprintf("[%s](%s) (%s)", r.Type, r.URL, humanSize(r.Size))
		if r.SHA256 != "" {
			item += " sha256: `" + r.SHA256 + "`"
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil
	}
	return markup.WriteSections(w, []markup.Section{{Title: "Windows downloads for " + tag, Items: items}})
}

// humanSize formats bytes the way downloads.php.net lists them.
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
