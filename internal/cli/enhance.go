package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phpwatch/commitlog/internal/enhancer"
	clierrors "github.com/phpwatch/commitlog/internal/errors"
)

var enhanceHashFlag string

var enhanceCmd = &cobra.Command{
	Use:   "enhance [text...]",
	Short: "Add links and code quoting to free text",
	Long: `Enhance free text the way NEWS entries and commit subjects are enhanced.

Arguments are joined with spaces and enhanced as one line. Without arguments
every line of standard input is enhanced separately. With --hash the text is
treated as a commit subject and ends in a link to that commit when it carries
no other pull request or commit reference.`,
	Example: `  commitlog enhance "Fixed bug #81500 (Interval serialization regression)"
  commitlog enhance --hash 3f2a9c1b7e "Fix GH-14307: zend_call_function() crash"
  git log --format=%s php-8.3.8..php-8.3.9 | commitlog enhance`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEnhance(appFrom(cmd).enhancer, args, enhanceHashFlag, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	enhanceCmd.GroupID = GroupReleaseNotes
	rootCmd.AddCommand(enhanceCmd)

	enhanceCmd.Flags().StringVar(&enhanceHashFlag, "hash", "", "Commit hash to link when the text has no other reference")
}

func runEnhance(e *enhancer.Enhancer, args []string, hash string, in io.Reader, w io.Writer) error {
	apply := e.Enhance
	if hash != "" {
		apply = func(text string) string { return e.EnhanceCommit(text, hash) }
	}

	if len(args) > 0 {
		_, err := fmt.Fprintln(w, apply(strings.Join(args, " ")))
		return err
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if _, err := fmt.Fprintln(w, apply(scanner.Text())); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Input, "reading standard input")
	}
	return nil
}
