// Package cli implements the commitlog command tree.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phpwatch/commitlog/internal/config"
	"github.com/phpwatch/commitlog/internal/enhancer"
	clierrors "github.com/phpwatch/commitlog/internal/errors"
	"github.com/phpwatch/commitlog/internal/git"
	"github.com/phpwatch/commitlog/internal/logging"
	"github.com/phpwatch/commitlog/internal/progress"
)

// Command groups
const (
	GroupReleaseNotes = "release-notes"
	GroupSources      = "sources"
	GroupSetup        = "setup"
)

// annotationNoConfig marks commands that run without loading configuration.
const annotationNoConfig = "commitlog/no-config"

var (
	cfgFile   string
	debugFlag bool
	plainFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "commitlog",
	Short: "Release notes from php-src NEWS files and commit history",
	Long: `commitlog turns the php-src NEWS file and git history into
publication-ready release notes.

NEWS sections are parsed into releases, subsystems and entries. Entries and
commit subjects are enhanced with links to bugs, issues, pull requests,
commits and security advisories, and code-like tokens are quoted.`,
	Example: `  # Release notes for PHP 8.3.9 from GitHub
  commitlog news 8.3.9

  # Same, from a local NEWS file, re-rendered on every save
  commitlog news 8.4.0RC1 --file NEWS --watch

  # Commits between two tags of a local clone, grouped by author
  commitlog commits 8.3.8 8.3.9 --repo ~/src/php-src --group-by-author

  # Enhance a single line
  commitlog enhance "Fixed bug GH-14307 (zend_call_function() crash)"`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupApp,
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if a := appFrom(cmd); a != nil {
			_ = a.logger.Sync()
		}
	},
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupReleaseNotes, Title: "Release Notes:"},
		&cobra.Group{ID: GroupSources, Title: "Sources:"},
		&cobra.Group{ID: GroupSetup, Title: "Setup:"},
	)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (YAML or JSON), loaded after project config")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&plainFlag, "plain", false, "Plain output without colors or spinners")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine(), "Run '"+cmd.CommandPath()+" --help' for usage")
	})
}

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg      *config.Configuration
	logger   *zap.Logger
	display  *progress.Display
	enhancer *enhancer.Enhancer
}

type appKey struct{}

func newApp(cfg *config.Configuration, logger *zap.Logger, display *progress.Display) *app {
	return &app{
		cfg:      cfg,
		logger:   logger,
		display:  display,
		enhancer: enhancer.New(cfg.Links()),
	}
}

// setupApp loads configuration and the logger and stores them on the
// command context.
func setupApp(cmd *cobra.Command, _ []string) error {
	if plainFlag {
		color.NoColor = true
	}
	if cmd.Annotations[annotationNoConfig] == "true" {
		return nil
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{ConfigFile: cfgFile})
	if err != nil {
		return clierrors.InvalidConfig(err)
	}

	logger, err := logging.New(cfg.LogLevel, debugFlag)
	if err != nil {
		return clierrors.InvalidConfig(err)
	}
	if debugFlag {
		git.SetDebugLogger(logging.Printf(logger.Named("git")))
	}

	display := progress.NewDisplay(cmd.ErrOrStderr(), progress.DetectTerminalCapabilities(os.Stderr), plainFlag)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appKey{}, newApp(cfg, logger, display)))
	return nil
}

func appFrom(cmd *cobra.Command) *app {
	if cmd.Context() == nil {
		return nil
	}
	a, _ := cmd.Context().Value(appKey{}).(*app)
	return a
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	clierrors.Fprint(os.Stderr, err, plainFlag)
	return ExitCodeFor(err)
}
