package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phpwatch/commitlog/internal/config"
	clierrors "github.com/phpwatch/commitlog/internal/errors"
	"github.com/phpwatch/commitlog/internal/output"
)

var (
	configInitUserFlag  bool
	configInitForceFlag bool
	configShowFormat    string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage commitlog configuration",
	Long: `Manage commitlog configuration.

Configuration is merged from, lowest priority first: built-in defaults, the
user file (~/.config/commitlog/config.yml), the project file
(.commitlog/config.yml), --config, and COMMITLOG_* environment variables.`,
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a commented config template",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoConfig: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := config.ProjectConfigPath()
		if configInitUserFlag {
			p, err := config.UserConfigPath()
			if err != nil {
				return clierrors.WrapWithMessage(err, clierrors.Configuration, "locating user config directory")
			}
			path = p
		}
		return writeConfigTemplate(path, configInitForceFlag, cmd.OutOrStdout())
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := output.ParseFormat(configShowFormat, output.YAML, output.JSON)
		if err != nil {
			return clierrors.NewArgumentError(err.Error())
		}
		return output.Encode(cmd.OutOrStdout(), appFrom(cmd).cfg.Redacted(), format)
	},
}

var configValidateCmd = &cobra.Command{
	Use:         "validate [path]",
	Short:       "Check config files for syntax and value errors",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{annotationNoConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := config.LoadOptions{ConfigFile: cfgFile}
		if len(args) == 1 {
			opts.ConfigFile = args[0]
		}
		return validateConfig(opts, cmd.OutOrStdout())
	},
}

func init() {
	configCmd.GroupID = GroupSetup
	configCmd.AddCommand(configInitCmd, configShowCmd, configValidateCmd)
	rootCmd.AddCommand(configCmd)

	configInitCmd.Flags().BoolVar(&configInitUserFlag, "user", false, "Write the user config instead of the project config")
	configInitCmd.Flags().BoolVar(&configInitForceFlag, "force", false, "Overwrite an existing file")
	configShowCmd.Flags().StringVar(&configShowFormat, "format", string(output.YAML), "Output format: yaml | json")
}

func writeConfigTemplate(path string, force bool, w io.Writer) error {
	if _, err := os.Stat(path); err == nil && !force {
		return clierrors.NewConfigError(
			fmt.Sprintf("config file already exists: %s", path),
			"Pass --force to overwrite it",
		)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Configuration, "creating config directory")
	}
	if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Configuration, "writing config")
	}
	output.PrintSuccess(w, "Wrote "+path)
	return nil
}

func validateConfig(opts config.LoadOptions, w io.Writer) error {
	if opts.ConfigFile != "" {
		if err := config.ValidateYAMLSyntax(opts.ConfigFile); err != nil {
			return clierrors.InvalidConfig(err)
		}
	}
	if _, err := config.LoadWithOptions(opts); err != nil {
		return clierrors.InvalidConfig(err)
	}
	output.PrintSuccess(w, "Configuration is valid")
	return nil
}
