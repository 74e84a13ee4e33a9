// Package config provides hierarchical configuration management for commitlog using koanf.
// Configuration is loaded with priority: environment variables > explicit --config file >
// project config (.commitlog/config.yml) > user config (~/.config/commitlog/config.yml) > defaults.
// YAML and JSON files are both accepted; the parser is chosen by file extension.
package config

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/phpwatch/commitlog/internal/downloads"
	"github.com/phpwatch/commitlog/internal/enhancer"
	"github.com/phpwatch/commitlog/internal/github"
)

// EnvPrefix prefixes every environment override, e.g. COMMITLOG_REPO_URL.
const EnvPrefix = "COMMITLOG_"

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceFile    ConfigSource = "file"
	SourceEnv     ConfigSource = "env"
)

// Duration is a time.Duration that reads and prints as "30s".
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Replacement substitutes one exact string for another.
type Replacement struct {
	From string `koanf:"from" json:"from" yaml:"from" validate:"required"`
	To   string `koanf:"to" json:"to" yaml:"to"`
}

// Configuration represents the commitlog CLI tool configuration
type Configuration struct {
	// Link targets used by the enhancer.
	RepoURL       string `koanf:"repo_url" json:"repo_url" yaml:"repo_url" validate:"required,url"`
	BugTrackerURL string `koanf:"bug_tracker_url" json:"bug_tracker_url" yaml:"bug_tracker_url" validate:"required,url"`
	CVEURL        string `koanf:"cve_url" json:"cve_url" yaml:"cve_url" validate:"required,url"`
	// AdvisoryURL defaults to the repository advisories page when empty.
	AdvisoryURL   string `koanf:"advisory_url" json:"advisory_url" yaml:"advisory_url" validate:"omitempty,url"`
	IssueRangeMin int    `koanf:"issue_range_min" json:"issue_range_min" yaml:"issue_range_min" validate:"min=1"`
	IssueRangeMax int    `koanf:"issue_range_max" json:"issue_range_max" yaml:"issue_range_max" validate:"gtefield=IssueRangeMin"`

	// Remote sources.
	APIURL        string   `koanf:"api_url" json:"api_url" yaml:"api_url" validate:"required,url"`
	RawContentURL string   `koanf:"raw_content_url" json:"raw_content_url" yaml:"raw_content_url" validate:"required,url"`
	DownloadsURL  string   `koanf:"downloads_url" json:"downloads_url" yaml:"downloads_url" validate:"required,url"`
	GitHubToken   string   `koanf:"github_token" json:"github_token" yaml:"github_token"`
	Timeout       Duration `koanf:"timeout" json:"timeout" yaml:"timeout" validate:"min=0"`
	MaxPages      int      `koanf:"max_pages" json:"max_pages" yaml:"max_pages" validate:"min=1,max=50"`

	// AuthorReplacements renames commit authors for display and grouping.
	AuthorReplacements []Replacement `koanf:"author_replacements" json:"author_replacements" yaml:"author_replacements" validate:"dive"`
	// NewsLineReplacements patches known-bad NEWS lines before parsing.
	NewsLineReplacements []Replacement `koanf:"news_line_replacements" json:"news_line_replacements" yaml:"news_line_replacements" validate:"dive"`

	LogLevel string `koanf:"log_level" json:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .commitlog/config.yml)
	ProjectConfigPath string
	// ConfigFile is an explicit config file, loaded after user and project config
	ConfigFile string
	// SkipUserConfig ignores the user-level config file
	SkipUserConfig bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	loadDefaults(k)

	if !opts.SkipUserConfig {
		if err := loadUserConfig(k); err != nil {
			return nil, err
		}
	}

	if err := loadProjectConfig(k, opts.ProjectConfigPath); err != nil {
		return nil, err
	}

	if opts.ConfigFile != "" {
		if !fileExists(opts.ConfigFile) {
			return nil, fmt.Errorf("config file %s: %w", opts.ConfigFile, os.ErrNotExist)
		}
		if err := loadConfigFile(k, opts.ConfigFile, SourceFile); err != nil {
			return nil, err
		}
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	return finalizeConfig(k)
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadUserConfig loads ~/.config/commitlog/config.yml when present.
func loadUserConfig(k *koanf.Koanf) error {
	path, err := UserConfigPath()
	if err != nil || !fileExists(path) {
		return nil
	}
	return loadConfigFile(k, path, SourceUser)
}

// loadProjectConfig loads .commitlog/config.yml, or customPath when set.
func loadProjectConfig(k *koanf.Koanf, customPath string) error {
	path := ProjectConfigPath()
	if customPath != "" {
		path = customPath
	}
	if !fileExists(path) {
		return nil
	}
	return loadConfigFile(k, path, SourceProject)
}

// loadConfigFile validates and loads a YAML or JSON config file
func loadConfigFile(k *koanf.Koanf, path string, source ConfigSource) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return fmt.Errorf("failed to load %s config %s: %w", source, path, err)
		}
		return nil
	}

	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", source, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", source, path, err)
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals and validates the merged configuration
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.GitHubToken == "" {
		cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys
// Example: COMMITLOG_REPO_URL -> repo_url
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// Links returns the enhancer link targets.
func (c *Configuration) Links() enhancer.Links {
	return enhancer.Links{
		RepoURL:       c.RepoURL,
		BugTrackerURL: c.BugTrackerURL,
		CVEURL:        c.CVEURL,
		AdvisoryURL:   c.AdvisoryURL,
		IssueRangeMin: c.IssueRangeMin,
		IssueRangeMax: c.IssueRangeMax,
	}
}

// GitHubOptions returns client options for the configured repository.
func (c *Configuration) GitHubOptions() []github.Option {
	return []github.Option{
		github.WithHTTPClient(c.httpClient()),
		github.WithAPIURL(c.APIURL),
		github.WithRawContentURL(c.RawContentURL),
		github.WithToken(c.GitHubToken),
		github.WithMaxPages(c.MaxPages),
	}
}

// DownloadOptions returns fetcher options for the configured download host.
func (c *Configuration) DownloadOptions() []downloads.Option {
	return []downloads.Option{
		downloads.WithHTTPClient(c.httpClient()),
		downloads.WithBaseURL(c.DownloadsURL),
	}
}

// httpClient returns nil when no timeout is configured, leaving each
// package its own default client.
func (c *Configuration) httpClient() *http.Client {
	if c.Timeout <= 0 {
		return nil
	}
	return &http.Client{Timeout: time.Duration(c.Timeout)}
}

// AuthorMap returns the author replacements keyed by original name.
func (c *Configuration) AuthorMap() map[string]string {
	return replacementMap(c.AuthorReplacements)
}

// NewsLineMap returns the NEWS line replacements keyed by original line.
func (c *Configuration) NewsLineMap() map[string]string {
	return replacementMap(c.NewsLineReplacements)
}

// Redacted returns a copy safe to print: the token is masked.
func (c *Configuration) Redacted() Configuration {
	out := *c
	if out.GitHubToken != "" {
		out.GitHubToken = "********"
	}
	return out
}

// replacementMap keeps the last replacement for a repeated From.
func replacementMap(rs []Replacement) map[string]string {
	m := make(map[string]string, len(rs))
	for _, r := range rs {
		m[r.From] = r.To
	}
	return m
}
