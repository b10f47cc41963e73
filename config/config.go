package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spiffcs/spotlight/internal/constants"
	"gopkg.in/yaml.v3"
)

// EnvFile is the dotenv file read from the working directory on load.
const EnvFile = ".env"

// Environment variables. Secrets are only ever read from the environment.
const (
	EnvGitHubToken         = "GITHUB_TOKEN"
	EnvDiscordHook         = "DISCORD_HOOK"
	EnvTwitterKey          = "TWITTER_KEY"
	EnvTwitterSecret       = "TWITTER_SECRET"
	EnvTwitterAccessToken  = "TWITTER_ACCESS_TOKEN"
	EnvTwitterAccessSecret = "TWITTER_ACCESS_SECRET"
	EnvOrganization        = "SPOTLIGHT_ORG"
	EnvWindowDays          = "SPOTLIGHT_WINDOW_DAYS"
)

var (
	// ErrNoOrganization is returned by Validate when no organization is set.
	ErrNoOrganization = errors.New("no organization configured")
	// ErrInvalidWindow is returned by Validate for a non-positive window.
	ErrInvalidWindow = errors.New("window must be at least one day")
	// ErrInvalidPageSize is returned by Validate for an out of range page size.
	ErrInvalidPageSize = fmt.Errorf("page size must be between 1 and %d", constants.MaxPageSize)
)

// Config represents the application configuration
type Config struct {
	Organization   string         `yaml:"organization,omitempty"`
	WindowDays     int            `yaml:"window_days,omitempty"`
	PageSize       int            `yaml:"page_size,omitempty"`
	MaxPages       int            `yaml:"max_pages,omitempty"`
	RequestTimeout time.Duration  `yaml:"request_timeout,omitempty"`
	ExcludeHandles []string       `yaml:"exclude_handles,omitempty"`
	Prefetch       *bool          `yaml:"prefetch,omitempty"`
	DryRun         *bool          `yaml:"dry_run,omitempty"`
	DefaultFormat  string         `yaml:"default_format,omitempty"`
	LogFormat      string         `yaml:"log_format,omitempty"`
	Publish        *PublishConfig `yaml:"publish,omitempty"`
	Banner         *BannerConfig  `yaml:"banner,omitempty"`
}

// PublishConfig selects the channels a winner is announced on. A channel
// also needs its secrets in the environment.
type PublishConfig struct {
	Discord *bool `yaml:"discord,omitempty"`
	Twitter *bool `yaml:"twitter,omitempty"`
}

// BannerConfig controls the rendered image.
type BannerConfig struct {
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Out    string `yaml:"out,omitempty"`
}

// Secrets holds the credentials read from the environment.
type Secrets struct {
	GitHubToken         string
	DiscordHook         string
	TwitterKey          string
	TwitterSecret       string
	TwitterAccessToken  string
	TwitterAccessSecret string
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".spotlight"
	}
	return filepath.Join(configDir, "spotlight")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".spotlight.yaml"
}

// Load loads the configuration from disk.
// It first loads the global config from the user config directory, then merges
// any local .spotlight.yaml config on top (local values take precedence).
// Variables from a .env file in the working directory fill in any that are
// not already set, and SPOTLIGHT_* variables override both files.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath(), LocalConfigPath(), EnvFile)
}

// LoadFrom is Load with explicit paths. Missing files are skipped.
func LoadFrom(globalPath, localPath, envPath string) (*Config, error) {
	if err := loadEnvFile(envPath); err != nil {
		return nil, err
	}

	cfg, err := readConfig(globalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load global config file: %w", err)
	}

	local, err := readConfig(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load local config file: %w", err)
	}
	cfg = mergeConfig(cfg, local)

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func readConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// loadEnvFile sets variables from path that are not already in the
// environment.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	envMap, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	for k, v := range envMap {
		if _, exists := os.LookupEnv(k); !exists {
			_ = os.Setenv(k, v)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	if org := os.Getenv(EnvOrganization); org != "" {
		c.Organization = org
	}
	if days := os.Getenv(EnvWindowDays); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvWindowDays, days, err)
		}
		c.WindowDays = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.WindowDays == 0 {
		c.WindowDays = constants.DefaultWindowDays
	}
	if c.PageSize == 0 {
		c.PageSize = constants.DefaultPageSize
	}
	if c.MaxPages == 0 {
		c.MaxPages = constants.DefaultMaxPages
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = constants.DefaultRequestTimeout
	}
	if c.DefaultFormat == "" {
		c.DefaultFormat = "table"
	}
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := &Config{
		Organization:   pick(local.Organization, global.Organization),
		WindowDays:     pick(local.WindowDays, global.WindowDays),
		PageSize:       pick(local.PageSize, global.PageSize),
		MaxPages:       pick(local.MaxPages, global.MaxPages),
		RequestTimeout: pick(local.RequestTimeout, global.RequestTimeout),
		DefaultFormat:  pick(local.DefaultFormat, global.DefaultFormat),
		LogFormat:      pick(local.LogFormat, global.LogFormat),
		Prefetch:       pickPtr(local.Prefetch, global.Prefetch),
		DryRun:         pickPtr(local.DryRun, global.DryRun),
	}

	// Merge arrays (local replaces if non-empty)
	if len(local.ExcludeHandles) > 0 {
		result.ExcludeHandles = local.ExcludeHandles
	} else {
		result.ExcludeHandles = global.ExcludeHandles
	}

	result.Publish = mergePublish(global.Publish, local.Publish)
	result.Banner = mergeBanner(global.Banner, local.Banner)

	return result
}

func mergePublish(global, local *PublishConfig) *PublishConfig {
	if global == nil && local == nil {
		return nil
	}
	result := &PublishConfig{}
	if global != nil {
		*result = *global
	}
	if local != nil {
		result.Discord = pickPtr(local.Discord, result.Discord)
		result.Twitter = pickPtr(local.Twitter, result.Twitter)
	}
	return result
}

func mergeBanner(global, local *BannerConfig) *BannerConfig {
	if global == nil && local == nil {
		return nil
	}
	result := &BannerConfig{}
	if global != nil {
		*result = *global
	}
	if local != nil {
		result.Width = pick(local.Width, result.Width)
		result.Height = pick(local.Height, result.Height)
		result.Out = pick(local.Out, result.Out)
	}
	return result
}

func pick[T comparable](local, global T) T {
	var zero T
	if local != zero {
		return local
	}
	return global
}

func pickPtr[T any](local, global *T) *T {
	if local != nil {
		return local
	}
	return global
}

// Validate reports settings a run cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Organization == "" {
		errs = append(errs, ErrNoOrganization)
	}
	if c.WindowDays <= 0 {
		errs = append(errs, ErrInvalidWindow)
	}
	if c.PageSize < 1 || c.PageSize > constants.MaxPageSize {
		errs = append(errs, ErrInvalidPageSize)
	}
	if c.MaxPages < 0 {
		errs = append(errs, errors.New("max pages cannot be negative"))
	}
	return errors.Join(errs...)
}

// PrefetchEnabled reports whether the next page should be fetched while the
// current one is processed.
func (c *Config) PrefetchEnabled() bool {
	return c.Prefetch != nil && *c.Prefetch
}

// IsDryRun reports whether publishing is disabled.
func (c *Config) IsDryRun() bool {
	return c.DryRun != nil && *c.DryRun
}

// DiscordEnabled reports whether winners are announced on Discord. Discord
// is on unless turned off explicitly.
func (c *Config) DiscordEnabled() bool {
	if c.Publish == nil || c.Publish.Discord == nil {
		return true
	}
	return *c.Publish.Discord
}

// TwitterEnabled reports whether winners are announced on Twitter. Twitter
// is on unless turned off explicitly.
func (c *Config) TwitterEnabled() bool {
	if c.Publish == nil || c.Publish.Twitter == nil {
		return true
	}
	return *c.Publish.Twitter
}

// BannerSize returns the configured banner dimensions, or the defaults.
func (c *Config) BannerSize() (int, int) {
	if c.Banner == nil || c.Banner.Width <= 0 || c.Banner.Height <= 0 {
		return constants.BannerWidth, constants.BannerHeight
	}
	return c.Banner.Width, c.Banner.Height
}

// BannerOut returns where the banner should be written, if anywhere.
func (c *Config) BannerOut() string {
	if c.Banner == nil {
		return ""
	}
	return c.Banner.Out
}

// GetGitHubToken returns the GitHub token from the GITHUB_TOKEN environment variable.
// Tokens are only read from the environment.
func (c *Config) GetGitHubToken() string {
	return os.Getenv(EnvGitHubToken)
}

// GetSecrets returns every credential spotlight uses from the environment.
func (c *Config) GetSecrets() Secrets {
	return Secrets{
		GitHubToken:         c.GetGitHubToken(),
		DiscordHook:         os.Getenv(EnvDiscordHook),
		TwitterKey:          os.Getenv(EnvTwitterKey),
		TwitterSecret:       os.Getenv(EnvTwitterSecret),
		TwitterAccessToken:  os.Getenv(EnvTwitterAccessToken),
		TwitterAccessSecret: os.Getenv(EnvTwitterAccessSecret),
	}
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	enabled, disabled := true, false
	return &Config{
		Organization:   "",
		WindowDays:     constants.DefaultWindowDays,
		PageSize:       constants.DefaultPageSize,
		MaxPages:       constants.DefaultMaxPages,
		RequestTimeout: constants.DefaultRequestTimeout,
		ExcludeHandles: []string{},
		Prefetch:       &disabled,
		DryRun:         &disabled,
		DefaultFormat:  "table",
		LogFormat:      "text",
		Publish: &PublishConfig{
			Discord: &enabled,
			Twitter: &enabled,
		},
		Banner: &BannerConfig{
			Width:  constants.BannerWidth,
			Height: constants.BannerHeight,
		},
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	// Get absolute path for local config
	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# Spotlight configuration file
# See: spotlight config defaults  (for all available options)

# Organization to pick a top contributor for
organization: my-org

# Rolling window in days
window_days: 7

# Output format: table, json or markdown
default_format: table

# Never rank these handles (optional)
# exclude_handles:
#   - renovate-bot

# Turn off a channel (optional). Secrets come from the environment:
# DISCORD_HOOK, TWITTER_KEY, TWITTER_SECRET, TWITTER_ACCESS_TOKEN, TWITTER_ACCESS_SECRET
# publish:
#   discord: false
#   twitter: false
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
