package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvOrganization, EnvWindowDays, EnvDiscordHook, EnvGitHubToken} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadFromDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := LoadFrom(filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "missing-local.yaml"), filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.WindowDays != 7 {
		t.Errorf("WindowDays = %d, want 7", cfg.WindowDays)
	}
	if cfg.PageSize != 100 {
		t.Errorf("PageSize = %d, want 100", cfg.PageSize)
	}
	if cfg.MaxPages != 10 {
		t.Errorf("MaxPages = %d, want 10", cfg.MaxPages)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.DefaultFormat != "table" {
		t.Errorf("DefaultFormat = %q, want table", cfg.DefaultFormat)
	}
	if cfg.PrefetchEnabled() || cfg.IsDryRun() {
		t.Error("prefetch and dry run should default to off")
	}
	if !cfg.DiscordEnabled() || !cfg.TwitterEnabled() {
		t.Error("channels should default to on")
	}
}

func TestLoadFromMergesLocalOverGlobal(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	global := writeFile(t, dir, "global.yaml", `
organization: acme
window_days: 30
request_timeout: 10s
exclude_handles: [ci-user]
publish:
  discord: false
  twitter: false
banner:
  width: 600
  height: 338
`)
	local := writeFile(t, dir, "local.yaml", `
window_days: 14
prefetch: true
publish:
  twitter: true
banner:
  out: banner.png
`)

	cfg, err := LoadFrom(global, local, "")
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Organization != "acme" {
		t.Errorf("Organization = %q, want acme from global", cfg.Organization)
	}
	if cfg.WindowDays != 14 {
		t.Errorf("WindowDays = %d, want 14 from local", cfg.WindowDays)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", cfg.RequestTimeout)
	}
	if len(cfg.ExcludeHandles) != 1 || cfg.ExcludeHandles[0] != "ci-user" {
		t.Errorf("ExcludeHandles = %v, want [ci-user]", cfg.ExcludeHandles)
	}
	if !cfg.PrefetchEnabled() {
		t.Error("PrefetchEnabled() = false, want true from local")
	}
	if cfg.DiscordEnabled() {
		t.Error("DiscordEnabled() = true, want false from global")
	}
	if !cfg.TwitterEnabled() {
		t.Error("TwitterEnabled() = false, want true from local")
	}
	if w, h := cfg.BannerSize(); w != 600 || h != 338 {
		t.Errorf("BannerSize() = %dx%d, want 600x338", w, h)
	}
	if cfg.BannerOut() != "banner.png" {
		t.Errorf("BannerOut() = %q, want banner.png", cfg.BannerOut())
	}
}

func TestLoadFromRejectsMalformedYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.yaml", "window_days: [not a number\n")

	if _, err := LoadFrom(bad, "", ""); err == nil {
		t.Fatal("LoadFrom() expected error for malformed yaml")
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	global := writeFile(t, dir, "global.yaml", "organization: acme\nwindow_days: 30\n")

	t.Setenv(EnvOrganization, "globex")
	t.Setenv(EnvWindowDays, "3")

	cfg, err := LoadFrom(global, "", "")
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Organization != "globex" || cfg.WindowDays != 3 {
		t.Errorf("got org=%q window=%d, want globex/3", cfg.Organization, cfg.WindowDays)
	}

	t.Setenv(EnvWindowDays, "week")
	if _, err := LoadFrom(global, "", ""); err == nil {
		t.Error("LoadFrom() expected error for non-numeric window")
	}
}

func TestLoadFromEnvFileDoesNotOverride(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	env := writeFile(t, dir, ".env", "DISCORD_HOOK=https://discord.example/hook\nGITHUB_TOKEN=from-file\n")

	t.Setenv(EnvGitHubToken, "from-env")

	cfg, err := LoadFrom("", "", env)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	secrets := cfg.GetSecrets()
	if secrets.GitHubToken != "from-env" {
		t.Errorf("GitHubToken = %q, want the existing environment value", secrets.GitHubToken)
	}
	if secrets.DiscordHook != "https://discord.example/hook" {
		t.Errorf("DiscordHook = %q, want value from .env", secrets.DiscordHook)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Organization: "acme", WindowDays: 7, PageSize: 100, MaxPages: 10}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid", func(*Config) {}, nil},
		{"missing organization", func(c *Config) { c.Organization = "" }, ErrNoOrganization},
		{"zero window", func(c *Config) { c.WindowDays = 0 }, ErrInvalidWindow},
		{"negative window", func(c *Config) { c.WindowDays = -1 }, ErrInvalidWindow},
		{"page size too large", func(c *Config) { c.PageSize = 101 }, ErrInvalidPageSize},
		{"page size zero", func(c *Config) { c.PageSize = 0 }, ErrInvalidPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	err := (&Config{}).Validate()
	for _, want := range []error{ErrNoOrganization, ErrInvalidWindow, ErrInvalidPageSize} {
		if !errors.Is(err, want) {
			t.Errorf("Validate() error = %v, missing %v", err, want)
		}
	}
}

func TestDefaultConfigRoundTrips(t *testing.T) {
	out, err := DefaultConfig().ToYAML()
	if err != nil {
		t.Fatalf("ToYAML() error = %v", err)
	}
	if !strings.Contains(out, "request_timeout: 30s") {
		t.Errorf("ToYAML() should render durations as strings, got:\n%s", out)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
}

func TestMinimalConfigParses(t *testing.T) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(MinimalConfig()), &cfg); err != nil {
		t.Fatalf("MinimalConfig() is not valid yaml: %v", err)
	}
	if cfg.Organization != "my-org" || cfg.WindowDays != 7 {
		t.Errorf("MinimalConfig() parsed to org=%q window=%d", cfg.Organization, cfg.WindowDays)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := SaveTo(path, "organization: acme\n"); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "organization: acme\n" {
		t.Errorf("SaveTo() wrote %q", data)
	}
}
