package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spiffcs/spotlight/config"
	"github.com/spiffcs/spotlight/internal/aggregate"
	"github.com/spiffcs/spotlight/internal/banner"
	"github.com/spiffcs/spotlight/internal/duration"
	"github.com/spiffcs/spotlight/internal/ghclient"
	"github.com/spiffcs/spotlight/internal/log"
	"github.com/spiffcs/spotlight/internal/model"
	"github.com/spiffcs/spotlight/internal/output"
	"github.com/spiffcs/spotlight/internal/publish"
)

// NewCmdRun creates the run command.
func NewCmdRun(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Pick and announce the top contributor once (same as root spotlight)",
		Long: `Resolves the organization, walks merged pull requests and opened issues
inside the window, prints the ranking and, when someone qualifies, renders
the banner and publishes it to every configured channel.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd, opts)
		},
	}

	addRunFlags(cmd, opts)
	return cmd
}

// addRunFlags adds the run-specific flags to a command.
func addRunFlags(cmd *cobra.Command, opts *Options) {
	addSelectionFlags(cmd, opts)

	// Profiling flags
	cmd.Flags().StringVar(&opts.CPUProfile, "cpuprofile", "", "Write CPU profile to file")
	cmd.Flags().StringVar(&opts.MemProfile, "memprofile", "", "Write memory profile to file")
	cmd.Flags().StringVar(&opts.Trace, "trace", "", "Write execution trace to file")
}

// addSelectionFlags adds the flags shared by run and schedule.
func addSelectionFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVar(&opts.Organization, "org", "", "GitHub organization (overrides config)")
	cmd.Flags().StringVarP(&opts.Window, "window", "w", "", "Activity window (e.g., 1d, 1w, 30d)")
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (table, json, markdown)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", output.DefaultLimit, "Number of ranked contributors to print")
	cmd.Flags().IntVar(&opts.MaxPages, "max-pages", 0, "Maximum pages fetched per feed")
	cmd.Flags().StringSliceVar(&opts.Exclude, "exclude", nil, "Handles that are never ranked")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Render the banner but do not publish")
	cmd.Flags().BoolVar(&opts.Prefetch, "prefetch", false, "Fetch the next page while the current one is processed")
	cmd.Flags().StringVar(&opts.BannerOut, "banner-out", "", "Write the rendered banner to this file")
	cmd.Flags().StringVar(&opts.APIURL, "api-url", "", "GitHub API base URL (for GitHub Enterprise)")
	cmd.Flags().StringVar(&opts.LogFormat, "log-format", "", "Log format (text, json)")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")
}

func runOnce(cmd *cobra.Command, opts *Options) error {
	profiler := NewProfiler(opts.CPUProfile, opts.MemProfile, opts.Trace)
	if err := profiler.Start(); err != nil {
		return err
	}
	defer profiler.Stop()

	r, err := newRunner(cmd, opts)
	if err != nil {
		return err
	}
	return r.run(cmd.Context())
}

// runner performs runs with a fixed configuration.
type runner struct {
	cfg     *config.Config
	secrets config.Secrets
	format  output.Format
	limit   int
	apiURL  string
	stdout  io.Writer
}

// newRunner sets up logging and resolves the configuration for opts.
func newRunner(cmd *cobra.Command, opts *Options) (*runner, error) {
	log.Initialize(opts.Verbosity, cmd.ErrOrStderr())

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := log.SetFormat(cfg.LogFormat); err != nil {
		return nil, err
	}

	formatName := opts.Format
	if formatName == "" {
		formatName = cfg.DefaultFormat
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	return &runner{
		cfg:     cfg,
		secrets: cfg.GetSecrets(),
		format:  format,
		limit:   opts.Limit,
		apiURL:  opts.APIURL,
		stdout:  cmd.OutOrStdout(),
	}, nil
}

// loadConfig loads the config files and applies command-line overrides.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if opts.Organization != "" {
		cfg.Organization = opts.Organization
	}
	if opts.Window != "" {
		days, err := duration.ParseDays(opts.Window)
		if err != nil {
			return nil, fmt.Errorf("invalid window: %w", err)
		}
		cfg.WindowDays = days
	}
	if opts.MaxPages > 0 {
		cfg.MaxPages = opts.MaxPages
	}
	if len(opts.Exclude) > 0 {
		cfg.ExcludeHandles = append(cfg.ExcludeHandles, opts.Exclude...)
	}
	if opts.DryRun {
		cfg.DryRun = &opts.DryRun
	}
	if opts.Prefetch {
		cfg.Prefetch = &opts.Prefetch
	}
	if opts.LogFormat != "" {
		cfg.LogFormat = opts.LogFormat
	}
	if opts.BannerOut != "" {
		if cfg.Banner == nil {
			cfg.Banner = &config.BannerConfig{}
		}
		cfg.Banner.Out = opts.BannerOut
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// run performs one run: select, print, render, publish. An aborted run or a
// failed publish is returned as an error.
func (r *runner) run(ctx context.Context) error {
	result, err := r.aggregate(ctx)
	if err != nil {
		return err
	}
	return r.announce(ctx, result)
}

// announce prints the ranking and, when there is a winner, renders and
// publishes the banner.
func (r *runner) announce(ctx context.Context, result *model.Result) error {
	if err := output.NewFormatter(r.format, r.limit).Format(result, r.stdout); err != nil {
		return fmt.Errorf("failed to write ranking: %w", err)
	}

	if !result.HasWinner() {
		return nil
	}

	width, height := r.cfg.BannerSize()
	img, err := banner.New(banner.WithSize(width, height)).Render(ctx, result.Winner, result.WindowDays)
	if err != nil {
		return fmt.Errorf("failed to render banner: %w", err)
	}

	if out := r.cfg.BannerOut(); out != "" {
		if err := os.WriteFile(out, img, 0644); err != nil {
			return fmt.Errorf("failed to write banner: %w", err)
		}
		log.Info("wrote banner", "path", out)
	}

	if r.cfg.IsDryRun() {
		log.Info("dry run, not publishing", "handle", result.Winner.Handle)
		return nil
	}

	pubs := r.publishers()
	if len(pubs) == 0 {
		log.Warn("no publishing channel configured", "handle", result.Winner.Handle)
		return nil
	}
	return publish.All(ctx, publish.Post{
		Contributor: result.Winner,
		WindowDays:  result.WindowDays,
		Image:       img,
	}, pubs...)
}

func (r *runner) aggregate(ctx context.Context) (*model.Result, error) {
	clientOpts := []ghclient.ClientOption{ghclient.WithRequestTimeout(r.cfg.RequestTimeout)}
	if r.apiURL != "" {
		clientOpts = append(clientOpts, ghclient.WithBaseURL(r.apiURL))
	}

	client, err := ghclient.NewClient(ctx, r.secrets.GitHubToken, clientOpts...)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return aggregate.New(client, aggregate.Config{
		Organization: r.cfg.Organization,
		WindowDays:   r.cfg.WindowDays,
		PageSize:     r.cfg.PageSize,
		MaxPages:     r.cfg.MaxPages,
		Excluded:     r.cfg.ExcludeHandles,
		Prefetch:     r.cfg.PrefetchEnabled(),
	}).Aggregate(ctx)
}

// publishers builds every enabled channel that has its secrets.
func (r *runner) publishers() []publish.Publisher {
	client := &http.Client{Timeout: r.cfg.RequestTimeout}
	var pubs []publish.Publisher

	if r.cfg.DiscordEnabled() {
		if r.secrets.DiscordHook == "" {
			log.Debug("discord enabled but DISCORD_HOOK not set")
		} else if d, err := publish.NewDiscord(r.secrets.DiscordHook, client); err != nil {
			log.Warn("discord unavailable", "error", err)
		} else {
			pubs = append(pubs, d)
		}
	}

	if r.cfg.TwitterEnabled() {
		creds := publish.TwitterCredentials{
			ConsumerKey:    r.secrets.TwitterKey,
			ConsumerSecret: r.secrets.TwitterSecret,
			AccessToken:    r.secrets.TwitterAccessToken,
			AccessSecret:   r.secrets.TwitterAccessSecret,
		}
		if !creds.Complete() {
			log.Debug("twitter enabled but credentials incomplete")
		} else if t, err := publish.NewTwitter(creds, client); err != nil {
			log.Warn("twitter unavailable", "error", err)
		} else {
			pubs = append(pubs, t)
		}
	}

	return pubs
}
