package cmd

import (
	"fmt"
	"io"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spf13/cobra"
	"github.com/spiffcs/spotlight/config"
	"github.com/spiffcs/spotlight/internal/format"
	"github.com/spiffcs/spotlight/internal/ghclient"
)

// NewCmdRateLimit creates the ratelimit command.
func NewCmdRateLimit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Check GitHub API rate limit status",
		Long:  `Display current GitHub API rate limit status including remaining quota and reset time.`,
	}
	cmd.AddCommand(NewCmdRateLimitStatus())
	return cmd
}

// NewCmdRateLimitStatus creates the ratelimit status subcommand.
func NewCmdRateLimitStatus() *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show current rate limit status",
		Long: `Display the current GitHub API rate limit status for the core and search
APIs. A run spends most of its quota on search, which allows far fewer
requests per minute than core.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRateLimitStatus(cmd, apiURL)
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "GitHub API base URL (for GitHub Enterprise)")
	return cmd
}

func runRateLimitStatus(cmd *cobra.Command, apiURL string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var opts []ghclient.ClientOption
	opts = append(opts, ghclient.WithRequestTimeout(cfg.RequestTimeout))
	if apiURL != "" {
		opts = append(opts, ghclient.WithBaseURL(apiURL))
	}

	ctx := cmd.Context()
	client, err := ghclient.NewClient(ctx, cfg.GetGitHubToken(), opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	limits, err := client.RateLimits(ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "GitHub API Rate Limits:")
	fmt.Fprintln(w)
	printRate(w, "Core API:  ", limits.Core)
	printRate(w, "Search API:", limits.Search)
	return nil
}

func printRate(w io.Writer, label string, rate *gh.Rate) {
	if rate == nil {
		return
	}
	fmt.Fprintf(w, "%s %d/%d remaining (%s)\n", label, rate.Remaining, rate.Limit, resetText(time.Until(rate.Reset.Time)))
}

func resetText(d time.Duration) string {
	if age := format.Age(d); age != "now" {
		return "resets in " + age
	}
	return "resets now"
}
