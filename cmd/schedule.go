package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spiffcs/spotlight/internal/duration"
	"github.com/spiffcs/spotlight/internal/log"
)

// NewCmdSchedule creates the schedule command.
func NewCmdSchedule(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run on a fixed interval until interrupted",
		Long: `Runs once immediately and then again every interval until SIGINT or
SIGTERM. The interval defaults to the window, so a weekly window announces
a contributor of the week every week. A failed run is logged and the
schedule carries on.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSchedule(cmd, opts)
		},
	}

	addSelectionFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.Every, "every", "", "Interval between runs (e.g., 1d, 1w); defaults to the window")
	return cmd
}

func runSchedule(cmd *cobra.Command, opts *Options) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := newRunner(cmd, opts)
	if err != nil {
		return err
	}

	every, err := scheduleInterval(opts.Every, r.cfg.WindowDays)
	if err != nil {
		return err
	}

	log.Info("starting schedule", "org", r.cfg.Organization, "windowDays", r.cfg.WindowDays, "every", every)
	return schedule(ctx, every, r.run)
}

// scheduleInterval parses every, falling back to the window length.
func scheduleInterval(every string, windowDays int) (time.Duration, error) {
	if every == "" {
		return time.Duration(windowDays) * duration.Day, nil
	}
	d, err := duration.Parse(every)
	if err != nil {
		return 0, fmt.Errorf("invalid interval: %w", err)
	}
	return d, nil
}

// schedule calls run now and then on every tick until ctx is done. Runs
// never overlap; a tick that fires during a run is coalesced by the ticker.
func schedule(ctx context.Context, every time.Duration, run func(context.Context) error) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for n := 1; ; n++ {
		log.Info("starting scheduled run", "run", n)
		if err := run(ctx); err != nil && ctx.Err() == nil {
			log.Error("scheduled run failed", "run", n, "error", err)
		}

		select {
		case <-ctx.Done():
			log.Info("schedule stopped", "runs", n)
			return nil
		case <-ticker.C:
		}
	}
}
