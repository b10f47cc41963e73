// Package aggregate runs one contributor selection for an organization.
//
// A run resolves the organization, walks the merged pull request feed and
// then the issue feed, and ranks everyone it saw. Feed and profile failures
// degrade the result; only a failed organization lookup aborts the run.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spiffcs/spotlight/internal/constants"
	"github.com/spiffcs/spotlight/internal/ghclient"
	"github.com/spiffcs/spotlight/internal/log"
	"github.com/spiffcs/spotlight/internal/model"
	"github.com/spiffcs/spotlight/internal/paginate"
	"github.com/spiffcs/spotlight/internal/rank"
	"github.com/spiffcs/spotlight/internal/registry"
)

// ErrResolution is returned when the organization could not be resolved.
var ErrResolution = errors.New("organization could not be resolved")

// Config holds the settings for a run.
type Config struct {
	Organization string
	WindowDays   int
	PageSize     int
	MaxPages     int
	Excluded     []string
	Prefetch     bool
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock sets the clock used as the reference time for the window.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// Aggregator selects the top contributor of an organization. It keeps no
// state between calls to Aggregate.
type Aggregator struct {
	platform ghclient.Platform
	cfg      Config
	now      func() time.Time
}

// New creates an Aggregator.
func New(platform ghclient.Platform, cfg Config, opts ...Option) *Aggregator {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = constants.DefaultWindowDays
	}
	a := &Aggregator{
		platform: platform,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Window returns the length of the activity window.
func (a *Aggregator) Window() time.Duration {
	return time.Duration(a.cfg.WindowDays) * 24 * time.Hour
}

// Aggregate performs one run. A nil error means the result is either a
// winner or no winner; a non-nil error means the run aborted and nothing
// should be published.
func (a *Aggregator) Aggregate(ctx context.Context) (*model.Result, error) {
	r := &run{org: a.cfg.Organization, state: StateStart}

	r.transition(StateResolveOrg)
	org, err := a.platform.Organization(ctx, a.cfg.Organization)
	if err != nil {
		r.transition(StateAborted)
		return nil, fmt.Errorf("%w: %s: %w", ErrResolution, a.cfg.Organization, err)
	}
	log.Info("resolved organization", "org", org.Login)

	now := a.now()
	cutoff := now.Add(-a.Window())
	reg := registry.New(org, a.platform, a.cfg.Excluded)
	var stats model.RunStats

	r.transition(StatePaginatePRs)
	prs := paginate.New(
		func(ctx context.Context, page, perPage int) ([]model.PullRequestEvent, error) {
			return a.platform.SearchMergedPullRequests(ctx, org.Login, page, perPage)
		},
		paginate.Options[model.PullRequestEvent]{
			Name:      "merged pull requests",
			PerPage:   a.cfg.PageSize,
			MaxPages:  a.cfg.MaxPages,
			Window:    a.Window(),
			Timestamp: model.PullRequestEvent.SortTime,
			Now:       func() time.Time { return now },
			Prefetch:  a.cfg.Prefetch,
		},
	)
	for prs.Next(ctx) {
		ev := prs.Item()
		stats.PREvents++
		// Updated recently but merged before the window.
		if ev.MergedAt.Before(cutoff) {
			stats.StaleMergedPRs++
			continue
		}
		r.absorb(reg.RecordPullRequest(ctx, ev.Author, ev.MergedAt))
		log.Progress("merged pull requests: %d", stats.PREvents)
	}
	log.ProgressDone()
	stats.PRPages, stats.PRStop = prs.Pages(), prs.StopReason()
	if err := r.feedDone("merged pull requests", prs.StopReason(), prs.Err()); err != nil {
		return nil, err
	}

	r.transition(StatePaginateIssues)
	issues := paginate.New(
		func(ctx context.Context, page, perPage int) ([]model.IssueEvent, error) {
			return a.platform.SearchIssues(ctx, org.Login, page, perPage)
		},
		paginate.Options[model.IssueEvent]{
			Name:      "issues",
			PerPage:   a.cfg.PageSize,
			MaxPages:  a.cfg.MaxPages,
			Window:    a.Window(),
			Timestamp: func(e model.IssueEvent) time.Time { return e.CreatedAt },
			Now:       func() time.Time { return now },
			Prefetch:  a.cfg.Prefetch,
		},
	)
	for issues.Next(ctx) {
		ev := issues.Item()
		stats.IssueEvents++
		if ev.IsPullRequest {
			stats.PullRequestIssues++
			continue
		}
		r.absorb(reg.RecordIssue(ctx, ev.Author, ev.CreatedAt))
		log.Progress("issues: %d", stats.IssueEvents)
	}
	log.ProgressDone()
	stats.IssuePages, stats.IssueStop = issues.Pages(), issues.StopReason()
	if err := r.feedDone("issues", issues.StopReason(), issues.Err()); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		r.transition(StateAborted)
		return nil, fmt.Errorf("run cancelled: %w", err)
	}

	r.transition(StateRank)
	rs := reg.Stats()
	stats.ProfileFetches = rs.ProfileFetches
	stats.DroppedEvents = rs.DroppedEvents
	stats.BotsSkipped = rs.BotsSkipped
	stats.ExcludedSkipped = rs.ExcludedSkipped

	result := &model.Result{
		Organization: org,
		Ranking:      rank.Rank(reg.Contributors()),
		WindowDays:   a.cfg.WindowDays,
		Stats:        stats,
	}
	if winner := rank.Winner(result.Ranking); winner != nil {
		result.Outcome = model.OutcomeWinner
		result.Winner = winner
		r.transition(StateWinner)
		log.Info("selected top contributor", "org", org.Login, "handle", winner.Handle,
			"mergedPRs", winner.MergedPRs, "issues", winner.Issues)
	} else {
		result.Outcome = model.OutcomeNoWinner
		r.transition(StateNoWinner)
		log.Info("no contributor qualified in the window", "org", org.Login, "windowDays", a.cfg.WindowDays)
	}

	return result, nil
}

// run tracks the state of a single Aggregate call.
type run struct {
	org   string
	state State
}

func (r *run) transition(next State) {
	log.Debug("aggregate state", "org", r.org, "from", r.state, "to", next)
	r.state = next
}

// absorb logs an item-scoped failure. The event is already dropped.
func (r *run) absorb(err error) {
	if err == nil {
		return
	}
	var pfe *registry.ProfileFetchError
	if errors.As(err, &pfe) {
		log.Warn("dropping event, profile unavailable", "handle", pfe.Handle, "error", pfe.Err)
		return
	}
	log.Warn("dropping event", "error", err)
}

// feedDone reports how a feed ended. Cancellation by the caller aborts the
// run; a failed page only ends that feed.
func (r *run) feedDone(feed string, reason model.StopReason, err error) error {
	switch reason {
	case model.StopCancelled:
		r.transition(StateAborted)
		return fmt.Errorf("run cancelled while paginating %s: %w", feed, err)
	case model.StopFetchFailed:
		log.Warn("feed stopped early", "feed", feed, "error", err)
	default:
		log.Debug("feed finished", "feed", feed, "reason", reason)
	}
	return nil
}
