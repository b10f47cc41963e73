// Package registry accumulates per-handle contributor records for one run.
//
// The registry owns deduplication, exclusion and bot filtering, and fetches
// each handle's profile the first time it is seen. It is not safe for
// concurrent use; a run feeds it from a single goroutine.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spiffcs/spotlight/internal/log"
	"github.com/spiffcs/spotlight/internal/model"
)

// ProfileFetcher looks up a user's profile.
type ProfileFetcher interface {
	User(ctx context.Context, handle string) (*model.Profile, error)
}

// ProfileFetchError reports an event dropped because the author's profile
// could not be fetched.
type ProfileFetchError struct {
	Handle string
	Err    error
}

func (e *ProfileFetchError) Error() string {
	return fmt.Sprintf("failed to fetch profile for %s: %v", e.Handle, e.Err)
}

func (e *ProfileFetchError) Unwrap() error {
	return e.Err
}

// Stats counts registry decisions.
type Stats struct {
	ProfileFetches  int
	DroppedEvents   int
	BotsSkipped     int
	ExcludedSkipped int
}

// Registry maps handles to contributor records.
type Registry struct {
	org     *model.Organization
	fetcher ProfileFetcher

	records  map[string]*model.Contributor
	order    []*model.Contributor
	excluded map[string]struct{}
	bots     map[string]struct{}

	stats Stats
}

// New creates an empty registry for the given organization. Handles in
// excluded are never inserted.
func New(org *model.Organization, fetcher ProfileFetcher, excluded []string) *Registry {
	ex := make(map[string]struct{}, len(excluded))
	for _, h := range excluded {
		if h != "" {
			ex[h] = struct{}{}
		}
	}
	return &Registry{
		org:      org,
		fetcher:  fetcher,
		records:  make(map[string]*model.Contributor),
		excluded: ex,
		bots:     make(map[string]struct{}),
	}
}

// RecordPullRequest counts a merged pull request for handle.
// A non-nil error means the event was dropped; it never invalidates the
// registry.
func (r *Registry) RecordPullRequest(ctx context.Context, handle string, mergedAt time.Time) error {
	if r.blocked(handle) {
		return nil
	}

	c, err := r.lookupOrCreate(ctx, handle)
	if err != nil || c == nil {
		return err
	}

	c.MergedPRs++
	log.Trace("counted merged PR", "handle", handle, "mergedAt", mergedAt, "total", c.MergedPRs)
	return nil
}

// RecordIssue counts an opened issue for handle. A handle already in the
// registry is always counted, even if it has since been flagged as a bot.
func (r *Registry) RecordIssue(ctx context.Context, handle string, createdAt time.Time) error {
	if c, ok := r.records[handle]; ok {
		c.Issues++
		log.Trace("counted issue", "handle", handle, "createdAt", createdAt, "total", c.Issues)
		return nil
	}
	if r.blocked(handle) {
		return nil
	}

	c, err := r.lookupOrCreate(ctx, handle)
	if err != nil || c == nil {
		return err
	}

	c.Issues++
	log.Trace("counted issue", "handle", handle, "createdAt", createdAt, "total", c.Issues)
	return nil
}

// blocked reports whether events from handle are ignored outright.
func (r *Registry) blocked(handle string) bool {
	if handle == "" {
		// deleted accounts show up without a login
		r.stats.DroppedEvents++
		return true
	}
	if _, ok := r.excluded[handle]; ok {
		r.stats.ExcludedSkipped++
		return true
	}
	if _, ok := r.bots[handle]; ok {
		r.stats.BotsSkipped++
		return true
	}
	return false
}

// lookupOrCreate returns the record for handle, fetching the profile on the
// first sighting. It returns (nil, nil) when the handle turns out to be a bot.
func (r *Registry) lookupOrCreate(ctx context.Context, handle string) (*model.Contributor, error) {
	if c, ok := r.records[handle]; ok {
		return c, nil
	}

	r.stats.ProfileFetches++
	profile, err := r.fetcher.User(ctx, handle)
	if err == nil && profile == nil {
		err = errors.New("empty profile")
	}
	if err != nil {
		r.stats.DroppedEvents++
		return nil, &ProfileFetchError{Handle: handle, Err: err}
	}

	if profile.IsBot() {
		log.Debug("skipping bot account", "handle", handle)
		r.bots[handle] = struct{}{}
		r.stats.BotsSkipped++
		return nil, nil
	}

	c := &model.Contributor{
		Handle:       handle,
		Profile:      *profile,
		Organization: r.org,
		Discovered:   len(r.order),
	}
	r.records[handle] = c
	r.order = append(r.order, c)
	log.Debug("new contributor", "handle", handle, "discovered", c.Discovered)
	return c, nil
}

// Get returns the record for handle.
func (r *Registry) Get(handle string) (*model.Contributor, bool) {
	c, ok := r.records[handle]
	return c, ok
}

// IsBot reports whether handle was identified as a machine account.
func (r *Registry) IsBot(handle string) bool {
	_, ok := r.bots[handle]
	return ok
}

// Len returns the number of contributors recorded.
func (r *Registry) Len() int {
	return len(r.order)
}

// Contributors returns all records in discovery order.
func (r *Registry) Contributors() []*model.Contributor {
	out := make([]*model.Contributor, len(r.order))
	copy(out, r.order)
	return out
}

// Stats returns the registry's decision counters.
func (r *Registry) Stats() Stats {
	return r.stats
}
