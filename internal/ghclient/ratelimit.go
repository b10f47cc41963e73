package ghclient

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spiffcs/spotlight/internal/constants"
	"github.com/spiffcs/spotlight/internal/log"
)

// ErrRateLimited is returned when the GitHub API rate limit has been exceeded.
var ErrRateLimited = errors.New("rate limited")

// Rate limit resources, as reported in the X-RateLimit-Resource header.
const (
	ResourceCore   = "core"
	ResourceSearch = "search"
)

// RateLimitState tracks the rate limits reported by GitHub for one client.
// Each resource has its own quota; exhausting search leaves core usable.
type RateLimitState struct {
	mu        sync.RWMutex
	resources map[string]*rateLimit
}

type rateLimit struct {
	limited   bool
	resetAt   time.Time
	remaining int
	limit     int
}

// get returns the entry for resource, creating it if needed. Callers hold mu.
func (s *RateLimitState) get(resource string) *rateLimit {
	if s.resources == nil {
		s.resources = make(map[string]*rateLimit)
	}
	rl, ok := s.resources[resource]
	if !ok {
		rl = &rateLimit{}
		s.resources[resource] = rl
	}
	return rl
}

// IsLimited returns true if resource is currently rate limited.
func (s *RateLimitState) IsLimited(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rl, ok := s.resources[resource]
	if !ok || !rl.limited {
		return false
	}
	return time.Now().Before(rl.resetAt)
}

// SetLimited sets the rate limit state of resource.
func (s *RateLimitState) SetLimited(resource string, limited bool, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rl := s.get(resource)
	rl.limited = limited
	rl.resetAt = resetAt
}

// Update updates the rate limit state of resource from response headers.
func (s *RateLimitState) Update(resource string, remaining, limit int, resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rl := s.get(resource)
	rl.remaining = remaining
	rl.limit = limit
	rl.resetAt = resetAt
	rl.limited = remaining == 0
}

// Status returns the last observed rate limit status of resource.
func (s *RateLimitState) Status(resource string) (remaining, limit int, resetAt time.Time, limited bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rl, ok := s.resources[resource]
	if !ok {
		return -1, -1, time.Time{}, false
	}
	return rl.remaining, rl.limit, rl.resetAt, rl.limited && time.Now().Before(rl.resetAt)
}

// requestResource returns the quota a request draws from.
func requestResource(req *http.Request) string {
	if strings.Contains(req.URL.Path, "/search/") {
		return ResourceSearch
	}
	return ResourceCore
}

// rateLimitTransport wraps an http.RoundTripper to handle GitHub rate limits.
// Once a resource is exhausted, requests against it fail fast with
// ErrRateLimited until the reset time.
type rateLimitTransport struct {
	base  http.RoundTripper
	state *RateLimitState
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resource := requestResource(req)
	if t.state.IsLimited(resource) {
		return nil, ErrRateLimited
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	if r := resp.Header.Get("X-RateLimit-Resource"); r != "" {
		resource = r
	}
	remaining, limit, resetAt := parseRateLimitHeaders(resp)
	if remaining >= 0 && limit > 0 {
		t.state.Update(resource, remaining, limit, resetAt)
	}

	if remaining <= constants.RateLimitLowWatermark && remaining > 0 {
		log.Debug("rate limit low", "resource", resource, "path", req.URL.Path, "remaining", remaining, "resets_at", resetAt.Format(time.RFC3339))
	}

	// 403 with an exhausted quota, or 429 (secondary limit)
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		if resp.Header.Get("X-RateLimit-Remaining") == "0" || resp.StatusCode == http.StatusTooManyRequests {
			if resetAt.IsZero() {
				resetAt = time.Now().Add(time.Minute)
			}
			t.state.SetLimited(resource, true, resetAt)
			_ = resp.Body.Close()
			return nil, ErrRateLimited
		}
	}

	return resp, nil
}

// parseRateLimitHeaders extracts rate limit info from response headers.
func parseRateLimitHeaders(resp *http.Response) (remaining, limit int, resetAt time.Time) {
	remaining = -1
	limit = -1

	if remainingStr := resp.Header.Get("X-RateLimit-Remaining"); remainingStr != "" {
		if rem, err := strconv.Atoi(remainingStr); err == nil {
			remaining = rem
		}
	}

	if limitStr := resp.Header.Get("X-RateLimit-Limit"); limitStr != "" {
		if lim, err := strconv.Atoi(limitStr); err == nil {
			limit = lim
		}
	}

	if resetStr := resp.Header.Get("X-RateLimit-Reset"); resetStr != "" {
		if resetTime, err := strconv.ParseInt(resetStr, 10, 64); err == nil {
			resetAt = time.Unix(resetTime, 0)
		}
	}

	return remaining, limit, resetAt
}
