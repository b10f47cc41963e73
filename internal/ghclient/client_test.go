package ghclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	gh "github.com/google/go-github/v57/github"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), "test-token",
		WithBaseURL(srv.URL),
		WithRequestTimeout(5*time.Second),
		WithTransport(srv.Client().Transport.(*http.Transport)),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	_, err := NewClient(context.Background(), "")
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("expected ErrNoToken, got %v", err)
	}
}

func TestNewClientFallsBackToEnv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "from-env")

	c, err := NewClient(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()
	if c.token != "from-env" {
		t.Error("expected token to come from GITHUB_TOKEN")
	}
}

func TestOrganization(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/orgs/acme" {
			http.NotFound(w, r)
			return
		}
		writeJSON(t, w, map[string]any{
			"login":      "acme",
			"avatar_url": "https://avatars.example.com/acme",
		})
	}))

	org, err := c.Organization(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if org.Login != "acme" || org.AvatarURL != "https://avatars.example.com/acme" {
		t.Errorf("unexpected organization: %+v", org)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("expected bearer token, got %q", gotAuth)
	}
}

func TestOrganizationErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"login": `))
			},
		},
		{
			name: "missing login",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			if _, err := c.Organization(context.Background(), "acme"); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestUser(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/alice":
			writeJSON(t, w, map[string]any{
				"login":            "alice",
				"avatar_url":       "https://avatars.example.com/alice",
				"bio":              "  builds things  ",
				"twitter_username": "alice_dev",
				"type":             "User",
			})
		case "/users/dependabot[bot]":
			writeJSON(t, w, map[string]any{
				"login": "dependabot[bot]",
				"type":  "Bot",
			})
		default:
			http.NotFound(w, r)
		}
	}))

	p, err := c.User(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Bio != "builds things" {
		t.Errorf("expected trimmed bio, got %q", p.Bio)
	}
	if p.TwitterHandle != "alice_dev" {
		t.Errorf("expected twitter handle, got %q", p.TwitterHandle)
	}
	if p.IsBot() {
		t.Error("alice should not be a bot")
	}

	bot, err := c.User(context.Background(), "dependabot[bot]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bot.IsBot() {
		t.Error("expected dependabot to be a bot")
	}

	if _, err := c.User(context.Background(), "ghost"); err == nil {
		t.Error("expected error for unknown user")
	}
}

func TestSearchMergedPullRequests(t *testing.T) {
	merged := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	updated := merged.Add(36 * time.Hour)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/issues" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("q") != "org:acme is:pr is:merged" {
			t.Errorf("unexpected query %q", q.Get("q"))
		}
		if q.Get("sort") != SortUpdated || q.Get("order") != "desc" {
			t.Errorf("unexpected ordering sort=%q order=%q", q.Get("sort"), q.Get("order"))
		}
		if q.Get("page") != "2" || q.Get("per_page") != "50" {
			t.Errorf("unexpected paging page=%q per_page=%q", q.Get("page"), q.Get("per_page"))
		}
		writeJSON(t, w, map[string]any{
			"total_count": 2,
			"items": []map[string]any{
				{"number": 7, "user": map[string]any{"login": "bob"}, "closed_at": merged, "updated_at": updated, "pull_request": map[string]any{}},
				{"number": 8, "user": nil, "closed_at": merged, "pull_request": map[string]any{}},
			},
		})
	}))

	events, err := c.SearchMergedPullRequests(context.Background(), "acme", 2, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Author != "bob" || events[0].Number != 7 || !events[0].MergedAt.Equal(merged) || !events[0].UpdatedAt.Equal(updated) {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[1].Author != "" {
		t.Errorf("expected empty author for a deleted account, got %q", events[1].Author)
	}
}

func TestSearchIssues(t *testing.T) {
	created := time.Date(2024, 6, 2, 8, 30, 0, 0, time.UTC)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "org:acme is:issue" || q.Get("sort") != SortCreated {
			t.Errorf("unexpected search q=%q sort=%q", q.Get("q"), q.Get("sort"))
		}
		writeJSON(t, w, map[string]any{
			"total_count": 2,
			"items": []map[string]any{
				{"number": 1, "user": map[string]any{"login": "carol"}, "created_at": created},
				{"number": 2, "user": map[string]any{"login": "dan"}, "created_at": created, "pull_request": map[string]any{"url": "x"}},
			},
		})
	}))

	events, err := c.SearchIssues(context.Background(), "acme", 1, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].IsPullRequest || !events[0].CreatedAt.Equal(created) {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if !events[1].IsPullRequest {
		t.Error("expected second event to be flagged as a pull request")
	}
}

func TestRateLimitedSearch(t *testing.T) {
	calls := 0
	reset := time.Now().Add(time.Hour).Unix()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Limit", "30")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset, 10))
		http.Error(w, `{"message":"API rate limit exceeded"}`, http.StatusForbidden)
	}))

	_, err := c.SearchIssues(context.Background(), "acme", 1, 100)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if !c.RateLimitState().IsLimited(ResourceSearch) {
		t.Error("expected search to be rate limited")
	}
	if c.RateLimitState().IsLimited(ResourceCore) {
		t.Error("expected core to stay available")
	}

	// further calls fail fast without reaching the server
	_, err = c.SearchMergedPullRequests(context.Background(), "acme", 1, 100)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 request to reach the server, got %d", calls)
	}
}

func TestRateLimitStateIsPerClient(t *testing.T) {
	a := &RateLimitState{}
	b := &RateLimitState{}
	a.SetLimited(ResourceSearch, true, time.Now().Add(time.Hour))
	if b.IsLimited(ResourceSearch) {
		t.Error("rate limit state leaked between clients")
	}
}

func TestRateLimitTrackedPerResource(t *testing.T) {
	reset := strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10)
	var searchCalls, userCalls int
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Reset", reset)
		switch {
		case r.URL.Path == "/search/issues":
			searchCalls++
			w.Header().Set("X-RateLimit-Resource", "search")
			w.Header().Set("X-RateLimit-Limit", "30")
			w.Header().Set("X-RateLimit-Remaining", "0")
			writeJSON(t, w, map[string]any{"total_count": 0, "items": []any{}})
		case r.URL.Path == "/users/alice":
			userCalls++
			w.Header().Set("X-RateLimit-Resource", "core")
			w.Header().Set("X-RateLimit-Limit", "5000")
			w.Header().Set("X-RateLimit-Remaining", "4999")
			writeJSON(t, w, map[string]any{"login": "alice", "type": "User"})
		default:
			http.NotFound(w, r)
		}
	}))

	if _, err := c.SearchIssues(context.Background(), "acme", 1, 100); err != nil {
		t.Fatalf("unexpected search error: %v", err)
	}

	// the last search request exhausted search, not core
	if _, err := c.User(context.Background(), "alice"); err != nil {
		t.Fatalf("expected user lookup to succeed, got %v", err)
	}
	if userCalls != 1 {
		t.Errorf("expected user request to reach the server, got %d calls", userCalls)
	}

	// a healthy core response does not clear the search limit
	_, err := c.SearchIssues(context.Background(), "acme", 2, 100)
	var rle *gh.RateLimitError
	if !errors.Is(err, ErrRateLimited) && !errors.As(err, &rle) {
		t.Fatalf("expected search to stay rate limited, got %v", err)
	}
	if searchCalls != 1 {
		t.Errorf("expected 1 search request to reach the server, got %d", searchCalls)
	}

	remaining, limit, _, limited := c.RateLimitState().Status(ResourceCore)
	if remaining != 4999 || limit != 5000 || limited {
		t.Errorf("unexpected core status remaining=%d limit=%d limited=%v", remaining, limit, limited)
	}
}

func TestRequestResource(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://api.github.com/search/issues?q=x", ResourceSearch},
		{"https://ghe.example.com/api/v3/search/issues", ResourceSearch},
		{"https://api.github.com/users/alice", ResourceCore},
		{"https://api.github.com/orgs/acme", ResourceCore},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if got := requestResource(req); got != tt.want {
				t.Errorf("requestResource(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestParseRateLimitHeaders(t *testing.T) {
	tests := []struct {
		name          string
		headers       map[string]string
		wantRemaining int
		wantLimit     int
		wantReset     time.Time
	}{
		{
			name:          "no headers",
			headers:       nil,
			wantRemaining: -1,
			wantLimit:     -1,
		},
		{
			name: "all headers",
			headers: map[string]string{
				"X-RateLimit-Remaining": "12",
				"X-RateLimit-Limit":     "30",
				"X-RateLimit-Reset":     "1717243200",
			},
			wantRemaining: 12,
			wantLimit:     30,
			wantReset:     time.Unix(1717243200, 0),
		},
		{
			name: "garbage values",
			headers: map[string]string{
				"X-RateLimit-Remaining": "lots",
				"X-RateLimit-Limit":     "",
			},
			wantRemaining: -1,
			wantLimit:     -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			for k, v := range tt.headers {
				resp.Header.Set(k, v)
			}
			remaining, limit, reset := parseRateLimitHeaders(resp)
			if remaining != tt.wantRemaining || limit != tt.wantLimit || !reset.Equal(tt.wantReset) {
				t.Errorf("got (%d, %d, %v), want (%d, %d, %v)",
					remaining, limit, reset, tt.wantRemaining, tt.wantLimit, tt.wantReset)
			}
		})
	}
}
