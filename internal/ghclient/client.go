package ghclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/spotlight/internal/constants"
	"github.com/spiffcs/spotlight/internal/log"
	"github.com/spiffcs/spotlight/internal/model"
	"golang.org/x/oauth2"
)

// ErrNoToken is returned when no GitHub token is available.
var ErrNoToken = errors.New("GitHub token not provided. Set the GITHUB_TOKEN environment variable")

// Client wraps the GitHub API client for a single run.
type Client struct {
	client    *gh.Client
	transport *http.Transport
	limits    *RateLimitState
	timeout   time.Duration
	// token is intentionally unexported. NEVER add String(), MarshalJSON(),
	// or any method that could expose this value in logs or serialized output.
	token string
}

type clientOptions struct {
	baseURL   string
	timeout   time.Duration
	transport *http.Transport
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

// WithBaseURL points the client at a different API root, such as a GitHub
// Enterprise instance or a test server.
func WithBaseURL(u string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = u
	}
}

// WithRequestTimeout bounds every API call. Zero keeps the default.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithTransport sets the underlying HTTP transport.
func WithTransport(t *http.Transport) ClientOption {
	return func(o *clientOptions) {
		o.transport = t
	}
}

// NewClient creates a new GitHub client using a personal access token.
// The client owns its connection pool; call Close when the run is done.
func NewClient(ctx context.Context, token string, opts ...ClientOption) (*Client, error) {
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return nil, ErrNoToken
	}

	o := clientOptions{timeout: constants.DefaultRequestTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.transport == nil {
		o.transport = http.DefaultTransport.(*http.Transport).Clone()
	}

	limits := &RateLimitState{}
	httpClient := &http.Client{
		Transport: &rateLimitTransport{
			base: &oauth2.Transport{
				Base:   o.transport,
				Source: oauth2.ReuseTokenSource(nil, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})),
			},
			state: limits,
		},
	}

	client := gh.NewClient(httpClient)
	if o.baseURL != "" {
		base := o.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", o.baseURL, err)
		}
		client.BaseURL = u
	}

	log.Debug("github client ready", "api", client.BaseURL.String(), "timeout", o.timeout)

	return &Client{
		client:    client,
		transport: o.transport,
		limits:    limits,
		timeout:   o.timeout,
		token:     token,
	}, nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

// RateLimitState returns the rate limit state observed by this client.
func (c *Client) RateLimitState() *RateLimitState {
	return c.limits
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// Organization resolves an organization's identity.
func (c *Client) Organization(ctx context.Context, name string) (*model.Organization, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	log.Debug("fetching organization", "org", name)
	org, _, err := c.client.Organizations.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get organization %s: %w", name, err)
	}
	if org.GetLogin() == "" {
		return nil, fmt.Errorf("failed to get organization %s: response has no login", name)
	}

	return &model.Organization{
		Login:     org.GetLogin(),
		AvatarURL: org.GetAvatarURL(),
	}, nil
}

// User fetches a user's profile.
func (c *Client) User(ctx context.Context, handle string) (*model.Profile, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	log.Debug("fetching user", "handle", handle)
	user, _, err := c.client.Users.Get(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", handle, err)
	}

	return &model.Profile{
		AvatarURL:     user.GetAvatarURL(),
		Bio:           strings.TrimSpace(user.GetBio()),
		TwitterHandle: user.GetTwitterUsername(),
		AccountType:   model.AccountType(user.GetType()),
	}, nil
}

// RateLimits fetches the current GitHub API rate limit status.
func (c *Client) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limits: %w", err)
	}
	return limits, nil
}
