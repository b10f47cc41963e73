// Package ghclient provides GitHub API client functionality.
package ghclient

import (
	"context"

	"github.com/spiffcs/spotlight/internal/model"
)

// Platform defines the GitHub operations a contributor run depends on.
// Implementations must be safe for use from more than one goroutine, since
// page prefetching may overlap a profile lookup.
type Platform interface {
	// Organization resolves an organization's identity.
	Organization(ctx context.Context, name string) (*model.Organization, error)

	// User fetches a user's profile.
	User(ctx context.Context, handle string) (*model.Profile, error)

	// Search feeds, one page at a time. Pages are 1-based.
	SearchMergedPullRequests(ctx context.Context, org string, page, perPage int) ([]model.PullRequestEvent, error)
	SearchIssues(ctx context.Context, org string, page, perPage int) ([]model.IssueEvent, error)
}

// Ensure Client implements Platform interface.
var _ Platform = (*Client)(nil)
