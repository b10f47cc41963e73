package ghclient

import (
	"context"
	"fmt"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/spotlight/internal/log"
	"github.com/spiffcs/spotlight/internal/model"
)

// SearchMergedPullRequests fetches one page of merged pull requests in org,
// most recently updated first.
func (c *Client) SearchMergedPullRequests(ctx context.Context, org string, page, perPage int) ([]model.PullRequestEvent, error) {
	issues, err := c.searchIssues(ctx, MergedPullRequestQuery(org), SortUpdated, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to search merged pull requests: %w", err)
	}

	events := make([]model.PullRequestEvent, 0, len(issues))
	for _, issue := range issues {
		events = append(events, model.PullRequestEvent{
			Number:    issue.GetNumber(),
			Author:    issue.GetUser().GetLogin(),
			MergedAt:  mergedAt(issue),
			UpdatedAt: issue.GetUpdatedAt().Time,
		})
	}
	return events, nil
}

// SearchIssues fetches one page of issues in org, newest first.
func (c *Client) SearchIssues(ctx context.Context, org string, page, perPage int) ([]model.IssueEvent, error) {
	issues, err := c.searchIssues(ctx, IssueQuery(org), SortCreated, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to search issues: %w", err)
	}

	events := make([]model.IssueEvent, 0, len(issues))
	for _, issue := range issues {
		events = append(events, model.IssueEvent{
			Number:        issue.GetNumber(),
			Author:        issue.GetUser().GetLogin(),
			CreatedAt:     issue.GetCreatedAt().Time,
			IsPullRequest: issue.IsPullRequest(),
		})
	}
	return events, nil
}

func (c *Client) searchIssues(ctx context.Context, query, sort string, page, perPage int) ([]*gh.Issue, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	opts := &gh.SearchOptions{
		Sort:  sort,
		Order: "desc",
		ListOptions: gh.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	log.Debug("searching", "query", query, "page", page, "perPage", perPage)
	result, _, err := c.client.Search.Issues(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	if result.GetIncompleteResults() {
		log.Warn("search results incomplete", "query", query, "page", page)
	}
	return result.Issues, nil
}

// mergedAt returns when a merged pull request search hit was merged. Search
// results carry the merge through closed_at, which GitHub sets at merge time.
func mergedAt(issue *gh.Issue) time.Time {
	return issue.GetClosedAt().Time
}
