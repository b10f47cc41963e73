package model

import "time"

// PullRequestEvent is a merged pull request found by the search feed.
type PullRequestEvent struct {
	Number    int       `json:"number"`
	Author    string    `json:"author"`
	MergedAt  time.Time `json:"mergedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SortTime returns the time the search feed orders pull requests by. A pull
// request is never merged after its last update, so once SortTime falls out
// of the window every later merge has too.
func (e PullRequestEvent) SortTime() time.Time {
	if e.UpdatedAt.IsZero() {
		return e.MergedAt
	}
	return e.UpdatedAt
}

// IssueEvent is an issue found by the search feed. GitHub's issue search can
// return pull requests too; those have IsPullRequest set.
type IssueEvent struct {
	Number        int       `json:"number"`
	Author        string    `json:"author"`
	CreatedAt     time.Time `json:"createdAt"`
	IsPullRequest bool      `json:"isPullRequest"`
}
