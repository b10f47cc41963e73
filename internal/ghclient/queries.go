package ghclient

import "fmt"

// Search sort keys understood by the GitHub search API.
const (
	SortCreated = "created"
	SortUpdated = "updated"
)

// MergedPullRequestQuery returns the search query for merged pull requests
// across every repository owned by org.
func MergedPullRequestQuery(org string) string {
	return fmt.Sprintf("org:%s is:pr is:merged", org)
}

// IssueQuery returns the search query for issues opened in any repository
// owned by org.
func IssueQuery(org string) string {
	return fmt.Sprintf("org:%s is:issue", org)
}
