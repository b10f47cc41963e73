package model

// Outcome is the terminal state of a successful run.
type Outcome string

const (
	// OutcomeWinner means a contributor was selected.
	OutcomeWinner Outcome = "winner"
	// OutcomeNoWinner means the run completed but nobody qualified in the window.
	OutcomeNoWinner Outcome = "no_winner"
)

// StopReason records why a feed stopped paginating.
type StopReason string

const (
	StopNone        StopReason = ""
	StopExhausted   StopReason = "exhausted"
	StopCutoff      StopReason = "cutoff"
	StopPageCap     StopReason = "page_cap"
	StopFetchFailed StopReason = "fetch_failed"
	StopCancelled   StopReason = "cancelled"
)

// RunStats counts what happened during a run, including every absorbed error.
type RunStats struct {
	PRPages           int        `json:"prPages"`
	IssuePages        int        `json:"issuePages"`
	PREvents          int        `json:"prEvents"`
	IssueEvents       int        `json:"issueEvents"`
	StaleMergedPRs    int        `json:"staleMergedPRs"`
	PRStop            StopReason `json:"prStop"`
	IssueStop         StopReason `json:"issueStop"`
	ProfileFetches    int        `json:"profileFetches"`
	DroppedEvents     int        `json:"droppedEvents"`
	BotsSkipped       int        `json:"botsSkipped"`
	ExcludedSkipped   int        `json:"excludedSkipped"`
	PullRequestIssues int        `json:"pullRequestIssues"`
}

// Result is what a completed run hands to downstream consumers.
type Result struct {
	Outcome      Outcome        `json:"outcome"`
	Organization *Organization  `json:"organization"`
	Winner       *Contributor   `json:"winner,omitempty"`
	Ranking      []*Contributor `json:"ranking"`
	WindowDays   int            `json:"windowDays"`
	Stats        RunStats       `json:"stats"`
}

// HasWinner reports whether the run selected a contributor.
func (r *Result) HasWinner() bool {
	return r != nil && r.Outcome == OutcomeWinner && r.Winner != nil
}
