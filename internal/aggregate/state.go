package aggregate

// State is a step of a run.
type State int

const (
	StateStart State = iota
	StateResolveOrg
	StatePaginatePRs
	StatePaginateIssues
	StateRank
	StateWinner
	StateNoWinner
	StateAborted
)

var stateNames = map[State]string{
	StateStart:          "start",
	StateResolveOrg:     "resolve_org",
	StatePaginatePRs:    "paginate_prs",
	StatePaginateIssues: "paginate_issues",
	StateRank:           "rank",
	StateWinner:         "winner",
	StateNoWinner:       "no_winner",
	StateAborted:        "aborted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
