package model

// AccountType is the account kind GitHub reports for a user.
type AccountType string

const (
	AccountUser         AccountType = "User"
	AccountBot          AccountType = "Bot"
	AccountOrganization AccountType = "Organization"
)

// Profile holds the user details fetched on the first sighting of a handle.
type Profile struct {
	AvatarURL     string      `json:"avatarUrl"`
	Bio           string      `json:"bio,omitempty"`
	TwitterHandle string      `json:"twitterHandle,omitempty"`
	AccountType   AccountType `json:"accountType"`
}

// IsBot reports whether the profile belongs to a machine account.
func (p *Profile) IsBot() bool {
	return p != nil && p.AccountType == AccountBot
}

// Contributor accumulates the activity of a single handle during one run.
// MergedPRs and Issues only ever increase.
type Contributor struct {
	Handle       string        `json:"handle"`
	Profile      Profile       `json:"profile"`
	MergedPRs    int           `json:"mergedPrs"`
	Issues       int           `json:"issues"`
	Organization *Organization `json:"-"`

	// Discovered is the zero-based order in which the handle was first seen.
	// Ranking uses it to break ties.
	Discovered int `json:"discovered"`
}

// SocialHandle returns the name to mention on social media: the linked
// Twitter handle prefixed with "@" when present, the GitHub login otherwise.
func (c *Contributor) SocialHandle() string {
	if c.Profile.TwitterHandle != "" {
		return "@" + c.Profile.TwitterHandle
	}
	return c.Handle
}
