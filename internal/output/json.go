package output

import (
	"encoding/json"
	"io"

	"github.com/spiffcs/spotlight/internal/model"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
	Limit  int
}

// JSONOutput is the document written by JSONFormatter.
type JSONOutput struct {
	Outcome      model.Outcome       `json:"outcome"`
	Organization *model.Organization `json:"organization"`
	WindowDays   int                 `json:"windowDays"`
	Winner       *JSONContributor    `json:"winner,omitempty"`
	Ranking      []JSONContributor   `json:"ranking"`
	Stats        model.RunStats      `json:"stats"`
}

// JSONContributor is one ranked contributor.
type JSONContributor struct {
	Rank      int    `json:"rank"`
	Handle    string `json:"handle"`
	MergedPRs int    `json:"mergedPRs"`
	Issues    int    `json:"issues"`
	Twitter   string `json:"twitter,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	URL       string `json:"url"`
}

func toJSONContributor(rank int, c *model.Contributor) JSONContributor {
	return JSONContributor{
		Rank:      rank,
		Handle:    c.Handle,
		MergedPRs: c.MergedPRs,
		Issues:    c.Issues,
		Twitter:   c.Profile.TwitterHandle,
		AvatarURL: c.Profile.AvatarURL,
		URL:       profileURL(c.Handle),
	}
}

// Format outputs the result as JSON
func (f *JSONFormatter) Format(result *model.Result, w io.Writer) error {
	out := JSONOutput{
		Outcome:      result.Outcome,
		Organization: result.Organization,
		WindowDays:   result.WindowDays,
		Ranking:      []JSONContributor{},
		Stats:        result.Stats,
	}
	for i, c := range top(result.Ranking, f.Limit) {
		out.Ranking = append(out.Ranking, toJSONContributor(i+1, c))
	}
	if result.HasWinner() {
		winner := toJSONContributor(1, result.Winner)
		out.Winner = &winner
	}

	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(out)
}
