package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/spiffcs/spotlight/internal/banner"
	"github.com/spiffcs/spotlight/internal/model"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct {
	Limit int
}

// Format outputs the ranking as a Markdown table
func (f *MarkdownFormatter) Format(result *model.Result, w io.Writer) error {
	org := ""
	if result.Organization != nil {
		org = result.Organization.Login
	}

	fmt.Fprintf(w, "# %s: %s\n\n", banner.Title(result.WindowDays), org)

	if !result.HasWinner() {
		fmt.Fprintf(w, "No contributions in the last %d days.\n", result.WindowDays)
		return nil
	}

	fmt.Fprintf(w, "**[@%s](%s)** with %d merged PRs and %d opened issues.\n\n",
		result.Winner.Handle, profileURL(result.Winner.Handle), result.Winner.MergedPRs, result.Winner.Issues)

	fmt.Fprintln(w, "| Rank | Contributor | Merged PRs | Issues |")
	fmt.Fprintln(w, "|-----:|-------------|-----------:|-------:|")
	for i, c := range top(result.Ranking, f.Limit) {
		fmt.Fprintf(w, "| %d | [%s](%s) | %d | %d |\n",
			i+1, escapeMarkdown(c.Handle), profileURL(c.Handle), c.MergedPRs, c.Issues)
	}
	return nil
}

// escapeMarkdown escapes characters that break a table cell or link text.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer("|", `\|`, "[", `\[`, "]", `\]`)
	return r.Replace(s)
}
