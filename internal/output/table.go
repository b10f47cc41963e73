package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spiffcs/spotlight/internal/banner"
	"github.com/spiffcs/spotlight/internal/format"
	"github.com/spiffcs/spotlight/internal/model"
	"golang.org/x/term"
)

// TableFormatter formats output as a terminal table
type TableFormatter struct {
	Limit int
}

// hyperlink creates a clickable terminal hyperlink using OSC 8
// Format: \033]8;;URL\033\\TEXT\033]8;;\033\\
func hyperlink(text, url string) string {
	// Only use hyperlinks if stdout is a terminal
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

// Column widths
const (
	colRank    = 6
	colHandle  = 28
	colPRs     = 10
	colIssues  = 8
	colTwitter = 20
)

// Format outputs the ranking as a table
func (f *TableFormatter) Format(result *model.Result, w io.Writer) error {
	org := ""
	if result.Organization != nil {
		org = "@" + result.Organization.Login
	}
	fmt.Fprintf(w, "%s %s\n\n", color.New(color.Bold).Sprint(banner.Title(result.WindowDays)), org)

	if len(result.Ranking) == 0 {
		fmt.Fprintf(w, "No contributions in the last %d days.\n", result.WindowDays)
		printFooter(result.Stats, w)
		return nil
	}

	// Header
	fmt.Fprintf(w, "%-*s  %-*s  %*s  %*s  %s\n",
		colRank, "Rank",
		colHandle, "Contributor",
		colPRs, "Merged PRs",
		colIssues, "Issues",
		"Twitter")
	fmt.Fprintln(w, strings.Repeat("-", colRank+colHandle+colPRs+colIssues+colTwitter+8))

	for i, c := range top(result.Ranking, f.Limit) {
		rank := fmt.Sprintf("%d", i+1)
		rankWidth := len(rank)
		if i == 0 && result.HasWinner() {
			rank = "🏆 " + rank
			rankWidth = format.DisplayWidth(rank)
		}

		handle, handleWidth := format.Truncate(c.Handle, colHandle)
		linked := hyperlink(handle, profileURL(c.Handle))
		if i == 0 && result.HasWinner() {
			linked = color.New(color.FgYellow, color.Bold).Sprint(linked)
		}

		twitter := ""
		if c.Profile.TwitterHandle != "" {
			twitter, _ = format.Truncate("@"+c.Profile.TwitterHandle, colTwitter)
		}

		fmt.Fprintf(w, "%s  %s  %*d  %*d  %s\n",
			format.PadRight(rank, rankWidth, colRank),
			format.PadRight(linked, handleWidth, colHandle),
			colPRs, c.MergedPRs,
			colIssues, c.Issues,
			color.CyanString(twitter),
		)
	}

	if len(result.Ranking) > f.Limit && f.Limit > 0 {
		fmt.Fprintf(w, "... and %d more\n", len(result.Ranking)-f.Limit)
	}

	printFooter(result.Stats, w)
	return nil
}

// printFooter prints how each feed ended and what was filtered out
func printFooter(s model.RunStats, w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("━", 60))
	fmt.Fprintf(w, "  merged PRs: %d events over %s (%s)\n", s.PREvents, pages(s.PRPages), stopLabel(s.PRStop))
	fmt.Fprintf(w, "  issues:     %d events over %s (%s)\n", s.IssueEvents, pages(s.IssuePages), stopLabel(s.IssueStop))

	if s.BotsSkipped > 0 {
		fmt.Fprintf(w, "  %d bot events skipped\n", s.BotsSkipped)
	}
	if s.ExcludedSkipped > 0 {
		fmt.Fprintf(w, "  %d events from excluded accounts skipped\n", s.ExcludedSkipped)
	}
	if s.DroppedEvents > 0 {
		fmt.Fprintf(w, "  %s %d events dropped (profile unavailable)\n", color.YellowString("!"), s.DroppedEvents)
	}
}

func pages(n int) string {
	if n == 1 {
		return "1 page"
	}
	return fmt.Sprintf("%d pages", n)
}

func stopLabel(r model.StopReason) string {
	switch r {
	case model.StopExhausted:
		return "complete"
	case model.StopCutoff:
		return "reached window start"
	case model.StopPageCap:
		return color.YellowString("page cap reached")
	case model.StopFetchFailed:
		return color.RedString("fetch failed")
	case model.StopCancelled:
		return color.RedString("cancelled")
	default:
		return "not run"
	}
}
