package banner

import (
	"fmt"
	"strings"

	"github.com/spiffcs/spotlight/internal/constants"
	"github.com/spiffcs/spotlight/internal/model"
)

// Title names the period covered by a window, e.g. "Contributor of the Week".
func Title(windowDays int) string {
	switch windowDays {
	case 1:
		return "Contributor of the Day"
	case 7:
		return "Contributor of the Week"
	case 30:
		return "Contributor of the Month"
	default:
		return fmt.Sprintf("Contributor of the last %d Days", windowDays)
	}
}

// DiscordCaption is the message posted alongside the banner in Discord.
// The handle is set in inline code so Discord does not resolve it as a mention.
func DiscordCaption(c *model.Contributor, windowDays int) string {
	return caption(c, "`"+c.Handle+"`", windowDays)
}

// TwitterCaption is the tweet text. The contributor is mentioned by their
// Twitter handle when their profile links one.
func TwitterCaption(c *model.Contributor, windowDays int) string {
	return caption(c, c.SocialHandle(), windowDays)
}

func caption(c *model.Contributor, who string, windowDays int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The top %s is %s with %d merged prs", strings.ToLower(Title(windowDays)), who, c.MergedPRs)
	if c.Issues > 0 {
		fmt.Fprintf(&b, " and %d opened issues", c.Issues)
	}
	b.WriteString(".")
	return b.String()
}

// Bio shortens a profile bio to fit the banner.
func Bio(bio string) string {
	runes := []rune(bio)
	if len(runes) > constants.BioMaxLen {
		return string(runes[:constants.BioCutLen]) + "..."
	}
	return bio
}
