package format

import (
	"fmt"
	"time"

	"github.com/spiffcs/spotlight/internal/duration"
)

// Age renders d compactly: "now", "5m", "2h", "3d", "2w", "3mo". Negative
// durations render as "now".
func Age(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < duration.Day:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}

	days := int(d / duration.Day)
	switch {
	case days < 7:
		return fmt.Sprintf("%dd", days)
	case days < 30:
		return fmt.Sprintf("%dw", days/7)
	default:
		return fmt.Sprintf("%dmo", days/30)
	}
}
