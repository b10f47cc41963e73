// Package output renders a run's ranking for the terminal, for machines, and
// for pasting into issues or chat.
package output

import (
	"fmt"
	"io"

	"github.com/spiffcs/spotlight/internal/model"
)

// Format represents the output format
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// DefaultLimit is the number of ranked contributors shown.
const DefaultLimit = 10

// Formatter defines the interface for output formatters
type Formatter interface {
	Format(result *model.Result, w io.Writer) error
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatJSON, FormatMarkdown:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use table, json or markdown)", s)
	}
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format, limit int) Formatter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true, Limit: limit}
	case FormatMarkdown:
		return &MarkdownFormatter{Limit: limit}
	default:
		return &TableFormatter{Limit: limit}
	}
}

func top(ranking []*model.Contributor, limit int) []*model.Contributor {
	if limit > 0 && len(ranking) > limit {
		return ranking[:limit]
	}
	return ranking
}

func profileURL(handle string) string {
	return "https://github.com/" + handle
}
