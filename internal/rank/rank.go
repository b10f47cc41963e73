// Package rank orders contributors to pick the winner of a run.
package rank

import (
	"cmp"
	"slices"

	"github.com/spiffcs/spotlight/internal/model"
)

// Compare orders contributors by merged pull requests, most first. Equal
// counts fall back to discovery order, so whoever was seen first ranks
// higher. Issue counts never affect the order.
func Compare(a, b *model.Contributor) int {
	if c := cmp.Compare(b.MergedPRs, a.MergedPRs); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Discovered, b.Discovered); c != 0 {
		return c
	}
	return cmp.Compare(a.Handle, b.Handle)
}

// Rank returns a new slice holding contributors in ranked order. The input
// is not modified.
func Rank(contributors []*model.Contributor) []*model.Contributor {
	ranked := slices.Clone(contributors)
	slices.SortStableFunc(ranked, Compare)
	return ranked
}

// Winner returns the top-ranked contributor, or nil when there are none.
func Winner(contributors []*model.Contributor) *model.Contributor {
	if len(contributors) == 0 {
		return nil
	}
	return slices.MinFunc(contributors, Compare)
}
