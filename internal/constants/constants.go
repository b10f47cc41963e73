// Package constants provides a centralized location for the defaults and
// magic numbers used throughout spotlight.
package constants

import "time"

// Search pagination defaults
const (
	// DefaultPageSize is the number of search results requested per page.
	// 100 is the maximum GitHub's search API accepts.
	DefaultPageSize = 100

	// MaxPageSize is the upper bound GitHub accepts for per_page.
	MaxPageSize = 100

	// DefaultMaxPages caps pagination per feed. GitHub search never returns
	// more than 1000 results, so 10 pages of 100 covers everything reachable.
	DefaultMaxPages = 10
)

// Run defaults
const (
	// DefaultWindowDays is the rolling window when none is configured.
	DefaultWindowDays = 7

	// DefaultRequestTimeout bounds every individual GitHub API call.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultAvatarTimeout bounds avatar downloads during banner rendering.
	DefaultAvatarTimeout = 15 * time.Second
)

// Rate limiting constants
const (
	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged. Search allows 30 requests per minute, so this
	// is deliberately small.
	RateLimitLowWatermark = 5
)

// Banner geometry
const (
	// BannerWidth and BannerHeight are the dimensions of the rendered PNG.
	BannerWidth  = 1200
	BannerHeight = 675

	// AvatarSize is the edge length of the contributor avatar.
	AvatarSize = 200

	// OrgAvatarSmall is used in the layout that shows an issue count,
	// OrgAvatarLarge in the layout without one.
	OrgAvatarSmall = 80
	OrgAvatarLarge = 160

	// BioMaxLen is the bio length above which it gets cut.
	BioMaxLen = 50

	// BioCutLen is where a long bio is cut before the ellipsis.
	BioCutLen = 37
)
