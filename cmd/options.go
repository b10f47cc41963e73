package cmd

// Options holds the shared command-line options for the spotlight CLI.
type Options struct {
	Organization string
	Window       string // e.g. "1w", "30d"; empty keeps the configured window
	Format       string
	Limit        int
	MaxPages     int
	Exclude      []string
	Verbosity    int
	LogFormat    string
	DryRun       bool
	Prefetch     bool
	BannerOut    string
	APIURL       string // GitHub Enterprise API base URL

	// Schedule options
	Every string // Interval between scheduled runs; empty means the window length

	// Profiling options
	CPUProfile string // Write CPU profile to file
	MemProfile string // Write memory profile to file
	Trace      string // Write execution trace to file
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithOrganization sets the organization to pick a contributor for.
func WithOrganization(org string) Option {
	return func(o *Options) {
		o.Organization = org
	}
}

// WithWindow sets the activity window (e.g., "1d", "1w", "30d").
func WithWindow(window string) Option {
	return func(o *Options) {
		o.Window = window
	}
}

// WithFormat sets the output format (table, json, markdown).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithLimit sets the number of ranked contributors printed.
func WithLimit(limit int) Option {
	return func(o *Options) {
		o.Limit = limit
	}
}

// WithExclude sets handles that are never ranked.
func WithExclude(handles ...string) Option {
	return func(o *Options) {
		o.Exclude = handles
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithDryRun renders the banner without publishing it.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) {
		o.DryRun = dryRun
	}
}

// WithBannerOut sets where the rendered banner is written.
func WithBannerOut(path string) Option {
	return func(o *Options) {
		o.BannerOut = path
	}
}

// WithAPIURL points the GitHub client at a different API host.
func WithAPIURL(u string) Option {
	return func(o *Options) {
		o.APIURL = u
	}
}

// WithEvery sets the interval between scheduled runs.
func WithEvery(every string) Option {
	return func(o *Options) {
		o.Every = every
	}
}
