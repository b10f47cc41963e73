// Package paginate walks GitHub-style search endpoints page by page.
//
// A Paginator hands out one item at a time so the caller can stop in the
// middle of a page. Pagination ends on the first empty page, on the first item
// older than the configured window, on the page cap, or on a fetch failure.
// The window cutoff assumes the endpoint returns items newest-first; an
// out-of-order page ends pagination early.
package paginate

import (
	"context"
	"fmt"
	"time"

	"github.com/spiffcs/spotlight/internal/constants"
	"github.com/spiffcs/spotlight/internal/log"
	"github.com/spiffcs/spotlight/internal/model"
)

// FetchFunc fetches a single page. Pages are numbered from 1.
type FetchFunc[T any] func(ctx context.Context, page, perPage int) ([]T, error)

// Options configures a Paginator.
type Options[T any] struct {
	// Name identifies the feed in log lines.
	Name string

	// PerPage is the page size requested from the endpoint.
	PerPage int

	// MaxPages is the hard ceiling on pages fetched.
	MaxPages int

	// Window is the maximum item age. Zero disables the cutoff.
	Window time.Duration

	// Timestamp extracts the time used for the window cutoff.
	Timestamp func(T) time.Time

	// Now returns the reference time for item ages. It is read once, when
	// the Paginator is created.
	Now func() time.Time

	// Prefetch requests the next page while the current one is consumed.
	// Items are still handed out strictly in page order.
	Prefetch bool
}

// FetchError reports a page that could not be fetched.
type FetchError struct {
	Feed string
	Page int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s page %d: %v", e.Feed, e.Page, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type pageResult[T any] struct {
	page  int
	items []T
	err   error
}

// Paginator is a lazy, finite, non-restartable cursor over a paginated feed.
// It is not safe for concurrent use.
type Paginator[T any] struct {
	fetch FetchFunc[T]
	opts  Options[T]
	now   time.Time

	requested int // highest page number requested
	consumed  int // pages whose results were handed to the cursor
	buf       []T
	idx       int
	cur       T

	stop model.StopReason
	err  error

	pending        chan pageResult[T]
	cancelPrefetch context.CancelFunc
}

// New creates a Paginator. Zero PerPage and MaxPages fall back to the
// platform defaults.
func New[T any](fetch FetchFunc[T], opts Options[T]) *Paginator[T] {
	if opts.PerPage <= 0 || opts.PerPage > constants.MaxPageSize {
		opts.PerPage = constants.DefaultPageSize
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = constants.DefaultMaxPages
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Name == "" {
		opts.Name = "feed"
	}
	return &Paginator[T]{
		fetch: fetch,
		opts:  opts,
		now:   opts.Now(),
	}
}

// Next advances to the next item. It returns false once pagination has
// stopped; StopReason and Err explain why.
func (p *Paginator[T]) Next(ctx context.Context) bool {
	if p.stop != model.StopNone {
		return false
	}

	for {
		if p.idx < len(p.buf) {
			item := p.buf[p.idx]
			p.idx++
			if p.tooOld(item) {
				p.finish(model.StopCutoff, nil)
				return false
			}
			p.cur = item
			return true
		}

		if p.consumed >= p.opts.MaxPages {
			p.finish(model.StopPageCap, nil)
			return false
		}
		if err := ctx.Err(); err != nil {
			p.finish(model.StopCancelled, err)
			return false
		}

		res := p.nextPage(ctx)
		if res.err != nil {
			if ctx.Err() != nil {
				p.finish(model.StopCancelled, ctx.Err())
				return false
			}
			p.finish(model.StopFetchFailed, &FetchError{Feed: p.opts.Name, Page: res.page, Err: res.err})
			return false
		}

		p.consumed++
		log.Debug("fetched page", "feed", p.opts.Name, "page", res.page, "items", len(res.items))

		if len(res.items) == 0 {
			p.finish(model.StopExhausted, nil)
			return false
		}

		p.buf = res.items
		p.idx = 0
		p.maybePrefetch(ctx, len(res.items))
	}
}

// Item returns the current item. Only valid after Next returned true.
func (p *Paginator[T]) Item() T {
	return p.cur
}

// Err returns the error that stopped pagination, if any. A fetch failure is
// a *FetchError; cancellation of the caller's context returns ctx.Err().
func (p *Paginator[T]) Err() error {
	return p.err
}

// StopReason returns why pagination stopped, or StopNone while still running.
func (p *Paginator[T]) StopReason() model.StopReason {
	return p.stop
}

// Pages returns the number of pages whose results were consumed.
func (p *Paginator[T]) Pages() int {
	return p.consumed
}

func (p *Paginator[T]) tooOld(item T) bool {
	if p.opts.Window <= 0 || p.opts.Timestamp == nil {
		return false
	}
	return p.now.Sub(p.opts.Timestamp(item)) > p.opts.Window
}

func (p *Paginator[T]) nextPage(ctx context.Context) pageResult[T] {
	if p.pending != nil {
		res := <-p.pending
		p.cancelPrefetch()
		p.pending = nil
		p.cancelPrefetch = nil
		return res
	}
	p.requested++
	items, err := p.fetch(ctx, p.requested, p.opts.PerPage)
	return pageResult[T]{page: p.requested, items: items, err: err}
}

// maybePrefetch starts fetching the following page in the background. A
// short page means the feed is about to run dry, so nothing is prefetched.
func (p *Paginator[T]) maybePrefetch(ctx context.Context, got int) {
	if !p.opts.Prefetch || got < p.opts.PerPage || p.consumed >= p.opts.MaxPages {
		return
	}

	p.requested++
	page := p.requested
	pctx, cancel := context.WithCancel(ctx)
	ch := make(chan pageResult[T], 1)
	p.pending = ch
	p.cancelPrefetch = cancel

	go func() {
		items, err := p.fetch(pctx, page, p.opts.PerPage)
		ch <- pageResult[T]{page: page, items: items, err: err}
	}()
}

func (p *Paginator[T]) finish(reason model.StopReason, err error) {
	p.stop = reason
	p.err = err
	p.buf = nil
	var zero T
	p.cur = zero
	if p.cancelPrefetch != nil {
		p.cancelPrefetch()
		p.cancelPrefetch = nil
		p.pending = nil
	}
}
