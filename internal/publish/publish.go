// Package publish delivers a rendered banner to chat and social channels.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/spiffcs/spotlight/internal/log"
	"github.com/spiffcs/spotlight/internal/model"
	"golang.org/x/sync/errgroup"
)

// ImageName is the file name attached to posts.
const ImageName = "contributor.png"

// Post is what gets published for a winning run.
type Post struct {
	Contributor *model.Contributor
	WindowDays  int
	Image       []byte
}

// Publisher delivers a Post to one channel.
type Publisher interface {
	// Name identifies the channel in logs and errors.
	Name() string
	Publish(ctx context.Context, post Post) error
}

// All publishes post to every publisher concurrently. One channel failing
// does not stop the others; the returned error joins every failure.
func All(ctx context.Context, post Post, pubs ...Publisher) error {
	if post.Contributor == nil {
		return errors.New("nothing to publish: no contributor")
	}

	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range pubs {
		g.Go(func() error {
			if err := p.Publish(gctx, post); err != nil {
				log.Error("publish failed", "target", p.Name(), "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("failed to publish to %s: %w", p.Name(), err))
				mu.Unlock()
				return nil
			}
			log.Info("published", "target", p.Name(), "handle", post.Contributor.Handle)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// checkResponse turns an unsuccessful HTTP response into an error carrying a
// short excerpt of the body.
func checkResponse(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return fmt.Errorf("HTTP %d: %s", resp.StatusCode, msg)
}
