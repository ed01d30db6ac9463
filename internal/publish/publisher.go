// Package publish delivers finished posts to the configured social
// platforms. Each platform is an independent capability; delivery attempts
// all configured platforms and succeeds when at least one accepts the post.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Platform is one publish target.
type Platform interface {
	// Name identifies the platform in logs.
	Name() string

	// Configured reports whether the platform has usable credentials.
	// Unconfigured platforms are skipped, never treated as failures.
	Configured() bool

	// Post publishes the text. The text is final; platforms must not
	// alter it.
	Post(ctx context.Context, text string) error
}

// ErrNoPlatforms is returned when no configured platform exists at all.
var ErrNoPlatforms = errors.New("no configured platforms")

// Dispatcher fans a post out to every configured platform.
type Dispatcher struct {
	platforms []Platform
}

// NewDispatcher creates a Dispatcher over the given platforms.
func NewDispatcher(platforms ...Platform) *Dispatcher {
	return &Dispatcher{platforms: platforms}
}

// PublishAll posts the text to every configured platform independently. A
// failure on one platform never prevents attempting the others. The overall
// result is success if at least one platform accepted the post; otherwise
// the per-platform errors are joined.
func (d *Dispatcher) PublishAll(ctx context.Context, text string) error {
	var (
		mu        sync.Mutex
		succeeded int
		failures  []error
	)

	g := new(errgroup.Group)
	attempted := 0
	for _, p := range d.platforms {
		if !p.Configured() {
			continue
		}
		attempted++

		g.Go(func() error {
			if err := p.Post(ctx, text); err != nil {
				slog.Warn("publish failed", "platform", p.Name(), "error", err)
				mu.Lock()
				failures = append(failures, fmt.Errorf("%s: %w", p.Name(), err))
				mu.Unlock()
				return nil // collected, not fatal to the group
			}

			slog.Info("published", "platform", p.Name(), "chars", len([]rune(text)))
			mu.Lock()
			succeeded++
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	if attempted == 0 {
		return ErrNoPlatforms
	}
	if succeeded == 0 {
		return fmt.Errorf("all platforms failed: %w", errors.Join(failures...))
	}
	return nil
}

// Configured returns the names of all configured platforms.
func (d *Dispatcher) Configured() []string {
	var names []string
	for _, p := range d.platforms {
		if p.Configured() {
			names = append(names, p.Name())
		}
	}
	return names
}
