// Package booster re-shares curated posts at a controlled pace.
package booster

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/pmharris/mastodigest/internal/store"
	"github.com/pmharris/mastodigest/pkg/digest"
)

// Booster drains a ranked list into reblog calls, paced by a rate limiter
// and deduplicated against the boost history.
type Booster struct {
	store        store.Store
	client       Reblogger
	limiter      *rate.Limiter
	maxPerRun    int
	authorWindow int
	defaultHost  string
}

// Reblogger issues the actual re-share call. *timeline.Client satisfies it.
type Reblogger interface {
	Reblog(ctx context.Context, id string) error
}

// New creates a Booster. perMinute caps the boost rate, maxPerRun caps one
// invocation, authorWindow is how many recent boosts to scan when skipping
// over-represented authors.
func New(s store.Store, client Reblogger, defaultHost string, perMinute float64, maxPerRun, authorWindow int) *Booster {
	if perMinute <= 0 {
		perMinute = 2
	}
	if maxPerRun <= 0 {
		maxPerRun = 10
	}
	if authorWindow <= 0 {
		authorWindow = 10
	}
	return &Booster{
		store:        s,
		client:       client,
		limiter:      rate.NewLimiter(rate.Limit(perMinute/60.0), 1),
		maxPerRun:    maxPerRun,
		authorWindow: authorWindow,
		defaultHost:  defaultHost,
	}
}

// Boost walks the ranked posts from the top, skipping anything already
// boosted or authored by a recently boosted account, and re-shares until
// the per-run cap is reached. Returns how many posts were boosted.
func (b *Booster) Boost(ctx context.Context, posts []digest.RankedPost) (int, error) {
	recentAuthors, err := b.store.RecentAuthors(ctx, b.authorWindow)
	if err != nil {
		return 0, err
	}

	boosted := 0
	for _, p := range posts {
		if boosted >= b.maxPerRun {
			break
		}

		handle := p.QualifiedHandle(b.defaultHost)
		if recentAuthors[handle] {
			continue
		}
		seen, err := b.store.WasBoosted(ctx, p.URL)
		if err != nil {
			return boosted, err
		}
		if seen {
			continue
		}

		if err := b.limiter.Wait(ctx); err != nil {
			return boosted, err
		}
		if err := b.client.Reblog(ctx, p.ID); err != nil {
			// Keep going: a failed boost shouldn't sink the queue.
			fmt.Fprintf(os.Stderr, "  boost %s error: %v\n", p.URL, err)
			continue
		}

		if err := b.store.AddBoost(ctx, &store.Boost{
			PostID:    p.ID,
			URL:       p.URL,
			Acct:      handle,
			Score:     p.Score,
			BoostedAt: time.Now().UTC(),
		}); err != nil {
			return boosted, err
		}
		recentAuthors[handle] = true
		boosted++
		fmt.Fprintf(os.Stderr, "  boosted %s (score %.2f)\n", p.URL, p.Score)
	}

	return boosted, nil
}
