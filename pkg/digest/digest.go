// Package digest orchestrates the curation pipeline: pre-filter, score,
// threshold, rank. It consumes already-fetched posts and produces ranked
// lists ready for rendering or a re-boost queue.
package digest

import (
	"sort"

	"github.com/pmharris/mastodigest/pkg/post"
	"github.com/pmharris/mastodigest/pkg/scoring"
)

// Options configure one pipeline run. Scorer and Threshold are required.
type Options struct {
	Scorer      scoring.Scorer
	Threshold   scoring.Threshold
	DefaultHost string

	// SuppressedAccounts are dropped before scoring unless the post
	// mentions one of Keywords. Handles must be fully qualified.
	SuppressedAccounts []string
	Keywords           []string
}

// RankedPost is a post with its final score under the run's scorer.
type RankedPost struct {
	*post.Post
	Score float64
}

// Digest is the pipeline output: posts and boosts ranked by score,
// descending, ties kept in fetch order.
type Digest struct {
	Posts  []RankedPost
	Boosts []RankedPost
}

// Curate runs the pipeline over one fetched batch. Empty input and empty
// survivors are valid; the result is simply empty.
func Curate(posts, boosts []*post.Post, opts Options) *Digest {
	return &Digest{
		Posts:  curate(posts, opts),
		Boosts: curate(boosts, opts),
	}
}

func curate(posts []*post.Post, opts Options) []RankedPost {
	posts = preFilter(posts, opts)
	selected := opts.Threshold.Select(posts, opts.Scorer)

	ranked := make([]RankedPost, len(selected))
	for i, p := range selected {
		ranked[i] = RankedPost{Post: p, Score: opts.Scorer.Score(p)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// preFilter drops suppressed-account posts unless they match a keyword.
// This runs before scoring and is independent of the scorer's own
// account rules.
func preFilter(posts []*post.Post, opts Options) []*post.Post {
	if len(opts.SuppressedAccounts) == 0 {
		return posts
	}
	suppressed := make(map[string]bool, len(opts.SuppressedAccounts))
	for _, acct := range opts.SuppressedAccounts {
		suppressed[acct] = true
	}

	kept := posts[:0:0]
	for _, p := range posts {
		if suppressed[p.QualifiedHandle(opts.DefaultHost)] && !p.MatchesKeywords(opts.Keywords) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
