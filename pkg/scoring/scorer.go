// Package scoring ranks posts with composable scorer strategies: an
// aggregation rule over engagement counts multiplied by a weight rule over
// author attributes, optionally wrapped by per-account decorators.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/pmharris/mastodigest/pkg/post"
)

// Scorer maps a post to a real-valued rank score. Scorers are immutable
// after construction and safe to share across posts.
type Scorer interface {
	Name() string
	Score(p *post.Post) float64
	Weight(p *post.Post) float64
}

// Classifier is implemented by scorers that perform account-level
// filtering. The threshold stage routes posts differently for them.
type Classifier interface {
	IsFiltered(p *post.Post) bool
}

type aggregateFunc func(p *post.Post) float64
type weightFunc func(p *post.Post) float64

// baseScorer composes one aggregation rule with one weight rule.
type baseScorer struct {
	name      string
	aggregate aggregateFunc
	weight    weightFunc
}

func (s baseScorer) Name() string                { return s.name }
func (s baseScorer) Weight(p *post.Post) float64 { return s.weight(p) }
func (s baseScorer) Score(p *post.Post) float64  { return s.aggregate(p) * s.weight(p) }

// gmean is the geometric mean of the given values.
func gmean(vals ...float64) float64 {
	prod := 1.0
	for _, v := range vals {
		prod *= v
	}
	return math.Pow(prod, 1.0/float64(len(vals)))
}

// simpleAggregate averages reblogs and favourites. Every count is inflated
// by 1 so a single zero metric doesn't collapse the mean, but a post with
// no engagement at all stays at 0.
func simpleAggregate(p *post.Post) float64 {
	if p.ReblogsCount == 0 && p.FavouritesCount == 0 {
		return 0
	}
	return gmean(float64(p.ReblogsCount+1), float64(p.FavouritesCount+1))
}

// extendedAggregate additionally includes the reply count.
func extendedAggregate(p *post.Post) float64 {
	if p.ReblogsCount == 0 && p.FavouritesCount == 0 && p.RepliesCount == 0 {
		return 0
	}
	return gmean(
		float64(p.ReblogsCount+1),
		float64(p.FavouritesCount+1),
		float64(p.RepliesCount+1),
	)
}

func uniformWeight(*post.Post) float64 { return 1 }

// inverseFollowerWeight discounts posts from large accounts. Zero or
// hidden follower counts (-1) zero the post out entirely.
func inverseFollowerWeight(p *post.Post) float64 {
	if p.Account.FollowersCount <= 0 {
		return 0
	}
	return 1 / math.Sqrt(float64(p.Account.FollowersCount))
}

// registry maps scorer names to constructors. Decorators (Configured,
// Filtered) wrap these and are built through their own constructors.
var registry = map[string]func() Scorer{
	"Simple": func() Scorer {
		return baseScorer{"Simple", simpleAggregate, uniformWeight}
	},
	"SimpleWeighted": func() Scorer {
		return baseScorer{"SimpleWeighted", simpleAggregate, inverseFollowerWeight}
	},
	"ExtendedSimple": func() Scorer {
		return baseScorer{"ExtendedSimple", extendedAggregate, uniformWeight}
	},
	"ExtendedSimpleWeighted": func() Scorer {
		return baseScorer{"ExtendedSimpleWeighted", extendedAggregate, inverseFollowerWeight}
	},
}

// New returns the base scorer registered under name.
func New(name string) (Scorer, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown scorer %q (available: %v)", name, Names())
	}
	return ctor(), nil
}

// Names lists the registered base scorer names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
