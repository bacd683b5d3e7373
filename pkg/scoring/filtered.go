package scoring

import (
	"strings"

	"github.com/pmharris/mastodigest/pkg/post"
)

// ExclusionSentinel is returned by filter-aware scorers for posts that
// should never appear in a digest, independent of base score magnitude.
const ExclusionSentinel = -1.0

// DefaultFilteredBoost is the fixed score bump for posts from filtered
// accounts that match the keyword set, small enough not to dominate rank.
const DefaultFilteredBoost = 0.05

// FilteredScorer wraps a base scorer with a watch-list of accounts whose
// posts are excluded unless they mention one of the configured keywords.
// It implements Classifier so the threshold stage can route filtered
// authors around the percentile cutoff.
type FilteredScorer struct {
	base        Scorer
	defaultHost string
	filtered    map[string]bool
	keywords    []string
	boost       float64
}

// NewFiltered builds a FilteredScorer on top of the named base scorer.
// Handles in filteredAccounts must be fully qualified (user@host). A boost
// of 0 selects DefaultFilteredBoost.
func NewFiltered(baseName, defaultHost string, filteredAccounts, keywords []string, boost float64) (*FilteredScorer, error) {
	base, err := New(baseName)
	if err != nil {
		return nil, err
	}
	if boost == 0 {
		boost = DefaultFilteredBoost
	}
	set := make(map[string]bool, len(filteredAccounts))
	for _, acct := range filteredAccounts {
		set[acct] = true
	}
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	return &FilteredScorer{
		base:        base,
		defaultHost: defaultHost,
		filtered:    set,
		keywords:    lowered,
		boost:       boost,
	}, nil
}

func (f *FilteredScorer) Name() string { return "Filtered" + f.base.Name() }

// IsFiltered reports whether the post's author is on the watch-list,
// regardless of whether the post passed the keyword test.
func (f *FilteredScorer) IsFiltered(p *post.Post) bool {
	return f.filtered[p.QualifiedHandle(f.defaultHost)]
}

// Weight returns the base weight for unfiltered authors. For filtered
// authors it returns base+1 when the post mentions a keyword, and the
// exclusion sentinel when it doesn't.
func (f *FilteredScorer) Weight(p *post.Post) float64 {
	w := f.base.Weight(p)
	if !f.IsFiltered(p) {
		return w
	}
	if p.MatchesKeywords(f.keywords) {
		return w + 1.0
	}
	return ExclusionSentinel
}

func (f *FilteredScorer) Score(p *post.Post) float64 {
	w := f.Weight(p)
	if w < 0 {
		return ExclusionSentinel
	}
	s := f.base.Score(p) * w
	if f.IsFiltered(p) {
		s += f.boost
	}
	return s
}
