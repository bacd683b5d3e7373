package scoring

import (
	"fmt"
	"sort"

	"github.com/pmharris/mastodigest/pkg/post"
)

// Threshold is a named percentile cutoff over a scored population.
// Percentiles adapt to each run's engagement distribution; raw scores vary
// by orders of magnitude across hours and timeline sizes.
type Threshold int

const (
	ThresholdLax    Threshold = 90
	ThresholdNormal Threshold = 95
	ThresholdStrict Threshold = 98
)

func (t Threshold) Name() string {
	switch t {
	case ThresholdLax:
		return "lax"
	case ThresholdNormal:
		return "normal"
	case ThresholdStrict:
		return "strict"
	}
	return fmt.Sprintf("p%d", int(t))
}

// ThresholdFromName returns the Threshold for a named cutoff.
func ThresholdFromName(name string) (Threshold, error) {
	for _, t := range []Threshold{ThresholdLax, ThresholdNormal, ThresholdStrict} {
		if t.Name() == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown threshold %q (available: %v)", name, ThresholdNames())
}

// ThresholdNames lists the named thresholds in ascending strictness.
func ThresholdNames() []string {
	return []string{
		ThresholdLax.Name(),
		ThresholdNormal.Name(),
		ThresholdStrict.Name(),
	}
}

// Select returns the posts meeting this threshold under the given scorer.
//
// For filter-aware scorers the input is partitioned: the percentile cutoff
// applies to unfiltered authors only, while filtered authors are admitted
// on relevance alone (any strictly positive score) and appended after the
// percentile survivors. Filtered accounts are curated out-of-band and are
// not subject to the general population statistics.
func (t Threshold) Select(posts []*post.Post, scorer Scorer) []*post.Post {
	classifier, ok := scorer.(Classifier)
	if !ok {
		return t.selectPercentile(posts, scorer)
	}

	var filtered, unfiltered []*post.Post
	for _, p := range posts {
		if classifier.IsFiltered(p) {
			filtered = append(filtered, p)
		} else {
			unfiltered = append(unfiltered, p)
		}
	}

	selected := t.selectPercentile(unfiltered, scorer)
	for _, p := range filtered {
		if scorer.Score(p) > 0 {
			selected = append(selected, p)
		}
	}
	return selected
}

// selectPercentile keeps the posts scoring at or above the percentile
// cutoff of the eligible (non-negative) scores. An empty eligible set
// yields an empty result, not a zero cutoff.
func (t Threshold) selectPercentile(posts []*post.Post, scorer Scorer) []*post.Post {
	var eligible []*post.Post
	var scores []float64
	for _, p := range posts {
		if s := scorer.Score(p); s >= 0 {
			eligible = append(eligible, p)
			scores = append(scores, s)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	cutoff := percentile(scores, float64(t))

	var selected []*post.Post
	for i, p := range eligible {
		if scores[i] >= cutoff {
			selected = append(selected, p)
		}
	}
	return selected
}

// percentile computes the pth percentile of values by linear interpolation
// between order statistics. values must be non-empty.
func percentile(values []float64, p float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
