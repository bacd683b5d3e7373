package scoring

import (
	"github.com/pmharris/mastodigest/pkg/post"
)

// ConfiguredScorer wraps a base scorer and multiplies in a per-account
// amplification factor keyed by fully-qualified handle. Unlisted accounts
// get factor 1.
type ConfiguredScorer struct {
	base        Scorer
	defaultHost string
	amplify     map[string]float64
}

// NewConfigured builds a ConfiguredScorer on top of the named base scorer.
// Bare handles in amplify should already be qualified by the caller; bare
// post handles are qualified against defaultHost before lookup.
func NewConfigured(baseName, defaultHost string, amplify map[string]float64) (*ConfiguredScorer, error) {
	base, err := New(baseName)
	if err != nil {
		return nil, err
	}
	return &ConfiguredScorer{
		base:        base,
		defaultHost: defaultHost,
		amplify:     amplify,
	}, nil
}

func (c *ConfiguredScorer) Name() string { return "Configured" + c.base.Name() }

func (c *ConfiguredScorer) Weight(p *post.Post) float64 {
	w := c.base.Weight(p)
	if factor, ok := c.amplify[p.QualifiedHandle(c.defaultHost)]; ok {
		w *= factor
	}
	return w
}

func (c *ConfiguredScorer) Score(p *post.Post) float64 {
	return c.base.Score(p) * c.Weight(p)
}
