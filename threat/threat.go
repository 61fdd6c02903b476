// Package threat slowly biases an agent's temperament toward how its
// opponents have been fighting.
package threat

import "github.com/milk9111/sentinel/common"

// Category is a class of opponent behavior.
type Category int

const (
	Melee Category = iota
	Ranged
	Cover
	numCategories
)

func (c Category) String() string {
	switch c {
	case Melee:
		return "melee"
	case Ranged:
		return "ranged"
	case Cover:
		return "cover"
	default:
		return "unknown"
	}
}

type Config struct {
	AnalysisInterval float64 `yaml:"analysis_interval"`
	Step             float64 `yaml:"step"`
	MinAggression    float64 `yaml:"min_aggression"`
	MaxAggression    float64 `yaml:"max_aggression"`
	MinCover         float64 `yaml:"min_cover"`
	MaxCover         float64 `yaml:"max_cover"`
}

func (c Config) Normalized() Config {
	c.AnalysisInterval = common.PositiveOr(c.AnalysisInterval, 10)
	c.Step = common.NonNegative(c.Step)
	if c.MaxAggression <= c.MinAggression {
		c.MinAggression, c.MaxAggression = 0, 1
	}
	if c.MaxCover <= c.MinCover {
		c.MinCover, c.MaxCover = 0, 1
	}
	return c
}

// Profile is one agent's temperament plus the counters for the current
// analysis window.
type Profile struct {
	Aggression      float64
	CoverPreference float64
	// IdealDistance is the configured ranged engagement distance before
	// aggression is applied.
	IdealDistance float64

	Counts  [numCategories]int
	Elapsed float64
}

func NewProfile(aggression, cover, idealDistance float64, cfg Config) Profile {
	return Profile{
		Aggression:      common.Clamp(aggression, cfg.MinAggression, cfg.MaxAggression),
		CoverPreference: common.Clamp(cover, cfg.MinCover, cfg.MaxCover),
		IdealDistance:   common.NonNegative(idealDistance),
	}
}

// Record counts one observed opponent action.
func (p *Profile) Record(c Category) {
	if c < 0 || c >= numCategories {
		return
	}
	p.Counts[c]++
}

// Dominant returns the most frequent category. Ties and empty windows report
// false.
func (p Profile) Dominant() (Category, bool) {
	best, bestCount, tie := Category(0), -1, false
	for c := Category(0); c < numCategories; c++ {
		n := p.Counts[c]
		switch {
		case n > bestCount:
			best, bestCount, tie = c, n, false
		case n == bestCount:
			tie = true
		}
	}
	if bestCount <= 0 || tie {
		return 0, false
	}
	return best, true
}

// Update advances the analysis window by dt. When the interval elapses the
// profile shifts one step toward the dominant category and the counters
// reset. It reports whether an analysis ran.
func (p *Profile) Update(dt float64, cfg Config) bool {
	p.Elapsed += dt
	if p.Elapsed < cfg.AnalysisInterval {
		return false
	}
	p.Elapsed -= cfg.AnalysisInterval

	if dom, ok := p.Dominant(); ok {
		switch dom {
		case Melee:
			// close-range opponents: back off and use cover
			p.Aggression -= cfg.Step
			p.CoverPreference += cfg.Step
		case Ranged:
			// shooters: close the gap
			p.Aggression += cfg.Step
			p.CoverPreference -= cfg.Step
		case Cover:
			p.Aggression += cfg.Step
		}
		p.Aggression = common.Clamp(p.Aggression, cfg.MinAggression, cfg.MaxAggression)
		p.CoverPreference = common.Clamp(p.CoverPreference, cfg.MinCover, cfg.MaxCover)
	}
	p.Counts = [numCategories]int{}
	return true
}

// EffectiveIdealDistance shrinks the ideal distance as aggression rises:
// 1.5x at zero aggression, 1x at 0.5 and 0.5x at full aggression.
func (p Profile) EffectiveIdealDistance() float64 {
	return p.IdealDistance * (1.5 - common.Clamp(p.Aggression, 0, 1))
}
