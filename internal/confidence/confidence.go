// Package confidence computes the single reliability estimate attached to an
// intelligence response.
package confidence

import "math"

// Config holds the linear scoring constants.
type Config struct {
	Base           float64
	Bonus          float64
	HighThreshold  float64
	FailurePenalty float64
}

// DefaultConfig returns the stock constants.
func DefaultConfig() Config {
	return Config{
		Base:           0.5,
		Bonus:          0.1,
		HighThreshold:  0.7,
		FailurePenalty: 0.2,
	}
}

// Signals are the upstream inputs the aggregate is derived from.
type Signals struct {
	IndustryConfidence float64
	SummaryConfidence  float64
	Competitors        int
	TrustFailures      int
	FailedSteps        int
	TotalSteps         int
}

// Aggregator turns Signals into a confidence in [0,1]. The same Signals
// always produce the same value.
type Aggregator struct {
	cfg Config
}

// New returns an Aggregator using cfg.
func New(cfg Config) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Aggregate scores s.
func (a *Aggregator) Aggregate(s Signals) float64 {
	score := a.cfg.Base
	if s.IndustryConfidence > a.cfg.HighThreshold {
		score += a.cfg.Bonus
	}
	if s.SummaryConfidence > a.cfg.HighThreshold {
		score += a.cfg.Bonus
	}
	if s.Competitors > 0 {
		score += a.cfg.Bonus
	}
	if s.TrustFailures > 0 {
		score += a.cfg.Bonus
	}
	if s.TotalSteps > 0 && s.FailedSteps > 0 {
		ratio := math.Min(float64(s.FailedSteps)/float64(s.TotalSteps), 1)
		score -= a.cfg.FailurePenalty * ratio
	}

	switch {
	case math.IsNaN(score):
		return 0
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}
