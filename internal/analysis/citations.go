package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/geo-intel/internal/model"
)

const maxSources = 5

// Trust failure thresholds.
const (
	citationRateHigh   = 5.0
	citationRateMedium = 20.0
	blindSpotPercent   = 10.0
	minConsistency     = 50.0
	minTrustScore      = 30.0
)

// AnalyzeCitations measures how often engine answers cite the brand's own
// domain and which sources they cite instead.
func (b *Baseline) AnalyzeCitations(ctx context.Context, workspaceID, _, domain string) (model.CitationAnalysis, error) {
	obs, err := b.observations(ctx, workspaceID)
	if err != nil {
		return model.CitationAnalysis{}, err
	}

	own := hostOf(domain)
	var citing, mentioned int
	counts := make(map[string]int)
	for _, o := range obs {
		if o.BrandMentioned {
			mentioned++
		}
		cited := false
		seen := make(map[string]bool, len(o.Citations))
		for _, c := range o.Citations {
			h := hostOf(c)
			if h == "" || seen[h] {
				continue
			}
			seen[h] = true
			counts[h]++
			if own != "" && (h == own || strings.HasSuffix(h, "."+own)) {
				cited = true
			}
		}
		if cited {
			citing++
		}
	}

	rate := pct(citing, len(obs))
	return model.CitationAnalysis{
		CitationRate: rate,
		TrustScore:   round2(0.7*rate + 0.3*pct(mentioned, len(obs))),
		TopSources:   topSources(counts),
		SampleSize:   len(obs),
	}, nil
}

func topSources(counts map[string]int) []model.CitationSource {
	out := make([]model.CitationSource, 0, len(counts))
	for domain, n := range counts {
		out = append(out, model.CitationSource{Domain: domain, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Domain < out[j].Domain
	})
	if len(out) > maxSources {
		out = out[:maxSources]
	}
	if len(out) > 0 {
		top := float64(out[0].Count)
		for i := range out {
			out[i].Authority = round2(float64(out[i].Count) / top)
		}
	}
	return out
}

// DetectTrustFailures turns weak citation and cross-engine signals into
// findings. Citation rules need at least one observed answer, and engine rules
// only see engines with observations, so an empty workspace yields nothing.
func (b *Baseline) DetectTrustFailures(_ context.Context, _, brandName string, citations model.CitationAnalysis, patterns model.CrossEnginePatterns) ([]model.TrustFailure, error) {
	out := []model.TrustFailure{}

	switch {
	case citations.SampleSize == 0:
	case citations.CitationRate < citationRateHigh:
		out = append(out, model.TrustFailure{
			Type:        "low_citation_rate",
			Description: fmt.Sprintf("engines almost never cite %s's own pages (%.1f%% of answers)", brandName, citations.CitationRate),
			Severity:    model.SeverityHigh,
			Confidence:  0.8,
		})
	case citations.CitationRate < citationRateMedium:
		out = append(out, model.TrustFailure{
			Type:        "low_citation_rate",
			Description: fmt.Sprintf("engines rarely cite %s's own pages (%.1f%% of answers)", brandName, citations.CitationRate),
			Severity:    model.SeverityMedium,
			Confidence:  0.7,
		})
	}

	if citations.SampleSize > 0 && citations.TrustScore < minTrustScore {
		out = append(out, model.TrustFailure{
			Type:        "low_trust_score",
			Description: fmt.Sprintf("%s scores %.0f/100 on engine trust signals", brandName, citations.TrustScore),
			Severity:    model.SeverityMedium,
			Confidence:  0.6,
		})
	}

	for _, e := range patterns.Engines {
		if e.VisibilityPercent >= blindSpotPercent {
			continue
		}
		sev := model.SeverityMedium
		if e.VisibilityPercent == 0 {
			sev = model.SeverityHigh
		}
		out = append(out, model.TrustFailure{
			Type:        "engine_blind_spot",
			Description: fmt.Sprintf("%s mentions %s in %.1f%% of answers", e.Engine, brandName, e.VisibilityPercent),
			Severity:    sev,
			Engine:      e.Engine,
			Confidence:  0.7,
		})
	}

	if len(patterns.Engines) > 1 && patterns.ConsistencyScore < minConsistency {
		out = append(out, model.TrustFailure{
			Type:        "inconsistent_visibility",
			Description: fmt.Sprintf("visibility for %s varies widely between engines (consistency %.0f/100)", brandName, patterns.ConsistencyScore),
			Severity:    model.SeverityLow,
			Confidence:  0.6,
		})
	}
	return out, nil
}
