package analysis

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/sells-group/geo-intel/internal/model"
)

// AnalyzeCrossEngine compares brand visibility between engines. Only
// observations for clustered prompts count when any cluster has prompts.
func (b *Baseline) AnalyzeCrossEngine(ctx context.Context, workspaceID, brandName string, clusters []model.PromptCluster) (model.CrossEnginePatterns, error) {
	obs, err := b.observations(ctx, workspaceID)
	if err != nil {
		return model.CrossEnginePatterns{}, err
	}

	clustered := make(map[string]bool)
	for _, c := range clusters {
		for _, p := range c.Prompts {
			clustered[fold(p)] = true
		}
	}

	seen := make(map[string]int)
	hits := make(map[string]int)
	for _, o := range obs {
		if len(clustered) > 0 && !clustered[fold(o.Prompt)] {
			continue
		}
		seen[o.Engine]++
		if o.BrandMentioned {
			hits[o.Engine]++
		}
	}

	out := model.CrossEnginePatterns{
		Engines:  []model.EnginePattern{},
		Insights: []string{},
	}
	var vis []float64
	for _, engine := range b.engineOrder(seen) {
		if seen[engine] == 0 {
			out.Insights = append(out.Insights, fmt.Sprintf("no observations recorded for %s", engine))
			continue
		}
		v := pct(hits[engine], seen[engine])
		vis = append(vis, v)
		out.Engines = append(out.Engines, model.EnginePattern{Engine: engine, VisibilityPercent: v})
	}
	if len(vis) == 0 {
		return out, nil
	}

	avg := mean(vis)
	var variance float64
	for i, v := range vis {
		out.Engines[i].Consistency = round2(clamp(1-math.Abs(v-avg)/100, 0, 1))
		variance += (v - avg) * (v - avg)
	}
	out.ConsistencyScore = round2(clamp(100-math.Sqrt(variance/float64(len(vis))), 0, 100))

	if len(out.Engines) > 1 {
		best, worst := out.Engines[0], out.Engines[0]
		for _, e := range out.Engines[1:] {
			if e.VisibilityPercent > best.VisibilityPercent {
				best = e
			}
			if e.VisibilityPercent < worst.VisibilityPercent {
				worst = e
			}
		}
		if best.Engine != worst.Engine {
			out.Insights = append(out.Insights, fmt.Sprintf("%s is most visible on %s (%.1f%%) and least visible on %s (%.1f%%)",
				brandName, best.Engine, best.VisibilityPercent, worst.Engine, worst.VisibilityPercent))
		}
	}
	return out, nil
}

// engineOrder lists configured engines first, then any other observed engine
// alphabetically.
func (b *Baseline) engineOrder(seen map[string]int) []string {
	order := slices.Clone(b.engines)
	var extra []string
	for engine := range seen {
		if !slices.Contains(order, engine) {
			extra = append(extra, engine)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}
