package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geo-intel/internal/model"
)

type tally struct {
	name  string
	count int
}

// countCompetitors counts the observations naming each competitor at least
// once, skipping the brand itself. The first spelling seen is kept.
func countCompetitors(obs []model.Observation, brand string) []tally {
	brandKey := fold(brand)
	index := make(map[string]int)
	var out []tally
	for _, o := range obs {
		seen := make(map[string]bool, len(o.Competitors))
		for _, raw := range o.Competitors {
			k := fold(raw)
			if k == "" || k == brandKey || seen[k] {
				continue
			}
			seen[k] = true
			i, ok := index[k]
			if !ok {
				i = len(out)
				index[k] = i
				out = append(out, tally{name: strings.TrimSpace(raw)})
			}
			out[i].count++
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return fold(out[i].name) < fold(out[j].name)
	})
	return out
}

// DetectCompetitors returns the brands engines name most often alongside the
// workspace's prompts.
func (b *Baseline) DetectCompetitors(ctx context.Context, workspaceID, brandName string, _ []model.Prompt, _ model.IndustryClassification) ([]model.Competitor, error) {
	obs, err := b.observations(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	counts := countCompetitors(obs, brandName)
	if len(counts) > b.maxCompetitors {
		counts = counts[:b.maxCompetitors]
	}
	out := make([]model.Competitor, len(counts))
	for i, c := range counts {
		out[i] = model.Competitor{
			Name:         c.name,
			Mentions:     c.count,
			SharePercent: pct(c.count, len(obs)),
			Confidence:   sampleConfidence(c.count),
		}
	}
	return out, nil
}

// ShareOfVoice splits all brand and competitor mentions between the brand and
// each detected competitor, overall and per engine.
func (b *Baseline) ShareOfVoice(ctx context.Context, workspaceID, _ string, competitors []model.Competitor) (model.ShareOfVoice, error) {
	obs, err := b.observations(ctx, workspaceID)
	if err != nil {
		return model.ShareOfVoice{}, err
	}

	tracked := make(map[string]bool, len(competitors))
	for _, c := range competitors {
		tracked[fold(c.Name)] = true
	}

	var brand, total int
	perCompetitor := make(map[string]int)
	brandByEngine := make(map[string]int)
	totalByEngine := make(map[string]int)
	for _, o := range obs {
		if o.BrandMentioned {
			brand++
			total++
			brandByEngine[o.Engine]++
			totalByEngine[o.Engine]++
		}
		for _, k := range names(o.Competitors) {
			if tracked[k] {
				perCompetitor[k]++
				total++
				totalByEngine[o.Engine]++
			}
		}
	}

	sov := model.ShareOfVoice{
		BrandPercent: pct(brand, total),
		ByEngine:     make(map[string]float64, len(totalByEngine)),
		Competitors:  make([]model.CompetitorShare, len(competitors)),
	}
	for engine, n := range totalByEngine {
		sov.ByEngine[engine] = pct(brandByEngine[engine], n)
	}
	for i, c := range competitors {
		sov.Competitors[i] = model.CompetitorShare{Name: c.Name, Percent: pct(perCompetitor[fold(c.Name)], total)}
	}
	return sov, nil
}

// AnalyzeAdvantage scores how far one competitor is ahead of the brand: half
// share-of-voice gap, half the share of the competitor's answers that leave
// the brand out.
func (b *Baseline) AnalyzeAdvantage(ctx context.Context, workspaceID, brandName string, competitor model.Competitor, sov model.ShareOfVoice) (model.CompetitorAdvantage, error) {
	if strings.TrimSpace(competitor.Name) == "" {
		return model.CompetitorAdvantage{}, eris.New("analysis: competitor has no name")
	}
	obs, err := b.observations(ctx, workspaceID)
	if err != nil {
		return model.CompetitorAdvantage{}, err
	}

	var together, alone int
	for _, o := range obs {
		if !mentions(o, competitor.Name) {
			continue
		}
		if o.BrandMentioned {
			together++
		} else {
			alone++
		}
	}

	var share float64
	for _, s := range sov.Competitors {
		if fold(s.Name) == fold(competitor.Name) {
			share = s.Percent
			break
		}
	}
	gap := max(0, share-sov.BrandPercent)
	exclusive := pct(alone, together+alone)

	factors := []string{}
	if alone > 0 {
		factors = append(factors, fmt.Sprintf("appears in %d answers that do not mention %s", alone, brandName))
	}
	if gap > 0 {
		factors = append(factors, fmt.Sprintf("holds %.1f%% share of voice against %.1f%% for %s", share, sov.BrandPercent, brandName))
	}
	if together > 0 {
		factors = append(factors, fmt.Sprintf("named alongside %s in %d answers", brandName, together))
	}

	return model.CompetitorAdvantage{
		Competitor:     competitor.Name,
		AdvantageScore: round2(clamp(0.5*gap+0.5*exclusive, 0, 100)),
		Factors:        factors,
		Confidence:     sampleConfidence(together + alone),
	}, nil
}
