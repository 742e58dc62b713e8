package analysis

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/geo-intel/internal/model"
)

const defaultIntent = "informational"

// ClusterPrompts groups prompts by intent, in order of first appearance. A
// cluster's visibility is the share of its observed answers that mention the
// brand.
func (b *Baseline) ClusterPrompts(ctx context.Context, workspaceID, _ string, prompts []model.Prompt, _ model.IndustryClassification) ([]model.PromptCluster, error) {
	obs, err := b.observations(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	byPrompt := make(map[string][]model.Observation)
	for _, o := range obs {
		byPrompt[fold(o.Prompt)] = append(byPrompt[fold(o.Prompt)], o)
	}

	var order []string
	groups := make(map[string][]model.Prompt)
	for _, p := range prompts {
		intent := fold(p.Intent)
		if intent == "" {
			intent = defaultIntent
		}
		if _, ok := groups[intent]; !ok {
			order = append(order, intent)
		}
		groups[intent] = append(groups[intent], p)
	}

	title := cases.Title(language.English)
	out := make([]model.PromptCluster, 0, len(order))
	for _, intent := range order {
		group := groups[intent]
		texts := make([]string, len(group))
		commercial := make([]float64, len(group))
		var seen, mentioned int
		for i, p := range group {
			texts[i] = p.Text
			commercial[i] = p.CommercialIntent
			for _, o := range byPrompt[fold(p.Text)] {
				seen++
				if o.BrandMentioned {
					mentioned++
				}
			}
		}
		out = append(out, model.PromptCluster{
			ID:                "cluster-" + slug(intent),
			Label:             title.String(intent) + " queries",
			Intent:            intent,
			Prompts:           texts,
			CommercialIntent:  round2(mean(commercial)),
			VisibilityPercent: pct(mentioned, seen),
			Observations:      seen,
		})
	}
	return out, nil
}

func slug(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, s)
}
