package analysis

import (
	"context"
	"fmt"
	"sort"

	"github.com/sells-group/geo-intel/internal/model"
)

// Composite components in reporting order.
var componentOrder = []string{"visibility", "share_of_voice", "citations", "consistency", "commercial"}

var componentActions = map[string]string{
	"visibility":     "publish direct answers for the prompts engines skip the brand on",
	"share_of_voice": "earn mentions in the listicles and reviews engines draw from",
	"citations":      "make first-party pages the citable source for key facts",
	"consistency":    "close the gap on the engines that mention the brand least",
	"commercial":     "target the high purchase-intent prompt clusters first",
}

const maxImprovementPaths = 3

// ScoreCommercialValue weighs purchase intent against the visibility gap.
func (b *Baseline) ScoreCommercialValue(_ context.Context, _, brandName string, cluster model.PromptCluster) (model.CommercialValue, error) {
	gap := 100 - cluster.VisibilityPercent
	return model.CommercialValue{
		ClusterID: cluster.ID,
		Score:     round2(clamp(cluster.CommercialIntent*70+gap*0.3, 0, 100)),
		Rationale: fmt.Sprintf("commercial intent %.2f across %d prompts; %s appears in %.1f%% of answers",
			cluster.CommercialIntent, len(cluster.Prompts), brandName, cluster.VisibilityPercent),
	}, nil
}

// ScoreFixDifficulty blends competitor strength with the visibility gap.
func (b *Baseline) ScoreFixDifficulty(_ context.Context, _, _ string, cluster model.PromptCluster, advantages []model.CompetitorAdvantage) (model.FixDifficulty, error) {
	scores := make([]float64, len(advantages))
	for i, a := range advantages {
		scores[i] = a.AdvantageScore
	}
	adv := mean(scores)
	score := round2(clamp(0.6*adv+0.4*(100-cluster.VisibilityPercent), 0, 100))
	return model.FixDifficulty{
		ClusterID:  cluster.ID,
		Difficulty: difficultyTier(score),
		Score:      score,
		Rationale: fmt.Sprintf("average competitor advantage %.0f/100 across %d competitors; visibility gap %.0f points",
			adv, len(advantages), 100-cluster.VisibilityPercent),
	}, nil
}

func difficultyTier(score float64) model.Difficulty {
	switch {
	case score < 35:
		return model.DifficultyEasy
	case score < 65:
		return model.DifficultyMedium
	default:
		return model.DifficultyHard
	}
}

// CompositeScore combines the weighted components into the 0-100 health score.
func (b *Baseline) CompositeScore(_ context.Context, _, _ string, in model.CompositeInputs) (model.CompositeScore, error) {
	cvis := make([]float64, len(in.Clusters))
	for i, c := range in.Clusters {
		cvis[i] = c.VisibilityPercent
	}
	cval := make([]float64, len(in.CommercialValue))
	for i, v := range in.CommercialValue {
		cval[i] = v.Score
	}

	components := map[string]float64{
		"visibility":     mean(cvis),
		"share_of_voice": in.ShareOfVoice.BrandPercent,
		"citations":      in.Citations.CitationRate,
		"consistency":    in.CrossEngine.ConsistencyScore,
		"commercial":     mean(cval),
	}

	out := model.CompositeScore{
		Breakdown:        make(map[string]model.ScoreComponent, len(components)),
		ImprovementPaths: []model.ImprovementPath{},
	}
	var total float64
	for _, name := range componentOrder {
		s := round2(clamp(components[name], 0, 100))
		w := b.weights[name]
		out.Breakdown[name] = model.ScoreComponent{Score: s, Weight: w}
		total += s * w
		if gain := round2(w * (100 - s)); gain > 0 {
			out.ImprovementPaths = append(out.ImprovementPaths, model.ImprovementPath{
				Component:     name,
				PotentialGain: gain,
				Action:        componentActions[name],
			})
		}
	}
	out.Overall = round2(total)

	sort.SliceStable(out.ImprovementPaths, func(i, j int) bool {
		return out.ImprovementPaths[i].PotentialGain > out.ImprovementPaths[j].PotentialGain
	})
	if len(out.ImprovementPaths) > maxImprovementPaths {
		out.ImprovementPaths = out.ImprovementPaths[:maxImprovementPaths]
	}

	strong, weak := componentOrder[0], componentOrder[0]
	for _, name := range componentOrder[1:] {
		if out.Breakdown[name].Score > out.Breakdown[strong].Score {
			strong = name
		}
		if out.Breakdown[name].Score < out.Breakdown[weak].Score {
			weak = name
		}
	}
	out.Explanation = fmt.Sprintf("weighted blend of %d components; strongest is %s (%.0f), weakest is %s (%.0f)",
		len(componentOrder), strong, out.Breakdown[strong].Score, weak, out.Breakdown[weak].Score)
	return out, nil
}
