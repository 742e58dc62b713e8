package analysis

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/geo-intel/internal/model"
)

// Clusters at or above this visibility are not reported as opportunities.
const wonVisibility = 60.0

// Below this citation component an extra citation opportunity is raised.
const weakCitations = 30.0

var stepsByDifficulty = map[model.Difficulty][]string{
	model.DifficultyEasy: {
		"Publish a focused answer page for the cluster's top prompts",
		"Add FAQ structured data to the page",
		"Re-run the prompts across engines after indexing",
	},
	model.DifficultyMedium: {
		"Publish a focused answer page for the cluster's top prompts",
		"Add FAQ structured data to the page",
		"Earn mentions on two or more third-party review sites",
		"Re-run the prompts across engines after indexing",
	},
	model.DifficultyHard: {
		"Publish a focused answer page for the cluster's top prompts",
		"Build comparison content against the leading competitors",
		"Pitch expert commentary to authoritative publications",
		"Earn mentions on two or more third-party review sites",
		"Re-run the prompts across engines after indexing",
	},
}

var citationSteps = []string{
	"Identify the sources engines cite for these prompts",
	"Publish original data or guides those sources can reference",
	"Request corrections or inclusions on outdated listings",
}

// opportunityID is stable for a workspace, cluster and opportunity kind.
func opportunityID(workspaceID, clusterID, kind string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(workspaceID+"/"+clusterID+"/"+kind)).String()
}

// GenerateOpportunities reports where the brand is losing a cluster. Clusters
// the brand already wins, and clusters with no observed answers, produce no
// opportunities.
func (b *Baseline) GenerateOpportunities(_ context.Context, workspaceID, brandName string, in model.OpportunityInputs) ([]model.Opportunity, error) {
	c := in.Cluster
	if c.ID == "" {
		return nil, eris.New("analysis: cluster has no id")
	}
	if c.Observations == 0 || c.VisibilityPercent >= wonVisibility {
		return []model.Opportunity{}, nil
	}

	gap := 100 - c.VisibilityPercent
	impact := round2(clamp(in.CommercialValue.Score*gap/100, 0, 100))
	confidence := round2(clamp(0.4+0.5*(1-in.FixDifficulty.Score/100), 0, 1))
	difficulty := in.FixDifficulty.Difficulty
	if _, ok := stepsByDifficulty[difficulty]; !ok {
		difficulty = model.DifficultyMedium
	}
	label := strings.ToLower(c.Label)
	evidence := []string{
		fmt.Sprintf("%s appears in %.0f%% of answers for %d prompts", brandName, c.VisibilityPercent, len(c.Prompts)),
		fmt.Sprintf("commercial value %.0f/100", in.CommercialValue.Score),
		fmt.Sprintf("fix difficulty %s (%.0f/100)", difficulty, in.FixDifficulty.Score),
	}

	out := []model.Opportunity{{
		ID:               opportunityID(workspaceID, c.ID, "visibility"),
		Title:            "Win visibility for " + label,
		Description:      fmt.Sprintf("Engines answer %s prompts without naming %s most of the time", c.Intent, brandName),
		ClusterID:        c.ID,
		ImpactScore:      impact,
		Confidence:       confidence,
		EngineVisibility: maps.Clone(in.ShareOfVoice.ByEngine),
		ActionSteps:      append([]string(nil), stepsByDifficulty[difficulty]...),
		Evidence:         evidence,
	}}
	if out[0].EngineVisibility == nil {
		out[0].EngineVisibility = map[string]float64{}
	}

	if cit, ok := in.Composite.Breakdown["citations"]; ok && cit.Score < weakCitations {
		out = append(out, model.Opportunity{
			ID:               opportunityID(workspaceID, c.ID, "citations"),
			Title:            "Earn citations for " + label,
			Description:      fmt.Sprintf("Engines rarely cite %s when answering %s prompts", brandName, c.Intent),
			ClusterID:        c.ID,
			ImpactScore:      round2(impact * 0.6),
			Confidence:       round2(confidence * 0.9),
			EngineVisibility: maps.Clone(out[0].EngineVisibility),
			ActionSteps:      append([]string(nil), citationSteps...),
			Evidence:         append(evidence[:1:1], fmt.Sprintf("citation score %.0f/100", cit.Score)),
		})
	}
	return out, nil
}

type playbook struct {
	title      string
	steps      []string
	difficulty model.Difficulty
}

var trustPlaybooks = map[string]playbook{
	"low_citation_rate": {
		title:      "Make first-party pages citable",
		difficulty: model.DifficultyMedium,
		steps: []string{
			"Add clear, quotable facts and statistics to key pages",
			"Mark up pages with organization and product structured data",
			"Keep pricing and policy pages crawlable",
		},
	},
	"low_trust_score": {
		title:      "Strengthen trust signals",
		difficulty: model.DifficultyMedium,
		steps: []string{
			"Publish author and company credentials",
			"Collect reviews on the platforms engines cite",
			"Link to independent coverage from the site",
		},
	},
	"engine_blind_spot": {
		title:      "Fix an engine blind spot",
		difficulty: model.DifficultyHard,
		steps: []string{
			"Check that the engine's crawler can reach the site",
			"Get listed in the directories that engine relies on",
			"Re-test the blind-spot prompts on that engine",
		},
	},
	"inconsistent_visibility": {
		title:      "Even out visibility across engines",
		difficulty: model.DifficultyMedium,
		steps: []string{
			"Compare answers from the strongest and weakest engines",
			"Publish the content the strong engine cites on the brand's own site",
			"Re-run the comparison after each content release",
		},
	},
}

var genericSteps = []string{
	"Review the affected prompts and engine answers",
	"Publish content that answers them directly",
	"Measure visibility again after indexing",
}

var severityPriority = map[model.Severity]model.Priority{
	model.SeverityCritical: model.PriorityCritical,
	model.SeverityHigh:     model.PriorityHigh,
	model.SeverityMedium:   model.PriorityMedium,
	model.SeverityLow:      model.PriorityLow,
}

var severityImpact = map[model.Severity]float64{
	model.SeverityCritical: 30,
	model.SeverityHigh:     20,
	model.SeverityMedium:   12,
	model.SeverityLow:      6,
}

// GenerateRecommendations turns trust failures, improvement paths, competitor
// advantages and easy clusters into a prioritized list.
func (b *Baseline) GenerateRecommendations(_ context.Context, _, brandName string, in model.RecommendationInputs) ([]model.Recommendation, error) {
	recs := []model.Recommendation{}

	seen := make(map[string]bool)
	for _, tf := range in.TrustFailures {
		if seen[tf.Type] {
			continue
		}
		seen[tf.Type] = true
		pb, ok := trustPlaybooks[tf.Type]
		if !ok {
			pb = playbook{title: "Address " + strings.ReplaceAll(tf.Type, "_", " "), steps: genericSteps, difficulty: model.DifficultyMedium}
		}
		prio, ok := severityPriority[tf.Severity]
		if !ok {
			prio = model.PriorityMedium
		}
		recs = append(recs, model.Recommendation{
			Title:          pb.title,
			Description:    tf.Description,
			Priority:       prio,
			Difficulty:     pb.difficulty,
			Steps:          append([]string(nil), pb.steps...),
			ExpectedImpact: severityImpact[tf.Severity],
			Confidence:     tf.Confidence,
		})
	}

	if len(in.Composite.ImprovementPaths) > 0 {
		p := in.Composite.ImprovementPaths[0]
		prio := model.PriorityMedium
		if p.PotentialGain > 10 {
			prio = model.PriorityHigh
		}
		recs = append(recs, model.Recommendation{
			Title:       "Improve " + strings.ReplaceAll(p.Component, "_", " "),
			Description: fmt.Sprintf("Raising %s could add up to %.1f points to %s's composite score", p.Component, p.PotentialGain, brandName),
			Priority:    prio,
			Difficulty:  model.DifficultyMedium,
			Steps: []string{
				capitalize(p.Action, "Work on "+p.Component),
				"Track the component weekly",
				"Re-score after each change ships",
			},
			ExpectedImpact: p.PotentialGain,
			Confidence:     0.6,
		})
	}

	if top, ok := strongest(in.Advantages); ok && top.AdvantageScore >= 20 {
		prio, diff := model.PriorityMedium, model.DifficultyMedium
		if top.AdvantageScore >= 50 {
			prio, diff = model.PriorityHigh, model.DifficultyHard
		}
		recs = append(recs, model.Recommendation{
			Title:       "Close the gap with " + top.Competitor,
			Description: fmt.Sprintf("%s leads %s with an advantage score of %.0f/100", top.Competitor, brandName, top.AdvantageScore),
			Priority:    prio,
			Difficulty:  diff,
			Steps: []string{
				fmt.Sprintf("List the prompts where %s is named and %s is not", top.Competitor, brandName),
				"Publish comparison content covering those prompts",
				fmt.Sprintf("Earn placement in the sources that cite %s", top.Competitor),
			},
			ExpectedImpact: round2(top.AdvantageScore / 3),
			Confidence:     top.Confidence,
		})
	}

	var easy int
	for _, fd := range in.FixDifficulty {
		if fd.Difficulty == model.DifficultyEasy {
			easy++
		}
	}
	if easy > 0 {
		recs = append(recs, model.Recommendation{
			Title:       fmt.Sprintf("Start with %d easy prompt clusters", easy),
			Description: "These clusters have weak competition and can be won with focused content",
			Priority:    model.PriorityMedium,
			Difficulty:  model.DifficultyEasy,
			Steps: []string{
				"Pick the easy cluster with the highest commercial value",
				"Publish one answer page per prompt",
				"Re-run the prompts two weeks after publishing",
			},
			ExpectedImpact: float64(5 * easy),
			Confidence:     0.7,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		ri, _ := recs[i].Priority.Rank()
		rj, _ := recs[j].Priority.Rank()
		return ri < rj
	})
	for i := range recs {
		recs[i].ID = fmt.Sprintf("rec-%d", i+1)
	}
	return recs, nil
}

func strongest(advs []model.CompetitorAdvantage) (model.CompetitorAdvantage, bool) {
	if len(advs) == 0 {
		return model.CompetitorAdvantage{}, false
	}
	top := advs[0]
	for _, a := range advs[1:] {
		if a.AdvantageScore > top.AdvantageScore {
			top = a
		}
	}
	return top, true
}

func capitalize(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
