package intel

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/geo-intel/internal/cost"
)

// Stage keys, in execution order.
const (
	StageIndustry        = "industry_classification"
	StageSummary         = "business_summary"
	StagePrompts         = "prompt_generation"
	StageClustering      = "prompt_clustering"
	StageCompetitors     = "competitor_detection"
	StageShareOfVoice    = "share_of_voice"
	StageCitations       = "citation_analysis"
	StageCommercialValue = "commercial_value"
	StageCrossEngine     = "cross_engine_patterns"
	StageAdvantage       = "competitor_advantage"
	StageTrustFailures   = "trust_failures"
	StageFixDifficulty   = "fix_difficulty"
	StageComposite       = "composite_score"
	StageOpportunities   = "opportunity_generation"
	StageRecommendations = "recommendation_generation"
)

// Definition describes one stage of the pipeline.
type Definition struct {
	Key       string
	DependsOn []string
	FanOut    bool
	// Cost is the call-count assumption used by the cost estimator.
	Cost cost.StageProfile
}

var catalog = mustCatalog([]Definition{
	{
		Key:  StageIndustry,
		Cost: cost.StageProfile{Per: cost.PerRequest, LLMCalls: 1, InputTokens: 1500, OutputTokens: 300},
	},
	{
		Key:       StageSummary,
		DependsOn: []string{StageIndustry},
		Cost:      cost.StageProfile{Per: cost.PerRequest, LLMCalls: 1, InputTokens: 2000, OutputTokens: 400},
	},
	{
		Key:       StagePrompts,
		DependsOn: []string{StageIndustry, StageSummary},
		Cost:      cost.StageProfile{Per: cost.PerRequest, LLMCalls: 1, InputTokens: 1200, OutputTokens: 2500},
	},
	{
		Key:       StageClustering,
		DependsOn: []string{StagePrompts, StageIndustry},
		Cost:      cost.StageProfile{Per: cost.PerRequest, DBQueries: 1},
	},
	{
		Key:       StageCompetitors,
		DependsOn: []string{StagePrompts, StageIndustry},
		Cost:      cost.StageProfile{Per: cost.PerRequest, DBQueries: 1},
	},
	{
		Key:       StageShareOfVoice,
		DependsOn: []string{StageCompetitors},
		Cost:      cost.StageProfile{Per: cost.PerPrompt, EngineQueries: 1, DBQueries: 1},
	},
	{
		Key:  StageCitations,
		Cost: cost.StageProfile{Per: cost.PerRequest, DBQueries: 1},
	},
	{
		Key:       StageCommercialValue,
		DependsOn: []string{StageClustering},
		FanOut:    true,
		Cost:      cost.StageProfile{Per: cost.PerCluster, DBQueries: 1},
	},
	{
		Key:       StageCrossEngine,
		DependsOn: []string{StageClustering},
		Cost:      cost.StageProfile{Per: cost.PerRequest, DBQueries: 1},
	},
	{
		Key:       StageAdvantage,
		DependsOn: []string{StageCompetitors, StageShareOfVoice},
		FanOut:    true,
		Cost:      cost.StageProfile{Per: cost.PerCompetitor, DBQueries: 1},
	},
	{
		Key:       StageTrustFailures,
		DependsOn: []string{StageCitations, StageCrossEngine},
		Cost:      cost.StageProfile{Per: cost.PerRequest},
	},
	{
		Key:       StageFixDifficulty,
		DependsOn: []string{StageClustering, StageAdvantage},
		FanOut:    true,
		Cost:      cost.StageProfile{Per: cost.PerCluster},
	},
	{
		Key:       StageComposite,
		DependsOn: []string{StageShareOfVoice, StageCitations, StageCrossEngine, StageCommercialValue, StageClustering},
		Cost:      cost.StageProfile{Per: cost.PerRequest},
	},
	{
		Key:       StageOpportunities,
		DependsOn: []string{StageClustering, StageCommercialValue, StageFixDifficulty, StageShareOfVoice, StageComposite},
		FanOut:    true,
		Cost:      cost.StageProfile{Per: cost.PerCluster},
	},
	{
		Key:       StageRecommendations,
		DependsOn: []string{StageTrustFailures, StageComposite, StageAdvantage, StageFixDifficulty},
		Cost:      cost.StageProfile{Per: cost.PerRequest},
	},
})

// Catalog returns a copy of the stage definitions in execution order.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	for i, d := range catalog {
		d.DependsOn = append([]string(nil), d.DependsOn...)
		out[i] = d
	}
	return out
}

// StageKeys returns the stage keys in execution order.
func StageKeys() []string {
	keys := make([]string, len(catalog))
	for i, d := range catalog {
		keys[i] = d.Key
	}
	return keys
}

// CostProfiles returns the per-stage call-count assumptions, keyed by stage.
func CostProfiles() []cost.StageProfile {
	out := make([]cost.StageProfile, len(catalog))
	for i, d := range catalog {
		p := d.Cost
		p.Stage = d.Key
		out[i] = p
	}
	return out
}

// validateCatalog checks that keys are unique and that every dependency is
// declared before the stage that reads it, which also rules out cycles.
func validateCatalog(defs []Definition) error {
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d.Key == "" {
			return eris.New("intel: stage with empty key")
		}
		if seen[d.Key] {
			return eris.Errorf("intel: duplicate stage %s", d.Key)
		}
		for _, dep := range d.DependsOn {
			if dep == d.Key {
				return eris.Errorf("intel: stage %s depends on itself", d.Key)
			}
			if !seen[dep] {
				return eris.Errorf("intel: stage %s depends on %s, which does not run before it", d.Key, dep)
			}
		}
		seen[d.Key] = true
	}
	return nil
}

func mustCatalog(defs []Definition) []Definition {
	if err := validateCatalog(defs); err != nil {
		panic(err)
	}
	return defs
}
