package intel

import "github.com/sells-group/geo-intel/internal/model"

const defaultIndustryLabel = "general"

// defaultIndustryConfidence is the confidence attached to the fallback
// industry classification.
const defaultIndustryConfidence = 0.3

// Default factories, one per stage. Each returns a fresh value.

func defaultIndustry() model.IndustryClassification {
	return model.IndustryClassification{
		Primary:    defaultIndustryLabel,
		Secondary:  []string{},
		Confidence: defaultIndustryConfidence,
		Evidence:   []string{},
	}
}

func defaultSummary() model.BusinessSummary {
	return model.BusinessSummary{
		Summary:   model.Placeholder,
		Offerings: []string{},
	}
}

func defaultClusters() []model.PromptCluster { return []model.PromptCluster{} }

func defaultCompetitors() []model.Competitor { return []model.Competitor{} }

func defaultShareOfVoice() model.ShareOfVoice {
	return model.ShareOfVoice{
		ByEngine:    map[string]float64{},
		Competitors: []model.CompetitorShare{},
	}
}

func defaultCitations() model.CitationAnalysis {
	return model.CitationAnalysis{TopSources: []model.CitationSource{}}
}

func defaultCommercialValue(c model.PromptCluster) model.CommercialValue {
	return model.CommercialValue{ClusterID: c.ID, Rationale: model.Placeholder}
}

func defaultCrossEngine() model.CrossEnginePatterns {
	return model.CrossEnginePatterns{
		Engines:  []model.EnginePattern{},
		Insights: []string{},
	}
}

func defaultAdvantage(c model.Competitor) model.CompetitorAdvantage {
	return model.CompetitorAdvantage{Competitor: c.Name, Factors: []string{}}
}

func defaultTrustFailures() []model.TrustFailure { return []model.TrustFailure{} }

func defaultFixDifficulty(c model.PromptCluster) model.FixDifficulty {
	return model.FixDifficulty{
		ClusterID:  c.ID,
		Difficulty: model.DifficultyMedium,
		Score:      50,
		Rationale:  model.Placeholder,
	}
}

func defaultComposite() model.CompositeScore {
	return model.CompositeScore{
		Breakdown:        map[string]model.ScoreComponent{},
		ImprovementPaths: []model.ImprovementPath{},
		Explanation:      model.Placeholder,
	}
}

func defaultOpportunities() []model.Opportunity { return []model.Opportunity{} }

func defaultRecommendations() []model.Recommendation { return []model.Recommendation{} }
