package intel

import (
	"context"

	"github.com/sells-group/geo-intel/internal/model"
)

// IndustryClassifier detects the industry a domain operates in.
type IndustryClassifier interface {
	ClassifyIndustry(ctx context.Context, workspaceID, domain string) (model.IndustryClassification, error)
}

// BusinessSummarizer describes what a brand sells.
type BusinessSummarizer interface {
	SummarizeBusiness(ctx context.Context, workspaceID, brandName, domain string, industry model.IndustryClassification) (model.BusinessSummary, error)
}

// PromptGenerator produces the prompts a brand should be visible for.
type PromptGenerator interface {
	GeneratePrompts(ctx context.Context, workspaceID string, brand model.BrandContext) ([]model.Prompt, error)
}

// PromptClusterer groups prompts by topic and intent.
type PromptClusterer interface {
	ClusterPrompts(ctx context.Context, workspaceID, brandName string, prompts []model.Prompt, industry model.IndustryClassification) ([]model.PromptCluster, error)
}

// CompetitorDetector finds brands competing for the same prompts.
type CompetitorDetector interface {
	DetectCompetitors(ctx context.Context, workspaceID, brandName string, prompts []model.Prompt, industry model.IndustryClassification) ([]model.Competitor, error)
}

// ShareOfVoiceCalculator measures the brand's share of answer-engine mentions.
type ShareOfVoiceCalculator interface {
	ShareOfVoice(ctx context.Context, workspaceID, brandName string, competitors []model.Competitor) (model.ShareOfVoice, error)
}

// CitationService analyzes which sources engines cite for the brand.
type CitationService interface {
	AnalyzeCitations(ctx context.Context, workspaceID, brandName, domain string) (model.CitationAnalysis, error)
}

// CommercialValueScorer scores one prompt cluster.
type CommercialValueScorer interface {
	ScoreCommercialValue(ctx context.Context, workspaceID, brandName string, cluster model.PromptCluster) (model.CommercialValue, error)
}

// CrossEngineAnalyzer compares brand visibility across engines.
type CrossEngineAnalyzer interface {
	AnalyzeCrossEngine(ctx context.Context, workspaceID, brandName string, clusters []model.PromptCluster) (model.CrossEnginePatterns, error)
}

// CompetitorAdvantageAnalyzer explains why one competitor outranks the brand.
type CompetitorAdvantageAnalyzer interface {
	AnalyzeAdvantage(ctx context.Context, workspaceID, brandName string, competitor model.Competitor, sov model.ShareOfVoice) (model.CompetitorAdvantage, error)
}

// TrustFailureDetector finds reasons engines may distrust the brand.
type TrustFailureDetector interface {
	DetectTrustFailures(ctx context.Context, workspaceID, brandName string, citations model.CitationAnalysis, patterns model.CrossEnginePatterns) ([]model.TrustFailure, error)
}

// FixDifficultyScorer estimates the effort to close one cluster's gap.
type FixDifficultyScorer interface {
	ScoreFixDifficulty(ctx context.Context, workspaceID, brandName string, cluster model.PromptCluster, advantages []model.CompetitorAdvantage) (model.FixDifficulty, error)
}

// CompositeScorer computes the overall visibility score.
type CompositeScorer interface {
	CompositeScore(ctx context.Context, workspaceID, brandName string, in model.CompositeInputs) (model.CompositeScore, error)
}

// OpportunityGenerator describes the visibility opportunities in one cluster.
type OpportunityGenerator interface {
	GenerateOpportunities(ctx context.Context, workspaceID, brandName string, in model.OpportunityInputs) ([]model.Opportunity, error)
}

// RecommendationGenerator turns findings into prioritized fixes.
type RecommendationGenerator interface {
	GenerateRecommendations(ctx context.Context, workspaceID, brandName string, in model.RecommendationInputs) ([]model.Recommendation, error)
}

// Collaborators groups the implementation of every stage. A nil field makes
// its stage fail and fall back to the default.
type Collaborators struct {
	Industry        IndustryClassifier
	Summary         BusinessSummarizer
	Prompts         PromptGenerator
	Clustering      PromptClusterer
	Competitors     CompetitorDetector
	ShareOfVoice    ShareOfVoiceCalculator
	Citations       CitationService
	CommercialValue CommercialValueScorer
	CrossEngine     CrossEngineAnalyzer
	Advantage       CompetitorAdvantageAnalyzer
	TrustFailures   TrustFailureDetector
	FixDifficulty   FixDifficultyScorer
	Composite       CompositeScorer
	Opportunities   OpportunityGenerator
	Recommendations RecommendationGenerator
}
