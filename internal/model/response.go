package model

import "time"

// DefaultMaxOpportunities caps the opportunity stage when Options leaves it unset.
const DefaultMaxOpportunities = 50

// Options tunes a single orchestration request. Nil pointers take defaults.
type Options struct {
	IncludeOpportunities   *bool `json:"include_opportunities,omitempty"`
	IncludeRecommendations *bool `json:"include_recommendations,omitempty"`
	MaxOpportunities       int   `json:"max_opportunities,omitempty"`
}

// WantOpportunities reports whether the opportunity stage should run.
func (o Options) WantOpportunities() bool {
	return o.IncludeOpportunities == nil || *o.IncludeOpportunities
}

// WantRecommendations reports whether the recommendation stage should run.
func (o Options) WantRecommendations() bool {
	return o.IncludeRecommendations == nil || *o.IncludeRecommendations
}

// OpportunityLimit returns the effective opportunity cap.
func (o Options) OpportunityLimit() int {
	if o.MaxOpportunities <= 0 {
		return DefaultMaxOpportunities
	}
	return o.MaxOpportunities
}

// ExecutionSummary is the read-only view of orchestration metrics attached to a response.
type ExecutionSummary struct {
	TotalDurationMs   int64            `json:"total_duration_ms"`
	PerStepDurationMs map[string]int64 `json:"per_step_duration_ms"`
	SuccessfulSteps   []string         `json:"successful_steps"`
	FailedSteps       []string         `json:"failed_steps"`
	SkippedSteps      []string         `json:"skipped_steps"`
}

// Metadata describes how a response was generated.
type Metadata struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Confidence  float64           `json:"confidence"`
	Industry    string            `json:"industry"`
	Warnings    []string          `json:"warnings"`
	Errors      []string          `json:"errors"`
	Execution   *ExecutionSummary `json:"execution,omitempty"`
}

// IntelligenceResponse is the assembled visibility intelligence report.
type IntelligenceResponse struct {
	WorkspaceID          string                 `json:"workspace_id"`
	BrandName            string                 `json:"brand_name"`
	Domain               string                 `json:"domain"`
	Industry             IndustryClassification `json:"industry"`
	BusinessSummary      BusinessSummary        `json:"business_summary"`
	Prompts              []Prompt               `json:"prompts"`
	PromptClusters       []PromptCluster        `json:"prompt_clusters"`
	Competitors          []Competitor           `json:"competitors"`
	ShareOfVoice         ShareOfVoice           `json:"share_of_voice"`
	Citations            CitationAnalysis       `json:"citations"`
	CommercialValue      []CommercialValue      `json:"commercial_value"`
	CrossEngine          CrossEnginePatterns    `json:"cross_engine"`
	CompetitorAdvantages []CompetitorAdvantage  `json:"competitor_advantages"`
	TrustFailures        []TrustFailure         `json:"trust_failures"`
	FixDifficulty        []FixDifficulty        `json:"fix_difficulty"`
	CompositeScore       CompositeScore         `json:"composite_score"`
	Opportunities        []Opportunity          `json:"opportunities"`
	Recommendations      []Recommendation       `json:"recommendations"`
	Metadata             Metadata               `json:"metadata"`
}

// Complete reports whether no structural errors were recorded.
func (r *IntelligenceResponse) Complete() bool {
	return len(r.Metadata.Errors) == 0
}
