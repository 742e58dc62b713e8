package model

// CompositeInputs are the upstream outputs the composite score is derived from.
type CompositeInputs struct {
	ShareOfVoice    ShareOfVoice        `json:"share_of_voice"`
	Citations       CitationAnalysis    `json:"citations"`
	CrossEngine     CrossEnginePatterns `json:"cross_engine"`
	CommercialValue []CommercialValue   `json:"commercial_value"`
	Clusters        []PromptCluster     `json:"clusters"`
}

// OpportunityInputs is the per-cluster context for opportunity generation.
type OpportunityInputs struct {
	Cluster         PromptCluster   `json:"cluster"`
	CommercialValue CommercialValue `json:"commercial_value"`
	FixDifficulty   FixDifficulty   `json:"fix_difficulty"`
	ShareOfVoice    ShareOfVoice    `json:"share_of_voice"`
	Composite       CompositeScore  `json:"composite"`
}

// RecommendationInputs are the findings recommendations are built from.
type RecommendationInputs struct {
	TrustFailures []TrustFailure        `json:"trust_failures"`
	Composite     CompositeScore        `json:"composite"`
	Advantages    []CompetitorAdvantage `json:"advantages"`
	FixDifficulty []FixDifficulty       `json:"fix_difficulty"`
}
