package model

// Placeholder is substituted for required text that a stage failed to produce.
const Placeholder = "Analysis unavailable"

// Severity ranks a trust failure finding.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Priority ranks a recommendation.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Difficulty describes the expected effort to fix a visibility gap.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IndustryClassification is the output of industry detection.
type IndustryClassification struct {
	Primary    string   `json:"primary"`
	Secondary  []string `json:"secondary"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
}

// BusinessSummary describes what the brand sells. It feeds prompt generation.
type BusinessSummary struct {
	Summary    string   `json:"summary"`
	Offerings  []string `json:"offerings"`
	Audience   string   `json:"audience,omitempty"`
	Confidence float64  `json:"confidence"`
}

// BrandContext is the input to prompt generation.
type BrandContext struct {
	BrandName string          `json:"brand_name"`
	Domain    string          `json:"domain"`
	Industry  string          `json:"industry"`
	Summary   BusinessSummary `json:"summary"`
}

// Prompt is a question a prospective customer might ask an answer engine.
type Prompt struct {
	Text              string  `json:"text"`
	Intent            string  `json:"intent"`
	CommercialIntent  float64 `json:"commercial_intent"`
	IndustryRelevance float64 `json:"industry_relevance"`
}

// PromptCluster groups prompts that share an intent.
type PromptCluster struct {
	ID                string   `json:"id"`
	Label             string   `json:"label"`
	Intent            string   `json:"intent"`
	Prompts           []string `json:"prompts"`
	CommercialIntent  float64  `json:"commercial_intent"`
	VisibilityPercent float64  `json:"visibility_percent"`
	Observations      int      `json:"observations"`
}

// Competitor is a brand observed alongside the subject brand in engine answers.
type Competitor struct {
	Name         string  `json:"name"`
	Domain       string  `json:"domain,omitempty"`
	Mentions     int     `json:"mentions"`
	SharePercent float64 `json:"share_percent"`
	Confidence   float64 `json:"confidence"`
}

// CompetitorShare is one competitor's share of voice.
type CompetitorShare struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// ShareOfVoice is the brand's share of mentions across engines.
type ShareOfVoice struct {
	BrandPercent float64            `json:"brand_percent"`
	ByEngine     map[string]float64 `json:"by_engine"`
	Competitors  []CompetitorShare  `json:"competitors"`
}

// CitationSource is a domain engines cite when answering brand prompts.
type CitationSource struct {
	Domain    string  `json:"domain"`
	Count     int     `json:"count"`
	Authority float64 `json:"authority"`
}

// CitationAnalysis summarizes how often engines cite the brand.
type CitationAnalysis struct {
	CitationRate float64          `json:"citation_rate"`
	TrustScore   float64          `json:"trust_score"`
	TopSources   []CitationSource `json:"top_sources"`
	SampleSize   int              `json:"sample_size"`
}

// CommercialValue scores the revenue potential of a prompt cluster.
type CommercialValue struct {
	ClusterID string  `json:"cluster_id"`
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

// EnginePattern is the brand's visibility on one engine.
type EnginePattern struct {
	Engine            string  `json:"engine"`
	VisibilityPercent float64 `json:"visibility_percent"`
	Consistency       float64 `json:"consistency"`
}

// CrossEnginePatterns compares visibility across engines.
type CrossEnginePatterns struct {
	Engines          []EnginePattern `json:"engines"`
	ConsistencyScore float64         `json:"consistency_score"`
	Insights         []string        `json:"insights"`
}

// CompetitorAdvantage explains why a competitor outranks the brand.
type CompetitorAdvantage struct {
	Competitor     string   `json:"competitor"`
	AdvantageScore float64  `json:"advantage_score"`
	Factors        []string `json:"factors"`
	Confidence     float64  `json:"confidence"`
}

// TrustFailure is a finding where engines fail to trust or surface the brand.
type TrustFailure struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Engine      string   `json:"engine,omitempty"`
	Confidence  float64  `json:"confidence"`
}

// FixDifficulty estimates the effort to win a prompt cluster.
type FixDifficulty struct {
	ClusterID  string     `json:"cluster_id"`
	Difficulty Difficulty `json:"difficulty"`
	Score      float64    `json:"score"`
	Rationale  string     `json:"rationale"`
}

// ScoreComponent is one weighted input of the composite score.
type ScoreComponent struct {
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// ImprovementPath is a concrete way to raise one composite component.
type ImprovementPath struct {
	Component     string  `json:"component"`
	PotentialGain float64 `json:"potential_gain"`
	Action        string  `json:"action"`
}

// CompositeScore is the 0-100 visibility health score.
type CompositeScore struct {
	Overall          float64                   `json:"overall"`
	Breakdown        map[string]ScoreComponent `json:"breakdown"`
	ImprovementPaths []ImprovementPath         `json:"improvement_paths"`
	Explanation      string                    `json:"explanation"`
}

// Opportunity is an evidence-backed way the brand is losing visibility.
type Opportunity struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	ClusterID        string             `json:"cluster_id"`
	ImpactScore      float64            `json:"impact_score"`
	Confidence       float64            `json:"confidence"`
	EngineVisibility map[string]float64 `json:"engine_visibility"`
	ActionSteps      []string           `json:"action_steps"`
	Evidence         []string           `json:"evidence"`
}

// Recommendation is a prioritized fix derived from several stage outputs.
type Recommendation struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Priority       Priority   `json:"priority"`
	Difficulty     Difficulty `json:"difficulty"`
	Steps          []string   `json:"steps"`
	ExpectedImpact float64    `json:"expected_impact"`
	Confidence     float64    `json:"confidence"`
}
