package sanitize

import (
	"fmt"
	"maps"

	"github.com/sells-group/geo-intel/internal/model"
)

// MinSteps is the minimum number of action steps on opportunities and recommendations.
const MinSteps = 3

// StepPlaceholder pads short step lists.
const StepPlaceholder = "Review this finding with your team and assign an owner"

var (
	promptIntents  = []string{"informational", "commercial", "transactional", "navigational", "comparison"}
	severities     = []string{string(model.SeverityLow), string(model.SeverityMedium), string(model.SeverityHigh), string(model.SeverityCritical)}
	priorities     = []string{string(model.PriorityCritical), string(model.PriorityHigh), string(model.PriorityMedium), string(model.PriorityLow)}
	difficulties   = []string{string(model.DifficultyEasy), string(model.DifficultyMedium), string(model.DifficultyHard)}
	fallbackIntent = "informational"
)

var industryRules = []Rule[model.IndustryClassification]{
	Probability("confidence", func(v *model.IndustryClassification) *float64 { return &v.Confidence }),
}

var summaryRules = []Rule[model.BusinessSummary]{
	RequiredString("summary", func(v *model.BusinessSummary) *string { return &v.Summary }, model.Placeholder),
	Probability("confidence", func(v *model.BusinessSummary) *float64 { return &v.Confidence }),
}

var promptRules = []Rule[model.Prompt]{
	RequiredString("text", func(v *model.Prompt) *string { return &v.Text }, model.Placeholder),
	Enum("intent", func(v *model.Prompt) *string { return &v.Intent }, promptIntents, fallbackIntent),
	Probability("commercial_intent", func(v *model.Prompt) *float64 { return &v.CommercialIntent }),
	Probability("industry_relevance", func(v *model.Prompt) *float64 { return &v.IndustryRelevance }),
}

var clusterRules = []Rule[model.PromptCluster]{
	RequiredString("label", func(v *model.PromptCluster) *string { return &v.Label }, model.Placeholder),
	Probability("commercial_intent", func(v *model.PromptCluster) *float64 { return &v.CommercialIntent }),
	Percent("visibility_percent", func(v *model.PromptCluster) *float64 { return &v.VisibilityPercent }),
	Count("observations", func(v *model.PromptCluster) *int { return &v.Observations }),
}

var competitorRules = []Rule[model.Competitor]{
	RequiredString("name", func(v *model.Competitor) *string { return &v.Name }, "Unknown competitor"),
	Count("mentions", func(v *model.Competitor) *int { return &v.Mentions }),
	Percent("share_percent", func(v *model.Competitor) *float64 { return &v.SharePercent }),
	Probability("confidence", func(v *model.Competitor) *float64 { return &v.Confidence }),
}

var sovRules = []Rule[model.ShareOfVoice]{
	Percent("brand_percent", func(v *model.ShareOfVoice) *float64 { return &v.BrandPercent }),
	PercentMap("by_engine", func(v *model.ShareOfVoice) *map[string]float64 { return &v.ByEngine }),
}

var competitorShareRules = []Rule[model.CompetitorShare]{
	RequiredString("name", func(v *model.CompetitorShare) *string { return &v.Name }, "Unknown competitor"),
	Percent("percent", func(v *model.CompetitorShare) *float64 { return &v.Percent }),
}

var citationRules = []Rule[model.CitationAnalysis]{
	Percent("citation_rate", func(v *model.CitationAnalysis) *float64 { return &v.CitationRate }),
	Percent("trust_score", func(v *model.CitationAnalysis) *float64 { return &v.TrustScore }),
	Count("sample_size", func(v *model.CitationAnalysis) *int { return &v.SampleSize }),
}

var citationSourceRules = []Rule[model.CitationSource]{
	RequiredString("domain", func(v *model.CitationSource) *string { return &v.Domain }, "unknown"),
	Count("count", func(v *model.CitationSource) *int { return &v.Count }),
	Probability("authority", func(v *model.CitationSource) *float64 { return &v.Authority }),
}

var commercialRules = []Rule[model.CommercialValue]{
	Percent("score", func(v *model.CommercialValue) *float64 { return &v.Score }),
	RequiredString("rationale", func(v *model.CommercialValue) *string { return &v.Rationale }, model.Placeholder),
}

var crossEngineRules = []Rule[model.CrossEnginePatterns]{
	Percent("consistency_score", func(v *model.CrossEnginePatterns) *float64 { return &v.ConsistencyScore }),
}

var enginePatternRules = []Rule[model.EnginePattern]{
	RequiredString("engine", func(v *model.EnginePattern) *string { return &v.Engine }, "unknown"),
	Percent("visibility_percent", func(v *model.EnginePattern) *float64 { return &v.VisibilityPercent }),
	Probability("consistency", func(v *model.EnginePattern) *float64 { return &v.Consistency }),
}

var advantageRules = []Rule[model.CompetitorAdvantage]{
	RequiredString("competitor", func(v *model.CompetitorAdvantage) *string { return &v.Competitor }, "Unknown competitor"),
	Percent("advantage_score", func(v *model.CompetitorAdvantage) *float64 { return &v.AdvantageScore }),
	Probability("confidence", func(v *model.CompetitorAdvantage) *float64 { return &v.Confidence }),
}

var trustFailureRules = []Rule[model.TrustFailure]{
	RequiredString("type", func(v *model.TrustFailure) *string { return &v.Type }, "unspecified"),
	RequiredString("description", func(v *model.TrustFailure) *string { return &v.Description }, model.Placeholder),
	Enum("severity", func(v *model.TrustFailure) *string { return (*string)(&v.Severity) }, severities, string(model.SeverityMedium)),
	Probability("confidence", func(v *model.TrustFailure) *float64 { return &v.Confidence }),
}

var fixDifficultyRules = []Rule[model.FixDifficulty]{
	Enum("difficulty", func(v *model.FixDifficulty) *string { return (*string)(&v.Difficulty) }, difficulties, string(model.DifficultyMedium)),
	Percent("score", func(v *model.FixDifficulty) *float64 { return &v.Score }),
	RequiredString("rationale", func(v *model.FixDifficulty) *string { return &v.Rationale }, model.Placeholder),
}

var compositeRules = []Rule[model.CompositeScore]{
	Percent("overall", func(v *model.CompositeScore) *float64 { return &v.Overall }),
	RequiredString("explanation", func(v *model.CompositeScore) *string { return &v.Explanation }, model.Placeholder),
}

var componentRules = []Rule[model.ScoreComponent]{
	Percent("score", func(v *model.ScoreComponent) *float64 { return &v.Score }),
	Probability("weight", func(v *model.ScoreComponent) *float64 { return &v.Weight }),
}

var improvementRules = []Rule[model.ImprovementPath]{
	RequiredString("component", func(v *model.ImprovementPath) *string { return &v.Component }, "unknown"),
	Percent("potential_gain", func(v *model.ImprovementPath) *float64 { return &v.PotentialGain }),
	RequiredString("action", func(v *model.ImprovementPath) *string { return &v.Action }, model.Placeholder),
}

var opportunityRules = []Rule[model.Opportunity]{
	RequiredString("title", func(v *model.Opportunity) *string { return &v.Title }, model.Placeholder),
	RequiredString("description", func(v *model.Opportunity) *string { return &v.Description }, model.Placeholder),
	Percent("impact_score", func(v *model.Opportunity) *float64 { return &v.ImpactScore }),
	Probability("confidence", func(v *model.Opportunity) *float64 { return &v.Confidence }),
	PercentMap("engine_visibility", func(v *model.Opportunity) *map[string]float64 { return &v.EngineVisibility }),
	MinItems("action_steps", func(v *model.Opportunity) *[]string { return &v.ActionSteps }, MinSteps, StepPlaceholder),
}

var recommendationRules = []Rule[model.Recommendation]{
	RequiredString("title", func(v *model.Recommendation) *string { return &v.Title }, model.Placeholder),
	RequiredString("description", func(v *model.Recommendation) *string { return &v.Description }, model.Placeholder),
	Enum("priority", func(v *model.Recommendation) *string { return (*string)(&v.Priority) }, priorities, string(model.PriorityMedium)),
	Enum("difficulty", func(v *model.Recommendation) *string { return (*string)(&v.Difficulty) }, difficulties, string(model.DifficultyMedium)),
	MinItems("steps", func(v *model.Recommendation) *[]string { return &v.Steps }, MinSteps, StepPlaceholder),
	Percent("expected_impact", func(v *model.Recommendation) *float64 { return &v.ExpectedImpact }),
	Probability("confidence", func(v *model.Recommendation) *float64 { return &v.Confidence }),
}

var metadataRules = []Rule[model.Metadata]{
	Probability("confidence", func(v *model.Metadata) *float64 { return &v.Confidence }),
}

// Sanitize returns a sanitized deep copy of in together with the warnings
// raised while coercing it. in is not modified. List order is preserved and
// Sanitize(Sanitize(x)) equals Sanitize(x).
func Sanitize(in model.IntelligenceResponse) (model.IntelligenceResponse, []string) {
	w := &warnings{}
	out := in

	out.Industry.Secondary = strs(in.Industry.Secondary)
	out.Industry.Evidence = strs(in.Industry.Evidence)
	applyAll(industryRules, &out.Industry, "industry", w)

	out.BusinessSummary.Offerings = strs(in.BusinessSummary.Offerings)
	applyAll(summaryRules, &out.BusinessSummary, "business_summary", w)

	out.Prompts = each(in.Prompts, "prompts", promptRules, w, nil)
	out.PromptClusters = each(in.PromptClusters, "prompt_clusters", clusterRules, w, func(c *model.PromptCluster) {
		c.Prompts = strs(c.Prompts)
	})
	out.Competitors = each(in.Competitors, "competitors", competitorRules, w, nil)

	out.ShareOfVoice.ByEngine = maps.Clone(in.ShareOfVoice.ByEngine)
	applyAll(sovRules, &out.ShareOfVoice, "share_of_voice", w)
	out.ShareOfVoice.Competitors = each(in.ShareOfVoice.Competitors, "share_of_voice.competitors", competitorShareRules, w, nil)

	applyAll(citationRules, &out.Citations, "citations", w)
	out.Citations.TopSources = each(in.Citations.TopSources, "citations.top_sources", citationSourceRules, w, nil)

	out.CommercialValue = each(in.CommercialValue, "commercial_value", commercialRules, w, nil)

	applyAll(crossEngineRules, &out.CrossEngine, "cross_engine", w)
	out.CrossEngine.Engines = each(in.CrossEngine.Engines, "cross_engine.engines", enginePatternRules, w, nil)
	out.CrossEngine.Insights = strs(in.CrossEngine.Insights)

	out.CompetitorAdvantages = each(in.CompetitorAdvantages, "competitor_advantages", advantageRules, w, func(a *model.CompetitorAdvantage) {
		a.Factors = strs(a.Factors)
	})
	out.TrustFailures = each(in.TrustFailures, "trust_failures", trustFailureRules, w, nil)
	out.FixDifficulty = each(in.FixDifficulty, "fix_difficulty", fixDifficultyRules, w, nil)

	out.CompositeScore = sanitizeComposite(in.CompositeScore, w)

	out.Opportunities = each(in.Opportunities, "opportunities", opportunityRules, w, func(o *model.Opportunity) {
		o.ActionSteps = strs(o.ActionSteps)
		o.Evidence = strs(o.Evidence)
		o.EngineVisibility = maps.Clone(o.EngineVisibility)
	})
	out.Recommendations = each(in.Recommendations, "recommendations", recommendationRules, w, func(r *model.Recommendation) {
		r.Steps = strs(r.Steps)
	})

	out.Metadata.Warnings = strs(in.Metadata.Warnings)
	out.Metadata.Errors = strs(in.Metadata.Errors)
	applyAll(metadataRules, &out.Metadata, "metadata", w)

	return out, w.msgs
}

func sanitizeComposite(in model.CompositeScore, w *warnings) model.CompositeScore {
	out := in
	out.Breakdown = make(map[string]model.ScoreComponent, len(in.Breakdown))
	for name, c := range in.Breakdown {
		applyAll(componentRules, &c, "composite_score.breakdown."+name, w)
		out.Breakdown[name] = c
	}
	out.ImprovementPaths = each(in.ImprovementPaths, "composite_score.improvement_paths", improvementRules, w, nil)
	applyAll(compositeRules, &out, "composite_score", w)
	return out
}

// each copies items, detaches nested collections via prep, then applies rules
// to every element. The result is never nil.
func each[T any](items []T, path string, rules []Rule[T], w *warnings, prep func(*T)) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := range out {
		if prep != nil {
			prep(&out[i])
		}
		applyAll(rules, &out[i], fmt.Sprintf("%s[%d]", path, i), w)
	}
	return out
}

// strs returns a copy of s, never nil.
func strs(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
