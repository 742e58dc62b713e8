package sanitize

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geo-intel/internal/model"
)

func rawResponse() model.IntelligenceResponse {
	return model.IntelligenceResponse{
		WorkspaceID: "ws-1",
		BrandName:   "Acme Travel",
		Domain:      "acmetravel.com",
		Industry: model.IndustryClassification{
			Primary:    "travel",
			Confidence: 1.7,
		},
		BusinessSummary: model.BusinessSummary{Summary: "  ", Confidence: math.NaN()},
		Prompts: []model.Prompt{
			{Text: "best travel agency", Intent: "COMMERCIAL", CommercialIntent: -0.2, IndustryRelevance: math.Inf(1)},
			{Text: "", Intent: "browsing", CommercialIntent: 0.4, IndustryRelevance: 0.9},
		},
		PromptClusters: []model.PromptCluster{
			{ID: "c1", Label: "", VisibilityPercent: 140, CommercialIntent: 0.5, Observations: -2},
		},
		Competitors: []model.Competitor{
			{Name: "Globex", Mentions: -3, SharePercent: -10, Confidence: 2},
		},
		ShareOfVoice: model.ShareOfVoice{
			BrandPercent: 250,
			ByEngine:     map[string]float64{"chatgpt": 120, "gemini": math.NaN(), "perplexity": 40},
		},
		Citations: model.CitationAnalysis{
			CitationRate: math.Inf(-1),
			TopSources:   []model.CitationSource{{Domain: "tripadvisor.com", Count: 4, Authority: 3}},
		},
		TrustFailures: []model.TrustFailure{
			{Type: "missing_citations", Description: "no citations", Severity: "HIGH", Confidence: 0.8},
			{Type: "", Description: "", Severity: "catastrophic", Confidence: -1},
		},
		FixDifficulty: []model.FixDifficulty{{ClusterID: "c1", Difficulty: "Impossible", Score: 101}},
		CompositeScore: model.CompositeScore{
			Overall: 105,
			Breakdown: map[string]model.ScoreComponent{
				"visibility": {Score: 120, Weight: 1.5},
			},
		},
		Opportunities: []model.Opportunity{
			{
				ID:               "o1",
				Title:            "Win comparison prompts",
				ImpactScore:      300,
				Confidence:       0.6,
				EngineVisibility: map[string]float64{"claude": -5},
				ActionSteps:      []string{"Publish comparison page"},
			},
		},
		Recommendations: []model.Recommendation{
			{ID: "r1", Title: "Fix schema", Priority: "urgent", Difficulty: "EASY", Steps: nil, Confidence: 0.9},
		},
		Metadata: model.Metadata{Confidence: 5},
	}
}

func TestSanitize_ClampsNumbers(t *testing.T) {
	out, _ := Sanitize(rawResponse())

	assert.Equal(t, 1.0, out.Industry.Confidence)
	assert.Equal(t, 0.0, out.BusinessSummary.Confidence)
	assert.Equal(t, 0.0, out.Prompts[0].CommercialIntent)
	assert.Equal(t, 1.0, out.Prompts[0].IndustryRelevance)
	assert.Equal(t, 100.0, out.PromptClusters[0].VisibilityPercent)
	assert.Equal(t, 0, out.PromptClusters[0].Observations)
	assert.Equal(t, 0, out.Competitors[0].Mentions)
	assert.Equal(t, 0.0, out.Competitors[0].SharePercent)
	assert.Equal(t, 1.0, out.Competitors[0].Confidence)
	assert.Equal(t, 100.0, out.ShareOfVoice.BrandPercent)
	assert.Equal(t, map[string]float64{"chatgpt": 100, "gemini": 0, "perplexity": 40}, out.ShareOfVoice.ByEngine)
	assert.Equal(t, 0.0, out.Citations.CitationRate)
	assert.Equal(t, 1.0, out.Citations.TopSources[0].Authority)
	assert.Equal(t, 100.0, out.FixDifficulty[0].Score)
	assert.Equal(t, 100.0, out.CompositeScore.Overall)
	assert.Equal(t, model.ScoreComponent{Score: 100, Weight: 1}, out.CompositeScore.Breakdown["visibility"])
	assert.Equal(t, 100.0, out.Opportunities[0].ImpactScore)
	assert.Equal(t, 0.0, out.Opportunities[0].EngineVisibility["claude"])
	assert.Equal(t, 1.0, out.Metadata.Confidence)
}

func TestClamp_EdgeValues(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   float64
		pct  float64
		prob float64
	}{
		{name: "nan", in: math.NaN(), pct: 0, prob: 0},
		{name: "negative", in: -0.5, pct: 0, prob: 0},
		{name: "negative infinity", in: math.Inf(-1), pct: 0, prob: 0},
		{name: "positive infinity", in: math.Inf(1), pct: 100, prob: 1},
		{name: "in range", in: 0.75, pct: 0.75, prob: 0.75},
		{name: "above probability", in: 42, pct: 42, prob: 1},
		{name: "above percent", in: 1000, pct: 100, prob: 1},
		{name: "max float", in: math.MaxFloat64, pct: 100, prob: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.pct, ClampPercent(tt.in))
			assert.Equal(t, tt.prob, ClampProbability(tt.in))
		})
	}
}

func TestSanitize_RequiredStringsAndEnums(t *testing.T) {
	out, warnings := Sanitize(rawResponse())

	assert.Equal(t, model.Placeholder, out.BusinessSummary.Summary)
	assert.Equal(t, model.Placeholder, out.Prompts[1].Text)
	assert.Equal(t, "commercial", out.Prompts[0].Intent)
	assert.Equal(t, "informational", out.Prompts[1].Intent)
	assert.Equal(t, model.Placeholder, out.PromptClusters[0].Label)
	assert.Equal(t, model.SeverityHigh, out.TrustFailures[0].Severity)
	assert.Equal(t, model.SeverityMedium, out.TrustFailures[1].Severity)
	assert.Equal(t, "unspecified", out.TrustFailures[1].Type)
	assert.Equal(t, model.DifficultyMedium, out.FixDifficulty[0].Difficulty)
	assert.Equal(t, model.PriorityMedium, out.Recommendations[0].Priority)
	assert.Equal(t, model.DifficultyEasy, out.Recommendations[0].Difficulty)
	assert.Equal(t, model.Placeholder, out.CompositeScore.Explanation)

	assert.Contains(t, warnings, `trust_failures[1].severity has unrecognized value "catastrophic", using "medium"`)
	assert.Contains(t, warnings, `recommendations[0].priority has unrecognized value "urgent", using "medium"`)
}

func TestSanitize_PadsShortLists(t *testing.T) {
	out, warnings := Sanitize(rawResponse())

	require.Len(t, out.Opportunities[0].ActionSteps, MinSteps)
	assert.Equal(t, "Publish comparison page", out.Opportunities[0].ActionSteps[0])
	assert.Equal(t, StepPlaceholder, out.Opportunities[0].ActionSteps[1])
	assert.Equal(t, StepPlaceholder, out.Opportunities[0].ActionSteps[2])
	require.Len(t, out.Recommendations[0].Steps, MinSteps)

	assert.Contains(t, warnings, "opportunities[0].action_steps has 1 entries, padded to 3")
	assert.Contains(t, warnings, "recommendations[0].steps has 0 entries, padded to 3")
}

func TestSanitize_NilCollectionsBecomeEmpty(t *testing.T) {
	out, _ := Sanitize(model.IntelligenceResponse{})

	assert.NotNil(t, out.Industry.Secondary)
	assert.NotNil(t, out.Industry.Evidence)
	assert.NotNil(t, out.BusinessSummary.Offerings)
	assert.NotNil(t, out.Prompts)
	assert.NotNil(t, out.PromptClusters)
	assert.NotNil(t, out.Competitors)
	assert.NotNil(t, out.ShareOfVoice.ByEngine)
	assert.NotNil(t, out.ShareOfVoice.Competitors)
	assert.NotNil(t, out.Citations.TopSources)
	assert.NotNil(t, out.CommercialValue)
	assert.NotNil(t, out.CrossEngine.Engines)
	assert.NotNil(t, out.CrossEngine.Insights)
	assert.NotNil(t, out.CompetitorAdvantages)
	assert.NotNil(t, out.TrustFailures)
	assert.NotNil(t, out.FixDifficulty)
	assert.NotNil(t, out.CompositeScore.Breakdown)
	assert.NotNil(t, out.CompositeScore.ImprovementPaths)
	assert.NotNil(t, out.Opportunities)
	assert.NotNil(t, out.Recommendations)
	assert.NotNil(t, out.Metadata.Warnings)
	assert.NotNil(t, out.Metadata.Errors)
	assert.Equal(t, model.Placeholder, out.BusinessSummary.Summary)
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := map[string]model.IntelligenceResponse{
		"raw":   rawResponse(),
		"empty": {},
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			once, _ := Sanitize(in)
			twice, warnings := Sanitize(once)
			if diff := cmp.Diff(once, twice); diff != "" {
				t.Errorf("second sanitize changed output (-once +twice):\n%s", diff)
			}
			assert.Empty(t, warnings)
		})
	}
}

func TestSanitize_PreservesOrderAndInput(t *testing.T) {
	in := rawResponse()
	in.Opportunities = append(in.Opportunities,
		model.Opportunity{ID: "o2", ActionSteps: []string{"a", "b", "c", "d"}},
		model.Opportunity{ID: "o3"},
	)

	out, _ := Sanitize(in)

	var ids []string
	for _, o := range out.Opportunities {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"o1", "o2", "o3"}, ids)
	assert.Equal(t, []string{"a", "b", "c", "d"}, out.Opportunities[1].ActionSteps)

	// The input is untouched.
	assert.Equal(t, []string{"Publish comparison page"}, in.Opportunities[0].ActionSteps)
	assert.Equal(t, 120.0, in.ShareOfVoice.ByEngine["chatgpt"])
	assert.Equal(t, -5.0, in.Opportunities[0].EngineVisibility["claude"])
	assert.Equal(t, model.Severity("HIGH"), in.TrustFailures[0].Severity)
	assert.Equal(t, 105.0, in.CompositeScore.Overall)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "percent", KindPercent.String())
	assert.Equal(t, "minItems", KindMinItems.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
