package intel

import (
	"context"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geo-intel/internal/config"
	"github.com/sells-group/geo-intel/internal/model"
	"github.com/sells-group/geo-intel/internal/sanitize"
	"github.com/sells-group/geo-intel/internal/stage"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestOrchestrator(c Collaborators) *Orchestrator {
	o := New(nil, c, nil)
	o.now = func() time.Time { return fixedNow }
	return o
}

func orchestrate(o *Orchestrator, opts model.Options) *model.IntelligenceResponse {
	return o.Orchestrate(context.Background(), "ws-1", "Wanderly", "wanderly.com", opts)
}

func hasWarning(resp *model.IntelligenceResponse, substr string) bool {
	for _, w := range resp.Metadata.Warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestOrchestrate_AllStagesSucceed(t *testing.T) {
	o := newTestOrchestrator(allCollaborators(&fakeStages{}))
	resp := orchestrate(o, model.Options{})

	require.NotNil(t, resp)
	assert.Equal(t, "ws-1", resp.WorkspaceID)
	assert.Equal(t, "Wanderly", resp.BrandName)
	assert.Equal(t, "wanderly.com", resp.Domain)
	assert.Equal(t, "travel", resp.Industry.Primary)
	assert.Len(t, resp.Prompts, 6)
	assert.Len(t, resp.PromptClusters, 3)
	assert.Len(t, resp.Competitors, 4)
	assert.Len(t, resp.CommercialValue, 3)
	assert.Len(t, resp.CompetitorAdvantages, 4)
	assert.Len(t, resp.FixDifficulty, 3)
	assert.Len(t, resp.Opportunities, 6)
	assert.Len(t, resp.Recommendations, 3)

	assert.Empty(t, resp.Metadata.Warnings)
	assert.Empty(t, resp.Metadata.Errors)
	assert.True(t, resp.Complete())
	assert.InDelta(t, 0.9, resp.Metadata.Confidence, 1e-9)
	assert.Equal(t, "travel", resp.Metadata.Industry)
	assert.Equal(t, fixedNow, resp.Metadata.GeneratedAt)

	require.NotNil(t, resp.Metadata.Execution)
	assert.Len(t, resp.Metadata.Execution.SuccessfulSteps, len(StageKeys()))
	assert.Empty(t, resp.Metadata.Execution.FailedSteps)
	assert.Empty(t, resp.Metadata.Execution.SkippedSteps)

	assert.True(t, o.ValidateDataQuality(resp).MeetsThreshold)
}

// expectedDefaults maps a stage to a comparison of its response field
// against the sanitized default.
var expectedDefaults = map[string]func(t *testing.T, got, want model.IntelligenceResponse){
	StageIndustry: func(t *testing.T, got, want model.IntelligenceResponse) {
		assert.Equal(t, want.Industry, got.Industry)
	},
	StageSummary: func(t *testing.T, got, want model.IntelligenceResponse) {
		assert.Equal(t, want.BusinessSummary, got.BusinessSummary)
	},
	StagePrompts: func(t *testing.T, got, want model.IntelligenceResponse) {
		assert.Equal(t, want.Prompts, got.Prompts)
	},
	StageClustering: func(t *testing.T, got, want model.IntelligenceResponse) {
		assert.Equal(t, want.PromptClusters, got.PromptClusters)
	},
	StageCompetitors: func(t *testing.T, got, want model.IntelligenceResponse) {
		assert.Equal(t, want.Competitors, got.Competitors)
	},
	StageShareOfVoice: func(t *testing.T, got, want model.IntelligenceResponse) {
		assert.Equal(t, want.ShareOfVoice, got.ShareOfVoice)
	},
	StageCitations: func(t *testing.T, got, want model.IntelligenceResponse) {
		assert.Equal(t, want.Citations, got.Citations)
	},
	StageCommercialValue: func(t *testing.T, got, want model.IntelligenceResponse) {
		assert.Equal(t, want.CommercialValue, got.CommercialValue)
	},
	StageCrossEngine: func(t *testing.T, got, want model.IntelligenceResponse) {
		assert.Equal(t, want.CrossEngine, got.CrossEngine)
	},
	StageAdvantage: func(t *testing.T, got, want model.IntelligenceResponse) {
		assert.Equal(t, want.CompetitorAdvantages, got.CompetitorAdvantages)
	},
	StageTrustFailures: func(t *testing.T, got, want model.IntelligenceResponse) {
		assert.Equal(t, want.TrustFailures, got.TrustFailures)
	},
	StageFixDifficulty: func(t *testing.T, got, want model.IntelligenceResponse) {
		assert.Equal(t, want.FixDifficulty, got.FixDifficulty)
	},
	StageComposite: func(t *testing.T, got, want model.IntelligenceResponse) {
		assert.Equal(t, want.CompositeScore, got.CompositeScore)
	},
	StageOpportunities: func(t *testing.T, got, want model.IntelligenceResponse) {
		assert.Equal(t, want.Opportunities, got.Opportunities)
	},
	StageRecommendations: func(t *testing.T, got, want model.IntelligenceResponse) {
		assert.Equal(t, want.Recommendations, got.Recommendations)
	},
}

// defaultsFor builds the sanitized default output of every stage, using the
// upstream shapes the fake collaborators produce.
func defaultsFor() model.IntelligenceResponse {
	f := &fakeStages{}
	ctx := context.Background()
	industry, _ := f.ClassifyIndustry(ctx, "", "")
	summary, _ := f.SummarizeBusiness(ctx, "", "", "", industry)
	prompts, _ := f.GeneratePrompts(ctx, "", model.BrandContext{})
	clusters, _ := f.ClusterPrompts(ctx, "", "", prompts, industry)
	competitors, _ := f.DetectCompetitors(ctx, "", "", prompts, industry)

	var commercial []model.CommercialValue
	var fix []model.FixDifficulty
	for _, c := range clusters {
		commercial = append(commercial, defaultCommercialValue(c))
		fix = append(fix, defaultFixDifficulty(c))
	}
	var advantages []model.CompetitorAdvantage
	for _, c := range competitors {
		advantages = append(advantages, defaultAdvantage(c))
	}

	fallback := FallbackPrompts(model.BrandContext{
		BrandName: "Wanderly", Domain: "wanderly.com", Industry: industry.Primary, Summary: summary,
	})

	raw := model.IntelligenceResponse{
		Industry:             defaultIndustry(),
		BusinessSummary:      defaultSummary(),
		Prompts:              fallback,
		PromptClusters:       defaultClusters(),
		Competitors:          defaultCompetitors(),
		ShareOfVoice:         defaultShareOfVoice(),
		Citations:            defaultCitations(),
		CommercialValue:      commercial,
		CrossEngine:          defaultCrossEngine(),
		CompetitorAdvantages: advantages,
		TrustFailures:        defaultTrustFailures(),
		FixDifficulty:        fix,
		CompositeScore:       defaultComposite(),
		Opportunities:        defaultOpportunities(),
		Recommendations:      defaultRecommendations(),
	}
	out, _ := sanitize.Sanitize(raw)
	return out
}

func TestOrchestrate_DefaultSubstitution(t *testing.T) {
	want := defaultsFor()
	for _, key := range StageKeys() {
		t.Run(key, func(t *testing.T) {
			o := newTestOrchestrator(allCollaborators(&fakeStages{fail: map[string]bool{key: true}}))
			resp := orchestrate(o, model.Options{})

			require.NotNil(t, resp)
			expectedDefaults[key](t, *resp, want)
			assert.True(t, hasWarning(resp, key), "warnings should mention %s: %v", key, resp.Metadata.Warnings)
			assert.Contains(t, resp.Metadata.Execution.FailedSteps, key)
		})
	}
}

func TestOrchestrate_NilCollaboratorFallsBack(t *testing.T) {
	want := defaultsFor()
	for _, key := range StageKeys() {
		t.Run(key, func(t *testing.T) {
			collab := allCollaborators(&fakeStages{})
			clearCollaborator(&collab, key)
			resp := orchestrate(newTestOrchestrator(collab), model.Options{})

			expectedDefaults[key](t, *resp, want)
			assert.True(t, hasWarning(resp, "stage "+key+" failed: no implementation configured; using default"))
		})
	}
}

func clearCollaborator(c *Collaborators, key string) {
	switch key {
	case StageIndustry:
		c.Industry = nil
	case StageSummary:
		c.Summary = nil
	case StagePrompts:
		c.Prompts = nil
	case StageClustering:
		c.Clustering = nil
	case StageCompetitors:
		c.Competitors = nil
	case StageShareOfVoice:
		c.ShareOfVoice = nil
	case StageCitations:
		c.Citations = nil
	case StageCommercialValue:
		c.CommercialValue = nil
	case StageCrossEngine:
		c.CrossEngine = nil
	case StageAdvantage:
		c.Advantage = nil
	case StageTrustFailures:
		c.TrustFailures = nil
	case StageFixDifficulty:
		c.FixDifficulty = nil
	case StageComposite:
		c.Composite = nil
	case StageOpportunities:
		c.Opportunities = nil
	case StageRecommendations:
		c.Recommendations = nil
	}
}

func TestOrchestrate_NeverPanicsForAnyFailureSubset(t *testing.T) {
	keys := StageKeys()
	fanOut := map[string]bool{}
	for _, d := range Catalog() {
		fanOut[d.Key] = d.FanOut
	}
	rng := rand.New(rand.NewPCG(7, 42))

	for range 150 {
		f := &fakeStages{fail: map[string]bool{}, panics: map[string]bool{}}
		for _, k := range keys {
			switch rng.IntN(4) {
			case 0:
				f.fail[k] = true
			case 1:
				f.panics[k] = true
			}
		}

		var resp *model.IntelligenceResponse
		require.NotPanics(t, func() {
			resp = orchestrate(newTestOrchestrator(allCollaborators(f)), model.Options{})
		})
		require.NotNil(t, resp)
		assert.NotEmpty(t, resp.Prompts)
		assert.NotNil(t, resp.Opportunities)
		assert.NotNil(t, resp.Metadata.Errors)
		assert.GreaterOrEqual(t, resp.Metadata.Confidence, 0.0)
		assert.LessOrEqual(t, resp.Metadata.Confidence, 1.0)
		// Fan-out stages may have had no items to panic on.
		for k := range f.panics {
			if !fanOut[k] {
				assert.True(t, hasWarning(resp, k))
			}
		}
	}
}

func TestOrchestrate_EveryStageFails(t *testing.T) {
	orch := newTestOrchestrator(Collaborators{})
	resp := orchestrate(orch, model.Options{})

	require.NotNil(t, resp)
	assert.Equal(t, defaultIndustryLabel, resp.Industry.Primary)
	assert.NotEmpty(t, resp.Prompts)
	assert.Len(t, resp.Metadata.Execution.FailedSteps, len(StageKeys()))
	// Base 0.5 minus the full failure penalty.
	assert.InDelta(t, 0.3, resp.Metadata.Confidence, 1e-9)
	assert.False(t, orch.ValidateDataQuality(resp).MeetsThreshold)
}

func TestOrchestrate_InvalidIndustryReplacedBeforeDependents(t *testing.T) {
	tests := []struct {
		name     string
		industry model.IndustryClassification
		reason   string
	}{
		{name: "empty primary", industry: model.IndustryClassification{Primary: " ", Confidence: 0.9}, reason: "empty primary industry"},
		{name: "confidence above one", industry: model.IndustryClassification{Primary: "travel", Confidence: 1.2}, reason: "confidence 1.2 outside [0,1]"},
		{name: "nan confidence", industry: model.IndustryClassification{Primary: "travel", Confidence: math.NaN()}, reason: "confidence NaN outside [0,1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := tt.industry
			f := &fakeStages{industry: &ind}
			rec := &recordingSummarizer{fakeStages: f}
			collab := allCollaborators(f)
			collab.Summary = rec

			resp := orchestrate(newTestOrchestrator(collab), model.Options{})

			assert.Equal(t, defaultIndustryLabel, resp.Industry.Primary)
			assert.InDelta(t, defaultIndustryConfidence, resp.Industry.Confidence, 1e-9)
			assert.Equal(t, defaultIndustryLabel, rec.seen.Primary, "dependent stage saw the invalid classification")
			assert.True(t, hasWarning(resp, tt.reason), "%v", resp.Metadata.Warnings)
			assert.Contains(t, resp.Metadata.Execution.FailedSteps, StageIndustry)
		})
	}
}

type recordingSummarizer struct {
	*fakeStages
	seen model.IndustryClassification
}

func (r *recordingSummarizer) SummarizeBusiness(ctx context.Context, ws, brand, domain string, industry model.IndustryClassification) (model.BusinessSummary, error) {
	r.seen = industry
	return r.fakeStages.SummarizeBusiness(ctx, ws, brand, domain, industry)
}

func TestOrchestrate_ZeroPromptsUsesTemplates(t *testing.T) {
	empty := []model.Prompt{}
	resp := orchestrate(newTestOrchestrator(allCollaborators(&fakeStages{prompts: &empty})), model.Options{})

	assert.NotEmpty(t, resp.Prompts)
	assert.Len(t, resp.PromptClusters, 3)
	assert.True(t, hasWarning(resp, "stage prompt_generation returned no prompts; using template prompts"))
	assert.Contains(t, resp.Metadata.Execution.SuccessfulSteps, StagePrompts)
}

func TestOrchestrate_FanOutIsolation(t *testing.T) {
	f := &fakeStages{failItem: map[string]string{
		StageCommercialValue: "c2",
		StageAdvantage:       "Umbrella",
	}}
	resp := orchestrate(newTestOrchestrator(allCollaborators(f)), model.Options{})

	require.Len(t, resp.CommercialValue, 3)
	assert.Equal(t, "c1", resp.CommercialValue[0].ClusterID)
	assert.InDelta(t, 70, resp.CommercialValue[0].Score, 1e-9)
	assert.Equal(t, model.CommercialValue{ClusterID: "c2", Score: 0, Rationale: model.Placeholder}, resp.CommercialValue[1])
	assert.Equal(t, "c3", resp.CommercialValue[2].ClusterID)

	require.Len(t, resp.CompetitorAdvantages, 4)
	assert.Equal(t, "Umbrella", resp.CompetitorAdvantages[2].Competitor)
	assert.Zero(t, resp.CompetitorAdvantages[2].AdvantageScore)
	assert.InDelta(t, 30, resp.CompetitorAdvantages[3].AdvantageScore, 1e-9)

	assert.True(t, hasWarning(resp, "could not analyze commercial_value item c2: no data for c2"))
	assert.True(t, hasWarning(resp, "could not analyze competitor_advantage item Umbrella"))
	// Item failures do not fail the stage.
	assert.Contains(t, resp.Metadata.Execution.SuccessfulSteps, StageCommercialValue)
}

func TestOrchestrate_Options(t *testing.T) {
	no := false
	resp := orchestrate(newTestOrchestrator(allCollaborators(&fakeStages{})), model.Options{
		IncludeOpportunities:   &no,
		IncludeRecommendations: &no,
	})

	assert.NotNil(t, resp.Opportunities)
	assert.Empty(t, resp.Opportunities)
	assert.NotNil(t, resp.Recommendations)
	assert.Empty(t, resp.Recommendations)
	assert.Equal(t, []string{StageOpportunities, StageRecommendations}, resp.Metadata.Execution.SkippedSteps)
	assert.Empty(t, resp.Metadata.Execution.FailedSteps)
	// Skipped stages are not failures.
	assert.InDelta(t, 0.9, resp.Metadata.Confidence, 1e-9)
}

func TestOrchestrate_MaxOpportunitiesCapsResult(t *testing.T) {
	resp := orchestrate(newTestOrchestrator(allCollaborators(&fakeStages{})), model.Options{MaxOpportunities: 4})

	require.Len(t, resp.Opportunities, 4)
	var ids []string
	for _, opp := range resp.Opportunities {
		ids = append(ids, opp.ID)
	}
	assert.Equal(t, []string{"c1-0", "c1-1", "c2-0", "c2-1"}, ids)
}

func TestOrchestrate_ConfiguredCap(t *testing.T) {
	cfg := &config.Config{}
	cfg.Intel.MaxOpportunities = 3
	orch := New(cfg, allCollaborators(&fakeStages{}), nil)

	resp := orchestrate(orch, model.Options{})
	assert.Len(t, resp.Opportunities, 3)

	// An explicit request option wins over the configured cap.
	resp = orchestrate(orch, model.Options{MaxOpportunities: 5})
	assert.Len(t, resp.Opportunities, 5)
}

func TestOrchestrate_SoftBudget(t *testing.T) {
	f := &fakeStages{slow: map[string]time.Duration{StageCitations: 300 * time.Millisecond}}
	orch := newTestOrchestrator(allCollaborators(f))
	orch.budget = 30 * time.Millisecond

	resp := orchestrate(orch, model.Options{})

	assert.True(t, hasWarning(resp, "stage citation_analysis failed: exceeded soft time budget"))
	assert.Equal(t, defaultsFor().Citations, resp.Citations)
	assert.Contains(t, resp.Metadata.Execution.FailedSteps, StageCitations)
}

func TestOrchestrate_FanOutItemsHitBudget(t *testing.T) {
	f := &fakeStages{slow: map[string]time.Duration{StageCommercialValue: 400 * time.Millisecond}}
	orch := newTestOrchestrator(allCollaborators(f))
	orch.budget = 50 * time.Millisecond

	resp := orchestrate(orch, model.Options{})

	for _, id := range []string{"c1", "c2", "c3"} {
		assert.True(t, hasWarning(resp, "could not analyze commercial_value item "+id+": exceeded soft time budget"), id)
	}
	assert.False(t, hasWarning(resp, "stage commercial_value failed"))
	assert.Contains(t, resp.Metadata.Execution.FailedSteps, StageCommercialValue)
	require.Len(t, resp.CommercialValue, 3)
	assert.Equal(t, "c2", resp.CommercialValue[1].ClusterID)
}

func TestOrchestrate_AssemblyFailureStillReturnsResponse(t *testing.T) {
	orch := newTestOrchestrator(allCollaborators(&fakeStages{}))
	orch.validator = nil

	var resp *model.IntelligenceResponse
	require.NotPanics(t, func() { resp = orchestrate(orch, model.Options{}) })
	require.NotNil(t, resp)
	assert.Equal(t, "ws-1", resp.WorkspaceID)
	require.Len(t, resp.Metadata.Errors, 1)
	assert.Contains(t, resp.Metadata.Errors[0], "response assembly failed")
	assert.NotNil(t, resp.Opportunities)
	assert.NotNil(t, resp.Metadata.Execution)
}

type countingSink struct {
	mu     sync.Mutex
	stages map[string]int
}

func (s *countingSink) Observe(e stage.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stages == nil {
		s.stages = map[string]int{}
	}
	s.stages[e.Stage]++
}

func TestOrchestrate_EmitsStageEvents(t *testing.T) {
	sink := &countingSink{}
	orch := New(nil, allCollaborators(&fakeStages{}), sink)
	_ = orchestrate(orch, model.Options{})

	sink.mu.Lock()
	defer sink.mu.Unlock()
	for _, key := range StageKeys() {
		assert.Positive(t, sink.stages[key], "no event for %s", key)
	}
	// One stage-level event plus one per cluster.
	assert.Equal(t, 4, sink.stages[StageCommercialValue])
}

func TestNew_UsesConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Intel.FanOutWidth = 2
	cfg.Intel.StageTimeoutSecs = 5
	cfg.Validation.CompositeTolerance = 1
	cfg.Confidence = config.ConfidenceConfig{Base: 0.2, Bonus: 0.05, HighThreshold: 0.7, FailurePenalty: 0.2}

	orch := New(cfg, allCollaborators(&fakeStages{}), nil)
	assert.Equal(t, 2, orch.width)
	assert.Equal(t, 5*time.Second, orch.budget)

	resp := orchestrate(orch, model.Options{})
	assert.InDelta(t, 0.4, resp.Metadata.Confidence, 1e-9)
	// Overall 50 vs weighted sum 46 is outside a tolerance of 1.
	assert.True(t, hasWarning(resp, "composite score formula mismatch"))
}
