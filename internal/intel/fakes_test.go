package intel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sells-group/geo-intel/internal/model"
)

// fakeStages implements every collaborator with well-formed output. Stages
// listed in fail return an error, stages in panics panic, and stages in slow
// sleep before answering.
type fakeStages struct {
	fail   map[string]bool
	panics map[string]bool
	slow   map[string]time.Duration

	// failItem fails one fan-out item, keyed by stage, valued by item label.
	failItem map[string]string

	industry *model.IndustryClassification
	prompts  *[]model.Prompt
}

func (f *fakeStages) check(key, item string) error {
	if d := f.slow[key]; d > 0 {
		time.Sleep(d)
	}
	if f.panics[key] {
		panic(fmt.Sprintf("%s exploded", key))
	}
	if f.fail[key] {
		return errors.New("upstream unavailable")
	}
	if item != "" && f.failItem[key] == item {
		return fmt.Errorf("no data for %s", item)
	}
	return nil
}

func allCollaborators(f *fakeStages) Collaborators {
	return Collaborators{
		Industry:        f,
		Summary:         f,
		Prompts:         f,
		Clustering:      f,
		Competitors:     f,
		ShareOfVoice:    f,
		Citations:       f,
		CommercialValue: f,
		CrossEngine:     f,
		Advantage:       f,
		TrustFailures:   f,
		FixDifficulty:   f,
		Composite:       f,
		Opportunities:   f,
		Recommendations: f,
	}
}

func (f *fakeStages) ClassifyIndustry(context.Context, string, string) (model.IndustryClassification, error) {
	if err := f.check(StageIndustry, ""); err != nil {
		return model.IndustryClassification{}, err
	}
	if f.industry != nil {
		return *f.industry, nil
	}
	return model.IndustryClassification{
		Primary:    "travel",
		Secondary:  []string{"hospitality"},
		Confidence: 0.9,
		Evidence:   []string{"booking engine on homepage"},
	}, nil
}

func (f *fakeStages) SummarizeBusiness(context.Context, string, string, string, model.IndustryClassification) (model.BusinessSummary, error) {
	if err := f.check(StageSummary, ""); err != nil {
		return model.BusinessSummary{}, err
	}
	return model.BusinessSummary{
		Summary:    "Boutique travel agency for curated trips",
		Offerings:  []string{"group tours", "honeymoon packages"},
		Confidence: 0.8,
	}, nil
}

func (f *fakeStages) GeneratePrompts(context.Context, string, model.BrandContext) ([]model.Prompt, error) {
	if err := f.check(StagePrompts, ""); err != nil {
		return nil, err
	}
	if f.prompts != nil {
		return *f.prompts, nil
	}
	out := make([]model.Prompt, 6)
	for i := range out {
		out[i] = model.Prompt{
			Text:              fmt.Sprintf("best curated trip option %d", i),
			Intent:            "commercial",
			CommercialIntent:  0.7,
			IndustryRelevance: 0.9,
		}
	}
	return out, nil
}

func (f *fakeStages) ClusterPrompts(_ context.Context, _ string, _ string, prompts []model.Prompt, _ model.IndustryClassification) ([]model.PromptCluster, error) {
	if err := f.check(StageClustering, ""); err != nil {
		return nil, err
	}
	out := make([]model.PromptCluster, 3)
	for i := range out {
		out[i] = model.PromptCluster{
			ID:                fmt.Sprintf("c%d", i+1),
			Label:             fmt.Sprintf("cluster %d", i+1),
			Intent:            "commercial",
			Prompts:           []string{prompts[i].Text},
			CommercialIntent:  0.6,
			VisibilityPercent: 40,
		}
	}
	return out, nil
}

func (f *fakeStages) DetectCompetitors(context.Context, string, string, []model.Prompt, model.IndustryClassification) ([]model.Competitor, error) {
	if err := f.check(StageCompetitors, ""); err != nil {
		return nil, err
	}
	names := []string{"Globex", "Initech", "Umbrella", "Hooli"}
	out := make([]model.Competitor, len(names))
	for i, n := range names {
		out[i] = model.Competitor{Name: n, Mentions: 10 - i, SharePercent: 15, Confidence: 0.7}
	}
	return out, nil
}

func (f *fakeStages) ShareOfVoice(_ context.Context, _ string, _ string, competitors []model.Competitor) (model.ShareOfVoice, error) {
	if err := f.check(StageShareOfVoice, ""); err != nil {
		return model.ShareOfVoice{}, err
	}
	shares := make([]model.CompetitorShare, len(competitors))
	for i, c := range competitors {
		shares[i] = model.CompetitorShare{Name: c.Name, Percent: 15}
	}
	return model.ShareOfVoice{
		BrandPercent: 40,
		ByEngine:     map[string]float64{"chatgpt": 45, "gemini": 35},
		Competitors:  shares,
	}, nil
}

func (f *fakeStages) AnalyzeCitations(context.Context, string, string, string) (model.CitationAnalysis, error) {
	if err := f.check(StageCitations, ""); err != nil {
		return model.CitationAnalysis{}, err
	}
	return model.CitationAnalysis{
		CitationRate: 30,
		TrustScore:   55,
		TopSources:   []model.CitationSource{{Domain: "tripadvisor.com", Count: 5, Authority: 0.8}},
	}, nil
}

func (f *fakeStages) ScoreCommercialValue(_ context.Context, _ string, _ string, cluster model.PromptCluster) (model.CommercialValue, error) {
	if err := f.check(StageCommercialValue, cluster.ID); err != nil {
		return model.CommercialValue{}, err
	}
	return model.CommercialValue{ClusterID: cluster.ID, Score: 70, Rationale: "high purchase intent"}, nil
}

func (f *fakeStages) AnalyzeCrossEngine(context.Context, string, string, []model.PromptCluster) (model.CrossEnginePatterns, error) {
	if err := f.check(StageCrossEngine, ""); err != nil {
		return model.CrossEnginePatterns{}, err
	}
	return model.CrossEnginePatterns{
		Engines: []model.EnginePattern{
			{Engine: "chatgpt", VisibilityPercent: 45, Consistency: 0.8},
			{Engine: "gemini", VisibilityPercent: 35, Consistency: 0.6},
		},
		ConsistencyScore: 70,
		Insights:         []string{"chatgpt mentions the brand more often"},
	}, nil
}

func (f *fakeStages) AnalyzeAdvantage(_ context.Context, _ string, _ string, c model.Competitor, _ model.ShareOfVoice) (model.CompetitorAdvantage, error) {
	if err := f.check(StageAdvantage, c.Name); err != nil {
		return model.CompetitorAdvantage{}, err
	}
	return model.CompetitorAdvantage{Competitor: c.Name, AdvantageScore: 30, Factors: []string{"more reviews"}, Confidence: 0.6}, nil
}

func (f *fakeStages) DetectTrustFailures(context.Context, string, string, model.CitationAnalysis, model.CrossEnginePatterns) ([]model.TrustFailure, error) {
	if err := f.check(StageTrustFailures, ""); err != nil {
		return nil, err
	}
	return []model.TrustFailure{{
		Type:        "low_citation_rate",
		Description: "few engines cite the brand's own pages",
		Severity:    model.SeverityMedium,
		Confidence:  0.7,
	}}, nil
}

func (f *fakeStages) ScoreFixDifficulty(_ context.Context, _ string, _ string, cluster model.PromptCluster, _ []model.CompetitorAdvantage) (model.FixDifficulty, error) {
	if err := f.check(StageFixDifficulty, cluster.ID); err != nil {
		return model.FixDifficulty{}, err
	}
	return model.FixDifficulty{ClusterID: cluster.ID, Difficulty: model.DifficultyEasy, Score: 25, Rationale: "few strong competitors"}, nil
}

func (f *fakeStages) CompositeScore(context.Context, string, string, model.CompositeInputs) (model.CompositeScore, error) {
	if err := f.check(StageComposite, ""); err != nil {
		return model.CompositeScore{}, err
	}
	return model.CompositeScore{
		Overall: 50,
		Breakdown: map[string]model.ScoreComponent{
			"visibility":     {Score: 40, Weight: 0.35},
			"share_of_voice": {Score: 40, Weight: 0.25},
			"citations":      {Score: 30, Weight: 0.15},
			"consistency":    {Score: 70, Weight: 0.15},
			"commercial":     {Score: 70, Weight: 0.10},
		},
		ImprovementPaths: []model.ImprovementPath{{Component: "citations", PotentialGain: 10, Action: "earn citations"}},
		Explanation:      "weighted blend of five components",
	}, nil
}

func (f *fakeStages) GenerateOpportunities(_ context.Context, _ string, _ string, in model.OpportunityInputs) ([]model.Opportunity, error) {
	if err := f.check(StageOpportunities, in.Cluster.ID); err != nil {
		return nil, err
	}
	out := make([]model.Opportunity, 2)
	for i := range out {
		out[i] = model.Opportunity{
			ID:               fmt.Sprintf("%s-%d", in.Cluster.ID, i),
			Title:            "Win " + in.Cluster.Label,
			Description:      "Competitors are cited more often",
			ClusterID:        in.Cluster.ID,
			ImpactScore:      in.CommercialValue.Score,
			Confidence:       0.6,
			EngineVisibility: map[string]float64{"chatgpt": 45},
			ActionSteps:      []string{"audit", "publish", "measure"},
			Evidence:         []string{"2 of 3 prompts miss the brand"},
		}
	}
	return out, nil
}

func (f *fakeStages) GenerateRecommendations(context.Context, string, string, model.RecommendationInputs) ([]model.Recommendation, error) {
	if err := f.check(StageRecommendations, ""); err != nil {
		return nil, err
	}
	out := make([]model.Recommendation, 3)
	for i := range out {
		out[i] = model.Recommendation{
			ID:             fmt.Sprintf("r%d", i+1),
			Title:          "Add structured data",
			Description:    "Engines cannot parse the package pages",
			Priority:       model.PriorityHigh,
			Difficulty:     model.DifficultyMedium,
			Steps:          []string{"a", "b", "c"},
			ExpectedImpact: 20,
			Confidence:     0.7,
		}
	}
	return out, nil
}
