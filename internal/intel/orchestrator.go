// Package intel orchestrates the fifteen analysis stages that make up a
// brand visibility intelligence report.
package intel

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/geo-intel/internal/config"
	"github.com/sells-group/geo-intel/internal/confidence"
	"github.com/sells-group/geo-intel/internal/model"
	"github.com/sells-group/geo-intel/internal/sanitize"
	"github.com/sells-group/geo-intel/internal/stage"
	"github.com/sells-group/geo-intel/internal/validate"
)

// Orchestrator runs the stage catalog for one request at a time. It keeps no
// per-request state and may be shared across goroutines.
type Orchestrator struct {
	c         Collaborators
	sink      stage.Sink
	budget    time.Duration
	width     int
	maxOpps   int
	validator *validate.Validator
	agg       *confidence.Aggregator
	now       func() time.Time
}

// New creates an Orchestrator. A nil cfg uses the stock settings.
func New(cfg *config.Config, c Collaborators, sink stage.Sink) *Orchestrator {
	o := &Orchestrator{
		c:         c,
		sink:      sink,
		budget:    stage.DefaultBudget,
		width:     stage.DefaultWidth,
		maxOpps:   model.DefaultMaxOpportunities,
		validator: validate.New(validate.DefaultConfig()),
		agg:       confidence.New(confidence.DefaultConfig()),
		now:       time.Now,
	}
	if sink == nil {
		o.sink = stage.NopSink{}
	}
	if cfg == nil {
		return o
	}

	if cfg.Intel.StageTimeoutSecs > 0 {
		o.budget = time.Duration(cfg.Intel.StageTimeoutSecs) * time.Second
	}
	if cfg.Intel.FanOutWidth > 0 {
		o.width = cfg.Intel.FanOutWidth
	}
	if cfg.Intel.MaxOpportunities > 0 {
		o.maxOpps = cfg.Intel.MaxOpportunities
	}

	v := cfg.Validation
	o.validator = validate.New(validate.Config{
		CompositeTolerance:    v.CompositeTolerance,
		CompetitiveIndustries: v.CompetitiveIndustries,
		MinPrompts:            v.MinPrompts,
		MinCompetitors:        v.MinCompetitors,
		MinOpportunities:      v.MinOpportunities,
		MinRecommendations:    v.MinRecommendations,
		MinConfidence:         v.MinConfidence,
	})

	if cc := cfg.Confidence; cc != (config.ConfidenceConfig{}) {
		o.agg = confidence.New(confidence.Config{
			Base:           cc.Base,
			Bonus:          cc.Bonus,
			HighThreshold:  cc.HighThreshold,
			FailurePenalty: cc.FailurePenalty,
		})
	}
	return o
}

// ValidateDataQuality applies the data-quality gate to resp.
func (o *Orchestrator) ValidateDataQuality(resp *model.IntelligenceResponse) validate.DataQuality {
	if resp == nil {
		return o.validator.ValidateDataQuality(model.IntelligenceResponse{})
	}
	return o.validator.ValidateDataQuality(*resp)
}

// pass is the state of one Orchestrate call.
type pass struct {
	ctx    context.Context
	o      *Orchestrator
	runner *stage.Runner
	m      *stage.Metrics

	ws, brand, domain string
}

// Orchestrate runs every stage in catalog order and assembles the report.
// It always returns a well-formed response and never panics; stage failures
// are recorded in metadata.warnings and structural problems in
// metadata.errors.
func (o *Orchestrator) Orchestrate(ctx context.Context, workspaceID, brandName, domain string, opts model.Options) (resp *model.IntelligenceResponse) {
	log := zap.L().With(
		zap.String("workspace_id", workspaceID),
		zap.String("brand", brandName),
		zap.String("domain", domain),
	)
	p := &pass{
		ctx:    ctx,
		o:      o,
		runner: stage.NewRunner(o.budget, o.sink),
		m:      stage.NewMetrics(o.now()),
		ws:     workspaceID,
		brand:  brandName,
		domain: domain,
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("intel: orchestration panicked", zap.Any("panic", r))
			resp = p.fallbackResponse(fmt.Sprintf("response assembly failed: %v", r))
		}
	}()

	log.Info("intel: orchestration started")

	raw := p.runStages(opts)
	resp = p.assemble(raw)

	failed, total := p.m.Counts()
	log.Info("intel: orchestration complete",
		zap.Int64("duration_ms", resp.Metadata.Execution.TotalDurationMs),
		zap.Int("failed_stages", failed),
		zap.Int("executed_stages", total),
		zap.Float64("confidence", resp.Metadata.Confidence),
		zap.Int("errors", len(resp.Metadata.Errors)),
	)
	return resp
}

// runStages executes the catalog and merges stage outputs into an
// unsanitized response.
func (p *pass) runStages(opts model.Options) model.IntelligenceResponse {
	o := p.o
	ws, brand, domain := p.ws, p.brand, p.domain
	c := o.c

	// 1. industry_classification
	var industryFn func(context.Context) (model.IndustryClassification, error)
	if c.Industry != nil {
		industryFn = func(ctx context.Context) (model.IndustryClassification, error) {
			return c.Industry.ClassifyIndustry(ctx, ws, domain)
		}
	}
	industry := checked(p, StageIndustry, industryFn, defaultIndustry, invalidIndustry)

	// 2. business_summary
	var summaryFn func(context.Context) (model.BusinessSummary, error)
	if c.Summary != nil {
		summaryFn = func(ctx context.Context) (model.BusinessSummary, error) {
			return c.Summary.SummarizeBusiness(ctx, ws, brand, domain, industry)
		}
	}
	summary := single(p, StageSummary, summaryFn, defaultSummary)

	// 3. prompt_generation
	bc := model.BrandContext{BrandName: brand, Domain: domain, Industry: industry.Primary, Summary: summary}
	var promptFn func(context.Context) ([]model.Prompt, error)
	if c.Prompts != nil {
		promptFn = func(ctx context.Context) ([]model.Prompt, error) {
			return c.Prompts.GeneratePrompts(ctx, ws, bc)
		}
	}
	prompts := single(p, StagePrompts, promptFn, func() []model.Prompt { return FallbackPrompts(bc) })
	if len(prompts) == 0 {
		p.m.Warn(fmt.Sprintf("stage %s returned no prompts; using template prompts", StagePrompts))
		prompts = FallbackPrompts(bc)
	}

	// 4. prompt_clustering
	var clusterFn func(context.Context) ([]model.PromptCluster, error)
	if c.Clustering != nil {
		clusterFn = func(ctx context.Context) ([]model.PromptCluster, error) {
			return c.Clustering.ClusterPrompts(ctx, ws, brand, prompts, industry)
		}
	}
	clusters := orEmpty(single(p, StageClustering, clusterFn, defaultClusters))

	// 5. competitor_detection
	var competitorFn func(context.Context) ([]model.Competitor, error)
	if c.Competitors != nil {
		competitorFn = func(ctx context.Context) ([]model.Competitor, error) {
			return c.Competitors.DetectCompetitors(ctx, ws, brand, prompts, industry)
		}
	}
	competitors := orEmpty(single(p, StageCompetitors, competitorFn, defaultCompetitors))

	// 6. share_of_voice
	var sovFn func(context.Context) (model.ShareOfVoice, error)
	if c.ShareOfVoice != nil {
		sovFn = func(ctx context.Context) (model.ShareOfVoice, error) {
			return c.ShareOfVoice.ShareOfVoice(ctx, ws, brand, competitors)
		}
	}
	sov := single(p, StageShareOfVoice, sovFn, defaultShareOfVoice)

	// 7. citation_analysis
	var citationFn func(context.Context) (model.CitationAnalysis, error)
	if c.Citations != nil {
		citationFn = func(ctx context.Context) (model.CitationAnalysis, error) {
			return c.Citations.AnalyzeCitations(ctx, ws, brand, domain)
		}
	}
	citations := single(p, StageCitations, citationFn, defaultCitations)

	// 8. commercial_value, per cluster
	var commercialFn func(context.Context, model.PromptCluster) (model.CommercialValue, error)
	if c.CommercialValue != nil {
		commercialFn = func(ctx context.Context, cl model.PromptCluster) (model.CommercialValue, error) {
			return c.CommercialValue.ScoreCommercialValue(ctx, ws, brand, cl)
		}
	}
	commercial := fanOut(p, StageCommercialValue, clusters, o.width, clusterLabel, commercialFn, defaultCommercialValue)

	// 9. cross_engine_patterns
	var crossFn func(context.Context) (model.CrossEnginePatterns, error)
	if c.CrossEngine != nil {
		crossFn = func(ctx context.Context) (model.CrossEnginePatterns, error) {
			return c.CrossEngine.AnalyzeCrossEngine(ctx, ws, brand, clusters)
		}
	}
	cross := single(p, StageCrossEngine, crossFn, defaultCrossEngine)

	// 10. competitor_advantage, per competitor
	var advantageFn func(context.Context, model.Competitor) (model.CompetitorAdvantage, error)
	if c.Advantage != nil {
		advantageFn = func(ctx context.Context, comp model.Competitor) (model.CompetitorAdvantage, error) {
			return c.Advantage.AnalyzeAdvantage(ctx, ws, brand, comp, sov)
		}
	}
	advantages := fanOut(p, StageAdvantage, competitors, o.width, competitorLabel, advantageFn, defaultAdvantage)

	// 11. trust_failures
	var trustFn func(context.Context) ([]model.TrustFailure, error)
	if c.TrustFailures != nil {
		trustFn = func(ctx context.Context) ([]model.TrustFailure, error) {
			return c.TrustFailures.DetectTrustFailures(ctx, ws, brand, citations, cross)
		}
	}
	trust := orEmpty(single(p, StageTrustFailures, trustFn, defaultTrustFailures))

	// 12. fix_difficulty, per cluster
	var fixFn func(context.Context, model.PromptCluster) (model.FixDifficulty, error)
	if c.FixDifficulty != nil {
		fixFn = func(ctx context.Context, cl model.PromptCluster) (model.FixDifficulty, error) {
			return c.FixDifficulty.ScoreFixDifficulty(ctx, ws, brand, cl, advantages)
		}
	}
	fix := fanOut(p, StageFixDifficulty, clusters, o.width, clusterLabel, fixFn, defaultFixDifficulty)

	// 13. composite_score
	compositeIn := model.CompositeInputs{
		ShareOfVoice:    sov,
		Citations:       citations,
		CrossEngine:     cross,
		CommercialValue: commercial,
		Clusters:        clusters,
	}
	var compositeFn func(context.Context) (model.CompositeScore, error)
	if c.Composite != nil {
		compositeFn = func(ctx context.Context) (model.CompositeScore, error) {
			return c.Composite.CompositeScore(ctx, ws, brand, compositeIn)
		}
	}
	composite := single(p, StageComposite, compositeFn, defaultComposite)

	// 14. opportunity_generation, per cluster, capped
	opportunities := defaultOpportunities()
	if opts.WantOpportunities() {
		opportunities = p.opportunities(opts, clusters, commercial, fix, sov, composite)
	} else {
		p.m.Skip(StageOpportunities)
	}

	// 15. recommendation_generation
	recommendations := defaultRecommendations()
	if opts.WantRecommendations() {
		recIn := model.RecommendationInputs{
			TrustFailures: trust,
			Composite:     composite,
			Advantages:    advantages,
			FixDifficulty: fix,
		}
		var recFn func(context.Context) ([]model.Recommendation, error)
		if c.Recommendations != nil {
			recFn = func(ctx context.Context) ([]model.Recommendation, error) {
				return c.Recommendations.GenerateRecommendations(ctx, ws, brand, recIn)
			}
		}
		recommendations = single(p, StageRecommendations, recFn, defaultRecommendations)
	} else {
		p.m.Skip(StageRecommendations)
	}

	return model.IntelligenceResponse{
		WorkspaceID:          ws,
		BrandName:            brand,
		Domain:               domain,
		Industry:             industry,
		BusinessSummary:      summary,
		Prompts:              prompts,
		PromptClusters:       clusters,
		Competitors:          competitors,
		ShareOfVoice:         sov,
		Citations:            citations,
		CommercialValue:      commercial,
		CrossEngine:          cross,
		CompetitorAdvantages: advantages,
		TrustFailures:        trust,
		FixDifficulty:        fix,
		CompositeScore:       composite,
		Opportunities:        opportunities,
		Recommendations:      recommendations,
	}
}

// opportunities fans out over clusters with matching commercial value and
// fix difficulty, then flattens and caps the result.
func (p *pass) opportunities(
	opts model.Options,
	clusters []model.PromptCluster,
	commercial []model.CommercialValue,
	fix []model.FixDifficulty,
	sov model.ShareOfVoice,
	composite model.CompositeScore,
) []model.Opportunity {
	limit := opts.OpportunityLimit()
	if opts.MaxOpportunities <= 0 {
		limit = p.o.maxOpps
	}

	inputs := make([]model.OpportunityInputs, len(clusters))
	for i, cl := range clusters {
		in := model.OpportunityInputs{Cluster: cl, ShareOfVoice: sov, Composite: composite}
		if i < len(commercial) {
			in.CommercialValue = commercial[i]
		}
		if i < len(fix) {
			in.FixDifficulty = fix[i]
		}
		inputs[i] = in
	}

	var fn func(context.Context, model.OpportunityInputs) ([]model.Opportunity, error)
	if gen := p.o.c.Opportunities; gen != nil {
		fn = func(ctx context.Context, in model.OpportunityInputs) ([]model.Opportunity, error) {
			return gen.GenerateOpportunities(ctx, p.ws, p.brand, in)
		}
	}

	perCluster := fanOut(p, StageOpportunities, inputs, min(p.o.width, limit),
		func(in model.OpportunityInputs) string { return clusterLabel(in.Cluster) },
		fn,
		func(model.OpportunityInputs) []model.Opportunity { return defaultOpportunities() },
	)

	out := make([]model.Opportunity, 0, limit)
	for _, batch := range perCluster {
		for _, opp := range batch {
			if len(out) == limit {
				return out
			}
			out = append(out, opp)
		}
	}
	return out
}

// assemble sanitizes and scores the merged stage outputs, then validates them.
func (p *pass) assemble(raw model.IntelligenceResponse) *model.IntelligenceResponse {
	out, sanitizeWarnings := sanitize.Sanitize(raw)

	failed, total := p.m.Counts()
	out.Metadata.Confidence = p.o.agg.Aggregate(confidence.Signals{
		IndustryConfidence: out.Industry.Confidence,
		SummaryConfidence:  out.BusinessSummary.Confidence,
		Competitors:        len(out.Competitors),
		TrustFailures:      len(out.TrustFailures),
		FailedSteps:        failed,
		TotalSteps:         total,
	})

	// Validation sees the aggregated confidence.
	result := p.o.validator.Validate(out)

	p.m.Finish(p.o.now())

	warnings := p.m.Warnings()
	warnings = append(warnings, sanitizeWarnings...)
	warnings = append(warnings, result.Warnings...)

	out.Metadata.GeneratedAt = p.o.now().UTC()
	out.Metadata.Industry = out.Industry.Primary
	out.Metadata.Warnings = warnings
	out.Metadata.Errors = append([]string{}, result.Errors...)
	out.Metadata.Execution = p.m.Snapshot()
	return &out
}

// fallbackResponse is returned when assembly itself fails. It is built
// without calling any stage output or the sanitizer.
func (p *pass) fallbackResponse(reason string) *model.IntelligenceResponse {
	var warnings []string
	var exec *model.ExecutionSummary
	func() {
		defer func() { _ = recover() }()
		p.m.Finish(p.o.now())
		warnings = p.m.Warnings()
		exec = p.m.Snapshot()
	}()
	if warnings == nil {
		warnings = []string{}
	}
	if exec == nil {
		exec = &model.ExecutionSummary{PerStepDurationMs: map[string]int64{}}
	}

	industry := defaultIndustry()
	return &model.IntelligenceResponse{
		WorkspaceID:          p.ws,
		BrandName:            p.brand,
		Domain:               p.domain,
		Industry:             industry,
		BusinessSummary:      defaultSummary(),
		Prompts:              []model.Prompt{},
		PromptClusters:       defaultClusters(),
		Competitors:          defaultCompetitors(),
		ShareOfVoice:         defaultShareOfVoice(),
		Citations:            defaultCitations(),
		CommercialValue:      []model.CommercialValue{},
		CrossEngine:          defaultCrossEngine(),
		CompetitorAdvantages: []model.CompetitorAdvantage{},
		TrustFailures:        defaultTrustFailures(),
		FixDifficulty:        []model.FixDifficulty{},
		CompositeScore:       defaultComposite(),
		Opportunities:        defaultOpportunities(),
		Recommendations:      defaultRecommendations(),
		Metadata: model.Metadata{
			GeneratedAt: time.Now().UTC(),
			Industry:    industry.Primary,
			Warnings:    warnings,
			Errors:      []string{reason},
			Execution:   exec,
		},
	}
}

// single runs one non-fan-out stage and substitutes def on failure.
func single[T any](p *pass, key string, fn func(context.Context) (T, error), def func() T) T {
	return checked(p, key, fn, def, nil)
}

// checked is single with an output check. A non-empty reason from check
// fails the stage and substitutes def before any dependent stage runs.
func checked[T any](p *pass, key string, fn func(context.Context) (T, error), def func() T, check func(T) string) T {
	res := stage.Run(p.ctx, p.runner, key, fn)
	if res.Success && check != nil {
		if reason := check(res.Data); reason != "" {
			p.m.Record(key, false, res.Duration)
			p.m.Warn(fmt.Sprintf("stage %s returned invalid output (%s); using default", key, reason))
			return def()
		}
	}
	p.m.Record(key, res.Success, res.Duration)
	if !res.Success {
		p.m.Warn(fmt.Sprintf("stage %s failed: %s; using default", key, res.Err))
		return def()
	}
	return res.Data
}

type fanResult[O any] struct {
	items    []O
	warnings []string
}

// fanOut runs a per-item stage. Item failures become item defaults; a
// whole-stage failure replaces every item with its default. The stage is
// recorded as failed when it fails outright or when every item failed. The
// stage-level budget covers every queued batch plus one spare budget, so
// items that all hit their own budget still report per item.
func fanOut[I, O any](
	p *pass,
	key string,
	items []I,
	width int,
	label func(I) string,
	fn func(context.Context, I) (O, error),
	def func(I) O,
) []O {
	if width < 1 {
		width = 1
	}
	batches := max((len(items)+width-1)/width, 1)
	outer := stage.NewRunner(p.o.budget*time.Duration(batches+1), p.o.sink)

	var stageFn func(context.Context) (fanResult[O], error)
	if fn != nil {
		stageFn = func(ctx context.Context) (fanResult[O], error) {
			out, warnings := stage.RunEach(ctx, p.runner, key, items, width, label, fn, def)
			return fanResult[O]{items: out, warnings: warnings}, nil
		}
	}

	res := stage.Run(p.ctx, outer, key, stageFn)
	p.m.Record(key, res.Success, res.Duration)
	if !res.Success {
		p.m.Warn(fmt.Sprintf("stage %s failed: %s; using default", key, res.Err))
		out := make([]O, len(items))
		for i, it := range items {
			out[i] = def(it)
		}
		return out
	}
	if len(items) > 0 && len(res.Data.warnings) == len(items) {
		p.m.Record(key, false, res.Duration)
	}
	p.m.Warn(res.Data.warnings...)
	return res.Data.items
}

// invalidIndustry describes why c cannot drive dependent stages, or returns
// "" when it can.
func invalidIndustry(c model.IndustryClassification) string {
	var reasons []string
	if strings.TrimSpace(c.Primary) == "" {
		reasons = append(reasons, "empty primary industry")
	}
	if math.IsNaN(c.Confidence) || c.Confidence < 0 || c.Confidence > 1 {
		reasons = append(reasons, fmt.Sprintf("confidence %v outside [0,1]", c.Confidence))
	}
	return strings.Join(reasons, ", ")
}

func clusterLabel(c model.PromptCluster) string {
	if c.ID != "" {
		return c.ID
	}
	return c.Label
}

func competitorLabel(c model.Competitor) string {
	return c.Name
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
