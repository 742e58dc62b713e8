// Package validate checks the semantic plausibility of an assembled
// intelligence response after sanitization.
package validate

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/sells-group/geo-intel/internal/model"
)

// Result is the outcome of a structural validation pass. Errors mark the
// response as incomplete; Warnings mark it as usable but suspect.
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// DataQuality is the coarse depth gate callers use to decide between
// "complete" and "needs refresh".
type DataQuality struct {
	MeetsThreshold bool     `json:"meets_threshold"`
	Issues         []string `json:"issues"`
}

// Config holds the validator's tunable thresholds.
type Config struct {
	CompositeTolerance    float64
	ReferenceWeights      map[string]float64
	CompetitiveIndustries []string
	MinSteps              int
	MinPrompts            int
	MinCompetitors        int
	MinOpportunities      int
	MinRecommendations    int
	MinConfidence         float64
}

// ReferenceWeights are the composite component weights used when a
// breakdown entry declares no weight of its own.
var ReferenceWeights = map[string]float64{
	"visibility":     0.35,
	"share_of_voice": 0.25,
	"citations":      0.15,
	"consistency":    0.15,
	"commercial":     0.10,
}

// CompetitiveIndustries is the default allow-list of industries expected to
// have detectable competitors. Matching is by case-insensitive substring.
var CompetitiveIndustries = []string{
	"travel", "hospitality", "e-commerce", "ecommerce", "retail",
	"saas", "software", "fintech", "insurance",
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		CompositeTolerance:    10,
		ReferenceWeights:      ReferenceWeights,
		CompetitiveIndustries: CompetitiveIndustries,
		MinSteps:              3,
		MinPrompts:            5,
		MinCompetitors:        3,
		MinOpportunities:      5,
		MinRecommendations:    3,
		MinConfidence:         0.5,
	}
}

var (
	knownPriorities   = []model.Priority{model.PriorityCritical, model.PriorityHigh, model.PriorityMedium, model.PriorityLow}
	knownDifficulties = []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard}
)

// Validator runs structural and data-quality checks. It holds no per-call
// state and is safe for concurrent use.
type Validator struct {
	cfg Config
}

// New returns a Validator. Zero-valued thresholds fall back to DefaultConfig.
func New(cfg Config) *Validator {
	def := DefaultConfig()
	if cfg.CompositeTolerance <= 0 {
		cfg.CompositeTolerance = def.CompositeTolerance
	}
	if cfg.ReferenceWeights == nil {
		cfg.ReferenceWeights = def.ReferenceWeights
	}
	if cfg.CompetitiveIndustries == nil {
		cfg.CompetitiveIndustries = def.CompetitiveIndustries
	}
	if cfg.MinSteps <= 0 {
		cfg.MinSteps = def.MinSteps
	}
	if cfg.MinPrompts <= 0 {
		cfg.MinPrompts = def.MinPrompts
	}
	if cfg.MinCompetitors <= 0 {
		cfg.MinCompetitors = def.MinCompetitors
	}
	if cfg.MinOpportunities <= 0 {
		cfg.MinOpportunities = def.MinOpportunities
	}
	if cfg.MinRecommendations <= 0 {
		cfg.MinRecommendations = def.MinRecommendations
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = def.MinConfidence
	}
	return &Validator{cfg: cfg}
}

// Validate checks required fields, confidence ranges and the composite
// formula. Errors never prevent the response from being returned.
func (v *Validator) Validate(resp model.IntelligenceResponse) Result {
	res := Result{Errors: []string{}, Warnings: []string{}}
	errf := func(format string, args ...any) { res.Errors = append(res.Errors, fmt.Sprintf(format, args...)) }
	warnf := func(format string, args ...any) { res.Warnings = append(res.Warnings, fmt.Sprintf(format, args...)) }

	required := []struct {
		field, value string
	}{
		{"workspace_id", resp.WorkspaceID},
		{"brand_name", resp.BrandName},
		{"domain", resp.Domain},
		{"industry.primary", resp.Industry.Primary},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errf("missing required field %s", r.field)
		}
	}

	for _, c := range confidences(resp) {
		if !inRange(c.value, 0, 1) {
			errf("%s confidence %v is outside [0,1]", c.path, c.value)
		}
	}

	if sum, ok := v.weightedSum(resp.CompositeScore); ok {
		if diff := math.Abs(resp.CompositeScore.Overall - sum); diff > v.cfg.CompositeTolerance {
			warnf("composite score formula mismatch: overall %.2f differs from weighted sum %.2f by %.2f (tolerance %.2f)",
				resp.CompositeScore.Overall, sum, diff, v.cfg.CompositeTolerance)
		}
	}

	if v.competitive(resp.Industry.Primary) && len(resp.Competitors) == 0 {
		warnf("industry %q is competitive but no competitors were detected", resp.Industry.Primary)
	}

	for i, o := range resp.Opportunities {
		if len(o.ActionSteps) < v.cfg.MinSteps {
			warnf("opportunities[%d] has %d action steps, expected at least %d", i, len(o.ActionSteps), v.cfg.MinSteps)
		}
		for _, engine := range sortedKeys(o.EngineVisibility) {
			if val := o.EngineVisibility[engine]; !inRange(val, 0, 100) {
				warnf("opportunities[%d] visibility for engine %s is %v, outside [0,100]", i, engine, val)
			}
		}
	}

	for i, r := range resp.Recommendations {
		if len(r.Steps) < v.cfg.MinSteps {
			warnf("recommendations[%d] has %d steps, expected at least %d", i, len(r.Steps), v.cfg.MinSteps)
		}
		if !slices.Contains(knownPriorities, r.Priority) {
			warnf("recommendations[%d] has unrecognized priority %q", i, r.Priority)
		}
		if !slices.Contains(knownDifficulties, r.Difficulty) {
			warnf("recommendations[%d] has unrecognized difficulty %q", i, r.Difficulty)
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// ValidateDataQuality reports whether resp has enough depth to be shown as
// complete.
func (v *Validator) ValidateDataQuality(resp model.IntelligenceResponse) DataQuality {
	dq := DataQuality{Issues: []string{}}
	issuef := func(format string, args ...any) { dq.Issues = append(dq.Issues, fmt.Sprintf(format, args...)) }

	if n := len(resp.Prompts); n < v.cfg.MinPrompts {
		issuef("only %d prompts generated, need at least %d", n, v.cfg.MinPrompts)
	}
	if v.competitive(resp.Industry.Primary) {
		if n := len(resp.Competitors); n < v.cfg.MinCompetitors {
			issuef("only %d competitors detected in competitive industry %q, need at least %d", n, resp.Industry.Primary, v.cfg.MinCompetitors)
		}
	}
	if n := len(resp.Opportunities); n < v.cfg.MinOpportunities {
		issuef("only %d opportunities identified, need at least %d", n, v.cfg.MinOpportunities)
	}
	if n := len(resp.Recommendations); n < v.cfg.MinRecommendations {
		issuef("only %d recommendations generated, need at least %d", n, v.cfg.MinRecommendations)
	}
	if c := resp.Metadata.Confidence; math.IsNaN(c) || c < v.cfg.MinConfidence {
		issuef("overall confidence %.2f is below %.2f", c, v.cfg.MinConfidence)
	}

	dq.MeetsThreshold = len(dq.Issues) == 0
	return dq
}

// Competitive reports whether industry is on the competitive allow-list.
func (v *Validator) Competitive(industry string) bool {
	return v.competitive(industry)
}

func (v *Validator) competitive(industry string) bool {
	ind := strings.ToLower(strings.TrimSpace(industry))
	if ind == "" {
		return false
	}
	for _, c := range v.cfg.CompetitiveIndustries {
		if c != "" && strings.Contains(ind, strings.ToLower(c)) {
			return true
		}
	}
	return false
}

// weightedSum returns Σ weight·score over the breakdown. Components with no
// declared weight use the reference weight for their name. ok is false when
// there is nothing to compare against.
func (v *Validator) weightedSum(cs model.CompositeScore) (float64, bool) {
	if len(cs.Breakdown) == 0 {
		return 0, false
	}
	var sum float64
	for _, name := range sortedKeys(cs.Breakdown) {
		c := cs.Breakdown[name]
		w := c.Weight
		if w == 0 {
			w = v.cfg.ReferenceWeights[name]
		}
		sum += w * c.Score
	}
	return sum, true
}

type confidenceValue struct {
	path  string
	value float64
}

func confidences(resp model.IntelligenceResponse) []confidenceValue {
	out := []confidenceValue{
		{"industry", resp.Industry.Confidence},
		{"business_summary", resp.BusinessSummary.Confidence},
		{"metadata", resp.Metadata.Confidence},
	}
	for i, c := range resp.Competitors {
		out = append(out, confidenceValue{fmt.Sprintf("competitors[%d]", i), c.Confidence})
	}
	for i, a := range resp.CompetitorAdvantages {
		out = append(out, confidenceValue{fmt.Sprintf("competitor_advantages[%d]", i), a.Confidence})
	}
	for i, f := range resp.TrustFailures {
		out = append(out, confidenceValue{fmt.Sprintf("trust_failures[%d]", i), f.Confidence})
	}
	for i, o := range resp.Opportunities {
		out = append(out, confidenceValue{fmt.Sprintf("opportunities[%d]", i), o.Confidence})
	}
	for i, r := range resp.Recommendations {
		out = append(out, confidenceValue{fmt.Sprintf("recommendations[%d]", i), r.Confidence})
	}
	return out
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
