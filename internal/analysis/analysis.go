// Package analysis implements the observation-backed baseline collaborators
// for every stage that does not need a language model. Heuristics read the
// answer-engine observations recorded for a workspace.
package analysis

import (
	"context"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geo-intel/internal/config"
	"github.com/sells-group/geo-intel/internal/model"
	"github.com/sells-group/geo-intel/internal/store"
	"github.com/sells-group/geo-intel/internal/validate"
)

// Baseline implements the observation-backed stages.
type Baseline struct {
	store          store.Store
	engines        []string
	weights        map[string]float64
	maxCompetitors int
}

// New creates a Baseline reading observations from st.
func New(st store.Store, cfg config.IntelConfig) *Baseline {
	return &Baseline{
		store:          st,
		engines:        cfg.Engines,
		weights:        validate.ReferenceWeights,
		maxCompetitors: 10,
	}
}

func (b *Baseline) observations(ctx context.Context, workspaceID string) ([]model.Observation, error) {
	obs, err := b.store.ListObservations(ctx, store.ObservationFilter{
		WorkspaceID: workspaceID,
		Engines:     b.engines,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "analysis: load observations for %s", workspaceID)
	}
	return obs, nil
}

func fold(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// pct returns n as a percentage of d, or 0 when d is zero.
func pct(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return round2(100 * float64(n) / float64(d))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

// sampleConfidence grows toward 1 as the supporting sample grows.
func sampleConfidence(n int) float64 {
	return round2(float64(n) / float64(n+5))
}

// hostOf reduces a URL or bare domain to its lower-case host without "www.".
func hostOf(raw string) string {
	h := fold(raw)
	if _, rest, ok := strings.Cut(h, "://"); ok {
		h = rest
	}
	if i := strings.IndexAny(h, "/?#"); i >= 0 {
		h = h[:i]
	}
	if i := strings.LastIndexByte(h, ':'); i >= 0 {
		h = h[:i]
	}
	return strings.TrimPrefix(h, "www.")
}

// names returns the distinct folded names in list, in first-seen order.
func names(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, n := range list {
		k := fold(n)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func mentions(o model.Observation, name string) bool {
	k := fold(name)
	for _, c := range o.Competitors {
		if fold(c) == k {
			return true
		}
	}
	return false
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
