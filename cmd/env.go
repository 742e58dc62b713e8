package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geo-intel/internal/analysis"
	"github.com/sells-group/geo-intel/internal/config"
	"github.com/sells-group/geo-intel/internal/intel"
	"github.com/sells-group/geo-intel/internal/llm"
	"github.com/sells-group/geo-intel/internal/metrics"
	"github.com/sells-group/geo-intel/internal/stage"
	"github.com/sells-group/geo-intel/internal/store"
	"github.com/sells-group/geo-intel/pkg/anthropic"
)

// appEnv holds the long-lived dependencies shared by the run and serve commands.
type appEnv struct {
	Store        store.Store
	Orchestrator *intel.Orchestrator
	Metrics      *metrics.Collector
	Registry     *prometheus.Registry
}

// Close releases the store.
func (e *appEnv) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("close store", zap.Error(err))
		}
	}
}

// initStore opens and migrates the configured store.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initEnv validates the config for mode and wires the orchestrator.
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, eris.Wrap(err, "config: validation failed")
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	sink := stage.MultiSink{stage.LogSink{}, m}
	orch := intel.New(cfg, buildCollaborators(st, cfg), sink)

	return &appEnv{Store: st, Orchestrator: orch, Metrics: m, Registry: reg}, nil
}

// buildCollaborators wires the observation-backed stages to st. The
// Claude-backed stages are wired only when an API key is configured;
// otherwise those stages fall back to their defaults.
func buildCollaborators(st store.Store, c *config.Config) intel.Collaborators {
	b := analysis.New(st, c.Intel)
	collab := intel.Collaborators{
		Clustering:      b,
		Competitors:     b,
		ShareOfVoice:    b,
		Citations:       b,
		CommercialValue: b,
		CrossEngine:     b,
		Advantage:       b,
		TrustFailures:   b,
		FixDifficulty:   b,
		Composite:       b,
		Opportunities:   b,
		Recommendations: b,
	}

	if c.Anthropic.Key == "" {
		zap.L().Info("anthropic key not set, industry, summary and prompt stages use defaults")
		return collab
	}
	client := llm.New(anthropic.NewClient(c.Anthropic.Key), c.Anthropic)
	collab.Industry = client
	collab.Summary = client
	collab.Prompts = client
	return collab
}
