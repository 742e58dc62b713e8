// Package metrics exposes Prometheus collectors for orchestration stages and
// the request-handling layer.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sells-group/geo-intel/internal/stage"
)

// Collector holds the geo-intel Prometheus metrics. It implements stage.Sink.
//
// Metrics:
//   - geointel_stage_duration_seconds{stage,kind}
//   - geointel_stage_events_total{stage,kind,outcome}
//   - geointel_responses_total{code}
//   - geointel_cache_lookups_total{result}
type Collector struct {
	StageDuration *prometheus.HistogramVec
	StageEvents   *prometheus.CounterVec
	Responses     *prometheus.CounterVec
	CacheLookups  *prometheus.CounterVec
}

var _ stage.Sink = (*Collector)(nil)

// New creates a Collector and registers it with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Collector{
		StageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "geointel_stage_duration_seconds",
				Help:    "Duration of stage and fan-out item invocations in seconds",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"stage", "kind"},
		),
		StageEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geointel_stage_events_total",
				Help: "Total stage and fan-out item invocations by outcome",
			},
			[]string{"stage", "kind", "outcome"},
		),
		Responses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geointel_responses_total",
				Help: "Total intelligence responses served by HTTP status code",
			},
			[]string{"code"},
		),
		CacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geointel_cache_lookups_total",
				Help: "Total response cache lookups by result",
			},
			[]string{"result"}, // "hit", "miss" or "error"
		),
	}
}

// Observe implements stage.Sink.
func (c *Collector) Observe(e stage.Event) {
	kind := "stage"
	if e.Item != "" {
		kind = "item"
	}
	outcome := "success"
	if !e.Success {
		outcome = "failure"
	}
	c.StageDuration.WithLabelValues(e.Stage, kind).Observe(e.Duration.Seconds())
	c.StageEvents.WithLabelValues(e.Stage, kind, outcome).Inc()
}

// RecordResponse counts one served response.
func (c *Collector) RecordResponse(code int) {
	c.Responses.WithLabelValues(strconv.Itoa(code)).Inc()
}

// RecordCacheLookup counts one cache lookup.
func (c *Collector) RecordCacheLookup(result string) {
	c.CacheLookups.WithLabelValues(result).Inc()
}
