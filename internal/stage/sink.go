package stage

import (
	"time"

	"go.uber.org/zap"
)

// Event is emitted once per stage (or fan-out item) invocation.
type Event struct {
	Stage    string
	Item     string // empty for whole-stage invocations
	Success  bool
	Err      string
	Duration time.Duration
}

// Sink receives stage events. Implementations must be safe for concurrent use.
type Sink interface {
	Observe(Event)
}

// NopSink discards events.
type NopSink struct{}

// Observe implements Sink.
func (NopSink) Observe(Event) {}

// MultiSink fans an event out to several sinks.
type MultiSink []Sink

// Observe implements Sink.
func (m MultiSink) Observe(e Event) {
	for _, s := range m {
		emit(s, e)
	}
}

// LogSink writes one structured zap line per event.
type LogSink struct {
	Logger *zap.Logger
}

// Observe implements Sink.
func (l LogSink) Observe(e Event) {
	log := l.Logger
	if log == nil {
		log = zap.L()
	}
	fields := []zap.Field{
		zap.String("stage", e.Stage),
		zap.Int64("duration_ms", e.Duration.Milliseconds()),
	}
	if e.Item != "" {
		fields = append(fields, zap.String("item", e.Item))
	}
	if e.Success {
		log.Debug("stage: complete", fields...)
		return
	}
	log.Warn("stage: failed", append(fields, zap.String("error", e.Err))...)
}

// emit delivers e to s. A misbehaving sink never affects the caller.
func emit(s Sink, e Event) {
	if s == nil {
		return
	}
	defer func() { _ = recover() }()
	s.Observe(e)
}
