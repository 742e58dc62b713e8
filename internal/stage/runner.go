// Package stage runs individual analytical stages under instrumentation,
// converting collaborator failures into data instead of errors.
package stage

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultBudget is the soft time budget applied when a Runner has none.
const DefaultBudget = 30 * time.Second

// Result is the outcome of one stage invocation. It is never mutated after
// Run returns it.
type Result[T any] struct {
	Key      string
	Success  bool
	Data     T
	Err      string
	Duration time.Duration
}

// DurationMs returns the measured duration in milliseconds.
func (r Result[T]) DurationMs() int64 {
	return r.Duration.Milliseconds()
}

// Runner holds the instrumentation shared by every stage of one request.
type Runner struct {
	// Budget is the soft time limit per invocation. A stage that has not
	// returned by then is reported as failed; it is not cancelled.
	Budget time.Duration
	Sink   Sink

	now func() time.Time
}

// NewRunner creates a Runner with the given soft budget and event sink.
func NewRunner(budget time.Duration, sink Sink) *Runner {
	if budget <= 0 {
		budget = DefaultBudget
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Runner{Budget: budget, Sink: sink, now: time.Now}
}

type outcome[T any] struct {
	val T
	err error
}

// Run invokes fn and wraps its outcome. Errors, panics and budget overruns
// all produce Success=false with a zero Data; Run itself never panics.
func Run[T any](ctx context.Context, r *Runner, key string, fn func(ctx context.Context) (T, error)) Result[T] {
	return run(ctx, r, key, "", fn)
}

func run[T any](ctx context.Context, r *Runner, key, item string, fn func(ctx context.Context) (T, error)) Result[T] {
	if r == nil {
		r = NewRunner(0, nil)
	}
	now := r.now
	if now == nil {
		now = time.Now
	}

	start := now()
	done := make(chan outcome[T], 1)

	go func() {
		var o outcome[T]
		defer func() {
			if p := recover(); p != nil {
				o = outcome[T]{err: eris.Errorf("panic: %v", p)}
			}
			done <- o
		}()
		if fn == nil {
			o.err = eris.New("no implementation configured")
			return
		}
		o.val, o.err = fn(ctx)
	}()

	timer := time.NewTimer(r.Budget)
	defer timer.Stop()

	res := Result[T]{Key: key}
	select {
	case o := <-done:
		if o.err != nil {
			res.Err = o.err.Error()
		} else {
			res.Success = true
			res.Data = o.val
		}
	case <-timer.C:
		res.Err = fmt.Sprintf("exceeded soft time budget of %s", r.Budget)
	}
	res.Duration = now().Sub(start)

	emit(r.Sink, Event{
		Stage:    key,
		Item:     item,
		Success:  res.Success,
		Err:      res.Err,
		Duration: res.Duration,
	})
	return res
}
