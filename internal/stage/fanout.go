package stage

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// DefaultWidth bounds fan-out concurrency when the caller passes width <= 0.
const DefaultWidth = 8

// RunEach invokes fn once per item with at most width calls in flight.
// A failing item is replaced by def(item) and reported in the returned
// warnings; the other items are unaffected. The output has the same length
// and order as items.
func RunEach[I, O any](
	ctx context.Context,
	r *Runner,
	key string,
	items []I,
	width int,
	label func(I) string,
	fn func(ctx context.Context, item I) (O, error),
	def func(I) O,
) ([]O, []string) {
	out := make([]O, len(items))
	if len(items) == 0 {
		return out, nil
	}
	if width <= 0 {
		width = DefaultWidth
	}

	failures := make([]string, len(items))

	// The group context is not used: one item failing must not cancel the rest.
	var g errgroup.Group
	g.SetLimit(width)

	for i, item := range items {
		name := strconv.Itoa(i)
		if label != nil {
			if l := label(item); l != "" {
				name = l
			}
		}
		g.Go(func() error {
			res := run(ctx, r, key, name, func(ctx context.Context) (O, error) {
				return fn(ctx, item)
			})
			if res.Success {
				out[i] = res.Data
				return nil
			}
			out[i] = safeDefault(def, item)
			failures[i] = fmt.Sprintf("could not analyze %s item %s: %s", key, name, res.Err)
			return nil
		})
	}
	_ = g.Wait()

	var warnings []string
	for _, f := range failures {
		if f != "" {
			warnings = append(warnings, f)
		}
	}
	return out, warnings
}

func safeDefault[I, O any](def func(I) O, item I) (o O) {
	if def == nil {
		return o
	}
	defer func() { _ = recover() }()
	return def(item)
}
