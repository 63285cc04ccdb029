package analytics

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// maxDayFanout bounds the number of per-day queries in flight.
const maxDayFanout = 14

// mapDays runs fn for every day concurrently and returns the results in the
// order of days. The first error cancels the remaining calls.
func mapDays[T any](ctx context.Context, days []DayRange, fn func(ctx context.Context, day DayRange) (T, error)) ([]T, error) {
	out := make([]T, len(days))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxDayFanout)
	for i, day := range days {
		g.Go(func() error {
			value, err := fn(gctx, day)
			if err != nil {
				return err
			}
			out[i] = value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
