package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
)

const popularTagsLimit = 5

type rangeBucket struct {
	label string
	min   float64
	max   float64
}

var priceBuckets = []rangeBucket{
	{label: "0-10 TND", min: 0, max: 10},
	{label: "10-20 TND", min: 10, max: 20},
	{label: "20-30 TND", min: 20, max: 30},
	{label: "30-50 TND", min: 30, max: 50},
	{label: "50+ TND", min: 50, max: math.Inf(1)},
}

var calorieBuckets = []rangeBucket{
	{label: "0-300", min: 0, max: 300},
	{label: "300-500", min: 300, max: 500},
	{label: "500-700", min: 500, max: 700},
	{label: "700-1000", min: 700, max: 1000},
	{label: "1000+", min: 1000, max: math.Inf(1)},
}

type mealMetrics struct {
	total       int64
	byType      []TypeCount
	popularTags []TagCount
	prices      []RangeCount
	calories    []RangeCount
}

func (s *Service) mealMetrics(ctx context.Context) (mealMetrics, error) {
	var m mealMetrics
	meals := s.src.Meals

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := meals.CountMeals(gctx)
		if err != nil {
			return fmt.Errorf("count meals: %w", err)
		}
		m.total = total
		return nil
	})
	g.Go(func() error {
		byType, err := meals.CountByType(gctx)
		if err != nil {
			return fmt.Errorf("meal type distribution: %w", err)
		}
		m.byType = sortTypeCounts(byType)
		return nil
	})
	g.Go(func() error {
		catalog, err := meals.ListMeals(gctx)
		if err != nil {
			return fmt.Errorf("list meals: %w", err)
		}
		m.popularTags = buildPopularTags(catalog, popularTagsLimit)
		m.prices = distribute(catalog, priceBuckets, func(meal Meal) *float64 { return meal.Price })
		m.calories = distribute(catalog, calorieBuckets, func(meal Meal) *float64 { return meal.Calories })
		return nil
	})
	if err := g.Wait(); err != nil {
		return mealMetrics{}, err
	}
	return m, nil
}

func sortTypeCounts(counts []TypeCount) []TypeCount {
	out := make([]TypeCount, len(counts))
	copy(out, counts)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// popularPlans is the chart-shaped copy of the type distribution.
func popularPlans(byType []TypeCount) []PopularPlan {
	out := make([]PopularPlan, 0, len(byType))
	for _, row := range byType {
		out = append(out, PopularPlan{Name: row.Type, Users: row.Count, Value: row.Count})
	}
	return out
}

// buildPopularTags counts how many distinct meals carry each normalized tag.
func buildPopularTags(catalog []Meal, limit int) []TagCount {
	counts := make(map[string]int64)
	for _, meal := range catalog {
		for _, tag := range meal.Tags.Normalize() {
			counts[tag]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		out = append(out, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// distribute places every meal in exactly one half-open bucket. A missing
// value counts as 0; values below the first bucket fall into it.
func distribute(catalog []Meal, buckets []rangeBucket, value func(Meal) *float64) []RangeCount {
	out := make([]RangeCount, len(buckets))
	for i, b := range buckets {
		out[i] = RangeCount{Range: b.label}
	}
	for _, meal := range catalog {
		v := 0.0
		if p := value(meal); p != nil && !math.IsNaN(*p) {
			v = *p
		}
		out[bucketIndex(buckets, v)].Count++
	}
	return out
}

func bucketIndex(buckets []rangeBucket, v float64) int {
	for i, b := range buckets {
		if v >= b.min && v < b.max {
			return i
		}
	}
	if v < buckets[0].min {
		return 0
	}
	return len(buckets) - 1
}
