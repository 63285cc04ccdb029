package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGrowthRate(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		want     float64
	}{
		{name: "zero baseline", current: 120, previous: 0, want: 0},
		{name: "both zero", current: 0, previous: 0, want: 0},
		{name: "doubled", current: 20, previous: 10, want: 100},
		{name: "dropped", current: 5, previous: 20, want: -75},
		{name: "rounded", current: 10, previous: 3, want: 233.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := growthRate(tt.current, tt.previous)
			assert.Equal(t, tt.want, got)
			assert.False(t, math.IsNaN(got) || math.IsInf(got, 0))
		})
	}
}

func TestSplitWeeks(t *testing.T) {
	values := []float64{1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2}
	previous, current := splitWeeks(values)
	assert.Equal(t, 7.0, previous)
	assert.Equal(t, 14.0, current)
}

func TestRatesStayBounded(t *testing.T) {
	assert.Zero(t, percentOf(3, 0))
	assert.Equal(t, 100.0, percentOf(12, 10))
	assert.Equal(t, 33.3, percentOf(1, 3))
	assert.Zero(t, ratio(5, 0, 2))
	assert.Zero(t, round(math.NaN(), 1))
	assert.Zero(t, round(math.Inf(1), 1))
}

func TestBucketIndex(t *testing.T) {
	tests := []struct {
		value float64
		want  int
	}{
		{value: -4, want: 0},
		{value: 0, want: 0},
		{value: 9.99, want: 0},
		{value: 10, want: 1},
		{value: 49.99, want: 3},
		{value: 50, want: 4},
		{value: 5000, want: 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bucketIndex(priceBuckets, tt.value), "value %v", tt.value)
	}
}

func TestBuildOrdersByHourUsesLocation(t *testing.T) {
	tunis := time.FixedZone("Africa/Tunis", 3600)
	times := []time.Time{
		time.Date(2026, time.March, 1, 23, 15, 0, 0, time.UTC),
		time.Date(2026, time.March, 2, 11, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 3, 11, 59, 0, 0, time.UTC),
	}

	assert.Equal(t, []HourCount{{Hour: 0, Count: 1}, {Hour: 12, Count: 2}}, buildOrdersByHour(times, tunis))
	assert.Equal(t, []HourCount{}, buildOrdersByHour(nil, tunis))
}

func TestBuildTopSellingMealsTieBreak(t *testing.T) {
	items := []LineItem{
		{OrderID: "o1", MealID: "b", Quantity: 2, Price: 1.25},
		{OrderID: "o2", MealID: "a", Quantity: 2, Price: 3},
		{OrderID: "o2", MealID: "c", Quantity: 1, Price: 4},
		{OrderID: "o3", MealID: "a", Quantity: 0, Price: 3},
	}

	top := buildTopSellingMeals(items, 2)

	assert.Equal(t, []TopSellingMeal{
		{MealID: "a", TotalQuantity: 2, TotalRevenue: 6, OrderCount: 2},
		{MealID: "b", TotalQuantity: 2, TotalRevenue: 2.5, OrderCount: 1},
	}, top)
}

func TestSummarizeCustomers(t *testing.T) {
	withOrders, repeat := summarizeCustomers(map[string]int64{"a": 1, "b": 3, "c": 2, "d": 0})
	assert.Equal(t, 3, withOrders)
	assert.Equal(t, 2, repeat)
}
