package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

func round(value float64, places int32) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

// ratio divides and rounds, returning 0 for an empty denominator.
func ratio(numerator, denominator float64, places int32) float64 {
	if denominator == 0 {
		return 0
	}
	return round(numerator/denominator, places)
}

// percentOf is numerator/denominator*100 with one decimal, clamped to [0,100].
func percentOf(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	value := round(numerator/denominator*100, 1)
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
