package analytics

// growthRate is the percentage change from previous to current, one decimal.
// A zero baseline yields 0, also when current is positive.
func growthRate(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return round((current-previous)/previous*100, 1)
}

// splitWeeks sums the older and the newer half of a 14-day series.
func splitWeeks(values []float64) (previous, current float64) {
	half := len(values) / 2
	for i, v := range values {
		if i < len(values)-half {
			previous += v
		} else {
			current += v
		}
	}
	return previous, current
}

func revenueValues(points []RevenuePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Revenue
	}
	return out
}

func orderValues(points []OrderTrendPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = float64(p.Orders)
	}
	return out
}

type growth struct {
	revenue float64
	orders  float64
	users   float64
}

func computeGrowth(orders orderMetrics, users userMetrics) growth {
	prevRevenue, curRevenue := splitWeeks(revenueValues(orders.revenueData))
	prevOrders, curOrders := splitWeeks(orderValues(orders.orderTrends))
	return growth{
		revenue: growthRate(curRevenue, prevRevenue),
		orders:  growthRate(curOrders, prevOrders),
		users:   growthRate(float64(users.createdLast7), float64(users.createdPrev7)),
	}
}
