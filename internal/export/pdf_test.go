package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealplan-admin-service/internal/analytics"
)

func TestRenderReport(t *testing.T) {
	at := time.Date(2026, 3, 18, 15, 30, 0, 0, time.UTC)
	report := &analytics.Report{
		TotalUsers:   3,
		TotalOrders:  2,
		TotalRevenue: 43.66,
		RevenueData:  []analytics.RevenuePoint{{Date: "3/18 Wed", Revenue: 43.66}},
		OrderTrends:  []analytics.OrderTrendPoint{{Date: "3/18 Wed", Orders: 2}},
		TopSellingMeals: []analytics.TopSellingMeal{
			{MealID: "m1", MealName: strings.Repeat("Very long meal name ", 10), TotalQuantity: 4, TotalRevenue: 40, OrderCount: 2},
		},
		RecentOrders: []analytics.RecentOrder{{ID: "o1", UserName: "Café Owner", ItemCount: 2, TotalAmount: 21.83, PaymentStatus: "paid", OrderDate: at}},
	}

	pdf, err := RenderReport(report, at)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestRenderEmptyReport(t *testing.T) {
	pdf, err := RenderReport(&analytics.Report{}, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}

func TestRenderNilReport(t *testing.T) {
	_, err := RenderReport(nil, time.Now())
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 3, 18, 9, 5, 7, 0, time.UTC)
	assert.Equal(t, "analytics_20260318_090507.pdf", Filename(at))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip(" short ", 10))
	assert.Equal(t, "abcd~", clip("abcdefgh", 5))
}
