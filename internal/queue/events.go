package queue

import (
	"context"
	"time"
)

const (
	DefaultEventsExchange      = "mealplan.events"
	RoutingKeySummaryGenerated = "analytics.summary.generated"
)

// Publisher is the part of Client the HTTP layer depends on.
type Publisher interface {
	PublishJSON(ctx context.Context, exchange, routingKey string, payload any) error
}

// SummaryGenerated is emitted after an admin pulled a fresh analytics report.
type SummaryGenerated struct {
	Event        string    `json:"event"`
	RequestID    string    `json:"requestId,omitempty"`
	RequestedBy  string    `json:"requestedBy,omitempty"`
	GeneratedAt  time.Time `json:"generatedAt"`
	TotalUsers   int64     `json:"totalUsers"`
	TotalOrders  int64     `json:"totalOrders"`
	TotalRevenue float64   `json:"totalRevenue"`
	TotalMeals   int64     `json:"totalMeals"`
	DurationMS   int64     `json:"durationMs"`
}

func NewSummaryGenerated(requestID, requestedBy string, generatedAt time.Time, duration time.Duration) SummaryGenerated {
	return SummaryGenerated{
		Event:       RoutingKeySummaryGenerated,
		RequestID:   requestID,
		RequestedBy: requestedBy,
		GeneratedAt: generatedAt.UTC(),
		DurationMS:  duration.Milliseconds(),
	}
}
