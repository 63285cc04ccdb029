package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSummaryGenerated(t *testing.T) {
	at := time.Date(2026, 3, 18, 22, 0, 0, 0, time.FixedZone("UTC+7", 7*3600))
	event := NewSummaryGenerated("req-9", "admin@example.com", at, 1500*time.Millisecond)
	event.TotalOrders = 4

	assert.Equal(t, RoutingKeySummaryGenerated, event.Event)
	assert.Equal(t, time.UTC, event.GeneratedAt.Location())
	assert.EqualValues(t, 1500, event.DurationMS)

	body, err := json.Marshal(event)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "analytics.summary.generated", decoded["event"])
	assert.Equal(t, "2026-03-18T15:00:00Z", decoded["generatedAt"])
	assert.EqualValues(t, 4, decoded["totalOrders"])
}

func TestClientSatisfiesPublisher(t *testing.T) {
	var _ Publisher = (*Client)(nil)
}
