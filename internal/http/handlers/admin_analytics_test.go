package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mealplan-admin-service/internal/analytics"
	"mealplan-admin-service/internal/config"
	"mealplan-admin-service/internal/middleware"
	"mealplan-admin-service/internal/queue"
	"mealplan-admin-service/internal/store/memstore"
)

type recordedPublish struct {
	exchange   string
	routingKey string
	payload    any
}

type fakePublisher struct {
	mu    sync.Mutex
	calls []recordedPublish
	err   error
}

func (p *fakePublisher) PublishJSON(_ context.Context, exchange, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, recordedPublish{exchange: exchange, routingKey: routingKey, payload: payload})
	return p.err
}

type fakeArchive struct {
	keys   []string
	putErr error
}

func (a *fakeArchive) PutObject(_ context.Context, key string, _ []byte, _ string, _ string) (string, error) {
	if a.putErr != nil {
		return "", a.putErr
	}
	a.keys = append(a.keys, key)
	return a.PublicURL(key), nil
}

func (a *fakeArchive) ListKeys(_ context.Context, prefix string) ([]string, error) {
	out := make([]string, 0)
	for _, k := range a.keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (a *fakeArchive) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

type brokenUploads struct{}

func (brokenUploads) RecentUploads(context.Context, int) ([]analytics.Upload, error) {
	return nil, errors.New("upload history unavailable")
}

func floatPtr(v float64) *float64 {
	return &v
}

func seededStore() *memstore.Store {
	s := memstore.New()
	now := time.Now().UTC()
	alice := s.AddUser(analytics.User{Name: "Alice", Email: "alice@example.com", IsVerified: true, CreatedAt: now.Add(-48 * time.Hour)})
	meal := s.AddMeal(analytics.Meal{Name: "Green Bowl", Type: analytics.MealTypeLunch, Price: floatPtr(12.5), Calories: floatPtr(480)})
	s.AddOrder(analytics.Order{
		UserID:        alice.ID,
		OrderDate:     now.Add(-time.Hour),
		TotalAmount:   25,
		PaymentStatus: "paid",
		Items:         []analytics.LineItem{{MealID: meal.ID, Quantity: 2, Price: 12.5}},
	})
	return s
}

func newTestHandler(src analytics.Sources) *Handler {
	return &Handler{
		Analytics: analytics.NewService(src, zap.NewNop(), analytics.WithLocation(time.UTC)),
		Logger:    zap.NewNop(),
		Config: config.Config{
			AnalyticsQueryTimeout:  5 * time.Second,
			RabbitMQEventsExchange: "mealplan.events",
		},
	}
}

func adminRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("X-Request-Id", "req-1")
	ctx := middleware.WithAuthContext(req.Context(), &middleware.AuthContext{UserID: "a1", Email: "admin@example.com"})
	return req.WithContext(ctx)
}

func TestAdminAnalyticsSummary(t *testing.T) {
	h := newTestHandler(seededStore().Sources())
	pub := &fakePublisher{}
	h.Queue = pub

	rec := httptest.NewRecorder()
	h.AdminAnalyticsSummary(rec, adminRequest(http.MethodGet, "/api/admin/analytics/summary"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body["totalUsers"])
	assert.EqualValues(t, 1, body["totalOrders"])
	assert.EqualValues(t, 25, body["totalRevenue"])
	assert.NotContains(t, body, "success")
	assert.Len(t, body["revenueData"], 14)

	require.Len(t, pub.calls, 1)
	call := pub.calls[0]
	assert.Equal(t, "mealplan.events", call.exchange)
	assert.Equal(t, queue.RoutingKeySummaryGenerated, call.routingKey)
	event, ok := call.payload.(queue.SummaryGenerated)
	require.True(t, ok)
	assert.Equal(t, "req-1", event.RequestID)
	assert.Equal(t, "admin@example.com", event.RequestedBy)
	assert.EqualValues(t, 1, event.TotalOrders)
	assert.Equal(t, 25.0, event.TotalRevenue)
}

func TestAdminAnalyticsSummaryPublishFailureIsIgnored(t *testing.T) {
	h := newTestHandler(seededStore().Sources())
	h.Queue = &fakePublisher{err: errors.New("broker down")}

	rec := httptest.NewRecorder()
	h.AdminAnalyticsSummary(rec, adminRequest(http.MethodGet, "/api/admin/analytics/summary"))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminAnalyticsSummaryFailure(t *testing.T) {
	src := seededStore().Sources()
	src.Uploads = brokenUploads{}
	h := newTestHandler(src)
	pub := &fakePublisher{}
	h.Queue = pub

	rec := httptest.NewRecorder()
	h.AdminAnalyticsSummary(rec, adminRequest(http.MethodGet, "/api/admin/analytics/summary"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "INTERNAL_ERROR", body["error"])
	assert.Equal(t, "Failed to fetch analytics", body["message"])
	assert.Contains(t, body["detail"], "upload history unavailable")
	assert.Empty(t, pub.calls)
}

func TestAdminAnalyticsExport(t *testing.T) {
	h := newTestHandler(seededStore().Sources())
	archive := &fakeArchive{}
	h.Archive = archive

	rec := httptest.NewRecorder()
	h.AdminAnalyticsExport(rec, adminRequest(http.MethodGet, "/api/admin/analytics/summary/export"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=\"analytics_")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	require.Len(t, archive.keys, 1)
	assert.True(t, strings.HasPrefix(archive.keys[0], "exports/analytics/"))
	assert.Equal(t, "https://cdn.example.com/"+archive.keys[0], rec.Header().Get("X-Report-Archive-Url"))
}

func TestAdminAnalyticsExportArchiveFailure(t *testing.T) {
	h := newTestHandler(seededStore().Sources())
	h.Archive = &fakeArchive{putErr: errors.New("bucket offline")}

	rec := httptest.NewRecorder()
	h.AdminAnalyticsExport(rec, adminRequest(http.MethodGet, "/api/admin/analytics/summary/export"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Report-Archive-Url"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestAdminAnalyticsExports(t *testing.T) {
	h := newTestHandler(seededStore().Sources())

	rec := httptest.NewRecorder()
	h.AdminAnalyticsExports(rec, adminRequest(http.MethodGet, "/api/admin/analytics/exports"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	h.Archive = &fakeArchive{keys: []string{
		"exports/analytics/2026-03-18/1.pdf",
		"exports/analytics/2026-03-18/2.pdf",
	}}

	rec = httptest.NewRecorder()
	h.AdminAnalyticsExports(rec, adminRequest(http.MethodGet, "/api/admin/analytics/exports?date=18-03-2026"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.AdminAnalyticsExports(rec, adminRequest(http.MethodGet, "/api/admin/analytics/exports?date=2026-03-18"))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Data    []struct {
			Key string `json:"key"`
			URL string `json:"url"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "exports/analytics/2026-03-18/2.pdf", body.Data[0].Key)
}
