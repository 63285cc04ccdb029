package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"mealplan-admin-service/internal/auth"
)

const testSecret = "middleware-secret"

func TestAdminAuth(t *testing.T) {
	policy := auth.NewAdminPolicy([]string{"admin@example.com"})
	adminToken, _ := auth.SignAccessToken("a1", "admin@example.com", testSecret, time.Hour)
	userToken, _ := auth.SignAccessToken("u1", "user@example.com", testSecret, time.Hour)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{name: "missing token", header: "", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "garbage token", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "non admin", header: "Bearer " + userToken, wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN"},
		{name: "admin", header: "Bearer " + adminToken, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *AuthContext
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = GetAuthContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/admin/analytics/summary", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			AdminAuth(policy, testSecret)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantCode == "" {
				if seen == nil || seen.Email != "admin@example.com" {
					t.Fatalf("expected admin auth context, got %+v", seen)
				}
				return
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["error"] != tt.wantCode || body["success"] != false {
				t.Fatalf("unexpected body %v", body)
			}
			if seen != nil {
				t.Fatalf("next handler must not run")
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var got string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestIDFrom(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-Id", "corr-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got != "corr-1" || rec.Header().Get("X-Request-Id") != "corr-1" {
		t.Fatalf("expected correlation id to be reused, got %q", got)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if got == "" || got == "corr-1" || rec.Header().Get("X-Request-Id") != got {
		t.Fatalf("expected generated id, got %q", got)
	}
}

func TestPercentile(t *testing.T) {
	values := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := percentile(values, 0.5); got != 5 {
		t.Fatalf("expected p50 5, got %d", got)
	}
	if got := percentile(values, 0.95); got != 10 {
		t.Fatalf("expected p95 10, got %d", got)
	}
	if got := percentile(nil, 0.5); got != 0 {
		t.Fatalf("expected 0 for empty window, got %d", got)
	}
}

func TestLatencyWindowKeepsNewest(t *testing.T) {
	var w latencyWindow
	for i := int64(1); i <= 5; i++ {
		w.add(i, 3)
	}
	got := w.sorted()
	if len(got) != 3 || got[0] != 3 || got[2] != 5 {
		t.Fatalf("expected newest three samples, got %v", got)
	}
}

func TestTelemetryLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	serve := func(status int, slow time.Duration) {
		handler := Telemetry(logger, slow)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/admin/analytics/summary", nil))
	}

	serve(http.StatusOK, 0)
	serve(http.StatusInternalServerError, 0)
	serve(http.StatusOK, time.Nanosecond)

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[1].Level != zapcore.ErrorLevel || entries[2].Level != zapcore.WarnLevel {
		t.Fatalf("unexpected levels %v %v %v", entries[0].Level, entries[1].Level, entries[2].Level)
	}
	if route := entries[0].ContextMap()["route"]; route != "GET /api/admin/analytics/summary" {
		t.Fatalf("unexpected route %v", route)
	}
}
