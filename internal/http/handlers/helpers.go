package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

var errInvalidDate = errors.New("date must be YYYY-MM-DD")

func zapError(err error) zap.Field {
	return zap.Error(err)
}

// analyticsContext bounds one report computation by the configured timeout.
func (h *Handler) analyticsContext(r *http.Request) (context.Context, context.CancelFunc) {
	timeout := h.Config.AnalyticsQueryTimeout
	if timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), timeout)
}

// readQueryDate parses an optional ?key=YYYY-MM-DD, falling back to today.
func readQueryDate(r *http.Request, key string, now time.Time) (time.Time, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return now, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	return parsed, nil
}
