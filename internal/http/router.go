package httpapi

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"mealplan-admin-service/internal/auth"
	"mealplan-admin-service/internal/config"
	"mealplan-admin-service/internal/http/handlers"
	"mealplan-admin-service/internal/middleware"
	"mealplan-admin-service/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func NewRouter(logger *zap.Logger, cfg config.Config, h *handlers.Handler, policy *auth.AdminPolicy, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(logger, cfg.AnalyticsQueryTimeout/2))

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"X-Request-Id",
				"Cache-Control",
				"Pragma",
			},
			ExposedHeaders:   []string{"Content-Disposition", "X-Report-Archive-Url", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/admin/analytics", func(r chi.Router) {
		r.Use(setResponseHeader("Cache-Control", "no-store"))
		r.Use(middleware.AdminAuth(policy, cfg.JWTSecret))

		r.Get("/summary", h.AdminAnalyticsSummary)
		r.Get("/summary/export", h.AdminAnalyticsExport)
		r.Get("/exports", h.AdminAnalyticsExports)
	})

	if wsServer != nil {
		r.Get("/ws/admin/analytics", wsServer.AdminAnalyticsWS)
	}

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestId", middleware.RequestIDFrom(r)),
			)
		})
	}
}

func setResponseHeader(name string, value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(name, value)
			next.ServeHTTP(w, r)
		})
	}
}
