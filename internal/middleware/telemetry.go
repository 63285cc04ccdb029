package middleware

import (
	"bufio"
	"fmt"
	"math"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type telemetryRecorder struct {
	response http.ResponseWriter
	status   int
	bytes    int
}

// latencyWindow is a fixed-size ring of the most recent durations of a route.
type latencyWindow struct {
	samples []int64
	next    int
}

func (w *latencyWindow) add(value int64, max int) {
	if len(w.samples) < max {
		w.samples = append(w.samples, value)
		return
	}
	w.samples[w.next] = value
	w.next = (w.next + 1) % max
}

func (w *latencyWindow) sorted() []int64 {
	values := append([]int64(nil), w.samples...)
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return values
}

type latencyAggregator struct {
	mu     sync.Mutex
	window int
	routes map[string]*latencyWindow
}

func newLatencyAggregator(window int) *latencyAggregator {
	return &latencyAggregator{window: window, routes: make(map[string]*latencyWindow)}
}

func (a *latencyAggregator) record(key string, value int64) (int64, int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	win, ok := a.routes[key]
	if !ok {
		win = &latencyWindow{}
		a.routes[key] = win
	}
	win.add(value, a.window)

	values := win.sorted()
	return percentile(values, 0.5), percentile(values, 0.95)
}

func percentile(values []int64, p float64) int64 {
	if len(values) == 0 {
		return 0
	}
	if p <= 0 {
		return values[0]
	}
	if p >= 1 {
		return values[len(values)-1]
	}
	idx := int(math.Ceil(p*float64(len(values)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(values) {
		idx = len(values) - 1
	}
	return values[idx]
}

var telemetryLatency = newLatencyAggregator(200)

func (r *telemetryRecorder) Header() http.Header {
	return r.response.Header()
}

func (r *telemetryRecorder) WriteHeader(status int) {
	r.status = status
	r.response.WriteHeader(status)
}

func (r *telemetryRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.response.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	if r.status == 0 {
		r.status = http.StatusSwitchingProtocols
	}
	return hj.Hijack()
}

func (r *telemetryRecorder) Write(data []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.response.Write(data)
	r.bytes += n
	return n, err
}

// Telemetry logs one line per request with rolling p50/p95 latencies of the
// matched route. Requests slower than slow are logged at warn level; a zero
// slow disables that.
func Telemetry(logger *zap.Logger, slow time.Duration) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &telemetryRecorder{response: w}

			next.ServeHTTP(recorder, r)

			status := recorder.status
			if status == 0 {
				status = http.StatusOK
			}
			duration := time.Since(start)
			route := routeKey(r)
			p50, p95 := telemetryLatency.record(route, duration.Milliseconds())

			fields := []zap.Field{
				zap.String("route", route),
				zap.String("path", r.URL.Path),
				zap.String("requestId", RequestIDFrom(r)),
				zap.Int("status", status),
				zap.Int("bytes", recorder.bytes),
				zap.Int64("duration_ms", duration.Milliseconds()),
				zap.Int64("p50_ms", p50),
				zap.Int64("p95_ms", p95),
			}
			switch {
			case status >= http.StatusInternalServerError:
				logger.Error("http_request", fields...)
			case slow > 0 && duration >= slow:
				logger.Warn("http_request_slow", fields...)
			default:
				logger.Info("http_request", fields...)
			}
		})
	}
}

// routeKey prefers the chi pattern so ids in paths do not split the windows.
func routeKey(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return r.Method + " " + pattern
		}
	}
	return r.Method + " " + r.URL.Path
}
