package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"mealplan-admin-service/internal/analytics"
	"mealplan-admin-service/internal/auth"
	"mealplan-admin-service/internal/config"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait        = 10 * time.Second
	defaultFeedEvery = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	messageSummary = "analytics.summary"
	messageError   = "analytics.error"
)

type Server struct {
	Analytics *analytics.Service
	Policy    *auth.AdminPolicy
	Logger    *zap.Logger
	Config    config.Config

	feed *analyticsFeed
}

func New(svc *analytics.Service, policy *auth.AdminPolicy, logger *zap.Logger, cfg config.Config) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		Analytics: svc,
		Policy:    policy,
		Logger:    logger,
		Config:    cfg,
		feed:      newAnalyticsFeed(svc, logger, cfg),
	}
}

// Close stops the push loop and disconnects every dashboard client.
func (s *Server) Close() {
	s.feed.close()
}

type wsRealtimeClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsRealtimeClient) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(value)
}

func (c *wsRealtimeClient) ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// analyticsFeed recomputes the report on a fixed interval and pushes it to
// every subscribed dashboard. Nothing is computed while nobody listens.
type analyticsFeed struct {
	svc       *analytics.Service
	logger    *zap.Logger
	interval  time.Duration
	heartbeat time.Duration
	timeout   time.Duration
	max       int

	started sync.Once
	ctx     context.Context
	cancel  context.CancelFunc

	mu   sync.RWMutex
	subs map[*wsRealtimeClient]struct{}
}

var errFeedFull = errors.New("too many dashboard connections")

func newAnalyticsFeed(svc *analytics.Service, logger *zap.Logger, cfg config.Config) *analyticsFeed {
	ctx, cancel := context.WithCancel(context.Background())
	return &analyticsFeed{
		svc:       svc,
		logger:    logger,
		interval:  positiveOr(cfg.AnalyticsPushInterval, defaultFeedEvery),
		heartbeat: positiveOr(cfg.WSHeartbeatInterval, defaultFeedEvery),
		timeout:   cfg.AnalyticsQueryTimeout,
		max:       int(cfg.WSMaxClients),
		ctx:       ctx,
		cancel:    cancel,
		subs:      make(map[*wsRealtimeClient]struct{}),
	}
}

func (f *analyticsFeed) ensureStarted() {
	f.started.Do(func() {
		go f.pushLoop()
	})
}

func (f *analyticsFeed) subscribe(client *wsRealtimeClient) (unsubscribe func(), err error) {
	f.mu.Lock()
	if f.max > 0 && len(f.subs) >= f.max {
		f.mu.Unlock()
		return nil, errFeedFull
	}
	f.subs[client] = struct{}{}
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, client)
		f.mu.Unlock()
	}, nil
}

func (f *analyticsFeed) clients() []*wsRealtimeClient {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*wsRealtimeClient, 0, len(f.subs))
	for c := range f.subs {
		out = append(out, c)
	}
	return out
}

func (f *analyticsFeed) drop(c *wsRealtimeClient) {
	_ = c.conn.Close()
	f.mu.Lock()
	delete(f.subs, c)
	f.mu.Unlock()
}

func (f *analyticsFeed) broadcast(message any) {
	for _, c := range f.clients() {
		if err := c.writeJSON(message); err != nil {
			f.drop(c)
		}
	}
}

// snapshot computes one report and wraps it in the feed envelope.
func (f *analyticsFeed) snapshot(ctx context.Context) map[string]any {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	report, err := f.svc.Summary(ctx)
	if err != nil {
		f.logger.Warn("analytics feed refresh failed", zap.Error(err))
		return map[string]any{"type": messageError, "message": err.Error()}
	}
	return map[string]any{"type": messageSummary, "data": report}
}

func (f *analyticsFeed) pushLoop() {
	push := time.NewTicker(f.interval)
	defer push.Stop()
	heartbeat := time.NewTicker(f.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-f.ctx.Done():
			return
		case <-push.C:
			if len(f.clients()) == 0 {
				continue
			}
			f.broadcast(f.snapshot(f.ctx))
		case <-heartbeat.C:
			for _, c := range f.clients() {
				if err := c.ping(); err != nil {
					f.drop(c)
				}
			}
		}
	}
}

func (f *analyticsFeed) close() {
	f.cancel()
	for _, c := range f.clients() {
		f.drop(c)
	}
}

// AdminAnalyticsWS streams the analytics report to an admin dashboard. The
// token comes from ?token= because browsers cannot set headers on upgrade.
func (s *Server) AdminAnalyticsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	token := auth.TokenFromQuery(r.URL.Query().Get("token"))
	if _, err := s.Policy.Authenticate(token, s.Config.JWTSecret); err != nil {
		message := "unauthorized"
		if errors.Is(err, auth.ErrNotAdmin) {
			message = "forbidden"
		}
		_ = conn.WriteJSON(map[string]any{"type": "error", "message": message})
		return
	}

	client := &wsRealtimeClient{conn: conn}
	unsubscribe, err := s.feed.subscribe(client)
	if err != nil {
		s.Logger.Warn("analytics feed rejected client", zap.Error(err))
		_ = client.writeJSON(map[string]any{"type": "error", "message": err.Error()})
		return
	}
	defer unsubscribe()
	s.feed.ensureStarted()

	readWait := 2 * s.feed.heartbeat
	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	ctx := r.Context()
	if err := client.writeJSON(s.feed.snapshot(ctx)); err != nil {
		return
	}

	select {
	case <-clientClosed:
		return
	case <-ctx.Done():
		return
	case <-s.feed.ctx.Done():
		return
	}
}

func positiveOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
