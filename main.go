package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mealplan-admin-service/internal/analytics"
	"mealplan-admin-service/internal/auth"
	"mealplan-admin-service/internal/config"
	"mealplan-admin-service/internal/db"
	httpapi "mealplan-admin-service/internal/http"
	"mealplan-admin-service/internal/http/handlers"
	"mealplan-admin-service/internal/logger"
	"mealplan-admin-service/internal/queue"
	"mealplan-admin-service/internal/storage"
	"mealplan-admin-service/internal/store/memstore"
	mongostore "mealplan-admin-service/internal/store/mongo"
	"mealplan-admin-service/internal/store/postgres"
	"mealplan-admin-service/internal/utils"
	"mealplan-admin-service/internal/ws"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()
	sources, closeStore, err := openSources(ctx, cfg, log)
	if err != nil {
		log.Fatal("store connection failed", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	if len(cfg.AdminEmails) == 0 {
		log.Warn("no admin emails configured; every analytics request will be forbidden")
	}
	policy := auth.NewAdminPolicy(cfg.AdminEmails)

	svc := analytics.NewService(sources, log.Named("analytics"), analytics.WithLocation(utils.LoadLocation(cfg.Timezone)))
	h := &handlers.Handler{Analytics: svc, Logger: log, Config: cfg}

	if qc := connectQueue(cfg, log); qc != nil {
		defer qc.Close()
		h.Queue = qc
	}

	if cfg.ObjectStoreEnabled() {
		store, err := storage.NewObjectStore(ctx, storage.Config{
			Endpoint:        cfg.ObjectStoreEndpoint,
			Region:          cfg.ObjectStoreRegion,
			AccessKeyID:     cfg.ObjectStoreAccessKeyID,
			SecretAccessKey: cfg.ObjectStoreSecretAccessKey,
			Bucket:          cfg.ObjectStoreBucket,
			PublicBaseURL:   cfg.ObjectStorePublicBaseURL,
			StorageClass:    cfg.ObjectStoreStorageClass,
		})
		if err != nil {
			log.Warn("object store unavailable; exports will not be archived", zap.Error(err))
		} else {
			h.Archive = store
			log.Info("export archive enabled", zap.String("bucket", cfg.ObjectStoreBucket))
		}
	} else {
		log.Info("export archive disabled (object store not configured)")
	}

	wsServer := ws.New(svc, policy, log.Named("ws"), cfg)
	defer wsServer.Close()

	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(log, cfg, h, policy, wsServer),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("admin analytics api ready", zap.String("base", "/api/admin/analytics"))
		log.Info("admin analytics ws ready", zap.String("base", "/ws/admin/analytics"))
		log.Info("admin service listening", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.StoreDriver))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	wsServer.Close()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}

// openSources connects the backend named by STORE_DRIVER.
func openSources(ctx context.Context, cfg config.Config, log *zap.Logger) (analytics.Sources, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return analytics.Sources{}, nil, err
		}
		return postgres.New(pool).Sources(), pool.Close, nil
	case config.StoreDriverMongo:
		store, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return analytics.Sources{}, nil, err
		}
		closeFn := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Close(closeCtx); err != nil {
				log.Warn("mongo disconnect failed", zap.Error(err))
			}
		}
		return store.Sources(), closeFn, nil
	case config.StoreDriverMemory:
		log.Warn("using in-memory store; data is empty and lost on restart")
		return memstore.New().Sources(), func() {}, nil
	default:
		return analytics.Sources{}, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// connectQueue returns nil when RabbitMQ is not configured or, outside
// production, unreachable.
func connectQueue(cfg config.Config, log *zap.Logger) *queue.Client {
	if cfg.RabbitMQURL == "" {
		log.Info("summary events disabled (RABBITMQ_URL is empty)")
		return nil
	}

	qc, err := queue.New(cfg.RabbitMQURL)
	if err != nil {
		if cfg.Env == "production" {
			log.Fatal("rabbitmq connection failed", zap.Error(err))
		}
		log.Warn("rabbitmq connection failed; continuing without events", zap.Error(err))
		return nil
	}
	if err := qc.EnsureExchange(cfg.RabbitMQEventsExchange); err != nil {
		if cfg.Env == "production" {
			log.Fatal("rabbitmq exchange failed", zap.Error(err))
		}
		log.Warn("rabbitmq exchange failed; continuing without events", zap.Error(err))
		_ = qc.Close()
		return nil
	}
	log.Info("summary events enabled", zap.String("exchange", cfg.RabbitMQEventsExchange))
	return qc
}
