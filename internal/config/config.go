package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPAddr string
	LogLevel string
	Timezone string

	StoreDriver   string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	JWTSecret          string
	AdminEmails        []string
	CorsAllowedOrigins []string

	AnalyticsQueryTimeout time.Duration
	AnalyticsPushInterval time.Duration
	WSHeartbeatInterval   time.Duration
	WSMaxClients          int64

	RabbitMQURL            string
	RabbitMQEventsExchange string

	ObjectStoreEndpoint        string
	ObjectStoreRegion          string
	ObjectStoreAccessKeyID     string
	ObjectStoreSecretAccessKey string
	ObjectStoreBucket          string
	ObjectStorePublicBaseURL   string
	ObjectStoreStorageClass    string
}

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"
)

func Load() Config {
	cfg := Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8087"),
		LogLevel: getEnv("LOG_LEVEL", ""),
		Timezone: getEnv("APP_TIMEZONE", ""),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "mealplan"),

		JWTSecret:          getEnv("JWT_SECRET", ""),
		AdminEmails:        splitCSV(getEnvFirst([]string{"ADMIN_EMAILS", "ADMIN_EMAIL"}, "")),
		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),

		AnalyticsQueryTimeout: getEnvDuration("ANALYTICS_QUERY_TIMEOUT", 15*time.Second),
		AnalyticsPushInterval: getEnvDuration("ANALYTICS_PUSH_INTERVAL", 30*time.Second),
		WSHeartbeatInterval:   getEnvDuration("WS_HEARTBEAT_INTERVAL", 30*time.Second),
		WSMaxClients:          getEnvInt64("WS_MAX_CLIENTS", 50),

		RabbitMQURL:            getEnv("RABBITMQ_URL", ""),
		RabbitMQEventsExchange: getEnv("RABBITMQ_EVENTS_EXCHANGE", "mealplan.events"),

		// Object store (Cloudflare R2 / S3-compatible)
		ObjectStoreEndpoint:        getEnvFirst([]string{"OBJECT_STORE_ENDPOINT", "R2_S3_ENDPOINT"}, ""),
		ObjectStoreRegion:          getEnvFirst([]string{"OBJECT_STORE_REGION", "R2_REGION"}, "auto"),
		ObjectStoreAccessKeyID:     getEnvFirst([]string{"OBJECT_STORE_ACCESS_KEY_ID", "R2_ACCESS_KEY_ID"}, ""),
		ObjectStoreSecretAccessKey: getEnvFirst([]string{"OBJECT_STORE_SECRET_ACCESS_KEY", "R2_SECRET_ACCESS_KEY"}, ""),
		ObjectStoreBucket:          getEnvFirst([]string{"OBJECT_STORE_BUCKET", "R2_BUCKET"}, ""),
		ObjectStorePublicBaseURL:   getEnvFirst([]string{"OBJECT_STORE_PUBLIC_BASE_URL", "R2_PUBLIC_BASE_URL"}, ""),
		ObjectStoreStorageClass:    getEnvFirst([]string{"OBJECT_STORE_STORAGE_CLASS", "R2_STORAGE_CLASS"}, "STANDARD"),
	}

	if cfg.AnalyticsQueryTimeout <= 0 {
		cfg.AnalyticsQueryTimeout = 15 * time.Second
	}
	if cfg.WSHeartbeatInterval <= 0 {
		cfg.WSHeartbeatInterval = 30 * time.Second
	}
	if cfg.AnalyticsPushInterval <= 0 {
		cfg.AnalyticsPushInterval = 30 * time.Second
	}

	// Back-compat: allow R2_ACCOUNT_ID -> endpoint
	if strings.TrimSpace(cfg.ObjectStoreEndpoint) == "" {
		accountID := strings.TrimSpace(os.Getenv("R2_ACCOUNT_ID"))
		if accountID != "" {
			cfg.ObjectStoreEndpoint = "https://" + accountID + ".r2.cloudflarestorage.com"
		}
	}

	return cfg
}

// ObjectStoreEnabled reports whether export archiving has everything it needs.
func (c Config) ObjectStoreEnabled() bool {
	return c.ObjectStoreEndpoint != "" && c.ObjectStoreBucket != "" && c.ObjectStorePublicBaseURL != "" &&
		c.ObjectStoreAccessKeyID != "" && c.ObjectStoreSecretAccessKey != ""
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvFirst(keys []string, fallback string) string {
	for _, k := range keys {
		value := strings.TrimSpace(os.Getenv(k))
		if value != "" {
			return value
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
