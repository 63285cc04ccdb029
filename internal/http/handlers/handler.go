package handlers

import (
	"mealplan-admin-service/internal/analytics"
	"mealplan-admin-service/internal/config"
	"mealplan-admin-service/internal/queue"
	"mealplan-admin-service/internal/storage"

	"go.uber.org/zap"
)

// Handler carries the dependencies of the admin HTTP endpoints. Queue and
// Archive are optional and left nil when their backends are not configured.
type Handler struct {
	Analytics *analytics.Service
	Logger    *zap.Logger
	Config    config.Config
	Queue     queue.Publisher
	Archive   storage.Archive
}
