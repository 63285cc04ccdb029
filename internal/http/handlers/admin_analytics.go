package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"mealplan-admin-service/internal/analytics"
	"mealplan-admin-service/internal/export"
	"mealplan-admin-service/internal/middleware"
	"mealplan-admin-service/internal/queue"
	"mealplan-admin-service/internal/storage"
	"mealplan-admin-service/pkg/response"
)

const publishTimeout = 5 * time.Second

// AdminAnalyticsSummary returns the flat report object computed from the
// current state of the stores.
func (h *Handler) AdminAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.analyticsContext(r)
	defer cancel()

	started := time.Now()
	report, err := h.Analytics.Summary(ctx)
	if err != nil {
		h.Logger.Error("admin analytics summary failed",
			zapError(err),
			zap.String("requestId", middleware.RequestIDFrom(r)),
		)
		response.ErrorWithDetail(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch analytics", err)
		return
	}

	h.publishSummaryGenerated(r, report, started)
	response.JSON(w, http.StatusOK, report)
}

// AdminAnalyticsExport renders the report as a PDF download and, when an
// archive is configured, keeps a copy in the object store.
func (h *Handler) AdminAnalyticsExport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.analyticsContext(r)
	defer cancel()

	report, err := h.Analytics.Summary(ctx)
	if err != nil {
		h.Logger.Error("admin analytics export failed", zapError(err))
		response.ErrorWithDetail(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch analytics", err)
		return
	}

	generatedAt := time.Now().In(h.Analytics.Location())
	pdf, err := export.RenderReport(report, generatedAt)
	if err != nil {
		h.Logger.Error("render analytics pdf failed", zapError(err))
		response.ErrorWithDetail(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate report", err)
		return
	}

	if h.Archive != nil {
		archived, err := storage.ArchiveReport(r.Context(), h.Archive, pdf, generatedAt)
		if err != nil {
			h.Logger.Warn("archive analytics pdf failed", zapError(err))
		} else {
			w.Header().Set("X-Report-Archive-Url", archived.URL)
		}
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", export.Filename(generatedAt)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// AdminAnalyticsExports lists the archived PDFs of one UTC day (?date=, default today).
func (h *Handler) AdminAnalyticsExports(w http.ResponseWriter, r *http.Request) {
	if h.Archive == nil {
		response.Error(w, http.StatusNotFound, "ARCHIVE_DISABLED", "Report archive is not configured")
		return
	}

	day, err := readQueryDate(r, "date", time.Now().UTC())
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	reports, err := storage.ListReports(r.Context(), h.Archive, day)
	if err != nil {
		h.Logger.Error("list analytics archives failed", zapError(err))
		response.ErrorWithDetail(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list reports", err)
		return
	}
	response.Success(w, reports)
}

func (h *Handler) publishSummaryGenerated(r *http.Request, report *analytics.Report, started time.Time) {
	if h.Queue == nil {
		return
	}

	var requestedBy string
	if authCtx, ok := middleware.GetAuthContext(r.Context()); ok {
		requestedBy = authCtx.Email
	}
	event := queue.NewSummaryGenerated(middleware.RequestIDFrom(r), requestedBy, time.Now(), time.Since(started))
	event.TotalUsers = report.TotalUsers
	event.TotalOrders = report.TotalOrders
	event.TotalRevenue = report.TotalRevenue
	event.TotalMeals = report.TotalMeals

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), publishTimeout)
	defer cancel()
	if err := h.Queue.PublishJSON(ctx, h.Config.RabbitMQEventsExchange, queue.RoutingKeySummaryGenerated, event); err != nil {
		h.Logger.Warn("publish analytics summary event failed", zapError(err))
	}
}
