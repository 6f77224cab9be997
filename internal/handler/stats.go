package handler

import (
	"errors"
	"net/http"

	"pr-review-analytics/internal/domain"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// AnalyticsHandler отдает производные метрики пул-реквеста.
type AnalyticsHandler struct {
	*BaseHandler
	analyticsUseCase domain.AnalyticsUseCase
	policy           domain.AnalysisPolicy
}

// NewAnalyticsHandler создает новый экземпляр AnalyticsHandler.
func NewAnalyticsHandler(analyticsUseCase domain.AnalyticsUseCase, policy domain.AnalysisPolicy, logger *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsUseCase: analyticsUseCase,
		policy:           policy,
	}
}

// GetPullRequestAnalytics обрабатывает GET запрос метрик одного пул-реквеста.
func (h *AnalyticsHandler) GetPullRequestAnalytics(c echo.Context, pullRequestID int64) error {
	logEntry := h.logRequest(c, "get_pr_analytics").WithField("pull_request_id", pullRequestID)
	logEntry.Debug("Getting pull request analytics")

	analytics, err := h.analyticsUseCase.GetPullRequestAnalytics(c.Request().Context(), pullRequestID)
	if err != nil {
		if errors.Is(err, domain.ErrPRNotFound) {
			logEntry.Info("Pull request not found")
			return c.JSON(http.StatusNotFound, toErrorResponse("NOT_FOUND", err.Error()))
		}
		logEntry.WithError(err).Error("Failed to get pull request analytics")
		return h.errorJSON(c, err)
	}

	logEntry.WithFields(logrus.Fields{
		"sessions_count": len(analytics.Sessions),
		"comments_count": len(analytics.Comments),
	}).Debug("Pull request analytics retrieved")
	return c.JSON(http.StatusOK, toAPIAnalytics(analytics, h.policy))
}
