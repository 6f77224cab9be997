package handler

import (
	"pr-review-analytics/api"
	"pr-review-analytics/internal/domain"

	"github.com/sirupsen/logrus"
)

type APIHandler struct {
	*WebhookHandler
	*AnalyticsHandler
}

func NewAPIHandler(
	eventUseCase domain.EventUseCase,
	analyticsUseCase domain.AnalyticsUseCase,
	policy domain.AnalysisPolicy,
	logger *logrus.Logger,
) api.ServerInterface {

	return &APIHandler{
		WebhookHandler:   NewWebhookHandler(eventUseCase, logger),
		AnalyticsHandler: NewAnalyticsHandler(analyticsUseCase, policy, logger),
	}
}
