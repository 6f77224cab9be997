package handler

import (
	"net/http"

	"pr-review-analytics/api"
	"pr-review-analytics/internal/domain"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// BaseHandler — общие для обработчиков логгер и ответы об ошибках.
type BaseHandler struct {
	logger *logrus.Logger
}

func NewBaseHandler(logger *logrus.Logger) *BaseHandler {
	return &BaseHandler{
		logger: logger,
	}
}

func (h *BaseHandler) logRequest(c echo.Context, operation string) *logrus.Entry {
	fields := logrus.Fields{
		"operation": operation,
		"method":    c.Request().Method,
		"path":      c.Request().URL.Path,
		"ip":        c.RealIP(),
	}
	if delivery := c.Request().Header.Get(api.DeliveryHeader); delivery != "" {
		fields["delivery_id"] = delivery
	}
	return h.logger.WithFields(fields)
}

// errorJSON пишет доменную ошибку в формате api.ErrorResponse.
// Неизвестные ошибки отдаются как INTERNAL_ERROR.
func (h *BaseHandler) errorJSON(c echo.Context, err error) error {
	if httpErr, exists := domain.ToHTTPError(err); exists {
		return c.JSON(getHTTPStatusCode(err), toAPIErrorResponse(httpErr))
	}
	return c.JSON(http.StatusInternalServerError, toErrorResponse("INTERNAL_ERROR", err.Error()))
}
