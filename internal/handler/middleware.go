package handler

import (
	"time"

	"pr-review-analytics/api"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// eventTypeKey — ключ echo.Context, под которым обработчик вебхука кладет тип события.
const eventTypeKey = "event_type"

// LoggingMiddleware пишет журнал доступа с полями доставки события
func LoggingMiddleware(logger *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			entry := logger.WithFields(accessFields(c, status, time.Since(start)))
			if err != nil {
				entry = entry.WithError(err)
			}

			switch {
			case status >= 500:
				entry.Error("Server error")
			case status == 409:
				entry.Info("Event parked until redelivery")
			case status >= 400:
				entry.Warn("Client error")
			default:
				entry.Info("Request processed")
			}
			return err
		}
	}
}

func accessFields(c echo.Context, status int, latency time.Duration) logrus.Fields {
	fields := logrus.Fields{
		"method":  c.Request().Method,
		"uri":     c.Request().URL.Path,
		"status":  status,
		"latency": latency,
		"ip":      c.RealIP(),
	}
	if delivery := c.Request().Header.Get(api.DeliveryHeader); delivery != "" {
		fields["delivery_id"] = delivery
	}
	if eventType, ok := c.Get(eventTypeKey).(string); ok && eventType != "" {
		fields["event_type"] = eventType
	}
	if prID := c.Param("pull_request_id"); prID != "" {
		fields["pull_request_id"] = prID
	}
	return fields
}
