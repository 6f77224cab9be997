package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"pr-review-analytics/api"
	"pr-review-analytics/internal/domain"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// WebhookHandler принимает события пул-реквестов из системы ревью.
type WebhookHandler struct {
	*BaseHandler
	eventUseCase domain.EventUseCase
}

// NewWebhookHandler создает новый экземпляр WebhookHandler.
func NewWebhookHandler(eventUseCase domain.EventUseCase, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler:  NewBaseHandler(logger),
		eventUseCase: eventUseCase,
	}
}

// PostWebhookEvents разбирает конверт события и применяет его.
func (h *WebhookHandler) PostWebhookEvents(c echo.Context, params api.PostWebhookEventsParams) error {
	deliveryID := uuid.NewString()
	if params.XGitHubDelivery != nil && *params.XGitHubDelivery != "" {
		deliveryID = *params.XGitHubDelivery
	}

	var envelope api.EventEnvelope
	if err := c.Bind(&envelope); err != nil {
		h.logger.WithError(err).WithField("delivery_id", deliveryID).Warn("Failed to bind webhook envelope")
		return c.JSON(http.StatusBadRequest, toErrorResponse("INVALID_REQUEST", err.Error()))
	}

	c.Set(eventTypeKey, envelope.Type)
	logEntry := h.logRequest(c, "apply_event").WithFields(logrus.Fields{
		"event_type":  envelope.Type,
		"delivery_id": deliveryID,
	})

	event, err := decodeEvent(envelope)
	if err != nil {
		logEntry.WithError(err).Warn("Failed to decode event")
		return h.errorJSON(c, err)
	}

	result, err := h.eventUseCase.Handle(c.Request().Context(), deliveryID, event)
	if err != nil {
		logEntry.WithError(err).Warn("Event not applied")
		return h.errorJSON(c, err)
	}

	return c.JSON(http.StatusAccepted, api.EventAccepted{
		EventType:  string(result.EventType),
		DeliveryId: deliveryID,
		Duplicate:  result.Duplicate,
	})
}

// decodeEvent превращает полезную нагрузку конверта в доменное событие.
func decodeEvent(envelope api.EventEnvelope) (domain.Event, error) {
	if len(envelope.Payload) == 0 {
		return nil, fmt.Errorf("%w: payload is empty", domain.ErrInvalidPayload)
	}

	switch domain.EventType(envelope.Type) {
	case domain.EventPullRequestOpened:
		var p api.PullRequestOpenedPayload
		if err := unmarshalPayload(envelope.Payload, &p); err != nil {
			return nil, err
		}
		return toOpenedEvent(p), nil

	case domain.EventPullRequestSynchronized:
		var p api.PullRequestSynchronizedPayload
		if err := unmarshalPayload(envelope.Payload, &p); err != nil {
			return nil, err
		}
		return domain.PullRequestSynchronized{
			PullRequestID: p.PullRequestId,
			ChangeStats:   domain.ChangeStats{Additions: p.Additions, Deletions: p.Deletions, ChangedFiles: p.ChangedFiles},
			SyncedAt:      p.SyncedAt.UTC(),
		}, nil

	case domain.EventPullRequestStateChanged:
		var p api.PullRequestStateChangedPayload
		if err := unmarshalPayload(envelope.Payload, &p); err != nil {
			return nil, err
		}
		return domain.PullRequestStateChanged{
			PullRequestID: p.PullRequestId,
			PreviousState: domain.PRState(p.PreviousState),
			NewState:      domain.PRState(p.NewState),
			ChangedAt:     p.ChangedAt.UTC(),
		}, nil

	case domain.EventReviewSubmitted:
		var p api.ReviewSubmittedPayload
		if err := unmarshalPayload(envelope.Payload, &p); err != nil {
			return nil, err
		}
		return domain.ReviewSubmitted{
			ReviewID:      p.ReviewId,
			PullRequestID: p.PullRequestId,
			Reviewer:      p.Reviewer,
			State:         domain.ReviewState(p.State),
			CommentCount:  p.CommentCount,
			SubmittedAt:   p.SubmittedAt.UTC(),
		}, nil

	case domain.EventReviewerAdded:
		var p api.ReviewerAddedPayload
		if err := unmarshalPayload(envelope.Payload, &p); err != nil {
			return nil, err
		}
		return domain.ReviewerAdded{PullRequestID: p.PullRequestId, Reviewer: p.Reviewer, RequestedAt: p.RequestedAt.UTC()}, nil

	case domain.EventReviewerRemoved:
		var p api.ReviewerRemovedPayload
		if err := unmarshalPayload(envelope.Payload, &p); err != nil {
			return nil, err
		}
		return domain.ReviewerRemoved{PullRequestID: p.PullRequestId, Reviewer: p.Reviewer, RemovedAt: p.RemovedAt.UTC()}, nil

	case domain.EventReviewCommentCreated:
		var p api.ReviewCommentPayload
		if err := unmarshalPayload(envelope.Payload, &p); err != nil {
			return nil, err
		}
		return domain.ReviewCommentCreated{ReviewCommentID: p.ReviewCommentId, ReviewID: p.ReviewId, Body: p.Body, UpdatedAt: p.UpdatedAt.UTC()}, nil

	case domain.EventReviewCommentEdited:
		var p api.ReviewCommentPayload
		if err := unmarshalPayload(envelope.Payload, &p); err != nil {
			return nil, err
		}
		return domain.ReviewCommentEdited{ReviewCommentID: p.ReviewCommentId, ReviewID: p.ReviewId, Body: p.Body, UpdatedAt: p.UpdatedAt.UTC()}, nil

	case domain.EventReviewCommentDeleted:
		var p api.ReviewCommentPayload
		if err := unmarshalPayload(envelope.Payload, &p); err != nil {
			return nil, err
		}
		return domain.ReviewCommentDeleted{ReviewCommentID: p.ReviewCommentId, ReviewID: p.ReviewId, Body: p.Body, UpdatedAt: p.UpdatedAt.UTC()}, nil

	case domain.EventCommitPushed:
		var p api.CommitPushedPayload
		if err := unmarshalPayload(envelope.Payload, &p); err != nil {
			return nil, err
		}
		return domain.CommitPushed{
			PullRequestID: p.PullRequestId,
			SHA:           p.Sha,
			Additions:     p.Additions,
			Deletions:     p.Deletions,
			CommittedAt:   p.CommittedAt.UTC(),
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEventType, envelope.Type)
	}
}

func unmarshalPayload(raw json.RawMessage, dest any) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	return nil
}

func toOpenedEvent(p api.PullRequestOpenedPayload) domain.PullRequestOpened {
	files := make([]domain.ChangedFile, len(p.Files))
	for i, f := range p.Files {
		files[i] = domain.ChangedFile{
			Filename:  f.Filename,
			Status:    domain.FileChangeType(f.Status),
			Additions: f.Additions,
			Deletions: f.Deletions,
		}
	}
	return domain.PullRequestOpened{
		PullRequestID: p.PullRequestId,
		Author:        p.Author,
		ChangeStats:   domain.ChangeStats{Additions: p.Additions, Deletions: p.Deletions, ChangedFiles: p.ChangedFiles},
		CommitCount:   p.CommitCount,
		CreatedAt:     p.CreatedAt.UTC(),
		Files:         files,
	}
}
