package domain

import (
	"errors"
	"fmt"
)

// Domain errors (для бизнес-логики)
var (
	// Validation errors
	ErrPrecondition      = errors.New("precondition violated")
	ErrNegativeDuration  = fmt.Errorf("%w: negative duration", ErrPrecondition)
	ErrUnknownEventType  = errors.New("unknown event type")
	ErrInvalidPayload    = errors.New("invalid event payload")
	ErrInvalidPRID       = fmt.Errorf("%w: invalid pull request id", ErrPrecondition)
	ErrInvalidReviewer   = fmt.Errorf("%w: reviewer is required", ErrPrecondition)
	ErrInvalidTimestamp  = fmt.Errorf("%w: timestamp is required", ErrPrecondition)
	ErrUnknownState      = fmt.Errorf("%w: unknown state", ErrPrecondition)
	ErrNegativeChangeSum = fmt.Errorf("%w: negative change count", ErrPrecondition)

	// Not found errors: событие пришло раньше, чем записаны его родительские данные
	ErrPRNotFound            = errors.New("pull request not found")
	ErrReviewNotFound        = errors.New("review not found")
	ErrReviewCommentNotFound = errors.New("review comment not found")
)

// PreconditionError описывает нарушение контракта источником событий.
type PreconditionError struct {
	Field  string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition violated: %s %s", e.Field, e.Reason)
}

// Is позволяет сравнивать через errors.Is(err, ErrPrecondition).
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

func required(field string) error {
	return &PreconditionError{Field: field, Reason: "is required"}
}

// IsOrderingViolation сообщает, что событие нужно доставить повторно позже.
func IsOrderingViolation(err error) bool {
	return errors.Is(err, ErrPRNotFound) ||
		errors.Is(err, ErrReviewNotFound) ||
		errors.Is(err, ErrReviewCommentNotFound)
}

// HTTPError для ответа вебхук-источнику
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error HTTPError `json:"error"`
}

// Маппинг domain ошибок в HTTP ошибки
var ErrorMapping = map[error]HTTPError{
	ErrPRNotFound:            {Code: "RETRY_LATER", Message: "pull request is not recorded yet"},
	ErrReviewNotFound:        {Code: "RETRY_LATER", Message: "review is not recorded yet"},
	ErrReviewCommentNotFound: {Code: "RETRY_LATER", Message: "review comment is not recorded yet"},
	ErrUnknownEventType:      {Code: "UNKNOWN_EVENT", Message: "event type is not supported"},
	ErrInvalidPayload:        {Code: "INVALID_PAYLOAD", Message: "event payload cannot be decoded"},
	ErrPrecondition:          {Code: "PRECONDITION_FAILED", Message: "event violates the source contract"},
}

// ToHTTPError преобразует domain ошибку в HTTP ошибку
func ToHTTPError(err error) (HTTPError, bool) {
	for target, httpErr := range ErrorMapping {
		if errors.Is(err, target) {
			return httpErr, true
		}
	}
	return HTTPError{}, false
}
