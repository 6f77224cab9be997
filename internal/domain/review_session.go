package domain

import (
	"context"
	"time"
)

// ReviewSession — активность одного ревьювера в одном пул-реквесте.
type ReviewSession struct {
	PullRequestID   int64
	Reviewer        string
	FirstActivityAt time.Time
	LastActivityAt  time.Time
	SessionDuration Duration
	ReviewCount     int
	CommentCount    int
}

// ReviewSessionRepository определяет контракт хранилища сессий ревью.
// Find возвращает nil без ошибки, если строки нет.
type ReviewSessionRepository interface {
	Find(ctx context.Context, prID int64, reviewer string) (*ReviewSession, error)
	Exists(ctx context.Context, prID int64, reviewer string) (bool, error)
	ListByPRID(ctx context.Context, prID int64) ([]*ReviewSession, error)
	Save(ctx context.Context, s *ReviewSession) error
}

// NewReviewSession открывает сессию по первому ревью.
func NewReviewSession(prID int64, reviewer string, firstActivityAt time.Time) (ReviewSession, error) {
	if err := validateSessionKey(prID, reviewer, firstActivityAt); err != nil {
		return ReviewSession{}, err
	}
	return ReviewSession{
		PullRequestID:   prID,
		Reviewer:        reviewer,
		FirstActivityAt: firstActivityAt,
		LastActivityAt:  firstActivityAt,
		SessionDuration: ZeroDuration(),
		ReviewCount:     1,
		CommentCount:    0,
	}, nil
}

// NewReviewSessionWithComment открывает сессию по комментарию, пришедшему раньше ревью.
func NewReviewSessionWithComment(prID int64, reviewer string, firstActivityAt time.Time, initialCommentCount int) (ReviewSession, error) {
	if err := validateSessionKey(prID, reviewer, firstActivityAt); err != nil {
		return ReviewSession{}, err
	}
	if initialCommentCount < 0 {
		return ReviewSession{}, &PreconditionError{Field: "initialCommentCount", Reason: "must not be negative"}
	}
	return ReviewSession{
		PullRequestID:   prID,
		Reviewer:        reviewer,
		FirstActivityAt: firstActivityAt,
		LastActivityAt:  firstActivityAt,
		SessionDuration: ZeroDuration(),
		ReviewCount:     0,
		CommentCount:    initialCommentCount,
	}, nil
}

// UpdateOnReview учитывает очередное ревью. Счетчики растут всегда,
// время активности сдвигается только вперед.
func (s ReviewSession) UpdateOnReview(reviewedAt time.Time, newCommentCount int) (ReviewSession, error) {
	if reviewedAt.IsZero() {
		return s, ErrInvalidTimestamp
	}
	if newCommentCount < 0 {
		return s, &PreconditionError{Field: "newCommentCount", Reason: "must not be negative"}
	}
	s.ReviewCount++
	s.CommentCount += newCommentCount
	return s.advance(reviewedAt)
}

// UpdateOnComment учитывает один новый комментарий.
func (s ReviewSession) UpdateOnComment(commentedAt time.Time) (ReviewSession, error) {
	if commentedAt.IsZero() {
		return s, ErrInvalidTimestamp
	}
	s.CommentCount++
	return s.advance(commentedAt)
}

func (s ReviewSession) advance(at time.Time) (ReviewSession, error) {
	if !at.After(s.LastActivityAt) {
		return s, nil
	}
	d, err := DurationBetween(s.FirstActivityAt, at)
	if err != nil {
		return s, err
	}
	s.LastActivityAt = at
	s.SessionDuration = d
	return s, nil
}

func (s ReviewSession) IsSingleActivity() bool {
	return s.SessionDuration.IsZero()
}

func (s ReviewSession) TotalActivities() int {
	return s.ReviewCount + s.CommentCount
}

func (s ReviewSession) IsActiveReviewer() bool {
	return s.ReviewCount > 0
}

func validateSessionKey(prID int64, reviewer string, at time.Time) error {
	if prID <= 0 {
		return ErrInvalidPRID
	}
	if reviewer == "" {
		return ErrInvalidReviewer
	}
	if at.IsZero() {
		return ErrInvalidTimestamp
	}
	return nil
}
