package usecase

import (
	"context"

	"pr-review-analytics/internal/domain"
)

// SessionAggregator ведет сессии ревьюверов.
type SessionAggregator struct {
	sessions domain.ReviewSessionRepository
}

// NewSessionAggregator создает новый экземпляр SessionAggregator.
func NewSessionAggregator(sessions domain.ReviewSessionRepository) *SessionAggregator {
	return &SessionAggregator{sessions: sessions}
}

// OnReview открывает сессию первым ревью или продлевает существующую.
func (a *SessionAggregator) OnReview(ctx context.Context, review *domain.Review) error {
	prior, err := a.sessions.Find(ctx, review.PullRequestID, review.Reviewer)
	if err != nil {
		return err
	}

	var next domain.ReviewSession
	if prior == nil {
		next, err = domain.NewReviewSession(review.PullRequestID, review.Reviewer, review.SubmittedAt)
	} else {
		next, err = prior.UpdateOnReview(review.SubmittedAt, review.CommentCount)
	}
	if err != nil {
		return err
	}

	return a.sessions.Save(ctx, &next)
}

// OnComment учитывает комментарий. Комментарий без сессии открывает ее с одним комментарием.
func (a *SessionAggregator) OnComment(ctx context.Context, comment *domain.ReviewComment) error {
	prior, err := a.sessions.Find(ctx, comment.PullRequestID, comment.Reviewer)
	if err != nil {
		return err
	}

	var next domain.ReviewSession
	if prior == nil {
		next, err = domain.NewReviewSessionWithComment(comment.PullRequestID, comment.Reviewer, comment.CreatedAt, 1)
	} else {
		next, err = prior.UpdateOnComment(comment.CreatedAt)
	}
	if err != nil {
		return err
	}

	return a.sessions.Save(ctx, &next)
}
