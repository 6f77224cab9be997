package usecase

import (
	"context"

	"pr-review-analytics/internal/domain"
)

// ResponseTimeDeriver ведет циклы запроса изменений.
type ResponseTimeDeriver struct {
	responseTimes domain.ResponseTimeRepository
}

// NewResponseTimeDeriver создает новый экземпляр ResponseTimeDeriver.
func NewResponseTimeDeriver(responseTimes domain.ResponseTimeRepository) *ResponseTimeDeriver {
	return &ResponseTimeDeriver{responseTimes: responseTimes}
}

// OnReview открывает цикл на CHANGES_REQUESTED и закрывает его первым аппрувом.
func (d *ResponseTimeDeriver) OnReview(ctx context.Context, review *domain.Review) error {
	switch review.State {
	case domain.ReviewChangesRequested:
		return d.onChangesRequested(ctx, review)
	case domain.ReviewApproved:
		return d.onApprove(ctx, review)
	default:
		return nil
	}
}

func (d *ResponseTimeDeriver) onChangesRequested(ctx context.Context, review *domain.Review) error {
	prior, err := d.responseTimes.FindByPRID(ctx, review.PullRequestID)
	if err != nil {
		return err
	}

	var next domain.ReviewResponseTime
	if prior == nil {
		next, err = domain.CreateResponseTimeOnChangesRequested(review.PullRequestID, review.SubmittedAt)
	} else {
		next, err = prior.UpdateOnChangesRequested(review.SubmittedAt)
	}
	if err != nil {
		return err
	}

	return d.responseTimes.Save(ctx, &next)
}

func (d *ResponseTimeDeriver) onApprove(ctx context.Context, review *domain.Review) error {
	prior, err := d.responseTimes.FindByPRID(ctx, review.PullRequestID)
	if err != nil || prior == nil {
		return err
	}
	if !prior.HasChangesRequested() || prior.IsResolved() {
		return nil
	}

	next, err := prior.UpdateOnApproveAfterChanges(review.SubmittedAt)
	if err != nil {
		return err
	}
	return d.responseTimes.Save(ctx, &next)
}

// OnCommit фиксирует первый коммит после запроса изменений.
func (d *ResponseTimeDeriver) OnCommit(ctx context.Context, commit *domain.Commit) error {
	prior, err := d.responseTimes.FindByPRID(ctx, commit.PullRequestID)
	if err != nil || prior == nil {
		return err
	}
	if !prior.HasChangesRequested() || prior.HasResponded() {
		return nil
	}

	next, err := prior.UpdateOnCommitAfterChanges(commit.CommittedAt)
	if err != nil {
		return err
	}
	return d.responseTimes.Save(ctx, &next)
}
