package usecase

import (
	"context"
	"time"

	"pr-review-analytics/internal/domain"
)

// BottleneckDeriver ведет автомат фаз ревью пул-реквеста.
type BottleneckDeriver struct {
	bottlenecks domain.BottleneckRepository
}

// NewBottleneckDeriver создает новый экземпляр BottleneckDeriver.
func NewBottleneckDeriver(bottlenecks domain.BottleneckRepository) *BottleneckDeriver {
	return &BottleneckDeriver{bottlenecks: bottlenecks}
}

// OnReview учитывает новое ревью. Точка готовности к ревью — создание пул-реквеста.
func (d *BottleneckDeriver) OnReview(ctx context.Context, pr *domain.PullRequest, review *domain.Review) error {
	prior, err := d.bottlenecks.FindByPRID(ctx, pr.ID)
	if err != nil {
		return err
	}

	isApproval := review.State == domain.ReviewApproved

	var next domain.PullRequestBottleneck
	if prior == nil {
		next, err = domain.CreateBottleneckOnFirstReview(pr.ID, pr.CreatedAt, review.SubmittedAt)
		if err == nil && isApproval {
			next, err = next.UpdateOnNewReview(pr.CreatedAt, review.SubmittedAt, true)
		}
	} else {
		next, err = prior.UpdateOnNewReview(pr.CreatedAt, review.SubmittedAt, isApproval)
	}
	if err != nil {
		return err
	}

	return d.bottlenecks.Save(ctx, &next)
}

// OnMerge фиксирует ожидание слияния. Без строки узких мест ничего не делает.
func (d *BottleneckDeriver) OnMerge(ctx context.Context, prID int64, mergedAt time.Time) error {
	prior, err := d.bottlenecks.FindByPRID(ctx, prID)
	if err != nil || prior == nil {
		return err
	}

	next := prior.UpdateOnMerge(mergedAt)
	return d.bottlenecks.Save(ctx, &next)
}
