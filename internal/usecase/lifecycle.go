package usecase

import (
	"context"

	"pr-review-analytics/internal/domain"
)

// LifecycleDeriver ведет строку жизненного цикла по событиям закрытия.
type LifecycleDeriver struct {
	lifecycles domain.LifecycleRepository
	reviews    domain.ReviewRepository
}

// NewLifecycleDeriver создает новый экземпляр LifecycleDeriver.
func NewLifecycleDeriver(lifecycles domain.LifecycleRepository, reviews domain.ReviewRepository) *LifecycleDeriver {
	return &LifecycleDeriver{
		lifecycles: lifecycles,
		reviews:    reviews,
	}
}

// OnStateChanged применяет смену состояния. Возвращает false, если строка не изменилась.
func (d *LifecycleDeriver) OnStateChanged(ctx context.Context, pr *domain.PullRequest, ev domain.PullRequestStateChanged) (bool, error) {
	if !ev.NewState.IsClosure() {
		return false, nil
	}

	prior, err := d.lifecycles.FindByPRID(ctx, pr.ID)
	if err != nil {
		return false, err
	}

	reviewCount, err := d.reviews.CountByPR(ctx, pr.ID)
	if err != nil {
		return false, err
	}

	next, changed, err := domain.DeriveLifecycle(prior, *pr, ev, reviewCount)
	if err != nil || !changed {
		return false, err
	}

	if err := d.lifecycles.Save(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}
