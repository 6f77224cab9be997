package usecase

import (
	"context"

	"pr-review-analytics/internal/domain"
)

// AnalyticsUseCase реализует чтение производных метрик пул-реквеста.
type AnalyticsUseCase struct {
	tx    domain.TxManager
	repos Repositories
}

// NewAnalyticsUseCase создает новый экземпляр AnalyticsUseCase.
func NewAnalyticsUseCase(tx domain.TxManager, repos Repositories) domain.AnalyticsUseCase {
	return &AnalyticsUseCase{
		tx:    tx,
		repos: repos,
	}
}

// GetPullRequestAnalytics возвращает все производные строки пул-реквеста из одной транзакции.
// Отсутствующие строки остаются nil.
func (uc *AnalyticsUseCase) GetPullRequestAnalytics(ctx context.Context, prID int64) (*domain.PullRequestAnalytics, error) {
	if prID <= 0 {
		return nil, domain.ErrInvalidPRID
	}

	var result *domain.PullRequestAnalytics
	err := uc.tx.Do(ctx, func(ctx context.Context) error {
		pr, err := uc.repos.PullRequests.GetByID(ctx, prID)
		if err != nil {
			return err
		}

		a := &domain.PullRequestAnalytics{PullRequest: pr}
		if a.Lifecycle, err = uc.repos.Lifecycles.FindByPRID(ctx, prID); err != nil {
			return err
		}
		if a.Bottleneck, err = uc.repos.Bottlenecks.FindByPRID(ctx, prID); err != nil {
			return err
		}
		if a.Sessions, err = uc.repos.Sessions.ListByPRID(ctx, prID); err != nil {
			return err
		}
		if a.ResponseTime, err = uc.repos.ResponseTimes.FindByPRID(ctx, prID); err != nil {
			return err
		}
		if a.Activity, err = uc.repos.Activities.FindByPRID(ctx, prID); err != nil {
			return err
		}
		if a.Comments, err = uc.repos.Analyses.ListByPRID(ctx, prID); err != nil {
			return err
		}
		if a.Snapshot, err = uc.repos.Snapshots.FindByPRID(ctx, prID); err != nil {
			return err
		}

		result = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
