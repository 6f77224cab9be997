package mocks

import (
	"context"

	"pr-review-analytics/internal/domain"

	"github.com/stretchr/testify/mock"
)

// TxManager выполняет fn сразу, без транзакции, и считает вызовы.
type TxManager struct {
	Calls int
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	return fn(ctx)
}

// EventUseCase — мок domain.EventUseCase.
type EventUseCase struct {
	mock.Mock
}

func (_m *EventUseCase) Handle(ctx context.Context, deliveryID string, event domain.Event) (domain.HandleResult, error) {
	ret := _m.Called(ctx, deliveryID, event)
	return get[domain.HandleResult](ret, 0), ret.Error(1)
}

// AnalyticsUseCase — мок domain.AnalyticsUseCase.
type AnalyticsUseCase struct {
	mock.Mock
}

func (_m *AnalyticsUseCase) GetPullRequestAnalytics(ctx context.Context, prID int64) (*domain.PullRequestAnalytics, error) {
	ret := _m.Called(ctx, prID)
	return get[*domain.PullRequestAnalytics](ret, 0), ret.Error(1)
}
