package domain

import "context"

// HandleResult — итог обработки одной доставки вебхука.
type HandleResult struct {
	EventType EventType
	Duplicate bool
}

// EventUseCase маршрутизирует событие по выводящим компонентам в одной транзакции.
type EventUseCase interface {
	Handle(ctx context.Context, deliveryID string, event Event) (HandleResult, error)
}

// AnalyticsUseCase определяет чтение производных метрик пул-реквеста.
type AnalyticsUseCase interface {
	GetPullRequestAnalytics(ctx context.Context, prID int64) (*PullRequestAnalytics, error)
}

// TxManager выполняет fn в транзакции, переданной через контекст.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
