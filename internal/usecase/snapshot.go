package usecase

import (
	"context"

	"pr-review-analytics/internal/domain"
)

// SnapshotCalculator считает разовые метрики при открытии пул-реквеста.
type SnapshotCalculator struct {
	snapshots domain.SnapshotRepository
}

// NewSnapshotCalculator создает новый экземпляр SnapshotCalculator.
func NewSnapshotCalculator(snapshots domain.SnapshotRepository) *SnapshotCalculator {
	return &SnapshotCalculator{snapshots: snapshots}
}

// OnOpened сохраняет снимок, если его еще нет.
func (c *SnapshotCalculator) OnOpened(ctx context.Context, ev domain.PullRequestOpened) (bool, error) {
	snapshot := domain.CalculateOpenedSnapshot(ev)
	return c.snapshots.Save(ctx, &snapshot)
}
