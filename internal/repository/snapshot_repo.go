package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pr-review-analytics/internal/database"
	"pr-review-analytics/internal/domain"
)

const (
	snapshotColumns = `pull_request_id, total_changes, changed_files, avg_changes_per_file,
		commit_count, commits_per_file, commits_per_change,
		added_count, modified_count, removed_count, renamed_count,
		added_ratio, modified_ratio, removed_ratio, renamed_ratio`

	selectSnapshotQuery = `SELECT ` + snapshotColumns + ` FROM opened_snapshots WHERE pull_request_id = $1`
	snapshotExistsQuery = `SELECT EXISTS(SELECT 1 FROM opened_snapshots WHERE pull_request_id = $1)`
	insertSnapshotQuery = `
		INSERT INTO opened_snapshots (` + snapshotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (pull_request_id) DO NOTHING`
)

// SnapshotRepository реализует хранение метрик открытия в PostgreSQL.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository создает новый экземпляр SnapshotRepository.
func NewSnapshotRepository(db *sql.DB) domain.SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// FindByPRID возвращает снимок или nil.
func (r *SnapshotRepository) FindByPRID(ctx context.Context, prID int64) (*domain.OpenedSnapshot, error) {
	q := database.QuerierFrom(ctx, r.db)

	var s domain.OpenedSnapshot
	err := q.QueryRowContext(ctx, selectSnapshotQuery, prID).Scan(
		&s.Summary.PullRequestID, &s.Summary.TotalChanges, &s.Summary.ChangedFiles, &s.Summary.AvgChangesPerFile,
		&s.Density.CommitCount, &s.Density.CommitsPerFile, &s.Density.CommitsPerChange,
		&s.Diversity.AddedCount, &s.Diversity.ModifiedCount, &s.Diversity.RemovedCount, &s.Diversity.RenamedCount,
		&s.Diversity.AddedRatio, &s.Diversity.ModifiedRatio, &s.Diversity.RemovedRatio, &s.Diversity.RenamedRatio,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get opened snapshot: %w", err)
	}
	s.Density.PullRequestID = s.Summary.PullRequestID
	s.Diversity.PullRequestID = s.Summary.PullRequestID
	return &s, nil
}

// ExistsByPRID проверяет наличие снимка.
func (r *SnapshotRepository) ExistsByPRID(ctx context.Context, prID int64) (bool, error) {
	return exists(ctx, database.QuerierFrom(ctx, r.db), snapshotExistsQuery, prID)
}

// Save записывает снимок один раз. Возвращает false, если снимок уже был.
func (r *SnapshotRepository) Save(ctx context.Context, s *domain.OpenedSnapshot) (bool, error) {
	q := database.QuerierFrom(ctx, r.db)

	res, err := q.ExecContext(ctx, insertSnapshotQuery,
		s.Summary.PullRequestID, s.Summary.TotalChanges, s.Summary.ChangedFiles, s.Summary.AvgChangesPerFile,
		s.Density.CommitCount, s.Density.CommitsPerFile, s.Density.CommitsPerChange,
		s.Diversity.AddedCount, s.Diversity.ModifiedCount, s.Diversity.RemovedCount, s.Diversity.RenamedCount,
		s.Diversity.AddedRatio, s.Diversity.ModifiedRatio, s.Diversity.RemovedRatio, s.Diversity.RenamedRatio,
	)
	if err != nil {
		return false, fmt.Errorf("failed to save opened snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to save opened snapshot: %w", err)
	}
	return n > 0, nil
}
