package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pr-review-analytics/internal/database"
	"pr-review-analytics/internal/domain"
)

const (
	commitColumns = `sha, pull_request_id, additions, deletions, committed_at`

	insertCommitQuery = `
		INSERT INTO commits (sha, pull_request_id, additions, deletions, committed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (pull_request_id, sha) DO NOTHING
		RETURNING ` + commitColumns
	selectCommitQuery    = `SELECT ` + commitColumns + ` FROM commits WHERE pull_request_id = $1 AND sha = $2`
	sumChangesAfterQuery = `
		SELECT COALESCE(SUM(additions), 0), COALESCE(SUM(deletions), 0)
		FROM commits
		WHERE pull_request_id = $1 AND committed_at > $2`
)

// CommitRepository реализует хранение коммитов в PostgreSQL.
type CommitRepository struct {
	db *sql.DB
}

// NewCommitRepository создает новый экземпляр CommitRepository.
func NewCommitRepository(db *sql.DB) domain.CommitRepository {
	return &CommitRepository{db: db}
}

// Create записывает коммит или возвращает уже записанный при повторной доставке.
func (r *CommitRepository) Create(ctx context.Context, c *domain.Commit) (*domain.Commit, bool, error) {
	q := database.QuerierFrom(ctx, r.db)

	created, err := scanCommit(q.QueryRowContext(ctx, insertCommitQuery,
		c.SHA, c.PullRequestID, c.Additions, c.Deletions, c.CommittedAt,
	))
	switch {
	case err == nil:
		return created, true, nil
	case errors.Is(err, sql.ErrNoRows), database.IsUniqueViolation(err):
		existing, err := scanCommit(q.QueryRowContext(ctx, selectCommitQuery, c.PullRequestID, c.SHA))
		if err != nil {
			return nil, false, fmt.Errorf("failed to get commit: %w", err)
		}
		return existing, false, nil
	default:
		return nil, false, fmt.Errorf("failed to create commit: %w", err)
	}
}

// SumChangesAfter суммирует строки коммитов, сделанных строго после after.
func (r *CommitRepository) SumChangesAfter(ctx context.Context, prID int64, after time.Time) (domain.ChangeStats, error) {
	q := database.QuerierFrom(ctx, r.db)

	var stats domain.ChangeStats
	if err := q.QueryRowContext(ctx, sumChangesAfterQuery, prID, after).Scan(&stats.Additions, &stats.Deletions); err != nil {
		return domain.ChangeStats{}, fmt.Errorf("failed to sum commit changes: %w", err)
	}
	return stats, nil
}

func scanCommit(row rowScanner) (*domain.Commit, error) {
	var c domain.Commit
	if err := row.Scan(&c.SHA, &c.PullRequestID, &c.Additions, &c.Deletions, &c.CommittedAt); err != nil {
		return nil, err
	}
	c.CommittedAt = c.CommittedAt.UTC()
	return &c, nil
}
