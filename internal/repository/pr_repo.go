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
	prColumns = `pull_request_id, author, state, additions, deletions, changed_files, commit_count, created_at, closed_at, merged_at`

	insertPRQuery = `
		INSERT INTO pull_requests (pull_request_id, author, state, additions, deletions, changed_files, commit_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (pull_request_id) DO NOTHING
		RETURNING ` + prColumns
	selectPRQuery          = `SELECT ` + prColumns + ` FROM pull_requests WHERE pull_request_id = $1`
	selectPRForUpdateQuery = selectPRQuery + ` FOR UPDATE`
	updatePRStateQuery     = `
		UPDATE pull_requests
		SET state            = $2::text,
		    closed_at        = CASE WHEN $2::text IN ('CLOSED', 'MERGED') THEN $3::timestamptz END,
		    merged_at        = CASE WHEN $2::text = 'MERGED' THEN $3::timestamptz END,
		    state_changed_at = $3::timestamptz
		WHERE pull_request_id = $1
		  AND (state_changed_at IS NULL
		       OR state_changed_at < $3::timestamptz
		       OR (state_changed_at = $3::timestamptz AND $2::text = 'MERGED' AND state <> 'MERGED'))`
	updatePRChangesQuery = `
		UPDATE pull_requests SET additions = $2, deletions = $3, changed_files = $4
		WHERE pull_request_id = $1`
	reviewerExistsQuery = `SELECT EXISTS(SELECT 1 FROM requested_reviewers WHERE pull_request_id = $1 AND reviewer = $2)`
	insertReviewerQuery = `INSERT INTO requested_reviewers (pull_request_id, reviewer, requested_at) VALUES ($1, $2, $3)`
	deleteReviewerQuery = `DELETE FROM requested_reviewers WHERE pull_request_id = $1 AND reviewer = $2`
	countReviewersQuery = `SELECT COUNT(*) FROM requested_reviewers WHERE pull_request_id = $1`
)

// PRRepository реализует хранение метаданных пул-реквестов в PostgreSQL.
type PRRepository struct {
	db *sql.DB
}

// NewPRRepository создает новый экземпляр PRRepository.
func NewPRRepository(db *sql.DB) domain.PRRepository {
	return &PRRepository{db: db}
}

// Create записывает пул-реквест или возвращает уже записанный (create-or-find).
func (r *PRRepository) Create(ctx context.Context, pr *domain.PullRequest) (*domain.PullRequest, bool, error) {
	q := database.QuerierFrom(ctx, r.db)

	created, err := scanPR(q.QueryRowContext(ctx, insertPRQuery,
		pr.ID, pr.Author, string(pr.State), pr.Additions, pr.Deletions, pr.ChangedFiles, pr.CommitCount, pr.CreatedAt,
	))
	switch {
	case err == nil:
		return created, true, nil
	case errors.Is(err, sql.ErrNoRows), database.IsUniqueViolation(err):
		existing, err := r.GetByID(ctx, pr.ID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	default:
		return nil, false, fmt.Errorf("failed to create PR: %w", err)
	}
}

// GetByID возвращает PR по ID.
func (r *PRRepository) GetByID(ctx context.Context, prID int64) (*domain.PullRequest, error) {
	return r.get(ctx, selectPRQuery, prID)
}

// LockByID возвращает PR, блокируя его строку до конца транзакции.
// Все производные строки пул-реквеста меняются только под этой блокировкой.
func (r *PRRepository) LockByID(ctx context.Context, prID int64) (*domain.PullRequest, error) {
	return r.get(ctx, selectPRForUpdateQuery, prID)
}

func (r *PRRepository) get(ctx context.Context, query string, prID int64) (*domain.PullRequest, error) {
	q := database.QuerierFrom(ctx, r.db)

	pr, err := scanPR(q.QueryRowContext(ctx, query, prID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPRNotFound
		}
		return nil, fmt.Errorf("failed to get PR: %w", err)
	}
	return pr, nil
}

// UpdateState меняет состояние PR; более старое изменение не перетирает новое.
func (r *PRRepository) UpdateState(ctx context.Context, prID int64, state domain.PRState, changedAt time.Time) error {
	q := database.QuerierFrom(ctx, r.db)

	if _, err := q.ExecContext(ctx, updatePRStateQuery, prID, string(state), changedAt); err != nil {
		return fmt.Errorf("failed to update PR state: %w", err)
	}
	return nil
}

// UpdateChangeStats заменяет итоговую статистику изменений PR.
func (r *PRRepository) UpdateChangeStats(ctx context.Context, prID int64, stats domain.ChangeStats) error {
	q := database.QuerierFrom(ctx, r.db)

	res, err := q.ExecContext(ctx, updatePRChangesQuery, prID, stats.Additions, stats.Deletions, stats.ChangedFiles)
	if err != nil {
		return fmt.Errorf("failed to update PR changes: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrPRNotFound
	}
	return nil
}

// AddReviewer добавляет запрошенного ревьювера. Строка PR блокируется до проверки
// существования, поэтому две параллельные доставки не добавят ревьювера дважды.
func (r *PRRepository) AddReviewer(ctx context.Context, prID int64, reviewer string, requestedAt time.Time) (bool, error) {
	q := database.QuerierFrom(ctx, r.db)

	// 1. Блокируем родительский PR
	if _, err := r.LockByID(ctx, prID); err != nil {
		return false, err
	}

	// 2. Проверяем, что ревьювер еще не назначен
	var exists bool
	if err := q.QueryRowContext(ctx, reviewerExistsQuery, prID, reviewer).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check reviewer: %w", err)
	}
	if exists {
		return false, nil
	}

	// 3. Добавляем ревьювера
	if _, err := q.ExecContext(ctx, insertReviewerQuery, prID, reviewer, requestedAt); err != nil {
		if database.IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to add reviewer %s: %w", reviewer, err)
	}
	return true, nil
}

// RemoveReviewer снимает запрос ревью.
func (r *PRRepository) RemoveReviewer(ctx context.Context, prID int64, reviewer string) (bool, error) {
	q := database.QuerierFrom(ctx, r.db)

	res, err := q.ExecContext(ctx, deleteReviewerQuery, prID, reviewer)
	if err != nil {
		return false, fmt.Errorf("failed to remove reviewer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to remove reviewer: %w", err)
	}
	return n > 0, nil
}

// CountReviewers возвращает количество запрошенных ревьюверов.
func (r *PRRepository) CountReviewers(ctx context.Context, prID int64) (int, error) {
	q := database.QuerierFrom(ctx, r.db)

	var count int
	if err := q.QueryRowContext(ctx, countReviewersQuery, prID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reviewers: %w", err)
	}
	return count, nil
}

func scanPR(row rowScanner) (*domain.PullRequest, error) {
	var (
		pr       domain.PullRequest
		closedAt sql.NullTime
		mergedAt sql.NullTime
	)
	err := row.Scan(&pr.ID, &pr.Author, &pr.State, &pr.Additions, &pr.Deletions,
		&pr.ChangedFiles, &pr.CommitCount, &pr.CreatedAt, &closedAt, &mergedAt)
	if err != nil {
		return nil, err
	}
	pr.CreatedAt = pr.CreatedAt.UTC()
	pr.ClosedAt = fromNullTime(closedAt)
	pr.MergedAt = fromNullTime(mergedAt)
	return &pr, nil
}
