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
	selectResponseTimeQuery = `
		SELECT pull_request_id, last_changes_requested_at, first_commit_after_changes_at,
		       first_approve_after_changes_at, response_after_review_minutes,
		       changes_resolution_minutes, changes_requested_count
		FROM review_response_times
		WHERE pull_request_id = $1`
	responseTimeExistsQuery = `SELECT EXISTS(SELECT 1 FROM review_response_times WHERE pull_request_id = $1)`
	upsertResponseTimeQuery = `
		INSERT INTO review_response_times (
			pull_request_id, last_changes_requested_at, first_commit_after_changes_at,
			first_approve_after_changes_at, response_after_review_minutes,
			changes_resolution_minutes, changes_requested_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (pull_request_id) DO UPDATE SET
			last_changes_requested_at      = EXCLUDED.last_changes_requested_at,
			first_commit_after_changes_at  = EXCLUDED.first_commit_after_changes_at,
			first_approve_after_changes_at = EXCLUDED.first_approve_after_changes_at,
			response_after_review_minutes  = EXCLUDED.response_after_review_minutes,
			changes_resolution_minutes     = EXCLUDED.changes_resolution_minutes,
			changes_requested_count        = EXCLUDED.changes_requested_count`
)

// ResponseTimeRepository реализует хранение времени реакции в PostgreSQL.
type ResponseTimeRepository struct {
	db *sql.DB
}

// NewResponseTimeRepository создает новый экземпляр ResponseTimeRepository.
func NewResponseTimeRepository(db *sql.DB) domain.ResponseTimeRepository {
	return &ResponseTimeRepository{db: db}
}

// FindByPRID возвращает строку времени реакции или nil.
func (r *ResponseTimeRepository) FindByPRID(ctx context.Context, prID int64) (*domain.ReviewResponseTime, error) {
	q := database.QuerierFrom(ctx, r.db)

	var (
		rt                            domain.ReviewResponseTime
		requested, commit, approve    sql.NullTime
		responseMinutes, resolutionMs sql.NullInt64
	)
	err := q.QueryRowContext(ctx, selectResponseTimeQuery, prID).Scan(
		&rt.PullRequestID, &requested, &commit, &approve, &responseMinutes, &resolutionMs, &rt.ChangesRequestedCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get response time: %w", err)
	}

	rt.LastChangesRequestedAt = fromNullTime(requested)
	rt.FirstCommitAfterChangesAt = fromNullTime(commit)
	rt.FirstApproveAfterChangesAt = fromNullTime(approve)
	if rt.ResponseAfterReview, err = fromNullMinutes("response_after_review_minutes", responseMinutes); err != nil {
		return nil, err
	}
	if rt.ChangesResolution, err = fromNullMinutes("changes_resolution_minutes", resolutionMs); err != nil {
		return nil, err
	}
	return &rt, nil
}

// ExistsByPRID проверяет наличие строки.
func (r *ResponseTimeRepository) ExistsByPRID(ctx context.Context, prID int64) (bool, error) {
	return exists(ctx, database.QuerierFrom(ctx, r.db), responseTimeExistsQuery, prID)
}

// Save заменяет строку целиком.
func (r *ResponseTimeRepository) Save(ctx context.Context, rt *domain.ReviewResponseTime) error {
	q := database.QuerierFrom(ctx, r.db)

	_, err := q.ExecContext(ctx, upsertResponseTimeQuery,
		rt.PullRequestID, toNullTime(rt.LastChangesRequestedAt), toNullTime(rt.FirstCommitAfterChangesAt),
		toNullTime(rt.FirstApproveAfterChangesAt), toNullMinutes(rt.ResponseAfterReview),
		toNullMinutes(rt.ChangesResolution), rt.ChangesRequestedCount,
	)
	if err != nil {
		return fmt.Errorf("failed to save response time: %w", err)
	}
	return nil
}
