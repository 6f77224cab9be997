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
	selectBottleneckQuery = `
		SELECT pull_request_id, review_wait_minutes, review_progress_minutes, merge_wait_minutes,
		       first_review_at, last_review_at, last_approve_at
		FROM pull_request_bottlenecks
		WHERE pull_request_id = $1`
	bottleneckExistsQuery = `SELECT EXISTS(SELECT 1 FROM pull_request_bottlenecks WHERE pull_request_id = $1)`
	upsertBottleneckQuery = `
		INSERT INTO pull_request_bottlenecks (
			pull_request_id, review_wait_minutes, review_progress_minutes, merge_wait_minutes,
			first_review_at, last_review_at, last_approve_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (pull_request_id) DO UPDATE SET
			review_wait_minutes     = EXCLUDED.review_wait_minutes,
			review_progress_minutes = EXCLUDED.review_progress_minutes,
			merge_wait_minutes      = EXCLUDED.merge_wait_minutes,
			first_review_at         = EXCLUDED.first_review_at,
			last_review_at          = EXCLUDED.last_review_at,
			last_approve_at         = EXCLUDED.last_approve_at`
)

// BottleneckRepository реализует хранение узких мест PR в PostgreSQL.
type BottleneckRepository struct {
	db *sql.DB
}

// NewBottleneckRepository создает новый экземпляр BottleneckRepository.
func NewBottleneckRepository(db *sql.DB) domain.BottleneckRepository {
	return &BottleneckRepository{db: db}
}

// FindByPRID возвращает строку узких мест или nil.
func (r *BottleneckRepository) FindByPRID(ctx context.Context, prID int64) (*domain.PullRequestBottleneck, error) {
	q := database.QuerierFrom(ctx, r.db)

	var (
		b                                  domain.PullRequestBottleneck
		reviewWait, reviewProgress, merged sql.NullInt64
		firstReview, lastReview, approve   sql.NullTime
	)
	err := q.QueryRowContext(ctx, selectBottleneckQuery, prID).Scan(
		&b.PullRequestID, &reviewWait, &reviewProgress, &merged, &firstReview, &lastReview, &approve,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bottleneck: %w", err)
	}

	if b.ReviewWait, err = fromNullMinutes("review_wait_minutes", reviewWait); err != nil {
		return nil, err
	}
	if b.ReviewProgress, err = fromNullMinutes("review_progress_minutes", reviewProgress); err != nil {
		return nil, err
	}
	if b.MergeWait, err = fromNullMinutes("merge_wait_minutes", merged); err != nil {
		return nil, err
	}
	b.FirstReviewAt = fromNullTime(firstReview)
	b.LastReviewAt = fromNullTime(lastReview)
	b.LastApproveAt = fromNullTime(approve)
	return &b, nil
}

// ExistsByPRID проверяет наличие строки.
func (r *BottleneckRepository) ExistsByPRID(ctx context.Context, prID int64) (bool, error) {
	return exists(ctx, database.QuerierFrom(ctx, r.db), bottleneckExistsQuery, prID)
}

// Save заменяет строку целиком.
func (r *BottleneckRepository) Save(ctx context.Context, b *domain.PullRequestBottleneck) error {
	q := database.QuerierFrom(ctx, r.db)

	_, err := q.ExecContext(ctx, upsertBottleneckQuery,
		b.PullRequestID, toNullMinutes(b.ReviewWait), toNullMinutes(b.ReviewProgress), toNullMinutes(b.MergeWait),
		toNullTime(b.FirstReviewAt), toNullTime(b.LastReviewAt), toNullTime(b.LastApproveAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save bottleneck: %w", err)
	}
	return nil
}
