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
	selectActivityQuery = `
		SELECT pull_request_id, review_round_trips, total_comment_count, total_additions, total_deletions,
		       code_additions_after_review, code_deletions_after_review, additional_reviewer_count
		FROM review_activities
		WHERE pull_request_id = $1`
	activityExistsQuery = `SELECT EXISTS(SELECT 1 FROM review_activities WHERE pull_request_id = $1)`
	upsertActivityQuery = `
		INSERT INTO review_activities (
			pull_request_id, review_round_trips, total_comment_count, total_additions, total_deletions,
			code_additions_after_review, code_deletions_after_review, additional_reviewer_count, comment_density
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (pull_request_id) DO UPDATE SET
			review_round_trips          = EXCLUDED.review_round_trips,
			total_comment_count         = EXCLUDED.total_comment_count,
			total_additions             = EXCLUDED.total_additions,
			total_deletions             = EXCLUDED.total_deletions,
			code_additions_after_review = EXCLUDED.code_additions_after_review,
			code_deletions_after_review = EXCLUDED.code_deletions_after_review,
			additional_reviewer_count   = EXCLUDED.additional_reviewer_count,
			comment_density             = EXCLUDED.comment_density`
)

// ReviewActivityRepository реализует хранение активности ревью в PostgreSQL.
type ReviewActivityRepository struct {
	db *sql.DB
}

// NewReviewActivityRepository создает новый экземпляр ReviewActivityRepository.
func NewReviewActivityRepository(db *sql.DB) domain.ReviewActivityRepository {
	return &ReviewActivityRepository{db: db}
}

// FindByPRID возвращает строку активности или nil.
func (r *ReviewActivityRepository) FindByPRID(ctx context.Context, prID int64) (*domain.ReviewActivity, error) {
	q := database.QuerierFrom(ctx, r.db)

	var a domain.ReviewActivity
	err := q.QueryRowContext(ctx, selectActivityQuery, prID).Scan(
		&a.PullRequestID, &a.ReviewRoundTrips, &a.TotalCommentCount, &a.TotalAdditions, &a.TotalDeletions,
		&a.CodeAdditionsAfterReview, &a.CodeDeletionsAfterReview, &a.AdditionalReviewerCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get review activity: %w", err)
	}
	return &a, nil
}

// ExistsByPRID проверяет наличие строки.
func (r *ReviewActivityRepository) ExistsByPRID(ctx context.Context, prID int64) (bool, error) {
	return exists(ctx, database.QuerierFrom(ctx, r.db), activityExistsQuery, prID)
}

// Save заменяет строку целиком. Плотность комментариев хранится денормализованно для выборок.
func (r *ReviewActivityRepository) Save(ctx context.Context, a *domain.ReviewActivity) error {
	q := database.QuerierFrom(ctx, r.db)

	_, err := q.ExecContext(ctx, upsertActivityQuery,
		a.PullRequestID, a.ReviewRoundTrips, a.TotalCommentCount, a.TotalAdditions, a.TotalDeletions,
		a.CodeAdditionsAfterReview, a.CodeDeletionsAfterReview, a.AdditionalReviewerCount, a.CommentDensity(),
	)
	if err != nil {
		return fmt.Errorf("failed to save review activity: %w", err)
	}
	return nil
}
