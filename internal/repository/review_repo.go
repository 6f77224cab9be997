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
	reviewColumns = `review_id, pull_request_id, reviewer, state, comment_count, submitted_at`

	insertReviewQuery = `
		INSERT INTO reviews (review_id, pull_request_id, reviewer, state, comment_count, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (review_id) DO NOTHING
		RETURNING ` + reviewColumns
	selectReviewQuery         = `SELECT ` + reviewColumns + ` FROM reviews WHERE review_id = $1`
	countReviewsQuery         = `SELECT COUNT(*) FROM reviews WHERE pull_request_id = $1`
	sumReviewCommentsQuery    = `SELECT COALESCE(SUM(comment_count), 0) FROM reviews WHERE pull_request_id = $1`
	firstReviewSubmittedQuery = `SELECT MIN(submitted_at) FROM reviews WHERE pull_request_id = $1`
)

// ReviewRepository реализует хранение ревью в PostgreSQL.
type ReviewRepository struct {
	db *sql.DB
}

// NewReviewRepository создает новый экземпляр ReviewRepository.
func NewReviewRepository(db *sql.DB) domain.ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create записывает ревью или возвращает уже записанное при повторной доставке.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (*domain.Review, bool, error) {
	q := database.QuerierFrom(ctx, r.db)

	created, err := scanReview(q.QueryRowContext(ctx, insertReviewQuery,
		review.ID, review.PullRequestID, review.Reviewer, string(review.State), review.CommentCount, review.SubmittedAt,
	))
	switch {
	case err == nil:
		return created, true, nil
	case errors.Is(err, sql.ErrNoRows), database.IsUniqueViolation(err):
		existing, err := r.GetByID(ctx, review.ID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	default:
		return nil, false, fmt.Errorf("failed to create review: %w", err)
	}
}

// GetByID возвращает ревью по ID.
func (r *ReviewRepository) GetByID(ctx context.Context, reviewID int64) (*domain.Review, error) {
	q := database.QuerierFrom(ctx, r.db)

	review, err := scanReview(q.QueryRowContext(ctx, selectReviewQuery, reviewID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

// CountByPR возвращает количество ревью пул-реквеста.
func (r *ReviewRepository) CountByPR(ctx context.Context, prID int64) (int, error) {
	q := database.QuerierFrom(ctx, r.db)

	var count int
	if err := q.QueryRowContext(ctx, countReviewsQuery, prID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}

// SumCommentsByPR возвращает суммарное число комментариев во всех ревью.
func (r *ReviewRepository) SumCommentsByPR(ctx context.Context, prID int64) (int, error) {
	q := database.QuerierFrom(ctx, r.db)

	var sum int
	if err := q.QueryRowContext(ctx, sumReviewCommentsQuery, prID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum review comments: %w", err)
	}
	return sum, nil
}

// FirstSubmittedAt возвращает время самого раннего ревью или nil.
func (r *ReviewRepository) FirstSubmittedAt(ctx context.Context, prID int64) (*time.Time, error) {
	q := database.QuerierFrom(ctx, r.db)

	var first sql.NullTime
	if err := q.QueryRowContext(ctx, firstReviewSubmittedQuery, prID).Scan(&first); err != nil {
		return nil, fmt.Errorf("failed to get first review time: %w", err)
	}
	return fromNullTime(first), nil
}

func scanReview(row rowScanner) (*domain.Review, error) {
	var review domain.Review
	err := row.Scan(&review.ID, &review.PullRequestID, &review.Reviewer, &review.State,
		&review.CommentCount, &review.SubmittedAt)
	if err != nil {
		return nil, err
	}
	review.SubmittedAt = review.SubmittedAt.UTC()
	return &review, nil
}
