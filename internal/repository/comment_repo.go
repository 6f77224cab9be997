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
	commentColumns = `review_comment_id, review_id, pull_request_id, reviewer, body, created_at, updated_at`

	insertCommentQuery = `
		INSERT INTO review_comments (review_comment_id, review_id, pull_request_id, reviewer, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (review_comment_id) DO NOTHING
		RETURNING ` + commentColumns
	selectCommentQuery = `SELECT ` + commentColumns + ` FROM review_comments WHERE review_comment_id = $1`
	updateCommentQuery = `
		UPDATE review_comments SET body = $2, updated_at = $3
		WHERE review_comment_id = $1 AND deleted_at IS NULL AND updated_at < $3`
	deleteCommentQuery = `
		UPDATE review_comments SET deleted_at = NOW()
		WHERE review_comment_id = $1 AND deleted_at IS NULL`
	commentExistsQuery = `SELECT EXISTS(SELECT 1 FROM review_comments WHERE review_comment_id = $1)`
)

// ReviewCommentRepository реализует хранение комментариев ревью в PostgreSQL.
type ReviewCommentRepository struct {
	db *sql.DB
}

// NewReviewCommentRepository создает новый экземпляр ReviewCommentRepository.
func NewReviewCommentRepository(db *sql.DB) domain.ReviewCommentRepository {
	return &ReviewCommentRepository{db: db}
}

// Create записывает комментарий или возвращает уже записанный (create-or-find).
func (r *ReviewCommentRepository) Create(ctx context.Context, c *domain.ReviewComment) (*domain.ReviewComment, bool, error) {
	q := database.QuerierFrom(ctx, r.db)

	created, err := scanComment(q.QueryRowContext(ctx, insertCommentQuery,
		c.ID, c.ReviewID, c.PullRequestID, c.Reviewer, toNullString(c.Body), c.CreatedAt, c.UpdatedAt,
	))
	switch {
	case err == nil:
		return created, true, nil
	case errors.Is(err, sql.ErrNoRows), database.IsUniqueViolation(err):
		existing, err := scanComment(q.QueryRowContext(ctx, selectCommentQuery, c.ID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, false, domain.ErrReviewCommentNotFound
			}
			return nil, false, fmt.Errorf("failed to get review comment: %w", err)
		}
		return existing, false, nil
	default:
		return nil, false, fmt.Errorf("failed to create review comment: %w", err)
	}
}

// UpdateBody заменяет текст комментария, если правка новее сохраненной.
// Возвращает false для устаревшей правки; ErrReviewCommentNotFound, если комментария нет.
func (r *ReviewCommentRepository) UpdateBody(ctx context.Context, commentID int64, body *string, updatedAt time.Time) (bool, error) {
	q := database.QuerierFrom(ctx, r.db)

	res, err := q.ExecContext(ctx, updateCommentQuery, commentID, toNullString(body), updatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to update review comment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to update review comment: %w", err)
	}
	if n > 0 {
		return true, nil
	}
	return false, r.ensureExists(ctx, commentID)
}

// Delete помечает комментарий удаленным.
func (r *ReviewCommentRepository) Delete(ctx context.Context, commentID int64) (bool, error) {
	q := database.QuerierFrom(ctx, r.db)

	res, err := q.ExecContext(ctx, deleteCommentQuery, commentID)
	if err != nil {
		return false, fmt.Errorf("failed to delete review comment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete review comment: %w", err)
	}
	if n > 0 {
		return true, nil
	}
	return false, r.ensureExists(ctx, commentID)
}

func (r *ReviewCommentRepository) ensureExists(ctx context.Context, commentID int64) error {
	q := database.QuerierFrom(ctx, r.db)

	var exists bool
	if err := q.QueryRowContext(ctx, commentExistsQuery, commentID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check review comment: %w", err)
	}
	if !exists {
		return domain.ErrReviewCommentNotFound
	}
	return nil
}

func scanComment(row rowScanner) (*domain.ReviewComment, error) {
	var (
		c    domain.ReviewComment
		body sql.NullString
	)
	err := row.Scan(&c.ID, &c.ReviewID, &c.PullRequestID, &c.Reviewer, &body, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Body = fromNullString(body)
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}
