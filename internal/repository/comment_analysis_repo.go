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
	analysisColumns = `review_comment_id, comment_length, line_count, mention_count, has_code, has_url`

	selectAnalysisQuery = `SELECT ` + analysisColumns + ` FROM comment_analyses WHERE review_comment_id = $1`
	listAnalysesQuery   = `
		SELECT a.review_comment_id, a.comment_length, a.line_count, a.mention_count, a.has_code, a.has_url
		FROM comment_analyses a
		JOIN review_comments c ON c.review_comment_id = a.review_comment_id
		WHERE c.pull_request_id = $1 AND c.deleted_at IS NULL
		ORDER BY a.review_comment_id`
	analysisExistsQuery = `SELECT EXISTS(SELECT 1 FROM comment_analyses WHERE review_comment_id = $1)`
	upsertAnalysisQuery = `
		INSERT INTO comment_analyses (` + analysisColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (review_comment_id) DO UPDATE SET
			comment_length = EXCLUDED.comment_length,
			line_count     = EXCLUDED.line_count,
			mention_count  = EXCLUDED.mention_count,
			has_code       = EXCLUDED.has_code,
			has_url        = EXCLUDED.has_url`
	deleteAnalysisQuery = `DELETE FROM comment_analyses WHERE review_comment_id = $1`
)

// CommentAnalysisRepository реализует хранение анализа комментариев в PostgreSQL.
type CommentAnalysisRepository struct {
	db *sql.DB
}

// NewCommentAnalysisRepository создает новый экземпляр CommentAnalysisRepository.
func NewCommentAnalysisRepository(db *sql.DB) domain.CommentAnalysisRepository {
	return &CommentAnalysisRepository{db: db}
}

// FindByCommentID возвращает анализ комментария или nil.
func (r *CommentAnalysisRepository) FindByCommentID(ctx context.Context, commentID int64) (*domain.CommentAnalysis, error) {
	q := database.QuerierFrom(ctx, r.db)

	a, err := scanAnalysis(q.QueryRowContext(ctx, selectAnalysisQuery, commentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get comment analysis: %w", err)
	}
	return a, nil
}

// ExistsByCommentID проверяет наличие анализа.
func (r *CommentAnalysisRepository) ExistsByCommentID(ctx context.Context, commentID int64) (bool, error) {
	return exists(ctx, database.QuerierFrom(ctx, r.db), analysisExistsQuery, commentID)
}

// ListByPRID возвращает анализы неудаленных комментариев пул-реквеста.
func (r *CommentAnalysisRepository) ListByPRID(ctx context.Context, prID int64) ([]*domain.CommentAnalysis, error) {
	q := database.QuerierFrom(ctx, r.db)

	rows, err := q.QueryContext(ctx, listAnalysesQuery, prID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comment analyses: %w", err)
	}
	defer rows.Close()

	analyses := make([]*domain.CommentAnalysis, 0)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment analysis: %w", err)
		}
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return analyses, nil
}

// Save заменяет анализ целиком.
func (r *CommentAnalysisRepository) Save(ctx context.Context, a *domain.CommentAnalysis) error {
	q := database.QuerierFrom(ctx, r.db)

	_, err := q.ExecContext(ctx, upsertAnalysisQuery,
		a.ReviewCommentID, a.CommentLength, a.LineCount, a.MentionCount, a.HasCode, a.HasURL,
	)
	if err != nil {
		return fmt.Errorf("failed to save comment analysis: %w", err)
	}
	return nil
}

// Delete удаляет анализ; отсутствие строки не считается ошибкой.
func (r *CommentAnalysisRepository) Delete(ctx context.Context, commentID int64) error {
	q := database.QuerierFrom(ctx, r.db)

	if _, err := q.ExecContext(ctx, deleteAnalysisQuery, commentID); err != nil {
		return fmt.Errorf("failed to delete comment analysis: %w", err)
	}
	return nil
}

func scanAnalysis(row rowScanner) (*domain.CommentAnalysis, error) {
	var a domain.CommentAnalysis
	if err := row.Scan(&a.ReviewCommentID, &a.CommentLength, &a.LineCount, &a.MentionCount, &a.HasCode, &a.HasURL); err != nil {
		return nil, err
	}
	return &a, nil
}
