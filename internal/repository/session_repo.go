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
	sessionColumns = `pull_request_id, reviewer, first_activity_at, last_activity_at,
		session_duration_minutes, review_count, comment_count`

	selectSessionQuery = `SELECT ` + sessionColumns + `
		FROM review_sessions WHERE pull_request_id = $1 AND reviewer = $2`
	listSessionsQuery = `SELECT ` + sessionColumns + `
		FROM review_sessions WHERE pull_request_id = $1 ORDER BY first_activity_at, reviewer`
	sessionExistsQuery = `SELECT EXISTS(SELECT 1 FROM review_sessions WHERE pull_request_id = $1 AND reviewer = $2)`
	upsertSessionQuery = `
		INSERT INTO review_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (pull_request_id, reviewer) DO UPDATE SET
			first_activity_at        = EXCLUDED.first_activity_at,
			last_activity_at         = EXCLUDED.last_activity_at,
			session_duration_minutes = EXCLUDED.session_duration_minutes,
			review_count             = EXCLUDED.review_count,
			comment_count            = EXCLUDED.comment_count`
)

// ReviewSessionRepository реализует хранение сессий ревью в PostgreSQL.
type ReviewSessionRepository struct {
	db *sql.DB
}

// NewReviewSessionRepository создает новый экземпляр ReviewSessionRepository.
func NewReviewSessionRepository(db *sql.DB) domain.ReviewSessionRepository {
	return &ReviewSessionRepository{db: db}
}

// Find возвращает сессию ревьювера или nil.
func (r *ReviewSessionRepository) Find(ctx context.Context, prID int64, reviewer string) (*domain.ReviewSession, error) {
	q := database.QuerierFrom(ctx, r.db)

	s, err := scanSession(q.QueryRowContext(ctx, selectSessionQuery, prID, reviewer))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get review session: %w", err)
	}
	return s, nil
}

// Exists проверяет наличие сессии.
func (r *ReviewSessionRepository) Exists(ctx context.Context, prID int64, reviewer string) (bool, error) {
	return exists(ctx, database.QuerierFrom(ctx, r.db), sessionExistsQuery, prID, reviewer)
}

// ListByPRID возвращает все сессии пул-реквеста.
func (r *ReviewSessionRepository) ListByPRID(ctx context.Context, prID int64) ([]*domain.ReviewSession, error) {
	q := database.QuerierFrom(ctx, r.db)

	rows, err := q.QueryContext(ctx, listSessionsQuery, prID)
	if err != nil {
		return nil, fmt.Errorf("failed to list review sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*domain.ReviewSession, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Save заменяет строку целиком.
func (r *ReviewSessionRepository) Save(ctx context.Context, s *domain.ReviewSession) error {
	q := database.QuerierFrom(ctx, r.db)

	_, err := q.ExecContext(ctx, upsertSessionQuery,
		s.PullRequestID, s.Reviewer, s.FirstActivityAt, s.LastActivityAt,
		s.SessionDuration.Minutes(), s.ReviewCount, s.CommentCount,
	)
	if err != nil {
		return fmt.Errorf("failed to save review session: %w", err)
	}
	return nil
}

func scanSession(row rowScanner) (*domain.ReviewSession, error) {
	var (
		s       domain.ReviewSession
		minutes int64
	)
	err := row.Scan(&s.PullRequestID, &s.Reviewer, &s.FirstActivityAt, &s.LastActivityAt,
		&minutes, &s.ReviewCount, &s.CommentCount)
	if err != nil {
		return nil, err
	}
	s.FirstActivityAt = s.FirstActivityAt.UTC()
	s.LastActivityAt = s.LastActivityAt.UTC()
	if s.SessionDuration, err = fromMinutes("session_duration_minutes", minutes); err != nil {
		return nil, err
	}
	return &s, nil
}
