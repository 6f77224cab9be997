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
	selectLifecycleQuery = `
		SELECT pull_request_id, review_ready_at, closed_at, closed_state, time_to_merge_minutes,
		       total_lifespan_minutes, active_work_minutes, state_change_count, reopened, closed_without_review
		FROM pull_request_lifecycles
		WHERE pull_request_id = $1`
	lifecycleExistsQuery = `SELECT EXISTS(SELECT 1 FROM pull_request_lifecycles WHERE pull_request_id = $1)`
	upsertLifecycleQuery = `
		INSERT INTO pull_request_lifecycles (
			pull_request_id, review_ready_at, closed_at, closed_state, time_to_merge_minutes,
			total_lifespan_minutes, active_work_minutes, state_change_count, reopened, closed_without_review
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (pull_request_id) DO UPDATE SET
			review_ready_at        = EXCLUDED.review_ready_at,
			closed_at              = EXCLUDED.closed_at,
			closed_state           = EXCLUDED.closed_state,
			time_to_merge_minutes  = EXCLUDED.time_to_merge_minutes,
			total_lifespan_minutes = EXCLUDED.total_lifespan_minutes,
			active_work_minutes    = EXCLUDED.active_work_minutes,
			state_change_count     = EXCLUDED.state_change_count,
			reopened               = EXCLUDED.reopened,
			closed_without_review  = EXCLUDED.closed_without_review`
)

// LifecycleRepository реализует хранение жизненных циклов PR в PostgreSQL.
type LifecycleRepository struct {
	db *sql.DB
}

// NewLifecycleRepository создает новый экземпляр LifecycleRepository.
func NewLifecycleRepository(db *sql.DB) domain.LifecycleRepository {
	return &LifecycleRepository{db: db}
}

// FindByPRID возвращает строку жизненного цикла или nil.
func (r *LifecycleRepository) FindByPRID(ctx context.Context, prID int64) (*domain.PullRequestLifecycle, error) {
	q := database.QuerierFrom(ctx, r.db)

	var (
		lc            domain.PullRequestLifecycle
		timeToMerge   sql.NullInt64
		totalLifespan int64
		activeWork    int64
	)
	err := q.QueryRowContext(ctx, selectLifecycleQuery, prID).Scan(
		&lc.PullRequestID, &lc.ReviewReadyAt, &lc.ClosedAt, &lc.ClosedState, &timeToMerge,
		&totalLifespan, &activeWork, &lc.StateChangeCount, &lc.Reopened, &lc.ClosedWithoutReview,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lifecycle: %w", err)
	}

	lc.ReviewReadyAt = lc.ReviewReadyAt.UTC()
	lc.ClosedAt = lc.ClosedAt.UTC()
	if lc.TimeToMerge, err = fromNullMinutes("time_to_merge_minutes", timeToMerge); err != nil {
		return nil, err
	}
	if lc.TotalLifespan, err = fromMinutes("total_lifespan_minutes", totalLifespan); err != nil {
		return nil, err
	}
	if lc.ActiveWork, err = fromMinutes("active_work_minutes", activeWork); err != nil {
		return nil, err
	}
	return &lc, nil
}

// ExistsByPRID проверяет наличие строки.
func (r *LifecycleRepository) ExistsByPRID(ctx context.Context, prID int64) (bool, error) {
	return exists(ctx, database.QuerierFrom(ctx, r.db), lifecycleExistsQuery, prID)
}

// Save заменяет строку целиком.
func (r *LifecycleRepository) Save(ctx context.Context, lc *domain.PullRequestLifecycle) error {
	q := database.QuerierFrom(ctx, r.db)

	_, err := q.ExecContext(ctx, upsertLifecycleQuery,
		lc.PullRequestID, lc.ReviewReadyAt, lc.ClosedAt, string(lc.ClosedState), toNullMinutes(lc.TimeToMerge),
		lc.TotalLifespan.Minutes(), lc.ActiveWork.Minutes(), lc.StateChangeCount, lc.Reopened, lc.ClosedWithoutReview,
	)
	if err != nil {
		return fmt.Errorf("failed to save lifecycle: %w", err)
	}
	return nil
}

func exists(ctx context.Context, q database.Querier, query string, args ...any) (bool, error) {
	var ok bool
	if err := q.QueryRowContext(ctx, query, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return ok, nil
}
