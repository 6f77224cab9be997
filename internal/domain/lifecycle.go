package domain

import (
	"context"
	"time"
)

// PullRequestLifecycle — сроки жизни пул-реквеста, фиксируемые при его закрытии.
type PullRequestLifecycle struct {
	PullRequestID       int64
	ReviewReadyAt       time.Time
	ClosedAt            time.Time
	ClosedState         PRState
	TimeToMerge         *Duration
	TotalLifespan       Duration
	ActiveWork          Duration
	StateChangeCount    int
	Reopened            bool
	ClosedWithoutReview bool
}

// LifecycleRepository определяет контракт хранилища жизненных циклов.
// FindByPRID возвращает nil без ошибки, если строки нет.
type LifecycleRepository interface {
	FindByPRID(ctx context.Context, prID int64) (*PullRequestLifecycle, error)
	ExistsByPRID(ctx context.Context, prID int64) (bool, error)
	Save(ctx context.Context, lc *PullRequestLifecycle) error
}

// DeriveLifecycle вычисляет новое состояние строки по событию закрытия.
// Возвращает changed=false, если событие не меняет состояние: не закрытие,
// повторная доставка того же закрытия (то же состояние и время) или закрытие
// старше уже учтенного.
func DeriveLifecycle(prior *PullRequestLifecycle, pr PullRequest, ev PullRequestStateChanged, reviewCount int) (*PullRequestLifecycle, bool, error) {
	if !ev.NewState.IsClosure() {
		return prior, false, nil
	}
	// В один момент MERGED вытесняет CLOSED: это уточнение того же закрытия, а не новое.
	correction := prior != nil && ev.ChangedAt.Equal(prior.ClosedAt) &&
		ev.NewState == PRStateMerged && prior.ClosedState != PRStateMerged
	if prior != nil && !correction && !ev.ChangedAt.After(prior.ClosedAt) {
		return prior, false, nil
	}

	lifespan, err := DurationBetween(pr.CreatedAt, ev.ChangedAt)
	if err != nil {
		return nil, false, err
	}

	var timeToMerge *Duration
	if ev.NewState == PRStateMerged {
		timeToMerge = lifespan.Ptr()
	}

	next := PullRequestLifecycle{
		PullRequestID:       pr.ID,
		ReviewReadyAt:       pr.CreatedAt,
		ClosedAt:            ev.ChangedAt,
		ClosedState:         ev.NewState,
		TimeToMerge:         timeToMerge,
		TotalLifespan:       lifespan,
		ActiveWork:          lifespan,
		StateChangeCount:    1,
		Reopened:            false,
		ClosedWithoutReview: reviewCount == 0,
	}

	switch {
	case correction:
		next.StateChangeCount = prior.StateChangeCount
		next.Reopened = prior.Reopened
	case prior != nil:
		next.StateChangeCount = prior.StateChangeCount + 1
		next.Reopened = true
	}

	return &next, true, nil
}

// IsMerged сообщает, завершился ли пул-реквест слиянием.
func (lc PullRequestLifecycle) IsMerged() bool {
	return lc.TimeToMerge != nil
}
