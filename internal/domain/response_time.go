package domain

import (
	"context"
	"time"
)

// ReviewResponseTime — реакция автора на последний запрос изменений.
type ReviewResponseTime struct {
	PullRequestID              int64
	LastChangesRequestedAt     *time.Time
	FirstCommitAfterChangesAt  *time.Time
	FirstApproveAfterChangesAt *time.Time
	ResponseAfterReview        *Duration
	ChangesResolution          *Duration
	ChangesRequestedCount      int
}

// ResponseTimeRepository определяет контракт хранилища времени реакции.
// FindByPRID возвращает nil без ошибки, если строки нет.
type ResponseTimeRepository interface {
	FindByPRID(ctx context.Context, prID int64) (*ReviewResponseTime, error)
	ExistsByPRID(ctx context.Context, prID int64) (bool, error)
	Save(ctx context.Context, rt *ReviewResponseTime) error
}

// CreateResponseTimeOnChangesRequested открывает первый цикл изменений.
func CreateResponseTimeOnChangesRequested(prID int64, requestedAt time.Time) (ReviewResponseTime, error) {
	if prID <= 0 {
		return ReviewResponseTime{}, ErrInvalidPRID
	}
	if requestedAt.IsZero() {
		return ReviewResponseTime{}, required("changesRequestedAt")
	}
	return ReviewResponseTime{
		PullRequestID:          prID,
		LastChangesRequestedAt: timePtr(requestedAt),
		ChangesRequestedCount:  1,
	}, nil
}

// UpdateOnChangesRequested начинает новый цикл: прошлые ответ и разрешение сбрасываются.
func (rt ReviewResponseTime) UpdateOnChangesRequested(requestedAt time.Time) (ReviewResponseTime, error) {
	if requestedAt.IsZero() {
		return rt, required("changesRequestedAt")
	}
	rt.ChangesRequestedCount++
	rt.LastChangesRequestedAt = timePtr(requestedAt)
	rt.FirstCommitAfterChangesAt = nil
	rt.FirstApproveAfterChangesAt = nil
	rt.ResponseAfterReview = nil
	rt.ChangesResolution = nil
	return rt, nil
}

// UpdateOnCommitAfterChanges фиксирует первый коммит после запроса изменений.
// Коммиты не позже запроса игнорируются.
func (rt ReviewResponseTime) UpdateOnCommitAfterChanges(committedAt time.Time) (ReviewResponseTime, error) {
	if committedAt.IsZero() {
		return rt, required("committedAt")
	}
	if !rt.HasChangesRequested() || rt.FirstCommitAfterChangesAt != nil {
		return rt, nil
	}
	if !committedAt.After(*rt.LastChangesRequestedAt) {
		return rt, nil
	}
	d, err := durationBetweenPtr(*rt.LastChangesRequestedAt, committedAt)
	if err != nil {
		return rt, err
	}
	rt.FirstCommitAfterChangesAt = timePtr(committedAt)
	rt.ResponseAfterReview = d
	return rt, nil
}

// UpdateOnApproveAfterChanges фиксирует первый аппрув после запроса изменений.
// Вызывающий проверяет HasChangesRequested() && !IsResolved().
func (rt ReviewResponseTime) UpdateOnApproveAfterChanges(approvedAt time.Time) (ReviewResponseTime, error) {
	if approvedAt.IsZero() {
		return rt, required("approvedAt")
	}
	if !rt.HasChangesRequested() || rt.FirstApproveAfterChangesAt != nil {
		return rt, nil
	}
	if !approvedAt.After(*rt.LastChangesRequestedAt) {
		return rt, nil
	}
	d, err := durationBetweenPtr(*rt.LastChangesRequestedAt, approvedAt)
	if err != nil {
		return rt, err
	}
	rt.FirstApproveAfterChangesAt = timePtr(approvedAt)
	rt.ChangesResolution = d
	return rt, nil
}

func (rt ReviewResponseTime) HasChangesRequested() bool {
	return rt.LastChangesRequestedAt != nil && rt.ChangesRequestedCount > 0
}

func (rt ReviewResponseTime) IsResolved() bool {
	return rt.FirstApproveAfterChangesAt != nil
}

func (rt ReviewResponseTime) HasResponded() bool {
	return rt.FirstCommitAfterChangesAt != nil
}
