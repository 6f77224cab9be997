package repository

import (
	"database/sql"
	"fmt"
	"time"

	"pr-review-analytics/internal/domain"
)

// Вспомогательные функции преобразования nullable-колонок в доменные значения

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func toNullMinutes(d *domain.Duration) sql.NullInt64 {
	if d == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: d.Minutes(), Valid: true}
}

func fromNullMinutes(column string, v sql.NullInt64) (*domain.Duration, error) {
	if !v.Valid {
		return nil, nil
	}
	d, err := fromMinutes(column, v.Int64)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func fromMinutes(column string, minutes int64) (domain.Duration, error) {
	d, err := domain.NewDuration(minutes)
	if err != nil {
		return domain.Duration{}, fmt.Errorf("corrupted %s: %w", column, err)
	}
	return d, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

type rowScanner interface {
	Scan(dest ...any) error
}
