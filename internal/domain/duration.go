package domain

import "time"

// Duration — неотрицательный отрезок времени в целых минутах.
// Значение неизменяемое; отсутствие значения выражается через *Duration.
type Duration struct {
	minutes int64
}

// ZeroDuration возвращает нулевую длительность.
func ZeroDuration() Duration {
	return Duration{}
}

// NewDuration создает длительность из количества минут.
func NewDuration(minutes int64) (Duration, error) {
	if minutes < 0 {
		return Duration{}, ErrNegativeDuration
	}
	return Duration{minutes: minutes}, nil
}

// DurationBetween возвращает количество полных минут между start и end.
func DurationBetween(start, end time.Time) (Duration, error) {
	if end.Before(start) {
		return Duration{}, ErrNegativeDuration
	}
	return Duration{minutes: int64(end.Sub(start) / time.Minute)}, nil
}

// Minutes возвращает длительность в минутах.
func (d Duration) Minutes() int64 {
	return d.minutes
}

// IsZero сообщает, равна ли длительность нулю.
func (d Duration) IsZero() bool {
	return d.minutes == 0
}

// Plus складывает две длительности.
func (d Duration) Plus(other Duration) Duration {
	return Duration{minutes: d.minutes + other.minutes}
}

func (d Duration) Ptr() *Duration {
	return &d
}

func minutesOf(d *Duration) int64 {
	if d == nil {
		return 0
	}
	return d.minutes
}

func durationBetweenPtr(start, end time.Time) (*Duration, error) {
	d, err := DurationBetween(start, end)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
