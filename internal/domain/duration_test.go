package domain_test

import (
	"testing"
	"time"

	"pr-review-analytics/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return t0.Add(time.Duration(minutes) * time.Minute)
}

func minutes(t *testing.T, n int64) *domain.Duration {
	t.Helper()
	d, err := domain.NewDuration(n)
	require.NoError(t, err)
	return &d
}

func TestNewDuration(t *testing.T) {
	d, err := domain.NewDuration(90)
	assert.NoError(t, err)
	assert.Equal(t, int64(90), d.Minutes())
	assert.False(t, d.IsZero())

	_, err = domain.NewDuration(-1)
	assert.ErrorIs(t, err, domain.ErrNegativeDuration)
	assert.ErrorIs(t, err, domain.ErrPrecondition)
}

func TestDurationBetween(t *testing.T) {
	testCases := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected int64
	}{
		{"Same instant", t0, t0, 0},
		{"Whole minutes", t0, at(1440), 1440},
		{"Truncates seconds", t0, t0.Add(90 * time.Second), 1},
		{"Below one minute", t0, t0.Add(59 * time.Second), 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := domain.DurationBetween(tc.start, tc.end)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, d.Minutes())
		})
	}
}

func TestDurationBetween_EndBeforeStart(t *testing.T) {
	_, err := domain.DurationBetween(at(10), t0)
	assert.ErrorIs(t, err, domain.ErrNegativeDuration)
}

func TestDuration_Plus(t *testing.T) {
	sum := minutes(t, 60).Plus(*minutes(t, 30))
	assert.Equal(t, int64(90), sum.Minutes())
	assert.True(t, domain.ZeroDuration().IsZero())
}
