package domain_test

import (
	"testing"
	"time"

	"pr-review-analytics/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseTime_CommitAfterChangesRequested(t *testing.T) {
	rt, err := domain.CreateResponseTimeOnChangesRequested(42, t0)
	require.NoError(t, err)
	assert.True(t, rt.HasChangesRequested())
	assert.False(t, rt.HasResponded())

	rt, err = rt.UpdateOnCommitAfterChanges(at(45))

	require.NoError(t, err)
	require.NotNil(t, rt.ResponseAfterReview)
	assert.Equal(t, int64(45), rt.ResponseAfterReview.Minutes())
	assert.True(t, rt.HasResponded())
}

func TestResponseTime_OnlyFirstCommitCounts(t *testing.T) {
	rt, err := domain.CreateResponseTimeOnChangesRequested(42, t0)
	require.NoError(t, err)
	rt, err = rt.UpdateOnCommitAfterChanges(at(45))
	require.NoError(t, err)

	rt, err = rt.UpdateOnCommitAfterChanges(at(90))

	require.NoError(t, err)
	assert.Equal(t, at(45), *rt.FirstCommitAfterChangesAt)
	assert.Equal(t, int64(45), rt.ResponseAfterReview.Minutes())
}

func TestResponseTime_CommitNotAfterRequestIgnored(t *testing.T) {
	rt, err := domain.CreateResponseTimeOnChangesRequested(42, at(60))
	require.NoError(t, err)

	for _, ts := range []time.Time{at(30), at(60)} {
		rt, err = rt.UpdateOnCommitAfterChanges(ts)
		require.NoError(t, err)
		assert.Nil(t, rt.FirstCommitAfterChangesAt)
		assert.Nil(t, rt.ResponseAfterReview)
	}
}

func TestResponseTime_NewCycleResets(t *testing.T) {
	rt, err := domain.CreateResponseTimeOnChangesRequested(42, t0)
	require.NoError(t, err)
	rt, err = rt.UpdateOnCommitAfterChanges(at(10))
	require.NoError(t, err)
	rt, err = rt.UpdateOnApproveAfterChanges(at(20))
	require.NoError(t, err)
	assert.True(t, rt.IsResolved())

	for i, ts := range []time.Time{at(30), at(40)} {
		before := rt.ChangesRequestedCount
		rt, err = rt.UpdateOnChangesRequested(ts)

		require.NoError(t, err)
		assert.Equal(t, before+1, rt.ChangesRequestedCount, "cycle %d", i)
		assert.Nil(t, rt.ResponseAfterReview)
		assert.Nil(t, rt.ChangesResolution)
		assert.Nil(t, rt.FirstCommitAfterChangesAt)
		assert.Nil(t, rt.FirstApproveAfterChangesAt)
		assert.Equal(t, ts, *rt.LastChangesRequestedAt)
	}
	assert.Equal(t, 3, rt.ChangesRequestedCount)
}

func TestResponseTime_ApproveResolvesCycle(t *testing.T) {
	rt, err := domain.CreateResponseTimeOnChangesRequested(42, t0)
	require.NoError(t, err)

	rt, err = rt.UpdateOnApproveAfterChanges(at(300))

	require.NoError(t, err)
	assert.True(t, rt.IsResolved())
	assert.Equal(t, int64(300), rt.ChangesResolution.Minutes())

	rt, err = rt.UpdateOnApproveAfterChanges(at(400))
	require.NoError(t, err)
	assert.Equal(t, at(300), *rt.FirstApproveAfterChangesAt)
}

func TestResponseTime_NoCycleIsNoop(t *testing.T) {
	var rt domain.ReviewResponseTime

	next, err := rt.UpdateOnCommitAfterChanges(at(10))

	assert.NoError(t, err)
	assert.Equal(t, rt, next)
}

func TestResponseTime_Preconditions(t *testing.T) {
	_, err := domain.CreateResponseTimeOnChangesRequested(0, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidPRID)

	_, err = domain.CreateResponseTimeOnChangesRequested(42, time.Time{})
	assert.ErrorIs(t, err, domain.ErrPrecondition)

	rt, err := domain.CreateResponseTimeOnChangesRequested(42, t0)
	require.NoError(t, err)

	_, err = rt.UpdateOnCommitAfterChanges(time.Time{})
	assert.ErrorIs(t, err, domain.ErrPrecondition)

	_, err = rt.UpdateOnApproveAfterChanges(time.Time{})
	assert.ErrorIs(t, err, domain.ErrPrecondition)
}
