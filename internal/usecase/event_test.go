package usecase_test

import (
	"context"
	"io"
	"testing"
	"time"

	"pr-review-analytics/internal/domain"
	"pr-review-analytics/internal/mocks"
	"pr-review-analytics/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return t0.Add(time.Duration(minutes) * time.Minute)
}

type fixture struct {
	tx            *mocks.TxManager
	prs           *mocks.PRRepository
	reviews       *mocks.ReviewRepository
	comments      *mocks.ReviewCommentRepository
	commits       *mocks.CommitRepository
	lifecycles    *mocks.LifecycleRepository
	bottlenecks   *mocks.BottleneckRepository
	sessions      *mocks.ReviewSessionRepository
	responseTimes *mocks.ResponseTimeRepository
	activities    *mocks.ReviewActivityRepository
	analyses      *mocks.CommentAnalysisRepository
	snapshots     *mocks.SnapshotRepository
}

func newFixture() *fixture {
	return &fixture{
		tx:            &mocks.TxManager{},
		prs:           &mocks.PRRepository{},
		reviews:       &mocks.ReviewRepository{},
		comments:      &mocks.ReviewCommentRepository{},
		commits:       &mocks.CommitRepository{},
		lifecycles:    &mocks.LifecycleRepository{},
		bottlenecks:   &mocks.BottleneckRepository{},
		sessions:      &mocks.ReviewSessionRepository{},
		responseTimes: &mocks.ResponseTimeRepository{},
		activities:    &mocks.ReviewActivityRepository{},
		analyses:      &mocks.CommentAnalysisRepository{},
		snapshots:     &mocks.SnapshotRepository{},
	}
}

func (f *fixture) repos() usecase.Repositories {
	return usecase.Repositories{
		PullRequests:  f.prs,
		Reviews:       f.reviews,
		Comments:      f.comments,
		Commits:       f.commits,
		Lifecycles:    f.lifecycles,
		Bottlenecks:   f.bottlenecks,
		Sessions:      f.sessions,
		ResponseTimes: f.responseTimes,
		Activities:    f.activities,
		Analyses:      f.analyses,
		Snapshots:     f.snapshots,
	}
}

func (f *fixture) eventUseCase() domain.EventUseCase {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return usecase.NewEventUseCase(f.tx, f.repos(), logger)
}

func (f *fixture) assertExpectations(t *testing.T) {
	t.Helper()
	mock.AssertExpectationsForObjects(t,
		f.prs, f.reviews, f.comments, f.commits,
		f.lifecycles, f.bottlenecks, f.sessions, f.responseTimes,
		f.activities, f.analyses, f.snapshots,
	)
}

func openPR() *domain.PullRequest {
	return &domain.PullRequest{
		ID:           42,
		Author:       "alice",
		State:        domain.PRStateOpen,
		Additions:    100,
		Deletions:    50,
		ChangedFiles: 4,
		CommitCount:  3,
		CreatedAt:    t0,
	}
}

func TestEventUseCase_Handle_Rejected(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name        string
		event       domain.Event
		expectedErr error
	}{
		{"Nil event", nil, domain.ErrInvalidPayload},
		{"Invalid pull request id", domain.PullRequestOpened{CreatedAt: t0}, domain.ErrInvalidPRID},
		{"Missing reviewer", domain.ReviewerAdded{PullRequestID: 42, RequestedAt: t0}, domain.ErrInvalidReviewer},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			uc := f.eventUseCase()

			_, err := uc.Handle(ctx, "delivery-1", tc.event)

			assert.ErrorIs(t, err, tc.expectedErr)
			assert.Equal(t, 0, f.tx.Calls)
		})
	}
}

func TestEventUseCase_Opened(t *testing.T) {
	ctx := context.Background()
	ev := domain.PullRequestOpened{
		PullRequestID: 42,
		Author:        "alice",
		ChangeStats:   domain.ChangeStats{Additions: 100, Deletions: 50, ChangedFiles: 4},
		CommitCount:   3,
		CreatedAt:     t0,
	}

	testCases := []struct {
		name      string
		created   bool
		saved     bool
		duplicate bool
	}{
		{"First delivery", true, true, false},
		{"Redelivery", false, false, true},
		{"Snapshot missing for recorded pull request", false, true, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			uc := f.eventUseCase()

			f.prs.On("Create", mock.Anything, mock.MatchedBy(func(pr *domain.PullRequest) bool {
				return pr.ID == 42 && pr.State == domain.PRStateOpen && pr.Additions == 100
			})).Return(openPR(), tc.created, nil)
			f.snapshots.On("Save", mock.Anything, mock.MatchedBy(func(s *domain.OpenedSnapshot) bool {
				return s.Summary.TotalChanges == 150 && s.Density.CommitCount == 3
			})).Return(tc.saved, nil)

			result, err := uc.Handle(ctx, "delivery-1", ev)

			require.NoError(t, err)
			assert.Equal(t, domain.EventPullRequestOpened, result.EventType)
			assert.Equal(t, tc.duplicate, result.Duplicate)
			assert.Equal(t, 1, f.tx.Calls)
			f.assertExpectations(t)
		})
	}
}

func TestEventUseCase_ClosedWithoutReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.eventUseCase()
	ev := domain.PullRequestStateChanged{
		PullRequestID: 42,
		PreviousState: domain.PRStateOpen,
		NewState:      domain.PRStateClosed,
		ChangedAt:     at(1440),
	}

	f.prs.On("LockByID", mock.Anything, int64(42)).Return(openPR(), nil)
	f.prs.On("UpdateState", mock.Anything, int64(42), domain.PRStateClosed, at(1440)).Return(nil)
	f.lifecycles.On("FindByPRID", mock.Anything, int64(42)).Return(nil, nil)
	f.reviews.On("CountByPR", mock.Anything, int64(42)).Return(0, nil)
	f.lifecycles.On("Save", mock.Anything, mock.MatchedBy(func(lc *domain.PullRequestLifecycle) bool {
		return lc.ClosedWithoutReview && lc.TimeToMerge == nil && lc.TotalLifespan.Minutes() == 1440
	})).Return(nil)
	f.activities.On("FindByPRID", mock.Anything, int64(42)).Return(nil, nil)
	f.activities.On("Save", mock.Anything, mock.MatchedBy(func(a *domain.ReviewActivity) bool {
		return a.ReviewRoundTrips == 0 && a.TotalChanges() == 150
	})).Return(nil)

	result, err := uc.Handle(ctx, "delivery-2", ev)

	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	f.bottlenecks.AssertNotCalled(t, "FindByPRID", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestEventUseCase_ClosureRedelivered(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.eventUseCase()
	ev := domain.PullRequestStateChanged{PullRequestID: 42, NewState: domain.PRStateMerged, ChangedAt: at(600)}

	prior := &domain.PullRequestLifecycle{
		PullRequestID:    42,
		ReviewReadyAt:    t0,
		ClosedAt:         at(600),
		ClosedState:      domain.PRStateMerged,
		StateChangeCount: 1,
	}

	f.prs.On("LockByID", mock.Anything, int64(42)).Return(openPR(), nil)
	f.prs.On("UpdateState", mock.Anything, int64(42), domain.PRStateMerged, at(600)).Return(nil)
	f.lifecycles.On("FindByPRID", mock.Anything, int64(42)).Return(prior, nil)
	f.reviews.On("CountByPR", mock.Anything, int64(42)).Return(1, nil)

	result, err := uc.Handle(ctx, "delivery-3", ev)

	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	f.lifecycles.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.activities.AssertNotCalled(t, "FindByPRID", mock.Anything, mock.Anything)
	f.bottlenecks.AssertNotCalled(t, "FindByPRID", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestEventUseCase_MergedUpdatesBottleneck(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.eventUseCase()
	ev := domain.PullRequestStateChanged{PullRequestID: 42, NewState: domain.PRStateMerged, ChangedAt: at(210)}

	bottleneck, err := domain.CreateBottleneckOnFirstReview(42, t0, at(120))
	require.NoError(t, err)
	bottleneck, err = bottleneck.UpdateOnNewReview(t0, at(180), true)
	require.NoError(t, err)

	f.prs.On("LockByID", mock.Anything, int64(42)).Return(openPR(), nil)
	f.prs.On("UpdateState", mock.Anything, int64(42), domain.PRStateMerged, at(210)).Return(nil)
	f.lifecycles.On("FindByPRID", mock.Anything, int64(42)).Return(nil, nil)
	f.reviews.On("CountByPR", mock.Anything, int64(42)).Return(2, nil)
	f.lifecycles.On("Save", mock.Anything, mock.MatchedBy(func(lc *domain.PullRequestLifecycle) bool {
		return lc.IsMerged() && lc.TimeToMerge.Minutes() == 210
	})).Return(nil)
	f.activities.On("FindByPRID", mock.Anything, int64(42)).Return(&domain.ReviewActivity{PullRequestID: 42, ReviewRoundTrips: 2}, nil)
	f.activities.On("Save", mock.Anything, mock.MatchedBy(func(a *domain.ReviewActivity) bool {
		return a.ReviewRoundTrips == 2 && a.TotalChanges() == 150
	})).Return(nil)
	f.bottlenecks.On("FindByPRID", mock.Anything, int64(42)).Return(&bottleneck, nil)
	f.bottlenecks.On("Save", mock.Anything, mock.MatchedBy(func(b *domain.PullRequestBottleneck) bool {
		return b.Phase() == domain.PhaseMerged &&
			b.TotalBottleneckTime().Minutes() == 210 &&
			b.LongestBottleneck() == domain.BottleneckReviewWait
	})).Return(nil)

	result, err := uc.Handle(ctx, "delivery-4", ev)

	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	f.assertExpectations(t)
}

func TestEventUseCase_MergedAtSameInstantAsClosed(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.eventUseCase()
	ev := domain.PullRequestStateChanged{PullRequestID: 42, NewState: domain.PRStateMerged, ChangedAt: at(210)}

	prior := &domain.PullRequestLifecycle{
		PullRequestID:    42,
		ReviewReadyAt:    t0,
		ClosedAt:         at(210),
		ClosedState:      domain.PRStateClosed,
		StateChangeCount: 1,
	}
	bottleneck, err := domain.CreateBottleneckOnFirstReview(42, t0, at(120))
	require.NoError(t, err)
	bottleneck, err = bottleneck.UpdateOnNewReview(t0, at(180), true)
	require.NoError(t, err)

	f.prs.On("LockByID", mock.Anything, int64(42)).Return(openPR(), nil)
	f.prs.On("UpdateState", mock.Anything, int64(42), domain.PRStateMerged, at(210)).Return(nil)
	f.lifecycles.On("FindByPRID", mock.Anything, int64(42)).Return(prior, nil)
	f.reviews.On("CountByPR", mock.Anything, int64(42)).Return(2, nil)
	f.lifecycles.On("Save", mock.Anything, mock.MatchedBy(func(lc *domain.PullRequestLifecycle) bool {
		return lc.ClosedState == domain.PRStateMerged && lc.IsMerged() && lc.StateChangeCount == 1
	})).Return(nil)
	f.activities.On("FindByPRID", mock.Anything, int64(42)).Return(&domain.ReviewActivity{PullRequestID: 42, ReviewRoundTrips: 2}, nil)
	f.activities.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.bottlenecks.On("FindByPRID", mock.Anything, int64(42)).Return(&bottleneck, nil)
	f.bottlenecks.On("Save", mock.Anything, mock.MatchedBy(func(b *domain.PullRequestBottleneck) bool {
		return b.Phase() == domain.PhaseMerged && b.MergeWait.Minutes() == 30
	})).Return(nil)

	result, err := uc.Handle(ctx, "delivery-5", ev)

	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	f.assertExpectations(t)
}

func TestEventUseCase_ReopenTouchesOnlyState(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.eventUseCase()
	ev := domain.PullRequestStateChanged{
		PullRequestID: 42,
		PreviousState: domain.PRStateClosed,
		NewState:      domain.PRStateOpen,
		ChangedAt:     at(30),
	}

	f.prs.On("LockByID", mock.Anything, int64(42)).Return(openPR(), nil)
	f.prs.On("UpdateState", mock.Anything, int64(42), domain.PRStateOpen, at(30)).Return(nil)

	result, err := uc.Handle(ctx, "delivery-5", ev)

	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	f.lifecycles.AssertNotCalled(t, "FindByPRID", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestEventUseCase_FirstReviewRequestsChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.eventUseCase()
	ev := domain.ReviewSubmitted{
		ReviewID:      7,
		PullRequestID: 42,
		Reviewer:      "bob",
		State:         domain.ReviewChangesRequested,
		CommentCount:  2,
		SubmittedAt:   at(60),
	}
	review := &domain.Review{ID: 7, PullRequestID: 42, Reviewer: "bob", State: domain.ReviewChangesRequested, CommentCount: 2, SubmittedAt: at(60)}
	firstReview := at(60)

	f.prs.On("LockByID", mock.Anything, int64(42)).Return(openPR(), nil)
	f.reviews.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(review, true, nil)

	f.bottlenecks.On("FindByPRID", mock.Anything, int64(42)).Return(nil, nil)
	f.bottlenecks.On("Save", mock.Anything, mock.MatchedBy(func(b *domain.PullRequestBottleneck) bool {
		return b.ReviewWait.Minutes() == 60 && b.Phase() == domain.PhaseHasReview
	})).Return(nil)

	f.sessions.On("Find", mock.Anything, int64(42), "bob").Return(nil, nil)
	f.sessions.On("Save", mock.Anything, mock.MatchedBy(func(s *domain.ReviewSession) bool {
		return s.ReviewCount == 1 && s.CommentCount == 0 && s.IsSingleActivity()
	})).Return(nil)

	f.responseTimes.On("FindByPRID", mock.Anything, int64(42)).Return(nil, nil)
	f.responseTimes.On("Save", mock.Anything, mock.MatchedBy(func(rt *domain.ReviewResponseTime) bool {
		return rt.ChangesRequestedCount == 1 && rt.LastChangesRequestedAt.Equal(at(60))
	})).Return(nil)

	f.activities.On("FindByPRID", mock.Anything, int64(42)).Return(nil, nil)
	f.reviews.On("CountByPR", mock.Anything, int64(42)).Return(1, nil)
	f.reviews.On("SumCommentsByPR", mock.Anything, int64(42)).Return(2, nil)
	f.prs.On("CountReviewers", mock.Anything, int64(42)).Return(1, nil)
	f.reviews.On("FirstSubmittedAt", mock.Anything, int64(42)).Return(&firstReview, nil)
	f.commits.On("SumChangesAfter", mock.Anything, int64(42), firstReview).Return(domain.ChangeStats{}, nil)
	f.activities.On("Save", mock.Anything, mock.MatchedBy(func(a *domain.ReviewActivity) bool {
		return a.ReviewRoundTrips == 1 && a.TotalCommentCount == 2 && a.AdditionalReviewerCount == 1
	})).Return(nil)

	result, err := uc.Handle(ctx, "delivery-6", ev)

	require.NoError(t, err)
	assert.Equal(t, domain.EventReviewSubmitted, result.EventType)
	assert.False(t, result.Duplicate)
	f.assertExpectations(t)
}

func TestEventUseCase_ReviewRedelivered(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.eventUseCase()
	ev := domain.ReviewSubmitted{ReviewID: 7, PullRequestID: 42, Reviewer: "bob", State: domain.ReviewApproved, SubmittedAt: at(60)}

	f.prs.On("LockByID", mock.Anything, int64(42)).Return(openPR(), nil)
	f.reviews.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).
		Return(&domain.Review{ID: 7, PullRequestID: 42}, false, nil)

	result, err := uc.Handle(ctx, "delivery-6", ev)

	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	f.bottlenecks.AssertNotCalled(t, "FindByPRID", mock.Anything, mock.Anything)
	f.sessions.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything)
	f.activities.AssertNotCalled(t, "FindByPRID", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestEventUseCase_ReviewBeforePullRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.eventUseCase()
	ev := domain.ReviewSubmitted{ReviewID: 7, PullRequestID: 99, Reviewer: "bob", State: domain.ReviewCommented, SubmittedAt: at(5)}

	f.prs.On("LockByID", mock.Anything, int64(99)).Return(nil, domain.ErrPRNotFound)

	_, err := uc.Handle(ctx, "delivery-7", ev)

	assert.ErrorIs(t, err, domain.ErrPRNotFound)
	assert.True(t, domain.IsOrderingViolation(err))
	f.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEventUseCase_SecondReviewUpdatesAggregates(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.eventUseCase()
	ev := domain.ReviewSubmitted{ReviewID: 8, PullRequestID: 42, Reviewer: "bob", State: domain.ReviewCommented, CommentCount: 5, SubmittedAt: at(180)}
	review := &domain.Review{ID: 8, PullRequestID: 42, Reviewer: "bob", State: domain.ReviewCommented, CommentCount: 5, SubmittedAt: at(180)}
	firstReview := at(60)

	bottleneck, err := domain.CreateBottleneckOnFirstReview(42, t0, at(60))
	require.NoError(t, err)
	session, err := domain.NewReviewSession(42, "bob", at(60))
	require.NoError(t, err)

	f.prs.On("LockByID", mock.Anything, int64(42)).Return(openPR(), nil)
	f.reviews.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(review, true, nil)
	f.bottlenecks.On("FindByPRID", mock.Anything, int64(42)).Return(&bottleneck, nil)
	f.bottlenecks.On("Save", mock.Anything, mock.MatchedBy(func(b *domain.PullRequestBottleneck) bool {
		return b.ReviewProgress.Minutes() == 120
	})).Return(nil)
	f.sessions.On("Find", mock.Anything, int64(42), "bob").Return(&session, nil)
	f.sessions.On("Save", mock.Anything, mock.MatchedBy(func(s *domain.ReviewSession) bool {
		return s.ReviewCount == 2 && s.CommentCount == 5 && s.SessionDuration.Minutes() == 120
	})).Return(nil)
	f.activities.On("FindByPRID", mock.Anything, int64(42)).
		Return(&domain.ReviewActivity{PullRequestID: 42, ReviewRoundTrips: 1, TotalCommentCount: 2}, nil)
	f.reviews.On("FirstSubmittedAt", mock.Anything, int64(42)).Return(&firstReview, nil)
	f.commits.On("SumChangesAfter", mock.Anything, int64(42), firstReview).
		Return(domain.ChangeStats{Additions: 10, Deletions: 4}, nil)
	f.activities.On("Save", mock.Anything, mock.MatchedBy(func(a *domain.ReviewActivity) bool {
		return a.ReviewRoundTrips == 2 && a.TotalCommentCount == 7 &&
			a.CodeAdditionsAfterReview == 10 && a.CodeDeletionsAfterReview == 4
	})).Return(nil)

	result, err := uc.Handle(ctx, "delivery-8", ev)

	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	f.responseTimes.AssertNotCalled(t, "FindByPRID", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestEventUseCase_CommitAfterChangesRequested(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.eventUseCase()
	ev := domain.CommitPushed{PullRequestID: 42, SHA: "abc123", Additions: 8, Deletions: 2, CommittedAt: at(45)}
	commit := &domain.Commit{SHA: "abc123", PullRequestID: 42, Additions: 8, Deletions: 2, CommittedAt: at(45)}

	rt, err := domain.CreateResponseTimeOnChangesRequested(42, t0)
	require.NoError(t, err)

	f.prs.On("LockByID", mock.Anything, int64(42)).Return(openPR(), nil)
	f.commits.On("Create", mock.Anything, mock.AnythingOfType("*domain.Commit")).Return(commit, true, nil)
	f.responseTimes.On("FindByPRID", mock.Anything, int64(42)).Return(&rt, nil)
	f.responseTimes.On("Save", mock.Anything, mock.MatchedBy(func(rt *domain.ReviewResponseTime) bool {
		return rt.ResponseAfterReview != nil && rt.ResponseAfterReview.Minutes() == 45
	})).Return(nil)
	f.activities.On("FindByPRID", mock.Anything, int64(42)).Return(nil, nil)

	result, err := uc.Handle(ctx, "delivery-9", ev)

	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	f.activities.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestEventUseCase_CommentCreated(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.eventUseCase()
	body := "@carol take a look at `ctx`"
	ev := domain.ReviewCommentCreated{ReviewCommentID: 11, ReviewID: 7, Body: &body, UpdatedAt: at(70)}
	comment := &domain.ReviewComment{ID: 11, ReviewID: 7, PullRequestID: 42, Reviewer: "bob", Body: &body, CreatedAt: at(70), UpdatedAt: at(70)}

	f.reviews.On("GetByID", mock.Anything, int64(7)).Return(&domain.Review{ID: 7, PullRequestID: 42, Reviewer: "bob"}, nil)
	f.prs.On("LockByID", mock.Anything, int64(42)).Return(openPR(), nil)
	f.comments.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.ReviewComment) bool {
		return c.Reviewer == "bob" && c.PullRequestID == 42 && c.CreatedAt.Equal(at(70))
	})).Return(comment, true, nil)
	f.analyses.On("Save", mock.Anything, mock.MatchedBy(func(a *domain.CommentAnalysis) bool {
		return a.ReviewCommentID == 11 && a.MentionCount == 1 && a.HasCode
	})).Return(nil)
	f.sessions.On("Find", mock.Anything, int64(42), "bob").Return(nil, nil)
	f.sessions.On("Save", mock.Anything, mock.MatchedBy(func(s *domain.ReviewSession) bool {
		return s.ReviewCount == 0 && s.CommentCount == 1
	})).Return(nil)

	result, err := uc.Handle(ctx, "delivery-10", ev)

	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	f.assertExpectations(t)
}

func TestEventUseCase_CommentBeforeReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.eventUseCase()
	ev := domain.ReviewCommentCreated{ReviewCommentID: 11, ReviewID: 7, UpdatedAt: at(70)}

	f.reviews.On("GetByID", mock.Anything, int64(7)).Return(nil, domain.ErrReviewNotFound)

	_, err := uc.Handle(ctx, "delivery-11", ev)

	assert.ErrorIs(t, err, domain.ErrReviewNotFound)
	f.comments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEventUseCase_CommentEdited(t *testing.T) {
	ctx := context.Background()
	newBody := "please review"
	ev := domain.ReviewCommentEdited{ReviewCommentID: 11, ReviewID: 7, Body: &newBody, UpdatedAt: at(90)}

	t.Run("Fresh edit", func(t *testing.T) {
		f := newFixture()
		uc := f.eventUseCase()
		oldBody := "@john @jane please review"
		prior := domain.AnalyzeComment(11, &oldBody)

		f.reviews.On("GetByID", mock.Anything, int64(7)).Return(&domain.Review{ID: 7, PullRequestID: 42, Reviewer: "bob"}, nil)
		f.prs.On("LockByID", mock.Anything, int64(42)).Return(openPR(), nil)
		f.comments.On("UpdateBody", mock.Anything, int64(11), &newBody, at(90)).Return(true, nil)
		f.analyses.On("FindByCommentID", mock.Anything, int64(11)).Return(&prior, nil)
		f.analyses.On("Save", mock.Anything, mock.MatchedBy(func(a *domain.CommentAnalysis) bool {
			return a.MentionCount == 0 && a.CommentLength == 13
		})).Return(nil)

		result, err := uc.Handle(ctx, "delivery-12", ev)

		require.NoError(t, err)
		assert.False(t, result.Duplicate)
		f.assertExpectations(t)
	})

	t.Run("Stale edit", func(t *testing.T) {
		f := newFixture()
		uc := f.eventUseCase()

		f.reviews.On("GetByID", mock.Anything, int64(7)).Return(&domain.Review{ID: 7, PullRequestID: 42, Reviewer: "bob"}, nil)
		f.prs.On("LockByID", mock.Anything, int64(42)).Return(openPR(), nil)
		f.comments.On("UpdateBody", mock.Anything, int64(11), &newBody, at(90)).Return(false, nil)

		result, err := uc.Handle(ctx, "delivery-12", ev)

		require.NoError(t, err)
		assert.True(t, result.Duplicate)
		f.analyses.AssertNotCalled(t, "FindByCommentID", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})
}

func TestEventUseCase_CommentDeleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.eventUseCase()
	ev := domain.ReviewCommentDeleted{ReviewCommentID: 11, ReviewID: 7, UpdatedAt: at(95)}

	f.reviews.On("GetByID", mock.Anything, int64(7)).Return(&domain.Review{ID: 7, PullRequestID: 42, Reviewer: "bob"}, nil)
	f.prs.On("LockByID", mock.Anything, int64(42)).Return(openPR(), nil)
	f.comments.On("Delete", mock.Anything, int64(11)).Return(true, nil)
	f.analyses.On("Delete", mock.Anything, int64(11)).Return(nil)

	result, err := uc.Handle(ctx, "delivery-13", ev)

	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	f.sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestEventUseCase_ReviewerChanges(t *testing.T) {
	ctx := context.Background()

	t.Run("Added", func(t *testing.T) {
		f := newFixture()
		uc := f.eventUseCase()
		ev := domain.ReviewerAdded{PullRequestID: 42, Reviewer: "carol", RequestedAt: at(10)}

		f.prs.On("LockByID", mock.Anything, int64(42)).Return(openPR(), nil)
		f.prs.On("AddReviewer", mock.Anything, int64(42), "carol", at(10)).Return(true, nil)
		f.activities.On("FindByPRID", mock.Anything, int64(42)).
			Return(&domain.ReviewActivity{PullRequestID: 42, AdditionalReviewerCount: 1}, nil)
		f.activities.On("Save", mock.Anything, mock.MatchedBy(func(a *domain.ReviewActivity) bool {
			return a.AdditionalReviewerCount == 2
		})).Return(nil)

		result, err := uc.Handle(ctx, "delivery-14", ev)

		require.NoError(t, err)
		assert.False(t, result.Duplicate)
		f.assertExpectations(t)
	})

	t.Run("Added twice", func(t *testing.T) {
		f := newFixture()
		uc := f.eventUseCase()
		ev := domain.ReviewerAdded{PullRequestID: 42, Reviewer: "carol", RequestedAt: at(10)}

		f.prs.On("LockByID", mock.Anything, int64(42)).Return(openPR(), nil)
		f.prs.On("AddReviewer", mock.Anything, int64(42), "carol", at(10)).Return(false, nil)

		result, err := uc.Handle(ctx, "delivery-14", ev)

		require.NoError(t, err)
		assert.True(t, result.Duplicate)
		f.activities.AssertNotCalled(t, "FindByPRID", mock.Anything, mock.Anything)
	})

	t.Run("Removed unknown", func(t *testing.T) {
		f := newFixture()
		uc := f.eventUseCase()
		ev := domain.ReviewerRemoved{PullRequestID: 42, Reviewer: "dave", RemovedAt: at(20)}

		f.prs.On("LockByID", mock.Anything, int64(42)).Return(openPR(), nil)
		f.prs.On("RemoveReviewer", mock.Anything, int64(42), "dave").Return(false, nil)

		result, err := uc.Handle(ctx, "delivery-15", ev)

		require.NoError(t, err)
		assert.True(t, result.Duplicate)
		f.assertExpectations(t)
	})
}

func TestEventUseCase_Synchronized(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.eventUseCase()
	stats := domain.ChangeStats{Additions: 130, Deletions: 70, ChangedFiles: 6}
	ev := domain.PullRequestSynchronized{PullRequestID: 42, ChangeStats: stats, SyncedAt: at(15)}

	f.prs.On("LockByID", mock.Anything, int64(42)).Return(openPR(), nil)
	f.prs.On("UpdateChangeStats", mock.Anything, int64(42), stats).Return(nil)
	f.activities.On("FindByPRID", mock.Anything, int64(42)).
		Return(&domain.ReviewActivity{PullRequestID: 42, TotalAdditions: 100, TotalDeletions: 50}, nil)
	f.activities.On("Save", mock.Anything, mock.MatchedBy(func(a *domain.ReviewActivity) bool {
		return a.TotalChanges() == 200
	})).Return(nil)

	result, err := uc.Handle(ctx, "delivery-16", ev)

	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	f.assertExpectations(t)
}

func TestEventUseCase_RepositoryFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.eventUseCase()
	ev := domain.CommitPushed{PullRequestID: 42, SHA: "abc123", CommittedAt: at(45)}

	f.prs.On("LockByID", mock.Anything, int64(42)).Return(openPR(), nil)
	f.commits.On("Create", mock.Anything, mock.AnythingOfType("*domain.Commit")).Return(nil, false, assert.AnError)

	_, err := uc.Handle(ctx, "delivery-17", ev)

	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, domain.IsOrderingViolation(err))
}
