// Package mocks содержит testify-моки контрактов домена.
package mocks

import (
	"context"
	"time"

	"pr-review-analytics/internal/domain"

	"github.com/stretchr/testify/mock"
)

// PRRepository — мок domain.PRRepository.
type PRRepository struct {
	mock.Mock
}

func (_m *PRRepository) Create(ctx context.Context, pr *domain.PullRequest) (*domain.PullRequest, bool, error) {
	ret := _m.Called(ctx, pr)
	return get[*domain.PullRequest](ret, 0), ret.Bool(1), ret.Error(2)
}

func (_m *PRRepository) GetByID(ctx context.Context, prID int64) (*domain.PullRequest, error) {
	ret := _m.Called(ctx, prID)
	return get[*domain.PullRequest](ret, 0), ret.Error(1)
}

func (_m *PRRepository) LockByID(ctx context.Context, prID int64) (*domain.PullRequest, error) {
	ret := _m.Called(ctx, prID)
	return get[*domain.PullRequest](ret, 0), ret.Error(1)
}

func (_m *PRRepository) UpdateState(ctx context.Context, prID int64, state domain.PRState, changedAt time.Time) error {
	return _m.Called(ctx, prID, state, changedAt).Error(0)
}

func (_m *PRRepository) UpdateChangeStats(ctx context.Context, prID int64, stats domain.ChangeStats) error {
	return _m.Called(ctx, prID, stats).Error(0)
}

func (_m *PRRepository) AddReviewer(ctx context.Context, prID int64, reviewer string, requestedAt time.Time) (bool, error) {
	ret := _m.Called(ctx, prID, reviewer, requestedAt)
	return ret.Bool(0), ret.Error(1)
}

func (_m *PRRepository) RemoveReviewer(ctx context.Context, prID int64, reviewer string) (bool, error) {
	ret := _m.Called(ctx, prID, reviewer)
	return ret.Bool(0), ret.Error(1)
}

func (_m *PRRepository) CountReviewers(ctx context.Context, prID int64) (int, error) {
	ret := _m.Called(ctx, prID)
	return ret.Int(0), ret.Error(1)
}

// ReviewRepository — мок domain.ReviewRepository.
type ReviewRepository struct {
	mock.Mock
}

func (_m *ReviewRepository) Create(ctx context.Context, review *domain.Review) (*domain.Review, bool, error) {
	ret := _m.Called(ctx, review)
	return get[*domain.Review](ret, 0), ret.Bool(1), ret.Error(2)
}

func (_m *ReviewRepository) GetByID(ctx context.Context, reviewID int64) (*domain.Review, error) {
	ret := _m.Called(ctx, reviewID)
	return get[*domain.Review](ret, 0), ret.Error(1)
}

func (_m *ReviewRepository) CountByPR(ctx context.Context, prID int64) (int, error) {
	ret := _m.Called(ctx, prID)
	return ret.Int(0), ret.Error(1)
}

func (_m *ReviewRepository) SumCommentsByPR(ctx context.Context, prID int64) (int, error) {
	ret := _m.Called(ctx, prID)
	return ret.Int(0), ret.Error(1)
}

func (_m *ReviewRepository) FirstSubmittedAt(ctx context.Context, prID int64) (*time.Time, error) {
	ret := _m.Called(ctx, prID)
	return get[*time.Time](ret, 0), ret.Error(1)
}

// ReviewCommentRepository — мок domain.ReviewCommentRepository.
type ReviewCommentRepository struct {
	mock.Mock
}

func (_m *ReviewCommentRepository) Create(ctx context.Context, comment *domain.ReviewComment) (*domain.ReviewComment, bool, error) {
	ret := _m.Called(ctx, comment)
	return get[*domain.ReviewComment](ret, 0), ret.Bool(1), ret.Error(2)
}

func (_m *ReviewCommentRepository) UpdateBody(ctx context.Context, commentID int64, body *string, updatedAt time.Time) (bool, error) {
	ret := _m.Called(ctx, commentID, body, updatedAt)
	return ret.Bool(0), ret.Error(1)
}

func (_m *ReviewCommentRepository) Delete(ctx context.Context, commentID int64) (bool, error) {
	ret := _m.Called(ctx, commentID)
	return ret.Bool(0), ret.Error(1)
}

// CommitRepository — мок domain.CommitRepository.
type CommitRepository struct {
	mock.Mock
}

func (_m *CommitRepository) Create(ctx context.Context, commit *domain.Commit) (*domain.Commit, bool, error) {
	ret := _m.Called(ctx, commit)
	return get[*domain.Commit](ret, 0), ret.Bool(1), ret.Error(2)
}

func (_m *CommitRepository) SumChangesAfter(ctx context.Context, prID int64, after time.Time) (domain.ChangeStats, error) {
	ret := _m.Called(ctx, prID, after)
	return get[domain.ChangeStats](ret, 0), ret.Error(1)
}

// LifecycleRepository — мок domain.LifecycleRepository.
type LifecycleRepository struct {
	mock.Mock
}

func (_m *LifecycleRepository) FindByPRID(ctx context.Context, prID int64) (*domain.PullRequestLifecycle, error) {
	ret := _m.Called(ctx, prID)
	return get[*domain.PullRequestLifecycle](ret, 0), ret.Error(1)
}

func (_m *LifecycleRepository) ExistsByPRID(ctx context.Context, prID int64) (bool, error) {
	ret := _m.Called(ctx, prID)
	return ret.Bool(0), ret.Error(1)
}

func (_m *LifecycleRepository) Save(ctx context.Context, lc *domain.PullRequestLifecycle) error {
	return _m.Called(ctx, lc).Error(0)
}

// BottleneckRepository — мок domain.BottleneckRepository.
type BottleneckRepository struct {
	mock.Mock
}

func (_m *BottleneckRepository) FindByPRID(ctx context.Context, prID int64) (*domain.PullRequestBottleneck, error) {
	ret := _m.Called(ctx, prID)
	return get[*domain.PullRequestBottleneck](ret, 0), ret.Error(1)
}

func (_m *BottleneckRepository) ExistsByPRID(ctx context.Context, prID int64) (bool, error) {
	ret := _m.Called(ctx, prID)
	return ret.Bool(0), ret.Error(1)
}

func (_m *BottleneckRepository) Save(ctx context.Context, b *domain.PullRequestBottleneck) error {
	return _m.Called(ctx, b).Error(0)
}

// ReviewSessionRepository — мок domain.ReviewSessionRepository.
type ReviewSessionRepository struct {
	mock.Mock
}

func (_m *ReviewSessionRepository) Find(ctx context.Context, prID int64, reviewer string) (*domain.ReviewSession, error) {
	ret := _m.Called(ctx, prID, reviewer)
	return get[*domain.ReviewSession](ret, 0), ret.Error(1)
}

func (_m *ReviewSessionRepository) Exists(ctx context.Context, prID int64, reviewer string) (bool, error) {
	ret := _m.Called(ctx, prID, reviewer)
	return ret.Bool(0), ret.Error(1)
}

func (_m *ReviewSessionRepository) ListByPRID(ctx context.Context, prID int64) ([]*domain.ReviewSession, error) {
	ret := _m.Called(ctx, prID)
	return get[[]*domain.ReviewSession](ret, 0), ret.Error(1)
}

func (_m *ReviewSessionRepository) Save(ctx context.Context, s *domain.ReviewSession) error {
	return _m.Called(ctx, s).Error(0)
}

// ResponseTimeRepository — мок domain.ResponseTimeRepository.
type ResponseTimeRepository struct {
	mock.Mock
}

func (_m *ResponseTimeRepository) FindByPRID(ctx context.Context, prID int64) (*domain.ReviewResponseTime, error) {
	ret := _m.Called(ctx, prID)
	return get[*domain.ReviewResponseTime](ret, 0), ret.Error(1)
}

func (_m *ResponseTimeRepository) ExistsByPRID(ctx context.Context, prID int64) (bool, error) {
	ret := _m.Called(ctx, prID)
	return ret.Bool(0), ret.Error(1)
}

func (_m *ResponseTimeRepository) Save(ctx context.Context, rt *domain.ReviewResponseTime) error {
	return _m.Called(ctx, rt).Error(0)
}

// ReviewActivityRepository — мок domain.ReviewActivityRepository.
type ReviewActivityRepository struct {
	mock.Mock
}

func (_m *ReviewActivityRepository) FindByPRID(ctx context.Context, prID int64) (*domain.ReviewActivity, error) {
	ret := _m.Called(ctx, prID)
	return get[*domain.ReviewActivity](ret, 0), ret.Error(1)
}

func (_m *ReviewActivityRepository) ExistsByPRID(ctx context.Context, prID int64) (bool, error) {
	ret := _m.Called(ctx, prID)
	return ret.Bool(0), ret.Error(1)
}

func (_m *ReviewActivityRepository) Save(ctx context.Context, a *domain.ReviewActivity) error {
	return _m.Called(ctx, a).Error(0)
}

// CommentAnalysisRepository — мок domain.CommentAnalysisRepository.
type CommentAnalysisRepository struct {
	mock.Mock
}

func (_m *CommentAnalysisRepository) FindByCommentID(ctx context.Context, commentID int64) (*domain.CommentAnalysis, error) {
	ret := _m.Called(ctx, commentID)
	return get[*domain.CommentAnalysis](ret, 0), ret.Error(1)
}

func (_m *CommentAnalysisRepository) ExistsByCommentID(ctx context.Context, commentID int64) (bool, error) {
	ret := _m.Called(ctx, commentID)
	return ret.Bool(0), ret.Error(1)
}

func (_m *CommentAnalysisRepository) ListByPRID(ctx context.Context, prID int64) ([]*domain.CommentAnalysis, error) {
	ret := _m.Called(ctx, prID)
	return get[[]*domain.CommentAnalysis](ret, 0), ret.Error(1)
}

func (_m *CommentAnalysisRepository) Save(ctx context.Context, a *domain.CommentAnalysis) error {
	return _m.Called(ctx, a).Error(0)
}

func (_m *CommentAnalysisRepository) Delete(ctx context.Context, commentID int64) error {
	return _m.Called(ctx, commentID).Error(0)
}

// SnapshotRepository — мок domain.SnapshotRepository.
type SnapshotRepository struct {
	mock.Mock
}

func (_m *SnapshotRepository) FindByPRID(ctx context.Context, prID int64) (*domain.OpenedSnapshot, error) {
	ret := _m.Called(ctx, prID)
	return get[*domain.OpenedSnapshot](ret, 0), ret.Error(1)
}

func (_m *SnapshotRepository) ExistsByPRID(ctx context.Context, prID int64) (bool, error) {
	ret := _m.Called(ctx, prID)
	return ret.Bool(0), ret.Error(1)
}

func (_m *SnapshotRepository) Save(ctx context.Context, s *domain.OpenedSnapshot) (bool, error) {
	ret := _m.Called(ctx, s)
	return ret.Bool(0), ret.Error(1)
}

// get достает значение из Return, допуская nil.
func get[T any](args mock.Arguments, i int) T {
	var zero T
	v, ok := args.Get(i).(T)
	if !ok {
		return zero
	}
	return v
}
