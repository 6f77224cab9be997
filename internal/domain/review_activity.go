package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// ReviewActivity — агрегированная активность ревью по пул-реквесту.
type ReviewActivity struct {
	PullRequestID            int64
	ReviewRoundTrips         int
	TotalCommentCount        int
	TotalAdditions           int
	TotalDeletions           int
	CodeAdditionsAfterReview int
	CodeDeletionsAfterReview int
	AdditionalReviewerCount  int
}

// ActivitySeed — счетчики из метаданных, по которым строится строка,
// если событие застало пул-реквест без нее.
type ActivitySeed struct {
	ReviewCount        int
	CommentCount       int
	ReviewerCount      int
	Totals             ChangeStats
	ChangesAfterReview ChangeStats
}

// ReviewActivityRepository определяет контракт хранилища активности ревью.
// FindByPRID возвращает nil без ошибки, если строки нет.
type ReviewActivityRepository interface {
	FindByPRID(ctx context.Context, prID int64) (*ReviewActivity, error)
	ExistsByPRID(ctx context.Context, prID int64) (bool, error)
	Save(ctx context.Context, a *ReviewActivity) error
}

// CreateActivityWithoutReview создает строку для пул-реквеста, закрытого без ревью.
func CreateActivityWithoutReview(prID int64, additions, deletions int) (ReviewActivity, error) {
	if prID <= 0 {
		return ReviewActivity{}, ErrInvalidPRID
	}
	a := ReviewActivity{PullRequestID: prID}
	return a.UpdateTotalChanges(additions, deletions)
}

// NewActivityFromSeed строит строку по уже записанным ревью и изменениям.
func NewActivityFromSeed(prID int64, seed ActivitySeed) (ReviewActivity, error) {
	if prID <= 0 {
		return ReviewActivity{}, ErrInvalidPRID
	}
	if seed.ReviewCount < 0 || seed.CommentCount < 0 || seed.ReviewerCount < 0 {
		return ReviewActivity{}, &PreconditionError{Field: "seed", Reason: "counts must not be negative"}
	}
	a := ReviewActivity{
		PullRequestID:           prID,
		ReviewRoundTrips:        seed.ReviewCount,
		TotalCommentCount:       seed.CommentCount,
		AdditionalReviewerCount: seed.ReviewerCount,
	}
	a, err := a.UpdateTotalChanges(seed.Totals.Additions, seed.Totals.Deletions)
	if err != nil {
		return a, err
	}
	return a.UpdateCodeChangesAfterReview(seed.ChangesAfterReview.Additions, seed.ChangesAfterReview.Deletions)
}

func (a ReviewActivity) UpdateOnNewReview(commentCount int) (ReviewActivity, error) {
	if commentCount < 0 {
		return a, &PreconditionError{Field: "commentCount", Reason: "must not be negative"}
	}
	a.ReviewRoundTrips++
	a.TotalCommentCount += commentCount
	return a, nil
}

// UpdateCodeChangesAfterReview заменяет (не накапливает) объем изменений после первого ревью.
func (a ReviewActivity) UpdateCodeChangesAfterReview(additions, deletions int) (ReviewActivity, error) {
	if additions < 0 || deletions < 0 {
		return a, ErrNegativeChangeSum
	}
	a.CodeAdditionsAfterReview = additions
	a.CodeDeletionsAfterReview = deletions
	return a, nil
}

func (a ReviewActivity) UpdateOnReviewerAdded() ReviewActivity {
	a.AdditionalReviewerCount++
	return a
}

// UpdateTotalChanges заменяет итоговые строки изменений пул-реквеста.
func (a ReviewActivity) UpdateTotalChanges(additions, deletions int) (ReviewActivity, error) {
	if additions < 0 || deletions < 0 {
		return a, ErrNegativeChangeSum
	}
	a.TotalAdditions = additions
	a.TotalDeletions = deletions
	return a, nil
}

func (a ReviewActivity) TotalChanges() int {
	return a.TotalAdditions + a.TotalDeletions
}

// CommentDensity — комментарии на строку изменений, 6 знаков, half-up.
func (a ReviewActivity) CommentDensity() decimal.Decimal {
	return ratio(int64(a.TotalCommentCount), int64(a.TotalChanges()), densityScale)
}

func (a ReviewActivity) IsHighDensity(policy AnalysisPolicy) bool {
	return a.CommentDensity().GreaterThanOrEqual(policy.HighDensityThreshold)
}

func (a ReviewActivity) HasReview() bool {
	return a.ReviewRoundTrips > 0
}
