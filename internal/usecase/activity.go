package usecase

import (
	"context"

	"pr-review-analytics/internal/domain"
)

// ActivityAggregator ведет агрегированную активность ревью по пул-реквесту.
// Строка, которой еще нет, строится из уже записанных метаданных, поэтому
// событие, вызвавшее построение, в нее уже включено.
type ActivityAggregator struct {
	activities domain.ReviewActivityRepository
	prs        domain.PRRepository
	reviews    domain.ReviewRepository
	commits    domain.CommitRepository
}

// NewActivityAggregator создает новый экземпляр ActivityAggregator.
func NewActivityAggregator(
	activities domain.ReviewActivityRepository,
	prs domain.PRRepository,
	reviews domain.ReviewRepository,
	commits domain.CommitRepository,
) *ActivityAggregator {
	return &ActivityAggregator{
		activities: activities,
		prs:        prs,
		reviews:    reviews,
		commits:    commits,
	}
}

// OnReview учитывает новое ревью и пересчитывает изменения кода после первого ревью.
func (a *ActivityAggregator) OnReview(ctx context.Context, pr *domain.PullRequest, review *domain.Review) error {
	activity, seeded, err := a.ensure(ctx, pr)
	if err != nil {
		return err
	}

	if !seeded {
		if activity, err = activity.UpdateOnNewReview(review.CommentCount); err != nil {
			return err
		}
		if activity, err = a.refreshChurn(ctx, activity); err != nil {
			return err
		}
	}
	return a.activities.Save(ctx, &activity)
}

// OnReviewerAdded учитывает нового запрошенного ревьювера.
func (a *ActivityAggregator) OnReviewerAdded(ctx context.Context, pr *domain.PullRequest) error {
	activity, seeded, err := a.ensure(ctx, pr)
	if err != nil {
		return err
	}

	if !seeded {
		activity = activity.UpdateOnReviewerAdded()
	}
	return a.activities.Save(ctx, &activity)
}

// OnClosed создает строку при закрытии или обновляет итоги изменений в существующей.
func (a *ActivityAggregator) OnClosed(ctx context.Context, pr *domain.PullRequest) error {
	prior, err := a.activities.FindByPRID(ctx, pr.ID)
	if err != nil {
		return err
	}

	var next domain.ReviewActivity
	switch {
	case prior != nil:
		next, err = prior.UpdateTotalChanges(pr.Additions, pr.Deletions)
	default:
		reviewCount, cerr := a.reviews.CountByPR(ctx, pr.ID)
		if cerr != nil {
			return cerr
		}
		if reviewCount == 0 {
			next, err = domain.CreateActivityWithoutReview(pr.ID, pr.Additions, pr.Deletions)
		} else {
			next, err = a.fromSeed(ctx, pr)
		}
	}
	if err != nil {
		return err
	}

	return a.activities.Save(ctx, &next)
}

// OnSynchronized заменяет итоги изменений. Без строки ничего не делает.
func (a *ActivityAggregator) OnSynchronized(ctx context.Context, pr *domain.PullRequest, stats domain.ChangeStats) error {
	prior, err := a.activities.FindByPRID(ctx, pr.ID)
	if err != nil || prior == nil {
		return err
	}

	next, err := prior.UpdateTotalChanges(stats.Additions, stats.Deletions)
	if err != nil {
		return err
	}
	return a.activities.Save(ctx, &next)
}

// OnCommit пересчитывает изменения кода после первого ревью. Без строки ничего не делает.
func (a *ActivityAggregator) OnCommit(ctx context.Context, pr *domain.PullRequest) error {
	prior, err := a.activities.FindByPRID(ctx, pr.ID)
	if err != nil || prior == nil {
		return err
	}

	next, err := a.refreshChurn(ctx, *prior)
	if err != nil {
		return err
	}
	return a.activities.Save(ctx, &next)
}

// ensure возвращает строку активности; seeded=true, если она только что построена из метаданных.
func (a *ActivityAggregator) ensure(ctx context.Context, pr *domain.PullRequest) (domain.ReviewActivity, bool, error) {
	prior, err := a.activities.FindByPRID(ctx, pr.ID)
	if err != nil {
		return domain.ReviewActivity{}, false, err
	}
	if prior != nil {
		return *prior, false, nil
	}

	activity, err := a.fromSeed(ctx, pr)
	if err != nil {
		return domain.ReviewActivity{}, false, err
	}
	return activity, true, nil
}

func (a *ActivityAggregator) fromSeed(ctx context.Context, pr *domain.PullRequest) (domain.ReviewActivity, error) {
	seed, err := a.seed(ctx, pr)
	if err != nil {
		return domain.ReviewActivity{}, err
	}
	return domain.NewActivityFromSeed(pr.ID, seed)
}

func (a *ActivityAggregator) seed(ctx context.Context, pr *domain.PullRequest) (domain.ActivitySeed, error) {
	reviewCount, err := a.reviews.CountByPR(ctx, pr.ID)
	if err != nil {
		return domain.ActivitySeed{}, err
	}

	commentCount, err := a.reviews.SumCommentsByPR(ctx, pr.ID)
	if err != nil {
		return domain.ActivitySeed{}, err
	}

	reviewerCount, err := a.prs.CountReviewers(ctx, pr.ID)
	if err != nil {
		return domain.ActivitySeed{}, err
	}

	churn, err := a.churnAfterFirstReview(ctx, pr.ID)
	if err != nil {
		return domain.ActivitySeed{}, err
	}

	return domain.ActivitySeed{
		ReviewCount:        reviewCount,
		CommentCount:       commentCount,
		ReviewerCount:      reviewerCount,
		Totals:             domain.ChangeStats{Additions: pr.Additions, Deletions: pr.Deletions, ChangedFiles: pr.ChangedFiles},
		ChangesAfterReview: churn,
	}, nil
}

func (a *ActivityAggregator) refreshChurn(ctx context.Context, activity domain.ReviewActivity) (domain.ReviewActivity, error) {
	churn, err := a.churnAfterFirstReview(ctx, activity.PullRequestID)
	if err != nil {
		return activity, err
	}
	return activity.UpdateCodeChangesAfterReview(churn.Additions, churn.Deletions)
}

// churnAfterFirstReview суммирует строки коммитов, сделанных после самого раннего ревью.
func (a *ActivityAggregator) churnAfterFirstReview(ctx context.Context, prID int64) (domain.ChangeStats, error) {
	first, err := a.reviews.FirstSubmittedAt(ctx, prID)
	if err != nil || first == nil {
		return domain.ChangeStats{}, err
	}
	return a.commits.SumChangesAfter(ctx, prID, *first)
}
