package usecase

import (
	"context"

	"pr-review-analytics/internal/domain"

	"github.com/sirupsen/logrus"
)

// Repositories — хранилища, с которыми работает маршрутизатор событий.
type Repositories struct {
	PullRequests  domain.PRRepository
	Reviews       domain.ReviewRepository
	Comments      domain.ReviewCommentRepository
	Commits       domain.CommitRepository
	Lifecycles    domain.LifecycleRepository
	Bottlenecks   domain.BottleneckRepository
	Sessions      domain.ReviewSessionRepository
	ResponseTimes domain.ResponseTimeRepository
	Activities    domain.ReviewActivityRepository
	Analyses      domain.CommentAnalysisRepository
	Snapshots     domain.SnapshotRepository
}

// EventUseCase применяет событие ко всем выводящим компонентам в одной транзакции.
type EventUseCase struct {
	tx     domain.TxManager
	logger *logrus.Logger

	prs      domain.PRRepository
	reviews  domain.ReviewRepository
	comments domain.ReviewCommentRepository
	commits  domain.CommitRepository

	lifecycle    *LifecycleDeriver
	bottleneck   *BottleneckDeriver
	sessions     *SessionAggregator
	responseTime *ResponseTimeDeriver
	activity     *ActivityAggregator
	analyzer     *CommentAnalyzer
	snapshots    *SnapshotCalculator
}

// NewEventUseCase создает новый экземпляр EventUseCase.
func NewEventUseCase(tx domain.TxManager, repos Repositories, logger *logrus.Logger) domain.EventUseCase {
	return &EventUseCase{
		tx:     tx,
		logger: logger,

		prs:      repos.PullRequests,
		reviews:  repos.Reviews,
		comments: repos.Comments,
		commits:  repos.Commits,

		lifecycle:    NewLifecycleDeriver(repos.Lifecycles, repos.Reviews),
		bottleneck:   NewBottleneckDeriver(repos.Bottlenecks),
		sessions:     NewSessionAggregator(repos.Sessions),
		responseTime: NewResponseTimeDeriver(repos.ResponseTimes),
		activity:     NewActivityAggregator(repos.Activities, repos.PullRequests, repos.Reviews, repos.Commits),
		analyzer:     NewCommentAnalyzer(repos.Analyses),
		snapshots:    NewSnapshotCalculator(repos.Snapshots),
	}
}

// outcome — что маршрутизатор узнал о событии внутри транзакции.
type outcome struct {
	prID      int64
	duplicate bool
}

// Handle проверяет событие и применяет его. Повторная доставка не меняет производные строки.
func (uc *EventUseCase) Handle(ctx context.Context, deliveryID string, event domain.Event) (domain.HandleResult, error) {
	if event == nil {
		return domain.HandleResult{}, domain.ErrInvalidPayload
	}

	result := domain.HandleResult{EventType: event.Type()}
	entry := uc.logger.WithFields(logrus.Fields{
		"event_type":  event.Type(),
		"delivery_id": deliveryID,
	})

	if err := event.Validate(); err != nil {
		entry.WithError(err).Warn("Event rejected")
		return result, err
	}

	var out outcome
	err := uc.tx.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = uc.route(ctx, event)
		return err
	})

	if out.prID != 0 {
		entry = entry.WithField("pull_request_id", out.prID)
	}
	if err != nil {
		if domain.IsOrderingViolation(err) {
			entry.WithError(err).Warn("Event arrived before its parent, redelivery required")
		} else {
			entry.WithError(err).Error("Failed to apply event")
		}
		return result, err
	}

	result.Duplicate = out.duplicate
	if out.duplicate {
		entry.WithField("duplicate", true).Debug("Event already applied")
	} else {
		entry.Info("Event applied")
	}
	return result, nil
}

func (uc *EventUseCase) route(ctx context.Context, event domain.Event) (outcome, error) {
	switch ev := event.(type) {
	case domain.PullRequestOpened:
		return uc.onOpened(ctx, ev)
	case domain.PullRequestSynchronized:
		return uc.onSynchronized(ctx, ev)
	case domain.PullRequestStateChanged:
		return uc.onStateChanged(ctx, ev)
	case domain.ReviewSubmitted:
		return uc.onReviewSubmitted(ctx, ev)
	case domain.ReviewerAdded:
		return uc.onReviewerAdded(ctx, ev)
	case domain.ReviewerRemoved:
		return uc.onReviewerRemoved(ctx, ev)
	case domain.ReviewCommentCreated:
		return uc.onCommentCreated(ctx, ev)
	case domain.ReviewCommentEdited:
		return uc.onCommentEdited(ctx, ev)
	case domain.ReviewCommentDeleted:
		return uc.onCommentDeleted(ctx, ev)
	case domain.CommitPushed:
		return uc.onCommitPushed(ctx, ev)
	default:
		return outcome{}, domain.ErrUnknownEventType
	}
}

func (uc *EventUseCase) onOpened(ctx context.Context, ev domain.PullRequestOpened) (outcome, error) {
	out := outcome{prID: ev.PullRequestID}

	_, created, err := uc.prs.Create(ctx, &domain.PullRequest{
		ID:           ev.PullRequestID,
		Author:       ev.Author,
		State:        domain.PRStateOpen,
		Additions:    ev.ChangeStats.Additions,
		Deletions:    ev.ChangeStats.Deletions,
		ChangedFiles: ev.ChangeStats.ChangedFiles,
		CommitCount:  ev.CommitCount,
		CreatedAt:    ev.CreatedAt,
	})
	if err != nil {
		return out, err
	}

	saved, err := uc.snapshots.OnOpened(ctx, ev)
	if err != nil {
		return out, err
	}

	out.duplicate = !created && !saved
	return out, nil
}

func (uc *EventUseCase) onSynchronized(ctx context.Context, ev domain.PullRequestSynchronized) (outcome, error) {
	out := outcome{prID: ev.PullRequestID}

	pr, err := uc.prs.LockByID(ctx, ev.PullRequestID)
	if err != nil {
		return out, err
	}

	if err := uc.prs.UpdateChangeStats(ctx, pr.ID, ev.ChangeStats); err != nil {
		return out, err
	}
	pr.Additions = ev.ChangeStats.Additions
	pr.Deletions = ev.ChangeStats.Deletions
	pr.ChangedFiles = ev.ChangeStats.ChangedFiles

	return out, uc.activity.OnSynchronized(ctx, pr, ev.ChangeStats)
}

func (uc *EventUseCase) onStateChanged(ctx context.Context, ev domain.PullRequestStateChanged) (outcome, error) {
	out := outcome{prID: ev.PullRequestID}

	pr, err := uc.prs.LockByID(ctx, ev.PullRequestID)
	if err != nil {
		return out, err
	}

	if err := uc.prs.UpdateState(ctx, pr.ID, ev.NewState, ev.ChangedAt); err != nil {
		return out, err
	}

	if !ev.NewState.IsClosure() {
		return out, nil
	}

	changed, err := uc.lifecycle.OnStateChanged(ctx, pr, ev)
	if err != nil {
		return out, err
	}
	if !changed {
		out.duplicate = true
		return out, nil
	}

	if err := uc.activity.OnClosed(ctx, pr); err != nil {
		return out, err
	}

	if ev.NewState == domain.PRStateMerged {
		if err := uc.bottleneck.OnMerge(ctx, pr.ID, ev.ChangedAt); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (uc *EventUseCase) onReviewSubmitted(ctx context.Context, ev domain.ReviewSubmitted) (outcome, error) {
	out := outcome{prID: ev.PullRequestID}

	pr, err := uc.prs.LockByID(ctx, ev.PullRequestID)
	if err != nil {
		return out, err
	}

	review, created, err := uc.reviews.Create(ctx, &domain.Review{
		ID:            ev.ReviewID,
		PullRequestID: ev.PullRequestID,
		Reviewer:      ev.Reviewer,
		State:         ev.State,
		CommentCount:  ev.CommentCount,
		SubmittedAt:   ev.SubmittedAt,
	})
	if err != nil {
		return out, err
	}
	if !created {
		out.duplicate = true
		return out, nil
	}

	if err := uc.bottleneck.OnReview(ctx, pr, review); err != nil {
		return out, err
	}
	if err := uc.sessions.OnReview(ctx, review); err != nil {
		return out, err
	}
	if err := uc.responseTime.OnReview(ctx, review); err != nil {
		return out, err
	}
	return out, uc.activity.OnReview(ctx, pr, review)
}

func (uc *EventUseCase) onReviewerAdded(ctx context.Context, ev domain.ReviewerAdded) (outcome, error) {
	out := outcome{prID: ev.PullRequestID}

	pr, err := uc.prs.LockByID(ctx, ev.PullRequestID)
	if err != nil {
		return out, err
	}

	added, err := uc.prs.AddReviewer(ctx, pr.ID, ev.Reviewer, ev.RequestedAt)
	if err != nil {
		return out, err
	}
	if !added {
		out.duplicate = true
		return out, nil
	}

	return out, uc.activity.OnReviewerAdded(ctx, pr)
}

func (uc *EventUseCase) onReviewerRemoved(ctx context.Context, ev domain.ReviewerRemoved) (outcome, error) {
	out := outcome{prID: ev.PullRequestID}

	pr, err := uc.prs.LockByID(ctx, ev.PullRequestID)
	if err != nil {
		return out, err
	}

	removed, err := uc.prs.RemoveReviewer(ctx, pr.ID, ev.Reviewer)
	if err != nil {
		return out, err
	}
	out.duplicate = !removed
	return out, nil
}

func (uc *EventUseCase) onCommentCreated(ctx context.Context, ev domain.ReviewCommentCreated) (outcome, error) {
	review, pr, err := uc.lockReviewParent(ctx, ev.ReviewID)
	if err != nil {
		return outcome{}, err
	}
	out := outcome{prID: pr.ID}

	comment, created, err := uc.comments.Create(ctx, &domain.ReviewComment{
		ID:            ev.ReviewCommentID,
		ReviewID:      review.ID,
		PullRequestID: pr.ID,
		Reviewer:      review.Reviewer,
		Body:          ev.Body,
		CreatedAt:     ev.UpdatedAt,
		UpdatedAt:     ev.UpdatedAt,
	})
	if err != nil {
		return out, err
	}
	if !created {
		out.duplicate = true
		return out, nil
	}

	if err := uc.analyzer.OnCreated(ctx, comment); err != nil {
		return out, err
	}
	return out, uc.sessions.OnComment(ctx, comment)
}

func (uc *EventUseCase) onCommentEdited(ctx context.Context, ev domain.ReviewCommentEdited) (outcome, error) {
	_, pr, err := uc.lockReviewParent(ctx, ev.ReviewID)
	if err != nil {
		return outcome{}, err
	}
	out := outcome{prID: pr.ID}

	updated, err := uc.comments.UpdateBody(ctx, ev.ReviewCommentID, ev.Body, ev.UpdatedAt)
	if err != nil {
		return out, err
	}
	if !updated {
		out.duplicate = true
		return out, nil
	}

	return out, uc.analyzer.OnEdited(ctx, ev.ReviewCommentID, ev.Body)
}

func (uc *EventUseCase) onCommentDeleted(ctx context.Context, ev domain.ReviewCommentDeleted) (outcome, error) {
	_, pr, err := uc.lockReviewParent(ctx, ev.ReviewID)
	if err != nil {
		return outcome{}, err
	}
	out := outcome{prID: pr.ID}

	deleted, err := uc.comments.Delete(ctx, ev.ReviewCommentID)
	if err != nil {
		return out, err
	}
	if !deleted {
		out.duplicate = true
		return out, nil
	}

	return out, uc.analyzer.OnDeleted(ctx, ev.ReviewCommentID)
}

func (uc *EventUseCase) onCommitPushed(ctx context.Context, ev domain.CommitPushed) (outcome, error) {
	out := outcome{prID: ev.PullRequestID}

	pr, err := uc.prs.LockByID(ctx, ev.PullRequestID)
	if err != nil {
		return out, err
	}

	commit, created, err := uc.commits.Create(ctx, &domain.Commit{
		SHA:           ev.SHA,
		PullRequestID: ev.PullRequestID,
		Additions:     ev.Additions,
		Deletions:     ev.Deletions,
		CommittedAt:   ev.CommittedAt,
	})
	if err != nil {
		return out, err
	}
	if !created {
		out.duplicate = true
		return out, nil
	}

	if err := uc.responseTime.OnCommit(ctx, commit); err != nil {
		return out, err
	}
	return out, uc.activity.OnCommit(ctx, pr)
}

// lockReviewParent находит ревью комментария и блокирует его пул-реквест.
func (uc *EventUseCase) lockReviewParent(ctx context.Context, reviewID int64) (*domain.Review, *domain.PullRequest, error) {
	review, err := uc.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, nil, err
	}

	pr, err := uc.prs.LockByID(ctx, review.PullRequestID)
	if err != nil {
		return nil, nil, err
	}
	return review, pr, nil
}
