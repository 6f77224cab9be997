package domain

import (
	"context"
	"time"
)

// PRState — состояние пул-реквеста.
type PRState string

const (
	PRStateOpen   PRState = "OPEN"
	PRStateClosed PRState = "CLOSED"
	PRStateMerged PRState = "MERGED"
)

func (s PRState) Valid() bool {
	switch s {
	case PRStateOpen, PRStateClosed, PRStateMerged:
		return true
	}
	return false
}

// IsClosure сообщает, завершает ли состояние жизненный цикл пул-реквеста.
func (s PRState) IsClosure() bool {
	return s == PRStateClosed || s == PRStateMerged
}

// ReviewState — итог отправленного ревью.
type ReviewState string

const (
	ReviewApproved         ReviewState = "APPROVED"
	ReviewChangesRequested ReviewState = "CHANGES_REQUESTED"
	ReviewCommented        ReviewState = "COMMENTED"
)

func (s ReviewState) Valid() bool {
	switch s {
	case ReviewApproved, ReviewChangesRequested, ReviewCommented:
		return true
	}
	return false
}

// PullRequest представляет запись метаданных пул-реквеста.
type PullRequest struct {
	ID           int64
	Author       string
	State        PRState
	Additions    int
	Deletions    int
	ChangedFiles int
	CommitCount  int
	CreatedAt    time.Time
	ClosedAt     *time.Time
	MergedAt     *time.Time
}

// Review — отправленное ревью.
type Review struct {
	ID            int64
	PullRequestID int64
	Reviewer      string
	State         ReviewState
	CommentCount  int
	SubmittedAt   time.Time
}

// ReviewComment — комментарий к строке кода внутри ревью.
type ReviewComment struct {
	ID            int64
	ReviewID      int64
	PullRequestID int64
	Reviewer      string
	Body          *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Commit — коммит в ветке пул-реквеста.
type Commit struct {
	SHA           string
	PullRequestID int64
	Additions     int
	Deletions     int
	CommittedAt   time.Time
}

// PRRepository определяет контракт для работы с метаданными пул-реквестов.
// Методы Create* возвращают уже существующую запись и created=false при повторной доставке.
type PRRepository interface {
	Create(ctx context.Context, pr *PullRequest) (*PullRequest, bool, error)
	GetByID(ctx context.Context, prID int64) (*PullRequest, error)
	LockByID(ctx context.Context, prID int64) (*PullRequest, error)
	UpdateState(ctx context.Context, prID int64, state PRState, changedAt time.Time) error
	UpdateChangeStats(ctx context.Context, prID int64, stats ChangeStats) error
	AddReviewer(ctx context.Context, prID int64, reviewer string, requestedAt time.Time) (bool, error)
	RemoveReviewer(ctx context.Context, prID int64, reviewer string) (bool, error)
	CountReviewers(ctx context.Context, prID int64) (int, error)
}

// ReviewRepository определяет контракт для работы с ревью.
type ReviewRepository interface {
	Create(ctx context.Context, review *Review) (*Review, bool, error)
	GetByID(ctx context.Context, reviewID int64) (*Review, error)
	CountByPR(ctx context.Context, prID int64) (int, error)
	SumCommentsByPR(ctx context.Context, prID int64) (int, error)
	FirstSubmittedAt(ctx context.Context, prID int64) (*time.Time, error)
}

// ReviewCommentRepository определяет контракт для работы с комментариями ревью.
type ReviewCommentRepository interface {
	Create(ctx context.Context, comment *ReviewComment) (*ReviewComment, bool, error)
	UpdateBody(ctx context.Context, commentID int64, body *string, updatedAt time.Time) (bool, error)
	Delete(ctx context.Context, commentID int64) (bool, error)
}

// CommitRepository определяет контракт для работы с коммитами.
type CommitRepository interface {
	Create(ctx context.Context, commit *Commit) (*Commit, bool, error)
	SumChangesAfter(ctx context.Context, prID int64, after time.Time) (ChangeStats, error)
}
