package domain

import "time"

// EventType — тип доменного события, полученного из вебхука.
type EventType string

const (
	EventPullRequestOpened       EventType = "pull_request_opened"
	EventPullRequestSynchronized EventType = "pull_request_synchronized"
	EventPullRequestStateChanged EventType = "pull_request_state_changed"
	EventReviewSubmitted         EventType = "review_submitted"
	EventReviewerAdded           EventType = "reviewer_added"
	EventReviewerRemoved         EventType = "reviewer_removed"
	EventReviewCommentCreated    EventType = "review_comment_created"
	EventReviewCommentEdited     EventType = "review_comment_edited"
	EventReviewCommentDeleted    EventType = "review_comment_deleted"
	EventCommitPushed            EventType = "commit_pushed"
)

// Event — неизменяемая запись о произошедшем в системе ревью.
type Event interface {
	Type() EventType
	Validate() error
}

// ChangeStats — суммарная статистика изменений пул-реквеста.
type ChangeStats struct {
	Additions    int
	Deletions    int
	ChangedFiles int
}

// ChangedFile — файл, затронутый пул-реквестом.
type ChangedFile struct {
	Filename  string
	Status    FileChangeType
	Additions int
	Deletions int
}

type PullRequestOpened struct {
	PullRequestID int64
	Author        string
	ChangeStats   ChangeStats
	CommitCount   int
	CreatedAt     time.Time
	Files         []ChangedFile
}

func (e PullRequestOpened) Type() EventType { return EventPullRequestOpened }

func (e PullRequestOpened) Validate() error {
	if e.PullRequestID <= 0 {
		return ErrInvalidPRID
	}
	if e.CreatedAt.IsZero() {
		return required("createdAt")
	}
	if err := e.ChangeStats.validate(); err != nil {
		return err
	}
	if e.CommitCount < 0 {
		return &PreconditionError{Field: "commitCount", Reason: "must not be negative"}
	}
	for _, f := range e.Files {
		if !f.Status.Valid() {
			return &PreconditionError{Field: "files.status", Reason: "unknown change type " + string(f.Status)}
		}
	}
	return nil
}

// PullRequestSynchronized приходит после пуша в ветку пул-реквеста с новыми итогами изменений.
type PullRequestSynchronized struct {
	PullRequestID int64
	ChangeStats   ChangeStats
	SyncedAt      time.Time
}

func (e PullRequestSynchronized) Type() EventType { return EventPullRequestSynchronized }

func (e PullRequestSynchronized) Validate() error {
	if e.PullRequestID <= 0 {
		return ErrInvalidPRID
	}
	if e.SyncedAt.IsZero() {
		return required("syncedAt")
	}
	return e.ChangeStats.validate()
}

type PullRequestStateChanged struct {
	PullRequestID int64
	PreviousState PRState
	NewState      PRState
	ChangedAt     time.Time
}

func (e PullRequestStateChanged) Type() EventType { return EventPullRequestStateChanged }

func (e PullRequestStateChanged) Validate() error {
	if e.PullRequestID <= 0 {
		return ErrInvalidPRID
	}
	if !e.NewState.Valid() {
		return ErrUnknownState
	}
	if e.PreviousState != "" && !e.PreviousState.Valid() {
		return ErrUnknownState
	}
	if e.ChangedAt.IsZero() {
		return required("changedAt")
	}
	return nil
}

type ReviewSubmitted struct {
	ReviewID      int64
	PullRequestID int64
	Reviewer      string
	State         ReviewState
	CommentCount  int
	SubmittedAt   time.Time
}

func (e ReviewSubmitted) Type() EventType { return EventReviewSubmitted }

func (e ReviewSubmitted) Validate() error {
	if e.ReviewID <= 0 {
		return required("reviewId")
	}
	if e.PullRequestID <= 0 {
		return ErrInvalidPRID
	}
	if e.Reviewer == "" {
		return ErrInvalidReviewer
	}
	if !e.State.Valid() {
		return ErrUnknownState
	}
	if e.CommentCount < 0 {
		return &PreconditionError{Field: "commentCount", Reason: "must not be negative"}
	}
	if e.SubmittedAt.IsZero() {
		return required("submittedAt")
	}
	return nil
}

type ReviewerAdded struct {
	PullRequestID int64
	Reviewer      string
	RequestedAt   time.Time
}

func (e ReviewerAdded) Type() EventType { return EventReviewerAdded }

func (e ReviewerAdded) Validate() error {
	return validateReviewerChange(e.PullRequestID, e.Reviewer, e.RequestedAt)
}

type ReviewerRemoved struct {
	PullRequestID int64
	Reviewer      string
	RemovedAt     time.Time
}

func (e ReviewerRemoved) Type() EventType { return EventReviewerRemoved }

func (e ReviewerRemoved) Validate() error {
	return validateReviewerChange(e.PullRequestID, e.Reviewer, e.RemovedAt)
}

type ReviewCommentCreated struct {
	ReviewCommentID int64
	ReviewID        int64
	Body            *string
	UpdatedAt       time.Time
}

func (e ReviewCommentCreated) Type() EventType { return EventReviewCommentCreated }

func (e ReviewCommentCreated) Validate() error {
	return validateCommentChange(e.ReviewCommentID, e.ReviewID, e.UpdatedAt)
}

type ReviewCommentEdited struct {
	ReviewCommentID int64
	ReviewID        int64
	Body            *string
	UpdatedAt       time.Time
}

func (e ReviewCommentEdited) Type() EventType { return EventReviewCommentEdited }

func (e ReviewCommentEdited) Validate() error {
	return validateCommentChange(e.ReviewCommentID, e.ReviewID, e.UpdatedAt)
}

type ReviewCommentDeleted struct {
	ReviewCommentID int64
	ReviewID        int64
	Body            *string
	UpdatedAt       time.Time
}

func (e ReviewCommentDeleted) Type() EventType { return EventReviewCommentDeleted }

func (e ReviewCommentDeleted) Validate() error {
	return validateCommentChange(e.ReviewCommentID, e.ReviewID, e.UpdatedAt)
}

// CommitPushed — коммит в ветку пул-реквеста; Additions/Deletions относятся к самому коммиту.
type CommitPushed struct {
	PullRequestID int64
	SHA           string
	Additions     int
	Deletions     int
	CommittedAt   time.Time
}

func (e CommitPushed) Type() EventType { return EventCommitPushed }

func (e CommitPushed) Validate() error {
	if e.PullRequestID <= 0 {
		return ErrInvalidPRID
	}
	if e.SHA == "" {
		return required("sha")
	}
	if e.Additions < 0 || e.Deletions < 0 {
		return ErrNegativeChangeSum
	}
	if e.CommittedAt.IsZero() {
		return required("committedAt")
	}
	return nil
}

func (s ChangeStats) validate() error {
	if s.Additions < 0 || s.Deletions < 0 || s.ChangedFiles < 0 {
		return ErrNegativeChangeSum
	}
	return nil
}

func validateReviewerChange(prID int64, reviewer string, at time.Time) error {
	if prID <= 0 {
		return ErrInvalidPRID
	}
	if reviewer == "" {
		return ErrInvalidReviewer
	}
	if at.IsZero() {
		return ErrInvalidTimestamp
	}
	return nil
}

func validateCommentChange(commentID, reviewID int64, updatedAt time.Time) error {
	if commentID <= 0 {
		return required("reviewCommentId")
	}
	if reviewID <= 0 {
		return required("reviewId")
	}
	if updatedAt.IsZero() {
		return required("updatedAt")
	}
	return nil
}
