// Package api describes the HTTP surface of the analytics service: webhook envelopes,
// event payloads, analytics responses and the echo routing wrapper.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// DeliveryHeader — заголовок с идентификатором доставки вебхука.
const DeliveryHeader = "X-GitHub-Delivery"

// ErrorResponseErrorCode defines model for ErrorResponse.Error.Code.
type ErrorResponseErrorCode string

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Error struct {
		Code    ErrorResponseErrorCode `json:"code"`
		Message string                 `json:"message"`
	} `json:"error"`
}

// EventEnvelope defines model for EventEnvelope.
type EventEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// EventAccepted defines model for EventAccepted.
type EventAccepted struct {
	EventType  string `json:"event_type"`
	DeliveryId string `json:"delivery_id"`
	Duplicate  bool   `json:"duplicate"`
}

// ChangedFile defines model for ChangedFile.
type ChangedFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// PullRequestOpenedPayload defines model for PullRequestOpenedPayload.
type PullRequestOpenedPayload struct {
	PullRequestId int64         `json:"pull_request_id"`
	Author        string        `json:"author"`
	Additions     int           `json:"additions"`
	Deletions     int           `json:"deletions"`
	ChangedFiles  int           `json:"changed_files"`
	CommitCount   int           `json:"commit_count"`
	CreatedAt     time.Time     `json:"created_at"`
	Files         []ChangedFile `json:"files,omitempty"`
}

// PullRequestSynchronizedPayload defines model for PullRequestSynchronizedPayload.
type PullRequestSynchronizedPayload struct {
	PullRequestId int64     `json:"pull_request_id"`
	Additions     int       `json:"additions"`
	Deletions     int       `json:"deletions"`
	ChangedFiles  int       `json:"changed_files"`
	SyncedAt      time.Time `json:"synced_at"`
}

// PullRequestStateChangedPayload defines model for PullRequestStateChangedPayload.
type PullRequestStateChangedPayload struct {
	PullRequestId int64     `json:"pull_request_id"`
	PreviousState string    `json:"previous_state,omitempty"`
	NewState      string    `json:"new_state"`
	ChangedAt     time.Time `json:"changed_at"`
}

// ReviewSubmittedPayload defines model for ReviewSubmittedPayload.
type ReviewSubmittedPayload struct {
	ReviewId      int64     `json:"review_id"`
	PullRequestId int64     `json:"pull_request_id"`
	Reviewer      string    `json:"reviewer"`
	State         string    `json:"state"`
	CommentCount  int       `json:"comment_count"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// ReviewerAddedPayload defines model for ReviewerAddedPayload.
type ReviewerAddedPayload struct {
	PullRequestId int64     `json:"pull_request_id"`
	Reviewer      string    `json:"reviewer"`
	RequestedAt   time.Time `json:"requested_at"`
}

// ReviewerRemovedPayload defines model for ReviewerRemovedPayload.
type ReviewerRemovedPayload struct {
	PullRequestId int64     `json:"pull_request_id"`
	Reviewer      string    `json:"reviewer"`
	RemovedAt     time.Time `json:"removed_at"`
}

// ReviewCommentPayload defines model for ReviewCommentPayload (created, edited, deleted).
type ReviewCommentPayload struct {
	ReviewCommentId int64     `json:"review_comment_id"`
	ReviewId        int64     `json:"review_id"`
	Body            *string   `json:"body"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CommitPushedPayload defines model for CommitPushedPayload.
type CommitPushedPayload struct {
	PullRequestId int64     `json:"pull_request_id"`
	Sha           string    `json:"sha"`
	Additions     int       `json:"additions"`
	Deletions     int       `json:"deletions"`
	CommittedAt   time.Time `json:"committed_at"`
}

// PullRequest defines model for PullRequest.
type PullRequest struct {
	PullRequestId int64      `json:"pull_request_id"`
	Author        string     `json:"author"`
	State         string     `json:"state"`
	Additions     int        `json:"additions"`
	Deletions     int        `json:"deletions"`
	ChangedFiles  int        `json:"changed_files"`
	CommitCount   int        `json:"commit_count"`
	CreatedAt     time.Time  `json:"created_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	MergedAt      *time.Time `json:"merged_at,omitempty"`
}

// Lifecycle defines model for Lifecycle.
type Lifecycle struct {
	ReviewReadyAt        time.Time `json:"review_ready_at"`
	ClosedAt             time.Time `json:"closed_at"`
	ClosedState          string    `json:"closed_state"`
	TimeToMergeMinutes   *int64    `json:"time_to_merge_minutes"`
	TotalLifespanMinutes int64     `json:"total_lifespan_minutes"`
	ActiveWorkMinutes    int64     `json:"active_work_minutes"`
	StateChangeCount     int       `json:"state_change_count"`
	Reopened             bool      `json:"reopened"`
	ClosedWithoutReview  bool      `json:"closed_without_review"`
}

// Bottleneck defines model for Bottleneck.
type Bottleneck struct {
	Phase                 string     `json:"phase"`
	ReviewWaitMinutes     *int64     `json:"review_wait_minutes"`
	ReviewProgressMinutes *int64     `json:"review_progress_minutes"`
	MergeWaitMinutes      *int64     `json:"merge_wait_minutes"`
	FirstReviewAt         *time.Time `json:"first_review_at"`
	LastReviewAt          *time.Time `json:"last_review_at"`
	LastApproveAt         *time.Time `json:"last_approve_at"`
	TotalMinutes          int64      `json:"total_minutes"`
	Longest               string     `json:"longest"`
}

// ReviewSession defines model for ReviewSession.
type ReviewSession struct {
	Reviewer               string    `json:"reviewer"`
	FirstActivityAt        time.Time `json:"first_activity_at"`
	LastActivityAt         time.Time `json:"last_activity_at"`
	SessionDurationMinutes int64     `json:"session_duration_minutes"`
	ReviewCount            int       `json:"review_count"`
	CommentCount           int       `json:"comment_count"`
	SingleActivity         bool      `json:"single_activity"`
}

// ResponseTime defines model for ResponseTime.
type ResponseTime struct {
	LastChangesRequestedAt     *time.Time `json:"last_changes_requested_at"`
	FirstCommitAfterChangesAt  *time.Time `json:"first_commit_after_changes_at"`
	FirstApproveAfterChangesAt *time.Time `json:"first_approve_after_changes_at"`
	ResponseAfterReviewMinutes *int64     `json:"response_after_review_minutes"`
	ChangesResolutionMinutes   *int64     `json:"changes_resolution_minutes"`
	ChangesRequestedCount      int        `json:"changes_requested_count"`
}

// ReviewActivity defines model for ReviewActivity.
type ReviewActivity struct {
	ReviewRoundTrips         int    `json:"review_round_trips"`
	TotalCommentCount        int    `json:"total_comment_count"`
	TotalAdditions           int    `json:"total_additions"`
	TotalDeletions           int    `json:"total_deletions"`
	CodeAdditionsAfterReview int    `json:"code_additions_after_review"`
	CodeDeletionsAfterReview int    `json:"code_deletions_after_review"`
	AdditionalReviewerCount  int    `json:"additional_reviewer_count"`
	CommentDensity           string `json:"comment_density"`
	HighDensity              bool   `json:"high_density"`
}

// CommentAnalysis defines model for CommentAnalysis.
type CommentAnalysis struct {
	ReviewCommentId int64 `json:"review_comment_id"`
	CommentLength   int   `json:"comment_length"`
	LineCount       int   `json:"line_count"`
	MentionCount    int   `json:"mention_count"`
	HasCode         bool  `json:"has_code"`
	HasUrl          bool  `json:"has_url"`
	Short           bool  `json:"short"`
	Detailed        bool  `json:"detailed"`
	Rich            bool  `json:"rich"`
}

// OpenedSnapshot defines model for OpenedSnapshot.
type OpenedSnapshot struct {
	TotalChanges      int    `json:"total_changes"`
	ChangedFiles      int    `json:"changed_files"`
	AvgChangesPerFile string `json:"avg_changes_per_file"`
	CommitCount       int    `json:"commit_count"`
	CommitsPerFile    string `json:"commits_per_file"`
	CommitsPerChange  string `json:"commits_per_change"`
	AddedCount        int    `json:"added_count"`
	ModifiedCount     int    `json:"modified_count"`
	RemovedCount      int    `json:"removed_count"`
	RenamedCount      int    `json:"renamed_count"`
	AddedRatio        string `json:"added_ratio"`
	ModifiedRatio     string `json:"modified_ratio"`
	RemovedRatio      string `json:"removed_ratio"`
	RenamedRatio      string `json:"renamed_ratio"`
	DistinctTypes     int    `json:"distinct_types"`
}

// PullRequestAnalytics defines model for PullRequestAnalytics.
type PullRequestAnalytics struct {
	PullRequest  PullRequest       `json:"pull_request"`
	Lifecycle    *Lifecycle        `json:"lifecycle"`
	Bottleneck   *Bottleneck       `json:"bottleneck"`
	Sessions     []ReviewSession   `json:"sessions"`
	ResponseTime *ResponseTime     `json:"response_time"`
	Activity     *ReviewActivity   `json:"activity"`
	Comments     []CommentAnalysis `json:"comments"`
	Snapshot     *OpenedSnapshot   `json:"snapshot"`
}

// PostWebhookEventsParams defines parameters for PostWebhookEvents.
type PostWebhookEventsParams struct {
	XGitHubDelivery *string `json:"X-GitHub-Delivery,omitempty"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Принять событие вебхука
	// (POST /webhooks/events)
	PostWebhookEvents(ctx echo.Context, params PostWebhookEventsParams) error
	// Получить метрики пул-реквеста
	// (GET /pull-requests/{pull_request_id}/analytics)
	GetPullRequestAnalytics(ctx echo.Context, pullRequestId int64) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// PostWebhookEvents converts echo context to params.
func (w *ServerInterfaceWrapper) PostWebhookEvents(ctx echo.Context) error {
	var params PostWebhookEventsParams

	if values, found := ctx.Request().Header[http.CanonicalHeaderKey(DeliveryHeader)]; found && len(values) == 1 {
		var delivery string
		err := runtime.BindStyledParameterWithOptions("simple", DeliveryHeader, values[0], &delivery,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationHeader, Explode: false, Required: false})
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", DeliveryHeader, err))
		}
		params.XGitHubDelivery = &delivery
	}

	return w.Handler.PostWebhookEvents(ctx, params)
}

// GetPullRequestAnalytics converts echo context to params.
func (w *ServerInterfaceWrapper) GetPullRequestAnalytics(ctx echo.Context) error {
	var pullRequestId int64

	err := runtime.BindStyledParameterWithOptions("simple", "pull_request_id", ctx.Param("pull_request_id"), &pullRequestId,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter pull_request_id: %s", err))
	}

	return w.Handler.GetPullRequestAnalytics(ctx, pullRequestId)
}

// EchoRouter is an interface for echo.Echo and echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers handlers under baseURL.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{Handler: si}

	router.POST(baseURL+"/webhooks/events", wrapper.PostWebhookEvents)
	router.GET(baseURL+"/pull-requests/:pull_request_id/analytics", wrapper.GetPullRequestAnalytics)
}
