package handler

import (
	"errors"
	"net/http"

	"pr-review-analytics/api"
	"pr-review-analytics/internal/domain"
)

// Вспомогательные функции преобразования доменных моделей в API модели

func toAPIAnalytics(a *domain.PullRequestAnalytics, policy domain.AnalysisPolicy) api.PullRequestAnalytics {
	result := api.PullRequestAnalytics{
		PullRequest: toAPIPullRequest(a.PullRequest),
		Sessions:    make([]api.ReviewSession, len(a.Sessions)),
		Comments:    make([]api.CommentAnalysis, len(a.Comments)),
	}

	if a.Lifecycle != nil {
		result.Lifecycle = toAPILifecycle(a.Lifecycle)
	}
	if a.Bottleneck != nil {
		result.Bottleneck = toAPIBottleneck(a.Bottleneck)
	}
	for i, s := range a.Sessions {
		result.Sessions[i] = toAPISession(s)
	}
	if a.ResponseTime != nil {
		result.ResponseTime = toAPIResponseTime(a.ResponseTime)
	}
	if a.Activity != nil {
		result.Activity = toAPIActivity(a.Activity, policy)
	}
	for i, c := range a.Comments {
		result.Comments[i] = toAPICommentAnalysis(c, policy)
	}
	if a.Snapshot != nil {
		result.Snapshot = toAPISnapshot(a.Snapshot)
	}
	return result
}

func toAPIPullRequest(pr *domain.PullRequest) api.PullRequest {
	return api.PullRequest{
		PullRequestId: pr.ID,
		Author:        pr.Author,
		State:         string(pr.State),
		Additions:     pr.Additions,
		Deletions:     pr.Deletions,
		ChangedFiles:  pr.ChangedFiles,
		CommitCount:   pr.CommitCount,
		CreatedAt:     pr.CreatedAt,
		ClosedAt:      pr.ClosedAt,
		MergedAt:      pr.MergedAt,
	}
}

func toAPILifecycle(lc *domain.PullRequestLifecycle) *api.Lifecycle {
	return &api.Lifecycle{
		ReviewReadyAt:        lc.ReviewReadyAt,
		ClosedAt:             lc.ClosedAt,
		ClosedState:          string(lc.ClosedState),
		TimeToMergeMinutes:   minutesPtr(lc.TimeToMerge),
		TotalLifespanMinutes: lc.TotalLifespan.Minutes(),
		ActiveWorkMinutes:    lc.ActiveWork.Minutes(),
		StateChangeCount:     lc.StateChangeCount,
		Reopened:             lc.Reopened,
		ClosedWithoutReview:  lc.ClosedWithoutReview,
	}
}

func toAPIBottleneck(b *domain.PullRequestBottleneck) *api.Bottleneck {
	return &api.Bottleneck{
		Phase:                 string(b.Phase()),
		ReviewWaitMinutes:     minutesPtr(b.ReviewWait),
		ReviewProgressMinutes: minutesPtr(b.ReviewProgress),
		MergeWaitMinutes:      minutesPtr(b.MergeWait),
		FirstReviewAt:         b.FirstReviewAt,
		LastReviewAt:          b.LastReviewAt,
		LastApproveAt:         b.LastApproveAt,
		TotalMinutes:          b.TotalBottleneckTime().Minutes(),
		Longest:               string(b.LongestBottleneck()),
	}
}

func toAPISession(s *domain.ReviewSession) api.ReviewSession {
	return api.ReviewSession{
		Reviewer:               s.Reviewer,
		FirstActivityAt:        s.FirstActivityAt,
		LastActivityAt:         s.LastActivityAt,
		SessionDurationMinutes: s.SessionDuration.Minutes(),
		ReviewCount:            s.ReviewCount,
		CommentCount:           s.CommentCount,
		SingleActivity:         s.IsSingleActivity(),
	}
}

func toAPIResponseTime(rt *domain.ReviewResponseTime) *api.ResponseTime {
	return &api.ResponseTime{
		LastChangesRequestedAt:     rt.LastChangesRequestedAt,
		FirstCommitAfterChangesAt:  rt.FirstCommitAfterChangesAt,
		FirstApproveAfterChangesAt: rt.FirstApproveAfterChangesAt,
		ResponseAfterReviewMinutes: minutesPtr(rt.ResponseAfterReview),
		ChangesResolutionMinutes:   minutesPtr(rt.ChangesResolution),
		ChangesRequestedCount:      rt.ChangesRequestedCount,
	}
}

func toAPIActivity(a *domain.ReviewActivity, policy domain.AnalysisPolicy) *api.ReviewActivity {
	return &api.ReviewActivity{
		ReviewRoundTrips:         a.ReviewRoundTrips,
		TotalCommentCount:        a.TotalCommentCount,
		TotalAdditions:           a.TotalAdditions,
		TotalDeletions:           a.TotalDeletions,
		CodeAdditionsAfterReview: a.CodeAdditionsAfterReview,
		CodeDeletionsAfterReview: a.CodeDeletionsAfterReview,
		AdditionalReviewerCount:  a.AdditionalReviewerCount,
		CommentDensity:           a.CommentDensity().StringFixed(6),
		HighDensity:              a.IsHighDensity(policy),
	}
}

func toAPICommentAnalysis(c *domain.CommentAnalysis, policy domain.AnalysisPolicy) api.CommentAnalysis {
	return api.CommentAnalysis{
		ReviewCommentId: c.ReviewCommentID,
		CommentLength:   c.CommentLength,
		LineCount:       c.LineCount,
		MentionCount:    c.MentionCount,
		HasCode:         c.HasCode,
		HasUrl:          c.HasURL,
		Short:           c.IsShort(policy),
		Detailed:        c.IsDetailed(policy),
		Rich:            c.IsRich(policy),
	}
}

func toAPISnapshot(s *domain.OpenedSnapshot) *api.OpenedSnapshot {
	return &api.OpenedSnapshot{
		TotalChanges:      s.Summary.TotalChanges,
		ChangedFiles:      s.Summary.ChangedFiles,
		AvgChangesPerFile: s.Summary.AvgChangesPerFile.StringFixed(2),
		CommitCount:       s.Density.CommitCount,
		CommitsPerFile:    s.Density.CommitsPerFile.StringFixed(6),
		CommitsPerChange:  s.Density.CommitsPerChange.StringFixed(6),
		AddedCount:        s.Diversity.AddedCount,
		ModifiedCount:     s.Diversity.ModifiedCount,
		RemovedCount:      s.Diversity.RemovedCount,
		RenamedCount:      s.Diversity.RenamedCount,
		AddedRatio:        s.Diversity.AddedRatio.StringFixed(4),
		ModifiedRatio:     s.Diversity.ModifiedRatio.StringFixed(4),
		RemovedRatio:      s.Diversity.RemovedRatio.StringFixed(4),
		RenamedRatio:      s.Diversity.RenamedRatio.StringFixed(4),
		DistinctTypes:     s.Diversity.DistinctTypes(),
	}
}

func minutesPtr(d *domain.Duration) *int64 {
	if d == nil {
		return nil
	}
	m := d.Minutes()
	return &m
}

func toErrorResponse(code, message string) api.ErrorResponse {
	var resp api.ErrorResponse
	resp.Error.Code = api.ErrorResponseErrorCode(code)
	resp.Error.Message = message
	return resp
}

func toAPIErrorResponse(httpErr domain.HTTPError) api.ErrorResponse {
	return toErrorResponse(httpErr.Code, httpErr.Message)
}

func getHTTPStatusCode(err error) int {
	switch {
	// Conflict errors (409) - родитель еще не записан, источник доставит событие повторно
	case domain.IsOrderingViolation(err):
		return http.StatusConflict

	// Bad Request errors (400) - нарушение контракта источником
	case errors.Is(err, domain.ErrPrecondition),
		errors.Is(err, domain.ErrInvalidPayload),
		errors.Is(err, domain.ErrUnknownEventType):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
