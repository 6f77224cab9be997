package domain

// PullRequestAnalytics — все производные строки одного пул-реквеста для отчетного слоя.
type PullRequestAnalytics struct {
	PullRequest  *PullRequest
	Lifecycle    *PullRequestLifecycle
	Bottleneck   *PullRequestBottleneck
	Sessions     []*ReviewSession
	ResponseTime *ReviewResponseTime
	Activity     *ReviewActivity
	Comments     []*CommentAnalysis
	Snapshot     *OpenedSnapshot
}
