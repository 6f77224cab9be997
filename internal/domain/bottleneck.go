package domain

import (
	"context"
	"time"
)

// BottleneckType — фаза, в которой пул-реквест простаивал дольше всего.
type BottleneckType string

const (
	BottleneckNone           BottleneckType = "NONE"
	BottleneckReviewWait     BottleneckType = "REVIEW_WAIT"
	BottleneckReviewProgress BottleneckType = "REVIEW_PROGRESS"
	BottleneckMergeWait      BottleneckType = "MERGE_WAIT"
)

// BottleneckPhase — состояние автомата ревью.
type BottleneckPhase string

const (
	PhaseNoReview  BottleneckPhase = "NO_REVIEW"
	PhaseHasReview BottleneckPhase = "HAS_REVIEW"
	PhaseApproved  BottleneckPhase = "APPROVED"
	PhaseMerged    BottleneckPhase = "MERGED"
)

// PullRequestBottleneck — разложение простоя пул-реквеста на ожидание ревью,
// ход ревью и ожидание слияния после аппрува.
type PullRequestBottleneck struct {
	PullRequestID  int64
	ReviewWait     *Duration
	ReviewProgress *Duration
	MergeWait      *Duration
	FirstReviewAt  *time.Time
	LastReviewAt   *time.Time
	LastApproveAt  *time.Time
}

// BottleneckRepository определяет контракт хранилища узких мест.
// FindByPRID возвращает nil без ошибки, если строки нет.
type BottleneckRepository interface {
	FindByPRID(ctx context.Context, prID int64) (*PullRequestBottleneck, error)
	ExistsByPRID(ctx context.Context, prID int64) (bool, error)
	Save(ctx context.Context, b *PullRequestBottleneck) error
}

// NewPullRequestBottleneck возвращает начальное состояние NoReview.
func NewPullRequestBottleneck(prID int64) PullRequestBottleneck {
	return PullRequestBottleneck{
		PullRequestID:  prID,
		ReviewProgress: ZeroDuration().Ptr(),
	}
}

// CreateBottleneckOnFirstReview создает строку по первому ревью.
func CreateBottleneckOnFirstReview(prID int64, readyAt, reviewAt time.Time) (PullRequestBottleneck, error) {
	b := NewPullRequestBottleneck(prID)
	return b.withFirstReview(readyAt, reviewAt)
}

func (b PullRequestBottleneck) withFirstReview(readyAt, reviewAt time.Time) (PullRequestBottleneck, error) {
	wait, err := durationBetweenPtr(readyAt, reviewAt)
	if err != nil {
		return b, err
	}
	b.ReviewWait = wait
	b.FirstReviewAt = timePtr(reviewAt)
	b.LastReviewAt = timePtr(reviewAt)
	b.ReviewProgress = ZeroDuration().Ptr()
	return b, nil
}

// UpdateOnNewReview применяет очередное ревью.
// Ревью, пришедшее раньше уже учтенного первого, становится первым;
// LastReviewAt только растет, поэтому порядок доставки не влияет на итог.
func (b PullRequestBottleneck) UpdateOnNewReview(readyAt, reviewAt time.Time, isApproval bool) (PullRequestBottleneck, error) {
	var err error
	switch {
	case b.FirstReviewAt == nil:
		b, err = b.withFirstReview(readyAt, reviewAt)
	case reviewAt.Before(*b.FirstReviewAt):
		last := *b.LastReviewAt
		b, err = b.withFirstReview(readyAt, reviewAt)
		b.LastReviewAt = timePtr(last)
	case reviewAt.After(*b.LastReviewAt):
		b.LastReviewAt = timePtr(reviewAt)
	}
	if err != nil {
		return b, err
	}

	progress, err := durationBetweenPtr(*b.FirstReviewAt, *b.LastReviewAt)
	if err != nil {
		return b, err
	}
	b.ReviewProgress = progress

	if isApproval && (b.LastApproveAt == nil || reviewAt.After(*b.LastApproveAt)) {
		b.LastApproveAt = timePtr(reviewAt)
	}
	return b, nil
}

// UpdateOnMerge фиксирует ожидание слияния; без аппрува MergeWait остается пустым.
// Слияние раньше последнего аппрува нарушает порядок фаз и тоже не учитывается.
func (b PullRequestBottleneck) UpdateOnMerge(mergedAt time.Time) PullRequestBottleneck {
	if b.LastApproveAt == nil || mergedAt.Before(*b.LastApproveAt) {
		return b
	}
	wait, _ := DurationBetween(*b.LastApproveAt, mergedAt)
	b.MergeWait = wait.Ptr()
	return b
}

// Phase возвращает текущее состояние автомата.
func (b PullRequestBottleneck) Phase() BottleneckPhase {
	switch {
	case b.MergeWait != nil:
		return PhaseMerged
	case b.LastApproveAt != nil:
		return PhaseApproved
	case b.FirstReviewAt != nil:
		return PhaseHasReview
	default:
		return PhaseNoReview
	}
}

// TotalBottleneckTime — сумма известных фаз, пустые считаются нулем.
func (b PullRequestBottleneck) TotalBottleneckTime() Duration {
	return Duration{minutes: minutesOf(b.ReviewWait) + minutesOf(b.ReviewProgress) + minutesOf(b.MergeWait)}
}

// LongestBottleneck возвращает самую длинную фазу.
// При равенстве порядок: REVIEW_WAIT, REVIEW_PROGRESS, MERGE_WAIT.
func (b PullRequestBottleneck) LongestBottleneck() BottleneckType {
	candidates := []struct {
		kind    BottleneckType
		minutes int64
	}{
		{BottleneckReviewWait, minutesOf(b.ReviewWait)},
		{BottleneckReviewProgress, minutesOf(b.ReviewProgress)},
		{BottleneckMergeWait, minutesOf(b.MergeWait)},
	}

	longest := BottleneckNone
	var max int64
	for _, c := range candidates {
		if c.minutes > max {
			longest, max = c.kind, c.minutes
		}
	}
	return longest
}
