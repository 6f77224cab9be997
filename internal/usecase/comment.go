package usecase

import (
	"context"

	"pr-review-analytics/internal/domain"
)

// CommentAnalyzer держит анализ тела каждого комментария в актуальном состоянии.
type CommentAnalyzer struct {
	analyses domain.CommentAnalysisRepository
}

// NewCommentAnalyzer создает новый экземпляр CommentAnalyzer.
func NewCommentAnalyzer(analyses domain.CommentAnalysisRepository) *CommentAnalyzer {
	return &CommentAnalyzer{analyses: analyses}
}

// OnCreated анализирует новый комментарий.
func (a *CommentAnalyzer) OnCreated(ctx context.Context, comment *domain.ReviewComment) error {
	analysis := domain.AnalyzeComment(comment.ID, comment.Body)
	return a.analyses.Save(ctx, &analysis)
}

// OnEdited полностью пересчитывает анализ по новому телу.
func (a *CommentAnalyzer) OnEdited(ctx context.Context, commentID int64, body *string) error {
	prior, err := a.analyses.FindByCommentID(ctx, commentID)
	if err != nil {
		return err
	}

	var next domain.CommentAnalysis
	if prior == nil {
		next = domain.AnalyzeComment(commentID, body)
	} else {
		next = prior.UpdateBody(body)
	}
	return a.analyses.Save(ctx, &next)
}

// OnDeleted удаляет анализ комментария.
func (a *CommentAnalyzer) OnDeleted(ctx context.Context, commentID int64) error {
	return a.analyses.Delete(ctx, commentID)
}
