package domain

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	mentionPattern    = regexp.MustCompile(`@[A-Za-z0-9](?:[A-Za-z0-9_-]*[A-Za-z0-9])?`)
	fencedCodePattern = regexp.MustCompile("(?s)```.*?```")
	inlineCodePattern = regexp.MustCompile("`[^`\n]+`")
	urlPattern        = regexp.MustCompile(`https?://`)
)

// CommentAnalysis — сигналы, вычисленные из текста комментария ревью.
type CommentAnalysis struct {
	ReviewCommentID int64
	CommentLength   int
	LineCount       int
	MentionCount    int
	HasCode         bool
	HasURL          bool
}

// CommentAnalysisRepository определяет контракт хранилища анализа комментариев.
// FindByCommentID возвращает nil без ошибки, если строки нет.
type CommentAnalysisRepository interface {
	FindByCommentID(ctx context.Context, commentID int64) (*CommentAnalysis, error)
	ExistsByCommentID(ctx context.Context, commentID int64) (bool, error)
	ListByPRID(ctx context.Context, prID int64) ([]*CommentAnalysis, error)
	Save(ctx context.Context, a *CommentAnalysis) error
	Delete(ctx context.Context, commentID int64) error
}

// AnalyzeComment вычисляет сигналы по телу комментария. Пустое тело дает нулевые значения.
func AnalyzeComment(commentID int64, body *string) CommentAnalysis {
	a := CommentAnalysis{ReviewCommentID: commentID}
	return a.UpdateBody(body)
}

// UpdateBody полностью пересчитывает сигналы; старые значения не сохраняются.
func (a CommentAnalysis) UpdateBody(body *string) CommentAnalysis {
	next := CommentAnalysis{ReviewCommentID: a.ReviewCommentID}
	if body == nil || *body == "" {
		return next
	}
	text := *body

	next.CommentLength = utf8.RuneCountInString(text)
	next.LineCount = countLines(text)
	next.MentionCount = len(mentionPattern.FindAllStringIndex(text, -1))
	next.HasCode = fencedCodePattern.MatchString(text) || inlineCodePattern.MatchString(text)
	next.HasURL = urlPattern.MatchString(text)
	return next
}

func countLines(text string) int {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.TrimRight(normalized, "\n")
	if normalized == "" {
		return 0
	}
	return strings.Count(normalized, "\n") + 1
}

func (a CommentAnalysis) IsShort(policy AnalysisPolicy) bool {
	return a.CommentLength < policy.ShortCommentMaxLength
}

func (a CommentAnalysis) IsDetailed(policy AnalysisPolicy) bool {
	return a.CommentLength >= policy.DetailedCommentMinLength
}

// IsRich — многострочный комментарий с кодом или ссылкой.
func (a CommentAnalysis) IsRich(policy AnalysisPolicy) bool {
	return (a.HasCode || a.HasURL) && a.LineCount >= policy.RichCommentMinLines
}
