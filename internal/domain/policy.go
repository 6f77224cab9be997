package domain

import "github.com/shopspring/decimal"

const (
	densityScale = 6
	ratioScale   = 4
	averageScale = 2
)

// AnalysisPolicy — настраиваемые пороги классификаций.
type AnalysisPolicy struct {
	HighDensityThreshold     decimal.Decimal
	ShortCommentMaxLength    int
	DetailedCommentMinLength int
	RichCommentMinLines      int
}

// DefaultAnalysisPolicy возвращает пороги по умолчанию.
func DefaultAnalysisPolicy() AnalysisPolicy {
	return AnalysisPolicy{
		HighDensityThreshold:     decimal.RequireFromString("0.1"),
		ShortCommentMaxLength:    20,
		DetailedCommentMinLength: 200,
		RichCommentMinLines:      3,
	}
}

// ratio делит с округлением half-up до scale знаков; при нулевом делителе — 0.
func ratio(numerator, denominator int64, scale int32) decimal.Decimal {
	if denominator == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(numerator).DivRound(decimal.NewFromInt(denominator), scale)
}
