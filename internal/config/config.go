package config

import (
	"fmt"
	"os"
	"strconv"

	"pr-review-analytics/internal/domain"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	ServerPort string
	LogLevel   string

	TxMaxAttempts uint

	HighDensityThreshold     decimal.Decimal
	ShortCommentMaxLength    int
	DetailedCommentMinLength int
	RichCommentMinLines      int
}

func LoadConfig() (Config, error) {

	err := godotenv.Load()

	defaults := domain.DefaultAnalysisPolicy()

	return Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "pr_review_analytics"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		TxMaxAttempts: uint(getEnvInt("TX_MAX_ATTEMPTS", 3)),

		HighDensityThreshold:     getEnvDecimal("POLICY_HIGH_DENSITY_THRESHOLD", defaults.HighDensityThreshold),
		ShortCommentMaxLength:    getEnvInt("POLICY_SHORT_COMMENT_MAX_LENGTH", defaults.ShortCommentMaxLength),
		DetailedCommentMinLength: getEnvInt("POLICY_DETAILED_COMMENT_MIN_LENGTH", defaults.DetailedCommentMinLength),
		RichCommentMinLines:      getEnvInt("POLICY_RICH_COMMENT_MIN_LINES", defaults.RichCommentMinLines),
	}, err
}

// DSN собирает строку подключения к PostgreSQL.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Policy возвращает пороги классификаций для анализа.
func (c Config) Policy() domain.AnalysisPolicy {
	return domain.AnalysisPolicy{
		HighDensityThreshold:     c.HighDensityThreshold,
		ShortCommentMaxLength:    c.ShortCommentMaxLength,
		DetailedCommentMinLength: c.DetailedCommentMinLength,
		RichCommentMinLines:      c.RichCommentMinLines,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	value, err := decimal.NewFromString(os.Getenv(key))
	if err != nil || value.IsNegative() {
		return defaultValue
	}
	return value
}
