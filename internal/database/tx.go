package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"

	initialRetryDelay = 20 * time.Millisecond
	maxRetryDelay     = 500 * time.Millisecond
)

// Querier — общий интерфейс для *sql.DB и *sql.Tx
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// txKey — приватный ключ для хранения *sql.Tx в контексте
type txKey struct{}

// QuerierFrom возвращает транзакцию из контекста или сам пул.
func QuerierFrom(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok && tx != nil {
		return tx
	}
	return db
}

// TxManager выполняет функции в транзакции и повторяет их при конфликте сериализации.
type TxManager struct {
	db          *sql.DB
	logger      *logrus.Logger
	maxAttempts uint
}

// NewTxManager создает новый экземпляр TxManager.
func NewTxManager(db *sql.DB, logger *logrus.Logger, maxAttempts uint) *TxManager {
	if maxAttempts == 0 {
		maxAttempts = 1
	}
	return &TxManager{
		db:          db,
		logger:      logger,
		maxAttempts: maxAttempts,
	}
}

// Do выполняет fn в транзакции. Вложенный вызов использует уже открытую транзакцию.
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok && tx != nil {
		return fn(ctx)
	}

	return retry.Do(
		func() error { return m.run(ctx, fn) },
		retry.Context(ctx),
		retry.Attempts(m.maxAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.Delay(initialRetryDelay),
		retry.MaxDelay(maxRetryDelay),
		retry.RetryIf(IsRetryable),
		retry.OnRetry(func(n uint, err error) {
			m.logger.WithError(err).WithField("attempt", n+1).Warn("Retrying transaction")
		}),
		retry.LastErrorOnly(true),
	)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			m.logger.WithError(err).Warn("Transaction rollback failed")
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsRetryable сообщает, что транзакцию можно безопасно повторить целиком.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
}

// IsUniqueViolation сообщает о нарушении уникального ключа.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
