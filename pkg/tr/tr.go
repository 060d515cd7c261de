package tr

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/jitter"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// SQLSTATE, при которых транзакцию имеет смысл повторить целиком
	serializationFailure = "40001"
	deadlockDetected     = "40P01"

	baseBackoff = 20 * time.Millisecond
	maxBackoff  = 500 * time.Millisecond
)

type txKey struct{}

// WithTx кладёт транзакцию pgx в контекст.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromCtx извлекает объект транзакции (pgx.Tx) из контекста
func TxFromCtx(ctx context.Context) (pgx.Tx, error) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return nil, e.ErrTransactionNotFound
	}
	return tx, nil
}

// Manager выполняет функцию в транзакции PostgreSQL и повторяет её при
// конфликтах сериализации и дедлоках.
type Manager struct {
	db         transaction.Transactional
	opts       pgx.TxOptions
	maxRetries int
	logger     logger.Logger
}

func NewManager(db transaction.Transactional, maxRetries int, logger logger.Logger) *Manager {
	return &Manager{
		db:         db,
		opts:       pgx.TxOptions{IsoLevel: pgx.ReadCommitted},
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Do запускает fn внутри транзакции. Транзакция доступна в fn через TxFromCtx.
// Ошибка fn откатывает транзакцию и возвращается без изменений.
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	const op = "tr.Manager.Do"

	for attempt := 0; ; attempt++ {
		err := m.do(ctx, fn)
		if err == nil {
			return nil
		}

		if !IsRetryable(err) || attempt >= m.maxRetries {
			return err
		}

		backoff := jitter.ExponentialBackoff(baseBackoff, maxBackoff, attempt, jitter.DefaultJitter)
		m.logger.Warnf("transaction conflict, retrying in %v (attempt %d): %v", backoff, attempt+1, err)
		if err := jitter.Sleep(ctx, backoff); err != nil {
			return e.Wrap(op, err)
		}
	}
}

func (m *Manager) do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	const op = "tr.Manager.do"

	ctx, tx, err := transaction.NewTransaction(ctx, m.opts, m.db)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer func() {
		if err == nil {
			return
		}
		// Откат не должен зависеть от отмены запроса
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			m.logger.Debugf("%s: rollback: %v", op, rbErr)
		}
	}()

	pgxTx, ok := tx.Transaction().(pgx.Tx)
	if !ok {
		return e.Wrap(op, e.ErrTransactionNotFound)
	}

	if err = fn(WithTx(ctx, pgxTx)); err != nil {
		return err
	}

	// После начала коммита операция не отменяется клиентом
	if err = tx.Commit(context.WithoutCancel(ctx)); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// IsRetryable сообщает, можно ли повторить транзакцию, завершившуюся этой ошибкой.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == serializationFailure || pgErr.Code == deadlockDetected
}
