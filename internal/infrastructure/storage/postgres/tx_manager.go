package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"fieldstock/internal/core/tx"
	"fieldstock/pkg/logger"
)

var tracer = otel.Tracer("fieldstock/tx")

var _ tx.Manager = (*TxManager)(nil)

// statementTimeout bounds every statement inside a managed transaction.
const statementTimeout = 30 * time.Second

// TxManager implements tx.Manager on a pgx pool. The open transaction
// travels in the context, so nested RunInTransaction calls join it and
// repositories pick it up through GetQuerier.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a transaction manager over the pool.
func NewTxManager(pool *Pool) *TxManager {
	return &TxManager{pool: pool.Pool}
}

type txKey struct{}

func activeTx(ctx context.Context) pgx.Tx {
	if dbTx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return dbTx
	}
	return nil
}

// RunInTransaction implements tx.Manager. Read-committed, with a
// per-transaction statement timeout. The rollback after a failed fn runs
// on a background context so a cancelled request cannot strand the
// transaction.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if activeTx(ctx) != nil {
		return fn(ctx)
	}

	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(attribute.String("db.system", "postgresql")))
	defer span.End()

	dbTx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	timeoutStmt := fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", statementTimeout.Milliseconds())
	if _, err := dbTx.Exec(ctx, timeoutStmt); err != nil {
		_ = dbTx.Rollback(ctx)
		return fmt.Errorf("set statement_timeout: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, dbTx)); err != nil {
		if rbErr := dbTx.Rollback(context.Background()); rbErr != nil {
			logger.Error(ctx, "rollback failed", "error", rbErr, "original_error", err)
		}
		return err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Querier is the query surface shared by pool and transaction, so
// repositories work both inside and outside transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetQuerier returns the context's transaction when one is open, the
// pool otherwise.
func (m *TxManager) GetQuerier(ctx context.Context) Querier {
	if dbTx := activeTx(ctx); dbTx != nil {
		return dbTx
	}
	return m.pool
}
