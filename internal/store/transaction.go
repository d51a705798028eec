package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/phrazzld/studykit/internal/platform/logger"
)

// ErrTransactionFailed wraps begin and commit failures.
var ErrTransactionFailed = errors.New("transaction failed")

// TxBeginner is satisfied by *sql.DB.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// TxFn runs inside a transaction. Returning an error rolls it back.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// Transactor runs fn as one atomic unit: every store write fn makes through
// ctx is kept or discarded together.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoTransaction runs fn directly, for stores without transaction support.
type NoTransaction struct{}

// InTransaction implements Transactor.
func (NoTransaction) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// SQLTransactor implements Transactor with a database/sql transaction carried
// in the context. Stores pick it up through Querier.
type SQLTransactor struct {
	db TxBeginner
}

// NewSQLTransactor returns a Transactor over db.
func NewSQLTransactor(db TxBeginner) *SQLTransactor {
	return &SQLTransactor{db: db}
}

// InTransaction implements Transactor.
func (t *SQLTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return RunInTransaction(ctx, t.db, func(ctx context.Context, _ *sql.Tx) error {
		return fn(ctx)
	})
}

type txKey struct{}

// WithTx returns a context carrying tx.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction carried by ctx, if any.
func TxFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok && tx != nil
}

// Querier returns the transaction carried by ctx, or db when there is none.
func Querier(ctx context.Context, db DBTX) DBTX {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return db
}

// RunInTransaction executes fn in a transaction, committing on success and
// rolling back on error or panic. A panic is re-raised after the rollback.
// When ctx already carries a transaction, fn joins it and the outer caller
// decides the outcome. fn receives a context carrying the transaction.
func RunInTransaction(ctx context.Context, db TxBeginner, fn TxFn) (err error) {
	if tx, ok := TxFromContext(ctx); ok {
		return fn(ctx, tx)
	}

	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrTransactionFailed, err)
	}
	ctx = WithTx(ctx, tx)

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.ErrorContext(ctx, "rollback after panic failed", "error", rbErr, "panic", p)
		}
		panic(p)
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.ErrorContext(ctx, "rollback failed", "rollback_error", rbErr, "error", err)
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrTransactionFailed, err)
	}
	return nil
}
