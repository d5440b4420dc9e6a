package service

import (
	"context"
	"fmt"

	"pnyx/internal/repository"
	"pnyx/pkg/db"
)

// UnitOfWork runs a sequence of repository calls in one database transaction.
// The transaction is committed only when the callback succeeds and is rolled
// back on every other exit path, panics included.
type UnitOfWork struct {
	dbBeginner db.DBTxBeginner
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
}

// NewUnitOfWork creates a UnitOfWork. The tx functions are injected so tests
// can substitute the transaction.
func NewUnitOfWork(dbBeginner db.DBTxBeginner, beginTx db.BeginTxFunc, commitTx db.CommitTxFunc, rollbackTx db.RollbackTxFunc) *UnitOfWork {
	return &UnitOfWork{
		dbBeginner: dbBeginner,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
	}
}

// Do executes fn inside a transaction; op prefixes returned errors.
func (u *UnitOfWork) Do(ctx context.Context, op string, fn func(q repository.DBExecutor) error) error {
	txController, err := u.beginTx(ctx, u.dbBeginner)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer u.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("%s: transaction controller does not implement DBExecutor", op)
	}

	if err := fn(txExecutor); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := u.commitTx(txController); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return nil
}
