package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/obra/internal/db"
)

// FaultyUoW wraps a real transaction and counts the writes issued through it.
// When FailOn is positive, the FailOn-th ExecContext returns Err instead of
// running, so tests can check that a multi-write mutation rolls back whole.
// Reads pass through and are not counted.
type FaultyUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error

	execs atomic.Int32
	txs   atomic.Int32
}

// Execs reports how many ExecContext calls reached the wrapper so far.
func (u *FaultyUoW) Execs() int { return int(u.execs.Load()) }

// Transactions reports how many transactions were opened.
func (u *FaultyUoW) Transactions() int { return int(u.txs.Load()) }

func (u *FaultyUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	u.txs.Add(1)

	wrapped := &faultyTx{DBTX: tx, uow: u}
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type faultyTx struct {
	db.DBTX
	uow *FaultyUoW
}

func (f *faultyTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	n := f.uow.execs.Add(1)
	if f.uow.FailOn > 0 && n == f.uow.FailOn {
		return nil, f.uow.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
