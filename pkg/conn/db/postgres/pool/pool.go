// Package pool narrows pgxpool to what repositories use, so they can be replaced in tests.
package pool

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Queryer sends SQL. It is a subset of pgxpool.Pool and pgx.Tx .
type Queryer interface {
	// Exec sends SQL without result rows.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// Query sends SQL with result rows.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)

	// QueryRow sends SQL with a single result row.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Tx is a subset of pgx.Tx .
//
// pgx.Tx does not implement Tx, because Begin of pgx.Tx returns pgx.Tx.
// Get Tx from Pool.Begin .
type Tx interface {
	Queryer
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type pgxTx struct {
	base pgx.Tx
}

var _ Tx = &pgxTx{}

func (tx *pgxTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return tx.base.Exec(ctx, sql, args...)
}

func (tx *pgxTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return tx.base.Query(ctx, sql, args...)
}

func (tx *pgxTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return tx.base.QueryRow(ctx, sql, args...)
}

func (tx *pgxTx) Commit(ctx context.Context) error {
	return tx.base.Commit(ctx)
}

func (tx *pgxTx) Rollback(ctx context.Context) error {
	return tx.base.Rollback(ctx)
}

// Pool is a subset of *pgxpool.Pool . Wrap one to get a Pool.
type Pool interface {
	Queryer
	Begin(ctx context.Context) (Tx, error)
	Ping(ctx context.Context) error
	Close()
}

type pgxPool struct {
	base *pgxpool.Pool
}

var _ Pool = &pgxPool{}

func (p *pgxPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.base.Exec(ctx, sql, args...)
}

func (p *pgxPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return p.base.Query(ctx, sql, args...)
}

func (p *pgxPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return p.base.QueryRow(ctx, sql, args...)
}

func (p *pgxPool) Begin(ctx context.Context) (Tx, error) {
	tx, err := p.base.Begin(ctx)
	if tx == nil {
		return nil, err
	}
	return &pgxTx{tx}, err
}

func (p *pgxPool) Ping(ctx context.Context) error {
	return p.base.Ping(ctx)
}

func (p *pgxPool) Close() {
	p.base.Close()
}

func Wrap(p *pgxpool.Pool) Pool {
	return &pgxPool{p}
}

// Connect opens a pool to uri.
func Connect(ctx context.Context, uri string) (Pool, error) {
	p, err := pgxpool.Connect(ctx, uri)
	if err != nil {
		return nil, err
	}
	return Wrap(p), nil
}
