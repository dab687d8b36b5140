package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// snapshotTx sees every statement against one snapshot, so a parent row
// and its children are read consistently.
var snapshotTx = pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}

// WithTransaction runs fn inside a read-write transaction, committing when
// fn returns nil and rolling back otherwise.
func WithTransaction(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	_, err := inTx(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) (struct{}, error) {
		return struct{}{}, fn(tx)
	})
	return err
}

// ReadSnapshot runs fn inside a read-only repeatable-read transaction and
// returns its result.
func ReadSnapshot[T any](ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) (T, error)) (T, error) {
	return inTx(ctx, pool, snapshotTx, fn)
}

func inTx[T any](ctx context.Context, pool *pgxpool.Pool, opts pgx.TxOptions, fn func(tx pgx.Tx) (T, error)) (T, error) {
	var zero T

	tx, err := pool.BeginTx(ctx, opts)
	if err != nil {
		return zero, fmt.Errorf("postgres: begin tx: %w", err)
	}

	result, err := fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return zero, fmt.Errorf("postgres: rollback tx: %w (original error: %w)", rbErr, err)
		}
		return zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, fmt.Errorf("postgres: commit tx: %w", err)
	}
	return result, nil
}
