// Package db implements the schema migration engine. It evolves the store
// schema in versioned steps, one transaction per version, under a
// store-level advisory lock so concurrent processes cannot race.
package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"qna/internal/pool"
)

// Tx is the transaction surface the engine needs.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Store is the connection surface the engine needs. NewStore adapts a
// pooled connection; tests inject fakes.
type Store interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (Tx, error)
}

type connStore struct {
	conn pool.Querier
}

// NewStore wraps a pooled connection for use by the engine.
func NewStore(conn pool.Querier) Store {
	return connStore{conn: conn}
}

func (s connStore) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return s.conn.Exec(ctx, sql, args...)
}

func (s connStore) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.conn.QueryRow(ctx, sql, args...)
}

func (s connStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
