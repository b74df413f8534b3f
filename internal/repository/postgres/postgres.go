// Package postgres implements the repository interfaces against a
// PostgreSQL store. Every operation borrows a connection from the pool for
// its duration; validation runs first so invalid requests never cost a
// connection.
package postgres

import (
	"context"
	"fmt"

	"qna/internal/pool"
	"qna/pkg/repository"
)

type Repo struct {
	pool *pool.Pool
}

// Ensure Repo implements the public interfaces.
var _ repository.QuestionRepo = (*Repo)(nil)
var _ repository.AnswerRepo = (*Repo)(nil)
var _ repository.AccountRepo = (*Repo)(nil)

func New(p *pool.Pool) *Repo {
	return &Repo{pool: p}
}

func (r *Repo) acquire(ctx context.Context) (pool.Querier, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, nil
}
