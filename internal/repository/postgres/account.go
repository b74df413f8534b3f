package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"qna/pkg/errs"
	"qna/pkg/models"
)

func (r *Repo) CreateAccount(ctx context.Context, email, passwordHash string) (*models.Account, error) {
	if strings.TrimSpace(email) == "" {
		return nil, errs.Validation("email", "must not be empty")
	}
	if passwordHash == "" {
		return nil, errs.Validation("password", "must not be empty")
	}

	conn, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Release(conn)

	var created models.Account
	err = conn.QueryRow(ctx,
		`INSERT INTO accounts (email, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, email, password_hash, created_on`,
		email, passwordHash,
	).Scan(&created.ID, &created.Email, &created.PasswordHash, &created.CreatedOn)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", translate(err))
	}

	return &created, nil
}

func (r *Repo) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	conn, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Release(conn)

	var a models.Account
	err = conn.QueryRow(ctx,
		`SELECT id, email, password_hash, created_on FROM accounts WHERE email = $1`,
		email,
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedOn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &errs.NotFoundError{Entity: "account"}
		}
		return nil, fmt.Errorf("get account: %w", translate(err))
	}

	return &a, nil
}
