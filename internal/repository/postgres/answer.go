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

func (r *Repo) CreateAnswer(ctx context.Context, a models.NewAnswer) (*models.Answer, error) {
	if strings.TrimSpace(a.Content) == "" {
		return nil, errs.Validation("content", "must not be empty")
	}
	if a.QuestionID <= 0 {
		return nil, errs.Validation("question_id", "must be a positive id")
	}

	conn, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Release(conn)

	var created models.Answer
	err = conn.QueryRow(ctx,
		`INSERT INTO answers (content, corresponding_question)
		 VALUES ($1, $2)
		 RETURNING id, content, created_on, corresponding_question`,
		a.Content, a.QuestionID,
	).Scan(&created.ID, &created.Content, &created.CreatedOn, &created.QuestionID)
	if err != nil {
		// a dangling question_id trips the FK constraint; the store is the
		// sole enforcer of that invariant
		return nil, fmt.Errorf("create answer: %w", translate(err))
	}

	return &created, nil
}

func (r *Repo) GetAnswer(ctx context.Context, id int32) (*models.Answer, error) {
	conn, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Release(conn)

	var a models.Answer
	err = conn.QueryRow(ctx,
		`SELECT id, content, created_on, corresponding_question FROM answers WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.Content, &a.CreatedOn, &a.QuestionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("answer", id)
		}
		return nil, fmt.Errorf("get answer: %w", translate(err))
	}

	return &a, nil
}

func (r *Repo) ListAnswers(ctx context.Context, questionID int32, page models.Page) ([]models.Answer, error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}

	conn, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Release(conn)

	rows, err := conn.Query(ctx,
		`SELECT id, content, created_on, corresponding_question FROM answers
		 WHERE corresponding_question = $1
		 ORDER BY id ASC
		 LIMIT $2 OFFSET $3`,
		questionID, page.Limit, page.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", translate(err))
	}
	defer rows.Close()

	answers := []models.Answer{}
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.ID, &a.Content, &a.CreatedOn, &a.QuestionID); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list answers: %w", translate(err))
	}

	return answers, nil
}

func (r *Repo) DeleteAnswer(ctx context.Context, id int32) error {
	conn, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer r.pool.Release(conn)

	tag, err := conn.Exec(ctx, `DELETE FROM answers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete answer: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("answer", id)
	}

	return nil
}
