package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"qna/pkg/errs"
	"qna/pkg/models"
)

const maxTitleLen = 255

func validateNewQuestion(q models.NewQuestion) error {
	if strings.TrimSpace(q.Title) == "" {
		return errs.Validation("title", "must not be empty")
	}
	if utf8.RuneCountInString(q.Title) > maxTitleLen {
		return errs.Validation("title", fmt.Sprintf("must be at most %d characters", maxTitleLen))
	}
	if strings.TrimSpace(q.Content) == "" {
		return errs.Validation("content", "must not be empty")
	}
	return nil
}

func validatePage(page models.Page) error {
	if page.Limit <= 0 {
		return errs.Validation("limit", "must be positive")
	}
	if page.Offset < 0 {
		return errs.Validation("offset", "must not be negative")
	}
	return nil
}

func (r *Repo) CreateQuestion(ctx context.Context, q models.NewQuestion) (*models.Question, error) {
	if err := validateNewQuestion(q); err != nil {
		return nil, err
	}

	conn, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Release(conn)

	var created models.Question
	err = conn.QueryRow(ctx,
		`INSERT INTO questions (title, content, tags)
		 VALUES ($1, $2, $3)
		 RETURNING id, title, content, tags, created_on`,
		q.Title, q.Content, q.Tags,
	).Scan(&created.ID, &created.Title, &created.Content, &created.Tags, &created.CreatedOn)
	if err != nil {
		return nil, fmt.Errorf("create question: %w", translate(err))
	}

	return &created, nil
}

func (r *Repo) GetQuestion(ctx context.Context, id int32) (*models.Question, error) {
	conn, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Release(conn)

	var q models.Question
	err = conn.QueryRow(ctx,
		`SELECT id, title, content, tags, created_on FROM questions WHERE id = $1`,
		id,
	).Scan(&q.ID, &q.Title, &q.Content, &q.Tags, &q.CreatedOn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("question", id)
		}
		return nil, fmt.Errorf("get question: %w", translate(err))
	}

	return &q, nil
}

// ListQuestions pages through questions in insertion order (id ascending)
// so pagination stays deterministic.
func (r *Repo) ListQuestions(ctx context.Context, page models.Page) ([]models.Question, error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}

	conn, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Release(conn)

	rows, err := conn.Query(ctx,
		`SELECT id, title, content, tags, created_on FROM questions
		 ORDER BY id ASC
		 LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", translate(err))
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Title, &q.Content, &q.Tags, &q.CreatedOn); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions: %w", translate(err))
	}

	return questions, nil
}

func (r *Repo) UpdateQuestion(ctx context.Context, id int32, q models.NewQuestion) (*models.Question, error) {
	if err := validateNewQuestion(q); err != nil {
		return nil, err
	}

	conn, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.Release(conn)

	var updated models.Question
	err = conn.QueryRow(ctx,
		`UPDATE questions
		 SET title = $1, content = $2, tags = $3
		 WHERE id = $4
		 RETURNING id, title, content, tags, created_on`,
		q.Title, q.Content, q.Tags, id,
	).Scan(&updated.ID, &updated.Title, &updated.Content, &updated.Tags, &updated.CreatedOn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("question", id)
		}
		return nil, fmt.Errorf("update question: %w", translate(err))
	}

	return &updated, nil
}

// DeleteQuestion removes a question. The foreign key on answers carries no
// cascade action, so the store rejects the delete while answers exist; that
// surfaces as a ConflictError unless the caller opted into cascade, in
// which case answers and question go in one transaction.
func (r *Repo) DeleteQuestion(ctx context.Context, id int32, cascade bool) error {
	conn, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer r.pool.Release(conn)

	if !cascade {
		tag, err := conn.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
		if err != nil {
			if fkErr := translate(err); errs.IsForeignKey(fkErr) {
				return &errs.ConflictError{Reason: "question has answers; delete with cascade to remove them"}
			}
			return fmt.Errorf("delete question: %w", translate(err))
		}
		if tag.RowsAffected() == 0 {
			return errs.NotFound("question", id)
		}
		return nil
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin cascade delete: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM answers WHERE corresponding_question = $1`, id); err != nil {
		return fmt.Errorf("delete answers: %w", translate(err))
	}
	tag, err := tx.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFound("question", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit cascade delete: %w", err)
	}

	return nil
}
