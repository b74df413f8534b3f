package repository

import (
	"context"

	"qna/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type QuestionRepo interface {
	CreateQuestion(ctx context.Context, q models.NewQuestion) (*models.Question, error)
	GetQuestion(ctx context.Context, id int32) (*models.Question, error)
	ListQuestions(ctx context.Context, page models.Page) ([]models.Question, error)
	UpdateQuestion(ctx context.Context, id int32, q models.NewQuestion) (*models.Question, error)
	// DeleteQuestion removes a question. Without cascade the delete fails
	// with a ConflictError while dependent answers exist; with cascade the
	// answers are removed in the same transaction.
	DeleteQuestion(ctx context.Context, id int32, cascade bool) error
}

type AnswerRepo interface {
	CreateAnswer(ctx context.Context, a models.NewAnswer) (*models.Answer, error)
	GetAnswer(ctx context.Context, id int32) (*models.Answer, error)
	ListAnswers(ctx context.Context, questionID int32, page models.Page) ([]models.Answer, error)
	DeleteAnswer(ctx context.Context, id int32) error
}

type AccountRepo interface {
	CreateAccount(ctx context.Context, email, passwordHash string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}
