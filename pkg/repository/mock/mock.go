package mock

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"qna/pkg/errs"
	"qna/pkg/models"
)

// Test helpers and mocks. In-memory implementations of the repository
// interfaces with the same error taxonomy as the postgres implementation.

type Store struct {
	mu        sync.Mutex
	questions map[int32]models.Question
	answers   map[int32]models.Answer
	accounts  map[int32]models.Account
	nextID    int32

	// Err, when set, is returned by every operation. Lets tests exercise
	// the facade's error translation.
	Err error
}

func NewStore() *Store {
	return &Store{
		questions: make(map[int32]models.Question),
		answers:   make(map[int32]models.Answer),
		accounts:  make(map[int32]models.Account),
		nextID:    1,
	}
}

func validateNewQuestion(q models.NewQuestion) error {
	if strings.TrimSpace(q.Title) == "" {
		return errs.Validation("title", "must not be empty")
	}
	if utf8.RuneCountInString(q.Title) > 255 {
		return errs.Validation("title", "must be at most 255 characters")
	}
	if strings.TrimSpace(q.Content) == "" {
		return errs.Validation("content", "must not be empty")
	}
	return nil
}

func (s *Store) CreateQuestion(ctx context.Context, q models.NewQuestion) (*models.Question, error) {
	if err := validateNewQuestion(q); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	created := models.Question{
		ID:        s.nextID,
		Title:     q.Title,
		Content:   q.Content,
		Tags:      q.Tags,
		CreatedOn: time.Now().UTC(),
	}
	s.questions[created.ID] = created
	s.nextID++
	return &created, nil
}

func (s *Store) GetQuestion(ctx context.Context, id int32) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	q, ok := s.questions[id]
	if !ok {
		return nil, errs.NotFound("question", id)
	}
	return &q, nil
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

func (s *Store) ListQuestions(ctx context.Context, page models.Page) ([]models.Question, error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	all := make([]models.Question, 0, len(s.questions))
	for _, q := range s.questions {
		all = append(all, q)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if page.Offset >= len(all) {
		return []models.Question{}, nil
	}
	all = all[page.Offset:]
	if page.Limit < len(all) {
		all = all[:page.Limit]
	}
	return all, nil
}

func (s *Store) UpdateQuestion(ctx context.Context, id int32, q models.NewQuestion) (*models.Question, error) {
	if err := validateNewQuestion(q); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	cur, ok := s.questions[id]
	if !ok {
		return nil, errs.NotFound("question", id)
	}
	cur.Title = q.Title
	cur.Content = q.Content
	cur.Tags = q.Tags
	s.questions[id] = cur
	return &cur, nil
}

func (s *Store) DeleteQuestion(ctx context.Context, id int32, cascade bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.questions[id]; !ok {
		return errs.NotFound("question", id)
	}
	var dependent []int32
	for aid, a := range s.answers {
		if a.QuestionID == id {
			dependent = append(dependent, aid)
		}
	}
	if len(dependent) > 0 && !cascade {
		return &errs.ConflictError{Reason: "question has answers"}
	}
	for _, aid := range dependent {
		delete(s.answers, aid)
	}
	delete(s.questions, id)
	return nil
}

func (s *Store) CreateAnswer(ctx context.Context, a models.NewAnswer) (*models.Answer, error) {
	if strings.TrimSpace(a.Content) == "" {
		return nil, errs.Validation("content", "must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if _, ok := s.questions[a.QuestionID]; !ok {
		return nil, &errs.ForeignKeyError{Constraint: "answers_corresponding_question_fkey"}
	}
	created := models.Answer{
		ID:         s.nextID,
		Content:    a.Content,
		QuestionID: a.QuestionID,
		CreatedOn:  time.Now().UTC(),
	}
	s.answers[created.ID] = created
	s.nextID++
	return &created, nil
}

func (s *Store) GetAnswer(ctx context.Context, id int32) (*models.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	a, ok := s.answers[id]
	if !ok {
		return nil, errs.NotFound("answer", id)
	}
	return &a, nil
}

func (s *Store) ListAnswers(ctx context.Context, questionID int32, page models.Page) ([]models.Answer, error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var all []models.Answer
	for _, a := range s.answers {
		if a.QuestionID == questionID {
			all = append(all, a)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if page.Offset >= len(all) {
		return []models.Answer{}, nil
	}
	all = all[page.Offset:]
	if page.Limit < len(all) {
		all = all[:page.Limit]
	}
	return all, nil
}

func (s *Store) DeleteAnswer(ctx context.Context, id int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.answers[id]; !ok {
		return errs.NotFound("answer", id)
	}
	delete(s.answers, id)
	return nil
}

func (s *Store) CreateAccount(ctx context.Context, email, passwordHash string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, acc := range s.accounts {
		if acc.Email == email {
			return nil, &errs.ConflictError{Reason: "email already registered"}
		}
	}
	created := models.Account{
		ID:           s.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedOn:    time.Now().UTC(),
	}
	s.accounts[created.ID] = created
	s.nextID++
	return &created, nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, acc := range s.accounts {
		if acc.Email == email {
			return &acc, nil
		}
	}
	return nil, &errs.NotFoundError{Entity: "account"}
}
