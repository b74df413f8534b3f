package models

import "time"

// Domain models matching the database schema in db/migrations.

type Question struct {
	ID        int32     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Tags      []string  `json:"tags,omitempty" db:"tags"`
	CreatedOn time.Time `json:"created_on" db:"created_on"`
}

// NewQuestion is the caller-supplied part of a Question; id and created_on
// are assigned by the store on insert.
type NewQuestion struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

type Answer struct {
	ID        int32     `json:"id" db:"id"`
	Content   string    `json:"content" db:"content"`
	CreatedOn time.Time `json:"created_on" db:"created_on"`
	// QuestionID maps the corresponding_question column.
	QuestionID int32 `json:"question_id" db:"corresponding_question"`
}

type NewAnswer struct {
	Content    string `json:"content"`
	QuestionID int32  `json:"question_id"`
}

type Account struct {
	ID           int32     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedOn    time.Time `json:"created_on" db:"created_on"`
}

// Page bounds a list query. Limit must be positive and Offset non-negative;
// repositories reject anything else before touching the store.
type Page struct {
	Offset int
	Limit  int
}
