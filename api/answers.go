package api

import (
	"encoding/json"
	"net/http"

	"qna/pkg/errs"
	"qna/pkg/models"
	"qna/pkg/repository"
)

type AnswersHandler struct {
	answers repository.AnswerRepo
}

func NewAnswersHandler(ar repository.AnswerRepo) *AnswersHandler {
	return &AnswersHandler{answers: ar}
}

// Create posts an answer to the question named in the path. A dangling
// question id comes back from the repository as a ForeignKeyError and maps
// to 422.
func (h *AnswersHandler) Create(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := validateBody(r.Context(), answerSchema, body); err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, errs.Validation("body", "must be valid JSON"))
		return
	}

	created, err := h.answers.CreateAnswer(r.Context(), models.NewAnswer{
		Content:    req.Content,
		QuestionID: questionID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, created, http.StatusCreated)
}

func (h *AnswersHandler) ListByQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	page, err := pageFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := h.answers.ListAnswers(r.Context(), questionID, page)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]any{
		"limit":  page.Limit,
		"offset": page.Offset,
		"items":  items,
	}
	writeJSON(w, resp, http.StatusOK)
}

func (h *AnswersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	a, err := h.answers.GetAnswer(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, a, http.StatusOK)
}

func (h *AnswersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.answers.DeleteAnswer(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
