package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"qna/pkg/errs"
	"qna/pkg/models"
	"qna/pkg/repository"
)

const (
	maxBodyBytes  = 1 << 20
	defaultLimit  = 20
	maxLimit      = 100
	defaultOffset = 0
)

type QuestionsHandler struct {
	questions repository.QuestionRepo
}

func NewQuestionsHandler(qr repository.QuestionRepo) *QuestionsHandler {
	return &QuestionsHandler{questions: qr}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errs.Validation("body", "unreadable or too large")
	}
	return body, nil
}

func pathID(r *http.Request) (int32, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, errs.Validation("id", "must be a positive integer")
	}
	return int32(id), nil
}

// pageFromQuery parses limit/offset query parameters. Absent parameters get
// defaults; malformed ones are validation errors, not silent fallbacks.
func pageFromQuery(r *http.Request) (models.Page, error) {
	page := models.Page{Limit: defaultLimit, Offset: defaultOffset}

	q := r.URL.Query()
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return page, errs.Validation("limit", "must be an integer")
		}
		page.Limit = v
	}
	if raw := q.Get("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return page, errs.Validation("offset", "must be an integer")
		}
		page.Offset = v
	}
	if page.Limit > maxLimit {
		return page, errs.Validation("limit", "must be at most "+strconv.Itoa(maxLimit))
	}

	return page, nil
}

func (h *QuestionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := validateBody(r.Context(), questionSchema, body); err != nil {
		writeError(w, err)
		return
	}

	var req models.NewQuestion
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, errs.Validation("body", "must be valid JSON"))
		return
	}

	created, err := h.questions.CreateQuestion(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, created, http.StatusCreated)
}

func (h *QuestionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	q, err := h.questions.GetQuestion(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, q, http.StatusOK)
}

func (h *QuestionsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := h.questions.ListQuestions(r.Context(), page)
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

func (h *QuestionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := validateBody(r.Context(), questionSchema, body); err != nil {
		writeError(w, err)
		return
	}

	var req models.NewQuestion
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, errs.Validation("body", "must be valid JSON"))
		return
	}

	updated, err := h.questions.UpdateQuestion(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, updated, http.StatusOK)
}

// Delete removes a question. Deleting a question that still has answers is
// rejected with 409 unless the caller passes cascade=true.
func (h *QuestionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	cascade := r.URL.Query().Get("cascade") == "true"
	if err := h.questions.DeleteQuestion(r.Context(), id, cascade); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
