package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"qna/pkg/models"
)

func TestCreateAnswer_DanglingQuestion(t *testing.T) {
	srv, _ := setupServer(t)
	token := testToken(t)

	res := doJSON(t, http.MethodPost, srv.URL+"/v1/questions/999/answers", token, map[string]any{
		"content": "orphan",
	})
	res.Body.Close()
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for dangling question, got %d", res.StatusCode)
	}
}

func TestCreateAndListAnswers(t *testing.T) {
	srv, _ := setupServer(t)
	token := testToken(t)

	res := doJSON(t, http.MethodPost, srv.URL+"/v1/questions", token, map[string]any{
		"title": "t", "content": "c",
	})
	var q models.Question
	decodeInto(t, res, &q)

	for i := 1; i <= 3; i++ {
		res := doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/questions/%d/answers", srv.URL, q.ID), token, map[string]any{
			"content": fmt.Sprintf("answer %d", i),
		})
		if res.StatusCode != http.StatusCreated {
			t.Fatalf("create answer %d: got %d", i, res.StatusCode)
		}
		var a models.Answer
		decodeInto(t, res, &a)
		if a.QuestionID != q.ID {
			t.Fatalf("answer bound to question %d, want %d", a.QuestionID, q.ID)
		}
	}

	res = doJSON(t, http.MethodGet, fmt.Sprintf("%s/v1/questions/%d/answers", srv.URL, q.ID), "", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list answers: got %d", res.StatusCode)
	}

	var page struct {
		Items []models.Answer `json:"items"`
	}
	decodeInto(t, res, &page)
	if len(page.Items) != 3 {
		t.Fatalf("expected 3 answers, got %d", len(page.Items))
	}
	for i := 1; i < len(page.Items); i++ {
		if page.Items[i-1].ID >= page.Items[i].ID {
			t.Fatalf("answers out of insertion order: %+v", page.Items)
		}
	}
}

func TestCreateAnswer_StructuralValidation(t *testing.T) {
	srv, _ := setupServer(t)
	token := testToken(t)

	res := doJSON(t, http.MethodPost, srv.URL+"/v1/questions", token, map[string]any{
		"title": "t", "content": "c",
	})
	var q models.Question
	decodeInto(t, res, &q)

	url := fmt.Sprintf("%s/v1/questions/%d/answers", srv.URL, q.ID)

	res = doJSON(t, http.MethodPost, url, token, map[string]any{})
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing content: expected 400, got %d", res.StatusCode)
	}

	res = doJSON(t, http.MethodPost, url, token, map[string]any{"content": "x", "extra": true})
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown field: expected 400, got %d", res.StatusCode)
	}
}

func TestGetAnswer(t *testing.T) {
	srv, _ := setupServer(t)
	token := testToken(t)

	res := doJSON(t, http.MethodPost, srv.URL+"/v1/questions", token, map[string]any{
		"title": "t", "content": "c",
	})
	var q models.Question
	decodeInto(t, res, &q)

	res = doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/questions/%d/answers", srv.URL, q.ID), token, map[string]any{
		"content": "the answer",
	})
	var a models.Answer
	decodeInto(t, res, &a)

	res = doJSON(t, http.MethodGet, fmt.Sprintf("%s/v1/answers/%d", srv.URL, a.ID), "", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get answer: got %d", res.StatusCode)
	}
	var got models.Answer
	decodeInto(t, res, &got)
	if got.Content != "the answer" {
		t.Fatalf("unexpected answer: %+v", got)
	}

	res = doJSON(t, http.MethodGet, srv.URL+"/v1/answers/424242", "", nil)
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("missing answer: expected 404, got %d", res.StatusCode)
	}
}

func TestDeleteAnswer(t *testing.T) {
	srv, _ := setupServer(t)
	token := testToken(t)

	res := doJSON(t, http.MethodPost, srv.URL+"/v1/questions", token, map[string]any{
		"title": "t", "content": "c",
	})
	var q models.Question
	decodeInto(t, res, &q)

	res = doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/questions/%d/answers", srv.URL, q.ID), token, map[string]any{
		"content": "short lived",
	})
	var a models.Answer
	decodeInto(t, res, &a)

	url := fmt.Sprintf("%s/v1/answers/%d", srv.URL, a.ID)

	res = doJSON(t, http.MethodDelete, url, token, nil)
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("delete answer: got %d", res.StatusCode)
	}

	res = doJSON(t, http.MethodGet, url, "", nil)
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", res.StatusCode)
	}

	res = doJSON(t, http.MethodDelete, url, token, nil)
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("double delete: expected 404, got %d", res.StatusCode)
	}
}
