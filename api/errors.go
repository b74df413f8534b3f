package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"qna/pkg/errs"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

// writeError maps the internal error taxonomy onto the stable external
// surface. Anything outside the taxonomy is reported as a generic 500 so
// store-specific error text never reaches a client.
func writeError(w http.ResponseWriter, err error) {
	var (
		ve *errs.ValidationError
		nf *errs.NotFoundError
		fk *errs.ForeignKeyError
		ce *errs.ConflictError
	)

	switch {
	case errors.As(err, &ve):
		writeJSON(w, errorResponse{Error: ve.Error()}, http.StatusBadRequest)
	case errors.As(err, &nf):
		writeJSON(w, errorResponse{Error: nf.Error()}, http.StatusNotFound)
	case errors.As(err, &fk):
		writeJSON(w, errorResponse{Error: "referenced entity does not exist"}, http.StatusUnprocessableEntity)
	case errors.As(err, &ce):
		writeJSON(w, errorResponse{Error: ce.Error()}, http.StatusConflict)
	case errors.Is(err, errs.ErrPoolTimeout), errors.Is(err, errs.ErrStoreUnavailable), errors.Is(err, errs.ErrPoolClosed):
		writeJSON(w, errorResponse{Error: "service temporarily unavailable"}, http.StatusServiceUnavailable)
	default:
		logger.Error("internal error", slog.Any("err", err))
		writeJSON(w, errorResponse{Error: "internal server error"}, http.StatusInternalServerError)
	}
}
