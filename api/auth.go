package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"qna/pkg/errs"
	"qna/pkg/repository"
)

type AuthHandler struct {
	accounts      repository.AccountRepo
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(ar repository.AccountRepo, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{accounts: ar, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) issueToken(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(h.tokenDuration).Unix(),
	})
	return token.SignedString([]byte(h.jwtSecret))
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := validateBody(r.Context(), credentialsSchema, body); err != nil {
		writeError(w, err)
		return
	}

	var req credentialsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, errs.Validation("body", "must be valid JSON"))
		return
	}
	if len(req.Password) < 8 {
		writeError(w, errs.Validation("password", "must be at least 8 characters"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.accounts.CreateAccount(r.Context(), req.Email, string(hash)); err != nil {
		writeError(w, err)
		return
	}

	tokenStr, err := h.issueToken(req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr}, http.StatusCreated)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := validateBody(r.Context(), credentialsSchema, body); err != nil {
		writeError(w, err)
		return
	}

	var req credentialsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, errs.Validation("body", "must be valid JSON"))
		return
	}

	account, err := h.accounts.GetAccountByEmail(r.Context(), req.Email)
	if err != nil || account == nil {
		// same response for unknown email and bad password
		http.Error(w, "Credentials not found", http.StatusUnauthorized)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, "Credentials not found", http.StatusUnauthorized)
		return
	}

	tokenStr, err := h.issueToken(req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr}, http.StatusOK)
}
