package api

import (
	"github.com/gorilla/mux"

	"qna/internal/config"
	"qna/pkg/repository"
)

// SetupRoutes wires handlers onto the router. Repositories are passed in
// explicitly so callers control their lifetime and tests can substitute
// in-memory implementations.
func SetupRoutes(cfg *config.Config, version, buildTime string, questions repository.QuestionRepo, answers repository.AnswerRepo, accounts repository.AccountRepo) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(accounts, cfg.JWTSecret, cfg.TokenDuration)
	questionsHandler := NewQuestionsHandler(questions)
	answersHandler := NewAnswersHandler(answers)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// Reads are open
	r.HandleFunc("/v1/questions", questionsHandler.List).Methods("GET")
	r.HandleFunc("/v1/questions/{id}", questionsHandler.Get).Methods("GET")
	r.HandleFunc("/v1/questions/{id}/answers", answersHandler.ListByQuestion).Methods("GET")
	r.HandleFunc("/v1/answers/{id}", answersHandler.Get).Methods("GET")

	// Writes require a valid token
	writes := r.PathPrefix("/v1").Subrouter()
	writes.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))
	writes.HandleFunc("/questions", questionsHandler.Create).Methods("POST")
	writes.HandleFunc("/questions/{id}", questionsHandler.Update).Methods("PUT")
	writes.HandleFunc("/questions/{id}", questionsHandler.Delete).Methods("DELETE")
	writes.HandleFunc("/questions/{id}/answers", answersHandler.Create).Methods("POST")
	writes.HandleFunc("/answers/{id}", answersHandler.Delete).Methods("DELETE")

	return r
}
