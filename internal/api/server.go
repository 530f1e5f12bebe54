// Package api exposes the question-answering pipeline over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// QuestionAnswerer runs one question through the retrieval-augmented chain.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// MessageSender delivers a generated answer to the messaging gateway.
type MessageSender interface {
	Send(ctx context.Context, body string) error
}

// Server is the HTTP API server for the manual bot.
type Server struct {
	router   chi.Router
	answerer QuestionAnswerer
	sender   MessageSender
	log      *slog.Logger
}

// NewServer creates and configures the HTTP server.
func NewServer(answerer QuestionAnswerer, sender MessageSender, log *slog.Logger) *Server {
	s := &Server{
		answerer: answerer,
		sender:   sender,
		log:      log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/", s.handlePing)
	r.Get("/ping", s.handlePing)
	r.Post("/question", s.handleQuestion)
	r.Post("/question/whatsapp", s.handleWhatsApp)

	s.router = r
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"Hello":"World"}`))
}
