package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shersomas/manualbot/internal/chat"
	"github.com/shersomas/manualbot/internal/embed"
	"github.com/shersomas/manualbot/internal/vectorstore"
)

// questionRequest is the body for POST /question.
type questionRequest struct {
	InputStr string `json:"input_str"`
}

type questionResponse struct {
	Response string `json:"response"`
}

// handleQuestion answers a web question.
func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonDetail(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	answer, err := s.answerer.Answer(r.Context(), req.InputStr)
	if err != nil {
		s.logPipelineError(r, err)
		jsonDetail(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, questionResponse{Response: answer})
}

// handleWhatsApp answers a question relayed from WhatsApp and forwards the
// answer to the messaging gateway. The body is a raw JSON-encoded string.
func (s *Server) handleWhatsApp(w http.ResponseWriter, r *http.Request) {
	var message string
	if err := json.NewDecoder(r.Body).Decode(&message); err != nil {
		jsonDetail(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	message = strings.ToLower(message)

	answer, err := s.answerer.Answer(r.Context(), message)
	if err != nil {
		s.logPipelineError(r, err)
		jsonDetail(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := s.sender.Send(r.Context(), answer); err != nil {
		s.log.Error("whatsapp delivery failed", "error", err)
		jsonDetail(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, questionResponse{Response: answer})
}

// logPipelineError records which stage of the chain failed. Callers still
// receive a plain 500 with the error text.
func (s *Server) logPipelineError(r *http.Request, err error) {
	kind := "internal"
	var embErr *embed.EmbeddingError
	var upErr *vectorstore.UploadError
	var genErr *chat.GenerationError
	switch {
	case errors.As(err, &embErr):
		kind = "embedding"
	case errors.As(err, &upErr):
		kind = "upload"
	case errors.As(err, &genErr):
		kind = "generation"
	}
	s.log.Error("question failed", "kind", kind, "path", r.URL.Path, "error", err)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func jsonDetail(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}
