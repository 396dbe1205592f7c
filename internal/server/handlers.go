package server

import (
	"encoding/json"
	"net/http"

	"github.com/NivBraz/wordcheck-service/internal/models"
)

// Error codes used in JSON error bodies.
const (
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"
)

// handleValidate answers GET /api/validate?word=... A missing or empty word
// is not an error; it is simply not in the vocabulary.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	valid := s.vocab.Contains(r.URL.Query().Get("word"))
	s.metrics.ObserveLookup(valid)
	writeJSON(w, http.StatusOK, models.ValidateResponse{Valid: valid})
}

// handleWords answers GET /api/words with every word in the vocabulary.
func (s *Server) handleWords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.vocab.Words())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status: "ok",
		Words:  s.vocab.Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // client may have gone away
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, models.ErrorResponse{
		Status:  status,
		Code:    code,
		Message: message,
	})
}
