// Package diagnostic serves the question-sequencing endpoints of the oracle
// API.
package diagnostic

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	diagservice "github.com/routethis/assistant/internal/service/diagnostic"
)

// Handler exposes the diagnostic session endpoints.
type Handler struct {
	diagSvc *diagservice.Service
}

// New creates the diagnostic handler.
func New(diagSvc *diagservice.Service) *Handler {
	return &Handler{diagSvc: diagSvc}
}

// RegisterRoutes mounts the diagnostic routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/diagnostic/start", h.handleStart)
	r.Post("/diagnostic/answer", h.handleAnswer)
	r.Get("/diagnostic/status/{sessionID}", h.handleStatus)
	r.Get("/question/{index}", h.handleQuestion)
}

// handleStart opens (or resumes) a session and returns its first question.
func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		respondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	question, err := h.diagSvc.Start(payload.SessionID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, question)
}

// handleAnswer records a reply and returns the next question or the final
// recommendation.
func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		Answer    string `json:"answer"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" || payload.Answer == "" {
		respondError(w, http.StatusBadRequest, "sessionId and answer are required")
		return
	}

	result, err := h.diagSvc.Answer(payload.SessionID, payload.Answer)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, diagservice.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleStatus reports the live state of a session.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	respondJSON(w, http.StatusOK, h.diagSvc.Status(sessionID))
}

// handleQuestion returns a canonical question by index.
func (h *Handler) handleQuestion(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	question, err := h.diagSvc.Question(index)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, question)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
