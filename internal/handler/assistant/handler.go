// Package assistant serves the conversational endpoints of the oracle API:
// the greeting, the initial-response triage and free-text classification.
package assistant

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/routethis/assistant/internal/service/ai"
	"github.com/routethis/assistant/internal/service/oracle"
)

const maxMessageLength = 1000

// Handler exposes the assistant endpoints.
type Handler struct {
	oracle *oracle.Local
	aiSvc  *ai.Service
}

// New creates the assistant handler.
func New(o *oracle.Local, aiSvc *ai.Service) *Handler {
	return &Handler{oracle: o, aiSvc: aiSvc}
}

// RegisterRoutes mounts the assistant routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/greeting", h.handleGreeting)
	r.Post("/initial", h.handleInitial)
	r.Post("/message", h.handleMessage)
}

// handleGreeting returns the fixed opening line.
func (h *Handler) handleGreeting(w http.ResponseWriter, r *http.Request) {
	greeting, err := h.oracle.GetGreeting(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to produce greeting")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"greeting": greeting})
}

// handleInitial triages the user's first message and, when router-related,
// opens a diagnostic session.
func (h *Handler) handleInitial(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message   string `json:"message"`
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
	if msg := validateMessage(payload.Message); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	result, err := h.oracle.HandleInitialResponse(r.Context(), payload.Message, payload.SessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleMessage runs a free-text prompt through the classification model.
func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateMessage(payload.Text); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	reply, err := h.oracle.Classify(r.Context(), payload.Text)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"reply": reply,
		"model": h.aiSvc.ModelName(),
	})
}

// validateMessage enforces the non-empty and length limits shared by the
// text endpoints. Returns an error message, or empty when valid.
func validateMessage(text string) string {
	if strings.TrimSpace(text) == "" {
		return "message cannot be empty"
	}
	if len(text) > maxMessageLength {
		return "message too long, limit is 1000 characters"
	}
	return ""
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
