package diagnostic

import (
	"errors"
	"log"
	"sync"

	"github.com/routethis/assistant/internal/model/diagnostic"
)

var ErrSessionNotFound = errors.New("diagnostic session not found")

// Service owns the live diagnostic sessions. State is in-memory only; a
// session exists for the lifetime of one dialogue.
type Service struct {
	mu    sync.RWMutex
	graph *Graph
	walks map[string]*walk
}

// NewService bootstraps the in-memory diagnostic service.
func NewService() *Service {
	return &Service{
		graph: NewGraph(),
		walks: make(map[string]*walk),
	}
}

// Start creates a session and returns its first question. Starting a session
// that already exists reuses it and returns its pending question instead of
// erroring, so a retried start cannot wipe progress.
func (s *Service) Start(sessionID string) (*diagnostic.Question, error) {
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.walks[sessionID]; ok {
		log.Printf("[diagnostic] reusing live session=%s at question=%d", sessionID, existing.current)
		return existing.currentQuestion(), nil
	}

	w := newWalk(s.graph)
	s.walks[sessionID] = w
	return w.currentQuestion(), nil
}

// Answer records the reply for the session's current question and returns
// either the next question or the final recommendation.
func (s *Service) Answer(sessionID, rawAnswer string) (diagnostic.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.walks[sessionID]
	if !ok {
		return diagnostic.AnswerResult{}, ErrSessionNotFound
	}

	result := w.answer(ParseAnswer(rawAnswer))
	if result.Complete && result.Recommendation != nil {
		log.Printf("[diagnostic] session=%s complete label=%s score=%.0f",
			sessionID, result.Recommendation.Label, result.Recommendation.Score)
	}
	return result, nil
}

// Status reports the live state of a session without mutating it.
func (s *Service) Status(sessionID string) diagnostic.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.walks[sessionID]
	if !ok {
		return diagnostic.Status{}
	}

	status := diagnostic.Status{
		SessionExists:  true,
		Completed:      w.completed,
		Recommendation: w.recommendation,
	}
	if !w.completed {
		status.CurrentQuestion = w.currentQuestion()
	}
	return status
}

// Question returns the canonical question at index, unframed.
func (s *Service) Question(index int) (*diagnostic.Question, error) {
	raw, ok := s.graph.QuestionText(index)
	if !ok {
		return nil, errors.New("question index out of range")
	}
	return &diagnostic.Question{
		Text:    raw,
		RawText: raw,
		Index:   index,
		IsFinal: index == s.graph.QuestionCount()-1,
	}, nil
}

// Drop removes a session. Unknown ids are ignored.
func (s *Service) Drop(sessionID string) {
	s.mu.Lock()
	delete(s.walks, sessionID)
	s.mu.Unlock()
}
