// Package oracle gives the dialogue engine its view of the backend: greeting,
// initial-response triage, diagnostic sequencing and free-text classification.
// The engine treats it as a black box; implementations may sit behind HTTP or
// wrap the services in-process.
package oracle

import (
	"context"

	"github.com/routethis/assistant/internal/model/diagnostic"
)

// Oracle is the backend contract consumed by the dialogue orchestrator.
type Oracle interface {
	// GetGreeting returns the assistant's opening line.
	GetGreeting(ctx context.Context) (string, error)

	// HandleInitialResponse triages the user's first message and, when it is
	// router-related, opens a diagnostic session and returns its first
	// question.
	HandleInitialResponse(ctx context.Context, message, sessionID string) (diagnostic.InitialResult, error)

	// StartDiagnostic opens (or resumes) a diagnostic session.
	StartDiagnostic(ctx context.Context, sessionID string) (*diagnostic.Question, error)

	// AnswerQuestion records an answer for the session's current question.
	AnswerQuestion(ctx context.Context, sessionID, answer string) (diagnostic.AnswerResult, error)

	// Classify runs a free-text classification prompt and returns the raw
	// reply string.
	Classify(ctx context.Context, prompt string) (string, error)
}
