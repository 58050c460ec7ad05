package oracle

import (
	"context"

	"github.com/routethis/assistant/internal/model/diagnostic"
	"github.com/routethis/assistant/internal/service/ai"
	diagservice "github.com/routethis/assistant/internal/service/diagnostic"
)

// Local hosts the oracle in-process by wrapping the diagnostic and AI
// services directly. The terminal client uses it when no server address is
// configured; the websocket converse handler uses it per connection.
type Local struct {
	diag *diagservice.Service
	ai   *ai.Service
}

// NewLocal wires an in-process oracle.
func NewLocal(diag *diagservice.Service, aiSvc *ai.Service) *Local {
	return &Local{diag: diag, ai: aiSvc}
}

// GetGreeting returns the canonical opening line.
func (l *Local) GetGreeting(_ context.Context) (string, error) {
	return ai.Greeting, nil
}

// HandleInitialResponse triages the first message: off-topic input gets the
// fixed redirect and no session; router trouble gets an empathetic
// acknowledgment plus the opening diagnostic question.
func (l *Local) HandleInitialResponse(ctx context.Context, message, sessionID string) (diagnostic.InitialResult, error) {
	if !l.ai.RouterRelated(ctx, message) {
		return diagnostic.InitialResult{Response: l.ai.OffTopicResponse()}, nil
	}

	acknowledgment := l.ai.Acknowledge(ctx, message)

	first, err := l.diag.Start(sessionID)
	if err != nil {
		return diagnostic.InitialResult{}, err
	}

	return diagnostic.InitialResult{
		Response:        acknowledgment,
		StartDiagnostic: true,
		FirstQuestion:   first,
	}, nil
}

// StartDiagnostic opens or resumes a session.
func (l *Local) StartDiagnostic(_ context.Context, sessionID string) (*diagnostic.Question, error) {
	return l.diag.Start(sessionID)
}

// AnswerQuestion advances the session's walk.
func (l *Local) AnswerQuestion(_ context.Context, sessionID, answer string) (diagnostic.AnswerResult, error) {
	return l.diag.Answer(sessionID, answer)
}

// Classify answers a free-text prompt with the AI service.
func (l *Local) Classify(ctx context.Context, prompt string) (string, error) {
	return l.ai.Reply(ctx, prompt), nil
}

var _ Oracle = (*Local)(nil)
