// Package dialogue implements the conversation orchestration engine: the
// state machine that routes user input through the oracle, maintains the
// message timeline, and coordinates spoken output.
package dialogue

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/routethis/assistant/internal/model/convo"
	"github.com/routethis/assistant/internal/model/diagnostic"
	"github.com/routethis/assistant/internal/service/intent"
	"github.com/routethis/assistant/internal/service/oracle"
	"github.com/routethis/assistant/internal/service/voice"
)

const (
	fallbackGreeting = "Hello! I'm RouteThis — your router troubleshooter. How can I help?"

	initialErrorMessage    = "Sorry, I encountered an error. Please try again."
	diagnosticErrorMessage = "Sorry, I encountered an error processing your answer. Please try again."

	redirectPrefix = "Let's focus on the troubleshooting question, please. "

	// restartPhrase keys the extra instructions turn off the recommendation
	// reasoning text.
	restartPhrase = "recommend restarting your router"

	restartInstructions = `Please restart your router using the following steps:
1. Unplug the Power
2. Wait 30 Seconds
3. Plug It Back In (wait 1 to 3 minutes)
4. Check the Lights`
)

// Config wires the orchestrator's collaborators. Voice may be nil; the text
// flow is fully usable with speech disabled.
type Config struct {
	Oracle    oracle.Oracle
	Voice     *voice.Coordinator
	VoiceRate float64

	// Notify, when set, is invoked after every state change so the
	// presentation layer can re-render.
	Notify func()
}

// Snapshot is a consistent read of the engine state for presentation.
type Snapshot struct {
	SessionID      string
	Phase          convo.Phase
	Question       *diagnostic.Question
	Recommendation *diagnostic.Recommendation
	Messages       []convo.Message
	ModelName      string
	Loading        bool
}

// Service is the dialogue orchestrator. All shared state is owned here and
// mutated only by its own transition handlers; submissions are serialized by
// the mutex so a second submission cannot corrupt timeline ordering while an
// oracle call is outstanding.
type Service struct {
	mu sync.Mutex

	oracle    oracle.Oracle
	intent    *intent.Gateway
	voice     *voice.Coordinator
	voiceRate float64
	notify    func()

	timeline       *convo.Timeline
	sessionID      string
	phase          convo.Phase
	question       *diagnostic.Question
	recommendation *diagnostic.Recommendation
	modelName      string
	loading        bool
	muted          bool
	greeted        bool
}

// NewService builds the orchestrator in its initial Greeting phase.
func NewService(cfg Config) *Service {
	s := &Service{
		oracle:    cfg.Oracle,
		intent:    intent.NewGateway(cfg.Oracle),
		voice:     cfg.Voice,
		voiceRate: cfg.VoiceRate,
		notify:    cfg.Notify,
		phase:     convo.PhaseGreeting,
	}
	if s.voiceRate <= 0 {
		s.voiceRate = 1
	}
	s.timeline = convo.NewTimeline(func(convo.Message) { s.changed() })
	return s
}

func (s *Service) changed() {
	if s.notify != nil {
		s.notify()
	}
}

// Timeline exposes the conversation log.
func (s *Service) Timeline() *convo.Timeline {
	return s.timeline
}

// Snapshot returns a consistent copy of the engine state.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		SessionID:      s.sessionID,
		Phase:          s.phase,
		Question:       s.question,
		Recommendation: s.recommendation,
		Messages:       s.timeline.Messages(),
		ModelName:      s.modelName,
		Loading:        s.loading,
	}
}

// SetMuted toggles spoken output without touching the rest of the flow.
func (s *Service) SetMuted(muted bool) {
	s.mu.Lock()
	s.muted = muted
	s.mu.Unlock()
	if muted && s.voice != nil {
		s.voice.Cancel()
	}
}

// speak voices text when a coordinator is attached and output is not muted.
// Must be called without the service lock held; broadcasts may re-enter
// subscriber callbacks.
func (s *Service) speak(text string) {
	s.mu.Lock()
	muted := s.muted
	s.mu.Unlock()

	if s.voice == nil || muted {
		return
	}
	s.voice.Speak(text, s.voiceRate)
}

// Greet fetches and appends the opening assistant message. It runs at most
// once per process lifetime; an explicit reset does not rearm it. Oracle
// failure degrades to a canned greeting.
func (s *Service) Greet(ctx context.Context) {
	s.mu.Lock()
	if s.greeted {
		s.mu.Unlock()
		return
	}
	s.greeted = true
	s.mu.Unlock()

	greeting, err := s.oracle.GetGreeting(ctx)
	if err != nil {
		log.Printf("[dialogue] greeting fetch failed: %v", err)
		greeting = fallbackGreeting
	}

	s.appendAssistant(greeting)
	s.speak(greeting)
}

// Submit routes one user turn through the state machine. Empty or
// whitespace-only input is a strict no-op. Submissions are processed one at
// a time; the loading flag is asserted for the duration.
func (s *Service) Submit(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	s.mu.Lock()
	if s.loading {
		// A prior submission still holds an outstanding oracle call. The UI
		// disables input while loading; dropping here keeps the timeline
		// ordered even if it does not.
		s.mu.Unlock()
		return
	}
	phase := s.phase
	if phase == convo.PhaseDiagnosticComplete {
		s.mu.Unlock()
		return
	}
	s.loading = true
	s.mu.Unlock()
	s.changed()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		s.changed()
	}()

	switch phase {
	case convo.PhaseGreeting:
		s.handleInitial(ctx, text)
	case convo.PhaseDiagnosticActive:
		s.handleDiagnostic(ctx, text)
	}
}

// handleInitial processes the user's first meaningful message: triage via
// the oracle, and when it signals the start of the diagnostic, store and ask
// the first question.
func (s *Service) handleInitial(ctx context.Context, text string) {
	s.appendUser(text)

	s.mu.Lock()
	if s.sessionID == "" {
		s.sessionID = newSessionID()
	}
	sessionID := s.sessionID
	s.mu.Unlock()

	result, err := s.oracle.HandleInitialResponse(ctx, text, sessionID)
	if err != nil {
		log.Printf("[dialogue] initial response failed: %v", err)
		s.appendAssistant(initialErrorMessage)
		return
	}

	s.appendAssistant(result.Response)
	s.speak(result.Response)

	if result.StartDiagnostic && result.FirstQuestion != nil {
		s.mu.Lock()
		s.phase = convo.PhaseDiagnosticActive
		s.question = result.FirstQuestion
		s.mu.Unlock()

		s.appendAssistant(result.FirstQuestion.Text)
		s.speak(result.FirstQuestion.Text)
	}
}

// handleDiagnostic processes an answer attempt against the current question:
// off-topic input is redirected with the raw question and no answer call is
// made; on-topic input is reduced to yes/no/unsure and forwarded.
func (s *Service) handleDiagnostic(ctx context.Context, text string) {
	s.mu.Lock()
	question := s.question
	sessionID := s.sessionID
	s.mu.Unlock()
	if question == nil {
		return
	}

	s.appendUser(text)

	onTopic, err := s.intent.TopicRelevant(ctx, question, text)
	if err != nil {
		log.Printf("[dialogue] topic classification failed: %v", err)
		s.appendAssistant(diagnosticErrorMessage)
		return
	}

	if !onTopic {
		raw := question.RawText
		if raw == "" {
			raw = question.Text
		}
		redirect := redirectPrefix + raw
		s.appendAssistant(redirect)
		s.speak(redirect)
		return
	}

	verdict, err := s.intent.YesNo(ctx, question, text)
	if err != nil {
		log.Printf("[dialogue] yes/no classification failed: %v", err)
		s.appendAssistant(diagnosticErrorMessage)
		return
	}

	result, err := s.oracle.AnswerQuestion(ctx, sessionID, verdict.Token)
	if err != nil {
		log.Printf("[dialogue] answer call failed: %v", err)
		s.appendAssistant(diagnosticErrorMessage)
		return
	}

	switch {
	case result.Complete && result.Recommendation != nil:
		s.mu.Lock()
		s.phase = convo.PhaseDiagnosticComplete
		s.recommendation = result.Recommendation
		s.question = nil
		s.mu.Unlock()

		reasoning := result.Recommendation.Reasoning
		s.appendAssistant(reasoning)
		s.speak(reasoning)

		if strings.Contains(reasoning, restartPhrase) {
			s.appendAssistant(restartInstructions)
		}

	case result.NextQuestion != nil:
		s.mu.Lock()
		s.question = result.NextQuestion
		s.mu.Unlock()

		s.appendAssistant(result.NextQuestion.Text)
		s.speak(result.NextQuestion.Text)
	}
}

// Reset clears the session and returns to the Greeting phase. The greeting
// itself is not replayed; that is a once-per-process effect.
func (s *Service) Reset() {
	if s.voice != nil {
		s.voice.Cancel()
	}

	s.mu.Lock()
	s.sessionID = ""
	s.phase = convo.PhaseGreeting
	s.question = nil
	s.recommendation = nil
	s.timeline.Clear()
	s.mu.Unlock()
	s.changed()
}

func (s *Service) appendUser(text string) {
	s.timeline.Append(text, convo.SenderUser, "")
}

func (s *Service) appendAssistant(text string) {
	s.mu.Lock()
	model := s.modelName
	s.mu.Unlock()
	s.timeline.Append(text, convo.SenderAssistant, model)
}

// SetModelName tags assistant messages with the model that produced them.
func (s *Service) SetModelName(name string) {
	s.mu.Lock()
	s.modelName = name
	s.mu.Unlock()
}

func newSessionID() string {
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
