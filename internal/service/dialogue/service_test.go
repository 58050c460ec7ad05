package dialogue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/routethis/assistant/internal/model/convo"
	"github.com/routethis/assistant/internal/model/diagnostic"
)

// fakeOracle scripts every backend interaction. Classify replies are consumed
// in order: a diagnostic turn asks topic relevance first, then yes/no.
type fakeOracle struct {
	mu sync.Mutex

	greeting string
	greetErr error

	initial    diagnostic.InitialResult
	initialErr error

	classifyQueue []string
	classifyErr   error

	answerResult diagnostic.AnswerResult
	answerErr    error

	initialCalls int
	answerCalls  []string
	sessionIDs   []string
}

func (o *fakeOracle) GetGreeting(ctx context.Context) (string, error) {
	return o.greeting, o.greetErr
}

func (o *fakeOracle) HandleInitialResponse(ctx context.Context, message, sessionID string) (diagnostic.InitialResult, error) {
	o.mu.Lock()
	o.initialCalls++
	o.sessionIDs = append(o.sessionIDs, sessionID)
	o.mu.Unlock()
	return o.initial, o.initialErr
}

func (o *fakeOracle) StartDiagnostic(ctx context.Context, sessionID string) (*diagnostic.Question, error) {
	return nil, errors.New("not scripted")
}

func (o *fakeOracle) AnswerQuestion(ctx context.Context, sessionID, answer string) (diagnostic.AnswerResult, error) {
	o.mu.Lock()
	o.answerCalls = append(o.answerCalls, answer)
	o.mu.Unlock()
	return o.answerResult, o.answerErr
}

func (o *fakeOracle) Classify(ctx context.Context, prompt string) (string, error) {
	if o.classifyErr != nil {
		return "", o.classifyErr
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.classifyQueue) == 0 {
		return "?", nil
	}
	reply := o.classifyQueue[0]
	o.classifyQueue = o.classifyQueue[1:]
	return reply, nil
}

func firstQuestion() *diagnostic.Question {
	return &diagnostic.Question{
		Text:    "Great! Let me start by checking the basics. is your wifi router power led on?",
		RawText: "Is your wifi router POWER LED on?",
		Index:   0,
	}
}

func messageTexts(s *Service) []string {
	var texts []string
	for _, m := range s.Snapshot().Messages {
		texts = append(texts, m.Text)
	}
	return texts
}

func TestGreetOncePerProcess(t *testing.T) {
	o := &fakeOracle{greeting: "Hello there!"}
	s := NewService(Config{Oracle: o})

	s.Greet(context.Background())
	s.Greet(context.Background())

	msgs := s.Snapshot().Messages
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(msgs))
	}
	if msgs[0].Text != "Hello there!" || msgs[0].Sender != convo.SenderAssistant {
		t.Fatalf("unexpected greeting message: %+v", msgs[0])
	}
}

func TestGreetFallsBackOnError(t *testing.T) {
	o := &fakeOracle{greetErr: errors.New("oracle down")}
	s := NewService(Config{Oracle: o})

	s.Greet(context.Background())

	msgs := s.Snapshot().Messages
	if len(msgs) != 1 || msgs[0].Text != fallbackGreeting {
		t.Fatalf("unexpected fallback: %+v", msgs)
	}
}

func TestSubmitEmptyInputIsNoOp(t *testing.T) {
	o := &fakeOracle{}
	s := NewService(Config{Oracle: o})

	s.Submit(context.Background(), "   ")

	if o.initialCalls != 0 {
		t.Fatal("empty input reached the oracle")
	}
	if len(s.Snapshot().Messages) != 0 {
		t.Fatal("empty input appended a message")
	}
}

func TestInitialSubmissionStartsDiagnostic(t *testing.T) {
	o := &fakeOracle{
		initial: diagnostic.InitialResult{
			Response:        "I understand, let me help you troubleshoot.",
			StartDiagnostic: true,
			FirstQuestion:   firstQuestion(),
		},
	}
	s := NewService(Config{Oracle: o})

	s.Submit(context.Background(), "my wifi is slow")

	snap := s.Snapshot()
	if snap.Phase != convo.PhaseDiagnosticActive {
		t.Fatalf("phase = %s, want %s", snap.Phase, convo.PhaseDiagnosticActive)
	}
	if snap.SessionID == "" {
		t.Fatal("no session id assigned")
	}
	if snap.Question == nil || snap.Question.Index != 0 {
		t.Fatalf("unexpected current question: %+v", snap.Question)
	}

	texts := messageTexts(s)
	want := []string{
		"my wifi is slow",
		"I understand, let me help you troubleshoot.",
		firstQuestion().Text,
	}
	if len(texts) != len(want) {
		t.Fatalf("messages = %v", texts)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Fatalf("message %d = %q, want %q", i, texts[i], want[i])
		}
	}
}

func TestInitialSubmissionOffTopicStaysInGreeting(t *testing.T) {
	o := &fakeOracle{
		initial: diagnostic.InitialResult{
			Response: "I'm only here to help with router and WiFi troubleshooting issues.",
		},
	}
	s := NewService(Config{Oracle: o})

	s.Submit(context.Background(), "what's the weather")

	snap := s.Snapshot()
	if snap.Phase != convo.PhaseGreeting {
		t.Fatalf("phase = %s, want %s", snap.Phase, convo.PhaseGreeting)
	}
	if snap.Question != nil {
		t.Fatal("off-topic initial set a question")
	}
	if len(snap.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(snap.Messages))
	}
}

func TestInitialSubmissionErrorAppendsErrorMessage(t *testing.T) {
	o := &fakeOracle{initialErr: errors.New("boom")}
	s := NewService(Config{Oracle: o})

	s.Submit(context.Background(), "my wifi is slow")

	texts := messageTexts(s)
	if len(texts) != 2 || texts[1] != initialErrorMessage {
		t.Fatalf("messages = %v", texts)
	}
	if s.Snapshot().Phase != convo.PhaseGreeting {
		t.Fatal("error advanced the phase")
	}
}

func startedService(t *testing.T, o *fakeOracle) *Service {
	t.Helper()
	o.initial = diagnostic.InitialResult{
		Response:        "Let me help.",
		StartDiagnostic: true,
		FirstQuestion:   firstQuestion(),
	}
	s := NewService(Config{Oracle: o})
	s.Submit(context.Background(), "my wifi is slow")
	if s.Snapshot().Phase != convo.PhaseDiagnosticActive {
		t.Fatal("setup: diagnostic did not start")
	}
	return s
}

func TestOffTopicAnswerRedirectsWithoutAnswering(t *testing.T) {
	o := &fakeOracle{classifyQueue: []string{"NO"}}
	s := startedService(t, o)

	s.Submit(context.Background(), "tell me a joke")

	if len(o.answerCalls) != 0 {
		t.Fatal("off-topic input was forwarded as an answer")
	}

	texts := messageTexts(s)
	last := texts[len(texts)-1]
	if !strings.HasPrefix(last, redirectPrefix) {
		t.Fatalf("last message %q is not a redirect", last)
	}
	if !strings.Contains(last, firstQuestion().RawText) {
		t.Fatalf("redirect %q missing raw question", last)
	}

	snap := s.Snapshot()
	if snap.Phase != convo.PhaseDiagnosticActive || snap.Question == nil {
		t.Fatal("redirect disturbed the diagnostic state")
	}
}

func TestAnswerAdvancesToNextQuestion(t *testing.T) {
	next := &diagnostic.Question{
		Text:    "Perfect, that helps me understand the situation. Now, is router/modem connected to the internet?",
		RawText: "Is router/modem connected to the internet? (Is the 'internet' LED solid?)",
		Index:   1,
	}
	o := &fakeOracle{
		classifyQueue: []string{"YES", "YES"},
		answerResult:  diagnostic.AnswerResult{NextQuestion: next},
	}
	s := startedService(t, o)

	s.Submit(context.Background(), "yeah the light is on")

	if len(o.answerCalls) != 1 || o.answerCalls[0] != "yes" {
		t.Fatalf("answer calls = %v", o.answerCalls)
	}

	snap := s.Snapshot()
	if snap.Question == nil || snap.Question.Index != 1 {
		t.Fatalf("current question = %+v", snap.Question)
	}
	texts := messageTexts(s)
	if texts[len(texts)-1] != next.Text {
		t.Fatalf("last message = %q", texts[len(texts)-1])
	}
}

func TestUnsureAnswerForwardsUnsureToken(t *testing.T) {
	o := &fakeOracle{
		classifyQueue: []string{"YES", "?"},
		answerResult:  diagnostic.AnswerResult{NextQuestion: firstQuestion()},
	}
	s := startedService(t, o)

	s.Submit(context.Background(), "I honestly can't tell")

	if len(o.answerCalls) != 1 || o.answerCalls[0] != "?" {
		t.Fatalf("answer calls = %v", o.answerCalls)
	}
}

func TestCompletionAppendsRecommendationAndInstructions(t *testing.T) {
	o := &fakeOracle{
		classifyQueue: []string{"YES", "NO"},
		answerResult: diagnostic.AnswerResult{
			Complete: true,
			Recommendation: &diagnostic.Recommendation{
				Label:     diagnostic.LabelRestartRouter,
				Score:     5,
				Reasoning: "Based on the info you have provided, I recommend restarting your router.",
			},
		},
	}
	s := startedService(t, o)

	s.Submit(context.Background(), "no the light is off")

	snap := s.Snapshot()
	if snap.Phase != convo.PhaseDiagnosticComplete {
		t.Fatalf("phase = %s, want %s", snap.Phase, convo.PhaseDiagnosticComplete)
	}
	if snap.Question != nil {
		t.Fatal("completed dialogue still holds a question")
	}
	if snap.Recommendation == nil || snap.Recommendation.Label != diagnostic.LabelRestartRouter {
		t.Fatalf("recommendation = %+v", snap.Recommendation)
	}

	texts := messageTexts(s)
	if len(texts) < 2 {
		t.Fatalf("messages = %v", texts)
	}
	if texts[len(texts)-2] != o.answerResult.Recommendation.Reasoning {
		t.Fatalf("penultimate message = %q", texts[len(texts)-2])
	}
	if texts[len(texts)-1] != restartInstructions {
		t.Fatalf("last message = %q", texts[len(texts)-1])
	}

	// The dialogue is over; further input is dropped.
	before := len(texts)
	s.Submit(context.Background(), "anything else?")
	if len(messageTexts(s)) != before {
		t.Fatal("submission accepted after completion")
	}
}

func TestContactSupportCompletionOmitsRestartInstructions(t *testing.T) {
	o := &fakeOracle{
		classifyQueue: []string{"YES", "NO"},
		answerResult: diagnostic.AnswerResult{
			Complete: true,
			Recommendation: &diagnostic.Recommendation{
				Label:     diagnostic.LabelContactSupport,
				Score:     -14,
				Reasoning: "Based on the info you have provided, I recommend contacting technical support at +1-ROUTHIS4ME for further assistance. I'm sorry I could not be of much help :(",
			},
		},
	}
	s := startedService(t, o)

	s.Submit(context.Background(), "no")

	texts := messageTexts(s)
	if texts[len(texts)-1] != o.answerResult.Recommendation.Reasoning {
		t.Fatalf("last message = %q", texts[len(texts)-1])
	}
}

func TestClassificationErrorAppendsErrorMessage(t *testing.T) {
	o := &fakeOracle{classifyErr: errors.New("boom")}
	s := startedService(t, o)

	s.Submit(context.Background(), "yes")

	texts := messageTexts(s)
	if texts[len(texts)-1] != diagnosticErrorMessage {
		t.Fatalf("last message = %q", texts[len(texts)-1])
	}
	if s.Snapshot().Phase != convo.PhaseDiagnosticActive {
		t.Fatal("error changed the phase")
	}
}

func TestResetClearsStateWithoutReplayingGreeting(t *testing.T) {
	o := &fakeOracle{greeting: "Hello there!"}
	s := startedService(t, o)
	s.Greet(context.Background())

	s.Reset()

	snap := s.Snapshot()
	if snap.Phase != convo.PhaseGreeting {
		t.Fatalf("phase = %s, want %s", snap.Phase, convo.PhaseGreeting)
	}
	if snap.SessionID != "" || snap.Question != nil || snap.Recommendation != nil {
		t.Fatalf("state survived reset: %+v", snap)
	}
	if len(snap.Messages) != 0 {
		t.Fatalf("timeline survived reset: %d messages", len(snap.Messages))
	}

	// Greeting is once per process; it does not replay after a reset.
	s.Greet(context.Background())
	if len(s.Snapshot().Messages) != 0 {
		t.Fatal("greeting replayed after reset")
	}
}

func TestModelNameTagsAssistantMessages(t *testing.T) {
	o := &fakeOracle{greeting: "Hello there!"}
	s := NewService(Config{Oracle: o})
	s.SetModelName("doubao-pro")

	s.Greet(context.Background())

	msgs := s.Snapshot().Messages
	if len(msgs) != 1 || msgs[0].Model != "doubao-pro" {
		t.Fatalf("unexpected message: %+v", msgs)
	}
}
