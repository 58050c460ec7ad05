// Package diagnostic holds the wire-level types shared by the diagnostic
// service, its HTTP handlers and the client-side dialogue engine.
package diagnostic

// Question is one step of the diagnostic walk as presented to the user.
// Text carries the conversational framing; RawText is the canonical
// unembellished question used when the user has to be redirected back
// on-topic.
type Question struct {
	Text    string `json:"question"`
	RawText string `json:"rawQuestion,omitempty"`
	Index   int    `json:"index"`
	IsFinal bool   `json:"isFinal"`
}

// Recommendation is the terminal artifact of a completed diagnostic session.
type Recommendation struct {
	Label     string  `json:"recommendation"`
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// Recommendation labels produced by the decision graph.
const (
	LabelRestartRouter  = "RESTART_ROUTER"
	LabelContactSupport = "CONTACT_SUPPORT"
)

// AnswerResult is the outcome of answering the current question: either the
// walk continues with NextQuestion or it completes with a Recommendation.
type AnswerResult struct {
	Complete       bool            `json:"complete"`
	NextQuestion   *Question       `json:"nextQuestion,omitempty"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
}

// InitialResult is the oracle's verdict on the user's first message: an
// acknowledgment plus whether the diagnostic walk should begin.
type InitialResult struct {
	Response        string    `json:"response"`
	StartDiagnostic bool      `json:"startDiagnostic"`
	FirstQuestion   *Question `json:"firstQuestion,omitempty"`
}

// Status reports the live state of a diagnostic session.
type Status struct {
	SessionExists   bool            `json:"sessionExists"`
	CurrentQuestion *Question       `json:"currentQuestion,omitempty"`
	Completed       bool            `json:"completed"`
	Recommendation  *Recommendation `json:"recommendation,omitempty"`
}
