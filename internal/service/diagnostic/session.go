package diagnostic

import (
	"strings"

	"github.com/routethis/assistant/internal/model/diagnostic"
)

// conversationalIntros soften the canonical questions so the assistant does
// not sound like a form. The raw question is kept alongside for redirects.
var conversationalIntros = []string{
	"Great! Let me start by checking the basics. ",
	"Perfect, that helps me understand the situation. Now, ",
	"I see. Let me ask you something else - ",
	"That's good information. Next, I need to know: ",
	"Okay, that makes sense. Another quick question: ",
	"Thanks for that detail. Let me check something else: ",
	"Alright, I'm getting a clearer picture. ",
	"That's helpful context. One more thing: ",
	"I understand. This next question is important: ",
}

// walk tracks one session's progress through the decision graph.
type walk struct {
	graph          *Graph
	current        int
	answers        map[int]Answer
	completed      bool
	recommendation *diagnostic.Recommendation
}

func newWalk(graph *Graph) *walk {
	return &walk{
		graph:   graph,
		answers: make(map[int]Answer),
	}
}

// currentQuestion renders the pending question with its conversational intro,
// or nil when the walk has reached the terminal node.
func (w *walk) currentQuestion() *diagnostic.Question {
	raw, ok := w.graph.QuestionText(w.current)
	if !ok {
		return nil
	}

	intro := conversationalIntros[len(conversationalIntros)-1]
	if w.current < len(conversationalIntros) {
		intro = conversationalIntros[w.current]
	}

	return &diagnostic.Question{
		Text:    intro + strings.ToLower(raw),
		RawText: raw,
		Index:   w.current,
		IsFinal: w.current == w.graph.QuestionCount()-1,
	}
}

// answer records the reply for the current question and advances the walk.
func (w *walk) answer(a Answer) diagnostic.AnswerResult {
	if w.completed {
		return diagnostic.AnswerResult{Complete: true, Recommendation: w.recommendation}
	}

	w.answers[w.current] = a

	next, ok := w.graph.next(w.current, a)
	if !ok || w.graph.isTerminal(next) {
		return w.finish()
	}

	w.current = next
	return diagnostic.AnswerResult{NextQuestion: w.currentQuestion()}
}

func (w *walk) finish() diagnostic.AnswerResult {
	rec := w.graph.Recommend(w.answers)
	w.completed = true
	w.recommendation = &rec
	return diagnostic.AnswerResult{Complete: true, Recommendation: &rec}
}
