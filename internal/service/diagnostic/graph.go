package diagnostic

import (
	"strings"

	"github.com/routethis/assistant/internal/model/diagnostic"
)

// Answer is a normalized reply to a diagnostic question.
type Answer string

const (
	AnswerYes    Answer = "yes"
	AnswerNo     Answer = "no"
	AnswerUnsure Answer = "?"
)

// ParseAnswer normalizes free-form yes/no input. Unrecognized input maps to
// unsure, which the graph scores by summing all outgoing edge weights.
func ParseAnswer(raw string) Answer {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true", "t":
		return AnswerYes
	case "no", "n", "false", "f":
		return AnswerNo
	default:
		return AnswerUnsure
	}
}

// edge is one weighted transition of the decision graph. Positive weights
// accumulate evidence toward a router restart, negative weights against.
type edge struct {
	from   int
	to     int
	answer Answer
	weight float64
}

// Graph is the router-restart decision graph: an ordered question list plus
// weighted yes/no edges ending in a terminal scoring node.
type Graph struct {
	questions []string
	edges     []edge
}

const terminalNode = "Run Algorithm"

// NewGraph builds the fixed troubleshooting graph.
func NewGraph() *Graph {
	questions := []string{
		"Is your wifi router POWER LED on?",
		"Is router/modem connected to the internet? (Is the 'internet' LED solid?)",
		"Does visiting 192.168.1.1 take you to router login page?",
		"Are there other devices that are having internet issues?",
		"Do you keep connecting and reconnecting to the internet?",
		"Do non-working websites work when connected via mobile data instead of wifi?",
		"Is there noticeable lag and buffering in games and videos?",
		"Are there spikes and drops in internet speed?",
		"No networking apps such as VPNs have been recently installed on your device?",
		terminalNode,
	}
	end := len(questions) - 1

	return &Graph{
		questions: questions,
		edges: []edge{
			{0, 1, AnswerYes, -2},
			{0, end, AnswerNo, 5},
			{1, 2, AnswerYes, -2},
			{1, end, AnswerNo, 4},
			{2, 3, AnswerYes, 4},
			{2, end, AnswerNo, 5},
			{3, 4, AnswerYes, 4},
			{3, 4, AnswerNo, -3},
			{4, 5, AnswerYes, 3},
			{4, 5, AnswerNo, -2},
			{5, 6, AnswerYes, 3},
			{5, 6, AnswerNo, -2},
			{6, 7, AnswerYes, 2},
			{6, 7, AnswerNo, -2},
			{7, 8, AnswerYes, 3},
			{7, 8, AnswerNo, -2},
			{8, end, AnswerYes, 3},
			{8, end, AnswerNo, -3},
		},
	}
}

// QuestionCount reports the number of real questions, excluding the terminal
// scoring node.
func (g *Graph) QuestionCount() int {
	return len(g.questions) - 1
}

// QuestionText returns the canonical question at index.
func (g *Graph) QuestionText(index int) (string, bool) {
	if index < 0 || index >= g.QuestionCount() {
		return "", false
	}
	return g.questions[index], true
}

// outEdges returns the edges leaving the question at index, in declaration
// order.
func (g *Graph) outEdges(index int) []edge {
	var out []edge
	for _, e := range g.edges {
		if e.from == index {
			out = append(out, e)
		}
	}
	return out
}

// next resolves the follow-up question index for an answer. Unsure advances
// along the first declared edge. The boolean is false when no edge matches.
func (g *Graph) next(index int, answer Answer) (int, bool) {
	outs := g.outEdges(index)
	if len(outs) == 0 {
		return 0, false
	}
	if answer == AnswerUnsure {
		return outs[0].to, true
	}
	for _, e := range outs {
		if e.answer == answer {
			return e.to, true
		}
	}
	return 0, false
}

// isTerminal reports whether index refers to the scoring node.
func (g *Graph) isTerminal(index int) bool {
	return index == len(g.questions)-1
}

// Recommend replays the answered path through the graph and scores it.
// A non-negative final score recommends a router restart; a negative score
// sends the user to support. Unsure answers contribute the sum of all
// outgoing edge weights at that node.
func (g *Graph) Recommend(answers map[int]Answer) diagnostic.Recommendation {
	score := 0.0
	current := 0

	for !g.isTerminal(current) {
		answer, ok := answers[current]
		if !ok {
			break
		}

		if answer == AnswerUnsure {
			for _, e := range g.outEdges(current) {
				score += e.weight
			}
		} else {
			for _, e := range g.outEdges(current) {
				if e.answer == answer {
					score += e.weight
					break
				}
			}
		}

		next, ok := g.next(current, answer)
		if !ok {
			break
		}
		current = next
	}

	if score >= 0 {
		return diagnostic.Recommendation{
			Label:     diagnostic.LabelRestartRouter,
			Score:     score,
			Reasoning: "Based on the info you have provided, I recommend restarting your router.",
		}
	}
	return diagnostic.Recommendation{
		Label:     diagnostic.LabelContactSupport,
		Score:     score,
		Reasoning: "Based on the info you have provided, I recommend contacting technical support at +1-ROUTHIS4ME for further assistance. I'm sorry I could not be of much help :(",
	}
}
