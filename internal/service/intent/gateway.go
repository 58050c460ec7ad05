// Package intent turns free-form user text into structured diagnostic
// signals by prompting the oracle's classifier.
package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/routethis/assistant/internal/model/diagnostic"
	"github.com/routethis/assistant/internal/service/oracle"
)

// Verdict is the reduced outcome of a yes/no classification. Token is the
// canonical answer forwarded to the diagnostic walk: "yes", "no" or "?".
// Raw keeps the classifier's literal reply for logging.
type Verdict struct {
	Token string
	Raw   string
}

// Gateway builds classification prompts and interprets the oracle's replies.
type Gateway struct {
	oracle oracle.Oracle
}

// NewGateway wires the gateway to an oracle.
func NewGateway(o oracle.Oracle) *Gateway {
	return &Gateway{oracle: o}
}

// TopicRelevant asks whether userText answers or at least relates to the
// current question. The reply counts as on-topic when it contains "yes"
// case-insensitively. Transport failures propagate to the caller.
func (g *Gateway) TopicRelevant(ctx context.Context, question *diagnostic.Question, userText string) (bool, error) {
	prompt := fmt.Sprintf(
		`The user was asked: "%s". They responded: "%s". Is this response attempting to answer the question or at least related to router troubleshooting? Reply with only "YES" or "NO".`,
		question.Text, userText,
	)

	reply, err := g.oracle.Classify(ctx, prompt)
	if err != nil {
		return false, fmt.Errorf("topic classification failed: %w", err)
	}

	return strings.Contains(strings.ToLower(reply), "yes"), nil
}

// YesNo asks whether userText means yes, no, or unsure, and reduces the
// reply to a canonical token. An unparseable reply maps to the unsure token
// rather than an error; the diagnostic graph has an explicit unsure branch.
func (g *Gateway) YesNo(ctx context.Context, question *diagnostic.Question, userText string) (Verdict, error) {
	prompt := fmt.Sprintf(
		`The user was asked: "%s". They responded: "%s". Does their response mean YES, NO, or are they unsure? Reply with "YES" or "NO" or "?" if unsure`,
		question.Text, userText,
	)

	reply, err := g.oracle.Classify(ctx, prompt)
	if err != nil {
		return Verdict{}, fmt.Errorf("yes/no classification failed: %w", err)
	}

	return Verdict{Token: reduceToken(reply), Raw: reply}, nil
}

func reduceToken(reply string) string {
	normalized := strings.ToUpper(strings.TrimSpace(reply))
	switch {
	case strings.HasPrefix(normalized, "YES"):
		return "yes"
	case strings.HasPrefix(normalized, "NO"):
		return "no"
	default:
		return "?"
	}
}
