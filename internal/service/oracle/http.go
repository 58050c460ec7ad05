package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/routethis/assistant/internal/model/diagnostic"
)

// HTTPClient talks to a remote oracle server over its JSON API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient builds a client for the oracle at baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *HTTPClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("oracle request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("oracle returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode oracle response: %w", err)
	}
	return nil
}

// GetGreeting fetches the opening line.
func (c *HTTPClient) GetGreeting(ctx context.Context) (string, error) {
	var payload struct {
		Greeting string `json:"greeting"`
	}
	if err := c.get(ctx, "/api/greeting", &payload); err != nil {
		return "", err
	}
	return payload.Greeting, nil
}

// HandleInitialResponse submits the user's first message.
func (c *HTTPClient) HandleInitialResponse(ctx context.Context, message, sessionID string) (diagnostic.InitialResult, error) {
	request := map[string]string{"message": message, "sessionId": sessionID}
	var result diagnostic.InitialResult
	if err := c.post(ctx, "/api/initial", request, &result); err != nil {
		return diagnostic.InitialResult{}, err
	}
	return result, nil
}

// StartDiagnostic opens or resumes a diagnostic session.
func (c *HTTPClient) StartDiagnostic(ctx context.Context, sessionID string) (*diagnostic.Question, error) {
	request := map[string]string{"sessionId": sessionID}
	var question diagnostic.Question
	if err := c.post(ctx, "/api/diagnostic/start", request, &question); err != nil {
		return nil, err
	}
	return &question, nil
}

// AnswerQuestion submits an answer for the session's current question.
func (c *HTTPClient) AnswerQuestion(ctx context.Context, sessionID, answer string) (diagnostic.AnswerResult, error) {
	request := map[string]string{"sessionId": sessionID, "answer": answer}
	var result diagnostic.AnswerResult
	if err := c.post(ctx, "/api/diagnostic/answer", request, &result); err != nil {
		return diagnostic.AnswerResult{}, err
	}
	return result, nil
}

// Classify runs a free-text prompt through the backend model.
func (c *HTTPClient) Classify(ctx context.Context, prompt string) (string, error) {
	request := map[string]string{"text": prompt}
	var payload struct {
		Reply string `json:"reply"`
		Model string `json:"model"`
	}
	if err := c.post(ctx, "/api/message", request, &payload); err != nil {
		return "", err
	}
	return payload.Reply, nil
}

var _ Oracle = (*HTTPClient)(nil)
