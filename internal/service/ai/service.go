package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/routethis/assistant/internal/config"
)

// Service answers free-text prompts with the configured chat model, falling
// back to deterministic keyword heuristics when no model is configured or a
// call fails. Every oracle endpoint that needs language understanding goes
// through here.
type Service struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
	modelName string
	enabled   bool
}

// NewService creates the AI service. A nil-model configuration is not an
// error; the service runs in heuristic mode so the rest of the system stays
// usable offline.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	svc := &Service{modelName: "keyword-heuristics"}
	if !cfg.Enabled() {
		return svc, nil
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile assistant chain: %w", err)
	}

	svc.chatModel = chatModel
	svc.chain = runnable
	svc.modelName = cfg.Model
	svc.enabled = true
	return svc, nil
}

// Enabled reports whether a real chat model backs the service.
func (s *Service) Enabled() bool {
	return s != nil && s.enabled && s.chain != nil
}

// ModelName identifies what produced the replies, surfaced on API responses.
func (s *Service) ModelName() string {
	return s.modelName
}

// Reply runs a single free-text prompt against the model. Model failures are
// logged and degrade to the heuristic reply rather than surfacing an error:
// the caller always gets a usable verdict string.
func (s *Service) Reply(ctx context.Context, userPrompt string) string {
	if !s.Enabled() {
		return fallbackReply(userPrompt)
	}

	msg, err := s.chain.Invoke(ctx, map[string]any{"query": userPrompt})
	if err != nil {
		log.Printf("[ai] chain invoke failed, using heuristics: %v", err)
		return fallbackReply(userPrompt)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return fallbackReply(userPrompt)
	}
	return strings.TrimSpace(msg.Content)
}

// RouterRelated decides whether the user's opening message is about router,
// WiFi or connectivity trouble.
func (s *Service) RouterRelated(ctx context.Context, message string) bool {
	if !s.Enabled() {
		return routerRelated(message)
	}

	prompt := fmt.Sprintf("The user said: '%s'. Is this related to router, WiFi, or internet connectivity issues? Reply with only 'YES' or 'NO'.", message)
	reply := s.Reply(ctx, prompt)
	return strings.EqualFold(strings.TrimSpace(reply), "YES")
}

// Acknowledge produces a short empathetic acknowledgment of the user's issue
// before the diagnostic questions begin.
func (s *Service) Acknowledge(ctx context.Context, message string) string {
	if !s.Enabled() {
		return fallbackAcknowledgment
	}

	prompt := fmt.Sprintf("User said they have this router/WiFi issue: '%s'. Give a brief empathetic acknowledgment (1-2 sentences) and say you'll ask some questions to diagnose it. Be conversational and understanding.", message)
	msg, err := s.chain.Invoke(ctx, map[string]any{"query": prompt})
	if err != nil || msg == nil || strings.TrimSpace(msg.Content) == "" {
		if err != nil {
			log.Printf("[ai] acknowledgment failed, using canned text: %v", err)
		}
		return fallbackAcknowledgment
	}
	return strings.TrimSpace(msg.Content)
}

// OffTopicResponse is the fixed redirect for non-router opening messages.
func (s *Service) OffTopicResponse() string {
	return offTopicResponse
}

// GetChatModel exposes the underlying model for services that want to reuse
// it. Nil in heuristic mode.
func (s *Service) GetChatModel() model.ChatModel {
	return s.chatModel
}
