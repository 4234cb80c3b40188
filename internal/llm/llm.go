// Package llm provides the text-completion client used by the conversation
// engine. Callers build role-tagged prompts and receive a single completion;
// the engine treats the output as untrusted free text and parses defensively.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged prompt segment.
type Message struct {
	Role    string
	Content string
}

func System(text string) Message    { return Message{Role: RoleSystem, Content: text} }
func User(text string) Message      { return Message{Role: RoleUser, Content: text} }
func Assistant(text string) Message { return Message{Role: RoleAssistant, Content: text} }

// Client produces one completion for an ordered prompt.
//
// Implementations must honor ctx cancellation; the transport layer attaches
// per-call deadlines.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// ProviderConfig selects and configures a concrete provider adapter.
type ProviderConfig struct {
	// Type is "openai", "openai_compatible", or "anthropic".
	Type    string
	BaseURL string
	APIKey  string
	Model   string
}

// NewClient builds a provider adapter from config.
func NewClient(cfg ProviderConfig) (Client, error) {
	providerType := strings.ToLower(strings.TrimSpace(cfg.Type))
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("missing provider api key")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("missing model id")
	}
	switch providerType {
	case "openai", "openai_compatible":
		return newOpenAIClient(cfg), nil
	case "anthropic":
		return newAnthropicClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported provider type %q", cfg.Type)
	}
}

func collectSystemPrompt(messages []Message) string {
	parts := make([]string, 0, 1)
	for _, msg := range messages {
		if strings.ToLower(strings.TrimSpace(msg.Role)) != RoleSystem {
			continue
		}
		if txt := strings.TrimSpace(msg.Content); txt != "" {
			parts = append(parts, txt)
		}
	}
	return strings.Join(parts, "\n\n")
}
