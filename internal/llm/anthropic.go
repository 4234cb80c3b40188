package llm

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicDefaultMaxTokens = 2048

type anthropicClient struct {
	client anthropic.Client
	model  string
}

func newAnthropicClient(cfg ProviderConfig) *anthropicClient {
	opts := []aoption.RequestOption{aoption.WithAPIKey(strings.TrimSpace(cfg.APIKey))}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, aoption.WithBaseURL(strings.TrimSpace(cfg.BaseURL)))
	}
	return &anthropicClient{
		client: anthropic.NewClient(opts...),
		model:  strings.TrimSpace(cfg.Model),
	}
}

func (c *anthropicClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if c == nil {
		return "", errors.New("nil client")
	}
	system, msgs, err := anthropicPrompt(messages)
	if err != nil {
		return "", err
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: anthropicDefaultMaxTokens,
		Messages:  msgs,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", errors.New("empty completion response")
	}
	var buf strings.Builder
	for _, block := range msg.Content {
		if strings.TrimSpace(block.Type) != "text" {
			continue
		}
		buf.WriteString(block.Text)
	}
	return buf.String(), nil
}

// anthropicPrompt splits the prompt into the system parameter and the
// messages array. The Messages API rejects an empty messages array, so a
// prompt made of system segments only is sent as its sole user message
// instead.
func anthropicPrompt(messages []Message) (string, []anthropic.MessageParam, error) {
	msgs := buildAnthropicMessages(messages)
	system := collectSystemPrompt(messages)
	if len(msgs) > 0 {
		return system, msgs, nil
	}
	if system == "" {
		return "", nil, errors.New("empty prompt")
	}
	return "", []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(system))}, nil
}

func buildAnthropicMessages(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		text := strings.TrimSpace(msg.Content)
		if text == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(msg.Role)) {
		case RoleSystem:
			// System prompts travel via MessageNewParams.System.
			continue
		case RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
		}
	}
	return out
}
