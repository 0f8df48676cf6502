package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/rahul/sutra/pkg/config"
)

// Message is one turn of a chat exchange.
type Message struct {
	Role    string // "system", "user" or "assistant"
	Content string
}

// Generator is the text-generation capability the agent consumes.
//
// Both methods share one soft-failure contract: an ordinary backend error is
// returned as a string of the form "Error: <message>" instead of a Go error.
// Callers that care must check the reply with IsErrorReply.
type Generator interface {
	GenerateText(ctx context.Context, prompt string, systemPrompt string) string
	GenerateFromMessages(ctx context.Context, messages []Message) string
}

// IsErrorReply reports whether a Generator reply encodes a backend failure.
func IsErrorReply(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "Error:")
}

// ErrorReply formats a backend failure per the Generator contract.
func ErrorReply(err error) string {
	return fmt.Sprintf("Error: %v", err)
}

// Client implements Generator on top of a langchaingo model.
type Client struct {
	Model llms.Model
}

func NewClient(model llms.Model) *Client {
	return &Client{Model: model}
}

// NewClientFromConfig builds a client for an openai-compatible provider.
func NewClientFromConfig(name string, p config.ProviderConfig) (*Client, error) {
	switch name {
	case "openai", "openrouter", "ollama":
		opts := []openai.Option{
			openai.WithToken(p.APIKey),
			openai.WithModel(p.Model),
		}
		if p.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(p.BaseURL))
		}
		model, err := openai.New(opts...)
		if err != nil {
			return nil, err
		}
		return NewClient(model), nil
	default:
		return nil, fmt.Errorf("provider %s is not supported", name)
	}
}

func (c *Client) GenerateText(ctx context.Context, prompt string, systemPrompt string) string {
	var messages []Message
	if systemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, Message{Role: "user", Content: prompt})
	return c.GenerateFromMessages(ctx, messages)
}

func (c *Client) GenerateFromMessages(ctx context.Context, messages []Message) string {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		var role llms.ChatMessageType
		switch m.Role {
		case "system":
			role = llms.ChatMessageTypeSystem
		case "assistant":
			role = llms.ChatMessageTypeAI
		default:
			role = llms.ChatMessageTypeHuman
		}
		content = append(content, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(m.Content)},
		})
	}

	resp, err := c.Model.GenerateContent(ctx, content)
	if err != nil {
		return ErrorReply(err)
	}
	if len(resp.Choices) == 0 {
		return ErrorReply(fmt.Errorf("model returned no choices"))
	}
	return resp.Choices[0].Content
}
