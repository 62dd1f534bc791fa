package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured. The upstream provider is
// OpenAI-compatible; Groq serves this model under the same wire protocol.
const DefaultModel = "llama-3.3-70b-versatile"

// OpenAIClient calls an OpenAI-compatible chat completion API. A custom base
// URL points it at Groq (or any compatible provider); credentials and model
// name come from configuration.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient constructs a completion client. baseURL and model may be
// empty, in which case the library default endpoint and DefaultModel apply.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete sends the history plus the prompt as the final user message and
// returns the assistant's reply content.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, history []Message) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, m := range history {
		role := m.Role
		if role != openai.ChatMessageRoleSystem && role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			// coerce anything unknown to user
			role = openai.ChatMessageRoleUser
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrBadEnvelope
	}
	return resp.Choices[0].Message.Content, nil
}
