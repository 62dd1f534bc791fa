package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RelayClient speaks to a forwarding relay instead of the provider directly.
// The relay accepts {prompt, chatHistory} and answers with either an
// OpenAI-style completion envelope or a plain {text} envelope; the relay side
// owns model selection and key injection.
type RelayClient struct {
	url        string
	httpClient *http.Client
}

// NewRelayClient constructs a relay-backed completion client.
func NewRelayClient(url string) *RelayClient {
	return &RelayClient{
		url:        url,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type relayRequest struct {
	Prompt      string    `json:"prompt"`
	ChatHistory []Message `json:"chatHistory"`
}

type relayResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Text string `json:"text"`
}

// Complete posts the prompt and history window to the relay and extracts the
// reply content from whichever envelope came back.
func (c *RelayClient) Complete(ctx context.Context, prompt string, history []Message) (string, error) {
	if history == nil {
		history = []Message{}
	}
	body, err := json.Marshal(relayRequest{Prompt: prompt, ChatHistory: history})
	if err != nil {
		return "", fmt.Errorf("encode relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("relay request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("relay returned HTTP %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read relay response: %w", err)
	}

	var envelope relayResponse
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if len(envelope.Choices) > 0 {
		return envelope.Choices[0].Message.Content, nil
	}
	if envelope.Text != "" {
		return envelope.Text, nil
	}
	return "", ErrBadEnvelope
}
