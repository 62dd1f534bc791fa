package llm

import (
	"context"
	"sync"
)

// ScriptedClient replays a fixed sequence of replies. It backs local runs
// without credentials and deterministic tests; the last reply repeats once
// the script is exhausted.
type ScriptedClient struct {
	mu      sync.Mutex
	replies []string
	next    int

	// Prompts records every prompt received, in order.
	Prompts []string
	// Err, when set, fails every call.
	Err error
}

// NewScriptedClient constructs a client replaying the given replies.
func NewScriptedClient(replies ...string) *ScriptedClient {
	return &ScriptedClient{replies: replies}
}

func (c *ScriptedClient) Complete(_ context.Context, prompt string, _ []Message) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Prompts = append(c.Prompts, prompt)
	if c.Err != nil {
		return "", c.Err
	}
	if len(c.replies) == 0 {
		return "Could you tell me more about your symptoms?", nil
	}
	reply := c.replies[c.next]
	if c.next < len(c.replies)-1 {
		c.next++
	}
	return reply, nil
}

// Calls reports how many completions have been requested.
func (c *ScriptedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Prompts)
}
