package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Completer is the single contract the orchestration core has with a
// chat-completion provider. Implementations surface provider errors
// unchanged; the core does not retry.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float64) (string, error)
}

// ErrNoClient is returned when a pool has no client for an agent and
// no fallback could be resolved.
var ErrNoClient = errors.New("no model client configured")

// Pool resolves a logical agent identity to its configured client.
// The mapping is total: unknown agents resolve to the default agent's
// client. Pure lookup, no state.
type Pool struct {
	clients  map[AgentID]Completer
	fallback AgentID
}

// NewPool creates a pool over the given clients. The fallback agent's
// client serves any agent without its own entry.
func NewPool(clients map[AgentID]Completer, fallback AgentID) *Pool {
	return &Pool{clients: clients, fallback: fallback}
}

// For returns the client for the given agent, falling back to the
// default agent's client when the agent has none.
func (p *Pool) For(id AgentID) (Completer, error) {
	if c, ok := p.clients[id]; ok && c != nil {
		return c, nil
	}
	if c, ok := p.clients[p.fallback]; ok && c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("%w for agent %q", ErrNoClient, id)
}

// OpenAIClient is a Completer backed by the OpenAI chat completions API.
type OpenAIClient struct {
	api     openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIClient creates a client for one API key.
func NewOpenAIClient(apiKey, model string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		api:     openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		timeout: timeout,
	}
}

// Complete issues one chat completion call and returns the reply text.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: empty choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		text = "No response."
	}
	return text, nil
}

// NewPoolFromKeys builds a pool of OpenAI clients from a map of agent
// id to API key. Agents with an empty key are skipped.
func NewPoolFromKeys(keys map[string]string, model string, timeout time.Duration) *Pool {
	clients := make(map[AgentID]Completer, len(keys))
	for name, key := range keys {
		if key == "" {
			continue
		}
		if id, ok := ParseAgentID(name); ok {
			clients[id] = NewOpenAIClient(key, model, timeout)
		}
	}
	return NewPool(clients, DefaultAgent)
}
