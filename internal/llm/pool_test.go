package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubCompleter struct {
	id string
}

func (c *stubCompleter) Complete(context.Context, string, string, float64) (string, error) {
	return c.id, nil
}

func TestParseAgentID(t *testing.T) {
	cases := []struct {
		in   string
		want AgentID
		ok   bool
	}{
		{"yug", AgentYug, true},
		{"Yug", AgentYug, true},
		{"  SEAN  ", AgentSean, true},
		{"coordinator", AgentCoordinator, true},
		{"mallory", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := ParseAgentID(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseAgentID(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := AgentSeverin.DisplayName(); got != "Severin" {
		t.Errorf("expected Severin, got %q", got)
	}
	if got := AgentID("").DisplayName(); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestPoolFor(t *testing.T) {
	yug := &stubCompleter{id: "yug"}
	pool := NewPool(map[AgentID]Completer{AgentYug: yug}, AgentYug)

	c, err := pool.For(AgentYug)
	if err != nil {
		t.Fatalf("For(yug) failed: %v", err)
	}
	if c != yug {
		t.Error("wrong client for configured agent")
	}

	// Unconfigured agents fall back to the default agent's client.
	c, err = pool.For(AgentNayab)
	if err != nil {
		t.Fatalf("fallback failed: %v", err)
	}
	if c != yug {
		t.Error("expected fallback to the default agent's client")
	}
}

func TestPoolForNoClient(t *testing.T) {
	pool := NewPool(map[AgentID]Completer{}, AgentYug)
	_, err := pool.For(AgentSean)
	if !errors.Is(err, ErrNoClient) {
		t.Fatalf("expected ErrNoClient, got %v", err)
	}
}

func TestNewPoolFromKeys(t *testing.T) {
	pool := NewPoolFromKeys(map[string]string{
		"yug":         "sk-a",
		"sean":        "",
		"coordinator": "sk-c",
		"mallory":     "sk-x",
	}, "gpt-4.1-mini", 30*time.Second)

	if _, err := pool.For(AgentYug); err != nil {
		t.Errorf("expected a client for yug: %v", err)
	}
	if _, err := pool.For(AgentCoordinator); err != nil {
		t.Errorf("expected a client for coordinator: %v", err)
	}

	// Empty keys and unknown names are skipped; sean falls back to the
	// default agent's client.
	c, err := pool.For(AgentSean)
	if err != nil {
		t.Fatalf("fallback for sean failed: %v", err)
	}
	if c == nil {
		t.Error("expected fallback client")
	}
}
