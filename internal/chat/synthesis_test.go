package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/Yug-More/Parallel-AI/internal/llm"
)

func TestParseSynthesisNoMarker(t *testing.T) {
	res := ParseSynthesis("Here is the combined answer.\n1. Do this\n2. Do that")
	if res.HasSummaryUpdate() {
		t.Fatal("expected no summary update without the marker")
	}
	if res.Answer != "Here is the combined answer.\n1. Do this\n2. Do that" {
		t.Errorf("unexpected answer: %q", res.Answer)
	}
}

func TestParseSynthesisWithMarker(t *testing.T) {
	raw := "Combined answer with steps.\n\nSUMMARY_UPDATE:\nThe team is now focused on the beta launch."
	res := ParseSynthesis(raw)
	if !res.HasSummaryUpdate() {
		t.Fatal("expected a summary update")
	}
	if res.Answer != "Combined answer with steps." {
		t.Errorf("unexpected answer: %q", res.Answer)
	}
	if res.SummaryUpdate != "The team is now focused on the beta launch." {
		t.Errorf("unexpected summary: %q", res.SummaryUpdate)
	}
}

func TestParseSynthesisEmptyUpdate(t *testing.T) {
	res := ParseSynthesis("Answer text.\n\nSUMMARY_UPDATE:\n   \n")
	if res.HasSummaryUpdate() {
		t.Fatal("a marker followed by whitespace must count as no update")
	}
	if res.Answer != "Answer text." {
		t.Errorf("unexpected answer: %q", res.Answer)
	}
}

func TestParseSynthesisMarkerOnly(t *testing.T) {
	res := ParseSynthesis("SUMMARY_UPDATE:\nJust a summary.")
	if res.Answer != "" {
		t.Errorf("expected empty answer, got %q", res.Answer)
	}
	if res.SummaryUpdate != "Just a summary." {
		t.Errorf("unexpected summary: %q", res.SummaryUpdate)
	}
}

// recordingCompleter captures the prompts it was called with.
type recordingCompleter struct {
	system string
	user   string
	temp   float64
	reply  string
	err    error
	calls  int
}

func (c *recordingCompleter) Complete(_ context.Context, system, user string, temperature float64) (string, error) {
	c.calls++
	c.system = system
	c.user = user
	c.temp = temperature
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func TestSynthesizePromptShape(t *testing.T) {
	coordinator := &recordingCompleter{reply: "merged answer"}
	pool := llm.NewPool(map[llm.AgentID]llm.Completer{
		llm.AgentCoordinator: coordinator,
	}, llm.AgentCoordinator)

	s := NewSynthesizer(pool)
	drafts := map[llm.AgentID]string{
		llm.AgentYug:  "yug thinks A",
		llm.AgentSean: "sean thinks B",
	}
	order := []llm.AgentID{llm.AgentYug, llm.AgentSean}

	res, err := s.Synthesize(context.Background(), "Severin", "what next?", "CTX", order, drafts)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if res.Answer != "merged answer" {
		t.Errorf("unexpected answer: %q", res.Answer)
	}

	if coordinator.temp != synthesisTemperature {
		t.Errorf("expected temperature %v, got %v", synthesisTemperature, coordinator.temp)
	}
	if !strings.Contains(coordinator.system, "You are the coordinator.") {
		t.Error("system prompt missing coordinator instruction")
	}
	if !strings.Contains(coordinator.system, "CTX") {
		t.Error("system prompt missing room context")
	}
	if !strings.Contains(coordinator.user, "Latest human message from Severin:\nwhat next?") {
		t.Errorf("user prompt missing attributed question:\n%s", coordinator.user)
	}

	// Drafts render in roster order.
	yugIdx := strings.Index(coordinator.user, "Yug draft:\nyug thinks A")
	seanIdx := strings.Index(coordinator.user, "Sean draft:\nsean thinks B")
	if yugIdx < 0 || seanIdx < 0 {
		t.Fatalf("draft blocks missing:\n%s", coordinator.user)
	}
	if yugIdx > seanIdx {
		t.Error("drafts rendered out of roster order")
	}
}
