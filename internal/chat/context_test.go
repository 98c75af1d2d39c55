package chat

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/Yug-More/Parallel-AI/internal/models"
)

func testRoom(summary string) *models.Room {
	return &models.Room{
		ID:            uuid.New(),
		OrgID:         uuid.New(),
		Name:          "general",
		MemorySummary: summary,
	}
}

func TestBuildContextEmptyRoom(t *testing.T) {
	got := BuildContext(testRoom(""), "Yug", nil, nil)

	for _, want := range []string{
		"(no summary yet)",
		"(no activity yet)",
		"(no messages yet)",
		"You are Yug's personal AI assistant",
		"You speak only to Yug.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("context missing %q:\n%s", want, got)
		}
	}
}

func TestBuildContextDeterministic(t *testing.T) {
	room := testRoom("Building the launch plan.")
	msgs := []models.Message{
		{SenderName: "Yug", Content: "hello"},
		{SenderName: "Sean's Agent", Content: "hi"},
	}
	acts := []models.Activity{
		{UserName: "Sean", Summary: "drafting the roadmap"},
	}

	a := BuildContext(room, "Yug", msgs, acts)
	b := BuildContext(room, "Yug", msgs, acts)
	if a != b {
		t.Fatal("expected identical output for identical inputs")
	}

	if !strings.Contains(a, "Building the launch plan.") {
		t.Error("summary block missing")
	}
	if !strings.Contains(a, "- Sean: drafting the roadmap") {
		t.Error("activity line missing")
	}
	if !strings.Contains(a, "Yug: hello") || !strings.Contains(a, "Sean's Agent: hi") {
		t.Error("history lines missing")
	}
}

func TestBuildContextBounds(t *testing.T) {
	room := testRoom("")

	msgs := make([]models.Message, 40)
	for i := range msgs {
		msgs[i] = models.Message{SenderName: "Yug", Content: strings.Repeat("x", i+1)}
	}
	acts := make([]models.Activity, 20)
	for i := range acts {
		acts[i] = models.Activity{UserName: "Sean", Summary: strings.Repeat("y", i+1)}
	}

	got := BuildContext(room, "Yug", msgs, acts)

	// Oldest entries beyond the window must be gone; msgs[9] has 10
	// chars, msgs[10] has 11 and is the first of the kept 30.
	if strings.Contains(got, "Yug: "+strings.Repeat("x", 10)+"\n") {
		t.Error("message outside the 30-entry window leaked into context")
	}
	if !strings.Contains(got, "Yug: "+strings.Repeat("x", 11)+"\n") {
		t.Error("oldest in-window message missing")
	}
	if strings.Contains(got, "- Sean: "+strings.Repeat("y", 5)+"\n") {
		t.Error("activity outside the 15-entry window leaked into context")
	}
}

func TestBuildContextFallsBackToSenderID(t *testing.T) {
	msgs := []models.Message{{SenderID: "voice:123", Content: "from the call"}}
	got := BuildContext(testRoom(""), "Yug", msgs, nil)
	if !strings.Contains(got, "voice:123: from the call") {
		t.Errorf("expected sender id fallback, got:\n%s", got)
	}
}

func TestTruncateContent(t *testing.T) {
	if got := TruncateContent("  short  "); got != "short" {
		t.Errorf("expected trimmed passthrough, got %q", got)
	}

	long := strings.Repeat("a", 400)
	got := TruncateContent(long)
	if len(got) != maxContentChars {
		t.Errorf("expected %d chars, got %d", maxContentChars, len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis suffix, got %q", got[len(got)-5:])
	}

	exact := strings.Repeat("b", maxContentChars)
	if got := TruncateContent(exact); got != exact {
		t.Error("content at exactly the cap must pass through untouched")
	}
}

func TestActivitySummary(t *testing.T) {
	short := "reviewing the PR"
	if got := ActivitySummary(short); got != short {
		t.Errorf("expected passthrough, got %q", got)
	}

	long := strings.Repeat("c", 120)
	got := ActivitySummary(long)
	if len(got) != maxActivityChars {
		t.Errorf("expected %d chars, got %d", maxActivityChars, len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("expected ellipsis suffix")
	}
}
