package chat

import (
	"strings"
	"testing"
)

func TestIsConfirmation(t *testing.T) {
	yes := []string{
		"yes",
		"Yes",
		"YES!",
		"yes please",
		"yes, send it.",
		"send it",
		"go ahead",
		"ok",
		"Okay",
		"sure",
		"confirm",
		"sounds good",
		"please send",
	}
	for _, text := range yes {
		if !IsConfirmation(text) {
			t.Errorf("expected %q to be a confirmation", text)
		}
	}

	no := []string{
		"",
		"   ",
		"no",
		"not yet",
		"what would you send?",
		"I said yesterday that the launch plan needs rework before we commit to anything",
	}
	for _, text := range no {
		if IsConfirmation(text) {
			t.Errorf("expected %q not to be a confirmation", text)
		}
	}
}

func TestExtractOutreachDraft(t *testing.T) {
	prior := `Here's a message you could send to Alice: "Ping the design team"`

	name, text, ok := ExtractOutreachDraft(prior)
	if !ok {
		t.Fatal("expected a draft match")
	}
	if name != "Alice" {
		t.Errorf("expected name Alice, got %q", name)
	}
	if text != "Ping the design team" {
		t.Errorf("expected draft verbatim, got %q", text)
	}
}

func TestExtractOutreachDraftLastWins(t *testing.T) {
	prior := `Earlier I suggested a message you could send to Bob: "old draft".
After your feedback, here is an updated message you could send to Alice: "new draft".`

	name, text, ok := ExtractOutreachDraft(prior)
	if !ok {
		t.Fatal("expected a draft match")
	}
	if name != "Alice" || text != "new draft" {
		t.Errorf("expected last draft to win, got %q / %q", name, text)
	}
}

func TestExtractOutreachDraftNoMatch(t *testing.T) {
	for _, prior := range []string{
		"",
		"Let me know if you want me to draft something.",
		`message you could send to Alice: no quotes here`,
	} {
		if _, _, ok := ExtractOutreachDraft(prior); ok {
			t.Errorf("expected no match for %q", prior)
		}
	}
}

func TestExtractOutreachDraftCaseInsensitive(t *testing.T) {
	prior := `Here is a Message You Could Send To severin: "standup moved to 10am"`
	name, text, ok := ExtractOutreachDraft(prior)
	if !ok {
		t.Fatal("expected a case-insensitive match")
	}
	if name != "severin" || text != "standup moved to 10am" {
		t.Errorf("got %q / %q", name, text)
	}
}

func TestOutreachReplies(t *testing.T) {
	confirmed := OutreachConfirmedReply("Alice", "Ping the design team")
	if !strings.Contains(confirmed, "Alice") || !strings.Contains(confirmed, `"Ping the design team"`) {
		t.Errorf("confirmed reply missing name or verbatim draft: %q", confirmed)
	}

	unresolved := OutreachUnresolvedReply("Bob", "Ping the design team")
	if !strings.Contains(unresolved, `"Ping the design team"`) {
		t.Errorf("unresolved reply must carry the draft verbatim: %q", unresolved)
	}
	if !strings.Contains(unresolved, "Bob") {
		t.Errorf("unresolved reply should name the missing recipient: %q", unresolved)
	}
}
