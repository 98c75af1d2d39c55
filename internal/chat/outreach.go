package chat

import (
	"fmt"
	"regexp"
	"strings"
)

// confirmationPhrases is the enumerated approval vocabulary. Matching
// is case-insensitive after punctuation stripping; keep this list the
// single place confirmation wording lives.
var confirmationPhrases = []string{
	"yes",
	"yes please",
	"yes send it",
	"send it",
	"go ahead",
	"do it",
	"sure",
	"ok",
	"okay",
	"confirm",
	"sounds good",
	"please send",
}

// maxConfirmationLen bounds substring matching so a phrase buried in a
// long unrelated message is not read as approval.
const maxConfirmationLen = 32

// draftPattern captures a previously suggested outbound message:
// `message you could send to <Name>: "<text>"`. Name and text are
// captured verbatim.
var draftPattern = regexp.MustCompile(`(?i)message you could send to ([^:"]+?):\s*"([^"]+)"`)

// normalizeConfirmation lowercases, trims and strips trailing
// punctuation.
func normalizeConfirmation(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	return strings.TrimRight(text, ".,!?")
}

// IsConfirmation reports whether text is an approval of a previously
// shown draft.
func IsConfirmation(text string) bool {
	norm := normalizeConfirmation(text)
	if norm == "" {
		return false
	}
	for _, phrase := range confirmationPhrases {
		if norm == phrase {
			return true
		}
		if len(norm) <= maxConfirmationLen && strings.Contains(norm, phrase) {
			return true
		}
	}
	return false
}

// ExtractOutreachDraft pulls the recipient name and draft text out of a
// prior assistant message. When the message contains several drafts the
// last one wins, matching what the user most recently saw. Both
// captures are returned verbatim apart from surrounding whitespace on
// the name.
func ExtractOutreachDraft(assistantText string) (name, text string, ok bool) {
	matches := draftPattern.FindAllStringSubmatch(assistantText, -1)
	if len(matches) == 0 {
		return "", "", false
	}
	last := matches[len(matches)-1]
	return strings.TrimSpace(last[1]), last[2], true
}

// OutreachConfirmedReply is the deterministic reply after a draft was
// delivered to its recipient.
func OutreachConfirmedReply(name, text string) string {
	return fmt.Sprintf("Okay, I sent this message to %s: %q", name, text)
}

// OutreachUnresolvedReply is the deterministic apology when the
// recipient name does not resolve to a user. It carries the draft
// verbatim so the user can deliver it manually.
func OutreachUnresolvedReply(name, text string) string {
	return fmt.Sprintf("I couldn't find %s in your workspace, so nothing was sent. Here is the message so you can deliver it yourself: %q", name, text)
}
