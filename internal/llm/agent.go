package llm

import "strings"

// AgentID is the logical identity of a configured assistant.
type AgentID string

const (
	AgentYug         AgentID = "yug"
	AgentSean        AgentID = "sean"
	AgentSeverin     AgentID = "severin"
	AgentNayab       AgentID = "nayab"
	AgentCoordinator AgentID = "coordinator"
)

// DefaultAgent is the target used when single-agent modes name no agent.
const DefaultAgent = AgentYug

// DefaultRoster is the fixed team fan-out order for team mode.
// The coordinator is not a roster member; it only synthesizes.
var DefaultRoster = []AgentID{AgentYug, AgentSean, AgentSeverin, AgentNayab}

// ParseAgentID normalizes a loosely-cased name into an AgentID.
// Returns false for names that are not configured agents.
func ParseAgentID(s string) (AgentID, bool) {
	switch AgentID(strings.ToLower(strings.TrimSpace(s))) {
	case AgentYug:
		return AgentYug, true
	case AgentSean:
		return AgentSean, true
	case AgentSeverin:
		return AgentSeverin, true
	case AgentNayab:
		return AgentNayab, true
	case AgentCoordinator:
		return AgentCoordinator, true
	}
	return "", false
}

// DisplayName returns the human-facing name for an agent.
func (a AgentID) DisplayName() string {
	s := string(a)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
