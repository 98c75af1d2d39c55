package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/Yug-More/Parallel-AI/internal/llm"
)

const synthesisTemperature = 0.30

// summaryMarker is the literal convention the coordinator uses to
// propose a rolling-summary overwrite.
const summaryMarker = "SUMMARY_UPDATE:"

// SynthesisResult is the parsed coordinator output: the answer shown to
// the user plus an optional proposed summary rewrite.
type SynthesisResult struct {
	Answer        string
	SummaryUpdate string
}

// HasSummaryUpdate reports whether the coordinator proposed a summary.
func (r SynthesisResult) HasSummaryUpdate() bool {
	return r.SummaryUpdate != ""
}

// ParseSynthesis splits raw coordinator output on the first summary
// marker. Text before the marker is the answer; trimmed text after it
// is the proposed summary. A marker followed by only whitespace counts
// as no update.
func ParseSynthesis(raw string) SynthesisResult {
	idx := strings.Index(raw, summaryMarker)
	if idx < 0 {
		return SynthesisResult{Answer: strings.TrimSpace(raw)}
	}
	return SynthesisResult{
		Answer:        strings.TrimSpace(raw[:idx]),
		SummaryUpdate: strings.TrimSpace(raw[idx+len(summaryMarker):]),
	}
}

// Synthesizer runs the coordinator pass over a set of drafts.
type Synthesizer struct {
	pool *llm.Pool
}

// NewSynthesizer creates a synthesizer over a client pool.
func NewSynthesizer(pool *llm.Pool) *Synthesizer {
	return &Synthesizer{pool: pool}
}

// Synthesize merges per-agent drafts into one coordinator answer,
// parsed into answer text plus any proposed summary update. Drafts are
// rendered in the given order so output is stable across runs.
func (s *Synthesizer) Synthesize(ctx context.Context, asker, prompt, sysCtx string, order []llm.AgentID, drafts map[llm.AgentID]string) (SynthesisResult, error) {
	client, err := s.pool.For(llm.AgentCoordinator)
	if err != nil {
		return SynthesisResult{}, err
	}

	system := "You are the coordinator. Synthesize the drafts into one clear answer with 2-5 next steps. If the project summary should be updated, end with:\n\n" +
		summaryMarker + "\n<1-3 sentences>\n\n" + sysCtx

	var b strings.Builder
	fmt.Fprintf(&b, "Latest human message from %s:\n%s", asker, prompt)
	for _, agent := range order {
		draft, ok := drafts[agent]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n\n%s draft:\n%s", agent.DisplayName(), draft)
	}

	raw, err := client.Complete(ctx, system, b.String(), synthesisTemperature)
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("synthesis: %w", err)
	}
	return ParseSynthesis(raw), nil
}
