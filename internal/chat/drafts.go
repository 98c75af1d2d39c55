package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/Yug-More/Parallel-AI/internal/llm"
)

const (
	singleDraftTemperature = 0.35
	teamDraftTemperature   = 0.40
)

// DraftGenerator fans a prompt out to one or more agents and collects
// their drafts.
type DraftGenerator struct {
	pool *llm.Pool
}

// NewDraftGenerator creates a draft generator over a client pool.
func NewDraftGenerator(pool *llm.Pool) *DraftGenerator {
	return &DraftGenerator{pool: pool}
}

// GenerateOne issues a single-agent draft.
func (g *DraftGenerator) GenerateOne(ctx context.Context, agent llm.AgentID, asker, prompt, sysCtx string) (string, error) {
	client, err := g.pool.For(agent)
	if err != nil {
		return "", err
	}
	user := fmt.Sprintf("%s asks %s:\n%s", asker, agent.DisplayName(), prompt)
	draft, err := client.Complete(ctx, sysCtx, user, singleDraftTemperature)
	if err != nil {
		return "", fmt.Errorf("draft from %s: %w", agent, err)
	}
	return draft, nil
}

// GenerateTeam asks every roster agent concurrently. One draft per
// agent; any single failure fails the whole batch so partial results
// are never silently dropped.
func (g *DraftGenerator) GenerateTeam(ctx context.Context, roster []llm.AgentID, asker, prompt, sysCtx string) (map[llm.AgentID]string, error) {
	drafts := make(map[llm.AgentID]string, len(roster))
	errs := make([]error, len(roster))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for i, agent := range roster {
		wg.Add(1)
		go func(i int, agent llm.AgentID) {
			defer wg.Done()

			client, err := g.pool.For(agent)
			if err != nil {
				errs[i] = err
				return
			}

			system := sysCtx + fmt.Sprintf("\n\nYou are %s. Provide your perspective.", agent.DisplayName())
			user := fmt.Sprintf("Team question from %s:\n%s", asker, prompt)
			draft, err := client.Complete(ctx, system, user, teamDraftTemperature)
			if err != nil {
				errs[i] = fmt.Errorf("draft from %s: %w", agent, err)
				return
			}

			mu.Lock()
			drafts[agent] = draft
			mu.Unlock()
		}(i, agent)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return drafts, nil
}
