package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"boardroom/internal/memory"
	"boardroom/internal/prompts"
	"boardroom/internal/state"
)

// Reflect reviews a finished run against its realized returns and writes one
// lesson into each role's memory store. The situation key is the four-report
// summary, so future runs with similar conditions recall these lessons.
func Reflect(ctx context.Context, deps *Deps, final *state.TradingState, returns string) error {
	situation := situationSummary(final)

	components := []struct {
		store    *memory.Store
		decision string
	}{
		{deps.Memories.Bull, final.InvestDebate.BullHistory()},
		{deps.Memories.Bear, final.InvestDebate.BearHistory()},
		{deps.Memories.Trader, final.TraderInvestmentPlan},
		{deps.Memories.InvestJudge, final.InvestDebate.JudgeDecision()},
		{deps.Memories.RiskJudge, final.FinalTradeDecision},
	}

	tmpl := prompt.FromMessages(schema.FString,
		schema.UserMessage(prompts.MustLoad("system/reflection")),
	)
	for _, c := range components {
		if c.decision == "" {
			continue
		}
		messages, err := tmpl.Format(ctx, map[string]any{
			"decision":  c.decision,
			"situation": situation,
			"returns":   returns,
		})
		if err != nil {
			return fmt.Errorf("format reflection prompt: %w", err)
		}
		resp, err := deps.Deep.Generate(ctx, messages)
		if err != nil {
			return fmt.Errorf("reflection for %s: %w", c.store.Name(), err)
		}
		if err := c.store.AddSituations(ctx, []memory.Record{
			{Situation: situation, Recommendation: resp.Content},
		}); err != nil {
			return fmt.Errorf("store reflection for %s: %w", c.store.Name(), err)
		}
	}
	return nil
}
