package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"boardroom/internal/prompts"
	"boardroom/internal/state"
)

// RunTrader turns the investment plan into a concrete trading plan.
func RunTrader(ctx context.Context, deps *Deps, snap *state.TradingState, budget *Budget) (state.Delta, error) {
	var delta state.Delta

	tmpl := prompt.FromMessages(schema.FString,
		schema.UserMessage(prompts.MustLoad("trader/trader")),
	)
	messages, err := tmpl.Format(ctx, map[string]any{
		"ticker":          snap.CompanyOfInterest,
		"market_name":     snap.MarketInfo.MarketName,
		"currency":        snap.MarketInfo.CurrencySymbol,
		"investment_plan": snap.InvestmentPlan,
		"past_memory_str": recallLessons(ctx, deps.Memories.Trader, snap, deps.Log),
	})
	if err != nil {
		return delta, fmt.Errorf("format trader prompt: %w", err)
	}

	if err := budget.Spend(); err != nil {
		return delta, err
	}
	resp, err := deps.Quick.Generate(ctx, messages)
	if err != nil {
		return delta, fmt.Errorf("trader generation: %w", err)
	}

	delta.Messages = []*schema.Message{resp}
	delta.TraderPlan = resp.Content
	return delta, nil
}
