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

func runDebater(ctx context.Context, deps *Deps, snap *state.TradingState, budget *Budget,
	promptPath string, store *memory.Store, side state.Side) (state.Delta, error) {

	var delta state.Delta

	tmpl := prompt.FromMessages(schema.FString,
		schema.UserMessage(prompts.MustLoad(promptPath)),
	)
	messages, err := tmpl.Format(ctx, map[string]any{
		"ticker":                 snap.CompanyOfInterest,
		"market_research_report": snap.Report(state.ReportMarket),
		"sentiment_report":       snap.Report(state.ReportSentiment),
		"news_report":            snap.Report(state.ReportNews),
		"fundamentals_report":    snap.Report(state.ReportFundamentals),
		"history":                snap.InvestDebate.History(),
		"current_response":       snap.InvestDebate.CurrentResponse(),
		"past_memory_str":        recallLessons(ctx, store, snap, deps.Log),
	})
	if err != nil {
		return delta, fmt.Errorf("format %s researcher prompt: %w", side, err)
	}

	if err := budget.Spend(); err != nil {
		return delta, err
	}
	resp, err := deps.Quick.Generate(ctx, messages)
	if err != nil {
		return delta, fmt.Errorf("%s researcher generation: %w", side, err)
	}

	delta.Messages = []*schema.Message{resp}
	delta.InvestTurn = &state.Turn{Side: side, Argument: resp.Content}
	return delta, nil
}

// RunBull produces the next bull argument in the investment debate.
func RunBull(ctx context.Context, deps *Deps, snap *state.TradingState, budget *Budget) (state.Delta, error) {
	return runDebater(ctx, deps, snap, budget, "researchers/bull", deps.Memories.Bull, state.SideBull)
}

// RunBear produces the next bear argument in the investment debate.
func RunBear(ctx context.Context, deps *Deps, snap *state.TradingState, budget *Budget) (state.Delta, error) {
	return runDebater(ctx, deps, snap, budget, "researchers/bear", deps.Memories.Bear, state.SideBear)
}

// RunResearchManager judges the investment debate and writes the investment
// plan the trader starts from.
func RunResearchManager(ctx context.Context, deps *Deps, snap *state.TradingState, budget *Budget) (state.Delta, error) {
	var delta state.Delta

	tmpl := prompt.FromMessages(schema.FString,
		schema.UserMessage(prompts.MustLoad("managers/research_manager")),
	)
	messages, err := tmpl.Format(ctx, map[string]any{
		"history":         snap.InvestDebate.History(),
		"past_memory_str": recallLessons(ctx, deps.Memories.InvestJudge, snap, deps.Log),
	})
	if err != nil {
		return delta, fmt.Errorf("format research manager prompt: %w", err)
	}

	if err := budget.Spend(); err != nil {
		return delta, err
	}
	resp, err := deps.Deep.Generate(ctx, messages)
	if err != nil {
		return delta, fmt.Errorf("research manager generation: %w", err)
	}

	delta.Messages = []*schema.Message{resp}
	delta.InvestJudge = resp.Content
	delta.InvestmentPlan = resp.Content
	return delta, nil
}
