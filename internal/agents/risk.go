package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"boardroom/internal/prompts"
	"boardroom/internal/state"
)

func runRiskDebater(ctx context.Context, deps *Deps, snap *state.TradingState, budget *Budget,
	promptPath string, speaker state.Speaker) (state.Delta, error) {

	var delta state.Delta

	tmpl := prompt.FromMessages(schema.FString,
		schema.UserMessage(prompts.MustLoad(promptPath)),
	)
	messages, err := tmpl.Format(ctx, map[string]any{
		"trader_decision":          snap.TraderInvestmentPlan,
		"market_research_report":   snap.Report(state.ReportMarket),
		"sentiment_report":         snap.Report(state.ReportSentiment),
		"news_report":              snap.Report(state.ReportNews),
		"fundamentals_report":      snap.Report(state.ReportFundamentals),
		"history":                  snap.RiskDebate.History(),
		"current_risky_response":   snap.RiskDebate.CurrentRiskyResponse(),
		"current_safe_response":    snap.RiskDebate.CurrentSafeResponse(),
		"current_neutral_response": snap.RiskDebate.CurrentNeutralResponse(),
	})
	if err != nil {
		return delta, fmt.Errorf("format %s risk analyst prompt: %w", speaker, err)
	}

	if err := budget.Spend(); err != nil {
		return delta, err
	}
	resp, err := deps.Quick.Generate(ctx, messages)
	if err != nil {
		return delta, fmt.Errorf("%s risk analyst generation: %w", speaker, err)
	}

	delta.Messages = []*schema.Message{resp}
	delta.RiskTurn = &state.Turn{Speaker: speaker, Argument: resp.Content}
	return delta, nil
}

// RunRisky argues for the aggressive posture in the risk debate.
func RunRisky(ctx context.Context, deps *Deps, snap *state.TradingState, budget *Budget) (state.Delta, error) {
	return runRiskDebater(ctx, deps, snap, budget, "risk/risky", state.SpeakerRisky)
}

// RunSafe argues for the conservative posture in the risk debate.
func RunSafe(ctx context.Context, deps *Deps, snap *state.TradingState, budget *Budget) (state.Delta, error) {
	return runRiskDebater(ctx, deps, snap, budget, "risk/safe", state.SpeakerSafe)
}

// RunNeutral argues for the balanced posture in the risk debate.
func RunNeutral(ctx context.Context, deps *Deps, snap *state.TradingState, budget *Budget) (state.Delta, error) {
	return runRiskDebater(ctx, deps, snap, budget, "risk/neutral", state.SpeakerNeutral)
}

// RunRiskJudge closes the risk debate and emits the final trade decision.
func RunRiskJudge(ctx context.Context, deps *Deps, snap *state.TradingState, budget *Budget) (state.Delta, error) {
	var delta state.Delta

	tmpl := prompt.FromMessages(schema.FString,
		schema.UserMessage(prompts.MustLoad("managers/risk_judge")),
	)
	messages, err := tmpl.Format(ctx, map[string]any{
		"ticker":          snap.CompanyOfInterest,
		"market_name":     snap.MarketInfo.MarketName,
		"currency":        snap.MarketInfo.CurrencySymbol,
		"trader_plan":     snap.TraderInvestmentPlan,
		"history":         snap.RiskDebate.History(),
		"past_memory_str": recallLessons(ctx, deps.Memories.RiskJudge, snap, deps.Log),
	})
	if err != nil {
		return delta, fmt.Errorf("format risk judge prompt: %w", err)
	}

	if err := budget.Spend(); err != nil {
		return delta, err
	}
	resp, err := deps.Deep.Generate(ctx, messages)
	if err != nil {
		return delta, fmt.Errorf("risk judge generation: %w", err)
	}

	delta.Messages = []*schema.Message{resp}
	delta.RiskJudge = resp.Content
	delta.FinalDecision = resp.Content
	return delta, nil
}
