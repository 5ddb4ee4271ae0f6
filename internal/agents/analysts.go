package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"boardroom/internal/prompts"
	"boardroom/internal/state"
	"boardroom/internal/tools"
)

// AnalystRole describes one of the four report-producing analysts.
type AnalystRole struct {
	Name       string
	PromptPath string
	Report     state.Report
}

var (
	MarketAnalyst       = AnalystRole{Name: "market", PromptPath: "analysts/market", Report: state.ReportMarket}
	SocialAnalyst       = AnalystRole{Name: "social", PromptPath: "analysts/social", Report: state.ReportSentiment}
	NewsAnalyst         = AnalystRole{Name: "news", PromptPath: "analysts/news", Report: state.ReportNews}
	FundamentalsAnalyst = AnalystRole{Name: "fundamentals", PromptPath: "analysts/fundamentals", Report: state.ReportFundamentals}
)

// AllAnalysts lists the analyst roles in pipeline order.
var AllAnalysts = []AnalystRole{MarketAnalyst, SocialAnalyst, NewsAnalyst, FundamentalsAnalyst}

// RunAnalyst performs one model invocation of an analyst's react loop. If the
// model called tools, the tool results come back as messages and the analyst
// must be invoked again. A response with zero tool calls is the report and
// completes the role.
func RunAnalyst(ctx context.Context, deps *Deps, role AnalystRole, snap *state.TradingState, budget *Budget) (state.Delta, bool, error) {
	var delta state.Delta

	roleTools := tools.Catalog(deps.Router)[role.Name]
	infos := make([]*schema.ToolInfo, 0, len(roleTools))
	invokable := make(map[string]tool.InvokableTool, len(roleTools))
	names := make([]string, 0, len(roleTools))
	for _, t := range roleTools {
		info, err := t.Info(ctx)
		if err != nil {
			return delta, false, fmt.Errorf("tool info for %s analyst: %w", role.Name, err)
		}
		infos = append(infos, info)
		names = append(names, info.Name)
		inv, ok := t.(tool.InvokableTool)
		if !ok {
			return delta, false, fmt.Errorf("tool %s is not invokable", info.Name)
		}
		invokable[info.Name] = inv
	}

	systemTmpl := prompt.FromMessages(schema.FString,
		schema.SystemMessage(prompts.MustLoad("system/collaborator")),
	)
	systemMsgs, err := systemTmpl.Format(ctx, map[string]any{
		"tool_names":     strings.Join(names, ", "),
		"current_date":   snap.TradeDate,
		"ticker":         snap.CompanyOfInterest,
		"market_name":    snap.MarketInfo.MarketName,
		"system_message": roleSystemMessage(role, snap),
	})
	if err != nil {
		return delta, false, fmt.Errorf("format %s analyst prompt: %w", role.Name, err)
	}

	messages := append(systemMsgs, snap.Messages...)
	if len(snap.Messages) == 0 {
		messages = append(messages, schema.UserMessage(fmt.Sprintf(
			"Analyze %s as of %s and produce your report.",
			snap.CompanyOfInterest, snap.TradeDate)))
	}

	if err := budget.Spend(); err != nil {
		return delta, false, err
	}
	toolModel, err := deps.Quick.WithTools(infos)
	if err != nil {
		return delta, false, fmt.Errorf("bind tools for %s analyst: %w", role.Name, err)
	}
	resp, err := toolModel.Generate(ctx, messages)
	if err != nil {
		return delta, false, fmt.Errorf("%s analyst generation: %w", role.Name, err)
	}

	delta.Messages = append(delta.Messages, resp)
	if len(resp.ToolCalls) == 0 {
		delta.Reports = map[state.Report]string{role.Report: resp.Content}
		return delta, true, nil
	}

	for _, call := range resp.ToolCalls {
		inv, ok := invokable[call.Function.Name]
		if !ok {
			delta.Messages = append(delta.Messages, schema.ToolMessage(
				fmt.Sprintf("error: unknown tool %s", call.Function.Name), call.ID))
			continue
		}
		result, err := inv.InvokableRun(ctx, call.Function.Arguments)
		if err != nil {
			// The model sees the failure and can retry or work around it.
			result = fmt.Sprintf("error: %v", err)
			deps.Log.WithError(err).WithFields(map[string]interface{}{
				"analyst": role.Name,
				"tool":    call.Function.Name,
			}).Warn("tool call failed")
		}
		delta.Messages = append(delta.Messages, schema.ToolMessage(result, call.ID))
	}
	return delta, false, nil
}

func roleSystemMessage(role AnalystRole, snap *state.TradingState) string {
	tmpl := prompts.MustLoad(role.PromptPath)
	replacer := strings.NewReplacer(
		"{ticker}", snap.CompanyOfInterest,
		"{market_name}", snap.MarketInfo.MarketName,
		"{current_date}", snap.TradeDate,
		"{currency}", snap.MarketInfo.CurrencySymbol,
	)
	return replacer.Replace(tmpl)
}
