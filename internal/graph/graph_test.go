package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"boardroom/internal/agents"
	"boardroom/internal/config"
	"boardroom/internal/dataflows"
	"boardroom/internal/processing"
	"boardroom/internal/state"
)

// scriptedModel plays back canned responses in order. Past the script it
// keeps answering with the last response.
type scriptedModel struct {
	mu        sync.Mutex
	responses []*schema.Message
	calls     int
}

func (m *scriptedModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.calls
	m.calls++
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	if idx < 0 {
		return nil, errors.New("no scripted responses")
	}
	return m.responses[idx], nil
}

func (m *scriptedModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported in tests")
}

func (m *scriptedModel) WithTools(_ []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

type fixedEmbedder struct{}

func (fixedEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{1, 0, 0}
	}
	return out, nil
}

func reply(content string) *schema.Message {
	return schema.AssistantMessage(content, nil)
}

// fullQuickScript covers four analyst reports, two debate turns, the trader,
// and three risk turns, in pipeline order.
func fullQuickScript() []*schema.Message {
	return []*schema.Message{
		reply("Technical picture is constructive, momentum positive."),
		reply("Social sentiment skews bullish across channels."),
		reply("News flow is supportive with no major red flags."),
		reply("Fundamentals show durable margins and growth."),
		reply("The growth runway justifies accumulating here."),
		reply("Valuation is rich and downside is underpriced."),
		reply("Scale in over two weeks, stop below support."),
		reply("Upside is large, press the advantage."),
		reply("Protect capital first, size down."),
		reply("Moderate exposure balances both views."),
	}
}

func newTestGraph(t *testing.T, quick, deep *scriptedModel, limit int) *TradingAgentsGraph {
	t.Helper()
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.MaxRecurLimit = limit

	deps := &agents.Deps{
		Quick:    quick,
		Deep:     deep,
		Memories: agents.NewMemoryBank(fixedEmbedder{}),
		Router:   dataflows.NewRouter(cfg, nil),
		Config:   cfg,
	}
	return NewTradingAgentsGraph(cfg, deps)
}

func TestPropagateFullRunBuy(t *testing.T) {
	quick := &scriptedModel{responses: fullQuickScript()}
	deep := &scriptedModel{responses: []*schema.Message{
		reply("The bull case is stronger. Build a position gradually."),
		reply("## Final Decision\nFINAL TRANSACTION PROPOSAL: **BUY**\nEntry at $120, stop-loss $108."),
	}}

	g := newTestGraph(t, quick, deep, 100)
	final, decision, err := g.Propagate(context.Background(), "NVDA", "2024-05-10")
	if err != nil {
		t.Fatal(err)
	}

	if decision != processing.DecisionBuy {
		t.Fatalf("decision = %s, want BUY", decision)
	}
	if !final.ReportsComplete() {
		t.Fatalf("analyst reports incomplete")
	}
	if final.MarketInfo.MarketName != "US" {
		t.Fatalf("market name = %q", final.MarketInfo.MarketName)
	}
	if final.InvestDebate.Count() != 2 {
		t.Fatalf("invest debate turns = %d, want 2", final.InvestDebate.Count())
	}
	if final.RiskDebate.Count() != 3 {
		t.Fatalf("risk debate turns = %d, want 3", final.RiskDebate.Count())
	}
	if final.RiskDebate.LatestSpeaker() != state.SpeakerJudge {
		t.Fatalf("latest speaker = %s, want Judge", final.RiskDebate.LatestSpeaker())
	}
	if final.InvestmentPlan == "" || final.TraderInvestmentPlan == "" {
		t.Fatalf("plans missing: %q / %q", final.InvestmentPlan, final.TraderInvestmentPlan)
	}
	if !strings.Contains(final.InvestDebate.History(), "Bull Analyst:") ||
		!strings.Contains(final.InvestDebate.History(), "Bear Analyst:") {
		t.Fatalf("debate history incomplete:\n%s", final.InvestDebate.History())
	}
	if quick.calls != 10 {
		t.Fatalf("quick model calls = %d, want 10", quick.calls)
	}
	if deep.calls != 2 {
		t.Fatalf("deep model calls = %d, want 2", deep.calls)
	}

	// Debate, plan and judge turns stay on the transcript; only the per-analyst
	// react exchanges are dropped. 2 debaters + manager + trader + 3 risk
	// debaters + judge.
	if len(final.Messages) != 8 {
		t.Fatalf("final messages = %d, want 8", len(final.Messages))
	}
	last := final.Messages[len(final.Messages)-1]
	if last.Role != schema.Assistant || !strings.Contains(last.Content, "FINAL TRANSACTION PROPOSAL") {
		t.Fatalf("last message is not the judge decision: %+v", last)
	}
}

func TestPropagateChinaMarketMetadata(t *testing.T) {
	quick := &scriptedModel{responses: fullQuickScript()}
	deep := &scriptedModel{responses: []*schema.Message{
		reply("Bear case wins on policy risk."),
		reply("FINAL TRANSACTION PROPOSAL: **SELL**"),
	}}

	g := newTestGraph(t, quick, deep, 100)
	final, decision, err := g.Propagate(context.Background(), "600519", "2024-05-10")
	if err != nil {
		t.Fatal(err)
	}
	if decision != processing.DecisionSell {
		t.Fatalf("decision = %s, want SELL", decision)
	}
	if final.MarketInfo.CurrencySymbol != "¥" {
		t.Fatalf("currency symbol = %q, want ¥", final.MarketInfo.CurrencySymbol)
	}
	if final.MarketInfo.MarketName != "China A-shares" {
		t.Fatalf("market name = %q", final.MarketInfo.MarketName)
	}
}

func TestPropagateBudgetExhaustion(t *testing.T) {
	quick := &scriptedModel{responses: fullQuickScript()}
	deep := &scriptedModel{responses: []*schema.Message{reply("plan"), reply("HOLD")}}

	g := newTestGraph(t, quick, deep, 3)
	_, _, err := g.Propagate(context.Background(), "NVDA", "2024-05-10")
	if !errors.Is(err, agents.ErrNotConverged) {
		t.Fatalf("error = %v, want ErrNotConverged", err)
	}
}

func TestPropagateAnalystToolLoop(t *testing.T) {
	// The market analyst asks for a tool the catalog does not know; the
	// controller feeds the error back and the analyst then reports.
	toolCall := schema.AssistantMessage("", []schema.ToolCall{{
		ID:       "call-1",
		Function: schema.FunctionCall{Name: "get_price_graph", Arguments: `{"symbol":"NVDA"}`},
	}})
	responses := append([]*schema.Message{toolCall}, fullQuickScript()...)
	quick := &scriptedModel{responses: responses}
	deep := &scriptedModel{responses: []*schema.Message{
		reply("plan"),
		reply("FINAL TRANSACTION PROPOSAL: **HOLD**"),
	}}

	g := newTestGraph(t, quick, deep, 100)
	final, decision, err := g.Propagate(context.Background(), "NVDA", "2024-05-10")
	if err != nil {
		t.Fatal(err)
	}
	if decision != processing.DecisionHold {
		t.Fatalf("decision = %s, want HOLD", decision)
	}
	if quick.calls != 11 {
		t.Fatalf("quick calls = %d, want 11 (one extra react turn)", quick.calls)
	}
	if !final.HasReport(state.ReportMarket) {
		t.Fatalf("market report missing after tool loop")
	}
}

func TestPropagateInvalidDate(t *testing.T) {
	g := newTestGraph(t, &scriptedModel{}, &scriptedModel{}, 100)
	if _, _, err := g.Propagate(context.Background(), "NVDA", "05/10/2024"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestReflectAndRememberStoresLessons(t *testing.T) {
	quick := &scriptedModel{responses: fullQuickScript()}

	// Two deliberation responses plus five reflection lessons.
	deepResponses := []*schema.Message{
		reply("plan"),
		reply("FINAL TRANSACTION PROPOSAL: **BUY**"),
	}
	for i := 0; i < 5; i++ {
		deepResponses = append(deepResponses, reply(fmt.Sprintf("lesson %d", i)))
	}
	deep := &scriptedModel{responses: deepResponses}

	g := newTestGraph(t, quick, deep, 100)
	if _, _, err := g.Propagate(context.Background(), "NVDA", "2024-05-10"); err != nil {
		t.Fatal(err)
	}
	if err := g.ReflectAndRemember(context.Background(), 12.5); err != nil {
		t.Fatal(err)
	}

	for _, store := range g.deps.Memories.All() {
		if store.Len() != 1 {
			t.Fatalf("store %s has %d records, want 1", store.Name(), store.Len())
		}
	}
}

func TestReflectWithoutRun(t *testing.T) {
	g := newTestGraph(t, &scriptedModel{}, &scriptedModel{}, 100)
	if err := g.ReflectAndRemember(context.Background(), 0); err == nil {
		t.Fatal("reflect before any run must error")
	}
}
