// Package agents implements the deliberation roles. Each Run function takes a
// state snapshot and returns a typed delta; none of them mutate shared state.
package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/sirupsen/logrus"

	"boardroom/internal/config"
	"boardroom/internal/dataflows"
	"boardroom/internal/memory"
	"boardroom/internal/state"
)

// ErrNotConverged is returned when a run exhausts its model-call budget
// before reaching a final decision.
var ErrNotConverged = errors.New("deliberation did not converge")

// MemoryBank groups the per-role episodic memories.
type MemoryBank struct {
	Bull        *memory.Store
	Bear        *memory.Store
	Trader      *memory.Store
	InvestJudge *memory.Store
	RiskJudge   *memory.Store
}

// NewMemoryBank creates empty stores sharing one embedder.
func NewMemoryBank(embedder embedding.Embedder) *MemoryBank {
	return &MemoryBank{
		Bull:        memory.NewStore("bull_memory", embedder),
		Bear:        memory.NewStore("bear_memory", embedder),
		Trader:      memory.NewStore("trader_memory", embedder),
		InvestJudge: memory.NewStore("invest_judge_memory", embedder),
		RiskJudge:   memory.NewStore("risk_judge_memory", embedder),
	}
}

// All returns the stores, for persistence sweeps.
func (b *MemoryBank) All() []*memory.Store {
	return []*memory.Store{b.Bull, b.Bear, b.Trader, b.InvestJudge, b.RiskJudge}
}

// Deps carries everything a role needs to run.
type Deps struct {
	Quick    model.ToolCallingChatModel
	Deep     model.ToolCallingChatModel
	Memories *MemoryBank
	Router   *dataflows.Router
	Config   *config.Config
	Log      *logrus.Entry
}

// Budget caps model invocations for one run. Every Spend call is one model
// invocation; exhausting the budget aborts the run with ErrNotConverged.
type Budget struct {
	limit int
	used  int
}

func NewBudget(limit int) *Budget {
	return &Budget{limit: limit}
}

func (b *Budget) Spend() error {
	if b.used >= b.limit {
		return fmt.Errorf("%w after %d model calls", ErrNotConverged, b.used)
	}
	b.used++
	return nil
}

func (b *Budget) Used() int { return b.used }

// situationSummary concatenates the four analyst reports; it is the key the
// memory stores are queried and written with.
func situationSummary(s *state.TradingState) string {
	parts := make([]string, 0, len(state.AllReports))
	for _, r := range state.AllReports {
		parts = append(parts, s.Report(r))
	}
	return strings.Join(parts, "\n\n")
}

// recallLessons fetches up to two past lessons for the current situation.
// Retrieval failures degrade to no memories rather than failing the stage.
func recallLessons(ctx context.Context, store *memory.Store, s *state.TradingState, log *logrus.Entry) string {
	matches, err := store.GetMemories(ctx, situationSummary(s), 2)
	if err != nil {
		log.WithError(err).WithField("store", store.Name()).Warn("memory recall failed")
		return ""
	}
	var b strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, m.Recommendation)
	}
	return b.String()
}
