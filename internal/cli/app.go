// Package cli is the terminal front end: it wires the pipeline together,
// guards concurrent sessions, records runs, and renders results.
package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"boardroom/internal/agents"
	"boardroom/internal/config"
	"boardroom/internal/dataflows"
	"boardroom/internal/graph"
	"boardroom/internal/llm"
	"boardroom/internal/memory"
	"boardroom/internal/processing"
	"boardroom/internal/state"
	"boardroom/internal/storage"
)

// App owns the long-lived pieces shared by all commands.
type App struct {
	cfg      *config.Config
	deps     *agents.Deps
	recorder *storage.Recorder
	memDB    *memory.DB
	sessions *SessionManager
	log      *logrus.Entry

	mu        sync.Mutex
	lastGraph *graph.TradingAgentsGraph
}

// Result is what one deliberation run hands back to the front end.
type Result struct {
	RunID    string
	Symbol   string
	Date     string
	Market   string
	Decision processing.Decision
	Signal   *processing.Signal
	State    *state.TradingState
	Calls    int
}

// NewApp builds the pipeline from configuration: chat models, embedder,
// memories (restored from disk), vendor router, run recorder.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	log := logrus.WithField("component", "boardroom")

	models, err := llm.NewModels(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build chat models: %w", err)
	}
	embedder, err := llm.NewEmbedder(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build embedder: %w", err)
	}

	memories := agents.NewMemoryBank(embedder)
	memDB, err := memory.OpenDB(cfg.MemoryDBPath)
	if err != nil {
		return nil, fmt.Errorf("open memory db: %w", err)
	}
	for _, store := range memories.All() {
		if err := memDB.LoadInto(ctx, store); err != nil {
			log.WithError(err).WithField("store", store.Name()).Warn("memory restore failed")
		}
	}

	recorder, err := storage.Open(cfg.RunDBPath)
	if err != nil {
		_ = memDB.Close()
		return nil, fmt.Errorf("open run db: %w", err)
	}

	deps := &agents.Deps{
		Quick:    models.Quick,
		Deep:     models.Deep,
		Memories: memories,
		Router:   dataflows.NewRouter(cfg, log),
		Config:   cfg,
		Log:      log,
	}

	return &App{
		cfg:      cfg,
		deps:     deps,
		recorder: recorder,
		memDB:    memDB,
		sessions: NewSessionManager(),
		log:      log,
	}, nil
}

// Close releases the app's database handles.
func (a *App) Close() error {
	err := a.recorder.Close()
	if merr := a.memDB.Close(); err == nil {
		err = merr
	}
	return err
}

// Analyze runs one full deliberation and records the outcome. A second call
// for the same symbol and date while one is running fails with ErrSessionBusy.
func (a *App) Analyze(ctx context.Context, symbol, date string) (*Result, error) {
	if err := a.sessions.Acquire(symbol, date); err != nil {
		return nil, err
	}
	defer a.sessions.Release(symbol, date)

	runID := uuid.NewString()
	g := graph.NewTradingAgentsGraph(a.cfg, a.deps, graph.WithLogger(a.log))

	record := storage.RunRecord{
		ID:        runID,
		Symbol:    symbol,
		TradeDate: date,
		Status:    storage.StatusRunning,
	}
	if err := a.recorder.SaveRun(ctx, record); err != nil {
		a.log.WithError(err).Warn("run record insert failed")
	}

	final, decision, err := g.Propagate(ctx, symbol, date)
	if err != nil {
		record.Status = storage.StatusError
		if saveErr := a.recorder.SaveRun(ctx, record); saveErr != nil {
			a.log.WithError(saveErr).Warn("run record update failed")
		}
		return nil, err
	}

	record.Market = final.MarketInfo.MarketName
	record.Decision = string(decision)
	record.FinalDecision = final.FinalTradeDecision
	record.ModelCalls = g.ModelCalls()
	record.Status = storage.StatusDone
	if err := a.recorder.SaveRun(ctx, record); err != nil {
		a.log.WithError(err).Warn("run record update failed")
	}

	result := &Result{
		RunID:    runID,
		Symbol:   symbol,
		Date:     date,
		Market:   final.MarketInfo.MarketName,
		Decision: decision,
		Signal:   processing.ProcessSignal(final.FinalTradeDecision),
		State:    final,
		Calls:    g.ModelCalls(),
	}

	if err := a.writeReports(result); err != nil {
		a.log.WithError(err).Warn("report files not written")
	}

	a.mu.Lock()
	a.lastGraph = g
	a.mu.Unlock()
	return result, nil
}

// AnalyzeBatch runs several symbols for one date with bounded concurrency.
// Failed symbols do not abort the rest; errors come back per symbol.
func (a *App) AnalyzeBatch(ctx context.Context, symbols []string, date string, concurrency int) (map[string]*Result, map[string]error) {
	if concurrency <= 0 {
		concurrency = 2
	}

	var mu sync.Mutex
	results := make(map[string]*Result, len(symbols))
	failures := make(map[string]error)

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(concurrency)
	for _, symbol := range symbols {
		symbol := symbol
		grp.Go(func() error {
			res, err := a.Analyze(ctx, symbol, date)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[symbol] = err
				return nil
			}
			results[symbol] = res
			return nil
		})
	}
	_ = grp.Wait()
	return results, failures
}

// Reflect reviews the most recent completed run with realized returns,
// storing lessons in the role memories and flushing them to disk.
func (a *App) Reflect(ctx context.Context, returns float64) error {
	a.mu.Lock()
	g := a.lastGraph
	a.mu.Unlock()
	if g == nil {
		return fmt.Errorf("no completed run to reflect on")
	}
	if err := g.ReflectAndRemember(ctx, returns); err != nil {
		return err
	}
	for _, store := range a.deps.Memories.All() {
		if err := a.memDB.Flush(ctx, store); err != nil {
			return fmt.Errorf("flush %s: %w", store.Name(), err)
		}
	}
	return nil
}

// ListRuns returns recent recorded runs.
func (a *App) ListRuns(ctx context.Context, symbol string, limit int) ([]storage.RunWithMeta, error) {
	return a.recorder.ListRuns(ctx, symbol, limit)
}

func (a *App) writeReports(res *Result) error {
	dir := filepath.Join(a.cfg.ResultsDir, res.Symbol, res.Date)

	sections := []struct {
		file    string
		content string
	}{
		{"market_report.md", res.State.Report(state.ReportMarket)},
		{"sentiment_report.md", res.State.Report(state.ReportSentiment)},
		{"news_report.md", res.State.Report(state.ReportNews)},
		{"fundamentals_report.md", res.State.Report(state.ReportFundamentals)},
		{"investment_plan.md", res.State.InvestmentPlan},
		{"trader_plan.md", res.State.TraderInvestmentPlan},
		{"final_decision.md", res.State.FinalTradeDecision},
	}
	for _, s := range sections {
		if s.content == "" {
			continue
		}
		if err := WriteMarkdown(dir, s.file, s.content); err != nil {
			return err
		}
	}
	return WriteMarkdown(dir, "summary.md", renderSummary(res))
}
