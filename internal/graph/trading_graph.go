// Package graph runs the deliberation pipeline: four analysts, the
// investment debate, the trader, the risk debate, and the judges. The
// controller owns the only mutable TradingState; every stage works on a
// snapshot and reports back through a typed delta.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"boardroom/internal/agents"
	"boardroom/internal/config"
	"boardroom/internal/processing"
	"boardroom/internal/state"
)

// TradingAgentsGraph drives one or more deliberation runs over a fixed
// dependency set.
type TradingAgentsGraph struct {
	cfg  *config.Config
	deps *agents.Deps
	log  *logrus.Entry

	lastState *state.TradingState
	lastCalls int
}

// Option configures a TradingAgentsGraph.
type Option func(*TradingAgentsGraph)

func WithLogger(log *logrus.Entry) Option {
	return func(g *TradingAgentsGraph) { g.log = log }
}

// NewTradingAgentsGraph wires a pipeline over prepared dependencies.
func NewTradingAgentsGraph(cfg *config.Config, deps *agents.Deps, opts ...Option) *TradingAgentsGraph {
	g := &TradingAgentsGraph{
		cfg: cfg,
		log: logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(g)
	}
	if deps.Log == nil {
		deps.Log = g.log
	}
	g.deps = deps
	return g
}

// Propagate runs the full deliberation for one ticker and trade date. It
// returns the final state and the extracted decision. A run that exhausts
// the model-call ceiling fails with agents.ErrNotConverged.
func (g *TradingAgentsGraph) Propagate(ctx context.Context, ticker, date string) (*state.TradingState, processing.Decision, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, "", fmt.Errorf("invalid trade date %q: %w", date, err)
	}

	s := state.New(ticker, date)
	budget := agents.NewBudget(g.cfg.MaxRecurLimit)
	log := g.log.WithFields(logrus.Fields{"ticker": ticker, "trade_date": date})
	log.WithField("market", s.MarketInfo.MarketName).Info("deliberation started")

	if err := g.runAnalysts(ctx, s, budget, log); err != nil {
		return nil, "", err
	}
	if err := g.runInvestDebate(ctx, s, budget, log); err != nil {
		return nil, "", err
	}
	if err := g.runTrader(ctx, s, budget, log); err != nil {
		return nil, "", err
	}
	if err := g.runRiskDebate(ctx, s, budget, log); err != nil {
		return nil, "", err
	}

	decision := processing.ExtractDecision(s.FinalTradeDecision)
	log.WithFields(logrus.Fields{
		"decision":    decision,
		"model_calls": budget.Used(),
	}).Info("deliberation finished")

	g.lastState = s
	g.lastCalls = budget.Used()
	return s, decision, nil
}

// ModelCalls reports how many model invocations the last run spent.
func (g *TradingAgentsGraph) ModelCalls() int { return g.lastCalls }

// runAnalysts drives each analyst's react loop to completion, in order.
func (g *TradingAgentsGraph) runAnalysts(ctx context.Context, s *state.TradingState, budget *agents.Budget, log *logrus.Entry) error {
	for _, role := range agents.AllAnalysts {
		for !s.HasReport(role.Report) {
			delta, done, err := agents.RunAnalyst(ctx, g.deps, role, s.Snapshot(), budget)
			if err != nil {
				return fmt.Errorf("%s analyst: %w", role.Name, err)
			}
			if err := s.Apply(delta); err != nil {
				return fmt.Errorf("%s analyst delta: %w", role.Name, err)
			}
			if done {
				log.WithField("analyst", role.Name).Info("report completed")
			}
		}
		// The react transcript belongs to one analyst only.
		s.Messages = nil
	}
	return nil
}

func (g *TradingAgentsGraph) runInvestDebate(ctx context.Context, s *state.TradingState, budget *agents.Budget, log *logrus.Entry) error {
	for !s.InvestDebate.Terminal(g.cfg.MaxDebateRounds) {
		var (
			delta state.Delta
			err   error
		)
		switch s.InvestDebate.NextSide() {
		case state.SideBull:
			delta, err = agents.RunBull(ctx, g.deps, s.Snapshot(), budget)
		case state.SideBear:
			delta, err = agents.RunBear(ctx, g.deps, s.Snapshot(), budget)
		}
		if err != nil {
			return fmt.Errorf("investment debate: %w", err)
		}
		if err := s.Apply(delta); err != nil {
			return fmt.Errorf("investment debate delta: %w", err)
		}
	}
	log.WithField("turns", s.InvestDebate.Count()).Info("investment debate closed")

	delta, err := agents.RunResearchManager(ctx, g.deps, s.Snapshot(), budget)
	if err != nil {
		return fmt.Errorf("research manager: %w", err)
	}
	if err := s.Apply(delta); err != nil {
		return fmt.Errorf("research manager delta: %w", err)
	}
	return nil
}

func (g *TradingAgentsGraph) runTrader(ctx context.Context, s *state.TradingState, budget *agents.Budget, log *logrus.Entry) error {
	delta, err := agents.RunTrader(ctx, g.deps, s.Snapshot(), budget)
	if err != nil {
		return fmt.Errorf("trader: %w", err)
	}
	if err := s.Apply(delta); err != nil {
		return fmt.Errorf("trader delta: %w", err)
	}
	log.Info("trader plan prepared")
	return nil
}

func (g *TradingAgentsGraph) runRiskDebate(ctx context.Context, s *state.TradingState, budget *agents.Budget, log *logrus.Entry) error {
	for !s.RiskDebate.Terminal(g.cfg.MaxRiskDiscussRounds) {
		var (
			delta state.Delta
			err   error
		)
		switch s.RiskDebate.NextSpeaker() {
		case state.SpeakerRisky:
			delta, err = agents.RunRisky(ctx, g.deps, s.Snapshot(), budget)
		case state.SpeakerSafe:
			delta, err = agents.RunSafe(ctx, g.deps, s.Snapshot(), budget)
		case state.SpeakerNeutral:
			delta, err = agents.RunNeutral(ctx, g.deps, s.Snapshot(), budget)
		}
		if err != nil {
			return fmt.Errorf("risk debate: %w", err)
		}
		if err := s.Apply(delta); err != nil {
			return fmt.Errorf("risk debate delta: %w", err)
		}
	}
	log.WithField("turns", s.RiskDebate.Count()).Info("risk debate closed")

	delta, err := agents.RunRiskJudge(ctx, g.deps, s.Snapshot(), budget)
	if err != nil {
		return fmt.Errorf("risk judge: %w", err)
	}
	if err := s.Apply(delta); err != nil {
		return fmt.Errorf("risk judge delta: %w", err)
	}
	return nil
}

// ReflectAndRemember reviews the last completed run against realized returns
// and writes the lessons into the role memories.
func (g *TradingAgentsGraph) ReflectAndRemember(ctx context.Context, positionReturns float64) error {
	if g.lastState == nil {
		return fmt.Errorf("no completed run to reflect on")
	}
	returns := fmt.Sprintf("position returns: %.2f%%", positionReturns)
	return agents.Reflect(ctx, g.deps, g.lastState, returns)
}
