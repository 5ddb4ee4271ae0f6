package state

import (
	"github.com/cloudwego/eino/schema"

	"boardroom/internal/market"
)

// Report names the four analyst report slots.
type Report string

const (
	ReportMarket       Report = "market_report"
	ReportSentiment    Report = "sentiment_report"
	ReportNews         Report = "news_report"
	ReportFundamentals Report = "fundamentals_report"
)

// AllReports lists the report slots in pipeline order.
var AllReports = []Report{ReportMarket, ReportSentiment, ReportNews, ReportFundamentals}

// TradingState is the shared deliberation state for one ticker/date run.
// Stages never hold a pointer to it; the controller hands each stage a
// Snapshot and folds the stage's Delta back in.
type TradingState struct {
	CompanyOfInterest string
	TradeDate         string
	MarketInfo        market.Info

	Messages []*schema.Message
	reports  map[Report]string

	InvestDebate *InvestDebate
	RiskDebate   *RiskDebate

	InvestmentPlan       string
	TraderInvestmentPlan string
	FinalTradeDecision   string
}

// New builds the initial state for a run. Market metadata is derived from the
// ticker once, up front, so every stage sees the same classification.
func New(ticker, tradeDate string) *TradingState {
	return &TradingState{
		CompanyOfInterest: ticker,
		TradeDate:         tradeDate,
		MarketInfo:        market.InfoFor(ticker),
		reports:           make(map[Report]string),
		InvestDebate:      &InvestDebate{},
		RiskDebate:        &RiskDebate{},
	}
}

// Report returns the content of a report slot, empty if not yet written.
func (s *TradingState) Report(name Report) string {
	return s.reports[name]
}

// HasReport reports whether a slot has been filled.
func (s *TradingState) HasReport(name Report) bool {
	_, ok := s.reports[name]
	return ok
}

// ReportsComplete reports whether all four analyst reports are present.
func (s *TradingState) ReportsComplete() bool {
	for _, r := range AllReports {
		if !s.HasReport(r) {
			return false
		}
	}
	return true
}

// Snapshot returns a deep copy. Mutating the copy never touches the original.
func (s *TradingState) Snapshot() *TradingState {
	c := &TradingState{
		CompanyOfInterest:    s.CompanyOfInterest,
		TradeDate:            s.TradeDate,
		MarketInfo:           s.MarketInfo,
		InvestmentPlan:       s.InvestmentPlan,
		TraderInvestmentPlan: s.TraderInvestmentPlan,
		FinalTradeDecision:   s.FinalTradeDecision,
		reports:              make(map[Report]string, len(s.reports)),
		InvestDebate:         s.InvestDebate.clone(),
		RiskDebate:           s.RiskDebate.clone(),
	}
	for k, v := range s.reports {
		c.reports[k] = v
	}
	if len(s.Messages) > 0 {
		c.Messages = make([]*schema.Message, len(s.Messages))
		for i, m := range s.Messages {
			mc := *m
			c.Messages[i] = &mc
		}
	}
	return c
}
