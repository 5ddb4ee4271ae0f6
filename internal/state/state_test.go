package state

import (
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestInvestDebateAlternation(t *testing.T) {
	d := &InvestDebate{}

	if d.NextSide() != SideBull {
		t.Fatalf("debate should open with Bull, got %s", d.NextSide())
	}
	if err := d.AddTurn(SideBear, "bear jumps the queue"); err == nil {
		t.Fatalf("expected out-of-turn error for Bear opening")
	}

	if err := d.AddTurn(SideBull, "growth is accelerating"); err != nil {
		t.Fatalf("bull turn: %v", err)
	}
	if err := d.AddTurn(SideBull, "bull speaks twice"); err == nil {
		t.Fatalf("expected out-of-turn error for consecutive Bull turns")
	}
	if err := d.AddTurn(SideBear, "valuation is stretched"); err != nil {
		t.Fatalf("bear turn: %v", err)
	}

	if d.Count() != 2 {
		t.Fatalf("count = %d, want 2", d.Count())
	}
	if !d.Terminal(1) {
		t.Fatalf("one round of two turns should be terminal at maxRounds=1")
	}
	if d.Terminal(2) {
		t.Fatalf("two turns should not be terminal at maxRounds=2")
	}
}

func TestInvestDebateHistories(t *testing.T) {
	d := &InvestDebate{}
	if err := d.AddTurn(SideBull, "buy it"); err != nil {
		t.Fatal(err)
	}
	if err := d.AddTurn(SideBear, "sell it"); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(d.History(), "Bull Analyst: buy it") {
		t.Fatalf("history missing bull turn: %q", d.History())
	}
	if !strings.Contains(d.History(), "Bear Analyst: sell it") {
		t.Fatalf("history missing bear turn: %q", d.History())
	}
	if strings.Contains(d.BullHistory(), "Bear") {
		t.Fatalf("bull history leaked bear content: %q", d.BullHistory())
	}
	if d.CurrentResponse() != "Bear Analyst: sell it" {
		t.Fatalf("current response = %q", d.CurrentResponse())
	}
}

func TestRiskDebateRotation(t *testing.T) {
	r := &RiskDebate{}

	order := []Speaker{SpeakerRisky, SpeakerSafe, SpeakerNeutral, SpeakerRisky, SpeakerSafe, SpeakerNeutral}
	for i, want := range order {
		if got := r.NextSpeaker(); got != want {
			t.Fatalf("turn %d: next speaker = %s, want %s", i, got, want)
		}
		if err := r.AddTurn(want, "position"); err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
	}

	if r.Count() != 6 {
		t.Fatalf("count = %d, want 6", r.Count())
	}
	if !r.Terminal(2) {
		t.Fatalf("six turns should be terminal at maxRounds=2")
	}
	if r.Terminal(3) {
		t.Fatalf("six turns should not be terminal at maxRounds=3")
	}
	if r.LatestSpeaker() != SpeakerNeutral {
		t.Fatalf("latest speaker = %s, want Neutral", r.LatestSpeaker())
	}
}

func TestRiskDebateRejectsOutOfTurn(t *testing.T) {
	r := &RiskDebate{}
	if err := r.AddTurn(SpeakerSafe, "too early"); err == nil {
		t.Fatalf("Safe must not open the rotation")
	}
	if err := r.AddTurn(SpeakerRisky, "leverage up"); err != nil {
		t.Fatal(err)
	}
	if err := r.AddTurn(SpeakerNeutral, "skipping safe"); err == nil {
		t.Fatalf("Neutral must not speak before Safe")
	}
}

func TestApplyReportWriteOnce(t *testing.T) {
	s := New("NVDA", "2024-05-10")

	err := s.Apply(Delta{Reports: map[Report]string{ReportMarket: "trend up"}})
	if err != nil {
		t.Fatal(err)
	}
	if s.Report(ReportMarket) != "trend up" {
		t.Fatalf("market report = %q", s.Report(ReportMarket))
	}

	err = s.Apply(Delta{Reports: map[Report]string{ReportMarket: "rewritten"}})
	if err == nil {
		t.Fatalf("rewriting market_report must fail")
	}
	if s.Report(ReportMarket) != "trend up" {
		t.Fatalf("failed apply mutated the report: %q", s.Report(ReportMarket))
	}
}

func TestApplyJudgeAndPlansWriteOnce(t *testing.T) {
	s := New("NVDA", "2024-05-10")

	if err := s.Apply(Delta{InvestJudge: "side with the bull", InvestmentPlan: "scale in"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(Delta{InvestJudge: "changed my mind"}); err == nil {
		t.Fatalf("judge decision must be write-once")
	}
	if err := s.Apply(Delta{InvestmentPlan: "scale out"}); err == nil {
		t.Fatalf("investment plan must be write-once")
	}

	if err := s.Apply(Delta{RiskJudge: "approve the trade"}); err != nil {
		t.Fatal(err)
	}
	if s.RiskDebate.LatestSpeaker() != SpeakerJudge {
		t.Fatalf("risk judge must record Judge as latest speaker, got %s", s.RiskDebate.LatestSpeaker())
	}
	if err := s.Apply(Delta{FinalDecision: "BUY"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(Delta{FinalDecision: "SELL"}); err == nil {
		t.Fatalf("final decision must be write-once")
	}
	if s.FinalTradeDecision != "BUY" {
		t.Fatalf("final decision = %q", s.FinalTradeDecision)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := New("600519", "2024-05-10")
	if err := s.Apply(Delta{
		Reports:  map[Report]string{ReportNews: "policy tailwind"},
		Messages: []*schema.Message{schema.UserMessage("hello")},
	}); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	if err := snap.Apply(Delta{
		Reports:    map[Report]string{ReportMarket: "snapshot only"},
		InvestTurn: &Turn{Side: SideBull, Argument: "moat"},
	}); err != nil {
		t.Fatal(err)
	}
	snap.Messages[0].Content = "mutated"

	if s.HasReport(ReportMarket) {
		t.Fatalf("snapshot write leaked into original reports")
	}
	if s.InvestDebate.Count() != 0 {
		t.Fatalf("snapshot debate turn leaked into original")
	}
	if s.Messages[0].Content != "hello" {
		t.Fatalf("snapshot message mutation leaked: %q", s.Messages[0].Content)
	}
	if snap.MarketInfo.CurrencySymbol != s.MarketInfo.CurrencySymbol {
		t.Fatalf("snapshot lost market info")
	}
}

func TestNewDerivesMarketInfo(t *testing.T) {
	s := New("600519", "2024-05-10")
	if s.MarketInfo.CurrencySymbol != "¥" {
		t.Fatalf("China ticker currency symbol = %q, want ¥", s.MarketInfo.CurrencySymbol)
	}
	if s.ReportsComplete() {
		t.Fatalf("fresh state must not report completion")
	}
}
