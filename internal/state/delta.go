package state

import (
	"fmt"

	"github.com/cloudwego/eino/schema"
)

// Turn is one debate contribution carried inside a Delta.
type Turn struct {
	Side     Side
	Speaker  Speaker
	Argument string
}

// Delta is the only way a stage writes back into the shared state. Each
// field is optional; the controller applies whatever is set. Keeping writes
// in a typed structure, instead of letting stages mutate the state directly,
// is what lets Apply enforce write-once reports and turn order.
type Delta struct {
	Messages []*schema.Message
	Reports  map[Report]string

	InvestTurn  *Turn
	InvestJudge string

	InvestmentPlan string
	TraderPlan     string

	RiskTurn  *Turn
	RiskJudge string

	FinalDecision string
}

// Apply folds a stage's delta into the state. Report slots are write-once,
// debate turns must come from the side or speaker whose turn it is, and the
// judge decisions and plans may each only be set once.
func (s *TradingState) Apply(d Delta) error {
	for name := range d.Reports {
		if s.HasReport(name) {
			return fmt.Errorf("report %s already written", name)
		}
	}

	if d.InvestTurn != nil {
		if err := s.InvestDebate.AddTurn(d.InvestTurn.Side, d.InvestTurn.Argument); err != nil {
			return err
		}
	}
	if d.InvestJudge != "" {
		if err := s.InvestDebate.setJudgeDecision(d.InvestJudge); err != nil {
			return err
		}
	}
	if d.RiskTurn != nil {
		if err := s.RiskDebate.AddTurn(d.RiskTurn.Speaker, d.RiskTurn.Argument); err != nil {
			return err
		}
	}
	if d.RiskJudge != "" {
		if err := s.RiskDebate.setJudgeDecision(d.RiskJudge); err != nil {
			return err
		}
	}

	if d.InvestmentPlan != "" {
		if s.InvestmentPlan != "" {
			return fmt.Errorf("investment plan already written")
		}
		s.InvestmentPlan = d.InvestmentPlan
	}
	if d.TraderPlan != "" {
		if s.TraderInvestmentPlan != "" {
			return fmt.Errorf("trader plan already written")
		}
		s.TraderInvestmentPlan = d.TraderPlan
	}
	if d.FinalDecision != "" {
		if s.FinalTradeDecision != "" {
			return fmt.Errorf("final trade decision already written")
		}
		s.FinalTradeDecision = d.FinalDecision
	}

	for name, content := range d.Reports {
		s.reports[name] = content
	}
	s.Messages = append(s.Messages, d.Messages...)
	return nil
}
