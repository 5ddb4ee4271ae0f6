package processing

import "testing"

func TestExtractDecisionProposalLine(t *testing.T) {
	cases := []struct {
		text string
		want Decision
	}{
		{"Analysis done. FINAL TRANSACTION PROPOSAL: **BUY**", DecisionBuy},
		{"final transaction proposal: sell", DecisionSell},
		{"FINAL TRANSACTION PROPOSAL: **HOLD** for now", DecisionHold},
		{"We should buy buy buy. FINAL TRANSACTION PROPOSAL: **SELL**", DecisionSell},
	}
	for _, tc := range cases {
		if got := ExtractDecision(tc.text); got != tc.want {
			t.Errorf("ExtractDecision(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestExtractDecisionTokenFallback(t *testing.T) {
	if got := ExtractDecision("I would buy this, buy on dips, and buy more; never sell."); got != DecisionBuy {
		t.Fatalf("buy-heavy text = %s", got)
	}
	if got := ExtractDecision("Sell into strength. Sell the rally."); got != DecisionSell {
		t.Fatalf("sell-heavy text = %s", got)
	}
}

func TestExtractDecisionDefaultsToHold(t *testing.T) {
	if got := ExtractDecision("The outlook is unclear."); got != DecisionHold {
		t.Fatalf("empty signal = %s, want HOLD", got)
	}
	if got := ExtractDecision("buy the dip or sell the rip"); got != DecisionHold {
		t.Fatalf("tied signal = %s, want HOLD", got)
	}
}

func TestProcessSignalExtractsLevels(t *testing.T) {
	text := "FINAL TRANSACTION PROPOSAL: **BUY**\nEntry around $120.50, stop-loss at $110, take-profit near $150.25."
	sig := ProcessSignal(text)

	if sig.Action != DecisionBuy {
		t.Fatalf("action = %s", sig.Action)
	}
	if sig.Confidence != 0.9 {
		t.Fatalf("confidence = %v, want 0.9 with explicit proposal", sig.Confidence)
	}
	if sig.EntryPrice != 120.50 {
		t.Fatalf("entry = %v", sig.EntryPrice)
	}
	if sig.StopLoss != 110 {
		t.Fatalf("stop = %v", sig.StopLoss)
	}
	if sig.TakeProfit != 150.25 {
		t.Fatalf("target = %v", sig.TakeProfit)
	}
}
