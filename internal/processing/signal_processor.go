// Package processing turns free-form judge output into a machine-readable
// trading signal.
package processing

import (
	"regexp"
	"strconv"
	"strings"
)

// Decision is the tradable verdict of a deliberation.
type Decision string

const (
	DecisionBuy  Decision = "BUY"
	DecisionSell Decision = "SELL"
	DecisionHold Decision = "HOLD"
)

var proposalPattern = regexp.MustCompile(`(?i)FINAL\s+TRANSACTION\s+PROPOSAL:\s*\**\s*(BUY|SELL|HOLD)`)

// ExtractDecision pulls the BUY/SELL/HOLD verdict out of judge text. The
// explicit proposal line wins; without one the verdict falls back to token
// counting, and ambiguity resolves to HOLD.
func ExtractDecision(text string) Decision {
	if m := proposalPattern.FindStringSubmatch(text); m != nil {
		return Decision(strings.ToUpper(m[1]))
	}

	scores := map[Decision]int{}
	for _, word := range regexp.MustCompile(`[A-Za-z]+`).FindAllString(text, -1) {
		switch strings.ToUpper(word) {
		case "BUY":
			scores[DecisionBuy]++
		case "SELL":
			scores[DecisionSell]++
		case "HOLD":
			scores[DecisionHold]++
		}
	}

	if scores[DecisionBuy] > scores[DecisionSell] && scores[DecisionBuy] > scores[DecisionHold] {
		return DecisionBuy
	}
	if scores[DecisionSell] > scores[DecisionBuy] && scores[DecisionSell] > scores[DecisionHold] {
		return DecisionSell
	}
	return DecisionHold
}

// Signal is the structured result distilled from the final decision text.
type Signal struct {
	Action     Decision `json:"action"`
	Confidence float64  `json:"confidence"`
	EntryPrice float64  `json:"entry_price,omitempty"`
	StopLoss   float64  `json:"stop_loss,omitempty"`
	TakeProfit float64  `json:"take_profit,omitempty"`
	Reasoning  string   `json:"reasoning,omitempty"`
}

var pricePatterns = map[string]*regexp.Regexp{
	"entry":  regexp.MustCompile(`(?i)entry[^0-9$¥]*[$¥]?\s*([0-9]+(?:\.[0-9]+)?)`),
	"stop":   regexp.MustCompile(`(?i)stop[- ]?loss[^0-9$¥]*[$¥]?\s*([0-9]+(?:\.[0-9]+)?)`),
	"target": regexp.MustCompile(`(?i)(?:take[- ]?profit|target)[^0-9$¥]*[$¥]?\s*([0-9]+(?:\.[0-9]+)?)`),
}

// ProcessSignal builds a Signal from the final decision text.
func ProcessSignal(text string) *Signal {
	action := ExtractDecision(text)

	sig := &Signal{
		Action:     action,
		Confidence: confidence(text, action),
		EntryPrice: extractPrice(text, "entry"),
		StopLoss:   extractPrice(text, "stop"),
		TakeProfit: extractPrice(text, "target"),
		Reasoning:  firstSentenceWith(text, string(action)),
	}
	return sig
}

func confidence(text string, action Decision) float64 {
	// An explicit proposal line is a strong signal on its own.
	if proposalPattern.MatchString(text) {
		return 0.9
	}
	count := strings.Count(strings.ToUpper(text), string(action))
	switch {
	case count >= 5:
		return 0.8
	case count >= 2:
		return 0.6
	default:
		return 0.4
	}
}

func extractPrice(text, kind string) float64 {
	m := pricePatterns[kind].FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v
}

func firstSentenceWith(text, token string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(strings.ToUpper(line), token) {
			return strings.TrimSpace(line)
		}
	}
	return ""
}
