package state

import (
	"fmt"
	"strings"
)

// Side is a party in the investment debate.
type Side string

const (
	SideBull Side = "Bull"
	SideBear Side = "Bear"
)

// Speaker is a party in the risk debate.
type Speaker string

const (
	SpeakerRisky   Speaker = "Risky"
	SpeakerSafe    Speaker = "Safe"
	SpeakerNeutral Speaker = "Neutral"
	SpeakerJudge   Speaker = "Judge"
)

// InvestDebate tracks the bull/bear investment debate. Histories are
// append-only and the turn counter only moves through AddTurn, so stages
// cannot rewind or overwrite the transcript.
type InvestDebate struct {
	history         strings.Builder
	bullHistory     strings.Builder
	bearHistory     strings.Builder
	currentResponse string
	judgeDecision   string
	count           int
}

// NextSide returns the side that must speak next. Bull opens and the sides
// alternate strictly.
func (d *InvestDebate) NextSide() Side {
	if d.count%2 == 0 {
		return SideBull
	}
	return SideBear
}

// AddTurn appends one labeled argument to the transcript and the speaking
// side's own history, then advances the counter. The side must match
// NextSide; strict alternation is not a convention here, it is enforced.
func (d *InvestDebate) AddTurn(side Side, argument string) error {
	if side != SideBull && side != SideBear {
		return fmt.Errorf("unknown debate side %q", side)
	}
	if side != d.NextSide() {
		return fmt.Errorf("out-of-turn argument from %s, expected %s", side, d.NextSide())
	}

	labeled := fmt.Sprintf("%s Analyst: %s", side, strings.TrimSpace(argument))
	appendLine(&d.history, labeled)
	if side == SideBull {
		appendLine(&d.bullHistory, labeled)
	} else {
		appendLine(&d.bearHistory, labeled)
	}
	d.currentResponse = labeled
	d.count++
	return nil
}

// Terminal reports whether the debate has run its configured rounds. One
// round is one bull turn plus one bear turn.
func (d *InvestDebate) Terminal(maxRounds int) bool {
	return d.count >= 2*maxRounds
}

func (d *InvestDebate) setJudgeDecision(decision string) error {
	if d.judgeDecision != "" {
		return fmt.Errorf("judge decision already recorded")
	}
	d.judgeDecision = decision
	return nil
}

func (d *InvestDebate) History() string         { return d.history.String() }
func (d *InvestDebate) BullHistory() string     { return d.bullHistory.String() }
func (d *InvestDebate) BearHistory() string     { return d.bearHistory.String() }
func (d *InvestDebate) CurrentResponse() string { return d.currentResponse }
func (d *InvestDebate) JudgeDecision() string   { return d.judgeDecision }
func (d *InvestDebate) Count() int              { return d.count }

func (d *InvestDebate) clone() *InvestDebate {
	c := &InvestDebate{
		currentResponse: d.currentResponse,
		judgeDecision:   d.judgeDecision,
		count:           d.count,
	}
	c.history.WriteString(d.history.String())
	c.bullHistory.WriteString(d.bullHistory.String())
	c.bearHistory.WriteString(d.bearHistory.String())
	return c
}

// RiskDebate tracks the three-way risk posture debate. Unlike the investment
// debate this is a rotation, not an alternation: Risky opens, then Safe, then
// Neutral, then back to Risky.
type RiskDebate struct {
	history        strings.Builder
	riskyHistory   strings.Builder
	safeHistory    strings.Builder
	neutralHistory strings.Builder

	currentRisky   string
	currentSafe    string
	currentNeutral string

	latestSpeaker Speaker
	judgeDecision string
	count         int
}

var riskRotation = []Speaker{SpeakerRisky, SpeakerSafe, SpeakerNeutral}

// NextSpeaker returns the speaker whose turn it is, derived from the counter.
func (r *RiskDebate) NextSpeaker() Speaker {
	return riskRotation[r.count%3]
}

// AddTurn appends one labeled argument for the rotation's current speaker.
func (r *RiskDebate) AddTurn(speaker Speaker, argument string) error {
	if speaker != r.NextSpeaker() {
		return fmt.Errorf("out-of-turn argument from %s, expected %s", speaker, r.NextSpeaker())
	}

	labeled := fmt.Sprintf("%s Analyst: %s", speaker, strings.TrimSpace(argument))
	appendLine(&r.history, labeled)

	switch speaker {
	case SpeakerRisky:
		appendLine(&r.riskyHistory, labeled)
		r.currentRisky = labeled
	case SpeakerSafe:
		appendLine(&r.safeHistory, labeled)
		r.currentSafe = labeled
	case SpeakerNeutral:
		appendLine(&r.neutralHistory, labeled)
		r.currentNeutral = labeled
	}

	r.latestSpeaker = speaker
	r.count++
	return nil
}

// Terminal reports whether every side has spoken in each configured round.
func (r *RiskDebate) Terminal(maxRounds int) bool {
	return r.count >= 3*maxRounds
}

func (r *RiskDebate) setJudgeDecision(decision string) error {
	if r.judgeDecision != "" {
		return fmt.Errorf("risk judge decision already recorded")
	}
	r.judgeDecision = decision
	r.latestSpeaker = SpeakerJudge
	return nil
}

func (r *RiskDebate) History() string              { return r.history.String() }
func (r *RiskDebate) RiskyHistory() string         { return r.riskyHistory.String() }
func (r *RiskDebate) SafeHistory() string          { return r.safeHistory.String() }
func (r *RiskDebate) NeutralHistory() string       { return r.neutralHistory.String() }
func (r *RiskDebate) CurrentRiskyResponse() string { return r.currentRisky }
func (r *RiskDebate) CurrentSafeResponse() string  { return r.currentSafe }
func (r *RiskDebate) CurrentNeutralResponse() string {
	return r.currentNeutral
}
func (r *RiskDebate) LatestSpeaker() Speaker { return r.latestSpeaker }
func (r *RiskDebate) JudgeDecision() string  { return r.judgeDecision }
func (r *RiskDebate) Count() int             { return r.count }

func (r *RiskDebate) clone() *RiskDebate {
	c := &RiskDebate{
		currentRisky:   r.currentRisky,
		currentSafe:    r.currentSafe,
		currentNeutral: r.currentNeutral,
		latestSpeaker:  r.latestSpeaker,
		judgeDecision:  r.judgeDecision,
		count:          r.count,
	}
	c.history.WriteString(r.history.String())
	c.riskyHistory.WriteString(r.riskyHistory.String())
	c.safeHistory.WriteString(r.safeHistory.String())
	c.neutralHistory.WriteString(r.neutralHistory.String())
	return c
}

func appendLine(b *strings.Builder, line string) {
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(line)
}
