// game/outcomes.go
package game

import (
	"github.com/dietracker/matchserver/models"
)

// Outcome identifies a single throw, defense or kick result. Values match
// the camelCase counter names stored on the player statistics row.
type Outcome string

// Throw outcomes.
const (
	OutcomeTableDie Outcome = "tableDie"
	OutcomeLine     Outcome = "line"
	OutcomeHit      Outcome = "hit"
	OutcomeKnicker  Outcome = "knicker"
	OutcomeGoal     Outcome = "goal"
	OutcomeDink     Outcome = "dink"
	OutcomeSink     Outcome = "sink"
	OutcomeShort    Outcome = "short"
	OutcomeLong     Outcome = "long"
	OutcomeSide     Outcome = "side"
	OutcomeHeight   Outcome = "height"

	// OutcomeSelfSink is a sentinel: the play mutates nothing and only
	// produces a notice addressed to the thrower.
	OutcomeSelfSink Outcome = "selfSink"
)

// Defense outcomes.
const (
	OutcomeCatch         Outcome = "catch"
	OutcomeCatchPlusAura Outcome = "catchPlusAura"
	OutcomeDrop          Outcome = "drop"
	OutcomeMiss          Outcome = "miss"
	OutcomeTwoHands      Outcome = "twoHands"
	OutcomeBody          Outcome = "body"
)

// FIFA kick outcomes.
const (
	OutcomeGoodKick Outcome = "goodKick"
	OutcomeBadKick  Outcome = "badKick"
)

// Redemption results.
type Redemption string

const (
	RedemptionNone    Redemption = ""
	RedemptionSuccess Redemption = "success"
	RedemptionFailed  Redemption = "failed"
)

// IsHitOutcome reports whether the throw counts as a hit (extends the
// streak and may score).
func IsHitOutcome(o Outcome) bool {
	switch o {
	case OutcomeHit, OutcomeKnicker, OutcomeGoal, OutcomeDink, OutcomeSink:
		return true
	}
	return false
}

// IsBadThrow reports whether the throw is an errant one, eligible for a
// FIFA save when caught.
func IsBadThrow(o Outcome) bool {
	switch o {
	case OutcomeShort, OutcomeLong, OutcomeSide, OutcomeHeight:
		return true
	}
	return false
}

// IsThrowOutcome reports whether o is any selectable throw result,
// the self-sink sentinel included.
func IsThrowOutcome(o Outcome) bool {
	switch o {
	case OutcomeTableDie, OutcomeLine, OutcomeHit, OutcomeKnicker, OutcomeGoal,
		OutcomeDink, OutcomeSink, OutcomeShort, OutcomeLong, OutcomeSide,
		OutcomeHeight, OutcomeSelfSink:
		return true
	}
	return false
}

// IsCatch reports whether the defense stopped the throw.
func IsCatch(o Outcome) bool {
	return o == OutcomeCatch || o == OutcomeCatchPlusAura
}

// IsDefenseOutcome reports whether o is any selectable defense result.
func IsDefenseOutcome(o Outcome) bool {
	switch o {
	case OutcomeCatch, OutcomeCatchPlusAura, OutcomeDrop, OutcomeMiss,
		OutcomeTwoHands, OutcomeBody:
		return true
	}
	return false
}

// ThrowPoints returns the base score a throw earns before any defense or
// redemption suppression. Sink value is configurable per match.
func ThrowPoints(o Outcome, setup models.MatchSetup) int {
	switch o {
	case OutcomeHit, OutcomeKnicker:
		return 1
	case OutcomeGoal, OutcomeDink:
		return 2
	case OutcomeSink:
		return setup.SinkPoints
	}
	return 0
}

// tallyThrow bumps the per-outcome counter for a throw result. An explicit
// dispatch keeps the counters strongly typed instead of keyed by string.
func tallyThrow(s *models.PlayerStats, o Outcome) {
	switch o {
	case OutcomeTableDie:
		s.TableDie++
	case OutcomeLine:
		s.Line++
	case OutcomeHit:
		s.Hit++
	case OutcomeKnicker:
		s.Knicker++
	case OutcomeGoal:
		s.Goal++
	case OutcomeDink:
		s.Dink++
	case OutcomeSink:
		s.Sink++
	case OutcomeShort:
		s.Short++
	case OutcomeLong:
		s.Long++
	case OutcomeSide:
		s.Side++
	case OutcomeHeight:
		s.Height++
	}
}

// tallyBadDefense bumps the per-outcome counter for a failed defense.
func tallyBadDefense(s *models.PlayerStats, o Outcome) {
	switch o {
	case OutcomeDrop:
		s.Drop++
	case OutcomeMiss:
		s.Miss++
	case OutcomeTwoHands:
		s.TwoHands++
	case OutcomeBody:
		s.Body++
	}
}
