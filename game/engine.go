// game/engine.go
package game

import (
	"fmt"

	"github.com/dietracker/matchserver/models"
)

// Notice is a user-facing message produced by a play instead of, or in
// addition to, a statistics change.
type Notice struct {
	Slot       int    `json:"slot"`
	PlayerName string `json:"playerName"`
	Message    string `json:"message"`
}

// SubmitPlay applies one play to the match and returns the resulting state.
// The input match is never mutated: all steps run against a deep copy that
// is only handed back once the whole play has applied, so a rejected play
// can never leave half of its counters behind.
//
// A self-sink produces a notice and returns the state unchanged.
func SubmitPlay(m *models.LiveMatch, play Play) (*models.LiveMatch, *Notice, error) {
	if err := play.Validate(); err != nil {
		return m, nil, err
	}

	if play.ThrowResult == OutcomeSelfSink {
		name := m.PlayerStats[play.ThrowingPlayer].Name
		notice := &Notice{
			Slot:       play.ThrowingPlayer,
			PlayerName: name,
			Message: fmt.Sprintf(
				"Uh Oh! %s just sunk it in their own cup! %s must run a naked lap or forfeit the match!!!",
				name, name),
		}
		return m, notice, nil
	}

	// Phase and FIFA gates are decided on the scores as they stood before
	// this play.
	preTeam1 := TeamScore(m, 1)
	preTeam2 := TeamScore(m, 2)
	phase := ClassifyPhase(preTeam1, preTeam2, m.MatchSetup.GameScoreLimit, m.MatchSetup.WinByTwo)

	c := m.Clone()

	// Throw tally, streak and fire tracking.
	thrower := c.PlayerStats[play.ThrowingPlayer]
	wasOnFire := thrower.CurrentlyOnFire
	thrower.Throws++
	tallyThrow(&thrower, play.ThrowResult)

	if IsHitOutcome(play.ThrowResult) {
		thrower.Hits++
		thrower.HitStreak++
		switch play.ThrowResult {
		case OutcomeKnicker, OutcomeDink, OutcomeSink:
			thrower.SpecialThrows++
		case OutcomeGoal:
			thrower.Goals++
		}
	} else {
		thrower.HitStreak = 0
	}

	// A height throw is the thrower's own blunder.
	if play.ThrowResult == OutcomeHeight {
		thrower.Blunders++
	}
	if play.ThrowResult == OutcomeLine {
		thrower.LineThrows++
	}

	thrower.CurrentlyOnFire = thrower.HitStreak >= 3
	if wasOnFire {
		// Counts throws made while already on fire, not activations.
		thrower.OnFireCount++
	}
	c.PlayerStats[play.ThrowingPlayer] = thrower

	pointsToAdd := ThrowPoints(play.ThrowResult, c.MatchSetup)
	preventScoring := false

	// Defense.
	for _, slot := range play.defenders() {
		defender := c.PlayerStats[slot]
		if IsCatch(play.DefenseResult) {
			defender.Catches++
			if play.DefenseResult == OutcomeCatchPlusAura {
				defender.CatchPlusAura++
				defender.Aura++
			}
			preventScoring = true
		} else {
			defender.Blunders++
			tallyBadDefense(&defender, play.DefenseResult)
		}
		c.PlayerStats[slot] = defender
	}

	// FIFA sub-play.
	if play.FifaKicker != NoPlayer {
		applyFifa(c, play, phase, preTeam1, preTeam2)
	}

	// A successful redemption negates the throw's score regardless of the
	// catch outcome and deducts one from the opposing team's penalties.
	if play.Redemption == RedemptionSuccess {
		opposing := models.OpposingTeam(models.TeamForSlot(play.ThrowingPlayer))
		c.TeamPenalties[opposing]--
		preventScoring = true
	}

	if !preventScoring && pointsToAdd > 0 {
		thrower = c.PlayerStats[play.ThrowingPlayer]
		thrower.Score += pointsToAdd
		c.PlayerStats[play.ThrowingPlayer] = thrower
	}

	c.Version++
	return c, nil, nil
}

// applyFifa applies the FIFA kick rules. A caught bad throw converted by a
// good kick is a FIFA save and rewards the defenders directly; any other
// kick scores (or penalizes) depending on the match phase.
func applyFifa(c *models.LiveMatch, play Play, phase Phase, preTeam1, preTeam2 int) {
	kicker := c.PlayerStats[play.FifaKicker]
	kicker.FifaAttempts++

	kickerTeam := models.TeamForSlot(play.FifaKicker)
	opposingTeam := models.OpposingTeam(kickerTeam)

	kickerScore := preTeam1
	opposingScore := preTeam2
	if kickerTeam == 2 {
		kickerScore, opposingScore = preTeam2, preTeam1
	}

	isSave := IsBadThrow(play.ThrowResult) &&
		play.FifaAction == OutcomeGoodKick &&
		IsCatch(play.DefenseResult)

	if isSave {
		kicker.FifaSuccess++
		kicker.GoodKick++
		c.PlayerStats[play.FifaKicker] = kicker

		// The save rewards the catching defenders a point each, even though
		// the catch suppressed the throw's own score.
		for _, slot := range play.defenders() {
			defender := c.PlayerStats[slot]
			defender.Score++
			c.PlayerStats[slot] = defender
		}
		return
	}

	if play.FifaAction == OutcomeGoodKick {
		kicker.FifaSuccess++
		kicker.GoodKick++

		switch phase {
		case PhaseMatchPoint, PhaseAdvantage:
			c.TeamPenalties[opposingTeam]++
		case PhaseOvertime:
			// In overtime a kick only scores for the team not already ahead.
			if kickerScore <= opposingScore {
				kicker.Score++
			}
		default:
			kicker.Score++
		}
	} else {
		kicker.BadKick++

		if phase == PhaseOvertime {
			if kickerScore <= opposingScore {
				kicker.Score++
			}
		} else {
			kicker.Score++
		}
	}

	c.PlayerStats[play.FifaKicker] = kicker
}
