// game/play.go
package game

import (
	"errors"
	"fmt"

	"github.com/dietracker/matchserver/models"
)

// TeamDefense selects both players of the non-throwing team as defenders.
const TeamDefense = -1

// NoPlayer marks an unset player selection.
const NoPlayer = 0

// ErrInvalidPlay is returned when a submitted play is missing a required
// selection or pairs selections inconsistently. The match state is left
// untouched.
var ErrInvalidPlay = errors.New("invalid play")

// Play is one atomic scoring transaction: a throw plus optional defense,
// FIFA kick and redemption sub-actions, submitted together.
type Play struct {
	ThrowingPlayer  int        `json:"throwingPlayer"`
	ThrowResult     Outcome    `json:"throwResult"`
	DefendingPlayer int        `json:"defendingPlayer"` // slot, TeamDefense, or NoPlayer
	DefenseResult   Outcome    `json:"defenseResult"`
	FifaKicker      int        `json:"fifaKicker"`
	FifaAction      Outcome    `json:"fifaAction"`
	Redemption      Redemption `json:"redemption"`
}

func validSlot(slot int) bool {
	return slot >= models.FirstSlot && slot <= models.LastSlot
}

// Validate checks the play's selections before any statistics are touched.
func (p Play) Validate() error {
	if p.ThrowingPlayer == NoPlayer {
		return fmt.Errorf("%w: throwing player not selected", ErrInvalidPlay)
	}
	if !validSlot(p.ThrowingPlayer) {
		return fmt.Errorf("%w: throwing player slot %d out of range", ErrInvalidPlay, p.ThrowingPlayer)
	}
	if p.ThrowResult == "" {
		return fmt.Errorf("%w: throw result not selected", ErrInvalidPlay)
	}
	if !IsThrowOutcome(p.ThrowResult) {
		return fmt.Errorf("%w: unknown throw result %q", ErrInvalidPlay, p.ThrowResult)
	}
	if p.DefendingPlayer != NoPlayer && p.DefenseResult == "" {
		return fmt.Errorf("%w: defender selected without a defense result", ErrInvalidPlay)
	}
	if p.DefendingPlayer == NoPlayer && p.DefenseResult != "" {
		return fmt.Errorf("%w: defense result selected without a defender", ErrInvalidPlay)
	}
	if p.DefendingPlayer != NoPlayer {
		if p.DefendingPlayer != TeamDefense && !validSlot(p.DefendingPlayer) {
			return fmt.Errorf("%w: defending player slot %d out of range", ErrInvalidPlay, p.DefendingPlayer)
		}
		if !IsDefenseOutcome(p.DefenseResult) {
			return fmt.Errorf("%w: unknown defense result %q", ErrInvalidPlay, p.DefenseResult)
		}
	}
	if p.FifaKicker != NoPlayer && p.FifaAction == "" {
		return fmt.Errorf("%w: FIFA kicker selected without a kick result", ErrInvalidPlay)
	}
	if p.FifaKicker == NoPlayer && p.FifaAction != "" {
		return fmt.Errorf("%w: FIFA kick result selected without a kicker", ErrInvalidPlay)
	}
	if p.FifaKicker != NoPlayer {
		if !validSlot(p.FifaKicker) {
			return fmt.Errorf("%w: FIFA kicker slot %d out of range", ErrInvalidPlay, p.FifaKicker)
		}
		if p.FifaAction != OutcomeGoodKick && p.FifaAction != OutcomeBadKick {
			return fmt.Errorf("%w: unknown FIFA action %q", ErrInvalidPlay, p.FifaAction)
		}
	}
	switch p.Redemption {
	case RedemptionNone, RedemptionSuccess, RedemptionFailed:
	default:
		return fmt.Errorf("%w: unknown redemption action %q", ErrInvalidPlay, p.Redemption)
	}
	return nil
}

// defenders resolves the defending slots for the play.
func (p Play) defenders() []int {
	if p.DefendingPlayer == NoPlayer {
		return nil
	}
	if p.DefendingPlayer == TeamDefense {
		team := models.OpposingTeam(models.TeamForSlot(p.ThrowingPlayer))
		slots := models.TeamSlots(team)
		return []int{slots[0], slots[1]}
	}
	return []int{p.DefendingPlayer}
}
