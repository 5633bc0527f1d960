// rating/rating.go
package rating

import (
	"math"

	"github.com/dietracker/matchserver/models"
)

// Award 成就称号
type Award string

const (
	AwardIsaacNewton  Award = "Isaac Newton"  // hit accuracy >= 80%
	AwardWayneGretzky Award = "Wayne Gretzky" // 2+ goals
	AwardIronDome     Award = "Iron Dome"     // catch rate >= 80%
	AwardIncineroar   Award = "Incineroar"    // >70% of throws made while on fire
	AwardYusufDikec   Award = "Yusuf Dikeç"   // special throws >15% of throws
	AwardRonaldo      Award = "Ronaldo"       // FIFA success rate >= 70%
	AwardBorderPatrol Award = "Border Patrol" // line throws >15% of throws
	AwardDennisRodman Award = "Dennis Rodman" // aura >= 8
	AwardLeKing       Award = "LeKing"        // unique top raw rating of the match
)

// Rate weights: hit and catch rates carry most of the rating, FIFA
// conversion the remainder.
const (
	averageWeight = 0.85
	fifaWeight    = 0.10
)

// HitRate returns hits over throws, zero when the player has not thrown.
func HitRate(p models.PlayerStats) float64 {
	if p.Throws == 0 {
		return 0
	}
	return float64(p.Hits) / float64(p.Throws)
}

// CatchRate returns catches over all defensive plays (catches plus
// blunders), zero when the player has not defended.
func CatchRate(p models.PlayerStats) float64 {
	plays := p.Catches + p.Blunders
	if plays == 0 {
		return 0
	}
	return float64(p.Catches) / float64(plays)
}

// FifaRate returns FIFA conversions over attempts, zero without attempts.
func FifaRate(p models.PlayerStats) float64 {
	if p.FifaAttempts == 0 {
		return 0
	}
	return float64(p.FifaSuccess) / float64(p.FifaAttempts)
}

// RawRating computes the 0-100 base performance rating before awards.
func RawRating(p models.PlayerStats) float64 {
	averageRate := (HitRate(p) + CatchRate(p)) / 2
	return ((averageWeight * averageRate) + (fifaWeight * FifaRate(p))) /
		(averageWeight + fifaWeight) * 100
}

// Rate computes the final rating: the raw rating plus one point per
// unlocked award, capped at 100.
func Rate(p models.PlayerStats, all map[int]models.PlayerStats) float64 {
	return math.Min(100, RawRating(p)+float64(len(Awards(p, all))))
}

// PlayerRating bundles one player's final rating and unlocked awards, as
// attached to match-end broadcasts and saved-match replies.
type PlayerRating struct {
	Rating float64 `json:"rating"`
	Awards []Award `json:"awards"`
}

// RateAll rates every slot of a finished match.
func RateAll(all map[int]models.PlayerStats) map[int]PlayerRating {
	ratings := make(map[int]PlayerRating, len(all))
	for slot, p := range all {
		ratings[slot] = PlayerRating{
			Rating: Rate(p, all),
			Awards: Awards(p, all),
		}
	}
	return ratings
}

// Awards evaluates every award predicate against the player's statistics.
// Predicates with a rate denominator require at least one qualifying play.
// LeKing compares against every player in the match and only unlocks for a
// unique leader.
func Awards(p models.PlayerStats, all map[int]models.PlayerStats) []Award {
	var awards []Award

	if p.Throws > 0 && HitRate(p) >= 0.80 {
		awards = append(awards, AwardIsaacNewton)
	}
	if p.Goals >= 2 {
		awards = append(awards, AwardWayneGretzky)
	}
	if p.Catches+p.Blunders > 0 && CatchRate(p) >= 0.80 {
		awards = append(awards, AwardIronDome)
	}
	if p.Throws > 0 && float64(p.OnFireCount)/float64(p.Throws) > 0.70 {
		awards = append(awards, AwardIncineroar)
	}
	if p.Throws > 0 && float64(p.SpecialThrows)/float64(p.Throws) > 0.15 {
		awards = append(awards, AwardYusufDikec)
	}
	if p.FifaAttempts > 0 && FifaRate(p) >= 0.70 {
		awards = append(awards, AwardRonaldo)
	}
	if p.Throws > 0 && float64(p.LineThrows)/float64(p.Throws) > 0.15 {
		awards = append(awards, AwardBorderPatrol)
	}
	if p.Aura >= 8 {
		awards = append(awards, AwardDennisRodman)
	}
	if leadsMatch(p, all) {
		awards = append(awards, AwardLeKing)
	}

	return awards
}

// leadsMatch reports whether the player's raw rating is the unique maximum
// among all players in the match.
func leadsMatch(p models.PlayerStats, all map[int]models.PlayerStats) bool {
	if len(all) == 0 || p.Throws == 0 {
		return false
	}
	own := RawRating(p)
	max := math.Inf(-1)
	leaders := 0
	for _, other := range all {
		r := RawRating(other)
		if r > max {
			max = r
			leaders = 1
		} else if r == max {
			leaders++
		}
	}
	return own == max && leaders == 1
}
