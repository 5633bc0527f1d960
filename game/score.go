// game/score.go
package game

import (
	"github.com/dietracker/matchserver/models"
)

// TeamScore sums a team's player scores and subtracts its penalty counter.
func TeamScore(m *models.LiveMatch, team int) int {
	slots := models.TeamSlots(team)
	total := 0
	for _, slot := range slots {
		total += m.PlayerStats[slot].Score
	}
	return total - m.TeamPenalties[team]
}

// Winner returns the team that has met the win condition, or 0 when the
// match is still open. With win-by-two enabled a two point lead is required
// on top of the score limit.
func Winner(m *models.LiveMatch) int {
	t1 := TeamScore(m, 1)
	t2 := TeamScore(m, 2)
	limit := m.MatchSetup.GameScoreLimit

	if m.MatchSetup.WinByTwo {
		if t1 >= limit && t1-t2 >= 2 {
			return 1
		}
		if t2 >= limit && t2-t1 >= 2 {
			return 2
		}
		return 0
	}
	if t1 >= limit {
		return 1
	}
	if t2 >= limit {
		return 2
	}
	return 0
}
