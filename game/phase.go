// game/phase.go
package game

// Phase 比赛阶段，决定FIFA与加时的计分规则
type Phase string

const (
	PhaseStandard   Phase = "standard"
	PhaseMatchPoint Phase = "matchPoint"
	PhaseAdvantage  Phase = "advantage"
	PhaseOvertime   Phase = "overtime"
)

// ClassifyPhase derives the match phase from the two current team scores.
// Pure function, recomputed before every play.
func ClassifyPhase(team1Score, team2Score, gameScoreLimit int, winByTwo bool) Phase {
	if !winByTwo {
		return PhaseStandard
	}

	// Overtime: both teams at or above the limit.
	if team1Score >= gameScoreLimit && team2Score >= gameScoreLimit {
		return PhaseOvertime
	}

	// Advantage: a team at or above the limit holds exactly a one point lead.
	if (team1Score >= gameScoreLimit && team2Score == team1Score-1) ||
		(team2Score >= gameScoreLimit && team1Score == team2Score-1) {
		return PhaseAdvantage
	}

	// Match point: a team sits one short of the limit while the other trails.
	if (team1Score == gameScoreLimit-1 && team2Score < gameScoreLimit-1) ||
		(team2Score == gameScoreLimit-1 && team1Score < gameScoreLimit-1) {
		return PhaseMatchPoint
	}

	return PhaseStandard
}
