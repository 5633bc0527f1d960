package game

import (
	"errors"
	"testing"

	"github.com/dietracker/matchserver/models"
)

func newTestMatch() *models.LiveMatch {
	return models.NewLiveMatch("match-1", "ABC123", "host-1", models.DefaultMatchSetup())
}

func submit(t *testing.T, m *models.LiveMatch, play Play) *models.LiveMatch {
	t.Helper()
	next, _, err := SubmitPlay(m, play)
	if err != nil {
		t.Fatalf("SubmitPlay failed: %v", err)
	}
	return next
}

func TestSubmitPlay_ScoreValues(t *testing.T) {
	cases := []struct {
		result Outcome
		points int
	}{
		{OutcomeHit, 1},
		{OutcomeKnicker, 1},
		{OutcomeGoal, 2},
		{OutcomeDink, 2},
		{OutcomeSink, 3},
		{OutcomeTableDie, 0},
		{OutcomeShort, 0},
	}

	for _, tc := range cases {
		m := newTestMatch()
		next := submit(t, m, Play{ThrowingPlayer: 1, ThrowResult: tc.result})
		if got := next.PlayerStats[1].Score; got != tc.points {
			t.Errorf("%s: expected score %d, got %d", tc.result, tc.points, got)
		}
		if next.PlayerStats[1].Throws != 1 {
			t.Errorf("%s: expected 1 throw, got %d", tc.result, next.PlayerStats[1].Throws)
		}
	}
}

func TestSubmitPlay_SinkPointsConfigurable(t *testing.T) {
	setup := models.DefaultMatchSetup()
	setup.SinkPoints = 5
	m := models.NewLiveMatch("match-1", "ABC123", "host-1", setup)

	next := submit(t, m, Play{ThrowingPlayer: 3, ThrowResult: OutcomeSink})
	if got := next.PlayerStats[3].Score; got != 5 {
		t.Errorf("expected sink to score 5, got %d", got)
	}
}

func TestSubmitPlay_DoesNotMutateInput(t *testing.T) {
	m := newTestMatch()
	before := m.PlayerStats[1]

	submit(t, m, Play{ThrowingPlayer: 1, ThrowResult: OutcomeSink})

	if m.PlayerStats[1] != before {
		t.Error("SubmitPlay must not mutate the input match")
	}
	if m.Version != 0 {
		t.Errorf("input match version changed to %d", m.Version)
	}
}

func TestSubmitPlay_InvalidPlayLeavesStateUntouched(t *testing.T) {
	m := newTestMatch()

	_, _, err := SubmitPlay(m, Play{ThrowingPlayer: 1})
	if !errors.Is(err, ErrInvalidPlay) {
		t.Fatalf("expected ErrInvalidPlay, got: %v", err)
	}

	_, _, err = SubmitPlay(m, Play{ThrowingPlayer: 7, ThrowResult: OutcomeHit})
	if !errors.Is(err, ErrInvalidPlay) {
		t.Fatalf("expected ErrInvalidPlay for out of range slot, got: %v", err)
	}

	_, _, err = SubmitPlay(m, Play{ThrowingPlayer: 1, ThrowResult: OutcomeHit, DefenseResult: OutcomeCatch})
	if !errors.Is(err, ErrInvalidPlay) {
		t.Fatalf("expected ErrInvalidPlay for defense result without defender, got: %v", err)
	}
}

func TestSubmitPlay_HitStreakAndOnFire(t *testing.T) {
	m := newTestMatch()

	for i := 0; i < 3; i++ {
		m = submit(t, m, Play{ThrowingPlayer: 1, ThrowResult: OutcomeHit})
	}

	stats := m.PlayerStats[1]
	if stats.HitStreak != 3 {
		t.Errorf("expected hit streak 3, got %d", stats.HitStreak)
	}
	if !stats.CurrentlyOnFire {
		t.Error("expected player to be on fire after three straight hits")
	}
	if stats.OnFireCount != 0 {
		t.Errorf("on-fire throw count should still be 0 at activation, got %d", stats.OnFireCount)
	}

	// The next throw is made while on fire, hit or not.
	m = submit(t, m, Play{ThrowingPlayer: 1, ThrowResult: OutcomeShort})
	stats = m.PlayerStats[1]
	if stats.OnFireCount != 1 {
		t.Errorf("expected on-fire throw count 1, got %d", stats.OnFireCount)
	}
	if stats.HitStreak != 0 {
		t.Errorf("a miss must reset the streak, got %d", stats.HitStreak)
	}
	if stats.CurrentlyOnFire {
		t.Error("a miss must end the fire")
	}
}

func TestSubmitPlay_HitsNeverExceedThrows(t *testing.T) {
	m := newTestMatch()
	results := []Outcome{
		OutcomeHit, OutcomeKnicker, OutcomeGoal, OutcomeDink, OutcomeSink,
		OutcomeShort, OutcomeLong, OutcomeSide, OutcomeHeight,
		OutcomeTableDie, OutcomeLine,
	}
	for _, r := range results {
		m = submit(t, m, Play{ThrowingPlayer: 2, ThrowResult: r})
	}

	stats := m.PlayerStats[2]
	if stats.Throws != len(results) {
		t.Errorf("expected %d throws, got %d", len(results), stats.Throws)
	}
	if stats.Hits > stats.Throws {
		t.Errorf("hits %d exceed throws %d", stats.Hits, stats.Throws)
	}
	if stats.Hits != 5 {
		t.Errorf("expected 5 hits, got %d", stats.Hits)
	}
}

func TestSubmitPlay_HeightCountsAsThrowerBlunder(t *testing.T) {
	m := newTestMatch()
	m = submit(t, m, Play{ThrowingPlayer: 1, ThrowResult: OutcomeHeight})

	stats := m.PlayerStats[1]
	if stats.Blunders != 1 {
		t.Errorf("expected a height throw to count as a blunder, got %d", stats.Blunders)
	}
	if stats.Height != 1 {
		t.Errorf("expected the height tally to increment, got %d", stats.Height)
	}
}

func TestSubmitPlay_CatchSuppressesScore(t *testing.T) {
	m := newTestMatch()
	m = submit(t, m, Play{
		ThrowingPlayer:  1,
		ThrowResult:     OutcomeGoal,
		DefendingPlayer: 3,
		DefenseResult:   OutcomeCatch,
	})

	if got := m.PlayerStats[1].Score; got != 0 {
		t.Errorf("caught throw must not score, got %d", got)
	}
	if got := m.PlayerStats[3].Catches; got != 1 {
		t.Errorf("expected 1 catch for the defender, got %d", got)
	}
	// The throw still counts as a hit for the thrower's accuracy.
	if got := m.PlayerStats[1].Hits; got != 1 {
		t.Errorf("caught hit still counts toward accuracy, got %d hits", got)
	}
}

func TestSubmitPlay_CatchPlusAura(t *testing.T) {
	m := newTestMatch()
	m = submit(t, m, Play{
		ThrowingPlayer:  1,
		ThrowResult:     OutcomeHit,
		DefendingPlayer: 4,
		DefenseResult:   OutcomeCatchPlusAura,
	})

	defender := m.PlayerStats[4]
	if defender.Aura != 1 {
		t.Errorf("expected 1 aura, got %d", defender.Aura)
	}
	if defender.Catches != 1 || defender.CatchPlusAura != 1 {
		t.Errorf("expected catch tallies 1/1, got %d/%d", defender.Catches, defender.CatchPlusAura)
	}
	if m.PlayerStats[1].Score != 0 {
		t.Error("catch with aura must still suppress the score")
	}
}

func TestSubmitPlay_FailedDefenseIsBlunder(t *testing.T) {
	m := newTestMatch()
	m = submit(t, m, Play{
		ThrowingPlayer:  1,
		ThrowResult:     OutcomeDink,
		DefendingPlayer: 3,
		DefenseResult:   OutcomeDrop,
	})

	if got := m.PlayerStats[1].Score; got != 2 {
		t.Errorf("dropped dink should score 2, got %d", got)
	}
	defender := m.PlayerStats[3]
	if defender.Blunders != 1 || defender.Drop != 1 {
		t.Errorf("expected blunder/drop tallies 1/1, got %d/%d", defender.Blunders, defender.Drop)
	}
}

func TestSubmitPlay_TeamDefenseHitsBothDefenders(t *testing.T) {
	m := newTestMatch()
	m = submit(t, m, Play{
		ThrowingPlayer:  1,
		ThrowResult:     OutcomeSink,
		DefendingPlayer: TeamDefense,
		DefenseResult:   OutcomeMiss,
	})

	for _, slot := range []int{3, 4} {
		stats := m.PlayerStats[slot]
		if stats.Blunders != 1 || stats.Miss != 1 {
			t.Errorf("slot %d: expected blunder/miss 1/1, got %d/%d", slot, stats.Blunders, stats.Miss)
		}
	}
	if got := m.PlayerStats[1].Score; got != 3 {
		t.Errorf("missed sink should score 3, got %d", got)
	}
}

func TestSubmitPlay_RedemptionSuccess(t *testing.T) {
	m := newTestMatch()
	m = submit(t, m, Play{
		ThrowingPlayer: 1,
		ThrowResult:    OutcomeSink,
		Redemption:     RedemptionSuccess,
	})

	if got := m.PlayerStats[1].Score; got != 0 {
		t.Errorf("redeemed throw must not score, got %d", got)
	}
	// The opposing penalty counter drops by one and may go negative.
	if got := m.TeamPenalties[2]; got != -1 {
		t.Errorf("expected opposing penalties -1, got %d", got)
	}
	if got := m.TeamPenalties[1]; got != 0 {
		t.Errorf("thrower's own penalties must be untouched, got %d", got)
	}
	// A negative penalty raises the opposing team's effective score.
	if got := TeamScore(m, 2); got != 1 {
		t.Errorf("expected opposing team score 1, got %d", got)
	}
}

func TestSubmitPlay_RedemptionFailedScoresNormally(t *testing.T) {
	m := newTestMatch()
	m = submit(t, m, Play{
		ThrowingPlayer: 3,
		ThrowResult:    OutcomeGoal,
		Redemption:     RedemptionFailed,
	})

	if got := m.PlayerStats[3].Score; got != 2 {
		t.Errorf("failed redemption must not suppress the score, got %d", got)
	}
	if got := m.TeamPenalties[1]; got != 0 {
		t.Errorf("failed redemption must not touch penalties, got %d", got)
	}
}

func TestSubmitPlay_SelfSinkIsPureNotice(t *testing.T) {
	m := newTestMatch()
	next, notice, err := SubmitPlay(m, Play{ThrowingPlayer: 2, ThrowResult: OutcomeSelfSink})
	if err != nil {
		t.Fatalf("SubmitPlay failed: %v", err)
	}
	if notice == nil {
		t.Fatal("self sink must produce a notice")
	}
	if notice.Slot != 2 {
		t.Errorf("notice should address slot 2, got %d", notice.Slot)
	}
	if next != m {
		t.Error("self sink must return the match unchanged")
	}
	if next.PlayerStats[2].Throws != 0 {
		t.Error("self sink must not count as a throw")
	}
	if next.Version != 0 {
		t.Errorf("self sink must not bump the version, got %d", next.Version)
	}
}

func TestSubmitPlay_FifaSave(t *testing.T) {
	m := newTestMatch()
	m = submit(t, m, Play{
		ThrowingPlayer:  1,
		ThrowResult:     OutcomeShort,
		DefendingPlayer: TeamDefense,
		DefenseResult:   OutcomeCatch,
		FifaKicker:      3,
		FifaAction:      OutcomeGoodKick,
	})

	kicker := m.PlayerStats[3]
	if kicker.FifaAttempts != 1 || kicker.FifaSuccess != 1 || kicker.GoodKick != 1 {
		t.Errorf("expected FIFA tallies 1/1/1, got %d/%d/%d",
			kicker.FifaAttempts, kicker.FifaSuccess, kicker.GoodKick)
	}
	// The save rewards each catching defender a point; the kicker is slot 3
	// so both defending slots gain one.
	if m.PlayerStats[3].Score != 1 || m.PlayerStats[4].Score != 1 {
		t.Errorf("expected both defenders to score 1, got %d/%d",
			m.PlayerStats[3].Score, m.PlayerStats[4].Score)
	}
	if m.PlayerStats[1].Score != 0 {
		t.Error("the caught throw itself must not score")
	}
}

func TestSubmitPlay_FifaStandardKickScores(t *testing.T) {
	m := newTestMatch()
	m = submit(t, m, Play{
		ThrowingPlayer: 1,
		ThrowResult:    OutcomeTableDie,
		FifaKicker:     4,
		FifaAction:     OutcomeGoodKick,
	})

	kicker := m.PlayerStats[4]
	if kicker.Score != 1 {
		t.Errorf("standard phase good kick should score 1, got %d", kicker.Score)
	}
	if kicker.FifaAttempts != 1 {
		t.Errorf("expected 1 FIFA attempt, got %d", kicker.FifaAttempts)
	}
}

func TestSubmitPlay_FifaMatchPointKickPenalizes(t *testing.T) {
	m := newTestMatch()
	// Put team 1 on match point: 10 points with a limit of 11.
	stats := m.PlayerStats[1]
	stats.Score = 10
	m.PlayerStats[1] = stats

	m = submit(t, m, Play{
		ThrowingPlayer: 3,
		ThrowResult:    OutcomeTableDie,
		FifaKicker:     4,
		FifaAction:     OutcomeGoodKick,
	})

	if got := m.PlayerStats[4].Score; got != 0 {
		t.Errorf("match point kick must not score directly, got %d", got)
	}
	if got := m.TeamPenalties[1]; got != 1 {
		t.Errorf("expected opposing penalties 1, got %d", got)
	}
}

func TestSubmitPlay_FifaOvertimeOnlyTrailingScores(t *testing.T) {
	m := newTestMatch()
	// Both teams past the limit: 12-11, team 1 ahead.
	s1 := m.PlayerStats[1]
	s1.Score = 12
	m.PlayerStats[1] = s1
	s3 := m.PlayerStats[3]
	s3.Score = 11
	m.PlayerStats[3] = s3

	// Leading team kicks: no score.
	next := submit(t, m, Play{
		ThrowingPlayer: 1,
		ThrowResult:    OutcomeTableDie,
		FifaKicker:     2,
		FifaAction:     OutcomeGoodKick,
	})
	if got := next.PlayerStats[2].Score; got != 0 {
		t.Errorf("leading team overtime kick must not score, got %d", got)
	}

	// Trailing team kicks: scores.
	next = submit(t, m, Play{
		ThrowingPlayer: 3,
		ThrowResult:    OutcomeTableDie,
		FifaKicker:     4,
		FifaAction:     OutcomeBadKick,
	})
	if got := next.PlayerStats[4].Score; got != 1 {
		t.Errorf("trailing team overtime kick should score 1, got %d", got)
	}
}

func TestSubmitPlay_EndToEndStandardGame(t *testing.T) {
	setup := models.DefaultMatchSetup()
	setup.WinByTwo = false
	m := models.NewLiveMatch("match-1", "ABC123", "host-1", setup)

	for i := 0; i < 5; i++ {
		m = submit(t, m, Play{ThrowingPlayer: 1, ThrowResult: OutcomeSink})
	}

	if got := TeamScore(m, 1); got != 15 {
		t.Errorf("expected team score 15 after five sinks, got %d", got)
	}
	if got := Winner(m); got != 1 {
		t.Errorf("expected team 1 to have won, got %d", got)
	}
	if got := m.PlayerStats[1].Sink; got != 5 {
		t.Errorf("expected 5 sink tallies, got %d", got)
	}
	if got := m.Version; got != 5 {
		t.Errorf("expected version 5 after five plays, got %d", got)
	}
}

func TestWinner_WinByTwo(t *testing.T) {
	m := newTestMatch()

	set := func(slot, score int) {
		s := m.PlayerStats[slot]
		s.Score = score
		m.PlayerStats[slot] = s
	}

	set(1, 11)
	set(3, 10)
	if got := Winner(m); got != 0 {
		t.Errorf("11-10 with win-by-two is not a win, got %d", got)
	}

	set(1, 12)
	if got := Winner(m); got != 1 {
		t.Errorf("12-10 should be a win for team 1, got %d", got)
	}

	// Penalties count against the effective score.
	m.TeamPenalties[1] = 1
	if got := Winner(m); got != 0 {
		t.Errorf("a penalty should void the two point lead, got %d", got)
	}
}
