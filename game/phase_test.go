package game

import "testing"

func TestClassifyPhase_Standard(t *testing.T) {
	if got := ClassifyPhase(5, 3, 11, true); got != PhaseStandard {
		t.Errorf("5-3 early game should be standard, got %s", got)
	}
	if got := ClassifyPhase(0, 0, 11, true); got != PhaseStandard {
		t.Errorf("0-0 should be standard, got %s", got)
	}
	// Only one team past the limit with a big lead: none of the special
	// phase conditions hold.
	if got := ClassifyPhase(15, 0, 11, true); got != PhaseStandard {
		t.Errorf("15-0 runaway should be standard, got %s", got)
	}
}

func TestClassifyPhase_MatchPoint(t *testing.T) {
	if got := ClassifyPhase(10, 9, 11, true); got != PhaseMatchPoint {
		t.Errorf("10-9 should be match point, got %s", got)
	}
	if got := ClassifyPhase(4, 10, 11, true); got != PhaseMatchPoint {
		t.Errorf("4-10 should be match point, got %s", got)
	}
	// Both teams one short is not match point for either.
	if got := ClassifyPhase(10, 10, 11, true); got != PhaseStandard {
		t.Errorf("10-10 should be standard, got %s", got)
	}
}

func TestClassifyPhase_Advantage(t *testing.T) {
	if got := ClassifyPhase(11, 10, 11, true); got != PhaseAdvantage {
		t.Errorf("11-10 should be advantage, got %s", got)
	}
	if got := ClassifyPhase(10, 11, 11, true); got != PhaseAdvantage {
		t.Errorf("10-11 should be advantage, got %s", got)
	}
}

func TestClassifyPhase_Overtime(t *testing.T) {
	if got := ClassifyPhase(11, 11, 11, true); got != PhaseOvertime {
		t.Errorf("11-11 should be overtime, got %s", got)
	}
	if got := ClassifyPhase(15, 14, 11, true); got != PhaseOvertime {
		t.Errorf("15-14 should be overtime, got %s", got)
	}
}

func TestClassifyPhase_WinByTwoDisabled(t *testing.T) {
	if got := ClassifyPhase(10, 9, 11, false); got != PhaseStandard {
		t.Errorf("without win-by-two every score is standard, got %s", got)
	}
	if got := ClassifyPhase(11, 11, 11, false); got != PhaseStandard {
		t.Errorf("without win-by-two even level scores are standard, got %s", got)
	}
}
