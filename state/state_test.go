package state

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/dietracker/matchserver/game"
)

// MockState is a test double for the State interface.
// It helps us track which methods have been called.
type MockState struct {
	ID            string
	OnEnterCalled bool
	OnExitCalled  bool
}

func (m *MockState) OnEnter() {
	m.OnEnterCalled = true
}

func (m *MockState) OnExit() {
	m.OnExitCalled = true
}

func (m *MockState) GetID() string {
	return m.ID
}

func (m *MockState) HandleAction(player Player, actionData []byte) error {
	return nil
}

// reset clears the call tracking flags.
func (m *MockState) reset() {
	m.OnEnterCalled = false
	m.OnExitCalled = false
}

// MockMatchContext is a test double for the MatchContext interface.
type MockMatchContext struct {
	StartCalled  bool
	FinishCalled bool
	AppliedPlays []game.Play
	StartErr     error
	ApplyErr     error
}

func (m *MockMatchContext) GetRoomCode() string                   { return "TEST01" }
func (m *MockMatchContext) GetStatus() string                     { return "" }
func (m *MockMatchContext) ChangeState(newState State) error      { return nil }
func (m *MockMatchContext) Broadcast(msgID uint16, d []byte) error { return nil }

func (m *MockMatchContext) StartMatch() error {
	m.StartCalled = true
	return m.StartErr
}

func (m *MockMatchContext) ApplyPlay(play game.Play) (*game.Notice, error) {
	m.AppliedPlays = append(m.AppliedPlays, play)
	return nil, m.ApplyErr
}

func (m *MockMatchContext) ForceFinish() int {
	m.FinishCalled = true
	return 1
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return data
}

func TestStateMachine_InitialState(t *testing.T) {
	initialState := &MockState{ID: "initial"}
	sm := NewBaseStateMachine(initialState)

	if !initialState.OnEnterCalled {
		t.Error("Expected OnEnter to be called on the initial state")
	}

	if sm.GetCurrentState() != initialState {
		t.Error("GetCurrentState should return the initial state")
	}
}

func TestStateMachine_ChangeState(t *testing.T) {
	initialState := &MockState{ID: "initial"}
	nextState := &MockState{ID: "next"}

	sm := NewBaseStateMachine(initialState)
	initialState.reset() // Reset after initialization

	err := sm.ChangeState(nextState)
	if err != nil {
		t.Fatalf("ChangeState should not return an error, but got: %v", err)
	}

	if !initialState.OnExitCalled {
		t.Error("Expected OnExit to be called on the old state")
	}

	if !nextState.OnEnterCalled {
		t.Error("Expected OnEnter to be called on the new state")
	}

	if sm.GetCurrentState() != nextState {
		t.Error("GetCurrentState should return the new state")
	}
}

func TestStateMachine_AddAndUseTransition(t *testing.T) {
	stateA := &MockState{ID: "A"}
	stateB := &MockState{ID: "B"}
	stateC := &MockState{ID: "C"}

	sm := NewBaseStateMachine(stateA)

	// Add a valid transition from A to B
	err := sm.AddTransition(stateA, stateB, func() bool { return true })
	if err != nil {
		t.Fatalf("AddTransition failed: %v", err)
	}

	// Add a blocked transition from B to C
	err = sm.AddTransition(stateB, stateC, func() bool { return false })
	if err != nil {
		t.Fatalf("AddTransition failed: %v", err)
	}

	// --- Test valid transition ---
	stateA.reset()
	err = sm.ChangeState(stateB)
	if err != nil {
		t.Errorf("Expected transition from A to B to be allowed, but got error: %v", err)
	}
	if sm.GetCurrentState().GetID() != "B" {
		t.Errorf("Expected current state to be B, but got %s", sm.GetCurrentState().GetID())
	}

	// --- Test blocked transition ---
	stateB.reset()
	err = sm.ChangeState(stateC)
	if err != ErrTransitionNotAllowed {
		t.Errorf("Expected ErrTransitionNotAllowed, but got: %v", err)
	}
	if sm.GetCurrentState().GetID() != "B" {
		t.Errorf("Expected current state to remain B after a blocked transition, but got %s", sm.GetCurrentState().GetID())
	}
	if stateB.OnExitCalled {
		t.Error("OnExit should not be called on the current state if transition is blocked")
	}
	if stateC.OnEnterCalled {
		t.Error("OnEnter should not be called on the new state if transition is blocked")
	}
}

func TestWaitingState_StartAction(t *testing.T) {
	ctx := &MockMatchContext{}
	waiting := NewWaitingState(ctx)

	data := mustMarshal(t, Action{Type: ActionStart})
	if err := waiting.HandleAction(nil, data); err != nil {
		t.Fatalf("start action should succeed, got: %v", err)
	}
	if !ctx.StartCalled {
		t.Error("Expected StartMatch to be called")
	}
}

func TestWaitingState_RejectsPlay(t *testing.T) {
	ctx := &MockMatchContext{}
	waiting := NewWaitingState(ctx)

	play := game.Play{ThrowingPlayer: 1, ThrowResult: game.OutcomeHit}
	data := mustMarshal(t, Action{Type: ActionPlay, Play: &play})

	err := waiting.HandleAction(nil, data)
	if !errors.Is(err, ErrMatchNotStarted) {
		t.Errorf("Expected ErrMatchNotStarted, got: %v", err)
	}
	if len(ctx.AppliedPlays) != 0 {
		t.Error("No play should reach the engine before the match starts")
	}
}

func TestActiveState_Actions(t *testing.T) {
	ctx := &MockMatchContext{}
	active := NewActiveState(ctx)

	// A repeated start is a no-op, not an error.
	if err := active.HandleAction(nil, mustMarshal(t, Action{Type: ActionStart})); err != nil {
		t.Errorf("repeated start should be a no-op, got: %v", err)
	}

	play := game.Play{ThrowingPlayer: 2, ThrowResult: game.OutcomeSink}
	data := mustMarshal(t, Action{Type: ActionPlay, Play: &play})
	if err := active.HandleAction(nil, data); err != nil {
		t.Fatalf("play action should succeed, got: %v", err)
	}
	if len(ctx.AppliedPlays) != 1 || ctx.AppliedPlays[0].ThrowingPlayer != 2 {
		t.Errorf("Expected the play to be forwarded to the engine, got %+v", ctx.AppliedPlays)
	}

	if err := active.HandleAction(nil, mustMarshal(t, Action{Type: ActionFinish})); err != nil {
		t.Fatalf("finish action should succeed, got: %v", err)
	}
	if !ctx.FinishCalled {
		t.Error("Expected ForceFinish to be called")
	}
}

func TestActiveState_MissingPlayPayload(t *testing.T) {
	ctx := &MockMatchContext{}
	active := NewActiveState(ctx)

	err := active.HandleAction(nil, mustMarshal(t, Action{Type: ActionPlay}))
	if !errors.Is(err, game.ErrInvalidPlay) {
		t.Errorf("Expected ErrInvalidPlay for a play action without payload, got: %v", err)
	}
}

func TestFinishedState_RejectsEverything(t *testing.T) {
	ctx := &MockMatchContext{}
	finished := NewFinishedState(ctx)

	for _, actionType := range []string{ActionStart, ActionPlay, ActionFinish} {
		err := finished.HandleAction(nil, mustMarshal(t, Action{Type: actionType}))
		if !errors.Is(err, ErrMatchFinished) {
			t.Errorf("Expected ErrMatchFinished for %q, got: %v", actionType, err)
		}
	}
}
