package state

import (
	"encoding/json"
	"fmt"

	"github.com/dietracker/matchserver/game"
	"github.com/dietracker/matchserver/logger"
)

// Action represents a player action envelope unmarshalled from a packet.
type Action struct {
	Type string     `json:"type"`
	Play *game.Play `json:"play,omitempty"`
}

// NewWaitingState creates the pre-start lobby state.
func NewWaitingState(match MatchContext) *WaitingState {
	return &WaitingState{
		MatchStateBase: MatchStateBase{
			ID:    IDWaiting,
			Match: match,
		},
	}
}

// 等待状态：比赛尚未开始，只接受开始动作
type WaitingState struct {
	MatchStateBase
}

func (s *WaitingState) HandleAction(player Player, actionData []byte) error {
	var action Action
	if err := json.Unmarshal(actionData, &action); err != nil {
		return fmt.Errorf("failed to unmarshal action data: %w", err)
	}

	if action.Type == ActionStart {
		return s.Match.StartMatch()
	}
	return ErrMatchNotStarted
}

// NewActiveState creates the in-progress state.
func NewActiveState(match MatchContext) *ActiveState {
	return &ActiveState{
		MatchStateBase: MatchStateBase{
			ID:    IDActive,
			Match: match,
		},
	}
}

// 进行中状态：接受出手提交与主动结束
type ActiveState struct {
	MatchStateBase
}

func (s *ActiveState) OnEnter() {
	logger.Log.Infof("Match %s is now active", s.Match.GetRoomCode())
}

func (s *ActiveState) HandleAction(player Player, actionData []byte) error {
	var action Action
	if err := json.Unmarshal(actionData, &action); err != nil {
		return fmt.Errorf("failed to unmarshal action data: %w", err)
	}

	switch action.Type {
	case ActionStart:
		// Already started, nothing to do.
		return nil
	case ActionPlay:
		if action.Play == nil {
			return fmt.Errorf("%w: play payload missing", game.ErrInvalidPlay)
		}
		_, err := s.Match.ApplyPlay(*action.Play)
		return err
	case ActionFinish:
		s.Match.ForceFinish()
		return nil
	default:
		return fmt.Errorf("unknown action type %q", action.Type)
	}
}

// NewFinishedState creates the terminal state.
func NewFinishedState(match MatchContext) *FinishedState {
	return &FinishedState{
		MatchStateBase: MatchStateBase{
			ID:    IDFinished,
			Match: match,
		},
	}
}

// 已结束状态：拒绝一切动作
type FinishedState struct {
	MatchStateBase
}

func (s *FinishedState) OnEnter() {
	logger.Log.Infof("Match %s finished", s.Match.GetRoomCode())
}

func (s *FinishedState) HandleAction(player Player, actionData []byte) error {
	return ErrMatchFinished
}
