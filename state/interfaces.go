// state/interfaces.go
package state

import (
	"github.com/dietracker/matchserver/game"
)

// Player defines the minimal interface for a connected participant that a
// state needs to interact with.
type Player interface {
	GetID() string
}

// MatchContext defines the interface a live match must implement to be
// driven by the lifecycle state machine. This breaks the import cycle
// between match and state.
type MatchContext interface {
	GetRoomCode() string
	GetStatus() string
	ChangeState(newState State) error
	Broadcast(msgID uint16, data []byte) error

	// StartMatch stamps the start time and moves the match to active.
	StartMatch() error
	// ApplyPlay runs the scoring engine against the shared aggregate and
	// syncs the result to the store and every connected client.
	ApplyPlay(play game.Play) (*game.Notice, error)
	// ForceFinish settles the match immediately and returns the winning
	// team, 0 for a draw.
	ForceFinish() int
}
