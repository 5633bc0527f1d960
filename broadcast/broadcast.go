// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/dietracker/matchserver/match"
	"github.com/dietracker/matchserver/session"
)

var (
	ErrMatchNotFound = errors.New("match not found")
)

// 广播接口
type Broadcaster interface {
	BroadcastToMatch(roomCode string, msgID uint16, data []byte) error
	BroadcastToAll(msgID uint16, data []byte) error
	BroadcastToUsers(userIDs []string, msgID uint16, data []byte) error
}

// MatchBroadcaster fans packets out to the sessions attached to a match
// room, or to sessions resolved by user id.
type MatchBroadcaster struct {
	matchManager   *match.Manager
	sessionManager *session.Manager
}

func NewMatchBroadcaster(matchManager *match.Manager, sessionManager *session.Manager) *MatchBroadcaster {
	return &MatchBroadcaster{
		matchManager:   matchManager,
		sessionManager: sessionManager,
	}
}

func (b *MatchBroadcaster) BroadcastToMatch(roomCode string, msgID uint16, data []byte) error {
	mt, exists := b.matchManager.GetMatch(roomCode)
	if !exists {
		return ErrMatchNotFound
	}

	for _, s := range mt.GetSessions() {
		if err := s.Send(msgID, data); err != nil {
			// A dead connection is cleaned up by its read loop.
			continue
		}
	}
	return nil
}

func (b *MatchBroadcaster) BroadcastToAll(msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.All() {
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
	return nil
}

func (b *MatchBroadcaster) BroadcastToUsers(userIDs []string, msgID uint16, data []byte) error {
	for _, userID := range userIDs {
		for _, s := range b.sessionManager.GetByUserID(userID) {
			if err := s.Send(msgID, data); err != nil {
				continue
			}
		}
	}
	return nil
}
