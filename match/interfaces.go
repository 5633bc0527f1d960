package match

// Broadcaster defines the interface for pushing packets to every session
// attached to a match room. Defined here to break the import cycle between
// match and broadcast.
type Broadcaster interface {
	BroadcastToMatch(roomCode string, msgID uint16, data []byte) error
}
