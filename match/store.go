package match

import (
	"github.com/dietracker/matchserver/models"
)

// Store is the slice of the persistence layer the coordinator needs: full
// row overwrites of the live session, lookup by room code, and one-shot
// archival. Every sync is a whole-state write, never a delta.
type Store interface {
	UpsertLiveMatch(m *models.LiveMatch) error
	LoadLiveMatch(roomCode string) (*models.LiveMatch, error)
	DeleteLiveMatch(matchID string) error

	// ArchiveMatch inserts the immutable record and deletes the live row
	// in one transaction.
	ArchiveMatch(rec *models.SavedMatch, liveMatchID string) error
}
