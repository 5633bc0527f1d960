// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/dietracker/matchserver/models"
)

// Database 数据库接口
type Database interface {
	// Live session rows, keyed by room code. Writes overwrite the whole
	// stored aggregate.
	UpsertLiveMatch(m *models.LiveMatch) error
	LoadLiveMatch(roomCode string) (*models.LiveMatch, error)
	DeleteLiveMatch(matchID string) error

	// ArchiveMatch inserts the immutable saved record and deletes the live
	// row atomically.
	ArchiveMatch(rec *models.SavedMatch, liveMatchID string) error
	SavedMatchesByUser(userID string) ([]models.SavedMatch, error)

	// Profiles back the nickname lookup when a user claims a slot.
	GetProfile(userID string) (*models.Profile, error)
	UpsertProfile(p *models.Profile) error

	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
