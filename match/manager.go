// match/manager.go
package match

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dietracker/matchserver/logger"
	"github.com/dietracker/matchserver/models"
	"github.com/dietracker/matchserver/timer"
)

// ErrRoomCodeExhausted is returned when no free room code could be drawn.
var ErrRoomCodeExhausted = errors.New("could not allocate a free room code")

const (
	// maxCodeAttempts bounds the collision retry when drawing room codes.
	maxCodeAttempts = 10

	// idleTimeout is how long a match with no attached sessions survives
	// in memory before the sweep evicts it. The store row is kept.
	idleTimeout = time.Hour

	sweepInterval = 5 * time.Minute
)

// Manager 管理所有在内存中的实时比赛
type Manager struct {
	matches map[string]*Match // roomCode -> match
	store   Store
	timers  *timer.Manager
	sweepID int64
	mutex   sync.RWMutex
}

// NewManager creates a match manager and starts the idle-match sweep.
func NewManager(store Store, timers *timer.Manager) *Manager {
	m := &Manager{
		matches: make(map[string]*Match),
		store:   store,
		timers:  timers,
	}
	if timers != nil {
		m.sweepID = timers.AddTimer(sweepInterval, sweepInterval, m.sweepIdle)
	}
	return m
}

// CreateMatch allocates a fresh room code, initializes the aggregate and
// starts the match. The returned match is active and persisted.
func (m *Manager) CreateMatch(hostID string, setup models.MatchSetup, broadcaster Broadcaster) (*Match, error) {
	code, err := m.allocateRoomCode()
	if err != nil {
		return nil, err
	}

	live := models.NewLiveMatch(uuid.New().String(), code, hostID, setup)
	mt := NewMatch(live, broadcaster, m.store)

	m.mutex.Lock()
	m.matches[code] = mt
	m.mutex.Unlock()

	if err := mt.StartMatch(); err != nil {
		m.RemoveMatch(code)
		return nil, err
	}
	return mt, nil
}

// Resume wraps a live row loaded back from the store, e.g. when a
// scorekeeper reconnects after a server restart. If the room is already in
// memory its newer in-memory state wins.
func (m *Manager) Resume(live *models.LiveMatch, broadcaster Broadcaster) *Match {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if existing, exists := m.matches[live.RoomCode]; exists {
		existing.ApplySnapshot(live)
		return existing
	}
	mt := NewMatch(live, broadcaster, m.store)
	m.matches[live.RoomCode] = mt
	return mt
}

// GetMatch looks up an in-memory match by room code.
func (m *Manager) GetMatch(roomCode string) (*Match, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	mt, exists := m.matches[roomCode]
	return mt, exists
}

// RemoveMatch evicts a match from memory.
func (m *Manager) RemoveMatch(roomCode string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.matches, roomCode)
}

// ActiveCount returns the number of matches currently held in memory.
func (m *Manager) ActiveCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.matches)
}

// RoomCodes returns the codes of every in-memory match.
func (m *Manager) RoomCodes() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	codes := make([]string, 0, len(m.matches))
	for code := range m.matches {
		codes = append(codes, code)
	}
	return codes
}

// Stop cancels the idle sweep.
func (m *Manager) Stop() {
	if m.timers != nil && m.sweepID != 0 {
		m.timers.RemoveTimer(m.sweepID)
	}
}

// allocateRoomCode draws codes until one is free both in memory and in the
// store, bounded by maxCodeAttempts.
func (m *Manager) allocateRoomCode() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := GenerateRoomCode()

		m.mutex.RLock()
		_, inMemory := m.matches[code]
		m.mutex.RUnlock()
		if inMemory {
			continue
		}

		// A row in the store means another server instance owns the code.
		if _, err := m.store.LoadLiveMatch(code); err == nil {
			continue
		}
		return code, nil
	}
	return "", ErrRoomCodeExhausted
}

// sweepIdle evicts matches nobody is attached to anymore. The store row
// stays, so the match is resumable by room code.
func (m *Manager) sweepIdle() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for code, mt := range m.matches {
		if mt.SessionCount() == 0 && mt.IdleFor() > idleTimeout {
			logger.Log.Infof("Evicting idle match %s from memory", code)
			delete(m.matches, code)
		}
	}
}
