// match/match.go
package match

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dietracker/matchserver/game"
	"github.com/dietracker/matchserver/logger"
	"github.com/dietracker/matchserver/models"
	"github.com/dietracker/matchserver/network"
	"github.com/dietracker/matchserver/rating"
	"github.com/dietracker/matchserver/session"
	"github.com/dietracker/matchserver/state"
)

var (
	// ErrSlotTaken is returned when the requested player slot is already
	// claimed by a different user.
	ErrSlotTaken = errors.New("player slot already taken")

	// ErrAlreadyInMatch is returned when the user already occupies a
	// different slot of the same match.
	ErrAlreadyInMatch = errors.New("user already assigned to another slot")

	// ErrNotAuthenticated is returned when an action requires an identity
	// and neither the caller nor any joined participant has one.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidSlot is returned for slot numbers outside 1-4.
	ErrInvalidSlot = errors.New("invalid player slot")
)

// Match 一场共享的实时比赛：聚合状态、生命周期状态机与已连接的会话
type Match struct {
	live         *models.LiveMatch
	machine      state.StateMachine
	sessions     map[string]*session.Session // sessionID -> session
	broadcaster  Broadcaster
	store        Store
	lastActivity time.Time
	stateMutex   sync.RWMutex
	sessionMutex sync.RWMutex
}

// NewMatch wraps a live aggregate. The state machine starts in whatever
// lifecycle state the row already carries, so a match resumed from the
// store picks up where it left off.
func NewMatch(live *models.LiveMatch, broadcaster Broadcaster, store Store) *Match {
	m := &Match{
		live:         live,
		sessions:     make(map[string]*session.Session),
		broadcaster:  broadcaster,
		store:        store,
		lastActivity: time.Now(),
	}

	var initial state.State
	switch live.Status {
	case models.StatusActive:
		initial = state.NewActiveState(m)
	case models.StatusFinished:
		initial = state.NewFinishedState(m)
	default:
		initial = state.NewWaitingState(m)
	}
	m.machine = state.NewBaseStateMachine(initial)
	return m
}

// --- state.MatchContext 实现 ---

func (m *Match) GetRoomCode() string {
	return m.live.RoomCode
}

func (m *Match) GetStatus() string {
	m.stateMutex.RLock()
	defer m.stateMutex.RUnlock()
	return m.live.Status
}

func (m *Match) ChangeState(newState state.State) error {
	return m.machine.ChangeState(newState)
}

// Broadcast sends a packet to every session attached to this match.
func (m *Match) Broadcast(msgID uint16, data []byte) error {
	return m.broadcaster.BroadcastToMatch(m.live.RoomCode, msgID, data)
}

// StartMatch activates a waiting match and stamps the start time.
// Idempotent for an already active match.
func (m *Match) StartMatch() error {
	m.stateMutex.Lock()
	switch m.live.Status {
	case models.StatusActive:
		m.stateMutex.Unlock()
		return nil
	case models.StatusFinished:
		m.stateMutex.Unlock()
		return state.ErrMatchFinished
	}
	now := time.Now()
	m.live.Status = models.StatusActive
	m.live.MatchStart = &now
	m.live.Version++
	m.lastActivity = now
	snapshot := m.live.Clone()
	m.stateMutex.Unlock()

	if err := m.machine.ChangeState(state.NewActiveState(m)); err != nil {
		return err
	}
	return m.persistAndSync(snapshot)
}

// ApplyPlay runs the scoring engine against the aggregate, then syncs the
// full new state to the store and every attached session. A validation
// failure leaves the aggregate untouched. A store failure is returned but
// the in-memory state stays ahead of the persisted one; the next
// successful sync writes the whole row anyway.
func (m *Match) ApplyPlay(play game.Play) (*game.Notice, error) {
	m.stateMutex.Lock()
	next, notice, err := game.SubmitPlay(m.live, play)
	if err != nil {
		m.stateMutex.Unlock()
		return nil, err
	}
	m.live = next
	m.lastActivity = time.Now()
	snapshot := m.live.Clone()
	m.stateMutex.Unlock()

	if notice != nil {
		// Self-sink: nothing changed statistically, only the notice goes out.
		data, _ := json.Marshal(notice)
		m.Broadcast(network.MsgTypeNotice, data)
		return notice, nil
	}

	syncErr := m.persistAndSync(snapshot)

	if winner := game.Winner(snapshot); winner != 0 {
		m.finish(winner)
	}
	return nil, syncErr
}

// ForceFinish settles the match by comparing current team scores. A draw
// leaves no winner.
func (m *Match) ForceFinish() int {
	m.stateMutex.RLock()
	team1 := game.TeamScore(m.live, 1)
	team2 := game.TeamScore(m.live, 2)
	m.stateMutex.RUnlock()

	winner := 0
	if team1 > team2 {
		winner = 1
	} else if team2 > team1 {
		winner = 2
	}
	m.finish(winner)
	return winner
}

// --- 协调器核心逻辑 ---

// JoinSlot claims a player slot for an authenticated user and renames the
// slot to the user's nickname. Rejoining the same slot is a no-op success.
func (m *Match) JoinSlot(slot int, userID, nickname string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if slot < models.FirstSlot || slot > models.LastSlot {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}

	m.stateMutex.Lock()
	if m.live.Status == models.StatusFinished {
		m.stateMutex.Unlock()
		return state.ErrMatchFinished
	}
	occupant := m.live.UserSlotMap[slot]
	if occupant != "" && occupant != userID {
		m.stateMutex.Unlock()
		return ErrSlotTaken
	}
	for s, id := range m.live.UserSlotMap {
		if id == userID && s != slot {
			m.stateMutex.Unlock()
			return ErrAlreadyInMatch
		}
	}
	if occupant == userID {
		// Already in this exact slot, nothing to change.
		m.stateMutex.Unlock()
		return nil
	}

	m.live.UserSlotMap[slot] = userID
	joined := false
	for _, id := range m.live.Participants {
		if id == userID {
			joined = true
			break
		}
	}
	if !joined {
		m.live.Participants = append(m.live.Participants, userID)
	}

	if nickname == "" {
		nickname = fmt.Sprintf("Player %d", slot)
	}
	m.live.MatchSetup.PlayerNames[slot-1] = nickname
	stats := m.live.PlayerStats[slot]
	stats.Name = nickname
	m.live.PlayerStats[slot] = stats
	m.live.Version++
	m.lastActivity = time.Now()
	snapshot := m.live.Clone()
	m.stateMutex.Unlock()

	return m.persistAndSync(snapshot)
}

// Save archives the match as an immutable record attributed to the saving
// user. A guest scorekeeper falls back to the first authenticated joined
// participant; with nobody authenticated the save is refused.
func (m *Match) Save(savingUserID string) (*models.SavedMatch, error) {
	m.stateMutex.RLock()
	snapshot := m.live.Clone()
	m.stateMutex.RUnlock()

	userID := savingUserID
	if userID == "" {
		for slot := models.FirstSlot; slot <= models.LastSlot; slot++ {
			if id := snapshot.UserSlotMap[slot]; id != "" {
				userID = id
				break
			}
		}
	}
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	duration := 0
	if snapshot.MatchStart != nil {
		duration = int(time.Since(*snapshot.MatchStart).Seconds())
	}

	rec := &models.SavedMatch{
		UserID:        userID,
		RoomCode:      snapshot.RoomCode,
		MatchSetup:    snapshot.MatchSetup,
		PlayerStats:   snapshot.PlayerStats,
		TeamPenalties: snapshot.TeamPenalties,
		UserSlotMap:   snapshot.UserSlotMap,
		MatchStart:    snapshot.MatchStart,
		WinnerTeam:    snapshot.WinnerTeam,
		MatchDuration: duration,
		CreatedAt:     time.Now(),
	}

	if err := m.store.ArchiveMatch(rec, snapshot.ID); err != nil {
		return nil, fmt.Errorf("archive match: %w", err)
	}
	return rec, nil
}

// ApplySnapshot merges an inbound full-state snapshot, e.g. one reloaded
// from the store after a reconnect. Snapshots at or below the last applied
// version are dropped; the last applied write stays authoritative.
func (m *Match) ApplySnapshot(remote *models.LiveMatch) bool {
	m.stateMutex.Lock()
	defer m.stateMutex.Unlock()

	if remote.Version <= m.live.Version {
		return false
	}
	m.live = remote.Clone()
	m.lastActivity = time.Now()
	return true
}

// Snapshot returns a deep copy of the current aggregate.
func (m *Match) Snapshot() *models.LiveMatch {
	m.stateMutex.RLock()
	defer m.stateMutex.RUnlock()
	return m.live.Clone()
}

// HandleAction routes a player action through the current lifecycle state.
func (m *Match) HandleAction(player state.Player, actionData []byte) error {
	current := m.machine.GetCurrentState()
	if current == nil {
		return errors.New("match has no lifecycle state")
	}
	return current.HandleAction(player, actionData)
}

// IdleFor returns how long ago the match last saw activity.
func (m *Match) IdleFor() time.Duration {
	m.stateMutex.RLock()
	defer m.stateMutex.RUnlock()
	return time.Since(m.lastActivity)
}

// --- 会话管理 ---

// Attach registers a connected session for sync broadcasts. Spectators are
// allowed, so there is no attach limit.
func (m *Match) Attach(s *session.Session) {
	m.sessionMutex.Lock()
	defer m.sessionMutex.Unlock()
	m.sessions[s.ID] = s
	s.RoomCode = m.live.RoomCode
}

// Detach removes a session from the room.
func (m *Match) Detach(sessionID string) {
	m.sessionMutex.Lock()
	defer m.sessionMutex.Unlock()
	if s, exists := m.sessions[sessionID]; exists {
		s.RoomCode = ""
		delete(m.sessions, sessionID)
	}
}

// GetSessions returns a snapshot of the attached sessions.
func (m *Match) GetSessions() []*session.Session {
	m.sessionMutex.RLock()
	defer m.sessionMutex.RUnlock()

	sessions := make([]*session.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// SessionCount returns how many sessions are attached.
func (m *Match) SessionCount() int {
	m.sessionMutex.RLock()
	defer m.sessionMutex.RUnlock()
	return len(m.sessions)
}

// --- 内部 ---

// persistAndSync overwrites the store row with the full snapshot and
// broadcasts it to the room. The broadcast goes out even when the write
// fails so connected scorekeepers stay consistent with each other.
func (m *Match) persistAndSync(snapshot *models.LiveMatch) error {
	var storeErr error
	if err := m.store.UpsertLiveMatch(snapshot); err != nil {
		logger.Log.Errorf("Failed to sync match %s to store: %v", snapshot.RoomCode, err)
		storeErr = fmt.Errorf("sync match state: %w", err)
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal match snapshot: %w", err)
	}
	if err := m.Broadcast(network.MsgTypeMatchSync, data); err != nil {
		logger.Log.Warnf("Failed to broadcast match %s: %v", snapshot.RoomCode, err)
	}
	return storeErr
}

// finish marks the match settled and announces the winner.
func (m *Match) finish(winner int) {
	m.stateMutex.Lock()
	if m.live.Status == models.StatusFinished {
		m.stateMutex.Unlock()
		return
	}
	m.live.Status = models.StatusFinished
	m.live.WinnerTeam = winner
	m.live.Version++
	m.lastActivity = time.Now()
	snapshot := m.live.Clone()
	m.stateMutex.Unlock()

	if err := m.machine.ChangeState(state.NewFinishedState(m)); err != nil {
		logger.Log.Errorf("Match %s could not enter finished state: %v", snapshot.RoomCode, err)
	}
	if err := m.store.UpsertLiveMatch(snapshot); err != nil {
		logger.Log.Errorf("Failed to persist finished match %s: %v", snapshot.RoomCode, err)
	}

	end := map[string]interface{}{
		"winnerTeam":    winner,
		"match":         snapshot,
		"playerRatings": rating.RateAll(snapshot.PlayerStats),
	}
	if winner != 0 {
		end["teamName"] = snapshot.MatchSetup.TeamNames[winner-1]
	}
	data, _ := json.Marshal(end)
	m.Broadcast(network.MsgTypeMatchEnd, data)
}
