// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/dietracker/matchserver/network"
)

// Session is one connected client. A session may identify as an
// authenticated user or stay a guest; either way it can attach to a match
// room and receive sync broadcasts.
type Session struct {
	ID         string
	Conn       network.Connection
	UserID     string // empty for guests
	Nickname   string
	RoomCode   string
	CreatedAt  time.Time
	LastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

// Identify binds the session to an authenticated user.
func (s *Session) Identify(userID, nickname string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.UserID = userID
	s.Nickname = nickname
}

// Identity returns the bound user id and nickname, empty for guests.
func (s *Session) Identity() (string, string) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.UserID, s.Nickname
}

func (s *Session) Send(msgID uint16, data []byte) error {
	s.LastActive = time.Now()
	return s.Conn.Send(msgID, data)
}

// SendJSON marshals v and sends it as a packet payload.
func (s *Session) SendJSON(msgID uint16, v interface{}) error {
	s.LastActive = time.Now()
	return s.Conn.SendJSON(msgID, v)
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Session管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

// GetByUserID returns every session bound to the given user. One user can
// be connected from several devices at once.
func (m *Manager) GetByUserID(userID string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if id, _ := session.Identity(); id == userID && userID != "" {
			result = append(result, session)
		}
	}
	return result
}

// All returns a snapshot of every connected session.
func (m *Manager) All() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}
