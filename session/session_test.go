package session

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/dietracker/matchserver/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	sentIDs []uint16
	sent    [][]byte
}

func (m *MockConnection) Send(msgID uint16, data []byte) error {
	m.sentIDs = append(m.sentIDs, msgID)
	m.sent = append(m.sent, data)
	return nil
}

func (m *MockConnection) SendJSON(msgID uint16, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return m.Send(msgID, data)
}
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConnection{})

	// Test Add
	manager.Add(sess)
	if len(manager.sessions) != 1 {
		t.Fatalf("Expected session count to be 1, got %d", len(manager.sessions))
	}

	// Test Get
	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	// Test Remove
	manager.Remove(sessionID)
	if len(manager.sessions) != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", len(manager.sessions))
	}

	_, exists = manager.Get(sessionID)
	if exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestManager_GetByUserID(t *testing.T) {
	manager := NewManager()

	sess1 := NewSession("session1", &MockConnection{})
	sess1.Identify("user-100", "Alice")

	sess2 := NewSession("session2", &MockConnection{})
	sess2.Identify("user-200", "Bob")

	sess3 := NewSession("session3", &MockConnection{})
	sess3.Identify("user-100", "Alice")

	manager.Add(sess1)
	manager.Add(sess2)
	manager.Add(sess3)

	user100Sessions := manager.GetByUserID("user-100")
	if len(user100Sessions) != 2 {
		t.Errorf("Expected 2 sessions for user-100, got %d", len(user100Sessions))
	}

	user200Sessions := manager.GetByUserID("user-200")
	if len(user200Sessions) != 1 {
		t.Errorf("Expected 1 session for user-200, got %d", len(user200Sessions))
	}

	user300Sessions := manager.GetByUserID("user-300")
	if len(user300Sessions) != 0 {
		t.Errorf("Expected 0 sessions for user-300, got %d", len(user300Sessions))
	}
}

func TestManager_GetByUserID_IgnoresGuests(t *testing.T) {
	manager := NewManager()

	guest := NewSession("guest1", &MockConnection{})
	manager.Add(guest)

	// Guests have an empty user id; an empty query must not match them.
	sessions := manager.GetByUserID("")
	if len(sessions) != 0 {
		t.Errorf("Expected no sessions for empty user id, got %d", len(sessions))
	}
}

func TestSession_SendJSON(t *testing.T) {
	conn := &MockConnection{}
	sess := NewSession("test_session", conn)

	payload := map[string]string{"roomCode": "ABC123"}
	if err := sess.SendJSON(42, payload); err != nil {
		t.Fatalf("SendJSON failed: %v", err)
	}

	if len(conn.sentIDs) != 1 || conn.sentIDs[0] != 42 {
		t.Fatalf("expected one packet with id 42, got %v", conn.sentIDs)
	}

	var decoded map[string]string
	if err := json.Unmarshal(conn.sent[0], &decoded); err != nil {
		t.Fatalf("sent payload is not valid JSON: %v", err)
	}
	if decoded["roomCode"] != "ABC123" {
		t.Errorf("expected the payload to round-trip, got %v", decoded)
	}
}

func TestSession_Identify(t *testing.T) {
	sess := NewSession("test_session", &MockConnection{})

	userID, nickname := sess.Identity()
	if userID != "" || nickname != "" {
		t.Errorf("Expected a fresh session to be a guest, got %q / %q", userID, nickname)
	}

	sess.Identify("user-42", "Douglas")

	userID, nickname = sess.Identity()
	if userID != "user-42" {
		t.Errorf("Expected user id user-42, got %q", userID)
	}
	if nickname != "Douglas" {
		t.Errorf("Expected nickname Douglas, got %q", nickname)
	}
}
