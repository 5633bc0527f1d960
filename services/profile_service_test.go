package services

import (
	"testing"

	"github.com/dietracker/matchserver/models"
	"github.com/dietracker/matchserver/persistence"
)

// MockDatabase is a test double for the persistence.Database interface.
type MockDatabase struct {
	profiles map[string]*models.Profile
	saved    []models.SavedMatch
}

func NewMockDatabase() *MockDatabase {
	return &MockDatabase{profiles: make(map[string]*models.Profile)}
}

func (db *MockDatabase) UpsertLiveMatch(m *models.LiveMatch) error { return nil }
func (db *MockDatabase) LoadLiveMatch(roomCode string) (*models.LiveMatch, error) {
	return nil, persistence.ErrRecordNotFound
}
func (db *MockDatabase) DeleteLiveMatch(matchID string) error { return nil }
func (db *MockDatabase) ArchiveMatch(rec *models.SavedMatch, liveMatchID string) error {
	db.saved = append(db.saved, *rec)
	return nil
}

func (db *MockDatabase) SavedMatchesByUser(userID string) ([]models.SavedMatch, error) {
	var result []models.SavedMatch
	for _, m := range db.saved {
		if m.UserID == userID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (db *MockDatabase) GetProfile(userID string) (*models.Profile, error) {
	if p, ok := db.profiles[userID]; ok {
		return p, nil
	}
	return nil, persistence.ErrRecordNotFound
}

func (db *MockDatabase) UpsertProfile(p *models.Profile) error {
	db.profiles[p.UserID] = p
	return nil
}

func (db *MockDatabase) Close() error { return nil }

func TestNickname_MissingProfile(t *testing.T) {
	svc := NewProfileService(NewMockDatabase())

	nickname, err := svc.Nickname("user-1")
	if err != nil {
		t.Fatalf("a missing profile must not be an error: %v", err)
	}
	if nickname != "" {
		t.Errorf("expected empty nickname, got %q", nickname)
	}
}

func TestSetAndGetNickname(t *testing.T) {
	svc := NewProfileService(NewMockDatabase())

	if err := svc.SetNickname("user-1", "Alice"); err != nil {
		t.Fatalf("SetNickname failed: %v", err)
	}
	nickname, err := svc.Nickname("user-1")
	if err != nil {
		t.Fatalf("Nickname failed: %v", err)
	}
	if nickname != "Alice" {
		t.Errorf("expected Alice, got %q", nickname)
	}
}

func TestCareerStats(t *testing.T) {
	db := NewMockDatabase()
	svc := NewProfileService(db)

	// Won match in slot 1 (team 1).
	db.saved = append(db.saved, models.SavedMatch{
		UserID:      "user-1",
		UserSlotMap: map[int]string{1: "user-1", 2: "", 3: "", 4: ""},
		PlayerStats: map[int]models.PlayerStats{
			1: {Throws: 10, Hits: 7, Catches: 3},
		},
		WinnerTeam:    1,
		MatchDuration: 600,
	})
	// Lost match in slot 3 (team 2).
	db.saved = append(db.saved, models.SavedMatch{
		UserID:      "user-1",
		UserSlotMap: map[int]string{1: "", 2: "", 3: "user-1", 4: ""},
		PlayerStats: map[int]models.PlayerStats{
			3: {Throws: 8, Hits: 2, Catches: 1},
		},
		WinnerTeam:    1,
		MatchDuration: 300,
	})
	// Draw: neither a win nor a loss.
	db.saved = append(db.saved, models.SavedMatch{
		UserID:      "user-1",
		UserSlotMap: map[int]string{1: "", 2: "user-1", 3: "", 4: ""},
		PlayerStats: map[int]models.PlayerStats{
			2: {Throws: 5, Hits: 5},
		},
		WinnerTeam: 0,
	})
	// Saved on the user's behalf but without a claimed slot: no career entry.
	db.saved = append(db.saved, models.SavedMatch{
		UserID:      "user-1",
		UserSlotMap: map[int]string{1: "", 2: "", 3: "", 4: ""},
		PlayerStats: map[int]models.PlayerStats{},
		WinnerTeam:  2,
	})

	career, err := svc.CareerStats("user-1")
	if err != nil {
		t.Fatalf("CareerStats failed: %v", err)
	}

	if career.TotalMatches != 3 {
		t.Errorf("expected 3 counted matches, got %d", career.TotalMatches)
	}
	if career.Wins != 1 || career.Losses != 1 {
		t.Errorf("expected 1 win and 1 loss, got %d/%d", career.Wins, career.Losses)
	}
	if career.TotalThrows != 23 {
		t.Errorf("expected 23 total throws, got %d", career.TotalThrows)
	}
	if career.TotalHits != 14 {
		t.Errorf("expected 14 total hits, got %d", career.TotalHits)
	}
	if career.TotalCatches != 4 {
		t.Errorf("expected 4 total catches, got %d", career.TotalCatches)
	}
	if career.PlayTime != 900 {
		t.Errorf("expected 900 seconds of play time, got %d", career.PlayTime)
	}
}
