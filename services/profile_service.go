// services/profile_service.go
package services

import (
	"errors"

	"github.com/dietracker/matchserver/models"
	"github.com/dietracker/matchserver/persistence"
)

// ProfileService resolves user identities and career statistics.
type ProfileService struct {
	db persistence.Database
}

func NewProfileService(db persistence.Database) *ProfileService {
	return &ProfileService{db: db}
}

// Nickname returns the user's profile nickname, or empty when the user has
// no profile yet. Callers pick their own fallback display name.
func (s *ProfileService) Nickname(userID string) (string, error) {
	profile, err := s.db.GetProfile(userID)
	if err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return profile.Nickname, nil
}

// SetNickname stores the user's display name.
func (s *ProfileService) SetNickname(userID, nickname string) error {
	return s.db.UpsertProfile(&models.Profile{UserID: userID, Nickname: nickname})
}

// CareerStats folds the user's archived matches into aggregate counters.
// A match only counts toward a user's career when the user occupied one of
// its player slots.
func (s *ProfileService) CareerStats(userID string) (*models.CareerStats, error) {
	matches, err := s.db.SavedMatchesByUser(userID)
	if err != nil {
		return nil, err
	}

	career := &models.CareerStats{}
	for i := range matches {
		m := &matches[i]

		slot := 0
		for sl, id := range m.UserSlotMap {
			if id == userID {
				slot = sl
				break
			}
		}
		if slot == 0 {
			continue
		}

		stats := m.PlayerStats[slot]
		career.TotalMatches++
		career.TotalThrows += stats.Throws
		career.TotalHits += stats.Hits
		career.TotalCatches += stats.Catches
		career.PlayTime += m.MatchDuration

		if m.WinnerTeam != 0 {
			if m.WinnerTeam == models.TeamForSlot(slot) {
				career.Wins++
			} else {
				career.Losses++
			}
		}
	}
	return career, nil
}
