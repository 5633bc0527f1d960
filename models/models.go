// models/models.go
package models

import (
	"time"
)

// Match lifecycle status values stored on the live match row.
const (
	StatusWaiting  = "waiting"
	StatusActive   = "active"
	StatusFinished = "finished"
)

// Player slots 1-2 belong to team 1, slots 3-4 to team 2. This split is
// fixed by the game rules and not configurable.
const (
	FirstSlot = 1
	LastSlot  = 4
)

// TeamForSlot returns the team id (1 or 2) owning the given player slot.
func TeamForSlot(slot int) int {
	if slot <= 2 {
		return 1
	}
	return 2
}

// TeamSlots returns the two player slots belonging to a team.
func TeamSlots(team int) [2]int {
	if team == 1 {
		return [2]int{1, 2}
	}
	return [2]int{3, 4}
}

// OpposingTeam returns the other team id.
func OpposingTeam(team int) int {
	if team == 1 {
		return 2
	}
	return 1
}

// PlayerStats 单场比赛中一名玩家的累计统计
type PlayerStats struct {
	Name            string `json:"name"`
	Throws          int    `json:"throws"`
	Hits            int    `json:"hits"`
	Blunders        int    `json:"blunders"`
	Catches         int    `json:"catches"`
	Score           int    `json:"score"`
	Aura            int    `json:"aura"`
	FifaAttempts    int    `json:"fifaAttempts"`
	FifaSuccess     int    `json:"fifaSuccess"`
	HitStreak       int    `json:"hitStreak"`
	SpecialThrows   int    `json:"specialThrows"`
	LineThrows      int    `json:"lineThrows"`
	Goals           int    `json:"goals"`
	OnFireCount     int    `json:"onFireCount"`
	CurrentlyOnFire bool   `json:"currentlyOnFire"`

	// Per-outcome throw tallies
	TableDie int `json:"tableDie"`
	Line     int `json:"line"`
	Hit      int `json:"hit"`
	Knicker  int `json:"knicker"`
	Dink     int `json:"dink"`
	Sink     int `json:"sink"`
	Short    int `json:"short"`
	Long     int `json:"long"`
	Side     int `json:"side"`
	Height   int `json:"height"`
	Goal     int `json:"goal"`

	// Per-outcome defense tallies
	CatchPlusAura int `json:"catchPlusAura"`
	Drop          int `json:"drop"`
	Miss          int `json:"miss"`
	TwoHands      int `json:"twoHands"`
	Body          int `json:"body"`

	// FIFA kick tallies
	GoodKick int `json:"goodKick"`
	BadKick  int `json:"badKick"`
}

// MatchSetup 比赛的静态配置，开局后除玩家名外不再变化
type MatchSetup struct {
	Title          string    `json:"title"`
	Arena          string    `json:"arena"`
	PlayerNames    [4]string `json:"playerNames"`
	TeamNames      [2]string `json:"teamNames"`
	GameScoreLimit int       `json:"gameScoreLimit"`
	SinkPoints     int       `json:"sinkPoints"`
	WinByTwo       bool      `json:"winByTwo"`
}

// DefaultMatchSetup returns the setup used when a scorekeeper quick-starts a
// match without customizing anything.
func DefaultMatchSetup() MatchSetup {
	return MatchSetup{
		Title:          "Finals",
		Arena:          "The Grand Dome",
		PlayerNames:    [4]string{"Player1", "Player2", "Player3", "Player4"},
		TeamNames:      [2]string{"Team 1", "Team 2"},
		GameScoreLimit: 11,
		SinkPoints:     3,
		WinByTwo:       true,
	}
}

// LiveMatch 共享的实时比赛聚合，整行随每次出手覆盖写入
type LiveMatch struct {
	ID            string              `json:"id"`
	RoomCode      string              `json:"roomCode"`
	HostID        string              `json:"hostId"` // empty for guest-hosted matches
	Status        string              `json:"status"`
	MatchSetup    MatchSetup          `json:"matchSetup"`
	Participants  []string            `json:"participants"`
	UserSlotMap   map[int]string      `json:"userSlotMap"` // slot -> user id, empty string when unclaimed
	PlayerStats   map[int]PlayerStats `json:"livePlayerStats"`
	TeamPenalties map[int]int         `json:"liveTeamPenalties"`
	MatchStart    *time.Time          `json:"matchStartTime"`
	WinnerTeam    int                 `json:"winnerTeam"` // 0 until decided
	Version       int64               `json:"version"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// NewLiveMatch initializes a live match aggregate with zeroed statistics
// for all four slots and no slot claims. The match starts waiting; the
// coordinator activates it and stamps the start time.
func NewLiveMatch(id, roomCode, hostID string, setup MatchSetup) *LiveMatch {
	m := &LiveMatch{
		ID:            id,
		RoomCode:      roomCode,
		HostID:        hostID,
		Status:        StatusWaiting,
		MatchSetup:    setup,
		Participants:  []string{},
		UserSlotMap:   make(map[int]string, 4),
		PlayerStats:   make(map[int]PlayerStats, 4),
		TeamPenalties: map[int]int{1: 0, 2: 0},
		CreatedAt:     time.Now(),
	}
	if hostID != "" {
		m.Participants = append(m.Participants, hostID)
	}
	for slot := FirstSlot; slot <= LastSlot; slot++ {
		m.UserSlotMap[slot] = ""
		m.PlayerStats[slot] = PlayerStats{Name: setup.PlayerNames[slot-1]}
	}
	return m
}

// Clone returns a deep copy. The scoring engine mutates a clone so a failed
// play never leaves partially applied statistics behind.
func (m *LiveMatch) Clone() *LiveMatch {
	c := *m
	c.Participants = append([]string(nil), m.Participants...)
	c.UserSlotMap = make(map[int]string, len(m.UserSlotMap))
	for k, v := range m.UserSlotMap {
		c.UserSlotMap[k] = v
	}
	c.PlayerStats = make(map[int]PlayerStats, len(m.PlayerStats))
	for k, v := range m.PlayerStats {
		c.PlayerStats[k] = v
	}
	c.TeamPenalties = make(map[int]int, len(m.TeamPenalties))
	for k, v := range m.TeamPenalties {
		c.TeamPenalties[k] = v
	}
	if m.MatchStart != nil {
		t := *m.MatchStart
		c.MatchStart = &t
	}
	return &c
}

// SavedMatch 已归档的历史比赛记录，只写一次
type SavedMatch struct {
	UserID        string              `json:"userId"`
	RoomCode      string              `json:"roomCode"`
	MatchSetup    MatchSetup          `json:"matchSetup"`
	PlayerStats   map[int]PlayerStats `json:"playerStats"`
	TeamPenalties map[int]int         `json:"teamPenalties"`
	MatchStart    *time.Time          `json:"matchStartTime"`
	WinnerTeam    int                 `json:"winnerTeam"`
	MatchDuration int                 `json:"matchDuration"` // seconds
	UserSlotMap   map[int]string      `json:"userSlotMap"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// Profile 玩家资料（昵称查询用）
type Profile struct {
	UserID   string `json:"userId"`
	Nickname string `json:"nickname"`
}
