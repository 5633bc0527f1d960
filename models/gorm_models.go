// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormLiveMatch 实时比赛行，roomCode 唯一
type GormLiveMatch struct {
	gorm.Model
	MatchID       string              `gorm:"uniqueIndex;not null"`
	RoomCode      string              `gorm:"uniqueIndex;not null"`
	HostID        string              `gorm:"index"`
	Status        string              `gorm:"not null"`
	Setup         MatchSetup          `gorm:"type:jsonb;serializer:json;not null"`
	Participants  []string            `gorm:"type:jsonb;serializer:json"`
	UserSlotMap   map[int]string      `gorm:"type:jsonb;serializer:json"`
	PlayerStats   map[int]PlayerStats `gorm:"type:jsonb;serializer:json;not null"`
	TeamPenalties map[int]int         `gorm:"type:jsonb;serializer:json;not null"`
	MatchStart    *time.Time
	WinnerTeam    int   `gorm:"default:0"`
	Version       int64 `gorm:"default:0"`
}

// GormSavedMatch 归档比赛行，按归属用户索引
type GormSavedMatch struct {
	gorm.Model
	UserID        string              `gorm:"index;not null"`
	RoomCode      string              `gorm:"not null"`
	Setup         MatchSetup          `gorm:"type:jsonb;serializer:json;not null"`
	PlayerStats   map[int]PlayerStats `gorm:"type:jsonb;serializer:json;not null"`
	TeamPenalties map[int]int         `gorm:"type:jsonb;serializer:json;not null"`
	UserSlotMap   map[int]string      `gorm:"type:jsonb;serializer:json"`
	MatchStart    *time.Time
	WinnerTeam    int `gorm:"default:0"`
	MatchDuration int `gorm:"default:0"` // 比赛时长(秒)
}

// GormProfile 玩家资料
type GormProfile struct {
	gorm.Model
	UserID   string `gorm:"uniqueIndex;not null"`
	Nickname string `gorm:"not null"`
}

// CareerStats 跨场次聚合的职业统计
type CareerStats struct {
	TotalMatches int `json:"total_matches"`
	Wins         int `json:"wins"`
	Losses       int `json:"losses"`
	TotalThrows  int `json:"total_throws"`
	TotalHits    int `json:"total_hits"`
	TotalCatches int `json:"total_catches"`
	PlayTime     int `json:"play_time"` // 总比赛时长(秒)
}
