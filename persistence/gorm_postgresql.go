// persistence/gorm_postgresql.go
package persistence

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dietracker/matchserver/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.GormLiveMatch{},
		&models.GormSavedMatch{},
		&models.GormProfile{},
	)
}

// UpsertLiveMatch 覆盖写入实时比赛整行
func (p *GormPostgreSQL) UpsertLiveMatch(m *models.LiveMatch) error {
	var row models.GormLiveMatch
	result := p.db.Where("match_id = ?", m.ID).First(&row)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		row = liveMatchRow(m)
		return p.db.Create(&row).Error
	} else if result.Error != nil {
		return result.Error
	}

	updated := liveMatchRow(m)
	updated.Model = row.Model
	return p.db.Save(&updated).Error
}

// LoadLiveMatch 按房间码加载实时比赛
func (p *GormPostgreSQL) LoadLiveMatch(roomCode string) (*models.LiveMatch, error) {
	var row models.GormLiveMatch
	if err := p.db.Where("room_code = ?", roomCode).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return liveMatchFromRow(&row), nil
}

// DeleteLiveMatch 删除实时比赛行
func (p *GormPostgreSQL) DeleteLiveMatch(matchID string) error {
	return p.db.Where("match_id = ?", matchID).Delete(&models.GormLiveMatch{}).Error
}

// ArchiveMatch 归档并删除实时行，单事务
func (p *GormPostgreSQL) ArchiveMatch(rec *models.SavedMatch, liveMatchID string) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		row := savedMatchRow(rec)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if liveMatchID == "" {
			return nil
		}
		return tx.Where("match_id = ?", liveMatchID).Delete(&models.GormLiveMatch{}).Error
	})
}

// SavedMatchesByUser 查询某用户的全部归档比赛
func (p *GormPostgreSQL) SavedMatchesByUser(userID string) ([]models.SavedMatch, error) {
	var rows []models.GormSavedMatch
	if err := p.db.Where("user_id = ?", userID).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}

	matches := make([]models.SavedMatch, 0, len(rows))
	for i := range rows {
		matches = append(matches, *savedMatchFromRow(&rows[i]))
	}
	return matches, nil
}

// GetProfile 查询玩家资料
func (p *GormPostgreSQL) GetProfile(userID string) (*models.Profile, error) {
	var row models.GormProfile
	if err := p.db.Where("user_id = ?", userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &models.Profile{UserID: row.UserID, Nickname: row.Nickname}, nil
}

// UpsertProfile 写入玩家资料
func (p *GormPostgreSQL) UpsertProfile(profile *models.Profile) error {
	var row models.GormProfile
	result := p.db.Where("user_id = ?", profile.UserID).First(&row)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		row = models.GormProfile{UserID: profile.UserID, Nickname: profile.Nickname}
		return p.db.Create(&row).Error
	} else if result.Error != nil {
		return result.Error
	}

	row.Nickname = profile.Nickname
	return p.db.Save(&row).Error
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --- 行与聚合的转换 ---

func liveMatchRow(m *models.LiveMatch) models.GormLiveMatch {
	return models.GormLiveMatch{
		MatchID:       m.ID,
		RoomCode:      m.RoomCode,
		HostID:        m.HostID,
		Status:        m.Status,
		Setup:         m.MatchSetup,
		Participants:  m.Participants,
		UserSlotMap:   m.UserSlotMap,
		PlayerStats:   m.PlayerStats,
		TeamPenalties: m.TeamPenalties,
		MatchStart:    m.MatchStart,
		WinnerTeam:    m.WinnerTeam,
		Version:       m.Version,
	}
}

func liveMatchFromRow(row *models.GormLiveMatch) *models.LiveMatch {
	return &models.LiveMatch{
		ID:            row.MatchID,
		RoomCode:      row.RoomCode,
		HostID:        row.HostID,
		Status:        row.Status,
		MatchSetup:    row.Setup,
		Participants:  row.Participants,
		UserSlotMap:   row.UserSlotMap,
		PlayerStats:   row.PlayerStats,
		TeamPenalties: row.TeamPenalties,
		MatchStart:    row.MatchStart,
		WinnerTeam:    row.WinnerTeam,
		Version:       row.Version,
		CreatedAt:     row.CreatedAt,
	}
}

func savedMatchRow(rec *models.SavedMatch) models.GormSavedMatch {
	return models.GormSavedMatch{
		UserID:        rec.UserID,
		RoomCode:      rec.RoomCode,
		Setup:         rec.MatchSetup,
		PlayerStats:   rec.PlayerStats,
		TeamPenalties: rec.TeamPenalties,
		UserSlotMap:   rec.UserSlotMap,
		MatchStart:    rec.MatchStart,
		WinnerTeam:    rec.WinnerTeam,
		MatchDuration: rec.MatchDuration,
	}
}

func savedMatchFromRow(row *models.GormSavedMatch) *models.SavedMatch {
	return &models.SavedMatch{
		UserID:        row.UserID,
		RoomCode:      row.RoomCode,
		MatchSetup:    row.Setup,
		PlayerStats:   row.PlayerStats,
		TeamPenalties: row.TeamPenalties,
		UserSlotMap:   row.UserSlotMap,
		MatchStart:    row.MatchStart,
		WinnerTeam:    row.WinnerTeam,
		MatchDuration: row.MatchDuration,
		CreatedAt:     row.CreatedAt,
	}
}
