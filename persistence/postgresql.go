// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/dietracker/matchserver/models"
)

// PostgreSQL 基于 database/sql 的实现，jsonb 整块存储聚合
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// 初始化表结构
	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS live_matches (
            id SERIAL PRIMARY KEY,
            match_id VARCHAR(64) UNIQUE NOT NULL,
            room_code VARCHAR(16) UNIQUE NOT NULL,
            status VARCHAR(50) NOT NULL,
            data JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS saved_matches (
            id SERIAL PRIMARY KEY,
            user_id VARCHAR(64) NOT NULL,
            room_code VARCHAR(16) NOT NULL,
            data JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS profiles (
            id SERIAL PRIMARY KEY,
            user_id VARCHAR(64) UNIQUE NOT NULL,
            nickname VARCHAR(255) NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	// 创建索引以提高查询性能
	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_live_matches_room_code ON live_matches(room_code);
        CREATE INDEX IF NOT EXISTS idx_saved_matches_user_id ON saved_matches(user_id);
        CREATE INDEX IF NOT EXISTS idx_saved_matches_created_at ON saved_matches(created_at);
    `)

	return err
}

// UpsertLiveMatch 覆盖写入实时比赛整行
func (p *PostgreSQL) UpsertLiveMatch(m *models.LiveMatch) error {
	jsonData, err := json.Marshal(m)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO live_matches (match_id, room_code, status, data)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (match_id)
        DO UPDATE SET status = $3, data = $4, updated_at = CURRENT_TIMESTAMP
    `

	_, err = p.db.ExecContext(ctx, query, m.ID, m.RoomCode, m.Status, jsonData)
	return err
}

// LoadLiveMatch 按房间码加载实时比赛
func (p *PostgreSQL) LoadLiveMatch(roomCode string) (*models.LiveMatch, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var data []byte
	query := `SELECT data FROM live_matches WHERE room_code = $1`
	err := p.db.QueryRowContext(ctx, query, roomCode).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	var m models.LiveMatch
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteLiveMatch 删除实时比赛行
func (p *PostgreSQL) DeleteLiveMatch(matchID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := p.db.ExecContext(ctx, `DELETE FROM live_matches WHERE match_id = $1`, matchID)
	return err
}

// ArchiveMatch 归档并删除实时行，单事务
func (p *PostgreSQL) ArchiveMatch(rec *models.SavedMatch, liveMatchID string) error {
	jsonData, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO saved_matches (user_id, room_code, data) VALUES ($1, $2, $3)`,
		rec.UserID, rec.RoomCode, jsonData)
	if err != nil {
		return err
	}

	if liveMatchID != "" {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM live_matches WHERE match_id = $1`, liveMatchID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SavedMatchesByUser 查询某用户的全部归档比赛
func (p *PostgreSQL) SavedMatchesByUser(userID string) ([]models.SavedMatch, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := p.db.QueryContext(ctx,
		`SELECT data FROM saved_matches WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []models.SavedMatch
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var m models.SavedMatch
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// GetProfile 查询玩家资料
func (p *PostgreSQL) GetProfile(userID string) (*models.Profile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var nickname string
	query := `SELECT nickname FROM profiles WHERE user_id = $1`
	err := p.db.QueryRowContext(ctx, query, userID).Scan(&nickname)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return &models.Profile{UserID: userID, Nickname: nickname}, nil
}

// UpsertProfile 写入玩家资料
func (p *PostgreSQL) UpsertProfile(profile *models.Profile) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO profiles (user_id, nickname)
        VALUES ($1, $2)
        ON CONFLICT (user_id)
        DO UPDATE SET nickname = $2, updated_at = CURRENT_TIMESTAMP
    `

	_, err := p.db.ExecContext(ctx, query, profile.UserID, profile.Nickname)
	return err
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
