// Package history records resolved queries in SQLite so the stats and
// history surfaces can answer without touching the lyric cache.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const errDBClientNil = "history db client is nil"

// Resolution is one successfully resolved query.
type Resolution struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Query       string `gorm:"index:idx_query"`
	SongID      string `gorm:"index:idx_song"`
	SongName    string
	Artist      string
	MatchedLine string
	NextLine    string
	CacheHit    bool
	CreatedAt   time.Time
}

// DBClient wraps the gorm connection to the history database.
type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// NewDBClient opens (or creates) the history database at dbPath and runs
// migrations.
func NewDBClient(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil && !os.IsExist(err) {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Resolution{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Record stores one resolution. The ID is assigned here.
func (c *DBClient) Record(r *Resolution) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	r.ID = uuid.NewString()
	if err := c.DB.Create(r).Error; err != nil {
		return fmt.Errorf("recording resolution: %w", err)
	}
	return nil
}

// Recent returns up to limit resolutions, newest first.
func (c *DBClient) Recent(limit int) ([]Resolution, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var rows []Resolution
	if err := c.DB.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	return rows, nil
}

// Counts returns the total number of resolutions and how many of them were
// served from the cache.
func (c *DBClient) Counts() (total, cacheHits int64, err error) {
	if c == nil || c.DB == nil {
		return 0, 0, errors.New(errDBClientNil)
	}
	if err := c.DB.Model(&Resolution{}).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("counting resolutions: %w", err)
	}
	if err := c.DB.Model(&Resolution{}).Where("cache_hit = ?", true).Count(&cacheHits).Error; err != nil {
		return 0, 0, fmt.Errorf("counting cache hits: %w", err)
	}
	return total, cacheHits, nil
}
