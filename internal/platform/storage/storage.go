package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AnalysisRecord is the persisted form of one completed analysis.
type AnalysisRecord struct {
	ID         uint           `gorm:"primaryKey"`
	RequestID  string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"request_id"`
	UserID     string         `gorm:"index;not null"                        json:"user_id"`
	Kind       string         `gorm:"index;not null"                        json:"kind"`
	Width      int            `                                             json:"width"`
	Height     int            `                                             json:"height"`
	DurationMS int64          `                                             json:"duration_ms"`
	Result     datatypes.JSON `gorm:"not null"                              json:"result"`
	CreatedAt  time.Time      `gorm:"index"                                 json:"created_at"`
}

func (AnalysisRecord) TableName() string {
	return "analysis_records"
}

// Open initializes the SQLite database at the given path and migrates
// the schema. The parent directory is created when missing.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("storage DSN is empty")
	}

	if dir := filepath.Dir(dsn); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(&AnalysisRecord{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return db, nil
}
