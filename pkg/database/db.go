package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/arnavshah/duty-roster-api/pkg/config"
)

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	KeyPreview string     `json:"key_preview"`
	Name       string     `gorm:"not null" json:"name"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
	RevokedAt  *time.Time `json:"revoked_at"`
}

// Revoked reports whether the key has been revoked
func (k *APIKey) Revoked() bool {
	return k.RevokedAt != nil
}

// APIUsage represents the api_usage table
type APIUsage struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	KeyID           uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date            string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount    int    `gorm:"default:0" json:"request_count"`
	TotalDates      int    `gorm:"default:0" json:"total_dates"`
	TotalStaff      int    `gorm:"default:0" json:"total_staff"`
	TotalUnassigned int    `gorm:"default:0" json:"total_unassigned"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// InitDB opens Postgres when a URL is configured and SQLite otherwise,
// then migrates the schema
func InitDB(cfg *config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	if cfg.URL != "" {
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.URL,
			PreferSimpleProtocol: true,
		})
		gormCfg.PrepareStmt = false
		logger.Info("using postgres database")
	} else {
		dialector = sqlite.Open(cfg.Path)
		logger.Info("using sqlite database", zap.String("path", cfg.Path))
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.AutoMigrate(&APIKey{}, &APIUsage{}, &MasterUser{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// UsageDelta is what one API call adds to a key's daily usage row
type UsageDelta struct {
	Dates      int
	Staff      int
	Unassigned int
}

// RecordUsage upserts today's usage row for a key in a single query
// (supported by both Postgres and SQLite)
func RecordUsage(db *gorm.DB, keyID uint, delta UsageDelta) error {
	today := time.Now().UTC().Format("2006-01-02")

	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":    gorm.Expr("request_count + ?", 1),
			"total_dates":      gorm.Expr("total_dates + ?", delta.Dates),
			"total_staff":      gorm.Expr("total_staff + ?", delta.Staff),
			"total_unassigned": gorm.Expr("total_unassigned + ?", delta.Unassigned),
		}),
	}).Create(&APIUsage{
		KeyID:           keyID,
		Date:            today,
		RequestCount:    1,
		TotalDates:      delta.Dates,
		TotalStaff:      delta.Staff,
		TotalUnassigned: delta.Unassigned,
	}).Error
}
