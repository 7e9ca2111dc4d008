// Package local implements the task store on an on-disk key/value store that
// plays the role of browser local storage.
package local

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"taskr/internal/service"
)

// Keys used in local storage.
const (
	TasksKey         = "tasks"
	CookieConsentKey = "cookieConsent"
)

// entry is one key/value pair.
type entry struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (entry) TableName() string { return "local_storage" }

// Storage is a string key/value store backed by SQLite.
type Storage struct {
	db *gorm.DB
}

var _ service.Preferences = (*Storage)(nil)

// ErrNoItem is returned by GetItem for a missing key.
var ErrNoItem = errors.New("no such item")

// Open opens (creating if needed) the storage database at dsn.
func Open(dsn string) (*Storage, error) {
	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stderr, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Error,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("migrate storage: %w", err)
	}
	return &Storage{db: db}, nil
}

// GetItem returns the value stored under key, or ErrNoItem.
func (s *Storage) GetItem(ctx context.Context, key string) (string, error) {
	var e entry
	err := s.db.WithContext(ctx).Where("`key` = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNoItem
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return e.Value, nil
}

// SetItem stores value under key, replacing any previous value.
func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	e := entry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key. Missing keys are not an error.
func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("`key` = ?", key).Delete(&entry{}).Error; err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// CookieConsent implements service.Preferences.
func (s *Storage) CookieConsent(ctx context.Context) (bool, error) {
	v, err := s.GetItem(ctx, CookieConsentKey)
	if errors.Is(err, ErrNoItem) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

// AcceptCookieConsent implements service.Preferences.
func (s *Storage) AcceptCookieConsent(ctx context.Context) error {
	return s.SetItem(ctx, CookieConsentKey, "true")
}

// Close closes the underlying database.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create storage dir %q: %w", dir, err)
	}
	return nil
}
