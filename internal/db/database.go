package db

import (
	"errors"
	"fmt"

	"goduck/internal/config"
	"goduck/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ErrDuplicateKey is returned when an insert violates the key uniqueness
// constraint.
var ErrDuplicateKey = errors.New("api key already exists")

// ErrKeyNotFound is returned when a delete target does not exist.
var ErrKeyNotFound = errors.New("api key not found")

// Service is the persistence contract for client API keys.
type Service interface {
	// CreateAPIKey inserts the key and populates its ID in a single atomic
	// operation. Returns ErrDuplicateKey when the key value already exists.
	CreateAPIKey(key *model.APIKey) error
	// APIKeyExists reports whether a key with the exact value exists.
	APIKeyExists(key string) (bool, error)
	// ListAPIKeys returns all keys in the storage engine's native order.
	ListAPIKeys() ([]model.APIKey, error)
	// DeleteAPIKey removes the row matching the key value exactly.
	// Returns ErrKeyNotFound when no row was removed.
	DeleteAPIKey(key string) error
	// IncrementAPIKeyUsage atomically increments the usage count for a key.
	IncrementAPIKeyUsage(key string) error
	// ResetAllAPIKeyUsage resets the usage count of all API keys to 0.
	ResetAllAPIKeyUsage() error
	// GetDB exposes the underlying handle for tests.
	GetDB() *gorm.DB
}

type service struct {
	db *gorm.DB
}

// NewService opens the configured database and ensures the schema exists.
// It is safe to call on every process start.
func NewService(cfg config.DatabaseConfig) (Service, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&model.APIKey{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return &service{db: db}, nil
}

func (s *service) CreateAPIKey(key *model.APIKey) error {
	if err := s.db.Create(key).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create api key: %w", err)
	}
	return nil
}

func (s *service) APIKeyExists(key string) (bool, error) {
	var count int64
	result := s.db.Model(&model.APIKey{}).Where("key = ?", key).Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to look up api key: %w", result.Error)
	}
	return count > 0, nil
}

func (s *service) ListAPIKeys() ([]model.APIKey, error) {
	var keys []model.APIKey
	if result := s.db.Find(&keys); result.Error != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", result.Error)
	}
	return keys, nil
}

func (s *service) DeleteAPIKey(key string) error {
	result := s.db.Where("key = ?", key).Delete(&model.APIKey{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete api key: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrKeyNotFound
	}
	return nil
}

func (s *service) IncrementAPIKeyUsage(key string) error {
	result := s.db.Model(&model.APIKey{}).Where("key = ?", key).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment usage count for api key: %w", result.Error)
	}
	// RowsAffected may be 0 if the key was deleted in the meantime.
	return nil
}

func (s *service) ResetAllAPIKeyUsage() error {
	result := s.db.Model(&model.APIKey{}).Where("usage_count > 0").Update("usage_count", 0)
	if result.Error != nil {
		return fmt.Errorf("failed to reset all api key usage: %w", result.Error)
	}
	return nil
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}
