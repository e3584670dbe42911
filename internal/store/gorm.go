package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DoyleJ11/worldcup-draw-backend/internal/engine"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Draw is one saved draw. DrawData holds the JSON array of groups.
type Draw struct {
	ID        string    `gorm:"primaryKey;size:16"`
	DrawData  string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Draw) TableName() string { return "draws" }

const maxIDAttempts = 5

type GormStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// OpenGorm connects to Postgres and migrates the draws table.
func OpenGorm(dsn string, log *zap.Logger) (*GormStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewGormStore(db, log)
}

func NewGormStore(db *gorm.DB, log *zap.Logger) (*GormStore, error) {
	if err := db.AutoMigrate(&Draw{}); err != nil {
		return nil, fmt.Errorf("migrate draws: %w", err)
	}
	return &GormStore{db: db, log: log}, nil
}

func (s *GormStore) Save(ctx context.Context, groups []engine.Group) (string, error) {
	raw, err := json.Marshal(groups)
	if err != nil {
		return "", err
	}
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := NewID()
		if err != nil {
			return "", err
		}
		err = s.db.WithContext(ctx).Create(&Draw{ID: id, DrawData: string(raw)}).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.log.Warn("store: id collision, retrying", zap.String("id", id))
			continue
		}
		if err != nil {
			return "", fmt.Errorf("save draw: %w", err)
		}
		return id, nil
	}
	return "", fmt.Errorf("save draw: no free id after %d attempts", maxIDAttempts)
}

func (s *GormStore) Fetch(ctx context.Context, id string) ([]engine.Group, error) {
	var d Draw
	err := s.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch draw %s: %w", id, err)
	}
	var groups []engine.Group
	if err := json.Unmarshal([]byte(d.DrawData), &groups); err != nil {
		return nil, fmt.Errorf("decode draw %s: %w", id, err)
	}
	return groups, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
