package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// GormStore backs RoomMetadataStore with Postgres via GORM, for
// deployments that want room metadata to survive a process restart.
type GormStore struct {
	db *gorm.DB
}

// OpenGormStore connects to Postgres using dsn and migrates the
// room_metadata table.
func OpenGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("persistence: open postgres: %w", err)
	}
	if err := db.AutoMigrate(&RoomMetadata{}); err != nil {
		return nil, fmt.Errorf("persistence: automigrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Save(ctx context.Context, m RoomMetadata) error {
	return s.db.WithContext(ctx).Save(&m).Error
}

func (s *GormStore) Get(ctx context.Context, roomID string) (RoomMetadata, bool, error) {
	var m RoomMetadata
	err := s.db.WithContext(ctx).First(&m, "room_id = ?", roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RoomMetadata{}, false, nil
	}
	if err != nil {
		return RoomMetadata{}, false, err
	}
	return m, true, nil
}

func (s *GormStore) Delete(ctx context.Context, roomID string) error {
	return s.db.WithContext(ctx).Delete(&RoomMetadata{}, "room_id = ?", roomID).Error
}

func (s *GormStore) List(ctx context.Context) ([]RoomMetadata, error) {
	var rows []RoomMetadata
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
