package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yukikurage/taskboard/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps values in the kv_entries table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store on top of db. The kv_entries table must
// already exist; see database.Migrate.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, key string, dest any) error {
	var entry models.KVEntry
	if err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrKeyNotFound
		}
		return fmt.Errorf("load %s: %w", key, err)
	}
	return decode(key, []byte(entry.Value), dest)
}

func (s *GormStore) Save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	entry := models.KVEntry{Key: key, Value: string(raw)}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
