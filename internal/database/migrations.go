package database

import (
	"fmt"

	"github.com/yukikurage/taskboard/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddIndexes creates secondary indexes that AutoMigrate does not declare.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		name    string
		columns string
	}{
		{"idx_kv_entries_updated_at", "updated_at"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(&models.KVEntry{}, idx.name) {
			log.Debug("index already exists, skipping", zap.String("index", idx.name))
			continue
		}
		sql := fmt.Sprintf("CREATE INDEX %s ON kv_entries (%s)", idx.name, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
		log.Info("created index", zap.String("index", idx.name))
	}
	return nil
}
