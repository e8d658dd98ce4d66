package models

import "time"

// KVEntry backs the relational key/value store: one row per storage key
// holding a JSON document.
type KVEntry struct {
	Key       string    `gorm:"column:entry_key;primarykey;type:varchar(191)" json:"key"`
	Value     string    `gorm:"column:payload;type:text;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
