package model

import (
	"time"

	"gorm.io/datatypes"
)

// KeyValue is one durable entry; the snapshot lives in a single row.
type KeyValue struct {
	Key       string         `gorm:"type:varchar(255);primaryKey"`
	Value     datatypes.JSON `gorm:"type:json;not null"` // stored as written, not normalized
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (KeyValue) TableName() string {
	return "key_value_entries"
}
