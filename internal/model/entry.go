package model

import "time"

// Entry is one row of the local key-value store.
type Entry struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}
