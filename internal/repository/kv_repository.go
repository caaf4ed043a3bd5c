package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskflow/internal/model"
)

// ErrNotFound is returned by Get when a key has never been written.
var ErrNotFound = errors.New("key not found")

// KVStore is a byte-valued local store addressed by fixed keys.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// KVRepository implements KVStore on the entries table.
type KVRepository struct {
	db *gorm.DB
}

func NewKVRepository(db *gorm.DB) *KVRepository {
	return &KVRepository{db: db}
}

func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrNotFound
	}
	var entry model.Entry
	err := r.db.WithContext(ctx).Where(&model.Entry{Key: key}).First(&entry).Error
	switch {
	case err == nil:
		return entry.Value, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
}

// Set overwrites the value stored under key.
func (r *KVRepository) Set(ctx context.Context, key string, value []byte) error {
	entry := model.Entry{Key: key, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (r *KVRepository) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where(&model.Entry{Key: key}).Delete(&model.Entry{}).Error; err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
