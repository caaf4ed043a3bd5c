package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"taskflow/internal/logger"
	"taskflow/internal/model"
)

const categoriesKey = "savedCategories"

// CategoryRepository persists the category list as one JSON array.
type CategoryRepository struct {
	kv KVStore
}

func NewCategoryRepository(kv KVStore) *CategoryRepository {
	return &CategoryRepository{kv: kv}
}

func (r *CategoryRepository) Save(ctx context.Context, categories []model.Category) error {
	if categories == nil {
		categories = []model.Category{}
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	return r.kv.Set(ctx, categoriesKey, data)
}

// Load returns the stored categories, falling back to model.DefaultCategories
// when nothing is stored or decoding fails. A stored empty list is kept.
func (r *CategoryRepository) Load(ctx context.Context) []model.Category {
	categories, err := r.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Get().Warnw("load categories, using defaults", "error", err)
		}
		return model.DefaultCategories()
	}
	return categories
}

// Fetch returns the stored list without fallbacks. ErrNotFound means nothing
// has been saved yet.
func (r *CategoryRepository) Fetch(ctx context.Context) ([]model.Category, error) {
	data, err := r.kv.Get(ctx, categoriesKey)
	if err != nil {
		return nil, err
	}
	var categories []model.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("decode stored categories: %w", err)
	}
	if categories == nil {
		return nil, fmt.Errorf("decode stored categories: null list")
	}
	return categories, nil
}
