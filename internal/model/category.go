package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Category groups tasks by area (work, health, study, etc.). TaskCount and
// CompletedCount are derived from the task list and only written by aggregation.
type Category struct {
	ID             string `json:"id" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Icon           string `json:"icon" validate:"required"`
	Color          string `json:"color" validate:"required"`
	TaskCount      int    `json:"taskCount"`
	CompletedCount int    `json:"completedCount"`
	IsCustom       bool   `json:"isCustom"`
}

func NewCategory(name, icon, color string, custom bool) (Category, error) {
	category := Category{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		Icon:     strings.TrimSpace(icon),
		Color:    strings.TrimSpace(color),
		IsCustom: custom,
	}
	if err := ValidateCategory(category); err != nil {
		return Category{}, err
	}
	return category, nil
}

// DefaultCategories returns the seed set used when nothing has been stored yet.
// Each call returns fresh ids.
func DefaultCategories() []Category {
	seed := []struct{ name, icon, color string }{
		{"Work", "briefcase.fill", "#FF9500"},
		{"Personal", "person.fill", "#FF2D55"},
		{"Music", "music.note", "#BF5AF2"},
		{"Travel", "airplane", "#32D74B"},
		{"Study", "book.fill", "#5E5CE6"},
		{"Home", "house.fill", "#FF3B30"},
		{"Shopping", "cart.fill", "#64D2FF"},
		{"Health", "heart.fill", "#30B0C7"},
		{"Finance", "dollarsign.circle.fill", "#30D158"},
	}
	categories := make([]Category, 0, len(seed))
	for _, s := range seed {
		categories = append(categories, Category{
			ID:    uuid.NewString(),
			Name:  s.name,
			Icon:  s.icon,
			Color: s.color,
		})
	}
	return categories
}

// RGB is a color decoded from a "#RRGGBB" string.
type RGB struct {
	R, G, B uint8
}

// ParseColor decodes "#RRGGBB". The leading '#' is optional.
func ParseColor(hex string) (RGB, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("color %q: want 6 hex digits", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("color %q: %w", hex, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
