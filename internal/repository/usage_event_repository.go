package repository

import (
	"fmt"

	"gorm.io/gorm"

	"docchat/internal/model"
)

type UsageEventRepository struct {
	db *gorm.DB
}

func NewUsageEventRepository(db *gorm.DB) *UsageEventRepository {
	return &UsageEventRepository{db: db}
}

func (r *UsageEventRepository) Create(event *model.UsageEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("create usage event failed: %w", err)
	}
	return nil
}
