package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cultivated-hq/pulse-service/internal/models"
	"github.com/cultivated-hq/pulse-service/internal/repositories"
)

type FeedbackResponsePostgreSQL struct {
	db *gorm.DB
}

func NewFeedbackResponsePostgreSQL(db *gorm.DB) repositories.FeedbackResponseRepository {
	return &FeedbackResponsePostgreSQL{db: db}
}

func (f *FeedbackResponsePostgreSQL) Create(ctx context.Context, tx *gorm.DB, response *models.FeedbackResponse) error {
	db := f.getDB(tx)
	if err := db.WithContext(ctx).Create(response).Error; err != nil {
		return fmt.Errorf("failed to create feedback response: %w", err)
	}
	return nil
}

// ListBySession returns responses oldest first
func (f *FeedbackResponsePostgreSQL) ListBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*models.FeedbackResponse, error) {
	var responses []*models.FeedbackResponse
	err := f.getDB(tx).WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("submitted_at ASC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func (f *FeedbackResponsePostgreSQL) CountBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (int64, error) {
	var count int64
	err := f.getDB(tx).WithContext(ctx).
		Model(&models.FeedbackResponse{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

func (f *FeedbackResponsePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return f.db
}
