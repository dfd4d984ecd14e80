package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cultivated-hq/pulse-service/internal/models"
	"github.com/cultivated-hq/pulse-service/internal/repositories"
)

type AuditResultPostgreSQL struct {
	db *gorm.DB
}

func NewAuditResultPostgreSQL(db *gorm.DB) repositories.AuditResultRepository {
	return &AuditResultPostgreSQL{db: db}
}

func (a *AuditResultPostgreSQL) Create(ctx context.Context, tx *gorm.DB, result *models.AuditResult) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Create(result).Error; err != nil {
		return fmt.Errorf("failed to create audit result: %w", err)
	}
	return nil
}

func (a *AuditResultPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.AuditResult, error) {
	var result models.AuditResult
	if err := a.getDB(tx).WithContext(ctx).First(&result, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// GetLatestByEmail returns the most recent audit for an email address
func (a *AuditResultPostgreSQL) GetLatestByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.AuditResult, error) {
	var result models.AuditResult
	err := a.getDB(tx).WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("created_at DESC").
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (a *AuditResultPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}
