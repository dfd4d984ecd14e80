package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cultivated-hq/pulse-service/internal/models"
	"github.com/cultivated-hq/pulse-service/internal/repositories"
)

type repository struct {
	db        *gorm.DB
	sessions  repositories.FeedbackSessionRepository
	responses repositories.FeedbackResponseRepository
	audits    repositories.AuditResultRepository
}

// NewRepository wires the gorm stores over one connection pool
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:        db,
		sessions:  NewFeedbackSessionPostgreSQL(db),
		responses: NewFeedbackResponsePostgreSQL(db),
		audits:    NewAuditResultPostgreSQL(db),
	}
}

func (r *repository) Sessions() repositories.FeedbackSessionRepository   { return r.sessions }
func (r *repository) Responses() repositories.FeedbackResponseRepository { return r.responses }
func (r *repository) Audits() repositories.AuditResultRepository         { return r.audits }

func (r *repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// AutoMigrate creates or updates the schema
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.FeedbackSession{},
		&models.FeedbackResponse{},
		&models.AuditResult{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

var sessionSortColumns = map[string]string{
	"created_at":     "created_at",
	"expires_at":     "expires_at",
	"title":          "title",
	"response_count": "response_count",
}

// applyPaginationAndSort only orders by whitelisted columns
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int, columns map[string]string) *gorm.DB {
	column, ok := columns[sortBy]
	if !ok {
		column = "created_at"
	}

	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}
	query = query.Order(column + " " + direction)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
