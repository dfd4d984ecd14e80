package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cultivated-hq/pulse-service/internal/models"
	"github.com/cultivated-hq/pulse-service/internal/repositories"
)

type FeedbackSessionPostgreSQL struct {
	db *gorm.DB
}

func NewFeedbackSessionPostgreSQL(db *gorm.DB) repositories.FeedbackSessionRepository {
	return &FeedbackSessionPostgreSQL{db: db}
}

// Create inserts a new session
func (f *FeedbackSessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.FeedbackSession) error {
	db := f.getDB(tx)
	if err := db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create feedback session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by ID
func (f *FeedbackSessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.FeedbackSession, error) {
	db := f.getDB(tx)
	var session models.FeedbackSession
	if err := db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// List retrieves sessions with filters and pagination
func (f *FeedbackSessionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SessionFilters) ([]*models.FeedbackSession, int64, error) {
	query := f.getDB(tx).WithContext(ctx).Model(&models.FeedbackSession{})

	// Apply filters
	if filters.ManagerEmail != "" {
		query = query.Where("manager_email = ?", strings.ToLower(filters.ManagerEmail))
	}
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	// Count total
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sessions []*models.FeedbackSession
	err := applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset, sessionSortColumns).
		Find(&sessions).Error
	if err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

// IncrementResponseCount adds one to the stored response count
func (f *FeedbackSessionPostgreSQL) IncrementResponseCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	result := f.getDB(tx).WithContext(ctx).
		Model(&models.FeedbackSession{}).
		Where("id = ?", id).
		UpdateColumn("response_count", gorm.Expr("response_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetResponseCount overwrites the stored response count
func (f *FeedbackSessionPostgreSQL) SetResponseCount(ctx context.Context, tx *gorm.DB, id uuid.UUID, count int) error {
	return f.getDB(tx).WithContext(ctx).
		Model(&models.FeedbackSession{}).
		Where("id = ?", id).
		Update("response_count", count).Error
}

// Deactivate stops a session from accepting responses
func (f *FeedbackSessionPostgreSQL) Deactivate(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	result := f.getDB(tx).WithContext(ctx).
		Model(&models.FeedbackSession{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkReportSent records a delivered report and closes the session
func (f *FeedbackSessionPostgreSQL) MarkReportSent(ctx context.Context, tx *gorm.DB, id uuid.UUID, sentAt time.Time) error {
	return f.getDB(tx).WithContext(ctx).
		Model(&models.FeedbackSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"report_generated": true,
			"report_sent":      true,
			"report_sent_at":   sentAt,
			"is_active":        false,
		}).Error
}

// ListExpiredUnreported returns active sessions past expiry whose report has not been sent
func (f *FeedbackSessionPostgreSQL) ListExpiredUnreported(ctx context.Context, tx *gorm.DB, now time.Time, limit int) ([]*models.FeedbackSession, error) {
	query := f.getDB(tx).WithContext(ctx).
		Where("expires_at < ? AND is_active = ? AND report_sent = ?", now, true, false).
		Order("expires_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var sessions []*models.FeedbackSession
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// DeactivateExpiredBefore closes sessions that expired before the cutoff and are still active
func (f *FeedbackSessionPostgreSQL) DeactivateExpiredBefore(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error) {
	result := f.getDB(tx).WithContext(ctx).
		Model(&models.FeedbackSession{}).
		Where("expires_at < ? AND is_active = ?", before, true).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

// CountExpiredUnreported counts the sessions the processor still owes a report
func (f *FeedbackSessionPostgreSQL) CountExpiredUnreported(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	var count int64
	err := f.getDB(tx).WithContext(ctx).
		Model(&models.FeedbackSession{}).
		Where("expires_at < ? AND is_active = ? AND report_sent = ?", now, true, false).
		Count(&count).Error
	return count, err
}

// ListReportedSince returns sessions whose report went out after since, latest first
func (f *FeedbackSessionPostgreSQL) ListReportedSince(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*models.FeedbackSession, error) {
	query := f.getDB(tx).WithContext(ctx).
		Where("report_sent = ? AND report_sent_at > ?", true, since).
		Order("report_sent_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var sessions []*models.FeedbackSession
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

const processingCountsSelect = `COUNT(*) AS total,
	COUNT(*) FILTER (WHERE is_active = false) AS closed,
	COUNT(*) FILTER (WHERE is_active = false AND report_sent = true) AS reported,
	COUNT(*) FILTER (WHERE response_count = 0) AS no_responses,
	COALESCE(AVG(response_count), 0)::float8 AS avg_responses`

// CountProcessing aggregates the sessions that expired between from and to
func (f *FeedbackSessionPostgreSQL) CountProcessing(ctx context.Context, tx *gorm.DB, from, to time.Time) (*repositories.ProcessingCounts, error) {
	var counts repositories.ProcessingCounts
	err := f.getDB(tx).WithContext(ctx).
		Model(&models.FeedbackSession{}).
		Select(processingCountsSelect).
		Where("expires_at BETWEEN ? AND ?", from, to).
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count processed sessions: %w", err)
	}
	return &counts, nil
}

func (f *FeedbackSessionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return f.db
}
