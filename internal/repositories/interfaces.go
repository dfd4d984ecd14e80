package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cultivated-hq/pulse-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type SessionFilters struct {
	ManagerEmail string `json:"manager_email"`
	ActiveOnly   bool   `json:"active_only"`
	Limit        int    `json:"limit"`
	Offset       int    `json:"offset"`
	SortBy       string `json:"sort_by"`    // "created_at", "expires_at", "title", "response_count"
	SortOrder    string `json:"sort_order"` // "asc", "desc"
}

// ProcessingCounts summarises the sessions that expired inside a window
type ProcessingCounts struct {
	Total        int64   `json:"total"`
	Closed       int64   `json:"closed"`
	Reported     int64   `json:"reported"`
	NoResponses  int64   `json:"no_responses"`
	AvgResponses float64 `json:"avg_responses"`
}

// ===== REPOSITORY INTERFACES =====

// FeedbackSessionRepository persists feedback sessions
type FeedbackSessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.FeedbackSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.FeedbackSession, error)
	List(ctx context.Context, tx *gorm.DB, filters SessionFilters) ([]*models.FeedbackSession, int64, error)

	// Counters and lifecycle
	IncrementResponseCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	SetResponseCount(ctx context.Context, tx *gorm.DB, id uuid.UUID, count int) error
	Deactivate(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	MarkReportSent(ctx context.Context, tx *gorm.DB, id uuid.UUID, sentAt time.Time) error

	// Processing
	ListExpiredUnreported(ctx context.Context, tx *gorm.DB, now time.Time, limit int) ([]*models.FeedbackSession, error)
	DeactivateExpiredBefore(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error)

	// Monitoring
	CountExpiredUnreported(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error)
	ListReportedSince(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*models.FeedbackSession, error)
	CountProcessing(ctx context.Context, tx *gorm.DB, from, to time.Time) (*ProcessingCounts, error)
}

// FeedbackResponseRepository persists anonymous session responses
type FeedbackResponseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, response *models.FeedbackResponse) error
	ListBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*models.FeedbackResponse, error)
	CountBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (int64, error)
}

// AuditResultRepository persists clarity audit results. There is no update.
type AuditResultRepository interface {
	Create(ctx context.Context, tx *gorm.DB, result *models.AuditResult) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.AuditResult, error)
	GetLatestByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.AuditResult, error)
}

// Repository groups the stores behind one transaction boundary
type Repository interface {
	Sessions() FeedbackSessionRepository
	Responses() FeedbackResponseRepository
	Audits() AuditResultRepository

	// WithTransaction runs fn inside a database transaction; fn receives the tx to pass to the stores
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// IsNotFoundError reports whether err means the record does not exist
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
