package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cultivated-hq/pulse-service/internal/models"
	"github.com/cultivated-hq/pulse-service/internal/questionnaire"
	"github.com/cultivated-hq/pulse-service/internal/report"
	"github.com/cultivated-hq/pulse-service/internal/repositories"
	"github.com/cultivated-hq/pulse-service/internal/scoring"
)

// ===== SERVICE INTERFACES =====

// AuditService scores, persists and delivers Leadership Clarity Audits
type AuditService interface {
	Questionnaire() *AuditQuestionnaire
	Score(ctx context.Context, req *ScoreAuditRequest) (*AuditScore, error)
	SubmitResults(ctx context.Context, req *SubmitAuditRequest) (*AuditSubmission, error)
	DeliverReport(ctx context.Context, req *AuditReportRequest) (*models.AuditResult, error)
	RenderReport(ctx context.Context, id uuid.UUID) (string, error)
}

// SessionService manages the lifecycle of feedback sessions
type SessionService interface {
	Create(ctx context.Context, req *CreateSessionRequest) (*SessionResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.FeedbackSession, error)
	GetPublic(ctx context.Context, id uuid.UUID) (*PublicSession, error)
	List(ctx context.Context, filters repositories.SessionFilters) (*SessionListResponse, error)
	Close(ctx context.Context, id uuid.UUID) error
}

// ResponseService accepts anonymous answers for open sessions
type ResponseService interface {
	Submit(ctx context.Context, sessionID uuid.UUID, req *SubmitResponseRequest) (*SubmitResponseResult, error)
}

// AnalyticsService aggregates session responses for the admin views
type AnalyticsService interface {
	GetSessionResults(ctx context.Context, sessionID uuid.UUID) (*SessionResults, error)
	GetSessionAnalytics(ctx context.Context, session *models.FeedbackSession) (*scoring.SessionAnalytics, error)
	InvalidateSession(ctx context.Context, sessionID uuid.UUID)
}

// ReportService renders and delivers session reports
type ReportService interface {
	SendSessionReport(ctx context.Context, sessionID uuid.UUID, opts SessionReportOptions) (*SessionReport, error)
	ProcessExpiredSessions(ctx context.Context, opts ProcessOptions) (*ProcessingSummary, error)
	ArchiveStaleSessions(ctx context.Context, olderThan time.Duration) (int64, error)
	GetProcessingStats(ctx context.Context, window time.Duration) (*ProcessingStats, error)
}

// ExportService builds spreadsheet exports of session data
type ExportService interface {
	ExportSession(ctx context.Context, sessionID uuid.UUID) (*ExportFile, error)
}

// ===== AUDIT DTOs =====

type AuditQuestionnaire struct {
	*questionnaire.Questionnaire
	Questions   []questionnaire.Question `json:"questions"`
	ScaleLabels []string                 `json:"scale_labels"`
}

type ScoreAuditRequest struct {
	Answers map[int]int `json:"answers" validate:"required"`
}

// AuditScore is the scored audit together with its qualitative interpretation
type AuditScore struct {
	*scoring.Result
	Band            string               `json:"band"`
	Feedback        scoring.Feedback     `json:"feedback"`
	Quadrant        report.QuadrantPoint `json:"quadrant"`
	CategoryBands   map[string]string    `json:"category_bands"`
	SummaryMarkdown string               `json:"summary_markdown"`
}

type SubmitAuditRequest struct {
	Email   string      `json:"email" validate:"required,email,max=255"`
	Name    *string     `json:"name,omitempty" validate:"omitempty,max=100"`
	Answers map[int]int `json:"answers" validate:"required"`

	// SummaryMarkdown is accepted from older clients but the server always rescores
	SummaryMarkdown string `json:"summary_markdown,omitempty"`
}

type AuditSubmission struct {
	AuditID     uuid.UUID   `json:"audit_id"`
	Score       *AuditScore `json:"score"`
	EmailSent   bool        `json:"email_sent"`
	MinimalMode bool        `json:"minimal_mode"`
	Status      string      `json:"status"`
}

// AuditReportRequest selects an audit by id, or the latest one for an email
type AuditReportRequest struct {
	SessionID string `json:"sessionId" validate:"omitempty,uuid"`
	Email     string `json:"email" validate:"omitempty,email"`
}

// ===== SESSION DTOs =====

type CreateSessionRequest struct {
	Title        string                  `json:"title" validate:"not_blank,max=200"`
	Description  *string                 `json:"description,omitempty" validate:"omitempty,max=2000"`
	Questions    []string                `json:"questions" validate:"max=30,dive,max=1000"`
	ScaleType    questionnaire.ScaleType `json:"scale_type" validate:"required,scale_type"`
	ManagerName  string                  `json:"manager_name" validate:"not_blank,max=100"`
	ManagerEmail string                  `json:"manager_email" validate:"required,email,max=255"`
}

type SessionResponse struct {
	*models.FeedbackSession
	SurveyURL string `json:"survey_url"`
}

type SessionListResponse struct {
	Sessions []*models.FeedbackSession `json:"sessions"`
	Total    int64                     `json:"total"`
	Limit    int                       `json:"limit"`
	Offset   int                       `json:"offset"`
}

// PublicSession is what a respondent sees; it carries no manager email
type PublicSession struct {
	ID               uuid.UUID               `json:"id"`
	Title            string                  `json:"title"`
	Description      *string                 `json:"description,omitempty"`
	ManagerName      string                  `json:"manager_name"`
	Questions        []string                `json:"questions"`
	OpenTextPrompt   string                  `json:"open_text_prompt,omitempty"`
	ScaleType        questionnaire.ScaleType `json:"scale_type"`
	ScaleLabels      []string                `json:"scale_labels"`
	ExpiresAt        time.Time               `json:"expires_at"`
	Status           models.SessionStatus    `json:"status"`
	RemainingSeconds int64                   `json:"remaining_seconds"`
}

type SubmitResponseRequest struct {
	Responses []int  `json:"responses" validate:"required"`
	OpenText  string `json:"open_text" validate:"max=5000"`
	Comment   string `json:"comment" validate:"max=5000"`
}

type SubmitResponseResult struct {
	ResponseID    uuid.UUID `json:"response_id"`
	SessionID     uuid.UUID `json:"session_id"`
	ResponseCount int       `json:"response_count"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

type SessionResults struct {
	Session   *models.FeedbackSession    `json:"session"`
	Responses []*models.FeedbackResponse `json:"responses"`
	Analytics *scoring.SessionAnalytics  `json:"analytics"`
}

// ===== REPORT DTOs =====

type SessionReportOptions struct {
	// Preview renders without sending or marking the session
	Preview bool
	// Interim sends the report but leaves the session open for the final report
	Interim bool
}

type SessionReport struct {
	SessionID uuid.UUID `json:"session_id"`
	Recipient string    `json:"recipient"`
	Sent      bool      `json:"sent"`
	HTML      string    `json:"-"`
}

type ProcessOptions struct {
	Now   time.Time
	Limit int
	// DryRun lists the sessions that would be processed
	DryRun bool
}

type ProcessingSummary struct {
	Found     int      `json:"found"`
	Processed int      `json:"processed"`
	Failed    int      `json:"failed"`
	Sessions  []string `json:"sessions"`
	Errors    []string `json:"errors,omitempty"`
}

// ProcessingStats reports how the expired-session processor is keeping up
type ProcessingStats struct {
	GeneratedAt time.Time `json:"generated_at"`
	WindowDays  int       `json:"window_days"`

	// Pending sessions are expired, still active and unreported
	Pending           int64              `json:"pending"`
	RecentlyProcessed []ProcessedSession `json:"recently_processed"`

	// Sessions that expired inside the window
	Expired              int64   `json:"expired"`
	Processed            int64   `json:"processed"`
	SuccessRatePercent   float64 `json:"success_rate_percent"`
	TotalSessions        int64   `json:"total_sessions"`
	AvgResponses         float64 `json:"avg_responses_per_session"`
	NoResponses          int64   `json:"sessions_with_no_responses"`
	PercentWithResponses float64 `json:"percent_with_responses"`
}

type ProcessedSession struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	ExpiresAt     time.Time  `json:"expires_at"`
	ReportSentAt  *time.Time `json:"report_sent_at"`
	ResponseCount int        `json:"response_count"`
}

type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
