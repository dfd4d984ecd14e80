package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"

	"github.com/cultivated-hq/pulse-service/internal/delivery"
	"github.com/cultivated-hq/pulse-service/internal/events"
	"github.com/cultivated-hq/pulse-service/internal/metrics"
	"github.com/cultivated-hq/pulse-service/internal/models"
	"github.com/cultivated-hq/pulse-service/internal/report"
	"github.com/cultivated-hq/pulse-service/internal/repositories"
)

const (
	defaultProcessLimit  = 50
	defaultStatsWindow   = 7 * 24 * time.Hour
	recentlyProcessedFor = 24 * time.Hour
	recentlyProcessedMax = 50
)

type reportService struct {
	repo      repositories.Repository
	analytics AnalyticsService
	renderer  *report.Renderer
	mailer    delivery.Mailer
	notifier  NotificationEventService
	logger    *slog.Logger
	settings  Settings
}

func NewReportService(
	repo repositories.Repository,
	analytics AnalyticsService,
	renderer *report.Renderer,
	mailer delivery.Mailer,
	notifier NotificationEventService,
	logger *slog.Logger,
	settings Settings,
) ReportService {
	return &reportService{
		repo:      repo,
		analytics: analytics,
		renderer:  renderer,
		mailer:    mailer,
		notifier:  notifier,
		logger:    logger,
		settings:  settings.withDefaults(),
	}
}

// SendSessionReport renders the feedback report and emails it to the manager.
// A session is marked as reported only once it has expired and the email went out.
func (s *reportService) SendSessionReport(ctx context.Context, sessionID uuid.UUID, opts SessionReportOptions) (*SessionReport, error) {
	session, err := s.repo.Sessions().GetByID(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get feedback session: %w", err)
	}
	// Interim reports and previews may repeat; the final report goes out once
	if session.ReportSent && !opts.Preview && !opts.Interim {
		return nil, ErrReportNotAllowed
	}

	now := s.settings.Now()
	html, err := s.render(ctx, session, now)
	if err != nil {
		return nil, err
	}

	out := &SessionReport{
		SessionID: session.ID,
		Recipient: session.ManagerEmail,
		HTML:      html,
	}
	if opts.Preview {
		return out, nil
	}

	if err := s.send(ctx, session, html); err != nil {
		return nil, err
	}
	out.Sent = true

	if !opts.Interim && session.IsExpired(now) {
		if err := s.repo.Sessions().MarkReportSent(ctx, nil, session.ID, now); err != nil {
			return out, fmt.Errorf("failed to mark report sent: %w", err)
		}
	}
	return out, nil
}

// ProcessExpiredSessions sends the final report of every expired, unreported, still active
// session. Sessions whose delivery fails stay untouched and are retried on the next run.
func (s *reportService) ProcessExpiredSessions(ctx context.Context, opts ProcessOptions) (*ProcessingSummary, error) {
	start := time.Now()
	defer metrics.ObserveProcessingRun(start)

	now := opts.Now
	if now.IsZero() {
		now = s.settings.Now()
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultProcessLimit
	}

	sessions, err := s.repo.Sessions().ListExpiredUnreported(ctx, nil, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired sessions: %w", err)
	}

	summary := &ProcessingSummary{
		Found:    len(sessions),
		Sessions: make([]string, 0, len(sessions)),
	}
	s.logger.Info("Processing expired sessions", "found", len(sessions), "dry_run", opts.DryRun)

	for _, session := range sessions {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.Sessions = append(summary.Sessions, session.ID.String())
		if opts.DryRun {
			continue
		}

		if err := s.processSession(ctx, session, now); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", session.ID, err))
			s.logger.Error("Failed to process expired session", "session_id", session.ID, "error", err)
			continue
		}

		summary.Processed++
		metrics.ExpiredSessionProcessed()
	}

	s.logger.Info("Expired session processing finished",
		"found", summary.Found,
		"processed", summary.Processed,
		"failed", summary.Failed,
		"duration", time.Since(start))
	return summary, nil
}

func (s *reportService) processSession(ctx context.Context, session *models.FeedbackSession, now time.Time) error {
	// Recount from stored responses
	count, err := s.repo.Responses().CountBySession(ctx, nil, session.ID)
	if err != nil {
		return fmt.Errorf("failed to count responses: %w", err)
	}
	if int(count) != session.ResponseCount {
		if err := s.repo.Sessions().SetResponseCount(ctx, nil, session.ID, int(count)); err != nil {
			return fmt.Errorf("failed to update response count: %w", err)
		}
		session.ResponseCount = int(count)
	}

	html, err := s.render(ctx, session, now)
	if err != nil {
		return err
	}
	if err := s.send(ctx, session, html); err != nil {
		return err
	}

	if err := s.repo.Sessions().MarkReportSent(ctx, nil, session.ID, now); err != nil {
		return fmt.Errorf("failed to mark report sent: %w", err)
	}
	return nil
}

// ArchiveStaleSessions deactivates sessions that expired more than olderThan ago
func (s *reportService) ArchiveStaleSessions(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.settings.Now().Add(-olderThan)
	archived, err := s.repo.Sessions().DeactivateExpiredBefore(ctx, nil, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to archive stale sessions: %w", err)
	}
	if archived > 0 {
		s.logger.Info("Archived stale sessions", "count", archived, "cutoff", cutoff)
	}
	return archived, nil
}

// GetProcessingStats summarises processor health: what is still owed, what went out
// in the last day, and how sessions that expired inside window fared
func (s *reportService) GetProcessingStats(ctx context.Context, window time.Duration) (*ProcessingStats, error) {
	if window <= 0 {
		window = defaultStatsWindow
	}
	now := s.settings.Now()
	sessions := s.repo.Sessions()

	pending, err := sessions.CountExpiredUnreported(ctx, nil, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending sessions: %w", err)
	}

	recent, err := sessions.ListReportedSince(ctx, nil, now.Add(-recentlyProcessedFor), recentlyProcessedMax)
	if err != nil {
		return nil, fmt.Errorf("failed to list processed sessions: %w", err)
	}

	counts, err := sessions.CountProcessing(ctx, nil, now.Add(-window), now)
	if err != nil {
		return nil, err
	}

	out := &ProcessingStats{
		GeneratedAt:       now,
		WindowDays:        int(window / (24 * time.Hour)),
		Pending:           pending,
		RecentlyProcessed: make([]ProcessedSession, 0, len(recent)),
		Expired:           counts.Closed,
		Processed:         counts.Reported,
		TotalSessions:     counts.Total,
		NoResponses:       counts.NoResponses,
	}
	for _, session := range recent {
		out.RecentlyProcessed = append(out.RecentlyProcessed, ProcessedSession{
			ID:            session.ID,
			Title:         session.Title,
			ExpiresAt:     session.ExpiresAt,
			ReportSentAt:  session.ReportSentAt,
			ResponseCount: session.ResponseCount,
		})
	}

	out.AvgResponses, _ = stats.Round(counts.AvgResponses, 2)
	if counts.Closed > 0 {
		out.SuccessRatePercent, _ = stats.Round(float64(counts.Reported)/float64(counts.Closed)*100, 2)
	}
	if counts.Total > 0 {
		out.PercentWithResponses, _ = stats.Round(float64(counts.Total-counts.NoResponses)/float64(counts.Total)*100, 2)
	}

	return out, nil
}

func (s *reportService) render(ctx context.Context, session *models.FeedbackSession, now time.Time) (string, error) {
	analytics, err := s.analytics.GetSessionAnalytics(ctx, session)
	if err != nil {
		return "", err
	}

	description := ""
	if session.Description != nil {
		description = *session.Description
	}

	html, err := s.renderer.RenderSessionReport(report.SessionInput{
		ManagerName: session.ManagerName,
		Title:       session.Title,
		Description: description,
		ScaleType:   session.ScaleType,
		CreatedAt:   session.CreatedAt,
		ExpiresAt:   session.ExpiresAt,
		Analytics:   analytics,
	}, now)
	if err != nil {
		return "", fmt.Errorf("failed to render session report: %w", err)
	}
	return html, nil
}

func (s *reportService) send(ctx context.Context, session *models.FeedbackSession, html string) error {
	msg := &delivery.Message{
		To:       session.ManagerEmail,
		Subject:  fmt.Sprintf("Leadership Feedback Report: %s", session.Title),
		HTMLBody: html,
	}
	if s.settings.AdminEmail != "" {
		msg.Cc = []string{s.settings.AdminEmail}
	}
	recipients := append([]string{msg.To}, msg.Cc...)

	if err := s.mailer.Send(ctx, msg); err != nil {
		metrics.ReportFailed(metrics.ReportKindSession)
		logNotifyError(s.logger, s.notifier.NotifyReportFailed(ctx, events.ReportKindSession, session.ID.String(), recipients, err),
			"Failed to publish report failed event", "session_id", session.ID)
		return fmt.Errorf("failed to send session report: %w", err)
	}

	metrics.ReportSent(metrics.ReportKindSession)
	logNotifyError(s.logger, s.notifier.NotifyReportSent(ctx, events.ReportKindSession, session.ID.String(), recipients),
		"Failed to publish report sent event", "session_id", session.ID)
	s.logger.Info("Session report sent", "session_id", session.ID, "recipient", MaskEmail(session.ManagerEmail))
	return nil
}
