package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cultivated-hq/pulse-service/internal/events"
	"github.com/cultivated-hq/pulse-service/internal/models"
)

// NotificationEventService publishes domain events for downstream notifiers
type NotificationEventService interface {
	NotifySessionCreated(ctx context.Context, session *models.FeedbackSession, surveyURL string) error
	NotifyResponseSubmitted(ctx context.Context, response *models.FeedbackResponse, responseCount int) error
	NotifyReportSent(ctx context.Context, kind events.ReportKind, subjectID string, recipients []string) error
	NotifyReportFailed(ctx context.Context, kind events.ReportKind, subjectID string, recipients []string, cause error) error
	NotifyAuditSubmitted(ctx context.Context, audit *models.AuditResult, emailSent bool) error
}

type notificationEventService struct {
	eventPublisher events.EventPublisher
	logger         *slog.Logger
}

func NewNotificationEventService(eventPublisher events.EventPublisher, logger *slog.Logger) NotificationEventService {
	return &notificationEventService{
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// NotifySessionCreated publishes the manager event and the admin copy
func (s *notificationEventService) NotifySessionCreated(ctx context.Context, session *models.FeedbackSession, surveyURL string) error {
	s.logger.Info("Publishing session created events", "session_id", session.ID)

	data := events.SessionCreatedEvent{
		SessionID:    session.ID.String(),
		Title:        session.Title,
		ManagerName:  session.ManagerName,
		ManagerEmail: session.ManagerEmail,
		ScaleType:    string(session.ScaleType),
		ExpiresAt:    session.ExpiresAt,
		SurveyURL:    surveyURL,
	}

	if err := s.eventPublisher.PublishNotificationEvent(ctx, events.NewSessionCreatedEvent(data, false)); err != nil {
		return fmt.Errorf("failed to publish session created event: %w", err)
	}
	if session.IsPublic {
		if err := s.eventPublisher.PublishNotificationEvent(ctx, events.NewSessionCreatedEvent(data, true)); err != nil {
			return fmt.Errorf("failed to publish public session event: %w", err)
		}
	}
	return nil
}

func (s *notificationEventService) NotifyResponseSubmitted(ctx context.Context, response *models.FeedbackResponse, responseCount int) error {
	event := events.NewResponseSubmittedEvent(events.ResponseSubmittedEvent{
		SessionID:     response.SessionID.String(),
		ResponseID:    response.ID.String(),
		ResponseCount: responseCount,
		HasComment:    response.Comment != nil,
		SubmittedAt:   response.SubmittedAt,
	})
	return s.eventPublisher.PublishNotificationEvent(ctx, event)
}

func (s *notificationEventService) NotifyReportSent(ctx context.Context, kind events.ReportKind, subjectID string, recipients []string) error {
	return s.eventPublisher.PublishNotificationEvent(ctx, events.NewReportSentEvent(kind, subjectID, recipients))
}

func (s *notificationEventService) NotifyReportFailed(ctx context.Context, kind events.ReportKind, subjectID string, recipients []string, cause error) error {
	return s.eventPublisher.PublishNotificationEvent(ctx, events.NewReportFailedEvent(kind, subjectID, recipients, cause))
}

func (s *notificationEventService) NotifyAuditSubmitted(ctx context.Context, audit *models.AuditResult, emailSent bool) error {
	event := events.NewAuditSubmittedEvent(events.AuditSubmittedEvent{
		AuditID:         audit.ID.String(),
		Email:           audit.Email,
		TotalScore:      audit.TotalScore,
		HighestCategory: audit.HighestCategory,
		LowestCategory:  audit.LowestCategory,
		EmailSent:       emailSent,
	})
	return s.eventPublisher.PublishNotificationEvent(ctx, event)
}

// logNotifyError keeps notification failures out of the caller's result
func logNotifyError(logger *slog.Logger, err error, msg string, args ...any) {
	if err != nil {
		logger.Warn(msg, append(args, "error", err)...)
	}
}
