package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/cultivated-hq/pulse-service/internal/delivery"
	"github.com/cultivated-hq/pulse-service/internal/events"
	"github.com/cultivated-hq/pulse-service/internal/metrics"
	"github.com/cultivated-hq/pulse-service/internal/models"
	"github.com/cultivated-hq/pulse-service/internal/questionnaire"
	"github.com/cultivated-hq/pulse-service/internal/report"
	"github.com/cultivated-hq/pulse-service/internal/repositories"
	"github.com/cultivated-hq/pulse-service/internal/scoring"
	"github.com/cultivated-hq/pulse-service/internal/validator"
)

const (
	auditStatusSent    = "sent"
	auditStatusPending = "saved, but email pending"
)

type auditService struct {
	repo          repositories.Repository
	questionnaire *questionnaire.Questionnaire
	engine        *scoring.Engine
	renderer      *report.Renderer
	mailer        delivery.Mailer
	notifier      NotificationEventService
	validator     *validator.Validator
	logger        *slog.Logger
	opLogger      *ServiceLogger
	settings      Settings
}

func NewAuditService(
	repo repositories.Repository,
	q *questionnaire.Questionnaire,
	renderer *report.Renderer,
	mailer delivery.Mailer,
	notifier NotificationEventService,
	validator *validator.Validator,
	logger *slog.Logger,
	settings Settings,
) AuditService {
	return &auditService{
		repo:          repo,
		questionnaire: q,
		engine:        scoring.NewClarityEngine(),
		renderer:      renderer,
		mailer:        mailer,
		notifier:      notifier,
		validator:     validator,
		logger:        logger,
		opLogger:      NewServiceLogger(logger, "audit"),
		settings:      settings.withDefaults(),
	}
}

func (s *auditService) Questionnaire() *AuditQuestionnaire {
	return &AuditQuestionnaire{
		Questionnaire: s.questionnaire,
		Questions:     s.questionnaire.Questions(),
		ScaleLabels:   questionnaire.ScaleLabels(s.questionnaire.Scale),
	}
}

// Score scores a complete answer set without persisting it
func (s *auditService) Score(ctx context.Context, req *ScoreAuditRequest) (*AuditScore, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.score(req.Answers)
}

func (s *auditService) score(answers map[int]int) (*AuditScore, error) {
	if err := s.engine.ValidateAnswers(s.questionnaire, answers); err != nil {
		return nil, answerError(err)
	}

	result := s.engine.Score(s.questionnaire, answers)
	summary, err := s.renderer.SummaryMarkdown(report.AuditInput{
		Questionnaire: s.questionnaire,
		Result:        result,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build audit summary: %w", err)
	}

	bands := make(map[string]string, len(result.CategoryScores))
	for id, score := range result.CategoryScores {
		bands[id] = s.engine.Describe(score)
	}

	return &AuditScore{
		Result:          result,
		Band:            s.engine.Describe(result.OverallScore),
		Feedback:        s.engine.OverallFeedback(result.OverallScore),
		Quadrant:        report.ClarityQuadrant.Place(result.CategoryScores),
		CategoryBands:   bands,
		SummaryMarkdown: summary,
	}, nil
}

// SubmitResults persists a scored audit and emails the report. A failed email
// never undoes the saved result.
func (s *auditService) SubmitResults(ctx context.Context, req *SubmitAuditRequest) (*AuditSubmission, error) {
	op := s.opLogger.WithOperation(ctx, "submit_audit")

	if err := s.validator.Validate(req); err != nil {
		op.LogResult("", "audit_result", err)
		return nil, err
	}

	scored, err := s.score(req.Answers)
	if err != nil {
		op.LogResult("", "audit_result", err)
		return nil, err
	}

	// Persist
	email := normalizeEmail(req.Email)
	name := trimmedOrNil(req.Name)
	audit := models.NewAuditResult(email, name, req.Answers, scored.Result)
	if err := s.repo.Audits().Create(ctx, nil, audit); err != nil {
		err = fmt.Errorf("failed to save audit result: %w", err)
		op.LogResult("", "audit_result", err)
		return nil, err
	}
	metrics.AuditSubmitted()

	submission := &AuditSubmission{
		AuditID: audit.ID,
		Score:   scored,
		Status:  auditStatusPending,
	}

	// Deliver
	sendErr := s.sendAuditReport(ctx, audit)
	switch {
	case sendErr == nil:
		submission.EmailSent = true
		submission.Status = auditStatusSent
	case errors.Is(sendErr, delivery.ErrDeliveryDisabled):
		submission.MinimalMode = true
	default:
		s.logger.Error("Audit saved but email delivery failed",
			"audit_id", audit.ID,
			"email", MaskEmail(email),
			"error", sendErr)
	}

	logNotifyError(s.logger, s.notifier.NotifyAuditSubmitted(ctx, audit, submission.EmailSent),
		"Failed to publish audit submitted event", "audit_id", audit.ID)

	op.LogResult(audit.ID.String(), "audit_result", nil)
	return submission, nil
}

// DeliverReport re-sends the report of a stored audit, selected by id or by latest email
func (s *auditService) DeliverReport(ctx context.Context, req *AuditReportRequest) (*models.AuditResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	audit, err := s.findAudit(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.sendAuditReport(ctx, audit); err != nil {
		return nil, fmt.Errorf("failed to send audit report: %w", err)
	}

	s.logger.Info("Audit report delivered", "audit_id", audit.ID, "email", MaskEmail(audit.Email))
	return audit, nil
}

func (s *auditService) RenderReport(ctx context.Context, id uuid.UUID) (string, error) {
	audit, err := s.repo.Audits().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return "", ErrAuditNotFound
		}
		return "", fmt.Errorf("failed to get audit result: %w", err)
	}
	return s.render(audit)
}

func (s *auditService) findAudit(ctx context.Context, req *AuditReportRequest) (*models.AuditResult, error) {
	var (
		audit *models.AuditResult
		err   error
	)

	switch {
	case req.SessionID != "":
		id, parseErr := uuid.Parse(req.SessionID)
		if parseErr != nil {
			return nil, ValidationErrors{*NewValidationError("sessionId", "must be a valid UUID", req.SessionID)}
		}
		audit, err = s.repo.Audits().GetByID(ctx, nil, id)
	case strings.TrimSpace(req.Email) != "":
		audit, err = s.repo.Audits().GetLatestByEmail(ctx, nil, normalizeEmail(req.Email))
	default:
		return nil, ErrMissingAuditKey
	}

	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAuditNotFound
		}
		return nil, fmt.Errorf("failed to fetch audit result: %w", err)
	}
	return audit, nil
}

func (s *auditService) render(audit *models.AuditResult) (string, error) {
	name := ""
	if audit.Name != nil {
		name = *audit.Name
	}

	html, err := s.renderer.RenderAuditReport(report.AuditInput{
		Name:          name,
		Email:         audit.Email,
		Questionnaire: s.questionnaire,
		Result:        audit.ScoringResult(),
	}, s.settings.Now())
	if err != nil {
		return "", fmt.Errorf("failed to render audit report: %w", err)
	}
	return html, nil
}

func (s *auditService) sendAuditReport(ctx context.Context, audit *models.AuditResult) error {
	html, err := s.render(audit)
	if err != nil {
		return err
	}

	msg := &delivery.Message{
		To:       audit.Email,
		Subject:  auditEmailSubject,
		HTMLBody: html,
	}
	if s.settings.AuditCCEmail != "" {
		msg.Cc = []string{s.settings.AuditCCEmail}
	}

	recipients := append([]string{msg.To}, msg.Cc...)
	if err := s.mailer.Send(ctx, msg); err != nil {
		if !errors.Is(err, delivery.ErrDeliveryDisabled) {
			metrics.ReportFailed(metrics.ReportKindAudit)
			logNotifyError(s.logger, s.notifier.NotifyReportFailed(ctx, events.ReportKindAudit, audit.ID.String(), recipients, err),
				"Failed to publish report failed event", "audit_id", audit.ID)
		}
		return err
	}

	metrics.ReportSent(metrics.ReportKindAudit)
	logNotifyError(s.logger, s.notifier.NotifyReportSent(ctx, events.ReportKindAudit, audit.ID.String(), recipients),
		"Failed to publish report sent event", "audit_id", audit.ID)
	return nil
}

// answerError converts scoring validation failures into service errors
func answerError(err error) error {
	var incomplete *scoring.IncompleteError
	if errors.As(err, &incomplete) {
		return &IncompleteResponsesError{Answered: incomplete.Answered, Expected: incomplete.Expected}
	}

	var outOfRange *scoring.OutOfRangeError
	if errors.As(err, &outOfRange) {
		return ValidationErrors{*NewValidationError(
			fmt.Sprintf("answers[%d]", outOfRange.Index),
			fmt.Sprintf("must be between 1 and %d", outOfRange.Max),
			outOfRange.Value,
		)}
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
