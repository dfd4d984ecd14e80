package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cultivated-hq/pulse-service/internal/metrics"
	"github.com/cultivated-hq/pulse-service/internal/models"
	"github.com/cultivated-hq/pulse-service/internal/repositories"
	"github.com/cultivated-hq/pulse-service/internal/validator"
)

const (
	openTextPrefix         = "Start/Stop/Keep Response:\n\n"
	additionalCommentsHead = "\n\nAdditional Comments:\n"
)

type responseService struct {
	repo      repositories.Repository
	analytics AnalyticsService
	reports   ReportService
	notifier  NotificationEventService
	validator *validator.Validator
	logger    *slog.Logger
	opLogger  *ServiceLogger
	settings  Settings
}

func NewResponseService(
	repo repositories.Repository,
	analytics AnalyticsService,
	reports ReportService,
	notifier NotificationEventService,
	validator *validator.Validator,
	logger *slog.Logger,
	settings Settings,
) ResponseService {
	return &responseService{
		repo:      repo,
		analytics: analytics,
		reports:   reports,
		notifier:  notifier,
		validator: validator,
		logger:    logger,
		opLogger:  NewServiceLogger(logger, "response"),
		settings:  settings.withDefaults(),
	}
}

// Submit stores one anonymous response. Expiry is checked before the active flag.
func (s *responseService) Submit(ctx context.Context, sessionID uuid.UUID, req *SubmitResponseRequest) (*SubmitResponseResult, error) {
	op := s.opLogger.WithOperation(ctx, "submit_response")

	result, err := s.submit(ctx, sessionID, req)
	op.LogResult(sessionID.String(), "feedback_session", err)
	return result, err
}

func (s *responseService) submit(ctx context.Context, sessionID uuid.UUID, req *SubmitResponseRequest) (*SubmitResponseResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	session, err := s.repo.Sessions().GetByID(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get feedback session: %w", err)
	}

	now := s.settings.Now()
	if session.IsExpired(now) {
		metrics.ResponseRejected("expired")
		return nil, ErrSessionExpired
	}
	if !session.IsActive {
		metrics.ResponseRejected("inactive")
		return nil, ErrSessionInactive
	}

	if err := checkResponses(req.Responses, len(session.LikertQuestions()), session.ScaleMax()); err != nil {
		metrics.ResponseRejected("incomplete")
		return nil, err
	}

	response := &models.FeedbackResponse{
		SessionID:   session.ID,
		Responses:   append([]int(nil), req.Responses...),
		Comment:     mergeComment(req.OpenText, req.Comment),
		SubmittedAt: now,
	}

	// Insert and count in one transaction
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Responses().Create(ctx, tx, response); err != nil {
			return fmt.Errorf("failed to save feedback response: %w", err)
		}
		if err := s.repo.Sessions().IncrementResponseCount(ctx, tx, session.ID); err != nil {
			return fmt.Errorf("failed to update response count: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	count := session.ResponseCount + 1
	metrics.ResponseSubmitted()
	s.afterSubmit(ctx, session, response, count)

	return &SubmitResponseResult{
		ResponseID:    response.ID,
		SessionID:     session.ID,
		ResponseCount: count,
		SubmittedAt:   response.SubmittedAt,
	}, nil
}

// afterSubmit runs the post-commit steps; none of them can fail the submission
func (s *responseService) afterSubmit(ctx context.Context, session *models.FeedbackSession, response *models.FeedbackResponse, count int) {
	s.analytics.InvalidateSession(ctx, session.ID)

	logNotifyError(s.logger, s.notifier.NotifyResponseSubmitted(ctx, response, count),
		"Failed to publish response submitted event", "session_id", session.ID)

	if s.settings.InstantReports {
		if _, err := s.reports.SendSessionReport(ctx, session.ID, SessionReportOptions{Interim: true}); err != nil {
			s.logger.Warn("Instant report failed", "session_id", session.ID, "error", err)
		}
	}
}

// checkResponses requires exactly one in-range answer per Likert question; 0 means unanswered
func checkResponses(responses []int, expected, scaleMax int) error {
	answered := 0
	var invalid ValidationErrors
	for i, v := range responses {
		switch {
		case v == 0:
		case v < 1 || v > scaleMax:
			invalid = append(invalid, *NewValidationError(
				fmt.Sprintf("responses[%d]", i),
				fmt.Sprintf("must be between 1 and %d", scaleMax),
				v,
			))
		default:
			answered++
		}
	}

	if len(invalid) > 0 {
		return invalid
	}
	if len(responses) != expected || answered != expected {
		return &IncompleteResponsesError{Answered: answered, Expected: expected}
	}
	return nil
}

// mergeComment folds the open-text answer into the stored comment. Blank input yields nil.
func mergeComment(openText, comment string) *string {
	openText = strings.TrimSpace(openText)
	comment = strings.TrimSpace(comment)

	var merged string
	switch {
	case openText != "" && comment != "":
		merged = openTextPrefix + openText + additionalCommentsHead + comment
	case openText != "":
		merged = openTextPrefix + openText
	case comment != "":
		merged = comment
	default:
		return nil
	}
	return &merged
}
