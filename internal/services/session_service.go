package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/cultivated-hq/pulse-service/internal/cache"
	"github.com/cultivated-hq/pulse-service/internal/models"
	"github.com/cultivated-hq/pulse-service/internal/questionnaire"
	"github.com/cultivated-hq/pulse-service/internal/repositories"
	"github.com/cultivated-hq/pulse-service/internal/validator"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type sessionService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	notifier  NotificationEventService
	validator *validator.Validator
	logger    *slog.Logger
	settings  Settings
}

func NewSessionService(
	repo repositories.Repository,
	cache cache.CacheService,
	notifier NotificationEventService,
	validator *validator.Validator,
	logger *slog.Logger,
	settings Settings,
) SessionService {
	return &sessionService{
		repo:      repo,
		cache:     cache,
		notifier:  notifier,
		validator: validator,
		logger:    logger,
		settings:  settings.withDefaults(),
	}
}

func (s *sessionService) Create(ctx context.Context, req *CreateSessionRequest) (*SessionResponse, error) {
	s.logger.Info("Creating feedback session", "title", req.Title, "scale_type", req.ScaleType)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	questions := questionnaire.CleanQuestions(req.Questions)
	if len(req.Questions) == 0 {
		questions = questionnaire.DefaultPulseQuestions()
	} else if len(questions) == 0 {
		return nil, ValidationErrors{*NewValidationError("questions", "must contain at least one question", nil)}
	}

	now := s.settings.Now()
	session := &models.FeedbackSession{
		Title:        strings.TrimSpace(req.Title),
		Description:  trimmedOrNil(req.Description),
		Questions:    questions,
		ScaleType:    req.ScaleType,
		IsActive:     true,
		IsPublic:     true,
		ExpiresAt:    now.Add(s.settings.SessionTTL),
		ManagerName:  strings.TrimSpace(req.ManagerName),
		ManagerEmail: normalizeEmail(req.ManagerEmail),
	}

	if err := s.repo.Sessions().Create(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to create feedback session: %w", err)
	}

	surveyURL := s.surveyURL(session.ID)
	logNotifyError(s.logger, s.notifier.NotifySessionCreated(ctx, session, surveyURL),
		"Failed to publish session created events", "session_id", session.ID)

	s.logger.Info("Feedback session created",
		"session_id", session.ID,
		"expires_at", session.ExpiresAt,
		"questions", len(session.Questions))

	return &SessionResponse{FeedbackSession: session, SurveyURL: surveyURL}, nil
}

func (s *sessionService) GetByID(ctx context.Context, id uuid.UUID) (*models.FeedbackSession, error) {
	session, err := s.repo.Sessions().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get feedback session: %w", err)
	}
	return session, nil
}

// GetPublic returns the respondent view. The record may come from cache; status is
// always evaluated against the current time.
func (s *sessionService) GetPublic(ctx context.Context, id uuid.UUID) (*PublicSession, error) {
	var session models.FeedbackSession
	if err := s.cache.Get(ctx, cache.SessionKey(id.String()), &session); err != nil {
		loaded, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		session = *loaded
		if err := s.cache.Set(ctx, cache.SessionKey(id.String()), session, s.settings.StatsCacheTTL); err != nil {
			s.logger.Debug("Failed to cache session", "session_id", id, "error", err)
		}
	}

	now := s.settings.Now()
	return &PublicSession{
		ID:               session.ID,
		Title:            session.Title,
		Description:      session.Description,
		ManagerName:      session.ManagerName,
		Questions:        session.LikertQuestions(),
		OpenTextPrompt:   session.OpenTextPrompt(),
		ScaleType:        session.ScaleType,
		ScaleLabels:      questionnaire.ScaleLabels(session.ScaleType),
		ExpiresAt:        session.ExpiresAt,
		Status:           session.Status(now),
		RemainingSeconds: session.RemainingSeconds(now),
	}, nil
}

func (s *sessionService) List(ctx context.Context, filters repositories.SessionFilters) (*SessionListResponse, error) {
	if filters.Limit <= 0 {
		filters.Limit = defaultListLimit
	}
	if filters.Limit > maxListLimit {
		filters.Limit = maxListLimit
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	filters.ManagerEmail = normalizeEmail(filters.ManagerEmail)

	sessions, total, err := s.repo.Sessions().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback sessions: %w", err)
	}

	return &SessionListResponse{
		Sessions: sessions,
		Total:    total,
		Limit:    filters.Limit,
		Offset:   filters.Offset,
	}, nil
}

// Close stops a session from accepting further responses
func (s *sessionService) Close(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Sessions().Deactivate(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to close feedback session: %w", err)
	}

	if err := s.cache.Delete(ctx, cache.SessionKey(id.String())); err != nil {
		s.logger.Warn("Failed to invalidate cached session", "session_id", id, "error", err)
	}

	s.logger.Info("Feedback session closed", "session_id", id)
	return nil
}

func (s *sessionService) surveyURL(id uuid.UUID) string {
	base := strings.TrimRight(s.settings.PublicBaseURL, "/")
	return base + "/surveys/" + id.String()
}
