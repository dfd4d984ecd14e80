package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cultivated-hq/pulse-service/internal/cache"
	"github.com/cultivated-hq/pulse-service/internal/models"
	"github.com/cultivated-hq/pulse-service/internal/repositories"
	"github.com/cultivated-hq/pulse-service/internal/scoring"
)

type analyticsService struct {
	repo     repositories.Repository
	cache    cache.CacheService
	logger   *slog.Logger
	settings Settings
}

func NewAnalyticsService(repo repositories.Repository, cache cache.CacheService, logger *slog.Logger, settings Settings) AnalyticsService {
	return &analyticsService{
		repo:     repo,
		cache:    cache,
		logger:   logger,
		settings: settings.withDefaults(),
	}
}

// GetSessionResults returns the session with every response and the aggregated statistics
func (s *analyticsService) GetSessionResults(ctx context.Context, sessionID uuid.UUID) (*SessionResults, error) {
	session, err := s.repo.Sessions().GetByID(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get feedback session: %w", err)
	}

	responses, err := s.repo.Responses().ListBySession(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback responses: %w", err)
	}

	analytics, ok := s.cached(ctx, sessionID)
	if !ok {
		analytics = analyze(session, responses)
		s.store(ctx, sessionID, analytics)
	}

	return &SessionResults{
		Session:   session,
		Responses: responses,
		Analytics: analytics,
	}, nil
}

// GetSessionAnalytics returns the statistics of a session, from cache when possible
func (s *analyticsService) GetSessionAnalytics(ctx context.Context, session *models.FeedbackSession) (*scoring.SessionAnalytics, error) {
	if analytics, ok := s.cached(ctx, session.ID); ok {
		return analytics, nil
	}

	responses, err := s.repo.Responses().ListBySession(ctx, nil, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback responses: %w", err)
	}

	analytics := analyze(session, responses)
	s.store(ctx, session.ID, analytics)
	return analytics, nil
}

// InvalidateSession drops cached statistics after a new response
func (s *analyticsService) InvalidateSession(ctx context.Context, sessionID uuid.UUID) {
	if err := s.cache.Delete(ctx, cache.SessionStatsKey(sessionID.String())); err != nil {
		s.logger.Warn("Failed to invalidate session stats", "session_id", sessionID, "error", err)
	}
}

func (s *analyticsService) cached(ctx context.Context, sessionID uuid.UUID) (*scoring.SessionAnalytics, bool) {
	var analytics scoring.SessionAnalytics
	err := s.cache.Get(ctx, cache.SessionStatsKey(sessionID.String()), &analytics)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Failed to read cached session stats", "session_id", sessionID, "error", err)
		}
		return nil, false
	}
	return &analytics, true
}

func (s *analyticsService) store(ctx context.Context, sessionID uuid.UUID, analytics *scoring.SessionAnalytics) {
	if err := s.cache.Set(ctx, cache.SessionStatsKey(sessionID.String()), analytics, s.settings.StatsCacheTTL); err != nil {
		s.logger.Warn("Failed to cache session stats", "session_id", sessionID, "error", err)
	}
}

func analyze(session *models.FeedbackSession, responses []*models.FeedbackResponse) *scoring.SessionAnalytics {
	rows := make([][]int, 0, len(responses))
	comments := make([]string, 0, len(responses))
	for _, r := range responses {
		rows = append(rows, r.Responses)
		if r.Comment != nil {
			comments = append(comments, *r.Comment)
		}
	}
	return scoring.AnalyzeSession(session.LikertQuestions(), rows, comments, session.ScaleMax())
}
