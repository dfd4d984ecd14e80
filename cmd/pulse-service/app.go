package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cultivated-hq/pulse-service/internal/cache"
	"github.com/cultivated-hq/pulse-service/internal/config"
	"github.com/cultivated-hq/pulse-service/internal/events"
	"github.com/cultivated-hq/pulse-service/internal/questionnaire"
	"github.com/cultivated-hq/pulse-service/internal/report"
	"github.com/cultivated-hq/pulse-service/internal/repositories/postgres"
	"github.com/cultivated-hq/pulse-service/internal/services"
	"github.com/cultivated-hq/pulse-service/internal/utils"
	"github.com/cultivated-hq/pulse-service/pkg"
)

// application holds the process-wide adapters shared by every command
type application struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *gorm.DB
	redis     *redis.Client
	publisher events.EventPublisher
	services  services.ServiceManager
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(globalFlags.EnvFile)
	if err != nil {
		return nil, nil, err
	}
	if globalFlags.LogLevel != "" {
		cfg.LogLevel = globalFlags.LogLevel
	}

	logger := utils.NewLogger(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newApplication(ctx context.Context) (*application, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}

	app := &application{cfg: cfg, logger: logger, db: db}

	cacheService := cache.NewNoopCache()
	app.redis, err = pkg.NewRedisClient(ctx, cfg)
	switch {
	case err != nil:
		logger.Warn("Redis unavailable, statistics will not be cached", "error", err)
	case app.redis != nil:
		cacheService = cache.NewRedisCache(app.redis, logger)
	}

	app.publisher, err = cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create event publisher: %w", err)
	}

	audit, err := loadAuditQuestionnaire(cfg.Surveys.QuestionnairePath)
	if err != nil {
		app.Close()
		return nil, err
	}

	renderer, err := report.NewRenderer(report.Options{CTAURL: cfg.Surveys.CTAURL})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to build report renderer: %w", err)
	}

	app.services = services.NewServiceManager(services.Dependencies{
		Repo:          postgres.NewRepository(db),
		Cache:         cacheService,
		Publisher:     app.publisher,
		Mailer:        cfg.Delivery.CreateMailer(logger),
		Renderer:      renderer,
		Questionnaire: audit,
		Logger:        logger,
		Settings: services.Settings{
			SessionTTL:     cfg.Surveys.SessionTTL,
			TestMode:       cfg.Surveys.TestMode,
			InstantReports: cfg.Surveys.InstantReports,
			PublicBaseURL:  cfg.Surveys.PublicBaseURL,
			AdminEmail:     cfg.Delivery.AdminEmail,
			AuditCCEmail:   cfg.Delivery.CCEmail,
			StatsCacheTTL:  cfg.CacheTTL,
		},
	})

	logger.Info("Application initialised",
		"environment", cfg.Environment,
		"minimal_mode", cfg.Delivery.MinimalMode(),
		"test_mode", cfg.Surveys.TestMode,
		"cache", app.redis != nil)

	return app, nil
}

// loadAuditQuestionnaire returns the embedded audit unless path points at a replacement
func loadAuditQuestionnaire(path string) (*questionnaire.Questionnaire, error) {
	if path == "" {
		return questionnaire.ClarityAudit(), nil
	}

	q, err := questionnaire.Load(path)
	if err != nil {
		return nil, err
	}
	if q.Scale != questionnaire.ScaleLikert5 {
		return nil, fmt.Errorf("audit questionnaire %s must use the %s scale, got %s", path, questionnaire.ScaleLikert5, q.Scale)
	}
	return q, nil
}

func (a *application) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("Failed to close event publisher", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("Failed to close redis client", "error", err)
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
}
