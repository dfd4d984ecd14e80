package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cultivated-hq/pulse-service/internal/delivery"
	"github.com/cultivated-hq/pulse-service/internal/events"
	"github.com/cultivated-hq/pulse-service/internal/models"
	"github.com/cultivated-hq/pulse-service/internal/questionnaire"
	"github.com/cultivated-hq/pulse-service/internal/report"
	"github.com/cultivated-hq/pulse-service/internal/repositories"
)

// MockSessionRepository is a mock implementation of FeedbackSessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, tx *gorm.DB, session *models.FeedbackSession) error {
	args := m.Called(ctx, tx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.FeedbackSession, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeedbackSession), args.Error(1)
}

func (m *MockSessionRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.SessionFilters) ([]*models.FeedbackSession, int64, error) {
	args := m.Called(ctx, tx, filters)
	return args.Get(0).([]*models.FeedbackSession), args.Get(1).(int64), args.Error(2)
}

func (m *MockSessionRepository) IncrementResponseCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockSessionRepository) SetResponseCount(ctx context.Context, tx *gorm.DB, id uuid.UUID, count int) error {
	args := m.Called(ctx, tx, id, count)
	return args.Error(0)
}

func (m *MockSessionRepository) Deactivate(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockSessionRepository) MarkReportSent(ctx context.Context, tx *gorm.DB, id uuid.UUID, sentAt time.Time) error {
	args := m.Called(ctx, tx, id, sentAt)
	return args.Error(0)
}

func (m *MockSessionRepository) ListExpiredUnreported(ctx context.Context, tx *gorm.DB, now time.Time, limit int) ([]*models.FeedbackSession, error) {
	args := m.Called(ctx, tx, now, limit)
	return args.Get(0).([]*models.FeedbackSession), args.Error(1)
}

func (m *MockSessionRepository) DeactivateExpiredBefore(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error) {
	args := m.Called(ctx, tx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) CountExpiredUnreported(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	args := m.Called(ctx, tx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) ListReportedSince(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*models.FeedbackSession, error) {
	args := m.Called(ctx, tx, since, limit)
	return args.Get(0).([]*models.FeedbackSession), args.Error(1)
}

func (m *MockSessionRepository) CountProcessing(ctx context.Context, tx *gorm.DB, from, to time.Time) (*repositories.ProcessingCounts, error) {
	args := m.Called(ctx, tx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.ProcessingCounts), args.Error(1)
}

// MockResponseRepository is a mock implementation of FeedbackResponseRepository
type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) Create(ctx context.Context, tx *gorm.DB, response *models.FeedbackResponse) error {
	args := m.Called(ctx, tx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) ListBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*models.FeedbackResponse, error) {
	args := m.Called(ctx, tx, sessionID)
	return args.Get(0).([]*models.FeedbackResponse), args.Error(1)
}

func (m *MockResponseRepository) CountBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, sessionID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditRepository is a mock implementation of AuditResultRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, tx *gorm.DB, result *models.AuditResult) error {
	args := m.Called(ctx, tx, result)
	return args.Error(0)
}

func (m *MockAuditRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.AuditResult, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditResult), args.Error(1)
}

func (m *MockAuditRepository) GetLatestByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.AuditResult, error) {
	args := m.Called(ctx, tx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditResult), args.Error(1)
}

// MockRepository groups the mock stores; WithTransaction runs fn without a tx
type MockRepository struct {
	sessions  *MockSessionRepository
	responses *MockResponseRepository
	audits    *MockAuditRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		sessions:  &MockSessionRepository{},
		responses: &MockResponseRepository{},
		audits:    &MockAuditRepository{},
	}
}

func (m *MockRepository) Sessions() repositories.FeedbackSessionRepository   { return m.sessions }
func (m *MockRepository) Responses() repositories.FeedbackResponseRepository { return m.responses }
func (m *MockRepository) Audits() repositories.AuditResultRepository         { return m.audits }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (m *MockRepository) AssertExpectations(t *testing.T) {
	m.sessions.AssertExpectations(t)
	m.responses.AssertExpectations(t)
	m.audits.AssertExpectations(t)
}

// ===== FIXTURES =====

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRenderer(t *testing.T) *report.Renderer {
	t.Helper()
	renderer, err := report.NewRenderer(report.Options{
		BrandName:    "Cultivated HQ",
		ContactEmail: "hello@example.com",
		CTAURL:       "https://example.com/book",
		Location:     time.UTC,
	})
	require.NoError(t, err)
	return renderer
}

func testSettings() Settings {
	return Settings{
		PublicBaseURL: "https://pulse.example.com/",
		AdminEmail:    "admin@example.com",
		AuditCCEmail:  "coach@example.com",
		Now:           func() time.Time { return fixedNow },
	}
}

type testEnv struct {
	repo      *MockRepository
	mailer    *delivery.MockMailer
	publisher *events.MockEventPublisher
	manager   ServiceManager
}

func newTestEnv(t *testing.T, mutate ...func(*Dependencies)) *testEnv {
	t.Helper()
	logger := testLogger()
	env := &testEnv{
		repo:      newMockRepository(),
		mailer:    delivery.NewMockMailer(),
		publisher: events.NewMockEventPublisher(logger),
	}

	deps := Dependencies{
		Repo:      env.repo,
		Publisher: env.publisher,
		Mailer:    env.mailer,
		Renderer:  testRenderer(t),
		Logger:    logger,
		Settings:  testSettings(),
	}
	for _, fn := range mutate {
		fn(&deps)
	}
	env.manager = NewServiceManager(deps)
	return env
}

func pulseSession(expiresAt time.Time, active bool) *models.FeedbackSession {
	return &models.FeedbackSession{
		ID:           uuid.New(),
		Title:        "Q1 Team Pulse",
		Questions:    questionnaire.DefaultPulseQuestions(),
		ScaleType:    questionnaire.ScaleLikert5,
		IsActive:     active,
		IsPublic:     true,
		ExpiresAt:    expiresAt,
		ManagerName:  "Alex Morgan",
		ManagerEmail: "alex@example.com",
		CreatedAt:    expiresAt.Add(-7 * 24 * time.Hour),
	}
}

func fullResponses(n, value int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func fullAuditAnswers(value int) map[int]int {
	answers := make(map[int]int, 16)
	for i := 0; i < 16; i++ {
		answers[i] = value
	}
	return answers
}
