package services

import (
	"log/slog"
	"time"

	"github.com/cultivated-hq/pulse-service/internal/cache"
	"github.com/cultivated-hq/pulse-service/internal/delivery"
	"github.com/cultivated-hq/pulse-service/internal/events"
	"github.com/cultivated-hq/pulse-service/internal/questionnaire"
	"github.com/cultivated-hq/pulse-service/internal/report"
	"github.com/cultivated-hq/pulse-service/internal/repositories"
	"github.com/cultivated-hq/pulse-service/internal/validator"
)

const (
	defaultSessionTTL    = 7 * 24 * time.Hour
	testModeSessionTTL   = time.Minute
	defaultStatsCacheTTL = 5 * time.Minute
	auditEmailSubject    = "Your Leadership Clarity Audit Results"
)

// Settings are the behavioural knobs shared by the services
type Settings struct {
	SessionTTL     time.Duration
	TestMode       bool
	InstantReports bool
	PublicBaseURL  string
	// AdminEmail is copied on session reports
	AdminEmail string
	// AuditCCEmail is copied on audit result emails
	AuditCCEmail  string
	StatsCacheTTL time.Duration
	Now           func() time.Time
}

func (s Settings) withDefaults() Settings {
	if s.SessionTTL <= 0 {
		s.SessionTTL = defaultSessionTTL
	}
	if s.TestMode {
		s.SessionTTL = testModeSessionTTL
	}
	if s.StatsCacheTTL <= 0 {
		s.StatsCacheTTL = defaultStatsCacheTTL
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}

// Dependencies are the adapters the services are built on
type Dependencies struct {
	Repo          repositories.Repository
	Cache         cache.CacheService
	Publisher     events.EventPublisher
	Mailer        delivery.Mailer
	Renderer      *report.Renderer
	Questionnaire *questionnaire.Questionnaire
	Validator     *validator.Validator
	Logger        *slog.Logger
	Settings      Settings
}

type ServiceManager interface {
	Audit() AuditService
	Session() SessionService
	Response() ResponseService
	Analytics() AnalyticsService
	Report() ReportService
	Export() ExportService
	Notification() NotificationEventService
}

type serviceManager struct {
	audit        AuditService
	session      SessionService
	response     ResponseService
	analytics    AnalyticsService
	report       ReportService
	export       ExportService
	notification NotificationEventService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	deps.Settings = deps.Settings.withDefaults()
	if deps.Cache == nil {
		deps.Cache = cache.NewNoopCache()
	}
	if deps.Questionnaire == nil {
		deps.Questionnaire = questionnaire.ClarityAudit()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}

	notification := NewNotificationEventService(deps.Publisher, deps.Logger)
	analytics := NewAnalyticsService(deps.Repo, deps.Cache, deps.Logger, deps.Settings)
	reports := NewReportService(deps.Repo, analytics, deps.Renderer, deps.Mailer, notification, deps.Logger, deps.Settings)

	return &serviceManager{
		audit:        NewAuditService(deps.Repo, deps.Questionnaire, deps.Renderer, deps.Mailer, notification, deps.Validator, deps.Logger, deps.Settings),
		session:      NewSessionService(deps.Repo, deps.Cache, notification, deps.Validator, deps.Logger, deps.Settings),
		response:     NewResponseService(deps.Repo, analytics, reports, notification, deps.Validator, deps.Logger, deps.Settings),
		analytics:    analytics,
		report:       reports,
		export:       NewExportService(deps.Repo, analytics, deps.Logger),
		notification: notification,
	}
}

func (m *serviceManager) Audit() AuditService                    { return m.audit }
func (m *serviceManager) Session() SessionService                { return m.session }
func (m *serviceManager) Response() ResponseService              { return m.response }
func (m *serviceManager) Analytics() AnalyticsService            { return m.analytics }
func (m *serviceManager) Report() ReportService                  { return m.report }
func (m *serviceManager) Export() ExportService                  { return m.export }
func (m *serviceManager) Notification() NotificationEventService { return m.notification }
