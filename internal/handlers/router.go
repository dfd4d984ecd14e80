package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cultivated-hq/pulse-service/internal/auth"
	"github.com/cultivated-hq/pulse-service/internal/metrics"
	"github.com/cultivated-hq/pulse-service/internal/services"
	"github.com/cultivated-hq/pulse-service/internal/utils"
)

const (
	serviceName            = "pulse-service"
	defaultSubmitRateLimit = 30
)

type RouteOptions struct {
	// SubmitRateLimit is the number of public submissions allowed per client per minute
	SubmitRateLimit uint
}

type HandlerManager struct {
	auditHandler  *AuditHandler
	surveyHandler *SurveyHandler
	adminHandler  *AdminHandler
	authenticator auth.Authenticator
	logger        utils.Logger
	options       RouteOptions
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	authenticator auth.Authenticator,
	logger utils.Logger,
	options RouteOptions,
) *HandlerManager {
	if options.SubmitRateLimit == 0 {
		options.SubmitRateLimit = defaultSubmitRateLimit
	}
	return &HandlerManager{
		auditHandler:  NewAuditHandler(serviceManager.Audit(), logger),
		surveyHandler: NewSurveyHandler(serviceManager.Session(), serviceManager.Response(), logger),
		adminHandler: NewAdminHandler(
			serviceManager.Session(),
			serviceManager.Analytics(),
			serviceManager.Report(),
			serviceManager.Export(),
			logger,
		),
		authenticator: authenticator,
		logger:        logger,
		options:       options,
	}
}

// NewRouter builds the engine with the shared middleware and every route
func NewRouter(hm *HandlerManager) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(hm.logger))
	router.Use(utils.ContextLogger(hm.logger))
	router.Use(SecurityHeaders())

	hm.SetupRoutes(router)
	return router
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	limiter := SubmitRateLimiter(hm.options.SubmitRateLimit)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		audit := v1.Group("/clarity-audit")
		{
			audit.GET("", hm.auditHandler.GetQuestionnaire)
			audit.POST("/score", hm.auditHandler.ScoreAudit)
			audit.POST("/results", limiter, hm.auditHandler.SubmitResults)
			audit.POST("/report", limiter, hm.auditHandler.DeliverReport)
		}

		surveys := v1.Group("/surveys")
		{
			surveys.POST("", limiter, hm.surveyHandler.CreateSession)
			surveys.GET("/:id", hm.surveyHandler.GetSession)
			surveys.POST("/:id/responses", limiter, hm.surveyHandler.SubmitResponse)
		}

		admin := v1.Group("/admin")
		admin.Use(AdminAuth(hm.authenticator, hm.logger))
		{
			admin.GET("/sessions", hm.adminHandler.ListSessions)
			admin.GET("/sessions/:id/results", hm.adminHandler.GetSessionResults)
			admin.POST("/sessions/:id/close", hm.adminHandler.CloseSession)
			admin.POST("/sessions/:id/report", hm.adminHandler.SendReport)
			admin.GET("/sessions/:id/export", hm.adminHandler.ExportSession)
			admin.GET("/audits/:id/html", hm.auditHandler.GetReportHTML)
			admin.POST("/process-expired", hm.adminHandler.ProcessExpired)
			admin.GET("/processing-stats", hm.adminHandler.ProcessingStats)
		}
	}
}
