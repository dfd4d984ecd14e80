package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cultivated-hq/pulse-service/internal/repositories"
	"github.com/cultivated-hq/pulse-service/internal/services"
	"github.com/cultivated-hq/pulse-service/internal/utils"
)

// AdminHandler serves the authenticated session management endpoints
type AdminHandler struct {
	BaseHandler
	sessionService   services.SessionService
	analyticsService services.AnalyticsService
	reportService    services.ReportService
	exportService    services.ExportService
}

func NewAdminHandler(
	sessionService services.SessionService,
	analyticsService services.AnalyticsService,
	reportService services.ReportService,
	exportService services.ExportService,
	logger utils.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:      NewBaseHandler(logger),
		sessionService:   sessionService,
		analyticsService: analyticsService,
		reportService:    reportService,
		exportService:    exportService,
	}
}

type processExpiredRequest struct {
	Limit  int  `json:"limit"`
	DryRun bool `json:"dry_run"`
}

// ListSessions lists sessions, newest first by default
// @Router /admin/sessions [get]
func (h *AdminHandler) ListSessions(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	size := parseIntQuery(c, "size", 20)
	if page < 1 {
		page = 1
	}

	filters := repositories.SessionFilters{
		ManagerEmail: c.Query("manager_email"),
		ActiveOnly:   c.Query("active") == "true",
		Limit:        size,
		Offset:       (page - 1) * size,
		SortBy:       c.Query("sort_by"),
		SortOrder:    c.Query("sort_order"),
	}

	sessions, err := h.sessionService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// GetSessionResults returns the session, its responses and aggregated statistics
// @Router /admin/sessions/{id}/results [get]
func (h *AdminHandler) GetSessionResults(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	results, err := h.analyticsService.GetSessionResults(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// CloseSession stops a session from accepting responses
// @Router /admin/sessions/{id}/close [post]
func (h *AdminHandler) CloseSession(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Closing feedback session", "session_id", id)

	if err := h.sessionService.Close(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Session closed", gin.H{"session_id": id})
}

// SendReport emails the session report, or returns it as HTML with ?preview=true
// @Router /admin/sessions/{id}/report [post]
func (h *AdminHandler) SendReport(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	preview := c.Query("preview") == "true"
	result, err := h.reportService.SendSessionReport(c.Request.Context(), id, services.SessionReportOptions{Preview: preview})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if preview {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(result.HTML))
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Report sent", result)
}

// ExportSession downloads the session responses as a spreadsheet
// @Router /admin/sessions/{id}/export [get]
func (h *AdminHandler) ExportSession(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	file, err := h.exportService.ExportSession(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// ProcessExpired runs one expired-session pass on demand
// @Router /admin/process-expired [post]
func (h *AdminHandler) ProcessExpired(c *gin.Context) {
	var req processExpiredRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return
		}
	}

	h.LogRequest(c, "Processing expired sessions", "dry_run", req.DryRun)

	summary, err := h.reportService.ProcessExpiredSessions(c.Request.Context(), services.ProcessOptions{
		Limit:  req.Limit,
		DryRun: req.DryRun,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Expired sessions processed", summary)
}

// ProcessingStats reports pending, recently processed and per-window processing rates.
// ?days sets the window, 7 by default.
// @Router /admin/processing-stats [get]
func (h *AdminHandler) ProcessingStats(c *gin.Context) {
	days := parseIntQuery(c, "days", 7)
	if days < 1 || days > 365 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid days parameter",
			Details: "days must be between 1 and 365",
		})
		return
	}

	stats, err := h.reportService.GetProcessingStats(c.Request.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
