package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cultivated-hq/pulse-service/internal/services"
	"github.com/cultivated-hq/pulse-service/internal/utils"
)

type AuditHandler struct {
	BaseHandler
	auditService services.AuditService
	now          func() time.Time
}

func NewAuditHandler(auditService services.AuditService, logger utils.Logger) *AuditHandler {
	return &AuditHandler{
		BaseHandler:  NewBaseHandler(logger),
		auditService: auditService,
		now:          time.Now,
	}
}

// reportDeliveryRequest is the body accepted by the report endpoint. Only the lookup
// keys are used; the report is always rebuilt from the stored result.
type reportDeliveryRequest struct {
	SessionID       string                 `json:"sessionId"`
	Email           string                 `json:"email"`
	Name            string                 `json:"name,omitempty"`
	SummaryMarkdown string                 `json:"summaryMarkdown,omitempty"`
	Results         map[string]interface{} `json:"results,omitempty"`
	CTAURL          string                 `json:"ctaUrl,omitempty"`
}

type reportDeliveryResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	AuditID   string `json:"audit_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Timestamp string `json:"timestamp"`
}

// GetQuestionnaire returns the audit questions and scale labels
// @Router /clarity-audit [get]
func (h *AuditHandler) GetQuestionnaire(c *gin.Context) {
	c.JSON(http.StatusOK, h.auditService.Questionnaire())
}

// ScoreAudit scores a complete answer set without saving it
// @Router /clarity-audit/score [post]
func (h *AuditHandler) ScoreAudit(c *gin.Context) {
	var req services.ScoreAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	score, err := h.auditService.Score(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, score)
}

// SubmitResults persists the audit and emails the report
// @Router /clarity-audit/results [post]
func (h *AuditHandler) SubmitResults(c *gin.Context) {
	var req services.SubmitAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting clarity audit", "email", services.MaskEmail(req.Email))

	submission, err := h.auditService.SubmitResults(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	message := "Results saved and emailed"
	switch {
	case submission.MinimalMode:
		message = "Results saved"
	case !submission.EmailSent:
		message = "Results saved, but email pending"
	}
	h.RespondWithSuccess(c, http.StatusCreated, message, submission)
}

// DeliverReport re-sends a stored audit report by sessionId or by the latest result for an email
// @Router /clarity-audit/report [post]
func (h *AuditHandler) DeliverReport(c *gin.Context) {
	var req reportDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.reportError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	audit, err := h.auditService.DeliverReport(c.Request.Context(), &services.AuditReportRequest{
		SessionID: req.SessionID,
		Email:     req.Email,
	})
	if err != nil {
		h.LogWarn(c, "Report delivery failed", "error", err)

		var validationErrors services.ValidationErrors
		switch {
		case errors.Is(err, services.ErrMissingAuditKey):
			h.reportError(c, http.StatusBadRequest, "Either email or sessionId is required")
		case errors.As(err, &validationErrors):
			h.reportError(c, http.StatusBadRequest, validationErrors.Error())
		case errors.Is(err, services.ErrAuditNotFound):
			h.reportError(c, http.StatusNotFound, "No audit results found")
		default:
			h.reportError(c, http.StatusInternalServerError, "Failed to generate report")
		}
		return
	}

	c.JSON(http.StatusOK, reportDeliveryResponse{
		Success:   true,
		Message:   "Report generated successfully",
		AuditID:   audit.ID.String(),
		Email:     audit.Email,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

func (h *AuditHandler) reportError(c *gin.Context, status int, message string) {
	c.JSON(status, reportDeliveryResponse{
		Success:   false,
		Error:     message,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

// GetReportHTML renders a stored audit report for admins
// @Router /admin/audits/{id}/html [get]
func (h *AuditHandler) GetReportHTML(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	html, err := h.auditService.RenderReport(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
