package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cultivated-hq/pulse-service/internal/services"
	"github.com/cultivated-hq/pulse-service/internal/utils"
)

// SurveyHandler serves the public side of feedback sessions
type SurveyHandler struct {
	BaseHandler
	sessionService  services.SessionService
	responseService services.ResponseService
}

func NewSurveyHandler(sessionService services.SessionService, responseService services.ResponseService, logger utils.Logger) *SurveyHandler {
	return &SurveyHandler{
		BaseHandler:     NewBaseHandler(logger),
		sessionService:  sessionService,
		responseService: responseService,
	}
}

// CreateSession opens a new feedback session for a manager
// @Router /surveys [post]
func (h *SurveyHandler) CreateSession(c *gin.Context) {
	var req services.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating feedback session", "manager_email", services.MaskEmail(req.ManagerEmail))

	session, err := h.sessionService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetSession returns the respondent view of a session. Closed sessions are
// returned with their status rather than as an error.
// @Router /surveys/{id} [get]
func (h *SurveyHandler) GetSession(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.GetPublic(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SubmitResponse records one anonymous response
// @Router /surveys/{id}/responses [post]
func (h *SurveyHandler) SubmitResponse(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.responseService.Submit(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Thank you for your feedback", result)
}
