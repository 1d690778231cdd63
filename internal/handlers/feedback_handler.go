package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"feedbackapp/internal/config"
	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	"feedbackapp/internal/services"
	contextutils "feedbackapp/internal/utils"
)

// FeedbackHandler serves the survey form and submission endpoints
type FeedbackHandler struct {
	survey *services.SurveyService
	cfg    *config.Config
	logger *observability.Logger
}

// NewFeedbackHandler creates a new FeedbackHandler
func NewFeedbackHandler(survey *services.SurveyService, cfg *config.Config, logger *observability.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		survey: survey,
		cfg:    cfg,
		logger: logger,
	}
}

// GetFeedbackForm handles GET /v1/feedback/:token. It never consumes the
// token; an unconsumed link can be viewed any number of times.
func (h *FeedbackHandler) GetFeedbackForm(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_feedback_form")
	var err error
	defer observability.FinishSpan(span, &err)

	token := c.Param("token")
	data, err := h.survey.FormData(ctx, token)
	if err != nil {
		if contextutils.IsError(err, contextutils.ErrTokenNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Invalid or expired survey link"})
			return
		}
		h.logger.Error(ctx, "Failed to load feedback form", err)
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

// SubmitFeedback handles POST /v1/feedback/:token. Unknown and consumed
// tokens produce byte-identical 404 bodies.
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "submit_feedback")
	var err error
	defer observability.FinishSpan(span, &err)

	var req models.SubmitFeedbackRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		HandleValidationError(c, err)
		return
	}

	// The minimum length applies to the trimmed narrative, which is also
	// what gets stored and archived.
	req.Trim()
	if err = binding.Validator.ValidateStruct(&req); err != nil {
		HandleValidationError(c, err)
		return
	}

	token := c.Param("token")
	resp, err := h.survey.Submit(ctx, token, &req)
	if err != nil {
		if !contextutils.IsError(err, contextutils.ErrTokenNotFound) {
			h.logger.Error(ctx, "Feedback submission failed", err)
		}
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListFeedback handles GET /v1/admin/feedback with page/page_size query
// parameters, newest first.
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_feedback")
	var err error
	defer observability.FinishSpan(span, &err)

	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("page_size"), 20)
	if pageSize > 100 {
		pageSize = 100
	}

	list, err := h.survey.ListFeedback(ctx, page, pageSize)
	if err != nil {
		h.logger.Error(ctx, "Failed to list feedback", err)
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func parsePositiveInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
