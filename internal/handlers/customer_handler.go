package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"feedbackapp/internal/config"
	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	"feedbackapp/internal/services"
)

// CustomerHandler serves the customer intake endpoint
type CustomerHandler struct {
	survey *services.SurveyService
	cfg    *config.Config
	logger *observability.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(survey *services.SurveyService, cfg *config.Config, logger *observability.Logger) *CustomerHandler {
	return &CustomerHandler{
		survey: survey,
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCustomer handles POST /v1/customers. With consent the response also
// carries the minted survey token and whether the invite email went out.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "create_customer")
	var err error
	defer observability.FinishSpan(span, &err)

	var req models.CreateCustomerRequest
	if err = c.ShouldBindJSON(&req); err != nil {
		HandleValidationError(c, err)
		return
	}

	// Length constraints must hold after whitespace is stripped, since the
	// trimmed values are what gets stored.
	req.Trim()
	if err = binding.Validator.ValidateStruct(&req); err != nil {
		HandleValidationError(c, err)
		return
	}

	resp, err := h.survey.Intake(ctx, &req)
	if err != nil {
		h.logger.Error(ctx, "Customer intake failed", err)
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
