// Package handlers contains the HTTP handlers for the feedback API.
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"feedbackapp/internal/middleware"
	contextutils "feedbackapp/internal/utils"
)

// HandleAppError handles any error and sends the appropriate HTTP response.
// Token errors get the original compact body shape so that unknown and
// consumed tokens stay byte-identical on the wire.
func HandleAppError(c *gin.Context, err error) {
	var appErr *contextutils.AppError
	if errors.As(err, &appErr) {
		if appErr.Code == contextutils.ErrorCodeTokenNotFound {
			c.JSON(http.StatusNotFound, gin.H{"detail": contextutils.ErrTokenNotFound.Message})
			return
		}
		_ = c.Error(appErr)
		middleware.StandardizeAppError(c, appErr)
		return
	}
	_ = c.Error(err)
	middleware.HandleAppError(c, err)
}

// HandleValidationError converts a request binding failure to a 400 response
// with field-level detail.
func HandleValidationError(c *gin.Context, err error) {
	details := err.Error()

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fieldErrs := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fieldErrs = append(fieldErrs, fmt.Sprintf("field '%s' failed validation '%s'", fe.Field(), fe.Tag()))
		}
		details = ""
		for i, fe := range fieldErrs {
			if i > 0 {
				details += "; "
			}
			details += fe
		}
	}

	appErr := contextutils.NewAppError(
		contextutils.ErrorCodeInvalidInput,
		contextutils.SeverityWarn,
		"Invalid request body",
		details,
	)
	_ = c.Error(appErr)
	middleware.StandardizeAppError(c, appErr)
}
