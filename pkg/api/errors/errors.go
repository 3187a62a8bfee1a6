package errors

import (
	"log"
	"net/http"

	"github.com/dmgine/dmgine/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ValidationError returns a 400 enumerating the invalid fields without
// exposing internal detail
func ValidationError(c echo.Context, err error) error {
	// Log the actual error for debugging
	log.Printf("[VALIDATION ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	var fields []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
	}

	return c.JSON(http.StatusBadRequest, models.ValidationErrorResponse{
		Error:   "validation_error",
		Message: "Invalid request data. Please check your input and try again.",
		Fields:  fields,
	})
}

// InternalError returns a generic 500. The real error is logged server-side;
// the client only ever sees a sanitized generic message.
func InternalError(c echo.Context, err error) error {
	log.Printf("[INTERNAL ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred. Please try again later.",
	})
}

// ProviderError returns a generic 500 for a failed collaborator call. Any
// message text that might echo provider detail passes through Sanitize first.
func ProviderError(c echo.Context, err error) error {
	log.Printf("[PROVIDER ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "provider_error",
		Message: Sanitize("Failed to generate your message. Please try again."),
	})
}

// UnauthorizedError returns a generic 401
func UnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   "unauthorized",
		Message: "You are not authorized to access this resource.",
	})
}

// ConflictError returns a 409 with a message safe to expose
func ConflictError(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, models.ErrorResponse{
		Error:   "conflict",
		Message: message,
	})
}
