package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/stwalsh4118/landrecords/internal/logger"
	"github.com/stwalsh4118/landrecords/internal/middleware"
)

// Error code constants for standardized error responses
const (
	ErrNotFound           = "NOT_FOUND"
	ErrBadRequest         = "BAD_REQUEST"
	ErrConflict           = "CONFLICT"
	ErrInternalServer     = "INTERNAL_SERVER_ERROR"
	ErrValidation         = "VALIDATION_ERROR"
	ErrDatabaseConnection = "DATABASE_CONNECTION_ERROR"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// Translator renders validator field errors as messages keyed by field.
// *validation.Validator satisfies it.
type Translator interface {
	FieldMessages(validator.ValidationErrors) map[string]interface{}
}

// NotFound returns a 404 Not Found error response.
func NotFound(c *gin.Context, message string) {
	warn(c, "Resource not found", message, nil)
	respond(c, http.StatusNotFound, ErrNotFound, message, nil)
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	warn(c, "Bad request", message, details)
	respond(c, http.StatusBadRequest, ErrBadRequest, message, details)
}

// Conflict returns a 409 Conflict error response.
func Conflict(c *gin.Context, message string) {
	warn(c, "Conflict", message, nil)
	respond(c, http.StatusConflict, ErrConflict, message, nil)
}

// InternalServerError returns a 500 Internal Server Error response.
// The error is logged; only message reaches the client.
func InternalServerError(c *gin.Context, message string, err error) {
	if log := middleware.GetLogger(c); log != nil {
		log.Error("Internal server error", err, logger.Fields{
			"message":    message,
			"request_id": middleware.GetRequestID(c),
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
		})
	}
	respond(c, http.StatusInternalServerError, ErrInternalServer, message, nil)
}

// ValidationError returns a 400 response with one message per failing field.
// A nil translator falls back to the built-in tag messages.
func ValidationError(c *gin.Context, trans Translator, validationErrors validator.ValidationErrors) {
	var details map[string]interface{}
	if trans != nil {
		details = trans.FieldMessages(validationErrors)
	} else {
		details = make(map[string]interface{}, len(validationErrors))
		for _, fe := range validationErrors {
			details[fe.Field()] = formatValidationError(fe)
		}
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Warn("Validation error", logger.Fields{
			"request_id": middleware.GetRequestID(c),
			"path":       c.Request.URL.Path,
			"fields":     details,
		})
	}

	respond(c, http.StatusBadRequest, ErrValidation, "Validation failed for one or more fields", details)
}

func warn(c *gin.Context, what, message string, details map[string]interface{}) {
	log := middleware.GetLogger(c)
	if log == nil {
		return
	}
	fields := logger.Fields{
		"message":    message,
		"request_id": middleware.GetRequestID(c),
		"path":       c.Request.URL.Path,
	}
	if details != nil {
		fields["details"] = details
	}
	log.Warn(what, fields)
}

func respond(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: middleware.GetRequestID(c),
		},
	})
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "required_without":
		return "This field is required when " + err.Param() + " is missing"
	case "len":
		return "Must have length of " + err.Param()
	case "min":
		return "Value is too short or small (minimum: " + err.Param() + ")"
	case "max":
		return "Value is too long or large (maximum: " + err.Param() + ")"
	case "gt":
		return "Must be greater than " + err.Param()
	case "gte":
		return "Must be greater than or equal to " + err.Param()
	case "oneof":
		return "Must be one of: " + err.Param()
	case "uuid":
		return "Must be a valid UUID"
	default:
		return "Validation failed for tag: " + err.Tag()
	}
}
