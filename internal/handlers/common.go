package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exercise-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-service/internal/services"
	"github.com/SAP-F-2025/exercise-service/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error codes let the host app branch without parsing messages.
const (
	CodeBadRequest     = "bad_request"
	CodeValidation     = "validation_failed"
	CodeInvalidData    = "invalid_exercise_data"
	CodeNotFound       = "not_found"
	CodeNotEligible    = "not_eligible"
	CodeConflict       = "conflict"
	CodeUnavailable    = "temporarily_unavailable"
	CodeInternal       = "internal_error"
	CodeUnsupported    = "unsupported"
	CodeSessionLoading = "session_loading"
)

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// requestLogger prefers the request-scoped logger set by ContextLogger.
func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	if _, ok := c.Get("logger"); ok {
		return utils.GetLoggerFromContext(c)
	}
	return h.logger
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.requestLogger(c).LogError(err, message, additionalFields...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.requestLogger(c).Warn(message, additionalFields...)
}

func (h *BaseHandler) LogDebug(c *gin.Context, message string, additionalFields ...interface{}) {
	h.requestLogger(c).Debug(message, additionalFields...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, code, message string, err error, details ...interface{}) {
	resp := ErrorResponse{
		Message: message,
		Code:    code,
	}
	if len(details) > 0 {
		resp.Details = details[0]
	}

	if statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode, "error", err)
	}
	c.AbortWithStatusJSON(statusCode, resp)
}

// handleServiceError maps service error classes to HTTP responses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err):
		var ves services.ValidationErrors
		if errors.As(err, &ves) {
			h.RespondWithError(c, http.StatusUnprocessableEntity, CodeInvalidData, "Exercise data is invalid", err, ves)
			return
		}
		h.RespondWithError(c, http.StatusUnprocessableEntity, CodeInvalidData, "Exercise data is invalid", err, err.Error())
	case services.IsEligibility(err):
		h.RespondWithError(c, http.StatusForbidden, CodeNotEligible, err.Error(), err)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, CodeNotFound, err.Error(), err)
	case services.IsBadRequest(err):
		h.RespondWithError(c, http.StatusBadRequest, CodeBadRequest, err.Error(), err)
	case errors.Is(err, services.ErrSessionLoading):
		h.RespondWithError(c, http.StatusConflict, CodeSessionLoading, "Session is still loading", err)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, CodeConflict, err.Error(), err)
	case errors.Is(err, repositories.ErrListUnsupported):
		h.RespondWithError(c, http.StatusNotImplemented, CodeUnsupported, "Listing is not supported by the configured storage", err)
	case services.IsRetryable(err):
		h.RespondWithError(c, http.StatusServiceUnavailable, CodeUnavailable, "Temporarily unavailable, please retry", err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, CodeInternal, "Internal server error", err)
	}
}
