package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exercise-service/internal/services"
	"github.com/SAP-F-2025/exercise-service/internal/validator"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
			Code:    CodeBadRequest,
		})
		return ""
	}
	return idStr
}

// bindAndValidate decodes the JSON body into req and checks its tags. It
// writes the 400 response itself and reports whether the handler may go on.
func bindAndValidate(c *gin.Context, v *validator.Validator, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
			Code:    CodeBadRequest,
		})
		return false
	}
	if err := v.ValidateStruct(req); err != nil {
		var ves services.ValidationErrors
		if errors.As(err, &ves) {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
				Message: "Validation failed",
				Details: ves,
				Code:    CodeValidation,
			})
			return false
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
			Code:    CodeValidation,
		})
		return false
	}
	return true
}

// requestContext carries the caller's request id into service logs.
func requestContext(c *gin.Context) context.Context {
	return services.WithRequestID(c.Request.Context(), c.GetHeader("X-Request-ID"))
}
