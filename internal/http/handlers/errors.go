package handlers

import (
	"errors"
	"net/http"

	"rentalapi/internal/domain"
	"rentalapi/internal/http/middleware"
	"rentalapi/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses. Missing rows and
// broken references are client errors here (400), not 404s: the UI treats
// both as "this operation is impossible", and conflicts alone get 409.
func RespondDomainError(c *gin.Context, err error) {
	var conflict domain.ConflictError
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.As(err, &conflict):
		respondError(c, http.StatusConflict, "conflict", conflict.Error(), gin.H{
			"startDate":    conflict.StartDate,
			"endDate":      conflict.EndDate,
			"clientName":   conflict.ClientName,
			"isSameClient": conflict.IsSameClient,
		})
	case domain.IsReferential(err):
		respondError(c, http.StatusBadRequest, "impossible_operation", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusBadRequest, "not_found", err.Error(), nil)
	default:
		utils.LogError(middleware.GetRequestID(c), "http", c.Request.Method+" "+c.Request.URL.Path, err)
		respondError(c, http.StatusInternalServerError, "internal_error", "unexpected error", nil)
	}
}
