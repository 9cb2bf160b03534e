package handlers

import (
	"net/http"

	"garage-billing-api/internal/repositories"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondError maps a service error to the matching HTTP status using the
// typed repository error helpers.
func respondError(c *gin.Context, action string, err error) {
	switch {
	case repositories.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Not found",
			Message: err.Error(),
		})
	case repositories.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
	case repositories.IsDuplicate(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "Already exists",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   action,
			Message: err.Error(),
		})
	}
}
