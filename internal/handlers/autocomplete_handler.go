package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"garage-billing-api/internal/repositories"
	"garage-billing-api/internal/services"
)

// AutocompleteHandler handles prefix suggestion HTTP requests
type AutocompleteHandler struct {
	autocompleteService *services.AutocompleteService
}

// NewAutocompleteHandler creates a new autocomplete handler
func NewAutocompleteHandler(autocompleteService *services.AutocompleteService) *AutocompleteHandler {
	return &AutocompleteHandler{
		autocompleteService: autocompleteService,
	}
}

// Suggest returns up to five completions for a prefix within a category.
// The category is one of car_makes, car_models or particulars.
func (h *AutocompleteHandler) Suggest(c *gin.Context) {
	category := repositories.Category(c.Param("category"))

	suggestions, err := h.autocompleteService.Suggest(c.Request.Context(), category, c.Query("prefix"))
	if err != nil {
		respondError(c, "Failed to load suggestions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category":    category,
		"suggestions": suggestions,
	})
}

// Record stores one name in a category, refreshing its recency.
func (h *AutocompleteHandler) Record(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	category := repositories.Category(c.Param("category"))
	if err := h.autocompleteService.Record(c.Request.Context(), category, req.Name); err != nil {
		respondError(c, "Failed to record name", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Name recorded"})
}
