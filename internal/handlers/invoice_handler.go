package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"garage-billing-api/internal/services"
)

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	invoiceService *services.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// ComposeNew returns the next advisory invoice number and today's date.
func (h *InvoiceHandler) ComposeNew(c *gin.Context) {
	result, err := h.invoiceService.ComposeNew(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to compose invoice", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateInvoice persists a newly composed invoice.
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req services.SaveInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	invoice, err := h.invoiceService.SaveInvoice(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Failed to save invoice", err)
		return
	}

	c.JSON(http.StatusCreated, invoice)
}

// GetInvoice loads one invoice by number.
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("invoiceNo"))
	if err != nil {
		respondError(c, "Failed to fetch invoice", err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice replaces a stored invoice with the edited version.
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	var req services.SaveInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	// The path names the invoice being edited.
	req.InvoiceNo = c.Param("invoiceNo")

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Failed to update invoice", err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice removes an invoice and its items.
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), c.Param("invoiceNo")); err != nil {
		respondError(c, "Failed to delete invoice", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted"})
}

// ListInvoices returns invoice summaries, optionally bounded by an
// inclusive start_date/end_date range or a year/month pair.
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid year",
				Message: err.Error(),
			})
			return
		}
		month, err := strconv.Atoi(c.DefaultQuery("month", "0"))
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid month",
				Message: err.Error(),
			})
			return
		}

		summaries, err := h.invoiceService.ListInvoicesByMonth(c.Request.Context(), year, month)
		if err != nil {
			respondError(c, "Failed to list invoices", err)
			return
		}
		c.JSON(http.StatusOK, summaries)
		return
	}

	summaries, err := h.invoiceService.ListInvoices(c.Request.Context(),
		c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		respondError(c, "Failed to list invoices", err)
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// GetDailySales returns per-day totals for one month.
func (h *InvoiceHandler) GetDailySales(c *gin.Context) {
	year, month, ok := h.yearMonthParams(c)
	if !ok {
		return
	}

	totals, err := h.invoiceService.DailySales(c.Request.Context(), year, month)
	if err != nil {
		respondError(c, "Failed to load daily sales", err)
		return
	}

	c.JSON(http.StatusOK, totals)
}

// GetMonthlySales returns per-month totals for one year.
func (h *InvoiceHandler) GetMonthlySales(c *gin.Context) {
	year, ok := h.yearParam(c, "year", time.Now().Year())
	if !ok {
		return
	}

	totals, err := h.invoiceService.MonthlySales(c.Request.Context(), year)
	if err != nil {
		respondError(c, "Failed to load monthly sales", err)
		return
	}

	c.JSON(http.StatusOK, totals)
}

// GetYearlySales returns per-year totals for an inclusive year range.
func (h *InvoiceHandler) GetYearlySales(c *gin.Context) {
	now := time.Now().Year()
	startYear, ok := h.yearParam(c, "start_year", now-4)
	if !ok {
		return
	}
	endYear, ok := h.yearParam(c, "end_year", now)
	if !ok {
		return
	}

	totals, err := h.invoiceService.YearlySales(c.Request.Context(), startYear, endYear)
	if err != nil {
		respondError(c, "Failed to load yearly sales", err)
		return
	}

	c.JSON(http.StatusOK, totals)
}

func (h *InvoiceHandler) yearMonthParams(c *gin.Context) (int, int, bool) {
	now := time.Now()
	year, ok := h.yearParam(c, "year", now.Year())
	if !ok {
		return 0, 0, false
	}

	month := int(now.Month())
	if monthStr := c.Query("month"); monthStr != "" {
		val, err := strconv.Atoi(monthStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid month",
				Message: err.Error(),
			})
			return 0, 0, false
		}
		month = val
	}

	return year, month, true
}

func (h *InvoiceHandler) yearParam(c *gin.Context, name string, fallback int) (int, bool) {
	value := c.Query(name)
	if value == "" {
		return fallback, true
	}

	year, err := strconv.Atoi(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid " + name,
			Message: err.Error(),
		})
		return 0, false
	}
	return year, true
}
