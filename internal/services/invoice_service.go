package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"garage-billing-api/internal/models"
	"garage-billing-api/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var validate = validator.New()

// InvoiceService implements the invoice composition workflow: it validates
// caller input, normalizes captured rates to their net form, recomputes
// totals and drives the invoice and autocomplete stores. The stores trust
// this layer for field-level validation.
type InvoiceService struct {
	invoices repositories.InvoiceRepository
	names    repositories.AutocompleteRepository
	logger   *logrus.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(invoices repositories.InvoiceRepository, names repositories.AutocompleteRepository, logger *logrus.Logger) *InvoiceService {
	if logger == nil {
		logger = logrus.New()
	}
	return &InvoiceService{
		invoices: invoices,
		names:    names,
		logger:   logger,
	}
}

// LineItemRequest is one billable row as captured by the form. The unit
// price may arrive in any of three equivalent shapes: a net rate, a
// tax-inclusive rate (18% GST folded in), or a line amount. Whichever was
// captured last wins; only the net rate is ever persisted.
type LineItemRequest struct {
	Particulars   string  `json:"particulars" validate:"required,min=1"`
	Quantity      int     `json:"quantity" validate:"min=0"`
	Rate          float64 `json:"rate" validate:"min=0"`
	RateInclusive float64 `json:"rate_inclusive" validate:"min=0"`
	Amount        float64 `json:"amount" validate:"min=0"`
}

// toLineItem normalizes the captured price to a canonical net-rate line item.
func (req *LineItemRequest) toLineItem() models.LineItem {
	item := models.NewLineItem(req.Particulars, req.Quantity, req.Rate)
	if req.RateInclusive > 0 {
		item.SetRate(models.DeriveRateFromInclusive(req.RateInclusive))
	}
	if req.Amount > 0 {
		item.SetAmount(req.Amount)
	}
	return item
}

// SaveInvoiceRequest carries the fields of a composed invoice.
type SaveInvoiceRequest struct {
	InvoiceNo  string            `json:"invoice_no" validate:"required,number"`
	Client     string            `json:"client" validate:"required,min=1"`
	GST        string            `json:"gst"`
	Date       string            `json:"date" validate:"required"`
	CarMake    string            `json:"car_make" validate:"required,min=1"`
	CarModel   string            `json:"car_model" validate:"required,min=1"`
	CarLicense string            `json:"car_license" validate:"required,min=1"`
	Items      []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ComposeResult seeds a fresh composition form.
type ComposeResult struct {
	InvoiceNo string `json:"invoice_no"`
	Date      string `json:"date"`
}

// ComposeNew returns the next advisory invoice number and today's date. The
// number is not reserved; it only becomes final when SaveInvoice commits.
func (s *InvoiceService) ComposeNew(ctx context.Context) (*ComposeResult, error) {
	next, err := s.invoices.NextInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	return &ComposeResult{
		InvoiceNo: strconv.Itoa(next),
		Date:      time.Now().Format(models.DateLayout),
	}, nil
}

// SaveInvoice validates and persists a newly composed invoice, then records
// the vehicle make, model and every particulars text in the autocomplete
// store. A persistence failure leaves the request untouched so the caller
// can retry with the same form state.
func (s *InvoiceService) SaveInvoice(ctx context.Context, req *SaveInvoiceRequest) (*models.Invoice, error) {
	invoice, err := s.buildInvoice(req)
	if err != nil {
		return nil, err
	}

	if err := s.invoices.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.recordNames(ctx, invoice)

	s.logger.WithFields(logrus.Fields{
		"invoice_no": invoice.InvoiceNo,
		"client":     invoice.Client,
		"total":      invoice.Total,
	}).Info("Invoice saved")

	return invoice, nil
}

// UpdateInvoice validates the edited invoice and atomically replaces the
// stored header and item set.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, req *SaveInvoiceRequest) (*models.Invoice, error) {
	invoice, err := s.buildInvoice(req)
	if err != nil {
		return nil, err
	}

	if err := s.invoices.Update(ctx, invoice); err != nil {
		return nil, err
	}

	s.recordNames(ctx, invoice)

	s.logger.WithFields(logrus.Fields{
		"invoice_no": invoice.InvoiceNo,
		"total":      invoice.Total,
	}).Info("Invoice updated")

	return invoice, nil
}

// GetInvoice loads a stored invoice by number.
func (s *InvoiceService) GetInvoice(ctx context.Context, invoiceNo string) (*models.Invoice, error) {
	invoice, err := s.invoices.Fetch(ctx, invoiceNo)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, repositories.NotFoundError("invoice", invoiceNo)
	}
	return invoice, nil
}

// DeleteInvoice removes a stored invoice and its items.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, invoiceNo string) error {
	if err := s.invoices.Delete(ctx, invoiceNo); err != nil {
		return err
	}

	s.logger.WithField("invoice_no", invoiceNo).Info("Invoice deleted")
	return nil
}

// ListInvoices returns invoice summaries filtered by an optional inclusive
// date range. Both bounds empty lists everything.
func (s *InvoiceService) ListInvoices(ctx context.Context, startDate, endDate string) ([]*models.InvoiceSummary, error) {
	if (startDate == "") != (endDate == "") {
		return nil, repositories.ValidationError("invoice", "",
			fmt.Errorf("start and end date must be supplied together"))
	}
	if startDate != "" {
		if err := validateDate(startDate); err != nil {
			return nil, repositories.ValidationError("invoice", "", err)
		}
		if err := validateDate(endDate); err != nil {
			return nil, repositories.ValidationError("invoice", "", err)
		}
	}

	return s.invoices.ListByDateRange(ctx, startDate, endDate)
}

// ListInvoicesByMonth returns invoice summaries for one calendar month.
func (s *InvoiceService) ListInvoicesByMonth(ctx context.Context, year, month int) ([]*models.InvoiceSummary, error) {
	if month < 1 || month > 12 {
		return nil, repositories.ValidationError("invoice", "",
			fmt.Errorf("month must be between 1 and 12"))
	}
	return s.invoices.ListByYearMonth(ctx, year, month)
}

// DailySales returns per-day sales totals for a month.
func (s *InvoiceService) DailySales(ctx context.Context, year, month int) ([]repositories.DailyTotal, error) {
	if month < 1 || month > 12 {
		return nil, repositories.ValidationError("invoice", "",
			fmt.Errorf("month must be between 1 and 12"))
	}
	return s.invoices.DailyTotals(ctx, year, month)
}

// MonthlySales returns per-month sales totals for a year.
func (s *InvoiceService) MonthlySales(ctx context.Context, year int) ([]repositories.MonthlyTotal, error) {
	return s.invoices.MonthlyTotals(ctx, year)
}

// YearlySales returns per-year sales totals for an inclusive year range.
func (s *InvoiceService) YearlySales(ctx context.Context, startYear, endYear int) ([]repositories.YearlyTotal, error) {
	if startYear > endYear {
		return nil, repositories.ValidationError("invoice", "",
			fmt.Errorf("start year must not be after end year"))
	}
	return s.invoices.YearlyTotals(ctx, startYear, endYear)
}

// buildInvoice validates the request and assembles a normalized invoice with
// recomputed totals.
func (s *InvoiceService) buildInvoice(req *SaveInvoiceRequest) (*models.Invoice, error) {
	if req == nil {
		return nil, repositories.ValidationError("invoice", "", fmt.Errorf("request cannot be nil"))
	}

	if err := validate.Struct(req); err != nil {
		return nil, repositories.ValidationError("invoice", req.InvoiceNo, err)
	}

	if err := validateDate(req.Date); err != nil {
		return nil, repositories.ValidationError("invoice", req.InvoiceNo, err)
	}

	items := make([]models.LineItem, 0, len(req.Items))
	for i := range req.Items {
		item := req.Items[i].toLineItem()
		if strings.TrimSpace(item.Particulars) == "" {
			return nil, repositories.ValidationError("invoice", req.InvoiceNo,
				fmt.Errorf("line item %d: particulars is required", i+1))
		}
		items = append(items, item)
	}

	invoice := &models.Invoice{
		InvoiceNo:  strings.TrimSpace(req.InvoiceNo),
		Client:     strings.TrimSpace(req.Client),
		GST:        strings.TrimSpace(req.GST),
		Date:       req.Date,
		CarMake:    strings.TrimSpace(req.CarMake),
		CarModel:   strings.TrimSpace(req.CarModel),
		CarLicense: strings.TrimSpace(req.CarLicense),
		Items:      items,
	}

	if err := invoice.Validate(); err != nil {
		return nil, repositories.ValidationError("invoice", invoice.InvoiceNo, err)
	}

	invoice.RecomputeTotals()
	return invoice, nil
}

// recordNames upserts the recurring entry names after a successful save.
// Upsert failures are logged and swallowed: the invoice is already durable
// and a stale suggestion corpus is not worth failing the operation.
func (s *InvoiceService) recordNames(ctx context.Context, invoice *models.Invoice) {
	upserts := []struct {
		category repositories.Category
		name     string
	}{
		{repositories.CategoryCarMakes, invoice.CarMake},
		{repositories.CategoryCarModels, invoice.CarModel},
	}
	for _, item := range invoice.Items {
		upserts = append(upserts, struct {
			category repositories.Category
			name     string
		}{repositories.CategoryParticulars, item.Particulars})
	}

	for _, u := range upserts {
		if err := s.names.Upsert(ctx, u.category, u.name); err != nil {
			s.logger.WithFields(logrus.Fields{
				"category": u.category,
				"name":     u.name,
				"error":    err.Error(),
			}).Warn("Failed to record autocomplete name")
		}
	}
}

func validateDate(date string) error {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return fmt.Errorf("date must be in YYYY-MM-DD format: %s", date)
	}
	return nil
}
