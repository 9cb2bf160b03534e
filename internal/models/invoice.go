package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the storage format for invoice dates. Dates are persisted as
// zero-padded ISO text so lexicographic comparison matches chronological order.
const DateLayout = "2006-01-02"

// Invoice represents an invoice header together with its line items.
// Subtotal, CGST, SGST and Total are derived fields: they are recomputed from
// the items on every save or update and never trusted from caller input.
type Invoice struct {
	InvoiceNo  string     `json:"invoice_no" db:"invoice_no" validate:"required,number"`
	Client     string     `json:"client" db:"client" validate:"required,min=1"`
	GST        string     `json:"gst" db:"gst"`
	Date       string     `json:"date" db:"date" validate:"required"`
	CarMake    string     `json:"car_make" db:"car_make" validate:"required,min=1"`
	CarModel   string     `json:"car_model" db:"car_model" validate:"required,min=1"`
	CarLicense string     `json:"car_license" db:"license_no" validate:"required,min=1"`
	Items      []LineItem `json:"items" validate:"required,min=1,dive"`
	Subtotal   float64    `json:"subtotal" db:"-"`
	CGST       float64    `json:"cgst" db:"cgst"`
	SGST       float64    `json:"sgst" db:"sgst"`
	Total      float64    `json:"total" db:"total"`
}

// RecomputeTotals recalculates the derived monetary fields from the items.
func (inv *Invoice) RecomputeTotals() {
	totals := ComputeTotals(inv.Items)
	inv.Subtotal = totals.Subtotal
	inv.CGST = totals.CGST
	inv.SGST = totals.SGST
	inv.Total = totals.Total
}

// Validate validates the invoice data. The GST field is optional: an empty
// string means the client has no GST registration.
func (inv *Invoice) Validate() error {
	if strings.TrimSpace(inv.InvoiceNo) == "" {
		return fmt.Errorf("invoice number is required")
	}

	if _, err := strconv.Atoi(inv.InvoiceNo); err != nil {
		return fmt.Errorf("invoice number must be numeric: %s", inv.InvoiceNo)
	}

	if strings.TrimSpace(inv.Client) == "" {
		return fmt.Errorf("client name is required")
	}

	if _, err := time.Parse(DateLayout, inv.Date); err != nil {
		return fmt.Errorf("date must be in YYYY-MM-DD format: %s", inv.Date)
	}

	if strings.TrimSpace(inv.CarMake) == "" {
		return fmt.Errorf("car make is required")
	}

	if strings.TrimSpace(inv.CarModel) == "" {
		return fmt.Errorf("car model is required")
	}

	if strings.TrimSpace(inv.CarLicense) == "" {
		return fmt.Errorf("license number is required")
	}

	if len(inv.Items) == 0 {
		return fmt.Errorf("invoice must have at least one line item")
	}

	for i := range inv.Items {
		if err := inv.Items[i].Validate(); err != nil {
			return fmt.Errorf("line item %d: %w", i+1, err)
		}
	}

	return nil
}

// InvoiceSummary is the list-view projection of an invoice header.
type InvoiceSummary struct {
	InvoiceNo string  `json:"invoice_no" db:"invoice_no"`
	Client    string  `json:"client" db:"client"`
	Date      string  `json:"date" db:"date"`
	Total     float64 `json:"total" db:"total"`
}
