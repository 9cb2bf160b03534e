package models

import (
	"fmt"
	"math"
	"strings"
)

// LineItem represents one billable row of an invoice. Items are plain value
// records owned by their invoice; they only become durable when the invoice
// header is saved.
type LineItem struct {
	Particulars string  `json:"particulars" db:"particulars" validate:"required,min=1"`
	Quantity    int     `json:"quantity" db:"quantity" validate:"min=0"`
	Rate        float64 `json:"rate" db:"rate" validate:"min=0"`
	Amount      float64 `json:"amount" db:"amount"`
}

// NewLineItem creates a line item from a net unit rate, deriving the amount.
func NewLineItem(particulars string, quantity int, rate float64) LineItem {
	return LineItem{
		Particulars: strings.TrimSpace(particulars),
		Quantity:    quantity,
		Rate:        rate,
		Amount:      DeriveAmount(rate, quantity),
	}
}

// Validate validates the line item data
func (li *LineItem) Validate() error {
	if strings.TrimSpace(li.Particulars) == "" {
		return fmt.Errorf("particulars is required")
	}

	if li.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}

	if li.Rate < 0 {
		return fmt.Errorf("rate cannot be negative")
	}

	// amount must agree with rate * quantity within a cent; a zero quantity
	// marks a flat-amount item whose rate carries no meaning
	if li.Quantity > 0 {
		expected := DeriveAmount(li.Rate, li.Quantity)
		if math.Abs(li.Amount-expected) > 0.01 {
			return fmt.Errorf("amount does not match rate * quantity")
		}
	}

	return nil
}

// SetAmount overrides the line amount and re-derives the net rate from it.
// With a zero quantity the rate is forced to 0.
func (li *LineItem) SetAmount(amount float64) {
	li.Amount = roundToTwoDecimals(amount)
	li.Rate = DeriveRateFromAmount(li.Amount, li.Quantity)
}

// SetRate updates the net unit rate and recalculates the amount.
func (li *LineItem) SetRate(rate float64) {
	li.Rate = rate
	li.Amount = DeriveAmount(rate, li.Quantity)
}

// SetQuantity updates the quantity and recalculates the amount.
func (li *LineItem) SetQuantity(quantity int) {
	li.Quantity = quantity
	li.Amount = DeriveAmount(li.Rate, quantity)
}
