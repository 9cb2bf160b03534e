package models

import "math"

// GST is split evenly between the central and state components. Rates are
// applied to the tax-exclusive subtotal.
const (
	CGSTRate = 0.09
	SGSTRate = 0.09
)

// TaxTotals holds the derived monetary fields of an invoice.
type TaxTotals struct {
	Subtotal float64 `json:"subtotal"`
	CGST     float64 `json:"cgst"`
	SGST     float64 `json:"sgst"`
	Total    float64 `json:"total"`
}

// ComputeTotals derives the invoice totals from its line items. The subtotal
// is accumulated at full precision, each tax component is rounded once, and
// the total is the sum of the rounded fields, so
// Total == Subtotal + CGST + SGST holds exactly.
func ComputeTotals(items []LineItem) TaxTotals {
	var raw float64
	for i := range items {
		raw += items[i].Amount
	}

	subtotal := roundToTwoDecimals(raw)
	cgst := roundToTwoDecimals(raw * CGSTRate)
	sgst := roundToTwoDecimals(raw * SGSTRate)

	return TaxTotals{
		Subtotal: subtotal,
		CGST:     cgst,
		SGST:     sgst,
		Total:    roundToTwoDecimals(subtotal + cgst + sgst),
	}
}

// DeriveAmount computes a line amount from a net unit rate and quantity.
func DeriveAmount(rate float64, quantity int) float64 {
	return roundToTwoDecimals(rate * float64(quantity))
}

// DeriveRateFromInclusive strips the full GST from a tax-inclusive unit rate.
func DeriveRateFromInclusive(rateInclusive float64) float64 {
	return rateInclusive / (1 + CGSTRate + SGSTRate)
}

// DeriveRateFromAmount back-computes the net unit rate from a line amount.
// A zero or negative quantity yields a zero rate.
func DeriveRateFromAmount(amount float64, quantity int) float64 {
	if quantity <= 0 {
		return 0
	}
	return amount / float64(quantity)
}

func roundToTwoDecimals(v float64) float64 {
	return math.Round(v*100) / 100
}
