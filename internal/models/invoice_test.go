package models

import (
	"strings"
	"testing"
)

func validInvoice() *Invoice {
	return &Invoice{
		InvoiceNo:  "42",
		Client:     "Ravi Kumar",
		GST:        "29ABCDE1234F1Z5",
		Date:       "2026-08-15",
		CarMake:    "Toyota",
		CarModel:   "Corolla",
		CarLicense: "KA01AB1234",
		Items: []LineItem{
			NewLineItem("Engine oil", 2, 450),
			NewLineItem("Labour", 1, 500),
		},
	}
}

func TestInvoiceValidate(t *testing.T) {
	inv := validInvoice()
	if err := inv.Validate(); err != nil {
		t.Errorf("Validate() failed for valid invoice: %v", err)
	}
}

func TestInvoiceValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(inv *Invoice)
		wantMsg string
	}{
		{"empty invoice number", func(inv *Invoice) { inv.InvoiceNo = " " }, "invoice number is required"},
		{"non-numeric invoice number", func(inv *Invoice) { inv.InvoiceNo = "INV-42" }, "must be numeric"},
		{"empty client", func(inv *Invoice) { inv.Client = "" }, "client name is required"},
		{"bad date", func(inv *Invoice) { inv.Date = "15/08/2026" }, "YYYY-MM-DD"},
		{"empty car make", func(inv *Invoice) { inv.CarMake = "" }, "car make is required"},
		{"empty car model", func(inv *Invoice) { inv.CarModel = "" }, "car model is required"},
		{"empty license", func(inv *Invoice) { inv.CarLicense = "" }, "license number is required"},
		{"no items", func(inv *Invoice) { inv.Items = nil }, "at least one line item"},
		{"blank particulars", func(inv *Invoice) { inv.Items[0].Particulars = " " }, "line item 1"},
		{"negative quantity", func(inv *Invoice) {
			inv.Items[1].Quantity = -1
			inv.Items[1].Amount = -500
		}, "line item 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := validInvoice()
			tt.mutate(inv)
			err := inv.Validate()
			if err == nil {
				t.Fatal("Validate() should have failed")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestInvoiceValidateOptionalGST(t *testing.T) {
	inv := validInvoice()
	inv.GST = ""
	if err := inv.Validate(); err != nil {
		t.Errorf("Validate() should allow an empty GST field: %v", err)
	}
}

func TestInvoiceRecomputeTotals(t *testing.T) {
	inv := validInvoice()
	// stale derived fields must be overwritten
	inv.Subtotal = 1
	inv.CGST = 2
	inv.SGST = 3
	inv.Total = 4

	inv.RecomputeTotals()

	if inv.Subtotal != 1400 {
		t.Errorf("Subtotal = %v, want 1400", inv.Subtotal)
	}
	if inv.CGST != 126 {
		t.Errorf("CGST = %v, want 126", inv.CGST)
	}
	if inv.SGST != 126 {
		t.Errorf("SGST = %v, want 126", inv.SGST)
	}
	if inv.Total != 1652 {
		t.Errorf("Total = %v, want 1652", inv.Total)
	}
}

func TestLineItemSetters(t *testing.T) {
	item := NewLineItem("Brake pads", 2, 600)
	if item.Amount != 1200 {
		t.Fatalf("Amount = %v, want 1200", item.Amount)
	}

	item.SetQuantity(3)
	if item.Amount != 1800 {
		t.Errorf("after SetQuantity(3), Amount = %v, want 1800", item.Amount)
	}

	item.SetRate(500)
	if item.Amount != 1500 {
		t.Errorf("after SetRate(500), Amount = %v, want 1500", item.Amount)
	}

	item.SetAmount(900)
	if item.Rate != 300 {
		t.Errorf("after SetAmount(900), Rate = %v, want 300", item.Rate)
	}
}

func TestLineItemSetAmountZeroQuantity(t *testing.T) {
	item := NewLineItem("Disposal fee", 0, 0)
	item.SetAmount(150)
	if item.Rate != 0 {
		t.Errorf("Rate = %v, want 0 when quantity is 0", item.Rate)
	}
	if item.Amount != 150 {
		t.Errorf("Amount = %v, want 150", item.Amount)
	}
}
