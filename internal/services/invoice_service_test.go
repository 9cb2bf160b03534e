package services

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"garage-billing-api/internal/repositories"
	"garage-billing-api/internal/repositories/sqlite"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

func setupServices(t *testing.T) (*InvoiceService, *AutocompleteService, func()) {
	tempDir, err := os.MkdirTemp("", "services_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tempDir, "test.db")
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	schema := []string{
		`CREATE TABLE invoices (
			invoice_no TEXT PRIMARY KEY,
			client     TEXT NOT NULL,
			gst        TEXT,
			date       TEXT NOT NULL,
			car_make   TEXT NOT NULL,
			car_model  TEXT NOT NULL,
			license_no TEXT NOT NULL,
			cgst       REAL NOT NULL,
			sgst       REAL NOT NULL,
			total      REAL NOT NULL
		)`,
		`CREATE TABLE invoice_items (
			invoice_no  TEXT NOT NULL,
			particulars TEXT NOT NULL,
			quantity    INTEGER NOT NULL,
			amount      REAL NOT NULL,
			rate        REAL NOT NULL
		)`,
		`CREATE TABLE car_makes (name TEXT PRIMARY KEY, last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP)`,
		`CREATE TABLE car_models (name TEXT PRIMARY KEY, last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP)`,
		`CREATE TABLE particulars (name TEXT PRIMARY KEY, last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Failed to create schema: %v", err)
		}
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	invoiceRepo := sqlite.NewInvoiceRepository(db, logger)
	autocompleteRepo := sqlite.NewAutocompleteRepository(db, logger)

	cleanup := func() {
		db.Close()
		os.RemoveAll(tempDir)
	}

	return NewInvoiceService(invoiceRepo, autocompleteRepo, logger),
		NewAutocompleteService(autocompleteRepo, logger),
		cleanup
}

func validRequest() *SaveInvoiceRequest {
	return &SaveInvoiceRequest{
		InvoiceNo:  "1",
		Client:     "Ravi Kumar",
		GST:        "29ABCDE1234F1Z5",
		Date:       "2026-08-15",
		CarMake:    "Toyota",
		CarModel:   "Corolla",
		CarLicense: "KA01AB1234",
		Items: []LineItemRequest{
			{Particulars: "Engine oil", Quantity: 2, Rate: 450},
			{Particulars: "Labour", Quantity: 1, Rate: 500},
		},
	}
}

func TestInvoiceService_SaveInvoice(t *testing.T) {
	invoiceService, _, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	invoice, err := invoiceService.SaveInvoice(ctx, validRequest())
	if err != nil {
		t.Fatalf("SaveInvoice() failed: %v", err)
	}

	if invoice.Subtotal != 1400 || invoice.Total != 1652 {
		t.Errorf("totals = %v/%v, want 1400/1652", invoice.Subtotal, invoice.Total)
	}

	fetched, err := invoiceService.GetInvoice(ctx, "1")
	if err != nil {
		t.Fatalf("GetInvoice() failed: %v", err)
	}
	if fetched.Client != "Ravi Kumar" {
		t.Errorf("Client = %s, want Ravi Kumar", fetched.Client)
	}
}

func TestInvoiceService_SaveInvoiceRecordsNames(t *testing.T) {
	invoiceService, autocompleteService, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := invoiceService.SaveInvoice(ctx, validRequest()); err != nil {
		t.Fatalf("SaveInvoice() failed: %v", err)
	}

	makes, err := autocompleteService.Suggest(ctx, repositories.CategoryCarMakes, "to")
	if err != nil {
		t.Fatalf("Suggest() failed: %v", err)
	}
	if len(makes) != 1 || makes[0] != "Toyota" {
		t.Errorf("car make suggestions = %v, want [Toyota]", makes)
	}

	parts, err := autocompleteService.Suggest(ctx, repositories.CategoryParticulars, "eng")
	if err != nil {
		t.Fatalf("Suggest() failed: %v", err)
	}
	if len(parts) != 1 || parts[0] != "Engine oil" {
		t.Errorf("particulars suggestions = %v, want [Engine oil]", parts)
	}
}

func TestInvoiceService_SaveInvoiceValidation(t *testing.T) {
	invoiceService, _, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(req *SaveInvoiceRequest)
	}{
		{"non-numeric invoice number", func(req *SaveInvoiceRequest) { req.InvoiceNo = "abc" }},
		{"missing client", func(req *SaveInvoiceRequest) { req.Client = "" }},
		{"bad date", func(req *SaveInvoiceRequest) { req.Date = "15-08-2026" }},
		{"no items", func(req *SaveInvoiceRequest) { req.Items = nil }},
		{"blank particulars", func(req *SaveInvoiceRequest) { req.Items[0].Particulars = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			_, err := invoiceService.SaveInvoice(ctx, req)
			if err == nil {
				t.Fatal("SaveInvoice() should have failed")
			}
			if !repositories.IsValidation(err) {
				t.Errorf("error = %v, want a validation error", err)
			}
		})
	}
}

func TestInvoiceService_InclusiveRateNormalization(t *testing.T) {
	invoiceService, _, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	req := validRequest()
	req.Items = []LineItemRequest{
		// 590 gross at 18% GST is 500 net
		{Particulars: "Labour", Quantity: 1, RateInclusive: 590},
	}

	invoice, err := invoiceService.SaveInvoice(ctx, req)
	if err != nil {
		t.Fatalf("SaveInvoice() failed: %v", err)
	}

	if invoice.Subtotal != 500 {
		t.Errorf("Subtotal = %v, want 500 after stripping GST", invoice.Subtotal)
	}
	if invoice.Total != 590 {
		t.Errorf("Total = %v, want 590", invoice.Total)
	}
}

func TestInvoiceService_AmountOverride(t *testing.T) {
	invoiceService, _, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	req := validRequest()
	req.Items = []LineItemRequest{
		{Particulars: "Engine oil", Quantity: 2, Rate: 450, Amount: 800},
	}

	invoice, err := invoiceService.SaveInvoice(ctx, req)
	if err != nil {
		t.Fatalf("SaveInvoice() failed: %v", err)
	}

	// the captured amount wins; the net rate is re-derived from it
	if invoice.Items[0].Amount != 800 {
		t.Errorf("Amount = %v, want 800", invoice.Items[0].Amount)
	}
	if invoice.Items[0].Rate != 400 {
		t.Errorf("Rate = %v, want re-derived 400", invoice.Items[0].Rate)
	}
}

func TestInvoiceService_ComposeNew(t *testing.T) {
	invoiceService, _, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	result, err := invoiceService.ComposeNew(ctx)
	if err != nil {
		t.Fatalf("ComposeNew() failed: %v", err)
	}
	if result.InvoiceNo != "1" {
		t.Errorf("InvoiceNo = %s, want 1 on an empty store", result.InvoiceNo)
	}
	if result.Date == "" {
		t.Error("Date must be pre-filled")
	}

	if _, err := invoiceService.SaveInvoice(ctx, validRequest()); err != nil {
		t.Fatalf("SaveInvoice() failed: %v", err)
	}

	result, err = invoiceService.ComposeNew(ctx)
	if err != nil {
		t.Fatalf("ComposeNew() failed: %v", err)
	}
	if result.InvoiceNo != "2" {
		t.Errorf("InvoiceNo = %s, want 2", result.InvoiceNo)
	}
}

func TestInvoiceService_GetInvoiceMiss(t *testing.T) {
	invoiceService, _, cleanup := setupServices(t)
	defer cleanup()

	_, err := invoiceService.GetInvoice(context.Background(), "404")
	if err == nil {
		t.Fatal("GetInvoice() should fail for an unknown invoice")
	}
	if !repositories.IsNotFound(err) {
		t.Errorf("error = %v, want a not-found error", err)
	}
}

func TestInvoiceService_ListInvoicesValidation(t *testing.T) {
	invoiceService, _, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := invoiceService.ListInvoices(ctx, "2026-08-01", ""); err == nil {
		t.Error("ListInvoices() should reject a half-open range")
	}
	if _, err := invoiceService.ListInvoices(ctx, "01/08/2026", "31/08/2026"); err == nil {
		t.Error("ListInvoices() should reject malformed dates")
	}
	if _, err := invoiceService.DailySales(ctx, 2026, 13); err == nil {
		t.Error("DailySales() should reject month 13")
	}
	if _, err := invoiceService.YearlySales(ctx, 2027, 2026); err == nil {
		t.Error("YearlySales() should reject an inverted year range")
	}
}

func TestAutocompleteService_Session(t *testing.T) {
	invoiceService, autocompleteService, cleanup := setupServices(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := invoiceService.SaveInvoice(ctx, validRequest()); err != nil {
		t.Fatalf("SaveInvoice() failed: %v", err)
	}

	session, err := autocompleteService.NewSession(ctx)
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}

	got := session.Suggest(repositories.CategoryCarModels, "cor")
	if len(got) != 1 || got[0] != "Corolla" {
		t.Errorf("session Suggest(cor) = %v, want [Corolla]", got)
	}

	// a session is a snapshot: later writes are not visible inside it
	if err := autocompleteService.Record(ctx, repositories.CategoryCarModels, "Corsa"); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	got = session.Suggest(repositories.CategoryCarModels, "cors")
	if len(got) != 0 {
		t.Errorf("session Suggest(cors) = %v, want empty snapshot", got)
	}

	fresh, err := autocompleteService.NewSession(ctx)
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	got = fresh.Suggest(repositories.CategoryCarModels, "cors")
	if len(got) != 1 || got[0] != "Corsa" {
		t.Errorf("fresh session Suggest(cors) = %v, want [Corsa]", got)
	}

	session.Clear()
	if got := session.Suggest(repositories.CategoryCarMakes, "to"); len(got) != 0 {
		t.Errorf("Suggest after Clear() = %v, want empty", got)
	}
}

func TestAutocompleteService_UnknownCategory(t *testing.T) {
	_, autocompleteService, cleanup := setupServices(t)
	defer cleanup()

	_, err := autocompleteService.Suggest(context.Background(), repositories.Category("bogus"), "x")
	if err == nil {
		t.Fatal("Suggest() should reject an unknown category")
	}
	if !repositories.IsValidation(err) {
		t.Errorf("error = %v, want a validation error", err)
	}
}
