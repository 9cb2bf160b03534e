package repositories

import (
	"context"

	"garage-billing-api/internal/autocomplete"
	"garage-billing-api/internal/models"
)

// InvoiceRepository is the only component allowed to mutate durable invoice
// state. An invoice header and its line items are created, replaced or
// destroyed as one atomic unit; a failed operation leaves storage unchanged
// and is reported through the returned error, never by panicking.
type InvoiceRepository interface {
	// NextInvoiceNumber returns max(stored invoice numbers) + 1, or 1 when
	// no invoices exist. The number is advisory until Save commits.
	NextInvoiceNumber(ctx context.Context) (int, error)

	// Save inserts the header and all line items in a single transaction.
	// Totals are recomputed from the items before writing.
	Save(ctx context.Context, invoice *models.Invoice) error

	// Fetch loads the header and its items. Returns (nil, nil) when no
	// header matches: a lookup miss is not an error.
	Fetch(ctx context.Context, invoiceNo string) (*models.Invoice, error)

	// Update rewrites the header in place and replaces every item row in
	// the same transaction. A partially applied update is never observable.
	Update(ctx context.Context, invoice *models.Invoice) error

	// Delete removes item rows and the header in one transaction. Deleting
	// an unknown invoice number is a no-op.
	Delete(ctx context.Context, invoiceNo string) error

	// List projections and sales aggregations. All of these are read-only
	// and return empty slices, never nil errors, when nothing matches.
	ListByDateRange(ctx context.Context, startDate, endDate string) ([]*models.InvoiceSummary, error)
	ListByYearMonth(ctx context.Context, year, month int) ([]*models.InvoiceSummary, error)
	DailyTotals(ctx context.Context, year, month int) ([]DailyTotal, error)
	MonthlyTotals(ctx context.Context, year int) ([]MonthlyTotal, error)
	YearlyTotals(ctx context.Context, startYear, endYear int) ([]YearlyTotal, error)
}

// Category identifies one of the autocomplete name tables. The set is closed;
// category values map directly to table names and are never caller-supplied
// without validation.
type Category string

// Autocomplete categories
const (
	CategoryCarMakes    Category = "car_makes"
	CategoryCarModels   Category = "car_models"
	CategoryParticulars Category = "particulars"
)

// Categories lists every valid autocomplete category.
func Categories() []Category {
	return []Category{CategoryCarMakes, CategoryCarModels, CategoryParticulars}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryCarMakes, CategoryCarModels, CategoryParticulars:
		return true
	}
	return false
}

// AutocompleteRepository bridges the durable recency-ranked name lists and
// the in-memory trie.
type AutocompleteRepository interface {
	// Upsert records a use of name in the category: inserts it or bumps
	// its last_used timestamp. Blank names are a no-op.
	Upsert(ctx context.Context, category Category, name string) error

	// LoadInto seeds the trie with every name in the category, most
	// recently used first. That load order is what gives the trie its
	// approximate recency bias.
	LoadInto(ctx context.Context, category Category, trie *autocomplete.Trie) error
}

// DailyTotal is one day's sales total within a month.
type DailyTotal struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// MonthlyTotal is one month's sales total within a year.
type MonthlyTotal struct {
	Month int     `json:"month"`
	Total float64 `json:"total"`
}

// YearlyTotal is one year's sales total within a range of years.
type YearlyTotal struct {
	Year  int     `json:"year"`
	Total float64 `json:"total"`
}
