package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"garage-billing-api/internal/models"
	"garage-billing-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// InvoiceRepository implements the InvoiceRepository interface for SQLite.
type InvoiceRepository struct {
	baseRepository
}

// NewInvoiceRepository creates a new SQLite invoice repository
func NewInvoiceRepository(db *sql.DB, logger *logrus.Logger) repositories.InvoiceRepository {
	return &InvoiceRepository{
		baseRepository: newBaseRepository(db, "invoices", logger),
	}
}

// NextInvoiceNumber returns the next invoice number. Stored invoice numbers
// must be decimal-integer text; a non-numeric number is a corruption
// condition this query does not detect (CAST yields 0 for it).
func (r *InvoiceRepository) NextInvoiceNumber(ctx context.Context) (int, error) {
	query := "SELECT COALESCE(MAX(CAST(invoice_no AS INTEGER)), 0) + 1 FROM invoices"

	row := r.executeQueryRow(ctx, r.db, "next_number", query)

	var next int
	if err := row.Scan(&next); err != nil {
		return 0, repositories.NewRepositoryError("next_number", "invoice", "", err)
	}

	return next, nil
}

// Save inserts the invoice header and all line items in one transaction.
// Derived totals are recomputed from the items; each item row stores the net
// unit rate re-derived from its amount.
func (r *InvoiceRepository) Save(ctx context.Context, invoice *models.Invoice) error {
	invoice.RecomputeTotals()

	err := withTransaction(ctx, r.db, r.logger, func(tx *sql.Tx) error {
		headerQuery := `
			INSERT INTO invoices (
				invoice_no, client, gst, date, car_make, car_model, license_no,
				cgst, sgst, total
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := r.executeExec(ctx, tx, "save_header", headerQuery,
			invoice.InvoiceNo,
			invoice.Client,
			invoice.GST,
			invoice.Date,
			invoice.CarMake,
			invoice.CarModel,
			invoice.CarLicense,
			invoice.CGST,
			invoice.SGST,
			invoice.Total,
		)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return repositories.DuplicateError("invoice", "invoice_no", invoice.InvoiceNo)
			}
			return repositories.NewRepositoryError("save_header", "invoice", invoice.InvoiceNo, err)
		}

		return r.insertItems(ctx, tx, invoice)
	})

	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"invoice_no": invoice.InvoiceNo,
			"error":      err.Error(),
		}).Error("Invoice save rolled back")
		return err
	}

	return nil
}

// Fetch loads the invoice header and its items. A lookup miss returns
// (nil, nil). The subtotal is not stored; it is reconstructed as
// total - cgst - sgst.
func (r *InvoiceRepository) Fetch(ctx context.Context, invoiceNo string) (*models.Invoice, error) {
	headerQuery := `
		SELECT client, gst, date, car_make, car_model, license_no, cgst, sgst, total
		FROM invoices
		WHERE invoice_no = ?`

	row := r.executeQueryRow(ctx, r.db, "fetch_header", headerQuery, invoiceNo)

	invoice := &models.Invoice{InvoiceNo: invoiceNo}
	err := row.Scan(
		&invoice.Client,
		&invoice.GST,
		&invoice.Date,
		&invoice.CarMake,
		&invoice.CarModel,
		&invoice.CarLicense,
		&invoice.CGST,
		&invoice.SGST,
		&invoice.Total,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, repositories.NewRepositoryError("fetch_header", "invoice", invoiceNo, err)
	}

	invoice.Subtotal = invoice.Total - invoice.CGST - invoice.SGST

	itemsQuery := `
		SELECT particulars, quantity, rate, amount
		FROM invoice_items
		WHERE invoice_no = ?
		ORDER BY rowid`

	rows, err := r.executeQuery(ctx, r.db, "fetch_items", itemsQuery, invoiceNo)
	if err != nil {
		return nil, repositories.NewRepositoryError("fetch_items", "invoice", invoiceNo, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.LineItem
		if err := rows.Scan(&item.Particulars, &item.Quantity, &item.Rate, &item.Amount); err != nil {
			return nil, repositories.NewRepositoryError("fetch_items", "invoice", invoiceNo, err)
		}
		invoice.Items = append(invoice.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("fetch_items", "invoice", invoiceNo, err)
	}

	return invoice, nil
}

// Update rewrites the header in place and replaces every item row with the
// current item set, all inside one transaction. A reader can never observe
// the header updated with the old or empty item set.
func (r *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	invoice.RecomputeTotals()

	err := withTransaction(ctx, r.db, r.logger, func(tx *sql.Tx) error {
		headerQuery := `
			UPDATE invoices
			SET client = ?, gst = ?, date = ?, car_make = ?, car_model = ?,
				license_no = ?, cgst = ?, sgst = ?, total = ?
			WHERE invoice_no = ?`

		result, err := r.executeExec(ctx, tx, "update_header", headerQuery,
			invoice.Client,
			invoice.GST,
			invoice.Date,
			invoice.CarMake,
			invoice.CarModel,
			invoice.CarLicense,
			invoice.CGST,
			invoice.SGST,
			invoice.Total,
			invoice.InvoiceNo,
		)
		if err != nil {
			return repositories.NewRepositoryError("update_header", "invoice", invoice.InvoiceNo, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return repositories.NewRepositoryError("update_header", "invoice", invoice.InvoiceNo, err)
		}
		if affected == 0 {
			return repositories.NotFoundError("invoice", invoice.InvoiceNo)
		}

		deleteQuery := "DELETE FROM invoice_items WHERE invoice_no = ?"
		if _, err := r.executeExec(ctx, tx, "replace_items", deleteQuery, invoice.InvoiceNo); err != nil {
			return repositories.NewRepositoryError("replace_items", "invoice", invoice.InvoiceNo, err)
		}

		return r.insertItems(ctx, tx, invoice)
	})

	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"invoice_no": invoice.InvoiceNo,
			"error":      err.Error(),
		}).Error("Invoice update rolled back")
		return err
	}

	return nil
}

// Delete removes the item rows and then the header in one transaction. There
// is no database-enforced cascade; the store keeps both tables consistent.
func (r *InvoiceRepository) Delete(ctx context.Context, invoiceNo string) error {
	return withTransaction(ctx, r.db, r.logger, func(tx *sql.Tx) error {
		if _, err := r.executeExec(ctx, tx, "delete_items", "DELETE FROM invoice_items WHERE invoice_no = ?", invoiceNo); err != nil {
			return repositories.NewRepositoryError("delete_items", "invoice", invoiceNo, err)
		}

		if _, err := r.executeExec(ctx, tx, "delete_header", "DELETE FROM invoices WHERE invoice_no = ?", invoiceNo); err != nil {
			return repositories.NewRepositoryError("delete_header", "invoice", invoiceNo, err)
		}

		return nil
	})
}

// insertItems writes every line item row within tx. The stored rate is always
// the net unit rate, re-derived from the amount so amount and rate can never
// disagree in storage.
func (r *InvoiceRepository) insertItems(ctx context.Context, tx *sql.Tx, invoice *models.Invoice) error {
	itemQuery := `
		INSERT INTO invoice_items (invoice_no, particulars, quantity, amount, rate)
		VALUES (?, ?, ?, ?, ?)`

	for _, item := range invoice.Items {
		netRate := models.DeriveRateFromAmount(item.Amount, item.Quantity)

		_, err := r.executeExec(ctx, tx, "save_item", itemQuery,
			invoice.InvoiceNo,
			item.Particulars,
			item.Quantity,
			item.Amount,
			netRate,
		)
		if err != nil {
			return repositories.NewRepositoryError("save_item", "invoice", invoice.InvoiceNo, err)
		}
	}

	return nil
}

// ListByDateRange returns invoice summaries with date between startDate and
// endDate inclusive, newest first. Empty bounds list every invoice. The
// comparison is lexicographic on the ISO date text, which matches
// chronological order because the format is zero-padded.
func (r *InvoiceRepository) ListByDateRange(ctx context.Context, startDate, endDate string) ([]*models.InvoiceSummary, error) {
	query := "SELECT invoice_no, client, date, total FROM invoices"
	var args []interface{}

	if startDate != "" && endDate != "" {
		query += " WHERE date BETWEEN ? AND ?"
		args = append(args, startDate, endDate)
	}
	query += " ORDER BY date DESC"

	return r.querySummaries(ctx, "list_by_date_range", query, args...)
}

// ListByYearMonth returns invoice summaries for a given year and month,
// newest first.
func (r *InvoiceRepository) ListByYearMonth(ctx context.Context, year, month int) ([]*models.InvoiceSummary, error) {
	query := `
		SELECT invoice_no, client, date, total
		FROM invoices
		WHERE strftime('%Y', date) = ? AND strftime('%m', date) = ?
		ORDER BY date DESC`

	return r.querySummaries(ctx, "list_by_year_month", query,
		fmt.Sprintf("%d", year), fmt.Sprintf("%02d", month))
}

func (r *InvoiceRepository) querySummaries(ctx context.Context, operation, query string, args ...interface{}) ([]*models.InvoiceSummary, error) {
	rows, err := r.executeQuery(ctx, r.db, operation, query, args...)
	if err != nil {
		return nil, repositories.NewRepositoryError(operation, "invoice", "", err)
	}
	defer rows.Close()

	summaries := []*models.InvoiceSummary{}
	for rows.Next() {
		summary := &models.InvoiceSummary{}
		if err := rows.Scan(&summary.InvoiceNo, &summary.Client, &summary.Date, &summary.Total); err != nil {
			return nil, repositories.NewRepositoryError(operation, "invoice", "", err)
		}
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError(operation, "invoice", "", err)
	}

	return summaries, nil
}

// DailyTotals returns per-day sales totals for a given month, in date order.
func (r *InvoiceRepository) DailyTotals(ctx context.Context, year, month int) ([]repositories.DailyTotal, error) {
	query := `
		SELECT date, SUM(total) AS daily_total
		FROM invoices
		WHERE strftime('%Y', date) = ? AND strftime('%m', date) = ?
		GROUP BY date
		ORDER BY date`

	rows, err := r.executeQuery(ctx, r.db, "daily_totals", query,
		fmt.Sprintf("%d", year), fmt.Sprintf("%02d", month))
	if err != nil {
		return nil, repositories.NewRepositoryError("daily_totals", "invoice", "", err)
	}
	defer rows.Close()

	totals := []repositories.DailyTotal{}
	for rows.Next() {
		var t repositories.DailyTotal
		if err := rows.Scan(&t.Date, &t.Total); err != nil {
			return nil, repositories.NewRepositoryError("daily_totals", "invoice", "", err)
		}
		totals = append(totals, t)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("daily_totals", "invoice", "", err)
	}

	return totals, nil
}

// MonthlyTotals returns per-month sales totals for a given year, in month
// order.
func (r *InvoiceRepository) MonthlyTotals(ctx context.Context, year int) ([]repositories.MonthlyTotal, error) {
	query := `
		SELECT CAST(strftime('%m', date) AS INTEGER) AS month, SUM(total) AS sales
		FROM invoices
		WHERE strftime('%Y', date) = ?
		GROUP BY month
		ORDER BY month`

	rows, err := r.executeQuery(ctx, r.db, "monthly_totals", query, fmt.Sprintf("%d", year))
	if err != nil {
		return nil, repositories.NewRepositoryError("monthly_totals", "invoice", "", err)
	}
	defer rows.Close()

	totals := []repositories.MonthlyTotal{}
	for rows.Next() {
		var t repositories.MonthlyTotal
		if err := rows.Scan(&t.Month, &t.Total); err != nil {
			return nil, repositories.NewRepositoryError("monthly_totals", "invoice", "", err)
		}
		totals = append(totals, t)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("monthly_totals", "invoice", "", err)
	}

	return totals, nil
}

// YearlyTotals returns per-year sales totals for startYear through endYear
// inclusive, in year order.
func (r *InvoiceRepository) YearlyTotals(ctx context.Context, startYear, endYear int) ([]repositories.YearlyTotal, error) {
	query := `
		SELECT CAST(strftime('%Y', date) AS INTEGER) AS year, SUM(total) AS sales
		FROM invoices
		WHERE CAST(strftime('%Y', date) AS INTEGER) BETWEEN ? AND ?
		GROUP BY year
		ORDER BY year`

	rows, err := r.executeQuery(ctx, r.db, "yearly_totals", query, startYear, endYear)
	if err != nil {
		return nil, repositories.NewRepositoryError("yearly_totals", "invoice", "", err)
	}
	defer rows.Close()

	totals := []repositories.YearlyTotal{}
	for rows.Next() {
		var t repositories.YearlyTotal
		if err := rows.Scan(&t.Year, &t.Total); err != nil {
			return nil, repositories.NewRepositoryError("yearly_totals", "invoice", "", err)
		}
		totals = append(totals, t)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("yearly_totals", "invoice", "", err)
	}

	return totals, nil
}
