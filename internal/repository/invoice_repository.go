package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

const (
	invoiceColumns = `i.id, i.invoice_number, i.student_id, i.room_id, i.billing_month, i.billing_year, i.amount, i.status, i.due_date, i.notes, i.created_at, i.updated_at,
        s.full_name AS student_name, s.student_code, r.number AS room_number,
        COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.invoice_id = i.id), 0) AS paid_amount`
	invoiceFrom = "FROM invoices i JOIN students s ON s.id = i.student_id LEFT JOIN rooms r ON r.id = i.room_id"
)

// InvoiceRepository manages invoices and their line items.
type InvoiceRepository struct {
	db *sqlx.DB
}

// NewInvoiceRepository constructs the repository.
func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// List returns invoices matching the filter.
func (r *InvoiceRepository) List(ctx context.Context, filter models.InvoiceFilter) ([]models.InvoiceDetail, int, error) {
	p := listing.NewPredicate()
	if filter.StudentID != "" {
		p.Eq("i.student_id", filter.StudentID)
	}
	if filter.RoomID != "" {
		p.Eq("i.room_id", filter.RoomID)
	}
	p.Enum("i.status", filter.Status)
	if filter.Month != nil {
		p.Eq("i.billing_month", *filter.Month)
	}
	if filter.Year != nil {
		p.Eq("i.billing_year", *filter.Year)
	}
	if filter.DueFrom != nil {
		p.Gte("i.due_date", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		p.Lte("i.due_date", *filter.DueTo)
	}
	if filter.Search != "" {
		p.AnyContains(filter.Search, "i.invoice_number", "s.full_name")
	}

	invoices := []models.InvoiceDetail{}
	total, err := listPage(ctx, r.db, &invoices, invoiceColumns, invoiceFrom, p, "i.billing_year DESC, i.billing_month DESC, i.created_at DESC", filter.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, total, nil
}

// FindByID fetches an invoice with its items.
func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*models.InvoiceDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE i.id = $1", invoiceColumns, invoiceFrom)
	var invoice models.InvoiceDetail
	if err := r.db.GetContext(ctx, &invoice, query, id); err != nil {
		return nil, err
	}
	items := []models.InvoiceItem{}
	const itemsQuery = `SELECT id, invoice_id, description, kind, quantity, unit_price, amount FROM invoice_items WHERE invoice_id = $1 ORDER BY description`
	if err := r.db.SelectContext(ctx, &items, itemsQuery, id); err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	invoice.Items = items
	return &invoice, nil
}

// Create inserts the invoice and its items in one transaction.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice, items []models.InvoiceItem) error {
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `INSERT INTO invoices (id, invoice_number, student_id, room_id, billing_month, billing_year, amount, status, due_date, notes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
		if _, err := tx.ExecContext(ctx, query, invoice.ID, invoice.InvoiceNumber, invoice.StudentID, invoice.RoomID, invoice.BillingMonth,
			invoice.BillingYear, invoice.Amount, invoice.Status, invoice.DueDate, invoice.Notes, invoice.CreatedAt, invoice.UpdatedAt); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		const itemQuery = `INSERT INTO invoice_items (id, invoice_id, description, kind, quantity, unit_price, amount) VALUES ($1, $2, $3, $4, $5, $6, $7)`
		for i := range items {
			item := &items[i]
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			item.InvoiceID = invoice.ID
			if _, err := tx.ExecContext(ctx, itemQuery, item.ID, item.InvoiceID, item.Description, item.Kind, item.Quantity, item.UnitPrice, item.Amount); err != nil {
				return fmt.Errorf("create invoice item: %w", err)
			}
		}
		return nil
	})
}

// Update modifies due date and notes.
func (r *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	invoice.UpdatedAt = time.Now().UTC()
	const query = `UPDATE invoices SET due_date = $2, notes = $3, updated_at = $4 WHERE id = $1`
	if err := execAffecting(ctx, r.db, query, invoice.ID, invoice.DueDate, invoice.Notes, invoice.UpdatedAt); err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// UpdateStatus writes a new status without transition checks.
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id string, status models.InvoiceStatus) error {
	const query = `UPDATE invoices SET status = $2, updated_at = $3 WHERE id = $1`
	if err := execAffecting(ctx, r.db, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	return nil
}

// Delete removes an invoice with its items. Invoices with payments fail with a foreign key violation.
func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM invoice_items WHERE invoice_id = $1", id); err != nil {
			return fmt.Errorf("delete invoice items: %w", err)
		}
		if err := execAffecting(ctx, tx, "DELETE FROM invoices WHERE id = $1", id); err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		return nil
	})
}
