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
	paymentColumns = `p.id, p.invoice_id, p.student_id, p.amount, p.method, p.paid_at, p.reference, p.notes, p.created_at,
        i.invoice_number, s.full_name AS student_name`
	paymentFrom = "FROM payments p JOIN invoices i ON i.id = p.invoice_id JOIN students s ON s.id = p.student_id"
)

// PaymentRepository manages persistence for payments.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// List returns payments matching the filter.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	p := listing.NewPredicate()
	if filter.InvoiceID != "" {
		p.Eq("p.invoice_id", filter.InvoiceID)
	}
	if filter.StudentID != "" {
		p.Eq("p.student_id", filter.StudentID)
	}
	p.Enum("p.method", filter.Method)
	if filter.From != nil {
		p.Gte("p.paid_at", *filter.From)
	}
	if filter.To != nil {
		p.Cond("p.paid_at < %[1]s::date + INTERVAL '1 day'", filter.To.Format("2006-01-02"))
	}
	if filter.Search != "" {
		p.AnyContains(filter.Search, "p.reference", "s.full_name")
	}

	payments := []models.PaymentDetail{}
	total, err := listPage(ctx, r.db, &payments, paymentColumns, paymentFrom, p, "p.paid_at DESC, p.created_at DESC", filter.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	return payments, total, nil
}

// FindByID fetches a payment.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.PaymentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE p.id = $1", paymentColumns, paymentFrom)
	var payment models.PaymentDetail
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// Create inserts a payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	payment.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO payments (id, invoice_id, student_id, amount, method, paid_at, reference, notes, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query, payment.ID, payment.InvoiceID, payment.StudentID, payment.Amount, payment.Method,
		payment.PaidAt, payment.Reference, payment.Notes, payment.CreatedAt); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// Delete removes a payment.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	if err := execAffecting(ctx, r.db, "DELETE FROM payments WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}
