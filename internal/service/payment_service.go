package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/pkg/database"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.PaymentDetail, error)
	Create(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id string) error
}

type invoiceLookup interface {
	FindByID(ctx context.Context, id string) (*models.InvoiceDetail, error)
}

// CreatePaymentRequest holds payload for recording a payment.
type CreatePaymentRequest struct {
	InvoiceID string  `json:"invoiceId" validate:"required,uuid"`
	StudentID string  `json:"studentId" validate:"required,uuid"`
	Amount    float64 `json:"amount" validate:"gt=0"`
	Method    string  `json:"method" validate:"required,oneof=CASH BANK_TRANSFER CARD OTHER"`
	PaidAt    string  `json:"paidAt"`
	Reference *string `json:"reference" validate:"omitempty,max=100"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

// PaymentService handles payment use-cases.
type PaymentService struct {
	repo      paymentRepository
	invoices  invoiceLookup
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewPaymentService constructs the service.
func NewPaymentService(repo paymentRepository, invoices invoiceLookup, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, invoices: invoices, validator: validate, metrics: metrics, logger: logger, now: time.Now}
}

// List returns payments and pagination metadata.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, *listing.Meta, error) {
	start := time.Now()
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, database.TranslateError(err, "payments")
	}
	s.metrics.ObserveDBQuery("payments.list", time.Since(start))
	return payments, filter.Page.Meta(total), nil
}

// Get returns a payment by ID.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.PaymentDetail, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, database.TranslateError(err, "payment")
	}
	return payment, nil
}

// Create records a payment. The invoice status is left for staff to update.
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*models.PaymentDetail, error) {
	req.Method = upper(req.Method)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid payment payload")
	}
	paidAt := s.now().UTC()
	if req.PaidAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.PaidAt)
		if err != nil {
			if parsed, err = parseDay(req.PaidAt); err != nil {
				return nil, fieldError("paidAt", "must be a date or RFC3339 timestamp", "invalid payment payload")
			}
		}
		paidAt = parsed.UTC()
	}

	invoice, err := s.invoices.FindByID(ctx, req.InvoiceID)
	if err != nil {
		return nil, database.TranslateError(err, "invoice")
	}
	if invoice.Status == models.InvoiceStatusCancelled {
		return nil, fieldError("invoiceId", "invoice is cancelled", "invalid payment payload")
	}
	if invoice.StudentID != req.StudentID {
		return nil, fieldError("studentId", "does not match the invoice student", "invalid payment payload")
	}

	payment := &models.Payment{
		InvoiceID: req.InvoiceID,
		StudentID: req.StudentID,
		Amount:    roundMoney(req.Amount),
		Method:    models.PaymentMethod(req.Method),
		PaidAt:    paidAt,
		Reference: optionalString(req.Reference),
		Notes:     optionalString(req.Notes),
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, database.TranslateError(err, "payment")
	}
	s.logger.Info("payment recorded", zap.String("id", payment.ID), zap.String("invoice_id", payment.InvoiceID), zap.Float64("amount", payment.Amount))
	return s.Get(ctx, payment.ID)
}

// Delete removes a payment.
func (s *PaymentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return database.TranslateError(err, "payment")
	}
	return nil
}
