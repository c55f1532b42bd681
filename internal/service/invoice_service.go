package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/pkg/database"
	appErrors "github.com/noah-isme/dorm-adp-api/pkg/errors"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
)

const invoiceNumberAttempts = 3

type invoiceRepository interface {
	List(ctx context.Context, filter models.InvoiceFilter) ([]models.InvoiceDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.InvoiceDetail, error)
	Create(ctx context.Context, invoice *models.Invoice, items []models.InvoiceItem) error
	Update(ctx context.Context, invoice *models.Invoice) error
	UpdateStatus(ctx context.Context, id string, status models.InvoiceStatus) error
	Delete(ctx context.Context, id string) error
}

type studentLookup interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

// InvoiceItemRequest is one billed line.
type InvoiceItemRequest struct {
	Description string  `json:"description" validate:"required,max=200"`
	Kind        string  `json:"kind" validate:"omitempty,oneof=RENT ELECTRICITY WATER SERVICE OTHER"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
}

// CreateInvoiceRequest holds payload for issuing an invoice.
type CreateInvoiceRequest struct {
	StudentID    string               `json:"studentId" validate:"required,uuid"`
	RoomID       *string              `json:"roomId" validate:"omitnil,uuid"`
	BillingMonth int                  `json:"billingMonth" validate:"required,min=1,max=12"`
	BillingYear  int                  `json:"billingYear" validate:"required,min=2000,max=2100"`
	DueDate      string               `json:"dueDate" validate:"required"`
	Notes        *string              `json:"notes" validate:"omitempty,max=500"`
	Items        []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateInvoiceRequest changes the due date or notes.
type UpdateInvoiceRequest struct {
	DueDate *string `json:"dueDate"`
	Notes   *string `json:"notes" validate:"omitnil,max=500"`
}

// InvoiceStatusRequest sets a new status.
type InvoiceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=UNPAID PAID PARTIALLY_PAID OVERDUE CANCELLED"`
}

// InvoiceService handles invoice use-cases.
type InvoiceService struct {
	repo      invoiceRepository
	students  studentLookup
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
	newSuffix func() string
}

// NewInvoiceService constructs the service.
func NewInvoiceService(repo invoiceRepository, students studentLookup, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *InvoiceService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		repo:      repo,
		students:  students,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
		newSuffix: randomInvoiceSuffix,
	}
}

// List returns invoices and pagination metadata.
func (s *InvoiceService) List(ctx context.Context, filter models.InvoiceFilter) ([]models.InvoiceDetail, *listing.Meta, error) {
	start := time.Now()
	invoices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, database.TranslateError(err, "invoices")
	}
	s.metrics.ObserveDBQuery("invoices.list", time.Since(start))
	return invoices, filter.Page.Meta(total), nil
}

// Get returns an invoice with its items.
func (s *InvoiceService) Get(ctx context.Context, id string) (*models.InvoiceDetail, error) {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, database.TranslateError(err, "invoice")
	}
	return invoice, nil
}

// Create issues an unpaid invoice. The room defaults to the student's current room.
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*models.InvoiceDetail, error) {
	for i := range req.Items {
		req.Items[i].Kind = upper(req.Items[i].Kind)
		req.Items[i].Description = strings.TrimSpace(req.Items[i].Description)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid invoice payload")
	}
	dueDate, err := parseDay(req.DueDate)
	if err != nil {
		return nil, fieldError("dueDate", "must be a date (YYYY-MM-DD)", "invalid invoice payload")
	}
	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		return nil, database.TranslateError(err, "student")
	}

	items := make([]models.InvoiceItem, len(req.Items))
	var total float64
	for i, item := range req.Items {
		kind := item.Kind
		if kind == "" {
			kind = "OTHER"
		}
		amount := roundMoney(item.Quantity * item.UnitPrice)
		items[i] = models.InvoiceItem{Description: item.Description, Kind: kind, Quantity: item.Quantity, UnitPrice: item.UnitPrice, Amount: amount}
		total += amount
	}

	invoice := &models.Invoice{
		StudentID:    req.StudentID,
		RoomID:       req.RoomID,
		BillingMonth: req.BillingMonth,
		BillingYear:  req.BillingYear,
		Amount:       roundMoney(total),
		Status:       models.InvoiceStatusUnpaid,
		DueDate:      dueDate,
		Notes:        optionalString(req.Notes),
	}
	if invoice.RoomID == nil {
		invoice.RoomID = student.RoomID
	}

	for attempt := 1; ; attempt++ {
		invoice.ID = ""
		invoice.InvoiceNumber = fmt.Sprintf("INV-%04d%02d-%s", req.BillingYear, req.BillingMonth, s.newSuffix())
		err = s.repo.Create(ctx, invoice, items)
		if err == nil {
			break
		}
		if !database.IsUniqueViolation(err) || attempt == invoiceNumberAttempts {
			return nil, database.TranslateError(err, "invoice")
		}
		s.metrics.RecordCodeCollision("invoice_number")
		s.logger.Warn("invoice number collision, retrying", zap.String("number", invoice.InvoiceNumber), zap.Int("attempt", attempt))
	}
	s.logger.Info("invoice issued", zap.String("id", invoice.ID), zap.String("number", invoice.InvoiceNumber), zap.Float64("amount", invoice.Amount))
	return s.Get(ctx, invoice.ID)
}

// Update changes the due date or notes.
func (s *InvoiceService) Update(ctx context.Context, id string, req UpdateInvoiceRequest) (*models.InvoiceDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid invoice payload")
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, database.TranslateError(err, "invoice")
	}
	invoice := detail.Invoice
	if req.DueDate != nil {
		due, err := parseDay(*req.DueDate)
		if err != nil {
			return nil, fieldError("dueDate", "must be a date (YYYY-MM-DD)", "invalid invoice payload")
		}
		invoice.DueDate = due
	}
	if req.Notes != nil {
		invoice.Notes = optionalString(req.Notes)
	}
	if err := s.repo.Update(ctx, &invoice); err != nil {
		return nil, database.TranslateError(err, "invoice")
	}
	detail.Invoice = invoice
	return detail, nil
}

// UpdateStatus writes the status chosen by staff. Any member of the enum is accepted.
func (s *InvoiceService) UpdateStatus(ctx context.Context, id string, req InvoiceStatusRequest) (*models.InvoiceDetail, error) {
	req.Status = upper(req.Status)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid invoice status")
	}
	if err := s.repo.UpdateStatus(ctx, id, models.InvoiceStatus(req.Status)); err != nil {
		return nil, database.TranslateError(err, "invoice")
	}
	s.logger.Info("invoice status changed", zap.String("id", id), zap.String("status", req.Status))
	return s.Get(ctx, id)
}

// Delete removes an invoice without payments.
func (s *InvoiceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if appErrors.IsConflict(database.TranslateError(err, "invoice")) {
			return appErrors.Clone(appErrors.ErrConflict, "invoice has payments and cannot be deleted")
		}
		return database.TranslateError(err, "invoice")
	}
	return nil
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

func randomInvoiceSuffix() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}
